package commands

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/bartekus/licaudit/internal/exclusion"
	"github.com/bartekus/licaudit/internal/report"
)

func newCollectionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "collections",
		Short: "List the standard exclusion collections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := lo.Map(exclusion.Collections(), func(c exclusion.Collection, _ int) []string {
				return []string{string(c), collectionTraits(c), c.Description()}
			})
			_, err := fmt.Fprint(cmd.OutOrStdout(), report.RenderTable([]string{"Collection", "Provides", "Description"}, rows))
			return err
		},
	}
}

func collectionTraits(c exclusion.Collection) string {
	var traits []string
	if c.HasStaticPatterns() {
		traits = append(traits, "patterns")
	}
	if c.HasProcessor() {
		traits = append(traits, "ignore files")
	}
	if c.Matcher() != nil {
		traits = append(traits, "matcher")
	}
	if len(traits) == 0 {
		return "-"
	}
	return strings.Join(traits, ", ")
}
