package commands

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/bartekus/licaudit/internal/env"
	"github.com/bartekus/licaudit/internal/report"
)

func newEnvCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "List the environment variables licaudit reads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := lo.Map(env.All(), func(v env.Var, _ int) []string {
				return []string{v.Name, v.Description, v.Value()}
			})
			_, err := fmt.Fprint(cmd.OutOrStdout(), report.RenderTable([]string{"Variable", "Description", "Value"}, rows))
			return err
		},
	}
}
