package commands

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/bartekus/licaudit/internal/license"
	"github.com/bartekus/licaudit/internal/report"
)

func newLicensesCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "licenses",
		Short: "List the licenses of the effective catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, []string{dir})
			if err != nil {
				return err
			}
			catalog, err := cfg.Catalog()
			if err != nil {
				return err
			}
			coll, err := catalog.NewCollection()
			if err != nil {
				return err
			}

			approve := catalog.Approver()
			rows := lo.Map(coll.Licenses(), func(l *license.License, _ int) []string {
				return []string{l.ID, l.Family.ID(), l.Name, fmt.Sprint(approve(l))}
			})
			_, err = fmt.Fprint(cmd.OutOrStdout(), report.RenderTable([]string{"ID", "Family", "Name", "Approved"}, rows))
			return err
		},
	}

	addLicenseFlags(cmd.Flags())
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "directory holding licaudit.yaml")
	return cmd
}
