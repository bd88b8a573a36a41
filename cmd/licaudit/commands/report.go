package commands

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/bartekus/licaudit/cmd/licaudit/internal/clierr"
	"github.com/bartekus/licaudit/internal/report"
)

func newReportCmd() *cobra.Command {
	var (
		asJSON bool
		reset  bool
	)

	cmd := &cobra.Command{
		Use:   "report [dir]",
		Short: "Show the last stored scan",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, args)
			if err != nil {
				return err
			}
			store := report.NewStore(cfg.StateDir)
			if reset {
				if err := store.Reset(); err != nil {
					return clierr.Wrap(clierr.ExitInternal, "resetting stored scan", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", store.Path())
				return nil
			}
			scan, err := store.ReadLast()
			if errors.Is(err, report.ErrCorruptScan) {
				return clierr.Wrap(clierr.ExitInternal, "stored scan is unusable; run 'licaudit report --reset' or scan again", err)
			}
			if err != nil {
				return clierr.Wrap(clierr.ExitInternal, "reading last scan", err)
			}
			if scan == nil {
				return clierr.Newf(clierr.ExitInternal, "no scan stored in %s; run 'licaudit scan' first", cfg.StateDir)
			}
			return printScan(cmd, scan, asJSON, cfg.ListUnapproved)
		},
	}

	cmd.Flags().String("state-dir", "", "directory holding the last scan (default <dir>/.licaudit)")
	cmd.Flags().Bool("list-unapproved", true, "list unapproved documents in the summary")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the scan as JSON")
	cmd.Flags().BoolVar(&reset, "reset", false, "remove the stored scan instead of printing it")
	return cmd
}
