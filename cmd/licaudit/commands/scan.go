package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bartekus/licaudit/cmd/licaudit/internal/clierr"
	"github.com/bartekus/licaudit/internal/audit"
	"github.com/bartekus/licaudit/internal/report"
)

func newScanCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "scan [dir]",
		Short: "Scan a directory for license headers",
		Long: `Walk the directory, resolve exclusions from patterns, standard collections and SCM
ignore files, then classify every document and match its header against the license
catalog. The result is stored in the state directory for 'licaudit report'.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, args)
			if err != nil {
				return err
			}
			a, err := audit.New(cfg)
			if err != nil {
				return err
			}
			scan, err := a.Run(cmd.Context())
			if err != nil {
				return clierr.Wrap(clierr.ExitInternal, "scan failed", err)
			}
			if err := report.NewStore(cfg.StateDir).WriteLast(scan); err != nil {
				return clierr.Wrap(clierr.ExitInternal, "saving scan", err)
			}

			if err := printScan(cmd, scan, asJSON, cfg.ListUnapproved); err != nil {
				return err
			}
			if cfg.FailOnUnapproved && scan.Summary.Unapproved > 0 {
				return clierr.Newf(clierr.ExitUnapproved, "%d documents without an approved license", scan.Summary.Unapproved)
			}
			return nil
		},
	}

	addExclusionFlags(cmd.Flags())
	addLicenseFlags(cmd.Flags())
	addScanFlags(cmd.Flags())
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the scan as JSON")
	return cmd
}

func printScan(cmd *cobra.Command, scan *report.Scan, asJSON, listUnapproved bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(scan)
	}
	_, err := fmt.Fprint(out, report.RenderSummary(scan, listUnapproved))
	return err
}
