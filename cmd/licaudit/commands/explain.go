package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bartekus/licaudit/internal/audit"
	"github.com/bartekus/licaudit/internal/document"
	"github.com/bartekus/licaudit/internal/matcher"
)

func newExplainCmd() *cobra.Command {
	var (
		dir    string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "explain <path>...",
		Short: "Explain why paths are included or excluded",
		Long: `Resolve exclusions for --dir and print the decision tree of the resolved matcher for
each path. Paths are relative to --dir.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, []string{dir})
			if err != nil {
				return err
			}
			root := document.Root(cfg.Root, document.DefaultFSInfo())
			active, err := audit.ResolveExclusions(cfg, root)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			traces := make([]*matcher.Trace, 0, len(args))
			for _, p := range args {
				traces = append(traces, matcher.Decompose(active, root.Resolve(p)))
			}
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(traces)
			}
			for i, tr := range traces {
				state := "included"
				if !tr.Result {
					state = "excluded"
				}
				_, _ = fmt.Fprintf(out, "%s: %s\n%s\n", args[i], state, tr.String())
			}
			return nil
		},
	}

	addExclusionFlags(cmd.Flags())
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "scan root the paths are relative to")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the traces as JSON")
	return cmd
}
