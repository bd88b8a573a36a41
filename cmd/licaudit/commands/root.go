// SPDX-License-Identifier: AGPL-3.0-or-later

/*
licaudit - audits a source tree for license headers.
It classifies every file, matches its header against a license catalog and reports the files
that lack an approved license.

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package commands

import (
	"fmt"
	"os"

	log "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/bartekus/licaudit/cmd/licaudit/internal/clierr"
	"github.com/bartekus/licaudit/internal/env"
)

// NewRootCmd constructs the licaudit root Cobra command.
func NewRootCmd() *cobra.Command {
	version := os.Getenv("LICAUDIT_VERSION")
	if version == "" {
		version = "0.0.0-dev"
	}

	cmd := &cobra.Command{
		Use:           "licaudit",
		Short:         "licaudit - license header auditing for source trees",
		Long:          "licaudit walks a directory, honours SCM ignore files and reports files without an approved license header.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return configureLogging(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")
	cmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn or error (default warn, env "+env.LogLevel.Name+")")
	cmd.PersistentFlags().StringP("config", "c", "", "config file (default <dir>/licaudit.yaml)")

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number of licaudit",
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "licaudit version %s\n", version)
		},
	})

	cmd.AddCommand(newScanCmd())
	cmd.AddCommand(newExplainCmd())
	cmd.AddCommand(newCollectionsCmd())
	cmd.AddCommand(newLicensesCmd())
	cmd.AddCommand(newReportCmd())
	cmd.AddCommand(newEnvCmd())

	return cmd
}

func configureLogging(cmd *cobra.Command) error {
	log.SetOutput(cmd.ErrOrStderr())

	level := env.LogLevel.Value()
	if flag, _ := cmd.Flags().GetString("log-level"); flag != "" {
		level = flag
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = "debug"
	}
	if level == "" {
		log.SetLevel(log.WarnLevel)
		return nil
	}

	parsed, err := log.ParseLevel(level)
	if err != nil {
		return clierr.Wrap(clierr.ExitConfig, "invalid log level", err)
	}
	log.SetLevel(parsed)
	return nil
}
