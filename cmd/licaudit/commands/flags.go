package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/bartekus/licaudit/internal/config"
	"github.com/bartekus/licaudit/internal/scanerr"
)

// addExclusionFlags registers the flags that shape exclusion resolution.
func addExclusionFlags(fs *pflag.FlagSet) {
	fs.StringSliceP(config.KeyExclude, "e", nil, "exclude pattern (glob, %regex[...] or %ant[...]); '!' marks an include")
	fs.StringSlice(config.KeyExcludeFile, nil, "file of exclude patterns, one per line")
	fs.StringSliceP(config.KeyInclude, "i", nil, "include pattern overriding excludes")
	fs.StringSlice(config.KeyIncludeFile, nil, "file of include patterns, one per line")
	fs.StringSlice(config.KeyExcludeStd, nil, "standard collections to exclude (default STANDARD_PATTERNS)")
	fs.StringSlice(config.KeyIncludeStd, nil, "standard collections to include")
	fs.StringSlice(config.KeyProcessStd, nil, "standard collections whose ignore files are processed (default STANDARD_SCMS)")
}

// addLicenseFlags registers the flags that shape the license catalog.
func addLicenseFlags(fs *pflag.FlagSet) {
	fs.StringSlice(config.KeyLicenses, nil, "additional license catalog YAML file")
	fs.Bool(config.KeyNoDefaultLicenses, false, "do not load the built-in license catalog")
	fs.StringSlice(config.KeyApproved, nil, "approved family categories, overriding the catalog")
}

// addScanFlags registers the remaining scan flags.
func addScanFlags(fs *pflag.FlagSet) {
	fs.Bool(config.KeyArchiveRecursion, false, "analyse the members of archives")
	fs.Int(config.KeyMaxRetainedLines, 0, "header lines kept as a sample for unknown licenses (default 50)")
	fs.String(config.KeyStateDir, "", "directory for the last scan (default <dir>/.licaudit)")
	fs.Bool(config.KeyFailOnUnapproved, true, "exit 1 when unapproved documents are found")
	fs.Bool(config.KeyListUnapproved, true, "list unapproved documents in the summary")
	fs.StringSlice(config.KeyTextTypes, nil, "media types to check for license headers in addition to text/*")
}

// loadConfig binds every changed flag of cmd to viper and loads the
// configuration for the root named in args.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}

	v := viper.New()
	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if bindErr != nil || !f.Changed {
			return
		}
		bindErr = v.BindPFlag(f.Name, f)
	})
	if bindErr != nil {
		return nil, scanerr.Config(bindErr, "binding flags")
	}

	configFile, _ := cmd.Flags().GetString("config")
	return config.Load(v, root, configFile)
}
