// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads the run configuration from a licaudit.yaml file,
// LICAUDIT_* environment variables and command line flags.
package config

import (
	"path/filepath"
	"strings"

	log "github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/bartekus/licaudit/internal/exclusion"
	"github.com/bartekus/licaudit/internal/header"
	"github.com/bartekus/licaudit/internal/license"
	"github.com/bartekus/licaudit/internal/scanerr"
)

// EnvPrefix prefixes every environment variable bound to a config key.
const EnvPrefix = "LICAUDIT"

// FileName is the config file looked up in the scanned root.
const FileName = "licaudit"

// Config keys. Flags use the same names.
const (
	KeyExclude           = "exclude"
	KeyExcludeFile       = "exclude-file"
	KeyInclude           = "include"
	KeyIncludeFile       = "include-file"
	KeyExcludeStd        = "exclude-std"
	KeyIncludeStd        = "include-std"
	KeyProcessStd        = "process-std"
	KeyLicenses          = "licenses"
	KeyNoDefaultLicenses = "no-default-licenses"
	KeyApproved          = "approved"
	KeyArchiveRecursion  = "archive-recursion"
	KeyMaxRetainedLines  = "max-retained-lines"
	KeyStateDir          = "state-dir"
	KeyFailOnUnapproved  = "fail-on-unapproved"
	KeyListUnapproved    = "list-unapproved"
	KeyTextTypes         = "text-types"
)

// Keys lists every config key.
func Keys() []string {
	return []string{
		KeyExclude, KeyExcludeFile, KeyInclude, KeyIncludeFile,
		KeyExcludeStd, KeyIncludeStd, KeyProcessStd,
		KeyLicenses, KeyNoDefaultLicenses, KeyApproved,
		KeyArchiveRecursion, KeyMaxRetainedLines, KeyStateDir,
		KeyFailOnUnapproved, KeyListUnapproved, KeyTextTypes,
	}
}

// Config is the resolved run configuration.
type Config struct {
	Root string `mapstructure:"-"`

	Excludes     []string `mapstructure:"exclude"`
	ExcludeFiles []string `mapstructure:"exclude-file"`
	Includes     []string `mapstructure:"include"`
	IncludeFiles []string `mapstructure:"include-file"`

	ExcludeStd []string `mapstructure:"exclude-std"`
	IncludeStd []string `mapstructure:"include-std"`
	ProcessStd []string `mapstructure:"process-std"`

	Licenses          []string `mapstructure:"licenses"`
	NoDefaultLicenses bool     `mapstructure:"no-default-licenses"`
	Approved          []string `mapstructure:"approved"`

	ArchiveRecursion bool   `mapstructure:"archive-recursion"`
	MaxRetainedLines int    `mapstructure:"max-retained-lines"`
	StateDir         string `mapstructure:"state-dir"`
	FailOnUnapproved bool   `mapstructure:"fail-on-unapproved"`
	ListUnapproved   bool   `mapstructure:"list-unapproved"`

	// TextTypes are media types header-checked in addition to text/*.
	TextTypes []string `mapstructure:"text-types"`
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyExcludeStd, []string{string(exclusion.StandardPatterns)})
	v.SetDefault(KeyProcessStd, []string{string(exclusion.StandardSCMs)})
	v.SetDefault(KeyMaxRetainedLines, header.DefaultMaxRetainedLines)
	v.SetDefault(KeyStateDir, ".licaudit")
	v.SetDefault(KeyFailOnUnapproved, true)
	v.SetDefault(KeyListUnapproved, true)
}

// Load reads configuration for root. An explicit configFile must exist;
// otherwise licaudit.yaml in root is read when present.
func Load(v *viper.Viper, root, configFile string) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	for _, key := range Keys() {
		if err := v.BindEnv(key); err != nil {
			return nil, scanerr.Config(err, "binding environment")
		}
	}

	if configFile != "" {
		path, err := expand(configFile)
		if err != nil {
			return nil, err
		}
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(root)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, scanerr.Config(err, "reading config file")
		}
	}
	if used := v.ConfigFileUsed(); used != "" {
		log.Debug("Loaded config file", "file", used)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, scanerr.Config(err, "decoding config")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, scanerr.Config(err, "resolving root")
	}
	cfg.Root = abs

	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func expand(path string) (string, error) {
	out, err := homedir.Expand(path)
	if err != nil {
		return "", scanerr.Config(err, "expanding "+path)
	}
	return out, nil
}

func (c *Config) expandPaths() error {
	for _, list := range [][]string{c.ExcludeFiles, c.IncludeFiles, c.Licenses} {
		for i, p := range list {
			out, err := expand(p)
			if err != nil {
				return err
			}
			list[i] = out
		}
	}
	if c.StateDir == "" {
		return nil
	}
	dir, err := expand(c.StateDir)
	if err != nil {
		return err
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(c.Root, dir)
	}
	c.StateDir = dir
	return nil
}

// Validate checks values that can be checked without touching the disk.
func (c *Config) Validate() error {
	if c.MaxRetainedLines < 0 {
		return scanerr.Configf("%s must not be negative, got %d", KeyMaxRetainedLines, c.MaxRetainedLines)
	}
	for _, names := range [][]string{c.ExcludeStd, c.IncludeStd, c.ProcessStd} {
		if _, err := exclusion.ParseCollections(names); err != nil {
			return err
		}
	}
	for _, mt := range c.TextTypes {
		if major, minor, ok := strings.Cut(mt, "/"); !ok || major == "" || minor == "" {
			return scanerr.Configf("%s: %q is not a media type", KeyTextTypes, mt)
		}
	}
	if c.NoDefaultLicenses && len(c.Licenses) == 0 {
		return scanerr.Configf("%s requires at least one --%s catalog", KeyNoDefaultLicenses, KeyLicenses)
	}
	return nil
}

// ResolverOptions reads pattern files and parses collection names.
func (c *Config) ResolverOptions() (exclusion.ResolverOptions, error) {
	var opts exclusion.ResolverOptions

	excludes, err := withFiles(c.Excludes, c.ExcludeFiles)
	if err != nil {
		return opts, err
	}
	includes, err := withFiles(c.Includes, c.IncludeFiles)
	if err != nil {
		return opts, err
	}
	if rel, ok := c.stateDirPattern(); ok {
		excludes = append(excludes, rel)
	}
	opts.Excludes, opts.Includes = excludes, includes

	if opts.ExcludedCollections, err = exclusion.ParseCollections(c.ExcludeStd); err != nil {
		return opts, err
	}
	if opts.IncludedCollections, err = exclusion.ParseCollections(c.IncludeStd); err != nil {
		return opts, err
	}
	if opts.FileProcessorCollections, err = exclusion.ParseCollections(c.ProcessStd); err != nil {
		return opts, err
	}
	return opts, nil
}

// stateDirPattern excludes the state directory when it lives under the root.
func (c *Config) stateDirPattern() (string, bool) {
	if c.StateDir == "" || c.Root == "" {
		return "", false
	}
	rel, err := filepath.Rel(c.Root, c.StateDir)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return filepath.ToSlash(rel) + "/**", true
}

func withFiles(patterns, files []string) ([]string, error) {
	out := append([]string(nil), patterns...)
	for _, f := range files {
		lines, err := exclusion.ReadLines(f, exclusion.CommentFilter(exclusion.CommentPrefixes...))
		if err != nil {
			return nil, err
		}
		out = append(out, lines...)
	}
	return out, nil
}

// Catalog merges the built-in catalog with the configured catalog files and
// applies the approved override.
func (c *Config) Catalog() (*license.Catalog, error) {
	var catalog *license.Catalog
	if !c.NoDefaultLicenses {
		catalog = license.Builtin()
	}
	for _, path := range c.Licenses {
		extra, err := license.LoadCatalog(path)
		if err != nil {
			return nil, errors.WithMessagef(err, "catalog %s", path)
		}
		if catalog == nil {
			catalog = extra
			continue
		}
		catalog = catalog.Merge(extra)
	}
	if catalog == nil {
		return nil, scanerr.Configf("no license catalog configured")
	}
	if len(c.Approved) > 0 {
		catalog.Approved = c.Approved
	}
	if err := catalog.Validate(); err != nil {
		return nil, err
	}
	return catalog, nil
}
