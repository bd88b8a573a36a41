// Package env names the environment variables licaudit reads.
package env

import (
	"os"
	"strings"
)

// Var is an environment variable read by licaudit.
type Var struct {
	Name        string
	Description string
}

var (
	// NoGitGlobalIgnore suppresses the user-level git ignore file when set.
	NoGitGlobalIgnore = Var{"LICAUDIT_NO_GIT_GLOBAL_IGNORE", "Skip the global git ignore file."}
	// DecomposeOnUse logs a decomposition trace for every exclusion decision.
	DecomposeOnUse = Var{"LICAUDIT_DECOMPOSE_MATCHER_ON_USE", "Log the exclusion trace for each document at debug level."}
	// LogLevel sets the default log level.
	LogLevel = Var{"LICAUDIT_LOG_LEVEL", "Default log level: debug, info, warn or error."}
	// XDGConfigHome locates the user configuration directory.
	XDGConfigHome = Var{"XDG_CONFIG_HOME", "Location of user configuration, used to find the global git ignore file."}
	// Home is the user home directory.
	Home = Var{"HOME", "Fallback for XDG_CONFIG_HOME."}
)

// All lists every variable for help output.
func All() []Var {
	return []Var{NoGitGlobalIgnore, DecomposeOnUse, LogLevel, XDGConfigHome, Home}
}

// Value returns the variable's value.
func (v Var) Value() string { return os.Getenv(v.Name) }

// IsSet reports whether the variable is set to a non-blank value.
func (v Var) IsSet() bool { return strings.TrimSpace(os.Getenv(v.Name)) != "" }
