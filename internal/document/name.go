// SPDX-License-Identifier: AGPL-3.0-or-later

// Package document models scanned units and the names used to address them.
package document

import (
	"os"
	"runtime"
	"strings"

	"github.com/bartekus/licaudit/internal/pattern"
)

// FSInfo describes the file system a name lives on.
type FSInfo struct {
	Separator     string
	CaseSensitive bool
}

var (
	// UnixFS is a case-sensitive, slash separated file system.
	UnixFS = FSInfo{Separator: "/", CaseSensitive: true}
	// WindowsFS is a case-insensitive, backslash separated file system.
	WindowsFS = FSInfo{Separator: `\`, CaseSensitive: false}
	// OSXFS is a case-insensitive, slash separated file system.
	OSXFS = FSInfo{Separator: "/", CaseSensitive: false}
)

// DefaultFSInfo describes the host file system.
func DefaultFSInfo() FSInfo {
	switch runtime.GOOS {
	case "windows":
		return WindowsFS
	case "darwin":
		return OSXFS
	default:
		return FSInfo{Separator: string(os.PathSeparator), CaseSensitive: true}
	}
}

// Name is a path relative to a base directory. The zero value is not useful;
// build names with NewName, Resolve or Base.
type Name struct {
	name string
	base string
	fs   FSInfo
}

// NewName builds a name under base. A relative name is joined onto base.
// Separators are rewritten to fs.Separator and `.` / `..` segments removed.
func NewName(name, base string, fs FSInfo) Name {
	base = normalize(pattern.Normalize(base, fs.Separator), fs.Separator)
	name = pattern.Normalize(name, fs.Separator)
	if !isAbsolute(name, fs.Separator) {
		name = base + fs.Separator + name
	}
	return Name{name: normalize(name, fs.Separator), base: base, fs: fs}
}

// Root builds a name for base itself.
func Root(base string, fs FSInfo) Name {
	return NewName(base, base, fs)
}

// Name returns the fully qualified path.
func (n Name) Name() string { return n.name }

// BaseName returns the path of the base directory.
func (n Name) BaseName() string { return n.base }

// Base returns the base directory as a name.
func (n Name) Base() Name { return Name{name: n.base, base: n.base, fs: n.fs} }

// FSInfo returns the file system description.
func (n Name) FSInfo() FSInfo { return n.fs }

// Separator returns the directory separator.
func (n Name) Separator() string { return n.fs.Separator }

// CaseSensitive reports whether comparisons respect case.
func (n Name) CaseSensitive() bool { return n.fs.CaseSensitive }

// ShortName returns the final path segment.
func (n Name) ShortName() string {
	if i := strings.LastIndex(n.name, n.fs.Separator); i >= 0 {
		return n.name[i+len(n.fs.Separator):]
	}
	return n.name
}

// Dir returns the parent directory under the same base.
func (n Name) Dir() Name {
	i := strings.LastIndex(n.name, n.fs.Separator)
	if i <= 0 {
		return Name{name: n.fs.Separator, base: n.base, fs: n.fs}
	}
	return Name{name: n.name[:i], base: n.base, fs: n.fs}
}

// Localized returns the path relative to the base. It always starts with the
// separator; the base itself localizes to the bare separator.
func (n Name) Localized() string {
	result := n.name
	switch {
	case result == n.base:
		result = ""
	case strings.HasPrefix(result, strings.TrimSuffix(n.base, n.fs.Separator)+n.fs.Separator):
		result = result[len(strings.TrimSuffix(n.base, n.fs.Separator)):]
	}
	if !strings.HasPrefix(result, n.fs.Separator) {
		result = n.fs.Separator + result
	}
	return result
}

// LocalizedTo is Localized rendered with sep as the separator.
func (n Name) LocalizedTo(sep string) string {
	tokens := n.Tokenize(n.Localized())
	return sep + strings.Join(tokens, sep)
}

// Resolve returns the name of child relative to n. A child starting with the
// separator replaces the path; `..` never climbs above the root.
func (n Name) Resolve(child string) Name {
	if strings.TrimSpace(child) == "" {
		return n
	}
	child = pattern.Normalize(child, n.fs.Separator)
	if !isAbsolute(child, n.fs.Separator) {
		child = n.name + n.fs.Separator + child
	}
	return Name{name: normalize(child, n.fs.Separator), base: n.base, fs: n.fs}
}

// Tokenize splits s on the separator, dropping empty segments.
func (n Name) Tokenize(s string) []string {
	return pattern.Tokenize(s, n.fs.Separator)
}

// IsHidden reports whether the final segment starts with a dot.
func (n Name) IsHidden() bool {
	short := n.ShortName()
	return strings.HasPrefix(short, ".") && short != "." && short != ".."
}

// Equal reports whether n and o name the same path under the same base.
func (n Name) Equal(o Name) bool {
	return n.Compare(o) == 0 && n.fs == o.fs
}

// Compare orders names by path then base, folding case when either side is
// case-insensitive.
func (n Name) Compare(o Name) int {
	fold := !n.fs.CaseSensitive || !o.fs.CaseSensitive
	if c := compareStrings(n.name, o.name, fold); c != 0 {
		return c
	}
	return compareStrings(n.base, o.base, fold)
}

// String returns the localized form.
func (n Name) String() string { return n.Localized() }

func compareStrings(a, b string, fold bool) int {
	if fold {
		a, b = strings.ToLower(a), strings.ToLower(b)
	}
	return strings.Compare(a, b)
}

func isAbsolute(p, sep string) bool {
	return strings.HasPrefix(p, sep) || hasVolume(p)
}

func hasVolume(p string) bool {
	return len(p) >= 2 && p[1] == ':' && ((p[0] >= 'a' && p[0] <= 'z') || (p[0] >= 'A' && p[0] <= 'Z'))
}

func normalize(p, sep string) string {
	var prefix string
	switch {
	case hasVolume(p):
		prefix = p[:2] + sep
		p = p[2:]
	case strings.HasPrefix(p, sep):
		prefix = sep
	}

	var parts []string
	for _, part := range pattern.Tokenize(p, sep) {
		switch part {
		case ".":
		case "..":
			if len(parts) > 0 {
				parts = parts[:len(parts)-1]
			}
		default:
			parts = append(parts, part)
		}
	}
	return prefix + strings.Join(parts, sep)
}
