// SPDX-License-Identifier: AGPL-3.0-or-later

// Package pattern compiles Ant-style globs and wrapped regular expressions
// into matchers over separator-tokenized paths.
//
// Glob syntax: `*` and `?` match within a single path segment, `**` matches
// zero or more whole segments, `[...]` is a character class. A pattern may be
// wrapped as `%ant[...]`; a regular expression must be wrapped as
// `%regex[...]` and is matched against the whole raw path string.
package pattern

import (
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gobwas/glob"

	"github.com/bartekus/licaudit/internal/scanerr"
)

const (
	// RegexPrefix opens a wrapped regular expression.
	RegexPrefix = "%regex["
	// AntPrefix opens a wrapped Ant glob.
	AntPrefix = "%ant["
	// WrapperSuffix closes either wrapper.
	WrapperSuffix = "]"
	// DeepWildcard matches zero or more path segments.
	DeepWildcard = "**"
)

// ErrInvalidPattern is returned when a pattern cannot be compiled.
var ErrInvalidPattern = errors.New("invalid pattern")

// Pattern is a compiled pattern. It is immutable and safe for concurrent use.
type Pattern struct {
	source   string
	sep      string
	regex    bool
	rooted   bool
	segments []segment
	re       *regexp.Regexp
	reFold   *regexp.Regexp
}

type segment struct {
	raw     string
	deep    bool
	literal bool
	g       glob.Glob
	gFold   glob.Glob
}

func (s segment) match(str string, caseSensitive bool) bool {
	switch {
	case s.literal && caseSensitive:
		return s.raw == str
	case s.literal:
		return strings.EqualFold(s.raw, str)
	case caseSensitive:
		return s.g.Match(str)
	default:
		return s.gFold.Match(strings.ToLower(str))
	}
}

// Compile compiles src using sep as the directory separator.
func Compile(src, sep string) (*Pattern, error) {
	p := &Pattern{source: src, sep: sep}

	switch {
	case strings.HasPrefix(src, RegexPrefix):
		body, err := unwrap(src, RegexPrefix)
		if err != nil {
			return nil, err
		}
		re, err := regexp.Compile("^(?:" + body + ")$")
		if err != nil {
			return nil, invalid(src, err)
		}
		p.regex = true
		p.re = re
		p.reFold = regexp.MustCompile("(?i)" + re.String())
		return p, nil
	case strings.HasPrefix(src, AntPrefix):
		body, err := unwrap(src, AntPrefix)
		if err != nil {
			return nil, err
		}
		return p, p.compileGlob(body)
	default:
		return p, p.compileGlob(src)
	}
}

func (p *Pattern) compileGlob(body string) error {
	body = Normalize(body, p.sep)
	if strings.HasSuffix(body, p.sep) {
		body += DeepWildcard
	}
	p.rooted = strings.HasPrefix(body, p.sep)

	for _, tok := range Tokenize(body, p.sep) {
		if tok == DeepWildcard {
			p.segments = append(p.segments, segment{raw: tok, deep: true})
			continue
		}
		if !strings.ContainsAny(tok, "*?[") {
			p.segments = append(p.segments, segment{raw: tok, literal: true})
			continue
		}
		g, err := glob.Compile(escapeBraces(tok))
		if err != nil {
			return invalid(p.source, err)
		}
		gFold, err := glob.Compile(escapeBraces(strings.ToLower(tok)))
		if err != nil {
			return invalid(p.source, err)
		}
		p.segments = append(p.segments, segment{raw: tok, g: g, gFold: gFold})
	}
	return nil
}

// Source returns the pattern as written.
func (p *Pattern) Source() string { return p.source }

// IsRegex reports whether p was compiled from a `%regex[...]` wrapper.
func (p *Pattern) IsRegex() bool { return p.regex }

// String implements fmt.Stringer.
func (p *Pattern) String() string { return p.source }

// Match tests the raw path str, whose tokens were produced by Tokenize.
func (p *Pattern) Match(str string, tokens []string, caseSensitive bool) bool {
	if p.regex {
		if caseSensitive {
			return p.re.MatchString(str)
		}
		return p.reFold.MatchString(str)
	}
	if p.rooted != strings.HasPrefix(str, p.sep) {
		return false
	}
	return matchSegments(p.segments, tokens, caseSensitive)
}

// MatchPath tokenizes path and matches it.
func (p *Pattern) MatchPath(path string, caseSensitive bool) bool {
	return p.Match(path, Tokenize(path, p.sep), caseSensitive)
}

func matchSegments(pat []segment, str []string, caseSensitive bool) bool {
	for len(pat) > 0 {
		if pat[0].deep {
			for len(pat) > 0 && pat[0].deep {
				pat = pat[1:]
			}
			if len(pat) == 0 {
				return true
			}
			for i := 0; i <= len(str); i++ {
				if matchSegments(pat, str[i:], caseSensitive) {
					return true
				}
			}
			return false
		}
		if len(str) == 0 || !pat[0].match(str[0], caseSensitive) {
			return false
		}
		pat, str = pat[1:], str[1:]
	}
	return len(str) == 0
}

// Tokenize splits path on sep, dropping empty segments.
func Tokenize(path, sep string) []string {
	parts := strings.Split(path, sep)
	out := parts[:0]
	for _, part := range parts {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// IsRegex reports whether src is a `%regex[...]` pattern.
func IsRegex(src string) bool {
	return strings.HasPrefix(src, RegexPrefix) && strings.HasSuffix(src, WrapperSuffix)
}

// Extract strips any wrapper from src. Glob bodies have their separators
// rewritten to sep; regex bodies are returned untouched.
func Extract(src, sep string) string {
	switch {
	case IsRegex(src):
		return src[len(RegexPrefix) : len(src)-len(WrapperSuffix)]
	case strings.HasPrefix(src, AntPrefix) && strings.HasSuffix(src, WrapperSuffix):
		return Normalize(src[len(AntPrefix):len(src)-len(WrapperSuffix)], sep)
	default:
		return Normalize(src, sep)
	}
}

// Normalize rewrites both '/' and '\' to sep.
func Normalize(src, sep string) string {
	if sep == "/" {
		return strings.ReplaceAll(src, "\\", "/")
	}
	return strings.ReplaceAll(src, "/", sep)
}

// IsRooted reports whether src has a separator anywhere but as its sole
// trailing character.
func IsRooted(src, sep string) bool {
	return strings.Contains(strings.TrimSuffix(src, sep), sep)
}

// Regex wraps a regular expression body.
func Regex(body string) string {
	return RegexPrefix + body + WrapperSuffix
}

func unwrap(src, prefix string) (string, error) {
	if !strings.HasSuffix(src, WrapperSuffix) || len(src) < len(prefix)+len(WrapperSuffix) {
		return "", invalid(src, errors.Newf("missing closing %q", WrapperSuffix))
	}
	return src[len(prefix) : len(src)-len(WrapperSuffix)], nil
}

// gobwas treats braces as alternation; Ant globs do not.
func escapeBraces(tok string) string {
	r := strings.NewReplacer("{", `\{`, "}", `\}`)
	return r.Replace(tok)
}

func invalid(src string, cause error) error {
	err := errors.Mark(errors.Wrapf(cause, "pattern %q", src), ErrInvalidPattern)
	return scanerr.Config(err, "compiling pattern")
}
