package pattern

import (
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/bartekus/licaudit/internal/scanerr"
)

// Set is an ordered collection of patterns that matches when any member does.
type Set struct {
	sep      string
	patterns []*Pattern
}

// NewSet compiles every source. All compile failures are reported together.
func NewSet(sources []string, sep string) (*Set, error) {
	var errs *multierror.Error
	s := &Set{sep: sep}
	for _, src := range sources {
		p, err := Compile(src, sep)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		s.patterns = append(s.patterns, p)
	}
	if err := errs.ErrorOrNil(); err != nil {
		return nil, scanerr.Config(err, "compiling pattern set")
	}
	return s, nil
}

// Len returns the number of patterns.
func (s *Set) Len() int { return len(s.patterns) }

// Sources returns the pattern sources in insertion order.
func (s *Set) Sources() []string {
	out := make([]string, len(s.patterns))
	for i, p := range s.patterns {
		out[i] = p.Source()
	}
	return out
}

// Match reports whether any pattern matches.
func (s *Set) Match(str string, tokens []string, caseSensitive bool) bool {
	for _, p := range s.patterns {
		if p.Match(str, tokens, caseSensitive) {
			return true
		}
	}
	return false
}

// MatchPath tokenizes path once and matches it against all patterns.
func (s *Set) MatchPath(path string, caseSensitive bool) bool {
	return s.Match(path, Tokenize(path, s.sep), caseSensitive)
}

func (s *Set) String() string {
	return strings.Join(s.Sources(), ", ")
}
