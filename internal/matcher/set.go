package matcher

import (
	"fmt"
	"strings"

	"github.com/bartekus/licaudit/internal/document"
	"github.com/bartekus/licaudit/internal/pattern"
)

// Negation marks an include pattern in an exclude-by-default list.
const Negation = "!"

// Set pairs optional include and exclude matchers. A nil field is absent.
type Set struct {
	Includes *Matcher
	Excludes *Matcher
}

// IsEmpty reports whether neither side is present.
func (s Set) IsEmpty() bool { return s.Includes == nil && s.Excludes == nil }

// Matcher returns the activity predicate for s.
func (s Set) Matcher() *Matcher {
	return MatcherSet(orNone(s.Includes), orNone(s.Excludes))
}

// Merge unions the includes and the excludes of every set.
func Merge(sets ...Set) Set {
	var inc, exc []*Matcher
	for _, s := range sets {
		if s.Includes != nil {
			inc = append(inc, s.Includes)
		}
		if s.Excludes != nil {
			exc = append(exc, s.Excludes)
		}
	}
	return Set{Includes: orNil(inc), Excludes: orNil(exc)}
}

// Levels merges per-directory sets, deepest first, into one Set whose excludes
// is evaluated level by level: the first level with an opinion decides. Within
// a level an include beats an exclude. A name no level speaks for is not
// excluded. The returned Set has no includes so level overrides never leak
// into a global include list.
func Levels(name string, sets []Set) Set {
	var kept []Set
	for _, s := range sets {
		if !s.IsEmpty() {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		return Set{}
	}
	if len(kept) == 1 && kept[0].Includes == nil {
		return Set{Excludes: kept[0].Excludes}
	}
	return Set{Excludes: &Matcher{name: name, kind: KindLevels, levels: kept}}
}

// evalLevels returns the verdict and the index of the deciding level, or -1.
func evalLevels(levels []Set, n document.Name) (bool, int) {
	for i, s := range levels {
		if s.Includes != nil && s.Includes.Matches(n) {
			return false, i
		}
		if s.Excludes != nil && s.Excludes.Matches(n) {
			return true, i
		}
	}
	return false, -1
}

// Segregate splits patterns into excludes and `!`-prefixed includes, with the
// prefix removed.
func Segregate(patterns []string) (excluded, included []string) {
	for _, p := range patterns {
		if strings.HasPrefix(p, Negation) {
			included = append(included, p[len(Negation):])
			continue
		}
		excluded = append(excluded, p)
	}
	return excluded, included
}

// Label renders a name for use inside a matcher name.
func Label(n document.Name) string {
	return strings.TrimPrefix(n.LocalizedTo("/"), "/")
}

// Builder accumulates include and exclude matchers for one Set.
type Builder struct {
	included []*Matcher
	excluded []*Matcher
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder { return &Builder{} }

// AddIncluded adds include patterns read from the source labelled label.
func (b *Builder) AddIncluded(label string, base document.Name, patterns []string) error {
	m, err := patternMatcher(fmt.Sprintf("'included %s'", label), base, patterns)
	if err != nil || m == nil {
		return err
	}
	b.included = append(b.included, m)
	return nil
}

// AddExcluded adds exclude patterns read from the source labelled label.
func (b *Builder) AddExcluded(label string, base document.Name, patterns []string) error {
	m, err := patternMatcher(fmt.Sprintf("'excluded %s'", label), base, patterns)
	if err != nil || m == nil {
		return err
	}
	b.excluded = append(b.excluded, m)
	return nil
}

// AddPatterns segregates patterns and adds both halves.
func (b *Builder) AddPatterns(label string, base document.Name, patterns []string) error {
	excluded, included := Segregate(patterns)
	if err := b.AddIncluded(label, base, included); err != nil {
		return err
	}
	return b.AddExcluded(label, base, excluded)
}

// AddIncludedMatcher adds a ready-made include matcher.
func (b *Builder) AddIncludedMatcher(m *Matcher) *Builder {
	b.included = append(b.included, m)
	return b
}

// AddExcludedMatcher adds a ready-made exclude matcher.
func (b *Builder) AddExcludedMatcher(m *Matcher) *Builder {
	b.excluded = append(b.excluded, m)
	return b
}

// Build returns the accumulated Set.
func (b *Builder) Build() Set {
	return Set{Includes: orNil(b.included), Excludes: orNil(b.excluded)}
}

func patternMatcher(name string, base document.Name, patterns []string) (*Matcher, error) {
	if len(patterns) == 0 {
		return nil, nil
	}
	set, err := pattern.NewSet(patterns, base.Separator())
	if err != nil {
		return nil, err
	}
	return FromPatterns(name, set, base), nil
}

func orNil(ms []*Matcher) *Matcher {
	if len(ms) == 0 {
		return nil
	}
	return Or(ms...)
}

func orNone(m *Matcher) *Matcher {
	if m == nil {
		return None
	}
	return m
}
