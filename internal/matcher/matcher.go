// SPDX-License-Identifier: AGPL-3.0-or-later

// Package matcher is a boolean algebra over document names.
//
// Every Matcher carries a Kind tag and a name. Composites flatten nested
// members of the same kind by inspecting the tag, and collapse sentinels as
// they are built, so a finished predicate graph is immutable and safe to
// evaluate from many goroutines.
package matcher

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/bartekus/licaudit/internal/document"
	"github.com/bartekus/licaudit/internal/pattern"
)

// Kind tags the variant held by a Matcher.
type Kind int

const (
	KindAll Kind = iota
	KindNone
	KindLeaf
	KindNot
	KindAnd
	KindOr
	KindSet
	KindLevels
)

func (k Kind) String() string {
	switch k {
	case KindAll:
		return "all"
	case KindNone:
		return "none"
	case KindLeaf:
		return "leaf"
	case KindNot:
		return "not"
	case KindAnd:
		return "and"
	case KindOr:
		return "or"
	case KindSet:
		return "matcherSet"
	case KindLevels:
		return "levels"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Predicate tests a single name.
type Predicate func(document.Name) bool

// Matcher is a named predicate over document names.
type Matcher struct {
	name     string
	kind     Kind
	pred     Predicate
	children []*Matcher
	levels   []Set
}

var (
	// All matches every name.
	All = &Matcher{name: "TRUE", kind: KindAll}
	// None matches no name.
	None = &Matcher{name: "FALSE", kind: KindNone}
)

// New wraps a predicate as a leaf matcher.
func New(name string, pred Predicate) *Matcher {
	return &Matcher{name: name, kind: KindLeaf, pred: pred}
}

// FromPatterns builds a leaf over a compiled pattern set. Names are matched
// by their full path, with base supplying separator and case sensitivity.
func FromPatterns(name string, set *pattern.Set, base document.Name) *Matcher {
	sep := base.Separator()
	caseSensitive := base.CaseSensitive()
	return New(name, func(n document.Name) bool {
		return set.Match(n.Name(), pattern.Tokenize(n.Name(), sep), caseSensitive)
	})
}

// IsDirectory matches names whose path is a directory according to stat.
func IsDirectory(stat func(string) (bool, error)) *Matcher {
	return New("isDirectory", func(n document.Name) bool {
		dir, err := stat(n.Name())
		return err == nil && dir
	})
}

// Name returns the trace name.
func (m *Matcher) Name() string { return m.name }

// Kind returns the variant tag.
func (m *Matcher) Kind() Kind { return m.kind }

// String implements fmt.Stringer.
func (m *Matcher) String() string { return m.name }

// Matches evaluates the predicate.
func (m *Matcher) Matches(n document.Name) bool {
	switch m.kind {
	case KindAll:
		return true
	case KindNone:
		return false
	case KindLeaf:
		return m.pred(n)
	case KindNot:
		return !m.children[0].Matches(n)
	case KindAnd:
		for _, c := range m.children {
			if !c.Matches(n) {
				return false
			}
		}
		return true
	case KindOr:
		for _, c := range m.children {
			if c.Matches(n) {
				return true
			}
		}
		return false
	case KindSet:
		return m.children[0].Matches(n) || !m.children[1].Matches(n)
	case KindLevels:
		excluded, _ := evalLevels(m.levels, n)
		return excluded
	default:
		return false
	}
}

// Not negates m, collapsing sentinels.
func Not(m *Matcher) *Matcher {
	switch m.kind {
	case KindAll:
		return None
	case KindNone:
		return All
	}
	return &Matcher{name: fmt.Sprintf("not(%s)", m.name), kind: KindNot, children: []*Matcher{m}}
}

// Or matches when any member matches. An empty Or is None, a single member
// is returned unchanged and any All member makes the result All.
func Or(ms ...*Matcher) *Matcher {
	members := flatten(KindOr, ms)
	if lo.Contains(members, All) {
		return All
	}
	members = lo.Without(members, None)
	switch len(members) {
	case 0:
		return None
	case 1:
		return members[0]
	}
	return composite(KindOr, "or", members)
}

// And matches when every member matches. It takes at least one member; any
// None member makes the result None.
func And(first *Matcher, rest ...*Matcher) *Matcher {
	members := flatten(KindAnd, append([]*Matcher{first}, rest...))
	if lo.Contains(members, None) {
		return None
	}
	members = lo.Without(members, All)
	switch len(members) {
	case 0:
		return All
	case 1:
		return members[0]
	}
	return composite(KindAnd, "and", members)
}

// MatcherSet combines include and exclude predicates into the activity
// predicate used to filter a tree. A name is active when it is included or
// not excluded; includes only ever carve exceptions out of the excludes.
func MatcherSet(includes, excludes *Matcher) *Matcher {
	switch {
	case excludes.kind == KindNone:
		return All
	case includes.kind == KindNone:
		return Not(excludes)
	case includes.kind == KindAll:
		return All
	}
	return &Matcher{
		name:     fmt.Sprintf("matcherSet(%s, %s)", includes.name, excludes.name),
		kind:     KindSet,
		children: []*Matcher{includes, excludes},
	}
}

func flatten(kind Kind, ms []*Matcher) []*Matcher {
	var out []*Matcher
	for _, m := range ms {
		if m == nil {
			continue
		}
		if m.kind == kind {
			out = append(out, m.children...)
			continue
		}
		out = append(out, m)
	}
	return lo.Uniq(out)
}

func composite(kind Kind, op string, members []*Matcher) *Matcher {
	names := lo.Map(members, func(m *Matcher, _ int) string { return m.name })
	return &Matcher{
		name:     fmt.Sprintf("%s(%s)", op, strings.Join(names, ", ")),
		kind:     kind,
		children: members,
	}
}
