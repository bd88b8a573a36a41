package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bartekus/licaudit/internal/document"
)

func name(p string) document.Name {
	return document.NewName(p, "/r", document.UnixFS)
}

func suffix(s string) *Matcher {
	return New(s, func(n document.Name) bool {
		str := n.Name()
		return len(str) >= len(s) && str[len(str)-len(s):] == s
	})
}

func TestSentinelLaws(t *testing.T) {
	x := suffix(".txt")

	assert.Same(t, All, Not(Not(All)))
	assert.Same(t, None, Not(All))
	assert.Same(t, All, Not(None))
	assert.Same(t, All, Or(All, x))
	assert.Same(t, All, Or(x, All))
	assert.Same(t, None, And(None, x))
	assert.Same(t, None, And(x, None))
	assert.Same(t, None, Or())
	assert.Same(t, All, MatcherSet(None, None))
	assert.Equal(t, "TRUE", All.Name())
	assert.Equal(t, "FALSE", None.Name())
}

func TestSingletonsReturnedUnchanged(t *testing.T) {
	x := suffix(".txt")
	assert.Same(t, x, Or(x))
	assert.Same(t, x, And(x))
	assert.Same(t, x, Or(x, None))
	assert.Same(t, x, And(x, All))
	assert.Same(t, x, Or(x, x))
}

func TestFlattenPreservesOrder(t *testing.T) {
	a, b, c := suffix("a"), suffix("b"), suffix("c")

	or := Or(Or(a, b), c, Or(b, a))
	assert.Equal(t, KindOr, or.Kind())
	assert.Equal(t, "or(a, b, c)", or.Name())

	and := And(a, And(b, c))
	assert.Equal(t, "and(a, b, c)", and.Name())

	mixed := Or(a, And(b, c))
	assert.Equal(t, "or(a, and(b, c))", mixed.Name())
}

func TestNot(t *testing.T) {
	x := suffix(".txt")
	n := Not(x)
	assert.Equal(t, "not(.txt)", n.Name())
	assert.False(t, n.Matches(name("/r/a.txt")))
	assert.True(t, n.Matches(name("/r/a.go")))
}

func TestMatcherSetRules(t *testing.T) {
	logs := suffix(".log")
	keep := suffix("keep.log")

	tests := []struct {
		name     string
		includes *Matcher
		excludes *Matcher
		path     string
		want     bool
	}{
		{"no excludes", keep, None, "/r/a.log", true},
		{"no includes", None, logs, "/r/a.log", false},
		{"no includes other", None, logs, "/r/a.txt", true},
		{"all includes", All, logs, "/r/a.log", true},
		{"excluded", keep, logs, "/r/a.log", false},
		{"carved out", keep, logs, "/r/keep.log", true},
		{"never matched", keep, logs, "/r/b.txt", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatcherSet(tt.includes, tt.excludes).Matches(name(tt.path)))
		})
	}

	assert.Equal(t, "not(.log)", MatcherSet(None, logs).Name())
	assert.Equal(t, "matcherSet(keep.log, .log)", MatcherSet(keep, logs).Name())
}

func TestBuilder(t *testing.T) {
	base := document.Root("/r", document.UnixFS)
	b := NewBuilder()
	require.NoError(t, b.AddPatterns(".gitignore", base, []string{"/r/**/*.log", "!/r/keep.log"}))
	s := b.Build()

	require.NotNil(t, s.Includes)
	require.NotNil(t, s.Excludes)
	assert.Equal(t, "'included .gitignore'", s.Includes.Name())
	assert.Equal(t, "'excluded .gitignore'", s.Excludes.Name())

	m := s.Matcher()
	assert.False(t, m.Matches(name("/r/a.log")))
	assert.True(t, m.Matches(name("/r/keep.log")))
	assert.True(t, m.Matches(name("/r/b.txt")))
}

func TestBuilder_BadPattern(t *testing.T) {
	b := NewBuilder()
	err := b.AddExcluded("x", document.Root("/r", document.UnixFS), []string{"%regex[("})
	assert.Error(t, err)
}

func TestSegregate(t *testing.T) {
	excl, incl := Segregate([]string{"a", "!b", "c", "!!d"})
	assert.Equal(t, []string{"a", "c"}, excl)
	assert.Equal(t, []string{"b", "!d"}, incl)
}

func TestMerge(t *testing.T) {
	a, b, c := suffix("a"), suffix("b"), suffix("c")
	s := Merge(Set{Includes: a}, Set{Excludes: b}, Set{Includes: c, Excludes: a}, Set{})
	assert.Equal(t, "or(a, c)", s.Includes.Name())
	assert.Equal(t, "or(b, a)", s.Excludes.Name())
	assert.True(t, Merge().IsEmpty())
}

func TestLevels_DeeperWins(t *testing.T) {
	deep := Set{Includes: suffix("/sub/x.log")}
	shallow := Set{Excludes: suffix(".log")}

	s := Levels("levels", []Set{deep, shallow})
	require.Nil(t, s.Includes)
	m := s.Matcher()

	assert.True(t, m.Matches(name("/r/sub/x.log")), "deeper include overrides shallower exclude")
	assert.False(t, m.Matches(name("/r/y.log")))
	assert.True(t, m.Matches(name("/r/y.txt")))
}

func TestLevels_IncludeBeatsExcludeWithinLevel(t *testing.T) {
	level := Set{Includes: suffix("keep.log"), Excludes: suffix(".log")}
	m := Levels("levels", []Set{level}).Matcher()
	assert.True(t, m.Matches(name("/r/keep.log")))
	assert.False(t, m.Matches(name("/r/a.log")))
}

func TestLevels_Empty(t *testing.T) {
	assert.True(t, Levels("x", []Set{{}, {}}).IsEmpty())
}

func TestDecompose(t *testing.T) {
	a, b := suffix(".a"), suffix(".b")
	m := MatcherSet(a, Or(b, suffix(".c")))

	tr := Decompose(m, name("/r/x.b"))
	assert.False(t, tr.Result)
	require.Len(t, tr.Children, 2)
	assert.Equal(t, ".a", tr.Children[0].Name)
	assert.False(t, tr.Children[0].Result)
	assert.Equal(t, 1, tr.Children[0].Level)
	assert.True(t, tr.Children[1].Result)
	require.Len(t, tr.Children[1].Children, 2)
	assert.Equal(t, 2, tr.Children[1].Children[0].Level)

	out := tr.String()
	assert.Contains(t, out, "matcherSet(.a, or(.b, .c)): false")
	assert.Contains(t, out, ".b: true")
}

func TestDecompose_Deterministic(t *testing.T) {
	m := Or(suffix(".a"), Not(suffix(".b")))
	n := name("/r/x.b")
	first := Decompose(m, n)
	for i := 0; i < 5; i++ {
		again := Decompose(m, n)
		assert.Equal(t, first, again)
		assert.Equal(t, m.Matches(n), again.Result)
	}
}

func TestDecompose_Levels(t *testing.T) {
	s := Levels("gitignore", []Set{{Includes: suffix("keep.log")}, {Excludes: suffix(".log")}})
	tr := Decompose(s.Excludes, name("/r/keep.log"))
	assert.False(t, tr.Result)
	require.Len(t, tr.Children, 2)
	assert.True(t, tr.Children[0].Result, "first level decided")
	assert.False(t, tr.Children[1].Result)
}
