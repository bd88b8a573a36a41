package matcher

import (
	"fmt"

	"github.com/disiqueira/gotree/v3"

	"github.com/bartekus/licaudit/internal/document"
)

// Trace is one node of an evaluation tree.
type Trace struct {
	Name     string   `json:"name"`
	Kind     string   `json:"kind"`
	Level    int      `json:"level"`
	Result   bool     `json:"result"`
	Children []*Trace `json:"children,omitempty"`
}

// Decompose evaluates m against n, recording every sub-matcher.
func Decompose(m *Matcher, n document.Name) *Trace {
	return decompose(m, n, 0)
}

func decompose(m *Matcher, n document.Name, level int) *Trace {
	t := &Trace{Name: m.name, Kind: m.kind.String(), Level: level, Result: m.Matches(n)}
	switch m.kind {
	case KindLevels:
		_, decided := evalLevels(m.levels, n)
		for i, s := range m.levels {
			lt := &Trace{
				Name:  fmt.Sprintf("level %d", i),
				Kind:  "level",
				Level: level + 1,
			}
			if s.Includes != nil {
				lt.Children = append(lt.Children, decompose(s.Includes, n, level+2))
			}
			if s.Excludes != nil {
				lt.Children = append(lt.Children, decompose(s.Excludes, n, level+2))
			}
			lt.Result = i == decided
			t.Children = append(t.Children, lt)
		}
	default:
		for _, c := range m.children {
			t.Children = append(t.Children, decompose(c, n, level+1))
		}
	}
	return t
}

// String renders the trace as an indented tree.
func (t *Trace) String() string {
	root := gotree.New(t.label())
	t.addChildren(root)
	return root.Print()
}

func (t *Trace) addChildren(parent gotree.Tree) {
	for _, c := range t.Children {
		c.addChildren(parent.Add(c.label()))
	}
}

func (t *Trace) label() string {
	return fmt.Sprintf("%s: %t", t.Name, t.Result)
}
