// SPDX-License-Identifier: AGPL-3.0-or-later

// Package license implements the header matcher protocol and the license
// model built on it.
//
// Matchers are stateful per document: Match is offered one header line at a
// time, Finalize is called once the document has no more lines, and Reset
// restores the state a matcher had before its first line. A matcher instance
// must not be shared between goroutines; use a Pool.
package license

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/bartekus/licaudit/internal/document"
)

// Matcher is a resettable, line-at-a-time header matcher.
//
// Match reports whether the matcher is satisfied after line. A matcher that
// can only decide once the whole document is known reports false from Match
// and gives its answer from Finalize.
type Matcher interface {
	ID() string
	Match(doc document.Name, line string) bool
	Finalize() bool
	Reset()
}

// FullText matches a license body regardless of wrapping, punctuation or case.
// Only letters and digits are compared.
type FullText struct {
	id        string
	full      string
	firstLine string
	buf       strings.Builder
	matched   bool
}

// NewFullText returns a full text matcher for text.
func NewFullText(id, text string) *FullText {
	full := prune(text)
	first := ""
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		first = prune(text[:i])
	}
	if first == "" {
		first = full[:min(20, len(full))]
	}
	return &FullText{id: id, full: full, firstLine: first}
}

func (m *FullText) ID() string { return m.id }

// Match accumulates pruned text from the first occurrence of the first line
// of the license and compares once enough text has been seen.
func (m *FullText) Match(_ document.Name, line string) bool {
	if m.matched {
		return true
	}
	p := prune(line)
	if p == "" || m.full == "" {
		return false
	}
	if m.buf.Len() == 0 {
		i := strings.Index(p, m.firstLine)
		if i < 0 {
			return false
		}
		p = p[i:]
	}
	m.buf.WriteString(p)

	for m.buf.Len() >= len(m.full) {
		seen := m.buf.String()
		if strings.Contains(seen, m.full) {
			m.matched = true
			return true
		}
		m.buf.Reset()
		i := strings.Index(seen[1:], m.firstLine)
		if i < 0 {
			return false
		}
		m.buf.WriteString(seen[1+i:])
	}
	return false
}

func (m *FullText) Finalize() bool { return m.matched }

func (m *FullText) Reset() {
	m.buf.Reset()
	m.matched = false
}

func prune(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

var copyrightMarker = regexp.MustCompile(`(?:\([Cc]\)|©|Copyright\b)`)

// Copyright matches a copyright line: a marker, a year or year range and,
// when configured, an owner. The first matching line is sticky.
type Copyright struct {
	id       string
	date     *regexp.Regexp
	owner    string
	answered bool
}

// NewCopyright builds a copyright matcher. Empty start accepts any four digit
// year or year range; empty stop means a single year. Empty owner accepts any.
func NewCopyright(id, start, stop, owner string) (*Copyright, error) {
	var expr string
	switch {
	case start == "":
		expr = `^\d{4}(?:\s?-\s?\d{4})?\b`
	case stop == "":
		expr = fmt.Sprintf(`^%s\b`, regexp.QuoteMeta(start))
	default:
		expr = fmt.Sprintf(`^%s\s?-\s?%s\b`, regexp.QuoteMeta(start), regexp.QuoteMeta(stop))
	}
	date, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &Copyright{id: id, date: date, owner: owner}, nil
}

func (m *Copyright) ID() string { return m.id }

func (m *Copyright) Match(_ document.Name, line string) bool {
	if m.answered {
		return true
	}
	loc := copyrightMarker.FindStringIndex(line)
	if loc == nil {
		return false
	}
	rest := line[loc[1]:]
	// Accept repeated markers such as "Copyright (c)".
	for {
		rest = strings.TrimLeft(rest, " \t")
		next := copyrightMarker.FindStringIndex(rest)
		if next == nil || next[0] != 0 {
			break
		}
		rest = rest[next[1]:]
	}

	d := m.date.FindStringIndex(rest)
	if d == nil {
		return false
	}
	rest = strings.TrimLeft(rest[d[1]:], " \t,")
	if m.owner != "" && !strings.HasPrefix(rest, m.owner) {
		return false
	}
	m.answered = true
	return true
}

func (m *Copyright) Finalize() bool { return m.answered }

func (m *Copyright) Reset() { m.answered = false }

// Substring matches the first line containing any of its substrings.
type Substring struct {
	id      string
	values  []string
	matched bool
}

// NewSubstring returns a substring matcher.
func NewSubstring(id string, values ...string) *Substring {
	return &Substring{id: id, values: values}
}

func (m *Substring) ID() string { return m.id }

func (m *Substring) Match(_ document.Name, line string) bool {
	if m.matched {
		return true
	}
	for _, v := range m.values {
		if strings.Contains(line, v) {
			m.matched = true
			return true
		}
	}
	return false
}

func (m *Substring) Finalize() bool { return m.matched }

func (m *Substring) Reset() { m.matched = false }

// Regex matches the first line in which its expression is found.
type Regex struct {
	id      string
	re      *regexp.Regexp
	matched bool
}

// NewRegex compiles expr.
func NewRegex(id, expr string) (*Regex, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &Regex{id: id, re: re}, nil
}

func (m *Regex) ID() string { return m.id }

func (m *Regex) Match(_ document.Name, line string) bool {
	if !m.matched && m.re.MatchString(line) {
		m.matched = true
	}
	return m.matched
}

func (m *Regex) Finalize() bool { return m.matched }

func (m *Regex) Reset() { m.matched = false }

// Not inverts a matcher. Absence of a match is only known at the end of the
// document, so Match never reports true and the decision is made by Finalize.
type Not struct {
	id    string
	inner Matcher
	fired bool
}

// NewNot wraps inner.
func NewNot(id string, inner Matcher) *Not {
	return &Not{id: id, inner: inner}
}

func (m *Not) ID() string { return m.id }

func (m *Not) Match(doc document.Name, line string) bool {
	if !m.fired && m.inner.Match(doc, line) {
		m.fired = true
	}
	return false
}

func (m *Not) Finalize() bool {
	return !m.fired && !m.inner.Finalize()
}

func (m *Not) Reset() {
	m.inner.Reset()
	m.fired = false
}

// Any matches as soon as one child matches. Every child sees every line until
// then so that accumulating children keep their state.
type Any struct {
	id       string
	children []Matcher
	matched  bool
}

// NewAny combines children.
func NewAny(id string, children ...Matcher) *Any {
	return &Any{id: id, children: children}
}

func (m *Any) ID() string { return m.id }

func (m *Any) Match(doc document.Name, line string) bool {
	if m.matched {
		return true
	}
	for _, c := range m.children {
		if c.Match(doc, line) {
			m.matched = true
		}
	}
	return m.matched
}

func (m *Any) Finalize() bool {
	if m.matched {
		return true
	}
	for _, c := range m.children {
		if c.Finalize() {
			m.matched = true
		}
	}
	return m.matched
}

func (m *Any) Reset() {
	m.matched = false
	for _, c := range m.children {
		c.Reset()
	}
}

// All matches once every child has matched on some line. It expresses
// sequential composition such as a copyright line followed by a license text.
// A Not child holds the combination back until Finalize.
type All struct {
	id       string
	children []Matcher
}

// NewAll combines children.
func NewAll(id string, children ...Matcher) *All {
	return &All{id: id, children: children}
}

func (m *All) ID() string { return m.id }

func (m *All) Match(doc document.Name, line string) bool {
	all := len(m.children) > 0
	for _, c := range m.children {
		if !c.Match(doc, line) {
			all = false
		}
	}
	return all
}

func (m *All) Finalize() bool {
	all := len(m.children) > 0
	for _, c := range m.children {
		if !c.Finalize() {
			all = false
		}
	}
	return all
}

func (m *All) Reset() {
	for _, c := range m.children {
		c.Reset()
	}
}
