package license

import (
	"regexp"

	"github.com/bartekus/licaudit/internal/document"
)

var spdxIdentifier = regexp.MustCompile(`SPDX-License-Identifier:\s([A-Za-z0-9.\-+]+)`)

// SPDXScanner extracts SPDX identifiers once per line for every SPDX matcher
// created from it. One scanner belongs to one collection session.
type SPDXScanner struct {
	line string
	ids  map[string]bool
	live bool
}

// NewSPDXScanner returns an empty scanner.
func NewSPDXScanner() *SPDXScanner {
	return &SPDXScanner{}
}

func (s *SPDXScanner) idsFor(line string) map[string]bool {
	if s.live && s.line == line {
		return s.ids
	}
	s.line, s.live = line, true
	s.ids = map[string]bool{}
	for _, m := range spdxIdentifier.FindAllStringSubmatch(line, -1) {
		s.ids[m[1]] = true
	}
	return s.ids
}

func (s *SPDXScanner) reset() {
	s.line, s.live, s.ids = "", false, nil
}

// Matcher returns a matcher for the SPDX short identifier id.
func (s *SPDXScanner) Matcher(id string) *SPDX {
	return &SPDX{id: id, scanner: s}
}

// SPDX matches an `SPDX-License-Identifier:` tag naming its identifier.
type SPDX struct {
	id      string
	scanner *SPDXScanner
	matched bool
}

func (m *SPDX) ID() string { return m.id }

func (m *SPDX) Match(_ document.Name, line string) bool {
	if !m.matched && m.scanner.idsFor(line)[m.id] {
		m.matched = true
	}
	return m.matched
}

func (m *SPDX) Finalize() bool { return m.matched }

func (m *SPDX) Reset() {
	m.matched = false
	m.scanner.reset()
}
