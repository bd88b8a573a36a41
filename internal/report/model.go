// Package report holds scan results, their JSON persistence and their
// rendering.
package report

import (
	"slices"
	"time"

	"github.com/bartekus/licaudit/internal/document"
	"github.com/bartekus/licaudit/internal/license"
)

// DocumentResult is the outcome for one document.
type DocumentResult struct {
	Path      string                  `json:"path"`
	Type      document.Type           `json:"type"`
	MediaType string                  `json:"media_type,omitempty"`
	Licenses  []document.LicenseClaim `json:"licenses,omitempty"`
	Approved  bool                    `json:"approved"`
	Sample    string                  `json:"sample,omitempty"`
	Error     string                  `json:"error,omitempty"`
}

// Summary counts results.
type Summary struct {
	Types      map[document.Type]int `json:"types"`
	Approved   int                   `json:"approved"`
	Unapproved int                   `json:"unapproved"`
	Unknown    int                   `json:"unknown"`
	Errors     int                   `json:"errors"`
}

// Scan is a complete run over one root.
type Scan struct {
	Root      string           `json:"root"`
	StartedAt time.Time        `json:"started_at"`
	Documents []DocumentResult `json:"documents"`
	Summary   Summary          `json:"summary"`
}

// NewScan starts an empty scan of root.
func NewScan(root string, started time.Time) *Scan {
	return &Scan{
		Root:      root,
		StartedAt: started.UTC(),
		Summary:   Summary{Types: map[document.Type]int{}},
	}
}

// Result converts an analysed document.
func Result(doc document.Document) DocumentResult {
	meta := doc.MetaData()
	return DocumentResult{
		Path:      doc.Name().LocalizedTo("/"),
		Type:      meta.Type(),
		MediaType: meta.MediaType(),
		Licenses:  meta.Licenses(),
		Approved:  meta.Approved(),
		Sample:    meta.SampleHeader(),
		Error:     meta.Err(),
	}
}

// Add records doc. Only STANDARD documents count towards approval.
func (s *Scan) Add(doc document.Document) {
	r := Result(doc)
	s.Documents = append(s.Documents, r)

	s.Summary.Types[r.Type]++
	if r.Error != "" {
		s.Summary.Errors++
	}
	if r.Type != document.TypeStandard {
		return
	}
	switch {
	case r.Approved:
		s.Summary.Approved++
	case isUnknown(r):
		s.Summary.Unknown++
		s.Summary.Unapproved++
	default:
		s.Summary.Unapproved++
	}
}

func isUnknown(r DocumentResult) bool {
	return slices.ContainsFunc(r.Licenses, func(c document.LicenseClaim) bool {
		return c.FamilyCategory == license.UnknownFamily.ID()
	})
}

// Unapproved returns the STANDARD documents lacking an approved license.
func (s *Scan) Unapproved() []DocumentResult {
	var out []DocumentResult
	for _, r := range s.Documents {
		if r.Type == document.TypeStandard && !r.Approved {
			out = append(out, r)
		}
	}
	return out
}
