// SPDX-License-Identifier: AGPL-3.0-or-later

// Package header streams a document's lines through a license collection
// until a license matches or the document is exhausted.
package header

import (
	"bufio"
	"io"
	"strings"

	log "github.com/charmbracelet/log"

	"github.com/bartekus/licaudit/internal/document"
	"github.com/bartekus/licaudit/internal/license"
	"github.com/bartekus/licaudit/internal/scanerr"
)

// DefaultMaxRetainedLines is the sample size kept for unmatched documents.
const DefaultMaxRetainedLines = 50

// State is the worker's position in a document.
type State int

const (
	Reading State = iota
	Matched
	Exhausted
	Failed
)

func (s State) String() string {
	switch s {
	case Reading:
		return "reading"
	case Matched:
		return "matched"
	case Exhausted:
		return "exhausted"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Approver decides whether a matched license is approved.
type Approver func(*license.License) bool

// Worker checks document headers.
type Worker struct {
	maxRetained int
	approve     Approver
}

// NewWorker returns a worker keeping at most maxRetained sample lines.
func NewWorker(maxRetained int, approve Approver) (*Worker, error) {
	if maxRetained < 0 {
		return nil, scanerr.Configf("max retained header lines must not be negative, got %d", maxRetained)
	}
	if approve == nil {
		approve = func(*license.License) bool { return false }
	}
	return &Worker{maxRetained: maxRetained, approve: approve}, nil
}

// Check reads doc line by line, offering each line to coll. The outcome is
// recorded on the document's metadata and coll is reset before returning.
func (w *Worker) Check(doc document.Document, coll *license.Collection) State {
	defer coll.Reset()

	meta := doc.MetaData()
	r, err := doc.Open()
	if err != nil {
		return w.fail(doc, err)
	}
	defer r.Close()

	var (
		sample   strings.Builder
		retained int
		name     = doc.Name()
	)
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			line = strings.TrimRight(line, "\r\n")
			if retained < w.maxRetained {
				sample.WriteString(line)
				sample.WriteByte('\n')
				retained++
			}
			if coll.Match(name, line) {
				l := coll.Matched()
				meta.ReportLicense(l.Claim(w.approve(l)))
				return Matched
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return w.fail(doc, err)
		}
	}

	if coll.Finalize() {
		l := coll.Matched()
		meta.ReportLicense(l.Claim(w.approve(l)))
		return Matched
	}
	meta.ReportLicense(license.UnknownClaim())
	meta.SetSampleHeader(sample.String())
	return Exhausted
}

func (w *Worker) fail(doc document.Document, err error) State {
	err = scanerr.Document(err, doc.Name().Localized())
	meta := doc.MetaData()
	meta.SetType(document.TypeUnknown)
	meta.SetErr(err)
	log.Warn("header check failed", "document", doc.Name().Localized(), "err", err)
	return Failed
}
