// Package scanerr defines the error taxonomy shared by every stage of a scan.
//
// Configuration errors are fatal and abort a run before any document is
// analysed. Document and archive errors are recoverable: the analyser records
// them on the document and carries on with the next sibling.
package scanerr

import (
	"github.com/cockroachdb/errors"
)

var (
	// ErrConfiguration marks a fatal, pre-scan configuration problem.
	ErrConfiguration = errors.New("configuration error")

	// ErrDocumentAnalysis marks a failure confined to a single document.
	ErrDocumentAnalysis = errors.New("document analysis error")

	// ErrArchiveRead marks an unreadable or corrupt archive.
	ErrArchiveRead = errors.New("archive read error")
)

// Configf builds a configuration error from a format string.
func Configf(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrConfiguration)
}

// Config marks err as a configuration error, adding msg as context.
// A nil err yields nil.
func Config(err error, msg string) error {
	if err == nil {
		return nil
	}
	return errors.Mark(errors.Wrap(err, msg), ErrConfiguration)
}

// Document marks err as a per-document failure for the named document.
func Document(err error, name string) error {
	if err == nil {
		return nil
	}
	return errors.Mark(errors.Wrapf(err, "analysing %s", name), ErrDocumentAnalysis)
}

// Archive marks err as an archive read failure for the named archive.
func Archive(err error, name string) error {
	if err == nil {
		return nil
	}
	return errors.Mark(errors.Wrapf(err, "reading archive %s", name), ErrArchiveRead)
}

// IsConfiguration reports whether err carries the configuration mark.
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// IsRecoverable reports whether err is confined to a document or archive.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrDocumentAnalysis) || errors.Is(err, ErrArchiveRead)
}
