package analysis

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gabriel-vasile/mimetype"

	"github.com/bartekus/licaudit/internal/document"
	"github.com/bartekus/licaudit/internal/scanerr"
)

// DefaultMaxEntrySize bounds the bytes read from one archive member.
const DefaultMaxEntrySize int64 = 64 << 20

// EntrySeparator joins an archive name and the path of a member inside it.
const EntrySeparator = "#"

// ArchiveWalker iterates the members of zip, jar, tar, tar.gz and tar.bz2
// archives. Directories are skipped.
type ArchiveWalker struct {
	MaxEntrySize int64
}

// NewArchiveWalker returns a walker with the default entry size limit.
func NewArchiveWalker() *ArchiveWalker {
	return &ArchiveWalker{MaxEntrySize: DefaultMaxEntrySize}
}

// Walk calls fn for each member of the archive doc. Errors reading the
// archive are marked scanerr.ErrArchiveRead; errors from fn are returned
// unchanged.
func (w *ArchiveWalker) Walk(doc document.Document, fn func(document.Document) error) error {
	name := doc.Name()
	r, err := doc.Open()
	if err != nil {
		return scanerr.Archive(err, name.Localized())
	}
	data, err := io.ReadAll(r)
	r.Close()
	if err != nil {
		return scanerr.Archive(err, name.Localized())
	}

	visit := func(path string, content []byte) error {
		entry := document.NewName(name.Name()+EntrySeparator+"/"+strings.TrimPrefix(path, "/"), name.BaseName(), name.FSInfo())
		return fn(document.NewArchiveEntryDocument(entry, content))
	}

	var walkErr, fnErr error
	guard := func(path string, content []byte) error {
		if err := visit(path, content); err != nil {
			fnErr = err
			return err
		}
		return nil
	}

	m := mimetype.Detect(data)
	switch {
	case isMIME(m, "application/zip"):
		walkErr = w.walkZip(data, guard)
	case isMIME(m, "application/x-tar"):
		walkErr = w.walkTar(bytes.NewReader(data), guard)
	case isMIME(m, "application/gzip"):
		walkErr = w.walkCompressed(func() (io.Reader, error) { return gzip.NewReader(bytes.NewReader(data)) }, name, guard)
	case isMIME(m, "application/x-bzip2"):
		walkErr = w.walkCompressed(func() (io.Reader, error) { return bzip2.NewReader(bytes.NewReader(data)), nil }, name, guard)
	default:
		walkErr = errors.Newf("unsupported archive format %s", m.String())
	}

	if fnErr != nil {
		return fnErr
	}
	return scanerr.Archive(walkErr, name.Localized())
}

func isMIME(m *mimetype.MIME, mt string) bool {
	for ; m != nil; m = m.Parent() {
		if m.Is(mt) {
			return true
		}
	}
	return false
}

func (w *ArchiveWalker) read(r io.Reader, path string) ([]byte, error) {
	limit := w.MaxEntrySize
	if limit <= 0 {
		limit = DefaultMaxEntrySize
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, errors.Newf("entry %s exceeds %d bytes", path, limit)
	}
	return data, nil
}

func (w *ArchiveWalker) walkZip(data []byte, visit func(string, []byte) error) error {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return err
	}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return err
		}
		content, err := w.read(rc, f.Name)
		rc.Close()
		if err != nil {
			return err
		}
		if err := visit(f.Name, content); err != nil {
			return err
		}
	}
	return nil
}

func (w *ArchiveWalker) walkTar(r io.Reader, visit func(string, []byte) error) error {
	tr := tar.NewReader(r)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}
		content, err := w.read(tr, header.Name)
		if err != nil {
			return err
		}
		if err := visit(header.Name, content); err != nil {
			return err
		}
	}
}

// walkCompressed decompresses a single stream. A tarball is walked; any
// other payload is reported as one member named after the archive without
// its compression suffix.
func (w *ArchiveWalker) walkCompressed(open func() (io.Reader, error), name document.Name, visit func(string, []byte) error) error {
	r, err := open()
	if err != nil {
		return err
	}
	payload, err := w.read(r, name.ShortName())
	if err != nil {
		return err
	}
	if isMIME(mimetype.Detect(payload), "application/x-tar") {
		return w.walkTar(bytes.NewReader(payload), visit)
	}
	short := name.ShortName()
	if i := strings.LastIndexByte(short, '.'); i > 0 {
		short = short[:i]
	}
	return visit(short, payload)
}
