// Package analysis classifies documents and dispatches them to the header
// matcher or the archive walker.
package analysis

import (
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/bartekus/licaudit/internal/document"
)

// ContentTypeDetector reports the media type and document type of content.
type ContentTypeDetector interface {
	Detect(r io.Reader, name document.Name) (mediaType string, t document.Type, err error)
}

// TypeTable maps media types to document types. Media types without an entry
// are STANDARD when they are text and BINARY otherwise.
type TypeTable struct {
	types map[string]document.Type
	keys  []string
}

var defaultTypes = map[string]document.Type{
	"application/x-ibooks+zip": document.TypeArchive,
	"application/epub+zip":     document.TypeArchive,

	"application/vnd.wap.xhtml+xml": document.TypeStandard,
	"application/x-asp":             document.TypeStandard,
	"application/xhtml+xml":         document.TypeStandard,

	"application/pdf": document.TypeBinary,

	"application/zlib":           document.TypeArchive,
	"application/x-gzip":         document.TypeArchive,
	"application/gzip":           document.TypeArchive,
	"application/x-bzip":         document.TypeArchive,
	"application/x-bzip2":        document.TypeArchive,
	"application/x-compress":     document.TypeArchive,
	"application/x-java-pack200": document.TypeArchive,
	"application/x-lzma":         document.TypeArchive,
	"application/deflate64":      document.TypeArchive,
	"application/x-lz4":          document.TypeArchive,
	"application/x-snappy":       document.TypeArchive,
	"application/x-brotli":       document.TypeArchive,
	"application/x-xz":           document.TypeArchive,

	"application/x-tar":            document.TypeArchive,
	"application/java-archive":     document.TypeArchive,
	"application/jar":              document.TypeArchive,
	"application/x-arj":            document.TypeArchive,
	"application/x-archive":        document.TypeArchive,
	"application/zip":              document.TypeArchive,
	"application/x-cpio":           document.TypeArchive,
	"application/x-7z-compressed":  document.TypeArchive,
	"application/x-rar-compressed": document.TypeArchive,
	"application/x-xliff+zip":      document.TypeArchive,

	"application/x-xliff+xml":       document.TypeStandard,
	"application/xml":               document.TypeStandard,
	"image/svg+xml":                 document.TypeStandard,
	"application/x-fictionbook+xml": document.TypeStandard,
}

// DefaultTypeTable returns the built-in media type table.
func DefaultTypeTable() TypeTable {
	return NewTypeTable(defaultTypes)
}

// NewTypeTable copies types into a new table.
func NewTypeTable(types map[string]document.Type) TypeTable {
	return newTypeTable(maps.Clone(types))
}

func newTypeTable(types map[string]document.Type) TypeTable {
	return TypeTable{types: types, keys: slices.Sorted(maps.Keys(types))}
}

// With returns a copy of t with extra entries added.
func (t TypeTable) With(extra map[string]document.Type) TypeTable {
	out := maps.Clone(t.types)
	if out == nil {
		out = map[string]document.Type{}
	}
	maps.Copy(out, extra)
	return newTypeTable(out)
}

// Lookup classifies a single media type.
func (t TypeTable) Lookup(mediaType string) document.Type {
	if ty, ok := t.lookup(mediaType); ok {
		return ty
	}
	return document.TypeBinary
}

func (t TypeTable) lookup(mediaType string) (document.Type, bool) {
	mt := baseType(mediaType)
	if ty, ok := t.types[mt]; ok {
		return ty, true
	}
	if strings.HasPrefix(mt, "text/") {
		return document.TypeStandard, true
	}
	return "", false
}

// Classify walks the detected type and its ancestors, so JSON, whose parent
// is text/plain, is STANDARD. Entries that are aliases of a type are tried in
// sorted order.
func (t TypeTable) Classify(m *mimetype.MIME) document.Type {
	for ; m != nil; m = m.Parent() {
		if ty, ok := t.lookup(m.String()); ok {
			return ty
		}
		for _, mt := range t.keys {
			if m.Is(mt) {
				return t.types[mt]
			}
		}
	}
	return document.TypeBinary
}

func baseType(mediaType string) string {
	if i := strings.IndexByte(mediaType, ';'); i >= 0 {
		mediaType = mediaType[:i]
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

// MimeDetector detects content by its magic bytes.
type MimeDetector struct {
	table TypeTable
}

// NewMimeDetector returns a detector classifying with table.
func NewMimeDetector(table TypeTable) *MimeDetector {
	return &MimeDetector{table: table}
}

func (d *MimeDetector) Detect(r io.Reader, _ document.Name) (string, document.Type, error) {
	m, err := mimetype.DetectReader(r)
	if err != nil {
		return "", document.TypeUnknown, err
	}
	return baseType(m.String()), d.table.Classify(m), nil
}
