package document

import (
	"bytes"
	"io"
	"os"
	"sync"
)

// Type is the coarse classification of a document.
type Type string

const (
	TypeStandard Type = "STANDARD"
	TypeArchive  Type = "ARCHIVE"
	TypeBinary   Type = "BINARY"
	TypeNotice   Type = "NOTICE"
	TypeIgnored  Type = "IGNORED"
	TypeUnknown  Type = "UNKNOWN"
)

// Types lists every Type in report order.
func Types() []Type {
	return []Type{TypeStandard, TypeArchive, TypeBinary, TypeNotice, TypeIgnored, TypeUnknown}
}

// LicenseClaim records a license detected in a document header.
type LicenseClaim struct {
	FamilyCategory string `json:"family_category"`
	FamilyName     string `json:"family_name"`
	LicenseID      string `json:"license_id"`
	LicenseName    string `json:"license_name"`
	Notes          string `json:"notes,omitempty"`
	Approved       bool   `json:"approved"`
}

// MetaData is mutated by the analyser during a single pass.
type MetaData struct {
	mu           sync.Mutex
	docType      Type
	mediaType    string
	licenses     []LicenseClaim
	sampleHeader string
	errMsg       string
}

// Type returns the classification; unclassified documents are UNKNOWN.
func (m *MetaData) Type() Type {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.docType == "" {
		return TypeUnknown
	}
	return m.docType
}

// SetType sets the classification.
func (m *MetaData) SetType(t Type) {
	m.mu.Lock()
	m.docType = t
	m.mu.Unlock()
}

// MediaType returns the detected MIME type, if any.
func (m *MetaData) MediaType() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mediaType
}

// SetMediaType records the detected MIME type.
func (m *MetaData) SetMediaType(mt string) {
	m.mu.Lock()
	m.mediaType = mt
	m.mu.Unlock()
}

// ReportLicense appends a detected license.
func (m *MetaData) ReportLicense(c LicenseClaim) {
	m.mu.Lock()
	m.licenses = append(m.licenses, c)
	m.mu.Unlock()
}

// Licenses returns a copy of the detected licenses.
func (m *MetaData) Licenses() []LicenseClaim {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]LicenseClaim(nil), m.licenses...)
}

// Approved reports whether at least one license was found and all are approved.
func (m *MetaData) Approved() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.licenses) == 0 {
		return false
	}
	for _, l := range m.licenses {
		if !l.Approved {
			return false
		}
	}
	return true
}

// SampleHeader returns the retained header sample.
func (m *MetaData) SampleHeader() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sampleHeader
}

// SetSampleHeader stores the retained header sample.
func (m *MetaData) SetSampleHeader(s string) {
	m.mu.Lock()
	m.sampleHeader = s
	m.mu.Unlock()
}

// Err returns the recorded per-document error text.
func (m *MetaData) Err() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errMsg
}

// SetErr records a recoverable failure.
func (m *MetaData) SetErr(err error) {
	if err == nil {
		return
	}
	m.mu.Lock()
	m.errMsg = err.Error()
	m.mu.Unlock()
}

// Document is a scanned unit: a file, a directory or an archive entry.
type Document interface {
	Name() Name
	IsDirectory() bool
	Open() (io.ReadCloser, error)
	MetaData() *MetaData
}

// FileDocument is a document backed by the local file system.
type FileDocument struct {
	name  Name
	isDir bool
	meta  MetaData
}

// NewFileDocument stats the path behind name.
func NewFileDocument(name Name) (*FileDocument, error) {
	info, err := os.Stat(name.Name())
	if err != nil {
		return nil, err
	}
	return &FileDocument{name: name, isDir: info.IsDir()}, nil
}

// NewFile builds a file document from an already known directory flag.
func NewFile(name Name, isDir bool) *FileDocument {
	return &FileDocument{name: name, isDir: isDir}
}

func (d *FileDocument) Name() Name          { return d.name }
func (d *FileDocument) IsDirectory() bool   { return d.isDir }
func (d *FileDocument) MetaData() *MetaData { return &d.meta }

// Open opens the underlying file.
func (d *FileDocument) Open() (io.ReadCloser, error) {
	return os.Open(d.name.Name())
}

// ArchiveEntryDocument is an archive member held in memory.
type ArchiveEntryDocument struct {
	name Name
	data []byte
	meta MetaData
}

// NewArchiveEntryDocument wraps the content of one archive entry.
func NewArchiveEntryDocument(name Name, data []byte) *ArchiveEntryDocument {
	return &ArchiveEntryDocument{name: name, data: data}
}

func (d *ArchiveEntryDocument) Name() Name          { return d.name }
func (d *ArchiveEntryDocument) IsDirectory() bool   { return false }
func (d *ArchiveEntryDocument) MetaData() *MetaData { return &d.meta }

// Open returns a reader over the entry content.
func (d *ArchiveEntryDocument) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(d.data)), nil
}

// IgnoredDocument is a document excluded by the resolver. It is never opened.
type IgnoredDocument struct {
	name  Name
	isDir bool
	meta  MetaData
}

// NewIgnoredDocument builds an ignored document typed IGNORED.
func NewIgnoredDocument(name Name, isDir bool) *IgnoredDocument {
	d := &IgnoredDocument{name: name, isDir: isDir}
	d.meta.SetType(TypeIgnored)
	return d
}

func (d *IgnoredDocument) Name() Name          { return d.name }
func (d *IgnoredDocument) IsDirectory() bool   { return d.isDir }
func (d *IgnoredDocument) MetaData() *MetaData { return &d.meta }

// Open always fails.
func (d *IgnoredDocument) Open() (io.ReadCloser, error) {
	return nil, os.ErrPermission
}
