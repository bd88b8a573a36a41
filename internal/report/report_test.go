package report

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bartekus/licaudit/internal/document"
	"github.com/bartekus/licaudit/internal/license"
	"github.com/bartekus/licaudit/internal/testutil/golden"
)

func doc(path string, t document.Type, claims ...document.LicenseClaim) document.Document {
	d := document.NewArchiveEntryDocument(document.NewName("/r/"+path, "/r", document.UnixFS), nil)
	d.MetaData().SetType(t)
	for _, c := range claims {
		d.MetaData().ReportLicense(c)
	}
	return d
}

func sampleScan() *Scan {
	s := NewScan("/r", time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	s.Add(doc("a.go", document.TypeStandard, document.LicenseClaim{FamilyCategory: "AL", LicenseID: "AL2.0", Approved: true}))
	s.Add(doc("b.go", document.TypeStandard, license.UnknownClaim()))
	s.Add(doc("c.go", document.TypeStandard, document.LicenseClaim{FamilyCategory: "GPL", LicenseID: "GPL"}))
	s.Add(doc("img.png", document.TypeBinary))
	s.Add(document.NewIgnoredDocument(document.NewName("/r/vendor", "/r", document.UnixFS), true))
	return s
}

func TestScan_Summary(t *testing.T) {
	s := sampleScan()
	assert.Equal(t, 3, s.Summary.Types[document.TypeStandard])
	assert.Equal(t, 1, s.Summary.Types[document.TypeBinary])
	assert.Equal(t, 1, s.Summary.Types[document.TypeIgnored])
	assert.Equal(t, 1, s.Summary.Approved)
	assert.Equal(t, 2, s.Summary.Unapproved)
	assert.Equal(t, 1, s.Summary.Unknown)

	paths := []string{}
	for _, r := range s.Unapproved() {
		paths = append(paths, r.Path)
	}
	assert.Equal(t, []string{"/b.go", "/c.go"}, paths)
}

func TestStore_RoundTrip(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), ".licaudit"))

	last, err := store.ReadLast()
	require.NoError(t, err)
	assert.Nil(t, last)

	require.NoError(t, store.WriteLast(sampleScan()))
	last, err = store.ReadLast()
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, "/r", last.Root)
	assert.Len(t, last.Documents, 5)
	assert.Equal(t, 2, last.Summary.Unapproved)

	require.NoError(t, store.Reset())
	last, err = store.ReadLast()
	require.NoError(t, err)
	assert.Nil(t, last)
}

func TestStore_Corrupt(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"truncated", "{", "decoding"},
		{"no root", `{"documents": []}`, "names no scan root"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, LastScanFile), []byte(tt.content), 0644))

			_, err := NewStore(dir).ReadLast()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrCorruptScan))
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestStore_ReadErrorIsNotCorrupt(t *testing.T) {
	dir := t.TempDir()
	// a directory where the file should be cannot be read
	require.NoError(t, os.MkdirAll(filepath.Join(dir, LastScanFile), 0755))

	_, err := NewStore(dir).ReadLast()
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrCorruptScan))
}

func TestStore_WriteLeavesNoStagingFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")
	store := NewStore(dir)
	require.NoError(t, store.WriteLast(sampleScan()))
	require.NoError(t, store.WriteLast(sampleScan()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, LastScanFile, entries[0].Name())

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

	require.NoError(t, store.Reset())
	require.NoError(t, store.Reset(), "resetting twice is fine")
	_, err = os.Stat(dir)
	assert.NoError(t, err, "state directory is kept")
}

func TestRenderSummary(t *testing.T) {
	out := RenderSummary(sampleScan(), true)
	assert.Contains(t, out, "## License audit: /r")
	assert.Contains(t, out, "| STANDARD | 3 |")
	assert.NotContains(t, out, "| ARCHIVE |")
	assert.Contains(t, out, "| unapproved | 2 |")
	assert.Contains(t, out, "| /c.go | GPL (GPL) |")
	assert.Contains(t, out, "| /b.go | ????? (?????) |")

	assert.NotContains(t, RenderSummary(sampleScan(), false), "Unapproved documents")

	golden.Assert(t, golden.TestdataDir(t), "summary", out)
}

func TestRenderTable(t *testing.T) {
	got := RenderTable([]string{"A", "B"}, [][]string{{"1", "2"}})
	assert.Equal(t, "| A | B |\n| --- | --- |\n| 1 | 2 |\n", got)
}
