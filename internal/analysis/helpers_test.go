package analysis

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bartekus/licaudit/internal/document"
	"github.com/bartekus/licaudit/internal/header"
	"github.com/bartekus/licaudit/internal/license"
)

func createFile(t *testing.T, dir, path string, content []byte) document.Document {
	t.Helper()
	fullPath := filepath.Join(dir, path)
	require.NoError(t, os.MkdirAll(filepath.Dir(fullPath), 0755))
	require.NoError(t, os.WriteFile(fullPath, content, 0644))

	doc, err := document.NewFileDocument(document.NewName(fullPath, dir, document.DefaultFSInfo()))
	require.NoError(t, err)
	return doc
}

func memDoc(path string, content []byte) *document.ArchiveEntryDocument {
	return document.NewArchiveEntryDocument(document.NewName("/r/"+path, "/r", document.UnixFS), content)
}

type member struct {
	name    string
	content string
}

func zipBytes(t *testing.T, members ...member) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, m := range members {
		w, err := zw.Create(m.name)
		require.NoError(t, err)
		_, err = w.Write([]byte(m.content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func tarBytes(t *testing.T, members ...member) []byte {
	t.Helper()
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	require.NoError(t, tw.WriteHeader(&tar.Header{Name: "dir/", Typeflag: tar.TypeDir, Mode: 0755}))
	for _, m := range members {
		require.NoError(t, tw.WriteHeader(&tar.Header{Name: m.name, Typeflag: tar.TypeReg, Mode: 0644, Size: int64(len(m.content))}))
		_, err := tw.Write([]byte(m.content))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	return buf.Bytes()
}

func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	_, err := gw.Write(data)
	require.NoError(t, err)
	require.NoError(t, gw.Close())
	return buf.Bytes()
}

func newAnalyser(t *testing.T, recurse bool) *Analyser {
	t.Helper()
	catalog := license.Builtin()
	worker, err := header.NewWorker(header.DefaultMaxRetainedLines, catalog.Approver())
	require.NoError(t, err)
	a, err := NewAnalyser(Options{
		Pool:             catalog.NewPool(),
		Worker:           worker,
		ArchiveRecursion: recurse,
	})
	require.NoError(t, err)
	return a
}

func removeFile(doc document.Document) error {
	return os.Remove(doc.Name().Name())
}
