package walker

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bartekus/licaudit/internal/document"
	"github.com/bartekus/licaudit/internal/env"
	"github.com/bartekus/licaudit/internal/exclusion"
)

func createFile(t *testing.T, dir, path string, content ...string) {
	fullPath := filepath.Join(dir, path)
	require.NoError(t, os.MkdirAll(filepath.Dir(fullPath), 0755))
	data := ""
	if len(content) > 0 {
		data = content[0]
	}
	require.NoError(t, os.WriteFile(fullPath, []byte(data), 0644))
}

type visit struct {
	path    string
	ignored bool
}

func walk(t *testing.T, w *Walker) []visit {
	t.Helper()
	var got []visit
	err := w.Walk(context.Background(), func(d document.Document) error {
		got = append(got, visit{d.Name().Localized(), d.MetaData().Type() == document.TypeIgnored})
		return nil
	})
	require.NoError(t, err)
	return got
}

func TestWalk_OrderFilesBeforeDirs(t *testing.T) {
	dir := t.TempDir()
	createFile(t, dir, "b.txt")
	createFile(t, dir, "a/z.txt")
	createFile(t, dir, "a/y/x.txt")
	createFile(t, dir, "c.txt")

	got := walk(t, New(document.Root(dir, document.UnixFS), nil))
	assert.Equal(t, []visit{
		{"/b.txt", false},
		{"/c.txt", false},
		{"/a/z.txt", false},
		{"/a/y/x.txt", false},
	}, got)
}

func TestWalk_ExcludedEntriesAreIgnoredAndNotDescended(t *testing.T) {
	t.Setenv(env.NoGitGlobalIgnore.Name, "1")
	dir := t.TempDir()
	createFile(t, dir, ".gitignore", "*.log\nbuild/\n")
	createFile(t, dir, "main.go")
	createFile(t, dir, "debug.log")
	createFile(t, dir, "build/out.go")

	root := document.Root(dir, document.UnixFS)
	active, err := exclusion.NewResolver(exclusion.ResolverOptions{
		FileProcessorCollections: []exclusion.Collection{exclusion.Git},
	}).Resolve(root)
	require.NoError(t, err)

	got := walk(t, New(root, active))
	assert.Equal(t, []visit{
		{"/.gitignore", true},
		{"/debug.log", true},
		{"/main.go", false},
		{"/build", true},
	}, got)
}

func TestWalk_FnErrorAborts(t *testing.T) {
	dir := t.TempDir()
	createFile(t, dir, "a.txt")
	createFile(t, dir, "b.txt")

	boom := errors.New("boom")
	calls := 0
	err := New(document.Root(dir, document.UnixFS), nil).Walk(context.Background(), func(document.Document) error {
		calls++
		return boom
	})
	assert.Same(t, boom, err)
	assert.Equal(t, 1, calls)
}

func TestWalk_MissingRoot(t *testing.T) {
	root := document.Root(filepath.Join(t.TempDir(), "missing"), document.UnixFS)
	err := New(root, nil).Walk(context.Background(), func(document.Document) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listing /")
}

func TestWalk_Cancelled(t *testing.T) {
	dir := t.TempDir()
	createFile(t, dir, "a.txt")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := New(document.Root(dir, document.UnixFS), nil).Walk(ctx, func(document.Document) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWalk_DecomposeOnUse(t *testing.T) {
	t.Setenv(env.DecomposeOnUse.Name, "true")
	dir := t.TempDir()
	createFile(t, dir, "a.txt")

	w := New(document.Root(dir, document.UnixFS), nil)
	assert.True(t, w.decompose)
	assert.Len(t, walk(t, w), 1)
}
