package exclusion

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bartekus/licaudit/internal/document"
	"github.com/bartekus/licaudit/internal/env"
)

func createFile(t *testing.T, dir, path string, content ...string) {
	fullPath := filepath.Join(dir, path)
	err := os.MkdirAll(filepath.Dir(fullPath), 0755)
	require.NoError(t, err)

	data := ""
	if len(content) > 0 {
		data = content[0]
	}
	err = os.WriteFile(fullPath, []byte(data), 0644)
	require.NoError(t, err)
}

func createDir(t *testing.T, dir, path string) {
	require.NoError(t, os.MkdirAll(filepath.Join(dir, path), 0755))
}

// newRoot returns a scratch tree with the global git ignore disabled.
func newRoot(t *testing.T) (string, document.Name) {
	t.Setenv(env.NoGitGlobalIgnore.Name, "1")
	dir := t.TempDir()
	return dir, document.Root(dir, document.UnixFS)
}
