package audit

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bartekus/licaudit/internal/config"
	"github.com/bartekus/licaudit/internal/document"
	"github.com/bartekus/licaudit/internal/env"
	"github.com/bartekus/licaudit/internal/report"
	"github.com/bartekus/licaudit/internal/scanerr"
)

func createFile(t *testing.T, dir, path, content string) {
	fullPath := filepath.Join(dir, path)
	require.NoError(t, os.MkdirAll(filepath.Dir(fullPath), 0755))
	require.NoError(t, os.WriteFile(fullPath, []byte(content), 0644))
}

func load(t *testing.T, dir string) *config.Config {
	t.Helper()
	t.Setenv(env.NoGitGlobalIgnore.Name, "1")
	cfg, err := config.Load(viper.New(), dir, "")
	require.NoError(t, err)
	return cfg
}

func byPath(scan *report.Scan) map[string]report.DocumentResult {
	out := map[string]report.DocumentResult{}
	for _, d := range scan.Documents {
		out[d.Path] = d
	}
	return out
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	createFile(t, dir, ".gitignore", "build/\n")
	createFile(t, dir, "main.go", "// SPDX-License-Identifier: Apache-2.0\npackage main\n")
	createFile(t, dir, "util.go", "package main\n")
	createFile(t, dir, "NOTICE", "Acme\n")
	createFile(t, dir, "build/gen.go", "package gen\n")
	createFile(t, dir, ".git/config", "[core]\n")

	a, err := New(load(t, dir))
	require.NoError(t, err)
	scan, err := a.Run(context.Background())
	require.NoError(t, err)

	docs := byPath(scan)
	assert.True(t, docs["/main.go"].Approved)
	assert.False(t, docs["/util.go"].Approved)
	assert.Equal(t, document.TypeNotice, docs["/NOTICE"].Type)
	assert.Equal(t, document.TypeIgnored, docs["/build"].Type)
	assert.Equal(t, document.TypeIgnored, docs["/.git"].Type)
	assert.NotContains(t, docs, "/build/gen.go")

	assert.Equal(t, 1, scan.Summary.Approved)
	assert.Equal(t, 1, scan.Summary.Unapproved)
}

func TestRun_ArchiveEntriesAreReported(t *testing.T) {
	dir := t.TempDir()
	createFile(t, dir, "licaudit.yaml", "archive-recursion: true\n")

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("src/a.go")
	require.NoError(t, err)
	_, err = w.Write([]byte("// SPDX-License-Identifier: MIT\npackage a\n"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	createFile(t, dir, "lib.zip", buf.String())

	a, err := New(load(t, dir))
	require.NoError(t, err)
	scan, err := a.Run(context.Background())
	require.NoError(t, err)

	docs := byPath(scan)
	assert.Equal(t, document.TypeArchive, docs["/lib.zip"].Type)
	assert.Empty(t, docs["/lib.zip"].Error)
	assert.True(t, docs["/lib.zip#/src/a.go"].Approved)
	assert.NotContains(t, docs, "/.licaudit/last-scan.json")
}

func TestNew_ConfigurationErrors(t *testing.T) {
	dir := t.TempDir()
	cfg := load(t, dir)
	cfg.ExcludeFiles = []string{filepath.Join(dir, "missing")}

	_, err := New(cfg)
	assert.True(t, scanerr.IsConfiguration(err))

	cfg = load(t, dir)
	cfg.Excludes = []string{"%regex[(]"}
	_, err = New(cfg)
	assert.True(t, scanerr.IsConfiguration(err))
}

func TestTypeTable_TextTypes(t *testing.T) {
	dir := t.TempDir()
	createFile(t, dir, "licaudit.yaml", "text-types: [application/x-sh]\n")
	cfg := load(t, dir)

	table := TypeTable(cfg)
	assert.Equal(t, document.TypeStandard, table.Lookup("application/x-sh"))
	assert.Equal(t, document.TypeBinary, TypeTable(&config.Config{}).Lookup("application/x-sh"))
	assert.Equal(t, document.TypeArchive, table.Lookup("application/zip"))
}
