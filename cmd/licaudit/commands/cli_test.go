package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bartekus/licaudit/cmd/licaudit/internal/clierr"
	"github.com/bartekus/licaudit/internal/env"
	"github.com/bartekus/licaudit/internal/report"
)

func createFile(t *testing.T, dir, path, content string) {
	fullPath := filepath.Join(dir, path)
	require.NoError(t, os.MkdirAll(filepath.Dir(fullPath), 0755))
	require.NoError(t, os.WriteFile(fullPath, []byte(content), 0644))
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv(env.NoGitGlobalIgnore.Name, "1")
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func approvedTree(t *testing.T) string {
	dir := t.TempDir()
	createFile(t, dir, "main.go", "// SPDX-License-Identifier: Apache-2.0\npackage main\n")
	createFile(t, dir, ".gitignore", "*.log\n")
	createFile(t, dir, "debug.log", "noise\n")
	return dir
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "licaudit version")
}

func TestScan_Approved(t *testing.T) {
	dir := approvedTree(t)
	out, err := run(t, "scan", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "| approved | 1 |")
	assert.Contains(t, out, "| unapproved | 0 |")

	scan, err := report.NewStore(filepath.Join(dir, ".licaudit")).ReadLast()
	require.NoError(t, err)
	require.NotNil(t, scan)
	assert.Equal(t, 1, scan.Summary.Approved)
}

func TestScan_UnapprovedExitCode(t *testing.T) {
	dir := approvedTree(t)
	createFile(t, dir, "util.go", "package main\n")

	out, err := run(t, "scan", dir)
	require.Error(t, err)
	assert.Equal(t, clierr.ExitUnapproved, clierr.ExitCodeOf(err))
	assert.Contains(t, out, "| /util.go | ????? (?????) |")

	_, err = run(t, "scan", dir, "--fail-on-unapproved=false")
	assert.NoError(t, err)

	_, err = run(t, "scan", dir, "--exclude", "util.go")
	assert.NoError(t, err)
}

func TestScan_JSON(t *testing.T) {
	dir := approvedTree(t)
	out, err := run(t, "scan", dir, "--json")
	require.NoError(t, err)

	var scan report.Scan
	require.NoError(t, json.Unmarshal([]byte(out), &scan))
	assert.Equal(t, 1, scan.Summary.Approved)
}

func TestScan_ConfigErrorExitCode(t *testing.T) {
	dir := approvedTree(t)
	_, err := run(t, "scan", dir, "--exclude-std", "NOPE")
	require.Error(t, err)
	assert.Equal(t, clierr.ExitConfig, clierr.ExitCodeOf(err))

	_, err = run(t, "scan", dir, "--log-level", "loud")
	assert.Equal(t, clierr.ExitConfig, clierr.ExitCodeOf(err))
}

func TestReport(t *testing.T) {
	dir := approvedTree(t)
	_, err := run(t, "report", dir)
	assert.Equal(t, clierr.ExitInternal, clierr.ExitCodeOf(err))

	_, err = run(t, "scan", dir)
	require.NoError(t, err)
	out, err := run(t, "report", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "| approved | 1 |")

	out, err = run(t, "report", dir, "--reset")
	require.NoError(t, err)
	assert.Contains(t, out, "removed")
	_, err = run(t, "report", dir)
	assert.ErrorContains(t, err, "no scan stored")
}

func TestReport_CorruptStore(t *testing.T) {
	dir := approvedTree(t)
	createFile(t, dir, ".licaudit/last-scan.json", "{")

	_, err := run(t, "report", dir)
	require.Error(t, err)
	assert.Equal(t, clierr.ExitInternal, clierr.ExitCodeOf(err))
	assert.ErrorContains(t, err, "stored scan is unusable")
}

func TestExplain(t *testing.T) {
	dir := approvedTree(t)
	out, err := run(t, "explain", "--dir", dir, "debug.log", "main.go")
	require.NoError(t, err)
	assert.Contains(t, out, "debug.log: excluded")
	assert.Contains(t, out, "main.go: included")
	assert.Contains(t, out, "'excluded .gitignore'")
}

func TestCollections(t *testing.T) {
	out, err := run(t, "collections")
	require.NoError(t, err)
	assert.Contains(t, out, "| GIT | patterns, ignore files |")
	assert.Contains(t, out, "| HIDDEN_DIR | matcher |")
}

func TestLicenses(t *testing.T) {
	out, err := run(t, "licenses", "--approved", "MIT")
	require.NoError(t, err)
	assert.Contains(t, out, "| MIT | MIT | The MIT License | true |")
	assert.Contains(t, out, "| AL2.0 | AL | Apache License Version 2.0 | false |")
}

func TestEnv(t *testing.T) {
	out, err := run(t, "env")
	require.NoError(t, err)
	assert.Contains(t, out, env.NoGitGlobalIgnore.Name)
}

func TestHelpListsCommands(t *testing.T) {
	out, err := run(t, "--help")
	require.NoError(t, err)
	for _, c := range []string{"scan", "explain", "collections", "licenses", "report", "env"} {
		assert.Contains(t, out, c)
	}
}
