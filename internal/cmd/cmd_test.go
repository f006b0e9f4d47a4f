package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lotas/tabsalvage/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("TABSALVAGE_CONFIG", filepath.Join(dir, "missing.toml"))
	t.Setenv("TABSALVAGE_LOG_DIR", filepath.Join(dir, "logs"))
	t.Setenv("TABSALVAGE_DB_PATH", filepath.Join(dir, "history.db"))
	return dir
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := newRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writeSessionJSON(t *testing.T, dir string) string {
	t.Helper()
	plain, err := json.Marshal(map[string]any{
		"windows": []any{
			map[string]any{"title": "Work", "tabs": []any{
				map[string]any{"entries": []any{map[string]any{"url": "https://example.com", "title": "Example"}}, "index": 1},
			}},
		},
		"_closedWindows": []any{
			map[string]any{"title": "Old", "closedAt": 1700000000000, "tabs": []any{
				map[string]any{"entries": []any{map[string]any{"url": "https://old.example", "title": "Old page"}}, "index": 1},
			}},
		},
	})
	require.NoError(t, err)
	path := filepath.Join(dir, "session.json")
	require.NoError(t, os.WriteFile(path, plain, 0o644))
	return path
}

// packed returns a mozlz4 session file built through the pack command.
func packed(t *testing.T, dir string) string {
	t.Helper()
	out := filepath.Join(dir, "recovery.jsonlz4")
	stdout, _, err := run(t, "pack", writeSessionJSON(t, dir), out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Wrote "+out)
	return out
}

func TestFormats(t *testing.T) {
	setupEnv(t)
	stdout, _, err := run(t, "formats")
	require.NoError(t, err)
	assert.Contains(t, stdout, "markdown")
	assert.Contains(t, stdout, ".pdf")
	assert.Contains(t, stdout, "yaml")
}

func TestPackRejectsNonSession(t *testing.T) {
	dir := setupEnv(t)
	in := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(in, []byte(`[1, 2]`), 0o644))
	_, _, err := run(t, "pack", in, filepath.Join(dir, "out.jsonlz4"))
	assert.Error(t, err)

	_, _, err = run(t, "pack", "--no-validate", in, filepath.Join(dir, "out.jsonlz4"))
	assert.NoError(t, err)
}

func TestUnpackRoundTrip(t *testing.T) {
	dir := setupEnv(t)
	src := packed(t, dir)
	stdout, _, err := run(t, "unpack", src)
	require.NoError(t, err)

	want, err := os.ReadFile(filepath.Join(dir, "session.json"))
	require.NoError(t, err)
	assert.Equal(t, string(want), stdout)
}

func TestGroups(t *testing.T) {
	dir := setupEnv(t)
	src := packed(t, dir)
	stdout, stderr, err := run(t, "groups", src)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Work")
	assert.Contains(t, stdout, "Old")
	assert.Contains(t, stdout, "2 tabs, 0 duplicates")
	assert.Contains(t, stderr, pipeline.StatusReading)
}

func TestExportToStdout(t *testing.T) {
	dir := setupEnv(t)
	src := packed(t, dir)
	stdout, stderr, err := run(t, "export", "-q", "--format", "markdown", src)
	require.NoError(t, err)
	assert.Empty(t, stderr)
	assert.Contains(t, stdout, "## Work")
	assert.Contains(t, stdout, "[Example](https://example.com)")
	assert.NotContains(t, stdout, "old.example", "closed windows are off by default")
}

func TestExportToFileRecordsHistory(t *testing.T) {
	dir := setupEnv(t)
	src := packed(t, dir)
	out := filepath.Join(dir, "links.html")

	_, _, err := run(t, "export", "-q", "--closed", "all", "--out", out, src)
	require.NoError(t, err)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<!DOCTYPE html>", "format follows the extension")
	assert.Contains(t, string(data), "https://old.example")

	_, _, err = run(t, "export", "-q", "--out", out, src)
	assert.Error(t, err, "existing file is kept without --overwrite")

	stdout, _, err := run(t, "history")
	require.NoError(t, err)
	assert.Contains(t, stdout, out)
	assert.Contains(t, stdout, "html")
}

func TestExportErrors(t *testing.T) {
	dir := setupEnv(t)
	src := packed(t, dir)

	_, _, err := run(t, "export", "--format", "pdf", src)
	assert.ErrorContains(t, err, "needs --out")

	_, _, err = run(t, "export", "--open", "x", src)
	assert.ErrorContains(t, err, "--open")

	_, _, err = run(t, "export", "--format", "docx", src)
	assert.Error(t, err)

	_, _, err = run(t, "export", filepath.Join(dir, "session.json"))
	require.Error(t, err, "plain JSON is not a mozlz4 container")
	assert.True(t, strings.HasPrefix(err.Error(), pipeline.StatusDecompressFail+": "), "got %q", err)
}

func TestExportWarnsAboutUnknownIndexes(t *testing.T) {
	dir := setupEnv(t)
	src := packed(t, dir)
	stdout, stderr, err := run(t, "export", "-q", "--open", "0,5", src)
	require.NoError(t, err)
	assert.Contains(t, stderr, "no open window with index 5")
	assert.Contains(t, stdout, "Work")
}

func TestHistoryEmpty(t *testing.T) {
	setupEnv(t)
	stdout, _, err := run(t, "history")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No exports found.")
}
