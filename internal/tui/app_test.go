package tui

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/lotas/tabsalvage/internal/export"
	"github.com/lotas/tabsalvage/internal/firefox"
	"github.com/lotas/tabsalvage/internal/pipeline"
	"github.com/lotas/tabsalvage/internal/selection"
	"github.com/lotas/tabsalvage/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func window(title, url, tabTitle string) map[string]any {
	return map[string]any{"title": title, "tabs": []any{
		map[string]any{"entries": []any{map[string]any{"url": url, "title": tabTitle}}, "index": 1},
	}}
}

func sessionFile(t *testing.T) string {
	t.Helper()
	return writeSession(t, window("Work", "https://go.dev", "Go"), window("Home", "https://example.com", "Example"))
}

func writeSession(t *testing.T, windows ...any) string {
	t.Helper()
	plain, err := json.Marshal(map[string]any{"windows": windows})
	require.NoError(t, err)
	data, err := firefox.CompressMozLz4(plain)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "recovery.jsonlz4")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// drain feeds every message of the current task into the model.
func drain(t *testing.T, m Model) Model {
	t.Helper()
	for {
		msg := waitForTask(m.task)()
		next, _ := m.Update(msg)
		m = next.(Model)
		if tm := msg.(taskMsg); tm.closed {
			return m
		}
	}
}

// untilGroups feeds task messages into the model up to the one listing the
// windows.
func untilGroups(t *testing.T, m Model) Model {
	t.Helper()
	for {
		msg := waitForTask(m.task)().(taskMsg)
		require.False(t, msg.closed, "task ended before listing windows")
		next, _ := m.Update(msg)
		m = next.(Model)
		if msg.msg.Groups != nil {
			return m
		}
	}
}

// applyPreview renders the preview the model is waiting for.
func applyPreview(t *testing.T, m Model) Model {
	t.Helper()
	next, _ := m.Update(previewCmd(m.record, m.sel.Groups, m.sel.Options, m.previewSeq)())
	return next.(Model)
}

func started(t *testing.T, opts Options) Model {
	t.Helper()
	opts.Output = export.OutputOptions{Format: export.FormatMarkdown}
	opts.Pipeline = pipeline.DefaultOptions()
	m := NewModel(opts)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = next.(Model)
	next, _ = m.Update(m.Init()())
	return next.(Model)
}

func loadedWith(t *testing.T, opts Options) Model {
	t.Helper()
	m := drain(t, started(t, opts))
	require.NotNil(t, m.sel)
	return applyPreview(t, m)
}

func loaded(t *testing.T) Model {
	t.Helper()
	return loadedWith(t, Options{InputPath: sessionFile(t)})
}

func TestLoadPopulatesModel(t *testing.T) {
	m := loaded(t)
	assert.False(t, m.loading)
	assert.Equal(t, pipeline.StatusLoaded, m.status)
	assert.False(t, m.statusErr)
	assert.Len(t, m.sel.Groups.Open, 2)
	assert.Equal(t, 2, m.sel.SelectedGroups())
	assert.Contains(t, m.preview.View(), "Work")
}

func TestFirstPreviewDoesNotOverrideNewerSelection(t *testing.T) {
	m := untilGroups(t, started(t, Options{InputPath: sessionFile(t)}))
	require.NotNil(t, m.sel)
	first := m.previewSeq
	require.Positive(t, first)
	initial := previewCmd(m.record, m.sel.Groups, selection.DefaultOptions(), first)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{' '}})
	m = next.(Model)
	require.NotNil(t, cmd)
	next, _ = m.Update(cmd())
	m = next.(Model)
	require.Equal(t, 1, m.sel.SelectedGroups())

	next, _ = m.Update(initial())
	m = next.(Model)
	m = drain(t, m)

	assert.Contains(t, m.preview.View(), "Work")
	assert.NotContains(t, m.preview.View(), "example.com")
	assert.Equal(t, pipeline.StatusLoaded, m.status)
}

func TestDedupeAppliesToFirstPreview(t *testing.T) {
	path := writeSession(t,
		window("Work", "https://go.dev/doc", "Docs"),
		window("Home", "https://go.dev/doc", "Docs again"),
	)
	m := loadedWith(t, Options{InputPath: path, Dedupe: true})
	assert.True(t, m.sel.Options.DropDuplicates)
	assert.Equal(t, 1, strings.Count(m.preview.View(), "https://go.dev/doc"))
}

func TestStaleTaskMessagesAreIgnored(t *testing.T) {
	m := loaded(t)
	before := m.status

	stale := taskMsg{id: uuid.New(), msg: pipeline.Message{Status: "Failed to read file: boom", Err: assert.AnError}}
	next, cmd := m.Update(stale)
	m = next.(Model)
	assert.Nil(t, cmd)
	assert.Equal(t, before, m.status)
	assert.False(t, m.statusErr)

	old := previewMsg{id: m.recordID, seq: m.previewSeq - 1, msgs: []pipeline.Message{{Status: "old", HasPreview: true, Preview: "old"}}}
	next, _ = m.Update(old)
	m = next.(Model)
	assert.NotEqual(t, "old", m.status)
}

func TestToggleSelectionRefreshesPreview(t *testing.T) {
	m := loaded(t)
	k, ok := m.tree.SelectedKey()
	require.True(t, ok)
	assert.Equal(t, selection.Key{Partition: types.PartitionOpen, Index: 0}, k)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{' '}})
	m = next.(Model)
	require.NotNil(t, cmd)
	assert.Equal(t, pipeline.StatusPreviewing, m.status)
	assert.Equal(t, 1, m.sel.SelectedGroups())

	next, _ = m.Update(cmd())
	m = next.(Model)
	assert.Equal(t, pipeline.StatusLoaded, m.status)
	assert.Contains(t, m.preview.View(), "Go — https://go.dev")
	assert.NotContains(t, m.preview.View(), "example.com")
}

func TestDedupeToggle(t *testing.T) {
	m := loaded(t)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}})
	m = next.(Model)
	require.NotNil(t, cmd)
	assert.True(t, m.sel.Options.DropDuplicates)
	assert.Contains(t, m.View(), "dedupe: on")
}

func TestSaveWritesFile(t *testing.T) {
	m := loaded(t)
	out := filepath.Join(t.TempDir(), "links.md")
	m.output.SetValue(out)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	m = next.(Model)
	require.NotNil(t, cmd)
	assert.Equal(t, pipeline.StatusSaving, m.status)

	next, _ = m.Update(cmd())
	m = next.(Model)
	assert.Equal(t, pipeline.StatusSaved, m.status)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "## Work")
}

func TestSaveWithoutPath(t *testing.T) {
	m := loaded(t)
	m.output.SetValue("")
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	m = next.(Model)
	assert.Nil(t, cmd)
	assert.True(t, m.statusErr)
}

func TestCycleFormatKeepsExtension(t *testing.T) {
	m := NewModel(Options{Output: export.OutputOptions{Format: export.FormatMarkdown}, OutputPath: "/tmp/links.md"})
	m.cycleFormat()
	assert.Equal(t, export.FormatHTML, m.out.Format)
	assert.Equal(t, "/tmp/links.html", m.output.Value())

	m.output.SetValue("/tmp/custom.out")
	m.cycleFormat()
	assert.Equal(t, export.FormatPDF, m.out.Format)
	assert.Equal(t, "/tmp/custom.out", m.output.Value())
}

func TestNewLoadSupersedesOld(t *testing.T) {
	m := loaded(t)
	first := m.recordID

	next, _ := m.Update(loadFileMsg{path: sessionFile(t)})
	m = next.(Model)
	assert.NotEqual(t, first, m.recordID)
	assert.Nil(t, m.sel)

	next, _ = m.Update(taskMsg{id: first, msg: pipeline.Message{RecordID: first, Status: "stale"}})
	m = next.(Model)
	assert.NotEqual(t, "stale", m.status)

	m.task.Cancel()
}
