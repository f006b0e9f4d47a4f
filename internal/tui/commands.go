package tui

import (
	"database/sql"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/lotas/tabsalvage/internal/applog"
	"github.com/lotas/tabsalvage/internal/export"
	"github.com/lotas/tabsalvage/internal/pipeline"
	"github.com/lotas/tabsalvage/internal/selection"
	"github.com/lotas/tabsalvage/internal/storage"
	"github.com/lotas/tabsalvage/internal/types"
)

// --- Messages ---

// loadFileMsg asks Update to start loading a file, so the task handle is
// stored on the model Update returns.
type loadFileMsg struct{ path string }

// taskMsg carries one progress message of a load. closed is set once the
// task has nothing more to say.
type taskMsg struct {
	id     uuid.UUID
	msg    pipeline.Message
	closed bool
}

type previewMsg struct {
	id   uuid.UUID
	seq  int
	msgs []pipeline.Message
}

type savedMsg struct {
	id   uuid.UUID
	msgs []pipeline.Message
}

// --- Command helpers ---

func waitForTask(t *pipeline.Task) tea.Cmd {
	return func() tea.Msg {
		m, ok := <-t.Messages()
		return taskMsg{id: t.ID(), msg: m, closed: !ok}
	}
}

func collect(msgs *[]pipeline.Message) func(pipeline.Message) {
	return func(m pipeline.Message) { *msgs = append(*msgs, m) }
}

// previewCmd renders the preview off the UI goroutine. opts is a copy, so
// later selection changes do not race with it.
func previewCmd(rec *pipeline.FileRecord, groups types.AllTabGroups, opts selection.GenerateOptions, seq int) tea.Cmd {
	return func() tea.Msg {
		var msgs []pipeline.Message
		pipeline.Preview(rec, groups, opts, collect(&msgs))
		return previewMsg{id: rec.ID, seq: seq, msgs: msgs}
	}
}

type saveRequest struct {
	rec     *pipeline.FileRecord
	groups  types.AllTabGroups
	opts    selection.GenerateOptions
	path    string
	out     export.OutputOptions
	db      *sql.DB
	profile string
}

func saveCmd(req saveRequest) tea.Cmd {
	return func() tea.Msg {
		var msgs []pipeline.Message
		err := pipeline.Save(req.rec, req.groups, req.opts, req.path, req.out, collect(&msgs))
		if err == nil && req.db != nil {
			recordHistory(req)
		}
		return savedMsg{id: req.rec.ID, msgs: msgs}
	}
}

func recordHistory(req saveRequest) {
	entry := pipeline.HistoryEntry(req.rec, req.groups, req.opts, req.path, req.out.Format, req.profile)
	if _, err := storage.RecordExport(req.db, entry); err != nil {
		applog.Error("tui.history", err, "path", req.path)
	}
}
