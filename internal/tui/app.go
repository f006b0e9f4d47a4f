package tui

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/lotas/tabsalvage/internal/export"
	"github.com/lotas/tabsalvage/internal/pipeline"
	"github.com/lotas/tabsalvage/internal/selection"
	"github.com/lotas/tabsalvage/internal/types"
)

// TreeWidthPct is the percentage of terminal width used for the window tree.
const TreeWidthPct = 45

// Options configure a TUI session.
type Options struct {
	Profiles   []types.Profile
	InputPath  string // loaded on start; empty shows the source picker
	OutputPath string
	Output     export.OutputOptions
	Fallback   selection.Policy
	Dedupe     bool // drop tabs repeating an earlier page
	Pipeline   pipeline.Options
	DB         *sql.DB // export history; optional
	Profile    string  // recorded with each export
}

type editTarget int

const (
	editNone editTarget = iota
	editInput
	editOutput
)

// --- Model ---

type Model struct {
	opts Options
	keys keyMap
	help help.Model

	// Source selection
	picker     SourcePicker
	showPicker bool

	// Current load. Messages from any other record ID are stale.
	task     *pipeline.Task
	recordID uuid.UUID
	record   *pipeline.FileRecord
	loading  bool
	spinner  spinner.Model

	// Parsed session
	tree       TreeModel
	sel        *selection.Model
	preview    viewport.Model
	previewSeq int

	// Output settings
	input   textinput.Model
	output  textinput.Model
	editing editTarget
	out     export.OutputOptions

	status    string
	statusErr bool
	width     int
	height    int
}

func NewModel(opts Options) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	in := textinput.New()
	in.Prompt = "Input: "
	in.Placeholder = "path to recovery.jsonlz4"
	in.CharLimit = 4096
	in.SetValue(opts.InputPath)

	out := textinput.New()
	out.Prompt = "Output: "
	out.Placeholder = "path to write links to"
	out.CharLimit = 4096
	out.SetValue(opts.OutputPath)

	m := Model{
		opts:    opts,
		keys:    newKeyMap(),
		help:    help.New(),
		picker:  NewSourcePicker(opts.Profiles),
		spinner: sp,
		preview: viewport.New(0, 0),
		input:   in,
		output:  out,
		out:     opts.Output,
	}
	if !m.out.Format.Valid() {
		m.out.Format = export.FormatMarkdown
	}
	if opts.InputPath == "" {
		m.showPicker = true
	}
	return m
}

func (m Model) Init() tea.Cmd {
	if m.opts.InputPath == "" {
		return nil
	}
	path := m.opts.InputPath
	return func() tea.Msg { return loadFileMsg{path: path} }
}

// startLoad supersedes any running load with a new one for path.
func (m *Model) startLoad(path string) tea.Cmd {
	if m.task != nil {
		m.task.Cancel()
	}
	t := pipeline.Spawn(context.Background(), path, m.opts.Pipeline)
	m.task = t
	m.recordID = t.ID()
	m.record = nil
	m.sel = nil
	m.tree = TreeModel{}
	m.preview.SetContent("")
	m.loading = true
	m.showPicker = false
	m.input.SetValue(path)
	return tea.Batch(waitForTask(t), m.spinner.Tick)
}

func (m *Model) setStatus(pm pipeline.Message) {
	if pm.Status == "" {
		return
	}
	m.status = pm.Status
	m.statusErr = pm.Failed()
}

// refreshPreview re-renders the preview for the current selection. Only the
// newest request is applied.
func (m *Model) refreshPreview() tea.Cmd {
	if m.record == nil || m.sel == nil {
		return nil
	}
	m.previewSeq++
	m.status = pipeline.StatusPreviewing
	m.statusErr = false
	return previewCmd(m.record, m.sel.Groups, m.sel.Options, m.previewSeq)
}

func (m *Model) save() tea.Cmd {
	if m.record == nil || m.sel == nil {
		return nil
	}
	path := strings.TrimSpace(m.output.Value())
	if path == "" {
		m.status = pipeline.StatusSaveFailed + ": no output path"
		m.statusErr = true
		return nil
	}
	m.status = pipeline.StatusSaving
	m.statusErr = false
	return saveCmd(saveRequest{
		rec:     m.record,
		groups:  m.sel.Groups,
		opts:    m.sel.Options,
		path:    path,
		out:     m.out,
		db:      m.opts.DB,
		profile: m.opts.Profile,
	})
}

// cycleFormat moves to the next format and keeps the output extension in
// step with it.
func (m *Model) cycleFormat() {
	prev := m.out.Format
	m.out.Format = prev.Next()
	path := m.output.Value()
	if ext := filepath.Ext(path); ext != "" && strings.EqualFold(ext, prev.Extension()) {
		m.output.SetValue(strings.TrimSuffix(path, ext) + m.out.Format.Extension())
	}
}

func (m *Model) layout() {
	treeWidth := m.width * TreeWidthPct / 100
	previewWidth := m.width - treeWidth - 4 // borders
	paneHeight := m.height - 7             // top bar + output lines + status + help
	if paneHeight < 3 {
		paneHeight = 3
	}
	m.tree.Width = treeWidth
	m.tree.Height = paneHeight
	m.preview.Width = previewWidth
	m.preview.Height = paneHeight
	m.picker.Width = m.width
	m.picker.Height = m.height
	m.input.Width = m.width - 12
	m.output.Width = m.width - 12
	m.help.Width = m.width
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case loadFileMsg:
		return m, m.startLoad(msg.path)

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case taskMsg:
		if msg.id != m.recordID {
			return m, nil
		}
		if msg.closed {
			m.loading = false
			return m, nil
		}
		pm := msg.msg
		m.setStatus(pm)
		if pm.Groups != nil {
			m.record = m.task.Record()
			m.tree = NewTreeModel(pm.Tree, *pm.Groups)
			m.sel = selection.NewModel(*pm.Groups, m.opts.Fallback)
			m.sel.Options.DropDuplicates = m.opts.Dedupe
			m.layout()
			m.preview.GotoTop()
			return m, tea.Batch(m.refreshPreview(), waitForTask(m.task))
		}
		if pm.Failed() {
			m.loading = false
		}
		return m, waitForTask(m.task)

	case previewMsg:
		if msg.id != m.recordID || msg.seq != m.previewSeq {
			return m, nil
		}
		for _, pm := range msg.msgs {
			m.setStatus(pm)
			if pm.HasPreview {
				m.preview.SetContent(pm.Preview)
			}
		}
		return m, nil

	case savedMsg:
		if msg.id != m.recordID {
			return m, nil
		}
		for _, pm := range msg.msgs {
			m.setStatus(pm)
		}
		return m, nil

	case tea.KeyMsg:
		if m.editing != editNone {
			return m.updateEditing(msg)
		}
		if m.showPicker {
			return m.updatePicker(msg)
		}
		return m.updateMain(msg)
	}

	return m, nil
}

func (m Model) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	field := &m.output
	if m.editing == editInput {
		field = &m.input
	}
	switch msg.String() {
	case "enter":
		target := m.editing
		field.Blur()
		m.editing = editNone
		if target == editInput {
			if path := strings.TrimSpace(m.input.Value()); path != "" {
				return m, m.startLoad(path)
			}
		}
		return m, nil
	case "esc":
		field.Blur()
		m.editing = editNone
		return m, nil
	case "ctrl+c":
		return m, tea.Quit
	}
	var cmd tea.Cmd
	*field, cmd = field.Update(msg)
	return m, cmd
}

func (m Model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		m.picker.MoveUp()
	case "down", "j":
		m.picker.MoveDown()
	case "enter":
		if src, ok := m.picker.Selected(); ok {
			return m, m.startLoad(src.Path)
		}
	case "i":
		m.showPicker = false
		m.editing = editInput
		return m, m.input.Focus()
	case "esc":
		if m.record != nil || m.loading {
			m.showPicker = false
		}
	case "q", "ctrl+c":
		return m, tea.Quit
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		n := int(msg.String()[0] - '0')
		if m.picker.SelectByNumber(n) {
			src, _ := m.picker.Selected()
			return m, m.startLoad(src.Path)
		}
	}
	return m, nil
}

func (m Model) updateMain(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.task != nil {
			m.task.Cancel()
		}
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.tree.MoveUp()
	case key.Matches(msg, m.keys.Down):
		m.tree.MoveDown()
	case key.Matches(msg, m.keys.Expand):
		m.tree.ExpandOrEnter()
	case key.Matches(msg, m.keys.Collapse):
		m.tree.CollapseOrParent()
	case key.Matches(msg, m.keys.Select):
		if m.sel == nil {
			return m, nil
		}
		k, ok := m.tree.SelectedKey()
		if ok && m.sel.Toggle(k) {
			return m, m.refreshPreview()
		}
	case key.Matches(msg, m.keys.Reset):
		if m.sel == nil {
			return m, nil
		}
		m.sel.Reset()
		return m, m.refreshPreview()
	case key.Matches(msg, m.keys.Dedupe):
		m.opts.Dedupe = !m.opts.Dedupe
		if m.sel == nil {
			return m, nil
		}
		m.sel.Options.DropDuplicates = m.opts.Dedupe
		return m, m.refreshPreview()
	case key.Matches(msg, m.keys.Format):
		m.cycleFormat()
	case key.Matches(msg, m.keys.Over):
		m.out.Overwrite = !m.out.Overwrite
	case key.Matches(msg, m.keys.Folder):
		m.out.CreateFolder = !m.out.CreateFolder
	case key.Matches(msg, m.keys.Path):
		m.editing = editOutput
		return m, m.output.Focus()
	case key.Matches(msg, m.keys.Save):
		return m, m.save()
	case key.Matches(msg, m.keys.Sources):
		m.picker = NewSourcePicker(m.opts.Profiles)
		m.picker.Width = m.width
		m.picker.Height = m.height
		m.showPicker = true
	case key.Matches(msg, m.keys.Reload):
		if path := strings.TrimSpace(m.input.Value()); path != "" {
			return m, m.startLoad(path)
		}
	case msg.String() == "pgdown":
		m.preview.SetYOffset(m.preview.YOffset + m.preview.Height)
	case msg.String() == "pgup":
		m.preview.SetYOffset(m.preview.YOffset - m.preview.Height)
	}
	return m, nil
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func (m Model) View() string {
	if m.showPicker && m.editing == editNone {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.picker.View())
	}

	topBarStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	statsStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	source := m.input.Value()
	if source == "" {
		source = "no session file"
	}
	stats := ""
	if m.sel != nil {
		tabs := 0
		if t := m.record.Tree(); t != nil {
			tabs = t.TabCount()
		}
		stats = fmt.Sprintf("%d open · %d closed · %d tabs · %d selected",
			len(m.sel.Groups.Open), len(m.sel.Groups.Closed), tabs, m.sel.SelectedGroups())
	}
	topBar := topBarStyle.Render("tabsalvage  "+filepath.Base(source)) + "  " + statsStyle.Render(stats)

	treeBorder := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Width(m.tree.Width).
		Height(m.tree.Height)
	previewBorder := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(m.preview.Width).
		Height(m.preview.Height)

	var left string
	switch {
	case m.loading && m.sel == nil:
		left = m.spinner.View() + " Loading session data..."
	case m.sel == nil:
		left = "No session loaded.\n\nPress p to pick a session file or i to type a path."
	default:
		left = m.tree.View(m.sel.Options)
	}
	panes := lipgloss.JoinHorizontal(lipgloss.Top,
		treeBorder.Render(left),
		previewBorder.Render(m.preview.View()),
	)

	optStyle := lipgloss.NewStyle().Padding(0, 1)
	settings := optStyle.Render(fmt.Sprintf("format: %s · overwrite: %s · create folder: %s · dedupe: %s",
		m.out.Format.AsString(), onOff(m.out.Overwrite), onOff(m.out.CreateFolder), onOff(m.opts.Dedupe)))
	fields := optStyle.Render(m.input.View()) + "\n" + optStyle.Render(m.output.View())

	statusStyle := lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("42"))
	if m.statusErr {
		statusStyle = statusStyle.Foreground(lipgloss.Color("196"))
	}
	status := statusStyle.Render(m.status)

	helpLine := lipgloss.NewStyle().Padding(0, 1).Render(m.help.ShortHelpView(m.keys.help()))

	return lipgloss.JoinVertical(lipgloss.Left, topBar, panes, fields, settings, status, helpLine)
}
