package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/lotas/tabsalvage/internal/firefox"
	"github.com/lotas/tabsalvage/internal/types"
)

// SourcePicker is an overlay for selecting a session file to recover.
type SourcePicker struct {
	Sources []types.SessionCandidate
	Cursor  int
	Width   int
	Height  int
}

// NewSourcePicker lists the session files of every profile, default profile
// first.
func NewSourcePicker(profiles []types.Profile) SourcePicker {
	var sources []types.SessionCandidate
	for _, p := range profiles {
		if p.IsDefault {
			sources = append(sources, firefox.SessionCandidates(p)...)
		}
	}
	for _, p := range profiles {
		if !p.IsDefault {
			sources = append(sources, firefox.SessionCandidates(p)...)
		}
	}
	return SourcePicker{Sources: sources}
}

func (m *SourcePicker) MoveUp() {
	if m.Cursor > 0 {
		m.Cursor--
	}
}

func (m *SourcePicker) MoveDown() {
	if m.Cursor < len(m.Sources)-1 {
		m.Cursor++
	}
}

// Selected returns the highlighted source. ok is false when there is none.
func (m SourcePicker) Selected() (types.SessionCandidate, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.Sources) {
		return types.SessionCandidate{}, false
	}
	return m.Sources[m.Cursor], true
}

func (m *SourcePicker) SelectByNumber(n int) bool {
	idx := n - 1
	if idx >= 0 && idx < len(m.Sources) {
		m.Cursor = idx
		return true
	}
	return false
}

func (m SourcePicker) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	selectedStyle := lipgloss.NewStyle().Bold(true).Reverse(true).Padding(0, 1)
	normalStyle := lipgloss.NewStyle().Padding(0, 1)
	ageStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(1, 2)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Select a session file:") + "\n\n")

	if len(m.Sources) == 0 {
		b.WriteString(normalStyle.Render("No Firefox session files found.") + "\n")
	}
	for i, src := range m.Sources {
		label := fmt.Sprintf("%d  %s", i+1, src.DisplayName)
		age := ""
		if !src.ModTime.IsZero() {
			age = "  " + ageStyle.Render(humanize.Time(src.ModTime))
		}
		if i == m.Cursor {
			label = selectedStyle.Render(label)
		} else {
			label = normalStyle.Render("  " + label)
		}
		b.WriteString(label + age + "\n")
	}

	b.WriteString("\n" + normalStyle.Render("↑↓ navigate · enter load · 1-9 quick select · esc cancel"))

	return boxStyle.Render(b.String())
}
