package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lotas/tabsalvage/internal/selection"
	"github.com/lotas/tabsalvage/internal/types"
)

// TreeNode represents a visible row in the tree.
type TreeNode struct {
	Partition types.Partition
	Header    bool                // partition header row
	Group     *types.TabGroupInfo // non-nil for window rows
	Tab       *types.Tab          // non-nil for tab rows
}

// Key addresses the window a row belongs to. Header rows return false.
func (n TreeNode) Key() (selection.Key, bool) {
	if n.Group == nil {
		return selection.Key{}, false
	}
	return selection.Key{Partition: n.Group.Partition, Index: n.Group.Index}, true
}

// TreeModel manages the collapsible window/tab tree.
type TreeModel struct {
	Groups   types.AllTabGroups
	Windows  map[selection.Key]*types.Window
	Expanded map[selection.Key]bool
	Cursor   int
	Offset   int // scroll offset
	Width    int
	Height   int
}

// NewTreeModel builds the tree for a parsed session. Windows start
// collapsed.
func NewTreeModel(tree *types.SessionTree, groups types.AllTabGroups) TreeModel {
	windows := make(map[selection.Key]*types.Window)
	if tree != nil {
		for _, p := range types.Partitions() {
			for i, w := range tree.Partition(p) {
				windows[selection.Key{Partition: p, Index: uint32(i)}] = w
			}
		}
	}
	m := TreeModel{
		Groups:   groups,
		Windows:  windows,
		Expanded: make(map[selection.Key]bool),
	}
	// Start on the first window rather than a header.
	if len(m.VisibleNodes()) > 1 {
		m.Cursor = 1
	}
	return m
}

// VisibleNodes returns the flat list of currently visible nodes.
func (m TreeModel) VisibleNodes() []TreeNode {
	var nodes []TreeNode
	for _, p := range types.Partitions() {
		infos := m.Groups.Partition(p)
		if len(infos) == 0 {
			continue
		}
		nodes = append(nodes, TreeNode{Partition: p, Header: true})
		for i := range infos {
			g := &infos[i]
			nodes = append(nodes, TreeNode{Partition: p, Group: g})
			k, _ := TreeNode{Group: g}.Key()
			if !m.Expanded[k] {
				continue
			}
			if w := m.Windows[k]; w != nil {
				for j := range w.Tabs {
					nodes = append(nodes, TreeNode{Partition: p, Group: g, Tab: &w.Tabs[j]})
				}
			}
		}
	}
	return nodes
}

// SelectedNode returns the currently selected node, or nil.
func (m TreeModel) SelectedNode() *TreeNode {
	nodes := m.VisibleNodes()
	if m.Cursor >= 0 && m.Cursor < len(nodes) {
		return &nodes[m.Cursor]
	}
	return nil
}

// SelectedKey returns the window under the cursor, including when the cursor
// is on one of its tabs.
func (m TreeModel) SelectedKey() (selection.Key, bool) {
	node := m.SelectedNode()
	if node == nil {
		return selection.Key{}, false
	}
	return node.Key()
}

func (m TreeModel) visibleRows() int {
	rows := m.Height - 2 // account for padding
	if rows < 1 {
		rows = 1
	}
	return rows
}

// MoveUp moves the cursor up.
func (m *TreeModel) MoveUp() {
	if m.Cursor > 0 {
		m.Cursor--
	}
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
}

// MoveDown moves the cursor down.
func (m *TreeModel) MoveDown() {
	nodes := m.VisibleNodes()
	if m.Cursor < len(nodes)-1 {
		m.Cursor++
	}
	if m.Cursor >= m.Offset+m.visibleRows() {
		m.Offset = m.Cursor - m.visibleRows() + 1
	}
}

// Toggle expands/collapses the selected window.
func (m *TreeModel) Toggle() {
	node := m.SelectedNode()
	if node == nil || node.Group == nil || node.Tab != nil {
		return
	}
	k, _ := node.Key()
	m.Expanded[k] = !m.Expanded[k]
}

// CollapseOrParent collapses the selected window if expanded, or jumps to the
// parent window row if the cursor is on a tab.
func (m *TreeModel) CollapseOrParent() {
	node := m.SelectedNode()
	if node == nil || node.Group == nil {
		return
	}
	k, _ := node.Key()
	if node.Tab == nil {
		m.Expanded[k] = false
		return
	}
	nodes := m.VisibleNodes()
	for i := m.Cursor - 1; i >= 0; i-- {
		if nodes[i].Group != nil && nodes[i].Tab == nil {
			m.Cursor = i
			if m.Cursor < m.Offset {
				m.Offset = m.Cursor
			}
			return
		}
	}
}

// ExpandOrEnter expands the selected window if collapsed, or moves into the
// first tab if already expanded.
func (m *TreeModel) ExpandOrEnter() {
	node := m.SelectedNode()
	if node == nil || node.Group == nil || node.Tab != nil {
		return
	}
	k, _ := node.Key()
	if !m.Expanded[k] {
		m.Expanded[k] = true
		return
	}
	nodes := m.VisibleNodes()
	if m.Cursor+1 < len(nodes) && nodes[m.Cursor+1].Tab != nil {
		m.Cursor++
		if m.Cursor >= m.Offset+m.visibleRows() {
			m.Offset = m.Cursor - m.visibleRows() + 1
		}
	}
}

// View renders the tree with the export state of each window.
func (m TreeModel) View(opts selection.GenerateOptions) string {
	nodes := m.VisibleNodes()
	if len(nodes) == 0 {
		return "No windows found."
	}

	visibleRows := m.Height
	if visibleRows < 1 {
		visibleRows = 20
	}

	var b strings.Builder
	end := m.Offset + visibleRows
	if end > len(nodes) {
		end = len(nodes)
	}

	cursorStyle := lipgloss.NewStyle().Bold(true).Reverse(true)
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	groupStyle := lipgloss.NewStyle().Bold(true)
	allStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	tabStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("250"))

	for i := m.Offset; i < end; i++ {
		node := nodes[i]
		var line string

		switch {
		case node.Header:
			label := "Open windows"
			if node.Partition == types.PartitionClosed {
				label = "Closed windows"
			}
			if opts.Set(node.Partition).IsAll() {
				label += allStyle.Render("  (all)")
			}
			line = headerStyle.Render(label)
		case node.Tab == nil:
			k, _ := node.Key()
			icon := "▶"
			if m.Expanded[k] {
				icon = "▼"
			}
			check := "[ ]"
			if opts.Includes(k) {
				check = "[x]"
			}
			noun := "tabs"
			if node.Group.TabCount == 1 {
				noun = "tab"
			}
			line = groupStyle.Render(fmt.Sprintf("%s %s %s (%d %s)", check, icon, node.Group.Name, node.Group.TabCount, noun))
		default:
			prefix := "      "
			title := node.Tab.Title
			if title == "" {
				title = node.Tab.URL
			}
			maxLen := m.Width - len(prefix) - 2
			if maxLen < 10 {
				maxLen = 10
			}
			if r := []rune(title); len(r) > maxLen {
				title = string(r[:maxLen-1]) + "…"
			}
			line = prefix + tabStyle.Render(title)
		}

		if i == m.Cursor {
			if pad := m.Width - lipgloss.Width(line); pad > 0 {
				line += strings.Repeat(" ", pad)
			}
			line = cursorStyle.Render(line)
		}

		b.WriteString(line)
		if i < end-1 {
			b.WriteString("\n")
		}
	}

	return b.String()
}
