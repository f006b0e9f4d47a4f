package types

import "time"

// Partition says whether a window is currently open or recoverable from the
// closed-windows list.
type Partition int

const (
	PartitionOpen Partition = iota
	PartitionClosed
)

// Partitions lists every partition in render order.
func Partitions() []Partition {
	return []Partition{PartitionOpen, PartitionClosed}
}

func (p Partition) String() string {
	switch p {
	case PartitionOpen:
		return "open"
	case PartitionClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Tab is the current page of a single browser tab.
type Tab struct {
	URL          string
	Title        string // falls back to URL
	LastAccessed time.Time
}

// Window is one browser window from the session file.
type Window struct {
	Title    string // may be empty
	Origin   Partition
	ClosedAt time.Time // zero for open windows
	Tabs     []Tab
}

// SessionTree holds the windows of a parsed session in document order.
type SessionTree struct {
	Windows []Window
}

// Partition returns the windows of one partition, preserving order.
func (t *SessionTree) Partition(p Partition) []*Window {
	var out []*Window
	for i := range t.Windows {
		if t.Windows[i].Origin == p {
			out = append(out, &t.Windows[i])
		}
	}
	return out
}

// TabCount returns the number of tabs across all windows.
func (t *SessionTree) TabCount() int {
	n := 0
	for _, w := range t.Windows {
		n += len(w.Tabs)
	}
	return n
}

// TabGroupInfo describes one selectable window. Index addresses the window
// inside its partition only.
type TabGroupInfo struct {
	Name      string
	Index     uint32
	Partition Partition
	TabCount  int
}

// AllTabGroups is the group listing derived from one parsed session.
type AllTabGroups struct {
	Open   []TabGroupInfo
	Closed []TabGroupInfo
}

// Partition returns the groups of one partition.
func (g AllTabGroups) Partition(p Partition) []TabGroupInfo {
	if p == PartitionClosed {
		return g.Closed
	}
	return g.Open
}

// Len returns the number of groups in one partition.
func (g AllTabGroups) Len(p Partition) int {
	return len(g.Partition(p))
}

// Profile is a Firefox profile with its session store candidates.
type Profile struct {
	Name       string
	Path       string // absolute path to profile directory
	IsDefault  bool
	IsRelative bool
}

// SessionCandidate is a session file offered for loading.
type SessionCandidate struct {
	DisplayName string
	Path        string
	ModTime     time.Time
}
