package firefox

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/lotas/tabsalvage/internal/types"
)

var (
	ErrMalformed            = errors.New("session: malformed document")
	ErrMissingRequiredField = errors.New("session: missing required field")
)

// Raw JSON types for Firefox session file parsing. Pointer fields are
// required; a nil pointer means the key was absent (or null).
type rawEntry struct {
	URL   *string `json:"url"`
	Title string  `json:"title"`
}

type rawTab struct {
	Entries      *[]rawEntry `json:"entries"`
	Index        int         `json:"index"`
	LastAccessed int64       `json:"lastAccessed"`
}

type rawWindow struct {
	Tabs     *[]rawTab `json:"tabs"`
	Title    string    `json:"title"`
	Selected int       `json:"selected"`
	ClosedAt int64     `json:"closedAt"`
}

type rawSession struct {
	Windows       []rawWindow `json:"windows"`
	ClosedWindows []rawWindow `json:"_closedWindows"`
}

// ParseSession parses decompressed session JSON into a SessionTree. Open
// windows come from "windows", closed ones from "_closedWindows".
func ParseSession(data []byte) (*types.SessionTree, error) {
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: not valid UTF-8", ErrMalformed)
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: top level is not an object", ErrMalformed)
	}

	var raw rawSession
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	tree := &types.SessionTree{
		Windows: make([]types.Window, 0, len(raw.Windows)+len(raw.ClosedWindows)),
	}
	for i, rw := range raw.Windows {
		w, err := buildWindow(rw, types.PartitionOpen, fmt.Sprintf("windows[%d]", i))
		if err != nil {
			return nil, err
		}
		tree.Windows = append(tree.Windows, w)
	}
	for i, rw := range raw.ClosedWindows {
		w, err := buildWindow(rw, types.PartitionClosed, fmt.Sprintf("_closedWindows[%d]", i))
		if err != nil {
			return nil, err
		}
		tree.Windows = append(tree.Windows, w)
	}
	return tree, nil
}

func buildWindow(rw rawWindow, origin types.Partition, path string) (types.Window, error) {
	if rw.Tabs == nil {
		return types.Window{}, fmt.Errorf("%w: %s.tabs", ErrMissingRequiredField, path)
	}

	w := types.Window{
		Title:  rw.Title,
		Origin: origin,
		Tabs:   make([]types.Tab, 0, len(*rw.Tabs)),
	}
	if rw.ClosedAt > 0 {
		w.ClosedAt = time.UnixMilli(rw.ClosedAt)
	}

	selectedTitle := ""
	for tabIdx, rt := range *rw.Tabs {
		tab, ok, err := buildTab(rt, fmt.Sprintf("%s.tabs[%d]", path, tabIdx))
		if err != nil {
			return types.Window{}, err
		}
		if !ok {
			continue
		}
		// selected is 1-based.
		if tabIdx == rw.Selected-1 {
			selectedTitle = tab.Title
		}
		w.Tabs = append(w.Tabs, tab)
	}

	if w.Title == "" {
		w.Title = selectedTitle
	}
	return w, nil
}

// buildTab returns ok=false for blank tabs that have no history entries.
func buildTab(rt rawTab, path string) (types.Tab, bool, error) {
	if rt.Entries == nil {
		return types.Tab{}, false, fmt.Errorf("%w: %s.entries", ErrMissingRequiredField, path)
	}
	entries := *rt.Entries
	if len(entries) == 0 {
		return types.Tab{}, false, nil
	}

	// index is 1-based; current page is entries[index-1].
	entryIdx := rt.Index - 1
	if entryIdx < 0 || entryIdx >= len(entries) {
		entryIdx = len(entries) - 1
	}
	entry := entries[entryIdx]
	if entry.URL == nil {
		return types.Tab{}, false, fmt.Errorf("%w: %s.entries[%d].url", ErrMissingRequiredField, path, entryIdx)
	}

	tab := types.Tab{
		URL:   *entry.URL,
		Title: entry.Title,
	}
	if tab.Title == "" {
		tab.Title = tab.URL
	}
	if rt.LastAccessed > 0 {
		tab.LastAccessed = time.UnixMilli(rt.LastAccessed)
	}
	return tab, true, nil
}
