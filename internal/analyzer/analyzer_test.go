package analyzer

import (
	"testing"
	"time"

	"github.com/lotas/tabsalvage/internal/types"
)

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"https://example.com/page#section", "https://example.com/page"},
		{"https://example.com/page/", "https://example.com/page"},
		{"https://example.com/page?b=2&a=1", "https://example.com/page?a=1&b=2"},
		{"https://example.com", "https://example.com"},
		{"https://example.com/", "https://example.com/"},
		{"about:blank", "about:blank"},
		{"not a url", "not a url"},
	}

	for _, tt := range tests {
		got := NormalizeURL(tt.input)
		if got != tt.expected {
			t.Errorf("NormalizeURL(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func dupTree() *types.SessionTree {
	return &types.SessionTree{Windows: []types.Window{
		{Title: "A", Tabs: []types.Tab{
			{URL: "https://example.com/page#section1"},
			{URL: "https://example.com/other"},
		}},
		{Title: "B", Origin: types.PartitionClosed, Tabs: []types.Tab{
			{URL: "https://example.com/page#section2"},
			{URL: "https://example.com/page?b=2&a=1"},
			{URL: "https://example.com/page?a=1&b=2"},
		}},
	}}
}

func TestCountDuplicates(t *testing.T) {
	if got := CountDuplicates(dupTree()); got != 2 {
		t.Errorf("CountDuplicates = %d, want 2", got)
	}
}

func TestDedupe(t *testing.T) {
	tree := dupTree()
	out := Dedupe(tree.Windows)

	if len(out) != 2 {
		t.Fatalf("windows = %d, want 2", len(out))
	}
	if len(out[0].Tabs) != 2 {
		t.Errorf("first window keeps %d tabs, want 2", len(out[0].Tabs))
	}
	if len(out[1].Tabs) != 1 || out[1].Tabs[0].URL != "https://example.com/page?b=2&a=1" {
		t.Errorf("second window tabs = %+v", out[1].Tabs)
	}
	if out[1].Origin != types.PartitionClosed {
		t.Error("origin must be preserved")
	}
	if len(tree.Windows[1].Tabs) != 3 {
		t.Error("input tree was modified")
	}
}

func TestLastUsedAndStale(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	w := types.Window{Tabs: []types.Tab{
		{URL: "a", LastAccessed: now.Add(-10 * 24 * time.Hour)},
		{URL: "b", LastAccessed: now.Add(-time.Hour)},
		{URL: "c"},
	}}

	if got := LastUsed(w); !got.Equal(now.Add(-time.Hour)) {
		t.Errorf("LastUsed = %v", got)
	}
	if got := LastUsed(types.Window{}); !got.IsZero() {
		t.Errorf("LastUsed of empty window = %v, want zero", got)
	}

	tree := &types.SessionTree{Windows: []types.Window{w}}
	if got := StaleTabs(tree, 7*24*time.Hour, now); got != 1 {
		t.Errorf("StaleTabs = %d, want 1", got)
	}
}
