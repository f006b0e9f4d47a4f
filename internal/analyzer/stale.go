package analyzer

import (
	"time"

	"github.com/lotas/tabsalvage/internal/types"
)

// LastUsed returns the most recent tab access in w, or the zero time when
// the session recorded none.
func LastUsed(w types.Window) time.Time {
	var latest time.Time
	for _, tab := range w.Tabs {
		if tab.LastAccessed.After(latest) {
			latest = tab.LastAccessed
		}
	}
	return latest
}

// StaleTabs counts tabs of tree not accessed within threshold of now. Tabs
// without an access time are not counted.
func StaleTabs(tree *types.SessionTree, threshold time.Duration, now time.Time) int {
	n := 0
	for _, w := range tree.Windows {
		for _, tab := range w.Tabs {
			if !tab.LastAccessed.IsZero() && now.Sub(tab.LastAccessed) > threshold {
				n++
			}
		}
	}
	return n
}
