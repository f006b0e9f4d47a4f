// Package analyzer derives facts about a parsed session that the renderer
// does not need on its own: duplicate pages and how recently windows were
// used.
package analyzer

import (
	"net/url"
	"sort"
	"strings"

	"github.com/lotas/tabsalvage/internal/types"
)

// NormalizeURL drops the fragment, sorts query parameters and trims a
// trailing slash so that equivalent page addresses compare equal.
func NormalizeURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" {
		return rawURL
	}
	u.Fragment = ""
	u.RawFragment = ""
	params := u.Query()
	for k := range params {
		sort.Strings(params[k])
	}
	u.RawQuery = params.Encode()
	result := u.String()
	if strings.HasSuffix(result, "/") && result != u.Scheme+"://"+u.Host+"/" {
		result = strings.TrimRight(result, "/")
	}
	return result
}

// CountDuplicates returns how many tabs repeat a page already seen earlier
// in document order.
func CountDuplicates(tree *types.SessionTree) int {
	seen := make(map[string]bool)
	n := 0
	for _, w := range tree.Windows {
		for _, tab := range w.Tabs {
			key := NormalizeURL(tab.URL)
			if seen[key] {
				n++
				continue
			}
			seen[key] = true
		}
	}
	return n
}

// Dedupe returns copies of windows keeping only the first tab of each page
// across all of them. The number and order of windows is unchanged.
func Dedupe(windows []types.Window) []types.Window {
	out := make([]types.Window, len(windows))
	seen := make(map[string]bool)
	for i, w := range windows {
		tabs := make([]types.Tab, 0, len(w.Tabs))
		for _, tab := range w.Tabs {
			key := NormalizeURL(tab.URL)
			if seen[key] {
				continue
			}
			seen[key] = true
			tabs = append(tabs, tab)
		}
		w.Tabs = tabs
		out[i] = w
	}
	return out
}
