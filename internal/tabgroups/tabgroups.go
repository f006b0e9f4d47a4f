package tabgroups

import (
	"fmt"

	"github.com/lotas/tabsalvage/internal/types"
)

// Extract lists every window of the tree as a selectable group. Indexes are
// positions inside each partition and are re-derived on every call.
func Extract(tree *types.SessionTree) types.AllTabGroups {
	var all types.AllTabGroups
	if tree == nil {
		return all
	}
	for _, p := range types.Partitions() {
		windows := tree.Partition(p)
		infos := make([]types.TabGroupInfo, 0, len(windows))
		for i, w := range windows {
			infos = append(infos, types.TabGroupInfo{
				Name:      groupName(w, p, i),
				Index:     uint32(i),
				Partition: p,
				TabCount:  len(w.Tabs),
			})
		}
		if p == types.PartitionOpen {
			all.Open = infos
		} else {
			all.Closed = infos
		}
	}
	return all
}

func groupName(w *types.Window, p types.Partition, pos int) string {
	if w.Title != "" {
		return w.Title
	}
	if p == types.PartitionClosed {
		return fmt.Sprintf("Closed window %d", pos+1)
	}
	return fmt.Sprintf("Window %d", pos+1)
}
