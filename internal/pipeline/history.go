package pipeline

import (
	"os"

	"github.com/lotas/tabsalvage/internal/export"
	"github.com/lotas/tabsalvage/internal/selection"
	"github.com/lotas/tabsalvage/internal/storage"
	"github.com/lotas/tabsalvage/internal/types"
)

// HistoryEntry describes an export of rec that was just written to path.
func HistoryEntry(rec *FileRecord, groups types.AllTabGroups, sel selection.GenerateOptions, path string, format export.Format, profile string) storage.ExportRecord {
	resolved := export.Resolve(rec.Tree(), groups, sel)
	tabs := 0
	for _, g := range resolved {
		tabs += len(g.Window.Tabs)
	}
	var size int64
	if info, err := os.Stat(path); err == nil {
		size = info.Size()
	}
	return storage.ExportRecord{
		RecordID:   rec.ID.String(),
		Profile:    profile,
		SourcePath: rec.SourcePath,
		OutputPath: path,
		Format:     format.AsString(),
		Selection:  sel.String(),
		GroupCount: len(resolved),
		TabCount:   tabs,
		SizeBytes:  size,
	}
}
