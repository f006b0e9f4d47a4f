// Package export turns the selected windows of a session into link lists in
// several document formats and writes them to disk.
package export

import (
	"fmt"

	"github.com/lotas/tabsalvage/internal/analyzer"
	"github.com/lotas/tabsalvage/internal/selection"
	"github.com/lotas/tabsalvage/internal/types"
)

// ResolvedGroup is one selected window with its tabs.
type ResolvedGroup struct {
	Info   types.TabGroupInfo
	Window *types.Window
}

// Resolve applies opts to groups. Open windows come first, then closed ones,
// each in session order. With DropDuplicates the returned windows are copies.
func Resolve(tree *types.SessionTree, groups types.AllTabGroups, opts selection.GenerateOptions) []ResolvedGroup {
	if tree == nil {
		return nil
	}
	var out []ResolvedGroup
	for _, p := range types.Partitions() {
		windows := tree.Partition(p)
		set := opts.Set(p)
		for _, info := range groups.Partition(p) {
			if int(info.Index) >= len(windows) || !set.Includes(info.Index) {
				continue
			}
			out = append(out, ResolvedGroup{Info: info, Window: windows[info.Index]})
		}
	}
	if opts.DropDuplicates {
		dropDuplicates(out)
	}
	return out
}

func dropDuplicates(groups []ResolvedGroup) {
	windows := make([]types.Window, len(groups))
	for i, g := range groups {
		windows[i] = *g.Window
	}
	windows = analyzer.Dedupe(windows)
	for i := range groups {
		groups[i].Window = &windows[i]
	}
}

// Render produces the export document for the selected groups.
func Render(tree *types.SessionTree, groups types.AllTabGroups, opts selection.GenerateOptions, format Format) ([]byte, error) {
	resolved := Resolve(tree, groups, opts)
	switch format {
	case FormatText:
		return []byte(renderText(resolved)), nil
	case FormatMarkdown:
		return []byte(renderMarkdown(resolved)), nil
	case FormatHTML:
		return renderHTML(resolved)
	case FormatPDF:
		return renderPDF(resolved)
	case FormatJSON:
		return renderJSON(resolved)
	case FormatYAML:
		return renderYAML(resolved)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format.AsString())
	}
}

// Preview renders the selection as plain text for on-screen display.
func Preview(tree *types.SessionTree, groups types.AllTabGroups, opts selection.GenerateOptions) (string, error) {
	out, err := Render(tree, groups, opts, FormatText)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func tabTitle(t types.Tab) string {
	if t.Title == "" {
		return t.URL
	}
	return t.Title
}
