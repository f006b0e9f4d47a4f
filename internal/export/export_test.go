package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/goccy/go-yaml"
	"github.com/lotas/tabsalvage/internal/fileio"
	"github.com/lotas/tabsalvage/internal/selection"
	"github.com/lotas/tabsalvage/internal/tabgroups"
	"github.com/lotas/tabsalvage/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func workTree() *types.SessionTree {
	return &types.SessionTree{Windows: []types.Window{
		{Title: "Work", Origin: types.PartitionOpen, Tabs: []types.Tab{
			{Title: "Example", URL: "https://example.com"},
		}},
	}}
}

func mixedTree() *types.SessionTree {
	accessed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return &types.SessionTree{Windows: []types.Window{
		{Title: "Research", Origin: types.PartitionOpen, Tabs: []types.Tab{
			{Title: "Go docs", URL: "https://go.dev/doc", LastAccessed: accessed},
			{Title: "", URL: "https://example.org/no-title"},
		}},
		{Origin: types.PartitionClosed, ClosedAt: accessed, Tabs: []types.Tab{
			{Title: "Old [draft]", URL: "https://example.net/a (b)"},
		}},
		{Title: "Chat", Origin: types.PartitionOpen, Tabs: []types.Tab{
			{Title: "<script>x</script>", URL: "https://chat.example.com/?a=1&b=2"},
		}},
	}}
}

func emptySelection() selection.GenerateOptions {
	return selection.GenerateOptions{OpenGroupIndexes: selection.None(), ClosedGroupIndexes: selection.None()}
}

func TestRenderMarkdownWorkExample(t *testing.T) {
	tree := workTree()
	out, err := Render(tree, tabgroups.Extract(tree), selection.DefaultOptions(), FormatMarkdown)
	require.NoError(t, err)
	assert.Contains(t, string(out), "## Work")
	assert.Contains(t, string(out), "[Example](https://example.com)")
}

func TestRenderEmptySelectionIsValidForEveryFormat(t *testing.T) {
	tree := mixedTree()
	groups := tabgroups.Extract(tree)

	for _, f := range AllFormats() {
		t.Run(f.AsString(), func(t *testing.T) {
			out, err := Render(tree, groups, emptySelection(), f)
			require.NoError(t, err)

			switch f {
			case FormatText, FormatMarkdown:
				assert.Empty(t, out)
			case FormatHTML:
				doc, err := goquery.NewDocumentFromReader(bytes.NewReader(out))
				require.NoError(t, err)
				assert.Equal(t, 0, doc.Find("h2").Length())
				assert.Equal(t, 1, doc.Find("body").Length())
			case FormatPDF:
				assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
				assert.Contains(t, string(out), "%%EOF")
			case FormatJSON:
				var doc document
				require.NoError(t, json.Unmarshal(out, &doc))
				assert.NotNil(t, doc.Groups)
				assert.Empty(t, doc.Groups)
				assert.Contains(t, string(out), `"groups": []`)
			case FormatYAML:
				var doc document
				require.NoError(t, yaml.Unmarshal(out, &doc))
				assert.Empty(t, doc.Groups)
			}
		})
	}
}

func TestResolveOrder(t *testing.T) {
	tree := mixedTree()
	groups := tabgroups.Extract(tree)
	opts := selection.GenerateOptions{OpenGroupIndexes: selection.All(), ClosedGroupIndexes: selection.All()}

	got := Resolve(tree, groups, opts)
	require.Len(t, got, 3)
	assert.Equal(t, "Research", got[0].Info.Name)
	assert.Equal(t, "Chat", got[1].Info.Name)
	assert.Equal(t, types.PartitionClosed, got[2].Info.Partition)
	assert.Equal(t, uint32(0), got[2].Info.Index)
}

func TestResolveKeepsPartitionsApart(t *testing.T) {
	tree := mixedTree()
	groups := tabgroups.Extract(tree)
	opts := selection.GenerateOptions{OpenGroupIndexes: selection.None(), ClosedGroupIndexes: selection.Of(0)}

	got := Resolve(tree, groups, opts)
	require.Len(t, got, 1)
	assert.Equal(t, types.PartitionClosed, got[0].Info.Partition)
	assert.Equal(t, "Old [draft]", got[0].Window.Tabs[0].Title)
}

func TestResolveDropDuplicates(t *testing.T) {
	tree := &types.SessionTree{Windows: []types.Window{
		{Title: "A", Tabs: []types.Tab{{URL: "https://go.dev/#top"}, {URL: "https://go.dev/doc"}}},
		{Title: "B", Tabs: []types.Tab{{URL: "https://go.dev/doc/"}, {URL: "https://go.dev/blog"}}},
	}}
	groups := tabgroups.Extract(tree)

	only := selection.GenerateOptions{OpenGroupIndexes: selection.Of(1), ClosedGroupIndexes: selection.None(), DropDuplicates: true}
	got := Resolve(tree, groups, only)
	require.Len(t, got, 1)
	assert.Len(t, got[0].Window.Tabs, 2, "unselected windows do not hide tabs")

	both := selection.GenerateOptions{OpenGroupIndexes: selection.All(), ClosedGroupIndexes: selection.None(), DropDuplicates: true}
	got = Resolve(tree, groups, both)
	require.Len(t, got, 2)
	assert.Len(t, got[0].Window.Tabs, 2)
	require.Len(t, got[1].Window.Tabs, 1)
	assert.Equal(t, "https://go.dev/blog", got[1].Window.Tabs[0].URL)
	assert.Len(t, tree.Windows[1].Tabs, 2, "tree is not modified")
}

func TestRenderText(t *testing.T) {
	tree := mixedTree()
	out, err := Preview(tree, tabgroups.Extract(tree), selection.GenerateOptions{
		OpenGroupIndexes:   selection.Of(0),
		ClosedGroupIndexes: selection.None(),
	})
	require.NoError(t, err)
	assert.Equal(t, "Research\nGo docs — https://go.dev/doc\nhttps://example.org/no-title — https://example.org/no-title\n", out)
}

func TestRenderMarkdownEscaping(t *testing.T) {
	tree := mixedTree()
	out, err := Render(tree, tabgroups.Extract(tree), selection.GenerateOptions{
		OpenGroupIndexes:   selection.None(),
		ClosedGroupIndexes: selection.All(),
	}, FormatMarkdown)
	require.NoError(t, err)
	assert.Contains(t, string(out), "## Closed window 1")
	assert.Contains(t, string(out), `- [Old \[draft\]](https://example.net/a%20%28b%29)`)
}

func TestRenderMarkdownEscapesGroupNames(t *testing.T) {
	tree := &types.SessionTree{Windows: []types.Window{
		{Title: "# todo [later]", Tabs: []types.Tab{{Title: "A", URL: "https://a.example"}}},
	}}
	out, err := Render(tree, tabgroups.Extract(tree), selection.DefaultOptions(), FormatMarkdown)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), `## \# todo \[later\]`+"\n"), "got %q", out)
}

func TestRenderHTML(t *testing.T) {
	tree := mixedTree()
	out, err := Render(tree, tabgroups.Extract(tree), selection.DefaultOptions(), FormatHTML)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "<script>")

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(out))
	require.NoError(t, err)

	headings := doc.Find("h2").Map(func(_ int, s *goquery.Selection) string { return s.Text() })
	assert.Equal(t, []string{"Research", "Chat"}, headings)

	links := doc.Find("li a")
	require.Equal(t, 3, links.Length())
	href, ok := links.Eq(2).Attr("href")
	require.True(t, ok)
	assert.Equal(t, "https://chat.example.com/?a=1&b=2", href)
	assert.Equal(t, "<script>x</script>", links.Eq(2).Text())
}

func TestRenderJSON(t *testing.T) {
	tree := mixedTree()
	out, err := Render(tree, tabgroups.Extract(tree), selection.GenerateOptions{
		OpenGroupIndexes:   selection.Of(0),
		ClosedGroupIndexes: selection.Of(0),
	}, FormatJSON)
	require.NoError(t, err)

	var doc document
	require.NoError(t, json.Unmarshal(out, &doc))
	require.Len(t, doc.Groups, 2)
	assert.Equal(t, "open", doc.Groups[0].Partition)
	assert.Equal(t, "2024-03-01T12:00:00Z", doc.Groups[0].Tabs[0].LastAccessed)
	assert.Equal(t, "https://example.org/no-title", doc.Groups[0].Tabs[1].Title)
	assert.Equal(t, "closed", doc.Groups[1].Partition)
	assert.Equal(t, "2024-03-01T12:00:00Z", doc.Groups[1].ClosedAt)
}

func TestRenderYAMLMatchesJSON(t *testing.T) {
	tree := mixedTree()
	groups := tabgroups.Extract(tree)
	opts := selection.GenerateOptions{OpenGroupIndexes: selection.All(), ClosedGroupIndexes: selection.All()}

	jsonOut, err := Render(tree, groups, opts, FormatJSON)
	require.NoError(t, err)
	yamlOut, err := Render(tree, groups, opts, FormatYAML)
	require.NoError(t, err)

	var fromJSON, fromYAML document
	require.NoError(t, json.Unmarshal(jsonOut, &fromJSON))
	require.NoError(t, yaml.Unmarshal(yamlOut, &fromYAML))
	require.Len(t, fromYAML.Groups, len(fromJSON.Groups))
	for i := range fromJSON.Groups {
		j, y := fromJSON.Groups[i], fromYAML.Groups[i]
		assert.Equal(t, j.Name, y.Name)
		assert.Equal(t, j.Partition, y.Partition)
		assert.Equal(t, j.Index, y.Index)
		require.Len(t, y.Tabs, len(j.Tabs))
		for k := range j.Tabs {
			assert.Equal(t, j.Tabs[k].Title, y.Tabs[k].Title)
			assert.Equal(t, j.Tabs[k].URL, y.Tabs[k].URL)
		}
	}
}

func TestRenderPDF(t *testing.T) {
	tree := mixedTree()
	out, err := Render(tree, tabgroups.Extract(tree), selection.DefaultOptions(), FormatPDF)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Contains(t, string(out), "https://go.dev/doc")
}

func TestRenderUnsupportedFormat(t *testing.T) {
	tree := workTree()
	_, err := Render(tree, tabgroups.Extract(tree), selection.DefaultOptions(), Format(42))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"text", FormatText},
		{"TXT", FormatText},
		{"md", FormatMarkdown},
		{"html", FormatHTML},
		{"pdf", FormatPDF},
		{"json", FormatJSON},
		{"yml", FormatYAML},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseFormat("docx")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestFormatMetadata(t *testing.T) {
	seen := map[string]bool{}
	for _, f := range AllFormats() {
		assert.True(t, f.Valid())
		assert.NotEmpty(t, f.String())
		assert.NotEqual(t, f.AsString(), f.String())
		assert.NotEmpty(t, f.Extension())
		assert.False(t, seen[f.AsString()], "duplicate name %s", f.AsString())
		seen[f.AsString()] = true

		got, ok := FormatFromPath("links" + f.Extension())
		require.True(t, ok)
		assert.Equal(t, f, got)
	}
	assert.True(t, FormatPDF.Binary())
	assert.False(t, FormatMarkdown.Binary())
	assert.Equal(t, FormatText, FormatYAML.Next())

	_, ok := FormatFromPath("links")
	assert.False(t, ok)
}

func TestWriteToFileOverwriteSemantics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "links.md")
	require.NoError(t, os.WriteFile(path, []byte("keep me"), 0o644))

	tree := workTree()
	rendered, err := Render(tree, tabgroups.Extract(tree), selection.DefaultOptions(), FormatMarkdown)
	require.NoError(t, err)

	err = WriteToFile(rendered, path, OutputOptions{Format: FormatMarkdown})
	require.ErrorIs(t, err, fileio.ErrAlreadyExists)
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "keep me", string(got))

	require.NoError(t, WriteToFile(rendered, path, OutputOptions{Format: FormatMarkdown, Overwrite: true}))
	got, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, rendered, got)
}

func TestWriteToFileMissingParent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "links.txt")
	err := WriteToFile([]byte("x"), path, OutputOptions{})
	require.ErrorIs(t, err, fileio.ErrMissingParent)

	require.NoError(t, WriteToFile([]byte("x"), path, OutputOptions{CreateFolder: true}))
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "x", string(got))
}
