package export

import (
	"fmt"
	"strings"
)

var (
	mdTitleEscaper   = strings.NewReplacer(`\`, `\\`, `[`, `\[`, `]`, `\]`)
	mdHeadingEscaper = strings.NewReplacer(`\`, `\\`, `[`, `\[`, `]`, `\]`, `#`, `\#`)
	mdURLEscaper     = strings.NewReplacer("(", "%28", ")", "%29", " ", "%20")
)

func renderMarkdown(groups []ResolvedGroup) string {
	var b strings.Builder
	for i, g := range groups {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "## %s\n\n", mdHeadingEscaper.Replace(oneLine(g.Info.Name)))
		for _, tab := range g.Window.Tabs {
			fmt.Fprintf(&b, "- [%s](%s)\n", mdTitleEscaper.Replace(oneLine(tabTitle(tab))), mdURLEscaper.Replace(tab.URL))
		}
	}
	return b.String()
}
