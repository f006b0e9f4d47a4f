package export

import (
	"fmt"
	"strings"
)

func renderText(groups []ResolvedGroup) string {
	var b strings.Builder
	for i, g := range groups {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(g.Info.Name)
		b.WriteByte('\n')
		for _, tab := range g.Window.Tabs {
			fmt.Fprintf(&b, "%s — %s\n", oneLine(tabTitle(tab)), tab.URL)
		}
	}
	return b.String()
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
