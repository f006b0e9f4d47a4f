package export

import (
	"bytes"
	"fmt"
	"html/template"
)

var htmlTemplate = template.Must(template.New("links").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Firefox tabs</title>
</head>
<body>
{{- range .}}
<h2>{{.Name}}</h2>
<ul>
{{- range .Tabs}}
<li><a href="{{.URL}}">{{.Title}}</a></li>
{{- end}}
</ul>
{{- end}}
</body>
</html>
`))

type htmlGroup struct {
	Name string
	Tabs []htmlTab
}

type htmlTab struct {
	Title string
	URL   string
}

func renderHTML(groups []ResolvedGroup) ([]byte, error) {
	data := make([]htmlGroup, 0, len(groups))
	for _, g := range groups {
		hg := htmlGroup{Name: g.Info.Name, Tabs: make([]htmlTab, 0, len(g.Window.Tabs))}
		for _, tab := range g.Window.Tabs {
			hg.Tabs = append(hg.Tabs, htmlTab{Title: tabTitle(tab), URL: tab.URL})
		}
		data = append(data, hg)
	}

	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("%w: html: %v", ErrConversionFailed, err)
	}
	return buf.Bytes(), nil
}
