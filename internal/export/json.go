package export

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/goccy/go-yaml"
)

type document struct {
	Groups []documentGroup `json:"groups" yaml:"groups"`
}

type documentGroup struct {
	Name      string        `json:"name" yaml:"name"`
	Partition string        `json:"partition" yaml:"partition"`
	Index     uint32        `json:"index" yaml:"index"`
	ClosedAt  string        `json:"closed_at,omitempty" yaml:"closed_at,omitempty"`
	Tabs      []documentTab `json:"tabs" yaml:"tabs"`
}

type documentTab struct {
	Title        string `json:"title" yaml:"title"`
	URL          string `json:"url" yaml:"url"`
	LastAccessed string `json:"last_accessed,omitempty" yaml:"last_accessed,omitempty"`
}

func buildDocument(groups []ResolvedGroup) document {
	doc := document{Groups: make([]documentGroup, 0, len(groups))}
	for _, g := range groups {
		dg := documentGroup{
			Name:      g.Info.Name,
			Partition: g.Info.Partition.String(),
			Index:     g.Info.Index,
			ClosedAt:  timestamp(g.Window.ClosedAt),
			Tabs:      make([]documentTab, 0, len(g.Window.Tabs)),
		}
		for _, tab := range g.Window.Tabs {
			dg.Tabs = append(dg.Tabs, documentTab{
				Title:        tabTitle(tab),
				URL:          tab.URL,
				LastAccessed: timestamp(tab.LastAccessed),
			})
		}
		doc.Groups = append(doc.Groups, dg)
	}
	return doc
}

func timestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func renderJSON(groups []ResolvedGroup) ([]byte, error) {
	b, err := json.MarshalIndent(buildDocument(groups), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: json: %v", ErrConversionFailed, err)
	}
	return append(b, '\n'), nil
}

func renderYAML(groups []ResolvedGroup) ([]byte, error) {
	b, err := yaml.Marshal(buildDocument(groups))
	if err != nil {
		return nil, fmt.Errorf("%w: yaml: %v", ErrConversionFailed, err)
	}
	return b, nil
}
