package export

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported output format")
	ErrConversionFailed  = errors.New("conversion failed")
)

// Format is an output format for exported links.
type Format int

const (
	FormatText Format = iota
	FormatMarkdown
	FormatHTML
	FormatPDF
	FormatJSON
	FormatYAML
)

type formatInfo struct {
	name        string
	ext         string
	aliases     []string
	binary      bool
	description string
}

var formats = map[Format]formatInfo{
	FormatText: {
		name:        "text",
		ext:         ".txt",
		aliases:     []string{"txt", "plain"},
		description: "Plain text. Each window is a line with its name, followed by one \"title — url\" line per tab.",
	},
	FormatMarkdown: {
		name:        "markdown",
		ext:         ".md",
		aliases:     []string{"md"},
		description: "Markdown. Each window becomes a `##` heading with a bullet list of `[title](url)` links.",
	},
	FormatHTML: {
		name:        "html",
		ext:         ".html",
		aliases:     []string{"htm"},
		description: "A standalone HTML page with a heading per window and a list of clickable links.",
	},
	FormatPDF: {
		name:        "pdf",
		ext:         ".pdf",
		binary:      true,
		description: "A PDF document with a heading per window, clickable tab titles and their URLs.",
	},
	FormatJSON: {
		name:        "json",
		ext:         ".json",
		description: "JSON with every window, its tabs and their last access times, for scripting.",
	},
	FormatYAML: {
		name:        "yaml",
		ext:         ".yaml",
		aliases:     []string{"yml"},
		description: "YAML with the same structure as the JSON output.",
	},
}

// AllFormats lists the formats in menu order.
func AllFormats() []Format {
	return []Format{FormatText, FormatMarkdown, FormatHTML, FormatPDF, FormatJSON, FormatYAML}
}

func (f Format) info() (formatInfo, bool) {
	fi, ok := formats[f]
	return fi, ok
}

// AsString returns the machine name used on the command line and in config.
func (f Format) AsString() string {
	if fi, ok := f.info(); ok {
		return fi.name
	}
	return fmt.Sprintf("format(%d)", int(f))
}

// String returns the long description shown as help text.
func (f Format) String() string {
	if fi, ok := f.info(); ok {
		return fi.description
	}
	return "unknown format"
}

// Extension returns the file extension including the dot.
func (f Format) Extension() string {
	fi, _ := f.info()
	return fi.ext
}

// Binary reports whether output must not be written to a terminal.
func (f Format) Binary() bool {
	fi, _ := f.info()
	return fi.binary
}

// Valid reports whether f is one of AllFormats.
func (f Format) Valid() bool {
	_, ok := f.info()
	return ok
}

// Next returns the following format in menu order, wrapping around.
func (f Format) Next() Format {
	all := AllFormats()
	for i, g := range all {
		if g == f {
			return all[(i+1)%len(all)]
		}
	}
	return all[0]
}

// ParseFormat accepts a machine name or a common alias, case-insensitively.
func ParseFormat(name string) (Format, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, f := range AllFormats() {
		fi := formats[f]
		if n == fi.name {
			return f, nil
		}
		for _, a := range fi.aliases {
			if n == a {
				return f, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
}

// FormatFromPath guesses the format from a file extension.
func FormatFromPath(path string) (Format, bool) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "" {
		return 0, false
	}
	f, err := ParseFormat(ext)
	return f, err == nil
}

// OutputOptions control where and how an export is written.
type OutputOptions struct {
	Format       Format
	Overwrite    bool
	CreateFolder bool
}
