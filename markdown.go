package main

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

type markdownTheme string

const (
	markdownThemeAuto  markdownTheme = "auto"
	markdownThemeDark  markdownTheme = "dark"
	markdownThemeLight markdownTheme = "light"
)

var (
	markdownMu       sync.Mutex
	markdownRenderer *glamour.TermRenderer
	markdownErr      error
	markdownStyle    = markdownThemeAuto
	markdownWordWrap = 80
)

// RenderMarkdown returns Glamour-rendered terminal output for the provided Markdown.
func RenderMarkdown(content string) string {
	renderer := ensureMarkdownRenderer()
	if renderer == nil {
		return content
	}
	out, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return out
}

func ensureMarkdownRenderer() *glamour.TermRenderer {
	markdownMu.Lock()
	defer markdownMu.Unlock()
	if markdownRenderer != nil && markdownErr == nil {
		return markdownRenderer
	}
	options := []glamour.TermRendererOption{
		glamour.WithAutoStyle(),
	}
	if markdownWordWrap > 0 {
		options = append(options, glamour.WithWordWrap(markdownWordWrap))
	} else {
		options = append(options, glamour.WithWordWrap(0))
	}
	switch markdownStyle {
	case markdownThemeLight:
		options = append(options, glamour.WithStandardStyle("light"))
	case markdownThemeDark:
		options = append(options, glamour.WithStandardStyle("dark"))
	}
	markdownRenderer, markdownErr = glamour.NewTermRenderer(options...)
	if markdownErr != nil {
		return nil
	}
	return markdownRenderer
}

func setMarkdownWordWrap(width int) {
	markdownMu.Lock()
	if width < 0 {
		width = 0
	}
	if markdownWordWrap != width {
		markdownWordWrap = width
		markdownRenderer = nil
		markdownErr = nil
	}
	markdownMu.Unlock()
}

func setMarkdownTheme(theme markdownTheme) {
	markdownMu.Lock()
	if theme == "" {
		theme = markdownThemeAuto
	}
	if markdownStyle != theme {
		markdownStyle = theme
		markdownRenderer = nil
		markdownErr = nil
	}
	markdownMu.Unlock()
}

func markdownThemeFromString(value string) markdownTheme {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "dark":
		return markdownThemeDark
	case "light":
		return markdownThemeLight
	default:
		return markdownThemeAuto
	}
}

// rowDetailMarkdown renders one row as a markdown definition list in
// declared column order.
func rowDetailMarkdown(desc tableDescriptor, row lookupItem) string {
	var b strings.Builder
	b.WriteString("# " + desc.RowLabel(row) + "\n\n")
	for _, col := range desc.Columns {
		value := stringifyValue(row[col.Name], col.Type)
		if value == "" {
			value = "—"
		}
		b.WriteString("**" + col.Label + "**: " + value + "\n\n")
	}
	b.WriteString("_" + desc.IDColumn + ": " + desc.RowID(row) + "_\n")
	return b.String()
}

const helpMarkdown = `# Lookup Table Admin

Edit the clinic's reference tables (holidays, work types, titles, …)
through one schema-driven panel.

## Keys

| Key | Action |
| --- | --- |
| tab / shift+tab | move focus across panels |
| enter | expand the highlighted table |
| p | pin / unpin the highlighted table |
| / | filter the open table's rows |
| a | add an entry |
| e | edit the highlighted entry |
| d | delete the highlighted entry |
| x | export the filtered rows to CSV |
| y / Y | copy row as JSON / copy first cell |
| r | reload the open table |
| ? | toggle this help |
| q | quit |

Mutations always round-trip through the server, then the table reloads;
nothing is patched in place.
`
