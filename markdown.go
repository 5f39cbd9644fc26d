package main

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"

	"github.com/drexxdk/tanstack-table/internal/assignment"
	"github.com/drexxdk/tanstack-table/internal/tableview"
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

// RenderMarkdown returns Glamour-rendered terminal output for the provided
// Markdown, or the input unchanged when no renderer can be built.
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
		glamour.WithWordWrap(markdownWordWrap),
	}
	switch markdownStyle {
	case markdownThemeLight:
		options = append(options, glamour.WithStandardStyle("light"))
	case markdownThemeDark:
		options = append(options, glamour.WithStandardStyle("dark"))
	default:
		options = append(options, glamour.WithAutoStyle())
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

func currentMarkdownTheme() markdownTheme {
	markdownMu.Lock()
	defer markdownMu.Unlock()
	return markdownStyle
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

func markdownThemeLabel(theme markdownTheme) string {
	switch theme {
	case markdownThemeDark:
		return "Mørk"
	case markdownThemeLight:
		return "Lys"
	default:
		return "Auto"
	}
}

func nextMarkdownTheme(theme markdownTheme) markdownTheme {
	switch theme {
	case markdownThemeAuto:
		return markdownThemeDark
	case markdownThemeDark:
		return markdownThemeLight
	default:
		return markdownThemeAuto
	}
}

// assignmentMarkdown describes one assignment with every column spelled out,
// including the full group list the table summarises.
func assignmentMarkdown(a assignment.Assignment, locale *tableview.Locale) string {
	var b strings.Builder
	title := a.LearningMaterial.Title
	if strings.TrimSpace(title) == "" {
		title = "Uden titel"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)

	fmt.Fprintf(&b, "| | |\n|---|---|\n")
	fmt.Fprintf(&b, "| **Fag** | %s |\n", markdownLink(a.Subject))
	fmt.Fprintf(&b, "| **Læremiddel** | %s |\n", markdownLink(a.Portal))
	fmt.Fprintf(&b, "| **Titel** | %s |\n", markdownLink(a.LearningMaterial))
	fmt.Fprintf(&b, "| **Periode** | %s |\n", tableview.PeriodText(a.Period, locale))
	if !a.Period.Ordered() {
		b.WriteString("\n> Perioden slutter før den starter.\n")
	}

	b.WriteString("\n## Hold/klasse\n\n")
	if len(a.Groups) == 0 {
		b.WriteString("_Ingen hold tilknyttet._\n")
	}
	for _, g := range a.Groups {
		fmt.Fprintf(&b, "- %s\n", markdownLink(g))
	}

	if a.Managed() {
		b.WriteString("\n## Ekstern styring\n\n")
		fmt.Fprintf(&b, "Opgaven styres eksternt: %s\n", markdownLink(*a.ExternalManagement))
	}
	fmt.Fprintf(&b, "\n---\n`%s`\n", a.ID)
	return b.String()
}

func markdownLink(l assignment.Link) string {
	title := strings.ReplaceAll(l.Title, "|", `\|`)
	if title == "" {
		title = l.URL
	}
	if l.URL == "" {
		return title
	}
	return fmt.Sprintf("[%s](%s)", title, l.URL)
}
