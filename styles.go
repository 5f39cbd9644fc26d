package main

import "github.com/charmbracelet/lipgloss"

var palette = struct {
	text, textMuted, border, selection, accent, danger lipgloss.AdaptiveColor
}{
	text:      lipgloss.AdaptiveColor{Light: "#1F2328", Dark: "#E6EDF3"},
	textMuted: lipgloss.AdaptiveColor{Light: "#6E7781", Dark: "#8B949E"},
	border:    lipgloss.AdaptiveColor{Light: "#D0D7DE", Dark: "#30363D"},
	selection: lipgloss.AdaptiveColor{Light: "#DDF4FF", Dark: "#1F3B57"},
	accent:    lipgloss.AdaptiveColor{Light: "#0969DA", Dark: "#58A6FF"},
	danger:    lipgloss.AdaptiveColor{Light: "#CF222E", Dark: "#F85149"},
}

type styles struct {
	topBar                           lipgloss.Style
	columnTitle                      lipgloss.Style
	panel, panelFocused              lipgloss.Style
	tableHeader, tableHeaderCursor   lipgloss.Style
	cell, cellSelected               lipgloss.Style
	detailLabel, detailValue         lipgloss.Style
	filterBar, filterChip            lipgloss.Style
	emptyState                       lipgloss.Style
	errorPanel, errorTitle           lipgloss.Style
	statusBar, statusSeg, statusHint lipgloss.Style
	listItem, listSel                lipgloss.Style
}

func newStyles() styles {
	base := lipgloss.NewStyle()
	panelBorder := lipgloss.NormalBorder()
	focusedBorder := lipgloss.DoubleBorder()

	return styles{
		topBar:            base.Copy().Bold(true).Padding(0, 1),
		columnTitle:       base.Copy().Bold(true).Padding(0, 1),
		panel:             base.Copy().BorderStyle(panelBorder).BorderForeground(palette.border),
		panelFocused:      base.Copy().BorderStyle(focusedBorder).BorderForeground(palette.accent),
		tableHeader:       base.Copy().Bold(true).Foreground(palette.textMuted),
		tableHeaderCursor: base.Copy().Bold(true).Underline(true).Foreground(palette.accent),
		cell:              base.Copy().Foreground(palette.text),
		cellSelected:      base.Copy().Foreground(palette.text).Background(palette.selection),
		detailLabel:       base.Copy().Bold(true).Foreground(palette.textMuted),
		detailValue:       base.Copy().Foreground(palette.text),
		filterBar:         base.Copy().Padding(0, 1),
		filterChip:        base.Copy().Foreground(palette.accent).Padding(0, 1),
		emptyState:        base.Copy().Foreground(palette.textMuted).Italic(true).Padding(1, 2),
		errorPanel:        base.Copy().Border(lipgloss.RoundedBorder()).BorderForeground(palette.danger).Padding(0, 1),
		errorTitle:        base.Copy().Bold(true).Foreground(palette.danger),
		statusBar:         base.Copy().Padding(0, 1),
		statusSeg:         base.Copy().Padding(0, 1).MarginRight(1),
		statusHint:        base.Copy().Foreground(palette.textMuted),
		listItem:          base.Copy().Padding(0, 1),
		listSel:           base.Copy().Padding(0, 1).Bold(true).Foreground(palette.accent),
	}
}
