package main

import "github.com/charmbracelet/lipgloss"

type colorPalette struct {
	text      lipgloss.AdaptiveColor
	textMuted lipgloss.AdaptiveColor
	border    lipgloss.AdaptiveColor
	selection lipgloss.AdaptiveColor
	danger    lipgloss.AdaptiveColor
	success   lipgloss.AdaptiveColor
}

var palette = colorPalette{
	text:      lipgloss.AdaptiveColor{Light: "#1a1a1a", Dark: "#e5e5e5"},
	textMuted: lipgloss.AdaptiveColor{Light: "#6b6b6b", Dark: "#8a8a8a"},
	border:    lipgloss.AdaptiveColor{Light: "#c4c4c4", Dark: "#3f3f3f"},
	selection: lipgloss.AdaptiveColor{Light: "#d6e4ff", Dark: "#264f78"},
	danger:    lipgloss.AdaptiveColor{Light: "#b00020", Dark: "#ff6b6b"},
	success:   lipgloss.AdaptiveColor{Light: "#1a7f37", Dark: "#56d364"},
}

type styles struct {
	app, topBar                      lipgloss.Style
	columnTitle                      lipgloss.Style
	panel, panelFocused              lipgloss.Style
	statusBar, statusSeg, statusHint lipgloss.Style
	listItem, listSel                lipgloss.Style
	groupHeader                      lipgloss.Style
	emptyState                       lipgloss.Style
	cmdOverlay, cmdPrompt, cmdHint   lipgloss.Style
	confirmOverlay                   lipgloss.Style
	formError                        lipgloss.Style
	errorBanner                      lipgloss.Style
}

func newStyles() styles {
	base := lipgloss.NewStyle()
	panelBorder := lipgloss.NormalBorder()
	focusedBorder := lipgloss.DoubleBorder()

	return styles{
		app:            base,
		topBar:         base.Padding(0, 1),
		columnTitle:    base.Copy().Bold(true).Padding(0, 1),
		panel:          base.BorderStyle(panelBorder),
		panelFocused:   base.BorderStyle(focusedBorder),
		statusBar:      base.Padding(0, 1),
		statusSeg:      base.Padding(0, 1).MarginRight(1),
		statusHint:     base.Copy().Faint(true),
		listItem:       base.Padding(0, 1),
		listSel:        base.Padding(0, 1).Bold(true),
		groupHeader:    base.Copy().Bold(true).Foreground(palette.textMuted).Padding(0, 1),
		emptyState:     base.Copy().Faint(true).Padding(1, 2),
		cmdOverlay:     base.Border(lipgloss.RoundedBorder()).Padding(1, 2),
		cmdPrompt:      base.Copy().Bold(true),
		cmdHint:        base.Copy().Faint(true),
		confirmOverlay: base.Border(lipgloss.RoundedBorder()).BorderForeground(palette.danger).Padding(0, 1),
		formError:      base.Copy().Foreground(palette.danger),
		errorBanner:    base.Copy().Foreground(palette.danger).Bold(true).Padding(1, 2),
	}
}
