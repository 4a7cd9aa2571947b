package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/tatianab/duelul-ideilor/internal/models"
)

type palette struct {
	text, muted, accent, player, ai, good, bad, border, selected lipgloss.Color
}

var palettes = map[models.Theme]palette{
	models.ThemeDark: {
		text:     "#EEEEEE",
		muted:    "#888888",
		accent:   "#FFA500",
		player:   "#5F5F87",
		ai:       "#2E5E4E",
		good:     "#5FD787",
		bad:      "#FF5F5F",
		border:   "#3C3C3C",
		selected: "#AF87FF",
	},
	models.ThemeLight: {
		text:     "#1C1C1C",
		muted:    "#6C6C6C",
		accent:   "#D75F00",
		player:   "#D7D7FF",
		ai:       "#D7FFD7",
		good:     "#008700",
		bad:      "#AF0000",
		border:   "#BCBCBC",
		selected: "#5F00AF",
	},
}

type styles struct {
	title    lipgloss.Style
	text     lipgloss.Style
	help     lipgloss.Style
	player   lipgloss.Style
	ai       lipgloss.Style
	good     lipgloss.Style
	bad      lipgloss.Style
	side     lipgloss.Style
	selected lipgloss.Style
	err      lipgloss.Style
}

func newStyles(t models.Theme) styles {
	p, ok := palettes[t]
	if !ok {
		p = palettes[models.ThemeDark]
	}
	return styles{
		title: lipgloss.NewStyle().
			Foreground(p.accent).
			Bold(true).
			Underline(true),
		text: lipgloss.NewStyle().
			Foreground(p.text),
		help: lipgloss.NewStyle().
			Foreground(p.muted).
			Italic(true),
		player: lipgloss.NewStyle().
			Foreground(p.text).
			Background(p.player).
			Bold(true).
			PaddingLeft(1),
		ai: lipgloss.NewStyle().
			Foreground(p.text).
			Background(p.ai).
			PaddingLeft(1),
		good: lipgloss.NewStyle().
			Foreground(p.good).
			Bold(true),
		bad: lipgloss.NewStyle().
			Foreground(p.bad).
			Bold(true),
		side: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(p.border).
			PaddingLeft(2).
			Foreground(p.muted),
		selected: lipgloss.NewStyle().
			Foreground(p.selected).
			Bold(true),
		err: lipgloss.NewStyle().
			Foreground(p.bad),
	}
}
