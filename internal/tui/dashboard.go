package tui

import (
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tatianab/duelul-ideilor/internal/models"
)

type dashField int

const (
	fieldTier dashField = iota
	fieldMetaphor
	fieldTopics
	fieldThemes
	fieldCount
)

type dashboard struct {
	focus       dashField
	topicCursor int
	themeCursor int
}

func (m model) updateDashboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	d := &m.dash
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "enter":
		return m.startDuel()
	case "?", "ctrl+r":
		m.showRules()
		return m, nil
	case "tab":
		d.focus = (d.focus + 1) % fieldCount
	case "shift+tab":
		d.focus = (d.focus + fieldCount - 1) % fieldCount
	case "left", "h":
		m.adjust(-1)
	case "right", "l":
		m.adjust(+1)
	case "up", "k":
		m.moveCursor(-1)
	case "down", "j":
		m.moveCursor(+1)
	case " ", "x":
		m.toggleSelected()
	}
	return m, nil
}

func (m *model) adjust(delta int) {
	m.err = nil
	switch m.dash.focus {
	case fieldTier:
		m.settings.SetTier(m.settings.Tier + delta)
		m.dash.themeCursor = 0
	case fieldMetaphor:
		if err := m.settings.SetMetaphorLevel(m.settings.MetaphorLevel + delta); err != nil {
			m.err = err
		}
	}
}

func (m *model) moveCursor(delta int) {
	switch m.dash.focus {
	case fieldTopics:
		m.dash.topicCursor = clampIndex(m.dash.topicCursor+delta, len(models.ExcludableTopics))
	case fieldThemes:
		m.dash.themeCursor = clampIndex(m.dash.themeCursor+delta, len(models.FavoriteThemesFor(m.settings.Tier)))
	}
}

func (m *model) toggleSelected() {
	m.err = nil
	switch m.dash.focus {
	case fieldTopics:
		topic := models.ExcludableTopics[m.dash.topicCursor]
		if !m.settings.ToggleExcludedTopic(topic) {
			m.err = fmt.Errorf("poți exclude cel mult %d subiecte la acest nivel", models.ExclusionLimit(m.settings.Tier))
		}
	case fieldThemes:
		themes := models.FavoriteThemesFor(m.settings.Tier)
		if len(themes) == 0 {
			return
		}
		if !m.settings.ToggleFavoriteTheme(themes[m.dash.themeCursor]) {
			m.err = fmt.Errorf("poți alege cel mult %d teme la acest nivel", models.FavoriteThemeLimit(m.settings.Tier))
		}
	}
}

func (m model) viewDashboard() string {
	st := m.styles
	s := m.settings
	var b strings.Builder

	b.WriteString(st.title.Render("DUELUL IDEILOR") + "\n\n")

	r := models.MetaphorRangeFor(s.Tier)
	fmt.Fprintf(&b, "%s Nivel: %d/5 - %s\n", m.marker(fieldTier), s.Tier, models.TierLabel(s.Tier))
	fmt.Fprintf(&b, "    %s\n", st.help.Render(models.TierDescription(s.Tier)))
	fmt.Fprintf(&b, "%s Nivel metaforic: %d (%d-%d, %s)\n\n", m.marker(fieldMetaphor), s.MetaphorLevel, r.Min, r.Max, r.Label)

	fmt.Fprintf(&b, "%s Subiecte excluse (%d/%d)\n", m.marker(fieldTopics), len(s.ExcludedTopics), models.ExclusionLimit(s.Tier))
	b.WriteString(m.checklist(models.ExcludableTopics, s.ExcludedTopics, m.dash.topicCursor, m.dash.focus == fieldTopics))

	themes := models.FavoriteThemesFor(s.Tier)
	fmt.Fprintf(&b, "\n%s Teme favorite (%d/%d)\n", m.marker(fieldThemes), len(s.FavoriteThemes), models.FavoriteThemeLimit(s.Tier))
	b.WriteString(m.checklist(themes, s.FavoriteThemes, m.dash.themeCursor, m.dash.focus == fieldThemes))

	if m.err != nil {
		b.WriteString("\n" + st.err.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n" + st.help.Render("tab câmp • ←/→ ajustează • ↑/↓ alege • spațiu bifează • enter începe duelul • ? reguli • ctrl+t temă • q ieșire"))
	return b.String()
}

func (m model) marker(f dashField) string {
	if m.dash.focus == f {
		return m.styles.selected.Render(">")
	}
	return " "
}

// checklist renders a window of items around the cursor.
func (m model) checklist(items, selected []string, cursor int, focused bool) string {
	const window = 6
	start := max(0, min(cursor-window/2, len(items)-window))
	end := min(len(items), start+window)

	var b strings.Builder
	for i := start; i < end; i++ {
		box := "[ ]"
		if slices.Contains(selected, items[i]) {
			box = "[x]"
		}
		line := fmt.Sprintf("    %s %s", box, items[i])
		if focused && i == cursor {
			line = m.styles.selected.Render(line)
		}
		b.WriteString(line + "\n")
	}
	if end < len(items) {
		b.WriteString(m.styles.help.Render(fmt.Sprintf("    ... încă %d", len(items)-end)) + "\n")
	}
	return b.String()
}

func clampIndex(i, n int) int {
	if n == 0 {
		return 0
	}
	return max(0, min(i, n-1))
}
