package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tatianab/duelul-ideilor/internal/duel"
	"github.com/tatianab/duelul-ideilor/internal/models"
)

func (m model) updateDuel(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.session
	switch msg.String() {
	case "esc":
		return m.leaveDuel(), nil
	case "ctrl+r":
		m.showRules()
		return m, nil
	case "up":
		m.cursor = max(0, m.cursor-1)
		m.refresh()
		return m, nil
	case "down":
		m.cursor = clampIndex(m.cursor+1, len(models.DuelMessages(m.snapshot.History)))
		m.refresh()
		return m, nil
	}
	if m.busy {
		return m, nil
	}

	switch msg.String() {
	case "enter":
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			return m, nil
		}
		m.input.Reset()
		m.notice = ""
		return m.await(func(ctx context.Context) tea.Msg {
			return turnDoneMsg{s, s.SubmitPlayerText(ctx, text)}
		})

	case "ctrl+q":
		return m.await(func(ctx context.Context) tea.Msg {
			return endDoneMsg{s, s.EndDuel(ctx, "")}
		})

	case "ctrl+l":
		if id, ok := m.selectedID(); ok {
			m.handleSessionErr(s.ToggleLike(id))
			m.syncSession()
		}
		return m, nil

	case "ctrl+o":
		if id, ok := m.selectedID(); ok {
			m.handleSessionErr(s.MarkTooComplex(id))
			m.syncSession()
		}
		return m, nil

	case "ctrl+g":
		id, ok := m.selectedID()
		if !ok {
			return m, nil
		}
		return m.await(func(ctx context.Context) tea.Msg {
			text, err := s.RequestExplanation(ctx, id)
			return explanationMsg{s, id, text, err}
		})

	case "ctrl+y":
		id, ok := m.selectedID()
		if !ok || !s.CanVisualize(id) {
			m.notice = "Mesajul selectat nu poate fi vizualizat."
			return m, nil
		}
		return m.await(func(ctx context.Context) tea.Msg {
			ref, err := s.Visualize(ctx, id)
			return imageMsg{s, ref, err}
		})

	case "ctrl+x":
		return m.openChallenge()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	s.SetDraft(m.input.Value())
	return m, cmd
}

// await marks the UI busy and runs fn in the background.
func (m model) await(fn func(context.Context) tea.Msg) (tea.Model, tea.Cmd) {
	m.busy = true
	m.err = nil
	return m, tea.Batch(m.spinner.Tick, call(fn))
}

func (m model) selectedID() (string, bool) {
	msgs := models.DuelMessages(m.snapshot.History)
	if m.cursor < 0 || m.cursor >= len(msgs) {
		return "", false
	}
	return msgs[m.cursor].ID, true
}

func (m model) viewDuel() string {
	body := lipgloss.JoinHorizontal(lipgloss.Top, m.viewport.View(), m.renderSide())

	status := ""
	switch {
	case m.busy:
		status = m.spinner.View() + " " + busyLabel(m.session.Mode())
	case m.err != nil:
		status = m.styles.err.Render(errorLabel(m.err))
	case m.notice != "":
		status = m.styles.text.Width(m.viewport.Width).Render(m.notice)
	}

	help := m.styles.help.Render("enter trimite • ↑/↓ selectează • ctrl+l apreciază • ctrl+o prea complicat • ctrl+g explică • ctrl+y imagine • ctrl+x contestă • ctrl+q încheie • ctrl+r reguli • esc meniu")
	return lipgloss.JoinVertical(lipgloss.Left, body, "\n"+m.input.View(), status, help)
}

func (m model) renderSide() string {
	st := m.snapshot
	var b strings.Builder
	b.WriteString(m.styles.title.Render("SCOR") + "\n")
	fmt.Fprintf(&b, "Jucător: %d\nAI: %d\n\n", st.PlayerScore, st.AIScore)
	b.WriteString(m.styles.title.Render("DUEL") + "\n")
	fmt.Fprintf(&b, "Nivel: %s\n", models.TierLabel(st.Settings.Tier))
	fmt.Fprintf(&b, "Metaforic: %d\n", st.MetaphorLevel)
	fmt.Fprintf(&b, "Prea complicat: %d/%d\n", st.TooComplicatedCount, duel.MaxTooComplex)
	fmt.Fprintf(&b, "Contestații: %d/%d\n", st.ChallengeCount, duel.MaxChallenges)
	if m.session != nil && st.ChallengeCount < duel.MaxChallenges {
		if cost, ok := m.session.CostForNextChallenge(1); ok && st.ChallengeCount < duel.MaxChallenges-1 {
			fmt.Fprintf(&b, "Următoarea costă: %d\n", cost)
		} else if ok {
			b.WriteString("Următoarea: miză 1-10\n")
		}
	}
	width := max(20, m.width-m.viewport.Width-4)
	return m.styles.side.Width(width).Height(m.viewport.Height).Render(b.String())
}

func (m model) renderHistory() string {
	width := max(20, m.viewport.Width-2)
	var b strings.Builder
	idx := 0
	for _, it := range m.snapshot.History {
		switch v := it.(type) {
		case *models.DuelMessage:
			b.WriteString(m.renderMessage(v, idx == m.cursor, width))
			idx++
		case *models.SystemMessage:
			style := m.styles.good
			if v.Polarity == models.PolarityNegative {
				style = m.styles.bad
			}
			b.WriteString(style.Render("※ "+v.Headline) + "\n")
			b.WriteString(m.styles.help.Width(width).Render(v.Details) + "\n\n")
		default:
			panic(fmt.Sprintf("tui: unknown history item %T", it))
		}
	}
	return b.String()
}

func (m model) renderMessage(msg *models.DuelMessage, selected bool, width int) string {
	style := m.styles.player
	if msg.Author == models.AuthorAI {
		style = m.styles.ai
	}
	prefix := "  "
	if selected {
		prefix = m.styles.selected.Render("▶ ")
	}

	var flags []string
	if msg.HasScore() {
		flags = append(flags, fmt.Sprintf("%d/10", msg.ScoreValue()))
	}
	if msg.Liked {
		flags = append(flags, "♥")
	}
	if msg.MarkedTooComplex {
		flags = append(flags, "prea complicat")
	}
	if msg.GeneratedImageRef != "" {
		flags = append(flags, "imagine")
	}
	header := msg.Author.Label()
	if len(flags) > 0 {
		header += " · " + strings.Join(flags, " · ")
	}

	var b strings.Builder
	b.WriteString(prefix + style.Width(width-2).Render(header+"\n"+msg.Text) + "\n")
	if msg.ScoreExplanation != "" {
		b.WriteString("  " + m.styles.help.Width(width-2).Render(msg.ScoreExplanation) + "\n")
	}
	for _, ex := range msg.SortedExamples() {
		b.WriteString("  " + m.styles.help.Width(width-2).Render(fmt.Sprintf("  %d: %s", ex.Score, ex.Text)) + "\n")
	}
	if selected && msg.DetailedExplanation != "" {
		b.WriteString("  " + m.styles.text.Width(width-2).Render(msg.DetailedExplanation) + "\n")
	}
	return b.String() + "\n"
}

func busyLabel(mode duel.Mode) string {
	switch mode {
	case duel.ModeAwaitingChallenge:
		return "Judecătorul deliberează..."
	case duel.ModeSummarizing:
		return "Se pregătește analiza finală..."
	}
	return "AI-ul se gândește..."
}

func errorLabel(err error) string {
	switch {
	case errors.Is(err, duel.ErrBusy):
		return "Așteaptă răspunsul în curs."
	case errors.Is(err, duel.ErrEnded):
		return "Duelul s-a încheiat."
	case errors.Is(err, duel.ErrClosed):
		return "Duelul a fost închis."
	case errors.Is(err, duel.ErrRejected):
		return "Acțiune respinsă: " + err.Error()
	}
	return err.Error()
}
