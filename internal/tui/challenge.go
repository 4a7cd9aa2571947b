package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tatianab/duelul-ideilor/internal/duel"
)

type challengeForm struct {
	quote    *duel.ChallengeQuote
	cursor   int
	picked   []string
	reason   int
	wager    int
	argument bool
}

func (m model) openChallenge() (tea.Model, tea.Cmd) {
	q, err := m.session.OpenChallenge()
	if err != nil {
		m.handleSessionErr(err)
		return m, nil
	}
	m.challenge = challengeForm{quote: q, cursor: max(0, len(q.Candidates)-1), wager: 1}
	m.screen = screenChallenge
	m.input.Reset()
	m.input.Placeholder = "Argumentul tău (opțional)"
	m.input.Blur()
	return m, nil
}

func (m model) closeChallenge() model {
	m.screen = screenDuel
	m.input.Reset()
	m.input.Placeholder = duel.DefaultDraft
	m.input.Focus()
	m.syncSession()
	return m
}

func (m model) updateChallenge(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	f := &m.challenge
	switch msg.String() {
	case "esc":
		return m.closeChallenge(), nil
	case "tab":
		f.argument = !f.argument
		if f.argument {
			return m, m.input.Focus()
		}
		m.input.Blur()
		return m, nil
	case "enter":
		return m.submitChallenge()
	}
	if f.argument {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "up", "k":
		f.cursor = clampIndex(f.cursor-1, len(f.quote.Candidates))
	case "down", "j":
		f.cursor = clampIndex(f.cursor+1, len(f.quote.Candidates))
	case "left", "h":
		f.reason = (f.reason + len(f.quote.Reasons) - 1) % len(f.quote.Reasons)
	case "right", "l":
		f.reason = (f.reason + 1) % len(f.quote.Reasons)
	case "+", "=":
		if f.quote.NeedsWager {
			f.wager = min(f.wager+1, f.quote.MaxWager)
		}
	case "-":
		if f.quote.NeedsWager {
			f.wager = max(f.wager-1, 1)
		}
	case " ", "x":
		f.togglePick()
	}
	return m, nil
}

func (f *challengeForm) togglePick() {
	if len(f.quote.Candidates) == 0 {
		return
	}
	id := f.quote.Candidates[f.cursor].ID
	for i, p := range f.picked {
		if p == id {
			f.picked = append(f.picked[:i], f.picked[i+1:]...)
			return
		}
	}
	if len(f.picked) == 2 {
		f.picked = f.picked[1:]
	}
	f.picked = append(f.picked, id)
}

func (m model) submitChallenge() (tea.Model, tea.Cmd) {
	f := m.challenge
	if len(f.picked) != 2 {
		m.err = fmt.Errorf("alege exact două mesaje")
		return m, nil
	}
	sub := duel.ChallengeSubmission{
		MessageA: f.picked[0],
		MessageB: f.picked[1],
		Reason:   f.quote.Reasons[f.reason].Code,
		Argument: m.input.Value(),
	}
	if f.quote.NeedsWager {
		sub.Wager = f.wager
	}
	s := m.session
	return m.await(func(ctx context.Context) tea.Msg {
		rec, err := s.SubmitChallenge(ctx, sub)
		return challengeDoneMsg{s, rec, err}
	})
}

func (m model) viewChallenge() string {
	f := m.challenge
	q := f.quote
	st := m.styles
	var b strings.Builder

	b.WriteString(st.title.Render(fmt.Sprintf("CONTESTAȚIA #%d", q.Number)) + "\n\n")
	if q.NeedsWager {
		fmt.Fprintf(&b, "Miză: %d (1-%d, +/-)\n\n", f.wager, q.MaxWager)
	} else {
		fmt.Fprintf(&b, "Cost: %d puncte\n\n", q.Cost)
	}

	b.WriteString("Alege două mesaje:\n")
	for i, c := range q.Candidates {
		box := "[ ]"
		for _, p := range f.picked {
			if p == c.ID {
				box = "[x]"
			}
		}
		line := fmt.Sprintf("  %s %s: %s", box, c.Author.Label(), truncate(c.Text, 70))
		if !f.argument && i == f.cursor {
			line = st.selected.Render(line)
		}
		b.WriteString(line + "\n")
	}

	r := q.Reasons[f.reason]
	fmt.Fprintf(&b, "\nMotiv (←/→): %s\n", st.selected.Render(r.Title))
	b.WriteString(st.help.Render("  "+r.Description) + "\n\n")
	b.WriteString(m.input.View() + "\n")

	if m.busy {
		b.WriteString("\n" + m.spinner.View() + " " + busyLabel(duel.ModeAwaitingChallenge) + "\n")
	} else if m.err != nil {
		b.WriteString("\n" + st.err.Render(errorLabel(m.err)) + "\n")
	}
	b.WriteString("\n" + st.help.Render("↑/↓ mesaj • spațiu alege • ←/→ motiv • tab argument • enter trimite • esc renunță"))
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func (m model) updateGameOver(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "enter", "esc":
		return m.leaveDuel(), nil
	case "s":
		return m, m.saveReport()
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m model) renderGameOver() string {
	st := m.snapshot
	width := max(20, m.viewport.Width-2)
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", m.styles.title.Render("DUEL ÎNCHEIAT"))
	fmt.Fprintf(&b, "%s\n\n", m.styles.text.Width(width).Render(st.EndReason))
	fmt.Fprintf(&b, "Scor final: Jucător %d - %d AI\n\n", st.PlayerScore, st.AIScore)
	b.WriteString(m.styles.title.Render("ANALIZĂ") + "\n\n")
	b.WriteString(m.styles.text.Width(width).Render(st.FinalSummary) + "\n")
	return b.String()
}

func (m model) viewGameOver() string {
	status := ""
	if m.notice != "" {
		status = m.styles.text.Render(m.notice)
	}
	return strings.Join([]string{
		m.viewport.View(),
		status,
		m.styles.help.Render("↑/↓ derulare • s salvează raportul • enter meniu • q ieșire"),
	}, "\n")
}
