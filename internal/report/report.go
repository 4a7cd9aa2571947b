// Package report renders a finished duel as a plain-text transcript.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/tatianab/duelul-ideilor/internal/duel"
	"github.com/tatianab/duelul-ideilor/internal/models"
)

const (
	rule      = "========================================"
	separator = "------------------------------"

	timestampLayout = "02.01.2006, 15:04:05"
)

// FileName is the name a report generated at t is saved under.
func FileName(t time.Time) string {
	return "raport-duel-" + t.Format("2006-01-02") + ".txt"
}

// Build renders st as a transcript. settings are the ones the duel started
// with. The output depends only on its arguments.
func Build(st duel.State, settings models.Settings) string {
	var b strings.Builder
	writeHeader(&b, st, settings)

	section(&b, "Istoric Conversație")
	for _, it := range st.History {
		switch v := it.(type) {
		case *models.DuelMessage:
			writeDuelMessage(&b, v)
		case *models.SystemMessage:
			writeSystemMessage(&b, v)
		default:
			panic(fmt.Sprintf("report: unknown history item %T", it))
		}
		fmt.Fprintf(&b, "\n%s\n\n", separator)
	}

	if len(st.Ledger) > 0 {
		section(&b, "Contestații")
		for _, c := range st.Ledger {
			writeChallenge(&b, c)
		}
	}

	section(&b, "Analiză și Recomandări Finale")
	b.WriteString(st.FinalSummary)
	b.WriteString("\n")
	return b.String()
}

func writeHeader(b *strings.Builder, st duel.State, s models.Settings) {
	fmt.Fprintf(b, " Duelul Ideilor - Raport Final \n%s\n\n", rule)
	fmt.Fprintf(b, "Nivel Dificultate: %s\n", models.TierLabel(s.Tier))
	fmt.Fprintf(b, "Nivel Metaforic Inițial: %d\n", s.MetaphorLevel)
	fmt.Fprintf(b, "Subiecte Excluse: %s\n", joinOr(s.ExcludedTopics, "Niciunul"))
	fmt.Fprintf(b, "Teme Favorite: %s\n", joinOr(s.FavoriteThemes, "Niciuna"))
	fmt.Fprintf(b, "Scor Final: Jucător %d - %d AI\n", st.PlayerScore, st.AIScore)
	if st.EndReason != "" {
		fmt.Fprintf(b, "Motivul Încheierii: %s\n", st.EndReason)
	}
	b.WriteString("\n")
}

func section(b *strings.Builder, title string) {
	fmt.Fprintf(b, "%s\n %s \n%s\n\n", rule, title, rule)
}

func writeDuelMessage(b *strings.Builder, m *models.DuelMessage) {
	fmt.Fprintf(b, "[%s] - %s\n", m.Author, timestamp(m.ID, m.CreatedAt))
	if m.HasScore() {
		fmt.Fprintf(b, "   Scor: %d\n", m.ScoreValue())
	}
	if m.Liked {
		b.WriteString("   [APRECIAT]\n")
	}
	if m.MarkedTooComplex {
		b.WriteString("   [PREA COMPLICAT]\n")
	}
	fmt.Fprintf(b, "   Text: %s\n", m.Text)
	if m.ScoreExplanation != "" {
		fmt.Fprintf(b, "   Explicație Scor: %s\n", m.ScoreExplanation)
	}
	if examples := m.SortedExamples(); len(examples) > 0 {
		b.WriteString("   Exemple Îmbunătățite:\n")
		for _, ex := range examples {
			fmt.Fprintf(b, "     - Nota %d: %q\n", ex.Score, ex.Text)
		}
	}
	if m.DetailedExplanation != "" {
		fmt.Fprintf(b, "   Explicație Detaliată: %s\n", m.DetailedExplanation)
	}
	if m.GeneratedImageRef != "" {
		fmt.Fprintf(b, "   Imagine: %s\n", m.GeneratedImageRef)
	}
}

func writeSystemMessage(b *strings.Builder, m *models.SystemMessage) {
	mark := "+"
	if m.Polarity == models.PolarityNegative {
		mark = "-"
	}
	fmt.Fprintf(b, "[SISTEM %s] - %s\n", mark, timestamp(m.ID, m.CreatedAt))
	fmt.Fprintf(b, "   %s\n", m.Headline)
	for _, line := range strings.Split(m.Details, "\n") {
		fmt.Fprintf(b, "   %s\n", line)
	}
}

func writeChallenge(b *strings.Builder, c models.ChallengeRecord) {
	verdict := "RESPINSĂ"
	if c.Approved {
		verdict = "APROBATĂ"
	}
	reason := string(c.Reason)
	if r, ok := models.LookupReason(c.Reason); ok {
		reason = r.Title
	}
	fmt.Fprintf(b, "Contestația #%d: %s\n", c.Number, verdict)
	fmt.Fprintf(b, "   Miză: %d\n", c.Wager)
	fmt.Fprintf(b, "   Motiv: %s\n", reason)
	fmt.Fprintf(b, "   Mesaje: %s, %s\n", c.PairedMessageIDs[0], c.PairedMessageIDs[1])
	fmt.Fprintf(b, "   Penalizare AI: %d\n", c.PenaltyApplied)
	fmt.Fprintf(b, "   Motivare: %s\n", c.Rationale)
	fmt.Fprintf(b, "   Argument Jucător: %s\n\n", orDefault(c.PlayerArgument, "Niciunul"))
}

// timestamp reads the creation time from the message id and falls back to
// the recorded time for ids it cannot parse.
func timestamp(id string, created time.Time) string {
	t, err := models.MessageTime(id)
	if err != nil {
		t = created
	}
	return t.Format(timestampLayout)
}

func joinOr(items []string, empty string) string {
	if len(items) == 0 {
		return empty
	}
	return strings.Join(items, ", ")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
