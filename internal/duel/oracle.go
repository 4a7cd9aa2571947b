package duel

import (
	"context"
	"fmt"

	"github.com/tatianab/duelul-ideilor/internal/models"
)

// Oracle is the language-model backed judge of a duel. It keeps no memory
// between calls, so every request carries the history it needs.
type Oracle interface {
	RequestTurn(ctx context.Context, req models.TurnRequest) (*models.TurnVerdict, error)
	Summarize(ctx context.Context, req models.SummaryRequest) (string, error)
	ArbitrateChallenge(ctx context.Context, req models.ChallengeRequest) (*models.ChallengeVerdict, error)
	Explain(ctx context.Context, text string, tier int) (string, error)
	GenerateImage(ctx context.Context, prompt string) (*models.Image, error)
}

// ImageStore persists generated images and hands back an opaque reference.
type ImageStore interface {
	SaveImage(messageID string, img *models.Image) (string, error)
}

const (
	fallbackReply          = "Am o pană de idei..."
	fallbackSummary        = "Fiecare idee este o sămânță. Continuă să le cultivi. Felicitări pentru duel!"
	fallbackArbitration    = "A apărut o eroare în timpul deliberării. Contestația a fost respinsă automat."
	firstMoveExplanation   = "Bonus de deschidere: prima replică a duelului primește nota maximă. Curaj, continuă la fel!"
	defaultEndReason       = "Duelul a fost încheiat de către jucător."
	playerReachedLimit     = "Ai atins 100 de puncte!"
	aiReachedLimit         = "AI-ul a atins 100 de puncte!"
	explanationUnavailable = "Nu am putut genera o explicație în acest moment."
)

// degradedVerdict keeps the duel going when the scoring call fails. The
// failure is visible only through the AI explanation.
func degradedVerdict(err error) *models.TurnVerdict {
	return &models.TurnVerdict{
		AIReplyText:            fallbackReply,
		PlayerScore:            0,
		PlayerScoreExplanation: "Eroare internă.",
		AIScore:                0,
		AIScoreExplanation:     fmt.Sprintf("AI-ul nu poate răspunde. Motiv: %v", err),
	}
}

func rejectedChallenge(err error) *models.ChallengeVerdict {
	return &models.ChallengeVerdict{
		Approved:  false,
		Rationale: fmt.Sprintf("%s Motiv: %v", fallbackArbitration, err),
		Penalty:   0,
	}
}

// normalizeVerdict clamps oracle scores into their contractual ranges.
func normalizeVerdict(v *models.TurnVerdict) {
	v.PlayerScore = clamp(v.PlayerScore, 0, 10)
	v.AIScore = clamp(v.AIScore, 0, 9)
	if v.PlayerScore == 10 {
		v.PlayerImprovedExamples = nil
	}
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
