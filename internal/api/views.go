package api

import (
	"fmt"

	"github.com/tatianab/duelul-ideilor/internal/duel"
	"github.com/tatianab/duelul-ideilor/internal/models"
)

// itemView tags a history item with its variant so clients can switch on it.
type itemView struct {
	Kind    string                `json:"kind"`
	Message *models.DuelMessage   `json:"message,omitempty"`
	System  *models.SystemMessage `json:"system,omitempty"`
}

type stateView struct {
	ID                  string                   `json:"id"`
	Mode                string                   `json:"mode"`
	Settings            models.Settings          `json:"settings"`
	History             []itemView               `json:"history"`
	PlayerScore         int                      `json:"playerScore"`
	AIScore             int                      `json:"aiScore"`
	IsOver              bool                     `json:"isOver"`
	EndReason           string                   `json:"endReason,omitempty"`
	FinalSummary        string                   `json:"finalSummary,omitempty"`
	TooComplicatedCount int                      `json:"tooComplicatedCount"`
	MetaphorLevel       int                      `json:"metaphorLevel"`
	ChallengeCount      int                      `json:"challengeCount"`
	CanChallenge        bool                     `json:"canChallenge"`
	Ledger              []models.ChallengeRecord `json:"ledger"`
	Draft               string                   `json:"draft"`
}

func newStateView(s *duel.Session) stateView {
	st := s.Snapshot()
	v := stateView{
		ID:                  st.ID,
		Mode:                st.Mode.String(),
		Settings:            st.Settings,
		History:             make([]itemView, 0, len(st.History)),
		PlayerScore:         st.PlayerScore,
		AIScore:             st.AIScore,
		IsOver:              st.IsOver,
		EndReason:           st.EndReason,
		FinalSummary:        st.FinalSummary,
		TooComplicatedCount: st.TooComplicatedCount,
		MetaphorLevel:       st.MetaphorLevel,
		ChallengeCount:      st.ChallengeCount,
		CanChallenge:        s.CanChallenge(),
		Ledger:              st.Ledger,
		Draft:               st.Draft,
	}
	for _, it := range st.History {
		switch item := it.(type) {
		case *models.DuelMessage:
			v.History = append(v.History, itemView{Kind: "duel", Message: item})
		case *models.SystemMessage:
			v.History = append(v.History, itemView{Kind: "system", System: item})
		default:
			panic(fmt.Sprintf("api: unknown history item %T", it))
		}
	}
	return v
}

type quoteView struct {
	Number     int                      `json:"number"`
	Cost       int                      `json:"cost"`
	NeedsWager bool                     `json:"needsWager"`
	MaxWager   int                      `json:"maxWager,omitempty"`
	Candidates []models.DuelMessage     `json:"candidates"`
	Reasons    []models.ChallengeReason `json:"reasons"`
}

func newQuoteView(q *duel.ChallengeQuote) quoteView {
	return quoteView{
		Number:     q.Number,
		Cost:       q.Cost,
		NeedsWager: q.NeedsWager,
		MaxWager:   q.MaxWager,
		Candidates: q.Candidates,
		Reasons:    q.Reasons,
	}
}

type tierView struct {
	Tier               int                  `json:"tier"`
	Label              string               `json:"label"`
	Description        string               `json:"description"`
	ExclusionLimit     int                  `json:"exclusionLimit"`
	FavoriteThemeLimit int                  `json:"favoriteThemeLimit"`
	Metaphor           models.MetaphorRange `json:"metaphor"`
	Themes             []string             `json:"themes"`
}

type catalogView struct {
	DefaultTier int                      `json:"defaultTier"`
	Tiers       []tierView               `json:"tiers"`
	Topics      []string                 `json:"topics"`
	Reasons     []models.ChallengeReason `json:"reasons"`
}

func newCatalogView() catalogView {
	v := catalogView{
		DefaultTier: models.DefaultTier,
		Topics:      models.ExcludableTopics,
		Reasons:     models.ChallengeReasons,
	}
	for t := models.MinTier; t <= models.MaxTier; t++ {
		v.Tiers = append(v.Tiers, tierView{
			Tier:               t,
			Label:              models.TierLabel(t),
			Description:        models.TierDescription(t),
			ExclusionLimit:     models.ExclusionLimit(t),
			FavoriteThemeLimit: models.FavoriteThemeLimit(t),
			Metaphor:           models.MetaphorRangeFor(t),
			Themes:             models.FavoriteThemesFor(t),
		})
	}
	return v
}
