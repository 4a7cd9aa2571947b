package duel

import (
	"context"
	"strings"

	"github.com/tatianab/duelul-ideilor/internal/models"
)

// EndDuel ends an active duel at the player's request and blocks while the
// post-game summary is produced. An empty reason gets a default.
func (s *Session) EndDuel(ctx context.Context, reason string) error {
	s.mu.Lock()
	if err := s.acceptingLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	if strings.TrimSpace(reason) == "" {
		reason = defaultEndReason
	}
	token, req := s.beginEndingLocked(reason)
	s.mu.Unlock()

	s.finishEnding(ctx, token, req)
	return nil
}

func (s *Session) beginEndingLocked(reason string) (uint64, models.SummaryRequest) {
	s.isOver = true
	s.endReason = reason
	s.draft = ""
	token := s.beginCallLocked(ModeSummarizing)
	s.log.Info("duel ending", "reason", reason, "player_total", s.playerScore, "ai_total", s.aiScore)
	return token, models.SummaryRequest{
		History:  models.DuelMessages(s.history),
		Settings: s.effectiveSettingsLocked(),
	}
}

// finishEnding always reaches ModeEnded; a failed summary is replaced by a
// generic one.
func (s *Session) finishEnding(ctx context.Context, token uint64, req models.SummaryRequest) {
	callCtx, cancel := s.callContext(ctx)
	summary, err := s.oracle.Summarize(callCtx, req)
	cancel()
	if err != nil {
		s.log.Warn("summary oracle failed, using fallback", "error", err)
		summary = fallbackSummary
	}
	if strings.TrimSpace(summary) == "" {
		summary = fallbackSummary
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.currentLocked(token) {
		s.log.Info("dropping stale summary")
		return
	}
	s.finalSummary = strings.TrimSpace(summary)
	s.mode = ModeEnded
}
