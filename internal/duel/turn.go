package duel

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tatianab/duelul-ideilor/internal/models"
)

// SubmitPlayerText plays one round: the statement is appended, the oracle
// scores it and replies, and both scores are added to the totals. The call
// blocks for the oracle round trip. Reaching ScoreLimit or an oracle
// game-over signal ends the duel before it returns.
func (s *Session) SubmitPlayerText(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)

	s.mu.Lock()
	if err := s.acceptingLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	if text == "" {
		s.mu.Unlock()
		return fmt.Errorf("%w: empty statement", ErrRejected)
	}
	player := s.appendDuelLocked(models.AuthorPlayer, text)
	firstMove := len(models.DuelMessages(s.history)) == 1
	s.draft = ""
	token := s.beginCallLocked(ModeAwaitingTurn)
	req := models.TurnRequest{
		History:         models.DuelMessages(s.history),
		PlayerTotal:     s.playerScore,
		AITotal:         s.aiScore,
		Settings:        s.effectiveSettingsLocked(),
		TooComplexCount: s.tooComplicatedCount,
	}
	s.mu.Unlock()

	verdict := s.requestTurn(ctx, req)

	s.mu.Lock()
	if !s.currentLocked(token) {
		s.mu.Unlock()
		s.log.Info("dropping stale turn verdict", "message", player.ID)
		return ErrClosed
	}
	reason, over := s.applyTurnLocked(player.ID, firstMove, verdict)
	if !over {
		s.mode = ModeActive
		s.draft = DefaultDraft
		s.mu.Unlock()
		return nil
	}
	token, req2 := s.beginEndingLocked(reason)
	s.mu.Unlock()

	s.finishEnding(ctx, token, req2)
	return nil
}

func (s *Session) requestTurn(ctx context.Context, req models.TurnRequest) *models.TurnVerdict {
	callCtx, cancel := s.callContext(ctx)
	defer cancel()
	verdict, err := s.oracle.RequestTurn(callCtx, req)
	if err == nil && verdict == nil {
		err = errors.New("empty verdict")
	}
	if err != nil {
		s.log.Warn("turn oracle failed, using degraded verdict", "error", err)
		return degradedVerdict(err)
	}
	v := *verdict
	normalizeVerdict(&v)
	return &v
}

// applyTurnLocked attaches the score to the pending player message and
// appends the AI reply in the same critical section, so no observer sees the
// reply without the player's score.
func (s *Session) applyTurnLocked(playerID string, firstMove bool, v *models.TurnVerdict) (string, bool) {
	playerScore := v.PlayerScore
	explanation := v.PlayerScoreExplanation
	examples := v.PlayerImprovedExamples
	if firstMove {
		playerScore = 10
		explanation = firstMoveExplanation
		examples = nil
	}

	if msg, i := s.duelMessageLocked(playerID); msg != nil {
		scored := msg.Clone()
		scored.Score = &playerScore
		scored.ScoreExplanation = explanation
		scored.ImprovedExamples = examples
		s.history[i] = scored
	}

	aiScore := v.AIScore
	ai := s.appendDuelLocked(models.AuthorAI, v.AIReplyText)
	ai.Score = &aiScore
	ai.ScoreExplanation = v.AIScoreExplanation

	s.playerScore += playerScore
	s.aiScore += aiScore
	s.log.Debug("turn resolved", "player_score", playerScore, "ai_score", aiScore,
		"player_total", s.playerScore, "ai_total", s.aiScore)

	switch {
	case v.IsGameOver:
		if v.GameOverReason != "" {
			return v.GameOverReason, true
		}
		return defaultEndReason, true
	case s.playerScore >= ScoreLimit:
		return playerReachedLimit, true
	case s.aiScore >= ScoreLimit:
		return aiReachedLimit, true
	}
	return "", false
}
