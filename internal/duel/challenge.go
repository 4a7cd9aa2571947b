package duel

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/tatianab/duelul-ideilor/internal/models"
)

// phaseHorizon is the history length treated as a full game when reporting
// the game phase to the arbiter.
const phaseHorizon = 20

// ChallengeCost returns the cost of the challenge that follows n resolved
// ones: 1 point, then 3, then the player's wager in [1, MaxWager]. There is
// no fourth challenge.
func ChallengeCost(n, wager int) (int, bool) {
	switch n {
	case 0:
		return 1, true
	case 1:
		return 3, true
	case 2:
		if wager < 1 || wager > MaxWager {
			return 0, false
		}
		return wager, true
	}
	return 0, false
}

// CostForNextChallenge is ChallengeCost for this session. The wager only
// matters for the third challenge.
func (s *Session) CostForNextChallenge(wager int) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ChallengeCost(s.challengeCount, wager)
}

// CanChallenge reports whether a challenge may be opened right now.
func (s *Session) CanChallenge() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canChallengeLocked()
}

func (s *Session) canChallengeLocked() bool {
	if s.acceptingLocked() != nil || s.challengeCount >= MaxChallenges {
		return false
	}
	cost, ok := ChallengeCost(s.challengeCount, 1)
	return ok && s.playerScore >= cost
}

// ChallengeQuote describes the challenge the player is about to file.
type ChallengeQuote struct {
	Number     int
	Cost       int
	NeedsWager bool
	MaxWager   int
	Candidates []models.DuelMessage
	Reasons    []models.ChallengeReason
}

// OpenChallenge prepares a challenge without changing state.
func (s *Session) OpenChallenge() (*ChallengeQuote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.canChallengeLocked() {
		return nil, fmt.Errorf("%w: challenge unavailable", ErrRejected)
	}
	q := &ChallengeQuote{
		Number:     s.challengeCount + 1,
		NeedsWager: s.challengeCount == MaxChallenges-1,
		Candidates: models.DuelMessages(s.history),
		Reasons:    models.ChallengeReasons,
	}
	if q.NeedsWager {
		q.MaxWager = min(MaxWager, s.playerScore)
		q.Cost = 1
	} else {
		q.Cost, _ = ChallengeCost(s.challengeCount, 0)
	}
	return q, nil
}

// ChallengeSubmission is the player's dispute of two messages.
type ChallengeSubmission struct {
	MessageA string
	MessageB string
	Reason   models.ReasonCode
	Argument string
	Wager    int
}

// SubmitChallenge stakes the challenge cost, asks the arbiter for a verdict
// and applies it. An approved challenge refunds the stake and takes up to
// three times the stake from the AI, never below zero. A failed arbitration
// counts as a rejection.
func (s *Session) SubmitChallenge(ctx context.Context, sub ChallengeSubmission) (*models.ChallengeRecord, error) {
	s.mu.Lock()
	req, err := s.prepareChallengeLocked(sub)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.playerScore -= req.Wager
	number := s.challengeCount + 1
	token := s.beginCallLocked(ModeAwaitingChallenge)
	s.log.Info("challenge filed", "number", number, "wager", req.Wager, "reason", req.Reason.Code)
	s.mu.Unlock()

	verdict := s.arbitrate(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.currentLocked(token) {
		s.log.Info("dropping stale challenge verdict", "number", number)
		return nil, ErrClosed
	}
	rec := s.applyChallengeLocked(number, req, verdict)
	s.mode = ModeActive
	return &rec, nil
}

func (s *Session) prepareChallengeLocked(sub ChallengeSubmission) (models.ChallengeRequest, error) {
	var req models.ChallengeRequest
	if err := s.acceptingLocked(); err != nil {
		return req, err
	}
	if s.challengeCount >= MaxChallenges {
		return req, fmt.Errorf("%w: all %d challenges used", ErrRejected, MaxChallenges)
	}
	if sub.MessageA == "" || sub.MessageA == sub.MessageB {
		return req, fmt.Errorf("%w: two distinct messages required", ErrRejected)
	}
	a, _ := s.duelMessageLocked(sub.MessageA)
	b, _ := s.duelMessageLocked(sub.MessageB)
	if a == nil || b == nil {
		return req, fmt.Errorf("%w: challenges must reference duel messages", ErrRejected)
	}
	reason, ok := models.LookupReason(sub.Reason)
	if !ok {
		return req, fmt.Errorf("%w: unknown reason %q", ErrRejected, sub.Reason)
	}
	cost, ok := ChallengeCost(s.challengeCount, sub.Wager)
	if !ok {
		return req, fmt.Errorf("%w: wager %d outside [1,%d]", ErrRejected, sub.Wager, MaxWager)
	}
	if s.playerScore < cost {
		return req, fmt.Errorf("%w: challenge costs %d, player has %d", ErrRejected, cost, s.playerScore)
	}

	earlier, later := a, b
	if models.CompareCreation(a, b) > 0 {
		earlier, later = b, a
	}
	var players []models.DuelMessage
	for _, m := range models.DuelMessages(s.history) {
		if m.Author == models.AuthorPlayer {
			players = append(players, m)
		}
	}
	return models.ChallengeRequest{
		Earlier:       *earlier.Clone(),
		Later:         *later.Clone(),
		Kind:          models.KindOf(*earlier, *later),
		Reason:        reason,
		Argument:      strings.TrimSpace(sub.Argument),
		Wager:         cost,
		Settings:      s.effectiveSettingsLocked(),
		PhasePercent:  int(math.Round(float64(len(s.history)) / phaseHorizon * 100)),
		PlayerHistory: players,
	}, nil
}

func (s *Session) arbitrate(ctx context.Context, req models.ChallengeRequest) *models.ChallengeVerdict {
	callCtx, cancel := s.callContext(ctx)
	defer cancel()
	verdict, err := s.oracle.ArbitrateChallenge(callCtx, req)
	if err == nil && verdict == nil {
		err = errors.New("empty verdict")
	}
	if err != nil {
		s.log.Warn("arbitration failed, rejecting challenge", "error", err)
		return rejectedChallenge(err)
	}
	v := *verdict
	return &v
}

// applyChallengeLocked settles the stake already deducted from the player.
func (s *Session) applyChallengeLocked(number int, req models.ChallengeRequest, v *models.ChallengeVerdict) models.ChallengeRecord {
	penalty := 0
	if v.Approved {
		penalty = clamp(v.Penalty, 0, 3*req.Wager)
		penalty = min(penalty, s.aiScore)
		s.playerScore += req.Wager
		s.aiScore -= penalty
	}

	rec := models.ChallengeRecord{
		ID:               fmt.Sprintf("challenge-%d", number),
		Number:           number,
		Wager:            req.Wager,
		Approved:         v.Approved,
		Rationale:        v.Rationale,
		PenaltyApplied:   penalty,
		PairedMessageIDs: [2]string{req.Earlier.ID, req.Later.ID},
		Reason:           req.Reason.Code,
		PlayerArgument:   req.Argument,
		CreatedAt:        s.opts.Now(),
	}
	s.ledger = append(s.ledger, rec)
	s.challengeCount++

	if v.Approved {
		s.appendSystemLocked(
			fmt.Sprintf("Contestația #%d a fost aprobată", number),
			fmt.Sprintf("%s\nMiza de %d puncte ți-a fost returnată. AI-ul pierde %d puncte.", v.Rationale, req.Wager, penalty),
			models.PolarityPositive,
		)
	} else {
		s.appendSystemLocked(
			fmt.Sprintf("Contestația #%d a fost respinsă", number),
			fmt.Sprintf("%s\nAi pierdut miza de %d puncte.", v.Rationale, req.Wager),
			models.PolarityNegative,
		)
	}
	s.log.Info("challenge resolved", "number", number, "approved", v.Approved,
		"penalty", penalty, "player_total", s.playerScore, "ai_total", s.aiScore)
	return rec
}
