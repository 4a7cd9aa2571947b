package duel

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/tatianab/duelul-ideilor/internal/models"
)

func TestChallengeCost(t *testing.T) {
	tests := []struct {
		n, wager int
		want     int
		ok       bool
	}{
		{0, 0, 1, true},
		{0, 9, 1, true},
		{1, 0, 3, true},
		{2, 1, 1, true},
		{2, 10, 10, true},
		{2, 0, 0, false},
		{2, 11, 0, false},
		{3, 5, 0, false},
	}
	for _, tt := range tests {
		got, ok := ChallengeCost(tt.n, tt.wager)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ChallengeCost(%d, %d) = %d, %v; want %d, %v", tt.n, tt.wager, got, ok, tt.want, tt.ok)
		}
	}
}

// duelWithRound returns a session after one round and the ids of the player
// and AI messages.
func duelWithRound(t *testing.T, o *fakeOracle) (*Session, string, string) {
	t.Helper()
	s := newTestSession(t, o, Options{})
	play(t, s, "Eu sunt focul")
	st := s.Snapshot()
	return s, lastDuel(t, st, models.AuthorPlayer).ID, lastDuel(t, st, models.AuthorAI).ID
}

func TestChallengeApprovedWithWager(t *testing.T) {
	o := &fakeOracle{arbitrate: func(models.ChallengeRequest) (*models.ChallengeVerdict, error) {
		return &models.ChallengeVerdict{Approved: true, Rationale: "Corect.", Penalty: 25}, nil
	}}
	s, playerID, aiID := duelWithRound(t, o)
	s.mu.Lock()
	s.challengeCount = 2
	s.aiScore = 5
	s.mu.Unlock()

	rec, err := s.SubmitChallenge(context.Background(), ChallengeSubmission{
		MessageA: aiID, MessageB: playerID, Reason: models.ReasonFailedAnnul, Wager: 7,
	})
	if err != nil {
		t.Fatalf("SubmitChallenge: %v", err)
	}
	st := s.Snapshot()
	if st.AIScore != 0 || st.PlayerScore != 10 {
		t.Errorf("totals = %d/%d, want 10/0", st.PlayerScore, st.AIScore)
	}
	if rec.PenaltyApplied != 5 || rec.Wager != 7 || !rec.Approved || rec.Number != 3 {
		t.Errorf("record = %+v", rec)
	}
	if st.ChallengeCount != 3 || st.Mode != ModeActive {
		t.Errorf("count=%d mode=%s", st.ChallengeCount, st.Mode)
	}
	sys := systemMessages(st)
	if len(sys) != 1 || sys[0].Polarity != models.PolarityPositive {
		t.Fatalf("system messages = %+v", sys)
	}
	if s.CanChallenge() {
		t.Error("fourth challenge allowed")
	}
}

func TestChallengePenaltyCappedAtThreeTimesWager(t *testing.T) {
	o := &fakeOracle{arbitrate: func(models.ChallengeRequest) (*models.ChallengeVerdict, error) {
		return &models.ChallengeVerdict{Approved: true, Rationale: "Da.", Penalty: 50}, nil
	}}
	s, playerID, aiID := duelWithRound(t, o)
	s.mu.Lock()
	s.aiScore = 40
	s.mu.Unlock()

	rec, err := s.SubmitChallenge(context.Background(), ChallengeSubmission{
		MessageA: playerID, MessageB: aiID, Reason: models.ReasonVague,
	})
	if err != nil {
		t.Fatal(err)
	}
	if rec.PenaltyApplied != 3 {
		t.Errorf("penalty = %d, want 3", rec.PenaltyApplied)
	}
	if st := s.Snapshot(); st.AIScore != 37 || st.PlayerScore != 10 {
		t.Errorf("totals = %d/%d, want 10/37", st.PlayerScore, st.AIScore)
	}
}

func TestChallengeRejectedCostsStake(t *testing.T) {
	o := &fakeOracle{}
	s, playerID, aiID := duelWithRound(t, o)

	for i, wantCost := range []int{1, 3} {
		before := s.Snapshot().PlayerScore
		if cost, _ := s.CostForNextChallenge(0); cost != wantCost {
			t.Fatalf("challenge %d cost = %d, want %d", i+1, cost, wantCost)
		}
		rec, err := s.SubmitChallenge(context.Background(), ChallengeSubmission{
			MessageA: aiID, MessageB: playerID, Reason: models.ReasonCliche, Argument: "  clișeu  ",
		})
		if err != nil {
			t.Fatalf("challenge %d: %v", i+1, err)
		}
		if rec.Approved || rec.PenaltyApplied != 0 || rec.PlayerArgument != "clișeu" {
			t.Errorf("record = %+v", rec)
		}
		if got := s.Snapshot().PlayerScore; got != before-wantCost {
			t.Errorf("challenge %d: player total %d, want %d", i+1, got, before-wantCost)
		}
	}
	st := s.Snapshot()
	if len(st.Ledger) != 2 || st.Ledger[1].ID != "challenge-2" {
		t.Errorf("ledger = %+v", st.Ledger)
	}
	sys := systemMessages(st)
	if len(sys) != 2 || sys[1].Polarity != models.PolarityNegative {
		t.Errorf("system messages = %+v", sys)
	}
}

func TestChallengePairIsOrderedByCreation(t *testing.T) {
	o := &fakeOracle{}
	s, playerID, aiID := duelWithRound(t, o)
	if _, err := s.SubmitChallenge(context.Background(), ChallengeSubmission{
		MessageA: aiID, MessageB: playerID, Reason: models.ReasonBadLogic,
	}); err != nil {
		t.Fatal(err)
	}
	req := o.challengeReqs[0]
	if req.Earlier.ID != playerID || req.Later.ID != aiID {
		t.Errorf("pair = %s, %s; want %s, %s", req.Earlier.ID, req.Later.ID, playerID, aiID)
	}
	if req.Kind != models.ChallengeImproperRebuttal {
		t.Errorf("kind = %s", req.Kind)
	}
	if req.PhasePercent != 10 {
		t.Errorf("phase = %d, want 10", req.PhasePercent)
	}
	rec := s.Snapshot().Ledger[0]
	if diff := cmp.Diff([2]string{playerID, aiID}, rec.PairedMessageIDs); diff != "" {
		t.Errorf("paired ids (-want +got):\n%s", diff)
	}
}

func TestChallengeFailureIsRejection(t *testing.T) {
	o := &fakeOracle{arbitrate: func(models.ChallengeRequest) (*models.ChallengeVerdict, error) {
		return nil, errOffline
	}}
	s, playerID, aiID := duelWithRound(t, o)
	rec, err := s.SubmitChallenge(context.Background(), ChallengeSubmission{
		MessageA: playerID, MessageB: aiID, Reason: models.ReasonIrrelevant,
	})
	if err != nil {
		t.Fatal(err)
	}
	if rec.Approved || !strings.Contains(rec.Rationale, errOffline.Error()) {
		t.Errorf("record = %+v", rec)
	}
	if st := s.Snapshot(); st.PlayerScore != 9 || st.Mode != ModeActive {
		t.Errorf("player=%d mode=%s", st.PlayerScore, st.Mode)
	}
}

func TestInvalidChallengesLeaveStateUnchanged(t *testing.T) {
	o := &fakeOracle{}
	s, playerID, aiID := duelWithRound(t, o)
	sysID := "msg-0-999"

	tests := []struct {
		name string
		sub  ChallengeSubmission
	}{
		{"same message", ChallengeSubmission{MessageA: aiID, MessageB: aiID, Reason: models.ReasonVague}},
		{"unknown message", ChallengeSubmission{MessageA: aiID, MessageB: sysID, Reason: models.ReasonVague}},
		{"missing reason", ChallengeSubmission{MessageA: aiID, MessageB: playerID}},
		{"unknown reason", ChallengeSubmission{MessageA: aiID, MessageB: playerID, Reason: "boredom"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := s.Snapshot()
			if _, err := s.SubmitChallenge(context.Background(), tt.sub); !errors.Is(err, ErrRejected) {
				t.Fatalf("err = %v, want ErrRejected", err)
			}
			if diff := cmp.Diff(before, s.Snapshot()); diff != "" {
				t.Errorf("state changed (-before +after):\n%s", diff)
			}
		})
	}
	if len(o.challengeReqs) != 0 {
		t.Errorf("arbiter called %d times", len(o.challengeReqs))
	}
}

func TestThirdChallengeNeedsValidWager(t *testing.T) {
	s, playerID, aiID := duelWithRound(t, &fakeOracle{})
	s.mu.Lock()
	s.challengeCount = 2
	s.mu.Unlock()

	q, err := s.OpenChallenge()
	if err != nil {
		t.Fatal(err)
	}
	if !q.NeedsWager || q.MaxWager != 10 || q.Number != 3 {
		t.Errorf("quote = %+v", q)
	}
	for _, w := range []int{0, 11} {
		_, err := s.SubmitChallenge(context.Background(), ChallengeSubmission{
			MessageA: playerID, MessageB: aiID, Reason: models.ReasonVague, Wager: w,
		})
		if !errors.Is(err, ErrRejected) {
			t.Errorf("wager %d: err = %v, want ErrRejected", w, err)
		}
	}
}

func TestCannotAffordChallenge(t *testing.T) {
	s, playerID, aiID := duelWithRound(t, &fakeOracle{})
	s.mu.Lock()
	s.challengeCount = 1
	s.playerScore = 2
	s.mu.Unlock()

	if s.CanChallenge() {
		t.Error("CanChallenge with 2 points for a 3-point challenge")
	}
	if _, err := s.OpenChallenge(); !errors.Is(err, ErrRejected) {
		t.Errorf("OpenChallenge err = %v", err)
	}
	if _, err := s.SubmitChallenge(context.Background(), ChallengeSubmission{
		MessageA: playerID, MessageB: aiID, Reason: models.ReasonVague,
	}); !errors.Is(err, ErrRejected) {
		t.Errorf("SubmitChallenge err = %v", err)
	}
}

func TestRepetitionKindForTwoAIMessages(t *testing.T) {
	o := &fakeOracle{}
	s := newTestSession(t, o, Options{})
	play(t, s, "Eu sunt focul")
	play(t, s, "Eu sunt aburul")
	var ai []string
	for _, m := range models.DuelMessages(s.Snapshot().History) {
		if m.Author == models.AuthorAI {
			ai = append(ai, m.ID)
		}
	}
	if _, err := s.SubmitChallenge(context.Background(), ChallengeSubmission{
		MessageA: ai[1], MessageB: ai[0], Reason: models.ReasonRepetition,
	}); err != nil {
		t.Fatal(err)
	}
	req := o.challengeReqs[0]
	if req.Kind != models.ChallengeRepetition || len(req.PlayerHistory) != 2 {
		t.Errorf("kind=%s player history=%d", req.Kind, len(req.PlayerHistory))
	}
}
