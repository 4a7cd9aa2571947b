package duel

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/tatianab/duelul-ideilor/internal/models"
)

// fakeOracle answers from canned values. A nil func gives a fixed default.
type fakeOracle struct {
	mu sync.Mutex

	turn      func(models.TurnRequest) (*models.TurnVerdict, error)
	summary   func(models.SummaryRequest) (string, error)
	arbitrate func(models.ChallengeRequest) (*models.ChallengeVerdict, error)
	explain   func(string, int) (string, error)
	image     func(string) (*models.Image, error)

	turnReqs      []models.TurnRequest
	challengeReqs []models.ChallengeRequest
	explainCalls  int
}

func (f *fakeOracle) RequestTurn(_ context.Context, req models.TurnRequest) (*models.TurnVerdict, error) {
	f.mu.Lock()
	f.turnReqs = append(f.turnReqs, req)
	fn := f.turn
	f.mu.Unlock()
	if fn == nil {
		return &models.TurnVerdict{AIReplyText: "Eu sunt apa", PlayerScore: 5, AIScore: 4}, nil
	}
	return fn(req)
}

func (f *fakeOracle) Summarize(_ context.Context, req models.SummaryRequest) (string, error) {
	if f.summary == nil {
		return "Un duel reușit.", nil
	}
	return f.summary(req)
}

func (f *fakeOracle) ArbitrateChallenge(_ context.Context, req models.ChallengeRequest) (*models.ChallengeVerdict, error) {
	f.mu.Lock()
	f.challengeReqs = append(f.challengeReqs, req)
	fn := f.arbitrate
	f.mu.Unlock()
	if fn == nil {
		return &models.ChallengeVerdict{Approved: false, Rationale: "Nu se justifică."}, nil
	}
	return fn(req)
}

func (f *fakeOracle) Explain(_ context.Context, text string, tier int) (string, error) {
	f.mu.Lock()
	f.explainCalls++
	f.mu.Unlock()
	if f.explain == nil {
		return "Pe scurt: " + text, nil
	}
	return f.explain(text, tier)
}

func (f *fakeOracle) GenerateImage(_ context.Context, prompt string) (*models.Image, error) {
	if f.image == nil {
		return &models.Image{MIMEType: "image/png", Data: []byte("png")}, nil
	}
	return f.image(prompt)
}

type memImages struct {
	saved map[string]*models.Image
}

func (m *memImages) SaveImage(id string, img *models.Image) (string, error) {
	if m.saved == nil {
		m.saved = make(map[string]*models.Image)
	}
	m.saved[id] = img
	return "images/" + id + ".png", nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixedClock() func() time.Time {
	t := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func newTestSession(t *testing.T, o Oracle, opts Options) *Session {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = quietLogger()
	}
	if opts.Now == nil {
		opts.Now = fixedClock()
	}
	s, err := NewSession(o, models.NewSettings(models.DefaultTier), opts)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return s
}

// play submits text and fails the test on error.
func play(t *testing.T, s *Session, text string) {
	t.Helper()
	if err := s.SubmitPlayerText(context.Background(), text); err != nil {
		t.Fatalf("SubmitPlayerText(%q): %v", text, err)
	}
}

func lastDuel(t *testing.T, st State, author models.Author) models.DuelMessage {
	t.Helper()
	msgs := models.DuelMessages(st.History)
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Author == author {
			return msgs[i]
		}
	}
	t.Fatalf("no %s message in history", author)
	return models.DuelMessage{}
}

func systemMessages(st State) []*models.SystemMessage {
	var out []*models.SystemMessage
	for _, it := range st.History {
		if m, ok := it.(*models.SystemMessage); ok {
			out = append(out, m)
		}
	}
	return out
}

var errOffline = errors.New("oracle offline")
