package duel

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tatianab/duelul-ideilor/internal/models"
)

func aiMessageIDs(t *testing.T, s *Session, rounds int) []string {
	t.Helper()
	for i := 0; i < rounds; i++ {
		play(t, s, "Eu sunt runda")
	}
	var ids []string
	for _, m := range models.DuelMessages(s.Snapshot().History) {
		if m.Author == models.AuthorAI {
			ids = append(ids, m.ID)
		}
	}
	return ids
}

func TestToggleLike(t *testing.T) {
	s := newTestSession(t, &fakeOracle{}, Options{})
	ids := aiMessageIDs(t, s, 1)

	if err := s.ToggleLike(ids[0]); err != nil {
		t.Fatal(err)
	}
	if !lastDuel(t, s.Snapshot(), models.AuthorAI).Liked {
		t.Error("message not liked")
	}
	if err := s.ToggleLike(ids[0]); err != nil {
		t.Fatal(err)
	}
	if lastDuel(t, s.Snapshot(), models.AuthorAI).Liked {
		t.Error("second toggle did not unlike")
	}

	player := lastDuel(t, s.Snapshot(), models.AuthorPlayer)
	if err := s.ToggleLike(player.ID); !errors.Is(err, ErrRejected) {
		t.Errorf("liking a player message: err = %v", err)
	}
}

func TestTooComplexDriftAndCap(t *testing.T) {
	settings := models.NewSettings(4)
	if err := settings.SetMetaphorLevel(15); err != nil {
		t.Fatal(err)
	}
	s, err := NewSession(&fakeOracle{}, settings, Options{Logger: quietLogger(), Now: fixedClock()})
	if err != nil {
		t.Fatal(err)
	}
	ids := aiMessageIDs(t, s, 4)

	wantLevels := []int{15, 14, 13}
	for i, want := range wantLevels {
		if err := s.MarkTooComplex(ids[i]); err != nil {
			t.Fatalf("mark %d: %v", i+1, err)
		}
		if got := s.Snapshot().MetaphorLevel; got != want {
			t.Errorf("after mark %d level = %d, want %d", i+1, got, want)
		}
	}
	if err := s.MarkTooComplex(ids[3]); !errors.Is(err, ErrRejected) {
		t.Errorf("fourth mark: err = %v, want ErrRejected", err)
	}
	st := s.Snapshot()
	if st.TooComplicatedCount != 3 || st.MetaphorLevel != 13 {
		t.Errorf("count=%d level=%d", st.TooComplicatedCount, st.MetaphorLevel)
	}
	sys := systemMessages(st)
	if len(sys) != 2 {
		t.Fatalf("got %d adjustment notices, want 2", len(sys))
	}
	for _, m := range sys {
		if m.Polarity != models.PolarityPositive || !strings.Contains(m.Headline, "metaforic") {
			t.Errorf("notice = %+v", m)
		}
	}
}

func TestTooComplexDriftStopsAtTierMinimum(t *testing.T) {
	s := newTestSession(t, &fakeOracle{}, Options{})
	ids := aiMessageIDs(t, s, 3)
	for _, id := range ids {
		if err := s.MarkTooComplex(id); err != nil {
			t.Fatal(err)
		}
	}
	st := s.Snapshot()
	if floor := models.MetaphorRangeFor(models.DefaultTier).Min; st.MetaphorLevel != floor {
		t.Errorf("level = %d, want tier minimum %d", st.MetaphorLevel, floor)
	}
	if n := len(systemMessages(st)); n != 0 {
		t.Errorf("%d notices for drift that changed nothing", n)
	}
}

func TestMarkTooComplexTwiceRejected(t *testing.T) {
	s := newTestSession(t, &fakeOracle{}, Options{})
	ids := aiMessageIDs(t, s, 1)
	if err := s.MarkTooComplex(ids[0]); err != nil {
		t.Fatal(err)
	}
	if err := s.MarkTooComplex(ids[0]); !errors.Is(err, ErrRejected) {
		t.Errorf("err = %v, want ErrRejected", err)
	}
	if got := s.Snapshot().TooComplicatedCount; got != 1 {
		t.Errorf("count = %d, want 1", got)
	}
}

func TestRequestExplanationCaches(t *testing.T) {
	o := &fakeOracle{}
	s := newTestSession(t, o, Options{})
	ids := aiMessageIDs(t, s, 1)

	first, err := s.RequestExplanation(context.Background(), ids[0])
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.RequestExplanation(context.Background(), ids[0])
	if err != nil {
		t.Fatal(err)
	}
	if first != second || o.explainCalls != 1 {
		t.Errorf("explanations %q / %q after %d calls", first, second, o.explainCalls)
	}
	if got := lastDuel(t, s.Snapshot(), models.AuthorAI).DetailedExplanation; got != first {
		t.Errorf("cached explanation = %q", got)
	}
}

func TestRequestExplanationFailure(t *testing.T) {
	o := &fakeOracle{explain: func(string, int) (string, error) { return "", errOffline }}
	s := newTestSession(t, o, Options{})
	ids := aiMessageIDs(t, s, 1)

	text, err := s.RequestExplanation(context.Background(), ids[0])
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text, errOffline.Error()) {
		t.Errorf("fallback = %q", text)
	}
	if got := lastDuel(t, s.Snapshot(), models.AuthorAI).DetailedExplanation; got != "" {
		t.Errorf("failure was cached: %q", got)
	}
}

func TestVisualize(t *testing.T) {
	images := &memImages{}
	s := newTestSession(t, &fakeOracle{}, Options{Images: images, ImageMinScore: DefaultImageMinScore})
	play(t, s, "Eu sunt focul")
	st := s.Snapshot()
	player := lastDuel(t, st, models.AuthorPlayer)
	ai := lastDuel(t, st, models.AuthorAI)

	if s.CanVisualize(ai.ID) {
		t.Errorf("AI message scored %d is visualizable", ai.ScoreValue())
	}
	if _, err := s.Visualize(context.Background(), ai.ID); !errors.Is(err, ErrRejected) {
		t.Errorf("visualize low score: err = %v", err)
	}

	ref, err := s.Visualize(context.Background(), player.ID)
	if err != nil {
		t.Fatal(err)
	}
	if images.saved[player.ID] == nil {
		t.Error("image not stored")
	}
	if got := lastDuel(t, s.Snapshot(), models.AuthorPlayer).GeneratedImageRef; got != ref {
		t.Errorf("ref = %q, want %q", got, ref)
	}
}

func TestVisualizeWithoutThreshold(t *testing.T) {
	s := newTestSession(t, &fakeOracle{}, Options{Images: &memImages{}})
	ids := aiMessageIDs(t, s, 1)
	if !s.CanVisualize(ids[0]) {
		t.Error("threshold disabled but message not visualizable")
	}
}

func TestVisualizeFailureLeavesStateUntouched(t *testing.T) {
	o := &fakeOracle{image: func(string) (*models.Image, error) { return nil, errOffline }}
	s := newTestSession(t, o, Options{Images: &memImages{}})
	ids := aiMessageIDs(t, s, 1)
	if _, err := s.Visualize(context.Background(), ids[0]); !errors.Is(err, errOffline) {
		t.Errorf("err = %v, want wrapped errOffline", err)
	}
	if got := lastDuel(t, s.Snapshot(), models.AuthorAI).GeneratedImageRef; got != "" {
		t.Errorf("ref set after failure: %q", got)
	}
}
