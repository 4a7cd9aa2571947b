package duel

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tatianab/duelul-ideilor/internal/models"
)

// ToggleLike flips the like flag of an AI message.
func (s *Session) ToggleLike(messageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mutableLocked(); err != nil {
		return err
	}
	msg, i := s.duelMessageLocked(messageID)
	if msg == nil || msg.Author != models.AuthorAI {
		return fmt.Errorf("%w: %s is not an AI message", ErrRejected, messageID)
	}
	liked := msg.Clone()
	liked.Liked = !liked.Liked
	s.history[i] = liked
	return nil
}

// MarkTooComplex flags an AI message as too complicated. At most
// MaxTooComplex marks are accepted per duel; the second and third each lower
// the metaphor level by one, down to the tier minimum.
func (s *Session) MarkTooComplex(messageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mutableLocked(); err != nil {
		return err
	}
	if s.tooComplicatedCount >= MaxTooComplex {
		return fmt.Errorf("%w: too-complex limit of %d reached", ErrRejected, MaxTooComplex)
	}
	msg, i := s.duelMessageLocked(messageID)
	if msg == nil || msg.Author != models.AuthorAI {
		return fmt.Errorf("%w: %s is not an AI message", ErrRejected, messageID)
	}
	if msg.MarkedTooComplex {
		return fmt.Errorf("%w: %s already marked", ErrRejected, messageID)
	}
	marked := msg.Clone()
	marked.MarkedTooComplex = true
	s.history[i] = marked
	s.tooComplicatedCount++

	if s.tooComplicatedCount == 2 || s.tooComplicatedCount == 3 {
		s.lowerMetaphorLevelLocked()
	}
	return nil
}

func (s *Session) lowerMetaphorLevelLocked() {
	floor := models.MetaphorRangeFor(s.settings.Tier).Min
	if s.metaphorLevel <= floor {
		return
	}
	old := s.metaphorLevel
	s.metaphorLevel--
	s.log.Info("metaphor level lowered", "from", old, "to", s.metaphorLevel)
	s.appendSystemLocked(
		"Nivel metaforic ajustat",
		fmt.Sprintf("Ai marcat %d răspunsuri ca prea complicate. Nivelul metaforic scade de la %d la %d.",
			s.tooComplicatedCount, old, s.metaphorLevel),
		models.PolarityPositive,
	)
}

// RequestExplanation asks the oracle to explain a message in plain words.
// The result is cached on the message; failures return fallback text.
func (s *Session) RequestExplanation(ctx context.Context, messageID string) (string, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return "", ErrClosed
	}
	msg, _ := s.duelMessageLocked(messageID)
	if msg == nil {
		s.mu.Unlock()
		return "", fmt.Errorf("%w: unknown message %s", ErrRejected, messageID)
	}
	if msg.DetailedExplanation != "" {
		cached := msg.DetailedExplanation
		s.mu.Unlock()
		return cached, nil
	}
	text, tier := msg.Text, s.settings.Tier
	s.mu.Unlock()

	callCtx, cancel := s.callContext(ctx)
	explanation, err := s.oracle.Explain(callCtx, text, tier)
	cancel()
	if err != nil {
		s.log.Warn("explanation oracle failed", "message", messageID, "error", err)
		return fmt.Sprintf("Nu am putut genera o explicație. Motiv: %v.", err), nil
	}
	explanation = strings.TrimSpace(explanation)
	if explanation == "" {
		return explanationUnavailable, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if m, i := s.duelMessageLocked(messageID); m != nil && !s.closed {
		c := m.Clone()
		c.DetailedExplanation = explanation
		s.history[i] = c
	}
	return explanation, nil
}

// CanVisualize reports whether a message qualifies for image generation.
func (s *Session) CanVisualize(messageID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg, _ := s.duelMessageLocked(messageID)
	return s.visualizableLocked(msg)
}

func (s *Session) visualizableLocked(msg *models.DuelMessage) bool {
	if msg == nil || s.closed || s.opts.Images == nil {
		return false
	}
	if s.opts.ImageMinScore > 0 {
		return msg.HasScore() && msg.ScoreValue() >= s.opts.ImageMinScore
	}
	return true
}

// Visualize generates an image for a message and records its reference.
// Image generation is additive: failures are returned to the caller and do
// not touch duel state.
func (s *Session) Visualize(ctx context.Context, messageID string) (string, error) {
	s.mu.Lock()
	msg, _ := s.duelMessageLocked(messageID)
	if !s.visualizableLocked(msg) {
		s.mu.Unlock()
		return "", fmt.Errorf("%w: %s cannot be visualized", ErrRejected, messageID)
	}
	if msg.GeneratedImageRef != "" {
		ref := msg.GeneratedImageRef
		s.mu.Unlock()
		return ref, nil
	}
	prompt := msg.Text
	s.mu.Unlock()

	callCtx, cancel := s.callContext(ctx)
	img, err := s.oracle.GenerateImage(callCtx, prompt)
	cancel()
	if err == nil && (img == nil || len(img.Data) == 0) {
		err = errors.New("no image returned")
	}
	if err != nil {
		return "", fmt.Errorf("duel: generate image: %w", err)
	}
	ref, err := s.opts.Images.SaveImage(messageID, img)
	if err != nil {
		return "", fmt.Errorf("duel: save image: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if m, i := s.duelMessageLocked(messageID); m != nil && !s.closed {
		c := m.Clone()
		c.GeneratedImageRef = ref
		s.history[i] = c
	}
	return ref, nil
}
