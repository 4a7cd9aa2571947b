// Package duel implements the duel session: history, scores, feedback-driven
// metaphor adaptation, the challenge ledger and the end-of-game transition,
// all sequenced against a fallible Oracle.
package duel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tatianab/duelul-ideilor/internal/models"
)

// Mode is the session's position in its lifecycle.
type Mode int

const (
	ModeActive Mode = iota
	ModeAwaitingTurn
	ModeAwaitingChallenge
	ModeSummarizing
	ModeEnded
)

func (m Mode) String() string {
	switch m {
	case ModeActive:
		return "ACTIVE"
	case ModeAwaitingTurn:
		return "AWAITING_TURN"
	case ModeAwaitingChallenge:
		return "AWAITING_CHALLENGE"
	case ModeSummarizing:
		return "SUMMARIZING"
	case ModeEnded:
		return "ENDED"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Intents that do not fit the current state fail with one of these errors and
// leave the session untouched.
var (
	ErrRejected = errors.New("duel: intent rejected")
	ErrBusy     = errors.New("duel: oracle call in flight")
	ErrEnded    = errors.New("duel: duel is over")
	ErrClosed   = errors.New("duel: session closed")
)

const (
	// DefaultDraft is the input text offered after every completed round.
	DefaultDraft = "Eu sunt..."

	ScoreLimit    = 100
	MaxTooComplex = 3
	MaxChallenges = 3
	MaxWager      = 10

	// DefaultImageMinScore is the score a message needs before it can be
	// visualized.
	DefaultImageMinScore = 7
)

// Options tunes a session. The zero value is usable.
type Options struct {
	Logger *slog.Logger
	Now    func() time.Time
	// CallTimeout bounds each oracle call; zero leaves calls unbounded.
	CallTimeout time.Duration
	// ImageMinScore gates Visualize; zero or less allows any message.
	ImageMinScore int
	Images        ImageStore
}

// Session is one duel. All methods are safe for concurrent use; oracle calls
// run without holding the lock, and at most one turn, challenge or summary
// call is in flight at a time.
type Session struct {
	mu sync.Mutex

	id       uuid.UUID
	oracle   Oracle
	settings models.Settings
	opts     Options
	log      *slog.Logger

	mode   Mode
	closed bool
	token  uint64
	seq    uint64

	history             []models.HistoryItem
	playerScore         int
	aiScore             int
	isOver              bool
	endReason           string
	finalSummary        string
	tooComplicatedCount int
	metaphorLevel       int
	challengeCount      int
	ledger              []models.ChallengeRecord
	draft               string
}

// NewSession starts a duel with empty history and zero scores.
func NewSession(oracle Oracle, settings models.Settings, opts Options) (*Session, error) {
	if oracle == nil {
		return nil, errors.New("duel: nil oracle")
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("duel: invalid settings: %w", err)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	id := uuid.New()
	return &Session{
		id:            id,
		oracle:        oracle,
		settings:      settings.Clone(),
		opts:          opts,
		log:           opts.Logger.With(slog.String("duel", id.String())),
		mode:          ModeActive,
		metaphorLevel: settings.MetaphorLevel,
		draft:         DefaultDraft,
	}, nil
}

// ID identifies the session.
func (s *Session) ID() uuid.UUID { return s.id }

// Settings returns the settings the duel started with.
func (s *Session) Settings() models.Settings { return s.settings.Clone() }

// Mode reports the current lifecycle state.
func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// State is a deep copy of the session, safe to render or export.
type State struct {
	ID                  string
	Mode                Mode
	Settings            models.Settings
	History             []models.HistoryItem
	PlayerScore         int
	AIScore             int
	IsOver              bool
	EndReason           string
	FinalSummary        string
	TooComplicatedCount int
	MetaphorLevel       int
	ChallengeCount      int
	Ledger              []models.ChallengeRecord
	Draft               string
}

// Snapshot copies the session state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	ledger := make([]models.ChallengeRecord, len(s.ledger))
	copy(ledger, s.ledger)
	return State{
		ID:                  s.id.String(),
		Mode:                s.mode,
		Settings:            s.settings.Clone(),
		History:             models.CloneHistory(s.history),
		PlayerScore:         s.playerScore,
		AIScore:             s.aiScore,
		IsOver:              s.isOver,
		EndReason:           s.endReason,
		FinalSummary:        s.finalSummary,
		TooComplicatedCount: s.tooComplicatedCount,
		MetaphorLevel:       s.metaphorLevel,
		ChallengeCount:      s.challengeCount,
		Ledger:              ledger,
		Draft:               s.draft,
	}
}

// SetDraft stores the text currently typed by the player.
func (s *Session) SetDraft(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed && !s.isOver {
		s.draft = text
	}
}

// Close discards the session when the player returns to the dashboard.
// Results of calls still in flight are dropped when they arrive.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.token++
	s.log.Debug("session closed", "mode", s.mode)
}

// acceptingLocked checks that the session can start a new oracle-backed step.
func (s *Session) acceptingLocked() error {
	switch {
	case s.closed:
		return ErrClosed
	case s.isOver:
		return ErrEnded
	case s.mode != ModeActive:
		return fmt.Errorf("%w: %s", ErrBusy, s.mode)
	}
	return nil
}

// mutableLocked checks that feedback may still be recorded.
func (s *Session) mutableLocked() error {
	switch {
	case s.closed:
		return ErrClosed
	case s.isOver:
		return ErrEnded
	}
	return nil
}

func (s *Session) beginCallLocked(mode Mode) uint64 {
	s.mode = mode
	s.token++
	s.log.Debug("oracle call started", "mode", mode)
	return s.token
}

// currentLocked reports whether a call started with token may still apply
// its result.
func (s *Session) currentLocked(token uint64) bool {
	return !s.closed && s.token == token
}

func (s *Session) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.CallTimeout > 0 {
		return context.WithTimeout(ctx, s.opts.CallTimeout)
	}
	return context.WithCancel(ctx)
}

func (s *Session) nextIDLocked() (string, uint64, time.Time) {
	s.seq++
	now := s.opts.Now()
	return models.NewMessageID(now, s.seq), s.seq, now
}

func (s *Session) appendDuelLocked(author models.Author, text string) *models.DuelMessage {
	id, seq, now := s.nextIDLocked()
	msg := &models.DuelMessage{ID: id, Sequence: seq, CreatedAt: now, Author: author, Text: text}
	s.history = append(s.history, msg)
	return msg
}

func (s *Session) appendSystemLocked(headline, details string, polarity models.Polarity) {
	id, seq, now := s.nextIDLocked()
	s.history = append(s.history, &models.SystemMessage{
		ID: id, Sequence: seq, CreatedAt: now,
		Headline: headline, Details: details, Polarity: polarity,
	})
}

// findLocked returns the index of the item with the given id, or -1.
func (s *Session) findLocked(id string) int {
	for i, it := range s.history {
		if it.ItemID() == id {
			return i
		}
	}
	return -1
}

func (s *Session) duelMessageLocked(id string) (*models.DuelMessage, int) {
	i := s.findLocked(id)
	if i < 0 {
		return nil, -1
	}
	switch v := s.history[i].(type) {
	case *models.DuelMessage:
		return v, i
	case *models.SystemMessage:
		return nil, -1
	default:
		panic(fmt.Sprintf("duel: unknown history item %T", v))
	}
}

// effectiveSettingsLocked substitutes the drifted metaphor level.
func (s *Session) effectiveSettingsLocked() models.Settings {
	eff := s.settings.Clone()
	eff.MetaphorLevel = s.metaphorLevel
	return eff
}
