package models

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Author identifies who produced a duel message.
type Author string

const (
	AuthorPlayer Author = "PLAYER"
	AuthorAI     Author = "AI"
)

// Label is the Romanian display name of the author.
func (a Author) Label() string {
	if a == AuthorAI {
		return "AI"
	}
	return "Jucător"
}

// Polarity marks a system message as good or bad news for the player.
type Polarity string

const (
	PolarityPositive Polarity = "positive"
	PolarityNegative Polarity = "negative"
)

// HistoryItem is either a *DuelMessage or a *SystemMessage. Consumers must
// switch over both variants.
type HistoryItem interface {
	ItemID() string
	Seq() uint64
	Created() time.Time
	CloneItem() HistoryItem
	isHistoryItem()
}

// NewMessageID encodes creation time and insertion sequence into an id.
func NewMessageID(at time.Time, seq uint64) string {
	return fmt.Sprintf("msg-%d-%d", at.UnixMilli(), seq)
}

// MessageTime extracts the creation time encoded by NewMessageID.
func MessageTime(id string) (time.Time, error) {
	parts := strings.Split(id, "-")
	if len(parts) != 3 || parts[0] != "msg" {
		return time.Time{}, fmt.Errorf("malformed message id %q", id)
	}
	ms, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed message id %q: %w", id, err)
	}
	return time.UnixMilli(ms), nil
}

// ImprovedExample is a better reply the oracle suggests for a player statement.
type ImprovedExample struct {
	Score int    `yaml:"score" json:"score"`
	Text  string `yaml:"text" json:"text"`
}

// DuelMessage is a statement by the player or the AI.
type DuelMessage struct {
	ID                  string            `json:"id"`
	Sequence            uint64            `json:"sequence"`
	CreatedAt           time.Time         `json:"createdAt"`
	Author              Author            `json:"author"`
	Text                string            `json:"text"`
	Score               *int              `json:"score,omitempty"`
	ScoreExplanation    string            `json:"scoreExplanation,omitempty"`
	ImprovedExamples    []ImprovedExample `json:"improvedExamples,omitempty"`
	Liked               bool              `json:"liked"`
	MarkedTooComplex    bool              `json:"markedTooComplex"`
	DetailedExplanation string            `json:"detailedExplanation,omitempty"`
	GeneratedImageRef   string            `json:"generatedImageRef,omitempty"`
}

func (m *DuelMessage) ItemID() string     { return m.ID }
func (m *DuelMessage) Seq() uint64        { return m.Sequence }
func (m *DuelMessage) Created() time.Time { return m.CreatedAt }
func (m *DuelMessage) isHistoryItem()     {}

// HasScore reports whether the message has been scored.
func (m *DuelMessage) HasScore() bool { return m.Score != nil }

// ScoreValue returns the score, or 0 while it is pending.
func (m *DuelMessage) ScoreValue() int {
	if m.Score == nil {
		return 0
	}
	return *m.Score
}

// Clone returns a deep copy.
func (m *DuelMessage) Clone() *DuelMessage {
	c := *m
	if m.Score != nil {
		s := *m.Score
		c.Score = &s
	}
	c.ImprovedExamples = slices.Clone(m.ImprovedExamples)
	return &c
}

func (m *DuelMessage) CloneItem() HistoryItem { return m.Clone() }

// SortedExamples returns the improved examples ordered by ascending score.
func (m *DuelMessage) SortedExamples() []ImprovedExample {
	out := slices.Clone(m.ImprovedExamples)
	slices.SortStableFunc(out, func(a, b ImprovedExample) int { return a.Score - b.Score })
	return out
}

// SystemMessage records challenge verdicts and automatic adaptations.
type SystemMessage struct {
	ID        string    `json:"id"`
	Sequence  uint64    `json:"sequence"`
	CreatedAt time.Time `json:"createdAt"`
	Headline  string    `json:"headline"`
	Details   string    `json:"details"`
	Polarity  Polarity  `json:"polarity"`
}

func (m *SystemMessage) ItemID() string     { return m.ID }
func (m *SystemMessage) Seq() uint64        { return m.Sequence }
func (m *SystemMessage) Created() time.Time { return m.CreatedAt }
func (m *SystemMessage) isHistoryItem()     {}

func (m *SystemMessage) CloneItem() HistoryItem {
	c := *m
	return &c
}

// CompareCreation orders two items by creation; it is the canonical order for
// challenge pairs and reports.
func CompareCreation(a, b HistoryItem) int {
	switch {
	case a.Seq() < b.Seq():
		return -1
	case a.Seq() > b.Seq():
		return 1
	}
	return 0
}

// DuelMessages filters system messages out of a history, returning copies.
func DuelMessages(items []HistoryItem) []DuelMessage {
	out := make([]DuelMessage, 0, len(items))
	for _, it := range items {
		switch v := it.(type) {
		case *DuelMessage:
			out = append(out, *v.Clone())
		case *SystemMessage:
		default:
			panic(fmt.Sprintf("models: unknown history item %T", it))
		}
	}
	return out
}

// CloneHistory deep-copies a history.
func CloneHistory(items []HistoryItem) []HistoryItem {
	out := make([]HistoryItem, len(items))
	for i, it := range items {
		out[i] = it.CloneItem()
	}
	return out
}

// ChallengeRecord is the immutable ledger entry of a resolved challenge.
type ChallengeRecord struct {
	ID               string     `json:"id"`
	Number           int        `json:"number"`
	Wager            int        `json:"wager"`
	Approved         bool       `json:"approved"`
	Rationale        string     `json:"rationale"`
	PenaltyApplied   int        `json:"penaltyApplied"`
	PairedMessageIDs [2]string  `json:"pairedMessageIds"`
	Reason           ReasonCode `json:"reasonCode"`
	PlayerArgument   string     `json:"playerArgument,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
}
