package models

// TurnVerdict is the oracle's judgement of one round: the AI reply plus a
// score for each side.
type TurnVerdict struct {
	AIReplyText            string            `yaml:"ai_reply" json:"aiReplyText"`
	PlayerScore            int               `yaml:"player_score" json:"playerScore"`
	PlayerScoreExplanation string            `yaml:"player_score_explanation" json:"playerScoreExplanation"`
	PlayerImprovedExamples []ImprovedExample `yaml:"player_improved_examples" json:"playerImprovedExamples"`
	AIScore                int               `yaml:"ai_score" json:"aiScore"`
	AIScoreExplanation     string            `yaml:"ai_score_explanation" json:"aiScoreExplanation"`
	IsGameOver             bool              `yaml:"is_game_over" json:"isGameOver"`
	GameOverReason         string            `yaml:"game_over_reason" json:"gameOverReason"`
}

// ChallengeVerdict is the arbiter's decision on a challenge.
type ChallengeVerdict struct {
	Approved  bool   `yaml:"approved" json:"approved"`
	Rationale string `yaml:"rationale" json:"rationale"`
	Penalty   int    `yaml:"penalty" json:"penalty"`
}

// TurnRequest carries everything the stateless oracle needs to score a turn.
// Settings.MetaphorLevel holds the session's current, possibly drifted, level.
type TurnRequest struct {
	History         []DuelMessage
	PlayerTotal     int
	AITotal         int
	Settings        Settings
	TooComplexCount int
}

// SummaryRequest asks for the post-game analysis.
type SummaryRequest struct {
	History  []DuelMessage
	Settings Settings
}

// ChallengeKind classifies the disputed pair.
type ChallengeKind string

const (
	// ChallengeRepetition disputes two AI messages that repeat an idea.
	ChallengeRepetition ChallengeKind = "REPETIȚIE"
	// ChallengeImproperRebuttal disputes a player/AI pair.
	ChallengeImproperRebuttal ChallengeKind = "ANIHILARE NECONFORMĂ"
)

// KindOf classifies a pair of messages.
func KindOf(a, b DuelMessage) ChallengeKind {
	if a.Author == AuthorAI && b.Author == AuthorAI {
		return ChallengeRepetition
	}
	return ChallengeImproperRebuttal
}

// ChallengeRequest is sent to the arbiter. Earlier always precedes Later.
type ChallengeRequest struct {
	Earlier       DuelMessage
	Later         DuelMessage
	Kind          ChallengeKind
	Reason        ChallengeReason
	Argument      string
	Wager         int
	Settings      Settings
	PhasePercent  int
	PlayerHistory []DuelMessage
}

// Image is a generated picture for a message.
type Image struct {
	MIMEType string
	Data     []byte
}
