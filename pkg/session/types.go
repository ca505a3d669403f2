package session

import "time"

// SignalSource identifies which detector layer produced a signal.
type SignalSource string

const (
	SourceRule SignalSource = "rule"
	SourceML   SignalSource = "ml"
	SourceLLM  SignalSource = "llm"
)

// Signal is one scored detection event appended to the session history.
type Signal struct {
	Category    string       `json:"category"`
	Name        string       `json:"name"`
	Score       int          `json:"score"`
	IsHardRule  bool         `json:"is_hard_rule"`
	Source      SignalSource `json:"source"`
	Turn        int          `json:"turn"`
	Description string       `json:"description"`
}

// LLMJudgement is the structured output of the reasoning judge for one turn.
// RiskBoost is clamped to [0, 30] before it is applied.
type LLMJudgement struct {
	Turn           int      `json:"turn"`
	IsScamLikely   bool     `json:"is_scam_likely"`
	Confidence     float64  `json:"confidence"`
	ScamType       string   `json:"scam_type,omitempty"`
	Reasoning      string   `json:"reasoning"`
	RiskBoost      int      `json:"risk_boost"`
	SuggestedStage *Stage   `json:"suggested_stage,omitempty"`
	RedFlags       []string `json:"red_flags,omitempty"`
}

// Speaker tags who authored a conversation turn.
type Speaker string

const (
	SpeakerScammer Speaker = "scammer"
	SpeakerAgent   Speaker = "agent"
)

// ConversationTurn is one recorded message in the session transcript.
type ConversationTurn struct {
	Who       Speaker   `json:"who"`
	Text      string    `json:"text"`
	Intent    string    `json:"intent,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// StageTransition records a forward stage move.
type StageTransition struct {
	From      Stage     `json:"from"`
	To        Stage     `json:"to"`
	Turn      int       `json:"turn"`
	Timestamp time.Time `json:"timestamp"`
}

// Persona is the drifting emotional state of the victim character. The
// persona itself (confused ordinary user) never changes; only the register.
type Persona struct {
	Emotion         Emotion `json:"emotion"`
	ComplianceLevel float64 `json:"compliance_level"`
	TrustLevel      float64 `json:"trust_level"`
}
