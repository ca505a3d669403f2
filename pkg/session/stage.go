package session

// Stage is the ordinal scam-stage of a conversation. Stages only move
// forward; every transition is recorded in the session's stage history.
type Stage int

const (
	StageNormal Stage = iota
	StageHook
	StageTrust
	StageThreat
	StageAction
	StageConfirmed
)

var stageNames = map[Stage]string{
	StageNormal:    "NORMAL",
	StageHook:      "HOOK",
	StageTrust:     "TRUST",
	StageThreat:    "THREAT",
	StageAction:    "ACTION",
	StageConfirmed: "CONFIRMED",
}

// StageDescriptions provides human-readable descriptions for reports.
var StageDescriptions = map[Stage]string{
	StageNormal:    "Normal conversation, no scam indicators",
	StageHook:      "Initial hook detected, elevated attention",
	StageTrust:     "Trust building via authority or credibility claims",
	StageThreat:    "Threats or pressure toward the victim",
	StageAction:    "Concrete action demanded (payment, OTP, remote access)",
	StageConfirmed: "Scam confirmed by cumulative evidence",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return "NORMAL"
}

// ParseStage maps a stage name back to its ordinal. Unknown names report ok=false.
func ParseStage(name string) (Stage, bool) {
	for s, n := range stageNames {
		if n == name {
			return s, true
		}
	}
	return StageNormal, false
}

// Emotion is the persona's current emotional register, drifting with stage.
type Emotion string

const (
	EmotionNeutral   Emotion = "neutral"
	EmotionConfused  Emotion = "confused"
	EmotionConcerned Emotion = "concerned"
	EmotionAnxious   Emotion = "anxious"
	EmotionScared    Emotion = "scared"
	EmotionCompliant Emotion = "compliant"
)

// stageEmotions maps each stage to the persona emotion it induces.
var stageEmotions = map[Stage]Emotion{
	StageNormal:    EmotionNeutral,
	StageHook:      EmotionConfused,
	StageTrust:     EmotionConcerned,
	StageThreat:    EmotionAnxious,
	StageAction:    EmotionScared,
	StageConfirmed: EmotionCompliant,
}

// Language is the session-locked reply language.
type Language string

const (
	LanguageUnset   Language = ""
	LanguageHindi   Language = "hindi"
	LanguageEnglish Language = "english"
)
