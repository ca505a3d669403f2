package rules

import "regexp"

// stagePatterns detect conversational moves that indicate scam-script
// progression. Pattern names map to minimum stages via PatternMinStage.
var stagePatterns = map[string]*regexp.Regexp{
	"greeting":        regexp.MustCompile(`(?i)\b(?:hello|hi|dear|sir|madam|good\s+(?:morning|afternoon|evening))\b`),
	"introduction":    regexp.MustCompile(`(?i)\b(?:i\s+am|this\s+is|calling\s+from|speaking\s+from|on\s+behalf)\b`),
	"authority_claim": regexp.MustCompile(`(?i)\b(?:from\s+(?:bank|rbi|police|customs|government)|official|department)\b`),
	"verification":    regexp.MustCompile(`(?i)\b(?:verify|confirm|validate|check|update)\s+(?:your|account|details)\b`),
	"procedure":       regexp.MustCompile(`(?i)\b(?:procedure|process|step|follow|simple|easy)\b`),
	"credibility":     regexp.MustCompile(`(?i)\b(?:authorized|official|verified|genuine|legitimate)\b`),
	"urgency":         regexp.MustCompile(`(?i)\b(?:urgent|immediate|right\s+now|asap|quickly)\b`),
	"consequence":     regexp.MustCompile(`(?i)\b(?:blocked|suspended|frozen|terminated|legal|penalty|fine)\b`),
	"fear":            regexp.MustCompile(`(?i)\b(?:arrest|jail|court|police|complaint|case|fraud)\b`),
	"deadline":        regexp.MustCompile(`(?i)\b(?:within\s+\d+|today|deadline|expires|last\s+chance)\b`),
	"payment_request": regexp.MustCompile(`(?i)\b(?:pay|transfer|send|deposit)\s+(?:money|amount|rs|₹)\b`),
	"otp_request":     regexp.MustCompile(`(?i)\b(?:share|send|tell|give)\s+(?:otp|code|pin)\b`),
	"link_share":      regexp.MustCompile(`(?i)\b(?:click|open|visit|download)\s+(?:link|app|here)\b`),
	"info_request":    regexp.MustCompile(`(?i)\b(?:provide|share|tell|give)\s+(?:details|number|information)\b`),
}

// StageLevel mirrors the session stage order without importing it; the
// detector translates levels into session stages.
type StageLevel int

const (
	LevelNormal StageLevel = iota
	LevelHook
	LevelTrust
	LevelThreat
	LevelAction
)

// PatternMinStage maps each stage pattern to the minimum stage it implies.
// Patterns without an entry (deadline, info_request) carry no stage weight
// on their own.
var PatternMinStage = map[string]StageLevel{
	"greeting":        LevelHook,
	"introduction":    LevelHook,
	"authority_claim": LevelHook,
	"verification":    LevelTrust,
	"procedure":       LevelTrust,
	"credibility":     LevelTrust,
	"urgency":         LevelThreat,
	"consequence":     LevelThreat,
	"fear":            LevelThreat,
	"payment_request": LevelAction,
	"otp_request":     LevelAction,
	"link_share":      LevelAction,
}

// DetectStagePatterns returns the names of all stage patterns matching the
// message, in stable order.
func DetectStagePatterns(text string) []string {
	var found []string
	for _, name := range stagePatternOrder {
		if stagePatterns[name].MatchString(text) {
			found = append(found, name)
		}
	}
	return found
}

// stagePatternOrder keeps DetectStagePatterns deterministic across runs.
var stagePatternOrder = []string{
	"greeting", "introduction", "authority_claim",
	"verification", "procedure", "credibility",
	"urgency", "consequence", "fear", "deadline",
	"payment_request", "otp_request", "link_share", "info_request",
}
