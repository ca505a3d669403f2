package session

import (
	"log"
	"strings"
	"sync"
	"time"

	"github.com/decoynet/honeytrap/pkg/intel"
)

// Risk thresholds driving stage transitions and the detection latch.
const (
	RiskMax            = 100
	RiskConfirmedLevel = 70
	RiskThreatLevel    = 50
	RiskHookLevel      = 25
)

// recentQuestionWindow bounds the textual de-duplication ring.
const recentQuestionWindow = 10

// intentAskLimit is how many times one canonical intent may be asked
// before further candidates with that intent are blocked.
const intentAskLimit = 2

// Session is the per-conversation authoritative state. All mutation goes
// through methods; each takes the state lock. Turn-at-a-time execution is
// enforced separately by BeginTurn/EndTurn so that a slow external call
// never holds the state lock (the debug endpoint reads concurrently).
type Session struct {
	ID string

	mu       sync.Mutex
	turnGate chan struct{}

	riskScore         int
	stage             Stage
	scamDetected      bool
	hardRuleTriggered bool
	turnCount         int
	lockedLanguage    Language

	signalHistory    []Signal
	judgementHistory []LLMJudgement
	stageHistory     []StageTransition

	intelligence intel.Intelligence
	extractions  []intel.ExtractionItem

	turns           []ConversationTurn
	askedIntents    map[string]int
	recentQuestions []string
	stallCounter    int
	lastAgentIntent string

	persona Persona

	missionComplete bool
	callbackSent    bool
	historySeeded   bool

	createdAt time.Time
	updatedAt time.Time
}

func newSession(id string) *Session {
	now := time.Now()
	return &Session{
		ID:           id,
		turnGate:     make(chan struct{}, 1),
		stage:        StageNormal,
		intelligence: intel.NewIntelligence(),
		askedIntents: make(map[string]int),
		persona:      Persona{Emotion: EmotionNeutral},
		createdAt:    now,
		updatedAt:    now,
	}
}

// BeginTurn acquires the per-session turn slot. At most one turn of a
// session is in flight at any instant; other turns for the same session
// queue here while distinct sessions proceed in parallel.
func (s *Session) BeginTurn() {
	s.turnGate <- struct{}{}
}

// EndTurn releases the turn slot.
func (s *Session) EndTurn() {
	<-s.turnGate
}

// =============================================================================
// Risk & stage engine
// =============================================================================

// AddRisk adds a bounded, monotone risk delta and re-evaluates the stage
// thresholds. Deltas that would exceed the cap are clamped; the attempted
// delta is still logged.
func (s *Session) AddRisk(delta int, reason string) {
	if delta <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addRiskLocked(delta, reason)
}

func (s *Session) addRiskLocked(delta int, reason string) {
	before := s.riskScore
	after := before + delta
	if after > RiskMax {
		after = RiskMax
	}
	s.riskScore = after
	s.updatedAt = time.Now()
	log.Printf("[%s] risk %d -> %d (+%d): %s", s.ID, before, after, delta, reason)

	if s.riskScore >= RiskConfirmedLevel {
		s.scamDetected = true
		s.ensureStageLocked(StageConfirmed)
	} else if s.riskScore >= RiskThreatLevel {
		s.ensureStageLocked(StageThreat)
	} else if s.riskScore >= RiskHookLevel && s.stage == StageNormal {
		s.ensureStageLocked(StageHook)
	}
}

// EnsureStage advances the stage to at least target. Stages never regress.
func (s *Session) EnsureStage(target Stage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureStageLocked(target)
}

func (s *Session) ensureStageLocked(target Stage) {
	if target <= s.stage {
		return
	}
	from := s.stage
	s.stage = target
	s.stageHistory = append(s.stageHistory, StageTransition{
		From:      from,
		To:        target,
		Turn:      s.turnCount,
		Timestamp: time.Now(),
	})
	log.Printf("[%s] stage %s -> %s", s.ID, from, target)

	s.persona.Emotion = stageEmotions[target]
	if target >= StageThreat {
		s.persona.ComplianceLevel += 0.15
		if s.persona.ComplianceLevel > 1.0 {
			s.persona.ComplianceLevel = 1.0
		}
	}
}

// TriggerHardRule latches scam detection, adds the rule score and forces
// the stage to at least ACTION.
func (s *Session) TriggerHardRule(name string, score int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scamDetected = true
	s.hardRuleTriggered = true
	s.addRiskLocked(score, "hard rule "+name)
	s.ensureStageLocked(StageAction)
}

// AddSignal appends a signal to the history and applies its score. Hard
// rules go through the latch path; everything else accumulates.
func (s *Session) AddSignal(sig Signal) {
	s.mu.Lock()
	s.signalHistory = append(s.signalHistory, sig)
	s.mu.Unlock()

	if sig.IsHardRule {
		s.TriggerHardRule(sig.Name, sig.Score)
		return
	}
	s.AddRisk(sig.Score, sig.Description)
}

// ApplyJudgement folds an LLM judgement into the session: the risk boost
// always lands, a confident stage suggestion advances the stage, and a
// high-confidence scam verdict latches detection.
func (s *Session) ApplyJudgement(j LLMJudgement) {
	if j.RiskBoost < 0 {
		j.RiskBoost = 0
	}
	if j.RiskBoost > 30 {
		j.RiskBoost = 30
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.judgementHistory = append(s.judgementHistory, j)

	if j.RiskBoost > 0 {
		s.addRiskLocked(j.RiskBoost, "llm judgement: "+j.Reasoning)
	}
	if j.SuggestedStage != nil && j.Confidence >= 0.7 {
		s.ensureStageLocked(*j.SuggestedStage)
	}
	if j.IsScamLikely && j.Confidence >= 0.85 {
		s.scamDetected = true
	}
}

// =============================================================================
// Turn bookkeeping
// =============================================================================

// NextTurn increments the turn counter and returns the new value.
func (s *Session) NextTurn() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turnCount++
	s.updatedAt = time.Now()
	return s.turnCount
}

// SeedHistory records the caller-provided history, only once and only
// before the first turn completes.
func (s *Session) SeedHistory(turns []ConversationTurn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.historySeeded || s.turnCount > 0 {
		return
	}
	s.historySeeded = true
	s.turns = append(s.turns, turns...)
}

// HistorySeeded reports whether the seed already happened.
func (s *Session) HistorySeeded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.historySeeded
}

// RecordScammerTurn appends an inbound message to the transcript.
func (s *Session) RecordScammerTurn(text string, ts time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ts.IsZero() {
		ts = time.Now()
	}
	s.turns = append(s.turns, ConversationTurn{Who: SpeakerScammer, Text: text, Timestamp: ts})
}

// RecordAgentReply appends the emitted reply and updates the anti-loop
// memory: the recent-question ring, the intent counters and the stall
// counter. The stall counter grows while consecutive replies share an
// intent and resets when the intent changes.
func (s *Session) RecordAgentReply(text, intent string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.turns = append(s.turns, ConversationTurn{
		Who:       SpeakerAgent,
		Text:      text,
		Intent:    intent,
		Timestamp: time.Now(),
	})

	s.recentQuestions = append(s.recentQuestions, strings.ToLower(strings.TrimSpace(text)))
	if len(s.recentQuestions) > recentQuestionWindow {
		s.recentQuestions = s.recentQuestions[len(s.recentQuestions)-recentQuestionWindow:]
	}

	s.askedIntents[intent]++

	if intent != "" && intent == s.lastAgentIntent {
		s.stallCounter++
	} else {
		s.stallCounter = 0
	}
	s.lastAgentIntent = intent
}

// QuestionBlocked reports whether a candidate reply must be skipped: its
// canonical intent saturated, or its text already sits in the recent ring.
func (s *Session) QuestionBlocked(text, intent string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if intent != "" && intent != "generic" && s.askedIntents[intent] >= intentAskLimit {
		return true
	}
	needle := strings.ToLower(strings.TrimSpace(text))
	for _, q := range s.recentQuestions {
		if q == needle {
			return true
		}
	}
	return false
}

// ShouldTerminate reports whether the agent should sign off: the intent
// loop saturated or the engagement hit the turn cap.
func (s *Session) ShouldTerminate(maxTurns int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stallCounter >= 3 || s.turnCount >= maxTurns
}

// RecentTurns returns up to n transcript entries from the tail.
func (s *Session) RecentTurns(n int) []ConversationTurn {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n <= 0 || n > len(s.turns) {
		n = len(s.turns)
	}
	out := make([]ConversationTurn, n)
	copy(out, s.turns[len(s.turns)-n:])
	return out
}

// =============================================================================
// Language lock
// =============================================================================

// LockLanguage sets the reply language once. Later calls are ignored.
func (s *Session) LockLanguage(lang Language) {
	if lang != LanguageHindi && lang != LanguageEnglish {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lockedLanguage == LanguageUnset {
		s.lockedLanguage = lang
		log.Printf("[%s] language locked: %s", s.ID, lang)
	}
}

// Language returns the locked language, LanguageUnset before the lock.
func (s *Session) Language() Language {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lockedLanguage
}

// =============================================================================
// Intelligence
// =============================================================================

// MergeIntel folds extractor output into the session sets, deduplicated,
// and appends the attributed extraction records.
func (s *Session) MergeIntel(found intel.Intelligence, items []intel.ExtractionItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, v := range found.UpiIDs {
		s.intelligence.UpiIDs = appendUniqueStr(s.intelligence.UpiIDs, v)
	}
	for _, v := range found.BankAccounts {
		s.intelligence.BankAccounts = appendUniqueStr(s.intelligence.BankAccounts, v)
	}
	for _, v := range found.PhoneNumbers {
		s.intelligence.PhoneNumbers = appendUniqueStr(s.intelligence.PhoneNumbers, v)
	}
	for _, v := range found.PhishingLinks {
		s.intelligence.PhishingLinks = appendUniqueStr(s.intelligence.PhishingLinks, v)
	}
	for _, v := range found.SuspiciousKeywords {
		s.intelligence.SuspiciousKeywords = appendUniqueStr(s.intelligence.SuspiciousKeywords, v)
	}
	s.extractions = append(s.extractions, items...)
}

// Intel returns a copy of the current artifact sets.
func (s *Session) Intel() intel.Intelligence {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.intelligence.Clone()
}

// Extractions returns a copy of the attributed extraction history.
func (s *Session) Extractions() []intel.ExtractionItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]intel.ExtractionItem, len(s.extractions))
	copy(out, s.extractions)
	return out
}

func appendUniqueStr(dst []string, v string) []string {
	for _, existing := range dst {
		if existing == v {
			return dst
		}
	}
	return append(dst, v)
}

// =============================================================================
// Mission completion
// =============================================================================

// completionCategories are the signal categories counted toward the
// "three strong signals" completion path.
var completionCategories = map[string]bool{
	"financial":       true,
	"otp_request":     true,
	"payment_request": true,
}

// MissionReady evaluates the completion predicate: detection latched, a
// high-value artifact on hand, and either enough turns or enough strong
// signals. A long confirmed engagement completes unconditionally.
func (s *Session) MissionReady() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.scamDetected {
		return false
	}
	if s.turnCount >= 25 {
		return true
	}
	if !s.intelligence.HasHighValue() {
		return false
	}
	if s.turnCount >= 5 {
		return true
	}
	strong := 0
	for _, sig := range s.signalHistory {
		if completionCategories[sig.Category] {
			strong++
		}
	}
	return strong >= 3
}

// MarkMissionComplete latches the mission flag.
func (s *Session) MarkMissionComplete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.missionComplete = true
}

// TryArmCallback atomically flips callbackSent false->true. Returns false
// when a dispatch is already armed or done.
func (s *Session) TryArmCallback() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.callbackSent {
		return false
	}
	s.callbackSent = true
	return true
}

// DisarmCallback clears callbackSent after a terminal dispatch failure so
// a later turn can retry.
func (s *Session) DisarmCallback() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callbackSent = false
}

// =============================================================================
// Read accessors
// =============================================================================

func (s *Session) RiskScore() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.riskScore
}

func (s *Session) Stage() Stage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stage
}

func (s *Session) ScamDetected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scamDetected
}

func (s *Session) HardRuleTriggered() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hardRuleTriggered
}

func (s *Session) TurnCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turnCount
}

func (s *Session) PersonaState() Persona {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persona
}

func (s *Session) SignalCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.signalHistory)
}

// Signals returns a copy of the signal history.
func (s *Session) Signals() []Signal {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Signal, len(s.signalHistory))
	copy(out, s.signalHistory)
	return out
}

// Judgements returns a copy of the judgement history.
func (s *Session) Judgements() []LLMJudgement {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]LLMJudgement, len(s.judgementHistory))
	copy(out, s.judgementHistory)
	return out
}

// Snapshot is the debug view served by GET /session/{id}.
type Snapshot struct {
	SessionID         string            `json:"sessionId"`
	RiskScore         int               `json:"riskScore"`
	Stage             string            `json:"stage"`
	ScamDetected      bool              `json:"scamDetected"`
	HardRuleTriggered bool              `json:"hardRuleTriggered"`
	TurnCount         int               `json:"turnCount"`
	LockedLanguage    string            `json:"lockedLanguage,omitempty"`
	Persona           Persona           `json:"persona"`
	Intelligence      intel.Intelligence `json:"extractedIntelligence"`
	SignalCount       int               `json:"signalCount"`
	StageHistory      []StageTransition `json:"stageHistory"`
	MissionComplete   bool              `json:"missionComplete"`
	CallbackSent      bool              `json:"callbackSent"`
	CreatedAt         time.Time         `json:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
}

// TakeSnapshot returns a consistent copy of the externally visible state.
func (s *Session) TakeSnapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	hist := make([]StageTransition, len(s.stageHistory))
	copy(hist, s.stageHistory)

	return Snapshot{
		SessionID:         s.ID,
		RiskScore:         s.riskScore,
		Stage:             s.stage.String(),
		ScamDetected:      s.scamDetected,
		HardRuleTriggered: s.hardRuleTriggered,
		TurnCount:         s.turnCount,
		LockedLanguage:    string(s.lockedLanguage),
		Persona:           s.persona,
		Intelligence:      s.intelligence.Clone(),
		SignalCount:       len(s.signalHistory),
		StageHistory:      hist,
		MissionComplete:   s.missionComplete,
		CallbackSent:      s.callbackSent,
		CreatedAt:         s.createdAt,
		UpdatedAt:         s.updatedAt,
	}
}
