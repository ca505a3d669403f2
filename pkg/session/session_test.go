package session

import (
	"sync"
	"testing"

	"github.com/decoynet/honeytrap/pkg/intel"
)

func TestAddRisk_ClampAndMonotone(t *testing.T) {
	s := newSession("t1")

	s.AddRisk(30, "first")
	if s.RiskScore() != 30 {
		t.Errorf("Expected risk 30, got %d", s.RiskScore())
	}

	// Over-cap delta clamps to 100
	s.AddRisk(90, "second")
	if s.RiskScore() != 100 {
		t.Errorf("Expected risk clamped to 100, got %d", s.RiskScore())
	}

	// Negative deltas are ignored: the score never decreases
	s.AddRisk(-50, "bogus")
	if s.RiskScore() != 100 {
		t.Errorf("Risk must be monotone, got %d", s.RiskScore())
	}
}

func TestStageThresholds(t *testing.T) {
	tests := []struct {
		name      string
		delta     int
		wantStage Stage
		wantScam  bool
	}{
		{"hook at 25", 25, StageHook, false},
		{"threat at 50", 50, StageThreat, false},
		{"confirmed at 70", 70, StageConfirmed, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSession("t2-" + tt.name)
			s.AddRisk(tt.delta, "test")
			if s.Stage() != tt.wantStage {
				t.Errorf("Expected stage %s, got %s", tt.wantStage, s.Stage())
			}
			if s.ScamDetected() != tt.wantScam {
				t.Errorf("Expected scamDetected=%v, got %v", tt.wantScam, s.ScamDetected())
			}
		})
	}
}

func TestStageNeverRegresses(t *testing.T) {
	s := newSession("t3")
	s.EnsureStage(StageAction)
	s.EnsureStage(StageHook)
	if s.Stage() != StageAction {
		t.Errorf("Stage regressed to %s", s.Stage())
	}
}

func TestTriggerHardRule(t *testing.T) {
	s := newSession("t4")
	s.TriggerHardRule("otp_share_request", 35)

	if !s.ScamDetected() {
		t.Error("Hard rule must latch scamDetected")
	}
	if !s.HardRuleTriggered() {
		t.Error("Hard rule must latch hardRuleTriggered")
	}
	if s.Stage() < StageAction {
		t.Errorf("Hard rule must force stage >= ACTION, got %s", s.Stage())
	}
	if s.RiskScore() < 35 {
		t.Errorf("Expected risk >= 35, got %d", s.RiskScore())
	}
}

func TestPersonaDrift(t *testing.T) {
	s := newSession("t5")
	if s.PersonaState().Emotion != EmotionNeutral {
		t.Errorf("New session should be neutral, got %s", s.PersonaState().Emotion)
	}

	s.AddRisk(50, "threat level")
	p := s.PersonaState()
	if p.Emotion != EmotionAnxious {
		t.Errorf("THREAT should set anxious, got %s", p.Emotion)
	}
	if p.ComplianceLevel != 0.15 {
		t.Errorf("THREAT should bump compliance to 0.15, got %f", p.ComplianceLevel)
	}

	s.AddRisk(50, "confirmed level")
	p = s.PersonaState()
	if p.Emotion != EmotionCompliant {
		t.Errorf("CONFIRMED should set compliant, got %s", p.Emotion)
	}
	if p.ComplianceLevel != 0.30 {
		t.Errorf("Expected compliance 0.30 after two THREAT+ advances, got %f", p.ComplianceLevel)
	}
}

func TestApplyJudgement(t *testing.T) {
	s := newSession("t6")
	suggested := StageTrust

	s.ApplyJudgement(LLMJudgement{
		Turn:           1,
		IsScamLikely:   true,
		Confidence:     0.9,
		RiskBoost:      45, // clamps to 30
		SuggestedStage: &suggested,
		Reasoning:      "authority inconsistency",
	})

	if s.RiskScore() != 30 {
		t.Errorf("Risk boost should clamp to 30, got %d", s.RiskScore())
	}
	// 30 >= 25 pushes NORMAL to HOOK, but the confident suggestion wins
	if s.Stage() != StageTrust {
		t.Errorf("Expected stage TRUST from confident suggestion, got %s", s.Stage())
	}
	if !s.ScamDetected() {
		t.Error("isScamLikely at confidence 0.9 must latch scamDetected")
	}
}

func TestApplyJudgement_LowConfidenceIgnoresStage(t *testing.T) {
	s := newSession("t7")
	suggested := StageConfirmed

	s.ApplyJudgement(LLMJudgement{
		Turn:           1,
		IsScamLikely:   true,
		Confidence:     0.5,
		RiskBoost:      0,
		SuggestedStage: &suggested,
	})

	if s.Stage() != StageNormal {
		t.Errorf("Low-confidence suggestion must not advance stage, got %s", s.Stage())
	}
	if s.ScamDetected() {
		t.Error("Confidence 0.5 must not latch scamDetected")
	}
}

func TestLanguageLock(t *testing.T) {
	s := newSession("t8")
	if s.Language() != LanguageUnset {
		t.Errorf("New session language should be unset, got %q", s.Language())
	}

	s.LockLanguage(LanguageHindi)
	s.LockLanguage(LanguageEnglish)
	if s.Language() != LanguageHindi {
		t.Errorf("Language must not change once locked, got %s", s.Language())
	}
}

func TestMissionReady(t *testing.T) {
	s := newSession("t9")

	// Not detected: never ready
	if s.MissionReady() {
		t.Error("Mission must not be ready without detection")
	}

	s.TriggerHardRule("upi_pin_request", 40)
	if s.MissionReady() {
		t.Error("Mission must not be ready without a high-value artifact")
	}

	s.MergeIntel(intel.Intelligence{UpiIDs: []string{"pay@ybl"}}, nil)
	// turnCount still 0: needs strong signals or 5 turns
	if s.MissionReady() {
		t.Error("Mission must not be ready at turn 0 with one signal")
	}

	for i := 0; i < 5; i++ {
		s.NextTurn()
	}
	if !s.MissionReady() {
		t.Error("Mission should be ready: detected + UPI + 5 turns")
	}
}

func TestMissionReady_StrongSignalPath(t *testing.T) {
	s := newSession("t10")
	s.TriggerHardRule("otp_share_request", 35)
	s.MergeIntel(intel.Intelligence{BankAccounts: []string{"123456789012"}}, nil)
	s.NextTurn()

	for i := 0; i < 3; i++ {
		s.AddSignal(Signal{Category: "otp_request", Name: "otp", Score: 0, Source: SourceRule, Turn: 1})
	}
	if !s.MissionReady() {
		t.Error("Mission should be ready via three strong-category signals")
	}
}

func TestCallbackArmDisarm(t *testing.T) {
	s := newSession("t11")

	if !s.TryArmCallback() {
		t.Fatal("First arm should succeed")
	}
	if s.TryArmCallback() {
		t.Error("Second arm should fail while armed")
	}

	// Terminal dispatch failure re-arms
	s.DisarmCallback()
	if !s.TryArmCallback() {
		t.Error("Arm after disarm should succeed")
	}
}

func TestQuestionBlocking(t *testing.T) {
	s := newSession("t12")

	s.RecordAgentReply("Which app should I download?", "app_or_link")
	s.RecordAgentReply("Where do I get the app?", "app_or_link")

	if !s.QuestionBlocked("Can you resend the app name?", "app_or_link") {
		t.Error("Intent asked twice must block further candidates")
	}
	if !s.QuestionBlocked("which app should i download?", "next_action_step") {
		t.Error("Exact text in the recent ring must block regardless of intent")
	}
	if s.QuestionBlocked("What happens next?", "next_action_step") {
		t.Error("Fresh intent and text should not be blocked")
	}
}

func TestStallCounterAndTermination(t *testing.T) {
	s := newSession("t13")

	s.RecordAgentReply("What should I do?", "next_action_step")
	s.RecordAgentReply("And then what?", "next_action_step")
	s.RecordAgentReply("Okay, then?", "next_action_step")
	s.RecordAgentReply("Then what happens?", "next_action_step")

	if !s.ShouldTerminate(20) {
		t.Error("Four same-intent replies should trigger termination")
	}

	s2 := newSession("t13b")
	s2.RecordAgentReply("What should I do?", "next_action_step")
	s2.RecordAgentReply("Which number?", "contact_method")
	if s2.ShouldTerminate(20) {
		t.Error("Intent changes should not accumulate stalls")
	}
}

func TestSeedHistoryOnce(t *testing.T) {
	s := newSession("t14")
	s.SeedHistory([]ConversationTurn{{Who: SpeakerScammer, Text: "hello"}})
	s.SeedHistory([]ConversationTurn{{Who: SpeakerScammer, Text: "again"}})

	turns := s.RecentTurns(0)
	if len(turns) != 1 {
		t.Errorf("History must seed exactly once, got %d turns", len(turns))
	}

	s2 := newSession("t14b")
	s2.NextTurn()
	s2.SeedHistory([]ConversationTurn{{Who: SpeakerScammer, Text: "too late"}})
	if s2.HistorySeeded() || len(s2.RecentTurns(0)) != 0 {
		t.Error("History must not seed after the first turn has started")
	}
}

func TestRegistry_ConcurrentGetOrCreate(t *testing.T) {
	// Run with -race to verify the registry and session are safe under
	// concurrent access across distinct sessions.
	r := NewRegistry()
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			ids := []string{"a", "b", "c"}
			for j := 0; j < 50; j++ {
				s := r.GetOrCreate(ids[j%len(ids)])
				s.BeginTurn()
				s.NextTurn()
				s.AddRisk(1, "concurrent")
				s.EndTurn()
			}
		}(i)
	}
	wg.Wait()

	if r.Len() != 3 {
		t.Errorf("Expected 3 sessions, got %d", r.Len())
	}
	for _, id := range []string{"a", "b", "c"} {
		s, ok := r.Get(id)
		if !ok {
			t.Fatalf("Session %s missing", id)
		}
		if s.RiskScore() > 100 {
			t.Errorf("Risk exceeded cap: %d", s.RiskScore())
		}
		t.Logf("session %s: turns=%d risk=%d stage=%s", id, s.TurnCount(), s.RiskScore(), s.Stage())
	}
}
