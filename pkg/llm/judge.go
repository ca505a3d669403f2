package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/decoynet/honeytrap/pkg/session"
)

// JudgeInput is the reasoning context handed to the judge for one turn.
type JudgeInput struct {
	Message       string
	RecentHistory []string
	RiskScore     int
	Stage         session.Stage
	SignalsFired  []string
	Turn          int
}

// Judge evaluates scam likelihood through structured reasoning. Judge
// never fails: implementations degrade to a heuristic judgement rather
// than returning an error, so the detection pipeline always gets an
// answer.
type Judge interface {
	Judge(ctx context.Context, input JudgeInput) session.LLMJudgement
}

// highRiskFragments drive the heuristic fallback judgement.
var highRiskFragments = []string{"otp", "pin", "payment", "transfer", "arrest", "block"}

// FallbackJudgement scores by counting high-risk fragments among the
// fired signal names. Deterministic; used whenever no LLM is reachable.
func FallbackJudgement(turn int, signals []string) session.LLMJudgement {
	count := 0
	for _, s := range signals {
		lower := strings.ToLower(s)
		for _, fragment := range highRiskFragments {
			if strings.Contains(lower, fragment) {
				count++
				break
			}
		}
	}
	flags := signals
	if len(flags) > 3 {
		flags = flags[:3]
	}
	return session.LLMJudgement{
		Turn:         turn,
		IsScamLikely: count >= 2,
		Confidence:   0.5 + float64(count)*0.1,
		Reasoning:    "Fallback judgement based on signal count",
		RiskBoost:    count * 5,
		RedFlags:     flags,
	}
}

// HeuristicJudge is the deterministic no-LLM judge variant.
type HeuristicJudge struct{}

func (HeuristicJudge) Judge(_ context.Context, input JudgeInput) session.LLMJudgement {
	return FallbackJudgement(input.Turn, input.SignalsFired)
}

// GroqJudge asks the remote model four reasoning questions and parses a
// structured judgement. Any failure falls back to the heuristic.
type GroqJudge struct {
	client *GroqClient
}

// NewGroqJudge creates the remote judge.
func NewGroqJudge(client *GroqClient) *GroqJudge {
	return &GroqJudge{client: client}
}

const judgeSystemPrompt = "You are a fraud detection expert. Analyze conversations for scam patterns " +
	"through REASONING, not keyword matching. Output only valid JSON."

// judgeResponse is the JSON contract with the model.
type judgeResponse struct {
	IsScamLikely   bool     `json:"is_scam_likely"`
	Confidence     float64  `json:"confidence"`
	ScamType       string   `json:"scam_type"`
	Reasoning      string   `json:"reasoning"`
	RiskBoost      int      `json:"risk_boost"`
	SuggestedStage string   `json:"suggested_stage"`
	RedFlags       []string `json:"red_flags"`
}

func (j *GroqJudge) Judge(ctx context.Context, input JudgeInput) session.LLMJudgement {
	raw, err := j.client.ChatCompletion(ctx, judgeSystemPrompt, buildJudgePrompt(input), 0.1, 400)
	if err != nil {
		log.Printf("[LLM] judge call failed, using fallback: %v", err)
		return FallbackJudgement(input.Turn, input.SignalsFired)
	}

	var parsed judgeResponse
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &parsed); err != nil {
		log.Printf("[LLM] judge returned unparseable JSON, using fallback: %v", err)
		return FallbackJudgement(input.Turn, input.SignalsFired)
	}

	judgement := session.LLMJudgement{
		Turn:         input.Turn,
		IsScamLikely: parsed.IsScamLikely,
		Confidence:   parsed.Confidence,
		ScamType:     parsed.ScamType,
		Reasoning:    parsed.Reasoning,
		RiskBoost:    clampBoost(parsed.RiskBoost),
		RedFlags:     parsed.RedFlags,
	}
	if parsed.SuggestedStage != "" && parsed.SuggestedStage != "null" {
		if stage, ok := session.ParseStage(parsed.SuggestedStage); ok {
			judgement.SuggestedStage = &stage
		}
	}
	return judgement
}

func clampBoost(boost int) int {
	if boost < 0 {
		return 0
	}
	if boost > 30 {
		return 30
	}
	return boost
}

func buildJudgePrompt(input JudgeInput) string {
	var history strings.Builder
	recent := input.RecentHistory
	if len(recent) > 5 {
		recent = recent[len(recent)-5:]
	}
	for i, msg := range recent {
		fmt.Fprintf(&history, "Message %d: %s\n", i+1, msg)
	}

	signals := "None yet"
	if len(input.SignalsFired) > 0 {
		head := input.SignalsFired
		if len(head) > 5 {
			head = head[:5]
		}
		signals = strings.Join(head, ", ")
	}

	return fmt.Sprintf(`You are an expert fraud analyst evaluating a potential scam conversation.

CONVERSATION CONTEXT:
%s
CURRENT MESSAGE: %q

CURRENT ANALYSIS:
- Risk Score: %d/100
- Current Stage: %s
- Detected Signals: %s

ANSWER THESE REASONING QUESTIONS:

1. AUTHORITY CHECK: Is the sender's claimed authority (bank/government/police) behaving consistently with how that authority actually operates?
   - Real banks don't ask for OTP over chat
   - Real police don't threaten arrest over phone for payments
   - Real government doesn't demand immediate payment

2. EVASION CHECK: Is the sender avoiding direct questions or being procedurally vague?
   - Refusing to provide verifiable details
   - Rushing past clarification requests
   - Giving generic/scripted responses

3. COERCION CHECK: Is there social engineering or emotional manipulation?
   - Fear tactics (arrest, account loss, legal action)
   - Urgency pressure (deadline, limited time)
   - Authority abuse (I am officer, this is official)

4. ESCALATION CHECK: Is the conversation escalating toward financial/credential request?
   - Moving from information to action
   - Introducing payment or OTP request
   - Pushing toward immediate action

Based on your analysis, provide your judgement in this EXACT JSON format:
{
    "is_scam_likely": true/false,
    "confidence": 0.0-1.0,
    "scam_type": "type or null",
    "reasoning": "one sentence explaining your judgement",
    "risk_boost": 0-30,
    "suggested_stage": "NORMAL|HOOK|TRUST|THREAT|ACTION|CONFIRMED|null",
    "red_flags": ["list", "of", "flags"]
}

IMPORTANT:
- risk_boost should be 0 if no scam indicators, 10-15 for moderate, 20-30 for strong
- suggested_stage should advance the stage if escalation detected
- Be specific in reasoning about WHY this is or isn't a scam`,
		history.String(), input.Message, input.RiskScore, input.Stage, signals)
}
