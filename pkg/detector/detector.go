// Package detector runs the layered per-turn analysis pipeline: signal
// rules, stage patterns, light artifact extraction, the ML scorer and,
// when the evidence warrants it, the LLM judge. Each layer folds its
// findings into the session; the pipeline ends with a verdict for the
// caller.
package detector

import (
	"context"
	"log"
	"time"

	"github.com/decoynet/honeytrap/pkg/intel"
	"github.com/decoynet/honeytrap/pkg/llm"
	"github.com/decoynet/honeytrap/pkg/ml"
	"github.com/decoynet/honeytrap/pkg/rules"
	"github.com/decoynet/honeytrap/pkg/session"
)

// mlConfidenceFloor is the minimum scorer confidence before an ML
// prediction contributes a signal.
const mlConfidenceFloor = 0.6

// judgeRiskFloor is the risk score at which the LLM judge gets consulted
// even without stage patterns or a hard rule.
const judgeRiskFloor = 20

// Verdict is the outcome of analyzing one inbound message.
type Verdict struct {
	ScamDetected      bool
	Confidence        float64
	RiskScore         int
	Stage             session.Stage
	HardRuleTriggered bool
	TurnCount         int
	ScamType          string
	Reasons           []string
}

// Detector wires the analysis layers together. The scorer is required;
// the judge may be the deterministic heuristic when no LLM is configured.
type Detector struct {
	scorer *ml.Scorer
	judge  llm.Judge
}

// New creates a detector over the given scorer and judge.
func New(scorer *ml.Scorer, judge llm.Judge) *Detector {
	return &Detector{scorer: scorer, judge: judge}
}

// stageForLevel translates rule-layer stage levels into session stages.
var stageForLevel = map[rules.StageLevel]session.Stage{
	rules.LevelNormal: session.StageNormal,
	rules.LevelHook:   session.StageHook,
	rules.LevelTrust:  session.StageTrust,
	rules.LevelThreat: session.StageThreat,
	rules.LevelAction: session.StageAction,
}

// Analyze runs the full pipeline for one scammer message. It advances the
// turn counter, records the message, applies every layer's findings to
// the session and returns the resulting verdict. No session lock is held
// across the judge call.
func (d *Detector) Analyze(ctx context.Context, sess *session.Session, message string) Verdict {
	turn := sess.NextTurn()
	sess.RecordScammerTurn(message, time.Time{})

	text, changed := intel.Normalize(message)
	if changed {
		log.Printf("[Detector] [%s] message normalized before analysis", sess.ID)
	}

	// Layer 1: signal rules.
	matches, hardThisTurn := rules.Scan(text)
	var ruleNames []string
	for _, m := range matches {
		ruleNames = append(ruleNames, m.Name)
		sess.AddSignal(session.Signal{
			Category:    string(m.Category),
			Name:        m.Name,
			Score:       m.Score,
			IsHardRule:  m.IsHardRule,
			Source:      session.SourceRule,
			Turn:        turn,
			Description: m.Description,
		})
	}

	// Layer 2: stage patterns. A lone pattern on a zero-risk session is
	// treated as ordinary conversation; escalation needs either multiple
	// script moves in one message or prior accumulated risk.
	patterns := rules.DetectStagePatterns(text)
	if len(patterns) >= 2 || sess.RiskScore() > 0 {
		maxLevel := rules.LevelNormal
		for _, name := range patterns {
			if level, ok := rules.PatternMinStage[name]; ok && level > maxLevel {
				maxLevel = level
			}
		}
		if maxLevel > rules.LevelNormal {
			sess.EnsureStage(stageForLevel[maxLevel])
		}
	}

	// Layer 3: light extraction feeds the keyword set on every turn.
	light := intel.ExtractLight(text)
	if len(light.Keywords) > 0 {
		sess.MergeIntel(intel.Intelligence{SuspiciousKeywords: light.Keywords}, nil)
	}

	// Layer 4: ML scorer over the scammer-side history.
	history := scammerHistory(sess)
	pred := d.scorer.Predict(ctx, text, history)
	signalsFired := ruleNames
	if pred.IsScam && pred.Confidence >= mlConfidenceFloor {
		sess.AddSignal(session.Signal{
			Category:    "ml_detection",
			Name:        "ml_scam_prediction",
			Score:       mlRiskContribution(pred.Confidence),
			Source:      session.SourceML,
			Turn:        turn,
			Description: pred.Explanation,
		})
		signalsFired = append(signalsFired, "ml_scam_prediction")
	}

	// Layer 5: the judge, only when the cheaper layers found something.
	var judgement *session.LLMJudgement
	if sess.RiskScore() >= judgeRiskFloor || len(patterns) >= 2 || sess.HardRuleTriggered() {
		input := llm.JudgeInput{
			Message:       text,
			RecentHistory: append(history, text),
			RiskScore:     sess.RiskScore(),
			Stage:         sess.Stage(),
			SignalsFired:  signalsFired,
			Turn:          turn,
		}
		j := d.judge.Judge(ctx, input)
		sess.ApplyJudgement(j)
		judgement = &j
	}

	return d.verdict(sess, matches, pred, judgement, light.ScamType, hardThisTurn, turn)
}

// mlRiskContribution maps scorer confidence onto a bounded risk delta.
func mlRiskContribution(confidence float64) int {
	switch {
	case confidence >= 0.9:
		return 25
	case confidence >= 0.8:
		return 18
	case confidence >= 0.7:
		return 12
	default:
		return 8
	}
}

// scammerHistory collects prior scammer messages, excluding the current
// turn which was already recorded.
func scammerHistory(sess *session.Session) []string {
	var history []string
	for _, t := range sess.RecentTurns(20) {
		if t.Who == session.SpeakerScammer {
			history = append(history, t.Text)
		}
	}
	if len(history) > 0 {
		history = history[:len(history)-1]
	}
	return history
}

func (d *Detector) verdict(sess *session.Session, matches []rules.Match, pred ml.Prediction,
	judgement *session.LLMJudgement, scamType string, hardThisTurn bool, turn int) Verdict {

	risk := sess.RiskScore()
	confidence := float64(risk) / 100.0
	if confidence > 1.0 {
		confidence = 1.0
	}
	if judgement != nil {
		confidence = (confidence + judgement.Confidence) / 2.0
		if judgement.ScamType != "" && judgement.ScamType != "null" {
			scamType = judgement.ScamType
		}
	}

	v := Verdict{
		ScamDetected:      sess.ScamDetected(),
		Confidence:        confidence,
		RiskScore:         risk,
		Stage:             sess.Stage(),
		HardRuleTriggered: sess.HardRuleTriggered(),
		TurnCount:         sess.TurnCount(),
		ScamType:          scamType,
		Reasons:           buildReasons(matches, pred, judgement),
	}

	log.Printf("[Detector] [%s] turn=%d risk=%d stage=%s scam=%v hard=%v",
		sess.ID, turn, v.RiskScore, v.Stage, v.ScamDetected, hardThisTurn)
	return v
}

// buildReasons assembles up to five human-readable reasons, hard rules
// first, then soft rules, ML features and LLM red flags.
func buildReasons(matches []rules.Match, pred ml.Prediction, judgement *session.LLMJudgement) []string {
	var reasons []string
	add := func(r string) {
		if r == "" || len(reasons) >= 5 {
			return
		}
		for _, existing := range reasons {
			if existing == r {
				return
			}
		}
		reasons = append(reasons, r)
	}

	for _, m := range matches {
		if m.IsHardRule {
			add(m.Description)
		}
	}
	for _, m := range matches {
		if !m.IsHardRule {
			add(m.Description)
		}
	}
	if pred.IsScam {
		for _, f := range pred.FeaturesTriggered {
			add("ML feature: " + f)
		}
	}
	if judgement != nil {
		for _, flag := range judgement.RedFlags {
			add("LLM: " + flag)
		}
	}
	return reasons
}
