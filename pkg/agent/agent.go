// Package agent generates the honeypot's replies: a confused ordinary
// user who keeps scammers engaged while never sharing anything. Every
// outgoing reply passes the safety validator; credential demands get a
// stall deflection instead of an answer.
package agent

import (
	"context"
	"fmt"
	"log"
	"math/rand/v2"
	"regexp"
	"strings"

	"github.com/decoynet/honeytrap/pkg/llm"
	"github.com/decoynet/honeytrap/pkg/safety"
	"github.com/decoynet/honeytrap/pkg/session"
)

const defaultMaxTurns = 25

// Agent produces replies for one session at a time. The replier is
// optional; without it the template pools carry the whole conversation.
type Agent struct {
	replier  llm.Replier
	maxTurns int
}

// New creates an agent. A nil replier means template-only operation.
func New(replier llm.Replier, maxTurns int) *Agent {
	if maxTurns <= 0 {
		maxTurns = defaultMaxTurns
	}
	return &Agent{replier: replier, maxTurns: maxTurns}
}

// credentialDemandRe spots an explicit request to hand over a credential.
// Such demands always get a deflection, whatever the detection state.
var credentialDemandRe = regexp.MustCompile(
	`(?i)\b(?:share|send|tell|give|enter|provide|read|forward)\b[^.?!]*\b(?:otp|pin|cvv|password|code)\b` +
		`|\b(?:otp|pin|cvv|password|code)\b[^.?!]*\b(?:share|send|tell|give|enter|provide|read|forward)\b`)

// Reply generates the next outgoing message for the session. The reply is
// recorded on the session together with its canonical intent.
func (a *Agent) Reply(ctx context.Context, sess *session.Session, scammerMsg string) string {
	if sess.Language() == session.LanguageUnset {
		sess.LockLanguage(DetectLanguage(scammerMsg))
	}
	hindi := sess.Language() == session.LanguageHindi

	if sess.ShouldTerminate(a.maxTurns) {
		return a.record(sess, signoff(hindi), intentSignoff)
	}

	if credentialDemandRe.MatchString(scammerMsg) {
		reply := safety.Deflect(safety.CategorizeDemand(scammerMsg), hindi)
		return a.record(sess, reply, intentDeflect)
	}

	postDetection := sess.ScamDetected() || sess.Stage() >= session.StageThreat
	maxSentences := 1
	if postDetection {
		maxSentences = 2
	}

	if !postDetection && a.replier != nil {
		if reply, ok := a.generatedReply(ctx, sess, scammerMsg); ok {
			return a.record(sess, enforceLength(reply, maxSentences), intentGeneric)
		}
	}

	pool := preDetectionPool(hindi)
	if postDetection {
		pool = postDetectionPool(hindi)
	}
	c, found := pickCandidate(sess, pool)
	if !found {
		c = candidate{text: minimalAck(hindi), intent: intentGeneric}
	}

	reply := c.text
	intent := c.intent
	if accepted, violations := safety.Validate(reply); !accepted {
		log.Printf("[Agent] [%s] template rejected (%v), deflecting", sess.ID, violations)
		reply = safety.Deflect(safety.CategorizeDemand(scammerMsg), hindi)
		intent = intentDeflect
	}
	return a.record(sess, enforceLength(reply, maxSentences), intent)
}

// generatedReply asks the LLM for a reply and vets it. A safety rejection
// gets one regeneration; a second rejection or any transport error falls
// back to the template pools.
func (a *Agent) generatedReply(ctx context.Context, sess *session.Session, scammerMsg string) (string, bool) {
	input := llm.ReplyInput{
		Message:       scammerMsg,
		RecentHistory: transcriptLines(sess, 6),
		Language:      sess.Language(),
		Emotion:       sess.PersonaState().Emotion,
	}
	for attempt := 0; attempt < 2; attempt++ {
		reply, err := a.replier.Reply(ctx, input)
		if err != nil {
			log.Printf("[Agent] [%s] reply generation failed, using templates: %v", sess.ID, err)
			return "", false
		}
		if reply == "" {
			return "", false
		}
		if accepted, violations := safety.Validate(reply); !accepted {
			log.Printf("[Agent] [%s] generated reply rejected (%v), attempt %d", sess.ID, violations, attempt+1)
			continue
		}
		if sess.QuestionBlocked(reply, intentGeneric) {
			return "", false
		}
		return reply, true
	}
	return "", false
}

func (a *Agent) record(sess *session.Session, reply, intent string) string {
	sess.RecordAgentReply(reply, intent)
	return reply
}

// pickCandidate walks the pool from a random start and returns the first
// candidate the session's anti-loop state allows.
func pickCandidate(sess *session.Session, pool []candidate) (candidate, bool) {
	start := rand.IntN(len(pool))
	for i := range pool {
		c := pool[(start+i)%len(pool)]
		if !sess.QuestionBlocked(c.text, c.intent) {
			return c, true
		}
	}
	return candidate{}, false
}

func preDetectionPool(hindi bool) []candidate {
	if hindi {
		return preDetectionHindi
	}
	return preDetectionEnglish
}

func postDetectionPool(hindi bool) []candidate {
	if hindi {
		return postDetectionHindi
	}
	return postDetectionEnglish
}

func signoff(hindi bool) string {
	pool := signoffEnglish
	if hindi {
		pool = signoffHindi
	}
	return pool[rand.IntN(len(pool))]
}

func minimalAck(hindi bool) string {
	if hindi {
		return minimalAckHindi
	}
	return minimalAckEnglish
}

// transcriptLines renders recent turns as speaker-tagged lines for the
// reply prompt.
func transcriptLines(sess *session.Session, n int) []string {
	var lines []string
	for _, t := range sess.RecentTurns(n) {
		who := "Them"
		if t.Who == session.SpeakerAgent {
			who = "Me"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", who, t.Text))
	}
	return lines
}

// enforceLength trims a reply to at most maxSentences sentences. Hindi
// danda counts as a sentence ender.
func enforceLength(text string, maxSentences int) string {
	var sentences []string
	var current strings.Builder
	for _, r := range text {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' || r == '।' {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	if len(sentences) <= maxSentences {
		return strings.TrimSpace(text)
	}
	return strings.Join(sentences[:maxSentences], " ")
}
