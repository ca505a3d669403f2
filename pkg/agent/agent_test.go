package agent

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"
	"unicode"

	"github.com/decoynet/honeytrap/pkg/llm"
	"github.com/decoynet/honeytrap/pkg/safety"
	"github.com/decoynet/honeytrap/pkg/session"
)

type stubReplier struct {
	reply string
	err   error
}

func (s stubReplier) Reply(_ context.Context, _ llm.ReplyInput) (string, error) {
	return s.reply, s.err
}

// seqReplier returns its replies in order and counts the calls.
type seqReplier struct {
	replies []string
	calls   int
}

func (s *seqReplier) Reply(_ context.Context, _ llm.ReplyInput) (string, error) {
	if s.calls >= len(s.replies) {
		return "", errors.New("no replies left")
	}
	reply := s.replies[s.calls]
	s.calls++
	return reply, nil
}

func newSession(t *testing.T, id string) *session.Session {
	t.Helper()
	return session.NewRegistry().GetOrCreate(id)
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		text string
		want session.Language
	}{
		{"नमस्ते, आपका खाता बंद हो जाएगा", session.LanguageHindi},
		{"Aap kaun ho, paise kaise bhejne hai", session.LanguageHindi},
		{"Your account block ho jayega in two hours", session.LanguageHindi},
		{"Hello, your account is blocked", session.LanguageEnglish},
		{"Please pay hai", session.LanguageEnglish},
	}
	for _, tt := range tests {
		if got := DetectLanguage(tt.text); got != tt.want {
			t.Errorf("DetectLanguage(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestReply_LocksLanguageOnFirstMessage(t *testing.T) {
	a := New(nil, 0)
	sess := newSession(t, "lang-1")

	a.Reply(context.Background(), sess, "Aapka account band ho gaya hai, paise bhejo abhi")
	if sess.Language() != session.LanguageHindi {
		t.Fatalf("Expected Hindi lock, got %q", sess.Language())
	}

	a.Reply(context.Background(), sess, "Send the payment now or face consequences")
	if sess.Language() != session.LanguageHindi {
		t.Error("Language lock must survive later English messages")
	}
}

func TestReply_DeflectsCredentialDemand(t *testing.T) {
	a := New(nil, 0)
	sess := newSession(t, "deflect-1")

	reply := a.Reply(context.Background(), sess, "Share the OTP code now to verify")

	if reply == "" {
		t.Fatal("Expected a deflection reply")
	}
	for _, r := range reply {
		if unicode.IsDigit(r) {
			t.Fatalf("Deflection must never contain digits: %q", reply)
		}
	}
	if accepted, violations := safety.Validate(reply); !accepted {
		t.Errorf("Deflection failed validation (%v): %q", violations, reply)
	}
	turns := sess.RecentTurns(1)
	if len(turns) != 1 || turns[0].Intent != intentDeflect {
		t.Errorf("Deflection must be recorded with its intent, got %+v", turns)
	}
}

func TestReply_SignsOffAtTurnCap(t *testing.T) {
	a := New(nil, 3)
	sess := newSession(t, "cap-1")
	for range 3 {
		sess.NextTurn()
	}

	reply := a.Reply(context.Background(), sess, "Hello, are you there?")
	if !slices.Contains(signoffEnglish, reply) {
		t.Errorf("Expected a sign-off at the turn cap, got %q", reply)
	}
}

func TestReply_SignsOffWhenStalled(t *testing.T) {
	a := New(nil, 0)
	sess := newSession(t, "stall-1")
	for range 4 {
		sess.RecordAgentReply("Okay, what do I need to do?", intentNextStep)
	}

	reply := a.Reply(context.Background(), sess, "Just do it already")
	if !slices.Contains(signoffEnglish, reply) {
		t.Errorf("Expected a sign-off after a stalled loop, got %q", reply)
	}
}

func TestReply_EmitsAckWhenAllCandidatesBlocked(t *testing.T) {
	a := New(nil, 0)
	sess := newSession(t, "blocked-1")
	sess.AddRisk(60, "test setup")
	for _, c := range postDetectionEnglish {
		sess.RecordAgentReply(c.text, c.intent)
	}

	reply := a.Reply(context.Background(), sess, "Now pay the processing fee")
	if reply != minimalAckEnglish {
		t.Errorf("Expected minimal acknowledgment, got %q", reply)
	}
}

func TestReply_UsesGeneratedReply(t *testing.T) {
	a := New(stubReplier{reply: "Oh no, what happened exactly?"}, 0)
	sess := newSession(t, "gen-1")

	reply := a.Reply(context.Background(), sess, "Your electricity bill is unpaid")
	if reply != "Oh no, what happened exactly?" {
		t.Errorf("Expected the generated reply, got %q", reply)
	}
}

func TestReply_RejectsUnsafeGeneratedReply(t *testing.T) {
	a := New(stubReplier{reply: "My OTP is 123456 sir"}, 0)
	sess := newSession(t, "gen-2")

	reply := a.Reply(context.Background(), sess, "Tell me about your bill")
	if strings.Contains(reply, "123456") {
		t.Fatalf("Unsafe generated reply must never be emitted: %q", reply)
	}
	if accepted, violations := safety.Validate(reply); !accepted {
		t.Errorf("Fallback reply failed validation (%v): %q", violations, reply)
	}
}

func TestReply_RegeneratesOnceAfterUnsafeReply(t *testing.T) {
	replier := &seqReplier{replies: []string{
		"My OTP is 123456 sir",
		"Oh, why is this happening now?",
	}}
	a := New(replier, 0)
	sess := newSession(t, "gen-4")

	reply := a.Reply(context.Background(), sess, "There is a problem with your account")
	if reply != "Oh, why is this happening now?" {
		t.Errorf("Expected the regenerated reply, got %q", reply)
	}
	if replier.calls != 2 {
		t.Errorf("Expected exactly one regeneration (2 calls), got %d", replier.calls)
	}
}

func TestReply_FallsBackWhenGenerationFails(t *testing.T) {
	a := New(stubReplier{err: errors.New("upstream down")}, 0)
	sess := newSession(t, "gen-3")

	reply := a.Reply(context.Background(), sess, "Hello, this is about your account")
	if reply == "" {
		t.Fatal("Expected a template fallback reply")
	}
	if accepted, _ := safety.Validate(reply); !accepted {
		t.Errorf("Fallback reply failed validation: %q", reply)
	}
}

func TestEnforceLength(t *testing.T) {
	tests := []struct {
		text string
		max  int
		want string
	}{
		{"One thing. Two things. Three things.", 1, "One thing."},
		{"One thing. Two things.", 2, "One thing. Two things."},
		{"No sentence enders here", 1, "No sentence enders here"},
		{"Kya hua? Batao na. Jaldi.", 1, "Kya hua?"},
	}
	for _, tt := range tests {
		if got := enforceLength(tt.text, tt.max); got != tt.want {
			t.Errorf("enforceLength(%q, %d) = %q, want %q", tt.text, tt.max, got, tt.want)
		}
	}
}
