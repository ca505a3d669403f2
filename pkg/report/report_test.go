package report

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/decoynet/honeytrap/pkg/intel"
	"github.com/decoynet/honeytrap/pkg/session"
)

func fastRetries(t *testing.T) {
	t.Helper()
	saved := retryDelays
	retryDelays = []time.Duration{time.Millisecond, time.Millisecond}
	t.Cleanup(func() { retryDelays = saved })
}

func newArmedSession(t *testing.T, id string) *session.Session {
	t.Helper()
	sess := session.NewRegistry().GetOrCreate(id)
	if !sess.TryArmCallback() {
		t.Fatal("Fresh session must arm")
	}
	return sess
}

func TestDispatch_SucceedsAfterRetries(t *testing.T) {
	fastRetries(t)

	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			http.Error(w, "temporarily down", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sess := newArmedSession(t, "retry-1")
	d := NewDispatcher(srv.URL, 2*time.Second)
	d.dispatch(sess)

	if got := attempts.Load(); got != 3 {
		t.Errorf("Expected 3 attempts, got %d", got)
	}
	if sess.TryArmCallback() {
		t.Error("Callback slot must stay armed after a successful delivery")
	}
	if sess.TakeSnapshot().MissionComplete {
		t.Error("Delivery must not mutate session state beyond the callback slot")
	}
}

func TestDispatch_DisarmsOnTerminalFailure(t *testing.T) {
	fastRetries(t)

	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	sess := newArmedSession(t, "fail-1")
	d := NewDispatcher(srv.URL, 2*time.Second)
	d.dispatch(sess)

	if got := attempts.Load(); got != 3 {
		t.Errorf("Expected 3 attempts, got %d", got)
	}
	if !sess.TryArmCallback() {
		t.Error("Terminal failure must release the callback slot for a later retry")
	}
}

func TestDispatch_NonStrict200IsFailure(t *testing.T) {
	fastRetries(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	sess := newArmedSession(t, "accepted-1")
	d := NewDispatcher(srv.URL, 2*time.Second)
	d.dispatch(sess)

	if !sess.TryArmCallback() {
		t.Error("A 202 must not count as delivered")
	}
}

func TestBuildReport_Payload(t *testing.T) {
	sess := session.NewRegistry().GetOrCreate("payload-1")
	sess.NextTurn()
	sess.RecordScammerTurn("Pay the fee to this UPI", time.Time{})
	sess.RecordAgentReply("Which UPI do you mean?", "payment_method")
	sess.MergeIntel(intel.Intelligence{UpiIDs: []string{"fraudster@paytm"}}, nil)
	sess.AddSignal(session.Signal{
		Category: "payment_request", Name: "fee_request", Score: 30,
		IsHardRule: true, Source: session.SourceRule, Turn: 1,
		Description: "Upfront fee demanded",
	})

	raw, err := json.Marshal(BuildReport(sess))
	if err != nil {
		t.Fatal(err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"sessionId", "scamDetected", "totalMessagesExchanged",
		"extractedIntelligence", "agentNotes"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("Report payload missing %q", key)
		}
	}
	if decoded["sessionId"] != "payload-1" {
		t.Errorf("Unexpected sessionId: %v", decoded["sessionId"])
	}
	if decoded["scamDetected"] != true {
		t.Error("Hard rule signal must surface as scamDetected")
	}
	if decoded["totalMessagesExchanged"] != float64(2) {
		t.Errorf("Expected 2 exchanged messages, got %v", decoded["totalMessagesExchanged"])
	}

	notes, _ := decoded["agentNotes"].(string)
	if !strings.Contains(notes, "fee_request") {
		t.Errorf("Agent notes must mention the leading signal, got %q", notes)
	}

	extracted, _ := decoded["extractedIntelligence"].(map[string]any)
	upis, _ := extracted["upiIds"].([]any)
	if len(upis) != 1 || upis[0] != "fraudster@paytm" {
		t.Errorf("Expected the UPI artifact in the report, got %v", extracted)
	}
}
