// Package report builds the final intelligence report for a completed
// engagement and delivers it to the configured callback endpoint with
// bounded retries.
package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/decoynet/honeytrap/pkg/intel"
	"github.com/decoynet/honeytrap/pkg/llm"
	"github.com/decoynet/honeytrap/pkg/session"
)

// Report is the callback payload.
type Report struct {
	SessionID              string             `json:"sessionId"`
	ScamDetected           bool               `json:"scamDetected"`
	TotalMessagesExchanged int                `json:"totalMessagesExchanged"`
	ExtractedIntelligence  intel.Intelligence `json:"extractedIntelligence"`
	AgentNotes             string             `json:"agentNotes"`
}

// retryDelays are the waits between delivery attempts. The attempt count
// is len(retryDelays)+1.
var retryDelays = []time.Duration{2 * time.Second, 4 * time.Second}

// Dispatcher posts reports to the callback URL. An empty URL disables
// dispatch entirely.
type Dispatcher struct {
	client *http.Client
	url    string
}

// NewDispatcher creates a dispatcher for the callback URL.
func NewDispatcher(url string, timeout time.Duration) *Dispatcher {
	return &Dispatcher{
		client: llm.NewHTTPClient(timeout),
		url:    url,
	}
}

// Enabled reports whether a callback URL is configured.
func (d *Dispatcher) Enabled() bool {
	return d.url != ""
}

// DispatchAsync delivers the session's report in the background. The
// caller must have armed the session's callback slot first; on terminal
// failure the slot is released so a later turn can retry.
func (d *Dispatcher) DispatchAsync(sess *session.Session) {
	go d.dispatch(sess)
}

func (d *Dispatcher) dispatch(sess *session.Session) {
	report := BuildReport(sess)

	for attempt := 0; ; attempt++ {
		// The request context is deliberately not used here: report
		// delivery must survive the originating HTTP request ending.
		err := d.post(context.Background(), report)
		if err == nil {
			log.Printf("[Report] [%s] delivered on attempt %d", sess.ID, attempt+1)
			return
		}
		log.Printf("[Report] [%s] delivery attempt %d failed: %v", sess.ID, attempt+1, err)
		if attempt >= len(retryDelays) {
			break
		}
		time.Sleep(retryDelays[attempt])
	}

	sess.DisarmCallback()
	log.Printf("[Report] [%s] giving up after %d attempts, will retry on a later turn",
		sess.ID, len(retryDelays)+1)
}

// post sends one delivery attempt. Only a 200 counts as delivered.
func (d *Dispatcher) post(ctx context.Context, report Report) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build report request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("report request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if err := llm.CheckResponse(resp, "callback"); err != nil {
			return err
		}
		return fmt.Errorf("callback: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// BuildReport assembles the payload from the session's current state.
func BuildReport(sess *session.Session) Report {
	snap := sess.TakeSnapshot()
	return Report{
		SessionID:              sess.ID,
		ScamDetected:           snap.ScamDetected,
		TotalMessagesExchanged: len(sess.RecentTurns(0)),
		ExtractedIntelligence:  snap.Intelligence,
		AgentNotes:             buildAgentNotes(sess, snap),
	}
}

// buildAgentNotes writes the human-readable engagement summary.
func buildAgentNotes(sess *session.Session, snap session.Snapshot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Engaged for %d turns. Risk score %d/100, stage %s.",
		snap.TurnCount, snap.RiskScore, snap.Stage)

	if names := topSignalNames(sess.Signals(), 5); len(names) > 0 {
		fmt.Fprintf(&b, " Signals: %s.", strings.Join(names, ", "))
	}

	if scamType := latestScamType(sess.Judgements()); scamType != "" {
		fmt.Fprintf(&b, " Assessed scam type: %s.", scamType)
	}

	fmt.Fprintf(&b, " Collected %d UPI IDs, %d bank accounts, %d phone numbers, %d links.",
		len(snap.Intelligence.UpiIDs), len(snap.Intelligence.BankAccounts),
		len(snap.Intelligence.PhoneNumbers), len(snap.Intelligence.PhishingLinks))

	return b.String()
}

// topSignalNames returns up to n distinct signal names, hard rules first.
func topSignalNames(signals []session.Signal, n int) []string {
	var names []string
	seen := make(map[string]bool)
	add := func(name string) {
		if !seen[name] && len(names) < n {
			seen[name] = true
			names = append(names, name)
		}
	}
	for _, s := range signals {
		if s.IsHardRule {
			add(s.Name)
		}
	}
	for _, s := range signals {
		if !s.IsHardRule {
			add(s.Name)
		}
	}
	return names
}

// latestScamType returns the most recent non-empty judged scam type.
func latestScamType(judgements []session.LLMJudgement) string {
	for i := len(judgements) - 1; i >= 0; i-- {
		t := judgements[i].ScamType
		if t != "" && t != "null" {
			return t
		}
	}
	return ""
}
