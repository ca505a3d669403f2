package ml

import (
	"context"
	"testing"
)

func TestPredict_ObviousScam(t *testing.T) {
	s := NewScorer(nil)
	pred := s.Predict(context.Background(), "URGENT: share OTP immediately or your account blocked! Transfer money now.", nil)

	if !pred.IsScam {
		t.Errorf("Expected scam prediction, got confidence %.3f", pred.Confidence)
	}
	if pred.Confidence < 0.6 {
		t.Errorf("Expected confidence >= 0.6, got %.3f", pred.Confidence)
	}
	if len(pred.FeaturesTriggered) == 0 {
		t.Error("Expected triggered n-grams")
	}
	t.Logf("confidence=%.3f features=%v", pred.Confidence, pred.FeaturesTriggered)
}

func TestPredict_Benign(t *testing.T) {
	s := NewScorer(nil)
	tests := []string{
		"Hi, how are you today?",
		"Thank you for your help, have a nice day",
		"Shall we meet for lunch tomorrow?",
	}
	for _, text := range tests {
		pred := s.Predict(context.Background(), text, nil)
		if pred.IsScam {
			t.Errorf("Benign text flagged as scam: %q (%.3f)", text, pred.Confidence)
		}
	}
}

func TestPredict_Deterministic(t *testing.T) {
	s := NewScorer(nil)
	text := "share otp now, account blocked, police complaint filed"
	first := s.Predict(context.Background(), text, nil)
	for i := 0; i < 3; i++ {
		again := s.Predict(context.Background(), text, nil)
		if again.Confidence != first.Confidence {
			t.Fatalf("Prediction must be deterministic: %.6f vs %.6f", first.Confidence, again.Confidence)
		}
		if len(again.FeaturesTriggered) != len(first.FeaturesTriggered) {
			t.Fatalf("Triggered features must be stable")
		}
		for j := range again.FeaturesTriggered {
			if again.FeaturesTriggered[j] != first.FeaturesTriggered[j] {
				t.Fatalf("Feature order must be stable: %v vs %v", first.FeaturesTriggered, again.FeaturesTriggered)
			}
		}
	}
}

func TestPredictConversation(t *testing.T) {
	s := NewScorer(nil)
	messages := []string{
		"Hello sir, I am calling from your bank",
		"Your account will be blocked today due to KYC",
		"Share OTP immediately to stop the block",
	}
	pred := s.PredictConversation(context.Background(), messages)
	if !pred.IsScam {
		t.Errorf("Escalating conversation should be flagged, got %.3f", pred.Confidence)
	}

	empty := s.PredictConversation(context.Background(), nil)
	if empty.IsScam || empty.Confidence != 0 {
		t.Errorf("Empty conversation must not be flagged: %+v", empty)
	}
}

func TestExtractFeatures(t *testing.T) {
	features, triggered := ExtractFeatures("Share OTP now!! Call +91 9876543210 or visit http://scam.tk", nil)

	if features["exclamation_count"] != 2 {
		t.Errorf("Expected 2 exclamations, got %v", features["exclamation_count"])
	}
	if features["has_phone_pattern"] != 1 {
		t.Error("Phone pattern should be detected")
	}
	if features["has_suspicious_url"] != 1 {
		t.Error("Suspicious URL should be detected")
	}
	if len(triggered) == 0 || triggered[0] != "share otp" {
		t.Errorf("Expected share otp n-gram first, got %v", triggered)
	}
}

func TestEscalationRatio(t *testing.T) {
	increasing := []string{
		"hello there",
		"your account blocked soon",
		"share otp now or police complaint and arrest warrant",
	}
	if r := escalationRatio(increasing); r != 1.0 {
		t.Errorf("Expected escalation ratio 1.0, got %v", r)
	}
	if r := escalationRatio([]string{"one"}); r != 0 {
		t.Errorf("Single message has no escalation, got %v", r)
	}
}
