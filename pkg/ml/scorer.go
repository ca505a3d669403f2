package ml

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"
	"strings"
)

// modelWeights is the expert-defined linear model. A trained model can
// replace these weights without touching the pipeline.
var modelWeights = map[string]float64{
	"ngram_score":         0.25,
	"ngram_count":         0.15,
	"threat_score":        0.20,
	"urgency_score":       0.15,
	"request_score":       0.10,
	"has_suspicious_url":  0.05,
	"has_upi_pattern":     0.03,
	"has_phone_pattern":   0.02,
	"has_aadhaar_pattern": 0.03,
	"caps_ratio":          0.02,
}

const (
	modelBias     = -0.3
	scamThreshold = 0.5

	// seedMatchFloor is the minimum cosine similarity for a seed phrase
	// match to count as evidence.
	seedMatchFloor = 0.75
)

// Prediction is the classifier output for one message or conversation.
type Prediction struct {
	IsScam            bool
	Confidence        float64
	FeaturesTriggered []string
	Explanation       string
}

// Scorer is the lightweight scam classifier. The seed store is optional;
// when present, strong seed-phrase similarity adds evidence on top of the
// linear model.
type Scorer struct {
	seeds *SeedStore
}

// NewScorer creates a scorer. seeds may be nil.
func NewScorer(seeds *SeedStore) *Scorer {
	return &Scorer{seeds: seeds}
}

// Predict classifies a single message, optionally with prior scammer
// messages as history.
func (s *Scorer) Predict(ctx context.Context, text string, history []string) Prediction {
	features, triggered := ExtractFeatures(text, history)

	score := modelBias
	for feature, weight := range modelWeights {
		if v, ok := features[feature]; ok {
			score += v * weight
		}
	}

	probability := 1 / (1 + math.Exp(-score*2))

	// Semantic evidence: a close seed-phrase match lifts borderline cases.
	if s.seeds != nil {
		if match, ok := s.seeds.BestMatch(ctx, text); ok && match.Similarity >= seedMatchFloor {
			probability = math.Min(0.99, probability+0.1*match.Seed.Severity)
			triggered = append(triggered, "seed:"+match.Seed.Category)
		}
	}

	return Prediction{
		IsScam:            probability >= scamThreshold,
		Confidence:        probability,
		FeaturesTriggered: triggered,
		Explanation:       explain(features, triggered),
	}
}

// PredictConversation aggregates per-message predictions over a whole
// conversation: 0.7 weight on the maximum confidence, 0.3 on the mean,
// with a 1.1x lift when at least half the messages were flagged.
func (s *Scorer) PredictConversation(ctx context.Context, messages []string) Prediction {
	if len(messages) == 0 {
		return Prediction{Explanation: "No messages to analyze"}
	}

	var (
		maxConf  float64
		sumConf  float64
		flagged  int
		features []string
	)
	for i, msg := range messages {
		var history []string
		if i > 0 {
			history = messages[:i]
		}
		pred := s.Predict(ctx, msg, history)
		sumConf += pred.Confidence
		if pred.Confidence > maxConf {
			maxConf = pred.Confidence
		}
		if pred.IsScam {
			flagged++
		}
		features = append(features, pred.FeaturesTriggered...)
	}

	final := 0.7*maxConf + 0.3*(sumConf/float64(len(messages)))
	if flagged*2 >= len(messages) {
		final = math.Min(1.0, final*1.1)
	}

	return Prediction{
		IsScam:            final >= scamThreshold,
		Confidence:        final,
		FeaturesTriggered: dedupe(features),
		Explanation:       fmt.Sprintf("Analyzed %d messages, %d flagged as scam", len(messages), flagged),
	}
}

// explain lists the triggered n-grams and the top weighted contributions.
func explain(features Features, triggered []string) string {
	var parts []string
	if len(triggered) > 0 {
		head := triggered
		if len(head) > 5 {
			head = head[:5]
		}
		parts = append(parts, "Triggered patterns: "+strings.Join(head, ", "))
	}

	type contribution struct {
		name  string
		value float64
	}
	var contribs []contribution
	for feature, weight := range modelWeights {
		contribs = append(contribs, contribution{feature, features[feature] * weight})
	}
	sort.Slice(contribs, func(i, j int) bool {
		if contribs[i].value != contribs[j].value {
			return contribs[i].value > contribs[j].value
		}
		return contribs[i].name < contribs[j].name
	})
	for i, c := range contribs {
		if i >= 5 || c.value <= 0.05 {
			break
		}
		parts = append(parts, fmt.Sprintf("%s: +%.2f", c.name, c.value))
	}

	if len(parts) == 0 {
		return "No significant indicators"
	}
	return strings.Join(parts, "; ")
}

func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	var out []string
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// LogModelSummary prints the active model shape at startup.
func LogModelSummary() {
	log.Printf("[ML] linear model: %d features, %d scam n-grams, bias %.2f, threshold %.2f",
		len(modelWeights), len(scamNgrams), modelBias, scamThreshold)
}
