// Package ml holds the lightweight statistical scam classifier: a
// feature-weighted linear model over n-grams, punctuation and entity
// presence, plus a semantic seed store for phrase-level similarity.
// Nothing here requires training data or network access.
package ml

import (
	"regexp"
	"strings"
	"unicode"
)

// scamNgrams are high-signal phrases with expert-assigned weights.
var scamNgrams = map[string]float64{
	// Urgency
	"act now": 3.0, "immediately": 2.5, "urgent": 2.5, "right now": 2.0,
	"don't delay": 2.5, "limited time": 2.0, "expires today": 2.5,
	"last chance": 2.5, "final warning": 3.0,
	// Threats
	"account blocked": 3.5, "account suspended": 3.5, "legal action": 3.0,
	"police complaint": 3.5, "arrest warrant": 4.0, "court case": 3.0,
	"will be blocked": 3.0, "will be suspended": 3.0,
	// Financial requests
	"share otp": 4.0, "send otp": 4.0, "otp number": 3.5,
	"verification code": 2.5, "bank details": 3.0, "account number": 2.5,
	"transfer money": 3.0, "upi id": 3.0, "upi pin": 4.0,
	"atm pin": 4.0, "cvv number": 4.0,
	// Authority impersonation
	"rbi": 3.0, "reserve bank": 3.0, "income tax": 3.0, "cyber cell": 3.5,
	"police": 2.5, "government official": 3.0, "bank manager": 2.5,
	"customer care": 2.0,
	// Phishing delivery
	"click here": 2.0, "click the link": 2.5, "download app": 2.5,
	"install app": 2.5, "anydesk": 4.0, "teamviewer": 4.0, "screen share": 3.5,
	// Rewards
	"won lottery": 3.5, "prize money": 3.0, "claim reward": 3.0,
	"cashback": 2.0, "refund": 2.0,
}

// safeNgrams carry negative weights for courteous legitimate phrasing.
var safeNgrams = map[string]float64{
	"thank you for":      -1.0,
	"have a nice day":    -1.5,
	"how can i help":     -1.5,
	"please let me know": -1.0,
	"feel free to":       -1.0,
	"happy to help":      -1.5,
}

// ngramOrder fixes the scan order so triggered-feature lists are stable
// across runs.
var ngramOrder = func() []string {
	keys := make([]string, 0, len(scamNgrams))
	for k := range scamNgrams {
		keys = append(keys, k)
	}
	// insertion sort keeps this dependency-free for a tiny slice
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j] < keys[j-1]; j-- {
			keys[j], keys[j-1] = keys[j-1], keys[j]
		}
	}
	return keys
}()

var (
	digitRunRe      = regexp.MustCompile(`\d+`)
	urlRe           = regexp.MustCompile(`https?://\S+`)
	upiLikeRe       = regexp.MustCompile(`[a-zA-Z0-9._-]+@[a-zA-Z]{2,}`)
	phoneLikeRe     = regexp.MustCompile(`(?:\+91[-\s]?)?[6-9]\d{9}`)
	aadhaarLikeRe   = regexp.MustCompile(`\b\d{4}\s?\d{4}\s?\d{4}\b`)
	trustedURLParts = []string{"google", "facebook", "amazon", "flipkart", "paytm", "sbi", "hdfc"}
)

var (
	urgencyWords = []string{"urgent", "immediate", "now", "today", "quick", "fast", "hurry", "asap"}
	threatWords  = []string{"block", "suspend", "arrest", "legal", "police", "jail", "fine", "penalty"}
	requestWords = []string{"share", "send", "give", "provide", "transfer", "pay", "verify"}
)

// Features is a named feature map for one message.
type Features map[string]float64

// ExtractFeatures computes the feature map for a message, optionally with
// conversation history for escalation features. Returns the features and
// the scam n-grams that triggered, in stable order.
func ExtractFeatures(text string, history []string) (Features, []string) {
	features := make(Features)
	lower := strings.ToLower(text)

	ngramScore := 0.0
	var triggered []string
	for _, ngram := range ngramOrder {
		if strings.Contains(lower, ngram) {
			ngramScore += scamNgrams[ngram]
			triggered = append(triggered, ngram)
		}
	}
	for ngram, weight := range safeNgrams {
		if strings.Contains(lower, ngram) {
			ngramScore += weight
		}
	}
	features["ngram_score"] = ngramScore
	features["ngram_count"] = float64(len(triggered))

	words := strings.Fields(text)
	features["length"] = float64(len(text))
	features["word_count"] = float64(len(words))

	features["exclamation_count"] = float64(strings.Count(text, "!"))
	features["question_count"] = float64(strings.Count(text, "?"))
	upper := 0
	for _, r := range text {
		if unicode.IsUpper(r) {
			upper++
		}
	}
	features["caps_ratio"] = float64(upper) / float64(max(len(text), 1))

	numbers := digitRunRe.FindAllString(text, -1)
	features["number_count"] = float64(len(numbers))
	longNumbers := 0
	for _, n := range numbers {
		if len(n) >= 6 {
			longNumbers++
		}
	}
	features["long_number_count"] = float64(longNumbers)

	urls := urlRe.FindAllString(text, -1)
	features["url_count"] = float64(len(urls))
	features["has_suspicious_url"] = 0
	for _, url := range urls {
		trusted := false
		for _, part := range trustedURLParts {
			if strings.Contains(strings.ToLower(url), part) {
				trusted = true
				break
			}
		}
		if !trusted {
			features["has_suspicious_url"] = 1
			break
		}
	}

	features["has_upi_pattern"] = boolFeature(upiLikeRe.MatchString(text))
	features["has_phone_pattern"] = boolFeature(phoneLikeRe.MatchString(text))
	features["has_aadhaar_pattern"] = boolFeature(aadhaarLikeRe.MatchString(text))

	features["urgency_score"] = wordHits(lower, urgencyWords) * 0.5
	features["threat_score"] = wordHits(lower, threatWords) * 0.7
	features["request_score"] = wordHits(lower, requestWords) * 0.5

	if len(history) > 0 {
		features["conversation_length"] = float64(len(history))
		features["escalation_ratio"] = escalationRatio(history)
	}

	return features, triggered
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func wordHits(lower string, words []string) float64 {
	hits := 0.0
	for _, w := range words {
		if strings.Contains(lower, w) {
			hits++
		}
	}
	return hits
}

// escalationRatio measures how often per-message n-gram evidence increases
// across the history, a signature of scam scripts ramping up pressure.
func escalationRatio(history []string) float64 {
	if len(history) < 2 {
		return 0
	}
	scores := make([]float64, len(history))
	for i, msg := range history {
		lower := strings.ToLower(msg)
		for ngram, weight := range scamNgrams {
			if strings.Contains(lower, ngram) {
				scores[i] += weight
			}
		}
	}
	increasing := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[i-1] {
			increasing++
		}
	}
	return float64(increasing) / float64(len(scores)-1)
}
