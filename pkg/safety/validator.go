// Package safety gates every outbound agent reply. It rejects candidate
// replies that would leak sensitive-looking data, impersonate an
// authority in the first person, or comply with a scammer's demand.
// Rejected replies are replaced with a deflection, never rewritten.
package safety

import "regexp"

// ViolationKind labels the pattern family a candidate reply violated.
type ViolationKind string

const (
	ViolationLeakage        ViolationKind = "sensitive_data_leakage"
	ViolationImpersonation  ViolationKind = "authority_impersonation"
	ViolationOverCompliance ViolationKind = "over_compliance"
)

// leakagePatterns match outbound sensitive-looking data. The agent plays a
// victim who never actually produces an OTP, PIN, account number, card
// number, identity number or fabricated case reference.
var leakagePatterns = []*regexp.Regexp{
	// OTP/PIN/CVV/password followed by a numeric value
	regexp.MustCompile(`(?i)\b(?:otp|pin|cvv|password|passcode)\b[^\d]{0,20}\d{3,}`),
	// Bank account numbers in context
	regexp.MustCompile(`(?i)\b(?:account|a/c|acc)\b[^\d]{0,15}\d{9,18}\b`),
	// UPI addresses
	regexp.MustCompile(`(?i)\b[a-z0-9._-]{2,}@(?:ybl|okaxis|oksbi|okhdfcbank|okicici|paytm|upi|apl|ibl|axl|ptys|ptyes|pthdfc|ptsbi)\b`),
	// Card-shaped digit groups
	regexp.MustCompile(`\b\d{4}[ -]?\d{4}[ -]?\d{4}[ -]?\d{1,4}\b`),
	// Aadhaar-shaped digit groups
	regexp.MustCompile(`\b\d{4}[ -]\d{4}[ -]\d{4}\b`),
	// PAN
	regexp.MustCompile(`\b[A-Z]{5}\d{4}[A-Z]\b`),
	// IFSC
	regexp.MustCompile(`\b[A-Z]{4}0[A-Z0-9]{6}\b`),
	// Fabricated case/FIR/reference identifiers
	regexp.MustCompile(`(?i)\b(?:case|fir|ref(?:erence)?|complaint)\s*(?:no\.?|number|id)\s*[:#]?\s*[\w/-]*\d[\w/-]*`),
	// Any long digit run is suspect in an agent reply
	regexp.MustCompile(`\b\d{6,}\b`),
}

// impersonationPatterns match first-person claims of authority. The
// persona is an ordinary user; claiming to be police or a bank official
// is never allowed.
var impersonationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:i\s+am|i'm)\s+(?:(?:a|an|the|your|from|with)\s+){0,2}` +
		`(?:police|cid|cbi|rbi|cyber\s*cell|cyber\s*crime|bank\s+manager|branch\s+manager|` +
		`inspector|constable|officer|income\s+tax|customs|enforcement)`),
	regexp.MustCompile(`(?i)\b(?:i\s+am|i'm)\s+calling\s+from\s+(?:the\s+)?` +
		`(?:police|cid|cbi|rbi|cyber\s*cell|bank|income\s+tax|customs)`),
	regexp.MustCompile(`(?i)\bspeaking\s+(?:as|for)\s+(?:the\s+)?(?:police|rbi|bank|cyber\s*cell)`),
}

// compliancePatterns match phrasings where the victim persona gives in to
// the scammer's demand.
var compliancePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:here\s+is|here's)\s+(?:my|the)\s+(?:otp|pin|cvv|password|account|card|aadhaar|pan)\b`),
	regexp.MustCompile(`(?i)\bmy\s+(?:otp|pin|cvv|password|aadhaar|pan)\b[\s\w]{0,10}\bis\b`),
	regexp.MustCompile(`(?i)\bi\s+(?:have|already|just)\s+(?:transferred|paid|sent)\b`),
	regexp.MustCompile(`(?i)\bi\s+will\s+(?:share|send|give|tell)\s+(?:you\s+)?(?:my|the)\s+(?:otp|pin|cvv|password|account)\b`),
	regexp.MustCompile(`(?i)\b(?:take|note|write)\s+down\s+my\b`),
	regexp.MustCompile(`(?i)\btransferring\s+(?:the\s+)?money\s+now\b`),
}

// Validate checks a candidate agent reply against all three pattern
// families. It is pure and safe for concurrent use; the patterns are
// read-only after package initialization.
func Validate(reply string) (accepted bool, violations []ViolationKind) {
	for _, p := range leakagePatterns {
		if p.MatchString(reply) {
			violations = append(violations, ViolationLeakage)
			break
		}
	}
	for _, p := range impersonationPatterns {
		if p.MatchString(reply) {
			violations = append(violations, ViolationImpersonation)
			break
		}
	}
	for _, p := range compliancePatterns {
		if p.MatchString(reply) {
			violations = append(violations, ViolationOverCompliance)
			break
		}
	}
	return len(violations) == 0, violations
}
