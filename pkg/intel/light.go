package intel

import (
	"regexp"
	"strings"
)

// keywordCategory pairs a light-extraction category with its pattern and
// the intent hint it contributes. Categories are scanned in slice order so
// replaying the same input always yields the same keyword order.
type keywordCategory struct {
	Name    string
	Pattern *regexp.Regexp
	Hint    string
}

var keywordCategories = []keywordCategory{
	{
		Name: "urgency",
		Pattern: regexp.MustCompile(`(?i)\b(?:urgent|immediately|right now|asap|quick|hurry|` +
			`within \d+ (?:hours?|minutes?)|deadline|expires? today|` +
			`last (?:chance|warning)|final notice|time sensitive)\b`),
		Hint: "creating_urgency",
	},
	{
		Name: "threat",
		Pattern: regexp.MustCompile(`(?i)\b(?:block(?:ed)?|suspend(?:ed)?|freez(?:e|ing)|terminat(?:e|ed)|` +
			`seiz(?:e|ed)|compromised|hack(?:ed)?|unauthori[sz]ed|` +
			`fraud(?:ulent)?|illegal|criminal|arrest|jail|` +
			`penalty|fine|legal action|court|police|warrant)\b`),
		Hint: "threatening_victim",
	},
	{
		Name: "authority",
		Pattern: regexp.MustCompile(`(?i)\b(?:rbi|reserve bank|income tax|it department|customs|` +
			`cyber (?:cell|crime|police)|cbi|enforcement|sebi|` +
			`government|official|authorized|verified|certified|` +
			`bank manager|customer (?:care|support)|security team|` +
			`fraud department|investigation|ministry|trai)\b`),
		Hint: "impersonating_authority",
	},
	{
		Name: "financial",
		Pattern: regexp.MustCompile(`(?i)\b(?:otp|one.?time.?password|verification code|pin|cvv|` +
			`card number|account (?:number|details)|bank details|` +
			`transfer|send money|pay(?:ment)?|refund|cashback|` +
			`prize|lottery|winner|claim|reward|bonus|` +
			`processing fee|advance|deposit|emi|loan)\b`),
		Hint: "requesting_financial_info",
	},
	{
		Name: "personal_info",
		Pattern: regexp.MustCompile(`(?i)\b(?:aadhaar|aadhar|pan (?:card|number)?|passport|` +
			`date of birth|dob|mother'?s? (?:maiden )?name|` +
			`security question|password|login|credentials|kyc)\b`),
		Hint: "requesting_personal_info",
	},
	{
		Name: "phishing",
		Pattern: regexp.MustCompile(`(?i)\b(?:click (?:here|this|the link)|visit (?:this )?link|` +
			`download (?:this )?app|install|update (?:app|details)|` +
			`verify (?:account|identity)|fill (?:this )?form|` +
			`remote access|screen share)\b`),
		Hint: "phishing_attempt",
	},
}

// scamSignature classifies a message into a coarse scam type by indicator
// keywords. The first signature with any indicator present wins.
type scamSignature struct {
	Type       string
	Indicators []string
}

var scamSignatures = []scamSignature{
	{"bank_kyc", []string{"kyc", "account block", "verify", "bank", "update details"}},
	{"otp_fraud", []string{"otp", "verification code", "share otp", "enter otp"}},
	{"upi_fraud", []string{"upi", "collect request", "qr code", "scan", "payment"}},
	{"loan_scam", []string{"loan", "pre-approved", "instant", "low interest", "emi"}},
	{"refund_scam", []string{"refund", "cashback", "excess payment", "return"}},
	{"police_impersonation", []string{"police", "cyber cell", "arrest", "warrant", "case"}},
	{"job_scam", []string{"work from home", "part time", "data entry", "easy money"}},
	{"delivery_scam", []string{"delivery", "package", "customs", "parcel", "stuck"}},
}

// LightResult is the per-turn cheap extraction output.
type LightResult struct {
	Keywords    []string
	IntentHints []string
	ScamType    string
}

// ExtractLight scans a scammer message for category keywords, intent hints
// and a coarse scam-type guess. It runs on every turn regardless of stage
// and is pure.
func ExtractLight(text string) LightResult {
	text, _ = Normalize(text)

	var result LightResult
	seenKeywords := make(map[string]bool)
	for _, cat := range keywordCategories {
		matches := cat.Pattern.FindAllString(text, -1)
		hinted := false
		for _, m := range matches {
			kw := strings.ToLower(strings.TrimSpace(m))
			if kw == "" || seenKeywords[kw] {
				continue
			}
			seenKeywords[kw] = true
			result.Keywords = append(result.Keywords, kw)
			if !hinted {
				result.IntentHints = append(result.IntentHints, cat.Hint)
				hinted = true
			}
		}
	}

	lower := strings.ToLower(text)
	for _, sig := range scamSignatures {
		for _, ind := range sig.Indicators {
			if strings.Contains(lower, ind) {
				result.ScamType = sig.Type
				result.IntentHints = append(result.IntentHints, "scam_type:"+sig.Type)
				break
			}
		}
		if result.ScamType != "" {
			break
		}
	}

	return result
}
