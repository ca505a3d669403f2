package rules

import (
	"math"
	"regexp"
	"strings"
)

// HardRule confirms a scam on a single match. Scores sit in [28, 40].
type HardRule struct {
	Name        string
	Pattern     *regexp.Regexp
	Score       int
	Category    Category
	Description string
}

// SoftRule contributes to the cumulative score. Scores sit in [8, 22];
// the contribution scales with the number of matched keywords, capped at
// twice the base score.
type SoftRule struct {
	Name        string
	Keywords    []string
	Score       int
	Category    Category
	Description string
}

// defaultHardRules is the built-in hard rule catalog. The YAML override in
// catalog_config.go can replace it wholesale.
var defaultHardRules = []HardRule{
	{
		Name: "otp_share_request",
		Pattern: regexp.MustCompile(`(?i)\b(?:share|send|tell|give|provide|forward|enter)[\s\w]{0,10}` +
			`(?:otp|o\.t\.p|one[\s-]?time[\s-]?password|verification[\s-]?code|` +
			`auth(?:entication)?[\s-]?code|security[\s-]?code|pin|cvv)\b`),
		Score:       35,
		Category:    CategoryOTPRequest,
		Description: "Explicit request to share OTP/verification code",
	},
	{
		Name:        "otp_on_phone",
		Pattern:     regexp.MustCompile(`(?i)\b(?:otp|code)[\s\w]{0,15}(?:received|came|sent|got|on your phone|message)\b`),
		Score:       30,
		Category:    CategoryOTPRequest,
		Description: "Reference to OTP sent to victim's phone",
	},
	{
		Name:        "upi_pin_request",
		Pattern:     regexp.MustCompile(`(?i)\b(?:enter|share|tell|give|type|input)[\s\w]{0,10}(?:upi[\s-]?pin|mpin|m\.pin)\b`),
		Score:       40,
		Category:    CategoryFinancial,
		Description: "Request for UPI PIN",
	},
	{
		Name: "qr_receive_money",
		Pattern: regexp.MustCompile(`(?i)\b(?:scan|accept)[\s\w]{0,15}(?:qr|code)[\s\w]{0,15}` +
			`(?:receive|get|claim|credit)\b|\b(?:receive|get)[\s\w]{0,15}` +
			`(?:money|amount|payment)[\s\w]{0,15}(?:scan|qr)\b`),
		Score:       35,
		Category:    CategoryQRCode,
		Description: "QR code scam - scan to receive money",
	},
	{
		Name:        "qr_approve",
		Pattern:     regexp.MustCompile(`(?i)\b(?:approve|accept|confirm)[\s\w]{0,10}(?:payment|request|qr)\b`),
		Score:       30,
		Category:    CategoryQRCode,
		Description: "Request to approve payment",
	},
	{
		Name: "remote_access_request",
		Pattern: regexp.MustCompile(`(?i)\b(?:install|download|open)[\s\w]{0,15}` +
			`(?:anydesk|teamviewer|quick[\s-]?support|ammyy|ultraviewer|` +
			`screen[\s-]?share|remote[\s-]?access|airdroid)\b`),
		Score:       40,
		Category:    CategoryRemoteAccess,
		Description: "Request to install remote access software",
	},
	{
		Name: "remote_access_code",
		Pattern: regexp.MustCompile(`(?i)\b(?:anydesk|teamviewer)[\s\w]{0,10}(?:code|id|number)\b|` +
			`\b(?:9|10)[\s-]?digit[\s-]?code\b`),
		Score:       35,
		Category:    CategoryRemoteAccess,
		Description: "Request for remote access code",
	},
	{
		Name: "transfer_money_request",
		Pattern: regexp.MustCompile(`(?i)\b(?:transfer|send|pay|deposit)[\s\w]{0,15}` +
			`(?:rs\.?|₹|rupees?|amount|money)[\s\w]{0,10}` +
			`(?:\d{2,}|to[\s\w]+account|immediately|now|urgent)\b`),
		Score:       30,
		Category:    CategoryPaymentRequest,
		Description: "Direct money transfer request",
	},
	{
		Name: "fee_request",
		Pattern: regexp.MustCompile(`(?i)\b(?:processing|registration|service|insurance|verification|` +
			`security|token|advance|handling)[\s-]?fee\b`),
		Score:       28,
		Category:    CategoryFinancial,
		Description: "Request for processing/registration fee",
	},
	{
		Name: "card_pin_request",
		Pattern: regexp.MustCompile(`(?i)\b(?:atm|debit|credit|card)[\s\w]{0,10}(?:pin|cvv|number)\b|` +
			`\b(?:share|tell|give)[\s\w]{0,10}(?:pin|cvv)\b`),
		Score:       40,
		Category:    CategoryFinancial,
		Description: "Request for card PIN/CVV",
	},
	{
		Name: "phishing_url",
		Pattern: regexp.MustCompile(`(?i)http[s]?://(?:[\w-]+\.)*(?:tk|ml|ga|cf|gq|herokuapp\.com|` +
			`[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3})` +
			`[/\w\-._~:/?#\[\]@!$&'()*+,;=%]*`),
		Score:       35,
		Category:    CategoryPhishing,
		Description: "Suspicious/phishing URL detected",
	},
}

// defaultSoftRules is the built-in soft rule catalog.
var defaultSoftRules = []SoftRule{
	{
		Name: "high_urgency",
		Keywords: []string{"immediately", "right now", "urgent", "asap", "hurry",
			"within 24 hours", "within 2 hours", "last warning",
			"final notice", "deadline today", "expires today",
			"time sensitive", "don't delay", "act now"},
		Score:       12,
		Category:    CategoryUrgency,
		Description: "High urgency language",
	},
	{
		Name:        "medium_urgency",
		Keywords:    []string{"soon", "quickly", "fast", "deadline", "limited time"},
		Score:       8,
		Category:    CategoryUrgency,
		Description: "Medium urgency language",
	},
	{
		Name: "account_threat",
		Keywords: []string{"account blocked", "account suspended", "account terminated",
			"account frozen", "account deactivated", "account compromised",
			"account hacked", "unauthorized access", "suspicious activity"},
		Score:       18,
		Category:    CategoryThreat,
		Description: "Account threat/suspension",
	},
	{
		Name: "legal_threat",
		Keywords: []string{"legal action", "court case", "police complaint", "fir",
			"arrest warrant", "jail", "imprisoned", "criminal case",
			"cyber crime", "prosecution", "investigation"},
		Score:       22,
		Category:    CategoryThreat,
		Description: "Legal/criminal threat",
	},
	{
		Name: "financial_threat",
		Keywords: []string{"penalty", "fine", "charge", "loss", "fraud detected",
			"money at risk", "savings at risk", "seized"},
		Score:       15,
		Category:    CategoryThreat,
		Description: "Financial threat",
	},
	{
		Name: "gov_authority",
		Keywords: []string{"rbi", "reserve bank", "income tax", "it department",
			"customs", "government", "ministry", "trai", "sebi",
			"enforcement directorate", "cbi"},
		Score:       20,
		Category:    CategoryAuthority,
		Description: "Government authority impersonation",
	},
	{
		Name: "police_authority",
		Keywords: []string{"police", "cyber cell", "cyber crime", "investigation officer",
			"inspector", "commissioner"},
		Score:       22,
		Category:    CategoryAuthority,
		Description: "Police/law enforcement impersonation",
	},
	{
		Name: "bank_authority",
		Keywords: []string{"bank manager", "customer care", "security team",
			"fraud department", "bank official", "authorized representative"},
		Score:       15,
		Category:    CategoryAuthority,
		Description: "Bank authority impersonation",
	},
	{
		Name: "money_mention",
		Keywords: []string{"refund", "cashback", "prize money", "lottery", "winner",
			"claim reward", "bonus", "compensation"},
		Score:       12,
		Category:    CategoryFinancial,
		Description: "Money/reward mention",
	},
	{
		Name: "payment_terms",
		Keywords: []string{"bank details", "account number", "transfer", "payment",
			"pay now", "emi", "loan", "credit", "insurance"},
		Score:       10,
		Category:    CategoryFinancial,
		Description: "Payment terminology",
	},
	{
		Name: "identity_request",
		Keywords: []string{"aadhaar", "aadhar", "pan card", "pan number",
			"date of birth", "dob", "kyc", "verify identity"},
		Score:       15,
		Category:    CategoryPersonalInfo,
		Description: "Identity document request",
	},
	{
		Name: "credential_request",
		Keywords: []string{"password", "login details", "credentials",
			"security question", "mother's maiden name"},
		Score:       18,
		Category:    CategoryPersonalInfo,
		Description: "Credential request",
	},
	{
		Name: "link_action",
		Keywords: []string{"click here", "click the link", "click this link",
			"visit this link", "open link", "tap here"},
		Score:       14,
		Category:    CategoryPhishing,
		Description: "Link click request",
	},
	{
		Name: "app_install",
		Keywords: []string{"download app", "install app", "install application",
			"download from", "get this app"},
		Score:       16,
		Category:    CategoryPhishing,
		Description: "App installation request",
	},
	{
		Name: "evasion",
		Keywords: []string{"can't tell you", "confidential", "security reasons",
			"protocol", "procedure", "policy doesn't allow"},
		Score:       10,
		Category:    CategoryBehavioral,
		Description: "Evasive behavior",
	},
	{
		Name: "pressure",
		Keywords: []string{"trust me", "believe me", "i promise", "guaranteed",
			"100%", "no risk", "verified process"},
		Score:       8,
		Category:    CategoryBehavioral,
		Description: "Trust pressure",
	},
}

// Match is one rule hit on a message. Score already includes the soft-rule
// match-count scaling.
type Match struct {
	Name        string
	Category    Category
	Score       int
	IsHardRule  bool
	Description string
	MatchCount  int
}

// Scan runs the full catalog over one message. Hard rules run first; any
// hit sets hardTriggered. Soft rules scale with keyword match count:
// base × min(2, 1 + 0.2 × matches).
func Scan(text string) (matches []Match, hardTriggered bool) {
	lower := strings.ToLower(text)

	for _, rule := range GetHardRules() {
		if rule.Pattern.MatchString(text) {
			hardTriggered = true
			matches = append(matches, Match{
				Name:        rule.Name,
				Category:    rule.Category,
				Score:       rule.Score,
				IsHardRule:  true,
				Description: rule.Description,
				MatchCount:  1,
			})
		}
	}

	for _, rule := range GetSoftRules() {
		count := 0
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				count++
			}
		}
		if count == 0 {
			continue
		}
		scaled := math.Min(float64(rule.Score)*(1+0.2*float64(count)), float64(rule.Score)*2)
		matches = append(matches, Match{
			Name:        rule.Name,
			Category:    rule.Category,
			Score:       int(math.Round(scaled)),
			Description: rule.Description,
			MatchCount:  count,
		})
	}

	return matches, hardTriggered
}
