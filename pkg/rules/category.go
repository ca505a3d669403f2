// Package rules holds the frozen declarative signal catalog: hard rules
// that immediately confirm a scam, soft rules that accumulate risk, and
// the stage-progression patterns. The catalog is loaded once at startup
// and treated as immutable shared data afterwards.
package rules

// Category classifies a signal for explainability and mission accounting.
type Category string

const (
	CategoryUrgency        Category = "urgency"
	CategoryThreat         Category = "threat"
	CategoryAuthority      Category = "authority"
	CategoryFinancial      Category = "financial"
	CategoryPersonalInfo   Category = "personal_info"
	CategoryPhishing       Category = "phishing"
	CategoryBehavioral     Category = "behavioral"
	CategoryOTPRequest     Category = "otp_request"
	CategoryPaymentRequest Category = "payment_request"
	CategoryQRCode         Category = "qr_code"
	CategoryRemoteAccess   Category = "remote_access"
	CategoryMLDetection    Category = "ml_detection"
	CategoryLLMDetection   Category = "llm_detection"
)

func (c Category) String() string {
	return string(c)
}

// CategoryDescriptions provides human-readable descriptions for reports.
var CategoryDescriptions = map[Category]string{
	CategoryUrgency:        "Urgency and time pressure",
	CategoryThreat:         "Threats against the victim or their accounts",
	CategoryAuthority:      "Authority impersonation",
	CategoryFinancial:      "Financial instruments and payment talk",
	CategoryPersonalInfo:   "Identity or credential harvesting",
	CategoryPhishing:       "Links, apps and phishing delivery",
	CategoryBehavioral:     "Evasion and trust-pressure behavior",
	CategoryOTPRequest:     "One-time password requests",
	CategoryPaymentRequest: "Direct payment demands",
	CategoryQRCode:         "QR-code payment tricks",
	CategoryRemoteAccess:   "Remote access tooling",
	CategoryMLDetection:    "Statistical classifier signal",
	CategoryLLMDetection:   "Reasoning judge signal",
}
