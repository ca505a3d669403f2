// Package intel extracts actionable artifacts out of scammer messages:
// payment identifiers, phone numbers, malicious links and tool mentions.
// Extraction is passive and pure; it never mutates session state itself.
package intel

// Intelligence is the deduplicated artifact set for one session. JSON field
// names match the external report schema.
type Intelligence struct {
	BankAccounts       []string `json:"bankAccounts"`
	UpiIDs             []string `json:"upiIds"`
	PhishingLinks      []string `json:"phishingLinks"`
	PhoneNumbers       []string `json:"phoneNumbers"`
	SuspiciousKeywords []string `json:"suspiciousKeywords"`
}

// NewIntelligence returns an Intelligence with non-nil sets so the report
// marshals empty arrays instead of nulls.
func NewIntelligence() Intelligence {
	return Intelligence{
		BankAccounts:       []string{},
		UpiIDs:             []string{},
		PhishingLinks:      []string{},
		PhoneNumbers:       []string{},
		SuspiciousKeywords: []string{},
	}
}

// Clone returns a deep copy safe to hand to other goroutines.
func (i Intelligence) Clone() Intelligence {
	out := Intelligence{
		BankAccounts:       make([]string, len(i.BankAccounts)),
		UpiIDs:             make([]string, len(i.UpiIDs)),
		PhishingLinks:      make([]string, len(i.PhishingLinks)),
		PhoneNumbers:       make([]string, len(i.PhoneNumbers)),
		SuspiciousKeywords: make([]string, len(i.SuspiciousKeywords)),
	}
	copy(out.BankAccounts, i.BankAccounts)
	copy(out.UpiIDs, i.UpiIDs)
	copy(out.PhishingLinks, i.PhishingLinks)
	copy(out.PhoneNumbers, i.PhoneNumbers)
	copy(out.SuspiciousKeywords, i.SuspiciousKeywords)
	return out
}

// HasHighValue reports whether the set contains at least one high-value
// artifact: any UPI, any bank account, or phone numbers plus links together.
func (i Intelligence) HasHighValue() bool {
	if len(i.UpiIDs) > 0 || len(i.BankAccounts) > 0 {
		return true
	}
	return len(i.PhoneNumbers) > 0 && len(i.PhishingLinks) > 0
}

// Count returns the total number of artifacts excluding keywords.
func (i Intelligence) Count() int {
	return len(i.BankAccounts) + len(i.UpiIDs) + len(i.PhishingLinks) + len(i.PhoneNumbers)
}

func appendUnique(dst []string, v string) []string {
	for _, existing := range dst {
		if existing == v {
			return dst
		}
	}
	return append(dst, v)
}

// ExtractionItem is one attributed extraction with provenance. Source is
// always "scammer"; the extractor refuses agent-authored input.
type ExtractionItem struct {
	Value      string  `json:"value"`
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
	Turn       int     `json:"turn"`
	Context    string  `json:"context"`
	Source     string  `json:"source"`
}

// Extraction item types.
const (
	TypeUPI       = "upi"
	TypeBank      = "bank_account"
	TypeIFSC      = "ifsc"
	TypePhone     = "phone"
	TypeURL       = "url"
	TypeShortURL  = "short_url"
	TypeKeyword   = "keyword"
	TypeTelegram  = "telegram"
	TypeRemoteApp = "remote_app"
	TypeQRMention = "qr_mention"
)
