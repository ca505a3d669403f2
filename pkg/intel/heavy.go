package intel

import (
	"regexp"
	"strings"
)

// Heavy-extraction patterns. These run only once the session has reached
// the THREAT stage, after enough context exists to trust the artifacts.
var (
	upiPattern = regexp.MustCompile(`(?i)[a-zA-Z0-9._-]{2,256}@(?:upi|paytm|okaxis|okicici|okhdfcbank|oksbi|ybl|apl|ibl|axl|` +
		`kotak|icici|sbi|hdfc|axis|idfcfirst|indus|federal|rbl|yes|pnb|boi|bob|canara|` +
		`union|idbi|citi|hsbc|sc|dbs|ubi|equitas|bandhan|au|fino|payzapp|airtel|jio|` +
		`waicici|wahdfcbank|wasbi|waaxis|freecharge|mobikwik|amazonpay|phonepe|gpay)`)

	digitRunPattern = regexp.MustCompile(`\b\d{9,18}\b`)

	ifscPattern = regexp.MustCompile(`(?i)\b[A-Z]{4}0[A-Z0-9]{6}\b`)

	// Each alternative is anchored so a longer digit run never yields a
	// truncated ten-digit "phone" from its middle.
	phonePattern = regexp.MustCompile(`\+91[\s.-]?[6-9]\d{9}\b|` +
		`\+91\s?\d{5}\s?\d{5}\b|` +
		`\b91[6-9]\d{9}\b|` +
		`\b0[6-9]\d{9}\b|` +
		`\b[6-9]\d{9}\b|` +
		`\b[6-9]\d{2}[\s.-]\d{3}[\s.-]\d{4}\b`)

	urlPattern = regexp.MustCompile(`(?i)https?://(?:www\.)?[-a-zA-Z0-9@:%._+~#=]{1,256}\.[a-zA-Z0-9()]{1,6}\b` +
		`[-a-zA-Z0-9()@:%_+.~#?&/=]*`)

	shortURLPattern = regexp.MustCompile(`(?i)(?:bit\.ly|tinyurl\.com|t\.co|goo\.gl|ow\.ly|is\.gd|buff\.ly|` +
		`adf\.ly|j\.mp|tiny\.cc|cutt\.ly|rb\.gy|shorte\.st|shorturl\.at|` +
		`v\.gd|tr\.im|clck\.ru|bc\.vc|ouo\.io)/[\w-]+`)

	telegramPattern = regexp.MustCompile(`(?i)(?:t\.me/|telegram\.me/|@)([a-zA-Z][a-zA-Z0-9_]{4,31})`)

	whatsappPattern = regexp.MustCompile(`(?i)(?:wa\.me/|whatsapp\.com/send\?phone=)(\+?\d{10,15})`)

	remoteAppPattern = regexp.MustCompile(`(?i)\b(?:anydesk|teamviewer|quicksupport|ammyy|ultraviewer|` +
		`airdroid|screenconnect|supremo|rustdesk)\b`)

	qrPattern = regexp.MustCompile(`(?i)\b(?:qr\s*code|scan\s*(?:this|the)?\s*qr|qr\s*scan)\b`)
)

// accountContextWords gate bare digit runs: a 9 or 10-digit run is only an
// account number when banking vocabulary surrounds it.
var accountContextWords = []string{"account", "a/c", "acc", "transfer", "bank", "ifsc", "beneficiary"}

// trustedDomains are never reported as phishing links.
var trustedDomains = []string{
	"google.com", "facebook.com", "amazon.in", "flipkart.com",
	"paytm.com", "sbi.co.in", "hdfcbank.com",
}

// HeavyResult is the full-extraction output for one message: the artifact
// delta plus one attributed record per artifact.
type HeavyResult struct {
	Intel Intelligence
	Items []ExtractionItem
}

// ExtractHeavy runs the full artifact extraction over one scammer message.
// source must be "scammer"; anything else returns an empty result so
// agent-authored text can never contaminate the intel set. The function is
// pure: the same text always yields the same result.
func ExtractHeavy(text, source string, turn int) HeavyResult {
	result := HeavyResult{Intel: NewIntelligence()}
	if source != "scammer" {
		return result
	}
	text, _ = Normalize(text)
	ctx := contextSnippet(text)

	record := func(value, itemType string, confidence float64) {
		result.Items = append(result.Items, ExtractionItem{
			Value:      value,
			Type:       itemType,
			Confidence: confidence,
			Turn:       turn,
			Context:    ctx,
			Source:     source,
		})
	}

	// UPI addresses
	for _, m := range upiPattern.FindAllString(text, -1) {
		upi := strings.ToLower(strings.TrimSpace(m))
		if len(upi) < 5 || !strings.Contains(upi, "@") {
			continue
		}
		before := len(result.Intel.UpiIDs)
		result.Intel.UpiIDs = appendUnique(result.Intel.UpiIDs, upi)
		if len(result.Intel.UpiIDs) > before {
			record(upi, TypeUPI, 0.9)
		}
	}

	// Bank accounts: digit runs with banking context, or long enough to be
	// unambiguous. 10-digit runs starting 6-9 are phone-shaped and skipped.
	lower := strings.ToLower(text)
	hasContext := false
	for _, w := range accountContextWords {
		if strings.Contains(lower, w) {
			hasContext = true
			break
		}
	}
	for _, acc := range digitRunPattern.FindAllString(text, -1) {
		if len(acc) == 10 && acc[0] >= '6' && acc[0] <= '9' {
			continue
		}
		if !hasContext && len(acc) < 11 {
			continue
		}
		before := len(result.Intel.BankAccounts)
		result.Intel.BankAccounts = appendUnique(result.Intel.BankAccounts, acc)
		if len(result.Intel.BankAccounts) > before {
			record(acc, TypeBank, 0.85)
		}
	}

	// IFSC codes, stored with a prefix so they sort apart from accounts
	for _, m := range ifscPattern.FindAllString(text, -1) {
		ifsc := strings.ToUpper(m)
		entry := "IFSC:" + ifsc
		before := len(result.Intel.BankAccounts)
		result.Intel.BankAccounts = appendUnique(result.Intel.BankAccounts, entry)
		if len(result.Intel.BankAccounts) > before {
			record(ifsc, TypeIFSC, 0.95)
		}
	}

	// Phone numbers normalized to bare 10 digits
	for _, m := range phonePattern.FindAllString(text, -1) {
		phone := normalizePhone(m)
		if len(phone) != 10 {
			continue
		}
		before := len(result.Intel.PhoneNumbers)
		result.Intel.PhoneNumbers = appendUnique(result.Intel.PhoneNumbers, phone)
		if len(result.Intel.PhoneNumbers) > before {
			record(phone, TypePhone, 0.9)
		}
	}

	// URLs, excluding trusted domains
	for _, url := range urlPattern.FindAllString(text, -1) {
		if isTrustedDomain(url) {
			continue
		}
		before := len(result.Intel.PhishingLinks)
		result.Intel.PhishingLinks = appendUnique(result.Intel.PhishingLinks, url)
		if len(result.Intel.PhishingLinks) > before {
			record(url, TypeURL, 0.8)
		}
	}

	// Shortened URLs are suspicious unconditionally
	for _, short := range shortURLPattern.FindAllString(text, -1) {
		full := short
		if !strings.HasPrefix(full, "http") {
			full = "https://" + full
		}
		before := len(result.Intel.PhishingLinks)
		result.Intel.PhishingLinks = appendUnique(result.Intel.PhishingLinks, full)
		if len(result.Intel.PhishingLinks) > before {
			record(full, TypeShortURL, 0.95)
		}
	}

	// Telegram handles
	for _, groups := range telegramPattern.FindAllStringSubmatch(text, -1) {
		handle := "@" + groups[1]
		entry := "telegram:" + handle
		before := len(result.Intel.SuspiciousKeywords)
		result.Intel.SuspiciousKeywords = appendUnique(result.Intel.SuspiciousKeywords, entry)
		if len(result.Intel.SuspiciousKeywords) > before {
			record(handle, TypeTelegram, 0.85)
		}
	}

	// WhatsApp contact numbers
	for _, groups := range whatsappPattern.FindAllStringSubmatch(text, -1) {
		num := groups[1]
		before := len(result.Intel.PhoneNumbers)
		result.Intel.PhoneNumbers = appendUnique(result.Intel.PhoneNumbers, num)
		if len(result.Intel.PhoneNumbers) > before {
			record(num, TypePhone, 0.9)
		}
	}

	// Remote access tooling
	for _, app := range remoteAppPattern.FindAllString(text, -1) {
		entry := "remote_app:" + strings.ToLower(app)
		before := len(result.Intel.SuspiciousKeywords)
		result.Intel.SuspiciousKeywords = appendUnique(result.Intel.SuspiciousKeywords, entry)
		if len(result.Intel.SuspiciousKeywords) > before {
			record(strings.ToLower(app), TypeRemoteApp, 0.95)
		}
	}

	// QR code mentions
	if qrPattern.MatchString(text) {
		result.Intel.SuspiciousKeywords = appendUnique(result.Intel.SuspiciousKeywords, "qr_code_mentioned")
		record("qr_code", TypeQRMention, 0.9)
	}

	return result
}

// normalizePhone strips separators and the +91/91/0 prefixes.
func normalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r == ' ' || r == '.' || r == '-' {
			continue
		}
		b.WriteRune(r)
	}
	phone := b.String()
	switch {
	case strings.HasPrefix(phone, "+91"):
		phone = phone[3:]
	case strings.HasPrefix(phone, "91") && len(phone) == 12:
		phone = phone[2:]
	case strings.HasPrefix(phone, "0") && len(phone) == 11:
		phone = phone[1:]
	}
	return phone
}

func isTrustedDomain(url string) bool {
	lower := strings.ToLower(url)
	for _, t := range trustedDomains {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}

// contextSnippet keeps the first 50 runes of the source message for the
// extraction record.
func contextSnippet(text string) string {
	runes := []rune(text)
	if len(runes) > 50 {
		runes = runes[:50]
	}
	return string(runes)
}
