package intel

import (
	"reflect"
	"testing"
)

func TestExtractLight_IntentHints(t *testing.T) {
	res := ExtractLight("URGENT: your account will be blocked. Share OTP to verify account now.")

	wantHints := map[string]bool{
		"creating_urgency":          true,
		"threatening_victim":        true,
		"requesting_financial_info": true,
		"phishing_attempt":          true,
	}
	for _, h := range res.IntentHints {
		delete(wantHints, h)
	}
	for h := range wantHints {
		t.Errorf("Missing intent hint %q, got %v", h, res.IntentHints)
	}
	if res.ScamType != "bank_kyc" {
		t.Errorf("Expected scam type bank_kyc, got %q", res.ScamType)
	}
}

func TestExtractLight_Benign(t *testing.T) {
	res := ExtractLight("Hi, how are you today?")
	if len(res.Keywords) != 0 || len(res.IntentHints) != 0 || res.ScamType != "" {
		t.Errorf("Benign text should extract nothing, got %+v", res)
	}
}

func TestExtractHeavy_UPI(t *testing.T) {
	res := ExtractHeavy("send to rajesh.verma@ybl right away", "scammer", 3)
	if len(res.Intel.UpiIDs) != 1 || res.Intel.UpiIDs[0] != "rajesh.verma@ybl" {
		t.Errorf("Expected one UPI, got %v", res.Intel.UpiIDs)
	}
	if len(res.Items) == 0 || res.Items[0].Type != TypeUPI || res.Items[0].Turn != 3 {
		t.Errorf("Extraction item not recorded: %+v", res.Items)
	}
	if res.Items[0].Source != "scammer" {
		t.Errorf("Item source must be scammer, got %q", res.Items[0].Source)
	}
}

func TestExtractHeavy_RejectsNonScammerSource(t *testing.T) {
	res := ExtractHeavy("send to rajesh.verma@ybl", "agent", 1)
	if res.Intel.Count() != 0 || len(res.Items) != 0 {
		t.Errorf("Non-scammer source must extract nothing, got %+v", res)
	}
}

func TestExtractHeavy_BankAccounts(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"context word", "transfer to account 123456789", []string{"123456789"}},
		{"long run without context", "use 123456789012345", []string{"123456789012345"}},
		{"short run without context", "the code 123456789 okay", nil},
		{"phone shaped", "account help 9876543210 call", nil},
		{"ifsc", "IFSC is SBIN0001234", []string{"IFSC:SBIN0001234"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ExtractHeavy(tt.text, "scammer", 1)
			if len(tt.want) == 0 && len(res.Intel.BankAccounts) != 0 {
				t.Errorf("Expected no accounts, got %v", res.Intel.BankAccounts)
			}
			if len(tt.want) > 0 && !reflect.DeepEqual(res.Intel.BankAccounts, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, res.Intel.BankAccounts)
			}
		})
	}
}

func TestExtractHeavy_PhoneNormalization(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"call me at +91 98765 43210", "9876543210"},
		{"call 09876543210 fast", "9876543210"},
		{"number is 9876543210", "9876543210"},
		{"call 919876543210 now", "9876543210"},
		{"reach 987-654-3210 today", "9876543210"},
	}
	for _, tt := range tests {
		res := ExtractHeavy(tt.text, "scammer", 1)
		if len(res.Intel.PhoneNumbers) != 1 || res.Intel.PhoneNumbers[0] != tt.want {
			t.Errorf("ExtractHeavy(%q) phones = %v, want [%s]", tt.text, res.Intel.PhoneNumbers, tt.want)
		}
	}
}

func TestExtractHeavy_URLs(t *testing.T) {
	res := ExtractHeavy("open https://kyc-update.xyz/form and also https://www.google.com/search", "scammer", 2)
	if len(res.Intel.PhishingLinks) != 1 {
		t.Fatalf("Trusted domain should be skipped, got %v", res.Intel.PhishingLinks)
	}
	if res.Intel.PhishingLinks[0] != "https://kyc-update.xyz/form" {
		t.Errorf("Unexpected link %q", res.Intel.PhishingLinks[0])
	}

	res = ExtractHeavy("click bit.ly/win-prize now", "scammer", 2)
	if len(res.Intel.PhishingLinks) != 1 || res.Intel.PhishingLinks[0] != "https://bit.ly/win-prize" {
		t.Errorf("Short URL should be prefixed and captured, got %v", res.Intel.PhishingLinks)
	}
}

func TestExtractHeavy_ToolsAndHandles(t *testing.T) {
	res := ExtractHeavy("install AnyDesk and message t.me/refund_help or scan the QR code", "scammer", 4)

	wantKeywords := []string{"telegram:@refund_help", "remote_app:anydesk", "qr_code_mentioned"}
	for _, want := range wantKeywords {
		found := false
		for _, kw := range res.Intel.SuspiciousKeywords {
			if kw == want {
				found = true
			}
		}
		if !found {
			t.Errorf("Expected keyword %q, got %v", want, res.Intel.SuspiciousKeywords)
		}
	}
}

func TestExtractHeavy_Deterministic(t *testing.T) {
	text := "transfer to account 123456789012, UPI fraud.desk@paytm, call +91 98765 43210, visit bit.ly/x1"
	first := ExtractHeavy(text, "scammer", 1)
	for i := 0; i < 5; i++ {
		again := ExtractHeavy(text, "scammer", 1)
		if !reflect.DeepEqual(first.Intel, again.Intel) {
			t.Fatalf("Extraction must be deterministic: %+v vs %+v", first.Intel, again.Intel)
		}
	}
}

func TestNormalize(t *testing.T) {
	got, changed := Normalize("Ｓhare ＯTP")
	if !changed || got != "Share OTP" {
		t.Errorf("NFKC normalization failed: %q (changed=%v)", got, changed)
	}
	if _, changed := Normalize("plain ascii"); changed {
		t.Error("Plain ASCII must not report normalization")
	}
}
