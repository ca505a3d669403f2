package agent

import (
	"strings"

	"github.com/decoynet/honeytrap/pkg/session"
)

// romanizedHindiMarkers are common Hindi function words written in Latin
// script. Two or more in one message is a strong Hinglish signal.
var romanizedHindiMarkers = map[string]bool{
	"hai": true, "hain": true, "nahi": true, "nahin": true, "kya": true,
	"aap": true, "aapka": true, "aapke": true, "apka": true, "apna": true,
	"kaun": true, "kaise": true, "karo": true, "karna": true, "mera": true,
	"mere": true, "mujhe": true, "paisa": true, "paise": true, "kyun": true,
	"kyu": true, "theek": true, "acha": true, "accha": true, "bhai": true,
	"ji": true, "haan": true, "matlab": true, "abhi": true, "batao": true,
	"bolo": true, "ho": true, "hoon": true, "raha": true, "rahe": true,
	"hua": true, "gaya": true, "jayega": true, "jayenge": true, "turant": true,
	"bhejo": true, "bheje": true, "warna": true, "varna": true, "kripya": true,
	"madad": true,
}

// DetectLanguage classifies a message as Hindi or English. Devanagari
// script decides immediately; otherwise Romanized Hindi marker words are
// counted.
func DetectLanguage(text string) session.Language {
	for _, r := range text {
		if r >= 0x0900 && r <= 0x097F {
			return session.LanguageHindi
		}
	}

	count := 0
	for _, field := range strings.Fields(strings.ToLower(text)) {
		word := strings.Trim(field, ".,!?;:\"'()")
		if romanizedHindiMarkers[word] {
			count++
		}
	}
	if count >= 2 {
		return session.LanguageHindi
	}
	return session.LanguageEnglish
}
