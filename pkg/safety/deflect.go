package safety

import (
	"math/rand/v2"
	"strings"
)

// Category selects which deflection pool fits the scammer's current
// demand. Pools contain only literal strings with no digits, so a
// deflection can never itself fail validation.
type Category string

const (
	CategoryOTP     Category = "otp"
	CategoryPIN     Category = "pin"
	CategoryAccount Category = "account"
	CategoryPayment Category = "payment"
	CategoryDefault Category = "default"
)

var deflectionsEnglish = map[Category][]string{
	CategoryOTP: {
		"I have not received any OTP yet, let me check my messages.",
		"No message has come on my phone so far, should I wait?",
		"My phone is showing no new messages, maybe the network is slow.",
	},
	CategoryPIN: {
		"I don't remember my PIN right now, it is written down somewhere at home.",
		"I never share my PIN on calls, my son told me not to.",
		"I will have to look for my PIN, I don't keep it with me.",
	},
	CategoryAccount: {
		"My passbook is at home, I don't know my account details by heart.",
		"I will have to check my passbook for that, I am outside right now.",
		"I don't remember such a long number, can this wait?",
	},
	CategoryPayment: {
		"My internet banking is not working today, the payment is failing.",
		"I tried but the app is showing some error, what should I do?",
		"I don't have enough balance right now, is there another way?",
	},
	CategoryDefault: {
		"Sorry, I am a little confused. Can you explain that again?",
		"I did not understand, can you tell me once more?",
		"Wait, I am not sure what you mean. Please explain slowly.",
	},
}

var deflectionsHindi = map[Category][]string{
	CategoryOTP: {
		"Abhi tak koi OTP nahi aaya, main messages check karti hoon.",
		"Phone pe koi message nahi aaya hai, thoda wait karun kya?",
		"Network slow lag raha hai, message nahi aa raha.",
	},
	CategoryPIN: {
		"Mujhe apna PIN abhi yaad nahi, ghar pe kahin likha hai.",
		"PIN main phone pe nahi batati, bete ne mana kiya hai.",
		"PIN dhoondhna padega, mere paas abhi nahi hai.",
	},
	CategoryAccount: {
		"Passbook ghar pe hai, account number yaad nahi hai mujhe.",
		"Itna lamba number yaad nahi rehta, baad mein bata sakti hoon?",
		"Main abhi bahar hoon, passbook dekh ke batana padega.",
	},
	CategoryPayment: {
		"Mera net banking aaj chal nahi raha, payment fail ho raha hai.",
		"App mein kuch error aa raha hai, kya karun?",
		"Abhi balance kam hai, koi aur tareeka hai kya?",
	},
	CategoryDefault: {
		"Sorry, mujhe samajh nahi aaya. Phir se bata sakte ho?",
		"Main thoda confuse ho gayi, dheere se samjhao please.",
		"Ye kya bol rahe ho, mujhe samajh nahi aa raha.",
	},
}

// CategorizeDemand maps the scammer's latest message onto a deflection
// category by keyword.
func CategorizeDemand(scammerText string) Category {
	lower := strings.ToLower(scammerText)
	switch {
	case strings.Contains(lower, "otp") || strings.Contains(lower, "verification code") ||
		strings.Contains(lower, "one time password"):
		return CategoryOTP
	case strings.Contains(lower, "pin") || strings.Contains(lower, "cvv") ||
		strings.Contains(lower, "password"):
		return CategoryPIN
	case strings.Contains(lower, "account") || strings.Contains(lower, "ifsc") ||
		strings.Contains(lower, "passbook"):
		return CategoryAccount
	case strings.Contains(lower, "pay") || strings.Contains(lower, "transfer") ||
		strings.Contains(lower, "send money") || strings.Contains(lower, "upi"):
		return CategoryPayment
	default:
		return CategoryDefault
	}
}

// Deflect returns a safe stall reply from the pool for the category, in
// Hindi when the session language is locked to Hindi.
func Deflect(cat Category, hindi bool) string {
	pools := deflectionsEnglish
	if hindi {
		pools = deflectionsHindi
	}
	pool, ok := pools[cat]
	if !ok || len(pool) == 0 {
		pool = pools[CategoryDefault]
	}
	return pool[rand.IntN(len(pool))]
}
