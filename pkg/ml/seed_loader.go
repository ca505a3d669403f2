package ml

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// seedFile is the YAML shape for scam seed phrases.
type seedFile struct {
	SeedData []seedEntry `yaml:"seed_data"`
}

type seedEntry struct {
	Text     string  `yaml:"text"`
	Category string  `yaml:"category"`
	Severity float64 `yaml:"severity,omitempty"`
	Lang     string  `yaml:"lang,omitempty"`
}

// defaultSeedSpecs bootstrap the store when no YAML file is present.
// Phrases mix English and Romanized Hindi, matching real scam scripts.
var defaultSeedSpecs = []struct {
	Category string
	Severity float64
	Texts    []string
}{
	{"otp_fraud", 0.95, []string{
		"Share the OTP you just received to verify your account",
		"Please tell me the 6 digit code sent to your phone",
		"OTP batao jaldi, verification ke liye zaroori hai",
	}},
	{"bank_kyc", 0.85, []string{
		"Your KYC is incomplete, your account will be blocked today",
		"Update your KYC immediately or lose access to your account",
		"KYC pending hai, aaj hi update karo warna account band ho jayega",
	}},
	{"upi_fraud", 0.9, []string{
		"Scan this QR code to receive the refund in your account",
		"Accept the collect request to get your cashback",
		"QR scan karo aur paise turant aa jayenge",
	}},
	{"police_impersonation", 0.9, []string{
		"This is the cyber cell, a case has been registered against you",
		"An arrest warrant has been issued in your name",
		"Police complaint hui hai aapke naam pe, abhi baat karo",
	}},
	{"remote_access", 0.95, []string{
		"Install AnyDesk so I can fix the problem on your phone",
		"Download TeamViewer and share the 9 digit code with me",
	}},
	{"payment_pressure", 0.85, []string{
		"Transfer the processing fee now to release your prize money",
		"Pay the verification amount immediately to unblock your account",
		"Abhi payment karo nahi to account block ho jayega",
	}},
	{"benign", 0.0, []string{
		"Thank you for your help, have a nice day",
		"How can I help you today",
		"Please let me know if you need anything else",
	}},
}

// LoadSeeds reads scam_seeds.yaml from configDir, falling back to the
// built-in seed set when the file is absent.
func LoadSeeds(configDir string) ([]*ScamSeed, error) {
	path := filepath.Join(configDir, "scam_seeds.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultSeeds(), nil
		}
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var file seedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	if len(file.SeedData) == 0 {
		return defaultSeeds(), nil
	}

	seeds := make([]*ScamSeed, 0, len(file.SeedData))
	for _, entry := range file.SeedData {
		severity := entry.Severity
		if severity == 0 && entry.Category != "benign" {
			severity = 0.85
		}
		lang := entry.Lang
		if lang == "" {
			lang = detectLanguage(entry.Text)
		}
		seeds = append(seeds, &ScamSeed{
			ID:       uuid.New(),
			Category: entry.Category,
			Text:     entry.Text,
			Severity: severity,
			Language: lang,
		})
	}
	log.Printf("[ML] loaded %d scam seeds from %s", len(seeds), path)
	return seeds, nil
}

func defaultSeeds() []*ScamSeed {
	var seeds []*ScamSeed
	for _, spec := range defaultSeedSpecs {
		for _, text := range spec.Texts {
			seeds = append(seeds, &ScamSeed{
				ID:       uuid.New(),
				Category: spec.Category,
				Text:     text,
				Severity: spec.Severity,
				Language: detectLanguage(text),
			})
		}
	}
	return seeds
}

// NewSeedStoreFromConfig builds a populated seed store, or nil when seed
// loading or embedding fails. The classifier works without it.
func NewSeedStoreFromConfig(ctx context.Context, configDir string, embedder EmbeddingProvider) *SeedStore {
	seeds, err := LoadSeeds(configDir)
	if err != nil {
		log.Printf("[ML] seed loading failed, semantic matching disabled: %v", err)
		return nil
	}
	store, err := NewSeedStore(embedder)
	if err != nil {
		log.Printf("[ML] seed store init failed, semantic matching disabled: %v", err)
		return nil
	}
	loaded, err := store.Add(ctx, seeds)
	if err != nil {
		log.Printf("[ML] seed embedding failed, semantic matching disabled: %v", err)
		return nil
	}
	log.Printf("[ML] seed store ready with %d seeds", loaded)
	return store
}

// detectLanguage performs basic language detection by character range.
// Devanagari maps to Hindi; everything else defaults to English.
func detectLanguage(text string) string {
	for _, r := range text {
		if r >= 0x0900 && r <= 0x097F {
			return "hi"
		}
	}
	return "en"
}
