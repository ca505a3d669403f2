package rules

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"gopkg.in/yaml.v3"
)

// CatalogConfig is the YAML shape of a rule catalog override. Hard rule
// patterns are plain regex strings and get compiled at load time.
type CatalogConfig struct {
	HardRules []hardRuleSpec `yaml:"hard_rules"`
	SoftRules []SoftRule     `yaml:"soft_rules"`
}

type hardRuleSpec struct {
	Name        string   `yaml:"name"`
	Pattern     string   `yaml:"pattern"`
	Score       int      `yaml:"score"`
	Category    Category `yaml:"category"`
	Description string   `yaml:"description"`
}

var (
	catalogConfig   *compiledCatalog
	catalogConfigMu sync.RWMutex
)

type compiledCatalog struct {
	hard []HardRule
	soft []SoftRule
}

// LoadCatalogConfig loads a catalog override from signal_rules.yaml in
// configDir. A missing file is not an error; the built-in catalog stays
// active so the service runs without any config files.
func LoadCatalogConfig(configDir string) error {
	path := filepath.Join(configDir, "signal_rules.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read rule catalog file: %w", err)
	}

	var config CatalogConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return fmt.Errorf("failed to parse rule catalog: %w", err)
	}

	compiled := &compiledCatalog{soft: config.SoftRules}
	for _, spec := range config.HardRules {
		re, err := regexp.Compile(spec.Pattern)
		if err != nil {
			return fmt.Errorf("failed to compile hard rule %q: %w", spec.Name, err)
		}
		compiled.hard = append(compiled.hard, HardRule{
			Name:        spec.Name,
			Pattern:     re,
			Score:       spec.Score,
			Category:    spec.Category,
			Description: spec.Description,
		})
	}

	catalogConfigMu.Lock()
	catalogConfig = compiled
	catalogConfigMu.Unlock()

	log.Printf("[Rules] Loaded catalog from %s: %d hard, %d soft", path, len(compiled.hard), len(compiled.soft))
	return nil
}

// ResetCatalogConfig drops any loaded override. Used in tests.
func ResetCatalogConfig() {
	catalogConfigMu.Lock()
	catalogConfig = nil
	catalogConfigMu.Unlock()
}

// GetHardRules returns the active hard rule catalog, falling back to the
// built-in rules when no YAML override is loaded.
func GetHardRules() []HardRule {
	catalogConfigMu.RLock()
	defer catalogConfigMu.RUnlock()

	if catalogConfig != nil && len(catalogConfig.hard) > 0 {
		return catalogConfig.hard
	}
	return defaultHardRules
}

// GetSoftRules returns the active soft rule catalog, falling back to the
// built-in rules when no YAML override is loaded.
func GetSoftRules() []SoftRule {
	catalogConfigMu.RLock()
	defer catalogConfigMu.RUnlock()

	if catalogConfig != nil && len(catalogConfig.soft) > 0 {
		return catalogConfig.soft
	}
	return defaultSoftRules
}
