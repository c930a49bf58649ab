package model

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full engine configuration. Components receive it as an
// immutable snapshot per call; nothing mutates it after load, so historical
// recomputation can pin the configuration in use at the time.
type Config struct {
	Database    DatabaseConfig    `yaml:"database"`
	Sources     []Source          `yaml:"sources"`
	Rules       RulesConfig       `yaml:"rules"`
	Credibility CredibilityConfig `yaml:"credibility"`
	Risk        RiskConfig        `yaml:"risk"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	LLM         LLMConfig         `yaml:"llm"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// DatabaseConfig describes the SQLite database location.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// RulesConfig holds corroboration timing and matching rules.
type RulesConfig struct {
	// Contradictions maps a claim category to the event categories that
	// directly debunk it (explicit negations, official denials).
	Contradictions map[string][]string `yaml:"contradictions"`

	StalenessDays          int `yaml:"staleness_days"`            // Days before an unmatched claim goes stale
	MatchWindowDays        int `yaml:"match_window_days"`         // Event must fall within this window of claim creation
	CrossSourceWindowHours int `yaml:"cross_source_window_hours"` // Window for the cross-source credibility bonus
}

// CredibilityConfig configures the claim credibility scorer.
type CredibilityConfig struct {
	CredibleAuthors  []string `yaml:"credible_authors"`  // Maintained allow-list of known-credible sources
	HoaxFingerprints []string `yaml:"hoax_fingerprints"` // Regexes matching known-hoax content
	AbsolutePatterns []string `yaml:"absolute_patterns"` // Absolute-language markers, matched on lowercased text
	ActionableScore  int      `yaml:"actionable_score"`  // Minimum score to move a claim past triage
}

// RiskWeights combines the three sub-scores into the composite.
type RiskWeights struct {
	Funding        float64 `yaml:"funding"`
	Enforcement    float64 `yaml:"enforcement"`
	Deliverability float64 `yaml:"deliverability"`
}

// Indicator assigns an event category to a risk dimension with a weight.
type Indicator struct {
	Dimension string  `yaml:"dimension"` // "funding", "enforcement" or "deliverability"
	Weight    float64 `yaml:"weight"`
}

// RiskConfig configures the risk scoring engine. The per-indicator formula
// is configuration; only the composition rule is fixed in code.
type RiskConfig struct {
	Weights           RiskWeights          `yaml:"weights"`
	Indicators        map[string]Indicator `yaml:"indicators"` // event category -> dimension/weight
	CascadeMultiplier float64              `yaml:"cascade_multiplier"`
	ClaimWeight       float64              `yaml:"claim_weight"`  // Confirmed claim weight relative to an event
	RecentBoost       float64              `yaml:"recent_boost"`  // Tempo multiplier for items close to asOf
	RecentDays        int                  `yaml:"recent_days"`   // What counts as "close to asOf"
	LookbackDays      int                  `yaml:"lookback_days"` // Aggregation window ending at asOf
	Saturation        float64              `yaml:"saturation"`    // Weighted points at which a dimension reads 100
}

// ConcurrencyConfig sizes the intake runner.
type ConcurrencyConfig struct {
	IngestWorkers    int     `yaml:"ingest_workers"`
	SourceRatePerSec float64 `yaml:"source_rate_per_sec"`
	SourceBurst      int     `yaml:"source_burst"`
}

// LLMConfig configures the optional risk brief generator.
type LLMConfig struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"-"` // From environment only, never persisted
	BaseURL  string `yaml:"base_url,omitempty"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file,omitempty"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{Path: "tierwatch.db"},
		Rules: RulesConfig{
			Contradictions: map[string][]string{
				"insolvency_rumor":   {"official_denial", "solvency_affirmed"},
				"enforcement_action": {"case_dismissed"},
				"delivery_default":   {"delivery_completed"},
				"bank_run":           {"official_denial"},
			},
			StalenessDays:          7,
			MatchWindowDays:        7,
			CrossSourceWindowHours: 24,
		},
		Credibility: CredibilityConfig{
			AbsolutePatterns: []string{
				"guaranteed", "confirmed", "100%", "definitely",
				"cannot fail", "trust me",
			},
			ActionableScore: 20,
		},
		Risk: RiskConfig{
			Weights: RiskWeights{
				Funding:        0.40,
				Enforcement:    0.35,
				Deliverability: 0.25,
			},
			Indicators: map[string]Indicator{
				"credit_spread_widening": {Dimension: "funding", Weight: 1.0},
				"repo_rate_dislocation":  {Dimension: "funding", Weight: 1.2},
				"emergency_liquidity":    {Dimension: "funding", Weight: 2.0},
				"bank_run":               {Dimension: "funding", Weight: 1.5},
				"insolvency_rumor":       {Dimension: "funding", Weight: 1.0},
				"enforcement_action":     {Dimension: "enforcement", Weight: 1.0},
				"subpoena":               {Dimension: "enforcement", Weight: 0.8},
				"coordinated_probe":      {Dimension: "enforcement", Weight: 1.5},
				"consent_order":          {Dimension: "enforcement", Weight: 1.2},
				"inventory_drawdown":     {Dimension: "deliverability", Weight: 1.0},
				"delivery_delay":         {Dimension: "deliverability", Weight: 1.2},
				"delivery_default":       {Dimension: "deliverability", Weight: 2.0},
				"vault_outflow":          {Dimension: "deliverability", Weight: 0.8},
			},
			CascadeMultiplier: 1.3,
			ClaimWeight:       0.5,
			RecentBoost:       1.5,
			RecentDays:        7,
			LookbackDays:      30,
			Saturation:        8.0,
		},
		Concurrency: ConcurrencyConfig{
			IngestWorkers:    4,
			SourceRatePerSec: 5.0,
			SourceBurst:      10,
		},
		LLM: LLMConfig{
			Provider: "openai",
			Model:    "gpt-4o-mini",
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// LoadConfig reads a YAML config file over the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	sum := c.Risk.Weights.Funding + c.Risk.Weights.Enforcement + c.Risk.Weights.Deliverability
	if math.Abs(sum-1.0) > 0.001 {
		return fmt.Errorf("risk weights must sum to 1.0, got %.3f", sum)
	}

	if c.Risk.CascadeMultiplier < 1.0 {
		return fmt.Errorf("cascade multiplier must be >= 1.0, got %.2f", c.Risk.CascadeMultiplier)
	}

	seen := make(map[string]bool, len(c.Sources))
	for _, src := range c.Sources {
		if src.Name == "" {
			return fmt.Errorf("source with empty name")
		}
		if seen[src.Name] {
			return fmt.Errorf("duplicate source %q", src.Name)
		}
		seen[src.Name] = true
		if src.Tier < TierOfficial || src.Tier > TierSocial {
			return fmt.Errorf("source %q has invalid tier %d", src.Name, src.Tier)
		}
	}

	for category, ind := range c.Risk.Indicators {
		switch ind.Dimension {
		case "funding", "enforcement", "deliverability":
		default:
			return fmt.Errorf("indicator %q has unknown dimension %q", category, ind.Dimension)
		}
	}

	return nil
}
