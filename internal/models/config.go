package models

// Config is the service configuration loaded from config.yaml with
// environment overrides applied in cmd/server. Everything the risk engine
// treats as a constant lives here so recalibration never touches code.
type Config struct {
	// Server config
	Port int    `yaml:"port"`
	Host string `yaml:"host"`

	// AI structuring oracle
	AI AIConfig `yaml:"ai"`

	// Risk scoring
	Risk RiskConfig `yaml:"risk"`

	// Extraction and validation constants
	Extraction ExtractionConfig `yaml:"extraction"`

	// Cross-field tolerance for the tax/total consistency rule
	Tolerance ToleranceConfig `yaml:"tolerance"`
}

// AIConfig selects and configures the AI provider.
type AIConfig struct {
	OpenAI OpenAIConfig `yaml:"openai"`
	Gemini GeminiConfig `yaml:"gemini"`

	// "openai", "gemini" or "" (fallback extraction only)
	DefaultProvider string `yaml:"default_provider"`

	// Seconds the structuring call may take before it is abandoned and
	// contributes nothing.
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// OpenAIConfig for OpenAI or compatible endpoints.
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url,omitempty"`
	Model   string `yaml:"model"`
}

// GeminiConfig for Google Gemini.
type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// RiskConfig holds the scorer's weight table and level thresholds.
type RiskConfig struct {
	Weights    SeverityWeights `yaml:"weights"`
	Thresholds Thresholds      `yaml:"thresholds"`
}

// SeverityWeights are the per-severity point values summed into the score.
type SeverityWeights struct {
	High   int `yaml:"high"`
	Medium int `yaml:"medium"`
	Low    int `yaml:"low"`
}

// Thresholds band the 0-100 score: score >= High is HIGH, score >= Medium
// is MEDIUM, anything below is LOW.
type Thresholds struct {
	High   int `yaml:"high"`
	Medium int `yaml:"medium"`
}

// ExtractionConfig holds the reconciler's and rule engine's accepted sets.
type ExtractionConfig struct {
	// Minimum AI candidate confidence before the AI value is even
	// considered over the fallback.
	ConfidenceCutoff float64 `yaml:"confidence_cutoff"`

	// Accepted invoice date layouts, tried in order, first match wins.
	DateFormats []string `yaml:"date_formats"`

	// Accepted Incoterms (2020 set by default).
	Incoterms []string `yaml:"incoterms"`

	// Fields whose absence is a HIGH presence finding.
	RequiredFields []string `yaml:"required_fields"`
}

// ToleranceConfig bounds the subtotal+tax vs total check. The effective
// tolerance is the larger of Absolute and Percent*total/100.
type ToleranceConfig struct {
	Absolute float64 `yaml:"absolute"`
	Percent  float64 `yaml:"percent"`
}

// DefaultConfig returns the shipped defaults; config.yaml and environment
// variables override them.
func DefaultConfig() *Config {
	return &Config{
		Host: "0.0.0.0",
		Port: 8080,
		AI: AIConfig{
			DefaultProvider: "gemini",
			TimeoutSeconds:  20,
			OpenAI:          OpenAIConfig{Model: "gpt-4o-mini"},
			Gemini:          GeminiConfig{Model: "gemini-1.5-flash"},
		},
		Risk: RiskConfig{
			Weights:    SeverityWeights{High: 25, Medium: 10, Low: 3},
			Thresholds: Thresholds{High: 60, Medium: 25},
		},
		Extraction: ExtractionConfig{
			ConfidenceCutoff: 0.6,
			DateFormats: []string{
				"2006-01-02",
				"02/01/2006",
				"02-01-2006",
				"02.01.2006",
				"2006/01/02",
				"02 Jan 2006",
				"January 2, 2006",
			},
			Incoterms: []string{
				"EXW", "FCA", "FAS", "FOB", "CFR", "CIF", "CPT", "CIP", "DAP", "DPU", "DDP",
			},
			RequiredFields: []string{
				FieldInvoiceNumber,
				FieldInvoiceDate,
				FieldCurrency,
				FieldTotal,
				FieldIECCode,
				FieldGSTIN,
				FieldHSNCode,
				FieldIncoterm,
			},
		},
		Tolerance: ToleranceConfig{Absolute: 1.0, Percent: 0.5},
	}
}
