package llm

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Provider names accepted in Config.Provider.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
	ProviderMock      = "mock"
)

// Config selects and configures the judge's LLM provider.
type Config struct {
	Provider string

	Anthropic ProviderConfig
	OpenAI    ProviderConfig
	Gemini    ProviderConfig
	Retry     RetryConfig

	// Timeout bounds one Generate call including retries.
	Timeout time.Duration
}

// ProviderConfig is the per-provider key and model.
type ProviderConfig struct {
	APIKey string
	Model  string

	// BaseURL overrides the API endpoint. OpenAI-compatible APIs only.
	BaseURL string
}

// RetryConfig controls the backoff of transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig uses the small model of each provider. Judging a short
// answer does not need more.
func DefaultConfig() Config {
	return Config{
		Provider:  ProviderAnthropic,
		Anthropic: ProviderConfig{Model: "claude-haiku"},
		OpenAI:    ProviderConfig{Model: "gpt-4o-mini"},
		Gemini:    ProviderConfig{Model: "gemini-flash"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 500 * time.Millisecond,
			MaxWait:     5 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 15 * time.Second,
	}
}

// ConfigFromEnv reads LINGUIZ_LLM_PROVIDER and the LINGUIZ_<P>_API_KEY,
// LINGUIZ_<P>_MODEL variables on top of DefaultConfig.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if p := os.Getenv("LINGUIZ_LLM_PROVIDER"); p != "" {
		cfg.Provider = strings.ToLower(p)
	}
	readProviderEnv("ANTHROPIC", &cfg.Anthropic)
	readProviderEnv("OPENAI", &cfg.OpenAI)
	readProviderEnv("GEMINI", &cfg.Gemini)
	return cfg
}

func readProviderEnv(prefix string, pc *ProviderConfig) {
	if k := os.Getenv("LINGUIZ_" + prefix + "_API_KEY"); k != "" {
		pc.APIKey = k
	}
	if m := os.Getenv("LINGUIZ_" + prefix + "_MODEL"); m != "" {
		pc.Model = m
	}
	if u := os.Getenv("LINGUIZ_" + prefix + "_BASE_URL"); u != "" {
		pc.BaseURL = u
	}
}

// DiscoverConfig falls back to the vendors' own key variables, in the
// order Gemini, OpenAI, Anthropic. It reports false when none is set.
func DiscoverConfig() (Config, bool) {
	cfg := DefaultConfig()
	for _, c := range []struct {
		env      string
		provider string
		pc       *ProviderConfig
	}{
		{"GEMINI_API_KEY", ProviderGemini, &cfg.Gemini},
		{"OPENAI_API_KEY", ProviderOpenAI, &cfg.OpenAI},
		{"ANTHROPIC_API_KEY", ProviderAnthropic, &cfg.Anthropic},
	} {
		if k := os.Getenv(c.env); k != "" {
			cfg.Provider = c.provider
			c.pc.APIKey = k
			return cfg, true
		}
	}
	return Config{}, false
}

// Selected returns the configuration of the chosen provider.
func (c Config) Selected() ProviderConfig {
	switch c.Provider {
	case ProviderAnthropic:
		return c.Anthropic
	case ProviderOpenAI:
		return c.OpenAI
	case ProviderGemini:
		return c.Gemini
	}
	return ProviderConfig{}
}

// Validate checks that the selected provider has an API key.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderAnthropic, ProviderOpenAI, ProviderGemini:
		if c.Selected().APIKey == "" {
			return fmt.Errorf("LINGUIZ_%s_API_KEY is required for the %s provider",
				strings.ToUpper(c.Provider), c.Provider)
		}
		return nil
	case ProviderMock:
		return nil
	}
	return fmt.Errorf("unknown LLM provider: %q", c.Provider)
}
