package ctxrescue

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/ctxrescue/ctxrescue/analyzer"
	"github.com/ctxrescue/ctxrescue/sanitize"
)

// Provider selects the analyzer implementation.
type Provider string

const (
	// ProviderClaude uses the Anthropic-backed analyzer.
	ProviderClaude Provider = "claude"

	// ProviderOpenAI uses the OpenAI-backed analyzer.
	ProviderOpenAI Provider = "openai"

	// ProviderNone uses the rule-based analyzer only.
	ProviderNone Provider = "none"
)

// ParseProvider parses a provider name. Unknown names are a
// configuration error, surfaced before any analysis runs.
func ParseProvider(s string) (Provider, error) {
	switch Provider(strings.ToLower(s)) {
	case ProviderClaude:
		return ProviderClaude, nil
	case ProviderOpenAI:
		return ProviderOpenAI, nil
	case ProviderNone:
		return ProviderNone, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownProvider, s)
}

// Default configuration values.
const (
	DefaultMaxMessages = 100
	DefaultOutputDir   = "./rescue_packages"
)

// Config holds all configuration for a rescue client. Construct it once
// at startup and pass it in; no component reads ambient global state.
type Config struct {
	// Provider selects the analyzer. Default: ProviderNone (rule-based,
	// works without any credential).
	Provider Provider

	// AnthropicAPIKey authenticates the Claude analyzer.
	AnthropicAPIKey string

	// OpenAIAPIKey authenticates the OpenAI analyzer.
	OpenAIAPIKey string

	// ClaudeModel overrides the default Claude model.
	ClaudeModel string

	// OpenAIModel overrides the default OpenAI model.
	OpenAIModel string

	// ErrorThreshold is the repetition count before an error signature
	// is flagged as a loop. Default: 3.
	ErrorThreshold int

	// ApologyThreshold is the apology count before a cascade is flagged.
	// Default: 3.
	ApologyThreshold int

	// Level is the sanitization aggressiveness. Default: balanced.
	Level sanitize.Level

	// MaxMessages caps how many of the most recent messages are
	// analyzed. Default: 100.
	MaxMessages int

	// OutputDir is where rescue packages are written when no explicit
	// output path is given. Default: ./rescue_packages.
	OutputDir string
}

// DefaultConfig returns a Config with defaults applied.
func DefaultConfig() *Config {
	return &Config{
		Provider:         ProviderNone,
		ErrorThreshold:   analyzer.DefaultErrorThreshold,
		ApologyThreshold: analyzer.DefaultApologyThreshold,
		Level:            sanitize.LevelBalanced,
		MaxMessages:      DefaultMaxMessages,
		OutputDir:        DefaultOutputDir,
	}
}

// ApplyDefaults fills zero values with defaults.
func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderNone
	}
	if c.ErrorThreshold <= 0 {
		c.ErrorThreshold = analyzer.DefaultErrorThreshold
	}
	if c.ApologyThreshold <= 0 {
		c.ApologyThreshold = analyzer.DefaultApologyThreshold
	}
	if c.Level == "" {
		c.Level = sanitize.LevelBalanced
	}
	if c.MaxMessages <= 0 {
		c.MaxMessages = DefaultMaxMessages
	}
	if c.OutputDir == "" {
		c.OutputDir = DefaultOutputDir
	}
}

// LoadConfig reads configuration from the environment. A .env file in
// the working directory is loaded first when present (missing files are
// fine). Unknown provider or level names are rejected here, before any
// analysis runs.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()
	cfg.AnthropicAPIKey = os.Getenv("ANTHROPIC_API_KEY")
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.ClaudeModel = os.Getenv("CLAUDE_MODEL")
	cfg.OpenAIModel = os.Getenv("OPENAI_MODEL")
	cfg.MaxMessages = getEnvInt("MAX_MESSAGES_TO_ANALYZE", DefaultMaxMessages)
	cfg.OutputDir = getEnv("OUTPUT_DIR", DefaultOutputDir)
	cfg.ErrorThreshold = getEnvInt("ERROR_THRESHOLD", analyzer.DefaultErrorThreshold)
	cfg.ApologyThreshold = getEnvInt("APOLOGY_THRESHOLD", analyzer.DefaultApologyThreshold)

	if raw := os.Getenv("ANALYZER_PROVIDER"); raw != "" {
		provider, err := ParseProvider(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: ANALYZER_PROVIDER: %v", ErrInvalidConfig, err)
		}
		cfg.Provider = provider
	}
	if raw := os.Getenv("SANITIZATION_LEVEL"); raw != "" {
		level, err := sanitize.ParseLevel(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: SANITIZATION_LEVEL: %v", ErrInvalidConfig, err)
		}
		cfg.Level = level
	}

	return cfg, nil
}

// Validate checks the configuration and returns an error if invalid.
// Called before any analysis; configuration errors are never retried.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderClaude:
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("%w: claude analyzer requires ANTHROPIC_API_KEY", ErrMissingAPIKey)
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("%w: openai analyzer requires OPENAI_API_KEY", ErrMissingAPIKey)
		}
	case ProviderNone:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownProvider, c.Provider)
	}

	switch c.Level {
	case sanitize.LevelMinimal, sanitize.LevelBalanced, sanitize.LevelAggressive:
	default:
		return fmt.Errorf("%w: %q", sanitize.ErrUnknownLevel, c.Level)
	}

	if c.MaxMessages <= 0 {
		return fmt.Errorf("%w: max_messages must be positive, got %d", ErrInvalidConfig, c.MaxMessages)
	}

	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}
