package ctxrescue

import (
	"context"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	openai "github.com/sashabaranov/go-openai"

	"github.com/ctxrescue/ctxrescue/analyzer"
	"github.com/ctxrescue/ctxrescue/sanitize"
	"github.com/ctxrescue/ctxrescue/types"
)

// Version is the current ctxrescue version.
const Version = "1.0.0"

// Logger interface for rescue logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a no-op implementation of Logger.
type noopLogger struct{}

func (noopLogger) Debug(msg string, args ...any) {}
func (noopLogger) Info(msg string, args ...any)  {}
func (noopLogger) Warn(msg string, args ...any)  {}
func (noopLogger) Error(msg string, args ...any) {}

// Client orchestrates a conversation rescue: analyzer selection with
// rule-based fallback, sanitization, and removal statistics.
type Client struct {
	config    *Config
	analyzer  analyzer.Analyzer
	fallback  analyzer.Analyzer
	sanitizer *sanitize.Sanitizer
	logger    Logger
}

// Option is a functional option for configuring a Client.
type Option func(*Client)

// WithLogger sets the logger. Default is a no-op logger.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithAnalyzer overrides the provider-selected analyzer. Useful for
// tests and for plugging in custom implementations; the rule-based
// fallback still applies when it fails.
func WithAnalyzer(a analyzer.Analyzer) Option {
	return func(c *Client) {
		if a != nil {
			c.analyzer = a
		}
	}
}

// NewClient creates a rescue client. If config is nil, defaults are
// used. Configuration errors (unknown provider or level, missing
// credential) surface here, before any analysis runs.
func NewClient(config *Config, opts ...Option) (*Client, error) {
	if config == nil {
		config = DefaultConfig()
	} else {
		config.ApplyDefaults()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	rules := analyzer.NewRules(config.ErrorThreshold, config.ApologyThreshold)

	c := &Client{
		config:    config,
		fallback:  rules,
		sanitizer: sanitize.New(config.Level),
		logger:    noopLogger{},
	}

	switch config.Provider {
	case ProviderClaude:
		client := anthropic.NewClient(option.WithAPIKey(config.AnthropicAPIKey))
		c.analyzer = analyzer.NewClaude(&client, config.ClaudeModel)
	case ProviderOpenAI:
		c.analyzer = analyzer.NewOpenAI(openai.NewClient(config.OpenAIAPIKey), config.OpenAIModel)
	default:
		c.analyzer = rules
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Config returns the client's configuration.
func (c *Client) Config() *Config {
	return c.config
}

// Result contains the outcome of a rescue operation. The loop patterns
// inside Analysis index into Analyzed, which is also the sequence the
// sanitized view was filtered from.
type Result struct {
	// Analyzed is the message sequence the analysis ran against: the
	// input, truncated to the most recent MaxMessages.
	Analyzed []*types.Message

	// Analysis is the extracted goal/blocker/loops/insights.
	Analysis *types.Analysis

	// Sanitized is the filtered conversation.
	Sanitized []*types.Message

	// Stats reports what sanitization removed.
	Stats sanitize.RemovalStats

	// Duration is how long the rescue took.
	Duration time.Duration
}

// Analyze runs the configured analyzer over the most recent MaxMessages
// messages. When an LLM-backed analyzer fails, it falls back to the
// rule-based analyzer; the failure is logged, not retried.
func (c *Client) Analyze(ctx context.Context, messages []*types.Message) (*types.Analysis, []*types.Message, error) {
	if len(messages) > c.config.MaxMessages {
		c.logger.Info("truncating conversation for analysis",
			"total", len(messages),
			"analyzed", c.config.MaxMessages,
		)
		messages = messages[len(messages)-c.config.MaxMessages:]
	}

	analysis, err := c.analyzer.AnalyzeConversation(ctx, messages)
	if err != nil {
		if c.analyzer == c.fallback {
			return nil, nil, WrapError("Analyze", err)
		}
		c.logger.Warn("analysis failed, falling back to rule-based analyzer",
			"provider", string(c.config.Provider),
			"error", err,
		)
		analysis, err = c.fallback.AnalyzeConversation(ctx, messages)
		if err != nil {
			return nil, nil, WrapError("Analyze", err)
		}
	}

	return analysis, messages, nil
}

// Rescue analyzes the conversation, sanitizes it, and computes removal
// statistics.
func (c *Client) Rescue(ctx context.Context, messages []*types.Message) (*Result, error) {
	start := time.Now()

	analysis, analyzed, err := c.Analyze(ctx, messages)
	if err != nil {
		return nil, err
	}

	sanitized := c.sanitizer.Sanitize(analyzed, analysis)
	stats := sanitize.ComputeStats(analyzed, sanitized)

	c.logger.Info("rescue complete",
		"goal", analysis.Goal,
		"loops_detected", len(analysis.LoopsDetected),
		"total_removed", stats.TotalRemoved,
		"reduction_percent", stats.ReductionPercent,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &Result{
		Analyzed:  analyzed,
		Analysis:  analysis,
		Sanitized: sanitized,
		Stats:     stats,
		Duration:  time.Since(start),
	}, nil
}
