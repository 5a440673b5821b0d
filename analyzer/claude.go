package analyzer

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/ctxrescue/ctxrescue/types"
)

// DefaultClaudeModel is the default model for Claude-backed analysis.
// A fast, cheap model is enough for signal extraction.
const DefaultClaudeModel = "claude-3-5-haiku-20241022"

// defaultClaudeMaxTokens bounds the analysis reply.
const defaultClaudeMaxTokens = 4096

// Claude is an LLM-backed analyzer using the Anthropic streaming API.
type Claude struct {
	client    *anthropic.Client
	model     string
	maxTokens int
}

// NewClaude creates a Claude-backed analyzer. An empty model selects
// DefaultClaudeModel.
func NewClaude(client *anthropic.Client, model string) *Claude {
	if model == "" {
		model = DefaultClaudeModel
	}
	return &Claude{
		client:    client,
		model:     model,
		maxTokens: defaultClaudeMaxTokens,
	}
}

// AnalyzeConversation sends the conversation to Claude and parses the
// sectioned reply. Any API or stream failure wraps ErrAnalysisFailed so
// the caller can fall back to the rule-based analyzer.
func (c *Claude) AnalyzeConversation(ctx context.Context, messages []*types.Message) (*types.Analysis, error) {
	stream := c.client.Messages.NewStreaming(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(c.maxTokens),
		System: []anthropic.TextBlockParam{
			{Text: AnalysisSystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(BuildAnalysisUserPrompt(messages))),
		},
	})

	message := anthropic.Message{}
	for stream.Next() {
		event := stream.Current()
		if err := message.Accumulate(event); err != nil {
			return nil, fmt.Errorf("%w: failed to accumulate stream: %v", ErrAnalysisFailed, err)
		}
	}
	if err := stream.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}

	var reply strings.Builder
	for _, block := range message.Content {
		if text, ok := block.AsAny().(anthropic.TextBlock); ok {
			reply.WriteString(text.Text)
		}
	}
	if reply.Len() == 0 {
		return nil, fmt.Errorf("%w: %w", ErrAnalysisFailed, ErrEmptyReply)
	}

	return ParseReply(reply.String()), nil
}
