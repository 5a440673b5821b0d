package analyzer

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ctxrescue/ctxrescue/types"
)

// DefaultOpenAIModel is the default model for OpenAI-backed analysis.
const DefaultOpenAIModel = "gpt-4o-mini"

// OpenAI is an LLM-backed analyzer using the OpenAI chat completion API.
type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAI creates an OpenAI-backed analyzer. An empty model selects
// DefaultOpenAIModel.
func NewOpenAI(client *openai.Client, model string) *OpenAI {
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAI{
		client: client,
		model:  model,
	}
}

// AnalyzeConversation sends the conversation to OpenAI and parses the
// sectioned reply. Any API failure wraps ErrAnalysisFailed so the caller
// can fall back to the rule-based analyzer.
func (o *OpenAI) AnalyzeConversation(ctx context.Context, messages []*types.Message) (*types.Analysis, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: AnalysisSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: BuildAnalysisUserPrompt(messages)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, fmt.Errorf("%w: %w", ErrAnalysisFailed, ErrEmptyReply)
	}

	return ParseReply(resp.Choices[0].Message.Content), nil
}
