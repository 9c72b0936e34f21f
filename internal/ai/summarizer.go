package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

const systemPrompt = `You are a helpful assistant that converts technical server output into user-friendly summaries for a non-technical operator of a social listening tool.`

// Summarizer rewrites raw server output as a short plain-language sentence.
type Summarizer interface {
	Summarize(ctx context.Context, raw string) (string, error)
}

// OpenAISummarizer implements Summarizer with a chat completion.
type OpenAISummarizer struct {
	client *openai.Client
	model  string
}

// NewOpenAISummarizer returns nil when apiKey is empty so callers can treat a
// missing key as "no summaries".
func NewOpenAISummarizer(apiKey, model string) *OpenAISummarizer {
	if apiKey == "" {
		return nil
	}
	return NewOpenAISummarizerWithConfig(openai.DefaultConfig(apiKey), model)
}

// NewOpenAISummarizerWithConfig allows pointing the client at another base URL.
func NewOpenAISummarizerWithConfig(cfg openai.ClientConfig, model string) *OpenAISummarizer {
	if model == "" {
		model = openai.GPT3Dot5Turbo
	}
	return &OpenAISummarizer{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (s *OpenAISummarizer) Summarize(ctx context.Context, raw string) (string, error) {
	userMsg := fmt.Sprintf(`Here is the raw server response: "%s".
Convert it into a short, clear, and friendly sentence that a non-technical user can easily understand.`, raw)

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userMsg},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}

	summary := strings.TrimSpace(resp.Choices[0].Message.Content)
	if summary == "" {
		return "", errors.New("chat completion returned an empty summary")
	}
	return summary, nil
}
