package services

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

// LanguageModel turns a prompt into a text completion. The model is not
// guaranteed to follow instructions, so callers must validate the response
// text rather than trust it.
type LanguageModel interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type geminiModel struct {
	client *genai.Client
	model  string
}

// NewGeminiModel generates completions with the Google Gemini API. Each call
// is a single independent turn, no chat history is kept.
func NewGeminiModel(client *genai.Client, model string) LanguageModel {
	return &geminiModel{client: client, model: model}
}

func (g *geminiModel) Generate(ctx context.Context, prompt string) (string, error) {
	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini api call failed: %w", err)
	}
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return "", nil
	}

	var sb strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	return sb.String(), nil
}

type openaiModel struct {
	client *openai.Client
	model  string
}

// NewOpenAIModel generates completions with the OpenAI chat API (or any
// compatible endpoint the client was configured with).
func NewOpenAIModel(client *openai.Client, model string) LanguageModel {
	return &openaiModel{client: client, model: model}
}

func (m *openaiModel) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := m.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: m.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai chat api call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
