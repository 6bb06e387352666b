package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// Request/response shapes for the Ollama embeddings endpoint.
type ollamaEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// EmbeddingProvider maps text to a fixed-dimension vector. Deterministic for
// a given model and input. Ingestion and querying must share one provider
// instance, otherwise the stored vectors and the query vector are not
// comparable.
type EmbeddingProvider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Model() string
}

type ollamaEmbedder struct {
	httpClient *http.Client
	baseURL    string
	model      string
}

// NewOllamaEmbedder embeds via a local Ollama server's /api/embeddings
// endpoint.
func NewOllamaEmbedder(client *http.Client, baseURL, model string) EmbeddingProvider {
	return &ollamaEmbedder{httpClient: client, baseURL: baseURL, model: model}
}

func (e *ollamaEmbedder) Model() string {
	return "ollama-" + e.model
}

func (e *ollamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	reqBody, err := json.Marshal(ollamaEmbedRequest{
		Model:  e.model,
		Prompt: text,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ollama request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/api/embeddings", bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create ollama http request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to call ollama embedding api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ollama api returned non-200 status: %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var ollamaResp ollamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&ollamaResp); err != nil {
		return nil, fmt.Errorf("failed to decode ollama response: %w", err)
	}
	return ollamaResp.Embedding, nil
}

type openaiEmbedder struct {
	client *openai.Client
	model  string
}

// NewOpenAIEmbedder embeds via the OpenAI embeddings API (or any compatible
// endpoint the client was configured with).
func NewOpenAIEmbedder(client *openai.Client, model string) EmbeddingProvider {
	return &openaiEmbedder{client: client, model: model}
}

func (e *openaiEmbedder) Model() string {
	return "openai-" + e.model
}

func (e *openaiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if len(text) == 0 {
		return nil, errors.New("cannot embed empty text")
	}

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(e.model),
		Input: []string{text},
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings api error: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("no embedding data returned from openai api")
	}

	raw := resp.Data[0].Embedding
	vector := make([]float32, len(raw))
	for i := range raw {
		vector[i] = float32(raw[i])
	}
	return vector, nil
}
