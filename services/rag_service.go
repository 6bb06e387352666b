package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"docqa/models"
)

// RAGService runs the read-side pipeline: retrieve the most relevant stored
// chunks, assemble them into a grounding context, generate an answer
// constrained to that context, and attach per-origin source attribution.
type RAGService interface {
	Ask(ctx context.Context, question string) (*models.AnswerResult, error)
}

type ragServiceImpl struct {
	embedder   EmbeddingProvider
	store      VectorStore
	llm        LanguageModel
	aggregator *SourceAggregator
	fallback   FallbackPolicy
	collection string
	topK       int
}

// NewRAGService wires the query pipeline. The embedder must be the same
// instance ingestion used, and collection must match as well.
func NewRAGService(embedder EmbeddingProvider, store VectorStore, llm LanguageModel, aggregator *SourceAggregator, fallback FallbackPolicy, collection string, topK int) RAGService {
	return &ragServiceImpl{
		embedder:   embedder,
		store:      store,
		llm:        llm,
		aggregator: aggregator,
		fallback:   fallback,
		collection: collection,
		topK:       topK,
	}
}

func (r *ragServiceImpl) Ask(ctx context.Context, question string) (*models.AnswerResult, error) {
	log.Printf("SERVICE: Answering question: '%s'", question)

	records, err := r.retrieve(ctx, question)
	if err != nil {
		return nil, err
	}
	log.Printf("SERVICE: Retrieved %d records from collection %s", len(records), r.collection)

	answer, err := r.generate(ctx, assembleContext(records), question)
	if err != nil {
		return nil, err
	}

	// A fallback answer admits no knowledge, so partial attribution would
	// be misleading. Sources are dropped entirely in that case.
	if IsFallbackAnswer(answer) {
		return &models.AnswerResult{
			Answer:  answer,
			Sources: []models.SourceSummary{},
		}, nil
	}

	return &models.AnswerResult{
		Answer:  answer,
		Sources: r.aggregator.Aggregate(records),
	}, nil
}

// retrieve embeds the question with the ingestion-side embedder and asks the
// store for the top-k nearest records.
func (r *ragServiceImpl) retrieve(ctx context.Context, question string) ([]models.StoredRecord, error) {
	vector, err := r.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}

	records, err := r.store.Query(ctx, r.collection, vector, r.topK)
	if err != nil {
		if errors.Is(err, ErrCollectionNotFound) {
			return nil, fmt.Errorf("%w: collection %s", ErrEmptyKnowledgeBase, r.collection)
		}
		return nil, err
	}
	return records, nil
}

// generate invokes the model under the grounding prompt and defensively
// validates the response text. An empty response is replaced with a phrase
// chosen by the fallback policy; a transport failure surfaces as
// ErrGenerationFailure.
func (r *ragServiceImpl) generate(ctx context.Context, contextText, question string) (string, error) {
	response, err := r.llm.Generate(ctx, buildGroundingPrompt(contextText, question))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerationFailure, err)
	}

	answer := strings.TrimSpace(response)
	if answer == "" {
		log.Printf("SERVICE: Model returned an empty response, substituting fallback phrase")
		return r.fallback.Choose(), nil
	}
	return answer, nil
}

// assembleContext joins retrieved texts in ranking order, each block
// prefixed with its origin so the model can stay traceable.
func assembleContext(records []models.StoredRecord) string {
	blocks := make([]string, 0, len(records))
	for _, record := range records {
		if record.Metadata.Source != "" {
			blocks = append(blocks, "["+record.Metadata.Source+"]\n"+record.Text)
			continue
		}
		blocks = append(blocks, record.Text)
	}
	return strings.Join(blocks, "\n\n")
}

// buildGroundingPrompt instructs the model to answer only from the supplied
// context, to mirror the context's dominant language, and to reply with one
// of the fixed fallback phrases verbatim when the context does not contain
// the answer. This is a prompting contract, not a guarantee; the caller
// still validates the response.
func buildGroundingPrompt(contextText, question string) string {
	var sb strings.Builder
	sb.WriteString("You are an assistant answering questions about a document collection.\n\n")
	sb.WriteString("Rules:\n")
	sb.WriteString("1. Answer using ONLY the context below. Never introduce outside knowledge.\n")
	sb.WriteString("2. Detect the dominant language of the context and answer in that language, regardless of the language of the question. Do not translate the context.\n")
	sb.WriteString("3. If the context does not contain the answer, reply with exactly one of these phrases, verbatim:\n")
	for _, phrase := range FallbackPhrases {
		sb.WriteString("   - " + phrase + "\n")
	}
	sb.WriteString("4. Answer clearly and concisely.\n\n")
	sb.WriteString("Context:\n")
	sb.WriteString(contextText)
	sb.WriteString("\n\nQuestion: ")
	sb.WriteString(question)
	sb.WriteString("\n\nAnswer:")
	return sb.String()
}
