package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/google/uuid"

	"docqa/models"
)

// IngestService runs the write-side pipeline: load a document, chunk it,
// embed every chunk and persist the batch into the collection.
type IngestService interface {
	Ingest(ctx context.Context, in InputDescriptor) (int, error)
	ListSources(ctx context.Context) ([]models.KnownSource, error)
}

type ingestServiceImpl struct {
	loader     DocumentSource
	embedder   EmbeddingProvider
	store      VectorStore
	collection string
	maxChars   int
	overlap    int
}

// NewIngestService wires the ingestion pipeline. maxChars/overlap control
// the chunk windows; the collection name must match the one queries use.
func NewIngestService(loader DocumentSource, embedder EmbeddingProvider, store VectorStore, collection string, maxChars, overlap int) IngestService {
	return &ingestServiceImpl{
		loader:     loader,
		embedder:   embedder,
		store:      store,
		collection: collection,
		maxChars:   maxChars,
		overlap:    overlap,
	}
}

// Ingest returns the number of chunks stored. Writes are at-least-once: a
// failure partway through the batch can leave earlier chunks persisted.
func (s *ingestServiceImpl) Ingest(ctx context.Context, in InputDescriptor) (int, error) {
	log.Printf("INGEST: Loading %s", in.Origin())

	segments, err := s.loader.Load(ctx, in)
	if err != nil {
		return 0, err
	}

	chunks := ChunkSegments(segments, s.maxChars, s.overlap)
	if len(chunks) == 0 {
		log.Printf("INGEST: %s produced no text, nothing to store", in.Origin())
		return 0, nil
	}
	log.Printf("INGEST: Split %s into %d chunks (%d segments)", in.Origin(), len(chunks), len(segments))

	records := make([]models.StoredRecord, 0, len(chunks))
	for i, chunk := range chunks {
		vector, err := s.embedder.Embed(ctx, chunk.Text)
		if err != nil {
			return 0, fmt.Errorf("could not embed chunk %d of %s: %w", i, in.Origin(), err)
		}
		records = append(records, models.StoredRecord{
			ID:        uuid.New().String(),
			Embedding: vector,
			Text:      chunk.Text,
			Metadata:  chunk.Metadata,
		})
	}

	if err := s.store.Upsert(ctx, s.collection, records); err != nil {
		return 0, err
	}

	log.Printf("INGEST: Stored %d chunks from %s into collection %s", len(records), in.Origin(), s.collection)
	return len(records), nil
}

// ListSources reports the distinct origins present in the collection, with
// title, author and page count where known. An unpopulated collection yields
// an empty list, not an error.
func (s *ingestServiceImpl) ListSources(ctx context.Context) ([]models.KnownSource, error) {
	records, err := s.store.List(ctx, s.collection)
	if err != nil {
		if errors.Is(err, ErrCollectionNotFound) {
			return []models.KnownSource{}, nil
		}
		return nil, err
	}

	seen := make(map[string]bool)
	sources := make([]models.KnownSource, 0)
	for _, record := range records {
		origin := record.Metadata.Source
		if origin == "" || seen[origin] {
			continue
		}
		seen[origin] = true
		sources = append(sources, models.KnownSource{
			Source:     origin,
			Title:      record.Metadata.Title,
			Author:     record.Metadata.Author,
			TotalPages: record.Metadata.TotalPages,
		})
	}

	sort.Slice(sources, func(i, j int) bool {
		return sources[i].Title < sources[j].Title
	})
	return sources, nil
}
