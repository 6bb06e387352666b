package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"

	"docqa/models"
)

// VectorStore persists (vector, text, metadata) records in named collections
// and returns the nearest records for a query vector. Query and List fail
// with ErrCollectionNotFound when the collection has never been populated,
// so callers can tell "nothing indexed yet" apart from transport errors.
type VectorStore interface {
	Upsert(ctx context.Context, collection string, records []models.StoredRecord) error
	Query(ctx context.Context, collection string, vector []float32, k int) ([]models.StoredRecord, error)
	List(ctx context.Context, collection string) ([]models.StoredRecord, error)
	Count(ctx context.Context, collection string) (int, error)
}

type chromaStore struct {
	client chromago.Client
}

// NewChromaStore wraps a ChromaDB v2 client. The client is safe for
// concurrent use, so one store instance serves all requests.
func NewChromaStore(client chromago.Client) VectorStore {
	return &chromaStore{client: client}
}

// Upsert appends records to the collection, creating it on first write.
// Records are added one at a time; a failure mid-batch leaves earlier
// records persisted (at-least-once, no rollback).
func (s *chromaStore) Upsert(ctx context.Context, collection string, records []models.StoredRecord) error {
	col, err := s.client.GetOrCreateCollection(ctx, collection)
	if err != nil {
		return fmt.Errorf("failed to get or create collection %s: %w", collection, err)
	}

	for _, record := range records {
		err := col.Add(ctx,
			chromago.WithIDs(chromago.DocumentID(record.ID)),
			chromago.WithTexts(record.Text),
			chromago.WithEmbeddings(embeddings.NewEmbeddingFromFloat32(record.Embedding)),
			chromago.WithMetadatas(chromaMetadata(record.Metadata)),
		)
		if err != nil {
			return fmt.Errorf("failed to add record %s to collection %s: %w", record.ID, collection, err)
		}
	}
	return nil
}

// Query returns the k records nearest to the query vector, ordered by
// ascending distance (Chroma's ordering, stable for ties).
func (s *chromaStore) Query(ctx context.Context, collection string, vector []float32, k int) ([]models.StoredRecord, error) {
	col, err := s.openPopulated(ctx, collection)
	if err != nil {
		return nil, err
	}

	results, err := col.Query(ctx,
		chromago.WithQueryEmbeddings(embeddings.NewEmbeddingFromFloat32(vector)),
		chromago.WithNResults(k),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection %s: %w", collection, err)
	}

	var ids, texts []string
	var metadatas []map[string]interface{}
	if idGroups := results.GetIDGroups(); len(idGroups) > 0 {
		for _, id := range idGroups[0] {
			ids = append(ids, string(id))
		}
	}
	if documentGroups := results.GetDocumentsGroups(); len(documentGroups) > 0 {
		for _, doc := range documentGroups[0] {
			texts = append(texts, doc.ContentString())
		}
	}
	if metadataGroups := results.GetMetadatasGroups(); len(metadataGroups) > 0 {
		for _, metadata := range metadataGroups[0] {
			metadatas = append(metadatas, decodeChromaMetadata(metadata))
		}
	}
	return buildQueryRecords(ids, texts, metadatas), nil
}

// buildQueryRecords zips the store's parallel result slices into records,
// tolerating length mismatches between them. Empty-text hits are dropped.
func buildQueryRecords(ids, texts []string, metadatas []map[string]interface{}) []models.StoredRecord {
	var records []models.StoredRecord
	for i, text := range texts {
		if text == "" {
			continue
		}
		record := models.StoredRecord{Text: text}
		if i < len(ids) {
			record.ID = ids[i]
		}
		if i < len(metadatas) {
			record.Metadata = models.MetadataFromMap(metadatas[i])
		}
		records = append(records, record)
	}
	return records
}

// List returns every record in the collection. Used for the sources listing.
func (s *chromaStore) List(ctx context.Context, collection string) ([]models.StoredRecord, error) {
	col, err := s.openPopulated(ctx, collection)
	if err != nil {
		return nil, err
	}

	results, err := col.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get documents from collection %s: %w", collection, err)
	}

	ids := results.GetIDs()
	documents := results.GetDocuments()
	metadatas := results.GetMetadatas()

	records := make([]models.StoredRecord, 0, len(ids))
	for i := range ids {
		record := models.StoredRecord{ID: string(ids[i])}
		if i < len(documents) {
			record.Text = documents[i].ContentString()
		}
		if i < len(metadatas) && metadatas[i] != nil {
			record.Metadata = models.MetadataFromMap(decodeChromaMetadata(metadatas[i]))
		}
		records = append(records, record)
	}
	return records, nil
}

func (s *chromaStore) Count(ctx context.Context, collection string) (int, error) {
	col, err := s.client.GetCollection(ctx, collection)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrCollectionNotFound, collection)
	}
	count, err := col.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count items in collection %s: %w", collection, err)
	}
	return int(count), nil
}

// openPopulated resolves a collection that exists and holds at least one
// record, mapping both "absent" and "empty" to ErrCollectionNotFound.
func (s *chromaStore) openPopulated(ctx context.Context, collection string) (chromago.Collection, error) {
	col, err := s.client.GetCollection(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, collection)
	}
	count, err := col.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count items in collection %s: %w", collection, err)
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: %s holds no records", ErrCollectionNotFound, collection)
	}
	return col, nil
}

func chromaMetadata(m models.Metadata) chromago.DocumentMetadata {
	attrs := []*chromago.MetaAttribute{
		chromago.NewStringAttribute("source", m.Source),
	}
	if m.Page != nil {
		attrs = append(attrs, chromago.NewIntAttribute("page", int64(*m.Page)))
	}
	if m.Title != "" {
		attrs = append(attrs, chromago.NewStringAttribute("title", m.Title))
	}
	if m.Author != "" {
		attrs = append(attrs, chromago.NewStringAttribute("author", m.Author))
	}
	if m.TotalPages != nil {
		attrs = append(attrs, chromago.NewIntAttribute("total_pages", int64(*m.TotalPages)))
	}
	return chromago.NewDocumentMetadata(attrs...)
}

// decodeChromaMetadata converts the client's metadata type to a plain map.
// DocumentMetadata exposes no map accessor, so round-trip through JSON.
func decodeChromaMetadata(metadata chromago.DocumentMetadata) map[string]interface{} {
	metadataMap := make(map[string]interface{})
	if metadata == nil {
		return metadataMap
	}
	jsonBytes, err := json.Marshal(metadata)
	if err != nil {
		log.Printf("WARN: could not marshal document metadata: %v", err)
		return metadataMap
	}
	if err := json.Unmarshal(jsonBytes, &metadataMap); err != nil {
		log.Printf("WARN: could not unmarshal document metadata: %v", err)
		return map[string]interface{}{}
	}
	return metadataMap
}
