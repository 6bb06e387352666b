package services

import "errors"

// Sentinel errors for the failure modes callers are expected to tell apart.
// They are wrapped with fmt.Errorf("%w: ...") so errors.Is works across the
// service boundary.
var (
	// ErrUnsupportedFormat means the input could not be classified as PDF,
	// DOCX or HTML. Bad input, not retryable.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrUnreachableSource means a remote document fetch failed or timed
	// out. Transient, the caller may retry.
	ErrUnreachableSource = errors.New("source could not be fetched")

	// ErrCollectionNotFound means the named collection has never been
	// populated. Raised by the vector store so callers can distinguish
	// "nothing indexed yet" from a transport failure.
	ErrCollectionNotFound = errors.New("collection has no embeddings")

	// ErrEmptyKnowledgeBase is the query-side translation of
	// ErrCollectionNotFound: the caller must ingest documents first.
	ErrEmptyKnowledgeBase = errors.New("knowledge base is empty, ingest documents first")

	// ErrGenerationFailure means the language model call itself failed.
	// Never masked by a fallback phrase.
	ErrGenerationFailure = errors.New("language model generation failed")
)
