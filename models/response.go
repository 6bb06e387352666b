package models

type IngestResponse struct {
	Source       string `json:"source"`
	ChunksStored int    `json:"chunks_stored"`
	Message      string `json:"message"`
	Error        string `json:"error,omitempty"`
}

type AskResponse struct {
	Answer  string          `json:"answer"`
	Sources []SourceSummary `json:"sources"`
}

// KnownSource is one distinct ingested document as reported by the
// GET /sources endpoint.
type KnownSource struct {
	Source     string `json:"source"`
	Title      string `json:"title,omitempty"`
	Author     string `json:"author,omitempty"`
	TotalPages *int   `json:"totalPages,omitempty"`
}

type SourcesResponse struct {
	Count   int           `json:"count"`
	Sources []KnownSource `json:"sources"`
}
