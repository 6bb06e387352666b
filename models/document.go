package models

// Metadata carries the provenance of a piece of loaded text. Source is the
// file path or URL the text came from; Page and TotalPages are only set for
// paginated formats.
type Metadata struct {
	Source     string `json:"source"`
	Page       *int   `json:"page,omitempty"`
	Title      string `json:"title,omitempty"`
	Author     string `json:"author,omitempty"`
	TotalPages *int   `json:"total_pages,omitempty"`
}

// MetadataFromMap rebuilds Metadata from a stored metadata map. Numeric
// values may come back as float64 or int64 depending on the JSON round trip
// through the store client.
func MetadataFromMap(raw map[string]interface{}) Metadata {
	var m Metadata
	if s, ok := raw["source"].(string); ok {
		m.Source = s
	}
	if t, ok := raw["title"].(string); ok {
		m.Title = t
	}
	if a, ok := raw["author"].(string); ok {
		m.Author = a
	}
	if p, ok := asInt(raw["page"]); ok {
		m.Page = &p
	}
	if tp, ok := asInt(raw["total_pages"]); ok {
		m.TotalPages = &tp
	}
	return m
}

func asInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

// Segment is a unit of loaded text before chunking. A document yields one or
// more segments, e.g. one per page for a PDF.
type Segment struct {
	Text     string
	Metadata Metadata
}

// Chunk is a bounded window of segment text, the unit of embedding and
// storage. It inherits its parent segment's metadata unchanged.
type Chunk struct {
	Text     string
	Metadata Metadata
}

// StoredRecord is one persisted chunk: its ID, embedding vector, raw text
// and provenance metadata.
type StoredRecord struct {
	ID        string
	Embedding []float32
	Text      string
	Metadata  Metadata
}

// SourceSummary is the per-origin attribution attached to an answer.
type SourceSummary struct {
	Name      string `json:"name"`
	Reference string `json:"reference"`
	Pages     []int  `json:"pages,omitempty"`
}

// AnswerResult is the outcome of one question. When Answer is a fallback
// phrase, Sources is always empty.
type AnswerResult struct {
	Answer  string          `json:"answer"`
	Sources []SourceSummary `json:"sources"`
}
