package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildQueryRecords(t *testing.T) {
	ids := []string{"id-1", "id-2", "id-3"}
	texts := []string{"first chunk", "", "third chunk"}
	metadatas := []map[string]interface{}{
		{"source": "./docs/a.pdf", "page": float64(2)},
		{"source": "./docs/a.pdf"},
		{"source": "https://example.com/b.html"},
	}

	records := buildQueryRecords(ids, texts, metadatas)

	require.Len(t, records, 2)
	// Each hit keeps the ID it was stored under.
	assert.Equal(t, "id-1", records[0].ID)
	assert.Equal(t, "first chunk", records[0].Text)
	assert.Equal(t, "./docs/a.pdf", records[0].Metadata.Source)
	require.NotNil(t, records[0].Metadata.Page)
	assert.Equal(t, 2, *records[0].Metadata.Page)

	assert.Equal(t, "id-3", records[1].ID)
	assert.Equal(t, "https://example.com/b.html", records[1].Metadata.Source)
}

func TestBuildQueryRecordsToleratesShortSlices(t *testing.T) {
	// The store's ID and metadata groups are not guaranteed to line up with
	// the document group; missing entries leave zero values, not panics.
	records := buildQueryRecords(
		[]string{"id-1"},
		[]string{"first", "second"},
		nil,
	)

	require.Len(t, records, 2)
	assert.Equal(t, "id-1", records[0].ID)
	assert.Equal(t, "", records[1].ID)
	assert.Equal(t, "", records[1].Metadata.Source)
}

func TestBuildQueryRecordsEmpty(t *testing.T) {
	assert.Empty(t, buildQueryRecords(nil, nil, nil))
}
