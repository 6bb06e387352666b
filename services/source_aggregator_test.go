package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/models"
)

func TestAggregateGroupsByOriginAndMergesPages(t *testing.T) {
	agg := NewSourceAggregator("http://localhost:8080/docs")

	records := []models.StoredRecord{
		{Metadata: models.Metadata{Source: "./docs/a.pdf", Page: intPtr(1)}},
		{Metadata: models.Metadata{Source: "./docs/a.pdf", Page: intPtr(3)}},
		{Metadata: models.Metadata{Source: "./docs/a.pdf", Page: intPtr(1)}}, // duplicate page
		{Metadata: models.Metadata{Source: "./docs/b.pdf", Page: intPtr(2)}},
		{Metadata: models.Metadata{Source: "./docs/b.pdf"}}, // no page
	}

	summaries := agg.Aggregate(records)

	require.Len(t, summaries, 2)
	assert.Equal(t, "a.pdf", summaries[0].Name)
	assert.Equal(t, []int{1, 3}, summaries[0].Pages)
	assert.Equal(t, "b.pdf", summaries[1].Name)
	assert.Equal(t, []int{2}, summaries[1].Pages)
}

func TestAggregatePreservesRankingOrder(t *testing.T) {
	agg := NewSourceAggregator("http://localhost:8080/docs")

	records := []models.StoredRecord{
		{Metadata: models.Metadata{Source: "./docs/z.pdf"}},
		{Metadata: models.Metadata{Source: "./docs/a.pdf"}},
		{Metadata: models.Metadata{Source: "./docs/z.pdf"}},
	}

	summaries := agg.Aggregate(records)

	require.Len(t, summaries, 2)
	assert.Equal(t, "z.pdf", summaries[0].Name)
	assert.Equal(t, "a.pdf", summaries[1].Name)
}

func TestAggregateResolvesReferences(t *testing.T) {
	agg := NewSourceAggregator("http://localhost:8080/docs/")

	records := []models.StoredRecord{
		{Metadata: models.Metadata{Source: "https://example.com/guide.html"}},
		{Metadata: models.Metadata{Source: "./docs/my report.pdf"}},
	}

	summaries := agg.Aggregate(records)

	require.Len(t, summaries, 2)
	// Absolute URLs pass through unchanged.
	assert.Equal(t, "https://example.com/guide.html", summaries[0].Reference)
	// Local paths resolve against the base URL with a percent-encoded name.
	assert.Equal(t, "http://localhost:8080/docs/my%20report.pdf", summaries[1].Reference)
}

func TestAggregatePrefersTitleAsName(t *testing.T) {
	agg := NewSourceAggregator("http://localhost:8080/docs")

	records := []models.StoredRecord{
		{Metadata: models.Metadata{Source: "./docs/a.pdf", Title: "Employee Handbook"}},
	}

	summaries := agg.Aggregate(records)

	require.Len(t, summaries, 1)
	assert.Equal(t, "Employee Handbook", summaries[0].Name)
}

func TestAggregateSkipsRecordsWithoutOrigin(t *testing.T) {
	agg := NewSourceAggregator("http://localhost:8080/docs")

	summaries := agg.Aggregate([]models.StoredRecord{
		{Text: "orphan chunk"},
	})

	assert.Empty(t, summaries)
}
