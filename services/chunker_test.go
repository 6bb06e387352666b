package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/models"
)

func intPtr(v int) *int { return &v }

func TestChunkSegmentsShortTextSingleChunk(t *testing.T) {
	segments := []models.Segment{
		{Text: "A short paragraph.", Metadata: models.Metadata{Source: "notes.pdf"}},
	}

	chunks := ChunkSegments(segments, 1000, 200)

	require.Len(t, chunks, 1)
	assert.Equal(t, "A short paragraph.", chunks[0].Text)
	assert.Equal(t, "notes.pdf", chunks[0].Metadata.Source)
}

func TestChunkSegmentsWindowBoundsAndOverlap(t *testing.T) {
	text := strings.Repeat("word ", 500) // 2500 chars
	segments := []models.Segment{
		{Text: text, Metadata: models.Metadata{Source: "long.pdf"}},
	}

	chunks := ChunkSegments(segments, 1000, 200)

	require.Greater(t, len(chunks), 1)
	for i, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk.Text), 1000, "chunk %d exceeds the window", i)
	}
	for i := 0; i < len(chunks)-1; i++ {
		cur, next := chunks[i].Text, chunks[i+1].Text
		if len(cur) < 200 || len(next) < 200 {
			continue
		}
		assert.Equal(t, cur[len(cur)-200:], next[:200],
			"chunks %d and %d do not share the overlap region", i, i+1)
	}
}

func TestChunkSegmentsIndivisibleUnitKeptIntact(t *testing.T) {
	oversized := strings.Repeat("a", 1500)
	segments := []models.Segment{
		{Text: oversized, Metadata: models.Metadata{Source: "blob.html"}},
	}

	chunks := ChunkSegments(segments, 1000, 200)

	require.Len(t, chunks, 1)
	assert.Equal(t, oversized, chunks[0].Text)
}

func TestChunkSegmentsMetadataInherited(t *testing.T) {
	meta := models.Metadata{
		Source:     "./docs/report.pdf",
		Page:       intPtr(2),
		Title:      "Annual Report",
		Author:     "Finance Team",
		TotalPages: intPtr(3),
	}
	segments := []models.Segment{
		{Text: strings.Repeat("sentence one. ", 200), Metadata: meta},
	}

	chunks := ChunkSegments(segments, 1000, 200)

	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.Equal(t, meta, chunk.Metadata)
	}
}

func TestChunkSegmentsOnePagePerSegment(t *testing.T) {
	// A 3-page document totalling ~2500 characters: each page fits one
	// window, so the pipeline stores exactly 3 chunks with page numbers.
	pageText := strings.Repeat("alpha beta gamma. ", 46) // ~830 chars
	total := 3
	var segments []models.Segment
	for p := 1; p <= total; p++ {
		page := p
		segments = append(segments, models.Segment{
			Text: pageText,
			Metadata: models.Metadata{
				Source:     "./docs/report.pdf",
				Page:       &page,
				TotalPages: &total,
			},
		})
	}

	chunks := ChunkSegments(segments, 1000, 200)

	require.Len(t, chunks, 3)
	for i, chunk := range chunks {
		require.NotNil(t, chunk.Metadata.Page)
		assert.Equal(t, i+1, *chunk.Metadata.Page)
		assert.Equal(t, "./docs/report.pdf", chunk.Metadata.Source)
	}
}

func TestChunkSegmentsSkipsBlankSegments(t *testing.T) {
	segments := []models.Segment{
		{Text: "   \n\n  ", Metadata: models.Metadata{Source: "empty.pdf"}},
		{Text: "real content", Metadata: models.Metadata{Source: "real.pdf"}},
	}

	chunks := ChunkSegments(segments, 1000, 200)

	require.Len(t, chunks, 1)
	assert.Equal(t, "real.pdf", chunks[0].Metadata.Source)
}

func TestChunkSegmentsPrefersParagraphBoundaries(t *testing.T) {
	para := strings.Repeat("x", 400)
	text := para + "\n\n" + para + "\n\n" + para

	chunks := ChunkSegments([]models.Segment{{Text: text}}, 1000, 200)

	require.Greater(t, len(chunks), 1)
	// The first window packs whole paragraphs rather than cutting one.
	assert.True(t, strings.HasPrefix(chunks[0].Text, para+"\n\n"))
}
