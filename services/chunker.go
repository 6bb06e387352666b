package services

import (
	"strings"

	"docqa/models"
)

// chunkSeparators is the split priority: paragraphs first, then lines, then
// sentences, then words. A unit that still exceeds the window after the last
// separator is kept intact rather than truncated mid-word.
var chunkSeparators = []string{"\n\n", "\n", ". ", " "}

// ChunkSegments splits each segment into overlapping windows of at most
// maxChars characters. Consecutive windows from the same segment share
// exactly overlapChars characters: the next window starts with the tail of
// the previous one. Every chunk inherits its parent segment's metadata
// unchanged.
func ChunkSegments(segments []models.Segment, maxChars, overlapChars int) []models.Chunk {
	var chunks []models.Chunk
	for _, seg := range segments {
		if strings.TrimSpace(seg.Text) == "" {
			continue
		}
		for _, window := range splitWithOverlap(seg.Text, maxChars, overlapChars) {
			chunks = append(chunks, models.Chunk{
				Text:     window,
				Metadata: seg.Metadata,
			})
		}
	}
	return chunks
}

// splitWithOverlap packs separator-aligned units into windows. Units are
// capped at maxChars-overlapChars so that prefixing the overlap tail never
// pushes a window past maxChars.
func splitWithOverlap(text string, maxChars, overlapChars int) []string {
	if len(text) <= maxChars {
		return []string{text}
	}

	unitLimit := maxChars - overlapChars
	if unitLimit <= 0 {
		unitLimit = maxChars
	}
	units := splitUnits(text, unitLimit, chunkSeparators)

	var windows []string
	var cur string
	for _, unit := range units {
		switch {
		case cur == "":
			cur = unit
		case len(cur)+len(unit) <= maxChars:
			cur += unit
		default:
			windows = append(windows, cur)
			cur = overlapTail(cur, overlapChars) + unit
		}
	}
	if cur != "" {
		windows = append(windows, cur)
	}
	return windows
}

// splitUnits recursively splits text into pieces of at most limit
// characters, preferring the highest-priority separator that helps.
// Separators stay attached to the preceding piece so that concatenating the
// units reproduces the original text exactly.
func splitUnits(text string, limit int, separators []string) []string {
	if len(text) <= limit {
		return []string{text}
	}
	if len(separators) == 0 {
		// Indivisible unit larger than the window, keep it intact.
		return []string{text}
	}

	sep := separators[0]
	parts := strings.SplitAfter(text, sep)
	if len(parts) == 1 {
		return splitUnits(text, limit, separators[1:])
	}

	var units []string
	for _, part := range parts {
		if part == "" {
			continue
		}
		if len(part) <= limit {
			units = append(units, part)
			continue
		}
		units = append(units, splitUnits(part, limit, separators[1:])...)
	}
	return units
}

func overlapTail(s string, overlapChars int) string {
	if len(s) <= overlapChars {
		return s
	}
	return s[len(s)-overlapChars:]
}
