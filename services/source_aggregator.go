package services

import (
	"net/url"
	"path/filepath"
	"sort"
	"strings"

	"docqa/models"
)

// SourceAggregator turns the retrieved records into per-origin attribution:
// one SourceSummary per distinct origin, pages merged into a sorted unique
// list, and a clickable reference resolved for each.
type SourceAggregator struct {
	baseURL string
}

// NewSourceAggregator creates an aggregator. baseURL is where the process
// serves raw ingested files, used to build references for origins that are
// local paths rather than URLs.
func NewSourceAggregator(baseURL string) *SourceAggregator {
	return &SourceAggregator{baseURL: strings.TrimRight(baseURL, "/")}
}

// Aggregate groups records by origin, preserving first-appearance order so
// the most relevant source stays first.
func (a *SourceAggregator) Aggregate(records []models.StoredRecord) []models.SourceSummary {
	type group struct {
		meta  models.Metadata
		pages map[int]bool
	}

	var order []string
	groups := make(map[string]*group)
	for _, record := range records {
		origin := record.Metadata.Source
		if origin == "" {
			continue
		}
		g, ok := groups[origin]
		if !ok {
			g = &group{meta: record.Metadata, pages: make(map[int]bool)}
			groups[origin] = g
			order = append(order, origin)
		}
		if record.Metadata.Page != nil {
			g.pages[*record.Metadata.Page] = true
		}
	}

	summaries := make([]models.SourceSummary, 0, len(order))
	for _, origin := range order {
		g := groups[origin]

		pages := make([]int, 0, len(g.pages))
		for p := range g.pages {
			pages = append(pages, p)
		}
		sort.Ints(pages)

		summaries = append(summaries, models.SourceSummary{
			Name:      a.displayName(g.meta),
			Reference: a.resolveReference(origin),
			Pages:     pages,
		})
	}
	return summaries
}

func (a *SourceAggregator) displayName(meta models.Metadata) string {
	if meta.Title != "" {
		return meta.Title
	}
	if isAbsoluteURL(meta.Source) {
		return meta.Source
	}
	return filepath.Base(meta.Source)
}

// resolveReference keeps absolute URLs unchanged and maps local paths to the
// configured base URL with a percent-encoded file name.
func (a *SourceAggregator) resolveReference(origin string) string {
	if isAbsoluteURL(origin) {
		return origin
	}
	return a.baseURL + "/" + url.PathEscape(filepath.Base(origin))
}

func isAbsoluteURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
