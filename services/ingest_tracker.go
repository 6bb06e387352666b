package services

import (
	"path/filepath"
	"sync"
)

// IngestTracker records paths whose ingestion was already initiated
// elsewhere, so the docs-directory watcher does not ingest the same file a
// second time when its create event arrives. Safe for concurrent use.
type IngestTracker struct {
	mu    sync.Mutex
	paths map[string]bool
}

func NewIngestTracker() *IngestTracker {
	return &IngestTracker{paths: make(map[string]bool)}
}

// Mark flags a path as already handled. Paths are normalized so the form
// the uploader joins and the form the watcher reports compare equal.
func (t *IngestTracker) Mark(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.paths[filepath.Clean(path)] = true
}

// Consume reports whether the path was marked and clears the mark, so a
// later drop of a file with the same name is ingested normally.
func (t *IngestTracker) Consume(path string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	key := filepath.Clean(path)
	if !t.paths[key] {
		return false
	}
	delete(t.paths, key)
	return true
}
