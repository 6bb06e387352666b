package services

import (
	"context"
	"log"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// WatcherService ingests files dropped into the docs directory without an
// explicit upload call. Only newly created files are picked up; changed
// files are not re-embedded and deletions are not propagated to the index.
type WatcherService struct {
	ingest  IngestService
	tracker *IngestTracker
}

// NewWatcherService creates a watcher. The tracker must be shared with the
// upload handler: uploads land in the watched directory too, and without
// the tracker every upload would be ingested twice.
func NewWatcherService(ingest IngestService, tracker *IngestTracker) *WatcherService {
	return &WatcherService{ingest: ingest, tracker: tracker}
}

// WatchDirectory blocks until the context is cancelled, ingesting supported
// files as they appear in dirPath.
func (s *WatcherService) WatchDirectory(ctx context.Context, dirPath string) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("WATCHER ERROR: Failed to create file watcher: %v", err)
		return
	}
	defer watcher.Close()

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Create) || !isSupportedFile(event.Name) {
					continue
				}
				if s.tracker.Consume(event.Name) {
					log.Printf("WATCHER: %s already ingested via upload, skipping", event.Name)
					continue
				}
				log.Printf("WATCHER: New file detected: %s. Ingesting...", event.Name)
				count, err := s.ingest.Ingest(ctx, InputDescriptor{Path: event.Name})
				if err != nil {
					log.Printf("WATCHER ERROR: Failed to ingest %s: %v", event.Name, err)
					continue
				}
				log.Printf("WATCHER: Ingested %s (%d chunks)", event.Name, count)

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("WATCHER ERROR: %v", err)

			case <-ctx.Done():
				log.Println("WATCHER: Context cancelled, shutting down watcher.")
				return
			}
		}
	}()

	log.Printf("WATCHER: Watching directory: %s", dirPath)
	if err := watcher.Add(dirPath); err != nil {
		log.Printf("WATCHER ERROR: Failed to add path to watcher: %v", err)
	}

	<-ctx.Done()
}

func isSupportedFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf", ".docx", ".html", ".htm":
		return true
	default:
		return false
	}
}
