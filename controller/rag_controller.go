package controller

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"docqa/models"
	"docqa/services"
)

// askTimeout bounds one retrieve+generate round trip. The document fetch
// during ingestion has its own timeout on the loader's HTTP client.
const askTimeout = 60 * time.Second

// RAGController handles the HTTP requests for the document Q&A API. It maps
// service-level sentinel errors to status codes and otherwise delegates.
type RAGController struct {
	ragService    services.RAGService
	ingestService services.IngestService
	tracker       *services.IngestTracker
	docsDir       string
}

// NewRAGController is called from main.go to inject the service dependencies.
// The tracker is shared with the docs-directory watcher.
func NewRAGController(rag services.RAGService, ingest services.IngestService, tracker *services.IngestTracker, docsDir string) *RAGController {
	return &RAGController{
		ragService:    rag,
		ingestService: ingest,
		tracker:       tracker,
		docsDir:       docsDir,
	}
}

// IngestFile is the Gin handler for POST /api/v1/ingest. The uploaded file
// is saved under the docs directory (so it can be served back as a source
// reference) and then run through the ingestion pipeline.
func (c *RAGController) IngestFile(ctx *gin.Context) {
	file, err := ctx.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Missing file upload: " + err.Error()})
		return
	}

	// The docs directory is also watched for dropped files. Mark the path
	// before saving so the watcher's create event does not ingest the same
	// upload a second time.
	dst := filepath.Join(c.docsDir, filepath.Base(file.Filename))
	c.tracker.Mark(dst)
	if err := ctx.SaveUploadedFile(file, dst); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save uploaded file"})
		return
	}

	count, err := c.ingestService.Ingest(ctx.Request.Context(), services.InputDescriptor{
		Path:        dst,
		ContentType: file.Header.Get("Content-Type"),
	})
	if err != nil {
		status, detail := statusForError(err)
		ctx.JSON(status, gin.H{"error": detail})
		return
	}

	ctx.JSON(http.StatusCreated, models.IngestResponse{
		Source:       file.Filename,
		ChunksStored: count,
		Message:      fmt.Sprintf("%d chunks embedded and stored", count),
	})
}

// IngestURL is the Gin handler for POST /api/v1/ingest-url. The remote
// document is fetched and ingested with the URL itself as its origin.
func (c *RAGController) IngestURL(ctx *gin.Context) {
	var req models.IngestURLRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	count, err := c.ingestService.Ingest(ctx.Request.Context(), services.InputDescriptor{URL: req.URL})
	if err != nil {
		status, detail := statusForError(err)
		ctx.JSON(status, gin.H{"error": detail})
		return
	}

	ctx.JSON(http.StatusCreated, models.IngestResponse{
		Source:       req.URL,
		ChunksStored: count,
		Message:      fmt.Sprintf("%d chunks embedded and stored", count),
	})
}

// Ask is the Gin handler for POST /api/v1/ask.
func (c *RAGController) Ask(ctx *gin.Context) {
	var req models.AskRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	askCtx, cancel := context.WithTimeout(ctx.Request.Context(), askTimeout)
	defer cancel()

	result, err := c.ragService.Ask(askCtx, req.Question)
	if err != nil {
		status, detail := statusForError(err)
		ctx.JSON(status, gin.H{"error": detail})
		return
	}

	ctx.JSON(http.StatusOK, models.AskResponse{
		Answer:  result.Answer,
		Sources: result.Sources,
	})
}

// ListSources is the Gin handler for GET /api/v1/sources.
func (c *RAGController) ListSources(ctx *gin.Context) {
	sources, err := c.ingestService.ListSources(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list sources"})
		return
	}

	ctx.JSON(http.StatusOK, models.SourcesResponse{
		Count:   len(sources),
		Sources: sources,
	})
}

// statusForError maps the service error taxonomy onto HTTP semantics:
// bad input and unconfigured knowledge base are the caller's to fix, an
// unreachable source is an upstream fault, everything else is a server
// error.
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrUnsupportedFormat):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrEmptyKnowledgeBase):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrUnreachableSource):
		return http.StatusBadGateway, err.Error()
	case errors.Is(err, services.ErrGenerationFailure):
		return http.StatusInternalServerError, err.Error()
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}
