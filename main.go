package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/gin-gonic/gin"
	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/genai"

	"docqa/config"
	"docqa/controller"
	"docqa/services"
)

func main() {
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("FATAL: Failed to load config: %v", err)
	}

	if err := os.MkdirAll(cfg.DocsDir, 0o755); err != nil {
		log.Fatalf("FATAL: Failed to create docs directory %s: %v", cfg.DocsDir, err)
	}

	// Remote document fetches get the bounded ingestion timeout; embedding
	// calls get a more generous one of their own.
	fetchClient := &http.Client{
		Timeout: time.Duration(cfg.FetchTimeoutSecs) * time.Second,
	}
	embedClient := &http.Client{
		Timeout: 30 * time.Second,
	}

	// Create Chroma client using v2 API
	var chromaClient chromago.Client
	if cfg.ChromaURL != "" {
		chromaClient, err = chromago.NewHTTPClient(chromago.WithBaseURL(cfg.ChromaURL))
	} else {
		chromaClient, err = chromago.NewHTTPClient()
	}
	if err != nil {
		log.Fatalf("FATAL: Failed to create chroma client: %v", err)
	}
	defer func() {
		if err := chromaClient.Close(); err != nil {
			log.Printf("Warning: Failed to close chroma client: %v", err)
		}
	}()

	embedder, err := buildEmbedder(cfg, embedClient)
	if err != nil {
		log.Fatalf("FATAL: Failed to create embedding provider: %v", err)
	}
	llm, err := buildLanguageModel(cfg)
	if err != nil {
		log.Fatalf("FATAL: Failed to create language model: %v", err)
	}

	store := services.NewChromaStore(chromaClient)
	loader := services.NewDocumentLoader(fetchClient)
	aggregator := services.NewSourceAggregator(cfg.BaseURL)

	ingestService := services.NewIngestService(loader, embedder, store, cfg.Collection, cfg.ChunkSize, cfg.ChunkOverlap)
	ragService := services.NewRAGService(embedder, store, llm, aggregator, services.NewRandomFallback(), cfg.Collection, cfg.TopK)

	// Uploads are saved into the watched docs directory; the shared tracker
	// keeps the watcher from ingesting them a second time.
	tracker := services.NewIngestTracker()
	ragController := controller.NewRAGController(ragService, ingestService, tracker, cfg.DocsDir)

	// Watch the docs directory so files dropped there get ingested without
	// an explicit upload.
	watchCtx, cancelWatch := context.WithCancel(context.Background())
	defer cancelWatch()
	watcher := services.NewWatcherService(ingestService, tracker)
	go watcher.WatchDirectory(watchCtx, cfg.DocsDir)

	// Setup Gin router
	router := gin.Default()

	// CORS middleware so browser frontends can call the API directly.
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "Document Q&A API",
			"version": "1.0.0",
		})
	})

	// Raw ingested files are served back so source references resolve.
	router.Static("/docs", cfg.DocsDir)

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/ingest", ragController.IngestFile)
		apiV1.POST("/ingest-url", ragController.IngestURL)
		apiV1.POST("/ask", ragController.Ask)
		apiV1.GET("/sources", ragController.ListSources)
	}

	log.Printf("Document Q&A server starting on http://localhost:%s", cfg.Port)
	log.Printf("Health check available at: http://localhost:%s/health", cfg.Port)
	log.Printf("API endpoints:")
	log.Printf("  POST http://localhost:%s/api/v1/ingest", cfg.Port)
	log.Printf("  POST http://localhost:%s/api/v1/ingest-url", cfg.Port)
	log.Printf("  POST http://localhost:%s/api/v1/ask", cfg.Port)
	log.Printf("  GET  http://localhost:%s/api/v1/sources", cfg.Port)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("FATAL: Failed to start server: %v", err)
	}
}

func buildEmbedder(cfg *config.Config, client *http.Client) (services.EmbeddingProvider, error) {
	switch cfg.Embedder.Type {
	case "ollama":
		return services.NewOllamaEmbedder(client, cfg.Embedder.OllamaURL, cfg.Embedder.Model), nil
	case "openai":
		openaiClient, err := newOpenAIClient()
		if err != nil {
			return nil, err
		}
		return services.NewOpenAIEmbedder(openaiClient, cfg.Embedder.Model), nil
	default:
		return nil, fmt.Errorf("unknown embedder type %q", cfg.Embedder.Type)
	}
}

func buildLanguageModel(cfg *config.Config) (services.LanguageModel, error) {
	switch cfg.LLM.Type {
	case "gemini":
		apiKey := os.Getenv("GEMINI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
		}
		geminiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
			APIKey:  apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, err
		}
		log.Println("Successfully connected to Google Gemini.")
		return services.NewGeminiModel(geminiClient, cfg.LLM.Model), nil
	case "openai":
		openaiClient, err := newOpenAIClient()
		if err != nil {
			return nil, err
		}
		return services.NewOpenAIModel(openaiClient, cfg.LLM.Model), nil
	default:
		return nil, fmt.Errorf("unknown llm type %q", cfg.LLM.Type)
	}
}

func newOpenAIClient() (*openai.Client, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		clientConfig := openai.DefaultConfig(apiKey)
		clientConfig.BaseURL = baseURL
		return openai.NewClientWithConfig(clientConfig), nil
	}
	return openai.NewClient(apiKey), nil
}
