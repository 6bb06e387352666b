package config

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

// EmbedderConfig selects and configures the embedding provider. The same
// provider serves ingestion and querying; changing the model invalidates the
// existing collection.
type EmbedderConfig struct {
	Type      string `yaml:"type"` // "ollama" or "openai"
	Model     string `yaml:"model"`
	OllamaURL string `yaml:"ollama_url"`
}

// LLMConfig selects and configures the answer-generation model.
type LLMConfig struct {
	Type  string `yaml:"type"` // "gemini" or "openai"
	Model string `yaml:"model"`
}

// Config is the root process configuration. API keys are not configured
// here; they come from the environment (GEMINI_API_KEY, OPENAI_API_KEY,
// UNIDOC_LICENSE_KEY).
type Config struct {
	Port             string         `yaml:"port"`
	ChromaURL        string         `yaml:"chroma_url"`
	Collection       string         `yaml:"collection"`
	DocsDir          string         `yaml:"docs_dir"`
	BaseURL          string         `yaml:"base_url"`
	ChunkSize        int            `yaml:"chunk_size"`
	ChunkOverlap     int            `yaml:"chunk_overlap"`
	TopK             int            `yaml:"top_k"`
	FetchTimeoutSecs int            `yaml:"fetch_timeout_secs"`
	Embedder         EmbedderConfig `yaml:"embedder"`
	LLM              LLMConfig      `yaml:"llm"`
}

// Load reads a config from path. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func defaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.Collection == "" {
		cfg.Collection = "documents"
	}
	if cfg.DocsDir == "" {
		cfg.DocsDir = "./docs"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:" + cfg.Port + "/docs"
	}
	if cfg.ChunkSize == 0 {
		cfg.ChunkSize = 1000
	}
	if cfg.ChunkOverlap == 0 {
		cfg.ChunkOverlap = 200
	}
	if cfg.TopK == 0 {
		cfg.TopK = 3
	}
	if cfg.FetchTimeoutSecs == 0 {
		cfg.FetchTimeoutSecs = 15
	}
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "ollama"
	}
	if cfg.Embedder.Model == "" {
		if cfg.Embedder.Type == "openai" {
			cfg.Embedder.Model = "text-embedding-3-small"
		} else {
			cfg.Embedder.Model = "nomic-embed-text:v1.5"
		}
	}
	if cfg.Embedder.OllamaURL == "" {
		cfg.Embedder.OllamaURL = "http://localhost:11434"
	}
	if cfg.LLM.Type == "" {
		cfg.LLM.Type = "gemini"
	}
	if cfg.LLM.Model == "" {
		if cfg.LLM.Type == "openai" {
			cfg.LLM.Model = "gpt-4o-mini"
		} else {
			cfg.LLM.Model = "gemini-2.5-flash"
		}
	}
}
