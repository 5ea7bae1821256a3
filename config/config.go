package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

var ErrMissingAPIKey = errors.New("OPENAI_API_KEY is required")

const (
	OllamaEndpoint = "http://localhost:11434/api/chat"
	// Ollama's OpenAI-compatible API; go-openai appends /chat/completions.
	OpenAICompatEndpoint = "http://localhost:11434/v1"
)

type Config struct {
	LogLevel string       `yaml:"log_level"`
	OpenAI   OpenAIConfig `yaml:"openai"`
	RAG      RAGConfig    `yaml:"rag"`
	Chat     ChatConfig   `yaml:"chat"`
	Server   ServerConfig `yaml:"server"`
}

type OpenAIConfig struct {
	APIKey         string  `yaml:"api_key"`
	BaseURL        string  `yaml:"base_url"`
	EmbeddingModel string  `yaml:"embedding_model"`
	ChatModel      string  `yaml:"chat_model"`
	Temperature    float64 `yaml:"temperature"`
}

type RAGConfig struct {
	DocumentPath string `yaml:"document"`
	Query        string `yaml:"query"`
	ChunkSize    int    `yaml:"chunk_size"`
	ChunkOverlap int    `yaml:"chunk_overlap"`
	TopK         int    `yaml:"top_k"`
	// openai or simple
	Embedder string `yaml:"embedder"`
}

type ChatConfig struct {
	// Empty selects the local default for Protocol.
	Endpoint string `yaml:"endpoint"`
	Model    string `yaml:"model"`
	// ollama (NDJSON /api/chat) or openai (SSE /v1/chat/completions)
	Protocol    string `yaml:"protocol"`
	ReadTimeout string `yaml:"read_timeout"`
	APIKey      string `yaml:"api_key"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

func Default() *Config {
	return &Config{
		LogLevel: "info",
		OpenAI: OpenAIConfig{
			EmbeddingModel: "text-embedding-ada-002",
			ChatModel:      "gpt-4o-mini",
			Temperature:    0,
		},
		RAG: RAGConfig{
			DocumentPath: "data.txt",
			Query:        "What is RAG?",
			ChunkSize:    200,
			ChunkOverlap: 20,
			TopK:         2,
			Embedder:     "openai",
		},
		Chat: ChatConfig{
			Model:       "llama3.1:8b",
			Protocol:    "ollama",
			ReadTimeout: "2m",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// Load builds a Config from defaults, the optional YAML file at path and
// the environment, in that order of precedence. A .env file in the working
// directory is loaded first if present.
func Load(path string) (*Config, error) {
	return LoadInto(Default(), path)
}

// LoadInto is Load with caller-supplied defaults.
func LoadInto(cfg *Config, path string) (*Config, error) {
	if err := LoadDotEnv(".env"); err != nil {
		return nil, err
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDotEnv loads the given env files without overriding variables that
// are already set. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)

	c.OpenAI.APIKey = getEnv("OPENAI_API_KEY", c.OpenAI.APIKey)
	c.OpenAI.BaseURL = getEnv("OPENAI_BASE_URL", c.OpenAI.BaseURL)
	c.OpenAI.EmbeddingModel = getEnv("OPENAI_EMBEDDING_MODEL", c.OpenAI.EmbeddingModel)
	c.OpenAI.ChatModel = getEnv("OPENAI_CHAT_MODEL", c.OpenAI.ChatModel)

	c.RAG.DocumentPath = getEnv("RAG_DOCUMENT", c.RAG.DocumentPath)
	c.RAG.Query = getEnv("RAG_QUERY", c.RAG.Query)
	c.RAG.Embedder = getEnv("RAG_EMBEDDER", c.RAG.Embedder)
	if v := os.Getenv("RAG_TOP_K"); v != "" {
		k, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid RAG_TOP_K %q: %w", v, err)
		}
		c.RAG.TopK = k
	}

	c.Chat.Endpoint = getEnv("CHAT_ENDPOINT", c.Chat.Endpoint)
	c.Chat.Model = getEnv("CHAT_MODEL", c.Chat.Model)
	c.Chat.Protocol = getEnv("CHAT_PROTOCOL", c.Chat.Protocol)
	c.Chat.ReadTimeout = getEnv("CHAT_READ_TIMEOUT", c.Chat.ReadTimeout)
	c.Chat.APIKey = getEnv("CHAT_API_KEY", c.Chat.APIKey)

	c.Server.Addr = getEnv("SERVER_ADDR", c.Server.Addr)
	return nil
}

// ValidateRAG checks the settings the batch pipeline and the HTTP service
// depend on.
func (c *Config) ValidateRAG() error {
	switch c.RAG.Embedder {
	case "openai":
		if c.OpenAI.APIKey == "" {
			return ErrMissingAPIKey
		}
	case "simple":
	default:
		return fmt.Errorf("unknown embedder %q", c.RAG.Embedder)
	}
	if c.RAG.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive, got %d", c.RAG.ChunkSize)
	}
	if c.RAG.ChunkOverlap < 0 || c.RAG.ChunkOverlap >= c.RAG.ChunkSize {
		return fmt.Errorf("chunk_overlap must be in [0, %d), got %d", c.RAG.ChunkSize, c.RAG.ChunkOverlap)
	}
	if c.RAG.TopK <= 0 {
		return fmt.Errorf("top_k must be positive, got %d", c.RAG.TopK)
	}
	return nil
}

func (c *Config) ValidateChat() error {
	if c.Chat.Model == "" {
		return errors.New("chat model is required")
	}
	endpoint := strings.TrimRight(c.Chat.EndpointURL(), "/")
	switch c.Chat.Protocol {
	case "ollama":
		if strings.HasSuffix(endpoint, "/v1") {
			return fmt.Errorf("endpoint %s is an OpenAI-compatible base URL, use protocol openai", endpoint)
		}
	case "openai":
		if strings.HasSuffix(endpoint, "/api/chat") {
			return fmt.Errorf("endpoint %s is an Ollama chat URL, use protocol ollama or a /v1 base URL", endpoint)
		}
	default:
		return fmt.Errorf("unknown chat protocol %q", c.Chat.Protocol)
	}
	if _, err := c.Chat.Timeout(); err != nil {
		return err
	}
	return nil
}

// EndpointURL is Endpoint, or the local Ollama URL matching Protocol when
// Endpoint is unset.
func (c ChatConfig) EndpointURL() string {
	if c.Endpoint != "" {
		return c.Endpoint
	}
	if c.Protocol == "openai" {
		return OpenAICompatEndpoint
	}
	return OllamaEndpoint
}

// Timeout is the longest the chat client waits for the next stream line.
// Zero disables the limit.
func (c ChatConfig) Timeout() (time.Duration, error) {
	if c.ReadTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.ReadTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid read_timeout %q: %w", c.ReadTimeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("read_timeout must not be negative, got %s", d)
	}
	return d, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
