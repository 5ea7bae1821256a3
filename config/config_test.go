package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"LOG_LEVEL", "OPENAI_API_KEY", "OPENAI_BASE_URL", "OPENAI_EMBEDDING_MODEL", "OPENAI_CHAT_MODEL",
		"RAG_DOCUMENT", "RAG_QUERY", "RAG_EMBEDDER", "RAG_TOP_K",
		"CHAT_ENDPOINT", "CHAT_MODEL", "CHAT_PROTOCOL", "CHAT_READ_TIMEOUT", "CHAT_API_KEY",
		"SERVER_ADDR",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "data.txt", cfg.RAG.DocumentPath)
	assert.Equal(t, "What is RAG?", cfg.RAG.Query)
	assert.Equal(t, 200, cfg.RAG.ChunkSize)
	assert.Equal(t, 20, cfg.RAG.ChunkOverlap)
	assert.Equal(t, 2, cfg.RAG.TopK)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.ChatModel)
	assert.Equal(t, "http://localhost:11434/api/chat", cfg.Chat.EndpointURL())
	assert.Equal(t, "llama3.1:8b", cfg.Chat.Model)
	assert.Equal(t, "ollama", cfg.Chat.Protocol)
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
rag:
  document: notes.txt
  top_k: 4
chat:
  model: mistral
  read_timeout: 30s
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))

	t.Setenv("CHAT_MODEL", "qwen2")
	t.Setenv("RAG_TOP_K", "3")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "notes.txt", cfg.RAG.DocumentPath)
	assert.Equal(t, 3, cfg.RAG.TopK)
	assert.Equal(t, "qwen2", cfg.Chat.Model)
	// untouched sections keep their defaults
	assert.Equal(t, 200, cfg.RAG.ChunkSize)

	d, err := cfg.Chat.Timeout()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, d)
}

func TestLoad_InvalidTopK(t *testing.T) {
	clearEnv(t)
	t.Setenv("RAG_TOP_K", "two")

	_, err := Load("")
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	const key = "GO_RAG_CHAT_DOTENV_TEST"
	os.Unsetenv(key)
	t.Cleanup(func() { os.Unsetenv(key) })

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(key+"=sk-from-dotenv\n"), 0o600))

	require.NoError(t, LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env")))
	assert.Equal(t, "sk-from-dotenv", os.Getenv(key))
}

func TestLoadDotEnv_DoesNotOverride(t *testing.T) {
	t.Setenv("CHAT_MODEL", "from-shell")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("CHAT_MODEL=from-file\n"), 0o600))

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-shell", os.Getenv("CHAT_MODEL"))
}

func TestValidateRAG(t *testing.T) {
	cfg := Default()
	assert.ErrorIs(t, cfg.ValidateRAG(), ErrMissingAPIKey)

	cfg.OpenAI.APIKey = "sk-test"
	assert.NoError(t, cfg.ValidateRAG())

	cfg.RAG.ChunkOverlap = cfg.RAG.ChunkSize
	assert.Error(t, cfg.ValidateRAG())

	cfg = Default()
	cfg.RAG.Embedder = "simple"
	assert.NoError(t, cfg.ValidateRAG(), "simple embedder needs no credentials")

	cfg.RAG.TopK = 0
	assert.Error(t, cfg.ValidateRAG())
}

func TestValidateChat(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.ValidateChat())

	cfg.Chat.Protocol = "grpc"
	assert.Error(t, cfg.ValidateChat())

	cfg = Default()
	cfg.Chat.ReadTimeout = "soon"
	assert.Error(t, cfg.ValidateChat())
}

func TestChatEndpoint_FollowsProtocol(t *testing.T) {
	cfg := Default()
	assert.Equal(t, OllamaEndpoint, cfg.Chat.EndpointURL())

	cfg.Chat.Protocol = "openai"
	assert.Equal(t, "http://localhost:11434/v1", cfg.Chat.EndpointURL())
	assert.NoError(t, cfg.ValidateChat())

	cfg.Chat.Endpoint = "http://gpu-box:8000/v1"
	assert.Equal(t, "http://gpu-box:8000/v1", cfg.Chat.EndpointURL())
	assert.NoError(t, cfg.ValidateChat())
}

func TestValidateChat_EndpointProtocolMismatch(t *testing.T) {
	cfg := Default()
	cfg.Chat.Protocol = "openai"
	cfg.Chat.Endpoint = "http://localhost:11434/api/chat"
	assert.ErrorContains(t, cfg.ValidateChat(), "Ollama chat URL")

	cfg = Default()
	cfg.Chat.Endpoint = "http://localhost:11434/v1/"
	assert.ErrorContains(t, cfg.ValidateChat(), "OpenAI-compatible")
}
