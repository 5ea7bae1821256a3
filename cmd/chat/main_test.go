package main

import (
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-rag-chat/chat"
	"go-rag-chat/config"
)

func newFlagCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{}
	cmd.Flags().StringP("model", "m", "", "")
	cmd.Flags().String("endpoint", "", "")
	cmd.Flags().String("protocol", "", "")
	require.NoError(t, cmd.Flags().Parse(args))
	return cmd
}

func TestNewTransport_OllamaDefault(t *testing.T) {
	cfg := config.Default()
	applyFlags(newFlagCmd(t), cfg)

	tr, err := newTransport(cfg)
	require.NoError(t, err)
	ollama, ok := tr.(*chat.OllamaTransport)
	require.True(t, ok, "got %T", tr)
	assert.Equal(t, "http://localhost:11434/api/chat", ollama.Endpoint)
	assert.Equal(t, 2*time.Minute, ollama.ReadTimeout)
	assert.Equal(t, "llama3.1:8b", cfg.Chat.Model)
}

func TestNewTransport_OpenAIProtocolFlag(t *testing.T) {
	cfg := config.Default()
	applyFlags(newFlagCmd(t, "--protocol", "openai", "-m", "qwen2"), cfg)

	tr, err := newTransport(cfg)
	require.NoError(t, err)
	assert.IsType(t, &chat.OpenAITransport{}, tr)
	assert.Equal(t, "qwen2", cfg.Chat.Model)
	assert.Equal(t, "http://localhost:11434/v1", cfg.Chat.EndpointURL())
}

func TestNewTransport_EndpointFlag(t *testing.T) {
	cfg := config.Default()
	applyFlags(newFlagCmd(t, "--endpoint", "http://gpu-box:11434/api/chat"), cfg)

	tr, err := newTransport(cfg)
	require.NoError(t, err)
	assert.Equal(t, "http://gpu-box:11434/api/chat", tr.(*chat.OllamaTransport).Endpoint)
}

func TestNewTransport_RejectsMismatch(t *testing.T) {
	cfg := config.Default()
	applyFlags(newFlagCmd(t, "--protocol", "openai", "--endpoint", "http://localhost:11434/api/chat"), cfg)

	_, err := newTransport(cfg)
	assert.Error(t, err)
}
