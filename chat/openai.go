package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sashabaranov/go-openai"
)

// OpenAITransport streams from an OpenAI-compatible /chat/completions
// endpoint (Ollama serves one under /v1).
type OpenAITransport struct {
	client      *openai.Client
	ReadTimeout time.Duration
}

func NewOpenAITransport(baseURL, apiKey string, readTimeout time.Duration) *OpenAITransport {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	return &OpenAITransport{
		client:      openai.NewClientWithConfig(cfg),
		ReadTimeout: readTimeout,
	}
}

func (t *OpenAITransport) Stream(ctx context.Context, req Request, emit func(Fragment)) error {
	msgs := make([]openai.ChatCompletionMessage, len(req.Messages))
	for i, m := range req.Messages {
		msgs[i] = openai.ChatCompletionMessage{Role: string(m.Role), Content: m.Content}
	}

	ctx, idle := startIdleTimer(ctx, t.ReadTimeout)
	defer idle.Stop()

	stream, err := t.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:    req.Model,
		Messages: msgs,
		Stream:   true,
	})
	if err != nil {
		return idle.wrap(err)
	}
	defer stream.Close()

	for {
		resp, err := stream.Recv()
		idle.Reset()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			var apiErr *openai.APIError
			if errors.As(err, &apiErr) {
				return fmt.Errorf("%w: %s", ErrServer, apiErr.Message)
			}
			return idle.wrap(err)
		}
		for _, c := range resp.Choices {
			if c.Index != 0 {
				continue
			}
			emit(Fragment{
				Content:    c.Delta.Content,
				HasContent: true,
				Done:       c.FinishReason != "",
			})
		}
	}
}
