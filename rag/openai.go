package rag

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// NewOpenAIClient builds an API client. An empty baseURL keeps the SDK
// default.
func NewOpenAIClient(apiKey, baseURL string, opts ...option.RequestOption) openai.Client {
	o := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		o = append(o, option.WithBaseURL(baseURL))
	}
	return openai.NewClient(append(o, opts...)...)
}

type OpenAIEmbedder struct {
	client openai.Client
	model  string
}

func NewOpenAIEmbedder(client openai.Client, model string) *OpenAIEmbedder {
	return &OpenAIEmbedder{client: client, model: model}
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, texts ...string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, fmt.Errorf("embeddings request failed: %w", err)
	}

	out := make([][]float64, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || int(d.Index) >= len(out) {
			return nil, fmt.Errorf("embedding index %d out of range", d.Index)
		}
		out[d.Index] = d.Embedding
	}
	for i, v := range out {
		if v == nil {
			return nil, fmt.Errorf("missing embedding for input %d", i)
		}
	}
	return out, nil
}

type OpenAIGenerator struct {
	client      openai.Client
	model       string
	temperature float64
}

func NewOpenAIGenerator(client openai.Client, model string, temperature float64) *OpenAIGenerator {
	return &OpenAIGenerator{client: client, model: model, temperature: temperature}
}

func (g *OpenAIGenerator) Generate(ctx context.Context, question string, sources []Chunk) (string, error) {
	completion, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(buildPrompt(question, sources)),
		},
		Model:       openai.ChatModel(g.model),
		Temperature: openai.Float(g.temperature),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return completion.Choices[0].Message.Content, nil
}
