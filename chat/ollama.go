package chat

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/tidwall/gjson"
)

// OllamaTransport speaks the NDJSON streaming protocol of Ollama's
// /api/chat endpoint.
type OllamaTransport struct {
	Endpoint    string
	ReadTimeout time.Duration
	HTTPClient  *http.Client
	Log         log.Interface
}

type ollamaRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

func NewOllamaTransport(endpoint string, readTimeout time.Duration) *OllamaTransport {
	return &OllamaTransport{
		Endpoint:    endpoint,
		ReadTimeout: readTimeout,
		HTTPClient:  &http.Client{},
		Log:         log.Log,
	}
}

func (t *OllamaTransport) logger() log.Interface {
	if t.Log == nil {
		return log.Log
	}
	return t.Log
}

func (t *OllamaTransport) Stream(ctx context.Context, req Request, emit func(Fragment)) error {
	body, err := json.Marshal(ollamaRequest{
		Model:    req.Model,
		Messages: req.Messages,
		Stream:   true,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	ctx, idle := startIdleTimer(ctx, t.ReadTimeout)
	defer idle.Stop()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	client := t.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		return idle.wrap(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		detail := gjson.GetBytes(msg, "error").String()
		if detail == "" {
			detail = strings.TrimSpace(string(msg))
		}
		return fmt.Errorf("%w: status %d: %s", ErrConnection, resp.StatusCode, detail)
	}

	reader := bufio.NewReader(resp.Body)
	for {
		line, readErr := reader.ReadBytes('\n')
		idle.Reset()

		if line = bytes.TrimSpace(line); len(line) > 0 {
			frag, err := DecodeFragment(line)
			switch {
			case errors.Is(err, ErrMalformedFragment):
				t.logger().WithField("line", string(line)).Warn("skipping malformed stream record")
			case err != nil:
				return err
			default:
				emit(frag)
			}
		}

		if readErr == io.EOF {
			return nil
		}
		if readErr != nil {
			return idle.wrap(readErr)
		}
	}
}
