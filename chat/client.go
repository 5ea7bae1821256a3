package chat

import (
	"context"
	"io"
	"strings"

	"github.com/apex/log"
)

// Client submits turns of a conversation to a Transport and writes reply
// tokens to Out as they arrive.
type Client struct {
	Transport Transport
	Model     string
	Out       io.Writer
	Log       log.Interface
}

func NewClient(transport Transport, model string, out io.Writer) *Client {
	return &Client{
		Transport: transport,
		Model:     model,
		Out:       out,
		Log:       log.Log,
	}
}

// Submit appends text as a user turn, streams the reply and appends it as an
// assistant turn. On failure conv is restored to its state before the call.
func (c *Client) Submit(ctx context.Context, conv *Conversation, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyInput
	}

	mark := conv.Len()
	conv.Append(RoleUser, text)

	var reply strings.Builder
	fragments := 0
	err := c.Transport.Stream(ctx, Request{Model: c.Model, Messages: conv.Messages()}, func(f Fragment) {
		if !f.HasContent {
			return
		}
		fragments++
		reply.WriteString(f.Content)
		if c.Out != nil {
			io.WriteString(c.Out, f.Content)
		}
	})

	logger := c.Log
	if logger == nil {
		logger = log.Log
	}
	entry := logger.WithFields(log.Fields{
		"session":   conv.ID,
		"turn":      mark/2 + 1,
		"fragments": fragments,
	})
	if err != nil {
		conv.truncate(mark)
		entry.WithError(err).Warn("turn failed")
		return "", err
	}

	conv.Append(RoleAssistant, reply.String())
	entry.WithField("chars", reply.Len()).Debug("turn complete")
	return reply.String(), nil
}
