package chat

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

var (
	ErrEmptyInput        = errors.New("empty input")
	ErrConnection        = errors.New("connection error")
	ErrServer            = errors.New("server error")
	ErrStalled           = errors.New("stream stalled")
	ErrMalformedFragment = errors.New("malformed stream record")
)

// Fragment is one decoded line of a streamed reply.
type Fragment struct {
	Content string
	// HasContent reports whether the record carried message.content at all.
	HasContent bool
	Done       bool
}

// DecodeFragment parses one NDJSON record of an Ollama chat stream. Records
// with an "error" field are reported as ErrServer.
func DecodeFragment(line []byte) (Fragment, error) {
	if !gjson.ValidBytes(line) {
		return Fragment{}, ErrMalformedFragment
	}
	rec := gjson.ParseBytes(line)
	if e := rec.Get("error"); e.Exists() {
		return Fragment{}, fmt.Errorf("%w: %s", ErrServer, e.String())
	}
	content := rec.Get("message.content")
	return Fragment{
		Content:    content.String(),
		HasContent: content.Exists(),
		Done:       rec.Get("done").Bool(),
	}, nil
}
