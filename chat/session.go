package chat

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

type State int

const (
	AwaitingInput State = iota
	Streaming
	Idle
	Terminated
)

func (s State) String() string {
	switch s {
	case AwaitingInput:
		return "awaiting_input"
	case Streaming:
		return "streaming"
	case Idle:
		return "idle"
	case Terminated:
		return "terminated"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

var exitTokens = []string{"exit", "quit", "0", "q"}

// IsExit reports whether text is one of the exit tokens, ignoring case and
// surrounding whitespace.
func IsExit(text string) bool {
	text = strings.TrimSpace(text)
	for _, tok := range exitTokens {
		if strings.EqualFold(text, tok) {
			return true
		}
	}
	return false
}

const maxLine = 1 << 20

var errLineTooLong = fmt.Errorf("input line longer than %d bytes", maxLine)

// readLine returns the next line including its newline. A line over maxLine
// is consumed and discarded and errLineTooLong is returned in its place.
func readLine(r *bufio.Reader) (string, error) {
	var (
		line    []byte
		tooLong bool
	)
	for {
		frag, err := r.ReadSlice('\n')
		if !tooLong {
			if len(line)+len(frag) > maxLine {
				tooLong, line = true, nil
			} else {
				line = append(line, frag...)
			}
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if err != nil && (!errors.Is(err, io.EOF) || (len(line) == 0 && !tooLong)) {
			return "", err
		}
		break
	}
	if tooLong {
		return "", errLineTooLong
	}
	return string(line), nil
}

// Session runs the interactive loop: one line in, one streamed reply out,
// until an exit token or the end of input.
type Session struct {
	client *Client
	conv   *Conversation
	out    io.Writer
	state  State
	// Banner prints the greeting before the first prompt.
	Banner bool
}

func NewSession(client *Client, out io.Writer) *Session {
	return &Session{
		client: client,
		conv:   NewConversation(),
		out:    out,
		state:  AwaitingInput,
	}
}

func (s *Session) Conversation() *Conversation { return s.conv }

func (s *Session) State() State { return s.state }

func (s *Session) Run(ctx context.Context, in io.Reader) error {
	if s.Banner {
		fmt.Fprintln(s.out, "ChatBot Begins!😎")
		fmt.Fprintln(s.out, "The API can be slow. If no error thrown, pls be patient.")
		fmt.Fprintln(s.out, "type 'exit' to end chat")
	}

	r := bufio.NewReader(in)

	for {
		s.state = AwaitingInput
		fmt.Fprint(s.out, "You: ")
		line, err := readLine(r)
		if errors.Is(err, errLineTooLong) {
			fmt.Fprintf(s.out, "\nerror: %v\n\n", err)
			continue
		}
		if err != nil {
			s.state = Terminated
			fmt.Fprintln(s.out)
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		text := strings.TrimSpace(line)
		if text == "" {
			continue
		}
		if IsExit(text) {
			s.state = Terminated
			return nil
		}

		s.state = Streaming
		fmt.Fprint(s.out, "Bot: ")
		_, err = s.client.Submit(ctx, s.conv, text)
		s.state = Idle
		if err != nil {
			fmt.Fprintf(s.out, "\nerror: %v", err)
		}
		fmt.Fprint(s.out, "\n\n")
	}
}
