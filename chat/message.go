package chat

import "github.com/google/uuid"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of the transcript.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Conversation is the transcript of one chat session. It lives as long as
// the process and is only mutated between turns.
type Conversation struct {
	ID       string
	messages []Message
}

func NewConversation() *Conversation {
	return &Conversation{ID: uuid.NewString()}
}

func (c *Conversation) Append(role Role, content string) {
	c.messages = append(c.messages, Message{Role: role, Content: content})
}

// Messages returns a copy of the transcript in chronological order.
func (c *Conversation) Messages() []Message {
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

func (c *Conversation) Len() int {
	return len(c.messages)
}

// truncate drops everything after the first n messages.
func (c *Conversation) truncate(n int) {
	if n < len(c.messages) {
		c.messages = c.messages[:n]
	}
}
