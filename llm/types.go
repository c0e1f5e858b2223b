package llm

import (
	"context"
	"encoding/json"
)

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message represents a single turn in a conversation.
// This is provider-neutral; provider clients re-map roles for the wire.
type Message struct {
	Role    Role
	Content string
}

// NewMessage creates a message with the given role and text.
func NewMessage(role Role, text string) Message {
	return Message{Role: role, Content: text}
}

// ToJSON marshals a message for debugging/logging purposes.
func (m Message) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// Generation parameters shared by every provider. They are deliberately not
// configurable: short, moderately creative judge replies keep the game
// playable and the verdict marker near the front of the reply.
const (
	MaxReplyTokens = 150
	Temperature    = 0.7
)

// Request is a provider-neutral submission: the level transcript plus the
// judge persona's instruction. The instruction is carried out-of-band; each
// provider client decides whether it travels as a leading system entry or
// through a dedicated instruction channel.
type Request struct {
	Messages    []Message
	Instruction string
}

// Client issues one synchronous request to a single LLM provider and returns
// the reply text. Implementations perform no retries and no streaming, and
// must return a *Error for every failure so callers see one error surface.
type Client interface {
	Submit(ctx context.Context, req *Request) (string, error)
}
