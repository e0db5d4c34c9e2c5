package transcript

import (
	"time"

	"github.com/google/uuid"
)

// Role tags a conversation message author.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// FinalStatus is the outcome a turn settles with.
type FinalStatus string

const (
	FinalSuccess FinalStatus = "success"
	FinalError   FinalStatus = "error"
)

// Message is one settled or in-progress conversation entry. At most one
// message has IsStreaming set, and it is always the last element of the
// list. User messages carry a single text block and never stream.
type Message struct {
	ID          string
	Role        Role
	Blocks      []Block
	IsStreaming bool

	// Failed marks an assistant turn that settled via an error event.
	// Its partial blocks remain visible.
	Failed bool

	Timestamp time.Time
}

// Conversation owns the finalized message list and the accumulator for
// the turn in progress. DisplayMessages is the only read model; callers
// never re-interpret raw events.
type Conversation struct {
	messages []Message
	acc      *Accumulator
	now      func() time.Time
}

// NewConversation returns an empty conversation backed by acc.
func NewConversation(acc *Accumulator) *Conversation {
	return &Conversation{acc: acc, now: time.Now}
}

// AddUserMessage appends a settled user message holding the prompt.
func (c *Conversation) AddUserMessage(content string) {
	c.messages = append(c.messages, Message{
		ID:        uuid.NewString(),
		Role:      RoleUser,
		Blocks:    []Block{&TextBlock{Content: content}},
		Timestamp: c.now(),
	})
}

// StartAssistantMessage appends an empty streaming assistant message.
// Any previously streaming message is settled first so the single
// streaming-message invariant holds even on malformed streams.
func (c *Conversation) StartAssistantMessage() {
	if c.HasOpenAssistant() {
		c.Finalize(FinalError)
	}

	c.messages = append(c.messages, Message{
		ID:          uuid.NewString(),
		Role:        RoleAssistant,
		IsStreaming: true,
		Timestamp:   c.now(),
	})
}

// HasOpenAssistant reports whether the last message is an assistant
// message still streaming.
func (c *Conversation) HasOpenAssistant() bool {
	if len(c.messages) == 0 {
		return false
	}
	last := c.messages[len(c.messages)-1]

	return last.Role == RoleAssistant && last.IsStreaming
}

// LastUserContent returns the content of the last message if it is a
// user message, and "" otherwise. Used by replay to avoid re-adding a
// prompt that is already the natural predecessor.
func (c *Conversation) LastUserContent() string {
	if len(c.messages) == 0 {
		return ""
	}
	last := c.messages[len(c.messages)-1]
	if last.Role != RoleUser || len(last.Blocks) == 0 {
		return ""
	}
	if text, ok := last.Blocks[0].(*TextBlock); ok {
		return text.Content
	}

	return ""
}

// DisplayMessages returns the message list for rendering. The streaming
// message, when present, has its blocks overlaid from the live
// accumulator snapshot. The projection is pure: it never mutates state
// and is safe to call on every render.
func (c *Conversation) DisplayMessages() []Message {
	out := make([]Message, len(c.messages))
	for i, msg := range c.messages {
		out[i] = msg
		out[i].Blocks = cloneBlocks(msg.Blocks)
	}

	if n := len(out); n > 0 && out[n-1].IsStreaming {
		out[n-1].Blocks = c.acc.Snapshot()
	}

	return out
}

// Finalize settles the streaming message: copies the accumulator's final
// snapshot into it, clears IsStreaming, and resets the accumulator. It
// is the only transition between live and settled representations, and
// it is atomic from the caller's point of view - no projection can
// observe a settled message with stale blocks. A no-op when nothing is
// streaming.
func (c *Conversation) Finalize(status FinalStatus) {
	if !c.HasOpenAssistant() {
		return
	}

	last := &c.messages[len(c.messages)-1]
	last.Blocks = c.acc.Snapshot()
	last.IsStreaming = false
	last.Failed = status == FinalError
	c.acc.Reset()
}

// DropStreaming discards the streaming message and its accumulated
// blocks without finalizing. Used on cancellation so no message is left
// permanently streaming.
func (c *Conversation) DropStreaming() {
	if !c.HasOpenAssistant() {
		return
	}

	c.messages = c.messages[:len(c.messages)-1]
	c.acc.Reset()
}

// Hydrate replaces the message list wholesale with already-finalized
// messages reconstructed from durable history.
func (c *Conversation) Hydrate(msgs []Message) {
	c.messages = make([]Message, len(msgs))
	copy(c.messages, msgs)
}

// Clear drops all messages and resets the accumulator.
func (c *Conversation) Clear() {
	c.messages = nil
	c.acc.Reset()
}

// Len reports the number of messages, including the streaming one.
func (c *Conversation) Len() int { return len(c.messages) }
