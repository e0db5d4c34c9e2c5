// Package builder wires the event stream to conversation reconstruction
// for one project context.
//
// A Session owns the tool-call ledger, the block accumulator, the
// conversation, and the side-effect dispatcher for a single active
// project. Events flow through exactly one dispatch site, HandleEvent;
// UI layers read only the conversation projection and never
// re-interpret raw events.
package builder

import (
	"sync"

	"go.uber.org/zap"

	"github.com/johnathanchiu/componentize/pkg/builder/effects"
	"github.com/johnathanchiu/componentize/pkg/builder/events"
	"github.com/johnathanchiu/componentize/pkg/builder/ledger"
	"github.com/johnathanchiu/componentize/pkg/builder/transcript"
)

// Status is the generation state surfaced to the UI.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusStreaming Status = "streaming"
	StatusFailed    Status = "failed"
)

// Dependencies groups the collaborators a session needs.
type Dependencies struct {
	Dispatcher *effects.Dispatcher
	Logger     *zap.SugaredLogger
}

// Session holds the shared mutable state of one project context. Events
// are processed one at a time; the mutex only protects the projection
// and status reads that may come from another goroutine.
type Session struct {
	mu         sync.Mutex
	ledger     *ledger.Ledger
	acc        *transcript.Accumulator
	conv       *transcript.Conversation
	dispatcher *effects.Dispatcher
	logger     *zap.SugaredLogger
	status     Status
}

// NewSession creates an idle session with empty state.
func NewSession(deps Dependencies) *Session {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	dispatcher := deps.Dispatcher
	if dispatcher == nil {
		dispatcher = effects.NewDispatcher(effects.Dependencies{})
	}

	acc := transcript.NewAccumulator()

	return &Session{
		ledger:     ledger.New(),
		acc:        acc,
		conv:       transcript.NewConversation(acc),
		dispatcher: dispatcher,
		logger:     logger,
		status:     StatusIdle,
	}
}

// HandleEvent processes one event through the ledger, the accumulator,
// and the dispatcher, in that order, synchronously. It reports whether
// the event terminated the turn. isResume marks events re-delivered from
// a replay buffer; the only behavioral difference is on user_message
// (skip a prompt that is already the natural predecessor).
func (s *Session) HandleEvent(evt events.Event, isResume bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch p := evt.Payload.(type) {
	case events.SessionStart:
		// Divider only, no state change.

	case events.UserMessage:
		if !isResume {
			// Never emitted on a fresh live stream; drop defensively.
			return false
		}
		if s.conv.LastUserContent() != p.Content {
			s.conv.AddUserMessage(p.Content)
		}

	case events.TurnStart:
		if s.conv.HasOpenAssistant() && s.acc.Len() == 0 {
			// An open empty assistant message already waits for this
			// turn: a fresh generation pre-opens one before the stream
			// starts, and a hydrated resume may carry one. Continue
			// into it rather than settling it as a failed phantom.
			s.status = StatusStreaming

			return false
		}
		s.acc.Reset()
		s.conv.StartAssistantMessage()
		s.status = StatusStreaming

	case events.ThinkingDelta:
		s.acc.AppendThinking(p.Content)

	case events.TextDelta:
		s.acc.AppendText(p.Content)

	case events.ToolCall:
		if s.ledger.Record(p.ToolUseID, p.ToolName, p.ToolInput) {
			s.acc.OpenToolCall(p.ToolUseID, p.ToolName, p.ToolInput)
		}

	case events.ToolResult:
		status := p.Status.ToolStatus()
		if !s.ledger.Resolve(p.ToolUseID, status, p.Result) {
			// Unknown id or replayed duplicate; drop without touching
			// blocks or side effects.
			return false
		}
		s.acc.CloseToolCall(p.ToolUseID, status, p.Result)
		s.dispatcher.Apply(evt)

	case events.TodoUpdate, events.CanvasUpdate:
		s.dispatcher.Apply(evt)

	case events.Complete:
		// The final content restates text already streamed as deltas;
		// only use it when the turn streamed none.
		if p.Content != "" && !s.acc.HasText() {
			s.acc.AppendText(p.Content)
		}
		s.conv.Finalize(transcript.FinalSuccess)
		s.status = StatusIdle

		return true

	case events.Error:
		s.logger.Warnw("turn failed", "message", p.Message)
		s.conv.Finalize(transcript.FinalError)
		s.status = StatusFailed

		return true
	}

	return false
}

// AddUserMessage appends the user's prompt as a settled message.
func (s *Session) AddUserMessage(content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conv.AddUserMessage(content)
}

// StartAssistantMessage opens the streaming assistant message for a
// fresh generation request.
func (s *Session) StartAssistantMessage() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conv.StartAssistantMessage()
	s.status = StatusStreaming
}

// Hydrate replaces the conversation wholesale with messages
// reconstructed from durable history. Ledger and accumulator are reset
// first; the replay buffer is disjoint from disk history.
func (s *Session) Hydrate(msgs []transcript.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledger.Reset()
	s.acc.Reset()
	s.conv.Hydrate(msgs)
}

// Messages returns the conversation read model: settled messages plus
// the live overlay on the streaming one. Pure projection, safe to call
// on every render.
func (s *Session) Messages() []transcript.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.conv.DisplayMessages()
}

// ToolCalls returns the ledger snapshot in first-record order.
func (s *Session) ToolCalls() []ledger.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ledger.Snapshot()
}

// HasStreaming reports whether an assistant message is still streaming.
func (s *Session) HasStreaming() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.conv.HasOpenAssistant()
}

// Status reports the generation state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.status
}

// SetIdle marks generation idle. Used when a subscription degrades
// gracefully (expired buffer) rather than failing.
func (s *Session) SetIdle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = StatusIdle
}

// FinalizeError settles the streaming message with whatever partial
// blocks were accumulated and marks it failed. Partial content stays
// visible; an aborted turn is never silently discarded.
func (s *Session) FinalizeError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conv.Finalize(transcript.FinalError)
	s.status = StatusFailed
}

// Abort discards the streaming message without finalizing. Cancellation
// must never leave a message permanently streaming.
func (s *Session) Abort() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conv.DropStreaming()
	s.status = StatusIdle
}

// Reset clears the ledger and accumulator. Must run before accepting
// events for an unrelated turn; mixing two logical turns in one
// accumulator is an invariant violation.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledger.Reset()
	s.acc.Reset()
}

// Clear drops all conversation state, the ledger, and the accumulator.
// Used when closing a project.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledger.Reset()
	s.conv.Clear()
	s.status = StatusIdle
}
