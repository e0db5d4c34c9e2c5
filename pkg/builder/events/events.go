// Package events defines the wire model for the generation event stream.
//
// Every record read from an event source is an Event: a sequence number,
// a type tag from a closed set, a timestamp, and a typed payload. Nothing
// downstream of this package inspects transport framing.
package events

import "time"

// Type identifies an event variant. The set is closed; unknown types are
// rejected by Parse.
type Type string

const (
	TypeSessionStart  Type = "session_start"
	TypeUserMessage   Type = "user_message"
	TypeTurnStart     Type = "turn_start"
	TypeThinkingDelta Type = "thinking_delta"
	TypeTextDelta     Type = "text_delta"
	TypeToolCall      Type = "tool_call"
	TypeToolResult    Type = "tool_result"
	TypeTodoUpdate    Type = "todo_update"
	TypeCanvasUpdate  Type = "canvas_update"
	TypeComplete      Type = "complete"
	TypeError         Type = "error"
)

// Event is one immutable record from the stream.
type Event struct {
	// Sequence is monotonically increasing and unique within a turn-stream.
	Sequence int64

	// Type discriminates the payload.
	Type Type

	// Timestamp is when the server emitted the event.
	Timestamp time.Time

	// Payload holds the type-specific data.
	Payload Payload
}

// Payload is a discriminated union of event payloads.
type Payload interface {
	payload()
}

// SessionStart marks a session boundary. UI divider only, no state change.
type SessionStart struct {
	Mode  string
	Label string
}

func (SessionStart) payload() {}

// UserMessage re-adds a user message. Emitted only during replay, never
// during a fresh live stream.
type UserMessage struct {
	Content string
}

func (UserMessage) payload() {}

// TurnStart opens a new assistant turn.
type TurnStart struct{}

func (TurnStart) payload() {}

// ThinkingDelta carries an incremental fragment of reasoning text.
type ThinkingDelta struct {
	Content string
}

func (ThinkingDelta) payload() {}

// TextDelta carries an incremental fragment of response text.
type TextDelta struct {
	Content string
}

func (TextDelta) payload() {}

// ToolCall announces a single tool invocation.
type ToolCall struct {
	ToolUseID string
	ToolName  string
	ToolInput map[string]any
}

func (ToolCall) payload() {}

// ResultStatus is the terminal outcome of a tool invocation.
type ResultStatus string

const (
	ResultSuccess ResultStatus = "success"
	ResultError   ResultStatus = "error"
)

// ToolResult carries the outcome of a tool invocation. It may embed a
// created or updated canvas component, or a task-list snapshot, as a
// structured side effect.
type ToolResult struct {
	ToolUseID string
	Status    ResultStatus
	Result    string

	// Component is set when the tool created or updated a canvas
	// component. Nil otherwise.
	Component *CanvasComponent

	// Todos is set when the tool produced a full task-list snapshot.
	Todos []TodoItem
}

func (ToolResult) payload() {}

// TodoUpdate is a legacy standalone task-list snapshot. Same semantics as
// the snapshot embedded on a ToolResult.
type TodoUpdate struct {
	Todos []TodoItem
}

func (TodoUpdate) payload() {}

// CanvasUpdate is a legacy standalone component mutation. Same semantics
// as the component embedded on a ToolResult.
type CanvasUpdate struct {
	Component CanvasComponent
}

func (CanvasUpdate) payload() {}

// Complete terminates the turn successfully with the final response text.
type Complete struct {
	Content string
}

func (Complete) payload() {}

// Error terminates the turn with a failure message.
type Error struct {
	Message string
}

func (Error) payload() {}

// CanvasComponent describes a generated component and its placement on
// the canvas. ComponentName is the identity key for idempotent writes.
type CanvasComponent struct {
	ID            string   `json:"id,omitempty"`
	ComponentName string   `json:"componentName"`
	Code          string   `json:"code,omitempty"`
	Position      Position `json:"position"`
	Size          *Size    `json:"size,omitempty"`
}

// Position is a canvas placement in pixels.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is a canvas node extent in pixels.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// TodoStatus tracks a task-list entry state.
type TodoStatus string

const (
	TodoPending    TodoStatus = "pending"
	TodoInProgress TodoStatus = "in_progress"
	TodoCompleted  TodoStatus = "completed"
)

// TodoItem is one entry of a task-list snapshot.
type TodoItem struct {
	Content string     `json:"content"`
	Status  TodoStatus `json:"status"`
}

func (s ResultStatus) valid() bool {
	return s == ResultSuccess || s == ResultError
}

// ToolStatus is the lifecycle state of a tool invocation: pending until a
// result arrives, then terminal.
type ToolStatus string

const (
	ToolPending ToolStatus = "pending"
	ToolSuccess ToolStatus = "success"
	ToolError   ToolStatus = "error"
)

// ToolStatus maps a terminal result status onto the invocation lifecycle.
func (s ResultStatus) ToolStatus() ToolStatus {
	if s == ResultError {
		return ToolError
	}

	return ToolSuccess
}
