package ports

import "github.com/johnathanchiu/componentize/pkg/builder/events"

// ComponentRegistry stores generated component source keyed by component
// name. Ensure is an upsert - "make component X exist with this code" -
// which is what makes dispatcher writes idempotent under replay.
type ComponentRegistry interface {
	Ensure(name, code string) error
}

// CanvasStore holds component placements keyed by component name. Place
// is an upsert with the same idempotency contract as Ensure.
type CanvasStore interface {
	Place(comp events.CanvasComponent) error
}

// TaskBoard holds the task-list snapshot for the active turn. Replace is
// a full-snapshot overwrite, last write wins, inherently idempotent.
type TaskBoard interface {
	Replace(todos []events.TodoItem)
}

// HistoryRecord is one entry of the durable transcript: role-tagged, with
// an assistant record optionally carrying accumulated thinking text and
// its completed tool calls.
type HistoryRecord struct {
	Role      string            `json:"role"`
	Content   string            `json:"content"`
	Thinking  string            `json:"thinking,omitempty"`
	Failed    bool              `json:"failed,omitempty"`
	ToolCalls []HistoryToolCall `json:"toolCalls,omitempty"`
}

// HistoryToolCall is a completed tool invocation as persisted to durable
// history.
type HistoryToolCall struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Args   map[string]any `json:"args,omitempty"`
	Status string         `json:"status"`
	Result string         `json:"result,omitempty"`
}

// HistoryStore loads the server-persisted transcript, authoritative once
// a turn is committed.
type HistoryStore interface {
	Load(projectID string) ([]HistoryRecord, error)
}
