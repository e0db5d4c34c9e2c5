package testutil

import "github.com/johnathanchiu/componentize/pkg/builder/events"

// Event constructors for building test streams concisely. Sequence
// numbers are assigned by Sequenced.

// TurnStart builds a turn_start event.
func TurnStart() events.Event {
	return events.Event{Type: events.TypeTurnStart, Payload: events.TurnStart{}}
}

// Thinking builds a thinking_delta event.
func Thinking(content string) events.Event {
	return events.Event{Type: events.TypeThinkingDelta, Payload: events.ThinkingDelta{Content: content}}
}

// Text builds a text_delta event.
func Text(content string) events.Event {
	return events.Event{Type: events.TypeTextDelta, Payload: events.TextDelta{Content: content}}
}

// Tool builds a tool_call event.
func Tool(id, name string) events.Event {
	return events.Event{Type: events.TypeToolCall, Payload: events.ToolCall{ToolUseID: id, ToolName: name}}
}

// ToolOK builds a success tool_result event.
func ToolOK(id, result string) events.Event {
	return events.Event{Type: events.TypeToolResult, Payload: events.ToolResult{
		ToolUseID: id, Status: events.ResultSuccess, Result: result,
	}}
}

// ToolFail builds an error tool_result event.
func ToolFail(id, result string) events.Event {
	return events.Event{Type: events.TypeToolResult, Payload: events.ToolResult{
		ToolUseID: id, Status: events.ResultError, Result: result,
	}}
}

// ToolOKWith builds a success tool_result embedding a canvas component.
func ToolOKWith(id string, comp events.CanvasComponent) events.Event {
	return events.Event{Type: events.TypeToolResult, Payload: events.ToolResult{
		ToolUseID: id, Status: events.ResultSuccess, Component: &comp,
	}}
}

// UserMsg builds a replay-only user_message event.
func UserMsg(content string) events.Event {
	return events.Event{Type: events.TypeUserMessage, Payload: events.UserMessage{Content: content}}
}

// Complete builds a complete event.
func Complete(content string) events.Event {
	return events.Event{Type: events.TypeComplete, Payload: events.Complete{Content: content}}
}

// ErrorEvent builds an error event.
func ErrorEvent(message string) events.Event {
	return events.Event{Type: events.TypeError, Payload: events.Error{Message: message}}
}

// Sequenced assigns consecutive sequence numbers starting at first.
func Sequenced(first int64, evts ...events.Event) []events.Event {
	out := make([]events.Event, len(evts))
	for i, evt := range evts {
		evt.Sequence = first + int64(i)
		out[i] = evt
	}

	return out
}
