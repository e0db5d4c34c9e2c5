package events

import (
	"errors"
	"fmt"
	"time"
)

// Parsing errors. A *ParseError wraps one of these sentinels so callers
// can drop malformed events without aborting the stream.
var (
	ErrMissingField = errors.New("missing required field")
	ErrInvalidType  = errors.New("invalid field type")
	ErrUnknownType  = errors.New("unknown event type")
)

// ParseError reports a malformed event. The handler for a corrupt event
// drops it and continues with the next one.
type ParseError struct {
	Type Type
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q event: %v", e.Type, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parse converts a raw decoded JSON object into a typed Event. It routes
// on the type field and validates the payload shape for that type.
// Payload fields are read from a nested "data" object when present,
// falling back to the top level.
func Parse(raw map[string]any) (Event, error) {
	typ, err := requireString(raw, "type")
	if err != nil {
		return Event{}, &ParseError{Err: err}
	}

	evt := Event{
		Sequence:  extractInt64(raw, "seq"),
		Type:      Type(typ),
		Timestamp: extractTime(raw, "timestamp"),
	}

	data := payloadMap(raw)

	payload, err := parsePayload(evt.Type, data)
	if err != nil {
		return Event{}, &ParseError{Type: evt.Type, Err: err}
	}
	evt.Payload = payload

	return evt, nil
}

func parsePayload(typ Type, data map[string]any) (Payload, error) {
	switch typ {
	case TypeSessionStart:
		return SessionStart{
			Mode:  optionalString(data, "mode"),
			Label: optionalString(data, "label"),
		}, nil

	case TypeUserMessage:
		content, err := requireString(data, "content")
		if err != nil {
			return nil, err
		}

		return UserMessage{Content: content}, nil

	case TypeTurnStart:
		return TurnStart{}, nil

	case TypeThinkingDelta:
		content, err := requireString(data, "content")
		if err != nil {
			return nil, err
		}

		return ThinkingDelta{Content: content}, nil

	case TypeTextDelta:
		content, err := requireString(data, "content")
		if err != nil {
			return nil, err
		}

		return TextDelta{Content: content}, nil

	case TypeToolCall:
		return parseToolCall(data)

	case TypeToolResult:
		return parseToolResult(data)

	case TypeTodoUpdate:
		todos, err := parseTodos(data, "todos", true)
		if err != nil {
			return nil, err
		}

		return TodoUpdate{Todos: todos}, nil

	case TypeCanvasUpdate:
		comp, err := parseComponent(data, "canvasComponent")
		if err != nil {
			return nil, err
		}
		if comp == nil {
			return nil, fmt.Errorf("%w: canvasComponent", ErrMissingField)
		}

		return CanvasUpdate{Component: *comp}, nil

	case TypeComplete:
		return Complete{Content: optionalString(data, "content")}, nil

	case TypeError:
		msg, err := requireString(data, "message")
		if err != nil {
			return nil, err
		}

		return Error{Message: msg}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, typ)
	}
}

func parseToolCall(data map[string]any) (Payload, error) {
	id, err := requireString(data, "toolUseId")
	if err != nil {
		return nil, err
	}
	name, err := requireString(data, "toolName")
	if err != nil {
		return nil, err
	}

	input, _ := data["toolInput"].(map[string]any)

	return ToolCall{ToolUseID: id, ToolName: name, ToolInput: input}, nil
}

func parseToolResult(data map[string]any) (Payload, error) {
	id, err := requireString(data, "toolUseId")
	if err != nil {
		return nil, err
	}

	status := ResultStatus(optionalString(data, "status"))
	if !status.valid() {
		return nil, fmt.Errorf("%w: status %q", ErrInvalidType, status)
	}

	comp, err := parseComponent(data, "canvasComponent")
	if err != nil {
		return nil, err
	}
	todos, err := parseTodos(data, "todos", false)
	if err != nil {
		return nil, err
	}

	return ToolResult{
		ToolUseID: id,
		Status:    status,
		Result:    optionalString(data, "result"),
		Component: comp,
		Todos:     todos,
	}, nil
}

// parseComponent decodes an embedded canvas component. Returns nil when
// the key is absent.
func parseComponent(data map[string]any, key string) (*CanvasComponent, error) {
	rawComp, ok := data[key]
	if !ok || rawComp == nil {
		return nil, nil
	}
	m, ok := rawComp.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s must be object, got %T", ErrInvalidType, key, rawComp)
	}

	name, err := requireString(m, "componentName")
	if err != nil {
		return nil, err
	}

	comp := &CanvasComponent{
		ID:            optionalString(m, "id"),
		ComponentName: name,
		Code:          optionalString(m, "code"),
	}

	if pos, ok := m["position"].(map[string]any); ok {
		comp.Position = Position{
			X: extractFloat(pos, "x"),
			Y: extractFloat(pos, "y"),
		}
	}
	if size, ok := m["size"].(map[string]any); ok {
		comp.Size = &Size{
			Width:  extractFloat(size, "width"),
			Height: extractFloat(size, "height"),
		}
	}

	return comp, nil
}

// parseTodos decodes a task-list snapshot. When required is false an
// absent key yields a nil slice; an empty list is a valid snapshot.
func parseTodos(data map[string]any, key string, required bool) ([]TodoItem, error) {
	rawTodos, ok := data[key]
	if !ok || rawTodos == nil {
		if required {
			return nil, fmt.Errorf("%w: %s", ErrMissingField, key)
		}

		return nil, nil
	}
	list, ok := rawTodos.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s must be array, got %T", ErrInvalidType, key, rawTodos)
	}

	todos := make([]TodoItem, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: todo entry must be object, got %T", ErrInvalidType, item)
		}
		content, err := requireString(m, "content")
		if err != nil {
			return nil, err
		}
		status := TodoStatus(optionalString(m, "status"))
		if status == "" {
			status = TodoPending
		}
		todos = append(todos, TodoItem{Content: content, Status: status})
	}

	return todos, nil
}

// payloadMap returns the nested data object when present, otherwise the
// raw map itself. The server nests payload fields under "data"; tests and
// older emitters use flat objects.
func payloadMap(raw map[string]any) map[string]any {
	if data, ok := raw["data"].(map[string]any); ok {
		return data
	}

	return raw
}

func requireString(data map[string]any, key string) (string, error) {
	val, ok := data[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMissingField, key)
	}
	str, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be string, got %T", ErrInvalidType, key, val)
	}

	return str, nil
}

func optionalString(data map[string]any, key string) string {
	str, _ := data[key].(string)

	return str
}

func extractInt64(data map[string]any, key string) int64 {
	switch v := data[key].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	default:
		return 0
	}
}

func extractFloat(data map[string]any, key string) float64 {
	switch v := data[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	default:
		return 0
	}
}

func extractTime(data map[string]any, key string) time.Time {
	str, ok := data[key].(string)
	if !ok {
		return time.Time{}
	}
	ts, err := time.Parse(time.RFC3339Nano, str)
	if err != nil {
		return time.Time{}
	}

	return ts
}
