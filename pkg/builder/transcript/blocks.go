// Package transcript reconstructs an ordered conversation from the
// generation event stream.
//
// It has two halves. The Accumulator consumes deltas and tool events in
// order and incrementally builds the Blocks of the turn in progress. The
// Conversation owns the finalized message list and overlays the live
// accumulator snapshot onto the last message for rendering.
package transcript

import "github.com/johnathanchiu/componentize/pkg/builder/events"

// Block is one contiguous unit of assistant output - discriminated union
// of reasoning text, response text, and tool invocations. Blocks preserve
// strict emission order.
type Block interface {
	block()
}

// ThinkingBlock holds reasoning text. Rendered collapsible; may be
// withheld from the tool-call-result timeline.
type ThinkingBlock struct {
	Content string
}

func (*ThinkingBlock) block() {}

// TextBlock holds user-facing response text.
type TextBlock struct {
	Content string
}

func (*TextBlock) block() {}

// ToolCallBlock holds a single tool invocation and its eventual outcome.
type ToolCallBlock struct {
	ID     string
	Name   string
	Args   map[string]any
	Status events.ToolStatus
	Result string
}

func (*ToolCallBlock) block() {}

// cloneBlocks deep-copies a block list so snapshots cannot alias live
// accumulator state.
func cloneBlocks(blocks []Block) []Block {
	if blocks == nil {
		return nil
	}

	out := make([]Block, len(blocks))
	for i, b := range blocks {
		switch v := b.(type) {
		case *ThinkingBlock:
			c := *v
			out[i] = &c
		case *TextBlock:
			c := *v
			out[i] = &c
		case *ToolCallBlock:
			c := *v
			out[i] = &c
		}
	}

	return out
}
