package transcript

import "github.com/johnathanchiu/componentize/pkg/builder/events"

// openKind marks which text block kind, if any, the next delta of the
// same kind may concatenate onto.
type openKind int

const (
	openNone openKind = iota
	openThinking
	openText
)

// Accumulator incrementally builds the ordered Blocks of the turn in
// progress. Two consecutive deltas of the same kind with no intervening
// tool call concatenate into one Block; a tool call is a hard block
// boundary on both sides, so the next delta after one always starts a
// fresh Block.
//
// Not safe for concurrent use; the event loop is the only writer.
type Accumulator struct {
	blocks []Block
	open   openKind
}

// NewAccumulator returns an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Reset discards all accumulated blocks. Called on turn_start and after
// finalize.
func (a *Accumulator) Reset() {
	a.blocks = nil
	a.open = openNone
}

// AppendThinking adds a reasoning fragment, concatenating onto the open
// thinking block when one exists.
func (a *Accumulator) AppendThinking(delta string) {
	if a.open == openThinking {
		a.blocks[len(a.blocks)-1].(*ThinkingBlock).Content += delta

		return
	}

	a.blocks = append(a.blocks, &ThinkingBlock{Content: delta})
	a.open = openThinking
}

// AppendText adds a response fragment, concatenating onto the open text
// block when one exists.
func (a *Accumulator) AppendText(delta string) {
	if a.open == openText {
		a.blocks[len(a.blocks)-1].(*TextBlock).Content += delta

		return
	}

	a.blocks = append(a.blocks, &TextBlock{Content: delta})
	a.open = openText
}

// OpenToolCall pushes a new pending tool-call block and closes the open
// text kind, forcing the next delta to start fresh. The caller is
// responsible for ledger dedup before opening.
func (a *Accumulator) OpenToolCall(id, name string, args map[string]any) {
	a.blocks = append(a.blocks, &ToolCallBlock{
		ID:     id,
		Name:   name,
		Args:   args,
		Status: events.ToolPending,
	})
	a.open = openNone
}

// CloseToolCall updates the block for id in place with its terminal
// status and result. It never appends. A close whose open was not
// observed locally (replay window starting mid-tool-call) finds no block
// and reports false; the ledger still carries the record.
func (a *Accumulator) CloseToolCall(id string, status events.ToolStatus, result string) bool {
	for i := len(a.blocks) - 1; i >= 0; i-- {
		tc, ok := a.blocks[i].(*ToolCallBlock)
		if !ok || tc.ID != id {
			continue
		}
		if tc.Status != events.ToolPending {
			// Already closed; a replayed result must not overwrite.
			return false
		}

		tc.Status = status
		tc.Result = result

		return true
	}

	return false
}

// HasText reports whether any response-text block has been accumulated.
func (a *Accumulator) HasText() bool {
	for _, b := range a.blocks {
		if _, ok := b.(*TextBlock); ok {
			return true
		}
	}

	return false
}

// Snapshot returns a deep copy of the blocks accumulated so far.
func (a *Accumulator) Snapshot() []Block {
	return cloneBlocks(a.blocks)
}

// Len reports the number of blocks accumulated so far.
func (a *Accumulator) Len() int { return len(a.blocks) }
