// Package ledger tracks the lifecycle of tool invocations by identifier.
//
// Deduplication by tool-use id is the single mechanism that makes the
// whole reconstruction subsystem safe to replay: a second tool_call with
// a previously seen id is a no-op, and at most one terminal result is
// recorded per id. No event handler mutates tool-call state except
// through this package.
package ledger

import "github.com/johnathanchiu/componentize/pkg/builder/events"

// Record is one tool invocation and its eventual outcome. Ids are never
// reused within a turn-stream.
type Record struct {
	ID     string
	Name   string
	Args   map[string]any
	Status events.ToolStatus
	Result string
}

// Ledger holds one Record per unique id for the lifetime of a turn.
// It is not safe for concurrent use; the event loop is the only writer.
type Ledger struct {
	records map[string]*Record
	order   []string
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{records: make(map[string]*Record)}
}

// Record registers a tool invocation as pending. It is idempotent: if the
// id is already present the call is a no-op and Record reports false.
func (l *Ledger) Record(id, name string, args map[string]any) bool {
	if _, ok := l.records[id]; ok {
		return false
	}

	l.records[id] = &Record{
		ID:     id,
		Name:   name,
		Args:   args,
		Status: events.ToolPending,
	}
	l.order = append(l.order, id)

	return true
}

// Resolve transitions a pending record to a terminal status and attaches
// the result. Unknown ids are dropped; an already-terminal record is left
// untouched so a replayed result cannot overwrite the first one.
func (l *Ledger) Resolve(id string, status events.ToolStatus, result string) bool {
	rec, ok := l.records[id]
	if !ok {
		return false
	}
	if rec.Status != events.ToolPending {
		return false
	}

	rec.Status = status
	rec.Result = result

	return true
}

// Get returns a copy of the record for id.
func (l *Ledger) Get(id string) (Record, bool) {
	rec, ok := l.records[id]
	if !ok {
		return Record{}, false
	}

	return *rec, true
}

// Snapshot returns copies of all records in the order they were first
// recorded.
func (l *Ledger) Snapshot() []Record {
	out := make([]Record, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, *l.records[id])
	}

	return out
}

// Len reports the number of unique invocations seen.
func (l *Ledger) Len() int { return len(l.order) }

// Reset discards all records. Called when switching project context.
func (l *Ledger) Reset() {
	l.records = make(map[string]*Record)
	l.order = nil
}
