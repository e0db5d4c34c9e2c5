// Package testutil provides fakes and event fixtures for hermetic
// testing of the reconstruction pipeline.
package testutil

import (
	"context"
	"io"
	"sync"

	"github.com/johnathanchiu/componentize/pkg/builder/events"
	"github.com/johnathanchiu/componentize/pkg/builder/ports"
)

// FakeStream replays a fixed batch of events, then returns FinalErr
// (io.EOF when unset).
type FakeStream struct {
	mu       sync.Mutex
	events   []events.Event
	FinalErr error
	closed   bool
}

// NewFakeStream creates a stream that yields evts in order.
func NewFakeStream(evts ...events.Event) *FakeStream {
	return &FakeStream{events: evts}
}

// Next pops the next queued event.
func (f *FakeStream) Next(ctx context.Context) (events.Event, error) {
	if err := ctx.Err(); err != nil {
		return events.Event{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.events) == 0 {
		if f.FinalErr != nil {
			return events.Event{}, f.FinalErr
		}

		return events.Event{}, io.EOF
	}

	evt := f.events[0]
	f.events = f.events[1:]

	return evt, nil
}

// Close marks the stream closed.
func (f *FakeStream) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true

	return nil
}

// Closed reports whether Close was called.
func (f *FakeStream) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.closed
}

// FakeSource scripts event source behavior per call.
type FakeSource struct {
	GenerateFunc func(projectID, prompt string) (ports.EventStream, error)
	ReplayFunc   func(projectID string, offset int64) (ports.EventStream, error)

	mu          sync.Mutex
	replayCalls []int64
}

// Generate invokes GenerateFunc, or returns ErrNoBuffer when unset.
func (f *FakeSource) Generate(_ context.Context, projectID, prompt string) (ports.EventStream, error) {
	if f.GenerateFunc == nil {
		return nil, ports.ErrNoBuffer
	}

	return f.GenerateFunc(projectID, prompt)
}

// Replay records the requested offset and invokes ReplayFunc, or
// returns ErrNoBuffer when unset.
func (f *FakeSource) Replay(_ context.Context, projectID string, offset int64) (ports.EventStream, error) {
	f.mu.Lock()
	f.replayCalls = append(f.replayCalls, offset)
	f.mu.Unlock()

	if f.ReplayFunc == nil {
		return nil, ports.ErrNoBuffer
	}

	return f.ReplayFunc(projectID, offset)
}

// ReplayOffsets returns the offsets of all replay requests so far.
func (f *FakeSource) ReplayOffsets() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]int64(nil), f.replayCalls...)
}

// MemRegistry is an in-memory ports.ComponentRegistry tracking write
// counts per component.
type MemRegistry struct {
	mu     sync.Mutex
	Code   map[string]string
	Writes map[string]int
	Err    error
}

// NewMemRegistry returns an empty registry fake.
func NewMemRegistry() *MemRegistry {
	return &MemRegistry{Code: make(map[string]string), Writes: make(map[string]int)}
}

// Ensure upserts a component, counting the write.
func (m *MemRegistry) Ensure(name, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	m.Code[name] = code
	m.Writes[name]++

	return nil
}

// Len reports the number of distinct components stored.
func (m *MemRegistry) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.Code)
}

// MemCanvas is an in-memory ports.CanvasStore keyed by component name.
type MemCanvas struct {
	mu    sync.Mutex
	Items map[string]events.CanvasComponent
}

// NewMemCanvas returns an empty canvas fake.
func NewMemCanvas() *MemCanvas {
	return &MemCanvas{Items: make(map[string]events.CanvasComponent)}
}

// Place upserts a placement.
func (m *MemCanvas) Place(comp events.CanvasComponent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Items[comp.ComponentName] = comp

	return nil
}

// Len reports the number of distinct placements.
func (m *MemCanvas) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.Items)
}

// MemTasks is an in-memory ports.TaskBoard recording snapshots.
type MemTasks struct {
	mu       sync.Mutex
	Snapshot []events.TodoItem
	Replaces int
}

// Replace installs a full snapshot.
func (m *MemTasks) Replace(todos []events.TodoItem) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Snapshot = append([]events.TodoItem(nil), todos...)
	m.Replaces++
}

// MemHistory is an in-memory ports.HistoryStore.
type MemHistory struct {
	Records map[string][]ports.HistoryRecord
	Err     error
}

// Load returns the scripted records for a project.
func (m *MemHistory) Load(projectID string) ([]ports.HistoryRecord, error) {
	if m.Err != nil {
		return nil, m.Err
	}

	return m.Records[projectID], nil
}
