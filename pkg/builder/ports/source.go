// Package ports defines the interfaces the reconstruction domain needs
// from infrastructure. These are contracts defined by domain needs, not
// by external systems; the SSE transport, the file-backed registry, and
// the test fakes all plug in behind them.
package ports

import (
	"context"
	"errors"

	"github.com/johnathanchiu/componentize/pkg/builder/events"
)

// Event source errors.
var (
	// ErrNoBuffer is the server's explicit "no live turn" signal on a
	// replay request. The resume controller falls back to durable
	// history only.
	ErrNoBuffer = errors.New("events: no replay buffer for project")

	// ErrBufferExpired indicates the replay window is gone (HTTP 404
	// equivalent mid-stream). Recoverable: durable history already
	// rendered is correct and sufficient.
	ErrBufferExpired = errors.New("events: replay buffer expired")
)

// EventStream is a pull-based sequence of events. Next blocks until the
// next event is available; this is the consumer's only yield point. The
// stream ends with io.EOF after the server closes it.
type EventStream interface {
	// Next returns the next event, io.EOF at end of stream, or a
	// transport error. It never returns the same event twice on one
	// stream; replay duplication happens across streams.
	Next(ctx context.Context) (events.Event, error)

	// Close aborts the stream. Safe to call multiple times.
	Close() error
}

// EventSource supplies ordered, monotonically numbered event sequences,
// either freshly produced by a live generation turn or replayed from a
// server-held buffer.
type EventSource interface {
	// Generate starts a live generation turn for a prompt and returns
	// its event stream.
	Generate(ctx context.Context, projectID, prompt string) (EventStream, error)

	// Replay requests re-delivery of the current buffer starting at
	// offset. The buffer holds only the turn not yet committed to
	// durable history, so offset 0 is the start of the in-progress
	// turn. Returns ErrNoBuffer when no live turn exists and
	// ErrBufferExpired when the window is gone.
	Replay(ctx context.Context, projectID string, offset int64) (EventStream, error)
}
