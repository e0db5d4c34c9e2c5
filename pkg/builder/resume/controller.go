// Package resume decides, on (re)initialization, whether to hydrate the
// conversation from durable history, subscribe to a live stream, or
// both, and reconciles the two without duplicate or missing messages.
package resume

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/johnathanchiu/componentize/pkg/builder"
	"github.com/johnathanchiu/componentize/pkg/builder/ports"
)

// Dependencies groups the collaborators a controller needs.
type Dependencies struct {
	Session *builder.Session
	Source  ports.EventSource
	History ports.HistoryStore
	Logger  *zap.SugaredLogger
}

// Controller owns the single active subscription for a project context.
// Starting a new subscription implicitly supersedes and cancels the
// prior one.
type Controller struct {
	session *builder.Session
	source  ports.EventSource
	history ports.HistoryStore
	logger  *zap.SugaredLogger

	mu     sync.Mutex
	cancel context.CancelFunc
	cursor Cursor
}

// NewController creates a controller. History may be nil when the
// project has no durable store.
func NewController(deps Dependencies) *Controller {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	return &Controller{
		session: deps.Session,
		source:  deps.Source,
		history: deps.History,
		logger:  logger,
	}
}

// Start performs a cold start: hydrate the full transcript from durable
// history, then ask the event source whether an in-progress turn exists.
// If one does, its buffer is replayed from offset zero - the buffer
// holds only the turn not yet committed to disk, so it is disjoint from
// history - and fed through the normal event path as a resume. Start
// blocks until the turn settles or the stream ends.
func (c *Controller) Start(ctx context.Context, projectID string) error {
	ctx = c.supersede(ctx)
	defer c.release()

	if err := c.hydrate(projectID); err != nil {
		return err
	}

	stream, err := c.source.Replay(ctx, projectID, 0)
	if err != nil {
		if errors.Is(err, ports.ErrNoBuffer) || errors.Is(err, ports.ErrBufferExpired) {
			// No live turn: durable history is the whole story.
			c.session.SetIdle()

			return nil
		}

		return fmt.Errorf("replay request: %w", err)
	}

	c.setCursor(Cursor{Mode: ModeReplay})

	return c.consume(ctx, projectID, stream, true)
}

// Generate starts a fresh generation turn: the prompt is appended and an
// assistant message opened immediately, then the live stream is
// consumed. Blocks until the turn settles.
func (c *Controller) Generate(ctx context.Context, projectID, prompt string) error {
	ctx = c.supersede(ctx)
	defer c.release()

	c.session.Reset()
	c.session.AddUserMessage(prompt)
	c.session.StartAssistantMessage()

	stream, err := c.source.Generate(ctx, projectID, prompt)
	if err != nil {
		c.session.FinalizeError()

		return fmt.Errorf("start generation: %w", err)
	}

	c.setCursor(Cursor{Mode: ModeLive})

	return c.consume(ctx, projectID, stream, false)
}

// Stop cancels the active subscription, if any. The streaming message,
// if one exists, is discarded rather than left streaming.
func (c *Controller) Stop() {
	c.mu.Lock()
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	c.session.Abort()
}

// Cursor returns how far the controller has consumed the source.
func (c *Controller) Cursor() Cursor {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.cursor
}

func (c *Controller) hydrate(projectID string) error {
	if c.history == nil {
		return nil
	}

	records, err := c.history.Load(projectID)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	c.session.Hydrate(messagesFromHistory(records))
	c.logger.Debugw("hydrated from durable history",
		"project", projectID, "messages", len(records))

	return nil
}

// maxReconnects bounds consecutive replay attempts after a stream
// drops without yielding an event in between.
const maxReconnects = 5

// consume pulls events one at a time. The next event is never requested
// until all synchronous processing of the current one has completed, so
// two events' effects cannot interleave. A dropped stream is replaced by
// a replay from the cursor offset; an expired buffer degrades
// gracefully, settling the transcript rendered so far and returning to
// idle without surfacing an error.
func (c *Controller) consume(
	ctx context.Context,
	projectID string,
	stream ports.EventStream,
	isResume bool,
) error {
	defer func() { _ = stream.Close() }()

	mode := ModeLive
	if isResume {
		mode = ModeReplay
	}

	retries := 0
	for {
		evt, err := stream.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) && !c.session.HasStreaming() {
				return nil
			}
			if retries == maxReconnects {
				c.degrade()

				return fmt.Errorf("stream did not recover after %d replays: %w", retries, err)
			}
			retries++

			offset := c.Cursor().Offset
			c.logger.Infow("stream interrupted, requesting replay",
				"project", projectID, "offset", offset, "attempt", retries)

			next, rerr := c.source.Replay(ctx, projectID, offset)
			if rerr != nil {
				if errors.Is(rerr, ports.ErrNoBuffer) || errors.Is(rerr, ports.ErrBufferExpired) {
					c.degrade()

					return nil
				}

				c.degrade()

				return fmt.Errorf("replay request: %w", rerr)
			}

			_ = stream.Close()
			stream = next
			mode = ModeReplay
			isResume = true

			continue
		}

		// The stream is delivering again.
		retries = 0

		c.advanceCursor(evt.Sequence, mode)

		if c.session.HandleEvent(evt, isResume) {
			return nil
		}
	}
}

// degrade settles a still-streaming message with its partial blocks and
// reports idle. Partial content stays visible.
func (c *Controller) degrade() {
	if c.session.HasStreaming() {
		c.session.FinalizeError()
	}
	c.session.SetIdle()
}

// supersede cancels any prior subscription and registers a new one.
func (c *Controller) supersede(ctx context.Context) context.Context {
	ctx, cancel := context.WithCancel(ctx)

	c.mu.Lock()
	prior := c.cancel
	c.cancel = cancel
	c.mu.Unlock()

	if prior != nil {
		prior()
	}

	return ctx
}

func (c *Controller) release() {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.mu.Unlock()
}

func (c *Controller) setCursor(cur Cursor) {
	c.mu.Lock()
	c.cursor = cur
	c.mu.Unlock()
}

func (c *Controller) advanceCursor(seq int64, mode Mode) {
	c.mu.Lock()
	c.cursor.advance(seq, mode)
	c.mu.Unlock()
}
