// Package transport implements the event source port over HTTP
// Server-Sent Events. It handles framing only; event semantics live in
// the builder packages.
package transport

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/johnathanchiu/componentize/pkg/builder/events"
	"github.com/johnathanchiu/componentize/pkg/builder/ports"
)

const dataPrefix = "data: "

// SSEClient talks to the component-builder API. It implements
// ports.EventSource.
type SSEClient struct {
	baseURL string
	client  *http.Client
	logger  *zap.SugaredLogger
}

var _ ports.EventSource = (*SSEClient)(nil)

// NewSSEClient creates a client for the API at baseURL. A nil
// httpClient falls back to http.DefaultClient.
func NewSSEClient(baseURL string, httpClient *http.Client, logger *zap.SugaredLogger) *SSEClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	return &SSEClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  httpClient,
		logger:  logger,
	}
}

// Generate starts a live generation turn.
func (c *SSEClient) Generate(ctx context.Context, projectID, prompt string) (ports.EventStream, error) {
	body, err := json.Marshal(map[string]string{"prompt": prompt})
	if err != nil {
		return nil, fmt.Errorf("marshal prompt: %w", err)
	}

	url := fmt.Sprintf("%s/api/projects/%s/generate-stream", c.baseURL, projectID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	return c.open(req)
}

// Replay requests the current buffer starting at offset. A 404 is the
// server's explicit no-buffer signal; a 410 means the window expired.
func (c *SSEClient) Replay(ctx context.Context, projectID string, offset int64) (ports.EventStream, error) {
	url := fmt.Sprintf("%s/api/projects/%s/events?offset=%d", c.baseURL, projectID, offset)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")

	return c.open(req)
}

func (c *SSEClient) open(req *http.Request) (ports.EventStream, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("connect stream: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		// Stream follows.
	case http.StatusNotFound:
		_ = resp.Body.Close()

		return nil, ports.ErrNoBuffer
	case http.StatusGone:
		_ = resp.Body.Close()

		return nil, ports.ErrBufferExpired
	default:
		_ = resp.Body.Close()

		return nil, fmt.Errorf("stream request failed: HTTP %d", resp.StatusCode)
	}

	return newStream(resp.Body, c.logger), nil
}

type readResult struct {
	evt events.Event
	err error
}

// stream reads data-prefixed JSON lines from the response body. A
// dedicated reader goroutine feeds a channel so Next stays cancellable;
// Close unblocks the reader by closing the body.
type stream struct {
	body      io.ReadCloser
	results   chan readResult
	logger    *zap.SugaredLogger
	closeOnce sync.Once
}

func newStream(body io.ReadCloser, logger *zap.SugaredLogger) *stream {
	s := &stream{
		body:    body,
		results: make(chan readResult),
		logger:  logger,
	}
	go s.readLoop()

	return s
}

func (s *stream) readLoop() {
	defer close(s.results)

	scanner := bufio.NewScanner(s.body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, dataPrefix) {
			continue
		}

		var raw map[string]any
		if err := json.Unmarshal([]byte(line[len(dataPrefix):]), &raw); err != nil {
			s.logger.Warnw("dropping undecodable event line", "error", err)

			continue
		}

		evt, err := events.Parse(raw)
		if err != nil {
			// Malformed events are dropped; one corrupt event must not
			// end the stream.
			s.logger.Warnw("dropping malformed event", "error", err)

			continue
		}

		s.results <- readResult{evt: evt}
	}

	if err := scanner.Err(); err != nil {
		s.results <- readResult{err: fmt.Errorf("read stream: %w", err)}

		return
	}
	s.results <- readResult{err: io.EOF}
}

// Next returns the next event, io.EOF at end of stream, or the
// transport error that ended it.
func (s *stream) Next(ctx context.Context) (events.Event, error) {
	select {
	case <-ctx.Done():
		return events.Event{}, ctx.Err()
	case res, ok := <-s.results:
		if !ok {
			return events.Event{}, io.EOF
		}

		return res.evt, res.err
	}
}

// Close aborts the stream. Safe to call multiple times.
func (s *stream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.body.Close()
		// Drain so the reader goroutine can exit.
		go func() {
			for range s.results { //nolint:revive
			}
		}()
	})

	return err
}
