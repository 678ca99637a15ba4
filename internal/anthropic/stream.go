// ABOUTME: Server-sent-event streaming for the completion API
// ABOUTME: Stream lazily decodes text deltas line by line and owns the connection

package anthropic

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"
	"time"
)

const (
	ssePrefix    = "data: "
	doneSentinel = "[DONE]"

	// Delta payloads are small; this caps a single SSE line.
	maxLineSize = 1 << 20
)

// Stream is a lazy, single-pass sequence of text deltas from one
// streaming completion. It is not restartable and must be consumed by at
// most one goroutine. Close always releases the underlying connection and
// is safe to call at any point, including mid-iteration.
type Stream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	cancel  context.CancelFunc
	closed  bool
	usage   Usage
}

// Stream opens a streaming completion for the given history. Deltas are
// read with Recv; the caller must Close the stream when done. Streaming
// calls are not retried - re-invoking after a failure is the caller's
// decision.
func (c *Client) Stream(ctx context.Context, history []Message, opts Options) (*Stream, error) {
	key, err := c.credential()
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(buildRequest(history, opts, true))
	if err != nil {
		return nil, &DecodeError{Err: err}
	}

	// Bound the attempt up to response headers; once the stream is open
	// its lifetime belongs to the caller's context.
	streamCtx, cancel := context.WithCancel(ctx)
	headerTimer := time.AfterFunc(c.timeout, cancel)

	req, err := c.newRequest(streamCtx, key, body)
	if err != nil {
		cancel()
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.http.Do(req)
	timedOut := !headerTimer.Stop()
	if err != nil {
		cancel()
		if timedOut {
			return nil, ErrTimeout
		}
		return nil, classifyTransportError(err)
	}
	if timedOut {
		resp.Body.Close()
		cancel()
		return nil, ErrTimeout
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := c.statusError(resp)
		resp.Body.Close()
		cancel()
		return nil, statusErr
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	c.logger.Debug("stream opened", "model", opts.Model)
	return &Stream{
		body:    resp.Body,
		scanner: scanner,
		cancel:  cancel,
	}, nil
}

// Recv returns the next non-empty text delta in arrival order. It returns
// io.EOF when the server signals completion, after which the stream is
// closed. Any other error also leaves the stream closed.
func (s *Stream) Recv() (string, error) {
	if s.closed {
		return "", io.EOF
	}

	for s.scanner.Scan() {
		line := s.scanner.Text()

		// Blank heartbeats and non-data lines carry no payload
		if !strings.HasPrefix(line, ssePrefix) {
			continue
		}
		payload := strings.TrimPrefix(line, ssePrefix)

		if payload == doneSentinel {
			s.Close()
			return "", io.EOF
		}

		// Events that fail to parse (pings, unknown shapes) are skipped
		var event streamEvent
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			continue
		}

		switch event.Type {
		case "content_block_delta":
			if event.Delta.Type == "text_delta" && event.Delta.Text != "" {
				return event.Delta.Text, nil
			}
		case "message_start":
			s.usage.InputTokens = event.Message.Usage.InputTokens
		case "message_delta":
			if event.Usage.OutputTokens > 0 {
				s.usage.OutputTokens = event.Usage.OutputTokens
			}
		case "message_stop":
			s.Close()
			return "", io.EOF
		}
		// Block boundaries, pings and the rest carry no output
	}

	err := s.scanner.Err()
	s.Close()
	if err != nil {
		return "", classifyTransportError(err)
	}
	return "", io.EOF
}

// Usage reports the token counts observed so far. The counts are complete
// once Recv has returned io.EOF.
func (s *Stream) Usage() Usage {
	return s.usage
}

// Close releases the underlying connection. It is idempotent.
func (s *Stream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.cancel()
	return s.body.Close()
}
