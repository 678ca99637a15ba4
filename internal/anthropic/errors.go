// ABOUTME: Error taxonomy for the completion client
// ABOUTME: Maps transport and protocol failures to a closed set of typed errors

package anthropic

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"
	"time"
)

// Sentinel errors for completion client failures. Wrapped variants carry
// detail from the transport or the API error body.
var (
	// ErrMissingCredential is returned before any network attempt when no
	// API credential is available or the stored credential is empty.
	ErrMissingCredential = errors.New("no API credential configured")

	// ErrInvalidCredential is returned when the API rejects the credential
	// (HTTP 401).
	ErrInvalidCredential = errors.New("API credential rejected")

	// ErrNoConnection is returned when the API cannot be reached or the
	// connection is lost mid-request.
	ErrNoConnection = errors.New("cannot reach completion API")

	// ErrTimeout is returned when a single network attempt exceeds the
	// client timeout.
	ErrTimeout = errors.New("completion request timed out")
)

// RateLimitError is returned on HTTP 429. RetryAfter carries the server's
// hint when present, zero otherwise.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
	}
	return "rate limited"
}

// HTTPError is returned for any non-2xx status not covered by a more
// specific error, including 5xx responses after the retry budget is spent.
// Message is the human-readable message from the error body, if one could
// be parsed.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("API returned status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API returned status %d", e.StatusCode)
}

// DecodeError is returned when the transport succeeds but the body cannot
// be parsed as the expected shape.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return fmt.Sprintf("decoding response: %v", e.Err) }
func (e *DecodeError) Unwrap() error { return e.Err }

// UnexpectedResponseError is returned for transport failures that carry no
// structured HTTP status and map to no other error kind.
type UnexpectedResponseError struct {
	Detail string
}

func (e *UnexpectedResponseError) Error() string {
	return fmt.Sprintf("unexpected response: %s", e.Detail)
}

// classifyTransportError maps an error from the HTTP round trip into the
// client's error taxonomy.
func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return fmt.Errorf("%w: %v", ErrNoConnection, err)
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return fmt.Errorf("%w: %v", ErrNoConnection, err)
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %v", ErrNoConnection, err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return &UnexpectedResponseError{Detail: err.Error()}
}
