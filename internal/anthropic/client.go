// ABOUTME: HTTP client for the hosted completion API
// ABOUTME: Builds requests, decodes responses, and applies the single-retry policy

package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

const (
	defaultBaseURL = "https://api.anthropic.com/v1/messages"
	apiVersion     = "2023-06-01"

	// attemptTimeout bounds any single network attempt. For streaming
	// calls it bounds the time to response headers; the stream itself
	// lives under the caller's context.
	attemptTimeout = 30 * time.Second

	// maxRetries is the retry budget for 5xx responses on non-streaming
	// calls. Streaming calls are never retried here - re-invoking is the
	// caller's decision.
	maxRetries = 1
)

// CredentialSource supplies the API credential. The concrete provider
// lives in internal/credentials; tests substitute fakes.
type CredentialSource interface {
	Get() (string, error)
}

// Doer performs a single HTTP request. *http.Client satisfies it; tests
// use httptest servers or direct fakes.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config carries optional client settings. The zero value selects the
// hosted API endpoint, a plain HTTP client, and the default timeout.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient Doer
}

// Client talks to the hosted completion API. Construct one per
// deployment and inject it; there is no package-level shared instance.
type Client struct {
	baseURL string
	timeout time.Duration
	http    Doer
	creds   CredentialSource
	logger  *slog.Logger
}

// NewClient creates a completion client. Pass nil logger for default.
func NewClient(creds CredentialSource, cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = attemptTimeout
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: cfg.BaseURL,
		timeout: cfg.Timeout,
		http:    cfg.HTTPClient,
		creds:   creds,
		logger:  logger.With("component", "anthropic"),
	}
}

// Complete performs a single-turn exchange by wrapping the prompt in a
// one-message conversation.
func (c *Client) Complete(ctx context.Context, prompt string, opts Options) (*Completion, error) {
	return c.CompleteConversation(ctx, []Message{{Role: RoleUser, Content: prompt}}, opts)
}

// CompleteConversation sends the full message history, preserving role and
// order exactly as given, and returns the concatenated text of the reply.
// A 5xx response is retried exactly once after a backoff delay.
func (c *Client) CompleteConversation(ctx context.Context, history []Message, opts Options) (*Completion, error) {
	key, err := c.credential()
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(buildRequest(history, opts, false))
	if err != nil {
		return nil, &DecodeError{Err: err}
	}

	for attempt := 0; ; attempt++ {
		completion, err := c.attempt(ctx, key, body)
		if err == nil {
			return completion, nil
		}
		if attempt >= maxRetries || !isServerError(err) {
			return nil, err
		}

		// 2^attempt seconds before resubmitting the identical request
		delay := time.Duration(1<<attempt) * time.Second
		c.logger.Warn("server error, retrying", "attempt", attempt, "delay", delay, "error", err)
		select {
		case <-ctx.Done():
			return nil, classifyTransportError(ctx.Err())
		case <-time.After(delay):
		}
	}
}

// attempt performs one non-streaming request bounded by the client timeout.
func (c *Client) attempt(ctx context.Context, key string, body []byte) (*Completion, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := c.newRequest(attemptCtx, key, body)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.statusError(resp)
	}

	var decoded messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, &DecodeError{Err: err}
	}

	var text string
	for _, block := range decoded.Content {
		text += block.text()
	}

	c.logger.Debug("completion received",
		"model", decoded.Model,
		"stop_reason", decoded.StopReason,
		"input_tokens", decoded.Usage.InputTokens,
		"output_tokens", decoded.Usage.OutputTokens,
	)

	return &Completion{
		Text:       text,
		StopReason: decoded.StopReason,
		Model:      decoded.Model,
		Usage:      decoded.Usage,
	}, nil
}

// credential fetches the API key, mapping absence or emptiness to
// ErrMissingCredential before any network attempt is made.
func (c *Client) credential() (string, error) {
	key, err := c.creds.Get()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMissingCredential, err)
	}
	if key == "" {
		return "", ErrMissingCredential
	}
	return key, nil
}

func (c *Client) newRequest(ctx context.Context, key string, body []byte) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, &UnexpectedResponseError{Detail: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", key)
	req.Header.Set("anthropic-version", apiVersion)
	return req, nil
}

// statusError maps a non-2xx response to the error taxonomy, best-effort
// parsing the body for a human-readable message.
func (c *Client) statusError(resp *http.Response) error {
	message := errorMessage(resp.Body)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		if message != "" {
			return fmt.Errorf("%w: %s", ErrInvalidCredential, message)
		}
		return ErrInvalidCredential
	case resp.StatusCode == http.StatusTooManyRequests:
		return &RateLimitError{RetryAfter: retryAfterHint(resp)}
	default:
		return &HTTPError{StatusCode: resp.StatusCode, Message: message}
	}
}

// errorMessage extracts error.message from an API error body. Absence of
// a parseable message is not itself an error.
func errorMessage(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 64*1024))
	if err != nil {
		return ""
	}
	var decoded errorResponse
	if err := json.Unmarshal(data, &decoded); err != nil {
		return ""
	}
	return decoded.Error.Message
}

func retryAfterHint(resp *http.Response) time.Duration {
	header := resp.Header.Get("Retry-After")
	if header == "" {
		return 0
	}
	seconds, err := strconv.Atoi(header)
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

func isServerError(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode >= 500
}

func buildRequest(history []Message, opts Options, stream bool) messagesRequest {
	return messagesRequest{
		Model:     opts.Model,
		MaxTokens: opts.MaxTokens,
		System:    opts.System,
		Messages:  history,
		Stream:    stream,
	}
}
