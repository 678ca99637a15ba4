// Package anthropic is the client for the hosted completion API behind
// stride's coaching conversations.
//
// # Operations
//
//   - Complete: single-turn helper wrapping a prompt in a one-message
//     conversation
//   - CompleteConversation: sends ordered history, returns the
//     concatenated reply text, stop reason and token usage
//   - Stream: opens a server-sent-event stream of text deltas
//
// # Streaming
//
// Stream returns a lazy, single-pass *Stream consumed with Recv until
// io.EOF. Only "data: "-prefixed lines are considered; the literal [DONE]
// payload ends the sequence, unparseable events are skipped, and only
// content_block_delta events carrying a text_delta produce output. Close
// always releases the connection, so a caller abandoning a stream early
// does not leak it.
//
// # Retry and Timeouts
//
// Non-streaming calls retry exactly once on a 5xx status, delayed by
// 2^attempt seconds. No other status is retried and streaming calls are
// never retried by this package. Every attempt is bounded by a 30 second
// timeout.
//
// # Errors
//
// Failures map onto a closed taxonomy: ErrMissingCredential,
// ErrInvalidCredential, RateLimitError, HTTPError, ErrNoConnection,
// ErrTimeout, DecodeError and UnexpectedResponseError. A missing
// credential is detected before any network attempt.
//
// Clients are constructed explicitly and injected; tests substitute
// httptest servers via Config.BaseURL and fakes via CredentialSource.
package anthropic
