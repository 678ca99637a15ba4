// Package store provides persistent storage for stride using SQLite.
//
// # Data Models
//
//   - Goal: a learning target with an embedded, ordered list of Metrics
//   - Conversation: a chat session, optionally attached to a goal
//   - Message: a single user or assistant turn within a conversation
//   - TokenUsage: token counts per completion exchange
//
// Metrics never get their own table; they are serialized into the goal row
// as a JSON array. Conversation.GoalID and Message.ConversationID are soft
// references with no enforced referential integrity.
//
// # Concurrency
//
// SQLiteStore funnels every operation - open, migration, CRUD, close -
// through a single worker goroutine bound to the one open handle. Callers
// block until their operation completes, operations finish in submission
// order, and a caller always observes its own prior writes. This is a
// single-process, single-writer design; it provides no cross-process
// locking.
//
// # Migrations
//
// The schema version lives in PRAGMA user_version. Pending migrations are
// applied in strictly increasing order on open, each immediately followed
// by recording the new version. Reopening an already-migrated file is a
// no-op.
//
// # Error Handling
//
// CRUD failures wrap the sentinels ErrNotFound, ErrConnectionFailed,
// ErrQueryFailed, ErrInsertFailed, ErrUpdateFailed and ErrDeleteFailed.
// Schema and serialization failures surface as the typed MigrationError,
// EncodeError and DecodeError. Deletes of absent rows are not errors.
//
// All methods accept context.Context; storage operations themselves are
// not subject to timeouts.
package store
