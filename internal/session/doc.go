// Package session provides high-level conversation management services.
//
// # Overview
//
// The session package sits between the CLI commands and the lower layers,
// coordinating the store and the completion client so that every exchange
// with the model is persisted.
//
// # Service
//
// The Service coordinates session operations:
//
//	svc := session.New(store, completer, opts, logger)
//
// Key operations:
//
//   - StartConversation(ctx, goalID, title): Open a new conversation
//   - Send(ctx, conversationID, text, onDelta): Send a turn and stream the reply
//   - History(ctx, conversationID): Retrieve a conversation's messages
//   - Conversations(ctx, goalID): List conversations
//
// # Persistence Order
//
// The governing principle is record first, then act:
//
//  1. The user message is saved before the model is called
//  2. An empty assistant placeholder is inserted to fix the reply's
//     position in history
//  3. The reply streams chunk by chunk to the caller's onDelta
//  4. On success the placeholder is filled with the full reply text and
//     token usage is recorded
//  5. On failure the placeholder is rolled back; the user message stays
//
// This guarantees a conversation never contains an assistant reply whose
// user turn was lost, and never retains an empty reply from a failed
// stream.
//
// # Goal Attachment
//
// Conversations may reference a goal. The service verifies the goal
// exists at creation time; the store itself keeps the reference soft.
package session
