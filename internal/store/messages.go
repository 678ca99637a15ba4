// ABOUTME: CRUD operations for messages within a conversation
// ABOUTME: Inserting a message bumps the parent conversation's updated timestamp

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CreateMessage persists a new message and returns the stored copy. The
// parent conversation's updated timestamp is advanced within the same
// serialized operation.
func (s *SQLiteStore) CreateMessage(ctx context.Context, msg Message) (*Message, error) {
	if msg.ID != "" {
		return nil, fmt.Errorf("%w: message already has an id", ErrInsertFailed)
	}
	if msg.ConversationID == "" {
		return nil, fmt.Errorf("%w: message has no conversation id", ErrInsertFailed)
	}
	if msg.Role != RoleUser && msg.Role != RoleAssistant {
		return nil, fmt.Errorf("%w: invalid role %q", ErrInsertFailed, msg.Role)
	}

	msg.ID = uuid.New().String()
	msg.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)

	err := s.do(func(db *sql.DB) error {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("%w: beginning transaction: %v", ErrInsertFailed, err)
		}
		defer tx.Rollback()

		_, err = tx.ExecContext(ctx, `
			INSERT INTO messages (id, conversation_id, role, content, created_at)
			VALUES (?, ?, ?, ?, ?)
		`, msg.ID, msg.ConversationID, msg.Role, msg.Content, formatTimestamp(msg.CreatedAt))
		if err != nil {
			return fmt.Errorf("%w: inserting message: %v", ErrInsertFailed, err)
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE conversations SET updated_at = ? WHERE id = ?
		`, formatTimestamp(msg.CreatedAt), msg.ConversationID)
		if err != nil {
			return fmt.Errorf("%w: touching conversation: %v", ErrInsertFailed, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("%w: committing message: %v", ErrInsertFailed, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("created message", "id", msg.ID, "conversation_id", msg.ConversationID, "role", msg.Role)
	return &msg, nil
}

// ListMessages returns every message in a conversation ordered by creation
// time ascending, ties broken by identifier ascending.
func (s *SQLiteStore) ListMessages(ctx context.Context, conversationID string) ([]*Message, error) {
	var msgs []*Message
	err := s.do(func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx, `
			SELECT id, conversation_id, role, content, created_at
			FROM messages
			WHERE conversation_id = ?
			ORDER BY created_at ASC, id ASC
		`, conversationID)
		if err != nil {
			return fmt.Errorf("%w: querying messages: %v", ErrQueryFailed, err)
		}
		defer rows.Close()

		for rows.Next() {
			var msg Message
			var createdAt string
			if err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.Role, &msg.Content, &createdAt); err != nil {
				return fmt.Errorf("%w: scanning message: %v", ErrQueryFailed, err)
			}
			if msg.CreatedAt, err = parseTimestamp("created_at", createdAt); err != nil {
				return err
			}
			msgs = append(msgs, &msg)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("%w: iterating messages: %v", ErrQueryFailed, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

// UpdateMessageContent replaces a message's content. Used once per
// streamed reply, after the stream completes.
func (s *SQLiteStore) UpdateMessageContent(ctx context.Context, id, content string) error {
	if id == "" {
		return fmt.Errorf("%w: message has no id", ErrUpdateFailed)
	}

	return s.do(func(db *sql.DB) error {
		result, err := db.ExecContext(ctx, `UPDATE messages SET content = ? WHERE id = ?`, content, id)
		if err != nil {
			return fmt.Errorf("%w: updating message: %v", ErrUpdateFailed, err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("%w: updating message: %v", ErrUpdateFailed, err)
		}
		if affected == 0 {
			return fmt.Errorf("%w: message %s does not exist", ErrUpdateFailed, id)
		}
		return nil
	})
}

// DeleteMessage removes a message by ID. Used to roll back the placeholder
// of a failed streamed reply. Deleting an absent message is not an error.
func (s *SQLiteStore) DeleteMessage(ctx context.Context, id string) error {
	return s.do(func(db *sql.DB) error {
		if _, err := db.ExecContext(ctx, `DELETE FROM messages WHERE id = ?`, id); err != nil {
			return fmt.Errorf("%w: deleting message: %v", ErrDeleteFailed, err)
		}
		return nil
	})
}
