// ABOUTME: CRUD operations for conversations
// ABOUTME: A conversation's updated timestamp advances with every child message

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CreateConversation persists a new conversation and returns the stored
// copy. GoalID, if set, is stored as-is; the referenced goal is not
// required to exist.
func (s *SQLiteStore) CreateConversation(ctx context.Context, conv Conversation) (*Conversation, error) {
	if conv.ID != "" {
		return nil, fmt.Errorf("%w: conversation already has an id", ErrInsertFailed)
	}

	conv.ID = uuid.New().String()
	now := time.Now().UTC().Truncate(time.Microsecond)
	conv.CreatedAt = now
	conv.UpdatedAt = now

	err := s.do(func(db *sql.DB) error {
		query := `
			INSERT INTO conversations (id, goal_id, title, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?)
		`
		var goalID any
		if conv.GoalID != nil {
			goalID = *conv.GoalID
		}
		_, err := db.ExecContext(ctx, query,
			conv.ID,
			goalID,
			conv.Title,
			formatTimestamp(conv.CreatedAt),
			formatTimestamp(conv.UpdatedAt),
		)
		if err != nil {
			return fmt.Errorf("%w: inserting conversation: %v", ErrInsertFailed, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("created conversation", "id", conv.ID)
	return &conv, nil
}

// GetConversation retrieves a conversation by ID.
// Returns ErrNotFound if the conversation doesn't exist.
func (s *SQLiteStore) GetConversation(ctx context.Context, id string) (*Conversation, error) {
	var conv *Conversation
	err := s.do(func(db *sql.DB) error {
		row := db.QueryRowContext(ctx, `
			SELECT id, goal_id, title, created_at, updated_at
			FROM conversations
			WHERE id = ?
		`, id)
		c, err := scanConversation(row)
		if err != nil {
			return err
		}
		conv = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return conv, nil
}

// ListConversations returns conversations most recently active first. A
// non-empty goalID restricts the result to that goal's conversations.
func (s *SQLiteStore) ListConversations(ctx context.Context, goalID string) ([]*Conversation, error) {
	query := `
		SELECT id, goal_id, title, created_at, updated_at
		FROM conversations
		ORDER BY updated_at DESC
	`
	var args []any
	if goalID != "" {
		query = `
			SELECT id, goal_id, title, created_at, updated_at
			FROM conversations
			WHERE goal_id = ?
			ORDER BY updated_at DESC
		`
		args = append(args, goalID)
	}

	var convs []*Conversation
	err := s.do(func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("%w: querying conversations: %v", ErrQueryFailed, err)
		}
		defer rows.Close()

		for rows.Next() {
			c, err := scanConversation(rows)
			if err != nil {
				return err
			}
			convs = append(convs, c)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("%w: iterating conversations: %v", ErrQueryFailed, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return convs, nil
}

// UpdateConversationTitle sets a conversation's title and refreshes its
// updated timestamp. The conversation must already be persisted.
func (s *SQLiteStore) UpdateConversationTitle(ctx context.Context, id, title string) error {
	if id == "" {
		return fmt.Errorf("%w: conversation has no id", ErrUpdateFailed)
	}

	return s.do(func(db *sql.DB) error {
		result, err := db.ExecContext(ctx, `
			UPDATE conversations SET title = ?, updated_at = ? WHERE id = ?
		`, title, formatTimestamp(time.Now().UTC().Truncate(time.Microsecond)), id)
		if err != nil {
			return fmt.Errorf("%w: updating conversation: %v", ErrUpdateFailed, err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("%w: updating conversation: %v", ErrUpdateFailed, err)
		}
		if affected == 0 {
			return fmt.Errorf("%w: conversation %s does not exist", ErrUpdateFailed, id)
		}
		return nil
	})
}

func scanConversation(row rowScanner) (*Conversation, error) {
	var conv Conversation
	var goalID sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(&conv.ID, &goalID, &conv.Title, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: scanning conversation: %v", ErrQueryFailed, err)
	}

	if goalID.Valid {
		conv.GoalID = &goalID.String
	}
	if conv.CreatedAt, err = parseTimestamp("created_at", createdAt); err != nil {
		return nil, err
	}
	if conv.UpdatedAt, err = parseTimestamp("updated_at", updatedAt); err != nil {
		return nil, err
	}
	return &conv, nil
}
