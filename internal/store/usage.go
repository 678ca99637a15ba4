// ABOUTME: Token usage tracking for completion exchanges
// ABOUTME: Stores per-message token counts and aggregates them per conversation

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RecordUsage stores the token counts of one completion exchange.
func (s *SQLiteStore) RecordUsage(ctx context.Context, usage TokenUsage) (*TokenUsage, error) {
	if usage.ID != "" {
		return nil, fmt.Errorf("%w: usage record already has an id", ErrInsertFailed)
	}

	usage.ID = uuid.New().String()
	usage.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)

	err := s.do(func(db *sql.DB) error {
		_, err := db.ExecContext(ctx, `
			INSERT INTO token_usage (id, conversation_id, message_id, model, input_tokens, output_tokens, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`,
			usage.ID,
			usage.ConversationID,
			nullString(usage.MessageID),
			usage.Model,
			usage.InputTokens,
			usage.OutputTokens,
			formatTimestamp(usage.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("%w: inserting usage: %v", ErrInsertFailed, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("recorded token usage",
		"id", usage.ID,
		"conversation_id", usage.ConversationID,
		"input_tokens", usage.InputTokens,
		"output_tokens", usage.OutputTokens,
	)
	return &usage, nil
}

// ConversationUsage returns the total input and output tokens consumed by
// a conversation. A conversation with no usage records totals zero.
func (s *SQLiteStore) ConversationUsage(ctx context.Context, conversationID string) (inputTokens, outputTokens int, err error) {
	err = s.do(func(db *sql.DB) error {
		row := db.QueryRowContext(ctx, `
			SELECT COALESCE(SUM(input_tokens), 0), COALESCE(SUM(output_tokens), 0)
			FROM token_usage
			WHERE conversation_id = ?
		`, conversationID)
		if err := row.Scan(&inputTokens, &outputTokens); err != nil {
			return fmt.Errorf("%w: summing usage: %v", ErrQueryFailed, err)
		}
		return nil
	})
	return inputTokens, outputTokens, err
}
