// ABOUTME: CRUD operations for goals
// ABOUTME: Metrics are serialized into the goal row as a JSON array column

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CreateGoal persists a new goal and returns the stored copy with its
// generated identifier and timestamps filled in. The input must not carry
// an identifier and must have a non-empty name.
func (s *SQLiteStore) CreateGoal(ctx context.Context, goal Goal) (*Goal, error) {
	if goal.ID != "" {
		return nil, fmt.Errorf("%w: goal already has an id", ErrInsertFailed)
	}
	if goal.Name == "" {
		return nil, fmt.Errorf("%w: goal name is required", ErrInsertFailed)
	}

	metricsJSON, err := encodeMetrics(goal.Metrics)
	if err != nil {
		return nil, err
	}

	goal.ID = uuid.New().String()
	now := time.Now().UTC().Truncate(time.Microsecond)
	goal.CreatedAt = now
	goal.UpdatedAt = now

	err = s.do(func(db *sql.DB) error {
		query := `
			INSERT INTO goals (id, name, description, category, current_level, target_level, metrics, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`
		_, err := db.ExecContext(ctx, query,
			goal.ID,
			goal.Name,
			goal.Description,
			goal.Category,
			goal.CurrentLevel,
			goal.TargetLevel,
			metricsJSON,
			formatTimestamp(goal.CreatedAt),
			formatTimestamp(goal.UpdatedAt),
		)
		if err != nil {
			return fmt.Errorf("%w: inserting goal: %v", ErrInsertFailed, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("created goal", "id", goal.ID, "name", goal.Name)
	return &goal, nil
}

// GetGoal retrieves a goal by ID.
// Returns ErrNotFound if the goal doesn't exist.
func (s *SQLiteStore) GetGoal(ctx context.Context, id string) (*Goal, error) {
	var goal *Goal
	err := s.do(func(db *sql.DB) error {
		query := `
			SELECT id, name, description, category, current_level, target_level, metrics, created_at, updated_at
			FROM goals
			WHERE id = ?
		`
		row := db.QueryRowContext(ctx, query, id)
		g, err := scanGoal(row)
		if err != nil {
			return err
		}
		goal = g
		return nil
	})
	if err != nil {
		return nil, err
	}
	return goal, nil
}

// ListGoals returns all goals ordered by creation time descending, ties
// broken by identifier descending.
func (s *SQLiteStore) ListGoals(ctx context.Context) ([]*Goal, error) {
	var goals []*Goal
	err := s.do(func(db *sql.DB) error {
		query := `
			SELECT id, name, description, category, current_level, target_level, metrics, created_at, updated_at
			FROM goals
			ORDER BY created_at DESC, id DESC
		`
		rows, err := db.QueryContext(ctx, query)
		if err != nil {
			return fmt.Errorf("%w: querying goals: %v", ErrQueryFailed, err)
		}
		defer rows.Close()

		for rows.Next() {
			g, err := scanGoal(rows)
			if err != nil {
				return err
			}
			goals = append(goals, g)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("%w: iterating goals: %v", ErrQueryFailed, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return goals, nil
}

// UpdateGoal replaces every mutable field of an existing goal and
// refreshes its updated timestamp. The goal must already be persisted.
func (s *SQLiteStore) UpdateGoal(ctx context.Context, goal *Goal) error {
	if goal.ID == "" {
		return fmt.Errorf("%w: goal has no id", ErrUpdateFailed)
	}

	metricsJSON, err := encodeMetrics(goal.Metrics)
	if err != nil {
		return err
	}

	goal.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)

	return s.do(func(db *sql.DB) error {
		query := `
			UPDATE goals
			SET name = ?, description = ?, category = ?, current_level = ?, target_level = ?, metrics = ?, updated_at = ?
			WHERE id = ?
		`
		result, err := db.ExecContext(ctx, query,
			goal.Name,
			goal.Description,
			goal.Category,
			goal.CurrentLevel,
			goal.TargetLevel,
			metricsJSON,
			formatTimestamp(goal.UpdatedAt),
			goal.ID,
		)
		if err != nil {
			return fmt.Errorf("%w: updating goal: %v", ErrUpdateFailed, err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("%w: updating goal: %v", ErrUpdateFailed, err)
		}
		if affected == 0 {
			return fmt.Errorf("%w: goal %s does not exist", ErrUpdateFailed, goal.ID)
		}
		return nil
	})
}

// DeleteGoal removes a goal by ID. Deleting an absent goal is not an error.
func (s *SQLiteStore) DeleteGoal(ctx context.Context, id string) error {
	return s.do(func(db *sql.DB) error {
		if _, err := db.ExecContext(ctx, `DELETE FROM goals WHERE id = ?`, id); err != nil {
			return fmt.Errorf("%w: deleting goal: %v", ErrDeleteFailed, err)
		}
		return nil
	})
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanGoal(row rowScanner) (*Goal, error) {
	var goal Goal
	var metricsJSON, createdAt, updatedAt string

	err := row.Scan(
		&goal.ID,
		&goal.Name,
		&goal.Description,
		&goal.Category,
		&goal.CurrentLevel,
		&goal.TargetLevel,
		&metricsJSON,
		&createdAt,
		&updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: scanning goal: %v", ErrQueryFailed, err)
	}

	if goal.Metrics, err = decodeMetrics(metricsJSON); err != nil {
		return nil, err
	}
	if goal.CreatedAt, err = parseTimestamp("created_at", createdAt); err != nil {
		return nil, err
	}
	if goal.UpdatedAt, err = parseTimestamp("updated_at", updatedAt); err != nil {
		return nil, err
	}
	return &goal, nil
}
