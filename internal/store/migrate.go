// ABOUTME: Versioned schema migrations keyed on SQLite's user_version pragma
// ABOUTME: Applies pending migrations in strictly increasing order on open

package store

import (
	"database/sql"
	"fmt"
)

// A migration evolves the schema from version-1 to version. The recorded
// schema version lives in PRAGMA user_version, not in a user table, and is
// advanced immediately after each migration applies.
type migration struct {
	version int
	name    string
	sql     string
}

var migrations = []migration{
	{
		version: 1,
		name:    "create goals",
		sql: `
			CREATE TABLE goals (
				id            TEXT PRIMARY KEY,
				name          TEXT NOT NULL,
				description   TEXT NOT NULL DEFAULT '',
				category      TEXT NOT NULL DEFAULT '',
				current_level TEXT NOT NULL DEFAULT '',
				target_level  TEXT NOT NULL DEFAULT '',
				metrics       TEXT NOT NULL DEFAULT '[]',
				created_at    TEXT NOT NULL,
				updated_at    TEXT NOT NULL
			);

			CREATE INDEX idx_goals_created ON goals(created_at DESC);
		`,
	},
	{
		version: 2,
		name:    "create conversations and messages",
		sql: `
			CREATE TABLE conversations (
				id         TEXT PRIMARY KEY,
				goal_id    TEXT,
				title      TEXT NOT NULL DEFAULT '',
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			);

			CREATE INDEX idx_conversations_goal ON conversations(goal_id);
			CREATE INDEX idx_conversations_updated ON conversations(updated_at DESC);

			CREATE TABLE messages (
				id              TEXT PRIMARY KEY,
				conversation_id TEXT NOT NULL,
				role            TEXT NOT NULL,
				content         TEXT NOT NULL,
				created_at      TEXT NOT NULL,

				CHECK (role IN ('user', 'assistant'))
			);

			CREATE INDEX idx_messages_conversation ON messages(conversation_id, created_at);
		`,
	},
	{
		version: 3,
		name:    "create token usage",
		sql: `
			CREATE TABLE token_usage (
				id              TEXT PRIMARY KEY,
				conversation_id TEXT NOT NULL,
				message_id      TEXT,
				model           TEXT NOT NULL,
				input_tokens    INTEGER NOT NULL,
				output_tokens   INTEGER NOT NULL,
				created_at      TEXT NOT NULL
			);

			CREATE INDEX idx_token_usage_conversation ON token_usage(conversation_id);
		`,
	},
}

// migrate applies every migration with a version greater than the stored
// schema version. Re-running against an already-migrated file is a no-op.
// Atomicity of the DDL itself is SQLite's responsibility; on failure the
// stored version stays at its last successfully recorded value.
func (s *SQLiteStore) migrate(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return &MigrationError{Version: version, Err: fmt.Errorf("reading schema version: %w", err)}
	}

	for _, m := range migrations {
		if m.version <= version {
			continue
		}
		if _, err := db.Exec(m.sql); err != nil {
			return &MigrationError{Version: m.version, Err: err}
		}
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", m.version)); err != nil {
			return &MigrationError{Version: m.version, Err: fmt.Errorf("recording schema version: %w", err)}
		}
		s.logger.Info("applied migration", "version", m.version, "name", m.name)
	}

	return nil
}
