package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func schemaVersion(t *testing.T, s *SQLiteStore) int {
	t.Helper()
	var version int
	err := s.do(func(db *sql.DB) error {
		return db.QueryRow("PRAGMA user_version").Scan(&version)
	})
	require.NoError(t, err)
	return version
}

func TestMigrate_FreshDatabase(t *testing.T) {
	store := setupTestStore(t)

	latest := migrations[len(migrations)-1].version
	assert.Equal(t, latest, schemaVersion(t, store))
}

func TestMigrate_VersionsStrictlyIncreasing(t *testing.T) {
	prev := 0
	for _, m := range migrations {
		assert.Greater(t, m.version, prev, "migration %q out of order", m.name)
		prev = m.version
	}
}

func TestMigrate_ReopenIsNoOp(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")
	ctx := context.Background()

	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)

	goal, err := store.CreateGoal(ctx, Goal{
		Name:    "Ship a side project",
		Metrics: []Metric{{ID: "m1", Name: "Commits", Unit: "count", HigherIsBetter: true}},
	})
	require.NoError(t, err)
	conv, err := store.CreateConversation(ctx, Conversation{GoalID: &goal.ID})
	require.NoError(t, err)
	_, err = store.CreateMessage(ctx, Message{ConversationID: conv.ID, Role: RoleUser, Content: "kickoff"})
	require.NoError(t, err)

	require.NoError(t, store.Close())

	// Reopening applies nothing and loses nothing
	reopened, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	assert.Equal(t, migrations[len(migrations)-1].version, schemaVersion(t, reopened))

	fetched, err := reopened.GetGoal(ctx, goal.ID)
	require.NoError(t, err)
	assert.Equal(t, goal, fetched)

	msgs, err := reopened.ListMessages(ctx, conv.ID)
	require.NoError(t, err)
	assert.Len(t, msgs, 1)
}

func TestMigrate_FailureCarriesVersion(t *testing.T) {
	s := &SQLiteStore{logger: testLogger()}

	// A broken migration beyond the current version must surface a
	// MigrationError naming the target version and leave user_version
	// at its last recorded value.
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "broken.db"))
	require.NoError(t, err)
	defer db.Close()

	saved := migrations
	defer func() { migrations = saved }()
	migrations = append(append([]migration{}, saved...), migration{
		version: saved[len(saved)-1].version + 1,
		name:    "broken",
		sql:     "CREATE BOGUS SYNTAX",
	})

	err = s.migrate(db)
	var migErr *MigrationError
	require.ErrorAs(t, err, &migErr)
	assert.Equal(t, saved[len(saved)-1].version+1, migErr.Version)

	var version int
	require.NoError(t, db.QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, saved[len(saved)-1].version, version)
}
