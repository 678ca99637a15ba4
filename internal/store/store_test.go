package store

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)

	t.Cleanup(func() {
		store.Close()
	})

	return store
}

func floatPtr(f float64) *float64 { return &f }

func TestStore_CreateGoal(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	created, err := store.CreateGoal(ctx, Goal{
		Name:         "Learn conversational Spanish",
		Description:  "Hold a 30 minute conversation",
		Category:     "language",
		CurrentLevel: "beginner",
		TargetLevel:  "B1",
		Metrics: []Metric{
			{ID: "m1", Name: "Vocabulary", Unit: "words", TargetValue: floatPtr(2000), HigherIsBetter: true},
			{ID: "m2", Name: "Lesson backlog", Unit: "lessons", CurrentValue: floatPtr(12), HigherIsBetter: false},
		},
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	// Fetching immediately after returns an equal entity
	fetched, err := store.GetGoal(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, fetched)
}

func TestStore_CreateGoal_PresetID(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.CreateGoal(context.Background(), Goal{ID: "goal-1", Name: "Run a marathon"})
	assert.ErrorIs(t, err, ErrInsertFailed)
}

func TestStore_CreateGoal_NameRequired(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.CreateGoal(context.Background(), Goal{})
	assert.ErrorIs(t, err, ErrInsertFailed)
}

func TestStore_GetGoal_NotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.GetGoal(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_ListGoals_NewestFirst(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		g, err := store.CreateGoal(ctx, Goal{Name: fmt.Sprintf("goal %d", i)})
		require.NoError(t, err)
		ids = append(ids, g.ID)
	}

	goals, err := store.ListGoals(ctx)
	require.NoError(t, err)
	require.Len(t, goals, 3)

	// Creation time descending, ties broken by identifier descending
	for i := 1; i < len(goals); i++ {
		prev, cur := goals[i-1], goals[i]
		after := prev.CreatedAt.After(cur.CreatedAt) ||
			(prev.CreatedAt.Equal(cur.CreatedAt) && prev.ID > cur.ID)
		assert.True(t, after, "goals[%d] should sort before goals[%d]", i-1, i)
	}
}

func TestStore_UpdateGoal(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	created, err := store.CreateGoal(ctx, Goal{Name: "Deadlift 150kg", Category: "strength"})
	require.NoError(t, err)

	created.Name = "Deadlift 160kg"
	created.Metrics = []Metric{{ID: "m1", Name: "1RM", Unit: "kg", TargetValue: floatPtr(160), HigherIsBetter: true}}
	require.NoError(t, store.UpdateGoal(ctx, created))

	fetched, err := store.GetGoal(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Deadlift 160kg", fetched.Name)
	assert.Equal(t, created.Metrics, fetched.Metrics)
	assert.True(t, !fetched.UpdatedAt.Before(fetched.CreatedAt))
}

func TestStore_UpdateGoal_NoID(t *testing.T) {
	store := setupTestStore(t)

	err := store.UpdateGoal(context.Background(), &Goal{Name: "unsaved"})
	assert.ErrorIs(t, err, ErrUpdateFailed)
}

func TestStore_UpdateGoal_Missing(t *testing.T) {
	store := setupTestStore(t)

	err := store.UpdateGoal(context.Background(), &Goal{ID: "missing", Name: "gone"})
	assert.ErrorIs(t, err, ErrUpdateFailed)
}

func TestStore_DeleteGoal(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	keep, err := store.CreateGoal(ctx, Goal{Name: "keep"})
	require.NoError(t, err)
	drop, err := store.CreateGoal(ctx, Goal{Name: "drop"})
	require.NoError(t, err)

	require.NoError(t, store.DeleteGoal(ctx, drop.ID))

	_, err = store.GetGoal(ctx, drop.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// Other rows remain
	_, err = store.GetGoal(ctx, keep.ID)
	assert.NoError(t, err)

	// Deleting again is not an error
	assert.NoError(t, store.DeleteGoal(ctx, drop.ID))
}

func TestStore_ConcurrentOperations(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	// Hammer the serialized worker from many goroutines; every operation
	// must complete without interleaving corruption.
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			g, err := store.CreateGoal(ctx, Goal{Name: fmt.Sprintf("concurrent %d", i)})
			assert.NoError(t, err)
			_, err = store.GetGoal(ctx, g.ID)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	goals, err := store.ListGoals(ctx)
	require.NoError(t, err)
	assert.Len(t, goals, 20)
}

func TestStore_UseAfterClose(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewSQLiteStore(filepath.Join(tmpDir, "test.db"))
	require.NoError(t, err)

	require.NoError(t, store.Close())
	require.NoError(t, store.Close(), "close should be idempotent")

	_, err = store.ListGoals(context.Background())
	assert.ErrorIs(t, err, ErrConnectionFailed)
}
