package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_CreateConversation(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	goalID := "goal-abc"
	created, err := store.CreateConversation(ctx, Conversation{GoalID: &goalID, Title: "Week 1 check-in"})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	fetched, err := store.GetConversation(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, fetched)
	require.NotNil(t, fetched.GoalID)
	assert.Equal(t, goalID, *fetched.GoalID)
}

func TestStore_CreateConversation_DanglingGoalID(t *testing.T) {
	store := setupTestStore(t)

	// GoalID is a soft reference - the goal does not have to exist
	goalID := "never-inserted"
	_, err := store.CreateConversation(context.Background(), Conversation{GoalID: &goalID})
	assert.NoError(t, err)
}

func TestStore_GetConversation_NotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.GetConversation(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_ListConversations_RecentFirst(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	goalID := "goal-abc"
	first, err := store.CreateConversation(ctx, Conversation{GoalID: &goalID})
	require.NoError(t, err)
	second, err := store.CreateConversation(ctx, Conversation{GoalID: &goalID})
	require.NoError(t, err)

	// Unrelated conversation should not appear
	otherGoal := "goal-xyz"
	_, err = store.CreateConversation(ctx, Conversation{GoalID: &otherGoal})
	require.NoError(t, err)

	// Activity on the first conversation moves it to the front
	time.Sleep(2 * time.Millisecond)
	_, err = store.CreateMessage(ctx, Message{ConversationID: first.ID, Role: RoleUser, Content: "hello"})
	require.NoError(t, err)

	convs, err := store.ListConversations(ctx, goalID)
	require.NoError(t, err)
	require.Len(t, convs, 2)
	assert.Equal(t, first.ID, convs[0].ID)
	assert.Equal(t, second.ID, convs[1].ID)
}

func TestStore_ListConversations_AllGoals(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	goalID := "goal-abc"
	_, err := store.CreateConversation(ctx, Conversation{GoalID: &goalID})
	require.NoError(t, err)
	_, err = store.CreateConversation(ctx, Conversation{})
	require.NoError(t, err)

	convs, err := store.ListConversations(ctx, "")
	require.NoError(t, err)
	assert.Len(t, convs, 2)
}

func TestStore_UpdateConversationTitle(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	created, err := store.CreateConversation(ctx, Conversation{})
	require.NoError(t, err)

	require.NoError(t, store.UpdateConversationTitle(ctx, created.ID, "Renamed"))

	fetched, err := store.GetConversation(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", fetched.Title)
	assert.True(t, !fetched.UpdatedAt.Before(created.UpdatedAt))
}

func TestStore_UpdateConversationTitle_Missing(t *testing.T) {
	store := setupTestStore(t)

	err := store.UpdateConversationTitle(context.Background(), "missing", "title")
	assert.ErrorIs(t, err, ErrUpdateFailed)

	err = store.UpdateConversationTitle(context.Background(), "", "title")
	assert.ErrorIs(t, err, ErrUpdateFailed)
}

func TestConversation_DisplayTitle(t *testing.T) {
	titled := &Conversation{Title: "Morning review", CreatedAt: time.Now()}
	assert.Equal(t, "Morning review", titled.DisplayTitle())

	created := time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC)
	untitled := &Conversation{CreatedAt: created}
	assert.Equal(t, created.Local().Format("Jan 2, 2006 3:04 PM"), untitled.DisplayTitle())
}
