// ABOUTME: Tests for conversation transcript export
// ABOUTME: Covers Markdown structure, goal headers, and HTML conversion

package export

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stridecoach/stride/internal/store"
)

func createTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := store.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func seedConversation(t *testing.T, s *store.SQLiteStore, goalID *string) *store.Conversation {
	t.Helper()
	ctx := context.Background()

	conv, err := s.CreateConversation(ctx, store.Conversation{
		Title:  "Couch to 5k",
		GoalID: goalID,
	})
	require.NoError(t, err)

	_, err = s.CreateMessage(ctx, store.Message{
		ConversationID: conv.ID, Role: store.RoleUser, Content: "Where do I start?",
	})
	require.NoError(t, err)
	_, err = s.CreateMessage(ctx, store.Message{
		ConversationID: conv.ID, Role: store.RoleAssistant, Content: "Start with *walk-run* intervals.",
	})
	require.NoError(t, err)

	return conv
}

func TestMarkdownTranscript(t *testing.T) {
	s := createTestStore(t)
	conv := seedConversation(t, s, nil)

	exp := New(s, nil)
	md, err := exp.Markdown(context.Background(), conv.ID)
	require.NoError(t, err)

	assert.Contains(t, md, "# Couch to 5k")
	assert.Contains(t, md, "## You\n\nWhere do I start?")
	assert.Contains(t, md, "## Coach\n\nStart with *walk-run* intervals.")
}

func TestMarkdownIncludesGoal(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	goal, err := s.CreateGoal(ctx, store.Goal{Name: "Run a 5k"})
	require.NoError(t, err)
	conv := seedConversation(t, s, &goal.ID)

	exp := New(s, nil)
	md, err := exp.Markdown(ctx, conv.ID)
	require.NoError(t, err)
	assert.Contains(t, md, "**Goal:** Run a 5k")
}

func TestMarkdownToleratesDanglingGoal(t *testing.T) {
	s := createTestStore(t)
	goalID := "deleted-goal"
	conv := seedConversation(t, s, &goalID)

	exp := New(s, nil)
	md, err := exp.Markdown(context.Background(), conv.ID)
	require.NoError(t, err)
	assert.NotContains(t, md, "**Goal:**")
}

func TestMarkdownIncludesUsageFooter(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	conv := seedConversation(t, s, nil)

	_, err := s.RecordUsage(ctx, store.TokenUsage{
		ConversationID: conv.ID,
		Model:          "claude-sonnet-4-20250514",
		InputTokens:    15,
		OutputTokens:   7,
	})
	require.NoError(t, err)

	exp := New(s, nil)
	md, err := exp.Markdown(ctx, conv.ID)
	require.NoError(t, err)
	assert.Contains(t, md, "_15 input tokens, 7 output tokens_")
}

func TestMarkdownUnknownConversation(t *testing.T) {
	s := createTestStore(t)
	exp := New(s, nil)

	_, err := exp.Markdown(context.Background(), "no-such-conversation")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestHTMLRendersMarkdown(t *testing.T) {
	s := createTestStore(t)
	conv := seedConversation(t, s, nil)

	exp := New(s, nil)
	page, err := exp.HTML(context.Background(), conv.ID)
	require.NoError(t, err)

	html := string(page)
	assert.Contains(t, html, "<!DOCTYPE html>")
	assert.Contains(t, html, "<title>Couch to 5k</title>")
	assert.Contains(t, html, "<h1>Couch to 5k</h1>")
	// Emphasis inside a message survives markdown conversion
	assert.Contains(t, html, "<em>walk-run</em>")
}
