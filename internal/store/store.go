// ABOUTME: Entity types for stride persistence - goals, conversations, messages
// ABOUTME: Defines Goal, Metric, Conversation, Message structs and role constants

package store

import (
	"time"
)

// Role constants for message authorship.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Metric is a measurable dimension of a Goal. Metrics are owned by their
// goal and serialized into the goal row; they never get their own table.
type Metric struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Unit           string   `json:"unit"`
	TargetValue    *float64 `json:"target_value,omitempty"`
	CurrentValue   *float64 `json:"current_value,omitempty"`
	HigherIsBetter bool     `json:"higher_is_better"`
}

// Goal is a learning target the user is working toward.
// ID is empty until the goal has been persisted.
type Goal struct {
	ID           string
	Name         string
	Description  string
	Category     string
	CurrentLevel string
	TargetLevel  string
	Metrics      []Metric
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Conversation is a chat session, optionally attached to a goal.
// GoalID is a soft reference - no referential integrity is enforced.
type Conversation struct {
	ID        string
	GoalID    *string
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DisplayTitle returns the conversation title, falling back to a formatted
// creation date for untitled conversations.
func (c *Conversation) DisplayTitle() string {
	if c.Title != "" {
		return c.Title
	}
	return c.CreatedAt.Local().Format("Jan 2, 2006 3:04 PM")
}

// Message is a single turn within a conversation. Content is mutable only
// to fill in a streamed assistant reply after it completes.
type Message struct {
	ID             string
	ConversationID string
	Role           string // RoleUser or RoleAssistant
	Content        string
	CreatedAt      time.Time
}

// TokenUsage records the token counts of one completion exchange.
type TokenUsage struct {
	ID             string
	ConversationID string
	MessageID      string
	Model          string
	InputTokens    int
	OutputTokens   int
	CreatedAt      time.Time
}
