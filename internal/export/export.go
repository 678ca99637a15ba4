// ABOUTME: Conversation transcript export to Markdown and HTML
// ABOUTME: Renders stored messages into shareable documents

package export

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/stridecoach/stride/internal/store"
)

// Store defines what the exporter needs from storage
type Store interface {
	GetConversation(ctx context.Context, id string) (*store.Conversation, error)
	GetGoal(ctx context.Context, id string) (*store.Goal, error)
	ListMessages(ctx context.Context, conversationID string) ([]*store.Message, error)
	ConversationUsage(ctx context.Context, conversationID string) (inputTokens, outputTokens int, err error)
}

// Exporter renders conversation transcripts.
type Exporter struct {
	store  Store
	logger *slog.Logger
}

// New creates an Exporter
func New(st Store, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{
		store:  st,
		logger: logger.With("component", "export"),
	}
}

const roleLabelUser = "You"
const roleLabelAssistant = "Coach"

// Markdown renders a conversation as a Markdown transcript. Each turn
// appears under a role heading in chronological order.
func (e *Exporter) Markdown(ctx context.Context, conversationID string) (string, error) {
	conv, err := e.store.GetConversation(ctx, conversationID)
	if err != nil {
		return "", fmt.Errorf("loading conversation: %w", err)
	}

	messages, err := e.store.ListMessages(ctx, conv.ID)
	if err != nil {
		return "", fmt.Errorf("loading messages: %w", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", conv.DisplayTitle())
	fmt.Fprintf(&sb, "_Started %s_\n", conv.CreatedAt.Local().Format("January 2, 2006 3:04 PM"))

	if conv.GoalID != nil {
		goal, err := e.store.GetGoal(ctx, *conv.GoalID)
		if err == nil {
			fmt.Fprintf(&sb, "\n**Goal:** %s\n", goal.Name)
		} else {
			// The goal reference is soft; a dangling one just isn't shown
			e.logger.Warn("goal missing during export",
				"conversation_id", conv.ID,
				"goal_id", *conv.GoalID)
		}
	}

	for _, msg := range messages {
		label := roleLabelUser
		if msg.Role == store.RoleAssistant {
			label = roleLabelAssistant
		}
		fmt.Fprintf(&sb, "\n## %s\n\n%s\n", label, msg.Content)
	}

	input, output, err := e.store.ConversationUsage(ctx, conv.ID)
	if err == nil && (input > 0 || output > 0) {
		fmt.Fprintf(&sb, "\n---\n\n_%d input tokens, %d output tokens_\n", input, output)
	}

	return sb.String(), nil
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { max-width: 42rem; margin: 2rem auto; padding: 0 1rem; font-family: system-ui, sans-serif; line-height: 1.5; }
h2 { border-bottom: 1px solid #ddd; padding-bottom: 0.25rem; }
</style>
</head>
<body>
{{.Content}}
</body>
</html>
`))

// HTML renders a conversation as a standalone HTML page. The transcript
// body is the Markdown rendering converted with goldmark.
func (e *Exporter) HTML(ctx context.Context, conversationID string) ([]byte, error) {
	md, err := e.Markdown(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	conv, err := e.store.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("loading conversation: %w", err)
	}

	var htmlBuf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &htmlBuf); err != nil {
		return nil, fmt.Errorf("converting markdown: %w", err)
	}

	data := struct {
		Title   string
		Content template.HTML
	}{
		Title:   conv.DisplayTitle(),
		Content: template.HTML(htmlBuf.String()),
	}

	var out bytes.Buffer
	if err := pageTemplate.Execute(&out, data); err != nil {
		return nil, fmt.Errorf("rendering page: %w", err)
	}
	return out.Bytes(), nil
}
