// ABOUTME: Session service is the central layer between the CLI and storage
// ABOUTME: All turns flow through here - history is the source of truth, not a side effect

package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/stridecoach/stride/internal/anthropic"
	"github.com/stridecoach/stride/internal/store"
)

// Store defines what the service needs from storage
type Store interface {
	GetGoal(ctx context.Context, id string) (*store.Goal, error)

	CreateConversation(ctx context.Context, conv store.Conversation) (*store.Conversation, error)
	GetConversation(ctx context.Context, id string) (*store.Conversation, error)
	ListConversations(ctx context.Context, goalID string) ([]*store.Conversation, error)
	UpdateConversationTitle(ctx context.Context, id, title string) error

	CreateMessage(ctx context.Context, msg store.Message) (*store.Message, error)
	ListMessages(ctx context.Context, conversationID string) ([]*store.Message, error)
	UpdateMessageContent(ctx context.Context, id, content string) error
	DeleteMessage(ctx context.Context, id string) error

	RecordUsage(ctx context.Context, usage store.TokenUsage) (*store.TokenUsage, error)
}

// TextStream is a single-pass sequence of reply chunks.
type TextStream interface {
	Recv() (string, error)
	Usage() anthropic.Usage
	Close() error
}

// Completer defines what the service needs from the model layer
type Completer interface {
	Stream(ctx context.Context, history []anthropic.Message, opts anthropic.Options) (TextStream, error)
}

// ClientCompleter adapts an anthropic.Client to the Completer interface.
type ClientCompleter struct {
	Client *anthropic.Client
}

func (c ClientCompleter) Stream(ctx context.Context, history []anthropic.Message, opts anthropic.Options) (TextStream, error) {
	stream, err := c.Client.Stream(ctx, history, opts)
	if err != nil {
		return nil, err
	}
	return stream, nil
}

// Options configures model selection for every turn the service sends.
type Options struct {
	Model        string
	MaxTokens    int
	SystemPrompt string
}

// Service is the central session layer that ensures every turn is
// persisted before and as the model responds.
type Service struct {
	store  Store
	llm    Completer
	opts   Options
	logger *slog.Logger
}

// New creates a new session Service
func New(st Store, llm Completer, opts Options, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  st,
		llm:    llm,
		opts:   opts,
		logger: logger.With("component", "session"),
	}
}

// StartConversation creates a new conversation, optionally attached to a
// goal. When a goal ID is given it must name an existing goal; the store
// itself does not enforce the reference.
func (s *Service) StartConversation(ctx context.Context, goalID, title string) (*store.Conversation, error) {
	conv := store.Conversation{Title: title}
	if goalID != "" {
		if _, err := s.store.GetGoal(ctx, goalID); err != nil {
			return nil, fmt.Errorf("resolving goal: %w", err)
		}
		conv.GoalID = &goalID
	}

	created, err := s.store.CreateConversation(ctx, conv)
	if err != nil {
		return nil, fmt.Errorf("creating conversation: %w", err)
	}
	s.logger.Debug("conversation started", "conversation_id", created.ID, "goal_id", goalID)
	return created, nil
}

// History returns every message in a conversation, oldest first.
func (s *Service) History(ctx context.Context, conversationID string) ([]*store.Message, error) {
	if _, err := s.store.GetConversation(ctx, conversationID); err != nil {
		return nil, err
	}
	return s.store.ListMessages(ctx, conversationID)
}

// Conversations lists conversations, optionally filtered to one goal.
func (s *Service) Conversations(ctx context.Context, goalID string) ([]*store.Conversation, error) {
	return s.store.ListConversations(ctx, goalID)
}

// Send records the user's turn, streams the model's reply, and persists
// the result. Each chunk of reply text is passed to onDelta as it
// arrives; onDelta may be nil.
//
// Key principle: record first, then act. The user message is saved
// BEFORE the model is called, so a record exists even if the call fails.
// The assistant reply is inserted as an empty placeholder up front and
// filled in when the stream completes; if the stream fails, the
// placeholder is rolled back and the error returned.
func (s *Service) Send(ctx context.Context, conversationID, text string, onDelta func(string)) (*store.Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("message text is required")
	}

	conv, err := s.store.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("resolving conversation: %w", err)
	}

	prior, err := s.store.ListMessages(ctx, conv.ID)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}

	// 1. Record the user message FIRST
	userMsg, err := s.store.CreateMessage(ctx, store.Message{
		ConversationID: conv.ID,
		Role:           store.RoleUser,
		Content:        text,
	})
	if err != nil {
		return nil, fmt.Errorf("recording message: %w", err)
	}
	s.logger.Debug("user message recorded",
		"conversation_id", conv.ID,
		"message_id", userMsg.ID)

	// 2. Insert the assistant placeholder so the reply has a stable
	// identity and ordering slot before any network traffic
	placeholder, err := s.store.CreateMessage(ctx, store.Message{
		ConversationID: conv.ID,
		Role:           store.RoleAssistant,
	})
	if err != nil {
		return nil, fmt.Errorf("recording reply placeholder: %w", err)
	}

	// 3. Stream the reply
	history := buildHistory(prior, text)
	reply, usage, err := s.streamReply(ctx, history, onDelta)
	if err != nil {
		s.rollbackPlaceholder(placeholder.ID)
		return nil, err
	}

	// 4. Fill in the placeholder
	if err := s.store.UpdateMessageContent(ctx, placeholder.ID, reply); err != nil {
		return nil, fmt.Errorf("saving reply: %w", err)
	}
	placeholder.Content = reply

	s.recordUsage(conv.ID, placeholder.ID, usage)

	return placeholder, nil
}

// streamReply drives one streaming completion to completion, invoking
// onDelta per chunk and returning the accumulated text.
func (s *Service) streamReply(ctx context.Context, history []anthropic.Message, onDelta func(string)) (string, anthropic.Usage, error) {
	stream, err := s.llm.Stream(ctx, history, anthropic.Options{
		Model:     s.opts.Model,
		MaxTokens: s.opts.MaxTokens,
		System:    s.opts.SystemPrompt,
	})
	if err != nil {
		return "", anthropic.Usage{}, fmt.Errorf("opening stream: %w", err)
	}
	defer stream.Close()

	var sb strings.Builder
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", anthropic.Usage{}, fmt.Errorf("reading stream: %w", err)
		}
		sb.WriteString(chunk)
		if onDelta != nil {
			onDelta(chunk)
		}
	}
	return sb.String(), stream.Usage(), nil
}

// buildHistory converts stored messages plus the new user turn into the
// wire conversation shape.
func buildHistory(prior []*store.Message, text string) []anthropic.Message {
	history := make([]anthropic.Message, 0, len(prior)+1)
	for _, msg := range prior {
		history = append(history, anthropic.Message{Role: msg.Role, Content: msg.Content})
	}
	return append(history, anthropic.Message{Role: anthropic.RoleUser, Content: text})
}

// rollbackPlaceholder removes the empty assistant message of a failed
// turn. Uses a separate timeout context so cleanup still runs when the
// request context is already cancelled.
func (s *Service) rollbackPlaceholder(id string) {
	cleanupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.store.DeleteMessage(cleanupCtx, id); err != nil {
		s.logger.Error("failed to roll back reply placeholder",
			"error", err,
			"message_id", id)
	}
}

// recordUsage saves a token usage record with a separate timeout context
func (s *Service) recordUsage(conversationID, messageID string, usage anthropic.Usage) {
	if usage.InputTokens == 0 && usage.OutputTokens == 0 {
		return
	}

	saveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := s.store.RecordUsage(saveCtx, store.TokenUsage{
		ConversationID: conversationID,
		MessageID:      messageID,
		Model:          s.opts.Model,
		InputTokens:    usage.InputTokens,
		OutputTokens:   usage.OutputTokens,
	}); err != nil {
		s.logger.Error("failed to save usage",
			"error", err,
			"conversation_id", conversationID,
			"message_id", messageID)
	} else {
		s.logger.Debug("usage saved",
			"conversation_id", conversationID,
			"input_tokens", usage.InputTokens,
			"output_tokens", usage.OutputTokens)
	}
}
