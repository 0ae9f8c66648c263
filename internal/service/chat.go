package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/progressor-app/progressor/internal/domain"
	"github.com/progressor-app/progressor/internal/domain/chat"
	"github.com/progressor-app/progressor/internal/domain/user"
	"github.com/progressor-app/progressor/internal/interpreter"
	"github.com/progressor-app/progressor/internal/port/database"
)

// ChatService persists the conversation between a user and the
// assistant and runs each inbound message through the interpreter.
type ChatService struct {
	store       database.Store
	interp      *interpreter.Interpreter
	assistantID string
}

// NewChatService creates the chat service, bootstrapping the assistant
// account if it does not exist yet.
func NewChatService(ctx context.Context, store database.Store, interp *interpreter.Interpreter) (*ChatService, error) {
	assistant, err := ensureAssistant(ctx, store)
	if err != nil {
		return nil, fmt.Errorf("ensure assistant user: %w", err)
	}
	return &ChatService{
		store:       store,
		interp:      interp,
		assistantID: assistant.ID,
	}, nil
}

// ensureAssistant looks up the reserved assistant account, creating it
// on first run. The account has no usable password.
func ensureAssistant(ctx context.Context, store database.Store) (*user.User, error) {
	assistant, err := store.GetUserByUsername(ctx, user.AssistantUsername)
	if err == nil {
		return assistant, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	assistant = &user.User{
		Username:     user.AssistantUsername,
		Email:        "assistant@progressor.local",
		PasswordHash: "!",
	}
	if err := store.CreateUser(ctx, assistant); err != nil {
		// Another instance may have created it concurrently.
		if errors.Is(err, domain.ErrConflict) {
			return store.GetUserByUsername(ctx, user.AssistantUsername)
		}
		return nil, err
	}
	return assistant, nil
}

// AssistantID returns the assistant account's user ID.
func (s *ChatService) AssistantID() string {
	return s.assistantID
}

// HandleMessage records the inbound message, interprets it, records the
// reply, and returns it. Persistence failures on either side are logged
// but never swallow the reply; the conversation degrades to unlogged
// rather than silent.
func (s *ChatService) HandleMessage(ctx context.Context, userID, content string) (*chat.Message, error) {
	inbound := &chat.Message{
		SenderID:   userID,
		ReceiverID: s.assistantID,
		Content:    content,
	}
	if err := s.store.CreateMessage(ctx, inbound); err != nil {
		slog.Error("persist inbound message failed", "user_id", userID, "error", err)
	}

	replyText := s.interp.Process(ctx, userID, content)

	reply := &chat.Message{
		SenderID:   s.assistantID,
		ReceiverID: userID,
		Content:    replyText,
	}
	if err := s.store.CreateMessage(ctx, reply); err != nil {
		slog.Error("persist reply message failed", "user_id", userID, "error", err)
	}
	return reply, nil
}

// History returns the most recent messages involving the user, oldest first.
func (s *ChatService) History(ctx context.Context, userID string, limit int) ([]chat.Message, error) {
	msgs, err := s.store.ListMessages(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	// The store returns newest first; the chat UI wants chronological order.
	for l, r := 0, len(msgs)-1; l < r; l, r = l+1, r-1 {
		msgs[l], msgs[r] = msgs[r], msgs[l]
	}
	return msgs, nil
}
