package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// MessageRole represents the sender of a message turn
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// PromptMessage is one `{role, content}` entry of a running message history,
// as submitted by the caller and as echoed back in responses.
type PromptMessage struct {
	Role    MessageRole `json:"role" validate:"required,oneof=user assistant"`
	Content string      `json:"content" validate:"required"`
}

// Message is one persisted turn of a conversation.
type Message struct {
	ID             uuid.UUID   `json:"id"`
	ConversationID uuid.UUID   `json:"conversation_id"`
	Role           MessageRole `json:"role"`
	Content        string      `json:"content"`
	Sequence       int         `json:"sequence"`
	CreatedAt      time.Time   `json:"created_at"`
}

// MessageRepository defines the interface for message-turn storage.
type MessageRepository interface {
	// AppendExchange writes the user turn and its paired assistant turn in
	// one logical write. Either both land or neither does.
	AppendExchange(ctx context.Context, conversationID uuid.UUID, userText, assistantText string) ([]Message, error)
	ListByConversation(ctx context.Context, conversationID uuid.UUID, limit int) ([]Message, error)
}
