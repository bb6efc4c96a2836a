package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Conversation is one user-initiated thread: the submitted text, the resolved
// image URLs, and the owner. Immutable after creation.
type Conversation struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Text      string    `json:"text"`
	ImageURLs []string  `json:"image_urls"`
	CreatedAt time.Time `json:"created_at"`
}

// ConversationCreate is the inbound submission payload.
type ConversationCreate struct {
	UserInput string          `validate:"required"`
	Images    []string        `validate:"max=3,dive,startswith=data:"`
	Prompt    []PromptMessage `validate:"dive"`
}

// ConversationRepository defines the interface for conversation storage.
type ConversationRepository interface {
	// Create inserts the conversation and fills in the store-generated
	// ID and CreatedAt on success.
	Create(ctx context.Context, conversation *Conversation) error
	Get(ctx context.Context, id uuid.UUID) (*Conversation, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, limit int) ([]Conversation, error)
}
