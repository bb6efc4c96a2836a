package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shipit-ai/shipit-api/internal/domain"
)

// ConversationRepository implements domain.ConversationRepository
type ConversationRepository struct {
	pool *pgxpool.Pool
}

// NewConversationRepository creates a new conversation repository
func NewConversationRepository(db *DB) *ConversationRepository {
	return &ConversationRepository{pool: db.Pool}
}

// Create inserts the conversation in one atomic write. The identifier and
// creation time are generated by the database and filled in on return.
func (r *ConversationRepository) Create(ctx context.Context, conversation *domain.Conversation) error {
	query := `
		INSERT INTO conversations (owner_id, user_input, image_urls)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	imageURLs := conversation.ImageURLs
	if imageURLs == nil {
		imageURLs = []string{}
	}

	err := r.pool.QueryRow(ctx, query,
		conversation.OwnerID,
		conversation.Text,
		imageURLs,
	).Scan(&conversation.ID, &conversation.CreatedAt)
	if err != nil {
		return fmt.Errorf("%w: create conversation: %s", domain.ErrPersistence, err)
	}
	conversation.ImageURLs = imageURLs

	return nil
}

// Get retrieves one conversation by id, nil when it does not exist.
func (r *ConversationRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Conversation, error) {
	query := `
		SELECT id, owner_id, user_input, image_urls, created_at
		FROM conversations
		WHERE id = $1
	`

	var c domain.Conversation
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&c.ID,
		&c.OwnerID,
		&c.Text,
		&c.ImageURLs,
		&c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: get conversation: %s", domain.ErrPersistence, err)
	}
	return &c, nil
}

// ListByOwner retrieves the owner's conversations, newest first.
func (r *ConversationRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit int) ([]domain.Conversation, error) {
	query := `
		SELECT id, owner_id, user_input, image_urls, created_at
		FROM conversations
		WHERE owner_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: list conversations: %s", domain.ErrPersistence, err)
	}
	defer rows.Close()

	var conversations []domain.Conversation
	for rows.Next() {
		var c domain.Conversation
		if err := rows.Scan(
			&c.ID,
			&c.OwnerID,
			&c.Text,
			&c.ImageURLs,
			&c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: scan conversation: %s", domain.ErrPersistence, err)
		}
		conversations = append(conversations, c)
	}

	return conversations, nil
}
