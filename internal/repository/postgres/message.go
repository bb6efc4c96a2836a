package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shipit-ai/shipit-api/internal/domain"
)

// MessageRepository implements domain.MessageRepository
type MessageRepository struct {
	pool *pgxpool.Pool
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db *DB) *MessageRepository {
	return &MessageRepository{pool: db.Pool}
}

// AppendExchange appends the user turn and its paired assistant turn inside
// one transaction, so the store never holds an unpaired user turn.
func (r *MessageRepository) AppendExchange(ctx context.Context, conversationID uuid.UUID, userText, assistantText string) ([]domain.Message, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: begin exchange: %s", domain.ErrPersistence, err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO conversation_messages (conversation_id, role, content, sequence)
		VALUES ($1, $2, $3, (
			SELECT COALESCE(MAX(sequence), 0) + 1
			FROM conversation_messages
			WHERE conversation_id = $1
		))
		RETURNING id, sequence, created_at
	`

	turns := []struct {
		role    domain.MessageRole
		content string
	}{
		{domain.RoleUser, userText},
		{domain.RoleAssistant, assistantText},
	}

	messages := make([]domain.Message, 0, len(turns))
	for _, turn := range turns {
		m := domain.Message{
			ConversationID: conversationID,
			Role:           turn.role,
			Content:        turn.content,
		}
		if err := tx.QueryRow(ctx, query, conversationID, turn.role, turn.content).Scan(
			&m.ID,
			&m.Sequence,
			&m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: append %s turn: %s", domain.ErrPersistence, turn.role, err)
		}
		messages = append(messages, m)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%w: commit exchange: %s", domain.ErrPersistence, err)
	}

	return messages, nil
}

// ListByConversation retrieves a conversation's turns in sequence order.
func (r *MessageRepository) ListByConversation(ctx context.Context, conversationID uuid.UUID, limit int) ([]domain.Message, error) {
	query := `
		SELECT id, conversation_id, role, content, sequence, created_at
		FROM conversation_messages
		WHERE conversation_id = $1
		ORDER BY sequence ASC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, conversationID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: list messages: %s", domain.ErrPersistence, err)
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var m domain.Message
		var roleStr string

		if err := rows.Scan(
			&m.ID,
			&m.ConversationID,
			&roleStr,
			&m.Content,
			&m.Sequence,
			&m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: scan message: %s", domain.ErrPersistence, err)
		}
		m.Role = domain.MessageRole(roleStr)
		messages = append(messages, m)
	}

	return messages, nil
}
