package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shipit-ai/shipit-api/internal/domain"
	"github.com/shipit-ai/shipit-api/internal/llm"
)

// ImageIngester resolves attached image payloads into durable URLs.
type ImageIngester interface {
	IngestAll(ctx context.Context, payloads []string, owner *domain.Identity) ([]string, error)
}

// Completer selects a completion provider. *llm.Router satisfies it.
type Completer interface {
	GetProvider(name string) (llm.Provider, error)
}

// ConversationService sequences a submission through image ingestion,
// conversation persistence, completion, and exchange persistence. It advances
// only on success and surfaces the first failure untouched; nothing already
// persisted is rolled back.
type ConversationService struct {
	conversationRepo domain.ConversationRepository
	messageRepo      domain.MessageRepository
	ingester         ImageIngester
	completer        Completer
}

// NewConversationService creates a new conversation service. A nil completer
// disables the completion-invoking variant entirely.
func NewConversationService(
	conversationRepo domain.ConversationRepository,
	messageRepo domain.MessageRepository,
	ingester ImageIngester,
	completer Completer,
) *ConversationService {
	return &ConversationService{
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
		ingester:         ingester,
		completer:        completer,
	}
}

// CreateResult is the outcome of an accepted submission: the stored
// conversation and, when a completion ran, the persisted exchange pair.
type CreateResult struct {
	Conversation *domain.Conversation   `json:"conversation"`
	Prompt       []domain.PromptMessage `json:"prompt"`
}

// Create runs one submission end to end. The completion step runs only when
// the caller supplied a prompt history; it must end with the user turn being
// submitted.
func (s *ConversationService) Create(ctx context.Context, owner *domain.Identity, input domain.ConversationCreate) (*CreateResult, error) {
	text := strings.TrimSpace(input.UserInput)
	if text == "" {
		return nil, fmt.Errorf("%w: user input is required", domain.ErrInvalidInput)
	}

	imageURLs, err := s.ingester.IngestAll(ctx, input.Images, owner)
	if err != nil {
		return nil, err
	}

	conversation := &domain.Conversation{
		OwnerID:   owner.ID,
		Text:      text,
		ImageURLs: imageURLs,
	}
	if err := s.conversationRepo.Create(ctx, conversation); err != nil {
		return nil, err
	}

	log.Debug().
		Stringer("conversation_id", conversation.ID).
		Int("images", len(imageURLs)).
		Msg("conversation stored")

	result := &CreateResult{
		Conversation: conversation,
		Prompt:       []domain.PromptMessage{},
	}

	if len(input.Prompt) == 0 || s.completer == nil {
		return result, nil
	}

	provider, err := s.completer.GetProvider("")
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrCompletion, err)
	}

	history := make([]llm.Message, len(input.Prompt))
	for i, m := range input.Prompt {
		history[i] = llm.Message{Role: string(m.Role), Content: m.Content}
	}

	completion, err := provider.Complete(ctx, history, "")
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrCompletion, err)
	}

	log.Debug().
		Stringer("conversation_id", conversation.ID).
		Str("provider", provider.Name()).
		Int64("latency_ms", completion.LatencyMs).
		Msg("completion obtained")

	if _, err := s.messageRepo.AppendExchange(ctx, conversation.ID, text, completion.Content); err != nil {
		return nil, err
	}

	result.Prompt = []domain.PromptMessage{
		{Role: domain.RoleUser, Content: text},
		{Role: domain.RoleAssistant, Content: completion.Content},
	}
	return result, nil
}

// List returns the owner's conversations, newest first.
func (s *ConversationService) List(ctx context.Context, owner *domain.Identity, limit int) ([]domain.Conversation, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.conversationRepo.ListByOwner(ctx, owner.ID, limit)
}

// ConversationDetail is one conversation with its message turns.
type ConversationDetail struct {
	Conversation *domain.Conversation `json:"conversation"`
	Messages     []domain.Message     `json:"messages"`
}

// Get fetches one conversation the owner holds, nil when absent or foreign.
func (s *ConversationService) Get(ctx context.Context, owner *domain.Identity, id uuid.UUID) (*ConversationDetail, error) {
	conversation, err := s.conversationRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if conversation == nil || conversation.OwnerID != owner.ID {
		return nil, nil
	}

	messages, err := s.messageRepo.ListByConversation(ctx, id, 200)
	if err != nil {
		return nil, err
	}

	return &ConversationDetail{Conversation: conversation, Messages: messages}, nil
}
