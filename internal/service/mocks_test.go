package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shipit-ai/shipit-api/internal/domain"
	"github.com/shipit-ai/shipit-api/internal/llm"
	"github.com/stretchr/testify/mock"
)

// MockConversationRepository mocks the ConversationRepository interface
type MockConversationRepository struct {
	mock.Mock
}

func (m *MockConversationRepository) Create(ctx context.Context, conversation *domain.Conversation) error {
	args := m.Called(ctx, conversation)
	return args.Error(0)
}

func (m *MockConversationRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Conversation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Conversation), args.Error(1)
}

func (m *MockConversationRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit int) ([]domain.Conversation, error) {
	args := m.Called(ctx, ownerID, limit)
	return args.Get(0).([]domain.Conversation), args.Error(1)
}

// MockMessageRepository mocks the MessageRepository interface
type MockMessageRepository struct {
	mock.Mock
}

func (m *MockMessageRepository) AppendExchange(ctx context.Context, conversationID uuid.UUID, userText, assistantText string) ([]domain.Message, error) {
	args := m.Called(ctx, conversationID, userText, assistantText)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Message), args.Error(1)
}

func (m *MockMessageRepository) ListByConversation(ctx context.Context, conversationID uuid.UUID, limit int) ([]domain.Message, error) {
	args := m.Called(ctx, conversationID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Message), args.Error(1)
}

// MockIngester mocks the ImageIngester interface
type MockIngester struct {
	mock.Mock
}

func (m *MockIngester) IngestAll(ctx context.Context, payloads []string, owner *domain.Identity) ([]string, error) {
	args := m.Called(ctx, payloads, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockLLMProvider mocks llm.Provider
type MockLLMProvider struct {
	mock.Mock
}

func (m *MockLLMProvider) Name() string {
	return "mock-provider"
}

func (m *MockLLMProvider) AvailableModels() []string {
	return []string{"mock-model"}
}

func (m *MockLLMProvider) DefaultModel() string {
	return "mock-model"
}

func (m *MockLLMProvider) IsConfigured() bool {
	return true
}

func (m *MockLLMProvider) Complete(ctx context.Context, history []llm.Message, model string) (*llm.Response, error) {
	args := m.Called(ctx, history, model)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*llm.Response), args.Error(1)
}
