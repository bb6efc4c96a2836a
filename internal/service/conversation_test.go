package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shipit-ai/shipit-api/internal/domain"
	"github.com/shipit-ai/shipit-api/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newRouterWith(provider llm.Provider) *llm.Router {
	router := llm.NewRouter(provider.Name())
	router.RegisterProvider(provider)
	return router
}

func TestConversationService_Create(t *testing.T) {
	ctx := context.Background()
	owner := &domain.Identity{ID: uuid.New(), Email: "user@example.com", Role: "authenticated"}
	conversationID := uuid.New()

	t.Run("blank input rejected before any work", func(t *testing.T) {
		conversationRepo := new(MockConversationRepository)
		messageRepo := new(MockMessageRepository)
		ingester := new(MockIngester)
		svc := NewConversationService(conversationRepo, messageRepo, ingester, nil)

		_, err := svc.Create(ctx, owner, domain.ConversationCreate{UserInput: "   \n\t"})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		ingester.AssertNotCalled(t, "IngestAll")
		conversationRepo.AssertNotCalled(t, "Create")
	})

	t.Run("ingest failure halts before persistence", func(t *testing.T) {
		conversationRepo := new(MockConversationRepository)
		messageRepo := new(MockMessageRepository)
		ingester := new(MockIngester)
		ingester.On("IngestAll", ctx, mock.Anything, owner).
			Return(nil, fmt.Errorf("image 0: %w", domain.ErrStorageUpload))
		svc := NewConversationService(conversationRepo, messageRepo, ingester, nil)

		_, err := svc.Create(ctx, owner, domain.ConversationCreate{
			UserInput: "hello",
			Images:    []string{"data:image/jpeg;base64,aGk="},
		})
		assert.ErrorIs(t, err, domain.ErrStorageUpload)
		conversationRepo.AssertNotCalled(t, "Create")
	})

	t.Run("store-only submission skips completion", func(t *testing.T) {
		conversationRepo := new(MockConversationRepository)
		messageRepo := new(MockMessageRepository)
		ingester := new(MockIngester)
		provider := new(MockLLMProvider)

		ingester.On("IngestAll", ctx, mock.Anything, owner).
			Return([]string{"https://cdn.example.com/images/a.jpg"}, nil)
		conversationRepo.On("Create", ctx, mock.AnythingOfType("*domain.Conversation")).
			Run(func(args mock.Arguments) {
				conversation := args.Get(1).(*domain.Conversation)
				conversation.ID = conversationID
			}).
			Return(nil)

		svc := NewConversationService(conversationRepo, messageRepo, ingester, newRouterWith(provider))

		result, err := svc.Create(ctx, owner, domain.ConversationCreate{
			UserInput: "hello",
			Images:    []string{"data:image/jpeg;base64,aGk="},
		})
		require.NoError(t, err)
		assert.Equal(t, conversationID, result.Conversation.ID)
		assert.Equal(t, owner.ID, result.Conversation.OwnerID)
		assert.Equal(t, []string{"https://cdn.example.com/images/a.jpg"}, result.Conversation.ImageURLs)
		assert.Empty(t, result.Prompt)
		provider.AssertNotCalled(t, "Complete")
		messageRepo.AssertNotCalled(t, "AppendExchange")
	})

	t.Run("prompt submission completes and persists the exchange", func(t *testing.T) {
		conversationRepo := new(MockConversationRepository)
		messageRepo := new(MockMessageRepository)
		ingester := new(MockIngester)
		provider := new(MockLLMProvider)

		ingester.On("IngestAll", ctx, mock.Anything, owner).Return([]string{}, nil)
		conversationRepo.On("Create", ctx, mock.AnythingOfType("*domain.Conversation")).
			Run(func(args mock.Arguments) {
				args.Get(1).(*domain.Conversation).ID = conversationID
			}).
			Return(nil)
		provider.On("Complete", ctx, []llm.Message{
			{Role: "user", Content: "earlier question"},
			{Role: "assistant", Content: "earlier answer"},
			{Role: "user", Content: "hello"},
		}, "").Return(&llm.Response{Content: "hi there", Model: "mock-model"}, nil)
		messageRepo.On("AppendExchange", ctx, conversationID, "hello", "hi there").
			Return([]domain.Message{
				{ConversationID: conversationID, Role: domain.RoleUser, Content: "hello", Sequence: 1},
				{ConversationID: conversationID, Role: domain.RoleAssistant, Content: "hi there", Sequence: 2},
			}, nil)

		svc := NewConversationService(conversationRepo, messageRepo, ingester, newRouterWith(provider))

		result, err := svc.Create(ctx, owner, domain.ConversationCreate{
			UserInput: "hello ",
			Prompt: []domain.PromptMessage{
				{Role: domain.RoleUser, Content: "earlier question"},
				{Role: domain.RoleAssistant, Content: "earlier answer"},
				{Role: domain.RoleUser, Content: "hello"},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, "hello", result.Conversation.Text, "stored text matches the persisted user turn")
		require.Len(t, result.Prompt, 2)
		assert.Equal(t, domain.RoleUser, result.Prompt[0].Role)
		assert.Equal(t, "hello", result.Prompt[0].Content)
		assert.Equal(t, domain.RoleAssistant, result.Prompt[1].Role)
		assert.Equal(t, "hi there", result.Prompt[1].Content)
		messageRepo.AssertExpectations(t)
	})

	t.Run("completion failure leaves no exchange behind", func(t *testing.T) {
		conversationRepo := new(MockConversationRepository)
		messageRepo := new(MockMessageRepository)
		ingester := new(MockIngester)
		provider := new(MockLLMProvider)

		ingester.On("IngestAll", ctx, mock.Anything, owner).Return([]string{}, nil)
		conversationRepo.On("Create", ctx, mock.Anything).Return(nil)
		provider.On("Complete", ctx, mock.Anything, "").
			Return(nil, errors.New("model overloaded"))

		svc := NewConversationService(conversationRepo, messageRepo, ingester, newRouterWith(provider))

		_, err := svc.Create(ctx, owner, domain.ConversationCreate{
			UserInput: "hello",
			Prompt:    []domain.PromptMessage{{Role: domain.RoleUser, Content: "hello"}},
		})
		assert.ErrorIs(t, err, domain.ErrCompletion)
		messageRepo.AssertNotCalled(t, "AppendExchange")
	})

	t.Run("exchange persistence failure fails the whole request", func(t *testing.T) {
		conversationRepo := new(MockConversationRepository)
		messageRepo := new(MockMessageRepository)
		ingester := new(MockIngester)
		provider := new(MockLLMProvider)

		ingester.On("IngestAll", ctx, mock.Anything, owner).Return([]string{}, nil)
		conversationRepo.On("Create", ctx, mock.Anything).Return(nil)
		provider.On("Complete", ctx, mock.Anything, "").
			Return(&llm.Response{Content: "hi there"}, nil)
		messageRepo.On("AppendExchange", ctx, mock.Anything, "hello", "hi there").
			Return(nil, fmt.Errorf("%w: insert exchange", domain.ErrPersistence))

		svc := NewConversationService(conversationRepo, messageRepo, ingester, newRouterWith(provider))

		_, err := svc.Create(ctx, owner, domain.ConversationCreate{
			UserInput: "hello",
			Prompt:    []domain.PromptMessage{{Role: domain.RoleUser, Content: "hello"}},
		})
		assert.ErrorIs(t, err, domain.ErrPersistence)
	})

	t.Run("nil completer stores without completing", func(t *testing.T) {
		conversationRepo := new(MockConversationRepository)
		messageRepo := new(MockMessageRepository)
		ingester := new(MockIngester)

		ingester.On("IngestAll", ctx, mock.Anything, owner).Return([]string{}, nil)
		conversationRepo.On("Create", ctx, mock.Anything).Return(nil)

		svc := NewConversationService(conversationRepo, messageRepo, ingester, nil)

		result, err := svc.Create(ctx, owner, domain.ConversationCreate{
			UserInput: "hello",
			Prompt:    []domain.PromptMessage{{Role: domain.RoleUser, Content: "hello"}},
		})
		require.NoError(t, err)
		assert.Empty(t, result.Prompt)
		messageRepo.AssertNotCalled(t, "AppendExchange")
	})
}

func TestConversationService_List(t *testing.T) {
	ctx := context.Background()
	owner := &domain.Identity{ID: uuid.New()}

	conversationRepo := new(MockConversationRepository)
	conversationRepo.On("ListByOwner", ctx, owner.ID, 50).
		Return([]domain.Conversation{{OwnerID: owner.ID, Text: "hello"}}, nil)

	svc := NewConversationService(conversationRepo, nil, nil, nil)

	conversations, err := svc.List(ctx, owner, 0)
	require.NoError(t, err)
	assert.Len(t, conversations, 1)
	conversationRepo.AssertExpectations(t)
}

func TestConversationService_Get(t *testing.T) {
	ctx := context.Background()
	owner := &domain.Identity{ID: uuid.New()}
	conversationID := uuid.New()

	t.Run("owned conversation returns detail", func(t *testing.T) {
		conversationRepo := new(MockConversationRepository)
		messageRepo := new(MockMessageRepository)
		conversationRepo.On("Get", ctx, conversationID).
			Return(&domain.Conversation{ID: conversationID, OwnerID: owner.ID, Text: "hello"}, nil)
		messageRepo.On("ListByConversation", ctx, conversationID, 200).
			Return([]domain.Message{{Role: domain.RoleUser, Content: "hello", Sequence: 1}}, nil)

		svc := NewConversationService(conversationRepo, messageRepo, nil, nil)

		detail, err := svc.Get(ctx, owner, conversationID)
		require.NoError(t, err)
		require.NotNil(t, detail)
		assert.Equal(t, conversationID, detail.Conversation.ID)
		assert.Len(t, detail.Messages, 1)
	})

	t.Run("missing conversation yields nil", func(t *testing.T) {
		conversationRepo := new(MockConversationRepository)
		conversationRepo.On("Get", ctx, conversationID).Return(nil, nil)

		svc := NewConversationService(conversationRepo, nil, nil, nil)

		detail, err := svc.Get(ctx, owner, conversationID)
		require.NoError(t, err)
		assert.Nil(t, detail)
	})

	t.Run("foreign conversation is hidden", func(t *testing.T) {
		conversationRepo := new(MockConversationRepository)
		messageRepo := new(MockMessageRepository)
		conversationRepo.On("Get", ctx, conversationID).
			Return(&domain.Conversation{ID: conversationID, OwnerID: uuid.New()}, nil)

		svc := NewConversationService(conversationRepo, messageRepo, nil, nil)

		detail, err := svc.Get(ctx, owner, conversationID)
		require.NoError(t, err)
		assert.Nil(t, detail)
		messageRepo.AssertNotCalled(t, "ListByConversation")
	})
}
