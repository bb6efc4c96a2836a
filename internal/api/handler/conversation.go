package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shipit-ai/shipit-api/internal/api/middleware"
	"github.com/shipit-ai/shipit-api/internal/api/response"
	"github.com/shipit-ai/shipit-api/internal/domain"
	"github.com/shipit-ai/shipit-api/internal/service"
)

var validate = validator.New()

// maxSubmissionBytes bounds the multipart body; three base64 JPEGs fit well
// within it.
const maxSubmissionBytes = 32 << 20

// ConversationHandler handles conversation endpoints
type ConversationHandler struct {
	conversations *service.ConversationService
}

// NewConversationHandler creates a new conversation handler
func NewConversationHandler(conversations *service.ConversationService) *ConversationHandler {
	return &ConversationHandler{conversations: conversations}
}

// Create handles a multipart conversation submission: `userInput` text,
// up to three `images` data-URLs, and an optional `prompt` history that
// selects the completion-invoking variant.
func (h *ConversationHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetIdentity(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	if err := r.ParseMultipartForm(maxSubmissionBytes); err != nil {
		response.BadRequest(w, "invalid multipart form")
		return
	}

	input := domain.ConversationCreate{
		UserInput: r.FormValue("userInput"),
		Images:    r.MultipartForm.Value["images"],
	}

	if promptField := r.FormValue("prompt"); promptField != "" {
		if err := json.Unmarshal([]byte(promptField), &input.Prompt); err != nil {
			response.BadRequest(w, "invalid prompt history")
			return
		}
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationMessage(err))
		return
	}

	result, err := h.conversations.Create(r.Context(), user, input)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Created(w, result)
}

// List returns the authenticated owner's conversations, newest first.
func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetIdentity(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	conversations, err := h.conversations.List(r.Context(), user, 50)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if conversations == nil {
		conversations = []domain.Conversation{}
	}

	response.OK(w, map[string]any{"conversations": conversations})
}

// Get returns one conversation with its message turns.
func (h *ConversationHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetIdentity(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "conversationID"))
	if err != nil {
		response.BadRequest(w, "invalid conversation ID")
		return
	}

	detail, err := h.conversations.Get(r.Context(), user, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if detail == nil {
		response.NotFound(w, "conversation not found")
		return
	}

	response.OK(w, detail)
}

// validationMessage keeps the caller-facing wording of the original clients.
func validationMessage(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			switch {
			case e.Field() == "UserInput":
				return "User input is required"
			case e.Field() == "Images" && e.Tag() == "max":
				return "Maximum 3 images allowed"
			case e.Field() == "Images":
				return "Invalid base64 image data"
			}
		}
	}
	return "invalid request"
}

// writeServiceError maps the error taxonomy onto the HTTP surface. Every
// failure of the same kind takes this one path.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrSessionExpired):
		response.ErrorCode(w, http.StatusUnauthorized, "session expired, please sign in again", middleware.SessionExpiredCode)
	case errors.Is(err, domain.ErrUnauthenticated):
		response.Unauthorized(w, "invalid or expired token")
	case errors.Is(err, domain.ErrTooManyImages):
		response.BadRequest(w, "Maximum 3 images allowed")
	case errors.Is(err, domain.ErrInvalidImageData):
		response.BadRequest(w, "Invalid base64 image data")
	case errors.Is(err, domain.ErrInvalidInput):
		response.BadRequest(w, "User input is required")
	default:
		response.ErrorDetails(w, http.StatusInternalServerError, "Failed to create conversation", err.Error())
	}
}
