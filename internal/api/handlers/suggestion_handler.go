package handlers

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/replydesk/replydesk-backend/internal/api/response"
	"github.com/replydesk/replydesk-backend/internal/repository"
)

// SuggestionHandler handles suggestion-related HTTP requests
type SuggestionHandler struct {
	suggestionRepo repository.SuggestionRepository
	threadRepo     repository.ThreadRepository
}

// NewSuggestionHandler creates a new SuggestionHandler
func NewSuggestionHandler(suggestionRepo repository.SuggestionRepository, threadRepo repository.ThreadRepository) *SuggestionHandler {
	return &SuggestionHandler{
		suggestionRepo: suggestionRepo,
		threadRepo:     threadRepo,
	}
}

// ListByMessage handles GET /api/messages/:message_id/suggestions
func (h *SuggestionHandler) ListByMessage(c echo.Context) error {
	messageID, err := strconv.ParseUint(c.Param("message_id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "invalid message ID")
	}

	// Verify message exists
	if _, err := h.threadRepo.GetMessage(c.Request().Context(), uint(messageID)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "message not found")
		}
		return response.InternalError(c, "failed to get message")
	}

	suggestions, err := h.suggestionRepo.ListByMessage(c.Request().Context(), uint(messageID))
	if err != nil {
		return response.InternalError(c, "failed to list suggestions")
	}

	return response.Success(c, suggestions)
}

// Get handles GET /api/suggestions/:id
func (h *SuggestionHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "invalid suggestion ID")
	}

	suggestion, err := h.suggestionRepo.GetByID(c.Request().Context(), uint(id))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "suggestion not found")
		}
		return response.InternalError(c, "failed to get suggestion")
	}

	return response.Success(c, suggestion)
}
