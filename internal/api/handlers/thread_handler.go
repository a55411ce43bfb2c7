package handlers

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/replydesk/replydesk-backend/internal/api/response"
	"github.com/replydesk/replydesk-backend/internal/ingest"
	"github.com/replydesk/replydesk-backend/internal/repository"
	"github.com/replydesk/replydesk-backend/internal/services"
)

// ThreadHandler handles thread-related HTTP requests
type ThreadHandler struct {
	triage     services.TriageService
	threadRepo repository.ThreadRepository
}

// NewThreadHandler creates a new ThreadHandler
func NewThreadHandler(triage services.TriageService, threadRepo repository.ThreadRepository) *ThreadHandler {
	return &ThreadHandler{
		triage:     triage,
		threadRepo: threadRepo,
	}
}

// Ingest handles POST /api/threads/ingest
func (h *ThreadHandler) Ingest(c echo.Context) error {
	payload, err := ingest.Parse(c.Request().Body)
	if err != nil {
		return response.Error(c, err)
	}

	result, err := h.triage.IngestAndTriage(c.Request().Context(), payload)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, result)
}

// List handles GET /api/threads
func (h *ThreadHandler) List(c echo.Context) error {
	limit := 20
	offset := 0

	if l := c.QueryParam("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if o := c.QueryParam("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	threads, total, err := h.threadRepo.List(c.Request().Context(), limit, offset)
	if err != nil {
		return response.InternalError(c, "failed to list threads")
	}

	return response.Paginated(c, threads, total, limit, offset)
}

// Get handles GET /api/threads/:id
func (h *ThreadHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "invalid thread ID")
	}

	thread, err := h.threadRepo.GetByID(c.Request().Context(), uint(id))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "thread not found")
		}
		return response.InternalError(c, "failed to get thread")
	}

	return response.Success(c, thread)
}

// Delete handles DELETE /api/threads/:id
func (h *ThreadHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "invalid thread ID")
	}

	if err := h.threadRepo.Delete(c.Request().Context(), uint(id)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "thread not found")
		}
		return response.InternalError(c, "failed to delete thread")
	}

	return response.NoContent(c)
}
