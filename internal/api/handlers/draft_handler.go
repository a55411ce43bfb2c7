package handlers

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/replydesk/replydesk-backend/internal/api/response"
	"github.com/replydesk/replydesk-backend/internal/services"
)

// DraftHandler handles draft-related HTTP requests
type DraftHandler struct {
	drafts services.DraftService
}

// NewDraftHandler creates a new DraftHandler
func NewDraftHandler(drafts services.DraftService) *DraftHandler {
	return &DraftHandler{drafts: drafts}
}

// List handles GET /api/drafts
func (h *DraftHandler) List(c echo.Context) error {
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

	drafts, total, err := h.drafts.ListDrafts(c.Request().Context(), c.QueryParam("status"), limit, offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, drafts, total, limit, offset)
}

// Get handles GET /api/drafts/:id
func (h *DraftHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "invalid draft ID")
	}

	draft, err := h.drafts.GetDraft(c.Request().Context(), uint(id))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, draft)
}

// Update handles PATCH /api/drafts/:id
func (h *DraftHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "invalid draft ID")
	}

	var edit services.DraftEdit
	if err := c.Bind(&edit); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	draft, err := h.drafts.EditDraft(c.Request().Context(), uint(id), edit)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, draft)
}

// Send handles POST /api/drafts/:id/send
func (h *DraftHandler) Send(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "invalid draft ID")
	}

	draft, err := h.drafts.SendDraft(c.Request().Context(), uint(id))
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessWithMessage(c, draft, "draft sent")
}
