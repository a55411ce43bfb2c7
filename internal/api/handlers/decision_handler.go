package handlers

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/replydesk/replydesk-backend/internal/api/response"
	"github.com/replydesk/replydesk-backend/internal/services"
)

// DecisionHandler handles decision-related HTTP requests
type DecisionHandler struct {
	decisions services.DecisionService
	drafts    services.DraftService
}

// NewDecisionHandler creates a new DecisionHandler
func NewDecisionHandler(decisions services.DecisionService, drafts services.DraftService) *DecisionHandler {
	return &DecisionHandler{
		decisions: decisions,
		drafts:    drafts,
	}
}

// Create handles POST /api/suggestions/:suggestion_id/decisions
func (h *DecisionHandler) Create(c echo.Context) error {
	suggestionID, err := strconv.ParseUint(c.Param("suggestion_id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "invalid suggestion ID")
	}

	var input services.DecisionInput
	if err := c.Bind(&input); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	outcome, err := h.decisions.RecordDecision(c.Request().Context(), uint(suggestionID), input)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, outcome)
}

// Get handles GET /api/decisions/:id
func (h *DecisionHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "invalid decision ID")
	}

	decision, err := h.decisions.GetDecision(c.Request().Context(), uint(id))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, decision)
}

// ListBySuggestion handles GET /api/suggestions/:suggestion_id/decisions
func (h *DecisionHandler) ListBySuggestion(c echo.Context) error {
	suggestionID, err := strconv.ParseUint(c.Param("suggestion_id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "invalid suggestion ID")
	}

	decisions, err := h.decisions.ListBySuggestion(c.Request().Context(), uint(suggestionID))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, decisions)
}

// createDraftRequest is the body for manually authoring a draft
type createDraftRequest struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// CreateDraft handles POST /api/decisions/:id/draft
func (h *DecisionHandler) CreateDraft(c echo.Context) error {
	decisionID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "invalid decision ID")
	}

	var req createDraftRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	draft, err := h.drafts.CreateForDecision(c.Request().Context(), uint(decisionID), req.Subject, req.Body)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, draft)
}
