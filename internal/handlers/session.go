package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"genieus-backend/internal/models"
	"genieus-backend/internal/session"
)

type SessionHandler struct {
	sessions *session.Manager
}

func NewSessionHandler(sessions *session.Manager) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

func toSessionResponse(s *session.State) models.SessionResponse {
	stack := s.Stack()
	steps := make([]string, len(stack))
	for i, step := range stack {
		steps[i] = string(step)
	}
	return models.SessionResponse{
		Stack:   steps,
		Current: string(s.Current()),
		Busy:    s.Busy(),
		Error:   s.Error(),
	}
}

// GetSession godoc
// @Summary     Get session state
// @Description Returns the navigation stack, busy flag and current error banner.
// @Tags        session
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.SessionResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /session [get]
func (h *SessionHandler) GetSession(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, toSessionResponse(h.sessions.For(userID)))
}

// Navigate godoc
// @Summary     Navigate to a screen
// @Description Pushes the given step onto the navigation stack.
// @Tags        session
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.NavigateRequest true "Destination step"
// @Success     200 {object} models.SessionResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /session/navigate [post]
func (h *SessionHandler) Navigate(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req models.NavigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body", Message: err.Error()})
		return
	}

	step := session.Step(req.Step)
	switch step {
	case session.StepHome, session.StepGenerator, session.StepResult, session.StepBrand, session.StepChat, session.StepPricing:
	default:
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "unknown step " + req.Step})
		return
	}

	s := h.sessions.For(userID)
	s.NavigateTo(step)
	c.JSON(http.StatusOK, toSessionResponse(s))
}

// GoBack godoc
// @Summary     Go back one screen
// @Description Pops the navigation stack. Popping the last entry is a no-op.
// @Tags        session
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.SessionResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /session/back [post]
func (h *SessionHandler) GoBack(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	s := h.sessions.For(userID)
	s.GoBack()
	c.JSON(http.StatusOK, toSessionResponse(s))
}

// GetStatuses godoc
// @Summary     Get workflow progress
// @Description Returns the ordered progress entries of the current or most recent workflow run.
// @Tags        session
// @Produce     json
// @Security    Bearer
// @Success     200 {array} models.StatusEntry
// @Failure     401 {object} models.ErrorResponse
// @Router      /session/statuses [get]
func (h *SessionHandler) GetStatuses(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	entries := toStatusEntries(h.sessions.For(userID).Statuses())
	if entries == nil {
		entries = []models.StatusEntry{}
	}
	c.JSON(http.StatusOK, entries)
}
