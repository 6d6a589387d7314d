package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"genieus-backend/internal/credits"
	"genieus-backend/internal/models"
	"genieus-backend/internal/session"
	"genieus-backend/internal/workflow"
)

type GenerateHandler struct {
	engine   *workflow.Engine
	ledger   *credits.Ledger
	sessions *session.Manager
}

func NewGenerateHandler(engine *workflow.Engine, ledger *credits.Ledger, sessions *session.Manager) *GenerateHandler {
	return &GenerateHandler{
		engine:   engine,
		ledger:   ledger,
		sessions: sessions,
	}
}

func (h *GenerateHandler) respond(c *gin.Context, userID uuid.UUID, p *models.Project, err error) {
	if err != nil {
		c.JSON(workflowStatus(err), models.ErrorResponse{Error: "generation failed", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, models.GenerateResponse{
		Project:  toProjectResponse(p),
		Statuses: toStatusEntries(h.sessions.For(userID).Statuses()),
		Credits:  toCreditsResponse(h.ledger.Balance(userID)),
	})
}

// Generate godoc
// @Summary     Run the project's generation workflow
// @Description Reserves credits and runs the workflow for the project's mode. Rejected with 402 when credits are insufficient and 409 when a run is already in flight for the project.
// @Tags        generate
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       project_id path string true "Project ID"
// @Param       request body models.GenerateRequest false "Optional prompt override"
// @Success     200 {object} models.GenerateResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     402 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /projects/{project_id}/generate [post]
func (h *GenerateHandler) Generate(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	projectID, err := uuid.Parse(c.Param("project_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid project id"})
		return
	}

	var req models.GenerateRequest
	_ = c.ShouldBindJSON(&req)

	p, err := h.engine.Generate(c.Request.Context(), userID, projectID, req.Prompt)
	h.respond(c, userID, p, err)
}

// Regenerate godoc
// @Summary     Regenerate one image
// @Description Replaces the selected generated image, or appends a fresh one when no asset id is given.
// @Tags        generate
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       project_id path string true "Project ID"
// @Param       request body models.RegenerateRequest false "Target asset and optional prompt"
// @Success     200 {object} models.GenerateResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     402 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /projects/{project_id}/regenerate [post]
func (h *GenerateHandler) Regenerate(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	projectID, err := uuid.Parse(c.Param("project_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid project id"})
		return
	}

	var req models.RegenerateRequest
	_ = c.ShouldBindJSON(&req)

	p, err := h.engine.RegenerateImage(c.Request.Context(), userID, projectID, req.AssetID, req.Prompt)
	h.respond(c, userID, p, err)
}

// Animate godoc
// @Summary     Animate a generated image
// @Description Uses the selected image as the start frame of a new video generation.
// @Tags        generate
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       project_id path string true "Project ID"
// @Param       request body models.AnimateRequest true "Source image and optional prompt"
// @Success     200 {object} models.GenerateResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     402 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /projects/{project_id}/animate [post]
func (h *GenerateHandler) Animate(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	projectID, err := uuid.Parse(c.Param("project_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid project id"})
		return
	}

	var req models.AnimateRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.AssetID == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "asset_id is required"})
		return
	}

	p, err := h.engine.AnimateImage(c.Request.Context(), userID, projectID, req.AssetID, req.Prompt)
	h.respond(c, userID, p, err)
}

// Extend godoc
// @Summary     Extend a generated video
// @Description Continues the selected video into a longer clip.
// @Tags        generate
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       project_id path string true "Project ID"
// @Param       request body models.ExtendRequest true "Source video and optional prompt"
// @Success     200 {object} models.GenerateResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     402 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /projects/{project_id}/extend [post]
func (h *GenerateHandler) Extend(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	projectID, err := uuid.Parse(c.Param("project_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid project id"})
		return
	}

	var req models.ExtendRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.AssetID == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "asset_id is required"})
		return
	}

	p, err := h.engine.ExtendVideo(c.Request.Context(), userID, projectID, req.AssetID, req.Prompt)
	h.respond(c, userID, p, err)
}
