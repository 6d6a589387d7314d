package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"genieus-backend/internal/models"
	"genieus-backend/internal/publish"
	"genieus-backend/internal/store"
)

type ProjectsHandler struct {
	log       *zap.Logger
	store     store.Store
	publisher *publish.Publisher // optional, nil when no bucket is configured
}

func NewProjectsHandler(log *zap.Logger, st store.Store, publisher *publish.Publisher) *ProjectsHandler {
	return &ProjectsHandler{
		log:       log,
		store:     st,
		publisher: publisher,
	}
}

// CreateProject godoc
// @Summary     Create a new project
// @Description Creates a creative project in one of the five modes: product_ad, art_maker, video_maker, ugc_video, ai_agent.
// @Tags        projects
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.CreateProjectRequest true "Project settings"
// @Success     200 {object} models.ProjectResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /projects [post]
func (h *ProjectsHandler) CreateProject(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req models.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body", Message: err.Error()})
		return
	}

	mode := models.CreativeMode(req.Mode)
	if !mode.Valid() {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid mode", Message: "mode must be one of: product_ad, art_maker, video_maker, ugc_video, ai_agent"})
		return
	}

	p := &models.Project{
		ID:          uuid.New(),
		UserID:      userID,
		Mode:        mode,
		Prompt:      req.Prompt,
		Script:      req.Script,
		Scene:       req.Scene,
		AspectRatio: req.AspectRatio,
		BatchSize:   req.BatchSize,
		CreatedAt:   time.Now(),
	}

	if err := h.store.SaveProject(c.Request.Context(), p); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to create project", Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, toProjectResponse(p))
}

// ListProjects godoc
// @Summary     List projects
// @Description Lists the authenticated user's projects, newest first.
// @Tags        projects
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.ProjectListResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /projects [get]
func (h *ProjectsHandler) ListProjects(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	projects, err := h.store.ProjectsForUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to list projects", Message: err.Error()})
		return
	}

	summaries := make([]models.ProjectSummary, len(projects))
	for i, p := range projects {
		summaries[i] = models.ProjectSummary{
			ID:         p.ID.String(),
			Mode:       string(p.Mode),
			Prompt:     p.Prompt,
			ImageCount: len(p.GeneratedImages),
			VideoCount: len(p.GeneratedVideos),
			CreatedAt:  p.CreatedAt,
		}
	}

	c.JSON(http.StatusOK, models.ProjectListResponse{Projects: summaries})
}

// GetProject godoc
// @Summary     Get project details
// @Description Returns one project with its assets rehydrated from the asset store.
// @Tags        projects
// @Produce     json
// @Security    Bearer
// @Param       project_id path string true "Project ID"
// @Success     200 {object} models.ProjectResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /projects/{project_id} [get]
func (h *ProjectsHandler) GetProject(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	projectID, err := uuid.Parse(c.Param("project_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid project id"})
		return
	}

	p, err := h.store.GetProject(c.Request.Context(), projectID, userID)
	if err != nil {
		c.JSON(workflowStatus(err), models.ErrorResponse{Error: "failed to get project", Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, toProjectResponse(p))
}

// DeleteProject godoc
// @Summary     Delete a project
// @Description Deletes the project, its stored blobs and any mirrored bucket objects. Deleting a missing project succeeds.
// @Tags        projects
// @Produce     json
// @Security    Bearer
// @Param       project_id path string true "Project ID"
// @Success     200 {object} map[string]string
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /projects/{project_id} [delete]
func (h *ProjectsHandler) DeleteProject(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	projectID, err := uuid.Parse(c.Param("project_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid project id"})
		return
	}

	// Ownership check before the delete; a project owned by someone else
	// looks the same as a missing one.
	if _, err := h.store.GetProject(c.Request.Context(), projectID, userID); err != nil {
		if err == store.ErrNotFound {
			c.JSON(http.StatusOK, gin.H{"status": "deleted"})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to delete project", Message: err.Error()})
		return
	}

	if err := h.store.DeleteProject(c.Request.Context(), projectID); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to delete project", Message: err.Error()})
		return
	}

	if h.publisher != nil {
		if err := h.publisher.DeleteProjectAssets(userID, projectID); err != nil {
			h.log.Warn("failed to delete mirrored assets",
				zap.String("project_id", projectID.String()),
				zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// PublishProject godoc
// @Summary     Publish generated assets
// @Description Mirrors the project's generated images and videos to the public storage bucket and returns their public URLs.
// @Tags        projects
// @Produce     json
// @Security    Bearer
// @Param       project_id path string true "Project ID"
// @Success     200 {object} models.UploadResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     503 {object} models.ErrorResponse
// @Router      /projects/{project_id}/publish [post]
func (h *ProjectsHandler) PublishProject(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if h.publisher == nil {
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{Error: "publishing is not configured"})
		return
	}

	projectID, err := uuid.Parse(c.Param("project_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid project id"})
		return
	}

	p, err := h.store.GetProject(c.Request.Context(), projectID, userID)
	if err != nil {
		c.JSON(workflowStatus(err), models.ErrorResponse{Error: "failed to get project", Message: err.Error()})
		return
	}

	var published []models.AssetResponse
	for _, a := range append(append([]*models.Asset{}, p.GeneratedImages...), p.GeneratedVideos...) {
		if !a.HasData() {
			continue
		}
		_, publicURL, err := h.publisher.UploadAsset(userID, projectID, a)
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to publish asset", Message: err.Error()})
			return
		}
		resp := toAssetResponse(a)
		resp.PublicURL = publicURL
		published = append(published, resp)
	}

	c.JSON(http.StatusOK, models.UploadResponse{
		ProjectID: projectID.String(),
		Assets:    published,
	})
}
