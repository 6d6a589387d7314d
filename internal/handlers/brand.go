package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"genieus-backend/internal/models"
	"genieus-backend/internal/store"
	"genieus-backend/internal/workflow"
)

type BrandHandler struct {
	store  store.Store
	engine *workflow.Engine
}

func NewBrandHandler(st store.Store, engine *workflow.Engine) *BrandHandler {
	return &BrandHandler{store: st, engine: engine}
}

// GetBrandProfile godoc
// @Summary     Get the brand profile
// @Description Returns the authenticated user's brand profile with the logo rehydrated.
// @Tags        brand
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.BrandProfile
// @Failure     401 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /brand [get]
func (h *BrandHandler) GetBrandProfile(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	b, err := h.store.BrandProfile(c.Request.Context(), userID)
	if err != nil {
		c.JSON(workflowStatus(err), models.ErrorResponse{Error: "failed to get brand profile", Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, b)
}

// SaveBrandProfile godoc
// @Summary     Save the brand profile
// @Description Creates or replaces the user's brand profile. The logo is uploaded separately via the logo endpoint.
// @Tags        brand
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.BrandProfileRequest true "Brand profile fields"
// @Success     200 {object} models.BrandProfile
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /brand [put]
func (h *BrandHandler) SaveBrandProfile(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req models.BrandProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body", Message: err.Error()})
		return
	}
	if req.Business == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "business is required"})
		return
	}

	b := &models.BrandProfile{
		UserID:     userID,
		Business:   req.Business,
		Overview:   req.Overview,
		Fonts:      req.Fonts,
		Colors:     req.Colors,
		Missions:   req.Missions,
		Values:     req.Values,
		Tones:      req.Tones,
		Aesthetics: req.Aesthetics,
		UpdatedAt:  time.Now(),
	}

	// Preserve an existing logo across metadata-only updates.
	if existing, err := h.store.BrandProfile(c.Request.Context(), userID); err == nil {
		b.Logo = existing.Logo
	}

	if err := h.store.SaveBrandProfile(c.Request.Context(), b); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to save brand profile", Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, b)
}

// UploadBrandLogo godoc
// @Summary     Upload the brand logo
// @Description Attaches a logo image to the user's brand profile, creating a minimal profile when none exists.
// @Tags        brand
// @Accept      multipart/form-data
// @Produce     json
// @Security    Bearer
// @Param       file formData file true "Logo image"
// @Success     200 {object} models.BrandProfile
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /brand/logo [put]
func (h *BrandHandler) UploadBrandLogo(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "file is required", Message: err.Error()})
		return
	}

	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "failed to open file", Message: err.Error()})
		return
	}
	data, err := io.ReadAll(f)
	f.Close()
	if err != nil || len(data) == 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "failed to read file"})
		return
	}

	b, err := h.store.BrandProfile(c.Request.Context(), userID)
	if err != nil {
		if err != store.ErrNotFound {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to get brand profile", Message: err.Error()})
			return
		}
		b = &models.BrandProfile{UserID: userID}
	}

	mimeType := fh.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	b.Logo = &models.Asset{
		ID:       uuid.NewString(),
		MimeType: mimeType,
		Name:     fh.Filename,
		Data:     data,
		State:    models.BlobAttached,
	}
	b.UpdatedAt = time.Now()

	if err := h.store.SaveBrandProfile(c.Request.Context(), b); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to save brand profile", Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, b)
}

// DeleteBrandProfile godoc
// @Summary     Delete the brand profile
// @Description Removes the profile and its stored logo. Deleting a missing profile succeeds.
// @Tags        brand
// @Produce     json
// @Security    Bearer
// @Success     200 {object} map[string]string
// @Failure     401 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /brand [delete]
func (h *BrandHandler) DeleteBrandProfile(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.store.DeleteBrandProfile(c.Request.Context(), userID); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to delete brand profile", Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// FetchBrandProfile godoc
// @Summary     Extract a brand profile from a website
// @Description Asks the generative collaborator to read the given URL and extract a brand profile. Costs credits.
// @Tags        brand
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.BrandFetchRequest true "Website URL"
// @Success     200 {object} models.BrandProfile
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     402 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /brand/fetch [post]
func (h *BrandHandler) FetchBrandProfile(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req models.BrandFetchRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.URL == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "url is required"})
		return
	}

	b, err := h.engine.BrandFromURL(c.Request.Context(), userID, req.URL)
	if err != nil {
		c.JSON(workflowStatus(err), models.ErrorResponse{Error: "brand fetch failed", Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, b)
}
