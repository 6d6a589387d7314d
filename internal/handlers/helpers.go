package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"genieus-backend/internal/credits"
	"genieus-backend/internal/middleware"
	"genieus-backend/internal/models"
	"genieus-backend/internal/session"
	"genieus-backend/internal/store"
	"genieus-backend/internal/workflow"
)

// requireUserID reads the authenticated user id set by the auth middleware,
// writing the error response itself when it is absent.
func requireUserID(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "user id not found"})
		return uuid.Nil, false
	}
	return id, true
}

// workflowStatus maps workflow errors to HTTP status codes: payment required
// for an empty balance, conflict for a busy project, not found for a missing
// one.
func workflowStatus(err error) int {
	switch {
	case errors.Is(err, credits.ErrInsufficient):
		return http.StatusPaymentRequired
	case errors.Is(err, workflow.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, workflow.ErrMissingInput):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func toAssetResponse(a *models.Asset) models.AssetResponse {
	if a == nil {
		return models.AssetResponse{}
	}
	return models.AssetResponse{
		ID:        a.ID,
		Name:      a.Name,
		MimeType:  a.MimeType,
		Size:      int64(len(a.Data)),
		BlobState: string(a.State),
		URL:       "/api/v1/assets/" + a.ID,
	}
}

func toAssetResponses(assets []*models.Asset) []models.AssetResponse {
	if len(assets) == 0 {
		return nil
	}
	out := make([]models.AssetResponse, len(assets))
	for i, a := range assets {
		out[i] = toAssetResponse(a)
	}
	return out
}

func toProjectResponse(p *models.Project) models.ProjectResponse {
	resp := models.ProjectResponse{
		ID:              p.ID.String(),
		Mode:            string(p.Mode),
		Prompt:          p.Prompt,
		Script:          p.Script,
		Scene:           p.Scene,
		AspectRatio:     p.AspectRatio,
		BatchSize:       p.BatchSize,
		GeneratedImages: toAssetResponses(p.GeneratedImages),
		GeneratedVideos: toAssetResponses(p.GeneratedVideos),
		ReferenceAssets: toAssetResponses(p.ReferenceAssets),
		CreatedAt:       p.CreatedAt,
	}
	if p.ProductAsset != nil {
		a := toAssetResponse(p.ProductAsset)
		resp.ProductAsset = &a
	}
	if len(p.Brief) > 0 {
		resp.Brief = p.Brief
	}
	if len(p.Concepts) > 0 {
		resp.Concepts = p.Concepts
	}
	if len(p.PublishingPack) > 0 {
		resp.PublishingPack = p.PublishingPack
	}
	return resp
}

func toCreditsResponse(b credits.Balance) models.CreditsResponse {
	return models.CreditsResponse{Current: b.Current, Monthly: b.Monthly}
}

func toStatusEntries(statuses []session.Status) []models.StatusEntry {
	if len(statuses) == 0 {
		return nil
	}
	out := make([]models.StatusEntry, len(statuses))
	for i, s := range statuses {
		out[i] = models.StatusEntry{Stage: s.Stage, Label: s.Label, Done: s.Done}
	}
	return out
}
