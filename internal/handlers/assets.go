package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"genieus-backend/internal/models"
	"genieus-backend/internal/store"
)

type AssetsHandler struct {
	store store.Store
}

func NewAssetsHandler(st store.Store) *AssetsHandler {
	return &AssetsHandler{store: st}
}

// GetAsset godoc
// @Summary     Download an asset
// @Description Serves the raw binary payload of a stored asset.
// @Tags        assets
// @Produce     octet-stream
// @Security    Bearer
// @Param       asset_id path string true "Asset ID"
// @Success     200 {file} binary
// @Failure     401 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /assets/{asset_id} [get]
func (h *AssetsHandler) GetAsset(c *gin.Context) {
	if _, ok := requireUserID(c); !ok {
		return
	}

	a, err := h.store.Asset(c.Request.Context(), c.Param("asset_id"))
	if err != nil {
		if err == store.ErrNotFound {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "asset not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to get asset", Message: err.Error()})
		return
	}

	c.Header("Content-Disposition", `inline; filename="`+a.Name+`"`)
	c.Data(http.StatusOK, a.MimeType, a.Data)
}
