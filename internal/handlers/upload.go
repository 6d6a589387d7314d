package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"genieus-backend/internal/models"
	"genieus-backend/internal/store"
)

// maxUploadBytes bounds a single multipart upload.
const maxUploadBytes = 32 << 20

type UploadHandler struct {
	store store.Store
}

func NewUploadHandler(st store.Store) *UploadHandler {
	return &UploadHandler{store: st}
}

// Upload godoc
// @Summary     Upload project assets
// @Description Uploads one or more files into a project slot. The "role" form field selects the slot: product, reference, start_frame or end_frame. Single-slot roles replace the existing asset.
// @Tags        projects
// @Accept      multipart/form-data
// @Produce     json
// @Security    Bearer
// @Param       project_id path string true "Project ID"
// @Param       role formData string false "Asset role (default reference)"
// @Param       files formData file true "Files to upload"
// @Success     200 {object} models.UploadResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /projects/{project_id}/upload [post]
func (h *UploadHandler) Upload(c *gin.Context) {
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

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid multipart form", Message: err.Error()})
		return
	}

	role := "reference"
	if v := form.Value["role"]; len(v) > 0 && v[0] != "" {
		role = v[0]
	}

	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "no files provided"})
		return
	}
	if role != "reference" && len(files) > 1 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "role " + role + " accepts a single file"})
		return
	}

	var uploaded []models.AssetResponse
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "failed to open file", Message: err.Error()})
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "failed to read file", Message: err.Error()})
			return
		}
		if len(data) == 0 {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "file " + fh.Filename + " is empty"})
			return
		}

		a := &models.Asset{
			ID:       uuid.NewString(),
			MimeType: fh.Header.Get("Content-Type"),
			Name:     fh.Filename,
			Data:     data,
			State:    models.BlobAttached,
		}
		if a.MimeType == "" {
			a.MimeType = "application/octet-stream"
		}

		switch role {
		case "product":
			p.ProductAsset = a
		case "start_frame":
			p.StartFrame = a
		case "end_frame":
			p.EndFrame = a
		case "reference":
			p.ReferenceAssets = append(p.ReferenceAssets, a)
		default:
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "unknown role " + role})
			return
		}
		uploaded = append(uploaded, toAssetResponse(a))
	}

	if err := h.store.SaveProject(c.Request.Context(), p); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to save project", Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.UploadResponse{
		ProjectID: projectID.String(),
		Assets:    uploaded,
	})
}
