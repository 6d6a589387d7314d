package handlers_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"genieus-backend/internal/handlers"
	"genieus-backend/internal/middleware"
	"genieus-backend/internal/models"
	"genieus-backend/internal/store"
)

// testAuth injects a fixed user id the way the auth middleware would.
func testAuth(userID uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Next()
	}
}

func projectsRouter(st store.Store, userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := handlers.NewProjectsHandler(zap.NewNop(), st, nil)
	uh := handlers.NewUploadHandler(st)
	ah := handlers.NewAssetsHandler(st)

	router := gin.New()
	api := router.Group("/api/v1")
	api.Use(testAuth(userID))
	api.POST("/projects", h.CreateProject)
	api.GET("/projects", h.ListProjects)
	api.GET("/projects/:project_id", h.GetProject)
	api.DELETE("/projects/:project_id", h.DeleteProject)
	api.POST("/projects/:project_id/upload", uh.Upload)
	api.GET("/assets/:asset_id", ah.GetAsset)
	return router
}

func createProject(t *testing.T, router *gin.Engine, body string) models.ProjectResponse {
	t.Helper()
	req, _ := http.NewRequest("POST", "/api/v1/projects", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.ProjectResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestCreateProject(t *testing.T) {
	router := projectsRouter(store.NewMemory(), uuid.New())

	resp := createProject(t, router, `{"mode":"product_ad","prompt":"a can of soda","batch_size":2}`)
	assert.Equal(t, "product_ad", resp.Mode)
	assert.Equal(t, "a can of soda", resp.Prompt)
	assert.NotEmpty(t, resp.ID)
}

func TestCreateProject_InvalidMode(t *testing.T) {
	router := projectsRouter(store.NewMemory(), uuid.New())

	req, _ := http.NewRequest("POST", "/api/v1/projects", bytes.NewBufferString(`{"mode":"hologram"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetProject_NotFound(t *testing.T) {
	router := projectsRouter(store.NewMemory(), uuid.New())

	req, _ := http.NewRequest("GET", "/api/v1/projects/"+uuid.NewString(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUploadAndServeAsset(t *testing.T) {
	st := store.NewMemory()
	userID := uuid.New()
	router := projectsRouter(st, userID)

	created := createProject(t, router, `{"mode":"product_ad","prompt":"x"}`)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("role", "product"))
	part, err := mw.CreateFormFile("files", "product.png")
	require.NoError(t, err)
	part.Write([]byte("png-bytes"))
	require.NoError(t, mw.Close())

	req, _ := http.NewRequest("POST", "/api/v1/projects/"+created.ID+"/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var upload models.UploadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &upload))
	require.Len(t, upload.Assets, 1)
	assert.Equal(t, "attached", upload.Assets[0].BlobState)

	// The binary is served back through the asset route.
	req, _ = http.NewRequest("GET", "/api/v1/assets/"+upload.Assets[0].ID, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "png-bytes", w.Body.String())
}

func TestUpload_MultipleFilesForSingleSlotRejected(t *testing.T) {
	st := store.NewMemory()
	userID := uuid.New()
	router := projectsRouter(st, userID)
	created := createProject(t, router, `{"mode":"video_maker"}`)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("role", "start_frame")
	for _, name := range []string{"a.png", "b.png"} {
		part, _ := mw.CreateFormFile("files", name)
		part.Write([]byte("data"))
	}
	mw.Close()

	req, _ := http.NewRequest("POST", "/api/v1/projects/"+created.ID+"/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteProject_Idempotent(t *testing.T) {
	st := store.NewMemory()
	userID := uuid.New()
	router := projectsRouter(st, userID)
	created := createProject(t, router, `{"mode":"art_maker"}`)

	for i := 0; i < 2; i++ {
		req, _ := http.NewRequest("DELETE", "/api/v1/projects/"+created.ID, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestListProjects_OnlyOwn(t *testing.T) {
	st := store.NewMemory()
	alice := uuid.New()
	bob := uuid.New()

	createProject(t, projectsRouter(st, alice), `{"mode":"art_maker","prompt":"alice's"}`)
	createProject(t, projectsRouter(st, bob), `{"mode":"art_maker","prompt":"bob's"}`)

	req, _ := http.NewRequest("GET", "/api/v1/projects", nil)
	w := httptest.NewRecorder()
	projectsRouter(st, alice).ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var list models.ProjectListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Projects, 1)
	assert.Equal(t, "alice's", list.Projects[0].Prompt)
}
