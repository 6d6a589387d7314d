package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"genieus-backend/internal/account"
	"genieus-backend/internal/credits"
	"genieus-backend/internal/genai"
	"genieus-backend/internal/handlers"
	"genieus-backend/internal/models"
	"genieus-backend/internal/session"
	"genieus-backend/internal/store"
	"genieus-backend/internal/workflow"
)

type cannedCollaborator struct{}

func (cannedCollaborator) GenerateJSON(ctx context.Context, req genai.StructuredRequest) (json.RawMessage, error) {
	return json.RawMessage(`{"caption":"canned"}`), nil
}

func (cannedCollaborator) GenerateImages(ctx context.Context, req genai.ImageRequest) ([]genai.GeneratedImage, error) {
	return []genai.GeneratedImage{{MimeType: "image/png", Data: []byte("img")}}, nil
}

func (cannedCollaborator) StartVideo(ctx context.Context, req genai.VideoRequest) (string, error) {
	return "op-1", nil
}

func (cannedCollaborator) WaitVideo(ctx context.Context, operationID string) (*genai.VideoOperation, error) {
	return &genai.VideoOperation{OperationID: operationID, Done: true, MimeType: "video/mp4", Data: []byte("vid")}, nil
}

func generateRouter(t *testing.T, userID uuid.UUID, grant int) (*gin.Engine, *store.Memory) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	st := store.NewMemory()
	ledger := credits.NewLedger()
	registry := account.NewRegistry(ledger)
	registry.Ensure(userID)
	ledger.Grant(userID, grant)
	sessions := session.NewManager()
	engine := workflow.NewEngine(zap.NewNop(), st, cannedCollaborator{}, ledger, registry, sessions, nil)

	router := gin.New()
	api := router.Group("/api/v1")
	api.Use(testAuth(userID))
	gh := handlers.NewGenerateHandler(engine, ledger, sessions)
	api.POST("/projects/:project_id/generate", gh.Generate)
	return router, st
}

func seedProject(t *testing.T, st *store.Memory, userID uuid.UUID) *models.Project {
	t.Helper()
	p := &models.Project{
		ID:        uuid.New(),
		UserID:    userID,
		Mode:      models.ModeArtMaker,
		Prompt:    "a skyline at dusk",
		BatchSize: 1,
		CreatedAt: time.Now(),
	}
	require.NoError(t, st.SaveProject(context.Background(), p))
	return p
}

func TestGenerateEndpoint_Success(t *testing.T) {
	userID := uuid.New()
	router, st := generateRouter(t, userID, 100)
	p := seedProject(t, st, userID)

	req, _ := http.NewRequest("POST", "/api/v1/projects/"+p.ID.String()+"/generate", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.GenerateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Project.GeneratedImages, 1)
	assert.Equal(t, 100-workflow.CostImageBatch, resp.Credits.Current)
	assert.NotEmpty(t, resp.Statuses)
}

func TestGenerateEndpoint_InsufficientCreditsIs402(t *testing.T) {
	userID := uuid.New()
	router, st := generateRouter(t, userID, 3)
	p := seedProject(t, st, userID)

	req, _ := http.NewRequest("POST", "/api/v1/projects/"+p.ID.String()+"/generate", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusPaymentRequired, w.Code)
}

func TestGenerateEndpoint_UnknownProjectIs404(t *testing.T) {
	userID := uuid.New()
	router, _ := generateRouter(t, userID, 100)

	req, _ := http.NewRequest("POST", "/api/v1/projects/"+uuid.NewString()+"/generate", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
