package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"genieus-backend/internal/account"
	"genieus-backend/internal/credits"
	"genieus-backend/internal/handlers"
	"genieus-backend/internal/models"
	"genieus-backend/internal/session"
)

func accountRouter(userID uuid.UUID) (*gin.Engine, *credits.Ledger) {
	gin.SetMode(gin.TestMode)
	ledger := credits.NewLedger()
	registry := account.NewRegistry(ledger)
	sessions := session.NewManager()

	router := gin.New()
	api := router.Group("/api/v1")
	api.Use(testAuth(userID))
	ah := handlers.NewAccountHandler(registry, ledger)
	sh := handlers.NewSessionHandler(sessions)
	api.GET("/account", ah.GetAccount)
	api.POST("/account/plan", ah.SelectPlan)
	api.GET("/session", sh.GetSession)
	api.POST("/session/navigate", sh.Navigate)
	api.POST("/session/back", sh.GoBack)
	return router, ledger
}

func TestGetAccount_FirstSightGrantsFreePlan(t *testing.T) {
	router, _ := accountRouter(uuid.New())

	req, _ := http.NewRequest("GET", "/api/v1/account", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.AccountResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "free", resp.Plan)
	assert.Equal(t, 50, resp.Credits.Current)
	assert.Nil(t, resp.PaymentMethod)
}

func TestSelectPlan_UpgradesAndResetsCredits(t *testing.T) {
	router, ledger := accountRouter(uuid.New())

	body := `{"plan":"creator","card_number":"4242424242424242","exp_month":12,"exp_year":2030}`
	req, _ := http.NewRequest("POST", "/api/v1/account/plan", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.AccountResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "creator", resp.Plan)
	assert.Equal(t, 500, resp.Credits.Current)
	require.NotNil(t, resp.PaymentMethod)
	assert.Equal(t, "4242", resp.PaymentMethod.Last4)

	userID, _ := uuid.Parse(resp.UserID)
	assert.Equal(t, 500, ledger.Balance(userID).Current)
}

func TestSelectPlan_PaidPlanRequiresCard(t *testing.T) {
	router, _ := accountRouter(uuid.New())

	req, _ := http.NewRequest("POST", "/api/v1/account/plan", bytes.NewBufferString(`{"plan":"studio"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSession_NavigateAndBack(t *testing.T) {
	router, _ := accountRouter(uuid.New())

	req, _ := http.NewRequest("POST", "/api/v1/session/navigate", bytes.NewBufferString(`{"step":"pricing"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "pricing", resp.Current)
	assert.Equal(t, []string{"home", "pricing"}, resp.Stack)

	req, _ = http.NewRequest("POST", "/api/v1/session/back", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "home", resp.Current)
}

func TestSession_NavigateUnknownStep(t *testing.T) {
	router, _ := accountRouter(uuid.New())

	req, _ := http.NewRequest("POST", "/api/v1/session/navigate", bytes.NewBufferString(`{"step":"warp"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
