package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"genieus-backend/internal/account"
	"genieus-backend/internal/credits"
	"genieus-backend/internal/models"
)

type AccountHandler struct {
	registry *account.Registry
	ledger   *credits.Ledger
}

func NewAccountHandler(registry *account.Registry, ledger *credits.Ledger) *AccountHandler {
	return &AccountHandler{registry: registry, ledger: ledger}
}

// GetAccount godoc
// @Summary     Get account details
// @Description Returns the user's plan, credit balance and mock payment method. First sight of a user creates a free-plan record.
// @Tags        account
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.AccountResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /account [get]
func (h *AccountHandler) GetAccount(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	u := h.registry.Ensure(userID)
	c.JSON(http.StatusOK, models.AccountResponse{
		UserID:        userID.String(),
		Plan:          string(u.Plan),
		Credits:       toCreditsResponse(h.ledger.Balance(userID)),
		PaymentMethod: u.PaymentMethod,
	})
}

// SelectPlan godoc
// @Summary     Select a subscription plan
// @Description Switches the user's plan and resets the credit balance to the new monthly allowance. Payment is mocked; card details only feed the stored payment method record.
// @Tags        account
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.SelectPlanRequest true "Plan and mock card details"
// @Success     200 {object} models.AccountResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /account/plan [post]
func (h *AccountHandler) SelectPlan(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req models.SelectPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body", Message: err.Error()})
		return
	}

	plan := models.PlanTier(req.Plan)
	switch plan {
	case models.PlanFree, models.PlanCreator, models.PlanStudio:
	default:
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid plan", Message: "plan must be one of: free, creator, studio"})
		return
	}

	var payment *models.PaymentMethod
	if plan != models.PlanFree {
		if len(req.CardNumber) < 4 {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "card_number is required for paid plans"})
			return
		}
		payment = &models.PaymentMethod{
			Brand:    "visa",
			Last4:    req.CardNumber[len(req.CardNumber)-4:],
			ExpMonth: req.ExpMonth,
			ExpYear:  req.ExpYear,
		}
	}

	u := h.registry.SelectPlan(userID, plan, payment)
	c.JSON(http.StatusOK, models.AccountResponse{
		UserID:        userID.String(),
		Plan:          string(u.Plan),
		Credits:       toCreditsResponse(h.ledger.Balance(userID)),
		PaymentMethod: u.PaymentMethod,
	})
}
