// Package account is the in-memory user registry: plan tier and mock payment
// method per authenticated user. Records are recreated each session; only
// projects and brand profiles are durable.
package account

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"genieus-backend/internal/credits"
	"genieus-backend/internal/models"
)

type Registry struct {
	mu     sync.Mutex
	users  map[uuid.UUID]*models.User
	ledger *credits.Ledger
}

func NewRegistry(ledger *credits.Ledger) *Registry {
	return &Registry{
		users:  make(map[uuid.UUID]*models.User),
		ledger: ledger,
	}
}

// Ensure returns the user record, creating a free-plan record with its
// credit allowance on first sight of the id.
func (r *Registry) Ensure(userID uuid.UUID) *models.User {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		u = &models.User{
			ID:        userID,
			Plan:      models.PlanFree,
			CreatedAt: time.Now(),
		}
		r.users[userID] = u
		r.ledger.Grant(userID, u.Plan.MonthlyCredits())
	}
	return u
}

// SelectPlan switches the user's plan, stores the mock payment method and
// resets the credit balance to the new allowance.
func (r *Registry) SelectPlan(userID uuid.UUID, plan models.PlanTier, payment *models.PaymentMethod) *models.User {
	r.mu.Lock()
	u, ok := r.users[userID]
	if !ok {
		u = &models.User{ID: userID, CreatedAt: time.Now()}
		r.users[userID] = u
	}
	u.Plan = plan
	u.PaymentMethod = payment
	r.mu.Unlock()

	r.ledger.Grant(userID, plan.MonthlyCredits())
	return u
}
