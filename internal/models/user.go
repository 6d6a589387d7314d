package models

import (
	"time"

	"github.com/google/uuid"
)

// PlanTier is a subscription level. Plans and payment methods are mock
// records held in memory only; they are recreated each session and never
// reach the durable store.
type PlanTier string

const (
	PlanFree    PlanTier = "free"
	PlanCreator PlanTier = "creator"
	PlanStudio  PlanTier = "studio"
)

// MonthlyCredits returns the credit allowance granted by the plan.
func (p PlanTier) MonthlyCredits() int {
	switch p {
	case PlanCreator:
		return 500
	case PlanStudio:
		return 2000
	default:
		return 50
	}
}

type User struct {
	ID            uuid.UUID      `json:"id"`
	Email         string         `json:"email,omitempty"`
	Plan          PlanTier       `json:"plan"`
	PaymentMethod *PaymentMethod `json:"payment_method,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

// PaymentMethod is a fake card record for the mock billing flow.
type PaymentMethod struct {
	Brand    string `json:"brand"`
	Last4    string `json:"last4"`
	ExpMonth int    `json:"exp_month"`
	ExpYear  int    `json:"exp_year"`
}
