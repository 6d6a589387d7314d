// Package credits tracks the per-user usage quota debited by generation
// workflows. Balances are mock in-memory records, recreated each session;
// they are deliberately kept out of the durable store.
package credits

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrInsufficient is returned when a reservation exceeds the balance.
var ErrInsufficient = errors.New("credits: insufficient balance")

type Balance struct {
	Current int
	Monthly int
}

// Ledger holds credit balances. Reserve deducts optimistically before the
// paid operation runs; whether a failed operation is refunded is a business
// toggle, owned by the caller via Refund.
type Ledger struct {
	mu       sync.Mutex
	balances map[uuid.UUID]Balance
}

func NewLedger() *Ledger {
	return &Ledger{balances: make(map[uuid.UUID]Balance)}
}

// Grant sets the user's monthly allowance and resets the current balance to
// it. Called when a user first appears and on plan changes.
func (l *Ledger) Grant(userID uuid.UUID, monthly int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[userID] = Balance{Current: monthly, Monthly: monthly}
}

// Balance returns the user's balance; unknown users have a zero balance.
func (l *Ledger) Balance(userID uuid.UUID) Balance {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[userID]
}

// Reserve deducts cost from the balance. The deduction happens before the
// paid operation runs and the balance is left unchanged when it would go
// negative.
func (l *Ledger) Reserve(userID uuid.UUID, cost int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.balances[userID]
	if b.Current < cost {
		return ErrInsufficient
	}
	b.Current -= cost
	l.balances[userID] = b
	return nil
}

// Refund returns previously reserved credits, capped at the monthly
// allowance.
func (l *Ledger) Refund(userID uuid.UUID, cost int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.balances[userID]
	b.Current += cost
	if b.Current > b.Monthly {
		b.Current = b.Monthly
	}
	l.balances[userID] = b
}
