package balance

import (
	"context"
	"time"
)

// UserBalance is the two-bucket prepaid balance: free minutes are consumed
// before credits. Both buckets are non-negative at all times.
type UserBalance struct {
	UserID      string    `json:"userId" gorm:"column:user_id;primaryKey"`
	FreeMinutes int       `json:"freeMinutes" gorm:"column:free_minutes"`
	Credits     float64   `json:"credits" gorm:"column:credits"`
	UpdatedAt   time.Time `json:"updatedAt" gorm:"column:updated_at"`
}

// TableName ...
func (UserBalance) TableName() string {
	return "user_balances"
}

// AffordableMinutes is how many whole minutes the balance covers at a rate.
func (b *UserBalance) AffordableMinutes(pricePerMinute float64) int {
	minutes := b.FreeMinutes
	if pricePerMinute > 0 {
		minutes += int(b.Credits / pricePerMinute)
	}
	return minutes
}

// Deduction reports what one settlement actually took from the balance.
type Deduction struct {
	FreeMinutesUsed int     `json:"freeMinutesUsed"`
	CreditsCharged  float64 `json:"creditsCharged"`
	// Shortfall is the part of the charge the balance could not cover. It is
	// forgiven, not carried as debt.
	Shortfall float64 `json:"shortfall"`
	Balance   *UserBalance
}

// Store is the user-balance collaborator. Deduct must be atomic per call:
// concurrent settlements for different sessions of the same user must not
// lose updates.
type Store interface {
	// Get returns the user's balance, creating a default one on first sight.
	Get(ctx context.Context, userID string) (*UserBalance, error)
	// Deduct settles a charge of minutes at pricePerMinute, consuming free
	// minutes first and then credits, clamping both buckets at zero.
	Deduct(ctx context.Context, userID string, minutes int, pricePerMinute float64) (*Deduction, error)
	// AddCredits tops up the credit bucket.
	AddCredits(ctx context.Context, userID string, amount float64) (*UserBalance, error)
	// GrantFreeMinutes tops up the free-minutes bucket.
	GrantFreeMinutes(ctx context.Context, userID string, minutes int) (*UserBalance, error)
}

// settle applies the deduction order to a balance in place and returns what
// was taken. Free minutes cover whole minutes; credits cover the remainder
// in money terms.
func settle(b *UserBalance, minutes int, pricePerMinute float64) *Deduction {
	d := &Deduction{}
	if minutes <= 0 {
		return d
	}

	d.FreeMinutesUsed = minutes
	if d.FreeMinutesUsed > b.FreeMinutes {
		d.FreeMinutesUsed = b.FreeMinutes
	}
	b.FreeMinutes -= d.FreeMinutesUsed

	owed := float64(minutes-d.FreeMinutesUsed) * pricePerMinute
	d.CreditsCharged = owed
	if d.CreditsCharged > b.Credits {
		d.CreditsCharged = b.Credits
		d.Shortfall = owed - b.Credits
	}
	b.Credits -= d.CreditsCharged
	return d
}
