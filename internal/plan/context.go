package plan

import (
	"fmt"
	"time"

	"github.com/miseapp/mise/internal/store"
)

// AgentContext is a point-in-time snapshot of a user's persisted state,
// gathered before planning, validation, and execution of one request cycle.
// Once gathered it is never re-fetched mid-workflow; staleness is an
// accepted tradeoff.
type AgentContext struct {
	UserID       string
	Preferences  *store.Preferences
	Inventory    []store.InventoryItem
	Leftovers    []store.Leftover
	ShoppingList []store.ShoppingItem

	// Budget placeholders for a future payments feature. The validator
	// reads them, so they stay modeled even though nothing sets them yet.
	WalletBalance      *float64
	SpendingLimitDaily float64
	SpentToday         float64

	// FieldErrors records which fetches failed during gathering, keyed by
	// field name. A failed fetch leaves the field at its zero value.
	FieldErrors map[string]string

	GatheredAt time.Time
}

// RemainingBudget is the spend still allowed today.
func (c *AgentContext) RemainingBudget() float64 {
	remaining := c.SpendingLimitDaily - c.SpentToday
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Summary is a compact serializable description attached to plans,
// deliberately not the full snapshot.
func (c *AgentContext) Summary() map[string]string {
	s := map[string]string{
		"user_id":     c.UserID,
		"inventory":   fmt.Sprintf("%d items", len(c.Inventory)),
		"leftovers":   fmt.Sprintf("%d items", len(c.Leftovers)),
		"shopping":    fmt.Sprintf("%d items", len(c.ShoppingList)),
		"gathered_at": c.GatheredAt.Format(time.RFC3339),
	}
	if c.Preferences != nil {
		s["preferences"] = "set"
	} else {
		s["preferences"] = "unset"
	}
	return s
}
