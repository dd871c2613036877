package costs

import (
	"time"

	"gamecafe-pos/internal/models"

	"github.com/shopspring/decimal"
)

// Remaining is amount minus paid, floored at zero.
func Remaining(c *models.Cost) decimal.Decimal {
	rem := c.Amount.Sub(c.PaidAmount)
	if rem.IsNegative() {
		return decimal.Zero
	}
	return rem
}

// DeriveStatus computes the status a cost should carry right now.
// 'cancelled' is sticky and skips derivation entirely. An unpaid or
// partially paid cost past its due date derives 'overdue'.
func DeriveStatus(c *models.Cost, now time.Time) string {
	if c.Status == models.CostCancelled {
		return models.CostCancelled
	}
	if c.PaidAmount.GreaterThanOrEqual(c.Amount) {
		return models.CostPaid
	}
	if c.DueDate != nil && c.DueDate.Before(now) {
		return models.CostOverdue
	}
	if c.PaidAmount.IsPositive() {
		return models.CostPartiallyPaid
	}
	return models.CostPending
}

// AddPayment records a partial or full payment against a cost, mutating its
// paid amount and status. It fails without touching the cost when the amount
// is non-positive, exceeds what is still owed, or the cost is cancelled.
func AddPayment(c *models.Cost, amount decimal.Decimal, method, reference, notes string, now time.Time) (*models.CostPayment, error) {
	if c.Status == models.CostCancelled {
		return nil, models.ErrCostCancelled
	}
	if !amount.IsPositive() {
		return nil, models.ErrInvalidAmount
	}
	if amount.GreaterThan(Remaining(c)) {
		return nil, models.ErrOverpayment
	}

	payment := &models.CostPayment{
		CostID:    c.ID,
		Amount:    amount,
		Method:    method,
		Reference: reference,
		Notes:     notes,
		PaidAt:    now,
	}
	c.PaidAmount = c.PaidAmount.Add(amount)
	c.Status = DeriveStatus(c, now)
	return payment, nil
}

// IncreaseAmount raises the cost's total retroactively (extra work, revised
// invoice) and records the change in the amount history. A fully paid cost
// drops back to partially_paid.
func IncreaseAmount(c *models.Cost, additional decimal.Decimal, reason string, now time.Time) (*models.CostAmountChange, error) {
	if c.Status == models.CostCancelled {
		return nil, models.ErrCostCancelled
	}
	if !additional.IsPositive() {
		return nil, models.ErrInvalidAmount
	}

	change := &models.CostAmountChange{
		CostID:        c.ID,
		AddedAmount:   additional,
		PreviousTotal: c.Amount,
		NewTotal:      c.Amount.Add(additional),
		Reason:        reason,
		ChangedAt:     now,
	}
	c.Amount = change.NewTotal
	c.Status = DeriveStatus(c, now)
	return change, nil
}

// Cancel marks a cost cancelled. Cancelled is terminal: no further payments
// or increases are accepted. A fully paid cost cannot be cancelled.
func Cancel(c *models.Cost) error {
	if c.Status == models.CostPaid {
		return models.ErrCostPaid
	}
	if c.Status == models.CostCancelled {
		return models.ErrCostCancelled
	}
	c.Status = models.CostCancelled
	return nil
}

// CanDelete reports whether a cost may be removed. Fully paid costs are
// settled records and must stay.
func CanDelete(c *models.Cost) bool {
	return c.Status != models.CostPaid
}
