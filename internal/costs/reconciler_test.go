package costs

import (
	"testing"
	"time"

	"gamecafe-pos/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newCost(amount string) *models.Cost {
	c := &models.Cost{
		ID:     1,
		Title:  "Espresso machine service",
		Amount: d(amount),
	}
	c.Status = DeriveStatus(c, now)
	return c
}

func TestTwoPartialPaymentsReachPaid(t *testing.T) {
	c := newCost("100")
	assert.Equal(t, models.CostPending, c.Status)

	p1, err := AddPayment(c, d("60"), "cash", "", "", now)
	require.NoError(t, err)
	assert.True(t, p1.Amount.Equal(d("60")))
	assert.Equal(t, models.CostPartiallyPaid, c.Status)
	assert.True(t, Remaining(c).Equal(d("40")))

	_, err = AddPayment(c, d("40"), "card", "rcpt-77", "", now)
	require.NoError(t, err)
	assert.Equal(t, models.CostPaid, c.Status)
	assert.True(t, Remaining(c).IsZero())
}

func TestIncreaseReopensPaidCost(t *testing.T) {
	c := newCost("100")
	_, err := AddPayment(c, d("100"), "cash", "", "", now)
	require.NoError(t, err)
	require.Equal(t, models.CostPaid, c.Status)

	change, err := IncreaseAmount(c, d("20"), "extra work", now)
	require.NoError(t, err)

	assert.Equal(t, models.CostPartiallyPaid, c.Status)
	assert.True(t, c.Amount.Equal(d("120")))
	assert.True(t, Remaining(c).Equal(d("20")))
	assert.True(t, change.PreviousTotal.Equal(d("100")))
	assert.True(t, change.NewTotal.Equal(d("120")))
}

func TestOverpaymentLeavesCostUntouched(t *testing.T) {
	c := newCost("100")
	_, err := AddPayment(c, d("60"), "cash", "", "", now)
	require.NoError(t, err)

	_, err = AddPayment(c, d("50"), "cash", "", "", now)
	assert.ErrorIs(t, err, models.ErrOverpayment)
	assert.True(t, c.PaidAmount.Equal(d("60")), "paid amount unchanged")
	assert.Equal(t, models.CostPartiallyPaid, c.Status)
}

func TestAddPayment_InvalidAmounts(t *testing.T) {
	for _, amount := range []string{"0", "-5"} {
		c := newCost("100")
		_, err := AddPayment(c, d(amount), "cash", "", "", now)
		assert.ErrorIs(t, err, models.ErrInvalidAmount, "amount %s", amount)
		assert.True(t, c.PaidAmount.IsZero())
	}
}

func TestIncreaseAmount_InvalidAmounts(t *testing.T) {
	c := newCost("100")
	_, err := IncreaseAmount(c, d("0"), "", now)
	assert.ErrorIs(t, err, models.ErrInvalidAmount)
	assert.True(t, c.Amount.Equal(d("100")))
}

func TestCancelledIsTerminal(t *testing.T) {
	c := newCost("100")
	require.NoError(t, Cancel(c))
	assert.Equal(t, models.CostCancelled, c.Status)

	_, err := AddPayment(c, d("10"), "cash", "", "", now)
	assert.ErrorIs(t, err, models.ErrCostCancelled)

	_, err = IncreaseAmount(c, d("10"), "", now)
	assert.ErrorIs(t, err, models.ErrCostCancelled)

	assert.ErrorIs(t, Cancel(c), models.ErrCostCancelled)

	// cancelled skips derivation even with money on it
	assert.Equal(t, models.CostCancelled, DeriveStatus(c, now))
}

func TestCancelPaidCostRejected(t *testing.T) {
	c := newCost("50")
	_, err := AddPayment(c, d("50"), "cash", "", "", now)
	require.NoError(t, err)

	assert.ErrorIs(t, Cancel(c), models.ErrCostPaid)
	assert.Equal(t, models.CostPaid, c.Status)
}

func TestDeriveStatus_Overdue(t *testing.T) {
	due := now.AddDate(0, 0, -3)
	future := now.AddDate(0, 0, 3)

	tests := []struct {
		name    string
		paid    string
		dueDate *time.Time
		want    string
	}{
		{"unpaid past due", "0", &due, models.CostOverdue},
		{"partial past due", "40", &due, models.CostOverdue},
		{"paid past due stays paid", "100", &due, models.CostPaid},
		{"unpaid future due", "0", &future, models.CostPending},
		{"partial no due date", "40", nil, models.CostPartiallyPaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &models.Cost{Amount: d("100"), PaidAmount: d(tt.paid), DueDate: tt.dueDate}
			assert.Equal(t, tt.want, DeriveStatus(c, now))
		})
	}
}

func TestPaymentOnOverdueCostRederives(t *testing.T) {
	due := now.AddDate(0, 0, -3)
	c := &models.Cost{ID: 2, Amount: d("100"), DueDate: &due}
	c.Status = DeriveStatus(c, now)
	require.Equal(t, models.CostOverdue, c.Status)

	_, err := AddPayment(c, d("100"), "transfer", "", "", now)
	require.NoError(t, err)
	assert.Equal(t, models.CostPaid, c.Status)
}

func TestCanDelete(t *testing.T) {
	c := newCost("100")
	assert.True(t, CanDelete(c))

	_, err := AddPayment(c, d("100"), "cash", "", "", now)
	require.NoError(t, err)
	assert.False(t, CanDelete(c), "paid costs are settled records")
}

func TestRemaining_NeverNegative(t *testing.T) {
	c := &models.Cost{Amount: d("50"), PaidAmount: d("80")}
	assert.True(t, Remaining(c).IsZero())
}
