package ledger

import (
	"testing"
	"time"

	"gamecafe-pos/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func mv(id uint, typ, qty, price string) models.StockMovement {
	return models.StockMovement{
		ID:         id,
		Type:       typ,
		Quantity:   d(qty),
		UnitPrice:  d(price),
		OccurredAt: time.Date(2026, 1, int(id), 12, 0, 0, 0, time.UTC),
	}
}

func TestReplay_OutUsesLayerCostNotLatestPrice(t *testing.T) {
	// 10 @ 5, then 5 @ 8, then take 12:
	// consumes all 10 @ 5 (=50) plus 2 @ 8 (=16).
	history := []models.StockMovement{
		mv(1, models.MovementIn, "10", "5"),
		mv(2, models.MovementIn, "5", "8"),
		mv(3, models.MovementOut, "12", "0"),
	}

	res, err := Replay(history, decimal.Zero)
	require.NoError(t, err)

	assert.True(t, history[2].TotalCost.Equal(d("66")), "out cost = %s", history[2].TotalCost)
	assert.True(t, res.Balance.Equal(d("3")))
	assert.True(t, res.TotalValue.Equal(d("24")), "remaining 3 @ 8")
	require.Len(t, res.Layers, 1)
	assert.True(t, res.Layers[0].Remaining.Equal(d("3")))
	assert.True(t, res.Layers[0].UnitPrice.Equal(d("8")))

	// The running balances chain correctly.
	assert.True(t, history[0].BalanceAfter.Equal(d("10")))
	assert.True(t, history[1].BalanceAfter.Equal(d("15")))
	assert.True(t, history[2].BalanceAfter.Equal(d("3")))
}

func TestReplay_BalanceEqualsSignedSum(t *testing.T) {
	history := []models.StockMovement{
		mv(1, models.MovementIn, "7", "2"),
		mv(2, models.MovementOut, "3", "0"),
		mv(3, models.MovementIn, "4.5", "2.4"),
		mv(4, models.MovementOut, "0.5", "0"),
	}

	res, err := Replay(history, decimal.Zero)
	require.NoError(t, err)

	signed := d("7").Sub(d("3")).Add(d("4.5")).Sub(d("0.5"))
	assert.True(t, res.Balance.Equal(signed))

	// sum of layer quantities always equals the balance
	layerSum := decimal.Zero
	for _, l := range res.Layers {
		layerSum = layerSum.Add(l.Remaining)
	}
	assert.True(t, layerSum.Equal(res.Balance))
}

func TestReplay_AdjustmentSetsAbsoluteTarget(t *testing.T) {
	tests := []struct {
		name        string
		history     []models.StockMovement
		wantBalance string
		wantValue   string
	}{
		{
			name: "shrink trims oldest layers first",
			history: []models.StockMovement{
				mv(1, models.MovementIn, "10", "5"),
				mv(2, models.MovementIn, "5", "8"),
				mv(3, models.MovementAdjustment, "4", "0"), // counted only 4
			},
			wantBalance: "4",
			// 10@5 gone, 1@8 gone -> 4 left @ 8
			wantValue: "32",
		},
		{
			name: "grow appends synthetic layer at last in-price",
			history: []models.StockMovement{
				mv(1, models.MovementIn, "10", "5"),
				mv(2, models.MovementAdjustment, "12", "0"), // found 2 extra
			},
			wantBalance: "12",
			wantValue:   "60", // 10@5 + 2@5
		},
		{
			name: "no-op adjustment",
			history: []models.StockMovement{
				mv(1, models.MovementIn, "6", "3"),
				mv(2, models.MovementAdjustment, "6", "0"),
			},
			wantBalance: "6",
			wantValue:   "18",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Replay(tt.history, decimal.Zero)
			require.NoError(t, err)
			assert.True(t, res.Balance.Equal(d(tt.wantBalance)), "balance = %s", res.Balance)
			assert.True(t, res.TotalValue.Equal(d(tt.wantValue)), "value = %s", res.TotalValue)
		})
	}
}

func TestReplay_AdjustmentShrinkCostsRemovedLayers(t *testing.T) {
	history := []models.StockMovement{
		mv(1, models.MovementIn, "10", "5"),
		mv(2, models.MovementIn, "5", "8"),
		mv(3, models.MovementAdjustment, "4", "0"),
	}

	_, err := Replay(history, decimal.Zero)
	require.NoError(t, err)

	// removed: 10 @ 5 + 1 @ 8 = 58 written off
	assert.True(t, history[2].TotalCost.Equal(d("58")), "write-off cost = %s", history[2].TotalCost)
}

func TestReplay_GrowWithoutPriorInUsesFallbackPrice(t *testing.T) {
	history := []models.StockMovement{
		mv(1, models.MovementAdjustment, "5", "0"),
	}

	res, err := Replay(history, d("3.50"))
	require.NoError(t, err)
	assert.True(t, res.TotalValue.Equal(d("17.5")))
}

func TestReplay_FailsClosedOnNegativeStock(t *testing.T) {
	// A history that became impossible after an edit: the in-movement was
	// shrunk below what the out-movement consumes.
	history := []models.StockMovement{
		mv(1, models.MovementIn, "5", "5"),
		mv(2, models.MovementOut, "12", "0"),
	}

	_, err := Replay(history, decimal.Zero)
	require.ErrorIs(t, err, models.ErrNegativeStock)
}

func TestReplay_EditMidHistoryRecomputesAllBalances(t *testing.T) {
	history := []models.StockMovement{
		mv(1, models.MovementIn, "10", "5"),
		mv(2, models.MovementOut, "4", "0"),
		mv(3, models.MovementIn, "6", "7"),
		mv(4, models.MovementOut, "8", "0"),
	}
	_, err := Replay(history, decimal.Zero)
	require.NoError(t, err)

	// Edit movement 2 in the middle: take 2 instead of 4.
	history[1].Quantity = d("2")
	res, err := Replay(history, decimal.Zero)
	require.NoError(t, err)

	assert.True(t, history[1].BalanceAfter.Equal(d("8")))
	assert.True(t, history[2].BalanceAfter.Equal(d("14")))
	assert.True(t, history[3].BalanceAfter.Equal(d("6")))
	assert.True(t, res.Balance.Equal(d("6")))

	// Movement 4 now consumes 8 @ 5 instead of 6 @ 5 + 2 @ 7.
	assert.True(t, history[3].TotalCost.Equal(d("40")), "cost = %s", history[3].TotalCost)
}

func TestReplay_OutDerivesEffectiveUnitPrice(t *testing.T) {
	history := []models.StockMovement{
		mv(1, models.MovementIn, "10", "5"),
		mv(2, models.MovementIn, "10", "10"),
		mv(3, models.MovementOut, "20", "0"),
	}

	_, err := Replay(history, decimal.Zero)
	require.NoError(t, err)

	// 150 total over 20 units
	assert.True(t, history[2].UnitPrice.Equal(d("7.5")))
}

func TestValidateNew(t *testing.T) {
	tests := []struct {
		name    string
		m       models.StockMovement
		balance string
		wantErr error
	}{
		{"in ok", mv(0, models.MovementIn, "3", "2"), "0", nil},
		{"in zero qty", mv(0, models.MovementIn, "0", "2"), "0", models.ErrInvalidAmount},
		{"in missing price", mv(0, models.MovementIn, "3", "0"), "0", models.ErrInvalidAmount},
		{"out ok", mv(0, models.MovementOut, "3", "0"), "5", nil},
		{"out negative qty", mv(0, models.MovementOut, "-1", "0"), "5", models.ErrInvalidAmount},
		{"out exceeds balance", mv(0, models.MovementOut, "6", "0"), "5", models.ErrInsufficientStock},
		{"adjustment ok at zero", mv(0, models.MovementAdjustment, "0", "0"), "5", nil},
		{"adjustment negative", mv(0, models.MovementAdjustment, "-2", "0"), "5", models.ErrInvalidAmount},
		{"unknown type", mv(0, "transfer", "1", "1"), "5", models.ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNew(tt.m, d(tt.balance))
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestValue_EmptyLayers(t *testing.T) {
	assert.True(t, Value(nil).IsZero())
}

func TestReplay_LastInPriceFollowsChronology(t *testing.T) {
	// A stock-in backdated between two existing ones must not become the
	// "last" price: after sorting, the newest in by date wins.
	history := []models.StockMovement{
		mv(1, models.MovementIn, "10", "5"), // Jan 1
		mv(2, models.MovementIn, "10", "7"), // Jan 2, recorded late
		mv(3, models.MovementIn, "10", "9"), // Jan 3
	}

	res, err := Replay(history, decimal.Zero)
	require.NoError(t, err)
	assert.True(t, res.LastInPrice.Equal(d("9")), "last in-price = %s", res.LastInPrice)
}

func TestReplay_LastInPriceAfterEditAndDelete(t *testing.T) {
	history := []models.StockMovement{
		mv(1, models.MovementIn, "10", "5"),
		mv(2, models.MovementIn, "10", "9"),
	}

	// Editing the price of the latest stock-in must show up in the replay.
	history[1].UnitPrice = d("11")
	res, err := Replay(history, decimal.Zero)
	require.NoError(t, err)
	assert.True(t, res.LastInPrice.Equal(d("11")))

	// Deleting the latest stock-in falls back to the one before it.
	res, err = Replay(history[:1], decimal.Zero)
	require.NoError(t, err)
	assert.True(t, res.LastInPrice.Equal(d("5")))
}

func TestReplay_NoStockInKeepsFallbackPrice(t *testing.T) {
	history := []models.StockMovement{
		mv(1, models.MovementAdjustment, "4", "0"),
	}

	res, err := Replay(history, d("2.25"))
	require.NoError(t, err)
	assert.True(t, res.LastInPrice.Equal(d("2.25")))
}
