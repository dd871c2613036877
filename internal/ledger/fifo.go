package ledger

import (
	"fmt"

	"gamecafe-pos/internal/models"

	"github.com/shopspring/decimal"
)

// Layer is one FIFO cost batch: stock received at a single unit price,
// consumed front-to-back by out-movements. Layers are never persisted;
// they are rebuilt from the movement history on every replay.
type Layer struct {
	Remaining decimal.Decimal `json:"remaining"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Result of replaying an item's full movement history.
type Result struct {
	Balance     decimal.Decimal
	Layers      []Layer
	TotalValue  decimal.Decimal
	LastInPrice decimal.Decimal
}

// Value sums remaining quantity times unit price across all live layers.
func Value(layers []Layer) decimal.Decimal {
	total := decimal.Zero
	for _, l := range layers {
		total = total.Add(l.Remaining.Mul(l.UnitPrice))
	}
	return total
}

// ValidateNew checks a candidate movement against the current balance before
// it is appended to the ledger. Errors here are user input errors, as opposed
// to the replay errors that signal an inconsistent history.
func ValidateNew(m models.StockMovement, balance decimal.Decimal) error {
	switch m.Type {
	case models.MovementIn:
		if !m.Quantity.IsPositive() {
			return models.ErrInvalidAmount
		}
		if !m.UnitPrice.IsPositive() {
			return fmt.Errorf("stock-in needs a unit price: %w", models.ErrInvalidAmount)
		}
	case models.MovementOut:
		if !m.Quantity.IsPositive() {
			return models.ErrInvalidAmount
		}
		if m.Quantity.GreaterThan(balance) {
			return models.ErrInsufficientStock
		}
	case models.MovementAdjustment:
		if m.Quantity.IsNegative() {
			return models.ErrInvalidAmount
		}
	default:
		return fmt.Errorf("unknown movement type %q: %w", m.Type, models.ErrInvalidAmount)
	}
	return nil
}

// Replay walks an item's full movement history (oldest first) and recomputes
// every movement's TotalCost and BalanceAfter plus the final FIFO layer state.
// Movements are updated in place.
//
// An out-movement costs the exact layers it consumes, never the latest price.
// An adjustment sets the balance to an absolute target: shrinking trims layers
// front-to-back (its TotalCost is the FIFO cost of what was removed), growing
// appends a synthetic layer at the last known stock-in price, falling back to
// fallbackPrice when the history has no stock-in yet.
//
// Replay fails closed: if any out-movement would drive the balance negative
// (possible after an edit or delete earlier in the history), it returns
// models.ErrNegativeStock and the caller must reject the whole mutation.
func Replay(movements []models.StockMovement, fallbackPrice decimal.Decimal) (*Result, error) {
	balance := decimal.Zero
	lastInPrice := fallbackPrice
	var layers []Layer

	for i := range movements {
		m := &movements[i]

		switch m.Type {
		case models.MovementIn:
			if !m.Quantity.IsPositive() {
				return nil, fmt.Errorf("movement %d: stock-in quantity: %w", m.ID, models.ErrInvalidAmount)
			}
			layers = append(layers, Layer{Remaining: m.Quantity, UnitPrice: m.UnitPrice})
			m.TotalCost = m.Quantity.Mul(m.UnitPrice)
			balance = balance.Add(m.Quantity)
			lastInPrice = m.UnitPrice

		case models.MovementOut:
			if !m.Quantity.IsPositive() {
				return nil, fmt.Errorf("movement %d: stock-out quantity: %w", m.ID, models.ErrInvalidAmount)
			}
			if m.Quantity.GreaterThan(balance) {
				return nil, fmt.Errorf("movement %d would take %s from %s on hand: %w",
					m.ID, m.Quantity, balance, models.ErrNegativeStock)
			}
			var cost decimal.Decimal
			layers, cost = consume(layers, m.Quantity)
			m.TotalCost = cost
			m.UnitPrice = cost.Div(m.Quantity) // effective FIFO unit cost
			balance = balance.Sub(m.Quantity)

		case models.MovementAdjustment:
			// Absolute set: Quantity is the counted stock, not a delta.
			target := m.Quantity
			if target.IsNegative() {
				return nil, fmt.Errorf("movement %d: adjustment target: %w", m.ID, models.ErrInvalidAmount)
			}
			switch {
			case target.LessThan(balance):
				var cost decimal.Decimal
				layers, cost = consume(layers, balance.Sub(target))
				m.TotalCost = cost
			case target.GreaterThan(balance):
				added := target.Sub(balance)
				layers = append(layers, Layer{Remaining: added, UnitPrice: lastInPrice})
				m.TotalCost = added.Mul(lastInPrice)
				m.UnitPrice = lastInPrice
			default:
				m.TotalCost = decimal.Zero
			}
			balance = target

		default:
			return nil, fmt.Errorf("movement %d: unknown type %q: %w", m.ID, m.Type, models.ErrInvalidAmount)
		}

		m.BalanceAfter = balance
	}

	return &Result{
		Balance:     balance,
		Layers:      layers,
		TotalValue:  Value(layers),
		LastInPrice: lastInPrice,
	}, nil
}

// consume takes qty off the front of the layer queue and returns the
// surviving layers plus the FIFO cost of what was taken. Callers must have
// checked that qty does not exceed the total remaining quantity.
func consume(layers []Layer, qty decimal.Decimal) ([]Layer, decimal.Decimal) {
	cost := decimal.Zero
	for len(layers) > 0 && qty.IsPositive() {
		head := &layers[0]
		if head.Remaining.GreaterThan(qty) {
			cost = cost.Add(qty.Mul(head.UnitPrice))
			head.Remaining = head.Remaining.Sub(qty)
			qty = decimal.Zero
			break
		}
		cost = cost.Add(head.Remaining.Mul(head.UnitPrice))
		qty = qty.Sub(head.Remaining)
		layers = layers[1:]
	}
	return layers, cost
}
