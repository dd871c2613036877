package models

import "errors"

// Business rule violations shared by the ledger and cost packages.
// Handlers map these to HTTP status codes; anything else is a 500.
var (
	// ErrInvalidAmount - non-positive or malformed quantity/amount input
	ErrInvalidAmount = errors.New("amount must be greater than zero")

	// ErrInsufficientStock - an out-movement asks for more than is on hand
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrOverpayment - a payment exceeds the cost's remaining amount
	ErrOverpayment = errors.New("payment exceeds remaining amount")

	// ErrImmutableMovement - edit/delete of an order-linked movement
	ErrImmutableMovement = errors.New("order-linked movements cannot be changed")

	// ErrNegativeStock - a ledger replay produced an impossible state; the
	// mutation that caused it must be rejected wholesale
	ErrNegativeStock = errors.New("replay produced negative stock")

	// ErrReferentialConflict - delete of an item still used by a menu recipe
	ErrReferentialConflict = errors.New("item is referenced by a menu recipe")

	// ErrCostCancelled - payments/increases on a cancelled cost
	ErrCostCancelled = errors.New("cost is cancelled")

	// ErrCostPaid - delete or cancel of a fully paid cost
	ErrCostPaid = errors.New("cost is already fully paid")
)
