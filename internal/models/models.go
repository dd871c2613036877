package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User - staff member operating the POS (cashier) or the back office (admin)
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:50" json:"username"`
	PasswordHash string    `json:"-"`    // Never return this in JSON
	Role         string    `json:"role"` // 'admin', 'cashier'
	CreatedAt    time.Time `json:"created_at"`
}

// Movement types for the stock ledger
const (
	MovementIn         = "in"
	MovementOut        = "out"
	MovementAdjustment = "adjustment" // absolute stock count, not a delta
)

// Cost statuses. Status is always derived from amount/paidAmount/dueDate,
// except 'cancelled' which is an explicit override.
const (
	CostPending       = "pending"
	CostPartiallyPaid = "partially_paid"
	CostPaid          = "paid"
	CostOverdue       = "overdue"
	CostCancelled     = "cancelled"
)

// InventoryItem - one tracked stock item (coffee beans, snacks, cups...).
// CurrentStock and TotalValue are derived from the movement ledger and kept
// in sync on every mutation; they are never edited directly.
type InventoryItem struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Name          string          `gorm:"size:120;not null" json:"name"`
	Category      string          `gorm:"size:60;index" json:"category"`
	Unit          string          `gorm:"size:20" json:"unit"` // 'pcs', 'kg', 'lt'...
	CurrentStock  decimal.Decimal `gorm:"type:decimal(14,3)" json:"current_stock"`
	MinStock      decimal.Decimal `gorm:"type:decimal(14,3)" json:"min_stock"`
	Price         decimal.Decimal `gorm:"type:decimal(12,2)" json:"price"`       // last stock-in unit price
	TotalValue    decimal.Decimal `gorm:"type:decimal(14,2)" json:"total_value"` // FIFO valuation
	IsRawMaterial bool            `json:"is_raw_material"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// StockMovement - one entry in an item's append-only stock ledger.
// OrderID is set when the movement was produced by a checkout; such
// movements cannot be edited or deleted.
type StockMovement struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	ItemID       uint            `gorm:"index;not null" json:"item_id"`
	Type         string          `gorm:"size:12;not null" json:"type"`
	Quantity     decimal.Decimal `gorm:"type:decimal(14,3)" json:"quantity"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(12,2)" json:"unit_price"`
	TotalCost    decimal.Decimal `gorm:"type:decimal(14,2)" json:"total_cost"`
	Reason       string          `gorm:"size:255" json:"reason"`
	Supplier     string          `gorm:"size:120" json:"supplier,omitempty"`
	OrderID      *uint           `gorm:"index" json:"order_id,omitempty"`
	BalanceAfter decimal.Decimal `gorm:"type:decimal(14,3)" json:"balance_after"`
	OccurredAt   time.Time       `gorm:"index" json:"occurred_at"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Cost - an expense line (rent, supplier invoice, salary, maintenance...).
// RemainingAmount is derived (amount - paidAmount) and not stored.
type Cost struct {
	ID            uint               `gorm:"primaryKey" json:"id"`
	Title         string             `gorm:"size:160;not null" json:"title"`
	Category      string             `gorm:"size:60;index" json:"category"`
	Amount        decimal.Decimal    `gorm:"type:decimal(14,2)" json:"amount"`
	PaidAmount    decimal.Decimal    `gorm:"type:decimal(14,2)" json:"paid_amount"`
	Status        string             `gorm:"size:20;index" json:"status"`
	DueDate       *time.Time         `json:"due_date,omitempty"`
	Notes         string             `gorm:"size:500" json:"notes,omitempty"`
	Payments      []CostPayment      `gorm:"foreignKey:CostID" json:"payments,omitempty"`
	AmountChanges []CostAmountChange `gorm:"foreignKey:CostID" json:"amount_changes,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// CostPayment - one entry in a cost's append-only payment history
type CostPayment struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	CostID    uint            `gorm:"index;not null" json:"cost_id"`
	Amount    decimal.Decimal `gorm:"type:decimal(14,2)" json:"amount"`
	Method    string          `gorm:"size:30" json:"method"` // 'cash', 'card', 'transfer'
	Reference string          `gorm:"size:120" json:"reference,omitempty"`
	Notes     string          `gorm:"size:255" json:"notes,omitempty"`
	PaidAt    time.Time       `json:"paid_at"`
}

// CostAmountChange - one entry in a cost's append-only amount history,
// recording a retroactive increase of the total
type CostAmountChange struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	CostID        uint            `gorm:"index;not null" json:"cost_id"`
	AddedAmount   decimal.Decimal `gorm:"type:decimal(14,2)" json:"added_amount"`
	PreviousTotal decimal.Decimal `gorm:"type:decimal(14,2)" json:"previous_total"`
	NewTotal      decimal.Decimal `gorm:"type:decimal(14,2)" json:"new_total"`
	Reason        string          `gorm:"size:255" json:"reason,omitempty"`
	ChangedAt     time.Time       `json:"changed_at"`
}

// MenuItem - something customers can order (espresso, toast, gaming hour...)
type MenuItem struct {
	ID          uint               `gorm:"primaryKey" json:"id"`
	Name        string             `gorm:"size:120;not null" json:"name"`
	Category    string             `gorm:"size:60" json:"category"`
	Price       decimal.Decimal    `gorm:"type:decimal(12,2)" json:"price"`
	ImageURL    string             `json:"image_url"`
	Ingredients []RecipeIngredient `gorm:"foreignKey:MenuItemID" json:"ingredients,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
}

// RecipeIngredient - how much of an inventory item one serving consumes.
// The existence of a recipe row blocks deletion of the inventory item.
type RecipeIngredient struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	MenuItemID uint            `gorm:"index;not null" json:"menu_item_id"`
	ItemID     uint            `gorm:"index;not null" json:"item_id"`
	Item       InventoryItem   `json:"item,omitempty"`
	Quantity   decimal.Decimal `gorm:"type:decimal(14,3)" json:"quantity"`
}

// Order - a checkout transaction header
type Order struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	UserID      uint            `json:"user_id"` // who rang it up
	TotalAmount decimal.Decimal `gorm:"type:decimal(14,2)" json:"total_amount"`
	Status      string          `gorm:"size:20" json:"status"` // 'completed', 'cancelled'
	OrderTime   time.Time       `json:"order_time"`
	Items       []OrderItem     `gorm:"foreignKey:OrderID" json:"items"`
}

// OrderItem - one menu line in an order
type OrderItem struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	OrderID     uint            `json:"order_id"`
	MenuItemID  uint            `json:"menu_item_id"`
	MenuItem    MenuItem        `json:"menu_item"`
	Quantity    int             `json:"quantity"`
	PriceAtSale decimal.Decimal `gorm:"type:decimal(12,2)" json:"price_at_sale"`
}

// ValuationSnapshot - nightly total of all FIFO inventory value, for the
// historical valuation report
type ValuationSnapshot struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	TakenAt    time.Time       `gorm:"index" json:"taken_at"`
	TotalValue decimal.Decimal `gorm:"type:decimal(14,2)" json:"total_value"`
	ItemCount  int             `json:"item_count"`
}

// AuditLog - who changed what; written on every ledger and cost mutation
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index" json:"user_id"`
	Action    string    `gorm:"size:40" json:"action"`
	Entity    string    `gorm:"size:40" json:"entity"`
	EntityID  uint      `json:"entity_id"`
	Detail    string    `gorm:"size:500" json:"detail"`
	CreatedAt time.Time `json:"created_at"`
}

// SystemLicense - activation record binding this install to one machine
type SystemLicense struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	LicenseKey     string    `gorm:"size:120" json:"license_key"`
	ExpirationDate time.Time `json:"expiration_date"`
	IsActive       bool      `json:"is_active"`
}
