package handlers

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"gamecafe-pos/internal/costs"
	"gamecafe-pos/internal/database"
	"gamecafe-pos/internal/ledger"
	"gamecafe-pos/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CreateItemRequest struct {
	Name          string          `json:"name" binding:"required"`
	Category      string          `json:"category"`
	Unit          string          `json:"unit"`
	MinStock      decimal.Decimal `json:"min_stock"`
	Price         decimal.Decimal `json:"price"`
	IsRawMaterial bool            `json:"is_raw_material"`
	InitialStock  decimal.Decimal `json:"initial_stock"`
}

// --- POST /api/inventory ---
func CreateItem(c *gin.Context) {
	var req CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid input")
		return
	}

	item := models.InventoryItem{
		Name:          req.Name,
		Category:      req.Category,
		Unit:          req.Unit,
		MinStock:      req.MinStock,
		Price:         req.Price,
		IsRawMaterial: req.IsRawMaterial,
	}

	tx := database.DB.Begin()
	if err := tx.Create(&item).Error; err != nil {
		tx.Rollback()
		respondError(c, http.StatusInternalServerError, "Failed to create item")
		return
	}

	// An item can be born with stock already on the shelf.
	if req.InitialStock.IsPositive() {
		movement := models.StockMovement{
			ItemID:     item.ID,
			Type:       models.MovementIn,
			Quantity:   req.InitialStock,
			UnitPrice:  req.Price,
			Reason:     "Initial stock",
			OccurredAt: time.Now(),
		}
		if err := ledger.ValidateNew(movement, decimal.Zero); err != nil {
			tx.Rollback()
			respondBusinessError(c, err)
			return
		}
		if _, err := applyReplay(tx, &item, []models.StockMovement{movement}); err != nil {
			tx.Rollback()
			respondBusinessError(c, err)
			return
		}
	}

	tx.Commit()
	database.Audit(currentUserID(c), "create", "inventory_item", item.ID, item.Name)
	respondCreated(c, item)
}

// --- GET /api/inventory ---
func GetItems(c *gin.Context) {
	var items []models.InventoryItem
	query := database.DB.Order("name")
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if c.Query("low_stock") == "true" {
		query = query.Where("current_stock <= min_stock")
	}
	if err := query.Find(&items).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to fetch inventory")
		return
	}
	respondOK(c, items)
}

// --- GET /api/inventory/:id ---
// Returns the item together with its live FIFO layers so the frontend can
// show what the valuation is made of.
func GetItem(c *gin.Context) {
	item, ok := findItem(c)
	if !ok {
		return
	}

	movements, err := loadLedger(database.DB, item.ID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to load movements")
		return
	}

	res, err := ledger.Replay(movements, item.Price)
	if err != nil {
		// The stored history no longer replays cleanly; surface it so the
		// user can correct the offending movement.
		respondBusinessError(c, err)
		return
	}

	respondOK(c, gin.H{
		"item":   item,
		"layers": res.Layers,
	})
}

// --- DELETE /api/inventory/:id ---
func DeleteItem(c *gin.Context) {
	item, ok := findItem(c)
	if !ok {
		return
	}

	// Items still cooked into a menu recipe must not disappear.
	var refs int64
	if err := database.DB.Model(&models.RecipeIngredient{}).Where("item_id = ?", item.ID).Count(&refs).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to check references")
		return
	}
	if refs > 0 {
		respondBusinessError(c, models.ErrReferentialConflict)
		return
	}

	tx := database.DB.Begin()
	if err := tx.Where("item_id = ?", item.ID).Delete(&models.StockMovement{}).Error; err != nil {
		tx.Rollback()
		respondError(c, http.StatusInternalServerError, "Failed to delete movements")
		return
	}
	if err := tx.Delete(&models.InventoryItem{}, item.ID).Error; err != nil {
		tx.Rollback()
		respondError(c, http.StatusInternalServerError, "Failed to delete item")
		return
	}
	tx.Commit()

	database.Audit(currentUserID(c), "delete", "inventory_item", item.ID, item.Name)
	respondMessage(c, "Item deleted")
}

type StockMovementRequest struct {
	Type       string          `json:"type" binding:"required"`
	Quantity   decimal.Decimal `json:"quantity"`
	Reason     string          `json:"reason"`
	Price      decimal.Decimal `json:"price"`
	Supplier   string          `json:"supplier"`
	Date       *time.Time      `json:"date"`
	CostStatus string          `json:"costStatus"`
	PaidAmount decimal.Decimal `json:"paidAmount"`
}

// --- PUT /api/inventory/:id/stock ---
// Records one stock movement. A stock-in may also open a purchase cost
// (costStatus/paidAmount in the body) so the expense side stays in sync.
func RecordStockMovement(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid item ID")
		return
	}

	var req StockMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid input")
		return
	}

	occurredAt := time.Now()
	if req.Date != nil {
		occurredAt = *req.Date
	}

	tx := database.DB.Begin()

	var item models.InventoryItem
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&item, id).Error; err != nil {
		tx.Rollback()
		respondError(c, http.StatusNotFound, "Item not found")
		return
	}

	movement := models.StockMovement{
		ItemID:     item.ID,
		Type:       req.Type,
		Quantity:   req.Quantity,
		UnitPrice:  req.Price,
		Reason:     req.Reason,
		Supplier:   req.Supplier,
		OccurredAt: occurredAt,
	}
	if err := ledger.ValidateNew(movement, item.CurrentStock); err != nil {
		tx.Rollback()
		respondBusinessError(c, err)
		return
	}

	movements, err := loadLedger(tx, item.ID)
	if err != nil {
		tx.Rollback()
		respondError(c, http.StatusInternalServerError, "Failed to load movements")
		return
	}
	movements = append(movements, movement)
	sortLedger(movements) // a backdated movement slots into place

	newIdx := -1
	for i := range movements {
		if movements[i].ID == 0 {
			newIdx = i
			break
		}
	}

	res, err := applyReplay(tx, &item, movements)
	if err != nil {
		tx.Rollback()
		respondBusinessError(c, err)
		return
	}

	saved := movements[newIdx]

	if req.Type == models.MovementIn && req.CostStatus != "" {
		if err := createPurchaseCost(tx, &item, &saved, req.PaidAmount); err != nil {
			tx.Rollback()
			respondBusinessError(c, err)
			return
		}
	}

	tx.Commit()
	database.Audit(currentUserID(c), "stock_"+req.Type, "inventory_item", item.ID,
		fmt.Sprintf("%s %s (balance %s)", req.Type, req.Quantity, res.Balance))
	respondOK(c, gin.H{"item": item, "movement": saved})
}

// --- GET /api/inventory/:id/stock-movements ---
func ListMovements(c *gin.Context) {
	item, ok := findItem(c)
	if !ok {
		return
	}
	movements, err := loadLedger(database.DB, item.ID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to load movements")
		return
	}
	respondOK(c, movements)
}

type MovementUpdateRequest struct {
	Type     *string          `json:"type"`
	Quantity *decimal.Decimal `json:"quantity"`
	Price    *decimal.Decimal `json:"price"`
	Reason   *string          `json:"reason"`
	Date     *time.Time       `json:"date"`
}

// --- PUT /api/inventory/:id/movements/:movementId ---
// Edits a movement anywhere in the history and replays the whole ledger
// forward. No incremental recompute: correctness over performance.
func UpdateMovement(c *gin.Context) {
	replayMovementChange(c, func(tx *gorm.DB, movements []models.StockMovement, idx int, c *gin.Context) ([]models.StockMovement, bool) {
		var req MovementUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "Invalid input")
			return nil, false
		}

		m := &movements[idx]
		if req.Type != nil {
			m.Type = *req.Type
		}
		if req.Quantity != nil {
			m.Quantity = *req.Quantity
		}
		if req.Price != nil {
			m.UnitPrice = *req.Price
		}
		if req.Reason != nil {
			m.Reason = *req.Reason
		}
		if req.Date != nil {
			m.OccurredAt = *req.Date
		}

		if m.Type == models.MovementIn && !m.UnitPrice.IsPositive() {
			respondBusinessError(c, fmt.Errorf("stock-in needs a unit price: %w", models.ErrInvalidAmount))
			return nil, false
		}
		return movements, true
	}, "edit")
}

// --- DELETE /api/inventory/:id/movements/:movementId ---
func DeleteMovement(c *gin.Context) {
	replayMovementChange(c, func(tx *gorm.DB, movements []models.StockMovement, idx int, c *gin.Context) ([]models.StockMovement, bool) {
		if err := tx.Delete(&models.StockMovement{}, movements[idx].ID).Error; err != nil {
			respondError(c, http.StatusInternalServerError, "Failed to delete movement")
			return nil, false
		}
		return append(movements[:idx], movements[idx+1:]...), true
	}, "delete")
}

// replayMovementChange is the shared edit/delete path: lock the item, find
// the movement, refuse if it is order-linked, let mutate reshape the
// history, then replay and persist everything downstream of the change.
func replayMovementChange(c *gin.Context, mutate func(*gorm.DB, []models.StockMovement, int, *gin.Context) ([]models.StockMovement, bool), action string) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid item ID")
		return
	}
	movementID, err := strconv.Atoi(c.Param("movementId"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid movement ID")
		return
	}

	tx := database.DB.Begin()

	var item models.InventoryItem
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&item, id).Error; err != nil {
		tx.Rollback()
		respondError(c, http.StatusNotFound, "Item not found")
		return
	}

	movements, err := loadLedger(tx, item.ID)
	if err != nil {
		tx.Rollback()
		respondError(c, http.StatusInternalServerError, "Failed to load movements")
		return
	}

	idx := -1
	for i := range movements {
		if movements[i].ID == uint(movementID) {
			idx = i
			break
		}
	}
	if idx == -1 {
		tx.Rollback()
		respondError(c, http.StatusNotFound, "Movement not found")
		return
	}
	if movements[idx].OrderID != nil {
		tx.Rollback()
		respondBusinessError(c, models.ErrImmutableMovement)
		return
	}

	movements, ok := mutate(tx, movements, idx, c)
	if !ok {
		tx.Rollback()
		return
	}
	sortLedger(movements)

	if _, err := applyReplay(tx, &item, movements); err != nil {
		tx.Rollback()
		respondBusinessError(c, err)
		return
	}

	tx.Commit()
	database.Audit(currentUserID(c), action+"_movement", "inventory_item", item.ID,
		fmt.Sprintf("movement %d", movementID))
	respondOK(c, gin.H{"item": item, "movements": movements})
}

// --- shared ledger plumbing ---

func findItem(c *gin.Context) (*models.InventoryItem, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid item ID")
		return nil, false
	}
	var item models.InventoryItem
	if err := database.DB.First(&item, id).Error; err != nil {
		respondError(c, http.StatusNotFound, "Item not found")
		return nil, false
	}
	return &item, true
}

func loadLedger(db *gorm.DB, itemID uint) ([]models.StockMovement, error) {
	var movements []models.StockMovement
	err := db.Where("item_id = ?", itemID).
		Order("occurred_at asc, id asc").
		Find(&movements).Error
	return movements, err
}

func sortLedger(movements []models.StockMovement) {
	sort.SliceStable(movements, func(i, j int) bool {
		if movements[i].OccurredAt.Equal(movements[j].OccurredAt) {
			return movements[i].ID < movements[j].ID
		}
		return movements[i].OccurredAt.Before(movements[j].OccurredAt)
	})
}

// applyReplay recomputes the full ledger and persists every movement's
// balance/cost plus the item's derived stock, value, and last stock-in
// price. Everything runs in the caller's transaction so a failed replay
// changes nothing.
func applyReplay(tx *gorm.DB, item *models.InventoryItem, movements []models.StockMovement) (*ledger.Result, error) {
	res, err := ledger.Replay(movements, item.Price)
	if err != nil {
		return nil, err
	}

	for i := range movements {
		m := &movements[i]
		var dbErr error
		if m.ID == 0 {
			dbErr = tx.Create(m).Error
		} else {
			dbErr = tx.Save(m).Error
		}
		if dbErr != nil {
			return nil, dbErr
		}
	}

	item.CurrentStock = res.Balance
	item.TotalValue = res.TotalValue
	// Price tracks the chronologically last stock-in, so a backdated,
	// edited, or deleted stock-in must refresh it too.
	item.Price = res.LastInPrice
	if err := tx.Save(item).Error; err != nil {
		return nil, err
	}
	return res, nil
}

// createPurchaseCost opens an expense for a stock purchase so unpaid
// supplier deliveries show up in the cost tracker immediately.
func createPurchaseCost(tx *gorm.DB, item *models.InventoryItem, movement *models.StockMovement, paid decimal.Decimal) error {
	cost := models.Cost{
		Title:    fmt.Sprintf("Stock purchase: %s", item.Name),
		Category: "inventory",
		Amount:   movement.TotalCost,
		Notes:    movement.Supplier,
	}
	if paid.GreaterThan(cost.Amount) {
		return models.ErrOverpayment
	}

	now := time.Now()
	cost.Status = costs.DeriveStatus(&cost, now)

	if err := tx.Create(&cost).Error; err != nil {
		return err
	}

	if paid.IsPositive() {
		payment, err := costs.AddPayment(&cost, paid, "cash", "", "Paid on delivery", now)
		if err != nil {
			return err
		}
		if err := tx.Create(payment).Error; err != nil {
			return err
		}
		if err := tx.Save(&cost).Error; err != nil {
			return err
		}
	}
	return nil
}
