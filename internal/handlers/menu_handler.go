package handlers

import (
	"fmt"
	"net/http"
	"time"

	"gamecafe-pos/internal/database"
	"gamecafe-pos/internal/ledger"
	"gamecafe-pos/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"
)

// --- GET /api/menu ---
func GetMenu(c *gin.Context) {
	var menu []models.MenuItem
	if err := database.DB.Preload("Ingredients.Item").Order("category, name").Find(&menu).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to fetch menu")
		return
	}
	respondOK(c, menu)
}

type CreateMenuItemRequest struct {
	Name        string          `json:"name" binding:"required"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url"`
	Ingredients []struct {
		ItemID   uint            `json:"item_id" binding:"required"`
		Quantity decimal.Decimal `json:"quantity"`
	} `json:"ingredients"`
}

// --- POST /api/menu ---
func CreateMenuItem(c *gin.Context) {
	var req CreateMenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid input")
		return
	}
	if !req.Price.IsPositive() {
		respondBusinessError(c, models.ErrInvalidAmount)
		return
	}

	menuItem := models.MenuItem{
		Name:     req.Name,
		Category: req.Category,
		Price:    req.Price,
		ImageURL: req.ImageURL,
	}
	for _, ing := range req.Ingredients {
		if !ing.Quantity.IsPositive() {
			respondBusinessError(c, models.ErrInvalidAmount)
			return
		}
		// Recipe lines must point at real inventory items.
		var item models.InventoryItem
		if err := database.DB.First(&item, ing.ItemID).Error; err != nil {
			respondError(c, http.StatusBadRequest, fmt.Sprintf("Inventory item %d not found", ing.ItemID))
			return
		}
		menuItem.Ingredients = append(menuItem.Ingredients, models.RecipeIngredient{
			ItemID:   ing.ItemID,
			Quantity: ing.Quantity,
		})
	}

	if err := database.DB.Create(&menuItem).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to create menu item")
		return
	}

	database.Audit(currentUserID(c), "create", "menu_item", menuItem.ID, menuItem.Name)
	respondCreated(c, menuItem)
}

type CheckoutRequest struct {
	Items []struct {
		MenuItemID uint `json:"menu_item_id" binding:"required"`
		Quantity   int  `json:"quantity" binding:"required,gt=0"`
	} `json:"items" binding:"required,min=1"`
}

// --- POST /api/checkout ---
// Rings up an order and consumes recipe ingredients from the stock ledger.
// The resulting out-movements carry the order ID and are therefore
// immutable: fixing a wrong order means cancelling it, not editing history.
func Checkout(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	userID := currentUserID(c)
	now := time.Now()

	tx := database.DB.Begin()

	totalAmount := decimal.Zero
	var orderItems []models.OrderItem
	// Total ingredient demand across the whole order, per inventory item.
	demand := make(map[uint]decimal.Decimal)

	for _, line := range req.Items {
		var menuItem models.MenuItem
		if err := tx.Preload("Ingredients").First(&menuItem, line.MenuItemID).Error; err != nil {
			tx.Rollback()
			respondError(c, http.StatusNotFound, fmt.Sprintf("Menu item %d not found", line.MenuItemID))
			return
		}

		qty := decimal.NewFromInt(int64(line.Quantity))
		totalAmount = totalAmount.Add(menuItem.Price.Mul(qty))
		orderItems = append(orderItems, models.OrderItem{
			MenuItemID:  menuItem.ID,
			Quantity:    line.Quantity,
			PriceAtSale: menuItem.Price,
		})

		for _, ing := range menuItem.Ingredients {
			demand[ing.ItemID] = demand[ing.ItemID].Add(ing.Quantity.Mul(qty))
		}
	}

	order := models.Order{
		UserID:      userID,
		TotalAmount: totalAmount,
		Status:      "completed",
		OrderTime:   now,
		Items:       orderItems,
	}
	if err := tx.Create(&order).Error; err != nil {
		tx.Rollback()
		respondError(c, http.StatusInternalServerError, "Failed to create order record")
		return
	}

	// Deduct every consumed ingredient through the ledger so the FIFO
	// valuation stays truthful.
	for itemID, qty := range demand {
		if !qty.IsPositive() {
			continue
		}

		var item models.InventoryItem
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&item, itemID).Error; err != nil {
			tx.Rollback()
			respondError(c, http.StatusNotFound, fmt.Sprintf("Ingredient %d not found", itemID))
			return
		}

		movement := models.StockMovement{
			ItemID:     item.ID,
			Type:       models.MovementOut,
			Quantity:   qty,
			Reason:     fmt.Sprintf("Order #%d", order.ID),
			OrderID:    &order.ID,
			OccurredAt: now,
		}
		if err := ledger.ValidateNew(movement, item.CurrentStock); err != nil {
			tx.Rollback()
			respondBusinessError(c, fmt.Errorf("%s: %w", item.Name, err))
			return
		}

		movements, err := loadLedger(tx, item.ID)
		if err != nil {
			tx.Rollback()
			respondError(c, http.StatusInternalServerError, "Failed to load movements")
			return
		}
		movements = append(movements, movement)

		if _, err := applyReplay(tx, &item, movements); err != nil {
			tx.Rollback()
			respondBusinessError(c, err)
			return
		}
	}

	tx.Commit()
	database.Audit(userID, "checkout", "order", order.ID, totalAmount.String())
	respondOK(c, gin.H{
		"order_id": order.ID,
		"total":    totalAmount,
	})
}
