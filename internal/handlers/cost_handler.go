package handlers

import (
	"net/http"
	"strconv"
	"time"

	"gamecafe-pos/internal/costs"
	"gamecafe-pos/internal/database"
	"gamecafe-pos/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CreateCostRequest struct {
	Title      string          `json:"title" binding:"required"`
	Category   string          `json:"category"`
	Amount     decimal.Decimal `json:"amount"`
	PaidAmount decimal.Decimal `json:"paid_amount"`
	DueDate    *time.Time      `json:"due_date"`
	Notes      string          `json:"notes"`
}

// --- POST /api/costs ---
func CreateCost(c *gin.Context) {
	var req CreateCostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid input")
		return
	}
	if !req.Amount.IsPositive() {
		respondBusinessError(c, models.ErrInvalidAmount)
		return
	}

	now := time.Now()
	cost := models.Cost{
		Title:    req.Title,
		Category: req.Category,
		Amount:   req.Amount,
		DueDate:  req.DueDate,
		Notes:    req.Notes,
	}
	cost.Status = costs.DeriveStatus(&cost, now)

	tx := database.DB.Begin()
	if err := tx.Create(&cost).Error; err != nil {
		tx.Rollback()
		respondError(c, http.StatusInternalServerError, "Failed to create cost")
		return
	}

	// Part of the bill may have been paid up front.
	if req.PaidAmount.IsPositive() {
		payment, err := costs.AddPayment(&cost, req.PaidAmount, "cash", "", "Paid at creation", now)
		if err != nil {
			tx.Rollback()
			respondBusinessError(c, err)
			return
		}
		if err := tx.Create(payment).Error; err != nil {
			tx.Rollback()
			respondError(c, http.StatusInternalServerError, "Failed to record payment")
			return
		}
		if err := tx.Save(&cost).Error; err != nil {
			tx.Rollback()
			respondError(c, http.StatusInternalServerError, "Failed to update cost")
			return
		}
	}

	tx.Commit()
	database.Audit(currentUserID(c), "create", "cost", cost.ID, cost.Title)
	respondCreated(c, costView(&cost))
}

// --- GET /api/costs ---
func GetCosts(c *gin.Context) {
	query := database.DB.Order("created_at desc")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	var list []models.Cost
	if err := query.Find(&list).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to fetch costs")
		return
	}

	views := make([]gin.H, 0, len(list))
	for i := range list {
		views = append(views, costView(&list[i]))
	}
	respondOK(c, views)
}

// --- GET /api/costs/:id ---
func GetCost(c *gin.Context) {
	var cost models.Cost
	err := database.DB.
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("paid_at asc") }).
		Preload("AmountChanges", func(db *gorm.DB) *gorm.DB { return db.Order("changed_at asc") }).
		First(&cost, c.Param("id")).Error
	if err != nil {
		respondError(c, http.StatusNotFound, "Cost not found")
		return
	}
	respondOK(c, costView(&cost))
}

type PaymentRequest struct {
	PaymentAmount decimal.Decimal `json:"paymentAmount"`
	PaymentMethod string          `json:"paymentMethod"`
	Reference     string          `json:"reference"`
	Notes         string          `json:"notes"`
}

// --- POST /api/costs/:id/payment ---
func AddCostPayment(c *gin.Context) {
	var req PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid input")
		return
	}

	cost, tx, ok := lockCost(c)
	if !ok {
		return
	}

	payment, err := costs.AddPayment(cost, req.PaymentAmount, req.PaymentMethod, req.Reference, req.Notes, time.Now())
	if err != nil {
		tx.Rollback()
		respondBusinessError(c, err)
		return
	}

	if err := tx.Create(payment).Error; err != nil {
		tx.Rollback()
		respondError(c, http.StatusInternalServerError, "Failed to record payment")
		return
	}
	if err := tx.Save(cost).Error; err != nil {
		tx.Rollback()
		respondError(c, http.StatusInternalServerError, "Failed to update cost")
		return
	}

	tx.Commit()
	database.Audit(currentUserID(c), "payment", "cost", cost.ID, req.PaymentAmount.String())
	respondOK(c, costView(cost))
}

type IncreaseRequest struct {
	AdditionalAmount decimal.Decimal `json:"additionalAmount"`
	Reason           string          `json:"reason"`
}

// --- POST /api/costs/:id/increase ---
func IncreaseCostAmount(c *gin.Context) {
	var req IncreaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid input")
		return
	}

	cost, tx, ok := lockCost(c)
	if !ok {
		return
	}

	change, err := costs.IncreaseAmount(cost, req.AdditionalAmount, req.Reason, time.Now())
	if err != nil {
		tx.Rollback()
		respondBusinessError(c, err)
		return
	}

	if err := tx.Create(change).Error; err != nil {
		tx.Rollback()
		respondError(c, http.StatusInternalServerError, "Failed to record amount change")
		return
	}
	if err := tx.Save(cost).Error; err != nil {
		tx.Rollback()
		respondError(c, http.StatusInternalServerError, "Failed to update cost")
		return
	}

	tx.Commit()
	database.Audit(currentUserID(c), "increase", "cost", cost.ID, req.AdditionalAmount.String())
	respondOK(c, costView(cost))
}

// --- POST /api/costs/:id/cancel ---
func CancelCost(c *gin.Context) {
	cost, tx, ok := lockCost(c)
	if !ok {
		return
	}

	if err := costs.Cancel(cost); err != nil {
		tx.Rollback()
		respondBusinessError(c, err)
		return
	}
	if err := tx.Save(cost).Error; err != nil {
		tx.Rollback()
		respondError(c, http.StatusInternalServerError, "Failed to update cost")
		return
	}

	tx.Commit()
	database.Audit(currentUserID(c), "cancel", "cost", cost.ID, cost.Title)
	respondOK(c, costView(cost))
}

// --- DELETE /api/costs/:id ---
func DeleteCost(c *gin.Context) {
	cost, tx, ok := lockCost(c)
	if !ok {
		return
	}

	if !costs.CanDelete(cost) {
		tx.Rollback()
		respondBusinessError(c, models.ErrCostPaid)
		return
	}

	if err := tx.Where("cost_id = ?", cost.ID).Delete(&models.CostPayment{}).Error; err != nil {
		tx.Rollback()
		respondError(c, http.StatusInternalServerError, "Failed to delete payment history")
		return
	}
	if err := tx.Where("cost_id = ?", cost.ID).Delete(&models.CostAmountChange{}).Error; err != nil {
		tx.Rollback()
		respondError(c, http.StatusInternalServerError, "Failed to delete amount history")
		return
	}
	if err := tx.Delete(&models.Cost{}, cost.ID).Error; err != nil {
		tx.Rollback()
		respondError(c, http.StatusInternalServerError, "Failed to delete cost")
		return
	}

	tx.Commit()
	database.Audit(currentUserID(c), "delete", "cost", cost.ID, cost.Title)
	respondMessage(c, "Cost deleted")
}

// lockCost opens a transaction and row-locks the cost so two clerks cannot
// pay the same bill twice.
func lockCost(c *gin.Context) (*models.Cost, *gorm.DB, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid cost ID")
		return nil, nil, false
	}

	tx := database.DB.Begin()
	var cost models.Cost
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&cost, id).Error; err != nil {
		tx.Rollback()
		respondError(c, http.StatusNotFound, "Cost not found")
		return nil, nil, false
	}
	return &cost, tx, true
}

// costView adds the derived remaining amount the frontend shows next to
// every cost row.
func costView(cost *models.Cost) gin.H {
	return gin.H{
		"cost":             cost,
		"remaining_amount": costs.Remaining(cost),
	}
}
