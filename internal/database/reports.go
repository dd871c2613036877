package database

import (
	"time"

	"gamecafe-pos/internal/models"

	"github.com/shopspring/decimal"
)

// SalesSummary holds aggregate order figures for a date range
type SalesSummary struct {
	TotalRevenue decimal.Decimal
	OrderCount   int64
}

// GetSalesSummary totals completed orders between start and end (inclusive)
func GetSalesSummary(start, end time.Time) (*SalesSummary, error) {
	var summary SalesSummary
	var revenue float64

	// COALESCE ensures we get 0 instead of NULL when there are no orders
	err := DB.Model(&models.Order{}).
		Where("order_time BETWEEN ? AND ? AND status = ?", start, end, "completed").
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&revenue).Error
	if err != nil {
		return nil, err
	}
	summary.TotalRevenue = decimal.NewFromFloat(revenue)

	err = DB.Model(&models.Order{}).
		Where("order_time BETWEEN ? AND ? AND status = ?", start, end, "completed").
		Count(&summary.OrderCount).Error
	if err != nil {
		return nil, err
	}

	return &summary, nil
}

// CostSummary breaks expenses down by payment status
type CostSummary struct {
	TotalAmount decimal.Decimal
	TotalPaid   decimal.Decimal
	Outstanding decimal.Decimal
	ByStatus    map[string]int64
}

// GetCostSummary totals all non-cancelled costs and counts each status
func GetCostSummary() (*CostSummary, error) {
	summary := CostSummary{ByStatus: make(map[string]int64)}

	var totals struct {
		Amount float64
		Paid   float64
	}
	err := DB.Model(&models.Cost{}).
		Where("status <> ?", models.CostCancelled).
		Select("COALESCE(SUM(amount), 0) AS amount, COALESCE(SUM(paid_amount), 0) AS paid").
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	summary.TotalAmount = decimal.NewFromFloat(totals.Amount)
	summary.TotalPaid = decimal.NewFromFloat(totals.Paid)
	summary.Outstanding = summary.TotalAmount.Sub(summary.TotalPaid)
	if summary.Outstanding.IsNegative() {
		summary.Outstanding = decimal.Zero
	}

	var rows []struct {
		Status string
		N      int64
	}
	err = DB.Model(&models.Cost{}).
		Select("status, COUNT(*) AS n").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		summary.ByStatus[r.Status] = r.N
	}

	return &summary, nil
}

// GetInventoryValuation sums the FIFO value of every item
func GetInventoryValuation() (decimal.Decimal, int, error) {
	var items []models.InventoryItem
	if err := DB.Find(&items).Error; err != nil {
		return decimal.Zero, 0, err
	}

	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.TotalValue)
	}
	return total, len(items), nil
}
