package handlers

import (
	"net/http"
	"sort"

	"gamecafe-pos/internal/database"
	"gamecafe-pos/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// OverviewData is the back-office dashboard payload
type OverviewData struct {
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	TotalOrders  int64           `json:"total_orders"`
	TopSelling   []struct {
		MenuItemName string  `json:"menu_item_name"`
		Sold         int     `json:"sold"`
		Revenue      float64 `json:"revenue"`
	} `json:"top_selling"`
	Costs         *database.CostSummary  `json:"costs"`
	LowStockItems []models.InventoryItem `json:"low_stock_items"`
	RecentOrders  []models.Order         `json:"recent_orders"`
}

// --- GET /api/reports ---
func GetOverview(c *gin.Context) {
	var data OverviewData

	var revenue float64
	err := database.DB.Model(&models.Order{}).
		Where("status = ?", "completed").
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&revenue).Error
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to calculate revenue")
		return
	}
	data.TotalRevenue = decimal.NewFromFloat(revenue)

	if err := database.DB.Model(&models.Order{}).Where("status = ?", "completed").Count(&data.TotalOrders).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to count orders")
		return
	}

	err = database.DB.Table("order_items").
		Select("menu_items.name as menu_item_name, SUM(order_items.quantity) as sold, SUM(order_items.quantity * order_items.price_at_sale) as revenue").
		Joins("JOIN menu_items ON order_items.menu_item_id = menu_items.id").
		Group("menu_items.name").
		Order("sold desc").
		Limit(5).
		Scan(&data.TopSelling).Error
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to fetch top sellers")
		return
	}

	costSummary, err := database.GetCostSummary()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to summarise costs")
		return
	}
	data.Costs = costSummary

	if err := database.DB.Where("current_stock <= min_stock").Order("name").Find(&data.LowStockItems).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to fetch low stock items")
		return
	}

	if err := database.DB.Order("order_time desc").Limit(10).Find(&data.RecentOrders).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to fetch recent orders")
		return
	}

	respondOK(c, data)
}

// ValuationItem is one row of the stock valuation report
type ValuationItem struct {
	Name       string          `json:"name"`
	Quantity   decimal.Decimal `json:"quantity"`
	Unit       string          `json:"unit"`
	LastPrice  decimal.Decimal `json:"last_price"`
	TotalValue decimal.Decimal `json:"total_value"`
}

// CategoryGroup is one category table of the report
type CategoryGroup struct {
	CategoryName string          `json:"category_name"`
	Items        []ValuationItem `json:"items"`
	Subtotal     decimal.Decimal `json:"subtotal"`
}

// ValuationResponse is the final report payload
type ValuationResponse struct {
	Categories []CategoryGroup `json:"categories"`
	GrandTotal decimal.Decimal `json:"grand_total"`
}

// --- GET /api/reports/valuation ---
// Groups the FIFO value of every item by category. TotalValue on the item
// is maintained by the ledger, so this is a pure read.
func GetStockValuation(c *gin.Context) {
	var items []models.InventoryItem
	if err := database.DB.Order("name").Find(&items).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to fetch inventory")
		return
	}

	grandTotal := decimal.Zero
	grouped := make(map[string]*CategoryGroup)

	for _, item := range items {
		catName := item.Category
		if catName == "" {
			catName = "Uncategorized"
		}
		group, exists := grouped[catName]
		if !exists {
			group = &CategoryGroup{CategoryName: catName, Subtotal: decimal.Zero}
			grouped[catName] = group
		}

		group.Items = append(group.Items, ValuationItem{
			Name:       item.Name,
			Quantity:   item.CurrentStock,
			Unit:       item.Unit,
			LastPrice:  item.Price,
			TotalValue: item.TotalValue,
		})
		group.Subtotal = group.Subtotal.Add(item.TotalValue)
		grandTotal = grandTotal.Add(item.TotalValue)
	}

	response := ValuationResponse{GrandTotal: grandTotal}
	for _, group := range grouped {
		response.Categories = append(response.Categories, *group)
	}
	sort.Slice(response.Categories, func(i, j int) bool {
		return response.Categories[i].CategoryName < response.Categories[j].CategoryName
	})

	respondOK(c, response)
}

// --- GET /api/reports/valuation/history ---
// The nightly snapshot job feeds this trend line.
func GetValuationHistory(c *gin.Context) {
	var snapshots []models.ValuationSnapshot
	if err := database.DB.Order("taken_at desc").Limit(90).Find(&snapshots).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to fetch valuation history")
		return
	}
	respondOK(c, snapshots)
}
