package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gamecafe-pos/internal/database"
	"gamecafe-pos/internal/models"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// RunAgent answers a back-office question ("how much stock value do we
// hold?", "which bills are overdue?") by letting Gemini call read-only
// tools over the inventory and cost data.
func RunAgent(userMessage string, apiKey string) (string, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return "", err
	}
	defer client.Close()

	model := client.GenerativeModel("gemini-2.0-flash-001")

	today := time.Now().Format("2006-01-02")
	systemPrompt := fmt.Sprintf(`SYSTEM: Today is %s. You are the back-office assistant of a cafe and gaming center.

RULES:
1. STOCK: For questions about items, quantities or reorder levels, call 'check_inventory' and read the JSON.
2. VALUE: For questions about how much the inventory is worth, call 'get_stock_valuation'. The values are FIFO-based, never guess from list prices.
3. EXPENSES: For questions about bills, payments, or what is still owed, call 'get_cost_summary'.
4. SALES: For revenue questions, call 'get_sales_report' with a date range.
Never invent numbers. If a tool returns no data, say so.

USER: %s`, today, userMessage)

	model.Tools = []*genai.Tool{
		{
			FunctionDeclarations: []*genai.FunctionDeclaration{
				{
					Name:        "check_inventory",
					Description: "Get the full inventory list with stock levels, units, reorder thresholds and FIFO value per item.",
				},
				{
					Name:        "get_stock_valuation",
					Description: "Get the total FIFO valuation of all inventory.",
				},
				{
					Name:        "get_cost_summary",
					Description: "Get expense totals: amount, paid, outstanding, and a count per status (pending, partially_paid, paid, overdue, cancelled).",
				},
				{
					Name:        "get_sales_report",
					Description: "Get order revenue and count for a date range.",
					Parameters: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"start_date": {Type: genai.TypeString, Description: "Start date (YYYY-MM-DD)"},
							"end_date":   {Type: genai.TypeString, Description: "End date (YYYY-MM-DD)"},
						},
						Required: []string{"start_date", "end_date"},
					},
				},
			},
		},
	}

	session := model.StartChat()

	resp, err := session.SendMessage(ctx, genai.Text(systemPrompt))
	if err != nil {
		return "", err
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		if funcCall, ok := part.(genai.FunctionCall); ok {
			switch funcCall.Name {
			case "check_inventory":
				return executeCheckInventory(ctx, session)
			case "get_stock_valuation":
				return executeStockValuation(ctx, session)
			case "get_cost_summary":
				return executeCostSummary(ctx, session)
			case "get_sales_report":
				return executeSalesReport(ctx, session, funcCall)
			}
		}
	}

	return printResponse(resp), nil
}

func executeCheckInventory(ctx context.Context, session *genai.ChatSession) (string, error) {
	var items []models.InventoryItem
	if err := database.DB.Order("name").Find(&items).Error; err != nil {
		return "", err
	}

	type inventoryRow struct {
		ID       uint   `json:"id"`
		Name     string `json:"name"`
		Category string `json:"category"`
		Stock    string `json:"stock"`
		Unit     string `json:"unit"`
		MinStock string `json:"min_stock"`
		Value    string `json:"fifo_value"`
	}
	rows := make([]inventoryRow, 0, len(items))
	for _, item := range items {
		rows = append(rows, inventoryRow{
			ID:       item.ID,
			Name:     item.Name,
			Category: item.Category,
			Stock:    item.CurrentStock.String(),
			Unit:     item.Unit,
			MinStock: item.MinStock.String(),
			Value:    item.TotalValue.String(),
		})
	}

	jsonBytes, _ := json.Marshal(rows)
	resp, err := session.SendMessage(ctx, genai.FunctionResponse{
		Name:     "check_inventory",
		Response: map[string]interface{}{"inventory": string(jsonBytes)},
	})
	if err != nil {
		return "", err
	}
	return printResponse(resp), nil
}

func executeStockValuation(ctx context.Context, session *genai.ChatSession) (string, error) {
	total, count, err := database.GetInventoryValuation()
	if err != nil {
		return "", err
	}

	resp, err := session.SendMessage(ctx, genai.FunctionResponse{
		Name: "get_stock_valuation",
		Response: map[string]interface{}{
			"total_value": total.String(),
			"item_count":  count,
		},
	})
	if err != nil {
		return "", err
	}
	return printResponse(resp), nil
}

func executeCostSummary(ctx context.Context, session *genai.ChatSession) (string, error) {
	summary, err := database.GetCostSummary()
	if err != nil {
		return "", err
	}

	resp, err := session.SendMessage(ctx, genai.FunctionResponse{
		Name: "get_cost_summary",
		Response: map[string]interface{}{
			"total_amount": summary.TotalAmount.String(),
			"total_paid":   summary.TotalPaid.String(),
			"outstanding":  summary.Outstanding.String(),
			"by_status":    summary.ByStatus,
		},
	})
	if err != nil {
		return "", err
	}
	return printResponse(resp), nil
}

func executeSalesReport(ctx context.Context, session *genai.ChatSession, funcCall genai.FunctionCall) (string, error) {
	args := funcCall.Args
	startStr, _ := args["start_date"].(string)
	endStr, _ := args["end_date"].(string)

	start, err1 := time.Parse("2006-01-02", startStr)
	end, err2 := time.Parse("2006-01-02", endStr)
	if err1 != nil || err2 != nil {
		return "Error: Dates must be in YYYY-MM-DD format.", nil
	}
	end = end.Add(23*time.Hour + 59*time.Minute)

	report, err := database.GetSalesSummary(start, end)
	if err != nil {
		return "", err
	}

	resp, err := session.SendMessage(ctx, genai.FunctionResponse{
		Name: "get_sales_report",
		Response: map[string]interface{}{
			"revenue":     report.TotalRevenue.String(),
			"order_count": report.OrderCount,
		},
	})
	if err != nil {
		return "", err
	}
	return printResponse(resp), nil
}

func printResponse(resp *genai.GenerateContentResponse) string {
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			return string(txt)
		}
	}
	return "I completed the action."
}
