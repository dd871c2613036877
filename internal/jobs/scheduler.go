package jobs

import (
	"log"
	"time"

	"gamecafe-pos/internal/database"
	"gamecafe-pos/internal/models"

	"github.com/robfig/cron/v3"
)

const (
	// Shortly after midnight: flag bills that blew past their due date,
	// then snapshot the inventory value for the history report.
	overdueSweepSpec      = "5 0 * * *"
	valuationSnapshotSpec = "15 0 * * *"
)

// Start schedules the nightly maintenance jobs and returns the running
// scheduler so main can stop it on shutdown.
func Start() *cron.Cron {
	c := cron.New()

	if _, err := c.AddFunc(overdueSweepSpec, SweepOverdueCosts); err != nil {
		log.Fatal("Failed to schedule overdue sweep:", err)
	}
	if _, err := c.AddFunc(valuationSnapshotSpec, SnapshotValuation); err != nil {
		log.Fatal("Failed to schedule valuation snapshot:", err)
	}

	c.Start()
	log.Println("⏰ Scheduled jobs started (overdue sweep, valuation snapshot)")
	return c
}

// SweepOverdueCosts persists the derived 'overdue' status for every unpaid
// or partially paid cost whose due date has passed. Paid and cancelled
// costs are never touched.
func SweepOverdueCosts() {
	result := database.DB.Model(&models.Cost{}).
		Where("status IN ?", []string{models.CostPending, models.CostPartiallyPaid}).
		Where("due_date IS NOT NULL AND due_date < ?", time.Now()).
		Update("status", models.CostOverdue)

	if result.Error != nil {
		log.Printf("overdue sweep failed: %v", result.Error)
		return
	}
	if result.RowsAffected > 0 {
		log.Printf("overdue sweep: %d cost(s) marked overdue", result.RowsAffected)
	}
}

// SnapshotValuation records the current FIFO total so the valuation
// history report has one point per day.
func SnapshotValuation() {
	total, count, err := database.GetInventoryValuation()
	if err != nil {
		log.Printf("valuation snapshot failed: %v", err)
		return
	}

	snapshot := models.ValuationSnapshot{
		TakenAt:    time.Now(),
		TotalValue: total,
		ItemCount:  count,
	}
	if err := database.DB.Create(&snapshot).Error; err != nil {
		log.Printf("valuation snapshot failed: %v", err)
		return
	}
	log.Printf("valuation snapshot: %s across %d items", total, count)
}
