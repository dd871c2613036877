package database

import (
	"log"
	"os"
	"time"

	"gamecafe-pos/internal/models"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func Connect() {
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("❌ Error: DB_DSN not found in .env file. Please configure your database.")
	}

	var err error

	// The MySQL container may still be warming up on first boot.
	for i := 0; i < 5; i++ {
		DB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
		if err == nil {
			break
		}
		log.Printf("Failed to connect to database. Retrying in 2 seconds... (%d/5)", i+1)
		time.Sleep(2 * time.Second)
	}

	if err != nil {
		log.Fatal("Failed to connect to database after 5 attempts:", err)
	}

	log.Println("✅ Successfully connected to MySQL!")

	err = DB.AutoMigrate(
		&models.User{},
		&models.InventoryItem{},
		&models.StockMovement{},
		&models.Cost{},
		&models.CostPayment{},
		&models.CostAmountChange{},
		&models.MenuItem{},
		&models.RecipeIngredient{},
		&models.Order{},
		&models.OrderItem{},
		&models.ValuationSnapshot{},
		&models.AuditLog{},
		&models.SystemLicense{},
	)
	if err != nil {
		log.Fatal("Failed to migrate schema:", err)
	}

	log.Println("✅ Database Schema Synced!")
}

// Audit writes a best-effort audit trail entry. Failures are logged and
// swallowed so an audit hiccup never aborts the business mutation.
func Audit(userID uint, action, entity string, entityID uint, detail string) {
	entry := models.AuditLog{
		UserID:   userID,
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		Detail:   detail,
	}
	if err := DB.Create(&entry).Error; err != nil {
		log.Printf("audit write failed (%s %s/%d): %v", action, entity, entityID, err)
	}
}
