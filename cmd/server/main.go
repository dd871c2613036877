package main

import (
	"log"
	"os"
	"time"

	"gamecafe-pos/internal/database"
	"gamecafe-pos/internal/handlers"
	"gamecafe-pos/internal/jobs"
	"gamecafe-pos/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: No .env file found")
	}

	// The React frontend expects plain JSON numbers, not quoted decimals.
	decimal.MarshalJSONWithoutQuotes = true

	database.Connect()

	scheduler := jobs.Start()
	defer scheduler.Stop()

	r := gin.Default()

	corsOrigin := os.Getenv("CORS_ORIGIN")
	if corsOrigin == "" {
		corsOrigin = "http://localhost:5173"
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{corsOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"status": "online"}) })
	r.POST("/login", handlers.Login)
	r.Static("/uploads", "./uploads")

	// Activation must stay reachable while the system is locked.
	r.GET("/api/system/status", handlers.GetSystemStatus)
	r.POST("/api/system/activate", handlers.ActivateLicense)

	// Only open while bootstrapping the first admin account.
	if os.Getenv("ALLOW_REGISTRATION") == "true" {
		r.POST("/register", handlers.Register)
		log.Println("⚠️ WARNING: Registration route is OPEN. Disable this in production!")
	} else {
		log.Println("🔒 Registration route is safely DISABLED.")
	}

	api := r.Group("/api")
	api.Use(middleware.CheckLicense())
	api.Use(middleware.AuthMiddleware())
	{
		// STAFF & ADMIN
		api.GET("/inventory", handlers.GetItems)
		api.GET("/inventory/:id", handlers.GetItem)
		api.GET("/inventory/:id/stock-movements", handlers.ListMovements)
		api.GET("/menu", handlers.GetMenu)
		api.POST("/checkout", handlers.Checkout)

		// ADMIN ONLY
		admin := api.Group("/")
		admin.Use(middleware.RequireRole("admin"))
		{
			admin.POST("/ask", handlers.AskAI)
			admin.POST("/upload", handlers.UploadImage)

			admin.POST("/inventory", handlers.CreateItem)
			admin.DELETE("/inventory/:id", handlers.DeleteItem)
			admin.PUT("/inventory/:id/stock", handlers.RecordStockMovement)
			admin.PUT("/inventory/:id/movements/:movementId", handlers.UpdateMovement)
			admin.DELETE("/inventory/:id/movements/:movementId", handlers.DeleteMovement)

			admin.POST("/menu", handlers.CreateMenuItem)

			admin.GET("/costs", handlers.GetCosts)
			admin.POST("/costs", handlers.CreateCost)
			admin.GET("/costs/:id", handlers.GetCost)
			admin.DELETE("/costs/:id", handlers.DeleteCost)
			admin.POST("/costs/:id/payment", handlers.AddCostPayment)
			admin.POST("/costs/:id/increase", handlers.IncreaseCostAmount)
			admin.POST("/costs/:id/cancel", handlers.CancelCost)

			admin.GET("/reports", handlers.GetOverview)
			admin.GET("/reports/valuation", handlers.GetStockValuation)
			admin.GET("/reports/valuation/history", handlers.GetValuationHistory)
		}
	}

	// Serve the built React frontend in production deployments.
	r.Static("/assets", "./web/assets")
	r.NoRoute(func(c *gin.Context) {
		c.File("./web/index.html")
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Println("🚀 Server starting on port " + port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal("Server failed to start:", err)
	}
}
