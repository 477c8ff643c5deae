package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"ledger-service/internal/database"
	"ledger-service/internal/handlers"
	"ledger-service/internal/services"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found in current directory, trying parent")
		if err := godotenv.Load("../.env"); err != nil {
			log.Println("No .env file found, using system environment variables")
		}
	}

	if mode := os.Getenv("GIN_MODE"); mode != "" {
		gin.SetMode(mode)
	}

	// Initialize Database
	database.Connect()
	database.Migrate()
	db := database.DB

	// Redis/Asynq Client
	redisAddr := os.Getenv("REDIS_URL")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr})
	defer asynqClient.Close()

	// Init Services
	helperService := services.NewHelperService(db, asynqClient)
	balanceService := services.NewBalanceService(db)
	turnoverService := services.NewTurnoverService(db)
	transactionService := services.NewTransactionService(db, helperService, turnoverService)
	commissionService := services.NewCommissionService(db, helperService)
	withdrawalService := services.NewWithdrawalService(db, helperService, balanceService, turnoverService)
	betService := services.NewBetService(db, helperService, balanceService, turnoverService, commissionService)

	handler := handlers.NewLedgerHandler(db, transactionService, withdrawalService, balanceService, betService, commissionService)

	// Initialize Gin
	r := gin.Default()

	// Ping endpoint
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "Welcome To Ledger service",
		})
	})

	// Transactions
	r.GET("/transactions", handler.GetTransactions)
	r.POST("/transactions/deposit", handler.CreateDeposit)
	r.POST("/transactions/withdraw", handler.CreateWithdraw)
	r.PUT("/transactions/:id/status", handler.UpdateTransactionStatus)

	// Bonuses
	r.POST("/bonus/spin/claim", handler.ClaimSpinBonus)
	r.POST("/notifications/:id/claim", handler.ClaimNotification)

	// Players
	r.GET("/users/:id/balance", handler.GetBalance)
	r.GET("/users/:id/withdraw-capability", handler.CheckWithdrawCapability)

	// Bets
	r.POST("/bets/session", handler.CreateBetSession)
	r.PUT("/bets/result", handler.UpdateBetResult)

	// Affiliates
	r.POST("/affiliates/withdraw", handler.RequestAffiliateWithdraw)
	r.PUT("/affiliates/withdraw/:id/status", handler.UpdateAffiliateWithdrawStatus)
	r.PUT("/commissions/:id/status", handler.UpdateCommissionStatus)

	// Reports
	r.GET("/reports/company-balance", handler.CompanyBalance)

	// Start Cron Schedulers
	archiveService := services.NewLedgerArchiveService(db)
	archiveService.StartScheduler()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("HTTP Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}
