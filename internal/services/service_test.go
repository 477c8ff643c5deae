package services

import (
	"log"
	"os"
	"testing"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"ledger-service/internal/models"
)

// NOTE: DB-backed tests require a running MySQL instance reachable through
// DATABASE_URL; without it they skip and only the pure tests run.

var testDB *gorm.DB

func TestMain(m *testing.M) {
	setup()
	os.Exit(m.Run())
}

func setup() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Println("Skipping DB tests: DATABASE_URL not set")
		return
	}

	var err error
	testDB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		testDB = nil
		return
	}

	testDB.AutoMigrate(
		&models.User{},
		&models.Currency{},
		&models.Settings{},
		&models.Promotion{},
		&models.Transaction{},
		&models.TurnoverObligation{},
		&models.CompanyLedgerEntry{},
		&models.BetResult{},
		&models.CommissionRecord{},
		&models.EventLog{},
	)
}

func cleanup() {
	if testDB != nil {
		testDB.Exec("DELETE FROM commission")
		testDB.Exec("DELETE FROM bet_results")
		testDB.Exec("DELETE FROM admin_main_balance")
		testDB.Exec("DELETE FROM turnover")
		testDB.Exec("DELETE FROM transactions")
		testDB.Exec("DELETE FROM settings")
		testDB.Exec("DELETE FROM promotions")
		testDB.Exec("DELETE FROM currencies")
		testDB.Exec("DELETE FROM users")
	}
}

func seedCurrency(t *testing.T, id int, rate string) {
	t.Helper()
	testDB.Exec("INSERT INTO currencies (id, code, name, conversion_rate) VALUES (?, ?, ?, ?)",
		id, "TST", "Test", rate)
}

func seedUser(t *testing.T, user models.User) models.User {
	t.Helper()
	if err := testDB.Create(&user).Error; err != nil {
		t.Fatalf("seeding user failed: %v", err)
	}
	return user
}
