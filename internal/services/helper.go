package services

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"ledger-service/internal/models"
	"ledger-service/pkg/common"
)

// Task type for state-change events. Mirrored in internal/worker to avoid an
// import cycle.
const TypeLedgerEvent = "ledger-event"

type HelperService struct {
	DB    *gorm.DB
	Queue *asynq.Client
}

func NewHelperService(db *gorm.DB, queue *asynq.Client) *HelperService {
	return &HelperService{DB: db, Queue: queue}
}

// SettingsSnapshot is an immutable copy of the operator settings row, taken
// once per operation and passed into each cascade so tests can substitute
// fixed values.
type SettingsSnapshot struct {
	DefaultTurnoverMultiplier decimal.Decimal
	MinWithdrawableBalance    decimal.Decimal
	TurnoverBreakFloor        decimal.Decimal
}

// DefaultSettings is used when no settings row has been seeded yet.
func DefaultSettings() SettingsSnapshot {
	return SettingsSnapshot{
		DefaultTurnoverMultiplier: decimal.NewFromInt(1),
		MinWithdrawableBalance:    decimal.Zero,
		TurnoverBreakFloor:        decimal.NewFromInt(20),
	}
}

func (s *HelperService) LoadSettings() SettingsSnapshot {
	var row models.Settings
	if err := s.DB.Order("id ASC").First(&row).Error; err != nil {
		return DefaultSettings()
	}
	return SettingsSnapshot{
		DefaultTurnoverMultiplier: row.DefaultTurnoverMultiplier,
		MinWithdrawableBalance:    row.MinWithdrawableBalance,
		TurnoverBreakFloor:        row.TurnoverBreakFloor,
	}
}

// GenerateTransactionNo returns a custom transaction id that does not collide
// with any existing transaction row.
func (s *HelperService) GenerateTransactionNo(tx *gorm.DB) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		candidate := common.GenerateTrxNo()

		var count int64
		if err := tx.Model(&models.Transaction{}).
			Where("custom_transaction_id = ?", candidate).
			Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("could not generate a unique transaction id")
}

// LookupConversionRate returns the current rate for a currency; the caller
// snapshots it onto the transaction row.
func (s *HelperService) LookupConversionRate(currencyId int) (decimal.Decimal, error) {
	var currency models.Currency
	if err := s.DB.First(&currency, currencyId).Error; err != nil {
		return decimal.Zero, fmt.Errorf("%w: currency %d", ErrNotFound, currencyId)
	}
	if currency.ConversionRate.IsZero() {
		return decimal.Zero, fmt.Errorf("%w: currency %d has no conversion rate", ErrInvariantViolation, currencyId)
	}
	return currency.ConversionRate, nil
}

// EmitEvent hands a state-change event to the realtime channel, fire and
// forget. Enqueue failures are logged and swallowed; they must never fail the
// operation that produced the event.
func (s *HelperService) EmitEvent(eventType string, payload map[string]interface{}) {
	if s.Queue == nil {
		return
	}

	payload["event"] = eventType
	payload["eventId"] = uuid.NewString()
	payload["emittedAt"] = time.Now().UTC().Format(time.RFC3339)

	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("EmitEvent: marshal %s failed: %v", eventType, err)
		return
	}

	task := asynq.NewTask(TypeLedgerEvent, data)
	if _, err := s.Queue.Enqueue(task, asynq.Queue("low")); err != nil {
		log.Printf("EmitEvent: enqueue %s failed: %v", eventType, err)
	}
}
