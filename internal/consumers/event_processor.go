package consumers

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"ledger-service/internal/models"
	"ledger-service/pkg/common"
)

// EventProcessor delivers state-change events to the realtime channel and
// records the outcome. Delivery is at-least-once; consumers downstream
// deduplicate on eventId.
type EventProcessor struct {
	DB          *gorm.DB
	RealtimeURL string
}

func NewEventProcessor(db *gorm.DB) *EventProcessor {
	return &EventProcessor{
		DB:          db,
		RealtimeURL: os.Getenv("REALTIME_URL"),
	}
}

// LedgerEventDTO is the envelope the services attach to every emitted event.
// The rest of the payload is event-specific and forwarded verbatim.
type LedgerEventDTO struct {
	Event     string `json:"event"`
	EventId   string `json:"eventId"`
	EmittedAt string `json:"emittedAt"`
}

// ProcessLedgerEvent posts one event to the realtime endpoint and writes its
// event_logs row. The row is upserted on eventId so a retried task does not
// produce a second log entry. Returns an error to trigger a retry only on
// delivery failure.
func (p *EventProcessor) ProcessLedgerEvent(raw []byte) error {
	var envelope LedgerEventDTO
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("malformed event payload: %w", err)
	}

	entry := models.EventLog{
		EventId:   envelope.EventId,
		EventType: envelope.Event,
		Payload:   datatypes.JSON(raw),
		Status:    0,
	}
	if err := p.DB.Where("event_id = ?", envelope.EventId).
		FirstOrCreate(&entry).Error; err != nil {
		log.Printf("event %s: log write failed: %v", envelope.EventId, err)
	}

	if p.RealtimeURL == "" {
		// No realtime channel configured; the event stays logged as pending.
		return nil
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("malformed event payload: %w", err)
	}

	resp, err := common.Post(p.RealtimeURL, payload, nil)
	if err != nil {
		p.DB.Model(&entry).Updates(map[string]interface{}{
			"status":   2,
			"response": err.Error(),
		})
		return fmt.Errorf("event %s: delivery failed: %w", envelope.EventId, err)
	}

	respBody, _ := json.Marshal(resp)
	return p.DB.Model(&entry).Updates(map[string]interface{}{
		"status":   1,
		"response": string(respBody),
	}).Error
}
