package models

import (
	"time"

	"gorm.io/datatypes"
)

// EventLog records every state-change event handed to the realtime channel,
// with the delivery outcome. Delivery failures never fail the operation that
// produced the event.
type EventLog struct {
	ID        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	EventId   string         `gorm:"column:event_id;size:40;uniqueIndex" json:"event_id"`
	EventType string         `gorm:"column:event_type;size:100;not null;index" json:"event_type"`
	Payload   datatypes.JSON `gorm:"column:payload" json:"payload"`
	Response  string         `gorm:"column:response;type:longtext" json:"response"`
	Status    int            `gorm:"column:status;default:0" json:"status"` // 0: pending, 1: delivered, 2: failed
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (EventLog) TableName() string {
	return "event_logs"
}
