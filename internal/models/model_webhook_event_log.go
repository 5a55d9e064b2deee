package models

import (
	"time"

	"gorm.io/datatypes"
)

type WebhookEventLogStatus string

const (
	WebhookEventLogStatusReceived     WebhookEventLogStatus = "received"
	WebhookEventLogStatusHandled      WebhookEventLogStatus = "handled"
	WebhookEventLogStatusHandleFailed WebhookEventLogStatus = "handle_failed"
)

// WebhookEventLog records every inbound gateway notification together with
// its handling outcome. Providers redeliver freely, so rows are written per
// delivery, not per event.
type WebhookEventLog struct {
	ID        string `gorm:"column:id;type:uuid;primary_key" json:"id"`
	GatewayID string `gorm:"column:gateway_id;type:varchar(64);not null" json:"gateway_id"`
	EventType string `gorm:"column:event_type;type:varchar(128)" json:"event_type"`
	TraceID   string `gorm:"column:trace_id;type:varchar(128)" json:"trace_id"`
	// ObjectID is the gateway transaction id or gateway subscription id
	// referenced by the event, depending on the event type.
	ObjectID  string                `gorm:"column:object_id;type:varchar(128)" json:"object_id"`
	EventTime time.Time             `gorm:"column:event_time" json:"event_time"`
	Data      datatypes.JSON        `gorm:"column:data;type:jsonb" json:"data"`
	Result    *datatypes.JSON       `gorm:"column:result;type:jsonb" json:"result"`
	Status    WebhookEventLogStatus `gorm:"column:status;type:varchar(64);not null" json:"status"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}

func (WebhookEventLog) TableName() string { return "webhook_event_log" }
