package models

import "time"

// DonationNote is an append-only audit note attached to a donation, written
// by event handlers and direct subscription actions.
type DonationNote struct {
	ID         string    `gorm:"column:id;type:uuid;primary_key" json:"id"`
	DonationID string    `gorm:"column:donation_id;type:uuid;not null;index" json:"donation_id"`
	Content    string    `gorm:"column:content;type:text;not null" json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

func (DonationNote) TableName() string {
	return "donation_note"
}
