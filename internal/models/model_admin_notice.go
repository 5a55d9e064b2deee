package models

import "time"

// AdminNotice is an operator-facing actionable notice. Code is unique so a
// recurring condition (for example a gateway reporting-permission error)
// raises the notice exactly once.
type AdminNotice struct {
	ID        string    `gorm:"column:id;type:uuid;primary_key" json:"id"`
	Code      string    `gorm:"column:code;type:varchar(64);not null;uniqueIndex" json:"code"`
	Level     string    `gorm:"column:level;type:varchar(16);not null" json:"level"`
	Message   string    `gorm:"column:message;type:text;not null" json:"message"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (AdminNotice) TableName() string {
	return "admin_notice"
}
