package models

import "time"

// Donor owns subscriptions and donations. This service treats donor identity
// as read-mostly; the donation platform is the system of record for profile
// edits.
type Donor struct {
	ID        string    `gorm:"column:id;type:uuid;primary_key" json:"id"`
	FirstName string    `gorm:"column:first_name;type:varchar(128);not null" json:"first_name"`
	LastName  string    `gorm:"column:last_name;type:varchar(128);not null" json:"last_name"`
	Email     string    `gorm:"column:email;type:varchar(254);not null;index" json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Donor) TableName() string {
	return "donor"
}
