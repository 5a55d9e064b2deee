package models

import (
	"time"

	"github.com/fatflowers/pledger/pkg/types"
)

// Donation is a single payment belonging to a subscription. The initial
// donation row is created at purchase submission; renewals are created only
// from confirmed webhook events or the sync engine. GatewayTransactionID is
// the idempotency key: a webhook for a transaction id already attached to a
// donation is a no-op.
type Donation struct {
	ID             string          `gorm:"column:id;type:uuid;primary_key" json:"id"`
	SubscriptionID string          `gorm:"column:subscription_id;type:uuid;not null;index" json:"subscription_id"`
	DonorID        string          `gorm:"column:donor_id;type:uuid;not null;index" json:"donor_id"`
	GatewayID      types.GatewayID `gorm:"column:gateway_id;type:varchar(64);not null;uniqueIndex:unique_gateway_transaction,priority:1" json:"gateway_id"`
	// GatewayTransactionID is nil until the gateway confirms the payment, so
	// any number of pending donations can coexist under the unique index.
	GatewayTransactionID *string `gorm:"column:gateway_transaction_id;type:varchar(128);uniqueIndex:unique_gateway_transaction,priority:2" json:"gateway_transaction_id"`

	Type   types.DonationType   `gorm:"column:type;type:varchar(16);not null" json:"type"`
	Status types.DonationStatus `gorm:"column:status;type:varchar(32);not null;index" json:"status"`

	AmountCents int64  `gorm:"column:amount_cents;type:bigint;not null" json:"amount_cents"`
	Currency    string `gorm:"column:currency;type:varchar(8);not null" json:"currency"`

	// Donor/form metadata is denormalized at creation time; renewals copy it
	// from the initial donation.
	FirstName string `gorm:"column:first_name;type:varchar(128)" json:"first_name"`
	LastName  string `gorm:"column:last_name;type:varchar(128)" json:"last_name"`
	Email     string `gorm:"column:email;type:varchar(254)" json:"email"`
	FormID    string `gorm:"column:form_id;type:varchar(64);not null" json:"form_id"`
	LevelID   string `gorm:"column:level_id;type:varchar(64)" json:"level_id"`
	Anonymous bool   `gorm:"column:anonymous;not null;default:false" json:"anonymous"`
	Company   string `gorm:"column:company;type:varchar(254)" json:"company"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Donation) TableName() string {
	return "donation"
}

func (d *Donation) HasGatewayTransactionID() bool {
	return d != nil && d.GatewayTransactionID != nil && *d.GatewayTransactionID != ""
}
