package models

import (
	"time"

	"github.com/fatflowers/pledger/pkg/types"
	"gorm.io/datatypes"
)

// Subscription is the canonical recurring-donation record. GatewaySubscriptionID
// is the provider-assigned profile id; it is nil until the first successful
// remote create and is never reassigned afterwards.
type Subscription struct {
	ID        string          `gorm:"column:id;type:uuid;primary_key" json:"id"`
	DonorID   string          `gorm:"column:donor_id;type:uuid;not null;index" json:"donor_id"`
	GatewayID types.GatewayID `gorm:"column:gateway_id;type:varchar(64);not null;uniqueIndex:unique_gateway_subscription,priority:1" json:"gateway_id"`
	// GatewaySubscriptionID is set at most once, via AttachGatewaySubscriptionID.
	GatewaySubscriptionID *string `gorm:"column:gateway_subscription_id;type:varchar(128);uniqueIndex:unique_gateway_subscription,priority:2" json:"gateway_subscription_id"`

	// AmountCents is the recurring amount in the smallest currency unit.
	AmountCents int64               `gorm:"column:amount_cents;type:bigint;not null" json:"amount_cents"`
	Currency    string              `gorm:"column:currency;type:varchar(8);not null" json:"currency"`
	Period      types.BillingPeriod `gorm:"column:period;type:varchar(16);not null" json:"period"`
	Frequency   int                 `gorm:"column:frequency;type:int;not null;default:1" json:"frequency"`
	// BillTimes is the total number of payments; 0 means run indefinitely.
	BillTimes int `gorm:"column:bill_times;type:int;not null;default:0" json:"bill_times"`

	Status types.SubscriptionStatus `gorm:"column:status;type:varchar(32);not null;index" json:"status"`

	FormID    string         `gorm:"column:form_id;type:varchar(64);not null" json:"form_id"`
	LevelID   string         `gorm:"column:level_id;type:varchar(64)" json:"level_id"`
	Extra     datatypes.JSON `gorm:"column:extra;type:jsonb;default:'{}'" json:"extra"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (Subscription) TableName() string {
	return "subscription"
}

// HasGatewaySubscriptionID reports whether the provider profile id is set.
func (s *Subscription) HasGatewaySubscriptionID() bool {
	return s != nil && s.GatewaySubscriptionID != nil && *s.GatewaySubscriptionID != ""
}
