package types

// SubscriptionStatus is the canonical lifecycle status of a recurring
// donation subscription. Transition rules live in the subscription service.
type SubscriptionStatus string

const (
	SubscriptionStatusPending   SubscriptionStatus = "pending"
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusFailing   SubscriptionStatus = "failing"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
	SubscriptionStatusCompleted SubscriptionStatus = "completed"
	SubscriptionStatusExpired   SubscriptionStatus = "expired"
	SubscriptionStatusSuspended SubscriptionStatus = "suspended"
)

// Terminal reports whether no further transition is legal out of s.
func (s SubscriptionStatus) Terminal() bool {
	switch s {
	case SubscriptionStatusCancelled, SubscriptionStatusCompleted, SubscriptionStatusExpired:
		return true
	}
	return false
}

// BillingPeriod is the canonical billing period vocabulary. Gateways that
// speak a length+unit pair translate through the gateway interval helpers.
type BillingPeriod string

const (
	BillingPeriodDay     BillingPeriod = "day"
	BillingPeriodWeek    BillingPeriod = "week"
	BillingPeriodMonth   BillingPeriod = "month"
	BillingPeriodQuarter BillingPeriod = "quarter"
	BillingPeriodYear    BillingPeriod = "year"
)

func (p BillingPeriod) Valid() bool {
	switch p {
	case BillingPeriodDay, BillingPeriodWeek, BillingPeriodMonth, BillingPeriodQuarter, BillingPeriodYear:
		return true
	}
	return false
}
