package subscription

import (
	"github.com/fatflowers/pledger/pkg/types"
)

// transitions is the lifecycle table. Cancelled, completed and expired are
// terminal. Suspended mirrors failing on the way out: both mean the gateway
// is retrying and the subscription either recovers or dies.
var transitions = map[types.SubscriptionStatus][]types.SubscriptionStatus{
	types.SubscriptionStatusPending: {
		types.SubscriptionStatusActive,
	},
	types.SubscriptionStatusActive: {
		types.SubscriptionStatusFailing,
		types.SubscriptionStatusSuspended,
		types.SubscriptionStatusCancelled,
		types.SubscriptionStatusCompleted,
		types.SubscriptionStatusExpired,
	},
	types.SubscriptionStatusFailing: {
		types.SubscriptionStatusActive,
		types.SubscriptionStatusCancelled,
		types.SubscriptionStatusExpired,
	},
	types.SubscriptionStatusSuspended: {
		types.SubscriptionStatusActive,
		types.SubscriptionStatusCancelled,
		types.SubscriptionStatusExpired,
	},
}

// CanTransition reports whether from -> to is a legal lifecycle move.
// Re-applying the current status is always allowed and treated as a no-op
// by SetStatus.
func CanTransition(from, to types.SubscriptionStatus) bool {
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
