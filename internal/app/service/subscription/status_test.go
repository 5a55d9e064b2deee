package subscription

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fatflowers/pledger/pkg/types"
)

func TestStatusNote(t *testing.T) {
	require.Equal(t,
		"Subscription status changed from pending to active.",
		statusNote(types.SubscriptionStatusPending, types.SubscriptionStatusActive, "", ""))

	require.Equal(t,
		"Subscription status changed from pending to active. Transaction ID: t-1.",
		statusNote(types.SubscriptionStatusPending, types.SubscriptionStatusActive, "t-1", ""))

	require.Equal(t,
		"Subscription suspended by the gateway. Transaction ID: t-2.",
		statusNote(types.SubscriptionStatusActive, types.SubscriptionStatusSuspended, "t-2", "Subscription suspended by the gateway."))

	require.Equal(t,
		"Subscription cancelled by the donor.",
		statusNote(types.SubscriptionStatusActive, types.SubscriptionStatusCancelled, "", "Subscription cancelled by the donor."))
}
