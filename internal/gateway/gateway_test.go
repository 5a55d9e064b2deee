package gateway

import (
	"testing"

	models "github.com/fatflowers/pledger/internal/models"
	"github.com/fatflowers/pledger/pkg/types"
	"github.com/stretchr/testify/require"
)

func subWithStatus(status types.SubscriptionStatus) *models.Subscription {
	gsid := "gw-sub-1"
	return &models.Subscription{
		ID:                    "sub-1",
		GatewayID:             types.GatewayAuthorize,
		GatewaySubscriptionID: &gsid,
		Status:                status,
	}
}

func TestCanActOn_StatusSet(t *testing.T) {
	sub := subWithStatus(types.SubscriptionStatusActive)
	require.True(t, CanActOn(types.GatewayAuthorize, true, sub, types.SubscriptionStatusActive))
	require.False(t, CanActOn(types.GatewayAuthorize, true, sub, types.SubscriptionStatusFailing))
	require.True(t, CanActOn(types.GatewayAuthorize, true, sub,
		types.SubscriptionStatusActive, types.SubscriptionStatusFailing))
}

func TestCanActOn_AnyStatusWhenSetEmpty(t *testing.T) {
	sub := subWithStatus(types.SubscriptionStatusCancelled)
	require.True(t, CanActOn(types.GatewayAuthorize, true, sub))
}

func TestCanActOn_RequiresConfiguredCredentials(t *testing.T) {
	sub := subWithStatus(types.SubscriptionStatusActive)
	require.False(t, CanActOn(types.GatewayAuthorize, false, sub, types.SubscriptionStatusActive))
}

func TestCanActOn_RequiresGatewaySubscriptionID(t *testing.T) {
	sub := subWithStatus(types.SubscriptionStatusActive)
	sub.GatewaySubscriptionID = nil
	require.False(t, CanActOn(types.GatewayAuthorize, true, sub, types.SubscriptionStatusActive))
}

func TestCanActOn_RejectsForeignGateway(t *testing.T) {
	sub := subWithStatus(types.SubscriptionStatusActive)
	require.False(t, CanActOn(types.GatewaySquare, true, sub, types.SubscriptionStatusActive))
}

func TestCanActOn_NilSubscription(t *testing.T) {
	require.False(t, CanActOn(types.GatewayAuthorize, true, nil))
}
