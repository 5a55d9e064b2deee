package events

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/fatflowers/pledger/internal/gateway"
	"github.com/fatflowers/pledger/pkg/types"
	"github.com/stretchr/testify/require"
)

func TestStatusEvents_CoverEveryStatusEvent(t *testing.T) {
	require.Equal(t, types.SubscriptionStatusActive, statusEvents[gateway.EventSubscriptionActive])
	require.Equal(t, types.SubscriptionStatusCancelled, statusEvents[gateway.EventSubscriptionCancelled])
	require.Equal(t, types.SubscriptionStatusSuspended, statusEvents[gateway.EventSubscriptionSuspended])
	require.Equal(t, types.SubscriptionStatusCompleted, statusEvents[gateway.EventSubscriptionCompleted])
	require.Equal(t, types.SubscriptionStatusExpired, statusEvents[gateway.EventSubscriptionExpired])
	require.Equal(t, types.SubscriptionStatusFailing, statusEvents[gateway.EventSubscriptionFailing])

	// payment events go through the donation flow, not the state machine
	_, ok := statusEvents[gateway.EventPaymentCreated]
	require.False(t, ok)
}

func TestResultJSON(t *testing.T) {
	event := &gateway.Event{Type: gateway.EventPaymentCreated, ObjectID: "txn-1"}
	j := resultJSON(event, errors.New("boom"))
	require.NotNil(t, j)

	var resMap map[string]any
	require.NoError(t, json.Unmarshal(*j, &resMap))
	require.Equal(t, "boom", resMap["error"])
	require.Contains(t, resMap, "event")
}
