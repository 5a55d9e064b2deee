package subscription

import (
	"testing"

	"github.com/fatflowers/pledger/pkg/types"
	"github.com/stretchr/testify/require"
)

func TestCanTransition_PendingOnlyActivates(t *testing.T) {
	require.True(t, CanTransition(types.SubscriptionStatusPending, types.SubscriptionStatusActive))
	require.False(t, CanTransition(types.SubscriptionStatusPending, types.SubscriptionStatusFailing))
	require.False(t, CanTransition(types.SubscriptionStatusPending, types.SubscriptionStatusCancelled))
	require.False(t, CanTransition(types.SubscriptionStatusPending, types.SubscriptionStatusCompleted))
}

func TestCanTransition_ActiveFansOut(t *testing.T) {
	for _, to := range []types.SubscriptionStatus{
		types.SubscriptionStatusFailing,
		types.SubscriptionStatusSuspended,
		types.SubscriptionStatusCancelled,
		types.SubscriptionStatusCompleted,
		types.SubscriptionStatusExpired,
	} {
		require.True(t, CanTransition(types.SubscriptionStatusActive, to), to)
	}
	require.False(t, CanTransition(types.SubscriptionStatusActive, types.SubscriptionStatusPending))
}

func TestCanTransition_FailingRecoversOrDies(t *testing.T) {
	require.True(t, CanTransition(types.SubscriptionStatusFailing, types.SubscriptionStatusActive))
	require.True(t, CanTransition(types.SubscriptionStatusFailing, types.SubscriptionStatusCancelled))
	require.True(t, CanTransition(types.SubscriptionStatusFailing, types.SubscriptionStatusExpired))
	require.False(t, CanTransition(types.SubscriptionStatusFailing, types.SubscriptionStatusCompleted))
	require.False(t, CanTransition(types.SubscriptionStatusFailing, types.SubscriptionStatusSuspended))
}

func TestCanTransition_SuspendedMirrorsFailing(t *testing.T) {
	require.True(t, CanTransition(types.SubscriptionStatusSuspended, types.SubscriptionStatusActive))
	require.True(t, CanTransition(types.SubscriptionStatusSuspended, types.SubscriptionStatusCancelled))
	require.True(t, CanTransition(types.SubscriptionStatusSuspended, types.SubscriptionStatusExpired))
	require.False(t, CanTransition(types.SubscriptionStatusSuspended, types.SubscriptionStatusFailing))
}

func TestCanTransition_TerminalStatesAreFinal(t *testing.T) {
	for _, from := range []types.SubscriptionStatus{
		types.SubscriptionStatusCancelled,
		types.SubscriptionStatusCompleted,
		types.SubscriptionStatusExpired,
	} {
		require.True(t, from.Terminal())
		for _, to := range []types.SubscriptionStatus{
			types.SubscriptionStatusPending,
			types.SubscriptionStatusActive,
			types.SubscriptionStatusFailing,
		} {
			require.False(t, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestCanTransition_SameStatusIsNoOp(t *testing.T) {
	for _, s := range []types.SubscriptionStatus{
		types.SubscriptionStatusPending,
		types.SubscriptionStatusActive,
		types.SubscriptionStatusCancelled,
	} {
		require.True(t, CanTransition(s, s), s)
	}
}
