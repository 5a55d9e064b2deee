package plaid

import (
	"testing"

	"github.com/fatflowers/pledger/internal/gateway"
	"github.com/fatflowers/pledger/pkg/types"
	"github.com/stretchr/testify/require"
)

func TestValidateBankTokens(t *testing.T) {
	err := validateBankTokens(gateway.PaymentMethod{AccountToken: "acct"})
	var ve *gateway.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Equal(t, "routing_token", ve.Field)

	require.NoError(t, validateBankTokens(gateway.PaymentMethod{
		AccountToken: "acct",
		RoutingToken: "route",
	}))
}

func TestRecurringStatuses_FullVocabulary(t *testing.T) {
	for remote, want := range map[string]types.SubscriptionStatus{
		"pending":   types.SubscriptionStatusPending,
		"active":    types.SubscriptionStatusActive,
		"failing":   types.SubscriptionStatusFailing,
		"cancelled": types.SubscriptionStatusCancelled,
		"completed": types.SubscriptionStatusCompleted,
		"expired":   types.SubscriptionStatusExpired,
	} {
		require.Equal(t, want, recurringStatuses[remote], remote)
	}
}

func TestIntervalUnits_RoundTrip(t *testing.T) {
	for unit, remote := range intervalUnits {
		require.Equal(t, unit, intervalUnitsReverse[remote])
	}
}

func TestToTransactionDetails(t *testing.T) {
	details := toTransactionDetails(&transferObject{
		TransferID:          "tr-5",
		RecurringTransferID: "rec-2",
		Occurrence:          2,
		Amount:              "20.00",
		Created:             "2026-07-15T08:00:00Z",
	})
	require.Equal(t, "tr-5", details.TransactionID)
	require.Equal(t, "rec-2", details.GatewaySubscriptionID)
	require.Equal(t, 2, details.PayNum)
	require.Equal(t, int64(2000), details.AmountCents)
	require.Equal(t, 2026, details.SubmittedAt.Year())
}
