package square

import (
	"testing"

	"github.com/fatflowers/pledger/internal/gateway"
	"github.com/fatflowers/pledger/pkg/types"
	"github.com/stretchr/testify/require"
)

func TestCadences_CoverEveryBillingPeriod(t *testing.T) {
	for _, period := range []types.BillingPeriod{
		types.BillingPeriodDay,
		types.BillingPeriodWeek,
		types.BillingPeriodMonth,
		types.BillingPeriodQuarter,
		types.BillingPeriodYear,
	} {
		cadence, ok := cadences[period]
		require.True(t, ok, period)
		require.Equal(t, period, cadencePeriods[cadence])
	}
}

func TestSubscriptionStatuses(t *testing.T) {
	require.Equal(t, types.SubscriptionStatusSuspended, subscriptionStatuses["PAUSED"])
	require.Equal(t, types.SubscriptionStatusFailing, subscriptionStatuses["DEACTIVATED"])
	require.Equal(t, types.SubscriptionStatusCancelled, subscriptionStatuses["CANCELED"])
}

func TestToTransactionDetails(t *testing.T) {
	details := toTransactionDetails(&paymentObject{
		ID:             "pay-1",
		SubscriptionID: "sq-sub-1",
		SequenceNumber: 4,
		AmountMoney:    &money{Amount: 1500, Currency: "USD"},
		CreatedAt:      "2026-08-01T10:30:00Z",
	})
	require.Equal(t, "pay-1", details.TransactionID)
	require.Equal(t, "sq-sub-1", details.GatewaySubscriptionID)
	require.Equal(t, 4, details.PayNum)
	require.Equal(t, int64(1500), details.AmountCents)
	require.Equal(t, 2026, details.SubmittedAt.Year())
}

func TestCardFromPaymentMethod_StripsSpaces(t *testing.T) {
	card := cardFromPaymentMethod(gateway.PaymentMethod{
		CardNumber:   "4111 1111 1111 1111",
		CardExpMonth: "12",
		CardExpYear:  "2027",
		CardCVC:      "123",
	})
	require.Equal(t, "4111111111111111", card.Number)
}
