package authorize

import (
	"context"
	"testing"

	"github.com/fatflowers/pledger/internal/gateway"
	"github.com/fatflowers/pledger/internal/models"
	"github.com/fatflowers/pledger/pkg/config"
	"github.com/fatflowers/pledger/pkg/types"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestTruncate(t *testing.T) {
	require.Equal(t, "abc", truncate("abc", 5))
	require.Equal(t, "abcde", truncate("abcdefgh", 5))
	// rune-safe: multibyte characters are not split
	require.Equal(t, "héll", truncate("héllo", 4))
}

func TestCardExpiration_PadsSingleDigitMonth(t *testing.T) {
	require.Equal(t, "2027-03", cardExpiration(gateway.PaymentMethod{CardExpMonth: "3", CardExpYear: "2027"}))
	require.Equal(t, "2027-11", cardExpiration(gateway.PaymentMethod{CardExpMonth: "11", CardExpYear: "2027"}))
}

func TestValidateCard_MissingFields(t *testing.T) {
	pm := gateway.PaymentMethod{
		CardNumber:   "4111111111111111",
		CardExpMonth: "12",
		CardExpYear:  "2027",
	}
	err := validateCard(pm)
	var ve *gateway.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Equal(t, "card_cvc", ve.Field)

	pm.CardCVC = "123"
	require.NoError(t, validateCard(pm))
}

func TestArbStatuses_SuspendedMapsToFailing(t *testing.T) {
	require.Equal(t, types.SubscriptionStatusFailing, arbStatuses["suspended"])
	require.Equal(t, types.SubscriptionStatusCancelled, arbStatuses["terminated"])
}

func TestToTransactionDetails_SettleAmountFallsBackToAuthAmount(t *testing.T) {
	g := New(zap.NewNop().Sugar(), config.AuthorizeConfig{}, true)

	details := g.toTransactionDetails(&transactionDetail{
		TransID:       "t-1",
		AuthAmount:    "25.00",
		SubmitTimeUTC: "2026-08-01T10:30:00Z",
		Subscription:  &txnSubscriptionRef{ID: "arb-9", PayNum: 3},
	})
	require.Equal(t, int64(2500), details.AmountCents)
	require.Equal(t, "arb-9", details.GatewaySubscriptionID)
	require.Equal(t, 3, details.PayNum)
	require.Equal(t, 2026, details.SubmittedAt.Year())

	details = g.toTransactionDetails(&transactionDetail{
		TransID:      "t-2",
		SettleAmount: "10.50",
		AuthAmount:   "25.00",
	})
	require.Equal(t, int64(1050), details.AmountCents)
	require.Zero(t, details.PayNum)
}

func TestRemoteCallsRequireGatewaySubscriptionID(t *testing.T) {
	g := New(zap.NewNop().Sugar(), config.AuthorizeConfig{APILoginID: "login", TransactionKey: "key"}, true)
	sub := &models.Subscription{
		GatewayID:   types.GatewayAuthorize,
		AmountCents: 1000,
		Status:      types.SubscriptionStatusActive,
	}
	pm := gateway.PaymentMethod{
		CardNumber:   "4111111111111111",
		CardExpMonth: "12",
		CardExpYear:  "2027",
		CardCVC:      "123",
	}

	var ve *gateway.ValidationError
	_, err := g.SynchronizeSubscription(context.Background(), sub)
	require.ErrorAs(t, err, &ve)
	require.ErrorAs(t, g.UpdateSubscriptionAmount(context.Background(), sub, 2000), &ve)
	require.ErrorAs(t, g.UpdatePaymentMethod(context.Background(), &models.Donor{}, sub, pm), &ve)
}

func TestCapabilities(t *testing.T) {
	cfg := config.AuthorizeConfig{APILoginID: "login", TransactionKey: "key"}
	g := New(zap.NewNop().Sugar(), cfg, true)

	gsid := "arb-1"
	sub := &models.Subscription{
		GatewayID:             types.GatewayAuthorize,
		GatewaySubscriptionID: &gsid,
		Status:                types.SubscriptionStatusActive,
	}
	require.True(t, g.CanCancel(sub))
	require.True(t, g.CanUpdateAmount(sub))
	require.True(t, g.CanUpdatePaymentMethod(sub))
	require.True(t, g.CanSync(sub))

	sub.Status = types.SubscriptionStatusFailing
	require.False(t, g.CanCancel(sub))
	require.False(t, g.CanUpdateAmount(sub))
	require.True(t, g.CanUpdatePaymentMethod(sub))
	require.True(t, g.CanSync(sub))

	sub.Status = types.SubscriptionStatusCancelled
	require.False(t, g.CanUpdatePaymentMethod(sub))
	require.True(t, g.CanSync(sub))

	unconfigured := New(zap.NewNop().Sugar(), config.AuthorizeConfig{}, true)
	sub.Status = types.SubscriptionStatusActive
	require.False(t, unconfigured.CanCancel(sub))
	require.False(t, unconfigured.CanSync(sub))
}
