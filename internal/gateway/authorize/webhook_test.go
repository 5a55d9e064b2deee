package authorize

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"net/http/httptest"
	"testing"

	"github.com/fatflowers/pledger/internal/gateway"
	"github.com/fatflowers/pledger/pkg/config"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func signedGateway(t *testing.T, key string) *Gateway {
	t.Helper()
	return New(zap.NewNop().Sugar(), config.AuthorizeConfig{
		APILoginID:     "login",
		TransactionKey: "txkey",
		SignatureKey:   key,
	}, true)
}

func sign(key string, body []byte) string {
	mac := hmac.New(sha512.New, []byte(key))
	mac.Write(body)
	return "sha512=" + hex.EncodeToString(mac.Sum(nil))
}

func TestParseWebhook_PaymentCreated(t *testing.T) {
	g := signedGateway(t, "secret")
	body := []byte(`{"notificationId":"n-1","eventType":"net.authorize.payment.authcapture.created","payload":{"id":"txn-77"}}`)

	req := httptest.NewRequest("POST", "/api/v1/webhook/authorize", nil)
	req.Header.Set(signatureHeader, sign("secret", body))

	events, err := g.ParseWebhook(req, body)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, gateway.EventPaymentCreated, events[0].Type)
	require.Equal(t, "txn-77", events[0].ObjectID)
}

func TestParseWebhook_SuspendedAndTerminated(t *testing.T) {
	g := signedGateway(t, "secret")

	body := []byte(`{"eventType":"net.authorize.customer.subscription.suspended","payload":{"id":"arb-1"}}`)
	req := httptest.NewRequest("POST", "/", nil)
	req.Header.Set(signatureHeader, sign("secret", body))
	events, err := g.ParseWebhook(req, body)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, gateway.EventSubscriptionSuspended, events[0].Type)

	body = []byte(`{"eventType":"net.authorize.customer.subscription.terminated","payload":{"id":"arb-1"}}`)
	req = httptest.NewRequest("POST", "/", nil)
	req.Header.Set(signatureHeader, sign("secret", body))
	events, err = g.ParseWebhook(req, body)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, gateway.EventSubscriptionCancelled, events[0].Type)
}

func TestParseWebhook_UnknownEventIgnored(t *testing.T) {
	g := signedGateway(t, "secret")
	body := []byte(`{"eventType":"net.authorize.customer.created","payload":{"id":"cust-1"}}`)

	req := httptest.NewRequest("POST", "/", nil)
	req.Header.Set(signatureHeader, sign("secret", body))

	events, err := g.ParseWebhook(req, body)
	require.NoError(t, err)
	require.Empty(t, events)
}

func TestParseWebhook_BadSignature(t *testing.T) {
	g := signedGateway(t, "secret")
	body := []byte(`{"eventType":"net.authorize.payment.authcapture.created","payload":{"id":"txn-77"}}`)

	req := httptest.NewRequest("POST", "/", nil)
	req.Header.Set(signatureHeader, sign("wrong-key", body))

	_, err := g.ParseWebhook(req, body)
	var ve *gateway.ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestParseWebhook_MissingSignature(t *testing.T) {
	g := signedGateway(t, "secret")
	req := httptest.NewRequest("POST", "/", nil)
	_, err := g.ParseWebhook(req, []byte(`{}`))
	require.Error(t, err)
}

func TestVerifySignature_UppercaseHeaderAccepted(t *testing.T) {
	g := signedGateway(t, "secret")
	body := []byte(`{"eventType":"net.authorize.payment.authcapture.created","payload":{"id":"t"}}`)

	mac := hmac.New(sha512.New, []byte("secret"))
	mac.Write(body)
	req := httptest.NewRequest("POST", "/", nil)
	req.Header.Set(signatureHeader, "SHA512="+hex.EncodeToString(mac.Sum(nil)))

	require.NoError(t, g.verifySignature(req, body))
}
