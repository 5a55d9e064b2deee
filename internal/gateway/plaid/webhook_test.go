package plaid

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fatflowers/pledger/internal/gateway"
	"github.com/fatflowers/pledger/pkg/config"
)

func newVerificationKey(t *testing.T) (*ecdsa.PrivateKey, string) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	pemKey := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
	return key, string(pemKey)
}

func signBody(t *testing.T, key *ecdsa.PrivateKey, body []byte) string {
	t.Helper()
	sum := sha256.Sum256(body)
	token := jwt.NewWithClaims(jwt.SigningMethodES256, jwt.MapClaims{
		"request_body_sha256": hex.EncodeToString(sum[:]),
	})
	raw, err := token.SignedString(key)
	require.NoError(t, err)
	return raw
}

func verifiedGateway(t *testing.T, pemKey string) *Gateway {
	t.Helper()
	return New(zap.NewNop().Sugar(), config.PlaidConfig{
		ClientID:               "client",
		Secret:                 "secret",
		WebhookVerificationKey: pemKey,
	}, true)
}

func TestParseWebhook_TransferSettled(t *testing.T) {
	key, pemKey := newVerificationKey(t)
	g := verifiedGateway(t, pemKey)

	body := []byte(`{"webhook_type":"TRANSFER","webhook_code":"TRANSFER_SETTLED","transfer_id":"tr-1","recurring_transfer_id":"rec-1"}`)
	req := httptest.NewRequest("POST", "/api/v1/webhook/plaid", nil)
	req.Header.Set(verificationHeader, signBody(t, key, body))

	events, err := g.ParseWebhook(req, body)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, gateway.EventPaymentCreated, events[0].Type)
	require.Equal(t, "tr-1", events[0].ObjectID)
}

func TestParseWebhook_RecurringStatusCarriesRecurringID(t *testing.T) {
	key, pemKey := newVerificationKey(t)
	g := verifiedGateway(t, pemKey)

	body := []byte(`{"webhook_type":"TRANSFER","webhook_code":"RECURRING_CANCELLED","transfer_id":"tr-1","recurring_transfer_id":"rec-1"}`)
	req := httptest.NewRequest("POST", "/", nil)
	req.Header.Set(verificationHeader, signBody(t, key, body))

	events, err := g.ParseWebhook(req, body)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, gateway.EventSubscriptionCancelled, events[0].Type)
	require.Equal(t, "rec-1", events[0].ObjectID)
}

func TestParseWebhook_NonTransferTypeIgnored(t *testing.T) {
	key, pemKey := newVerificationKey(t)
	g := verifiedGateway(t, pemKey)

	body := []byte(`{"webhook_type":"ITEM","webhook_code":"ERROR"}`)
	req := httptest.NewRequest("POST", "/", nil)
	req.Header.Set(verificationHeader, signBody(t, key, body))

	events, err := g.ParseWebhook(req, body)
	require.NoError(t, err)
	require.Empty(t, events)
}

func TestParseWebhook_BodyDigestMismatch(t *testing.T) {
	key, pemKey := newVerificationKey(t)
	g := verifiedGateway(t, pemKey)

	body := []byte(`{"webhook_type":"TRANSFER","webhook_code":"TRANSFER_SETTLED","transfer_id":"tr-1"}`)
	req := httptest.NewRequest("POST", "/", nil)
	req.Header.Set(verificationHeader, signBody(t, key, []byte(`tampered`)))

	_, err := g.ParseWebhook(req, body)
	var ve *gateway.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Contains(t, ve.Message, "digest")
}

func TestParseWebhook_WrongSigningKey(t *testing.T) {
	_, pemKey := newVerificationKey(t)
	otherKey, _ := newVerificationKey(t)
	g := verifiedGateway(t, pemKey)

	body := []byte(`{"webhook_type":"TRANSFER","webhook_code":"TRANSFER_SETTLED","transfer_id":"tr-1"}`)
	req := httptest.NewRequest("POST", "/", nil)
	req.Header.Set(verificationHeader, signBody(t, otherKey, body))

	_, err := g.ParseWebhook(req, body)
	require.Error(t, err)
}

func TestParseWebhook_MissingHeader(t *testing.T) {
	_, pemKey := newVerificationKey(t)
	g := verifiedGateway(t, pemKey)

	req := httptest.NewRequest("POST", "/", nil)
	_, err := g.ParseWebhook(req, []byte(`{}`))
	require.Error(t, err)
}
