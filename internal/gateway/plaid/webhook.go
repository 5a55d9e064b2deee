package plaid

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/golang-jwt/jwt"

	"github.com/fatflowers/pledger/internal/gateway"
)

const verificationHeader = "Plaid-Verification"

type webhookPayload struct {
	WebhookType         string `json:"webhook_type"`
	WebhookCode         string `json:"webhook_code"`
	TransferID          string `json:"transfer_id"`
	RecurringTransferID string `json:"recurring_transfer_id"`
}

var webhookEvents = map[string]gateway.EventType{
	"TRANSFER_SETTLED":    gateway.EventPaymentCreated,
	"RECURRING_ACTIVE":    gateway.EventSubscriptionActive,
	"RECURRING_FAILED":    gateway.EventSubscriptionFailing,
	"RECURRING_CANCELLED": gateway.EventSubscriptionCancelled,
	"RECURRING_COMPLETED": gateway.EventSubscriptionCompleted,
}

// ParseWebhook checks the JWT in the verification header, whose claims pin
// the SHA-256 of the raw body, then translates the payload. Unrecognized
// webhook codes return no events and no error.
func (g *Gateway) ParseWebhook(req *http.Request, body []byte) ([]gateway.Event, error) {
	if err := g.verifyJWT(req, body); err != nil {
		return nil, err
	}

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("malformed webhook payload: %w", err)
	}
	if payload.WebhookType != "TRANSFER" {
		return nil, nil
	}

	eventType, ok := webhookEvents[payload.WebhookCode]
	if !ok {
		g.log.Debugw("ignoring webhook event", "webhook_code", payload.WebhookCode)
		return nil, nil
	}

	objectID := payload.RecurringTransferID
	if eventType == gateway.EventPaymentCreated {
		objectID = payload.TransferID
	}
	return []gateway.Event{{
		Type:     eventType,
		ObjectID: objectID,
		Message:  payload.WebhookCode,
	}}, nil
}

func (g *Gateway) verifyJWT(req *http.Request, body []byte) error {
	if g.cfg.WebhookVerificationKey == "" {
		return &gateway.ValidationError{Field: "webhook_verification_key", Message: "not configured"}
	}
	raw := req.Header.Get(verificationHeader)
	if raw == "" {
		return &gateway.ValidationError{Field: verificationHeader, Message: "missing"}
	}

	key, err := jwt.ParseECPublicKeyFromPEM([]byte(g.cfg.WebhookVerificationKey))
	if err != nil {
		return fmt.Errorf("invalid webhook verification key: %w", err)
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodECDSA); !ok {
			return nil, fmt.Errorf("unexpected signing method %s", t.Method.Alg())
		}
		return key, nil
	})
	if err != nil {
		return &gateway.ValidationError{Field: verificationHeader, Message: err.Error()}
	}
	if !token.Valid {
		return &gateway.ValidationError{Field: verificationHeader, Message: "invalid token"}
	}

	want, _ := claims["request_body_sha256"].(string)
	sum := sha256.Sum256(body)
	if want == "" || want != hex.EncodeToString(sum[:]) {
		return &gateway.ValidationError{Field: verificationHeader, Message: "body digest mismatch"}
	}
	return nil
}
