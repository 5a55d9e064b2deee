package authorize

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/fatflowers/pledger/internal/gateway"
)

const signatureHeader = "X-ANET-Signature"

type webhookNotification struct {
	NotificationID string `json:"notificationId"`
	EventType      string `json:"eventType"`
	Payload        struct {
		ID string `json:"id"`
	} `json:"payload"`
}

// webhookEvents maps the provider event vocabulary to canonical events.
// Suspension means the last charge failed and retries are pending, so it
// lands on the failing side of the state machine.
var webhookEvents = map[string]gateway.EventType{
	"net.authorize.payment.authcapture.created":      gateway.EventPaymentCreated,
	"net.authorize.customer.subscription.suspended":  gateway.EventSubscriptionSuspended,
	"net.authorize.customer.subscription.cancelled":  gateway.EventSubscriptionCancelled,
	"net.authorize.customer.subscription.terminated": gateway.EventSubscriptionCancelled,
	"net.authorize.customer.subscription.expired":    gateway.EventSubscriptionExpired,
}

// ParseWebhook checks the HMAC-SHA512 body signature, then translates the
// notification. Unrecognized event types return no events and no error.
func (g *Gateway) ParseWebhook(req *http.Request, body []byte) ([]gateway.Event, error) {
	if err := g.verifySignature(req, body); err != nil {
		return nil, err
	}

	var n webhookNotification
	if err := json.Unmarshal(body, &n); err != nil {
		return nil, fmt.Errorf("malformed webhook payload: %w", err)
	}

	eventType, ok := webhookEvents[n.EventType]
	if !ok {
		g.log.Debugw("ignoring webhook event", "event_type", n.EventType, "notification_id", n.NotificationID)
		return nil, nil
	}
	return []gateway.Event{{
		Type:     eventType,
		ObjectID: n.Payload.ID,
		Message:  n.EventType,
	}}, nil
}

func (g *Gateway) verifySignature(req *http.Request, body []byte) error {
	if g.cfg.SignatureKey == "" {
		return &gateway.ValidationError{Field: "signature_key", Message: "not configured"}
	}

	header := req.Header.Get(signatureHeader)
	if header == "" {
		return &gateway.ValidationError{Field: signatureHeader, Message: "missing"}
	}
	got, err := hex.DecodeString(strings.TrimPrefix(strings.ToLower(header), "sha512="))
	if err != nil {
		return &gateway.ValidationError{Field: signatureHeader, Message: "not hex encoded"}
	}

	mac := hmac.New(sha512.New, []byte(g.cfg.SignatureKey))
	mac.Write(body)
	if !hmac.Equal(got, mac.Sum(nil)) {
		return &gateway.ValidationError{Field: signatureHeader, Message: "signature mismatch"}
	}
	return nil
}
