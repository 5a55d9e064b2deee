package square

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/fatflowers/pledger/internal/gateway"
)

const signatureHeader = "x-square-hmacsha256-signature"

type webhookEvent struct {
	EventID string `json:"event_id"`
	Type    string `json:"type"`
	Data    struct {
		Object struct {
			Payment      *paymentObject      `json:"payment"`
			Invoice      *invoiceObject      `json:"invoice"`
			Subscription *subscriptionObject `json:"subscription"`
		} `json:"object"`
	} `json:"data"`
}

type invoiceObject struct {
	ID             string `json:"id"`
	SubscriptionID string `json:"subscription_id"`
	PaymentID      string `json:"payment_id"`
	Status         string `json:"status"`
}

// ParseWebhook verifies the base64 HMAC-SHA256 signature computed over the
// notification URL concatenated with the raw body, then translates the
// event. Unrecognized event types return no events and no error.
func (g *Gateway) ParseWebhook(req *http.Request, body []byte) ([]gateway.Event, error) {
	if err := g.verifySignature(req, body); err != nil {
		return nil, err
	}

	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("malformed webhook payload: %w", err)
	}

	obj := event.Data.Object
	switch event.Type {
	case "payment.updated", "payment.created":
		if obj.Payment == nil || !strings.EqualFold(obj.Payment.Status, "COMPLETED") {
			return nil, nil
		}
		return []gateway.Event{{
			Type:     gateway.EventPaymentCreated,
			ObjectID: obj.Payment.ID,
			Message:  event.Type,
		}}, nil

	case "invoice.payment_made":
		if obj.Invoice == nil || obj.Invoice.PaymentID == "" {
			return nil, nil
		}
		return []gateway.Event{{
			Type:     gateway.EventPaymentCreated,
			ObjectID: obj.Invoice.PaymentID,
			Message:  event.Type,
		}}, nil

	case "subscription.updated":
		if obj.Subscription == nil {
			return nil, nil
		}
		return subscriptionStatusEvents(obj.Subscription), nil
	}

	g.log.Debugw("ignoring webhook event", "event_type", event.Type, "event_id", event.EventID)
	return nil, nil
}

func subscriptionStatusEvents(sub *subscriptionObject) []gateway.Event {
	var eventType gateway.EventType
	switch strings.ToUpper(sub.Status) {
	case "ACTIVE":
		eventType = gateway.EventSubscriptionActive
	case "CANCELED":
		eventType = gateway.EventSubscriptionCancelled
	case "PAUSED":
		eventType = gateway.EventSubscriptionSuspended
	case "DEACTIVATED":
		eventType = gateway.EventSubscriptionFailing
	default:
		return nil
	}
	return []gateway.Event{{
		Type:     eventType,
		ObjectID: sub.ID,
		Message:  "subscription.updated " + sub.Status,
	}}
}

func (g *Gateway) verifySignature(req *http.Request, body []byte) error {
	if g.cfg.WebhookSignatureKey == "" {
		return &gateway.ValidationError{Field: "webhook_signature_key", Message: "not configured"}
	}
	header := req.Header.Get(signatureHeader)
	if header == "" {
		return &gateway.ValidationError{Field: signatureHeader, Message: "missing"}
	}
	got, err := base64.StdEncoding.DecodeString(header)
	if err != nil {
		return &gateway.ValidationError{Field: signatureHeader, Message: "not base64 encoded"}
	}

	// The provider signs the delivery URL plus the raw body.
	mac := hmac.New(sha256.New, []byte(g.cfg.WebhookSignatureKey))
	mac.Write([]byte(notificationURL(req)))
	mac.Write(body)
	if !hmac.Equal(got, mac.Sum(nil)) {
		return &gateway.ValidationError{Field: signatureHeader, Message: "signature mismatch"}
	}
	return nil
}

func notificationURL(req *http.Request) string {
	scheme := "https"
	if req.TLS == nil && req.Header.Get("X-Forwarded-Proto") == "" {
		scheme = "http"
	}
	if proto := req.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + req.Host + req.URL.RequestURI()
}
