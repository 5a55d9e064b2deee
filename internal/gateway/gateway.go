package gateway

import (
	"context"
	"net/http"
	"time"

	models "github.com/fatflowers/pledger/internal/models"
	"github.com/fatflowers/pledger/pkg/types"
)

// PaymentMethod carries the payment instrument submitted with a purchase or
// a payment-method update. Card fields are used by the card gateways; the
// token fields by the ACH gateway. Adapters validate the fields they need
// locally before any remote call.
type PaymentMethod struct {
	CardNumber   string `json:"card_number"`
	CardExpMonth string `json:"card_exp_month"`
	CardExpYear  string `json:"card_exp_year"`
	CardCVC      string `json:"card_cvc"`
	CardZip      string `json:"card_zip"`

	AccountToken string `json:"account_token"`
	RoutingToken string `json:"routing_token"`
}

// CreateResult is the outcome of a remote subscription-creation call.
type CreateResult struct {
	TransactionID         string
	GatewaySubscriptionID string
	// Offsite reports whether donation completion must wait for an async
	// webhook confirmation. Adapters clear it when the remote create resolves
	// with an immediately-active status.
	Offsite bool
}

// SubscriptionSnapshot is the read-only remote view returned by
// SynchronizeSubscription, translated into the canonical vocabulary.
type SubscriptionSnapshot struct {
	Status        types.SubscriptionStatus
	CreatedAt     time.Time
	BillingPeriod types.BillingPeriod
	Frequency     int

	// Masked payment-instrument details when the gateway exposes them.
	CardNumberMasked string
	CardType         string
	CardExpiration   string
}

// TransactionDetails is the remote detail for a single gateway transaction,
// used by the webhook donation flow to resolve the parent subscription.
type TransactionDetails struct {
	TransactionID         string
	GatewaySubscriptionID string
	// PayNum is the 1-based ordinal of this payment within its subscription.
	PayNum      int
	AmountCents int64
	SubmittedAt time.Time
}

// RemoteTransaction is a settlement record scanned during reconciliation.
// It is consumed and discarded per sync run, never persisted.
type RemoteTransaction struct {
	TransactionID         string
	GatewaySubscriptionID string
	PayNum                int
	AmountCents           int64
	SettledAt             time.Time
	// Status is the gateway-native settlement status string.
	Status string
	// SettledSuccessfully is the adapter's normalization of Status.
	SettledSuccessfully bool
}

// EventType is the canonical webhook event vocabulary shared by all gateways.
type EventType string

const (
	EventPaymentCreated        EventType = "payment_created"
	EventSubscriptionActive    EventType = "subscription_active"
	EventSubscriptionCancelled EventType = "subscription_cancelled"
	EventSubscriptionSuspended EventType = "subscription_suspended"
	EventSubscriptionCompleted EventType = "subscription_completed"
	EventSubscriptionExpired   EventType = "subscription_expired"
	EventSubscriptionFailing   EventType = "subscription_failing"
)

// Event is a gateway-native notification translated to canonical form.
// ObjectID holds the gateway transaction id for payment events and the
// gateway subscription id for status events.
type Event struct {
	Type     EventType
	ObjectID string
	Message  string
}

// SubscriptionGateway is the capability contract every payment provider
// adapter implements. Expected failure modes (declined payment, invalid
// credentials, malformed response) are returned as *GatewayError or
// *ValidationError; adapters never panic past their own boundary.
type SubscriptionGateway interface {
	ID() types.GatewayID

	// CreateSubscription performs exactly one remote subscription-creation
	// call for the pending initial donation.
	CreateSubscription(ctx context.Context, donation *models.Donation, sub *models.Subscription, pm PaymentMethod) (*CreateResult, error)

	// CancelSubscription is a no-op success when the subscription has no
	// gateway subscription id or credentials are absent.
	CancelSubscription(ctx context.Context, sub *models.Subscription) error

	// UpdateSubscriptionAmount rejects a zero amount or one equal to the
	// current recurring amount before any remote call.
	UpdateSubscriptionAmount(ctx context.Context, sub *models.Subscription, newAmountCents int64) error

	// UpdatePaymentMethod validates required instrument fields locally, then
	// issues one remote update call.
	UpdatePaymentMethod(ctx context.Context, donor *models.Donor, sub *models.Subscription, pm PaymentMethod) error

	// SynchronizeSubscription is a read-only remote lookup.
	SynchronizeSubscription(ctx context.Context, sub *models.Subscription) (*SubscriptionSnapshot, error)

	// GetTransactionDetails fetches the remote detail for one transaction.
	GetTransactionDetails(ctx context.Context, gatewayTransactionID string) (*TransactionDetails, error)

	// FetchRemoteTransactions lists this subscription's settlement records in
	// [start, end), keyed by remote transaction id. Reconciliation only.
	FetchRemoteTransactions(ctx context.Context, sub *models.Subscription, start, end time.Time) (map[string]RemoteTransaction, error)

	// ParseWebhook verifies the delivery signature and translates the payload
	// into canonical events.
	ParseWebhook(req *http.Request, body []byte) ([]Event, error)

	CanCancel(sub *models.Subscription) bool
	CanUpdateAmount(sub *models.Subscription) bool
	CanUpdatePaymentMethod(sub *models.Subscription) bool
	CanSync(sub *models.Subscription) bool
}

// CanActOn is the shared capability predicate: the adapter owns the
// subscription, a gateway subscription id is present, credentials are
// configured, and the status is in the allowed set (empty set = any status).
func CanActOn(id types.GatewayID, configured bool, sub *models.Subscription, statuses ...types.SubscriptionStatus) bool {
	if sub == nil || !configured {
		return false
	}
	if sub.GatewayID != id || !sub.HasGatewaySubscriptionID() {
		return false
	}
	if len(statuses) == 0 {
		return true
	}
	for _, s := range statuses {
		if sub.Status == s {
			return true
		}
	}
	return false
}
