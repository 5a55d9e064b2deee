package square

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fatflowers/pledger/internal/gateway"
	models "github.com/fatflowers/pledger/internal/models"
	"github.com/fatflowers/pledger/pkg/config"
	"github.com/fatflowers/pledger/pkg/types"
)

// Gateway is the card-present adapter. Subscriptions are charged against a
// card captured at the point of sale, so creation resolves synchronously
// and webhooks mostly carry renewals and status flips.
type Gateway struct {
	log    *zap.SugaredLogger
	cfg    config.SquareConfig
	client *Client
}

func New(log *zap.SugaredLogger, cfg config.SquareConfig, sandbox bool) *Gateway {
	return &Gateway{
		log:    log.Named("square"),
		cfg:    cfg,
		client: NewClient(cfg.AccessToken, sandbox),
	}
}

func (g *Gateway) ID() types.GatewayID {
	return types.GatewaySquare
}

var cadences = map[types.BillingPeriod]string{
	types.BillingPeriodDay:     "DAILY",
	types.BillingPeriodWeek:    "WEEKLY",
	types.BillingPeriodMonth:   "MONTHLY",
	types.BillingPeriodQuarter: "QUARTERLY",
	types.BillingPeriodYear:    "ANNUAL",
}

var cadencePeriods = func() map[string]types.BillingPeriod {
	m := make(map[string]types.BillingPeriod, len(cadences))
	for period, cadence := range cadences {
		m[cadence] = period
	}
	return m
}()

func validateCard(pm gateway.PaymentMethod) error {
	switch {
	case pm.CardNumber == "":
		return &gateway.ValidationError{Field: "card_number", Message: "required"}
	case pm.CardExpMonth == "":
		return &gateway.ValidationError{Field: "card_exp_month", Message: "required"}
	case pm.CardExpYear == "":
		return &gateway.ValidationError{Field: "card_exp_year", Message: "required"}
	case pm.CardCVC == "":
		return &gateway.ValidationError{Field: "card_cvc", Message: "required"}
	}
	return nil
}

func cardFromPaymentMethod(pm gateway.PaymentMethod) *cardDetails {
	return &cardDetails{
		Number:   strings.ReplaceAll(pm.CardNumber, " ", ""),
		ExpMonth: pm.CardExpMonth,
		ExpYear:  pm.CardExpYear,
		CVV:      pm.CardCVC,
		Zip:      pm.CardZip,
	}
}

func (g *Gateway) CreateSubscription(ctx context.Context, donation *models.Donation, sub *models.Subscription, pm gateway.PaymentMethod) (*gateway.CreateResult, error) {
	if err := validateCard(pm); err != nil {
		return nil, err
	}
	cadence, ok := cadences[sub.Period]
	if !ok {
		return nil, &gateway.ValidationError{Field: "period", Message: "unsupported billing period"}
	}

	remote, err := g.client.createSubscription(ctx, uuid.NewString(), subscriptionObject{
		LocationID:    g.cfg.LocationID,
		Cadence:       cadence,
		CadenceCount:  sub.Frequency,
		MaxPeriods:    sub.BillTimes,
		PriceOverride: &money{Amount: sub.AmountCents, Currency: sub.Currency},
		Card:          cardFromPaymentMethod(pm),
		CustomerEmail: donation.Email,
		CustomerName:  strings.TrimSpace(donation.FirstName + " " + donation.LastName),
		ReferenceID:   donation.ID,
	})
	if err != nil {
		return nil, err
	}

	return &gateway.CreateResult{
		TransactionID:         remote.LatestPaymentID,
		GatewaySubscriptionID: remote.ID,
		Offsite:               !strings.EqualFold(remote.Status, "ACTIVE"),
	}, nil
}

func (g *Gateway) CancelSubscription(ctx context.Context, sub *models.Subscription) error {
	if !g.cfg.Configured() || !sub.HasGatewaySubscriptionID() {
		return nil
	}
	return g.client.cancelSubscription(ctx, *sub.GatewaySubscriptionID)
}

func (g *Gateway) UpdateSubscriptionAmount(ctx context.Context, sub *models.Subscription, newAmountCents int64) error {
	if newAmountCents <= 0 {
		return &gateway.ValidationError{Field: "amount", Message: "must be positive"}
	}
	if newAmountCents == sub.AmountCents {
		return &gateway.ValidationError{Field: "amount", Message: "must differ from the current amount"}
	}
	if !sub.HasGatewaySubscriptionID() {
		return &gateway.ValidationError{Field: "subscription", Message: "has no gateway subscription id"}
	}
	return g.client.updateSubscription(ctx, *sub.GatewaySubscriptionID, subscriptionObject{
		PriceOverride: &money{Amount: newAmountCents, Currency: sub.Currency},
	})
}

func (g *Gateway) UpdatePaymentMethod(ctx context.Context, donor *models.Donor, sub *models.Subscription, pm gateway.PaymentMethod) error {
	if err := validateCard(pm); err != nil {
		return err
	}
	if !sub.HasGatewaySubscriptionID() {
		return &gateway.ValidationError{Field: "subscription", Message: "has no gateway subscription id"}
	}
	return g.client.updateSubscription(ctx, *sub.GatewaySubscriptionID, subscriptionObject{
		Card: cardFromPaymentMethod(pm),
	})
}

var subscriptionStatuses = map[string]types.SubscriptionStatus{
	"PENDING":     types.SubscriptionStatusPending,
	"ACTIVE":      types.SubscriptionStatusActive,
	"PAUSED":      types.SubscriptionStatusSuspended,
	"DEACTIVATED": types.SubscriptionStatusFailing,
	"CANCELED":    types.SubscriptionStatusCancelled,
}

func (g *Gateway) SynchronizeSubscription(ctx context.Context, sub *models.Subscription) (*gateway.SubscriptionSnapshot, error) {
	if !sub.HasGatewaySubscriptionID() {
		return nil, &gateway.ValidationError{Field: "subscription", Message: "has no gateway subscription id"}
	}
	remote, err := g.client.retrieveSubscription(ctx, *sub.GatewaySubscriptionID)
	if err != nil {
		return nil, err
	}

	snap := &gateway.SubscriptionSnapshot{}
	if status, ok := subscriptionStatuses[strings.ToUpper(remote.Status)]; ok {
		snap.Status = status
	}
	if period, ok := cadencePeriods[strings.ToUpper(remote.Cadence)]; ok {
		snap.BillingPeriod = period
		snap.Frequency = remote.CadenceCount
		if snap.Frequency < 1 {
			snap.Frequency = 1
		}
	}
	if remote.CreatedAt != "" {
		if t, err := time.Parse(time.RFC3339, remote.CreatedAt); err == nil {
			snap.CreatedAt = t
		}
	}
	if card := remote.Card; card != nil {
		snap.CardNumberMasked = card.Last4
		snap.CardType = card.Brand
		if card.ExpMonth != "" && card.ExpYear != "" {
			snap.CardExpiration = card.ExpYear + "-" + card.ExpMonth
		}
	}
	return snap, nil
}

func (g *Gateway) GetTransactionDetails(ctx context.Context, gatewayTransactionID string) (*gateway.TransactionDetails, error) {
	payment, err := g.client.getPayment(ctx, gatewayTransactionID)
	if err != nil {
		return nil, err
	}
	return toTransactionDetails(payment), nil
}

func toTransactionDetails(p *paymentObject) *gateway.TransactionDetails {
	details := &gateway.TransactionDetails{
		TransactionID:         p.ID,
		GatewaySubscriptionID: p.SubscriptionID,
		PayNum:                p.SequenceNumber,
	}
	if p.AmountMoney != nil {
		details.AmountCents = p.AmountMoney.Amount
	}
	if t, err := time.Parse(time.RFC3339, p.CreatedAt); err == nil {
		details.SubmittedAt = t
	}
	return details
}

func (g *Gateway) FetchRemoteTransactions(ctx context.Context, sub *models.Subscription, start, end time.Time) (map[string]gateway.RemoteTransaction, error) {
	payments, err := g.client.listPayments(ctx, g.cfg.LocationID, start, end)
	if err != nil {
		return nil, err
	}

	out := make(map[string]gateway.RemoteTransaction)
	for i := range payments {
		p := &payments[i]
		if p.SubscriptionID != *sub.GatewaySubscriptionID {
			continue
		}
		details := toTransactionDetails(p)
		out[p.ID] = gateway.RemoteTransaction{
			TransactionID:         p.ID,
			GatewaySubscriptionID: p.SubscriptionID,
			PayNum:                p.SequenceNumber,
			AmountCents:           details.AmountCents,
			SettledAt:             details.SubmittedAt,
			Status:                p.Status,
			SettledSuccessfully:   strings.EqualFold(p.Status, "COMPLETED"),
		}
	}
	return out, nil
}

func (g *Gateway) CanCancel(sub *models.Subscription) bool {
	return gateway.CanActOn(g.ID(), g.cfg.Configured(), sub, types.SubscriptionStatusActive)
}

func (g *Gateway) CanUpdateAmount(sub *models.Subscription) bool {
	return gateway.CanActOn(g.ID(), g.cfg.Configured(), sub, types.SubscriptionStatusActive)
}

func (g *Gateway) CanUpdatePaymentMethod(sub *models.Subscription) bool {
	return gateway.CanActOn(g.ID(), g.cfg.Configured(), sub,
		types.SubscriptionStatusActive, types.SubscriptionStatusFailing)
}

func (g *Gateway) CanSync(sub *models.Subscription) bool {
	return gateway.CanActOn(g.ID(), g.cfg.Configured(), sub)
}
