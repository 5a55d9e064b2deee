package plaid

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fatflowers/pledger/internal/gateway"
	models "github.com/fatflowers/pledger/internal/models"
	"github.com/fatflowers/pledger/pkg/config"
	"github.com/fatflowers/pledger/pkg/tool"
	"github.com/fatflowers/pledger/pkg/types"
)

// Gateway is the bank-linked ACH adapter. Transfers settle asynchronously,
// so creation is always offsite: the initial donation completes when the
// first transfer's settlement webhook arrives.
type Gateway struct {
	log    *zap.SugaredLogger
	cfg    config.PlaidConfig
	client *Client
}

func New(log *zap.SugaredLogger, cfg config.PlaidConfig, sandbox bool) *Gateway {
	return &Gateway{
		log:    log.Named("plaid"),
		cfg:    cfg,
		client: NewClient(cfg.ClientID, cfg.Secret, sandbox),
	}
}

func (g *Gateway) ID() types.GatewayID {
	return types.GatewayPlaid
}

func validateBankTokens(pm gateway.PaymentMethod) error {
	switch {
	case pm.AccountToken == "":
		return &gateway.ValidationError{Field: "account_token", Message: "required"}
	case pm.RoutingToken == "":
		return &gateway.ValidationError{Field: "routing_token", Message: "required"}
	}
	return nil
}

var intervalUnits = map[gateway.IntervalUnit]string{
	gateway.IntervalUnitDays:   "day",
	gateway.IntervalUnitMonths: "month",
}

var intervalUnitsReverse = map[string]gateway.IntervalUnit{
	"day":   gateway.IntervalUnitDays,
	"month": gateway.IntervalUnitMonths,
}

func (g *Gateway) CreateSubscription(ctx context.Context, donation *models.Donation, sub *models.Subscription, pm gateway.PaymentMethod) (*gateway.CreateResult, error) {
	if err := validateBankTokens(pm); err != nil {
		return nil, err
	}
	iv, err := gateway.IntervalFromPeriod(sub.Period, sub.Frequency)
	if err != nil {
		return nil, err
	}

	schedule := map[string]any{
		"interval_unit":  intervalUnits[iv.Unit],
		"interval_count": iv.Length,
	}
	if sub.BillTimes > 0 {
		schedule["total_count"] = sub.BillTimes
	}
	remote, err := g.client.createRecurringTransfer(ctx, map[string]any{
		"idempotency_key":   donation.ID,
		"account_token":     pm.AccountToken,
		"routing_token":     pm.RoutingToken,
		"amount":            tool.CentsToAmount(sub.AmountCents),
		"iso_currency_code": sub.Currency,
		"ach_class":         "ppd",
		"description":       "donation",
		"schedule":          schedule,
	})
	if err != nil {
		return nil, err
	}

	return &gateway.CreateResult{
		GatewaySubscriptionID: remote.RecurringTransferID,
		// ACH never settles inline.
		Offsite: true,
	}, nil
}

func (g *Gateway) CancelSubscription(ctx context.Context, sub *models.Subscription) error {
	if !g.cfg.Configured() || !sub.HasGatewaySubscriptionID() {
		return nil
	}
	return g.client.cancelRecurringTransfer(ctx, *sub.GatewaySubscriptionID)
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
	return g.client.updateRecurringTransfer(ctx, *sub.GatewaySubscriptionID, map[string]any{
		"amount": tool.CentsToAmount(newAmountCents),
	})
}

// UpdatePaymentMethod swaps the linked bank account. There is no card on
// this rail.
func (g *Gateway) UpdatePaymentMethod(ctx context.Context, donor *models.Donor, sub *models.Subscription, pm gateway.PaymentMethod) error {
	if err := validateBankTokens(pm); err != nil {
		return err
	}
	if !sub.HasGatewaySubscriptionID() {
		return &gateway.ValidationError{Field: "subscription", Message: "has no gateway subscription id"}
	}
	return g.client.updateRecurringTransfer(ctx, *sub.GatewaySubscriptionID, map[string]any{
		"account_token": pm.AccountToken,
		"routing_token": pm.RoutingToken,
	})
}

var recurringStatuses = map[string]types.SubscriptionStatus{
	"pending":   types.SubscriptionStatusPending,
	"active":    types.SubscriptionStatusActive,
	"failing":   types.SubscriptionStatusFailing,
	"cancelled": types.SubscriptionStatusCancelled,
	"completed": types.SubscriptionStatusCompleted,
	"expired":   types.SubscriptionStatusExpired,
}

func (g *Gateway) SynchronizeSubscription(ctx context.Context, sub *models.Subscription) (*gateway.SubscriptionSnapshot, error) {
	if !sub.HasGatewaySubscriptionID() {
		return nil, &gateway.ValidationError{Field: "subscription", Message: "has no gateway subscription id"}
	}
	remote, err := g.client.getRecurringTransfer(ctx, *sub.GatewaySubscriptionID)
	if err != nil {
		return nil, err
	}

	snap := &gateway.SubscriptionSnapshot{}
	if status, ok := recurringStatuses[strings.ToLower(remote.Status)]; ok {
		snap.Status = status
	}
	if s := remote.Schedule; s != nil {
		unit, ok := intervalUnitsReverse[strings.ToLower(s.IntervalUnit)]
		if ok {
			iv := gateway.Interval{Length: s.IntervalCount, Unit: unit}
			if period, freq, err := iv.BillingPeriod(); err == nil {
				snap.BillingPeriod = period
				snap.Frequency = freq
			} else {
				g.log.Warnw("unmapped remote interval", "subscription_id", sub.ID, "count", s.IntervalCount, "unit", s.IntervalUnit)
			}
		}
	}
	if remote.Created != "" {
		if t, err := time.Parse(time.RFC3339, remote.Created); err == nil {
			snap.CreatedAt = t
		}
	}
	// The bank rail has no card; the masked account stands in on the
	// instrument fields.
	snap.CardNumberMasked = remote.AccountMask
	return snap, nil
}

func (g *Gateway) GetTransactionDetails(ctx context.Context, gatewayTransactionID string) (*gateway.TransactionDetails, error) {
	transfer, err := g.client.getTransfer(ctx, gatewayTransactionID)
	if err != nil {
		return nil, err
	}
	return toTransactionDetails(transfer), nil
}

func toTransactionDetails(t *transferObject) *gateway.TransactionDetails {
	details := &gateway.TransactionDetails{
		TransactionID:         t.TransferID,
		GatewaySubscriptionID: t.RecurringTransferID,
		PayNum:                t.Occurrence,
	}
	if cents, err := tool.AmountToCents(t.Amount); err == nil {
		details.AmountCents = cents
	}
	if ts, err := time.Parse(time.RFC3339, t.Created); err == nil {
		details.SubmittedAt = ts
	}
	return details
}

func (g *Gateway) FetchRemoteTransactions(ctx context.Context, sub *models.Subscription, start, end time.Time) (map[string]gateway.RemoteTransaction, error) {
	transfers, err := g.client.listTransfers(ctx, start, end)
	if err != nil {
		return nil, err
	}

	out := make(map[string]gateway.RemoteTransaction)
	for i := range transfers {
		t := &transfers[i]
		if t.RecurringTransferID != *sub.GatewaySubscriptionID {
			continue
		}
		details := toTransactionDetails(t)
		out[t.TransferID] = gateway.RemoteTransaction{
			TransactionID:         t.TransferID,
			GatewaySubscriptionID: t.RecurringTransferID,
			PayNum:                t.Occurrence,
			AmountCents:           details.AmountCents,
			SettledAt:             details.SubmittedAt,
			Status:                t.Status,
			SettledSuccessfully:   strings.EqualFold(t.Status, "settled"),
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
