package authorize

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fatflowers/pledger/internal/gateway"
	models "github.com/fatflowers/pledger/internal/models"
	"github.com/fatflowers/pledger/pkg/config"
	"github.com/fatflowers/pledger/pkg/tool"
	"github.com/fatflowers/pledger/pkg/types"
)

// ARB billTo field limits. Anything longer is truncated, not rejected.
const (
	maxNameLen    = 49
	maxAddressLen = 59
	maxCityLen    = 39
	maxZipLen     = 19
)

// The ARB scheduler runs in Mountain Time; start dates submitted in any
// other zone can land a day off.
var mountainTime = func() *time.Location {
	loc, err := time.LoadLocation("America/Denver")
	if err != nil {
		return time.UTC
	}
	return loc
}()

// Gateway is the card-network adapter backed by the ARB XML API.
type Gateway struct {
	log    *zap.SugaredLogger
	cfg    config.AuthorizeConfig
	client *Client
}

func New(log *zap.SugaredLogger, cfg config.AuthorizeConfig, sandbox bool) *Gateway {
	return &Gateway{
		log:    log.Named("authorize"),
		cfg:    cfg,
		client: NewClient(cfg.APILoginID, cfg.TransactionKey, sandbox),
	}
}

func (g *Gateway) ID() types.GatewayID {
	return types.GatewayAuthorize
}

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

func cardExpiration(pm gateway.PaymentMethod) string {
	month := pm.CardExpMonth
	if len(month) == 1 {
		month = "0" + month
	}
	return fmt.Sprintf("%s-%s", pm.CardExpYear, month)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

func (g *Gateway) CreateSubscription(ctx context.Context, donation *models.Donation, sub *models.Subscription, pm gateway.PaymentMethod) (*gateway.CreateResult, error) {
	if err := validateCard(pm); err != nil {
		return nil, err
	}
	iv, err := gateway.IntervalFromPeriod(sub.Period, sub.Frequency)
	if err != nil {
		return nil, err
	}

	arbSub := arbSubscription{
		Name: truncate(fmt.Sprintf("Subscription %s", sub.ID), maxNameLen),
		PaymentSchedule: &paymentSchedule{
			Interval:         &scheduleInterval{Length: iv.Length, Unit: string(iv.Unit)},
			StartDate:        time.Now().In(mountainTime).Format("2006-01-02"),
			TotalOccurrences: gateway.Occurrences(sub.BillTimes),
		},
		Amount: tool.CentsToAmount(sub.AmountCents),
		Payment: &arbPayment{CreditCard: &creditCard{
			CardNumber:     strings.ReplaceAll(pm.CardNumber, " ", ""),
			ExpirationDate: cardExpiration(pm),
			CardCode:       pm.CardCVC,
		}},
		Order:    &arbOrder{Description: truncate(fmt.Sprintf("Recurring donation for form %s", sub.FormID), maxNameLen)},
		Customer: &arbCustomer{ID: donation.DonorID, Email: donation.Email},
		BillTo: &nameAndAddress{
			FirstName: truncate(donation.FirstName, maxNameLen),
			LastName:  truncate(donation.LastName, maxNameLen),
			Zip:       truncate(pm.CardZip, maxZipLen),
		},
	}

	resp, err := g.client.createSubscription(ctx, donation.ID, arbSub)
	if err != nil {
		return nil, err
	}

	result := &gateway.CreateResult{
		GatewaySubscriptionID: resp.SubscriptionID,
		// The first charge is asynchronous: the capture webhook confirms it.
		Offsite: true,
	}

	// The remote status resolves to active as soon as the first charge is
	// authorized. When it has already, there is nothing to wait for.
	if remote, err := g.client.getSubscription(ctx, resp.SubscriptionID); err == nil && strings.EqualFold(remote.Status, "active") {
		result.Offsite = false
	}
	return result, nil
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
	return g.client.updateSubscription(ctx, *sub.GatewaySubscriptionID, arbSubscription{
		Amount: tool.CentsToAmount(newAmountCents),
	})
}

func (g *Gateway) UpdatePaymentMethod(ctx context.Context, donor *models.Donor, sub *models.Subscription, pm gateway.PaymentMethod) error {
	if err := validateCard(pm); err != nil {
		return err
	}
	if !sub.HasGatewaySubscriptionID() {
		return &gateway.ValidationError{Field: "subscription", Message: "has no gateway subscription id"}
	}
	return g.client.updateSubscription(ctx, *sub.GatewaySubscriptionID, arbSubscription{
		Payment: &arbPayment{CreditCard: &creditCard{
			CardNumber:     strings.ReplaceAll(pm.CardNumber, " ", ""),
			ExpirationDate: cardExpiration(pm),
			CardCode:       pm.CardCVC,
		}},
		BillTo: &nameAndAddress{
			FirstName: truncate(donor.FirstName, maxNameLen),
			LastName:  truncate(donor.LastName, maxNameLen),
			Zip:       truncate(pm.CardZip, maxZipLen),
		},
	})
}

// arbStatuses maps remote subscription statuses to the canonical vocabulary.
var arbStatuses = map[string]types.SubscriptionStatus{
	"active":     types.SubscriptionStatusActive,
	"suspended":  types.SubscriptionStatusFailing,
	"canceled":   types.SubscriptionStatusCancelled,
	"cancelled":  types.SubscriptionStatusCancelled,
	"terminated": types.SubscriptionStatusCancelled,
	"expired":    types.SubscriptionStatusExpired,
}

func (g *Gateway) SynchronizeSubscription(ctx context.Context, sub *models.Subscription) (*gateway.SubscriptionSnapshot, error) {
	if !sub.HasGatewaySubscriptionID() {
		return nil, &gateway.ValidationError{Field: "subscription", Message: "has no gateway subscription id"}
	}
	remote, err := g.client.getSubscription(ctx, *sub.GatewaySubscriptionID)
	if err != nil {
		return nil, err
	}

	snap := &gateway.SubscriptionSnapshot{}
	if status, ok := arbStatuses[strings.ToLower(remote.Status)]; ok {
		snap.Status = status
	}

	if ps := remote.PaymentSchedule; ps != nil {
		if ps.StartDate != "" {
			if t, err := time.ParseInLocation("2006-01-02", ps.StartDate, mountainTime); err == nil {
				snap.CreatedAt = t
			}
		}
		if ps.Interval != nil {
			iv := gateway.Interval{Length: ps.Interval.Length, Unit: gateway.IntervalUnit(ps.Interval.Unit)}
			period, freq, err := iv.BillingPeriod()
			if err != nil {
				g.log.Warnw("unmapped remote interval", "subscription_id", sub.ID, "length", iv.Length, "unit", iv.Unit)
			} else {
				snap.BillingPeriod = period
				snap.Frequency = freq
			}
		}
	}

	if p := remote.Profile; p != nil && p.CustomerProfileID != "" {
		card, err := g.client.getCustomerPaymentProfile(ctx, p.CustomerProfileID, p.CustomerPaymentProfileID)
		if err != nil {
			g.log.Warnw("payment profile lookup failed", "subscription_id", sub.ID, "err", err)
		} else if card != nil {
			snap.CardNumberMasked = card.CardNumber
			snap.CardType = card.CardType
			snap.CardExpiration = card.ExpirationDate
		}
	}
	return snap, nil
}

func (g *Gateway) GetTransactionDetails(ctx context.Context, gatewayTransactionID string) (*gateway.TransactionDetails, error) {
	txn, err := g.client.getTransactionDetails(ctx, gatewayTransactionID)
	if err != nil {
		return nil, err
	}
	return g.toTransactionDetails(txn), nil
}

func (g *Gateway) toTransactionDetails(txn *transactionDetail) *gateway.TransactionDetails {
	details := &gateway.TransactionDetails{TransactionID: txn.TransID}
	if txn.Subscription != nil {
		details.GatewaySubscriptionID = txn.Subscription.ID
		details.PayNum = txn.Subscription.PayNum
	}
	amount := txn.SettleAmount
	if amount == "" {
		amount = txn.AuthAmount
	}
	if amount != "" {
		if cents, err := tool.AmountToCents(amount); err == nil {
			details.AmountCents = cents
		}
	}
	if txn.SubmitTimeUTC != "" {
		if t, err := time.Parse(time.RFC3339, txn.SubmitTimeUTC); err == nil {
			details.SubmittedAt = t
		}
	}
	return details
}

func (g *Gateway) FetchRemoteTransactions(ctx context.Context, sub *models.Subscription, start, end time.Time) (map[string]gateway.RemoteTransaction, error) {
	batches, err := g.client.getSettledBatchList(ctx,
		start.UTC().Format("2006-01-02T15:04:05Z"),
		end.UTC().Format("2006-01-02T15:04:05Z"),
	)
	if err != nil {
		return nil, err
	}

	out := make(map[string]gateway.RemoteTransaction)
	for _, batch := range batches {
		txns, err := g.client.getTransactionList(ctx, batch.BatchID)
		if err != nil {
			return nil, err
		}
		for _, txn := range txns {
			if txn.Subscription == nil || txn.Subscription.ID != *sub.GatewaySubscriptionID {
				continue
			}
			details := g.toTransactionDetails(&txn)
			settledAt := details.SubmittedAt
			if t, err := time.Parse(time.RFC3339, batch.SettlementTimeUTC); err == nil {
				settledAt = t
			}
			out[txn.TransID] = gateway.RemoteTransaction{
				TransactionID:         txn.TransID,
				GatewaySubscriptionID: details.GatewaySubscriptionID,
				PayNum:                details.PayNum,
				AmountCents:           details.AmountCents,
				SettledAt:             settledAt,
				Status:                txn.TransactionStatus,
				SettledSuccessfully:   strings.EqualFold(txn.TransactionStatus, "settledSuccessfully"),
			}
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
