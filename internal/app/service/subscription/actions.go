package subscription

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/fatflowers/pledger/internal/gateway"
	models "github.com/fatflowers/pledger/internal/models"
	"github.com/fatflowers/pledger/pkg/logctx"
	"github.com/fatflowers/pledger/pkg/tool"
	"github.com/fatflowers/pledger/pkg/types"
)

// CreateRequest is a purchase submission: donor identity, the recurring
// terms, and the payment instrument for the chosen gateway.
type CreateRequest struct {
	GatewayID types.GatewayID `json:"gateway_id"`

	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Anonymous bool   `json:"anonymous"`
	Company   string `json:"company"`

	AmountCents int64               `json:"amount_cents"`
	Currency    string              `json:"currency"`
	Period      types.BillingPeriod `json:"period"`
	Frequency   int                 `json:"frequency"`
	BillTimes   int                 `json:"bill_times"`
	FormID      string              `json:"form_id"`
	LevelID     string              `json:"level_id"`

	PaymentMethod gateway.PaymentMethod `json:"payment_method"`
}

func (r *CreateRequest) validate() error {
	switch {
	case r.Email == "" || !strings.Contains(r.Email, "@"):
		return &gateway.ValidationError{Field: "email", Message: "required"}
	case r.AmountCents <= 0:
		return &gateway.ValidationError{Field: "amount_cents", Message: "must be positive"}
	case r.Currency == "":
		return &gateway.ValidationError{Field: "currency", Message: "required"}
	case !r.Period.Valid():
		return &gateway.ValidationError{Field: "period", Message: "unknown billing period"}
	case r.Frequency < 1:
		return &gateway.ValidationError{Field: "frequency", Message: "must be at least 1"}
	case r.BillTimes < 0:
		return &gateway.ValidationError{Field: "bill_times", Message: "must not be negative"}
	case r.FormID == "":
		return &gateway.ValidationError{Field: "form_id", Message: "required"}
	}
	return nil
}

type CreateResult struct {
	Subscription *models.Subscription `json:"subscription"`
	Donation     *models.Donation     `json:"donation"`
	// Offsite means the initial donation stays pending until the gateway
	// confirms the first charge asynchronously.
	Offsite bool `json:"offsite"`
}

// Create runs the purchase pipeline: persist donor + pending subscription +
// pending initial donation, then perform exactly one remote create. When the
// gateway resolves synchronously, the donation completes and the
// subscription activates inline; otherwise both wait for the webhook.
func (s *Service) Create(ctx context.Context, req *CreateRequest) (*CreateResult, error) {
	log := logctx.FromCtx(ctx, s.log)

	if err := req.validate(); err != nil {
		return nil, err
	}
	g, ok := s.registry.Get(req.GatewayID)
	if !ok {
		return nil, &gateway.ValidationError{Field: "gateway_id", Message: fmt.Sprintf("gateway %s is not available", req.GatewayID)}
	}

	var (
		sub      *models.Subscription
		donation *models.Donation
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		donor, err := s.findOrCreateDonor(ctx, tx, req)
		if err != nil {
			return err
		}
		sub = &models.Subscription{
			ID:          tool.GenerateUUIDV7(),
			DonorID:     donor.ID,
			GatewayID:   req.GatewayID,
			AmountCents: req.AmountCents,
			Currency:    req.Currency,
			Period:      req.Period,
			Frequency:   req.Frequency,
			BillTimes:   req.BillTimes,
			Status:      types.SubscriptionStatusPending,
			FormID:      req.FormID,
			LevelID:     req.LevelID,
		}
		if err := tx.WithContext(ctx).Create(sub).Error; err != nil {
			return fmt.Errorf("failed to create subscription: %w", err)
		}
		donation = &models.Donation{
			ID:             tool.GenerateUUIDV7(),
			SubscriptionID: sub.ID,
			DonorID:        donor.ID,
			GatewayID:      req.GatewayID,
			Type:           types.DonationTypeInitial,
			Status:         types.DonationStatusPending,
			AmountCents:    req.AmountCents,
			Currency:       req.Currency,
			FirstName:      req.FirstName,
			LastName:       req.LastName,
			Email:          req.Email,
			FormID:         req.FormID,
			LevelID:        req.LevelID,
			Anonymous:      req.Anonymous,
			Company:        req.Company,
		}
		if err := tx.WithContext(ctx).Create(donation).Error; err != nil {
			return fmt.Errorf("failed to create initial donation: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	remote, err := g.CreateSubscription(ctx, donation, sub, req.PaymentMethod)
	if err != nil {
		if dbErr := s.db.WithContext(ctx).Model(&models.Donation{}).
			Where("id = ?", donation.ID).
			Update("status", types.DonationStatusFailed).Error; dbErr != nil {
			log.Errorf("failed to mark donation failed: %v", dbErr)
		}
		s.addNote(ctx, donation.ID, fmt.Sprintf("Payment gateway rejected the subscription: %v", err))
		return nil, err
	}

	if err := s.AttachGatewaySubscriptionID(ctx, sub, remote.GatewaySubscriptionID); err != nil {
		return nil, err
	}

	if remote.TransactionID != "" {
		if err := s.db.WithContext(ctx).Model(&models.Donation{}).
			Where("id = ?", donation.ID).
			Update("gateway_transaction_id", remote.TransactionID).Error; err != nil {
			log.Errorf("failed to record gateway transaction id: %v", err)
		} else {
			donation.GatewayTransactionID = lo.ToPtr(remote.TransactionID)
		}
	}

	if !remote.Offsite {
		if err := s.db.WithContext(ctx).Model(&models.Donation{}).
			Where("id = ?", donation.ID).
			Update("status", types.DonationStatusComplete).Error; err != nil {
			return nil, fmt.Errorf("failed to complete initial donation: %w", err)
		}
		donation.Status = types.DonationStatusComplete
		if err := s.setStatus(ctx, sub, types.SubscriptionStatusActive, remote.TransactionID, "Subscription activated at signup."); err != nil {
			return nil, err
		}
	}

	log.Infow("subscription created",
		"subscription_id", sub.ID, "gateway", sub.GatewayID,
		"gateway_subscription_id", remote.GatewaySubscriptionID, "offsite", remote.Offsite)
	return &CreateResult{Subscription: sub, Donation: donation, Offsite: remote.Offsite}, nil
}

func (s *Service) findOrCreateDonor(ctx context.Context, tx *gorm.DB, req *CreateRequest) (*models.Donor, error) {
	var donor models.Donor
	err := tx.WithContext(ctx).Where("email = ?", req.Email).First(&donor).Error
	if err == nil {
		return &donor, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up donor: %w", err)
	}
	donor = models.Donor{
		ID:        tool.GenerateUUIDV7(),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	}
	if err := tx.WithContext(ctx).Create(&donor).Error; err != nil {
		return nil, fmt.Errorf("failed to create donor: %w", err)
	}
	return &donor, nil
}

// Cancel cancels the subscription at the gateway first, then locally. The
// capability check gates the remote call; validation errors surface to the
// caller so the subscriber sees why nothing happened.
func (s *Service) Cancel(ctx context.Context, subscriptionID string) error {
	sub, err := s.GetByID(ctx, subscriptionID)
	if err != nil {
		return err
	}
	g, err := s.gatewayFor(sub)
	if err != nil {
		return err
	}
	if !g.CanCancel(sub) {
		return &gateway.ValidationError{Field: "subscription", Message: "cannot be cancelled in its current state"}
	}
	if err := g.CancelSubscription(ctx, sub); err != nil {
		return err
	}
	return s.setStatus(ctx, sub, types.SubscriptionStatusCancelled, "", "Subscription cancelled by the donor.")
}

// UpdateAmount changes the recurring amount remotely, then locally.
func (s *Service) UpdateAmount(ctx context.Context, subscriptionID string, newAmountCents int64) error {
	sub, err := s.GetByID(ctx, subscriptionID)
	if err != nil {
		return err
	}
	g, err := s.gatewayFor(sub)
	if err != nil {
		return err
	}
	if !g.CanUpdateAmount(sub) {
		return &gateway.ValidationError{Field: "subscription", Message: "amount cannot be updated in its current state"}
	}
	if err := g.UpdateSubscriptionAmount(ctx, sub, newAmountCents); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("id = ?", sub.ID).
		Update("amount_cents", newAmountCents).Error; err != nil {
		return fmt.Errorf("failed to update subscription amount: %w", err)
	}
	if initial, err := s.InitialDonation(ctx, sub.ID); err == nil && initial != nil {
		s.addNote(ctx, initial.ID, fmt.Sprintf("Recurring amount changed from %s to %s %s.",
			tool.CentsToAmount(sub.AmountCents), tool.CentsToAmount(newAmountCents), sub.Currency))
	}
	sub.AmountCents = newAmountCents
	return nil
}

// UpdatePaymentMethod swaps the payment instrument at the gateway. Nothing
// changes locally beyond the audit note; instrument details are never stored.
func (s *Service) UpdatePaymentMethod(ctx context.Context, subscriptionID string, pm gateway.PaymentMethod) error {
	sub, err := s.GetByID(ctx, subscriptionID)
	if err != nil {
		return err
	}
	g, err := s.gatewayFor(sub)
	if err != nil {
		return err
	}
	if !g.CanUpdatePaymentMethod(sub) {
		return &gateway.ValidationError{Field: "subscription", Message: "payment method cannot be updated in its current state"}
	}
	var donor models.Donor
	if err := s.db.WithContext(ctx).Where("id = ?", sub.DonorID).First(&donor).Error; err != nil {
		return fmt.Errorf("failed to load donor: %w", err)
	}
	if err := g.UpdatePaymentMethod(ctx, &donor, sub, pm); err != nil {
		return err
	}
	if initial, err := s.InitialDonation(ctx, sub.ID); err == nil && initial != nil {
		s.addNote(ctx, initial.ID, "Payment method updated.")
	}
	return nil
}
