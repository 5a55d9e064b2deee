package donation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fatflowers/pledger/internal/app/service/subscription"
	"github.com/fatflowers/pledger/internal/gateway"
	models "github.com/fatflowers/pledger/internal/models"
	"github.com/fatflowers/pledger/pkg/logctx"
	"github.com/fatflowers/pledger/pkg/tool"
	"github.com/fatflowers/pledger/pkg/types"
)

const completedNote = "Subscription Donation Completed."

type Service struct {
	db       *gorm.DB
	log      *zap.SugaredLogger
	registry *gateway.Registry
	subSvc   *subscription.Service
}

func NewService(db *gorm.DB, log *zap.SugaredLogger, registry *gateway.Registry, subSvc *subscription.Service) *Service {
	return &Service{db: db, log: log, registry: registry, subSvc: subSvc}
}

// HandleSubscriptionDonations turns a confirmed gateway payment into a local
// donation. The flow deliberately swallows its aborts: a duplicate delivery,
// an unknown subscription or an unresponsive gateway is logged and dropped,
// because returning an error would only make the provider redeliver a
// payload that will fail the same way again.
func (s *Service) HandleSubscriptionDonations(ctx context.Context, gatewayID types.GatewayID, gatewayTransactionID, message string) error {
	log := logctx.FromCtx(ctx, s.log)

	if gatewayTransactionID == "" {
		log.Debugw("payment event without transaction id ignored", "gateway", gatewayID)
		return nil
	}

	// A donation already carrying this transaction id means either a
	// redelivery or a payment settled outside the recurring flow.
	existing, err := s.getByGatewayTransactionID(ctx, gatewayID, gatewayTransactionID)
	if err != nil {
		return err
	}
	if existing != nil {
		log.Debugw("transaction already recorded", "gateway", gatewayID, "gateway_transaction_id", gatewayTransactionID)
		return nil
	}

	g, ok := s.registry.Get(gatewayID)
	if !ok {
		log.Warnw("payment event for unregistered gateway dropped", "gateway", gatewayID)
		return nil
	}

	details, err := g.GetTransactionDetails(ctx, gatewayTransactionID)
	if err != nil {
		log.Errorw("failed to fetch transaction details",
			"gateway", gatewayID, "gateway_transaction_id", gatewayTransactionID, "err", err)
		return nil
	}

	sub, err := s.subSvc.GetByGatewaySubscriptionID(ctx, gatewayID, details.GatewaySubscriptionID)
	if err != nil {
		return err
	}
	if sub == nil {
		log.Debugw("payment for unknown subscription ignored",
			"gateway", gatewayID, "gateway_subscription_id", details.GatewaySubscriptionID)
		return nil
	}

	initial, err := s.subSvc.InitialDonation(ctx, sub.ID)
	if err != nil {
		return err
	}
	if initial == nil {
		log.Errorw("subscription has no initial donation", "subscription_id", sub.ID)
		return nil
	}

	// The first settled payment belongs to the pending initial donation;
	// everything after it creates a renewal row.
	if details.PayNum == 1 && !initial.HasGatewayTransactionID() {
		if err := s.completeInitialDonation(ctx, sub, initial, gatewayTransactionID, message); err != nil {
			return err
		}
	} else {
		if _, err := s.CreateRenewal(ctx, sub, initial, gatewayTransactionID, details.AmountCents, details.SubmittedAt, message); err != nil {
			return err
		}
	}

	log.Infow("subscription donation completed",
		"subscription_id", sub.ID, "gateway", gatewayID,
		"gateway_transaction_id", gatewayTransactionID, "pay_num", details.PayNum)
	return nil
}

func (s *Service) getByGatewayTransactionID(ctx context.Context, gatewayID types.GatewayID, gatewayTransactionID string) (*models.Donation, error) {
	var donation models.Donation
	err := s.db.WithContext(ctx).
		Where("gateway_id = ? AND gateway_transaction_id = ?", gatewayID, gatewayTransactionID).
		First(&donation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up donation by transaction id: %w", err)
	}
	return &donation, nil
}

func (s *Service) completeInitialDonation(ctx context.Context, sub *models.Subscription, initial *models.Donation, gatewayTransactionID, message string) error {
	if err := s.db.WithContext(ctx).Model(&models.Donation{}).
		Where("id = ?", initial.ID).
		Updates(map[string]any{
			"gateway_transaction_id": gatewayTransactionID,
			"status":                 types.DonationStatusComplete,
		}).Error; err != nil {
		return fmt.Errorf("failed to complete initial donation: %w", err)
	}
	initial.GatewayTransactionID = lo.ToPtr(gatewayTransactionID)
	initial.Status = types.DonationStatusComplete

	s.addNote(ctx, initial.ID, donationNote(message, gatewayTransactionID))

	if sub.Status != types.SubscriptionStatusActive {
		if err := s.subSvc.SetStatus(ctx, sub.GatewayID, *sub.GatewaySubscriptionID, types.SubscriptionStatusActive, gatewayTransactionID, ""); err != nil {
			logctx.FromCtx(ctx, s.log).Errorf("failed to activate subscription %s: %v", sub.ID, err)
		}
	}
	return nil
}

// CreateRenewal records a settled recurring payment. Donor identity, form
// and anonymity come from the initial donation; a zero amount falls back to
// the subscription's current recurring amount. Duplicate transaction ids
// resolve to the existing row.
func (s *Service) CreateRenewal(ctx context.Context, sub *models.Subscription, initial *models.Donation, gatewayTransactionID string, amountCents int64, settledAt time.Time, note string) (*models.Donation, error) {
	if existing, err := s.getByGatewayTransactionID(ctx, sub.GatewayID, gatewayTransactionID); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}

	if amountCents <= 0 {
		amountCents = sub.AmountCents
	}
	renewal := &models.Donation{
		ID:                   tool.GenerateUUIDV7(),
		SubscriptionID:       sub.ID,
		DonorID:              sub.DonorID,
		GatewayID:            sub.GatewayID,
		GatewayTransactionID: lo.ToPtr(gatewayTransactionID),
		Type:                 types.DonationTypeRenewal,
		Status:               types.DonationStatusRenewal,
		AmountCents:          amountCents,
		Currency:             sub.Currency,
		FirstName:            initial.FirstName,
		LastName:             initial.LastName,
		Email:                initial.Email,
		FormID:               initial.FormID,
		LevelID:              initial.LevelID,
		Anonymous:            initial.Anonymous,
		Company:              initial.Company,
	}
	if !settledAt.IsZero() {
		renewal.CreatedAt = settledAt
	}

	if err := s.db.WithContext(ctx).Create(renewal).Error; err != nil {
		// The unique (gateway_id, gateway_transaction_id) index closes the
		// race between concurrent deliveries of the same payment.
		if existing, lookupErr := s.getByGatewayTransactionID(ctx, sub.GatewayID, gatewayTransactionID); lookupErr == nil && existing != nil {
			return existing, nil
		}
		return nil, fmt.Errorf("failed to create renewal donation: %w", err)
	}

	s.addNote(ctx, renewal.ID, donationNote(note, gatewayTransactionID))
	return renewal, nil
}

// donationNote composes the audit note for a settled payment: the gateway
// message when there is one, plus the transaction id for traceability.
func donationNote(message, gatewayTransactionID string) string {
	note := message
	if note == "" {
		note = completedNote
	}
	if gatewayTransactionID != "" {
		note = fmt.Sprintf("%s Transaction ID: %s.", note, gatewayTransactionID)
	}
	return note
}

func (s *Service) addNote(ctx context.Context, donationID, content string) {
	if donationID == "" || content == "" {
		return
	}
	note := &models.DonationNote{
		ID:         tool.GenerateUUIDV7(),
		DonationID: donationID,
		Content:    content,
	}
	if err := s.db.WithContext(ctx).Create(note).Error; err != nil {
		logctx.FromCtx(ctx, s.log).Errorf("failed to save donation note: %v", err)
	}
}
