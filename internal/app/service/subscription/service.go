package subscription

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fatflowers/pledger/internal/gateway"
	models "github.com/fatflowers/pledger/internal/models"
	"github.com/fatflowers/pledger/pkg/logctx"
	"github.com/fatflowers/pledger/pkg/tool"
	"github.com/fatflowers/pledger/pkg/types"
)

type Service struct {
	db       *gorm.DB
	log      *zap.SugaredLogger
	registry *gateway.Registry
}

func NewService(db *gorm.DB, log *zap.SugaredLogger, registry *gateway.Registry) *Service {
	return &Service{db: db, log: log, registry: registry}
}

func (s *Service) GetByID(ctx context.Context, id string) (*models.Subscription, error) {
	var sub models.Subscription
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&sub).Error; err != nil {
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return &sub, nil
}

// GetByGatewaySubscriptionID resolves the local subscription behind a
// provider profile id. Returns (nil, nil) when no row matches: webhooks
// routinely reference subscriptions this system never created.
func (s *Service) GetByGatewaySubscriptionID(ctx context.Context, gatewayID types.GatewayID, gatewaySubscriptionID string) (*models.Subscription, error) {
	if gatewaySubscriptionID == "" {
		return nil, nil
	}
	var sub models.Subscription
	err := s.db.WithContext(ctx).
		Where("gateway_id = ? AND gateway_subscription_id = ?", gatewayID, gatewaySubscriptionID).
		First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription by gateway id: %w", err)
	}
	return &sub, nil
}

// InitialDonation returns the subscription's initial donation, or (nil, nil)
// when it does not exist.
func (s *Service) InitialDonation(ctx context.Context, subscriptionID string) (*models.Donation, error) {
	var donation models.Donation
	err := s.db.WithContext(ctx).
		Where("subscription_id = ? AND type = ?", subscriptionID, types.DonationTypeInitial).
		Order("created_at asc").
		First(&donation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get initial donation: %w", err)
	}
	return &donation, nil
}

// AttachGatewaySubscriptionID sets the provider profile id, at most once.
// Reattaching the same id is a no-op; a different id is an error.
func (s *Service) AttachGatewaySubscriptionID(ctx context.Context, sub *models.Subscription, gatewaySubscriptionID string) error {
	if gatewaySubscriptionID == "" {
		return fmt.Errorf("empty gateway subscription id")
	}
	if sub.HasGatewaySubscriptionID() {
		if *sub.GatewaySubscriptionID == gatewaySubscriptionID {
			return nil
		}
		return fmt.Errorf("subscription %s already attached to %s", sub.ID, *sub.GatewaySubscriptionID)
	}
	if err := s.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("id = ? AND gateway_subscription_id IS NULL", sub.ID).
		Update("gateway_subscription_id", gatewaySubscriptionID).Error; err != nil {
		return fmt.Errorf("failed to attach gateway subscription id: %w", err)
	}
	sub.GatewaySubscriptionID = &gatewaySubscriptionID
	return nil
}

// addNote appends an audit note to a donation. Note failures are logged and
// swallowed: they never fail the operation that produced them.
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

func (s *Service) gatewayFor(sub *models.Subscription) (gateway.SubscriptionGateway, error) {
	g, ok := s.registry.Get(sub.GatewayID)
	if !ok {
		return nil, fmt.Errorf("gateway %s is not registered", sub.GatewayID)
	}
	return g, nil
}
