package subscription

import (
	"context"
	"fmt"

	models "github.com/fatflowers/pledger/internal/models"
	"github.com/fatflowers/pledger/pkg/logctx"
	"github.com/fatflowers/pledger/pkg/types"
)

// SetStatus applies a gateway-reported lifecycle change to the subscription
// behind gatewaySubscriptionID. An unknown id is a silent no-op: providers
// deliver events for subscriptions created outside this system. Re-applying
// the current status is also a no-op. An illegal transition is an error.
//
// On a real change a note lands on the initial donation so the audit trail
// of the subscription lives in one place; the note cites the gateway
// transaction id when the change was driven by a payment.
func (s *Service) SetStatus(ctx context.Context, gatewayID types.GatewayID, gatewaySubscriptionID string, target types.SubscriptionStatus, gatewayTransactionID, message string) error {
	log := logctx.FromCtx(ctx, s.log)

	sub, err := s.GetByGatewaySubscriptionID(ctx, gatewayID, gatewaySubscriptionID)
	if err != nil {
		return err
	}
	if sub == nil {
		log.Debugw("status change for unknown subscription ignored",
			"gateway", gatewayID, "gateway_subscription_id", gatewaySubscriptionID, "target", target)
		return nil
	}
	return s.setStatus(ctx, sub, target, gatewayTransactionID, message)
}

// statusNote composes the audit note for a lifecycle change.
func statusNote(previous, target types.SubscriptionStatus, gatewayTransactionID, message string) string {
	note := message
	if note == "" {
		note = fmt.Sprintf("Subscription status changed from %s to %s.", previous, target)
	}
	if gatewayTransactionID != "" {
		note = fmt.Sprintf("%s Transaction ID: %s.", note, gatewayTransactionID)
	}
	return note
}

func (s *Service) setStatus(ctx context.Context, sub *models.Subscription, target types.SubscriptionStatus, gatewayTransactionID, message string) error {
	log := logctx.FromCtx(ctx, s.log)

	if sub.Status == target {
		return nil
	}
	if !CanTransition(sub.Status, target) {
		return fmt.Errorf("illegal subscription transition %s -> %s (subscription %s)", sub.Status, target, sub.ID)
	}

	if err := s.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("id = ?", sub.ID).
		Update("status", target).Error; err != nil {
		return fmt.Errorf("failed to update subscription status: %w", err)
	}
	previous := sub.Status
	sub.Status = target

	if initial, err := s.InitialDonation(ctx, sub.ID); err != nil {
		log.Errorf("failed to load initial donation for note: %v", err)
	} else if initial != nil {
		s.addNote(ctx, initial.ID, statusNote(previous, target, gatewayTransactionID, message))
	}

	log.Infow("subscription status changed",
		"subscription_id", sub.ID, "gateway", sub.GatewayID, "from", previous, "to", target)
	return nil
}
