package sync

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fatflowers/pledger/internal/app/service/donation"
	"github.com/fatflowers/pledger/internal/app/service/subscription"
	"github.com/fatflowers/pledger/internal/gateway"
	models "github.com/fatflowers/pledger/internal/models"
	"github.com/fatflowers/pledger/pkg/logctx"
	"github.com/fatflowers/pledger/pkg/tool"
	"github.com/fatflowers/pledger/pkg/types"
)

// scanMonths is how far back the settlement scan reaches, one range per
// month. Reporting APIs cap the queryable window per call, hence the split.
const scanMonths = 12

type Service struct {
	db          *gorm.DB
	log         *zap.SugaredLogger
	registry    *gateway.Registry
	subSvc      *subscription.Service
	donationSvc *donation.Service
}

func NewService(db *gorm.DB, log *zap.SugaredLogger, registry *gateway.Registry, subSvc *subscription.Service, donationSvc *donation.Service) *Service {
	return &Service{db: db, log: log, registry: registry, subSvc: subSvc, donationSvc: donationSvc}
}

// GetGatewayTransactions scans the last twelve months of settlement records
// for one subscription, oldest range first, and returns the renewal-eligible
// transactions ordered oldest first.
//
// A reporting-permission failure raises an operator notice exactly once and
// stops the scan; any other range failure also stops the scan. Both keep
// the ranges already collected, so repeated syncs make forward progress.
func (s *Service) GetGatewayTransactions(ctx context.Context, sub *models.Subscription) ([]gateway.RemoteTransaction, error) {
	log := logctx.FromCtx(ctx, s.log)

	if !sub.HasGatewaySubscriptionID() {
		return nil, &gateway.ValidationError{Field: "subscription", Message: "has no gateway subscription id"}
	}
	g, ok := s.registry.Get(sub.GatewayID)
	if !ok {
		return nil, fmt.Errorf("gateway %s is not registered", sub.GatewayID)
	}

	now := time.Now()
	merged := make(map[string]gateway.RemoteTransaction)
	for i := 0; i < scanMonths; i++ {
		start := now.AddDate(0, i-scanMonths, 0)
		end := now.AddDate(0, i-scanMonths+1, 0)

		ranged, err := g.FetchRemoteTransactions(ctx, sub, start, end)
		if err != nil {
			if errors.Is(err, gateway.ErrReportingDisabled) {
				s.raiseReportingNotice(ctx, sub.GatewayID)
				log.Warnw("settlement scan stopped: reporting disabled",
					"subscription_id", sub.ID, "gateway", sub.GatewayID)
				break
			}
			log.Errorw("settlement scan range failed",
				"subscription_id", sub.ID, "gateway", sub.GatewayID,
				"range_start", start.Format(time.DateOnly), "err", err)
			break
		}

		for id, txn := range ranged {
			if txn.GatewaySubscriptionID != *sub.GatewaySubscriptionID {
				continue
			}
			// PayNum 1 is the initial donation; it never becomes a renewal.
			if txn.PayNum == 1 || !txn.SettledSuccessfully {
				continue
			}
			merged[id] = txn
		}
	}

	out := make([]gateway.RemoteTransaction, 0, len(merged))
	for _, txn := range merged {
		out = append(out, txn)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SettledAt.Before(out[j].SettledAt)
	})
	return out, nil
}

// Report summarizes one reconciliation run.
type Report struct {
	SubscriptionID string                        `json:"subscription_id"`
	Status         types.SubscriptionStatus      `json:"status"`
	ScannedCount   int                           `json:"scanned_count"`
	CreatedCount   int                           `json:"created_count"`
	Snapshot       *gateway.SubscriptionSnapshot `json:"snapshot,omitempty"`
}

// SyncSubscription reconciles one subscription against its gateway: refresh
// the lifecycle status and billing terms from the remote snapshot, then
// backfill any settled renewals the webhooks missed.
func (s *Service) SyncSubscription(ctx context.Context, subscriptionID string) (*Report, error) {
	log := logctx.FromCtx(ctx, s.log)

	sub, err := s.subSvc.GetByID(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	g, ok := s.registry.Get(sub.GatewayID)
	if !ok {
		return nil, fmt.Errorf("gateway %s is not registered", sub.GatewayID)
	}
	if !g.CanSync(sub) {
		return nil, &gateway.ValidationError{Field: "subscription", Message: "cannot be synchronized"}
	}

	report := &Report{SubscriptionID: sub.ID}

	snapshot, err := g.SynchronizeSubscription(ctx, sub)
	if err != nil {
		return nil, err
	}
	report.Snapshot = snapshot
	s.applySnapshot(ctx, sub, snapshot)

	txns, err := s.GetGatewayTransactions(ctx, sub)
	if err != nil {
		return nil, err
	}
	report.ScannedCount = len(txns)

	initial, err := s.subSvc.InitialDonation(ctx, sub.ID)
	if err != nil {
		return nil, err
	}
	if initial == nil {
		return nil, fmt.Errorf("subscription %s has no initial donation", sub.ID)
	}

	known, err := s.knownTransactionIDs(ctx, sub.ID)
	if err != nil {
		return nil, err
	}
	for _, txn := range txns {
		if _, ok := known[txn.TransactionID]; ok {
			continue
		}
		if _, err := s.donationSvc.CreateRenewal(ctx, sub, initial, txn.TransactionID, txn.AmountCents, txn.SettledAt,
			"Donation recovered by gateway reconciliation."); err != nil {
			return report, err
		}
		report.CreatedCount++
	}

	report.Status = sub.Status
	log.Infow("subscription synchronized",
		"subscription_id", sub.ID, "gateway", sub.GatewayID,
		"scanned", report.ScannedCount, "created", report.CreatedCount)
	return report, nil
}

// applySnapshot folds the remote view into the local row. Status moves only
// through the state machine; an illegal move is logged and skipped rather
// than forced.
func (s *Service) applySnapshot(ctx context.Context, sub *models.Subscription, snapshot *gateway.SubscriptionSnapshot) {
	log := logctx.FromCtx(ctx, s.log)

	if snapshot.Status != "" && snapshot.Status != sub.Status {
		if err := s.subSvc.SetStatus(ctx, sub.GatewayID, *sub.GatewaySubscriptionID, snapshot.Status,
			"", "Subscription status synchronized from gateway."); err != nil {
			log.Warnw("snapshot status not applied",
				"subscription_id", sub.ID, "local", sub.Status, "remote", snapshot.Status, "err", err)
		} else {
			sub.Status = snapshot.Status
		}
	}

	if snapshot.BillingPeriod != "" && snapshot.Frequency > 0 &&
		(snapshot.BillingPeriod != sub.Period || snapshot.Frequency != sub.Frequency) {
		if err := s.db.WithContext(ctx).Model(&models.Subscription{}).
			Where("id = ?", sub.ID).
			Updates(map[string]any{
				"period":    snapshot.BillingPeriod,
				"frequency": snapshot.Frequency,
			}).Error; err != nil {
			log.Errorf("failed to update billing terms for %s: %v", sub.ID, err)
		} else {
			sub.Period = snapshot.BillingPeriod
			sub.Frequency = snapshot.Frequency
		}
	}
}

func (s *Service) knownTransactionIDs(ctx context.Context, subscriptionID string) (map[string]struct{}, error) {
	var ids []string
	if err := s.db.WithContext(ctx).Model(&models.Donation{}).
		Where("subscription_id = ? AND gateway_transaction_id IS NOT NULL", subscriptionID).
		Pluck("gateway_transaction_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to load donation transaction ids: %w", err)
	}
	known := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		known[id] = struct{}{}
	}
	return known, nil
}

// raiseReportingNotice records the operator notice for a gateway account
// without reporting permission. The unique code makes it fire once.
func (s *Service) raiseReportingNotice(ctx context.Context, gatewayID types.GatewayID) {
	notice := &models.AdminNotice{
		ID:    tool.GenerateUUIDV7(),
		Code:  fmt.Sprintf("reporting_disabled_%s", gatewayID),
		Level: "error",
		Message: fmt.Sprintf(
			"The %s gateway account does not have transaction reporting enabled, so settled renewals cannot be reconciled. Enable the Transaction Details API for the account.",
			gatewayID),
	}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoNothing: true,
	}).Create(notice).Error; err != nil {
		logctx.FromCtx(ctx, s.log).Errorf("failed to save admin notice: %v", err)
	}
}
