package sync

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/fatflowers/pledger/internal/gateway"
	models "github.com/fatflowers/pledger/internal/models"
	"github.com/fatflowers/pledger/pkg/types"
)

// scanStub feeds FetchRemoteTransactions from a queue, one entry per range.
type scanStub struct {
	ranges []map[string]gateway.RemoteTransaction
	errs   []error
	calls  int
}

func (s *scanStub) ID() types.GatewayID { return types.GatewayAuthorize }
func (s *scanStub) FetchRemoteTransactions(_ context.Context, _ *models.Subscription, _, _ time.Time) (map[string]gateway.RemoteTransaction, error) {
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return nil, s.errs[i]
	}
	if i < len(s.ranges) {
		return s.ranges[i], nil
	}
	return nil, nil
}

func (s *scanStub) CreateSubscription(context.Context, *models.Donation, *models.Subscription, gateway.PaymentMethod) (*gateway.CreateResult, error) {
	return nil, nil
}
func (s *scanStub) CancelSubscription(context.Context, *models.Subscription) error { return nil }
func (s *scanStub) UpdateSubscriptionAmount(context.Context, *models.Subscription, int64) error {
	return nil
}
func (s *scanStub) UpdatePaymentMethod(context.Context, *models.Donor, *models.Subscription, gateway.PaymentMethod) error {
	return nil
}
func (s *scanStub) SynchronizeSubscription(context.Context, *models.Subscription) (*gateway.SubscriptionSnapshot, error) {
	return nil, nil
}
func (s *scanStub) GetTransactionDetails(context.Context, string) (*gateway.TransactionDetails, error) {
	return nil, nil
}
func (s *scanStub) ParseWebhook(*http.Request, []byte) ([]gateway.Event, error) { return nil, nil }
func (s *scanStub) CanCancel(*models.Subscription) bool                         { return true }
func (s *scanStub) CanUpdateAmount(*models.Subscription) bool                   { return true }
func (s *scanStub) CanUpdatePaymentMethod(*models.Subscription) bool            { return true }
func (s *scanStub) CanSync(*models.Subscription) bool                           { return true }

func scanService(stub *scanStub) *Service {
	registry := gateway.NewRegistry(zap.NewNop().Sugar())
	registry.Register(stub)
	return NewService(nil, zap.NewNop().Sugar(), registry, nil, nil)
}

func scanSubscription() *models.Subscription {
	gsid := "arb-1"
	return &models.Subscription{
		ID:                    "sub-1",
		GatewayID:             types.GatewayAuthorize,
		GatewaySubscriptionID: &gsid,
		Status:                types.SubscriptionStatusActive,
	}
}

func settled(id, subID string, payNum int, settledAt time.Time) gateway.RemoteTransaction {
	return gateway.RemoteTransaction{
		TransactionID:         id,
		GatewaySubscriptionID: subID,
		PayNum:                payNum,
		AmountCents:           1000,
		SettledAt:             settledAt,
		Status:                "settledSuccessfully",
		SettledSuccessfully:   true,
	}
}

func TestGetGatewayTransactions_FiltersAndSorts(t *testing.T) {
	older := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)

	unsettled := settled("t-bad", "arb-1", 3, older)
	unsettled.Status = "declined"
	unsettled.SettledSuccessfully = false

	stub := &scanStub{ranges: []map[string]gateway.RemoteTransaction{
		{
			"t-2":       settled("t-2", "arb-1", 3, newer),
			"t-initial": settled("t-initial", "arb-1", 1, older),
			"t-foreign": settled("t-foreign", "arb-other", 2, older),
			"t-bad":     unsettled,
		},
		{
			"t-1": settled("t-1", "arb-1", 2, older),
		},
	}}

	txns, err := scanService(stub).GetGatewayTransactions(context.Background(), scanSubscription())
	require.NoError(t, err)
	require.Len(t, txns, 2)
	require.Equal(t, "t-1", txns[0].TransactionID)
	require.Equal(t, "t-2", txns[1].TransactionID)
	require.Equal(t, scanMonths, stub.calls)
}

func TestGetGatewayTransactions_LastRangeWins(t *testing.T) {
	first := settled("t-1", "arb-1", 2, time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC))
	second := settled("t-1", "arb-1", 2, time.Date(2026, 1, 11, 0, 0, 0, 0, time.UTC))

	stub := &scanStub{ranges: []map[string]gateway.RemoteTransaction{
		{"t-1": first},
		{"t-1": second},
	}}

	txns, err := scanService(stub).GetGatewayTransactions(context.Background(), scanSubscription())
	require.NoError(t, err)
	require.Len(t, txns, 1)
	require.Equal(t, second.SettledAt, txns[0].SettledAt)
}

func TestGetGatewayTransactions_RangeFailureKeepsPartialProgress(t *testing.T) {
	older := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	stub := &scanStub{
		ranges: []map[string]gateway.RemoteTransaction{
			{"t-1": settled("t-1", "arb-1", 2, older)},
		},
		errs: []error{nil, errors.New("boom")},
	}

	txns, err := scanService(stub).GetGatewayTransactions(context.Background(), scanSubscription())
	require.NoError(t, err)
	require.Len(t, txns, 1)
	require.Equal(t, 2, stub.calls)
}

func TestGetGatewayTransactions_UnregisteredGateway(t *testing.T) {
	svc := NewService(nil, zap.NewNop().Sugar(), gateway.NewRegistry(zap.NewNop().Sugar()), nil, nil)
	_, err := svc.GetGatewayTransactions(context.Background(), scanSubscription())
	require.Error(t, err)
}

func TestGetGatewayTransactions_RequiresGatewaySubscriptionID(t *testing.T) {
	stub := &scanStub{}
	sub := scanSubscription()
	sub.GatewaySubscriptionID = nil

	_, err := scanService(stub).GetGatewayTransactions(context.Background(), sub)
	var ve *gateway.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Zero(t, stub.calls)
}

func noticeService(t *testing.T, db *gorm.DB, stub *scanStub) *Service {
	t.Helper()
	registry := gateway.NewRegistry(zap.NewNop().Sugar())
	registry.Register(stub)
	return NewService(db, zap.NewNop().Sugar(), registry, nil, nil)
}

func TestGetGatewayTransactions_ReportingDisabledStopsScanAndNoticesOnce(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.AdminNotice{}))

	older := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	stub := &scanStub{
		ranges: []map[string]gateway.RemoteTransaction{
			{"t-1": settled("t-1", "arb-1", 2, older)},
			{"t-2": settled("t-2", "arb-1", 3, newer)},
		},
		errs: []error{nil, nil, gateway.ErrReportingDisabled},
	}

	txns, err := noticeService(t, db, stub).GetGatewayTransactions(context.Background(), scanSubscription())
	require.NoError(t, err)
	require.Len(t, txns, 2)
	require.Equal(t, 3, stub.calls)

	var notice models.AdminNotice
	require.NoError(t, db.First(&notice).Error)
	require.Equal(t, "reporting_disabled_authorize", notice.Code)

	// a second run against the same store must not duplicate the notice
	again := &scanStub{errs: []error{gateway.ErrReportingDisabled}}
	_, err = noticeService(t, db, again).GetGatewayTransactions(context.Background(), scanSubscription())
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.AdminNotice{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}
