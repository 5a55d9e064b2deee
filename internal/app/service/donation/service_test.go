package donation

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/fatflowers/pledger/internal/app/service/subscription"
	"github.com/fatflowers/pledger/internal/gateway"
	models "github.com/fatflowers/pledger/internal/models"
	"github.com/fatflowers/pledger/pkg/tool"
	"github.com/fatflowers/pledger/pkg/types"
)

// detailsStub answers GetTransactionDetails from a fixed map keyed by
// transaction id.
type detailsStub struct {
	details map[string]*gateway.TransactionDetails
}

func (s *detailsStub) ID() types.GatewayID { return types.GatewayAuthorize }
func (s *detailsStub) GetTransactionDetails(_ context.Context, id string) (*gateway.TransactionDetails, error) {
	if d, ok := s.details[id]; ok {
		return d, nil
	}
	return nil, &gateway.ValidationError{Field: "transaction_id", Message: "unknown"}
}

func (s *detailsStub) CreateSubscription(context.Context, *models.Donation, *models.Subscription, gateway.PaymentMethod) (*gateway.CreateResult, error) {
	return nil, nil
}
func (s *detailsStub) CancelSubscription(context.Context, *models.Subscription) error { return nil }
func (s *detailsStub) UpdateSubscriptionAmount(context.Context, *models.Subscription, int64) error {
	return nil
}
func (s *detailsStub) UpdatePaymentMethod(context.Context, *models.Donor, *models.Subscription, gateway.PaymentMethod) error {
	return nil
}
func (s *detailsStub) SynchronizeSubscription(context.Context, *models.Subscription) (*gateway.SubscriptionSnapshot, error) {
	return nil, nil
}
func (s *detailsStub) FetchRemoteTransactions(context.Context, *models.Subscription, time.Time, time.Time) (map[string]gateway.RemoteTransaction, error) {
	return nil, nil
}
func (s *detailsStub) ParseWebhook(*http.Request, []byte) ([]gateway.Event, error) { return nil, nil }
func (s *detailsStub) CanCancel(*models.Subscription) bool                         { return true }
func (s *detailsStub) CanUpdateAmount(*models.Subscription) bool                   { return true }
func (s *detailsStub) CanUpdatePaymentMethod(*models.Subscription) bool            { return true }
func (s *detailsStub) CanSync(*models.Subscription) bool                           { return true }

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Donor{}, &models.Subscription{}, &models.Donation{}, &models.DonationNote{},
	))
	return db
}

func testService(t *testing.T, stub *detailsStub) (*Service, *gorm.DB) {
	t.Helper()
	db := testDB(t)
	log := zap.NewNop().Sugar()
	registry := gateway.NewRegistry(log)
	registry.Register(stub)
	subSvc := subscription.NewService(db, log, registry)
	return NewService(db, log, registry, subSvc), db
}

func seedSubscription(t *testing.T, db *gorm.DB, gsid string, status types.SubscriptionStatus) (*models.Subscription, *models.Donation) {
	t.Helper()
	donor := &models.Donor{
		ID:        tool.GenerateUUIDV7(),
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.org",
	}
	require.NoError(t, db.Create(donor).Error)

	sub := &models.Subscription{
		ID:                    tool.GenerateUUIDV7(),
		DonorID:               donor.ID,
		GatewayID:             types.GatewayAuthorize,
		GatewaySubscriptionID: lo.ToPtr(gsid),
		AmountCents:           2500,
		Currency:              "USD",
		Period:                types.BillingPeriodMonth,
		Frequency:             1,
		Status:                status,
		FormID:                "form-1",
		LevelID:               "level-1",
	}
	require.NoError(t, db.Create(sub).Error)

	initial := &models.Donation{
		ID:             tool.GenerateUUIDV7(),
		SubscriptionID: sub.ID,
		DonorID:        donor.ID,
		GatewayID:      sub.GatewayID,
		Type:           types.DonationTypeInitial,
		Status:         types.DonationStatusPending,
		AmountCents:    sub.AmountCents,
		Currency:       sub.Currency,
		FirstName:      donor.FirstName,
		LastName:       donor.LastName,
		Email:          donor.Email,
		FormID:         sub.FormID,
		LevelID:        sub.LevelID,
		Anonymous:      true,
		Company:        "Analytical Engines",
	}
	require.NoError(t, db.Create(initial).Error)
	return sub, initial
}

func details(txnID string, payNum int, amountCents int64) *gateway.TransactionDetails {
	return &gateway.TransactionDetails{
		TransactionID:         txnID,
		GatewaySubscriptionID: "arb-1",
		PayNum:                payNum,
		AmountCents:           amountCents,
		SubmittedAt:           time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestHandleSubscriptionDonations_FirstPaymentCompletesInitial(t *testing.T) {
	stub := &detailsStub{details: map[string]*gateway.TransactionDetails{
		"t-1": details("t-1", 1, 2500),
	}}
	svc, db := testService(t, stub)
	sub, initial := seedSubscription(t, db, "arb-1", types.SubscriptionStatusPending)

	require.NoError(t, svc.HandleSubscriptionDonations(context.Background(), types.GatewayAuthorize, "t-1", ""))

	var got models.Donation
	require.NoError(t, db.First(&got, "id = ?", initial.ID).Error)
	require.NotNil(t, got.GatewayTransactionID)
	require.Equal(t, "t-1", *got.GatewayTransactionID)
	require.Equal(t, types.DonationStatusComplete, got.Status)

	var gotSub models.Subscription
	require.NoError(t, db.First(&gotSub, "id = ?", sub.ID).Error)
	require.Equal(t, types.SubscriptionStatusActive, gotSub.Status)

	// no renewal row: the first payment lands on the existing initial donation
	var count int64
	require.NoError(t, db.Model(&models.Donation{}).Where("subscription_id = ?", sub.ID).Count(&count).Error)
	require.EqualValues(t, 1, count)

	var notes []models.DonationNote
	require.NoError(t, db.Find(&notes, "donation_id = ?", initial.ID).Error)
	require.NotEmpty(t, notes)
	require.Contains(t, notes[len(notes)-1].Content, "Transaction ID: t-1.")
}

func TestHandleSubscriptionDonations_LaterPaymentCreatesRenewal(t *testing.T) {
	stub := &detailsStub{details: map[string]*gateway.TransactionDetails{
		"t-3": details("t-3", 3, 2500),
	}}
	svc, db := testService(t, stub)
	sub, initial := seedSubscription(t, db, "arb-1", types.SubscriptionStatusActive)
	require.NoError(t, db.Model(&models.Donation{}).Where("id = ?", initial.ID).
		Updates(map[string]any{"gateway_transaction_id": "t-1", "status": types.DonationStatusComplete}).Error)

	require.NoError(t, svc.HandleSubscriptionDonations(context.Background(), types.GatewayAuthorize, "t-3", ""))

	var renewal models.Donation
	require.NoError(t, db.First(&renewal, "gateway_transaction_id = ?", "t-3").Error)
	require.Equal(t, types.DonationTypeRenewal, renewal.Type)
	require.Equal(t, types.DonationStatusRenewal, renewal.Status)
	require.Equal(t, sub.ID, renewal.SubscriptionID)
	require.EqualValues(t, 2500, renewal.AmountCents)

	// donor and form metadata is copied from the initial donation
	require.Equal(t, initial.FirstName, renewal.FirstName)
	require.Equal(t, initial.LastName, renewal.LastName)
	require.Equal(t, initial.Email, renewal.Email)
	require.Equal(t, initial.FormID, renewal.FormID)
	require.Equal(t, initial.LevelID, renewal.LevelID)
	require.Equal(t, initial.Anonymous, renewal.Anonymous)
	require.Equal(t, initial.Company, renewal.Company)
}

func TestHandleSubscriptionDonations_RedeliveryIsNoOp(t *testing.T) {
	stub := &detailsStub{details: map[string]*gateway.TransactionDetails{
		"t-3": details("t-3", 3, 2500),
	}}
	svc, db := testService(t, stub)
	sub, initial := seedSubscription(t, db, "arb-1", types.SubscriptionStatusActive)
	require.NoError(t, db.Model(&models.Donation{}).Where("id = ?", initial.ID).
		Updates(map[string]any{"gateway_transaction_id": "t-1", "status": types.DonationStatusComplete}).Error)

	require.NoError(t, svc.HandleSubscriptionDonations(context.Background(), types.GatewayAuthorize, "t-3", ""))
	require.NoError(t, svc.HandleSubscriptionDonations(context.Background(), types.GatewayAuthorize, "t-3", ""))

	var count int64
	require.NoError(t, db.Model(&models.Donation{}).Where("subscription_id = ?", sub.ID).Count(&count).Error)
	require.EqualValues(t, 2, count)
}

func TestPendingDonationsShareNilTransactionID(t *testing.T) {
	_, db := testService(t, &detailsStub{})
	_, first := seedSubscription(t, db, "arb-1", types.SubscriptionStatusPending)
	_, second := seedSubscription(t, db, "arb-2", types.SubscriptionStatusPending)

	// both rows carry a nil transaction id on the same gateway; the unique
	// index only bites once ids are assigned
	require.Nil(t, first.GatewayTransactionID)
	require.Nil(t, second.GatewayTransactionID)
	require.Equal(t, first.GatewayID, second.GatewayID)

	var count int64
	require.NoError(t, db.Model(&models.Donation{}).
		Where("gateway_id = ? AND gateway_transaction_id IS NULL", types.GatewayAuthorize).
		Count(&count).Error)
	require.EqualValues(t, 2, count)
}

func TestDonationNote(t *testing.T) {
	require.Equal(t, "Subscription Donation Completed.", donationNote("", ""))
	require.Equal(t, "Subscription Donation Completed. Transaction ID: t-9.", donationNote("", "t-9"))
	require.Equal(t, "Card captured. Transaction ID: t-9.", donationNote("Card captured.", "t-9"))
	require.Equal(t, "Card captured.", donationNote("Card captured.", ""))
}
