package gateway

import (
	"context"
	"net/http"
	"testing"
	"time"

	models "github.com/fatflowers/pledger/internal/models"
	"github.com/fatflowers/pledger/pkg/types"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubGateway struct {
	id types.GatewayID
}

func (s *stubGateway) ID() types.GatewayID { return s.id }
func (s *stubGateway) CreateSubscription(context.Context, *models.Donation, *models.Subscription, PaymentMethod) (*CreateResult, error) {
	return nil, nil
}
func (s *stubGateway) CancelSubscription(context.Context, *models.Subscription) error { return nil }
func (s *stubGateway) UpdateSubscriptionAmount(context.Context, *models.Subscription, int64) error {
	return nil
}
func (s *stubGateway) UpdatePaymentMethod(context.Context, *models.Donor, *models.Subscription, PaymentMethod) error {
	return nil
}
func (s *stubGateway) SynchronizeSubscription(context.Context, *models.Subscription) (*SubscriptionSnapshot, error) {
	return nil, nil
}
func (s *stubGateway) GetTransactionDetails(context.Context, string) (*TransactionDetails, error) {
	return nil, nil
}
func (s *stubGateway) FetchRemoteTransactions(context.Context, *models.Subscription, time.Time, time.Time) (map[string]RemoteTransaction, error) {
	return nil, nil
}
func (s *stubGateway) ParseWebhook(*http.Request, []byte) ([]Event, error) { return nil, nil }
func (s *stubGateway) CanCancel(*models.Subscription) bool                 { return false }
func (s *stubGateway) CanUpdateAmount(*models.Subscription) bool           { return false }
func (s *stubGateway) CanUpdatePaymentMethod(*models.Subscription) bool    { return false }
func (s *stubGateway) CanSync(*models.Subscription) bool                   { return false }

func TestRegistry_GetRegistered(t *testing.T) {
	r := NewRegistry(zap.NewNop().Sugar())
	r.Register(&stubGateway{id: types.GatewaySquare})

	g, ok := r.Get(types.GatewaySquare)
	require.True(t, ok)
	require.Equal(t, types.GatewaySquare, g.ID())
}

func TestRegistry_GetUnregistered(t *testing.T) {
	r := NewRegistry(zap.NewNop().Sugar())
	_, ok := r.Get(types.GatewayPlaid)
	require.False(t, ok)
}

func TestRegistry_IgnoresNil(t *testing.T) {
	r := NewRegistry(zap.NewNop().Sugar())
	r.Register(nil)
	require.Empty(t, r.IDs())
}
