package gateway

import (
	"github.com/fatflowers/pledger/pkg/types"
	"go.uber.org/zap"
)

// Registry maps gateway ids to adapters. It is populated once at startup;
// an adapter whose credentials are absent is simply never registered, so
// lookups fail softly instead of initialization crashing.
type Registry struct {
	log      *zap.SugaredLogger
	gateways map[types.GatewayID]SubscriptionGateway
}

func NewRegistry(log *zap.SugaredLogger) *Registry {
	return &Registry{log: log, gateways: make(map[types.GatewayID]SubscriptionGateway)}
}

func (r *Registry) Register(g SubscriptionGateway) {
	if g == nil {
		return
	}
	r.gateways[g.ID()] = g
	r.log.Infow("gateway registered", "gateway", g.ID())
}

// Get returns the adapter for id, or false when that gateway is not
// registered in this deployment.
func (r *Registry) Get(id types.GatewayID) (SubscriptionGateway, bool) {
	g, ok := r.gateways[id]
	return g, ok
}

// IDs returns the registered gateway ids.
func (r *Registry) IDs() []types.GatewayID {
	ids := make([]types.GatewayID, 0, len(r.gateways))
	for id := range r.gateways {
		ids = append(ids, id)
	}
	return ids
}
