package types

// GatewayID identifies a payment gateway adapter.
type GatewayID string

const (
	// GatewayAuthorize is the card-network ARB/XML gateway.
	GatewayAuthorize GatewayID = "authorize"
	// GatewaySquare is the card-present/point-of-sale gateway.
	GatewaySquare GatewayID = "square"
	// GatewayPlaid is the bank-linked ACH gateway.
	GatewayPlaid GatewayID = "plaid"
)
