package square

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/fatflowers/pledger/internal/gateway"
	"github.com/fatflowers/pledger/pkg/metrics"
)

const (
	liveBaseURL    = "https://connect.squareup.com"
	sandboxBaseURL = "https://connect.squareupsandbox.com"

	apiVersion = "2024-06-04"
)

// Client is a thin bearer-token JSON client for the POS gateway REST API.
type Client struct {
	accessToken string
	baseURL     string
	httpClient  *http.Client
}

func NewClient(accessToken string, sandbox bool) *Client {
	base := liveBaseURL
	if sandbox {
		base = sandboxBaseURL
	}
	return &Client{
		accessToken: accessToken,
		baseURL:     base,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
	}
}

type apiError struct {
	Category string `json:"category"`
	Code     string `json:"code"`
	Detail   string `json:"detail"`
}

type errorEnvelope struct {
	Errors []apiError `json:"errors"`
}

// do performs one JSON call. The error envelope is decoded on any non-2xx
// status and surfaced as *GatewayError.
func (c *Client) do(ctx context.Context, operation, method, path string, query url.Values, reqBody, respBody any) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveGatewayRequest("square", operation, start, err) }()

	var body io.Reader
	if reqBody != nil {
		payload, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("failed to marshal %s: %w", operation, err)
		}
		body = bytes.NewReader(payload)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Square-Version", apiVersion)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", gateway.ErrUnresponsiveGateway, operation, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", gateway.ErrUnresponsiveGateway, operation, err)
	}

	if res.StatusCode >= 400 {
		var envelope errorEnvelope
		if err := json.Unmarshal(raw, &envelope); err == nil && len(envelope.Errors) > 0 {
			first := envelope.Errors[0]
			return &gateway.GatewayError{Code: first.Code, Message: first.Detail}
		}
		return &gateway.GatewayError{Code: fmt.Sprintf("http_%d", res.StatusCode), Message: string(raw)}
	}

	if respBody == nil {
		return nil
	}
	if err := json.Unmarshal(raw, respBody); err != nil {
		return &gateway.GatewayError{Code: "malformed_response", Message: err.Error()}
	}
	return nil
}

// money is the integer-cents amount shape used across the API.
type money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type cardDetails struct {
	Number   string `json:"number,omitempty"`
	ExpMonth string `json:"exp_month,omitempty"`
	ExpYear  string `json:"exp_year,omitempty"`
	CVV      string `json:"cvv,omitempty"`
	Zip      string `json:"postal_code,omitempty"`

	Last4    string `json:"last_4,omitempty"`
	Brand    string `json:"card_brand,omitempty"`
}

type subscriptionObject struct {
	ID             string       `json:"id"`
	LocationID     string       `json:"location_id"`
	Status         string       `json:"status"`
	StartDate      string       `json:"start_date,omitempty"`
	Cadence        string       `json:"cadence,omitempty"`
	CadenceCount   int          `json:"cadence_count,omitempty"`
	MaxPeriods     int          `json:"max_periods,omitempty"`
	PriceOverride  *money       `json:"price_override_money,omitempty"`
	Card           *cardDetails `json:"card,omitempty"`
	CustomerEmail  string       `json:"customer_email,omitempty"`
	CustomerName   string       `json:"customer_name,omitempty"`
	ReferenceID    string       `json:"reference_id,omitempty"`
	LatestPaymentID string      `json:"latest_payment_id,omitempty"`
	CreatedAt      string       `json:"created_at,omitempty"`
}

type subscriptionEnvelope struct {
	Subscription *subscriptionObject `json:"subscription"`
}

type createSubscriptionRequest struct {
	IdempotencyKey string             `json:"idempotency_key"`
	Subscription   subscriptionObject `json:"subscription"`
}

func (c *Client) createSubscription(ctx context.Context, idempotencyKey string, sub subscriptionObject) (*subscriptionObject, error) {
	var resp subscriptionEnvelope
	err := c.do(ctx, "create_subscription", http.MethodPost, "/v2/subscriptions", nil,
		createSubscriptionRequest{IdempotencyKey: idempotencyKey, Subscription: sub}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Subscription, nil
}

func (c *Client) cancelSubscription(ctx context.Context, id string) error {
	return c.do(ctx, "cancel_subscription", http.MethodPost, "/v2/subscriptions/"+id+"/cancel", nil, nil, nil)
}

type updateSubscriptionRequest struct {
	Subscription subscriptionObject `json:"subscription"`
}

func (c *Client) updateSubscription(ctx context.Context, id string, sub subscriptionObject) error {
	return c.do(ctx, "update_subscription", http.MethodPut, "/v2/subscriptions/"+id, nil,
		updateSubscriptionRequest{Subscription: sub}, nil)
}

func (c *Client) retrieveSubscription(ctx context.Context, id string) (*subscriptionObject, error) {
	var resp subscriptionEnvelope
	if err := c.do(ctx, "retrieve_subscription", http.MethodGet, "/v2/subscriptions/"+id, nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Subscription, nil
}

// paymentObject is a settled charge. SequenceNumber is the 1-based ordinal
// of the payment within its subscription.
type paymentObject struct {
	ID             string `json:"id"`
	SubscriptionID string `json:"subscription_id"`
	SequenceNumber int    `json:"sequence_number"`
	Status         string `json:"status"`
	AmountMoney    *money `json:"amount_money"`
	CreatedAt      string `json:"created_at"`
}

type paymentEnvelope struct {
	Payment *paymentObject `json:"payment"`
}

func (c *Client) getPayment(ctx context.Context, id string) (*paymentObject, error) {
	var resp paymentEnvelope
	if err := c.do(ctx, "get_payment", http.MethodGet, "/v2/payments/"+id, nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Payment, nil
}

type paymentListEnvelope struct {
	Payments []paymentObject `json:"payments"`
	Cursor   string          `json:"cursor"`
}

// listPayments pages through the settled payments of one location in a time
// window. Filtering by subscription happens caller-side.
func (c *Client) listPayments(ctx context.Context, locationID string, begin, end time.Time) ([]paymentObject, error) {
	var out []paymentObject
	cursor := ""
	for {
		query := url.Values{}
		query.Set("location_id", locationID)
		query.Set("begin_time", begin.UTC().Format(time.RFC3339))
		query.Set("end_time", end.UTC().Format(time.RFC3339))
		if cursor != "" {
			query.Set("cursor", cursor)
		}
		var resp paymentListEnvelope
		if err := c.do(ctx, "list_payments", http.MethodGet, "/v2/payments", query, nil, &resp); err != nil {
			return nil, err
		}
		out = append(out, resp.Payments...)
		if resp.Cursor == "" {
			return out, nil
		}
		cursor = resp.Cursor
	}
}
