package plaid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fatflowers/pledger/internal/gateway"
	"github.com/fatflowers/pledger/pkg/metrics"
)

const (
	liveBaseURL    = "https://production.plaid.com"
	sandboxBaseURL = "https://sandbox.plaid.com"
)

// Client is the JSON client for the bank-transfer API. Every call is a POST
// with the client credentials in the body.
type Client struct {
	clientID   string
	secret     string
	baseURL    string
	httpClient *http.Client
}

func NewClient(clientID, secret string, sandbox bool) *Client {
	base := liveBaseURL
	if sandbox {
		base = sandboxBaseURL
	}
	return &Client{
		clientID:   clientID,
		secret:     secret,
		baseURL:    base,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type apiErrorBody struct {
	ErrorType    string `json:"error_type"`
	ErrorCode    string `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

// do posts one JSON request, injecting credentials. Error bodies are decoded
// into *GatewayError.
func (c *Client) do(ctx context.Context, operation, path string, reqBody map[string]any, respBody any) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveGatewayRequest("plaid", operation, start, err) }()

	reqBody["client_id"] = c.clientID
	reqBody["secret"] = c.secret
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

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
		var apiErr apiErrorBody
		if err := json.Unmarshal(raw, &apiErr); err == nil && apiErr.ErrorCode != "" {
			return &gateway.GatewayError{Code: apiErr.ErrorCode, Message: apiErr.ErrorMessage}
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

// transferSchedule describes the recurring cadence. Units are day and month,
// mirroring the interval translator's vocabulary.
type transferSchedule struct {
	IntervalUnit  string `json:"interval_unit"`
	IntervalCount int    `json:"interval_count"`
	// TotalCount bounds the schedule; 0 means unbounded.
	TotalCount int `json:"total_count,omitempty"`
}

type recurringTransfer struct {
	RecurringTransferID string            `json:"recurring_transfer_id"`
	Status              string            `json:"status"`
	Amount              string            `json:"amount"`
	ISOCurrencyCode     string            `json:"iso_currency_code"`
	Schedule            *transferSchedule `json:"schedule"`
	AccountMask         string            `json:"account_mask"`
	Created             string            `json:"created"`
}

type recurringTransferEnvelope struct {
	RecurringTransfer *recurringTransfer `json:"recurring_transfer"`
}

func (c *Client) createRecurringTransfer(ctx context.Context, body map[string]any) (*recurringTransfer, error) {
	var resp recurringTransferEnvelope
	if err := c.do(ctx, "recurring_create", "/transfer/recurring/create", body, &resp); err != nil {
		return nil, err
	}
	return resp.RecurringTransfer, nil
}

func (c *Client) cancelRecurringTransfer(ctx context.Context, id string) error {
	return c.do(ctx, "recurring_cancel", "/transfer/recurring/cancel",
		map[string]any{"recurring_transfer_id": id}, nil)
}

func (c *Client) updateRecurringTransfer(ctx context.Context, id string, fields map[string]any) error {
	body := map[string]any{"recurring_transfer_id": id}
	for k, v := range fields {
		body[k] = v
	}
	return c.do(ctx, "recurring_update", "/transfer/recurring/update", body, nil)
}

func (c *Client) getRecurringTransfer(ctx context.Context, id string) (*recurringTransfer, error) {
	var resp recurringTransferEnvelope
	err := c.do(ctx, "recurring_get", "/transfer/recurring/get",
		map[string]any{"recurring_transfer_id": id}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.RecurringTransfer, nil
}

// transferObject is a single executed transfer. Occurrence is the 1-based
// ordinal within the recurring schedule.
type transferObject struct {
	TransferID          string `json:"transfer_id"`
	RecurringTransferID string `json:"recurring_transfer_id"`
	Occurrence          int    `json:"occurrence"`
	Status              string `json:"status"`
	Amount              string `json:"amount"`
	Created             string `json:"created"`
}

type transferEnvelope struct {
	Transfer *transferObject `json:"transfer"`
}

func (c *Client) getTransfer(ctx context.Context, id string) (*transferObject, error) {
	var resp transferEnvelope
	if err := c.do(ctx, "transfer_get", "/transfer/get", map[string]any{"transfer_id": id}, &resp); err != nil {
		return nil, err
	}
	return resp.Transfer, nil
}

type transferListEnvelope struct {
	Transfers []transferObject `json:"transfers"`
}

const transferListPageSize = 25

// listTransfers pages through executed transfers in [start, end).
func (c *Client) listTransfers(ctx context.Context, start, end time.Time) ([]transferObject, error) {
	var out []transferObject
	offset := 0
	for {
		var resp transferListEnvelope
		err := c.do(ctx, "transfer_list", "/transfer/list", map[string]any{
			"start_date": start.UTC().Format(time.RFC3339),
			"end_date":   end.UTC().Format(time.RFC3339),
			"count":      transferListPageSize,
			"offset":     offset,
		}, &resp)
		if err != nil {
			return nil, err
		}
		out = append(out, resp.Transfers...)
		if len(resp.Transfers) < transferListPageSize {
			return out, nil
		}
		offset += transferListPageSize
	}
}
