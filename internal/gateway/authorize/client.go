package authorize

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fatflowers/pledger/internal/gateway"
	"github.com/fatflowers/pledger/pkg/metrics"
)

const (
	liveEndpoint    = "https://api.authorize.net/xml/v1/request.api"
	sandboxEndpoint = "https://apitest.authorize.net/xml/v1/request.api"

	xmlns = "AnetApi/xml/v1/schema/AnetApiSchema.xsd"

	// reportingDisabledCode is returned when the merchant account has no
	// permission to call the Transaction Details API.
	reportingDisabledCode = "E00011"
)

// Client speaks the ARB XML protocol plus the JSON profile lookups against
// a single merchant account.
type Client struct {
	apiLoginID     string
	transactionKey string
	endpoint       string
	httpClient     *http.Client
}

func NewClient(apiLoginID, transactionKey string, sandbox bool) *Client {
	endpoint := liveEndpoint
	if sandbox {
		endpoint = sandboxEndpoint
	}
	return &Client{
		apiLoginID:     apiLoginID,
		transactionKey: transactionKey,
		endpoint:       endpoint,
		httpClient:     &http.Client{Timeout: 30 * time.Second},
	}
}

type merchantAuthentication struct {
	Name           string `xml:"name" json:"name"`
	TransactionKey string `xml:"transactionKey" json:"transactionKey"`
}

func (c *Client) auth() merchantAuthentication {
	return merchantAuthentication{Name: c.apiLoginID, TransactionKey: c.transactionKey}
}

type messageType struct {
	Code string `xml:"code" json:"code"`
	Text string `xml:"text" json:"text"`
}

type messagesType struct {
	ResultCode string        `xml:"resultCode" json:"resultCode"`
	Message    []messageType `xml:"message" json:"message"`
}

// responseCore is embedded by every XML response type.
type responseCore struct {
	Messages messagesType `xml:"messages"`
}

func (r responseCore) core() responseCore { return r }

type apiResponse interface{ core() responseCore }

// do posts one XML request and decodes the response. A transport failure
// maps to ErrUnresponsiveGateway; an error resultCode maps to *GatewayError
// (or ErrReportingDisabled for the reporting-permission code).
func (c *Client) do(ctx context.Context, operation string, reqBody any, respBody apiResponse) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveGatewayRequest("authorize", operation, start, err) }()

	payload, err := xml.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", operation, err)
	}
	payload = append([]byte(xml.Header), payload...)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "text/xml")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", gateway.ErrUnresponsiveGateway, operation, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", gateway.ErrUnresponsiveGateway, operation, err)
	}

	// The API answers with a UTF-8 BOM on some accounts.
	body = bytes.TrimPrefix(body, []byte("\xef\xbb\xbf"))

	if err := xml.Unmarshal(body, respBody); err != nil {
		return &gateway.GatewayError{Code: "malformed_response", Message: err.Error()}
	}

	return checkMessages(respBody.core().Messages)
}

func checkMessages(m messagesType) error {
	if !isError(m) {
		return nil
	}
	code, text := firstMessage(m)
	if code == reportingDisabledCode {
		return fmt.Errorf("%w: %s %s", gateway.ErrReportingDisabled, code, text)
	}
	return &gateway.GatewayError{Code: code, Message: text}
}

func isError(m messagesType) bool {
	return m.ResultCode != "Ok"
}

func firstMessage(m messagesType) (code, text string) {
	if len(m.Message) == 0 {
		return "unknown", "no message in response"
	}
	return m.Message[0].Code, m.Message[0].Text
}

// doJSON posts one JSON request (customer/payment-profile endpoints share
// the XML endpoint but accept JSON bodies).
func (c *Client) doJSON(ctx context.Context, operation string, reqBody any, respBody any) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveGatewayRequest("authorize", operation, start, err) }()

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", gateway.ErrUnresponsiveGateway, operation, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", gateway.ErrUnresponsiveGateway, operation, err)
	}
	body = bytes.TrimPrefix(body, []byte("\xef\xbb\xbf"))

	if err := json.Unmarshal(body, respBody); err != nil {
		return &gateway.GatewayError{Code: "malformed_response", Message: err.Error()}
	}
	return nil
}
