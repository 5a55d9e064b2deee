package authorize

import (
	"context"
	"encoding/xml"
)

// ARB XML request/response shapes. Field order matters: the endpoint
// validates elements against its schema sequence.

type scheduleInterval struct {
	Length int    `xml:"length"`
	Unit   string `xml:"unit"`
}

type paymentSchedule struct {
	Interval         *scheduleInterval `xml:"interval,omitempty"`
	StartDate        string            `xml:"startDate,omitempty"`
	TotalOccurrences int               `xml:"totalOccurrences,omitempty"`
}

type creditCard struct {
	CardNumber     string `xml:"cardNumber"`
	ExpirationDate string `xml:"expirationDate"`
	CardCode       string `xml:"cardCode,omitempty"`
}

type arbPayment struct {
	CreditCard *creditCard `xml:"creditCard,omitempty"`
}

type arbOrder struct {
	Description string `xml:"description,omitempty"`
}

type arbCustomer struct {
	ID    string `xml:"id,omitempty"`
	Email string `xml:"email,omitempty"`
}

type nameAndAddress struct {
	FirstName string `xml:"firstName,omitempty"`
	LastName  string `xml:"lastName,omitempty"`
	Address   string `xml:"address,omitempty"`
	City      string `xml:"city,omitempty"`
	State     string `xml:"state,omitempty"`
	Zip       string `xml:"zip,omitempty"`
}

type arbSubscription struct {
	Name            string           `xml:"name,omitempty"`
	PaymentSchedule *paymentSchedule `xml:"paymentSchedule,omitempty"`
	Amount          string           `xml:"amount,omitempty"`
	Payment         *arbPayment      `xml:"payment,omitempty"`
	Order           *arbOrder        `xml:"order,omitempty"`
	Customer        *arbCustomer     `xml:"customer,omitempty"`
	BillTo          *nameAndAddress  `xml:"billTo,omitempty"`
}

type arbCreateSubscriptionRequest struct {
	XMLName xml.Name `xml:"ARBCreateSubscriptionRequest"`
	Xmlns   string   `xml:"xmlns,attr"`

	MerchantAuthentication merchantAuthentication `xml:"merchantAuthentication"`
	RefID                  string                 `xml:"refId,omitempty"`
	Subscription           arbSubscription        `xml:"subscription"`
}

type arbCreateSubscriptionResponse struct {
	responseCore
	SubscriptionID string `xml:"subscriptionId"`
}

type arbCancelSubscriptionRequest struct {
	XMLName xml.Name `xml:"ARBCancelSubscriptionRequest"`
	Xmlns   string   `xml:"xmlns,attr"`

	MerchantAuthentication merchantAuthentication `xml:"merchantAuthentication"`
	SubscriptionID         string                 `xml:"subscriptionId"`
}

type arbCancelSubscriptionResponse struct {
	responseCore
}

type arbUpdateSubscriptionRequest struct {
	XMLName xml.Name `xml:"ARBUpdateSubscriptionRequest"`
	Xmlns   string   `xml:"xmlns,attr"`

	MerchantAuthentication merchantAuthentication `xml:"merchantAuthentication"`
	SubscriptionID         string                 `xml:"subscriptionId"`
	Subscription           arbSubscription        `xml:"subscription"`
}

type arbUpdateSubscriptionResponse struct {
	responseCore
}

type arbProfileRef struct {
	CustomerProfileID        string `xml:"customerProfileId"`
	CustomerPaymentProfileID string `xml:"customerPaymentProfileId"`
}

type arbGetSubscription struct {
	Name            string           `xml:"name"`
	PaymentSchedule *paymentSchedule `xml:"paymentSchedule"`
	Amount          string           `xml:"amount"`
	Status          string           `xml:"status"`
	Profile         *arbProfileRef   `xml:"profile"`
}

type arbGetSubscriptionRequest struct {
	XMLName xml.Name `xml:"ARBGetSubscriptionRequest"`
	Xmlns   string   `xml:"xmlns,attr"`

	MerchantAuthentication merchantAuthentication `xml:"merchantAuthentication"`
	SubscriptionID         string                 `xml:"subscriptionId"`
}

type arbGetSubscriptionResponse struct {
	responseCore
	Subscription arbGetSubscription `xml:"subscription"`
}

type txnSubscriptionRef struct {
	ID     string `xml:"id"`
	PayNum int    `xml:"payNum"`
}

type transactionDetail struct {
	TransID           string              `xml:"transId"`
	SubmitTimeUTC     string              `xml:"submitTimeUTC"`
	TransactionStatus string              `xml:"transactionStatus"`
	SettleAmount      string              `xml:"settleAmount"`
	AuthAmount        string              `xml:"authAmount"`
	Subscription      *txnSubscriptionRef `xml:"subscription"`
}

type getTransactionDetailsRequest struct {
	XMLName xml.Name `xml:"getTransactionDetailsRequest"`
	Xmlns   string   `xml:"xmlns,attr"`

	MerchantAuthentication merchantAuthentication `xml:"merchantAuthentication"`
	TransID                string                 `xml:"transId"`
}

type getTransactionDetailsResponse struct {
	responseCore
	Transaction transactionDetail `xml:"transaction"`
}

type getSettledBatchListRequest struct {
	XMLName xml.Name `xml:"getSettledBatchListRequest"`
	Xmlns   string   `xml:"xmlns,attr"`

	MerchantAuthentication merchantAuthentication `xml:"merchantAuthentication"`
	FirstSettlementDate    string                 `xml:"firstSettlementDate"`
	LastSettlementDate     string                 `xml:"lastSettlementDate"`
}

type settledBatch struct {
	BatchID           string `xml:"batchId"`
	SettlementTimeUTC string `xml:"settlementTimeUTC"`
	SettlementState   string `xml:"settlementState"`
}

type getSettledBatchListResponse struct {
	responseCore
	BatchList []settledBatch `xml:"batchList>batch"`
}

type getTransactionListRequest struct {
	XMLName xml.Name `xml:"getTransactionListRequest"`
	Xmlns   string   `xml:"xmlns,attr"`

	MerchantAuthentication merchantAuthentication `xml:"merchantAuthentication"`
	BatchID                string                 `xml:"batchId"`
}

type getTransactionListResponse struct {
	responseCore
	Transactions []transactionDetail `xml:"transactions>transaction"`
}

func (c *Client) createSubscription(ctx context.Context, refID string, sub arbSubscription) (*arbCreateSubscriptionResponse, error) {
	req := arbCreateSubscriptionRequest{
		Xmlns:                  xmlns,
		MerchantAuthentication: c.auth(),
		RefID:                  refID,
		Subscription:           sub,
	}
	var resp arbCreateSubscriptionResponse
	if err := c.do(ctx, "arb_create", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) cancelSubscription(ctx context.Context, subscriptionID string) error {
	req := arbCancelSubscriptionRequest{
		Xmlns:                  xmlns,
		MerchantAuthentication: c.auth(),
		SubscriptionID:         subscriptionID,
	}
	var resp arbCancelSubscriptionResponse
	return c.do(ctx, "arb_cancel", req, &resp)
}

func (c *Client) updateSubscription(ctx context.Context, subscriptionID string, sub arbSubscription) error {
	req := arbUpdateSubscriptionRequest{
		Xmlns:                  xmlns,
		MerchantAuthentication: c.auth(),
		SubscriptionID:         subscriptionID,
		Subscription:           sub,
	}
	var resp arbUpdateSubscriptionResponse
	return c.do(ctx, "arb_update", req, &resp)
}

func (c *Client) getSubscription(ctx context.Context, subscriptionID string) (*arbGetSubscription, error) {
	req := arbGetSubscriptionRequest{
		Xmlns:                  xmlns,
		MerchantAuthentication: c.auth(),
		SubscriptionID:         subscriptionID,
	}
	var resp arbGetSubscriptionResponse
	if err := c.do(ctx, "arb_get", req, &resp); err != nil {
		return nil, err
	}
	return &resp.Subscription, nil
}

func (c *Client) getTransactionDetails(ctx context.Context, transID string) (*transactionDetail, error) {
	req := getTransactionDetailsRequest{
		Xmlns:                  xmlns,
		MerchantAuthentication: c.auth(),
		TransID:                transID,
	}
	var resp getTransactionDetailsResponse
	if err := c.do(ctx, "get_transaction_details", req, &resp); err != nil {
		return nil, err
	}
	return &resp.Transaction, nil
}

func (c *Client) getSettledBatchList(ctx context.Context, first, last string) ([]settledBatch, error) {
	req := getSettledBatchListRequest{
		Xmlns:                  xmlns,
		MerchantAuthentication: c.auth(),
		FirstSettlementDate:    first,
		LastSettlementDate:     last,
	}
	var resp getSettledBatchListResponse
	if err := c.do(ctx, "get_settled_batch_list", req, &resp); err != nil {
		return nil, err
	}
	return resp.BatchList, nil
}

func (c *Client) getTransactionList(ctx context.Context, batchID string) ([]transactionDetail, error) {
	req := getTransactionListRequest{
		Xmlns:                  xmlns,
		MerchantAuthentication: c.auth(),
		BatchID:                batchID,
	}
	var resp getTransactionListResponse
	if err := c.do(ctx, "get_transaction_list", req, &resp); err != nil {
		return nil, err
	}
	return resp.Transactions, nil
}

// Customer payment profile lookup. This endpoint accepts JSON, which is the
// only place the adapter needs it; the ARB calls above stay XML.

type getCustomerPaymentProfileRequest struct {
	MerchantAuthentication   merchantAuthentication `json:"merchantAuthentication"`
	CustomerProfileID        string                 `json:"customerProfileId"`
	CustomerPaymentProfileID string                 `json:"customerPaymentProfileId"`
}

type paymentProfileCard struct {
	CardNumber     string `json:"cardNumber"`
	ExpirationDate string `json:"expirationDate"`
	CardType       string `json:"cardType"`
}

type getCustomerPaymentProfileResponse struct {
	Messages       messagesType `json:"messages"`
	PaymentProfile struct {
		Payment struct {
			CreditCard *paymentProfileCard `json:"creditCard"`
		} `json:"payment"`
	} `json:"paymentProfile"`
}

func (c *Client) getCustomerPaymentProfile(ctx context.Context, profileID, paymentProfileID string) (*paymentProfileCard, error) {
	req := struct {
		Request getCustomerPaymentProfileRequest `json:"getCustomerPaymentProfileRequest"`
	}{
		Request: getCustomerPaymentProfileRequest{
			MerchantAuthentication:   c.auth(),
			CustomerProfileID:        profileID,
			CustomerPaymentProfileID: paymentProfileID,
		},
	}
	var resp getCustomerPaymentProfileResponse
	if err := c.doJSON(ctx, "get_payment_profile", req, &resp); err != nil {
		return nil, err
	}
	if err := checkMessages(resp.Messages); err != nil {
		return nil, err
	}
	return resp.PaymentProfile.Payment.CreditCard, nil
}
