package handlers

import (
	"github.com/fatflowers/pledger/internal/app/service/donation"
	"github.com/fatflowers/pledger/internal/app/service/statistics"
	"github.com/fatflowers/pledger/internal/app/service/subscription"
	syncsvc "github.com/fatflowers/pledger/internal/app/service/sync"
	"github.com/fatflowers/pledger/pkg/response"
)

// RespOK is a generic OK envelope for endpoints returning no specific data.
type RespOK struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    interface{}              `json:"data"`
}

// RespCreateSubscription wraps the purchase pipeline result in the standard envelope.
type RespCreateSubscription struct {
	Code    response.APIResponseCode  `json:"code"`
	Message string                    `json:"message"`
	Data    subscription.CreateResult `json:"data"`
}

// RespSyncReport wraps a reconciliation report in the standard envelope.
type RespSyncReport struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    syncsvc.Report           `json:"data"`
}

// RespListDonations wraps ScanDonationsResponse in the standard envelope.
type RespListDonations struct {
	Code    response.APIResponseCode       `json:"code"`
	Message string                         `json:"message"`
	Data    donation.ScanDonationsResponse `json:"data"`
}

// RespDonationStatistic wraps DonationStatisticResponse in the standard envelope.
type RespDonationStatistic struct {
	Code    response.APIResponseCode             `json:"code"`
	Message string                               `json:"message"`
	Data    statistics.DonationStatisticResponse `json:"data"`
}
