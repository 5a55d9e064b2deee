package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fatflowers/pledger/internal/app/service/donation"
	"github.com/fatflowers/pledger/internal/app/service/statistics"
	"github.com/fatflowers/pledger/pkg/response"
	"github.com/fatflowers/pledger/pkg/types"
)

type ListDonationsRequest struct {
	Filters   []*types.CommonFilter `json:"filters"`
	From      int                   `json:"from"`
	Size      int                   `json:"size"`
	SortBy    string                `json:"sort_by"`
	SortOrder string                `json:"sort_order"`
}

// @Summary      List Donations (Admin)
// @Description  Retrieves a paginated and filterable list of donations across all subscriptions.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body ListDonationsRequest true "List donations request with filters, pagination, and sorting"
// @Success      200  {object}  handlers.RespListDonations
// @Router       /api/v1/admin/list_donations [post]
func ApiListDonations(svc *donation.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ListDonationsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		scanReq := &donation.ScanDonationsRequest{Filters: req.Filters, From: req.From, Size: req.Size, SortBy: req.SortBy, SortOrder: req.SortOrder}
		res, err := svc.ScanDonations(c.Request.Context(), scanReq)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      Get Donation Statistics (Admin)
// @Description  Retrieves daily donation statistics.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body statistics.DonationStatisticRequest true "Statistic request parameters"
// @Success      200  {object}  handlers.RespDonationStatistic
// @Router       /api/v1/admin/get_donation_statistic [post]
func ApiGetDonationStatistic(svc *statistics.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req statistics.DonationStatisticRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		res, err := svc.GetDonationStatistic(c.Request.Context(), &req)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

func RegisterAdminRoutes(r gin.IRouter, donations *donation.Service, stats *statistics.Service) {
	r.POST("/list_donations", ApiListDonations(donations))
	r.POST("/get_donation_statistic", ApiGetDonationStatistic(stats))
}
