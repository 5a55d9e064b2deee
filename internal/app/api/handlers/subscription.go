package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fatflowers/pledger/internal/app/service/subscription"
	syncsvc "github.com/fatflowers/pledger/internal/app/service/sync"
	"github.com/fatflowers/pledger/internal/gateway"
	"github.com/fatflowers/pledger/pkg/response"
)

// respondServiceError maps service failures onto the response envelope.
// Input problems come back as bad-request so the donor-facing form can show
// them; everything else is an opaque server error.
func respondServiceError(c *gin.Context, err error) {
	var ve *gateway.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, ve.Error()))
		return
	}
	c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
}

// @Summary      Create Subscription
// @Description  Submits a recurring donation purchase: persists the pending records and creates the subscription at the selected payment gateway.
// @Tags         Subscription
// @Accept       json
// @Produce      json
// @Param        request body subscription.CreateRequest true "Purchase submission"
// @Success      200  {object}  handlers.RespCreateSubscription
// @Router       /api/v1/subscription/create [post]
func ApiCreateSubscription(svc *subscription.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req subscription.CreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		res, err := svc.Create(c.Request.Context(), &req)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

type SubscriptionActionRequest struct {
	SubscriptionID string `json:"subscription_id"`
}

// @Summary      Cancel Subscription
// @Description  Cancels the subscription at its payment gateway, then locally.
// @Tags         Subscription
// @Accept       json
// @Produce      json
// @Param        request body SubscriptionActionRequest true "Cancel request"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/subscription/cancel [post]
func ApiCancelSubscription(svc *subscription.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SubscriptionActionRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.SubscriptionID == "" {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "missing subscription_id"))
			return
		}
		if err := svc.Cancel(c.Request.Context(), req.SubscriptionID); err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT[any](nil))
	}
}

type UpdateAmountRequest struct {
	SubscriptionID string `json:"subscription_id"`
	AmountCents    int64  `json:"amount_cents"`
}

// @Summary      Update Subscription Amount
// @Description  Changes the recurring amount at the payment gateway, then locally.
// @Tags         Subscription
// @Accept       json
// @Produce      json
// @Param        request body UpdateAmountRequest true "Amount update request"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/subscription/update_amount [post]
func ApiUpdateSubscriptionAmount(svc *subscription.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateAmountRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.SubscriptionID == "" {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "missing subscription_id"))
			return
		}
		if err := svc.UpdateAmount(c.Request.Context(), req.SubscriptionID, req.AmountCents); err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT[any](nil))
	}
}

type UpdatePaymentMethodRequest struct {
	SubscriptionID string                `json:"subscription_id"`
	PaymentMethod  gateway.PaymentMethod `json:"payment_method"`
}

// @Summary      Update Payment Method
// @Description  Swaps the payment instrument at the payment gateway. Instrument details are forwarded, never stored.
// @Tags         Subscription
// @Accept       json
// @Produce      json
// @Param        request body UpdatePaymentMethodRequest true "Payment method update request"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/subscription/update_payment_method [post]
func ApiUpdatePaymentMethod(svc *subscription.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdatePaymentMethodRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.SubscriptionID == "" {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "missing subscription_id"))
			return
		}
		if err := svc.UpdatePaymentMethod(c.Request.Context(), req.SubscriptionID, req.PaymentMethod); err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT[any](nil))
	}
}

// @Summary      Synchronize Subscription
// @Description  Reconciles the subscription with its payment gateway: refreshes status and billing terms and backfills settled renewals missed by webhooks.
// @Tags         Subscription
// @Accept       json
// @Produce      json
// @Param        request body SubscriptionActionRequest true "Sync request"
// @Success      200  {object}  handlers.RespSyncReport
// @Router       /api/v1/subscription/sync [post]
func ApiSyncSubscription(svc *syncsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SubscriptionActionRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.SubscriptionID == "" {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "missing subscription_id"))
			return
		}
		report, err := svc.SyncSubscription(c.Request.Context(), req.SubscriptionID)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(report))
	}
}

func RegisterSubscriptionRoutes(r gin.IRouter, sub *subscription.Service, sync *syncsvc.Service) {
	r.POST("/create", ApiCreateSubscription(sub))
	r.POST("/cancel", ApiCancelSubscription(sub))
	r.POST("/update_amount", ApiUpdateSubscriptionAmount(sub))
	r.POST("/update_payment_method", ApiUpdatePaymentMethod(sub))
	r.POST("/sync", ApiSyncSubscription(sync))
}
