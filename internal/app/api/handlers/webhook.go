package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fatflowers/pledger/internal/app/service/events"
	"github.com/fatflowers/pledger/pkg/logctx"
	"github.com/fatflowers/pledger/pkg/response"
	"github.com/fatflowers/pledger/pkg/types"
)

// gatewayWebhook builds the delivery endpoint for one gateway. The provider
// always receives 200: anything else triggers redelivery storms for
// payloads that will never succeed, and the event log already captures the
// failure for the operator.
func gatewayWebhook(h *events.Handler, gatewayID types.GatewayID) gin.HandlerFunc {
	return func(c *gin.Context) {
		logctx.FromGin(c, h.Logger).Infow("webhook_received", "gateway", gatewayID)

		if err := h.HandleWebhook(c, gatewayID); err != nil {
			logctx.FromGin(c, h.Logger).Errorw("webhook_handle_error", "gateway", gatewayID, "error", err.Error())
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		logctx.FromGin(c, h.Logger).Infow("webhook_handled", "gateway", gatewayID)
		c.JSON(http.StatusOK, response.OKT[any](nil))
	}
}

// @Summary      Card Network Gateway Webhook
// @Description  Handles HMAC-SHA512 signed notifications from the card-network gateway.
// @Tags         Webhook
// @Accept       json
// @Produce      json
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/webhook/authorize [post]
func ApiAuthorizeWebhook(h *events.Handler) gin.HandlerFunc {
	return gatewayWebhook(h, types.GatewayAuthorize)
}

// @Summary      Card Present Gateway Webhook
// @Description  Handles HMAC-SHA256 signed notifications from the card-present gateway.
// @Tags         Webhook
// @Accept       json
// @Produce      json
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/webhook/square [post]
func ApiSquareWebhook(h *events.Handler) gin.HandlerFunc {
	return gatewayWebhook(h, types.GatewaySquare)
}

// @Summary      Bank Transfer Gateway Webhook
// @Description  Handles JWT-verified notifications from the bank-linked ACH gateway.
// @Tags         Webhook
// @Accept       json
// @Produce      json
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/webhook/plaid [post]
func ApiPlaidWebhook(h *events.Handler) gin.HandlerFunc {
	return gatewayWebhook(h, types.GatewayPlaid)
}

func RegisterWebhookRoutes(r gin.IRouter, h *events.Handler) {
	r.POST("/authorize", ApiAuthorizeWebhook(h))
	r.POST("/square", ApiSquareWebhook(h))
	r.POST("/plaid", ApiPlaidWebhook(h))
}
