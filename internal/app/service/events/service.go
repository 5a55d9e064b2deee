package events

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/fatflowers/pledger/internal/app/service/donation"
	"github.com/fatflowers/pledger/internal/app/service/subscription"
	webhooklog "github.com/fatflowers/pledger/internal/app/service/webhook_log"
	"github.com/fatflowers/pledger/internal/gateway"
	models "github.com/fatflowers/pledger/internal/models"
	"github.com/fatflowers/pledger/pkg/logctx"
	"github.com/fatflowers/pledger/pkg/types"
)

// statusEvents maps canonical status events to the lifecycle target applied
// through the subscription state machine.
var statusEvents = map[gateway.EventType]types.SubscriptionStatus{
	gateway.EventSubscriptionActive:    types.SubscriptionStatusActive,
	gateway.EventSubscriptionCancelled: types.SubscriptionStatusCancelled,
	gateway.EventSubscriptionSuspended: types.SubscriptionStatusSuspended,
	gateway.EventSubscriptionCompleted: types.SubscriptionStatusCompleted,
	gateway.EventSubscriptionExpired:   types.SubscriptionStatusExpired,
	gateway.EventSubscriptionFailing:   types.SubscriptionStatusFailing,
}

type Handler struct {
	registry    *gateway.Registry
	logSvc      *webhooklog.Service
	subSvc      *subscription.Service
	donationSvc *donation.Service
	Logger      *zap.SugaredLogger
}

func NewHandler(registry *gateway.Registry, logSvc *webhooklog.Service, subSvc *subscription.Service, donationSvc *donation.Service, log *zap.SugaredLogger) *Handler {
	return &Handler{registry: registry, logSvc: logSvc, subSvc: subSvc, donationSvc: donationSvc, Logger: log}
}

// HandleWebhook verifies and dispatches one gateway delivery. The returned
// error is for logging only: the transport layer answers 200 regardless, so
// a provider never storms redeliveries at a payload that cannot succeed.
func (h *Handler) HandleWebhook(c *gin.Context, gatewayID types.GatewayID) (resErr error) {
	ctx := c.Request.Context()
	log := logctx.FromGin(c, h.Logger)

	g, ok := h.registry.Get(gatewayID)
	if !ok {
		return fmt.Errorf("gateway %s is not registered", gatewayID)
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return fmt.Errorf("failed to read webhook body: %w", err)
	}

	var traceID string
	if v, ok := c.Get("traceID"); ok {
		if s, ok2 := v.(string); ok2 {
			traceID = s
		}
	}

	events, err := g.ParseWebhook(c.Request, body)
	if err != nil {
		h.logSvc.Save(ctx, &models.WebhookEventLog{
			GatewayID: string(gatewayID),
			TraceID:   traceID,
			EventTime: time.Now(),
			Data:      datatypes.JSON(body),
			Result:    resultJSON(nil, err),
			Status:    models.WebhookEventLogStatusHandleFailed,
		})
		return fmt.Errorf("failed to parse webhook: %w", err)
	}

	for _, event := range events {
		event := event
		h.logSvc.Save(ctx, &models.WebhookEventLog{
			GatewayID: string(gatewayID),
			EventType: string(event.Type),
			TraceID:   traceID,
			ObjectID:  event.ObjectID,
			EventTime: time.Now(),
			Data:      datatypes.JSON(body),
			Status:    models.WebhookEventLogStatusReceived,
		})

		err := h.dispatch(c, gatewayID, event)

		status := models.WebhookEventLogStatusHandled
		if err != nil {
			status = models.WebhookEventLogStatusHandleFailed
			resErr = err
			log.Errorw("webhook event handling failed",
				"gateway", gatewayID, "event_type", event.Type, "object_id", event.ObjectID, "err", err)
		}
		h.logSvc.Save(ctx, &models.WebhookEventLog{
			GatewayID: string(gatewayID),
			EventType: string(event.Type),
			TraceID:   traceID,
			ObjectID:  event.ObjectID,
			EventTime: time.Now(),
			Data:      datatypes.JSON(body),
			Result:    resultJSON(&event, err),
			Status:    status,
		})
	}
	return resErr
}

func (h *Handler) dispatch(c *gin.Context, gatewayID types.GatewayID, event gateway.Event) error {
	ctx := c.Request.Context()

	if event.Type == gateway.EventPaymentCreated {
		return h.donationSvc.HandleSubscriptionDonations(ctx, gatewayID, event.ObjectID, "")
	}
	if target, ok := statusEvents[event.Type]; ok {
		return h.subSvc.SetStatus(ctx, gatewayID, event.ObjectID, target, "", event.Message)
	}
	return fmt.Errorf("unsupported event type: %s", event.Type)
}

func resultJSON(event *gateway.Event, err error) *datatypes.JSON {
	resMap := map[string]any{}
	if event != nil {
		resMap["event"] = event
	}
	if err != nil {
		resMap["error"] = err.Error()
	}
	resBytes, _ := json.Marshal(resMap)
	j := datatypes.JSON(resBytes)
	return &j
}
