package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dsouzakeegan/fitness-tracker/services"
)

type WebhookController struct {
	Gateway  services.StripeGateway
	Webhooks services.WebhookService
	Logger   *zap.Logger
}

func NewWebhookController(gateway services.StripeGateway, webhooks services.WebhookService, logger *zap.Logger) *WebhookController {
	return &WebhookController{Gateway: gateway, Webhooks: webhooks, Logger: logger}
}

// POST /api/webhooks/stripe
//
// Signature verification happens before anything else; an unverifiable
// payload is rejected without touching the store. A handler failure
// returns 500 so Stripe retries the delivery.
func (wc *WebhookController) HandleWebhook(c *gin.Context) {
	event, err := wc.Gateway.ParseWebhook(c.Request)
	if err != nil {
		wc.Logger.Warn("Webhook signature verification failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Webhook signature verification failed"})
		return
	}

	if err := wc.Webhooks.HandleEvent(c.Request.Context(), event); err != nil {
		wc.Logger.Error("Webhook handler failed",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Webhook handler failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
