package controllers

import (
	"net/http"
	"regexp"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dsouzakeegan/fitness-tracker/middleware"
	"github.com/dsouzakeegan/fitness-tracker/models"
	"github.com/dsouzakeegan/fitness-tracker/services"
)

var (
	supportedCurrencies = []string{"usd", "eur", "gbp"}
	priceIDPattern      = regexp.MustCompile(`^price_[a-zA-Z0-9]+$`)
)

type BillingController struct {
	Billing    services.BillingService
	Logger     *zap.Logger
	Production bool
}

func NewBillingController(billing services.BillingService, logger *zap.Logger, production bool) *BillingController {
	return &BillingController{Billing: billing, Logger: logger, Production: production}
}

// respondServiceError writes a ServiceError as a JSON envelope. In
// production, server-side failures are replaced with a generic message
// plus the request correlation id.
func (bc *BillingController) respondServiceError(c *gin.Context, svcErr *services.ServiceError) {
	if bc.Production && svcErr.StatusCode >= 500 {
		c.JSON(svcErr.StatusCode, gin.H{
			"error":     "An unexpected error occurred",
			"requestId": middleware.GetRequestID(c),
		})
		return
	}
	c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
}

func authenticatedUserID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token payload"})
		return uuid.Nil, false
	}
	return id, true
}

// POST /api/payments/create-intent
func (bc *BillingController) CreatePaymentIntent(c *gin.Context) {
	userID, ok := authenticatedUserID(c)
	if !ok {
		return
	}

	var req models.CreatePaymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Currency != "" && !slices.Contains(supportedCurrencies, strings.ToLower(req.Currency)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid currency. Supported: USD, EUR, GBP"})
		return
	}
	if req.PaymentType != "" && req.PaymentType != "subscription" && req.PaymentType != "one-time" {
		c.JSON(http.StatusBadRequest, gin.H{"error": `Invalid payment type. Use "subscription" or "one-time"`})
		return
	}

	result, svcErr := bc.Billing.CreatePaymentIntent(c.Request.Context(), userID, &req)
	if svcErr != nil {
		bc.respondServiceError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GET /api/payments/history
func (bc *BillingController) GetPaymentHistory(c *gin.Context) {
	userID, ok := authenticatedUserID(c)
	if !ok {
		return
	}

	payments, svcErr := bc.Billing.GetPaymentHistory(c.Request.Context(), userID, middleware.GetStripeCustomerID(c))
	if svcErr != nil {
		bc.respondServiceError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": payments})
}

// GET /api/payments/:id/invoice
func (bc *BillingController) GetInvoice(c *gin.Context) {
	userID, ok := authenticatedUserID(c)
	if !ok {
		return
	}

	result, svcErr := bc.Billing.GetInvoice(c.Request.Context(), userID, c.Param("id"))
	if svcErr != nil {
		bc.respondServiceError(c, svcErr)
		return
	}
	if result.InvoiceURL != "" {
		c.Redirect(http.StatusFound, result.InvoiceURL)
		return
	}
	c.JSON(http.StatusOK, result)
}

// POST /api/subscriptions/create
func (bc *BillingController) CreateSubscription(c *gin.Context) {
	userID, ok := authenticatedUserID(c)
	if !ok {
		return
	}

	var req models.CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !priceIDPattern.MatchString(req.PriceID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid price ID format"})
		return
	}

	result, svcErr := bc.Billing.CreateSubscription(c.Request.Context(), userID, &req)
	if svcErr != nil {
		bc.respondServiceError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GET /api/subscriptions/current
func (bc *BillingController) GetCurrentSubscription(c *gin.Context) {
	userID, ok := authenticatedUserID(c)
	if !ok {
		return
	}

	sub, svcErr := bc.Billing.GetCurrentSubscription(c.Request.Context(), userID)
	if svcErr != nil {
		bc.respondServiceError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subscription": sub})
}

// PUT /api/subscriptions/:id
func (bc *BillingController) UpdateSubscription(c *gin.Context) {
	userID, ok := authenticatedUserID(c)
	if !ok {
		return
	}

	var req models.UpdateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Action != "cancel" && req.Action != "reactivate" {
		c.JSON(http.StatusBadRequest, gin.H{"error": `Invalid action specified. Use "cancel" or "reactivate"`})
		return
	}

	sub, svcErr := bc.Billing.UpdateSubscription(c.Request.Context(), userID, c.Param("id"), req.Action)
	if svcErr != nil {
		bc.respondServiceError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subscription": sub})
}
