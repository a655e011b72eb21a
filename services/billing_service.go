package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v80"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dsouzakeegan/fitness-tracker/models"
	"github.com/dsouzakeegan/fitness-tracker/repository"
)

// ServiceError is a typed failure with an HTTP status code. Controllers
// translate it to a JSON error envelope; the status code distinguishes
// validation (400), authorization (403), not-found (404) and
// provider/infrastructure (500) failures.
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// MinChargeAmount is the provider's minimum charge in minor units ($0.50).
const MinChargeAmount = 50

// maxProviderPageSize caps paged Stripe list calls.
const maxProviderPageSize = 100

// currentSubscriptionStatuses is the status set consulted when resolving a
// user's "current" subscription: live statuses plus canceled, so a
// just-canceled plan still renders until the period ends.
var currentSubscriptionStatuses = []string{
	models.SubscriptionStatusActive,
	models.SubscriptionStatusCanceled,
	models.SubscriptionStatusPastDue,
	models.SubscriptionStatusTrialing,
}

// planDisplayNames maps plan ids to their display names.
var planDisplayNames = map[string]string{
	"basic":   "Basic Monthly",
	"premium": "Premium Monthly",
	"elite":   "Elite Monthly",
}

type PaymentIntentResult struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
}

type SubscriptionResult struct {
	SubscriptionID string `json:"subscriptionId"`
	ClientSecret   string `json:"clientSecret,omitempty"`
	Status         string `json:"status"`
}

type InvoiceResult struct {
	InvoiceURL string `json:"invoiceUrl"`
	HostedURL  string `json:"hostedUrl"`
}

// BillingService is the single place allowed to call the payment provider
// and to mutate Payment/Subscription records from user-initiated actions.
type BillingService interface {
	CreatePaymentIntent(ctx context.Context, userID uuid.UUID, req *models.CreatePaymentIntentRequest) (*PaymentIntentResult, *ServiceError)
	GetPaymentHistory(ctx context.Context, userID uuid.UUID, stripeCustomerID string) ([]models.PaymentView, *ServiceError)
	CreateSubscription(ctx context.Context, userID uuid.UUID, req *models.CreateSubscriptionRequest) (*SubscriptionResult, *ServiceError)
	GetCurrentSubscription(ctx context.Context, userID uuid.UUID) (*models.SubscriptionView, *ServiceError)
	UpdateSubscription(ctx context.Context, userID uuid.UUID, subscriptionID, action string) (*models.SubscriptionView, *ServiceError)
	GetInvoice(ctx context.Context, userID uuid.UUID, paymentID string) (*InvoiceResult, *ServiceError)
}

type billingServiceImpl struct {
	stripe   StripeGateway
	payments repository.PaymentRepository
	subs     repository.SubscriptionRepository
	users    repository.UserRepository
	logger   *zap.Logger
}

func NewBillingService(
	gateway StripeGateway,
	payments repository.PaymentRepository,
	subs repository.SubscriptionRepository,
	users repository.UserRepository,
	logger *zap.Logger,
) BillingService {
	return &billingServiceImpl{
		stripe:   gateway,
		payments: payments,
		subs:     subs,
		users:    users,
		logger:   logger,
	}
}

// CreatePaymentIntent opens a payment intent with the provider and records
// it locally in pending status. Validation failures happen before any
// provider call or persistence write.
func (s *billingServiceImpl) CreatePaymentIntent(ctx context.Context, userID uuid.UUID, req *models.CreatePaymentIntentRequest) (*PaymentIntentResult, *ServiceError) {
	if req.Amount < MinChargeAmount {
		return nil, &ServiceError{StatusCode: 400, Message: "Invalid amount. Minimum is $0.50"}
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, &ServiceError{StatusCode: 400, Message: "User not found"}
	}

	currency := normalizeCurrency(req.Currency)
	paymentType := req.PaymentType
	if paymentType == "" {
		paymentType = "subscription"
	}
	planID := req.PlanID
	if planID == "" {
		planID = "unknown"
	}

	pi, err := s.stripe.CreatePaymentIntent(ctx, CreateIntentParams{
		Amount:      req.Amount,
		Currency:    currency,
		UserID:      user.ID.String(),
		PaymentType: paymentType,
		PlanID:      planID,
	})
	if err != nil {
		s.logger.Error("Failed to create payment intent",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
		return nil, &ServiceError{StatusCode: 400, Message: stripeErrorMessage(err)}
	}

	payment := &models.Payment{
		UserID:          userID,
		StripePaymentID: pi.ID,
		Amount:          req.Amount,
		Currency:        currency,
		Status:          models.PaymentStatusPending,
		PaymentMethod:   models.PaymentMethodInfo{Type: "card"},
		Metadata: map[string]string{
			"paymentType": paymentType,
			"planId":      planID,
		},
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		s.logger.Error("Failed to save payment record",
			zap.String("payment_intent_id", pi.ID),
			zap.Error(err),
		)
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to save payment"}
	}

	s.logger.Info("Payment intent created", zap.String("payment_intent_id", pi.ID))

	return &PaymentIntentResult{
		ClientSecret:    pi.ClientSecret,
		PaymentIntentID: pi.ID,
	}, nil
}

// GetPaymentHistory returns the user's payments, newest first. Without a
// Stripe customer id only local records are returned; with one, the
// provider's intents and paid invoices are merged in and local records are
// refreshed with the provider's latest status. The merge is all-or-nothing:
// a provider failure leaves local records untouched.
func (s *billingServiceImpl) GetPaymentHistory(ctx context.Context, userID uuid.UUID, stripeCustomerID string) ([]models.PaymentView, *ServiceError) {
	local, err := s.payments.FindByUser(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to load payment history", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to retrieve payment history"}
	}

	if stripeCustomerID == "" {
		views := make([]models.PaymentView, 0, len(local))
		for _, p := range local {
			description := p.Metadata["description"]
			if description == "" {
				description = "Payment"
			}
			views = append(views, models.PaymentView{
				ID:            p.StripePaymentID,
				Amount:        p.Amount,
				Currency:      p.Currency,
				Status:        p.Status,
				Description:   description,
				Created:       p.CreatedAt.UnixMilli(),
				PaymentMethod: p.PaymentMethod,
			})
		}
		return views, nil
	}

	intents, err := s.stripe.ListPaymentIntents(ctx, stripeCustomerID, maxProviderPageSize)
	if err != nil {
		s.logger.Error("Failed to list payment intents", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: stripeErrorMessage(err)}
	}
	invoices, err := s.stripe.ListInvoices(ctx, stripeCustomerID, maxProviderPageSize)
	if err != nil {
		s.logger.Error("Failed to list invoices", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: stripeErrorMessage(err)}
	}

	views := make([]models.PaymentView, 0, len(intents)+len(invoices))

	for _, pi := range intents {
		description := pi.Description
		if description == "" {
			description = "One-time payment"
		}

		views = append(views, models.PaymentView{
			ID:            pi.ID,
			Amount:        pi.Amount,
			Currency:      string(pi.Currency),
			Status:        string(pi.Status),
			Description:   description,
			Created:       pi.Created * 1000,
			PaymentMethod: cardDescriptor(pi),
		})

		// Refresh the local record with the provider's latest view.
		if err := s.payments.UpdateByStripeID(ctx, pi.ID, map[string]interface{}{
			"status":   string(pi.Status),
			"metadata": map[string]string{"description": description},
		}); err != nil {
			s.logger.Warn("Failed to sync payment record",
				zap.String("payment_intent_id", pi.ID),
				zap.Error(err),
			)
		}
	}

	for _, inv := range invoices {
		if inv.Status != stripe.InvoiceStatusPaid || inv.PaymentIntent == nil {
			continue
		}
		description := "Subscription Payment"
		if inv.Lines != nil && len(inv.Lines.Data) > 0 && inv.Lines.Data[0].Description != "" {
			description = "Subscription - " + inv.Lines.Data[0].Description
		}
		views = append(views, models.PaymentView{
			ID:            inv.PaymentIntent.ID,
			Amount:        inv.AmountPaid,
			Currency:      string(inv.Currency),
			Status:        models.PaymentStatusSucceeded,
			Description:   description,
			Created:       inv.Created * 1000,
			PaymentMethod: models.PaymentMethodInfo{Type: "card", Brand: "card", Last4: "****"},
		})
	}

	sort.Slice(views, func(i, j int) bool { return views[i].Created > views[j].Created })

	return views, nil
}

// CreateSubscription subscribes the user to a price, creating the Stripe
// customer lazily on first use. At most one live subscription per user is
// allowed; the check happens before any provider call.
func (s *billingServiceImpl) CreateSubscription(ctx context.Context, userID uuid.UUID, req *models.CreateSubscriptionRequest) (*SubscriptionResult, *ServiceError) {
	if req.PriceID == "" {
		return nil, &ServiceError{StatusCode: 400, Message: "Price ID and User ID are required"}
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, &ServiceError{StatusCode: 400, Message: "User not found"}
	}

	existing, err := s.subs.FindLatestByUserAndStatuses(ctx, userID, models.LiveSubscriptionStatuses)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("Failed to check existing subscriptions", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to create subscription"}
	}
	if existing != nil {
		return nil, &ServiceError{StatusCode: 400, Message: "User already has an active subscription"}
	}

	customerID := ""
	if user.StripeCustomerID != nil {
		customerID = *user.StripeCustomerID
	}
	if customerID == "" {
		cust, err := s.stripe.CreateCustomer(ctx, user.Email, user.FirstName+" "+user.LastName, user.ID.String())
		if err != nil {
			s.logger.Error("Failed to create Stripe customer", zap.Error(err))
			return nil, &ServiceError{StatusCode: 400, Message: stripeErrorMessage(err)}
		}
		customerID = cust.ID
		if err := s.users.SetStripeCustomerID(ctx, userID, customerID); err != nil {
			s.logger.Error("Failed to persist Stripe customer id", zap.Error(err))
			return nil, &ServiceError{StatusCode: 500, Message: "Failed to create subscription"}
		}
	}

	if req.PaymentMethodID != "" {
		if err := s.stripe.AttachPaymentMethod(ctx, req.PaymentMethodID, customerID); err != nil {
			return nil, &ServiceError{StatusCode: 400, Message: stripeErrorMessage(err)}
		}
		if err := s.stripe.SetDefaultPaymentMethod(ctx, customerID, req.PaymentMethodID); err != nil {
			return nil, &ServiceError{StatusCode: 400, Message: stripeErrorMessage(err)}
		}
	}

	sub, err := s.stripe.CreateSubscription(ctx, customerID, req.PriceID, user.ID.String())
	if err != nil {
		s.logger.Error("Failed to create subscription",
			zap.String("user_id", userID.String()),
			zap.String("price_id", req.PriceID),
			zap.Error(err),
		)
		return nil, &ServiceError{StatusCode: 400, Message: stripeErrorMessage(err)}
	}

	record := &models.Subscription{
		UserID:               userID,
		StripeSubscriptionID: sub.ID,
		StripeCustomerID:     customerID,
		PriceID:              req.PriceID,
		Status:               string(sub.Status),
		CurrentPeriodStart:   time.Unix(sub.CurrentPeriodStart, 0),
		CurrentPeriodEnd:     time.Unix(sub.CurrentPeriodEnd, 0),
		CancelAtPeriodEnd:    sub.CancelAtPeriodEnd,
		TrialStart:           unixTimePtr(sub.TrialStart),
		TrialEnd:             unixTimePtr(sub.TrialEnd),
		Metadata:             map[string]string{"userId": user.ID.String()},
	}
	if err := s.subs.Create(ctx, record); err != nil {
		s.logger.Error("Failed to save subscription record",
			zap.String("subscription_id", sub.ID),
			zap.Error(err),
		)
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to save subscription"}
	}

	s.logger.Info("Subscription created", zap.String("subscription_id", sub.ID))

	result := &SubscriptionResult{
		SubscriptionID: sub.ID,
		Status:         string(sub.Status),
	}
	if sub.LatestInvoice != nil && sub.LatestInvoice.PaymentIntent != nil {
		result.ClientSecret = sub.LatestInvoice.PaymentIntent.ClientSecret
	}
	return result, nil
}

// GetCurrentSubscription resolves the user's most recent subscription and
// reconciles it against the provider before returning: the local store is
// a cache, Stripe's answer wins.
func (s *billingServiceImpl) GetCurrentSubscription(ctx context.Context, userID uuid.UUID) (*models.SubscriptionView, *ServiceError) {
	record, err := s.subs.FindLatestByUserAndStatuses(ctx, userID, currentSubscriptionStatuses)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ServiceError{StatusCode: 404, Message: "No subscription found"}
		}
		s.logger.Error("Failed to load subscription", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to retrieve subscription"}
	}

	sub, err := s.stripe.GetSubscription(ctx, record.StripeSubscriptionID)
	if err != nil {
		if isResourceMissing(err) {
			return nil, &ServiceError{StatusCode: 404, Message: "No subscription found"}
		}
		s.logger.Error("Failed to fetch subscription from Stripe",
			zap.String("subscription_id", record.StripeSubscriptionID),
			zap.Error(err),
		)
		return nil, &ServiceError{StatusCode: 500, Message: stripeErrorMessage(err)}
	}

	if err := s.subs.UpdateByStripeID(ctx, sub.ID, map[string]interface{}{
		"status":               string(sub.Status),
		"current_period_start": time.Unix(sub.CurrentPeriodStart, 0),
		"current_period_end":   time.Unix(sub.CurrentPeriodEnd, 0),
		"cancel_at_period_end": sub.CancelAtPeriodEnd,
	}); err != nil {
		s.logger.Warn("Failed to sync subscription record",
			zap.String("subscription_id", sub.ID),
			zap.Error(err),
		)
	}

	if sub.Items == nil || len(sub.Items.Data) == 0 || sub.Items.Data[0].Price == nil {
		return nil, &ServiceError{StatusCode: 500, Message: "Subscription has no price"}
	}

	price, err := s.stripe.GetPrice(ctx, sub.Items.Data[0].Price.ID)
	if err != nil {
		return nil, &ServiceError{StatusCode: 500, Message: stripeErrorMessage(err)}
	}
	product, err := s.stripe.GetProduct(ctx, price.Product.ID)
	if err != nil {
		return nil, &ServiceError{StatusCode: 500, Message: stripeErrorMessage(err)}
	}

	planID := planIDFromProduct(product)
	planName := planDisplayNames[planID]
	if planName == "" {
		planName = product.Name
	}

	return &models.SubscriptionView{
		ID:                 sub.ID,
		Status:             string(sub.Status),
		PlanID:             planID,
		PlanName:           planName,
		Amount:             price.UnitAmount,
		Currency:           string(price.Currency),
		CurrentPeriodStart: sub.CurrentPeriodStart * 1000,
		CurrentPeriodEnd:   sub.CurrentPeriodEnd * 1000,
		CancelAtPeriodEnd:  sub.CancelAtPeriodEnd,
	}, nil
}

// UpdateSubscription handles cancel/reactivate. The action is validated
// and the caller's ownership of the subscription checked before the
// provider is asked to change anything.
func (s *billingServiceImpl) UpdateSubscription(ctx context.Context, userID uuid.UUID, subscriptionID, action string) (*models.SubscriptionView, *ServiceError) {
	if action != "cancel" && action != "reactivate" {
		return nil, &ServiceError{StatusCode: 400, Message: `Invalid action specified. Use "cancel" or "reactivate"`}
	}
	if subscriptionID == "" {
		return nil, &ServiceError{StatusCode: 400, Message: "Subscription ID is required"}
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil || user.StripeCustomerID == nil || *user.StripeCustomerID == "" {
		return nil, &ServiceError{StatusCode: 400, Message: "User not found or no subscription associated"}
	}

	sub, err := s.stripe.GetSubscription(ctx, subscriptionID)
	if err != nil {
		return nil, &ServiceError{StatusCode: 400, Message: stripeErrorMessage(err)}
	}
	if sub.Customer == nil || sub.Customer.ID != *user.StripeCustomerID {
		return nil, &ServiceError{StatusCode: 403, Message: "Unauthorized to update this subscription"}
	}

	updated, err := s.stripe.SetCancelAtPeriodEnd(ctx, subscriptionID, action == "cancel")
	if err != nil {
		s.logger.Error("Failed to update subscription",
			zap.String("subscription_id", subscriptionID),
			zap.String("action", action),
			zap.Error(err),
		)
		return nil, &ServiceError{StatusCode: 400, Message: stripeErrorMessage(err)}
	}

	if err := s.subs.UpdateByStripeID(ctx, subscriptionID, map[string]interface{}{
		"status":               string(updated.Status),
		"cancel_at_period_end": updated.CancelAtPeriodEnd,
	}); err != nil {
		s.logger.Warn("Failed to sync subscription record",
			zap.String("subscription_id", subscriptionID),
			zap.Error(err),
		)
	}

	s.logger.Info("Subscription updated",
		zap.String("subscription_id", subscriptionID),
		zap.String("action", action),
	)

	return &models.SubscriptionView{
		ID:                updated.ID,
		Status:            string(updated.Status),
		CurrentPeriodEnd:  updated.CurrentPeriodEnd * 1000,
		CancelAtPeriodEnd: updated.CancelAtPeriodEnd,
	}, nil
}

// GetInvoice finds the invoice whose payment intent matches paymentID and
// returns its document URLs.
func (s *billingServiceImpl) GetInvoice(ctx context.Context, userID uuid.UUID, paymentID string) (*InvoiceResult, *ServiceError) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil || user.StripeCustomerID == nil || *user.StripeCustomerID == "" {
		return nil, &ServiceError{StatusCode: 404, Message: "User not found"}
	}

	invoices, err := s.stripe.ListInvoices(ctx, *user.StripeCustomerID, maxProviderPageSize)
	if err != nil {
		s.logger.Error("Failed to list invoices", zap.Error(err))
		return nil, &ServiceError{StatusCode: 404, Message: "Invoice not found"}
	}

	for _, inv := range invoices {
		if inv.PaymentIntent != nil && inv.PaymentIntent.ID == paymentID {
			return &InvoiceResult{
				InvoiceURL: inv.InvoicePDF,
				HostedURL:  inv.HostedInvoiceURL,
			}, nil
		}
	}

	return nil, &ServiceError{StatusCode: 404, Message: "Invoice not found"}
}

// --- helpers ---

func normalizeCurrency(currency string) string {
	if currency == "" {
		return "usd"
	}
	return strings.ToLower(currency)
}

func unixTimePtr(ts int64) *time.Time {
	if ts == 0 {
		return nil
	}
	t := time.Unix(ts, 0)
	return &t
}

// cardDescriptor extracts card brand/last4 from an intent's latest charge.
func cardDescriptor(pi *stripe.PaymentIntent) models.PaymentMethodInfo {
	pm := models.PaymentMethodInfo{Type: "card"}
	if pi.LatestCharge != nil && pi.LatestCharge.PaymentMethodDetails != nil && pi.LatestCharge.PaymentMethodDetails.Card != nil {
		card := pi.LatestCharge.PaymentMethodDetails.Card
		pm.Brand = string(card.Brand)
		pm.Last4 = card.Last4
	}
	return pm
}

// planIDFromProduct resolves the plan id from product metadata, falling
// back to the first word of the lowercased product name.
func planIDFromProduct(product *stripe.Product) string {
	if id := product.Metadata["planId"]; id != "" {
		return id
	}
	name := strings.ToLower(product.Name)
	if first, _, found := strings.Cut(name, " "); found {
		return first
	}
	return name
}

// stripeErrorMessage surfaces the provider's human-readable message,
// never a raw error dump.
func stripeErrorMessage(err error) string {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && stripeErr.Msg != "" {
		return stripeErr.Msg
	}
	return err.Error()
}

func isResourceMissing(err error) bool {
	var stripeErr *stripe.Error
	return errors.As(err, &stripeErr) && stripeErr.Code == stripe.ErrorCodeResourceMissing
}
