package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v80"
	"go.uber.org/zap"

	"github.com/dsouzakeegan/fitness-tracker/models"
	"github.com/dsouzakeegan/fitness-tracker/repository"
)

// WebhookService applies verified Stripe events to the local store. The
// store is a cache of Stripe's state, so every handler is an
// update-if-present: an event for a record we never saw is a no-op, not
// an error, and replayed events converge on the same row.
type WebhookService interface {
	HandleEvent(ctx context.Context, event stripe.Event) error
}

type webhookServiceImpl struct {
	payments repository.PaymentRepository
	subs     repository.SubscriptionRepository
	logger   *zap.Logger
}

func NewWebhookService(
	payments repository.PaymentRepository,
	subs repository.SubscriptionRepository,
	logger *zap.Logger,
) WebhookService {
	return &webhookServiceImpl{payments: payments, subs: subs, logger: logger}
}

func (s *webhookServiceImpl) HandleEvent(ctx context.Context, event stripe.Event) error {
	s.logger.Info("Webhook event received",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
	)

	switch event.Type {
	case "customer.subscription.created", "customer.subscription.updated":
		return s.handleSubscriptionChange(ctx, event)
	case "customer.subscription.deleted":
		return s.handleSubscriptionDeleted(ctx, event)
	case "invoice.payment_succeeded":
		return s.handleInvoicePaymentSucceeded(ctx, event)
	case "invoice.payment_failed":
		return s.handleInvoicePaymentFailed(ctx, event)
	case "payment_intent.succeeded":
		return s.handlePaymentIntentSucceeded(ctx, event)
	default:
		s.logger.Debug("Unhandled webhook event type",
			zap.String("event_type", string(event.Type)),
		)
		return nil
	}
}

func (s *webhookServiceImpl) handleSubscriptionChange(ctx context.Context, event stripe.Event) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return fmt.Errorf("parsing subscription event: %w", err)
	}

	// canceled_at is always written so a reactivation, which carries no
	// cancellation timestamp, clears the one stored earlier.
	var canceledAt *time.Time
	if sub.CanceledAt > 0 {
		t := time.Unix(sub.CanceledAt, 0)
		canceledAt = &t
	}
	updates := map[string]interface{}{
		"status":               string(sub.Status),
		"current_period_start": time.Unix(sub.CurrentPeriodStart, 0),
		"current_period_end":   time.Unix(sub.CurrentPeriodEnd, 0),
		"cancel_at_period_end": sub.CancelAtPeriodEnd,
		"canceled_at":          canceledAt,
	}

	if err := s.subs.UpdateByStripeID(ctx, sub.ID, updates); err != nil {
		return fmt.Errorf("updating subscription %s: %w", sub.ID, err)
	}

	s.logger.Info("Subscription synced from webhook",
		zap.String("subscription_id", sub.ID),
		zap.String("status", string(sub.Status)),
	)
	return nil
}

func (s *webhookServiceImpl) handleSubscriptionDeleted(ctx context.Context, event stripe.Event) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return fmt.Errorf("parsing subscription event: %w", err)
	}

	if err := s.subs.UpdateByStripeID(ctx, sub.ID, map[string]interface{}{
		"status":               models.SubscriptionStatusCanceled,
		"canceled_at":          time.Now(),
		"cancel_at_period_end": false,
	}); err != nil {
		return fmt.Errorf("canceling subscription %s: %w", sub.ID, err)
	}

	s.logger.Info("Subscription canceled from webhook", zap.String("subscription_id", sub.ID))
	return nil
}

func (s *webhookServiceImpl) handleInvoicePaymentSucceeded(ctx context.Context, event stripe.Event) error {
	var inv stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
		return fmt.Errorf("parsing invoice event: %w", err)
	}

	// A paid invoice tied to a subscription marks it active, including one
	// previously marked canceled. The payment record itself is settled by
	// the payment_intent.succeeded event.
	if inv.Subscription != nil {
		if err := s.subs.UpdateByStripeID(ctx, inv.Subscription.ID, map[string]interface{}{
			"status": models.SubscriptionStatusActive,
		}); err != nil {
			return fmt.Errorf("activating subscription %s: %w", inv.Subscription.ID, err)
		}
	}

	s.logger.Info("Invoice payment succeeded", zap.String("invoice_id", inv.ID))
	return nil
}

// handleInvoicePaymentFailed only records the failure; Stripe drives its
// own dunning and will report the status change on the subscription event.
func (s *webhookServiceImpl) handleInvoicePaymentFailed(ctx context.Context, event stripe.Event) error {
	var inv stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
		return fmt.Errorf("parsing invoice event: %w", err)
	}

	subID := ""
	if inv.Subscription != nil {
		subID = inv.Subscription.ID
	}
	s.logger.Warn("Invoice payment failed",
		zap.String("invoice_id", inv.ID),
		zap.String("subscription_id", subID),
	)
	return nil
}

func (s *webhookServiceImpl) handlePaymentIntentSucceeded(ctx context.Context, event stripe.Event) error {
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return fmt.Errorf("parsing payment intent event: %w", err)
	}

	if err := s.payments.UpdateByStripeID(ctx, pi.ID, map[string]interface{}{
		"status": models.PaymentStatusSucceeded,
	}); err != nil {
		return fmt.Errorf("updating payment %s: %w", pi.ID, err)
	}

	s.logger.Info("Payment intent succeeded", zap.String("payment_intent_id", pi.ID))
	return nil
}
