package services

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/customer"
	"github.com/stripe/stripe-go/v80/invoice"
	"github.com/stripe/stripe-go/v80/paymentintent"
	"github.com/stripe/stripe-go/v80/paymentmethod"
	"github.com/stripe/stripe-go/v80/price"
	"github.com/stripe/stripe-go/v80/product"
	"github.com/stripe/stripe-go/v80/subscription"
	"github.com/stripe/stripe-go/v80/webhook"
)

// CreateIntentParams carries everything needed to open a payment intent.
type CreateIntentParams struct {
	Amount      int64
	Currency    string
	UserID      string
	PaymentType string
	PlanID      string
}

// StripeGateway is the single boundary to the payment provider. The
// billing service and webhook receiver depend on this interface so tests
// can substitute an in-memory fake.
type StripeGateway interface {
	CreatePaymentIntent(ctx context.Context, params CreateIntentParams) (*stripe.PaymentIntent, error)
	ListPaymentIntents(ctx context.Context, customerID string, limit int64) ([]*stripe.PaymentIntent, error)
	ListInvoices(ctx context.Context, customerID string, limit int64) ([]*stripe.Invoice, error)
	CreateCustomer(ctx context.Context, email, name, userID string) (*stripe.Customer, error)
	AttachPaymentMethod(ctx context.Context, paymentMethodID, customerID string) error
	SetDefaultPaymentMethod(ctx context.Context, customerID, paymentMethodID string) error
	CreateSubscription(ctx context.Context, customerID, priceID, userID string) (*stripe.Subscription, error)
	GetSubscription(ctx context.Context, subscriptionID string) (*stripe.Subscription, error)
	SetCancelAtPeriodEnd(ctx context.Context, subscriptionID string, cancel bool) (*stripe.Subscription, error)
	GetPrice(ctx context.Context, priceID string) (*stripe.Price, error)
	GetProduct(ctx context.Context, productID string) (*stripe.Product, error)
	ParseWebhook(r *http.Request) (stripe.Event, error)
}

type stripeGateway struct {
	webhookSecret string
}

// NewStripeGateway sets the global Stripe API key and returns the live
// gateway implementation.
func NewStripeGateway(secretKey, webhookSecret string) StripeGateway {
	stripe.Key = secretKey
	return &stripeGateway{webhookSecret: webhookSecret}
}

func (g *stripeGateway) CreatePaymentIntent(ctx context.Context, p CreateIntentParams) (*stripe.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Params:   stripe.Params{Context: ctx},
		Amount:   stripe.Int64(p.Amount),
		Currency: stripe.String(p.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.AddMetadata("userId", p.UserID)
	params.AddMetadata("paymentType", p.PaymentType)
	params.AddMetadata("planId", p.PlanID)

	return paymentintent.New(params)
}

func (g *stripeGateway) ListPaymentIntents(ctx context.Context, customerID string, limit int64) ([]*stripe.PaymentIntent, error) {
	params := &stripe.PaymentIntentListParams{
		Customer: stripe.String(customerID),
	}
	params.Context = ctx
	params.Limit = stripe.Int64(limit)
	params.AddExpand("data.latest_charge")

	var intents []*stripe.PaymentIntent
	it := paymentintent.List(params)
	for it.Next() {
		intents = append(intents, it.PaymentIntent())
	}
	return intents, it.Err()
}

func (g *stripeGateway) ListInvoices(ctx context.Context, customerID string, limit int64) ([]*stripe.Invoice, error) {
	params := &stripe.InvoiceListParams{
		Customer: stripe.String(customerID),
	}
	params.Context = ctx
	params.Limit = stripe.Int64(limit)

	var invoices []*stripe.Invoice
	it := invoice.List(params)
	for it.Next() {
		invoices = append(invoices, it.Invoice())
	}
	return invoices, it.Err()
}

func (g *stripeGateway) CreateCustomer(ctx context.Context, email, name, userID string) (*stripe.Customer, error) {
	params := &stripe.CustomerParams{
		Params: stripe.Params{Context: ctx},
		Email:  stripe.String(email),
		Name:   stripe.String(name),
	}
	params.AddMetadata("userId", userID)
	return customer.New(params)
}

func (g *stripeGateway) AttachPaymentMethod(ctx context.Context, paymentMethodID, customerID string) error {
	params := &stripe.PaymentMethodAttachParams{
		Params:   stripe.Params{Context: ctx},
		Customer: stripe.String(customerID),
	}
	_, err := paymentmethod.Attach(paymentMethodID, params)
	return err
}

func (g *stripeGateway) SetDefaultPaymentMethod(ctx context.Context, customerID, paymentMethodID string) error {
	params := &stripe.CustomerParams{
		Params: stripe.Params{Context: ctx},
		InvoiceSettings: &stripe.CustomerInvoiceSettingsParams{
			DefaultPaymentMethod: stripe.String(paymentMethodID),
		},
	}
	_, err := customer.Update(customerID, params)
	return err
}

func (g *stripeGateway) CreateSubscription(ctx context.Context, customerID, priceID, userID string) (*stripe.Subscription, error) {
	params := &stripe.SubscriptionParams{
		Params:   stripe.Params{Context: ctx},
		Customer: stripe.String(customerID),
		Items: []*stripe.SubscriptionItemsParams{
			{Price: stripe.String(priceID)},
		},
		PaymentBehavior: stripe.String("default_incomplete"),
		PaymentSettings: &stripe.SubscriptionPaymentSettingsParams{
			SaveDefaultPaymentMethod: stripe.String("on_subscription"),
		},
	}
	params.AddMetadata("userId", userID)
	params.AddExpand("latest_invoice.payment_intent")

	return subscription.New(params)
}

func (g *stripeGateway) GetSubscription(ctx context.Context, subscriptionID string) (*stripe.Subscription, error) {
	params := &stripe.SubscriptionParams{Params: stripe.Params{Context: ctx}}
	return subscription.Get(subscriptionID, params)
}

func (g *stripeGateway) SetCancelAtPeriodEnd(ctx context.Context, subscriptionID string, cancel bool) (*stripe.Subscription, error) {
	params := &stripe.SubscriptionParams{
		Params:            stripe.Params{Context: ctx},
		CancelAtPeriodEnd: stripe.Bool(cancel),
	}
	return subscription.Update(subscriptionID, params)
}

func (g *stripeGateway) GetPrice(ctx context.Context, priceID string) (*stripe.Price, error) {
	params := &stripe.PriceParams{Params: stripe.Params{Context: ctx}}
	return price.Get(priceID, params)
}

func (g *stripeGateway) GetProduct(ctx context.Context, productID string) (*stripe.Product, error) {
	params := &stripe.ProductParams{Params: stripe.Params{Context: ctx}}
	return product.Get(productID, params)
}

// ParseWebhook reads the raw request body and verifies the Stripe
// signature. The body must not have been consumed by any upstream parser.
func (g *stripeGateway) ParseWebhook(r *http.Request) (stripe.Event, error) {
	var event stripe.Event
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		return event, err
	}
	r.Body = io.NopCloser(bytes.NewBuffer(payload))

	sigHeader := r.Header.Get("Stripe-Signature")
	return webhook.ConstructEvent(payload, sigHeader, g.webhookSecret)
}
