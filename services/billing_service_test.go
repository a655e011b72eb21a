package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stripe/stripe-go/v80"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dsouzakeegan/fitness-tracker/models"
)

// --- Mocks ---

type MockStripeGateway struct{ mock.Mock }

func (m *MockStripeGateway) CreatePaymentIntent(ctx context.Context, params CreateIntentParams) (*stripe.PaymentIntent, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripe.PaymentIntent), args.Error(1)
}
func (m *MockStripeGateway) ListPaymentIntents(ctx context.Context, customerID string, limit int64) ([]*stripe.PaymentIntent, error) {
	args := m.Called(ctx, customerID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*stripe.PaymentIntent), args.Error(1)
}
func (m *MockStripeGateway) ListInvoices(ctx context.Context, customerID string, limit int64) ([]*stripe.Invoice, error) {
	args := m.Called(ctx, customerID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*stripe.Invoice), args.Error(1)
}
func (m *MockStripeGateway) CreateCustomer(ctx context.Context, email, name, userID string) (*stripe.Customer, error) {
	args := m.Called(ctx, email, name, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripe.Customer), args.Error(1)
}
func (m *MockStripeGateway) AttachPaymentMethod(ctx context.Context, paymentMethodID, customerID string) error {
	args := m.Called(ctx, paymentMethodID, customerID)
	return args.Error(0)
}
func (m *MockStripeGateway) SetDefaultPaymentMethod(ctx context.Context, customerID, paymentMethodID string) error {
	args := m.Called(ctx, customerID, paymentMethodID)
	return args.Error(0)
}
func (m *MockStripeGateway) CreateSubscription(ctx context.Context, customerID, priceID, userID string) (*stripe.Subscription, error) {
	args := m.Called(ctx, customerID, priceID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripe.Subscription), args.Error(1)
}
func (m *MockStripeGateway) GetSubscription(ctx context.Context, subscriptionID string) (*stripe.Subscription, error) {
	args := m.Called(ctx, subscriptionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripe.Subscription), args.Error(1)
}
func (m *MockStripeGateway) SetCancelAtPeriodEnd(ctx context.Context, subscriptionID string, cancel bool) (*stripe.Subscription, error) {
	args := m.Called(ctx, subscriptionID, cancel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripe.Subscription), args.Error(1)
}
func (m *MockStripeGateway) GetPrice(ctx context.Context, priceID string) (*stripe.Price, error) {
	args := m.Called(ctx, priceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripe.Price), args.Error(1)
}
func (m *MockStripeGateway) GetProduct(ctx context.Context, productID string) (*stripe.Product, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripe.Product), args.Error(1)
}
func (m *MockStripeGateway) ParseWebhook(r *http.Request) (stripe.Event, error) {
	args := m.Called(r)
	return args.Get(0).(stripe.Event), args.Error(1)
}

type MockPaymentRepository struct{ mock.Mock }

func (m *MockPaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}
func (m *MockPaymentRepository) FindByStripeID(ctx context.Context, stripePaymentID string) (*models.Payment, error) {
	args := m.Called(ctx, stripePaymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}
func (m *MockPaymentRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]models.Payment, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Payment), args.Error(1)
}
func (m *MockPaymentRepository) UpdateByStripeID(ctx context.Context, stripePaymentID string, updates map[string]interface{}) error {
	args := m.Called(ctx, stripePaymentID, updates)
	return args.Error(0)
}

type MockSubscriptionRepository struct{ mock.Mock }

func (m *MockSubscriptionRepository) Create(ctx context.Context, sub *models.Subscription) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}
func (m *MockSubscriptionRepository) FindByStripeID(ctx context.Context, stripeSubscriptionID string) (*models.Subscription, error) {
	args := m.Called(ctx, stripeSubscriptionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}
func (m *MockSubscriptionRepository) FindLatestByUserAndStatuses(ctx context.Context, userID uuid.UUID, statuses []string) (*models.Subscription, error) {
	args := m.Called(ctx, userID, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}
func (m *MockSubscriptionRepository) UpdateByStripeID(ctx context.Context, stripeSubscriptionID string, updates map[string]interface{}) error {
	args := m.Called(ctx, stripeSubscriptionID, updates)
	return args.Error(0)
}

type billingFixture struct {
	gateway  *MockStripeGateway
	payments *MockPaymentRepository
	subs     *MockSubscriptionRepository
	users    *MockUserRepository
	svc      BillingService
}

func newBillingFixture() *billingFixture {
	f := &billingFixture{
		gateway:  new(MockStripeGateway),
		payments: new(MockPaymentRepository),
		subs:     new(MockSubscriptionRepository),
		users:    new(MockUserRepository),
	}
	f.svc = NewBillingService(f.gateway, f.payments, f.subs, f.users, zap.NewNop())
	return f
}

// --- Tests ---

func TestCreatePaymentIntent(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	user := &models.User{ID: userID, Email: "user@example.com"}

	t.Run("Success records pending payment", func(t *testing.T) {
		f := newBillingFixture()
		f.users.On("FindByID", mock.Anything, userID).Return(user, nil).Once()
		f.gateway.On("CreatePaymentIntent", mock.Anything, mock.MatchedBy(func(p CreateIntentParams) bool {
			return p.Amount == 999 && p.Currency == "usd" && p.PaymentType == "subscription" && p.PlanID == "unknown"
		})).Return(&stripe.PaymentIntent{ID: "pi_123", ClientSecret: "pi_123_secret"}, nil).Once()
		f.payments.On("Create", mock.Anything, mock.MatchedBy(func(p *models.Payment) bool {
			return p.StripePaymentID == "pi_123" &&
				p.Amount == 999 &&
				p.Status == models.PaymentStatusPending &&
				p.Metadata["paymentType"] == "subscription" &&
				p.Metadata["planId"] == "unknown"
		})).Return(nil).Once()

		result, svcErr := f.svc.CreatePaymentIntent(ctx, userID, &models.CreatePaymentIntentRequest{Amount: 999})

		assert.Nil(t, svcErr)
		assert.Equal(t, "pi_123_secret", result.ClientSecret)
		assert.Equal(t, "pi_123", result.PaymentIntentID)
		f.gateway.AssertExpectations(t)
		f.payments.AssertExpectations(t)
	})

	t.Run("Amount below minimum fails before provider call", func(t *testing.T) {
		f := newBillingFixture()

		_, svcErr := f.svc.CreatePaymentIntent(ctx, userID, &models.CreatePaymentIntentRequest{Amount: 49})

		assert.NotNil(t, svcErr)
		assert.Equal(t, 400, svcErr.StatusCode)
		f.gateway.AssertNotCalled(t, "CreatePaymentIntent", mock.Anything, mock.Anything)
		f.payments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Provider failure leaves no record", func(t *testing.T) {
		f := newBillingFixture()
		f.users.On("FindByID", mock.Anything, userID).Return(user, nil).Once()
		f.gateway.On("CreatePaymentIntent", mock.Anything, mock.Anything).
			Return(nil, &stripe.Error{Msg: "Your card was declined."}).Once()

		_, svcErr := f.svc.CreatePaymentIntent(ctx, userID, &models.CreatePaymentIntentRequest{Amount: 500})

		assert.NotNil(t, svcErr)
		assert.Equal(t, "Your card was declined.", svcErr.Message)
		f.payments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestGetPaymentHistory(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("Without customer id returns local records only", func(t *testing.T) {
		f := newBillingFixture()
		f.payments.On("FindByUser", mock.Anything, userID).Return([]models.Payment{
			{StripePaymentID: "pi_local", Amount: 1500, Currency: "usd", Status: models.PaymentStatusPending},
		}, nil).Once()

		views, svcErr := f.svc.GetPaymentHistory(ctx, userID, "")

		assert.Nil(t, svcErr)
		assert.Len(t, views, 1)
		assert.Equal(t, "pi_local", views[0].ID)
		assert.Equal(t, "Payment", views[0].Description)
		f.gateway.AssertNotCalled(t, "ListPaymentIntents", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Merges intents and paid invoices newest first", func(t *testing.T) {
		f := newBillingFixture()
		f.payments.On("FindByUser", mock.Anything, userID).Return([]models.Payment{}, nil).Once()
		f.gateway.On("ListPaymentIntents", mock.Anything, "cus_1", mock.Anything).Return([]*stripe.PaymentIntent{
			{ID: "pi_old", Amount: 999, Currency: "usd", Status: stripe.PaymentIntentStatusSucceeded, Created: 100},
		}, nil).Once()
		f.gateway.On("ListInvoices", mock.Anything, "cus_1", mock.Anything).Return([]*stripe.Invoice{
			{
				ID:            "in_1",
				Status:        stripe.InvoiceStatusPaid,
				AmountPaid:    2999,
				Currency:      "usd",
				Created:       200,
				PaymentIntent: &stripe.PaymentIntent{ID: "pi_new"},
			},
			// Open invoices never show up in history.
			{ID: "in_2", Status: stripe.InvoiceStatusOpen, PaymentIntent: &stripe.PaymentIntent{ID: "pi_open"}},
		}, nil).Once()
		f.payments.On("UpdateByStripeID", mock.Anything, "pi_old", mock.Anything).Return(nil).Once()

		views, svcErr := f.svc.GetPaymentHistory(ctx, userID, "cus_1")

		assert.Nil(t, svcErr)
		assert.Len(t, views, 2)
		assert.Equal(t, "pi_new", views[0].ID)
		assert.Equal(t, "Subscription Payment", views[0].Description)
		assert.Equal(t, models.PaymentStatusSucceeded, views[0].Status)
		assert.Equal(t, "pi_old", views[1].ID)
		assert.Equal(t, "One-time payment", views[1].Description)
		f.payments.AssertExpectations(t)
	})

	t.Run("Empty provider history serializes as an empty list", func(t *testing.T) {
		f := newBillingFixture()
		f.payments.On("FindByUser", mock.Anything, userID).Return([]models.Payment{}, nil).Once()
		f.gateway.On("ListPaymentIntents", mock.Anything, "cus_1", mock.Anything).
			Return([]*stripe.PaymentIntent{}, nil).Once()
		f.gateway.On("ListInvoices", mock.Anything, "cus_1", mock.Anything).
			Return([]*stripe.Invoice{}, nil).Once()

		views, svcErr := f.svc.GetPaymentHistory(ctx, userID, "cus_1")

		assert.Nil(t, svcErr)
		assert.NotNil(t, views)
		assert.Empty(t, views)
	})

	t.Run("Provider failure does not partially merge", func(t *testing.T) {
		f := newBillingFixture()
		f.payments.On("FindByUser", mock.Anything, userID).Return([]models.Payment{}, nil).Once()
		f.gateway.On("ListPaymentIntents", mock.Anything, "cus_1", mock.Anything).
			Return(nil, &stripe.Error{Msg: "Stripe is unavailable"}).Once()

		_, svcErr := f.svc.GetPaymentHistory(ctx, userID, "cus_1")

		assert.NotNil(t, svcErr)
		assert.Equal(t, 500, svcErr.StatusCode)
		f.payments.AssertNotCalled(t, "UpdateByStripeID", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCreateSubscription(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	customerID := "cus_existing"

	newSub := func() *stripe.Subscription {
		return &stripe.Subscription{
			ID:                 "sub_123",
			Status:             stripe.SubscriptionStatusIncomplete,
			CurrentPeriodStart: 1700000000,
			CurrentPeriodEnd:   1702600000,
			LatestInvoice: &stripe.Invoice{
				PaymentIntent: &stripe.PaymentIntent{ClientSecret: "pi_sub_secret"},
			},
		}
	}

	t.Run("Existing live subscription blocks creation", func(t *testing.T) {
		f := newBillingFixture()
		f.users.On("FindByID", mock.Anything, userID).
			Return(&models.User{ID: userID, StripeCustomerID: &customerID}, nil).Once()
		f.subs.On("FindLatestByUserAndStatuses", mock.Anything, userID, models.LiveSubscriptionStatuses).
			Return(&models.Subscription{StripeSubscriptionID: "sub_live"}, nil).Once()

		_, svcErr := f.svc.CreateSubscription(ctx, userID, &models.CreateSubscriptionRequest{PriceID: "price_abc"})

		assert.NotNil(t, svcErr)
		assert.Equal(t, 400, svcErr.StatusCode)
		f.gateway.AssertNotCalled(t, "CreateSubscription", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Creates customer lazily and persists it", func(t *testing.T) {
		f := newBillingFixture()
		f.users.On("FindByID", mock.Anything, userID).
			Return(&models.User{ID: userID, Email: "user@example.com", FirstName: "Jess", LastName: "Doe"}, nil).Once()
		f.subs.On("FindLatestByUserAndStatuses", mock.Anything, userID, models.LiveSubscriptionStatuses).
			Return(nil, gorm.ErrRecordNotFound).Once()
		f.gateway.On("CreateCustomer", mock.Anything, "user@example.com", "Jess Doe", userID.String()).
			Return(&stripe.Customer{ID: "cus_new"}, nil).Once()
		f.users.On("SetStripeCustomerID", mock.Anything, userID, "cus_new").Return(nil).Once()
		f.gateway.On("CreateSubscription", mock.Anything, "cus_new", "price_abc", userID.String()).
			Return(newSub(), nil).Once()
		f.subs.On("Create", mock.Anything, mock.MatchedBy(func(s *models.Subscription) bool {
			return s.StripeSubscriptionID == "sub_123" && s.StripeCustomerID == "cus_new" && s.PriceID == "price_abc"
		})).Return(nil).Once()

		result, svcErr := f.svc.CreateSubscription(ctx, userID, &models.CreateSubscriptionRequest{PriceID: "price_abc"})

		assert.Nil(t, svcErr)
		assert.Equal(t, "sub_123", result.SubscriptionID)
		assert.Equal(t, "pi_sub_secret", result.ClientSecret)
		f.users.AssertExpectations(t)
		f.gateway.AssertExpectations(t)
		f.subs.AssertExpectations(t)
	})

	t.Run("Attaches payment method when provided", func(t *testing.T) {
		f := newBillingFixture()
		f.users.On("FindByID", mock.Anything, userID).
			Return(&models.User{ID: userID, StripeCustomerID: &customerID}, nil).Once()
		f.subs.On("FindLatestByUserAndStatuses", mock.Anything, userID, models.LiveSubscriptionStatuses).
			Return(nil, gorm.ErrRecordNotFound).Once()
		f.gateway.On("AttachPaymentMethod", mock.Anything, "pm_1", customerID).Return(nil).Once()
		f.gateway.On("SetDefaultPaymentMethod", mock.Anything, customerID, "pm_1").Return(nil).Once()
		f.gateway.On("CreateSubscription", mock.Anything, customerID, "price_abc", userID.String()).
			Return(newSub(), nil).Once()
		f.subs.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

		_, svcErr := f.svc.CreateSubscription(ctx, userID, &models.CreateSubscriptionRequest{
			PriceID:         "price_abc",
			PaymentMethodID: "pm_1",
		})

		assert.Nil(t, svcErr)
		f.gateway.AssertExpectations(t)
	})
}

func TestGetCurrentSubscription(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("No local record - 404", func(t *testing.T) {
		f := newBillingFixture()
		f.subs.On("FindLatestByUserAndStatuses", mock.Anything, userID, currentSubscriptionStatuses).
			Return(nil, gorm.ErrRecordNotFound).Once()

		_, svcErr := f.svc.GetCurrentSubscription(ctx, userID)

		assert.NotNil(t, svcErr)
		assert.Equal(t, 404, svcErr.StatusCode)
	})

	t.Run("Gone at provider - 404", func(t *testing.T) {
		f := newBillingFixture()
		f.subs.On("FindLatestByUserAndStatuses", mock.Anything, userID, currentSubscriptionStatuses).
			Return(&models.Subscription{StripeSubscriptionID: "sub_gone"}, nil).Once()
		f.gateway.On("GetSubscription", mock.Anything, "sub_gone").
			Return(nil, &stripe.Error{Code: stripe.ErrorCodeResourceMissing}).Once()

		_, svcErr := f.svc.GetCurrentSubscription(ctx, userID)

		assert.NotNil(t, svcErr)
		assert.Equal(t, 404, svcErr.StatusCode)
	})

	t.Run("Syncs local record and resolves plan", func(t *testing.T) {
		f := newBillingFixture()
		f.subs.On("FindLatestByUserAndStatuses", mock.Anything, userID, currentSubscriptionStatuses).
			Return(&models.Subscription{StripeSubscriptionID: "sub_123"}, nil).Once()
		f.gateway.On("GetSubscription", mock.Anything, "sub_123").Return(&stripe.Subscription{
			ID:                 "sub_123",
			Status:             stripe.SubscriptionStatusActive,
			CurrentPeriodStart: 1700000000,
			CurrentPeriodEnd:   1702600000,
			Items: &stripe.SubscriptionItemList{Data: []*stripe.SubscriptionItem{
				{Price: &stripe.Price{ID: "price_abc"}},
			}},
		}, nil).Once()
		f.subs.On("UpdateByStripeID", mock.Anything, "sub_123", mock.Anything).Return(nil).Once()
		f.gateway.On("GetPrice", mock.Anything, "price_abc").Return(&stripe.Price{
			ID:         "price_abc",
			UnitAmount: 1999,
			Currency:   stripe.CurrencyUSD,
			Product:    &stripe.Product{ID: "prod_1"},
		}, nil).Once()
		f.gateway.On("GetProduct", mock.Anything, "prod_1").Return(&stripe.Product{
			ID:   "prod_1",
			Name: "Premium Plan",
		}, nil).Once()

		sub, svcErr := f.svc.GetCurrentSubscription(ctx, userID)

		assert.Nil(t, svcErr)
		assert.Equal(t, "premium", sub.PlanID)
		assert.Equal(t, "Premium Monthly", sub.PlanName)
		assert.Equal(t, int64(1999), sub.Amount)
		f.subs.AssertExpectations(t)
	})
}

func TestUpdateSubscription(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	customerID := "cus_owner"
	user := &models.User{ID: userID, StripeCustomerID: &customerID}

	t.Run("Invalid action fails before provider call", func(t *testing.T) {
		f := newBillingFixture()

		_, svcErr := f.svc.UpdateSubscription(ctx, userID, "sub_123", "pause")

		assert.NotNil(t, svcErr)
		assert.Equal(t, 400, svcErr.StatusCode)
		f.gateway.AssertNotCalled(t, "GetSubscription", mock.Anything, mock.Anything)
	})

	t.Run("Ownership mismatch - 403", func(t *testing.T) {
		f := newBillingFixture()
		f.users.On("FindByID", mock.Anything, userID).Return(user, nil).Once()
		f.gateway.On("GetSubscription", mock.Anything, "sub_123").Return(&stripe.Subscription{
			ID:       "sub_123",
			Customer: &stripe.Customer{ID: "cus_someone_else"},
		}, nil).Once()

		_, svcErr := f.svc.UpdateSubscription(ctx, userID, "sub_123", "cancel")

		assert.NotNil(t, svcErr)
		assert.Equal(t, 403, svcErr.StatusCode)
		f.gateway.AssertNotCalled(t, "SetCancelAtPeriodEnd", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Cancel sets cancel_at_period_end", func(t *testing.T) {
		f := newBillingFixture()
		f.users.On("FindByID", mock.Anything, userID).Return(user, nil).Once()
		f.gateway.On("GetSubscription", mock.Anything, "sub_123").Return(&stripe.Subscription{
			ID:       "sub_123",
			Customer: &stripe.Customer{ID: customerID},
		}, nil).Once()
		f.gateway.On("SetCancelAtPeriodEnd", mock.Anything, "sub_123", true).Return(&stripe.Subscription{
			ID:                "sub_123",
			Status:            stripe.SubscriptionStatusActive,
			CurrentPeriodEnd:  1702600000,
			CancelAtPeriodEnd: true,
		}, nil).Once()
		f.subs.On("UpdateByStripeID", mock.Anything, "sub_123", mock.MatchedBy(func(u map[string]interface{}) bool {
			return u["cancel_at_period_end"] == true
		})).Return(nil).Once()

		sub, svcErr := f.svc.UpdateSubscription(ctx, userID, "sub_123", "cancel")

		assert.Nil(t, svcErr)
		assert.True(t, sub.CancelAtPeriodEnd)
		f.subs.AssertExpectations(t)
	})
}

func TestGetInvoice(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	customerID := "cus_1"
	user := &models.User{ID: userID, StripeCustomerID: &customerID}

	t.Run("Found by payment intent id", func(t *testing.T) {
		f := newBillingFixture()
		f.users.On("FindByID", mock.Anything, userID).Return(user, nil).Once()
		f.gateway.On("ListInvoices", mock.Anything, customerID, mock.Anything).Return([]*stripe.Invoice{
			{
				ID:               "in_1",
				InvoicePDF:       "https://stripe.test/in_1.pdf",
				HostedInvoiceURL: "https://stripe.test/in_1",
				PaymentIntent:    &stripe.PaymentIntent{ID: "pi_match"},
			},
		}, nil).Once()

		result, svcErr := f.svc.GetInvoice(ctx, userID, "pi_match")

		assert.Nil(t, svcErr)
		assert.Equal(t, "https://stripe.test/in_1.pdf", result.InvoiceURL)
	})

	t.Run("No match - 404", func(t *testing.T) {
		f := newBillingFixture()
		f.users.On("FindByID", mock.Anything, userID).Return(user, nil).Once()
		f.gateway.On("ListInvoices", mock.Anything, customerID, mock.Anything).
			Return([]*stripe.Invoice{}, nil).Once()

		_, svcErr := f.svc.GetInvoice(ctx, userID, "pi_missing")

		assert.NotNil(t, svcErr)
		assert.Equal(t, 404, svcErr.StatusCode)
	})
}
