package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nicofzzn/ecommerce/internal/domain"
	apperrors "github.com/nicofzzn/ecommerce/pkg/errors"
)

type checkoutFixture struct {
	svc      *CheckoutService
	sessions *mockCheckoutRepository
	products *mockProductRepository
	placer   *mockOrderPlacer
	pub      *mockPublisher
}

func newCheckoutFixture() *checkoutFixture {
	f := &checkoutFixture{
		sessions: new(mockCheckoutRepository),
		products: new(mockProductRepository),
		placer:   new(mockOrderPlacer),
		pub:      new(mockPublisher),
	}
	f.svc = NewCheckoutService(f.sessions, f.products, f.placer, f.pub, newTestLogger())
	return f
}

func airpods() *domain.Product {
	return &domain.Product{ID: "p1", Name: "Airpods", Image: "/images/airpods.jpg", Price: 89.99, CountInStock: 10}
}

func readySession() *domain.CheckoutSession {
	s := domain.NewCheckoutSession()
	s.SetCartItems([]domain.CartItem{{Product: "p1", Name: "Airpods", Price: 89.99, CountInStock: 10, Qty: 1}})
	s.SetShippingAddress(domain.Address{Address: "1 Main St", City: "Boston", PostalCode: "02101", Country: "USA"})
	_ = s.SavePaymentMethod("PayPal")
	return s
}

func TestCreateSession(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()

	f.sessions.On("Save", ctx, mock.AnythingOfType("*domain.CheckoutSession")).Return(nil)

	s, err := f.svc.CreateSession(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, domain.StepCart, s.Step)
	assert.Empty(t, s.CartItems)
	f.sessions.AssertExpectations(t)
}

func TestGetSession_NotFound(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()

	f.sessions.On("Get", ctx, "nope").Return(nil, domain.ErrCheckoutNotFound)

	_, err := f.svc.GetSession(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrCheckoutNotFound)
}

func TestSetCart_SnapshotsCatalog(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()
	session := domain.NewCheckoutSession()

	f.sessions.On("Get", ctx, session.ID).Return(session, nil)
	f.products.On("GetByID", ctx, "p1").Return(airpods(), nil)
	f.sessions.On("Save", ctx, session).Return(nil)

	got, err := f.svc.SetCart(ctx, session.ID, []CartLine{{Product: "p1", Qty: 2}, {Product: "p1", Qty: 3}})
	require.NoError(t, err)
	require.Len(t, got.CartItems, 1)
	assert.Equal(t, domain.CartItem{
		Product:      "p1",
		Name:         "Airpods",
		Image:        "/images/airpods.jpg",
		Price:        89.99,
		CountInStock: 10,
		Qty:          3,
	}, got.CartItems[0])
	f.sessions.AssertExpectations(t)
}

func TestSetCart_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		line    CartLine
		product *domain.Product
		lookup  error
		wantErr error
	}{
		{"zero qty", CartLine{Product: "p1", Qty: 0}, nil, nil, apperrors.ErrInvalidInput},
		{"over stock", CartLine{Product: "p1", Qty: 11}, airpods(), nil, domain.ErrInsufficientStock},
		{"unknown product", CartLine{Product: "p9", Qty: 1}, nil, domain.ErrProductNotFound, domain.ErrProductNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCheckoutFixture()
			ctx := context.Background()
			session := domain.NewCheckoutSession()

			f.sessions.On("Get", ctx, session.ID).Return(session, nil)
			if tt.product != nil {
				f.products.On("GetByID", ctx, tt.line.Product).Return(tt.product, nil)
			} else if tt.lookup != nil {
				f.products.On("GetByID", ctx, tt.line.Product).Return(nil, tt.lookup)
			}

			_, err := f.svc.SetCart(ctx, session.ID, []CartLine{tt.line})
			assert.ErrorIs(t, err, tt.wantErr)
			f.sessions.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
			assert.Empty(t, session.CartItems)
		})
	}
}

func TestSetShipping(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()
	session := domain.NewCheckoutSession()
	addr := domain.Address{Address: "1 Main St", City: "Boston", PostalCode: "02101", Country: "USA"}

	f.sessions.On("Get", ctx, session.ID).Return(session, nil)
	f.sessions.On("Save", ctx, session).Return(nil)

	got, err := f.svc.SetShipping(ctx, session.ID, addr)
	require.NoError(t, err)
	assert.Equal(t, &addr, got.ShippingAddress)
}

func TestSetShipping_Incomplete(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()
	session := domain.NewCheckoutSession()

	f.sessions.On("Get", ctx, session.ID).Return(session, nil)

	_, err := f.svc.SetShipping(ctx, session.ID, domain.Address{Address: "1 Main St"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	f.sessions.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestSavePayment(t *testing.T) {
	tests := []struct {
		raw     string
		want    domain.PaymentMethod
		wantErr error
	}{
		{"", domain.PaymentPayPal, nil},
		{"Stripe", domain.PaymentStripe, nil},
		{"Bitcoin", "", domain.ErrInvalidPaymentMethod},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			f := newCheckoutFixture()
			ctx := context.Background()
			session := domain.NewCheckoutSession()

			f.sessions.On("Get", ctx, session.ID).Return(session, nil)
			f.sessions.On("Save", ctx, session).Return(nil).Maybe()

			got, err := f.svc.SavePayment(ctx, session.ID, tt.raw)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, session.PaymentMethod)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.PaymentMethod)
		})
	}
}

func TestEnterStep_PersistsOutcome(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()
	session := readySession()
	session.PaymentMethod = ""

	f.sessions.On("Get", ctx, session.ID).Return(session, nil)
	f.sessions.On("Save", ctx, session).Return(nil)

	tr, err := f.svc.EnterStep(ctx, session.ID, domain.StepPlaceOrder, true)
	require.NoError(t, err)
	assert.True(t, tr.Redirected)
	assert.Equal(t, domain.StepPayment, tr.Step)
	assert.Equal(t, domain.StepPayment, session.Step)
	f.sessions.AssertExpectations(t)
}

func TestEnterStep_LoginKeepsStep(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()
	session := readySession()
	session.Step = domain.StepShipping

	f.sessions.On("Get", ctx, session.ID).Return(session, nil)
	f.sessions.On("Save", ctx, session).Return(nil)

	tr, err := f.svc.EnterStep(ctx, session.ID, domain.StepPayment, false)
	require.NoError(t, err)
	assert.Equal(t, domain.StepLogin, tr.Step)
	assert.Equal(t, domain.StepPayment, tr.ReturnTo)
	assert.Equal(t, domain.StepShipping, session.Step)
	assert.Equal(t, domain.StepPayment, session.ReturnTo)
}

func TestPlaceOrder_Success(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()
	session := readySession()

	f.sessions.On("Get", ctx, session.ID).Return(session, nil)
	f.placer.On("PlaceOrder", ctx, mock.AnythingOfType("*domain.Order"), session.ID).
		Return(func(_ context.Context, o *domain.Order, _ string) (*domain.Order, error) { return o, nil })
	f.pub.On("OrderPlaced", ctx, mock.AnythingOfType("*domain.Order")).Return(nil)
	f.sessions.On("Delete", ctx, session.ID).Return(nil)

	order, err := f.svc.PlaceOrder(ctx, session.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, session.ID, order.ID)
	assert.Equal(t, "u1", order.User)
	assert.Equal(t, domain.PaymentPayPal, order.PaymentMethod)
	assert.InDelta(t, 89.99, order.ItemsPrice, 1e-9)
	assert.InDelta(t, 100, order.ShippingPrice, 1e-9)
	assert.InDelta(t, 13.5, order.TaxPrice, 1e-9)
	assert.InDelta(t, 203.49, order.TotalPrice, 1e-9)
	assert.False(t, order.CreatedAt.IsZero())
	assert.Equal(t, domain.StepCompleted, session.Step)
	f.placer.AssertExpectations(t)
	f.sessions.AssertExpectations(t)
}

func TestPlaceOrder_Gates(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(s *domain.CheckoutSession)
		userID     string
		wantStatus int
	}{
		{"anonymous", func(*domain.CheckoutSession) {}, "", 401},
		{"no payment method", func(s *domain.CheckoutSession) { s.PaymentMethod = "" }, "u1", 409},
		{"no address", func(s *domain.CheckoutSession) { s.ShippingAddress = nil }, "u1", 409},
		{"empty cart", func(s *domain.CheckoutSession) { s.CartItems = nil }, "u1", 409},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCheckoutFixture()
			ctx := context.Background()
			session := readySession()
			tt.mutate(session)

			f.sessions.On("Get", ctx, session.ID).Return(session, nil)

			_, err := f.svc.PlaceOrder(ctx, session.ID, tt.userID)
			require.Error(t, err)
			assert.Equal(t, tt.wantStatus, apperrors.HTTPStatus(err))
			f.placer.AssertNotCalled(t, "PlaceOrder", mock.Anything, mock.Anything, mock.Anything)
			f.sessions.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
		})
	}
}

func TestPlaceOrder_PlacerFailureKeepsSession(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()
	session := readySession()

	f.sessions.On("Get", ctx, session.ID).Return(session, nil)
	f.placer.On("PlaceOrder", ctx, mock.Anything, session.ID).
		Return(nil, apperrors.ServiceUnavailable("order-service is temporarily unavailable", nil))

	_, err := f.svc.PlaceOrder(ctx, session.ID, "u1")
	require.Error(t, err)
	assert.Equal(t, 503, apperrors.HTTPStatus(err))
	f.sessions.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	f.pub.AssertNotCalled(t, "OrderPlaced", mock.Anything, mock.Anything)
}

func TestPlaceOrder_DeleteFailureStillSucceeds(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()
	session := readySession()

	f.sessions.On("Get", ctx, session.ID).Return(session, nil)
	f.placer.On("PlaceOrder", ctx, mock.Anything, session.ID).Return(&domain.Order{ID: "o1"}, nil)
	f.pub.On("OrderPlaced", ctx, mock.Anything).Return(errors.New("broker down"))
	f.sessions.On("Delete", ctx, session.ID).Return(errors.New("redis down"))

	order, err := f.svc.PlaceOrder(ctx, session.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, "o1", order.ID)
}
