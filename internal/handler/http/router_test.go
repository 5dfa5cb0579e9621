package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nicofzzn/ecommerce/internal/domain"
	"github.com/nicofzzn/ecommerce/internal/event"
	"github.com/nicofzzn/ecommerce/internal/service"
	"github.com/nicofzzn/ecommerce/pkg/health"
	"github.com/nicofzzn/ecommerce/pkg/middleware"
)

// =============================================================================
// Mock repositories
// =============================================================================

type mockProductRepo struct {
	mock.Mock
}

func (m *mockProductRepo) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Product), args.Int(1), args.Error(2)
}

func (m *mockProductRepo) Top(ctx context.Context, limit int) ([]domain.Product, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockProductRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepo) Create(ctx context.Context, p *domain.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockProductRepo) Update(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockProductRepo) Modify(ctx context.Context, id string, fn func(*domain.Product) error) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	p := args.Get(0).(*domain.Product)
	if err := fn(p); err != nil {
		return nil, err
	}
	return p, nil
}

type mockCheckoutRepo struct {
	mock.Mock
}

func (m *mockCheckoutRepo) Save(ctx context.Context, s *domain.CheckoutSession) error {
	return m.Called(ctx, s).Error(0)
}

func (m *mockCheckoutRepo) Get(ctx context.Context, id string) (*domain.CheckoutSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CheckoutSession), args.Error(1)
}

func (m *mockCheckoutRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockCheckoutRepo) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type mockOrderRepo struct {
	mock.Mock
}

func (m *mockOrderRepo) Create(ctx context.Context, o *domain.Order) error {
	return m.Called(ctx, o).Error(0)
}

func (m *mockOrderRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

// =============================================================================
// Test helpers
// =============================================================================

const (
	adminToken    = "admin-token"
	customerToken = "customer-token"
	otherToken    = "other-token"

	adminID    = "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa"
	customerID = "cccccccc-cccc-cccc-cccc-cccccccccccc"
	productID  = "11111111-1111-1111-1111-111111111111"
)

func stubValidator(token string) (*middleware.Claims, error) {
	switch token {
	case adminToken:
		return &middleware.Claims{UserID: adminID, Name: "Admin User", Role: middleware.RoleAdmin}, nil
	case customerToken:
		return &middleware.Claims{UserID: customerID, Name: "John Doe", Role: "customer"}, nil
	case otherToken:
		return &middleware.Claims{UserID: "dddddddd-dddd-dddd-dddd-dddddddddddd", Name: "Jane Doe", Role: "customer"}, nil
	}
	return nil, errors.New("invalid token")
}

type testEnv struct {
	handler  http.Handler
	products *mockProductRepo
	sessions *mockCheckoutRepo
	orders   *mockOrderRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	env := &testEnv{
		products: new(mockProductRepo),
		sessions: new(mockCheckoutRepo),
		orders:   new(mockOrderRepo),
	}
	pub := event.Nop{}
	orderSvc := service.NewOrderService(env.orders, log)

	env.handler = NewRouter(RouterConfig{
		Products:       service.NewProductService(env.products, pub, log),
		Reviews:        service.NewReviewService(env.products, pub, log),
		Checkout:       service.NewCheckoutService(env.sessions, env.products, orderSvc, pub, log),
		Orders:         orderSvc,
		Health:         health.NewHandler(),
		ValidateToken:  stubValidator,
		CORS:           middleware.CORSConfig{AllowedOrigins: []string{"*"}},
		PayPalClientID: "sb-client-id",
		Logger:         log,
	})
	return env
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type messageBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields"`
}
