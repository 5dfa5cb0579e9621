package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nicofzzn/ecommerce/internal/domain"
	"github.com/nicofzzn/ecommerce/internal/service"
	"github.com/nicofzzn/ecommerce/pkg/httputil"
	"github.com/nicofzzn/ecommerce/pkg/logger"
	"github.com/nicofzzn/ecommerce/pkg/middleware"
)

// CheckoutHandler handles HTTP requests that drive a checkout session.
type CheckoutHandler struct {
	service *service.CheckoutService
	logger  *slog.Logger
}

// NewCheckoutHandler creates a new checkout HTTP handler.
func NewCheckoutHandler(svc *service.CheckoutService, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// CartItemRequest is one requested cart line.
type CartItemRequest struct {
	Product string `json:"product" validate:"required,uuid"`
	Qty     int    `json:"qty" validate:"required,min=1"`
}

// SetCartRequest replaces the cart.
type SetCartRequest struct {
	Items []CartItemRequest `json:"items" validate:"dive"`
}

// SetShippingRequest saves the shipping address.
type SetShippingRequest struct {
	Address    string `json:"address" validate:"required,max=200"`
	City       string `json:"city" validate:"required,max=100"`
	PostalCode string `json:"postalCode" validate:"required,max=20"`
	Country    string `json:"country" validate:"required,max=100"`
}

// SavePaymentRequest selects the payment method. Allowed values are checked
// by the session so the error message stays the same everywhere.
type SavePaymentRequest struct {
	PaymentMethod string `json:"paymentMethod"`
}

// sessionID reads and validates the {id} URL parameter and tags the request
// context with it.
func sessionID(w http.ResponseWriter, r *http.Request) (string, *http.Request, bool) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return "", r, false
	}
	ctx := logger.WithCheckoutID(r.Context(), id.String())
	ctx = logger.NewContext(ctx, logger.FromContext(ctx).With(slog.String("checkout_id", id.String())))
	return id.String(), r.WithContext(ctx), true
}

// --- Handlers ---

// CreateSession handles POST /api/checkout
func (h *CheckoutHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.CreateSession(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, session)
}

// GetSession handles GET /api/checkout/{id}
func (h *CheckoutHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	id, r, ok := sessionID(w, r)
	if !ok {
		return
	}

	session, err := h.service.GetSession(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, session)
}

// SetCart handles PUT /api/checkout/{id}/cart
func (h *CheckoutHandler) SetCart(w http.ResponseWriter, r *http.Request) {
	id, r, ok := sessionID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req SetCartRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}

	lines := make([]service.CartLine, len(req.Items))
	for i, it := range req.Items {
		lines[i] = service.CartLine{Product: it.Product, Qty: it.Qty}
	}

	session, err := h.service.SetCart(r.Context(), id, lines)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, session)
}

// SetShipping handles PUT /api/checkout/{id}/shipping
func (h *CheckoutHandler) SetShipping(w http.ResponseWriter, r *http.Request) {
	id, r, ok := sessionID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req SetShippingRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}

	session, err := h.service.SetShipping(r.Context(), id, domain.Address{
		Address:    req.Address,
		City:       req.City,
		PostalCode: req.PostalCode,
		Country:    req.Country,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, session)
}

// SavePayment handles PUT /api/checkout/{id}/payment
func (h *CheckoutHandler) SavePayment(w http.ResponseWriter, r *http.Request) {
	id, r, ok := sessionID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req SavePaymentRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}

	session, err := h.service.SavePayment(r.Context(), id, req.PaymentMethod)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, session)
}

// EnterStep handles POST /api/checkout/{id}/steps/{step}. The response says
// which step the client should render, with the reason when redirected.
func (h *CheckoutHandler) EnterStep(w http.ResponseWriter, r *http.Request) {
	id, r, ok := sessionID(w, r)
	if !ok {
		return
	}
	step, err := domain.ParseStep(chi.URLParam(r, "step"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	authenticated := middleware.ClaimsFromContext(r.Context()) != nil
	t, err := h.service.EnterStep(r.Context(), id, step, authenticated)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, t)
}

// PlaceOrder handles POST /api/checkout/{id}/order
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	id, r, ok := sessionID(w, r)
	if !ok {
		return
	}

	order, err := h.service.PlaceOrder(r.Context(), id, middleware.UserIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, order)
}
