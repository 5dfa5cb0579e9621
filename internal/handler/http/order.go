package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nicofzzn/ecommerce/internal/service"
	"github.com/nicofzzn/ecommerce/pkg/httputil"
	"github.com/nicofzzn/ecommerce/pkg/middleware"
)

// OrderHandler serves stored orders to their owners.
type OrderHandler struct {
	service *service.OrderService
	logger  *slog.Logger
}

// NewOrderHandler creates a new order HTTP handler.
func NewOrderHandler(svc *service.OrderService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{service: svc, logger: logger}
}

// GetOrder handles GET /api/orders/{id}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	claims := middleware.ClaimsFromContext(r.Context())
	order, err := h.service.GetOrder(r.Context(), id.String(), service.Requester{
		UserID:  claims.UserID,
		IsAdmin: claims.IsAdmin(),
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, order)
}
