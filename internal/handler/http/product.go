package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nicofzzn/ecommerce/internal/domain"
	"github.com/nicofzzn/ecommerce/internal/service"
	"github.com/nicofzzn/ecommerce/pkg/httputil"
	"github.com/nicofzzn/ecommerce/pkg/middleware"
	"github.com/nicofzzn/ecommerce/pkg/pagination"
)

const maxBodyBytes = 1 << 20

// ProductHandler handles HTTP requests for catalog endpoints.
type ProductHandler struct {
	service *service.ProductService
	logger  *slog.Logger
}

// NewProductHandler creates a new product HTTP handler.
func NewProductHandler(svc *service.ProductService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// UpdateProductRequest is the JSON body of PUT /api/products/{id}. Every
// field is optional; absent fields keep their stored value.
type UpdateProductRequest struct {
	Name         *string  `json:"name" validate:"omitempty,min=1,max=200"`
	Price        *float64 `json:"price" validate:"omitempty,gte=0"`
	Image        *string  `json:"image" validate:"omitempty,max=500"`
	Brand        *string  `json:"brand" validate:"omitempty,max=200"`
	Category     *string  `json:"category" validate:"omitempty,max=200"`
	CountInStock *int     `json:"countInStock" validate:"omitempty,gte=0"`
	Description  *string  `json:"description"`

	// NumReviews is accepted from older clients and ignored; it is derived
	// from the product's reviews.
	NumReviews *int `json:"numReviews"`
}

func (req UpdateProductRequest) patch() domain.ProductPatch {
	return domain.ProductPatch{
		Name:         req.Name,
		Price:        req.Price,
		Image:        req.Image,
		Brand:        req.Brand,
		Category:     req.Category,
		CountInStock: req.CountInStock,
		Description:  req.Description,
	}
}

// --- Handlers ---

// ListProducts handles GET /api/products?keyword=&pageNumber=
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.service.ListProducts(r.Context(), q.Get("keyword"), pagination.ParsePage(q.Get("pageNumber")))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, page)
}

// TopProducts handles GET /api/products/top
func (h *ProductHandler) TopProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.TopProducts(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, products)
}

// GetProduct handles GET /api/products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	product, err := h.service.GetProduct(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, product)
}

// CreateProduct handles POST /api/products. It creates the sample product
// that an admin then edits.
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.CreateSampleProduct(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, product)
}

// UpdateProduct handles PUT /api/products/{id}
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req UpdateProductRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}

	product, err := h.service.UpdateProduct(r.Context(), id.String(), req.patch())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, product)
}

// DeleteProduct handles DELETE /api/products/{id}
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.DeleteProduct(r.Context(), id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteMessage(w, http.StatusOK, "Product removed")
}
