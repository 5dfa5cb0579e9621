package domain

import (
	"net/http"

	apperrors "github.com/nicofzzn/ecommerce/pkg/errors"
)

// Business errors returned by the services. Handlers write them as-is, so the
// messages are what storefront clients see.
var (
	ErrProductNotFound  = apperrors.NotFound("Product")
	ErrCheckoutNotFound = apperrors.NotFound("Checkout session")
	ErrOrderNotFound    = apperrors.NotFound("Order")

	ErrAlreadyReviewed = apperrors.New("ALREADY_REVIEWED",
		"Product already reviewed", http.StatusBadRequest, apperrors.ErrConflict)

	ErrInvalidPaymentMethod = apperrors.New("INVALID_PAYMENT_METHOD",
		"Payment method must be one of PayPal, Stripe", http.StatusBadRequest, apperrors.ErrInvalidInput)

	ErrUnknownStep = apperrors.New("UNKNOWN_STEP",
		"Unknown checkout step", http.StatusBadRequest, apperrors.ErrInvalidInput)

	ErrInsufficientStock = apperrors.New("INSUFFICIENT_STOCK",
		"Requested quantity exceeds stock", http.StatusBadRequest, apperrors.ErrInvalidInput)

	ErrOrderForbidden = apperrors.Forbidden("Not authorized to view this order")

	ErrOrderExists = apperrors.New("ORDER_EXISTS",
		"Order already placed", http.StatusConflict, apperrors.ErrConflict)
)
