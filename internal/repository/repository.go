package repository

import (
	"context"

	"github.com/nicofzzn/ecommerce/internal/domain"
)

// ProductRepository defines product persistence. Missing products are
// reported as domain.ErrProductNotFound.
type ProductRepository interface {
	// List returns one page of products matching filter, in insertion order,
	// together with the number of matching products across all pages.
	List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int, error)

	// Top returns up to limit products by rating, highest first.
	Top(ctx context.Context, limit int) ([]domain.Product, error)

	// GetByID retrieves a product with its reviews.
	GetByID(ctx context.Context, id string) (*domain.Product, error)

	// Create inserts p and fills in its ID and timestamps.
	Create(ctx context.Context, p *domain.Product) error

	// Update applies patch and returns the stored product.
	Update(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error)

	// Delete removes a product.
	Delete(ctx context.Context, id string) error

	// Modify loads the product under a row lock, passes it to fn, and stores
	// its reviews and aggregates if fn succeeds. Concurrent calls for the same
	// product run one after another.
	Modify(ctx context.Context, id string, fn func(*domain.Product) error) (*domain.Product, error)
}

// OrderRepository defines order persistence.
type OrderRepository interface {
	Create(ctx context.Context, o *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
}

// CheckoutRepository stores checkout sessions. A session expires once it
// has been neither read nor written for the store's TTL.
type CheckoutRepository interface {
	Save(ctx context.Context, s *domain.CheckoutSession) error
	Get(ctx context.Context, id string) (*domain.CheckoutSession, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}
