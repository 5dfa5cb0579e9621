package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nicofzzn/ecommerce/internal/domain"
	"github.com/nicofzzn/ecommerce/internal/repository"
)

// OrderPlacer hands a finished checkout to whoever owns orders. key is
// stable across retries of the same checkout.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, o *domain.Order, key string) (*domain.Order, error)
}

// Requester identifies the caller of an order read.
type Requester struct {
	UserID  string
	IsAdmin bool
}

// OrderService stores orders locally and serves them to their owners.
type OrderService struct {
	repo   repository.OrderRepository
	logger *slog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(repo repository.OrderRepository, logger *slog.Logger) *OrderService {
	return &OrderService{repo: repo, logger: logger}
}

// PlaceOrder stores o. It implements OrderPlacer for the local store; the
// order ID already identifies the checkout so key is not needed. Placing the
// same order again for the same user returns the stored one.
func (s *OrderService) PlaceOrder(ctx context.Context, o *domain.Order, _ string) (*domain.Order, error) {
	err := s.repo.Create(ctx, o)
	if errors.Is(err, domain.ErrOrderExists) {
		return s.existingOrder(ctx, o)
	}
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	s.logger.InfoContext(ctx, "order stored",
		slog.String("order_id", o.ID),
		slog.String("user_id", o.User),
	)
	return o, nil
}

func (s *OrderService) existingOrder(ctx context.Context, o *domain.Order) (*domain.Order, error) {
	existing, err := s.repo.GetByID(ctx, o.ID)
	if err != nil {
		return nil, fmt.Errorf("get placed order: %w", err)
	}
	if existing.User != o.User {
		return nil, domain.ErrOrderExists
	}
	s.logger.InfoContext(ctx, "order already placed",
		slog.String("order_id", existing.ID),
		slog.String("user_id", existing.User),
	)
	return existing, nil
}

// GetOrder returns an order to its owner or to an admin.
func (s *OrderService) GetOrder(ctx context.Context, id string, who Requester) (*domain.Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order by id: %w", err)
	}
	if o.User != who.UserID && !who.IsAdmin {
		return nil, domain.ErrOrderForbidden
	}
	return o, nil
}

var _ OrderPlacer = (*OrderService)(nil)
