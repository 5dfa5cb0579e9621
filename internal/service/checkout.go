package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"


	"github.com/nicofzzn/ecommerce/internal/domain"
	"github.com/nicofzzn/ecommerce/internal/event"
	"github.com/nicofzzn/ecommerce/internal/repository"
	apperrors "github.com/nicofzzn/ecommerce/pkg/errors"
	"github.com/nicofzzn/ecommerce/pkg/logger"
)

// CartLine is a requested cart entry before it is resolved against the catalog.
type CartLine struct {
	Product string
	Qty     int
}

// CheckoutService drives checkout sessions through the step gates and hands
// finished sessions to the order placer.
type CheckoutService struct {
	sessions  repository.CheckoutRepository
	products  repository.ProductRepository
	placer    OrderPlacer
	publisher event.Publisher
	logger    *slog.Logger
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(
	sessions repository.CheckoutRepository,
	products repository.ProductRepository,
	placer OrderPlacer,
	publisher event.Publisher,
	logger *slog.Logger,
) *CheckoutService {
	return &CheckoutService{
		sessions:  sessions,
		products:  products,
		placer:    placer,
		publisher: publisher,
		logger:    logger,
	}
}

// CreateSession starts an empty session at the cart step.
func (s *CheckoutService) CreateSession(ctx context.Context) (*domain.CheckoutSession, error) {
	session := domain.NewCheckoutSession()
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save checkout session: %w", err)
	}
	s.logger.InfoContext(ctx, "checkout session created", slog.String("checkout_id", session.ID))
	return session, nil
}

// GetSession loads a session.
func (s *CheckoutService) GetSession(ctx context.Context, id string) (*domain.CheckoutSession, error) {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get checkout session: %w", err)
	}
	return session, nil
}

// SetCart replaces the cart with lines, snapshotting name, image, price and
// stock from the catalog. A product listed twice keeps its position and the
// last quantity.
func (s *CheckoutService) SetCart(ctx context.Context, id string, lines []CartLine) (*domain.CheckoutSession, error) {
	return s.update(ctx, id, "cart", func(session *domain.CheckoutSession) error {
		items := make([]domain.CartItem, 0, len(lines))
		index := make(map[string]int, len(lines))
		for _, line := range lines {
			if line.Qty < 1 {
				return apperrors.InvalidInput("Quantity must be at least 1")
			}
			p, err := s.products.GetByID(ctx, line.Product)
			if err != nil {
				return fmt.Errorf("resolve cart product %s: %w", line.Product, err)
			}
			if line.Qty > p.CountInStock {
				return domain.ErrInsufficientStock
			}
			item := domain.CartItem{
				Product:      p.ID,
				Name:         p.Name,
				Image:        p.Image,
				Price:        p.Price,
				CountInStock: p.CountInStock,
				Qty:          line.Qty,
			}
			if i, ok := index[p.ID]; ok {
				items[i] = item
				continue
			}
			index[p.ID] = len(items)
			items = append(items, item)
		}
		session.SetCartItems(items)
		return nil
	})
}

// SetShipping saves the shipping address.
func (s *CheckoutService) SetShipping(ctx context.Context, id string, addr domain.Address) (*domain.CheckoutSession, error) {
	return s.update(ctx, id, "shipping", func(session *domain.CheckoutSession) error {
		if !addr.Complete() {
			return apperrors.InvalidInput("Address, city, postal code and country are required")
		}
		session.SetShippingAddress(addr)
		return nil
	})
}

// SavePayment validates and saves the payment method. Empty selects PayPal.
func (s *CheckoutService) SavePayment(ctx context.Context, id, method string) (*domain.CheckoutSession, error) {
	return s.update(ctx, id, "payment", func(session *domain.CheckoutSession) error {
		return session.SavePaymentMethod(method)
	})
}

// EnterStep evaluates the gates of step, persists the outcome and returns it.
// Redirects are not errors; the caller is told where to go instead.
func (s *CheckoutService) EnterStep(ctx context.Context, id string, step domain.Step, authenticated bool) (domain.Transition, error) {
	var t domain.Transition
	_, err := s.update(ctx, id, "step", func(session *domain.CheckoutSession) error {
		t = session.Enter(step, authenticated)
		session.Apply(t)
		return nil
	})
	if err != nil {
		return domain.Transition{}, err
	}
	if t.Redirected {
		s.logger.DebugContext(ctx, "checkout step redirected",
			slog.String("checkout_id", id),
			slog.String("requested", string(t.Requested)),
			slog.String("step", string(t.Step)),
			slog.String("reason", t.Reason),
		)
	}
	return t, nil
}

// PlaceOrder turns the session into an order for userID. userID is empty for
// anonymous callers. The session is discarded once the order is accepted.
func (s *CheckoutService) PlaceOrder(ctx context.Context, id, userID string) (*domain.Order, error) {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get checkout session: %w", err)
	}

	t := session.Enter(domain.StepPlaceOrder, userID != "")
	switch {
	case t.Step == domain.StepLogin:
		return nil, apperrors.Unauthorized("Login required to place an order")
	case t.Redirected:
		return nil, apperrors.Conflict(fmt.Sprintf("Checkout must return to %s: %s", t.Step, t.Reason))
	}

	// The session ID doubles as the order ID so a retried checkout cannot
	// produce a second order.
	order := domain.NewOrder(session, userID)
	order.ID = session.ID
	order.CreatedAt = time.Now().UTC()
	order.UpdatedAt = order.CreatedAt

	placed, err := s.placer.PlaceOrder(ctx, order, session.ID)
	if err != nil {
		return nil, fmt.Errorf("place order: %w", err)
	}

	if err := s.publisher.OrderPlaced(ctx, placed); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.placed event",
			slog.String("order_id", placed.ID),
			logger.Err(err),
		)
	}

	session.Complete()
	if err := s.sessions.Delete(ctx, session.ID); err != nil {
		// The order exists; a leftover session only expires later.
		s.logger.ErrorContext(ctx, "failed to discard completed checkout session",
			slog.String("checkout_id", session.ID),
			logger.Err(err),
		)
	}

	s.logger.InfoContext(ctx, "order placed",
		slog.String("order_id", placed.ID),
		slog.String("checkout_id", session.ID),
		slog.String("user_id", userID),
		slog.Float64("total_price", placed.TotalPrice),
	)
	return placed, nil
}

// update loads a session, applies fn and saves it. Nothing is saved when fn
// fails.
func (s *CheckoutService) update(ctx context.Context, id, what string, fn func(*domain.CheckoutSession) error) (*domain.CheckoutSession, error) {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get checkout session: %w", err)
	}
	if err := fn(session); err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save checkout %s: %w", what, err)
	}
	return session, nil
}
