package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nicofzzn/ecommerce/internal/domain"
	pkgkafka "github.com/nicofzzn/ecommerce/pkg/kafka"
	"github.com/nicofzzn/ecommerce/pkg/logger"
)

// Topics. Events for one aggregate share a topic so consumers see them in order.
const (
	TopicProductEvents = "proshop.product.events"
	TopicOrderEvents   = "proshop.order.events"
)

// Event types.
const (
	TypeProductCreated = "product.created"
	TypeProductUpdated = "product.updated"
	TypeProductDeleted = "product.deleted"
	TypeReviewAdded    = "review.added"
	TypeOrderPlaced    = "order.placed"
)

const source = "proshop-api"

// ProductData is the payload of product.created and product.updated.
type ProductData struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Brand        string  `json:"brand"`
	Category     string  `json:"category"`
	Price        float64 `json:"price"`
	CountInStock int     `json:"count_in_stock"`
}

// ProductDeletedData is the payload of product.deleted.
type ProductDeletedData struct {
	ID string `json:"id"`
}

// ReviewAddedData is the payload of review.added. Average and NumReviews are
// the product aggregates after the review was applied.
type ReviewAddedData struct {
	ProductID  string  `json:"product_id"`
	UserID     string  `json:"user_id"`
	Rating     int     `json:"rating"`
	Average    float64 `json:"average_rating"`
	NumReviews int     `json:"num_reviews"`
}

// OrderPlacedData is the payload of order.placed.
type OrderPlacedData struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Items         int       `json:"items"`
	PaymentMethod string    `json:"payment_method"`
	TotalPrice    float64   `json:"total_price"`
	PlacedAt      time.Time `json:"placed_at"`
}

// Publisher publishes storefront domain events. Callers log failures and
// carry on; an event that cannot be published never fails the write.
type Publisher interface {
	ProductCreated(ctx context.Context, p *domain.Product) error
	ProductUpdated(ctx context.Context, p *domain.Product) error
	ProductDeleted(ctx context.Context, id string) error
	ReviewAdded(ctx context.Context, p *domain.Product, r *domain.Review) error
	OrderPlaced(ctx context.Context, o *domain.Order) error
}

type eventWriter interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes domain events to Kafka.
type Producer struct {
	writer eventWriter
	logger *slog.Logger
}

// NewProducer creates a Kafka-backed Publisher.
func NewProducer(writer eventWriter, logger *slog.Logger) *Producer {
	return &Producer{writer: writer, logger: logger}
}

func productData(p *domain.Product) ProductData {
	return ProductData{
		ID:           p.ID,
		Name:         p.Name,
		Brand:        p.Brand,
		Category:     p.Category,
		Price:        p.Price,
		CountInStock: p.CountInStock,
	}
}

func (p *Producer) publish(ctx context.Context, topic, eventType string, agg pkgkafka.Aggregate, data any) error {
	evt, err := pkgkafka.NewEvent(source, eventType, agg, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", eventType, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		evt.WithCorrelationID(id)
	}
	if err := p.writer.Publish(ctx, topic, evt); err != nil {
		return fmt.Errorf("publish %s event: %w", eventType, err)
	}

	p.logger.DebugContext(ctx, "published event",
		slog.String("event_type", eventType),
		slog.String("aggregate_id", agg.ID),
	)
	return nil
}

// ProductCreated publishes product.created.
func (p *Producer) ProductCreated(ctx context.Context, product *domain.Product) error {
	return p.publish(ctx, TopicProductEvents, TypeProductCreated,
		pkgkafka.Aggregate{Type: "product", ID: product.ID}, productData(product))
}

// ProductUpdated publishes product.updated.
func (p *Producer) ProductUpdated(ctx context.Context, product *domain.Product) error {
	return p.publish(ctx, TopicProductEvents, TypeProductUpdated,
		pkgkafka.Aggregate{Type: "product", ID: product.ID}, productData(product))
}

// ProductDeleted publishes product.deleted.
func (p *Producer) ProductDeleted(ctx context.Context, id string) error {
	return p.publish(ctx, TopicProductEvents, TypeProductDeleted,
		pkgkafka.Aggregate{Type: "product", ID: id}, ProductDeletedData{ID: id})
}

// ReviewAdded publishes review.added on the product topic.
func (p *Producer) ReviewAdded(ctx context.Context, product *domain.Product, r *domain.Review) error {
	return p.publish(ctx, TopicProductEvents, TypeReviewAdded,
		pkgkafka.Aggregate{Type: "product", ID: product.ID}, ReviewAddedData{
			ProductID:  product.ID,
			UserID:     r.User,
			Rating:     r.Rating,
			Average:    product.Rating,
			NumReviews: product.NumReviews,
		})
}

// OrderPlaced publishes order.placed.
func (p *Producer) OrderPlaced(ctx context.Context, o *domain.Order) error {
	return p.publish(ctx, TopicOrderEvents, TypeOrderPlaced,
		pkgkafka.Aggregate{Type: "order", ID: o.ID}, OrderPlacedData{
			ID:            o.ID,
			UserID:        o.User,
			Items:         len(o.OrderItems),
			PaymentMethod: string(o.PaymentMethod),
			TotalPrice:    o.TotalPrice,
			PlacedAt:      o.CreatedAt,
		})
}

// Nop discards every event. It is used when EVENTS_ENABLED is false.
type Nop struct{}

func (Nop) ProductCreated(context.Context, *domain.Product) error { return nil }
func (Nop) ProductUpdated(context.Context, *domain.Product) error { return nil }
func (Nop) ProductDeleted(context.Context, string) error { return nil }
func (Nop) ReviewAdded(context.Context, *domain.Product, *domain.Review) error { return nil }
func (Nop) OrderPlaced(context.Context, *domain.Order) error { return nil }

var (
	_ Publisher = (*Producer)(nil)
	_ Publisher = Nop{}
)
