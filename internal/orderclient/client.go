package orderclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/nicofzzn/ecommerce/internal/domain"
	"github.com/nicofzzn/ecommerce/pkg/httpclient"
	"github.com/nicofzzn/ecommerce/pkg/logger"
)

const serviceName = "order-service"

// HTTPDoer executes HTTP requests. httpclient.CircuitBreakerClient satisfies it.
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Client places orders with a remote order service.
type Client struct {
	http    HTTPDoer
	baseURL string
	logger  *slog.Logger
}

// New creates a client for the order service at baseURL.
func New(doer HTTPDoer, baseURL string, logger *slog.Logger) *Client {
	return &Client{http: doer, baseURL: strings.TrimRight(baseURL, "/"), logger: logger}
}

// PlaceOrder posts o to /api/orders. key is sent as Idempotency-Key so a
// retried request for the same checkout creates one order.
func (c *Client) PlaceOrder(ctx context.Context, o *domain.Order, key string) (*domain.Order, error) {
	body, err := json.Marshal(o)
	if err != nil {
		return nil, fmt.Errorf("marshal order: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", key)
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		req.Header.Set("X-Correlation-ID", id)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, httpclient.TransportError(err, serviceName)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, httpclient.ParseResponseError(resp, serviceName)
	}
	defer resp.Body.Close()

	var placed domain.Order
	if err := json.NewDecoder(resp.Body).Decode(&placed); err != nil {
		return nil, fmt.Errorf("decode order response: %w", err)
	}

	c.logger.InfoContext(ctx, "order placed with order service",
		slog.String("order_id", placed.ID),
		slog.String("checkout_id", key),
	)
	return &placed, nil
}
