package clients

import (
	"context"
	"fmt"
	"time"

	"ordersms/internal/models"
	"ordersms/internal/services"
	"ordersms/pkg/rabbitmq"
)

// DefaultValidateTimeout bounds a validate_products call when the caller's
// context carries no deadline of its own.
const DefaultValidateTimeout = 5 * time.Second

// ProductClient reaches the product catalog service over the mesh's RabbitMQ
// RPC transport. It is the only component that knows how products are
// fetched; the order orchestrator sees just the ProductValidator interface.
type ProductClient struct {
	mq      *rabbitmq.Client
	queue   string
	timeout time.Duration
}

// NewProductClient creates a client that sends commands to the catalog
// service's queue. A non-positive timeout falls back to the default.
func NewProductClient(mq *rabbitmq.Client, queue string, timeout time.Duration) *ProductClient {
	if timeout <= 0 {
		timeout = DefaultValidateTimeout
	}
	return &ProductClient{
		mq:      mq,
		queue:   queue,
		timeout: timeout,
	}
}

// ValidateProducts sends a single validate_products command with the id set
// and returns the catalog records for the ids that exist. The call is
// bounded by a deadline; expiry surfaces as an error, the same transient
// failure path as an unreachable broker.
func (c *ProductClient) ValidateProducts(ctx context.Context, ids []string) ([]models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var products []models.Product
	if err := c.mq.Request(ctx, c.queue, "validate_products", ids, &products); err != nil {
		return nil, fmt.Errorf("validate products: %w", err)
	}
	return products, nil
}

var _ services.ProductValidator = (*ProductClient)(nil)
