package repositories

import (
	"errors"

	"ordersms/internal/models"
)

// ErrOrderNotFound is returned when an order ID has no matching row.
var ErrOrderNotFound = errors.New("order not found")

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	// Create persists the order together with all of its items as a single
	// atomic write. A partial order (header without items) must never be
	// observable.
	Create(order *models.Order) error
	// GetByID returns the order with its items, or ErrOrderNotFound.
	GetByID(id string) (*models.Order, error)
	// Find returns a page of orders, newest first. An empty status means no
	// status filter. Items are not loaded for list results.
	Find(status string, offset, limit int) ([]models.Order, error)
	// Count returns the number of orders matching the status filter.
	Count(status string) (int64, error)
	// UpdateStatus sets the order's status and returns the updated order, or
	// ErrOrderNotFound when no row matches.
	UpdateStatus(id string, status string) (*models.Order, error)
}
