package repositories

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"ordersms/internal/models"
)

// MockOrderRepository is an in-memory implementation of OrderRepository.
// It backs tests and the broker-only development mode of main.
type MockOrderRepository struct {
	orders map[string]models.Order
	mu     sync.RWMutex
}

// NewMockOrderRepository creates a new instance of MockOrderRepository.
func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[string]models.Order),
	}
}

// Create adds a new order with its items.
func (r *MockOrderRepository) Create(order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
	}
	r.orders[order.ID] = cloneOrder(*order)
	return nil
}

// GetByID returns an order by its ID.
func (r *MockOrderRepository) GetByID(id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	order = cloneOrder(order)
	return &order, nil
}

// Find returns a page of orders, newest first, optionally filtered by status.
func (r *MockOrderRepository) Find(status string, offset, limit int) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := r.matching(status)
	if offset >= len(matched) {
		return []models.Order{}, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}

	page := make([]models.Order, 0, end-offset)
	for _, order := range matched[offset:end] {
		order.Items = nil // list results are summaries, no items
		page = append(page, order)
	}
	return page, nil
}

// Count returns how many orders match the status filter.
func (r *MockOrderRepository) Count(status string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return int64(len(r.matching(status))), nil
}

// UpdateStatus updates the status of an order.
func (r *MockOrderRepository) UpdateStatus(id string, status string) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	order.Status = status
	order.UpdatedAt = time.Now()
	r.orders[id] = order
	order = cloneOrder(order)
	return &order, nil
}

// matching must be called with the lock held.
func (r *MockOrderRepository) matching(status string) []models.Order {
	matched := make([]models.Order, 0, len(r.orders))
	for _, order := range r.orders {
		if status != "" && order.Status != status {
			continue
		}
		matched = append(matched, cloneOrder(order))
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return matched
}

func cloneOrder(order models.Order) models.Order {
	items := make([]models.OrderItem, len(order.Items))
	copy(items, order.Items)
	order.Items = items
	return order
}

var _ OrderRepository = (*MockOrderRepository)(nil)
