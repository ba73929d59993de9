package models

import "time"

// Default pagination values applied when the caller omits them.
const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// CreateOrderItem is one requested line item. The client may send a price,
// but it is ignored: the catalog price fetched during validation is always
// the one stored on the order.
type CreateOrderItem struct {
	ProductID string  `json:"product_id" validate:"required"`
	Quantity  int     `json:"quantity" validate:"required,gt=0"`
	Price     float64 `json:"price" validate:"omitempty,gte=0"`
}

// CreateOrderRequest is the payload of the create_order command.
type CreateOrderRequest struct {
	Items []CreateOrderItem `json:"items" validate:"required,min=1,dive"`
}

// OrderPagination is the payload of the find_all_orders command.
type OrderPagination struct {
	Page   int    `json:"page" validate:"gte=1"`
	Limit  int    `json:"limit" validate:"gte=1"`
	Status string `json:"status" validate:"omitempty,oneof=pending confirmed delivered cancelled"`
}

// Normalize fills in default pagination values for omitted fields.
func (p *OrderPagination) Normalize() {
	if p.Page == 0 {
		p.Page = DefaultPage
	}
	if p.Limit == 0 {
		p.Limit = DefaultLimit
	}
}

// FindOneOrderRequest is the payload of the find_one_order command.
type FindOneOrderRequest struct {
	ID string `json:"id" validate:"required"`
}

// ChangeOrderStatusRequest is the payload of the change_order_status command.
type ChangeOrderStatusRequest struct {
	ID     string `json:"id" validate:"required,uuid"`
	Status string `json:"status" validate:"required,oneof=pending confirmed delivered cancelled"`
}

// OrderItemResponse is a persisted line item enriched with the product's
// display name. The name is derived from the catalog at read time and is
// never stored; it is omitted when the catalog no longer knows the product.
type OrderItemResponse struct {
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	Name      string  `json:"name,omitempty"`
}

// OrderResponse is the enriched order shape returned by create_order and
// find_one_order.
type OrderResponse struct {
	ID          string              `json:"id"`
	Status      string              `json:"status"`
	TotalAmount float64             `json:"total_amount"`
	TotalItems  int                 `json:"total_items"`
	Items       []OrderItemResponse `json:"items"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// PaginationMeta describes the page of results returned by find_all_orders.
type PaginationMeta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	TotalPages int   `json:"totalPages"`
}

// PaginatedOrders is the find_all_orders response: a summary page of orders
// (no item enrichment) plus pagination metadata.
type PaginatedOrders struct {
	Data []Order        `json:"data"`
	Meta PaginationMeta `json:"meta"`
}
