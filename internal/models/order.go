package models

import "time"

// Order statuses. The lifecycle starts at "pending" and is only ever moved
// by the change_order_status command; no transition rules are enforced here.
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// ValidOrderStatuses lists every status value the service accepts.
var ValidOrderStatuses = []string{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// IsValidOrderStatus reports whether s is a member of the status enumeration.
func IsValidOrderStatus(s string) bool {
	for _, valid := range ValidOrderStatuses {
		if s == valid {
			return true
		}
	}
	return false
}

// OrderItem represents a single line item within an order. Price is the
// catalog unit price captured at order creation time, so the order's total
// stays stable even if the catalog changes later.
type OrderItem struct {
	ID        uint    `json:"-" gorm:"primaryKey;autoIncrement"`
	OrderID   string  `json:"-" gorm:"type:varchar(36);index"`
	ProductID string  `json:"product_id" gorm:"type:varchar(36)"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// Order represents a customer order with its aggregate totals. TotalAmount
// and TotalItems are computed once at creation from the catalog response and
// never recomputed afterwards.
type Order struct {
	ID          string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Status      string      `json:"status" gorm:"type:varchar(20);default:pending;index"`
	TotalAmount float64     `json:"total_amount"`
	TotalItems  int         `json:"total_items"`
	Items       []OrderItem `json:"items,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}
