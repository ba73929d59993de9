package services

import (
	"context"
	"fmt"
	"log"
	"math"

	"github.com/google/uuid"

	"ordersms/internal/models"
	"ordersms/internal/repositories"
)

// ProductValidator is the narrow port to the product catalog service: one
// remote call mapping a set of product ids to their current catalog records.
// Only ids known to the catalog come back, so a short reply means some of the
// requested products do not exist.
type ProductValidator interface {
	ValidateProducts(ctx context.Context, ids []string) ([]models.Product, error)
}

// OrderService orchestrates order creation, retrieval and status changes on
// top of the order repository and the product catalog client.
type OrderService struct {
	orderRepo repositories.OrderRepository
	products  ProductValidator
}

// NewOrderService creates a new OrderService.
func NewOrderService(orderRepo repositories.OrderRepository, products ProductValidator) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		products:  products,
	}
}

// Create validates every requested line item against the product catalog,
// prices the order from the catalog response, and persists the order with
// its items atomically. If any product is unknown, nothing is persisted.
//
// All failures in this flow (unreachable catalog, unknown product, store
// error) are reported to the caller as one bad-request-class failure; the
// underlying cause is logged for operators.
func (s *OrderService) Create(ctx context.Context, req *models.CreateOrderRequest) (*models.OrderResponse, error) {
	ids := distinctProductIDs(req.Items)

	products, err := s.products.ValidateProducts(ctx, ids)
	if err != nil {
		log.Printf("Error validating products: %v", err)
		return nil, NewBadRequest("error validating products")
	}
	productsByID := indexProducts(products)

	// Price each line from the catalog response. A requested product the
	// catalog did not return fails the whole creation before any write.
	var totalAmount float64
	var totalItems int
	items := make([]models.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		product, ok := productsByID[item.ProductID]
		if !ok {
			log.Printf("Error validating products: product with id %s not found", item.ProductID)
			return nil, NewBadRequest("error validating products")
		}
		items = append(items, models.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     product.Price,
		})
		totalAmount += product.Price * float64(item.Quantity)
		totalItems += item.Quantity
	}

	order := &models.Order{
		ID:          uuid.New().String(),
		Status:      models.OrderStatusPending,
		TotalAmount: totalAmount,
		TotalItems:  totalItems,
		Items:       items,
	}

	if err := s.orderRepo.Create(order); err != nil {
		log.Printf("Error creating order: %v", err)
		return nil, NewBadRequest("error validating products")
	}

	return toOrderResponse(order, productsByID), nil
}

// FindOne fetches an order by id and enriches its items with product names
// fetched live from the catalog. A malformed id is rejected before touching
// the store; a missing order never triggers a catalog call.
func (s *OrderService) FindOne(ctx context.Context, id string) (*models.OrderResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, NewBadRequest(fmt.Sprintf("id %s is not a valid UUID", id))
	}

	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		if err == repositories.ErrOrderNotFound {
			return nil, NewNotFound(fmt.Sprintf("order with id %s not found", id))
		}
		log.Printf("Error getting order %s: %v", id, err)
		return nil, NewBadRequest("error retrieving order")
	}

	ids := make([]string, 0, len(order.Items))
	for _, item := range order.Items {
		ids = append(ids, item.ProductID)
	}

	products, err := s.products.ValidateProducts(ctx, ids)
	if err != nil {
		log.Printf("Error validating products for order %s: %v", id, err)
		return nil, NewBadRequest("error validating products")
	}

	return toOrderResponse(order, indexProducts(products)), nil
}

// FindAll returns one page of orders, optionally filtered by status, with
// pagination metadata. List results are summaries: no item enrichment.
func (s *OrderService) FindAll(ctx context.Context, pagination *models.OrderPagination) (*models.PaginatedOrders, error) {
	pagination.Normalize()

	total, err := s.orderRepo.Count(pagination.Status)
	if err != nil {
		log.Printf("Error counting orders: %v", err)
		return nil, NewBadRequest("error listing orders")
	}

	offset := (pagination.Page - 1) * pagination.Limit
	data, err := s.orderRepo.Find(pagination.Status, offset, pagination.Limit)
	if err != nil {
		log.Printf("Error listing orders: %v", err)
		return nil, NewBadRequest("error listing orders")
	}

	return &models.PaginatedOrders{
		Data: data,
		Meta: models.PaginationMeta{
			Total:      total,
			Page:       pagination.Page,
			TotalPages: int(math.Ceil(float64(total) / float64(pagination.Limit))),
		},
	}, nil
}

// ChangeOrderStatus moves an order to the given status. No transition rules
// are enforced: any valid status value is accepted from any current status.
func (s *OrderService) ChangeOrderStatus(ctx context.Context, req *models.ChangeOrderStatusRequest) (*models.OrderResponse, error) {
	if _, err := uuid.Parse(req.ID); err != nil {
		return nil, NewBadRequest(fmt.Sprintf("id %s is not a valid UUID", req.ID))
	}
	if !models.IsValidOrderStatus(req.Status) {
		return nil, NewBadRequest(fmt.Sprintf("invalid order status: %s", req.Status))
	}

	order, err := s.orderRepo.UpdateStatus(req.ID, req.Status)
	if err != nil {
		if err == repositories.ErrOrderNotFound {
			return nil, NewNotFound(fmt.Sprintf("order with id %s not found", req.ID))
		}
		log.Printf("Error updating status for order %s: %v", req.ID, err)
		return nil, NewBadRequest("error updating order status")
	}

	return toOrderResponse(order, nil), nil
}

// distinctProductIDs extracts the deduplicated set of product ids from the
// requested items, preserving first-seen order.
func distinctProductIDs(items []models.CreateOrderItem) []string {
	seen := make(map[string]struct{}, len(items))
	ids := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids
}

func indexProducts(products []models.Product) map[string]models.Product {
	byID := make(map[string]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return byID
}

// toOrderResponse shapes the persisted order for the caller, attaching the
// product name from the catalog response to each item. A product the catalog
// no longer returns leaves the name empty instead of failing the read.
func toOrderResponse(order *models.Order, productsByID map[string]models.Product) *models.OrderResponse {
	items := make([]models.OrderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		resp := models.OrderItemResponse{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		}
		if product, ok := productsByID[item.ProductID]; ok {
			resp.Name = product.Name
		} else if productsByID != nil {
			log.Printf("Product %s missing from catalog response; returning item without name", item.ProductID)
		}
		items = append(items, resp)
	}
	return &models.OrderResponse{
		ID:          order.ID,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		TotalItems:  order.TotalItems,
		Items:       items,
		CreatedAt:   order.CreatedAt,
		UpdatedAt:   order.UpdatedAt,
	}
}
