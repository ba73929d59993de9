package handlers_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"ordersms/internal/handlers"
	"ordersms/internal/models"
	"ordersms/internal/services"
)

// MockOrchestrator is a mock implementation of handlers.OrderOrchestrator
type MockOrchestrator struct {
	mock.Mock
}

func (m *MockOrchestrator) Create(ctx context.Context, req *models.CreateOrderRequest) (*models.OrderResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OrderResponse), args.Error(1)
}

func (m *MockOrchestrator) FindAll(ctx context.Context, pagination *models.OrderPagination) (*models.PaginatedOrders, error) {
	args := m.Called(ctx, pagination)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PaginatedOrders), args.Error(1)
}

func (m *MockOrchestrator) FindOne(ctx context.Context, id string) (*models.OrderResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OrderResponse), args.Error(1)
}

func (m *MockOrchestrator) ChangeOrderStatus(ctx context.Context, req *models.ChangeOrderStatusRequest) (*models.OrderResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OrderResponse), args.Error(1)
}

func TestOrderCommandHandler_CreateOrder(t *testing.T) {
	mockService := new(MockOrchestrator)
	handler := handlers.NewOrderCommandHandler(mockService)

	expected := &models.OrderResponse{ID: uuid.NewString(), Status: models.OrderStatusPending}
	mockService.On("Create", mock.Anything, mock.MatchedBy(func(req *models.CreateOrderRequest) bool {
		return len(req.Items) == 1 && req.Items[0].ProductID == "prod-a" && req.Items[0].Quantity == 2
	})).Return(expected, nil).Once()

	payload := json.RawMessage(`{"items":[{"product_id":"prod-a","quantity":2}]}`)
	result, ep := handler.Handle(handlers.CmdCreateOrder, payload)

	assert.Nil(t, ep)
	assert.Equal(t, expected, result)
	mockService.AssertExpectations(t)
}

func TestOrderCommandHandler_CreateOrder_EmptyItemsRejected(t *testing.T) {
	mockService := new(MockOrchestrator)
	handler := handlers.NewOrderCommandHandler(mockService)

	payload := json.RawMessage(`{"items":[]}`)
	result, ep := handler.Handle(handlers.CmdCreateOrder, payload)

	assert.Nil(t, result)
	assert.NotNil(t, ep)
	assert.Equal(t, 400, ep.Status)
	mockService.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestOrderCommandHandler_FindAll_DefaultsApplied(t *testing.T) {
	mockService := new(MockOrchestrator)
	handler := handlers.NewOrderCommandHandler(mockService)

	page := &models.PaginatedOrders{Meta: models.PaginationMeta{Total: 0, Page: 1, TotalPages: 0}}
	mockService.On("FindAll", mock.Anything, mock.MatchedBy(func(p *models.OrderPagination) bool {
		return p.Page == 1 && p.Limit == 10 && p.Status == ""
	})).Return(page, nil).Once()

	result, ep := handler.Handle(handlers.CmdFindAllOrders, json.RawMessage(`{}`))

	assert.Nil(t, ep)
	assert.Equal(t, page, result)
	mockService.AssertExpectations(t)
}

func TestOrderCommandHandler_FindOne_NotFoundMapped(t *testing.T) {
	mockService := new(MockOrchestrator)
	handler := handlers.NewOrderCommandHandler(mockService)

	id := uuid.NewString()
	mockService.On("FindOne", mock.Anything, id).
		Return(nil, services.NewNotFound("order with id "+id+" not found")).Once()

	payload, _ := json.Marshal(models.FindOneOrderRequest{ID: id})
	result, ep := handler.Handle(handlers.CmdFindOneOrder, payload)

	assert.Nil(t, result)
	assert.NotNil(t, ep)
	assert.Equal(t, 404, ep.Status)
	assert.Contains(t, ep.Message, "not found")
}

func TestOrderCommandHandler_ChangeOrderStatus(t *testing.T) {
	mockService := new(MockOrchestrator)
	handler := handlers.NewOrderCommandHandler(mockService)

	id := uuid.NewString()
	expected := &models.OrderResponse{ID: id, Status: models.OrderStatusDelivered}
	mockService.On("ChangeOrderStatus", mock.Anything, mock.MatchedBy(func(req *models.ChangeOrderStatusRequest) bool {
		return req.ID == id && req.Status == models.OrderStatusDelivered
	})).Return(expected, nil).Once()

	payload, _ := json.Marshal(models.ChangeOrderStatusRequest{ID: id, Status: models.OrderStatusDelivered})
	result, ep := handler.Handle(handlers.CmdChangeOrderStatus, payload)

	assert.Nil(t, ep)
	assert.Equal(t, expected, result)
	mockService.AssertExpectations(t)
}

func TestOrderCommandHandler_ChangeOrderStatus_UnknownStatusRejected(t *testing.T) {
	mockService := new(MockOrchestrator)
	handler := handlers.NewOrderCommandHandler(mockService)

	payload, _ := json.Marshal(models.ChangeOrderStatusRequest{ID: uuid.NewString(), Status: "teleported"})
	result, ep := handler.Handle(handlers.CmdChangeOrderStatus, payload)

	assert.Nil(t, result)
	assert.NotNil(t, ep)
	assert.Equal(t, 400, ep.Status)
	mockService.AssertNotCalled(t, "ChangeOrderStatus", mock.Anything, mock.Anything)
}

func TestOrderCommandHandler_UnknownPattern(t *testing.T) {
	mockService := new(MockOrchestrator)
	handler := handlers.NewOrderCommandHandler(mockService)

	result, ep := handler.Handle("explode_order", json.RawMessage(`{}`))

	assert.Nil(t, result)
	assert.NotNil(t, ep)
	assert.Equal(t, 400, ep.Status)
	assert.Contains(t, ep.Message, "unknown command")
}

func TestOrderCommandHandler_MalformedPayload(t *testing.T) {
	mockService := new(MockOrchestrator)
	handler := handlers.NewOrderCommandHandler(mockService)

	result, ep := handler.Handle(handlers.CmdCreateOrder, json.RawMessage(`{"items":`))

	assert.Nil(t, result)
	assert.NotNil(t, ep)
	assert.Equal(t, 400, ep.Status)
	mockService.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
