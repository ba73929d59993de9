package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"

	"ordersms/internal/models"
	"ordersms/internal/services"
	"ordersms/pkg/rabbitmq"
)

// Command patterns this service answers on its queue. They mirror the names
// the rest of the mesh uses to address the order service.
const (
	CmdCreateOrder       = "create_order"
	CmdFindAllOrders     = "find_all_orders"
	CmdFindOneOrder      = "find_one_order"
	CmdChangeOrderStatus = "change_order_status"
)

// OrderOrchestrator is the capability set the command surface needs from the
// order service. Declared here so the dispatch layer can be tested against a
// mock.
type OrderOrchestrator interface {
	Create(ctx context.Context, req *models.CreateOrderRequest) (*models.OrderResponse, error)
	FindAll(ctx context.Context, pagination *models.OrderPagination) (*models.PaginatedOrders, error)
	FindOne(ctx context.Context, id string) (*models.OrderResponse, error)
	ChangeOrderStatus(ctx context.Context, req *models.ChangeOrderStatusRequest) (*models.OrderResponse, error)
}

// OrderCommandHandler maps inbound RPC commands to orchestrator calls. It is
// purely a dispatch layer: decode, validate the payload shape, call the
// service, shape the reply.
type OrderCommandHandler struct {
	service  OrderOrchestrator
	validate *validator.Validate
}

// NewOrderCommandHandler creates a new OrderCommandHandler.
func NewOrderCommandHandler(service OrderOrchestrator) *OrderCommandHandler {
	return &OrderCommandHandler{
		service:  service,
		validate: validator.New(),
	}
}

// Register starts consuming the order command queue.
func (h *OrderCommandHandler) Register(mq *rabbitmq.Client, queue string) error {
	return mq.Serve(queue, h.Handle)
}

// Handle dispatches a single command to the matching orchestrator operation.
func (h *OrderCommandHandler) Handle(pattern string, data json.RawMessage) (any, *rabbitmq.ErrorPayload) {
	ctx := context.Background()

	switch pattern {
	case CmdCreateOrder:
		var req models.CreateOrderRequest
		if ep := h.bind(data, &req); ep != nil {
			return nil, ep
		}
		return toReply(h.service.Create(ctx, &req))

	case CmdFindAllOrders:
		var pagination models.OrderPagination
		if ep := h.bind(data, &pagination); ep != nil {
			return nil, ep
		}
		return toReply(h.service.FindAll(ctx, &pagination))

	case CmdFindOneOrder:
		var req models.FindOneOrderRequest
		if ep := h.bind(data, &req); ep != nil {
			return nil, ep
		}
		return toReply(h.service.FindOne(ctx, req.ID))

	case CmdChangeOrderStatus:
		var req models.ChangeOrderStatusRequest
		if ep := h.bind(data, &req); ep != nil {
			return nil, ep
		}
		return toReply(h.service.ChangeOrderStatus(ctx, &req))

	default:
		log.Printf("Received unknown command pattern %q", pattern)
		return nil, &rabbitmq.ErrorPayload{
			Status:  http.StatusBadRequest,
			Message: fmt.Sprintf("unknown command: %s", pattern),
		}
	}
}

// bind decodes the command payload into the DTO and runs its validate tags.
// Pagination defaults are applied before validation so omitted fields pass.
func (h *OrderCommandHandler) bind(data json.RawMessage, out any) *rabbitmq.ErrorPayload {
	if err := json.Unmarshal(data, out); err != nil {
		return &rabbitmq.ErrorPayload{
			Status:  http.StatusBadRequest,
			Message: "invalid command payload",
		}
	}
	if pagination, ok := out.(*models.OrderPagination); ok {
		pagination.Normalize()
	}
	if err := h.validate.Struct(out); err != nil {
		return &rabbitmq.ErrorPayload{
			Status:  http.StatusBadRequest,
			Message: fmt.Sprintf("validation failed: %v", err),
		}
	}
	return nil
}

// toReply folds a service result into the reply envelope, mapping RPCError
// classifications onto the wire shape.
func toReply[T any](result T, err error) (any, *rabbitmq.ErrorPayload) {
	if err == nil {
		return result, nil
	}
	return nil, toErrorPayload(err)
}

func toErrorPayload(err error) *rabbitmq.ErrorPayload {
	if rpcErr, ok := services.AsRPCError(err); ok {
		return &rabbitmq.ErrorPayload{Status: rpcErr.Status, Message: rpcErr.Message}
	}
	return &rabbitmq.ErrorPayload{Status: http.StatusBadRequest, Message: err.Error()}
}
