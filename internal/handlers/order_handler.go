package handlers

import (
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"ordersms/internal/models"
	"ordersms/internal/services"
)

// OrderHandler handles HTTP requests for orders. It mirrors the RPC command
// surface for operators and local development; both surfaces call the same
// orchestrator.
type OrderHandler struct {
	service  OrderOrchestrator
	validate *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service OrderOrchestrator) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the order routes with the Fiber app.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Post("/", h.HandleCreateOrder)
	orderRoutes.Patch("/:id/status", h.HandleChangeOrderStatus)
}

// HandleGetOrders returns one page of orders with pagination metadata.
// Query parameters: page, limit, status.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	pagination := models.OrderPagination{
		Page:   c.QueryInt("page", models.DefaultPage),
		Limit:  c.QueryInt("limit", models.DefaultLimit),
		Status: c.Query("status"),
	}
	if err := h.validate.Struct(&pagination); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "invalid pagination parameters",
			"error":   err.Error(),
		})
	}

	page, err := h.service.FindAll(c.Context(), &pagination)
	if err != nil {
		return writeServiceError(c, err, "Could not retrieve orders")
	}
	return c.JSON(page)
}

// HandleGetOrderByID returns a single order enriched with product names.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	order, err := h.service.FindOne(c.Context(), c.Params("id"))
	if err != nil {
		return writeServiceError(c, err, "Could not retrieve order")
	}
	return c.JSON(order)
}

// HandleCreateOrder creates a new order from the requested line items.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var req models.CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Order validation failed",
			"error":   err.Error(),
		})
	}

	createdOrder, err := h.service.Create(c.Context(), &req)
	if err != nil {
		return writeServiceError(c, err, "Could not create order")
	}
	return c.Status(fiber.StatusCreated).JSON(createdOrder)
}

// HandleChangeOrderStatus updates the status of an existing order.
func (h *OrderHandler) HandleChangeOrderStatus(c *fiber.Ctx) error {
	var body struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&body); err != nil {
		log.Printf("Error parsing request body for status update: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body for status update",
			"error":   err.Error(),
		})
	}

	req := models.ChangeOrderStatusRequest{
		ID:     c.Params("id"),
		Status: body.Status,
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Status update validation failed",
			"error":   err.Error(),
		})
	}

	order, err := h.service.ChangeOrderStatus(c.Context(), &req)
	if err != nil {
		return writeServiceError(c, err, "Could not update order status")
	}
	return c.JSON(order)
}

// writeServiceError maps an orchestrator failure onto the HTTP response. The
// RPCError status doubles as the HTTP status code.
func writeServiceError(c *fiber.Ctx, err error, message string) error {
	if rpcErr, ok := services.AsRPCError(err); ok {
		return c.Status(rpcErr.Status).JSON(fiber.Map{
			"message": rpcErr.Message,
		})
	}
	log.Printf("%s: %v", message, err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": message,
		"error":   err.Error(),
	})
}
