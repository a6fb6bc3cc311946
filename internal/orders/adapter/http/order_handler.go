package http

import (
	"errors"
	"strings"

	"mongo-tracing/internal/orders/domain/model"
	"mongo-tracing/internal/orders/domain/repository"
	"mongo-tracing/internal/orders/usecase"
	apperrors "mongo-tracing/internal/shared/errors"
	"mongo-tracing/internal/shared/logger"
	"mongo-tracing/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
)

// OrderHandler serves the orders REST API.
type OrderHandler struct {
	orders usecase.OrderUsecase
	log    logger.Logger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orders usecase.OrderUsecase, log logger.Logger) *OrderHandler {
	return &OrderHandler{
		orders: orders,
		log:    log.WithComponent("orders-http"),
	}
}

// RegisterRoutes registers the order endpoints under router.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orders := router.Group("/orders")
	orders.Post("/", h.CreateOrder)             // POST /v1/orders
	orders.Post("/batch", h.CreateBatch)        // POST /v1/orders/batch
	orders.Get("/", h.ListOrders)               // GET /v1/orders?status=paid&limit=20&skip=0
	orders.Get("/count", h.CountOrders)         // GET /v1/orders/count?status=paid
	orders.Get("/customers", h.ListCustomers)   // GET /v1/orders/customers
	orders.Get("/report", h.Report)             // GET /v1/orders/report
	orders.Get("/:id", h.GetOrder)              // GET /v1/orders/{id}
	orders.Patch("/:id/status", h.UpdateStatus) // PATCH /v1/orders/{id}/status
	orders.Delete("/:id", h.DeleteOrder)        // DELETE /v1/orders/{id}
}

// CreateOrderRequest is the body of POST /orders.
type CreateOrderRequest struct {
	Customer string       `json:"customer"`
	Items    []model.Item `json:"items"`
}

func (r CreateOrderRequest) toModel() *model.Order {
	return &model.Order{Customer: r.Customer, Items: r.Items}
}

// CreateBatchRequest is the body of POST /orders/batch.
type CreateBatchRequest struct {
	Orders []CreateOrderRequest `json:"orders"`
}

// UpdateStatusRequest is the body of PATCH /orders/:id/status.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// CreateOrder creates one order.
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	var req CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	order, err := h.orders.Create(c.UserContext(), req.toModel())
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

// CreateBatch creates several orders in one transaction.
func (h *OrderHandler) CreateBatch(c *fiber.Ctx) error {
	var req CreateBatchRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	orders := make([]*model.Order, len(req.Orders))
	for i, o := range req.Orders {
		orders[i] = o.toModel()
	}
	ids, err := h.orders.CreateBatch(c.UserContext(), orders)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"ids":   ids,
		"count": len(ids),
	})
}

// ListOrders lists orders newest first.
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	opts := repository.ListOptions{
		Status: model.Status(strings.ToLower(c.Query("status"))),
		Limit:  int64(c.QueryInt("limit", 50)),
		Skip:   int64(c.QueryInt("skip", 0)),
	}

	orders, err := h.orders.List(c.UserContext(), opts)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{
		"orders": orders,
		"count":  len(orders),
	})
}

// CountOrders counts orders, optionally by status.
func (h *OrderHandler) CountOrders(c *fiber.Ctx) error {
	status := model.Status(strings.ToLower(c.Query("status")))
	n, err := h.orders.Count(c.UserContext(), status)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"count": n})
}

// ListCustomers returns the distinct customers that placed orders.
func (h *OrderHandler) ListCustomers(c *fiber.Ctx) error {
	customers, err := h.orders.Customers(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"customers": customers})
}

// Report returns order count and revenue per status.
func (h *OrderHandler) Report(c *fiber.Ctx) error {
	totals, err := h.orders.Report(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"statuses": totals})
}

// GetOrder returns one order.
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	order, err := h.orders.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(order)
}

// UpdateStatus moves an order to a new status.
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	var req UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	status, err := model.ParseStatus(req.Status)
	if err != nil {
		return h.fail(c, apperrors.NewValidationError(err.Error()).WithCause(apperrors.ErrInvalidStatus))
	}

	res, err := h.orders.UpdateStatus(c.UserContext(), c.Params("id"), status)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(res)
}

// DeleteOrder deletes one order.
func (h *OrderHandler) DeleteOrder(c *fiber.Ctx) error {
	if err := h.orders.Delete(c.UserContext(), c.Params("id")); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":   "invalid_request_body",
		"message": "Failed to parse request body",
	})
}

func (h *OrderHandler) fail(c *fiber.Ctx, err error) error {
	return fail(c, h.log, err)
}

// fail writes err as a JSON error response. Server-side failures are logged
// and their cause is not echoed to the client.
func fail(c *fiber.Ctx, log logger.Logger, err error) error {
	status := apperrors.HTTPStatus(err)
	body := fiber.Map{
		"error":   errorCode(err),
		"message": err.Error(),
	}
	if id, idErr := utils.GetRequestIDFromContext(c.UserContext()); idErr == nil {
		body["requestId"] = id
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		body["message"] = appErr.Message
		if len(appErr.Details) > 0 {
			body["details"] = appErr.Details
		}
	}
	if status >= fiber.StatusInternalServerError {
		log.WithContext(c.UserContext()).WithError(err).Errorf("%s %s failed", c.Method(), c.Path())
		body["message"] = "the request could not be completed"
		delete(body, "details")
	}
	return c.Status(status).JSON(body)
}

func errorCode(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Code != "" {
			return appErr.Code
		}
		return strings.ToLower(string(appErr.Type))
	}
	switch {
	case apperrors.IsNotFound(err):
		return "not_found_error"
	case apperrors.IsValidation(err):
		return "validation_error"
	case apperrors.IsConflict(err):
		return "conflict_error"
	default:
		return "internal_error"
	}
}
