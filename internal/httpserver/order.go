package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/esscera_store/internal/logging"
	authmw "github.com/Skotchmaster/esscera_store/internal/middleware/auth"
	"github.com/Skotchmaster/esscera_store/internal/models"
	"github.com/Skotchmaster/esscera_store/internal/service"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list")

	orders, err := h.Svc.ListOrders(ctx, authmw.UserFrom(c))
	if err != nil {
		return fail(l, "list_orders_error", err, "")
	}
	return c.JSON(http.StatusOK, echo.Map{"orders": orders})
}

func (h *OrderHTTP) PlaceOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.place")

	u := authmw.UserFrom(c)
	if u == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Please login to place an order")
	}

	var req service.PlaceOrderInput
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "place_order_error", "invalid body", err)
	}

	placed, err := h.Svc.PlaceOrder(ctx, u.ID, req)
	if err != nil {
		return fail(l, "place_order_error", err, "Product not found")
	}

	body := echo.Map{"order": placed.Order}
	if placed.ClientSecret != "" {
		body["client_secret"] = placed.ClientSecret
	}
	if placed.WhatsAppURL != "" {
		body["whatsapp_url"] = placed.WhatsAppURL
	}
	l.Info("place_order_success", "order_id", placed.Order.ID, "payment_method", placed.Order.PaymentMethod)
	return c.JSON(http.StatusOK, body)
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(l, "get_order_error", "id is not a uuid", err)
	}

	order, err := h.Svc.GetOrder(ctx, authmw.UserFrom(c), id)
	if err != nil {
		return fail(l, "get_order_error", err, "Order not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"order": order})
}

func (h *OrderHTTP) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_status")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(l, "update_order_error", "id is not a uuid", err)
	}

	var req struct {
		Status models.OrderStatus `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_order_error", "invalid body", err)
	}

	order, err := h.Svc.UpdateStatus(ctx, id, req.Status)
	if err != nil {
		return fail(l, "update_order_error", err, "Order not found")
	}

	l.Info("update_order_success", "order_id", order.ID, "status", order.Status)
	return c.JSON(http.StatusOK, echo.Map{"order": order})
}
