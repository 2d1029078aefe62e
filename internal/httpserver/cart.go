package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/esscera_store/internal/logging"
	authmw "github.com/Skotchmaster/esscera_store/internal/middleware/auth"
	"github.com/Skotchmaster/esscera_store/internal/service"
)

type CartHTTP struct {
	Svc *service.CartService
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get")

	u := authmw.UserFrom(c)
	if u == nil {
		return c.JSON(http.StatusOK, cartBody(service.NewCart(nil)))
	}

	cart, err := h.Svc.GetCart(ctx, u.ID)
	if err != nil {
		return fail(l, "get_cart_error", err, "")
	}
	return c.JSON(http.StatusOK, cartBody(cart))
}

func cartBody(cart *service.Cart) echo.Map {
	return echo.Map{
		"items":       cart.Items,
		"total_items": cart.TotalItems,
		"total_price": cart.TotalPrice,
	}
}

func (h *CartHTTP) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	u := authmw.UserFrom(c)
	if u == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Please login to add items to cart")
	}

	var req struct {
		ProductID string `json:"productId"`
		Quantity  *int   `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "add_to_cart_error", "invalid body", err)
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return badRequest(l, "add_to_cart_error", "productId is not a uuid", err)
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}

	item, err := h.Svc.AddToCart(ctx, u.ID, productID, qty)
	if err != nil {
		return fail(l, "add_to_cart_error", err, "Product not found")
	}

	l.Info("add_to_cart_success", "product_id", productID, "quantity", item.Quantity)
	return c.JSON(http.StatusOK, echo.Map{"item": item})
}

func (h *CartHTTP) ClearCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.clear")

	u := authmw.UserFrom(c)
	if u == nil {
		return unauthorized()
	}
	if err := h.Svc.ClearCart(ctx, u.ID); err != nil {
		return fail(l, "clear_cart_error", err, "")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// UpdateItem sets the quantity of a line; zero or less removes it.
func (h *CartHTTP) UpdateItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.update_item")

	u := authmw.UserFrom(c)
	if u == nil {
		return unauthorized()
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(l, "update_cart_item_error", "id is not a uuid", err)
	}

	var req struct {
		Quantity *int `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_cart_item_error", "invalid body", err)
	}
	if req.Quantity == nil {
		return badRequest(l, "update_cart_item_error", "quantity is required", nil)
	}

	if *req.Quantity <= 0 {
		if err := h.Svc.RemoveItem(ctx, u.ID, id); err != nil {
			return fail(l, "update_cart_item_error", err, "Cart item not found")
		}
		return c.JSON(http.StatusOK, echo.Map{"success": true})
	}

	item, err := h.Svc.SetQuantity(ctx, u.ID, id, *req.Quantity)
	if err != nil {
		return fail(l, "update_cart_item_error", err, "Cart item not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"item": item})
}

func (h *CartHTTP) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove_item")

	u := authmw.UserFrom(c)
	if u == nil {
		return unauthorized()
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(l, "remove_cart_item_error", "id is not a uuid", err)
	}
	if err := h.Svc.RemoveItem(ctx, u.ID, id); err != nil {
		return fail(l, "remove_cart_item_error", err, "Cart item not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
