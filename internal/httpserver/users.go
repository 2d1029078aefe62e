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

type UserHTTP struct {
	Svc *service.UserService
}

func (h *UserHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.list")

	users, err := h.Svc.List(ctx)
	if err != nil {
		return fail(l, "list_users_error", err, "")
	}
	return c.JSON(http.StatusOK, echo.Map{"users": users})
}

func (h *UserHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.create")

	var req service.CreateUserInput
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_user_error", "invalid body", err)
	}

	u, err := h.Svc.Create(ctx, req)
	if err != nil {
		return fail(l, "create_user_error", err, "")
	}
	return c.JSON(http.StatusOK, echo.Map{"user": u})
}

func (h *UserHTTP) SetRole(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.set_role")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(l, "set_role_error", "id is not a uuid", err)
	}
	var req struct {
		Role models.Role `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "set_role_error", "invalid body", err)
	}

	u, err := h.Svc.SetRole(ctx, id, req.Role)
	if err != nil {
		return fail(l, "set_role_error", err, "User not found")
	}

	l.Info("set_role_success", "user_id", u.ID, "role", u.Role)
	return c.JSON(http.StatusOK, echo.Map{"user": u})
}

func (h *UserHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.delete")

	actor := authmw.UserFrom(c)
	if actor == nil {
		return unauthorized()
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(l, "delete_user_error", "id is not a uuid", err)
	}
	if err := h.Svc.Delete(ctx, actor.ID, id); err != nil {
		return fail(l, "delete_user_error", err, "User not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

type StatsHTTP struct {
	Svc *service.StatsService
}

func (h *StatsHTTP) Dashboard(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.stats")

	d, err := h.Svc.Dashboard(ctx)
	if err != nil {
		return fail(l, "stats_error", err, "")
	}
	return c.JSON(http.StatusOK, d)
}
