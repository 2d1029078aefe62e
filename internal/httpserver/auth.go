package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/esscera_store/internal/logging"
	authmw "github.com/Skotchmaster/esscera_store/internal/middleware/auth"
	"github.com/Skotchmaster/esscera_store/internal/service"
	"github.com/Skotchmaster/esscera_store/internal/tokens"
)

type AuthHTTP struct {
	Svc           *service.AuthService
	SecureCookies bool
}

func clientOf(c echo.Context) service.Client {
	return service.Client{Device: c.Request().UserAgent(), IP: c.RealIP()}
}

func (h *AuthHTTP) setSession(c echo.Context, res *service.AuthResult) {
	c.SetCookie(tokens.CreateCookie(tokens.CookieName, res.Token, "/", res.ExpiresAt, h.SecureCookies))
}

func (h *AuthHTTP) Signup(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.signup")

	var req service.SignupInput
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "signup_error", "invalid body", err)
	}

	res, err := h.Svc.Signup(ctx, req, clientOf(c))
	if err != nil {
		return fail(l, "signup_error", err, "")
	}

	h.setSession(c, res)
	l.Info("signup_success", "user_id", res.User.ID)
	return c.JSON(http.StatusOK, echo.Map{"user": res.User})
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "login_error", "invalid body", err)
	}

	res, err := h.Svc.Login(ctx, req.Username, req.Password, clientOf(c))
	if err != nil {
		return fail(l, "login_error", err, "")
	}

	h.setSession(c, res)
	l.Info("login_success", "user_id", res.User.ID)
	return c.JSON(http.StatusOK, echo.Map{"user": res.User})
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.logout")

	if err := h.Svc.Logout(ctx, authmw.Token(c)); err != nil {
		return fail(l, "logout_error", err, "")
	}

	c.SetCookie(tokens.DeleteCookie(tokens.CookieName, "/", h.SecureCookies))
	l.Info("logout_success")
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

func (h *AuthHTTP) Me(c echo.Context) error {
	u := authmw.UserFrom(c)
	if u == nil {
		return unauthorized()
	}
	return c.JSON(http.StatusOK, echo.Map{"user": u})
}

func (h *AuthHTTP) Sessions(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.sessions")

	u := authmw.UserFrom(c)
	if u == nil {
		return unauthorized()
	}
	sessions, err := h.Svc.ListSessions(ctx, u.ID)
	if err != nil {
		return fail(l, "list_sessions_error", err, "")
	}
	return c.JSON(http.StatusOK, echo.Map{"sessions": sessions})
}

// RevokeSessions signs out every device of ?user_id, or every user when
// the parameter is absent.
func (h *AuthHTTP) RevokeSessions(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.revoke_sessions")

	var (
		n   int64
		err error
	)
	if raw := c.QueryParam("user_id"); raw != "" {
		id, perr := uuid.Parse(raw)
		if perr != nil {
			return badRequest(l, "revoke_sessions_error", "user_id is not a uuid", perr)
		}
		n, err = h.Svc.LogoutAllDevices(ctx, id)
	} else {
		n, err = h.Svc.LogoutEveryone(ctx)
	}
	if err != nil {
		return fail(l, "revoke_sessions_error", err, "")
	}

	l.Info("revoke_sessions_success", "revoked", n)
	return c.JSON(http.StatusOK, echo.Map{"success": true, "revoked": n})
}
