package authmw

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/esscera_store/internal/logging"
	"github.com/Skotchmaster/esscera_store/internal/models"
	"github.com/Skotchmaster/esscera_store/internal/tokens"
)

const (
	userKey     = "user"
	userIDKey   = "user_id"
	roleKey     = "role"
	tokenKey    = "session_token"
	resolvedKey = "session_resolved"
)

type SessionResolver interface {
	GetSession(ctx context.Context, token string) (*models.User, error)
}

type Middleware struct {
	Sessions      SessionResolver
	SecureCookies bool
}

func New(sessions SessionResolver, secureCookies bool) *Middleware {
	return &Middleware{Sessions: sessions, SecureCookies: secureCookies}
}

// Session attaches the signed-in user, if any, to the context. Requests
// without a valid session pass through anonymously.
func (m *Middleware) Session(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := m.resolve(c); err != nil {
			return err
		}
		return next(c)
	}
}

func (m *Middleware) RequireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return m.require(next, func(u *models.User) bool { return true })
}

func (m *Middleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return m.require(next, func(u *models.User) bool { return u.IsAdmin() })
}

func (m *Middleware) require(next echo.HandlerFunc, allow func(*models.User) bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := m.resolve(c); err != nil {
			return err
		}
		u := UserFrom(c)
		if u == nil || !allow(u) {
			return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
		}
		return next(c)
	}
}

func (m *Middleware) resolve(c echo.Context) error {
	if done, _ := c.Get(resolvedKey).(bool); done {
		return nil
	}
	c.Set(resolvedKey, true)

	raw := readToken(c.Request())
	if raw == "" {
		return nil
	}

	ctx := c.Request().Context()
	user, err := m.Sessions.GetSession(ctx, raw)
	if err != nil {
		logging.FromContext(ctx).Error("session_lookup_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error").SetInternal(err)
	}
	if user == nil {
		if _, cerr := c.Cookie(tokens.CookieName); cerr == nil {
			c.SetCookie(tokens.DeleteCookie(tokens.CookieName, "/", m.SecureCookies))
		}
		return nil
	}

	c.Set(tokenKey, raw)
	setUserContext(c, user)
	return nil
}

func setUserContext(c echo.Context, u *models.User) {
	c.Set(userKey, u)
	c.Set(userIDKey, u.ID.String())
	c.Set(roleKey, string(u.Role))
}

// readToken takes the session cookie first, then a bearer header.
func readToken(r *http.Request) string {
	if ck, err := r.Cookie(tokens.CookieName); err == nil && ck.Value != "" {
		return ck.Value
	}
	h := r.Header.Get(echo.HeaderAuthorization)
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// UserFrom returns the session user or nil for anonymous requests.
func UserFrom(c echo.Context) *models.User {
	u, _ := c.Get(userKey).(*models.User)
	return u
}

// Token returns the raw token of a resolved session, or whatever the
// request carried when no session was found.
func Token(c echo.Context) string {
	if t, ok := c.Get(tokenKey).(string); ok {
		return t
	}
	return readToken(c.Request())
}
