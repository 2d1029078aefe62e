package authmw

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/esscera_store/internal/models"
	"github.com/Skotchmaster/esscera_store/internal/tokens"
)

type fakeSessions struct {
	users map[string]*models.User
	err   error
	calls int
}

func (f *fakeSessions) GetSession(_ context.Context, token string) (*models.User, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.users[token], nil
}

func newSessions() *fakeSessions {
	return &fakeSessions{users: map[string]*models.User{
		"user-token":  {ID: uuid.New(), Username: "ann", Role: models.RoleUser},
		"admin-token": {ID: uuid.New(), Username: "root", Role: models.RoleAdmin},
	}}
}

func run(t *testing.T, mw echo.MiddlewareFunc, req *http.Request) (*httptest.ResponseRecorder, echo.Context, error) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	err := mw(func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })(c)
	return rec, c, err
}

func withCookie(token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: tokens.CookieName, Value: token})
	}
	return req
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	require.True(t, errors.As(err, &he), "expected echo.HTTPError, got %v", err)
	return he.Code
}

func TestSession_Anonymous(t *testing.T) {
	s := newSessions()
	m := New(s, false)

	rec, c, err := run(t, m.Session, withCookie(""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Nil(t, UserFrom(c))
	assert.Equal(t, 0, s.calls)
}

func TestSession_AttachesUser(t *testing.T) {
	s := newSessions()
	m := New(s, false)

	_, c, err := run(t, m.Session, withCookie("user-token"))
	require.NoError(t, err)
	u := UserFrom(c)
	require.NotNil(t, u)
	assert.Equal(t, "ann", u.Username)
	assert.Equal(t, u.ID.String(), c.Get("user_id"))
	assert.Equal(t, "USER", c.Get("role"))
	assert.Equal(t, "user-token", Token(c))
}

func TestSession_BearerHeader(t *testing.T) {
	m := New(newSessions(), false)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer admin-token")
	_, c, err := run(t, m.Session, req)
	require.NoError(t, err)
	require.NotNil(t, UserFrom(c))
	assert.True(t, UserFrom(c).IsAdmin())
}

func TestSession_StaleCookieCleared(t *testing.T) {
	m := New(newSessions(), true)

	rec, c, err := run(t, m.Session, withCookie("revoked"))
	require.NoError(t, err)
	assert.Nil(t, UserFrom(c))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, tokens.CookieName, cookies[0].Name)
	assert.Equal(t, -1, cookies[0].MaxAge)
	assert.True(t, cookies[0].Secure)
}

func TestSession_LookupFailure(t *testing.T) {
	s := newSessions()
	s.err = errors.New("db down")
	m := New(s, false)

	_, _, err := run(t, m.Session, withCookie("user-token"))
	assert.Equal(t, http.StatusInternalServerError, statusOf(t, err))
}

func TestRequireUser(t *testing.T) {
	m := New(newSessions(), false)

	_, _, err := run(t, m.RequireUser, withCookie(""))
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))

	_, _, err = run(t, m.RequireUser, withCookie("bogus"))
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))

	rec, _, err := run(t, m.RequireUser, withCookie("user-token"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRequireAdmin(t *testing.T) {
	m := New(newSessions(), false)

	_, _, err := run(t, m.RequireAdmin, withCookie("user-token"))
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))

	rec, _, err := run(t, m.RequireAdmin, withCookie("admin-token"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestSession_ResolvesOnce(t *testing.T) {
	s := newSessions()
	m := New(s, false)

	e := echo.New()
	c := e.NewContext(withCookie("admin-token"), httptest.NewRecorder())
	h := m.Session(m.RequireAdmin(func(c echo.Context) error { return nil }))
	require.NoError(t, h(c))
	assert.Equal(t, 1, s.calls)
}
