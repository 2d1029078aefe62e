package csrf

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, cfg Config, req *http.Request) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	err := Middleware(cfg)(func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })(c)
	return rec, err
}

func code(err error) int {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return 0
}

func TestSafeMethodIssuesToken(t *testing.T) {
	rec, err := serve(t, Config{}, httptest.NewRequest(http.MethodGet, "http://shop.test/api/products", nil))
	require.NoError(t, err)

	tok := rec.Header().Get("X-CSRF-Token")
	require.NotEmpty(t, tok)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "XSRF-TOKEN", cookies[0].Name)
	assert.Equal(t, tok, cookies[0].Value)
	assert.False(t, cookies[0].HttpOnly)
}

func unsafe(origin, cookie, header string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "http://shop.test/api/cart", strings.NewReader("{}"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: cookie})
	}
	if header != "" {
		req.Header.Set("X-CSRF-Token", header)
	}
	return req
}

func TestUnsafeMethod(t *testing.T) {
	cfg := Config{TrustedOrigins: []string{"https://esscera.com/"}}

	tests := []struct {
		name string
		req  *http.Request
		want int
	}{
		{name: "matching token", req: unsafe("http://shop.test", "abc", "abc"), want: 0},
		{name: "trusted origin", req: unsafe("https://esscera.com", "abc", "abc"), want: 0},
		{name: "missing header", req: unsafe("http://shop.test", "abc", ""), want: http.StatusForbidden},
		{name: "mismatch", req: unsafe("http://shop.test", "abc", "abd"), want: http.StatusForbidden},
		{name: "foreign origin", req: unsafe("https://evil.test", "abc", "abc"), want: http.StatusForbidden},
		{name: "no origin", req: unsafe("", "abc", "abc"), want: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := serve(t, cfg, tt.req)
			assert.Equal(t, tt.want, code(err))
		})
	}
}

func TestSkipPrefixes(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "http://shop.test/health/ready", nil)
	rec, err := serve(t, Config{SkipPrefixes: []string{"/health"}}, req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Result().Cookies())
}
