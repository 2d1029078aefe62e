package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/Skotchmaster/esscera_store/internal/service"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{name: "validation", err: &service.ValidationError{Msg: "price must be a number"}, wantCode: 400, wantMsg: "price must be a number"},
		{name: "empty cart", err: service.ErrCartEmpty, wantCode: 400, wantMsg: "Cart is empty"},
		{name: "not found", err: fmt.Errorf("order not found: %w", service.ErrNotFound), wantCode: 404, wantMsg: "Order not found"},
		{name: "conflict", err: fmt.Errorf("user with this email or username already exists: %w", service.ErrConflict), wantCode: 409, wantMsg: "User with this email or username already exists"},
		{name: "credentials", err: service.ErrInvalidCredentials, wantCode: 401, wantMsg: "Invalid credentials"},
		{name: "unauthorized", err: service.ErrUnauthorized, wantCode: 401, wantMsg: "Unauthorized"},
		{name: "upstream", err: fmt.Errorf("search: %w", service.ErrUpstream), wantCode: 502, wantMsg: "upstream service unavailable"},
		{name: "other", err: errors.New("pq: connection refused"), wantCode: 500, wantMsg: "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, msg := classify(tt.err, "Order not found")
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantMsg, msg)
		})
	}
}

func render(err error) *httptest.ResponseRecorder {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	ErrorHandler(err, c)
	return rec
}

func TestErrorHandler(t *testing.T) {
	rec := render(echo.NewHTTPError(http.StatusNotFound, "Product not found"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Product not found"}`, rec.Body.String())

	rec = render(errors.New("dial tcp 10.0.0.1:5432: secret detail"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())

	rec = render(echo.ErrMethodNotAllowed)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.JSONEq(t, `{"error":"Method Not Allowed"}`, rec.Body.String())
}
