package httpserver

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/esscera_store/internal/logging"
	"github.com/Skotchmaster/esscera_store/internal/service"
)

const internalMsg = "internal server error"

// ErrorHandler renders every error as {"error": "..."}. Messages of 5xx
// responses are fixed so internal detail never reaches the client.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := internalMsg

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if code < http.StatusInternalServerError {
			msg = messageOf(he)
		} else if s, ok := he.Message.(string); ok && s != "" {
			msg = s
		}
	} else {
		logging.FromContext(c.Request().Context()).Error("unhandled_error", "error", err)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, echo.Map{"error": msg})
	}
	if err != nil {
		c.Logger().Error(err)
	}
}

func messageOf(he *echo.HTTPError) string {
	switch m := he.Message.(type) {
	case string:
		return m
	case error:
		return m.Error()
	case nil:
		return http.StatusText(he.Code)
	default:
		return fmt.Sprint(m)
	}
}

// fail maps a service error onto an HTTP error and logs it the same way
// every handler does. notFoundMsg is shown for ErrNotFound.
func fail(l *slog.Logger, event string, err error, notFoundMsg string) error {
	code, msg := classify(err, notFoundMsg)
	if code >= http.StatusInternalServerError {
		l.Error(event, "status", code, "reason", msg, "error", err)
	} else {
		l.Warn(event, "status", code, "reason", msg, "error", err)
	}
	return echo.NewHTTPError(code, msg).SetInternal(err)
}

func classify(err error, notFoundMsg string) (int, string) {
	switch {
	case errors.Is(err, service.ErrCartEmpty):
		return http.StatusBadRequest, "Cart is empty"
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, service.Message(err)
	case errors.Is(err, service.ErrNotFound):
		if notFoundMsg == "" {
			notFoundMsg = "Not found"
		}
		return http.StatusNotFound, notFoundMsg
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict, sentence(err, service.ErrConflict)
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized, "Unauthorized"
	case errors.Is(err, service.ErrUpstream):
		return http.StatusBadGateway, "upstream service unavailable"
	}
	return http.StatusInternalServerError, internalMsg
}

// sentence strips the sentinel suffix from a wrapped error and
// capitalizes it, "user exists: conflict" becomes "User exists".
func sentence(err, sentinel error) string {
	s := strings.TrimSuffix(err.Error(), ": "+sentinel.Error())
	if s == "" || s == sentinel.Error() {
		return http.StatusText(http.StatusConflict)
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func unauthorized() error {
	return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
}

func badRequest(l *slog.Logger, event, msg string, err error) error {
	l.Warn(event, "status", 400, "reason", msg, "error", err)
	return echo.NewHTTPError(http.StatusBadRequest, msg).SetInternal(err)
}
