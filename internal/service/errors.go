package service

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/esscera_store/internal/util"
)

var (
	ErrValidation         = errors.New("validation")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrCartEmpty          = errors.New("cart is empty")
	ErrUpstream           = errors.New("upstream failure")
)

// ValidationError carries a message that is safe to show to the client.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// validate runs the struct validator and reports failures as ValidationError.
func validate(v any) error {
	if err := util.Validate.Struct(v); err != nil {
		return &ValidationError{Msg: util.ValidationMessage(err)}
	}
	return nil
}

// Message returns the client-facing text of a validation error.
func Message(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Msg
	}
	return strings.TrimSuffix(err.Error(), ": "+ErrValidation.Error())
}

func notFound(what string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s not found: %w", what, ErrNotFound)
	}
	return err
}
