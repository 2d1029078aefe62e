package repo

import (
	"errors"
	"strings"

	"github.com/Masterminds/squirrel"
	"gorm.io/gorm"
)

var (
	ErrDuplicate     = errors.New("duplicate key")
	ErrUserHasOrders = errors.New("user has orders")
)

// qb renders ? placeholders; gorm rebinds them for the active dialect.
var qb = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

type GormRepo struct {
	DB *gorm.DB
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "SQLSTATE 23505")
}
