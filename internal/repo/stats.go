package repo

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/esscera_store/internal/models"
)

type Stats struct {
	TotalProducts int64           `json:"total_products"`
	TotalOrders   int64           `json:"total_orders"`
	TotalUsers    int64           `json:"total_users"`
	PendingOrders int64           `json:"pending_orders"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
}

// RevenueStatuses are the order states counted as earned revenue.
var RevenueStatuses = []string{
	string(models.OrderStatusCompleted),
	string(models.OrderStatusProcessing),
}

func countOf(table string) squirrel.SelectBuilder {
	return qb.Select("COUNT(*)").From(table)
}

func (r *GormRepo) Stats(ctx context.Context) (Stats, error) {
	q, args, err := qb.Select().
		Column(squirrel.Alias(countOf("products"), "total_products")).
		Column(squirrel.Alias(countOf("orders"), "total_orders")).
		Column(squirrel.Alias(countOf("users"), "total_users")).
		Column(squirrel.Alias(
			countOf("orders").Where(squirrel.Eq{"status": string(models.OrderStatusPending)}),
			"pending_orders",
		)).
		Column(squirrel.Alias(
			qb.Select("COALESCE(SUM(total), 0)").From("orders").Where(squirrel.Eq{"status": RevenueStatuses}),
			"total_revenue",
		)).
		ToSql()
	if err != nil {
		return Stats{}, err
	}

	var s Stats
	if err := r.DB.WithContext(ctx).Raw(q, args...).Scan(&s).Error; err != nil {
		return Stats{}, err
	}
	return s, nil
}
