package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/esscera_store/internal/models"
)

// OrderDraft turns the locked cart lines (products loaded) into the order
// to persist. Returning an error rolls the checkout back.
type OrderDraft func(items []models.CartItem) (*models.Order, error)

// OrderSettle runs inside the checkout transaction once the order row has
// its id. A PaymentRef it sets is stored with the order; an error rolls the
// whole checkout back, cart included.
type OrderSettle func(order *models.Order) error

func withOrderDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "username", "email")
		}).
		Preload("Items.Product")
}

// PlaceOrder locks the user's cart, persists the drafted order with its
// items, empties the cart and settles the order, all in one transaction.
// settle may be nil.
func (r *GormRepo) PlaceOrder(ctx context.Context, userID uuid.UUID, draft OrderDraft, settle OrderSettle) (*models.Order, error) {
	var order *models.Order

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var items []models.CartItem
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", userID).
			Order("created_at ASC").
			Find(&items).Error; err != nil {
			return err
		}

		if len(items) > 0 {
			ids := make([]uuid.UUID, 0, len(items))
			for _, it := range items {
				ids = append(ids, it.ProductID)
			}
			var products []models.Product
			if err := tx.Where("id IN ?", ids).Find(&products).Error; err != nil {
				return err
			}
			byID := make(map[uuid.UUID]models.Product, len(products))
			for _, p := range products {
				byID[p.ID] = p
			}
			for i := range items {
				items[i].Product = byID[items[i].ProductID]
			}
		}

		o, err := draft(items)
		if err != nil {
			return err
		}

		if err := tx.Omit("User").Create(o).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}

		if settle != nil {
			if err := settle(o); err != nil {
				return err
			}
			if o.PaymentRef != nil {
				if err := tx.Model(&models.Order{}).Where("id = ?", o.ID).
					Update("payment_ref", *o.PaymentRef).Error; err != nil {
					return err
				}
			}
		}

		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.GetOrder(ctx, order.ID)
}

func (r *GormRepo) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := withOrderDetails(r.DB.WithContext(ctx)).Where("id = ?", id).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// ListOrders returns every order when userID is nil.
func (r *GormRepo) ListOrders(ctx context.Context, userID *uuid.UUID) ([]models.Order, error) {
	q := withOrderDetails(r.DB.WithContext(ctx).Model(&models.Order{}))
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}

	var orders []models.Order
	if err := q.Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormRepo) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) (*models.Order, error) {
	res := r.DB.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetOrder(ctx, id)
}

func (r *GormRepo) RecentOrders(ctx context.Context, limit int) ([]models.Order, error) {
	var orders []models.Order
	if err := r.DB.WithContext(ctx).
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "username")
		}).
		Order("created_at DESC").
		Limit(limit).
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}
