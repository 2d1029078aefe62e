package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/esscera_store/internal/models"
)

func (r *GormRepo) GetCart(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.DB.WithContext(ctx).Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) getCartItem(db *gorm.DB, userID, itemID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	if err := db.Preload("Product").Where("id = ? AND user_id = ?", itemID, userID).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// AddToCart adds item.Quantity to the existing (user, product) line or
// creates it in a single upsert. item is reloaded with its product.
func (r *GormRepo) AddToCart(ctx context.Context, item *models.CartItem) error {
	db := r.DB.WithContext(ctx)
	if err := db.Omit("Product").Clauses(addToCartConflict()).Create(item).Error; err != nil {
		return err
	}

	// item carries the id of the insert attempt, which a merge discards.
	var saved models.CartItem
	if err := db.Preload("Product").
		Where("user_id = ? AND product_id = ?", item.UserID, item.ProductID).
		First(&saved).Error; err != nil {
		return err
	}
	*item = saved
	return nil
}

// addToCartConflict folds a second insert for the same (user, product) into
// the existing line.
func addToCartConflict() clause.OnConflict {
	return clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"quantity":   gorm.Expr("cart_items.quantity + excluded.quantity"),
			"updated_at": gorm.Expr("excluded.updated_at"),
		}),
	}
}

func (r *GormRepo) SetCartQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*models.CartItem, error) {
	res := r.DB.WithContext(ctx).Model(&models.CartItem{}).
		Where("id = ? AND user_id = ?", itemID, userID).
		Update("quantity", quantity)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.getCartItem(r.DB.WithContext(ctx), userID, itemID)
}

func (r *GormRepo) DeleteCartItem(ctx context.Context, userID, itemID uuid.UUID) error {
	res := r.DB.WithContext(ctx).Where("id = ? AND user_id = ?", itemID, userID).Delete(&models.CartItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) ClearCart(ctx context.Context, userID uuid.UUID) error {
	return r.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
}
