package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/esscera_store/internal/models"
)

type ProductFilter struct {
	Category      string
	AvailableOnly bool
}

func withCreator(db *gorm.DB) *gorm.DB {
	return db.Preload("CreatedBy", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "username")
	})
}

func (r *GormRepo) ListProducts(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	q := withCreator(r.DB.WithContext(ctx).Model(&models.Product{}))
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.AvailableOnly {
		q = q.Where("available = ?", true)
	}

	var items []models.Product
	if err := q.Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := withCreator(r.DB.WithContext(ctx)).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, p *models.Product) error {
	return r.DB.WithContext(ctx).Omit("CreatedBy").Create(p).Error
}

func (r *GormRepo) SaveProduct(ctx context.Context, p *models.Product) error {
	return r.DB.WithContext(ctx).Omit("CreatedBy").Save(p).Error
}

func (r *GormRepo) ToggleAvailability(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	res := r.DB.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).
		Update("available", gorm.Expr("NOT available"))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetProduct(ctx, id)
}

// DeleteProduct drops the product and any cart lines pointing at it.
// Order items keep their frozen copy.
func (r *GormRepo) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Product{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
