package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/esscera_store/internal/models"
)

type UserWithOrders struct {
	models.User
	OrderCount int64 `json:"order_count"`
}

type userOrderCount struct {
	UserID     uuid.UUID
	OrderCount int64
}

func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	if err := r.DB.WithContext(ctx).Create(u).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *GormRepo) UserTaken(ctx context.Context, email, username string) (bool, error) {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("email = ? OR username = ?", email, username).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindUserByLogin matches the identifier against username or email.
func (r *GormRepo) FindUserByLogin(ctx context.Context, identifier string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).
		Where("username = ? OR email = ?", identifier, identifier).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) ListUsersWithOrderCounts(ctx context.Context) ([]UserWithOrders, error) {
	var users []models.User
	if err := r.DB.WithContext(ctx).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, err
	}

	q, args, err := qb.Select("user_id", "COUNT(*) AS order_count").
		From("orders").
		GroupBy("user_id").
		ToSql()
	if err != nil {
		return nil, err
	}

	var counts []userOrderCount
	if err := r.DB.WithContext(ctx).Raw(q, args...).Scan(&counts).Error; err != nil {
		return nil, err
	}

	byUser := make(map[uuid.UUID]int64, len(counts))
	for _, c := range counts {
		byUser[c.UserID] = c.OrderCount
	}

	out := make([]UserWithOrders, 0, len(users))
	for _, u := range users {
		out = append(out, UserWithOrders{User: u, OrderCount: byUser[u.ID]})
	}
	return out, nil
}

func (r *GormRepo) UpdateUserRole(ctx context.Context, id uuid.UUID, role models.Role) (*models.User, error) {
	res := r.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("role", role)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetUserByID(ctx, id)
}

// DeleteUser removes the account with its sessions and cart. Accounts
// that placed orders are kept so order history stays intact.
func (r *GormRepo) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var orders int64
		if err := tx.Model(&models.Order{}).Where("user_id = ?", id).Count(&orders).Error; err != nil {
			return err
		}
		if orders > 0 {
			return ErrUserHasOrders
		}

		if err := tx.Where("user_id = ?", id).Delete(&models.Session{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Product{}).Where("created_by_id = ?", id).
			Update("created_by_id", nil).Error; err != nil {
			return err
		}

		res := tx.Where("id = ?", id).Delete(&models.User{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
