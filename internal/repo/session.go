package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/esscera_store/internal/models"
)

func (r *GormRepo) CreateSession(ctx context.Context, s *models.Session) error {
	return r.DB.WithContext(ctx).Create(s).Error
}

func (r *GormRepo) FindSessionByTokenHash(ctx context.Context, tokenHash string) (*models.Session, error) {
	var s models.Session
	if err := r.DB.WithContext(ctx).Where("token_hash = ?", tokenHash).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *GormRepo) ListSessionsByUser(ctx context.Context, userID uuid.UUID) ([]models.Session, error) {
	var out []models.Session
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormRepo) DeleteSessionByID(ctx context.Context, id uuid.UUID) error {
	return r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Session{}).Error
}

func (r *GormRepo) DeleteSessionByTokenHash(ctx context.Context, tokenHash string) (int64, error) {
	res := r.DB.WithContext(ctx).Where("token_hash = ?", tokenHash).Delete(&models.Session{})
	return res.RowsAffected, res.Error
}

func (r *GormRepo) DeleteSessionsByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	res := r.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Session{})
	return res.RowsAffected, res.Error
}

func (r *GormRepo) DeleteAllSessions(ctx context.Context) (int64, error) {
	res := r.DB.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Session{})
	return res.RowsAffected, res.Error
}

func (r *GormRepo) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res := r.DB.WithContext(ctx).Where("expires_at < ?", now).Delete(&models.Session{})
	return res.RowsAffected, res.Error
}
