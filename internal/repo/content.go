package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/esscera_store/internal/cms"
	"github.com/Skotchmaster/esscera_store/internal/models"
)

func (r *GormRepo) ListContent(ctx context.Context, page, section string) ([]models.CMSContent, error) {
	q := r.DB.WithContext(ctx).Model(&models.CMSContent{})
	if page != "" {
		q = q.Where("page = ?", page)
	}
	if section != "" {
		q = q.Where("section = ?", section)
	}

	var out []models.CMSContent
	if err := q.Order("page ASC, section ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormRepo) GetContent(ctx context.Context, page, section string) (*models.CMSContent, error) {
	var c models.CMSContent
	if err := r.DB.WithContext(ctx).Where("page = ? AND section = ?", page, section).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// UpsertContent inserts the (page, section) row or overwrites its content.
func (r *GormRepo) UpsertContent(ctx context.Context, page, section string, content cms.Payload) (*models.CMSContent, error) {
	row := models.CMSContent{Page: page, Section: section, Content: content}
	if err := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "page"}, {Name: "section"}},
		DoUpdates: clause.AssignmentColumns([]string{"content", "updated_at"}),
	}).Create(&row).Error; err != nil {
		return nil, err
	}
	return r.GetContent(ctx, page, section)
}

func (r *GormRepo) UpdateContent(ctx context.Context, page, section string, content cms.Payload) (*models.CMSContent, error) {
	res := r.DB.WithContext(ctx).Model(&models.CMSContent{}).
		Where("page = ? AND section = ?", page, section).
		Updates(map[string]any{"content": content, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetContent(ctx, page, section)
}

func (r *GormRepo) DeleteContent(ctx context.Context, page, section string) (int64, error) {
	res := r.DB.WithContext(ctx).Where("page = ? AND section = ?", page, section).Delete(&models.CMSContent{})
	return res.RowsAffected, res.Error
}

func (r *GormRepo) CreateTestimonial(ctx context.Context, t *models.Testimonial) error {
	return r.DB.WithContext(ctx).Create(t).Error
}

func (r *GormRepo) ListTestimonials(ctx context.Context, includeUnapproved bool) ([]models.Testimonial, error) {
	q := r.DB.WithContext(ctx).Model(&models.Testimonial{})
	if !includeUnapproved {
		q = q.Where("approved = ?", true)
	}

	var out []models.Testimonial
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormRepo) SetTestimonialApproved(ctx context.Context, id uuid.UUID, approved bool) (*models.Testimonial, error) {
	res := r.DB.WithContext(ctx).Model(&models.Testimonial{}).Where("id = ?", id).Update("approved", approved)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	var t models.Testimonial
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *GormRepo) DeleteTestimonial(ctx context.Context, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Testimonial{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
