package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PlaceholderImage is used for products created without an upload.
const PlaceholderImage = "/placeholder.svg?height=400&width=300"

type Product struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"             json:"id"`
	Name          string          `gorm:"size:255;not null"                json:"name"`
	Description   string          `gorm:"type:text;not null"               json:"description"`
	Price         decimal.Decimal `gorm:"type:numeric(12,2);not null"      json:"price"`
	Category      string          `gorm:"size:100;index;not null"          json:"category"`
	Image         *string         `                                        json:"image"`
	ImagePublicID *string         `                                        json:"-"`
	Available     bool            `gorm:"not null"                         json:"available"`
	SeoMeta       *string         `gorm:"type:text"                        json:"seo_meta"`
	CreatedByID   *uuid.UUID      `gorm:"type:uuid"                        json:"created_by_id"`
	CreatedBy     *User           `gorm:"foreignKey:CreatedByID"           json:"created_by,omitempty"`
	CreatedAt     time.Time       `                                        json:"created_at"`
	UpdatedAt     time.Time       `                                        json:"updated_at"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (Product) TableName() string {
	return "products"
}
