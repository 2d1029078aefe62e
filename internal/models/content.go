package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/esscera_store/internal/cms"
)

type CMSContent struct {
	ID        uuid.UUID   `gorm:"type:uuid;primaryKey"                                json:"id"`
	Page      string      `gorm:"size:100;uniqueIndex:idx_cms_page_section;not null" json:"page"`
	Section   string      `gorm:"size:100;uniqueIndex:idx_cms_page_section;not null" json:"section"`
	Content   cms.Payload `gorm:"not null"                                            json:"content"`
	CreatedAt time.Time   `                                                           json:"created_at"`
	UpdatedAt time.Time   `                                                           json:"updated_at"`
}

func (c *CMSContent) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (CMSContent) TableName() string {
	return "cms_contents"
}

type Testimonial struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"  json:"id"`
	Quote     string    `gorm:"type:text;not null"    json:"quote"`
	Author    string    `gorm:"size:50;not null"      json:"author"`
	Title     string    `gorm:"size:100;not null"     json:"title"`
	Rating    int       `gorm:"not null"              json:"rating"`
	Approved  bool      `gorm:"index;not null"        json:"approved"`
	CreatedAt time.Time `                             json:"created_at"`
}

func (t *Testimonial) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

func (Testimonial) TableName() string {
	return "testimonials"
}
