package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"             json:"id"`
	Username     string    `gorm:"size:64;uniqueIndex;not null"     json:"username"`
	Email        string    `gorm:"size:255;uniqueIndex;not null"    json:"email"`
	PasswordHash string    `gorm:"not null"                         json:"-"`
	Role         Role      `gorm:"type:varchar(16);not null"        json:"role"`
	CreatedAt    time.Time `                                        json:"created_at"`
	UpdatedAt    time.Time `                                        json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

func (User) TableName() string {
	return "users"
}

type Session struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"         json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null"     json:"user_id"`
	TokenHash string    `gorm:"size:64;uniqueIndex;not null" json:"-"`
	Device    string    `gorm:"not null;default:''"          json:"device"`
	IPAddress string    `gorm:"size:64;not null;default:''"  json:"ip_address"`
	ExpiresAt time.Time `gorm:"index;not null"               json:"expires_at"`
	CreatedAt time.Time `                                    json:"created_at"`
}

func (s *Session) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (Session) TableName() string {
	return "sessions"
}
