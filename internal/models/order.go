package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusCompleted  OrderStatus = "COMPLETED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentStripe   PaymentMethod = "STRIPE"
	PaymentWhatsApp PaymentMethod = "WHATSAPP"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentStripe || m == PaymentWhatsApp
}

type Order struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"           json:"id"`
	UserID        uuid.UUID       `gorm:"type:uuid;index;not null"       json:"user_id"`
	User          *User           `gorm:"foreignKey:UserID"              json:"user,omitempty"`
	Total         decimal.Decimal `gorm:"type:numeric(12,2);not null"    json:"total"`
	Status        OrderStatus     `gorm:"type:varchar(16);index;not null" json:"status"`
	PaymentMethod PaymentMethod   `gorm:"type:varchar(16);not null"      json:"payment_method"`
	FirstName     string          `gorm:"size:100;not null"              json:"first_name"`
	LastName      string          `gorm:"size:100;not null"              json:"last_name"`
	Email         string          `gorm:"size:255;not null"              json:"email"`
	Phone         string          `gorm:"size:50;not null"               json:"phone"`
	Address       string          `gorm:"not null"                       json:"address"`
	City          string          `gorm:"size:100;not null"              json:"city"`
	PostalCode    string          `gorm:"size:20;not null"               json:"postal_code"`
	Country       string          `gorm:"size:100;not null"              json:"country"`
	PaymentRef    *string         `                                      json:"payment_ref,omitempty"`
	Items         []OrderItem     `gorm:"foreignKey:OrderID"             json:"items"`
	CreatedAt     time.Time       `                                      json:"created_at"`
	UpdatedAt     time.Time       `                                      json:"updated_at"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.Status == "" {
		o.Status = OrderStatusPending
	}
	return nil
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem keeps the price and name the product had when the order was placed.
type OrderItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"        json:"id"`
	OrderID     uuid.UUID       `gorm:"type:uuid;index;not null"    json:"order_id"`
	ProductID   uuid.UUID       `gorm:"type:uuid;index;not null"    json:"product_id"`
	ProductName string          `gorm:"size:255;not null"           json:"product_name"`
	Quantity    int             `gorm:"not null"                    json:"quantity"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Product     *Product        `gorm:"foreignKey:ProductID"        json:"product,omitempty"`
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (OrderItem) TableName() string {
	return "order_items"
}
