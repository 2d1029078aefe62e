package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/esscera_store/internal/events"
	"github.com/Skotchmaster/esscera_store/internal/logging"
	"github.com/Skotchmaster/esscera_store/internal/models"
	"github.com/Skotchmaster/esscera_store/internal/payment"
	"github.com/Skotchmaster/esscera_store/internal/repo"
)

var (
	FreeShippingThreshold = decimal.NewFromInt(200)
	ShippingFee           = decimal.NewFromInt(20)
)

// ShippingFor is free from FreeShippingThreshold upwards.
func ShippingFor(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(FreeShippingThreshold) {
		return decimal.Zero
	}
	return ShippingFee
}

type OrderService struct {
	Repo           *repo.GormRepo
	Payments       payment.Gateway
	Events         events.Publisher
	WhatsAppNumber string
}

type PlaceOrderInput struct {
	PaymentMethod models.PaymentMethod `json:"paymentMethod" validate:"required"`
	FirstName     string               `json:"firstName"     validate:"required,max=100"`
	LastName      string               `json:"lastName"      validate:"required,max=100"`
	Email         string               `json:"email"         validate:"required,email,max=255"`
	Phone         string               `json:"phone"         validate:"required,max=50"`
	Address       string               `json:"address"       validate:"required"`
	City          string               `json:"city"          validate:"required,max=100"`
	PostalCode    string               `json:"postalCode"    validate:"required,max=20"`
	Country       string               `json:"country"       validate:"required,max=100"`
}

func (in *PlaceOrderInput) normalize() {
	in.PaymentMethod = models.PaymentMethod(strings.ToUpper(strings.TrimSpace(string(in.PaymentMethod))))
	for _, f := range []*string{
		&in.FirstName, &in.LastName, &in.Email, &in.Phone,
		&in.Address, &in.City, &in.PostalCode, &in.Country,
	} {
		*f = strings.TrimSpace(*f)
	}
}

type PlacedOrder struct {
	Order        *models.Order
	ClientSecret string
	WhatsAppURL  string
}

func (s *OrderService) PlaceOrder(ctx context.Context, userID uuid.UUID, in PlaceOrderInput) (*PlacedOrder, error) {
	l := logging.FromContext(ctx).With("svc", "order.place", "user_id", userID)

	in.normalize()
	if err := validate(in); err != nil {
		return nil, err
	}
	if !in.PaymentMethod.Valid() {
		return nil, invalid("paymentMethod must be one of [STRIPE WHATSAPP]")
	}

	var (
		intent payment.Intent
		settle repo.OrderSettle
	)
	if in.PaymentMethod == models.PaymentStripe {
		if s.Payments == nil {
			l.Warn("payment_gateway_disabled", "reason", "order placed without a payment intent")
		} else {
			settle = func(o *models.Order) error {
				var err error
				if intent, err = s.Payments.CreateIntent(ctx, o); err != nil {
					l.Error("payment_intent_error", "order_id", o.ID, "error", err)
					return fmt.Errorf("create payment intent: %w: %w", ErrUpstream, err)
				}
				o.PaymentRef = &intent.ID
				return nil
			}
		}
	}

	order, err := s.Repo.PlaceOrder(ctx, userID, func(items []models.CartItem) (*models.Order, error) {
		return draftOrder(userID, in, items)
	}, settle)
	if err != nil {
		return nil, err
	}
	l.Info("order_placed", "order_id", order.ID, "total", order.Total.StringFixed(2))

	placed := &PlacedOrder{Order: order, ClientSecret: intent.ClientSecret}
	if order.PaymentMethod == models.PaymentWhatsApp {
		placed.WhatsAppURL = payment.WhatsAppLink(s.WhatsAppNumber, order)
	}

	publish(ctx, s.Events, events.TopicOrders, order.ID.String(), events.OrderEvent{
		Type:          events.OrderPlaced,
		OrderID:       order.ID.String(),
		UserID:        userID.String(),
		Status:        string(order.Status),
		Total:         order.Total.StringFixed(2),
		PaymentMethod: string(order.PaymentMethod),
	})
	return placed, nil
}

// draftOrder freezes the current price and name of every cart line.
func draftOrder(userID uuid.UUID, in PlaceOrderInput, items []models.CartItem) (*models.Order, error) {
	if len(items) == 0 {
		return nil, ErrCartEmpty
	}

	order := &models.Order{
		UserID:        userID,
		Status:        models.OrderStatusPending,
		PaymentMethod: in.PaymentMethod,
		FirstName:     in.FirstName,
		LastName:      in.LastName,
		Email:         in.Email,
		Phone:         in.Phone,
		Address:       in.Address,
		City:          in.City,
		PostalCode:    in.PostalCode,
		Country:       in.Country,
		Items:         make([]models.OrderItem, 0, len(items)),
	}

	subtotal := decimal.Zero
	for _, it := range items {
		if it.Product.ID == uuid.Nil {
			return nil, fmt.Errorf("cart references a missing product: %w", ErrNotFound)
		}
		order.Items = append(order.Items, models.OrderItem{
			ProductID:   it.ProductID,
			ProductName: it.Product.Name,
			Quantity:    it.Quantity,
			Price:       it.Product.Price,
		})
		subtotal = subtotal.Add(it.LineTotal())
	}
	order.Total = subtotal.Add(ShippingFor(subtotal))
	return order, nil
}

func (s *OrderService) GetOrder(ctx context.Context, viewer *models.User, id uuid.UUID) (*models.Order, error) {
	if viewer == nil {
		return nil, ErrUnauthorized
	}
	order, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		return nil, notFound("order", err)
	}
	if !viewer.IsAdmin() && order.UserID != viewer.ID {
		return nil, ErrUnauthorized
	}
	return order, nil
}

// ListOrders returns every order to admins and only their own to users.
func (s *OrderService) ListOrders(ctx context.Context, viewer *models.User) ([]models.Order, error) {
	if viewer == nil {
		return nil, ErrUnauthorized
	}
	var scope *uuid.UUID
	if !viewer.IsAdmin() {
		scope = &viewer.ID
	}
	return s.Repo.ListOrders(ctx, scope)
}

// UpdateStatus accepts any known status from any other status.
func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) (*models.Order, error) {
	status = models.OrderStatus(strings.ToUpper(strings.TrimSpace(string(status))))
	if !status.Valid() {
		return nil, invalid("status must be one of [PENDING PROCESSING COMPLETED CANCELLED]")
	}

	order, err := s.Repo.UpdateOrderStatus(ctx, id, status)
	if err != nil {
		return nil, notFound("order", err)
	}

	publish(ctx, s.Events, events.TopicOrders, order.ID.String(), events.OrderEvent{
		Type:    events.OrderStatus,
		OrderID: order.ID.String(),
		UserID:  order.UserID.String(),
		Status:  string(order.Status),
		Total:   order.Total.StringFixed(2),
	})
	return order, nil
}
