package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/esscera_store/internal/models"
	"github.com/Skotchmaster/esscera_store/internal/repo"
)

type CartService struct {
	Repo *repo.GormRepo
}

type Cart struct {
	Items      []models.CartItem `json:"items"`
	TotalItems int               `json:"total_items"`
	TotalPrice decimal.Decimal   `json:"total_price"`
}

// NewCart derives the totals from the live product prices.
func NewCart(items []models.CartItem) *Cart {
	c := &Cart{Items: items, TotalPrice: decimal.Zero}
	if c.Items == nil {
		c.Items = []models.CartItem{}
	}
	for _, it := range c.Items {
		c.TotalItems += it.Quantity
		c.TotalPrice = c.TotalPrice.Add(it.LineTotal())
	}
	return c
}

func (s *CartService) GetCart(ctx context.Context, userID uuid.UUID) (*Cart, error) {
	items, err := s.Repo.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	return NewCart(items), nil
}

func (s *CartService) AddToCart(ctx context.Context, userID, productID uuid.UUID, quantity int) (*models.CartItem, error) {
	if productID == uuid.Nil {
		return nil, invalid("productId is required")
	}
	if quantity < 1 {
		return nil, invalid("quantity must be at least 1")
	}

	product, err := s.Repo.GetProduct(ctx, productID)
	if err != nil {
		return nil, notFound("product", err)
	}
	if !product.Available {
		return nil, invalid("product is not available")
	}

	item := &models.CartItem{UserID: userID, ProductID: productID, Quantity: quantity}
	if err := s.Repo.AddToCart(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// SetQuantity requires a positive quantity; use RemoveItem to drop a line.
func (s *CartService) SetQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*models.CartItem, error) {
	if quantity < 1 {
		return nil, invalid("quantity must be at least 1")
	}
	item, err := s.Repo.SetCartQuantity(ctx, userID, itemID, quantity)
	if err != nil {
		return nil, notFound("cart item", err)
	}
	return item, nil
}

func (s *CartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) error {
	if err := s.Repo.DeleteCartItem(ctx, userID, itemID); err != nil {
		return notFound("cart item", err)
	}
	return nil
}

func (s *CartService) ClearCart(ctx context.Context, userID uuid.UUID) error {
	return s.Repo.ClearCart(ctx, userID)
}
