package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/esscera_store/internal/events"
	"github.com/Skotchmaster/esscera_store/internal/imagehost"
	"github.com/Skotchmaster/esscera_store/internal/logging"
	"github.com/Skotchmaster/esscera_store/internal/models"
	"github.com/Skotchmaster/esscera_store/internal/repo"
	"github.com/Skotchmaster/esscera_store/internal/search"
	"github.com/Skotchmaster/esscera_store/internal/util"
)

type CatalogService struct {
	Repo   *repo.GormRepo
	Images imagehost.Host
	Index  search.Index
	Events events.Publisher
}

type ImageFile struct {
	Reader   io.Reader
	Filename string
}

// ProductInput is a create request or a partial update: nil fields are
// left untouched on update.
type ProductInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Price       *string `json:"price"`
	Category    *string `json:"category"`
	Available   *bool   `json:"available"`
	SeoMeta     *string `json:"seoMeta"`
	Image       *string `json:"image"`
}

type SearchResult struct {
	Products []search.Document `json:"products"`
	Meta     util.Meta         `json:"meta"`
}

func (s *CatalogService) ListProducts(ctx context.Context, f repo.ProductFilter) ([]models.Product, error) {
	f.Category = strings.TrimSpace(f.Category)
	return s.Repo.ListProducts(ctx, f)
}

func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, notFound("product", err)
	}
	return p, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, creatorID uuid.UUID, in ProductInput, img *ImageFile) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.create_product")

	if isBlank(in.Name) || isBlank(in.Description) || isBlank(in.Price) || isBlank(in.Category) {
		return nil, invalid("name, description, price and category are required")
	}

	p := &models.Product{}
	if creatorID != uuid.Nil {
		p.CreatedByID = &creatorID
	}
	if err := applyProductInput(p, in); err != nil {
		return nil, err
	}

	var uploaded *imagehost.Uploaded
	switch {
	case img != nil:
		up, err := s.upload(ctx, img)
		if err != nil {
			return nil, err
		}
		uploaded = &up
		p.Image, p.ImagePublicID = &up.URL, &up.PublicID
	case !isBlank(in.Image):
		s.adoptImageURL(p, *in.Image)
	default:
		placeholder := models.PlaceholderImage
		p.Image = &placeholder
	}

	if err := s.Repo.CreateProduct(ctx, p); err != nil {
		if uploaded != nil {
			s.deleteImage(ctx, l, uploaded.PublicID)
		}
		return nil, err
	}

	created, err := s.Repo.GetProduct(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	l.Info("product_created", "product_id", created.ID)

	s.reindex(ctx, l, created)
	s.publishProduct(ctx, events.ProductCreated, created)
	return created, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, in ProductInput, img *ImageFile) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.update_product", "product_id", id)

	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, notFound("product", err)
	}
	if err := applyProductInput(p, in); err != nil {
		return nil, err
	}

	previous := s.hostedID(p)
	var uploaded string
	switch {
	case img != nil:
		up, err := s.upload(ctx, img)
		if err != nil {
			return nil, err
		}
		p.Image, p.ImagePublicID = &up.URL, &up.PublicID
		uploaded = up.PublicID
	case in.Image != nil:
		s.adoptImageURL(p, *in.Image)
	}

	if err := s.Repo.SaveProduct(ctx, p); err != nil {
		if uploaded != "" {
			s.deleteImage(ctx, l, uploaded)
		}
		return nil, err
	}

	if current := s.hostedID(p); previous != "" && previous != current {
		s.deleteImage(ctx, l, previous)
	}

	updated, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	l.Info("product_updated")

	s.reindex(ctx, l, updated)
	s.publishProduct(ctx, events.ProductUpdated, updated)
	return updated, nil
}

// DeleteProduct removes the hosted image on a best-effort basis, then the row.
func (s *CatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	l := logging.FromContext(ctx).With("svc", "catalog.delete_product", "product_id", id)

	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return notFound("product", err)
	}

	if publicID := s.hostedID(p); publicID != "" {
		s.deleteImage(ctx, l, publicID)
	}

	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		return notFound("product", err)
	}
	l.Info("product_deleted")

	if s.Index != nil {
		if err := s.Index.DeleteProduct(ctx, id.String()); err != nil {
			l.Warn("search_delete_error", "error", err)
		}
	}
	s.publishProduct(ctx, events.ProductDeleted, p)
	return nil
}

func (s *CatalogService) ToggleAvailability(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.toggle_availability", "product_id", id)

	p, err := s.Repo.ToggleAvailability(ctx, id)
	if err != nil {
		return nil, notFound("product", err)
	}

	s.reindex(ctx, l, p)
	s.publishProduct(ctx, events.ProductUpdated, p)
	return p, nil
}

func (s *CatalogService) Search(ctx context.Context, query string, page, size int) (*SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, invalid("q is required")
	}
	if s.Index == nil {
		return &SearchResult{Products: []search.Document{}, Meta: util.NewMeta(page, size, 0)}, nil
	}

	from, limit := util.Calculate(page, size)
	total, docs, err := s.Index.Search(ctx, query, from, limit)
	if err != nil {
		return nil, fmt.Errorf("search: %w: %w", ErrUpstream, err)
	}
	return &SearchResult{Products: docs, Meta: util.NewMeta(page, limit, total)}, nil
}

// UploadImage stores a standalone image, e.g. for CMS slides.
func (s *CatalogService) UploadImage(ctx context.Context, img *ImageFile) (imagehost.Uploaded, error) {
	if img == nil {
		return imagehost.Uploaded{}, invalid("file is required")
	}
	return s.upload(ctx, img)
}

func (s *CatalogService) upload(ctx context.Context, img *ImageFile) (imagehost.Uploaded, error) {
	if s.Images == nil {
		return imagehost.Uploaded{}, fmt.Errorf("no image host: %w", ErrUpstream)
	}
	up, err := s.Images.Upload(ctx, img.Reader, img.Filename)
	if err != nil {
		logging.FromContext(ctx).Error("image_upload_error", "filename", img.Filename, "error", err)
		return imagehost.Uploaded{}, fmt.Errorf("upload image: %w: %w", ErrUpstream, err)
	}
	return up, nil
}

func (s *CatalogService) adoptImageURL(p *models.Product, url string) {
	url = strings.TrimSpace(url)
	if url == "" {
		placeholder := models.PlaceholderImage
		p.Image, p.ImagePublicID = &placeholder, nil
		return
	}
	p.Image, p.ImagePublicID = &url, nil
	if s.Images != nil {
		if id, ok := s.Images.Owns(url); ok {
			p.ImagePublicID = &id
		}
	}
}

func (s *CatalogService) hostedID(p *models.Product) string {
	if p.ImagePublicID != nil && *p.ImagePublicID != "" {
		return *p.ImagePublicID
	}
	if p.Image != nil && s.Images != nil {
		if id, ok := s.Images.Owns(*p.Image); ok {
			return id
		}
	}
	return ""
}

func (s *CatalogService) deleteImage(ctx context.Context, l *slog.Logger, publicID string) {
	if s.Images == nil {
		return
	}
	if err := s.Images.Delete(ctx, publicID); err != nil {
		l.Warn("image_delete_error", "public_id", publicID, "error", err)
	}
}

func (s *CatalogService) reindex(ctx context.Context, l *slog.Logger, p *models.Product) {
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexProduct(ctx, *p); err != nil {
		l.Warn("search_index_error", "product_id", p.ID, "error", err)
	}
}

func (s *CatalogService) publishProduct(ctx context.Context, typ string, p *models.Product) {
	publish(ctx, s.Events, events.TopicProducts, p.ID.String(), events.ProductEvent{
		Type:      typ,
		ProductID: p.ID.String(),
		Name:      p.Name,
		Price:     p.Price.StringFixed(2),
		Available: p.Available,
	})
}

func applyProductInput(p *models.Product, in ProductInput) error {
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" || len(name) > 255 {
			return invalid("name must be between 1 and 255 characters")
		}
		p.Name = name
	}
	if in.Description != nil {
		p.Description = strings.TrimSpace(*in.Description)
	}
	if in.Price != nil {
		price, err := ParsePrice(*in.Price)
		if err != nil {
			return err
		}
		p.Price = price
	}
	if in.Category != nil {
		cat := strings.TrimSpace(*in.Category)
		if cat == "" {
			return invalid("category is required")
		}
		p.Category = cat
	}
	if in.Available != nil {
		p.Available = *in.Available
	}
	if in.SeoMeta != nil {
		if meta := strings.TrimSpace(*in.SeoMeta); meta != "" {
			p.SeoMeta = &meta
		} else {
			p.SeoMeta = nil
		}
	}
	return nil
}

// ParsePrice accepts a non-negative decimal and rounds it to cents.
func ParsePrice(raw string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, invalid("price must be a number")
	}
	if price.IsNegative() {
		return decimal.Zero, invalid("price cannot be negative")
	}
	return price.Round(2), nil
}

func isBlank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}
