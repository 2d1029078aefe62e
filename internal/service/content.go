package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/esscera_store/internal/cms"
	"github.com/Skotchmaster/esscera_store/internal/imagehost"
	"github.com/Skotchmaster/esscera_store/internal/logging"
	"github.com/Skotchmaster/esscera_store/internal/models"
	"github.com/Skotchmaster/esscera_store/internal/repo"
)

type CMSService struct {
	Repo   *repo.GormRepo
	Images imagehost.Host
}

func (s *CMSService) List(ctx context.Context, page, section string) ([]models.CMSContent, error) {
	return s.Repo.ListContent(ctx, strings.TrimSpace(page), strings.TrimSpace(section))
}

// Upsert creates or replaces the entry for (page, section). Hosted images
// dropped by the new content are deleted best-effort.
func (s *CMSService) Upsert(ctx context.Context, page, section string, content cms.Payload) (*models.CMSContent, error) {
	return s.save(ctx, page, section, content, false)
}

// Update replaces an existing entry and fails with ErrNotFound otherwise.
func (s *CMSService) Update(ctx context.Context, page, section string, content cms.Payload) (*models.CMSContent, error) {
	return s.save(ctx, page, section, content, true)
}

func (s *CMSService) save(ctx context.Context, page, section string, content cms.Payload, mustExist bool) (*models.CMSContent, error) {
	l := logging.FromContext(ctx).With("svc", "cms.save")

	page, section = strings.TrimSpace(page), strings.TrimSpace(section)
	if page == "" || section == "" {
		return nil, invalid("Page and section are required")
	}
	if _, err := cms.Decode(page, section, content); err != nil {
		return nil, invalid("%s", err.Error())
	}

	previous, err := s.Repo.GetContent(ctx, page, section)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var saved *models.CMSContent
	if mustExist {
		saved, err = s.Repo.UpdateContent(ctx, page, section, content)
		if err != nil {
			return nil, notFound("cms content", err)
		}
	} else {
		saved, err = s.Repo.UpsertContent(ctx, page, section, content)
		if err != nil {
			return nil, err
		}
	}

	if previous != nil {
		kept := map[string]bool{}
		for _, img := range cms.ImagesOf(page, section, saved.Content) {
			kept[s.imageID(img)] = true
		}
		for _, img := range cms.ImagesOf(page, section, previous.Content) {
			if id := s.imageID(img); id != "" && !kept[id] {
				s.dropImage(ctx, l, id)
			}
		}
	}

	l.Info("cms_content_saved", "page", page, "section", section)
	return saved, nil
}

// Delete removes the entry and every hosted image it references. Deleting
// an absent entry succeeds.
func (s *CMSService) Delete(ctx context.Context, page, section string) error {
	l := logging.FromContext(ctx).With("svc", "cms.delete")

	page, section = strings.TrimSpace(page), strings.TrimSpace(section)
	if page == "" || section == "" {
		return invalid("Page and section are required")
	}

	existing, err := s.Repo.GetContent(ctx, page, section)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	for _, img := range cms.ImagesOf(page, section, existing.Content) {
		if id := s.imageID(img); id != "" {
			s.dropImage(ctx, l, id)
		}
	}

	if _, err := s.Repo.DeleteContent(ctx, page, section); err != nil {
		return err
	}
	l.Info("cms_content_deleted", "page", page, "section", section)
	return nil
}

func (s *CMSService) imageID(img cms.Image) string {
	if img.PublicID != "" {
		return img.PublicID
	}
	if s.Images != nil && img.URL != "" {
		if id, ok := s.Images.Owns(img.URL); ok {
			return id
		}
	}
	return ""
}

func (s *CMSService) dropImage(ctx context.Context, l *slog.Logger, publicID string) {
	if s.Images == nil {
		return
	}
	if err := s.Images.Delete(ctx, publicID); err != nil {
		l.Warn("image_delete_error", "public_id", publicID, "error", err)
	}
}

type TestimonialService struct {
	Repo *repo.GormRepo
}

type TestimonialInput struct {
	Quote  string `json:"quote"`
	Author string `json:"author"`
	Title  string `json:"title"`
	Rating *int   `json:"rating"`
}

func (in TestimonialInput) check() error {
	if in.Quote == "" || in.Author == "" || in.Title == "" || in.Rating == nil {
		return invalid("All fields are required")
	}
	if n := utf8.RuneCountInString(in.Quote); n < 10 || n > 500 {
		return invalid("Quote must be between 10 and 500 characters")
	}
	if n := utf8.RuneCountInString(in.Author); n < 2 || n > 50 {
		return invalid("Author name must be between 2 and 50 characters")
	}
	if n := utf8.RuneCountInString(in.Title); n < 2 || n > 100 {
		return invalid("Title must be between 2 and 100 characters")
	}
	if *in.Rating < 1 || *in.Rating > 5 {
		return invalid("Rating must be a number between 1 and 5")
	}
	return nil
}

// Submit stores a new testimonial awaiting moderation. Lengths are
// checked after trimming.
func (s *TestimonialService) Submit(ctx context.Context, in TestimonialInput) (*models.Testimonial, error) {
	in.Quote = strings.TrimSpace(in.Quote)
	in.Author = strings.TrimSpace(in.Author)
	in.Title = strings.TrimSpace(in.Title)
	if err := in.check(); err != nil {
		return nil, err
	}

	t := &models.Testimonial{
		Quote:  in.Quote,
		Author: in.Author,
		Title:  in.Title,
		Rating: *in.Rating,
	}
	if err := s.Repo.CreateTestimonial(ctx, t); err != nil {
		return nil, err
	}
	logging.FromContext(ctx).Info("testimonial_submitted", "testimonial_id", t.ID)
	return t, nil
}

// List shows unapproved entries only to admins who ask for them.
func (s *TestimonialService) List(ctx context.Context, includeUnapproved, viewerIsAdmin bool) ([]models.Testimonial, error) {
	return s.Repo.ListTestimonials(ctx, includeUnapproved && viewerIsAdmin)
}

func (s *TestimonialService) SetApproved(ctx context.Context, id uuid.UUID, approved bool) (*models.Testimonial, error) {
	t, err := s.Repo.SetTestimonialApproved(ctx, id, approved)
	if err != nil {
		return nil, notFound("testimonial", err)
	}
	return t, nil
}

func (s *TestimonialService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.Repo.DeleteTestimonial(ctx, id); err != nil {
		return notFound("testimonial", err)
	}
	return nil
}
