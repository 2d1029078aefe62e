package httpserver

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/esscera_store/internal/cms"
	"github.com/Skotchmaster/esscera_store/internal/logging"
	authmw "github.com/Skotchmaster/esscera_store/internal/middleware/auth"
	"github.com/Skotchmaster/esscera_store/internal/models"
	"github.com/Skotchmaster/esscera_store/internal/service"
)

type CMSHTTP struct {
	Svc *service.CMSService
}

type cmsRequest struct {
	Page    string      `json:"page"`
	Section string      `json:"section"`
	Content cms.Payload `json:"content"`
}

type cmsSaveFunc func(ctx context.Context, page, section string, content cms.Payload) (*models.CMSContent, error)

func (h *CMSHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cms.list")

	content, err := h.Svc.List(ctx, c.QueryParam("page"), c.QueryParam("section"))
	if err != nil {
		return fail(l, "list_cms_error", err, "")
	}
	return c.JSON(http.StatusOK, echo.Map{"content": content})
}

func (h *CMSHTTP) Upsert(c echo.Context) error {
	return h.save(c, "cms.upsert", h.Svc.Upsert)
}

// Update only replaces an existing entry.
func (h *CMSHTTP) Update(c echo.Context) error {
	return h.save(c, "cms.update", h.Svc.Update)
}

func (h *CMSHTTP) save(c echo.Context, name string, save cmsSaveFunc) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", name)

	var req cmsRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "save_cms_error", "invalid body", err)
	}

	content, err := save(ctx, req.Page, req.Section, req.Content)
	if err != nil {
		return fail(l, "save_cms_error", err, "CMS content not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "content": content})
}

func (h *CMSHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cms.delete")

	if err := h.Svc.Delete(ctx, c.QueryParam("page"), c.QueryParam("section")); err != nil {
		return fail(l, "delete_cms_error", err, "")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "CMS content deleted"})
}

type TestimonialHTTP struct {
	Svc *service.TestimonialService
}

// List shows approved testimonials; admins may add ?includeUnapproved=true.
func (h *TestimonialHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "testimonial.list")

	include := c.QueryParam("includeUnapproved") == "true"
	items, err := h.Svc.List(ctx, include, authmw.UserFrom(c).IsAdmin())
	if err != nil {
		return fail(l, "list_testimonials_error", err, "")
	}
	return c.JSON(http.StatusOK, echo.Map{"testimonials": items})
}

func (h *TestimonialHTTP) Submit(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "testimonial.submit")

	var req service.TestimonialInput
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "submit_testimonial_error", "Invalid request data", err)
	}

	t, err := h.Svc.Submit(ctx, req)
	if err != nil {
		return fail(l, "submit_testimonial_error", err, "")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":     true,
		"testimonial": t,
		"message":     "Thank you! Your testimonial has been submitted for review.",
	})
}

func (h *TestimonialHTTP) Moderate(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "testimonial.moderate")

	var req struct {
		ID       string `json:"id"`
		Approved *bool  `json:"approved"`
	}
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "moderate_testimonial_error", "Invalid request data", err)
	}
	id, err := uuid.Parse(req.ID)
	if err != nil || req.Approved == nil {
		return badRequest(l, "moderate_testimonial_error", "Invalid request data", err)
	}

	t, err := h.Svc.SetApproved(ctx, id, *req.Approved)
	if err != nil {
		return fail(l, "moderate_testimonial_error", err, "Testimonial not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "testimonial": t})
}

func (h *TestimonialHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "testimonial.delete")

	raw := c.QueryParam("id")
	if raw == "" {
		return badRequest(l, "delete_testimonial_error", "Testimonial ID is required", nil)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return badRequest(l, "delete_testimonial_error", "Testimonial ID is not a uuid", err)
	}
	if err := h.Svc.Delete(ctx, id); err != nil {
		return fail(l, "delete_testimonial_error", err, "Testimonial not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Testimonial deleted successfully"})
}
