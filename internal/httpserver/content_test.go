package httpserver

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/esscera_store/internal/models"
	"github.com/Skotchmaster/esscera_store/internal/testutil"
)

func TestCMS(t *testing.T) {
	s := newServer(t)
	_, admin := s.login(t, "root", models.RoleAdmin)

	banner := map[string]any{"page": "shop", "section": "banner", "content": map[string]any{"title": "Sale"}}

	rec := s.do(t, call{method: http.MethodPost, path: "/api/cms", body: banner})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, call{method: http.MethodPost, path: "/api/cms", token: admin, body: map[string]any{"page": "shop", "content": map[string]any{}}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Page and section are required", errorOf(t, rec))

	rec = s.do(t, call{method: http.MethodPost, path: "/api/cms", token: admin, body: banner})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, decode(t, rec)["success"])

	rec = s.do(t, call{method: http.MethodGet, path: "/api/cms?page=shop"})
	require.Equal(t, http.StatusOK, rec.Code)
	content := decode(t, rec)["content"].([]any)
	require.Len(t, content, 1)
	assert.Equal(t, map[string]any{"title": "Sale"}, content[0].(map[string]any)["content"])

	rec = s.do(t, call{method: http.MethodPatch, path: "/api/cms", token: admin, body: map[string]any{"page": "shop", "section": "missing", "content": map[string]any{}}})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, call{method: http.MethodDelete, path: "/api/cms?page=shop&section=banner", token: admin})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "CMS content deleted", decode(t, rec)["message"])

	rec = s.do(t, call{method: http.MethodDelete, path: "/api/cms?page=shop", token: admin})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCMS_DeleteDropsHostedImages(t *testing.T) {
	s := newServer(t)
	_, admin := s.login(t, "root", models.RoleAdmin)

	img := testutil.FakeImageBase + "products/slide1.jpg"
	rec := s.do(t, call{method: http.MethodPost, path: "/api/cms", token: admin, body: map[string]any{
		"page": "promo", "section": "slides",
		"content": map[string]any{"slides": []any{map[string]any{"image": img}}},
	}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, call{method: http.MethodDelete, path: "/api/cms?page=promo&section=slides", token: admin})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"products/slide1"}, s.images.DeleteCalls())
}

func TestTestimonials(t *testing.T) {
	s := newServer(t)
	_, admin := s.login(t, "root", models.RoleAdmin)

	rec := s.do(t, call{method: http.MethodPost, path: "/api/testimonials", body: map[string]any{
		"quote": "Lovely scents here", "author": "Ann", "title": "Buyer", "rating": 5,
	}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, "Thank you! Your testimonial has been submitted for review.", body["message"])
	id := body["testimonial"].(map[string]any)["id"].(string)

	rec = s.do(t, call{method: http.MethodPost, path: "/api/testimonials", body: map[string]any{
		"quote": "short", "author": "Ann", "title": "Buyer", "rating": 5,
	}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Quote must be between 10 and 500 characters", errorOf(t, rec))

	rec = s.do(t, call{method: http.MethodGet, path: "/api/testimonials?includeUnapproved=true"})
	assert.Equal(t, []any{}, decode(t, rec)["testimonials"])
	rec = s.do(t, call{method: http.MethodGet, path: "/api/admin/testimonials?includeUnapproved=true", token: admin})
	assert.Len(t, decode(t, rec)["testimonials"], 1)

	rec = s.do(t, call{method: http.MethodPatch, path: "/api/testimonials", token: admin, raw: strings.NewReader(`{"id":"` + id + `","approved":"yes"}`)})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request data", errorOf(t, rec))

	rec = s.do(t, call{method: http.MethodPatch, path: "/api/testimonials", token: admin, body: map[string]any{"id": id, "approved": true}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["testimonial"].(map[string]any)["approved"])

	rec = s.do(t, call{method: http.MethodGet, path: "/api/testimonials"})
	assert.Len(t, decode(t, rec)["testimonials"], 1)

	rec = s.do(t, call{method: http.MethodDelete, path: "/api/testimonials", token: admin})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Testimonial ID is required", errorOf(t, rec))

	rec = s.do(t, call{method: http.MethodDelete, path: "/api/testimonials?id=" + id, token: admin})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Testimonial deleted successfully", decode(t, rec)["message"])
}
