package httpserver

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/esscera_store/internal/logging"
	authmw "github.com/Skotchmaster/esscera_store/internal/middleware/auth"
	"github.com/Skotchmaster/esscera_store/internal/repo"
	"github.com/Skotchmaster/esscera_store/internal/service"
	"github.com/Skotchmaster/esscera_store/internal/util"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

// productJSON accepts the price as a JSON number or string.
type productJSON struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Category    *string          `json:"category"`
	Available   *bool            `json:"available"`
	SeoMeta     *string          `json:"seoMeta"`
	Image       *string          `json:"image"`
}

func (p productJSON) input() service.ProductInput {
	in := service.ProductInput{
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Available:   p.Available,
		SeoMeta:     p.SeoMeta,
		Image:       p.Image,
	}
	if p.Price != nil {
		s := p.Price.String()
		in.Price = &s
	}
	return in
}

func isMultipart(c echo.Context) bool {
	return strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm)
}

func formValue(form *multipart.Form, key string) *string {
	vals, ok := form.Value[key]
	if !ok || len(vals) == 0 {
		return nil
	}
	v := vals[0]
	return &v
}

func checkbox(form *multipart.Form) bool {
	v := formValue(form, "available")
	return v != nil && (*v == "true" || *v == "on")
}

// formImage opens the uploaded file under field, if any. The caller must
// run the returned closer.
func formImage(c echo.Context, field string) (*service.ImageFile, func(), error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, func() {}, err
	}
	f, err := fh.Open()
	if err != nil {
		return nil, func() {}, err
	}
	return &service.ImageFile{Reader: f, Filename: fh.Filename}, func() { _ = f.Close() }, nil
}

// readProduct binds either a multipart form or a JSON body. In forms an
// unchecked "available" box means false.
func readProduct(c echo.Context) (service.ProductInput, *service.ImageFile, func(), error) {
	noop := func() {}
	if !isMultipart(c) {
		var body productJSON
		if err := c.Bind(&body); err != nil {
			return service.ProductInput{}, nil, noop, err
		}
		return body.input(), nil, noop, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return service.ProductInput{}, nil, noop, err
	}
	available := checkbox(form)
	in := service.ProductInput{
		Name:        formValue(form, "name"),
		Description: formValue(form, "description"),
		Price:       formValue(form, "price"),
		Category:    formValue(form, "category"),
		Available:   &available,
		SeoMeta:     formValue(form, "seoMeta"),
		Image:       formValue(form, "imageUrl"),
	}
	img, closer, err := formImage(c, "image")
	if err != nil {
		return service.ProductInput{}, nil, noop, err
	}
	return in, img, closer, nil
}

func (h *CatalogHTTP) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.list")

	products, err := h.Svc.ListProducts(ctx, repo.ProductFilter{
		Category:      c.QueryParam("category"),
		AvailableOnly: c.QueryParam("available") == "true",
	})
	if err != nil {
		return fail(l, "list_products_error", err, "")
	}
	return c.JSON(http.StatusOK, echo.Map{"products": products})
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(l, "get_product_error", "id is not a uuid", err)
	}
	product, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		return fail(l, "get_product_error", err, "Product not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"product": product})
}

func (h *CatalogHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)

	res, err := h.Svc.Search(ctx, c.QueryParam("q"), page, size)
	if err != nil {
		return fail(l, "search_products_error", err, "")
	}
	return c.JSON(http.StatusOK, res)
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create")

	in, img, closer, err := readProduct(c)
	defer closer()
	if err != nil {
		return badRequest(l, "create_product_error", "invalid body", err)
	}

	var creator uuid.UUID
	if u := authmw.UserFrom(c); u != nil {
		creator = u.ID
	}
	product, err := h.Svc.CreateProduct(ctx, creator, in, img)
	if err != nil {
		return fail(l, "create_product_error", err, "")
	}

	l.Info("create_product_success", "product_id", product.ID)
	return c.JSON(http.StatusCreated, echo.Map{"product": product})
}

func (h *CatalogHTTP) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.update")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(l, "update_product_error", "id is not a uuid", err)
	}

	in, img, closer, err := readProduct(c)
	defer closer()
	if err != nil {
		return badRequest(l, "update_product_error", "invalid body", err)
	}

	product, err := h.Svc.UpdateProduct(ctx, id, in, img)
	if err != nil {
		return fail(l, "update_product_error", err, "Product not found")
	}

	l.Info("update_product_success", "product_id", product.ID)
	return c.JSON(http.StatusOK, echo.Map{"product": product})
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(l, "delete_product_error", "id is not a uuid", err)
	}
	if err := h.Svc.DeleteProduct(ctx, id); err != nil {
		return fail(l, "delete_product_error", err, "Product not found")
	}

	l.Info("delete_product_success", "product_id", id)
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

func (h *CatalogHTTP) ToggleAvailability(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.toggle_availability")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(l, "toggle_availability_error", "id is not a uuid", err)
	}
	product, err := h.Svc.ToggleAvailability(ctx, id)
	if err != nil {
		return fail(l, "toggle_availability_error", err, "Product not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"product": product})
}

// UploadImage stores a standalone image sent as "file" (or "image").
func (h *CatalogHTTP) UploadImage(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "upload.image")

	img, closer, err := formImage(c, "file")
	if err == nil && img == nil {
		img, closer, err = formImage(c, "image")
	}
	defer closer()
	if err != nil {
		return badRequest(l, "upload_image_error", "invalid form", err)
	}

	up, err := h.Svc.UploadImage(ctx, img)
	if err != nil {
		return fail(l, "upload_image_error", err, "")
	}

	l.Info("upload_image_success", "public_id", up.PublicID)
	return c.JSON(http.StatusOK, up)
}
