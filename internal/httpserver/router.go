package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/esscera_store/internal/db"
	authmw "github.com/Skotchmaster/esscera_store/internal/middleware/auth"
)

type Deps struct {
	DB   *gorm.DB
	Auth *authmw.Middleware

	AuthHandler        *AuthHTTP
	CartHandler        *CartHTTP
	OrderHandler       *OrderHTTP
	CatalogHandler     *CatalogHTTP
	CMSHandler         *CMSHTTP
	TestimonialHandler *TestimonialHTTP
	UserHandler        *UserHTTP
	StatsHandler       *StatsHTTP

	// UploadDir is served under /uploads when images are stored locally.
	UploadDir string
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if err := db.Ping(c.Request().Context(), d.DB); err != nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "database unavailable"})
		}
		return c.NoContent(http.StatusOK)
	})
	if d.UploadDir != "" {
		e.Static("/uploads", d.UploadDir)
	}

	api := e.Group("/api", d.Auth.Session)
	user := d.Auth.RequireUser
	admin := d.Auth.RequireAdmin

	auth := api.Group("/auth")
	auth.POST("/signup", d.AuthHandler.Signup)
	auth.POST("/login", d.AuthHandler.Login)
	auth.POST("/logout", d.AuthHandler.Logout)
	auth.GET("/me", d.AuthHandler.Me, user)
	auth.GET("/sessions", d.AuthHandler.Sessions, user)

	cart := api.Group("/cart")
	cart.GET("", d.CartHandler.GetCart)
	cart.POST("", d.CartHandler.AddToCart)
	cart.DELETE("", d.CartHandler.ClearCart, user)
	cart.PUT("/:id", d.CartHandler.UpdateItem, user)
	cart.DELETE("/:id", d.CartHandler.RemoveItem, user)

	orders := api.Group("/orders")
	orders.GET("", d.OrderHandler.ListOrders, user)
	orders.POST("", d.OrderHandler.PlaceOrder)
	orders.GET("/:id", d.OrderHandler.GetOrder, user)
	orders.PUT("/:id", d.OrderHandler.UpdateStatus, admin)

	products := api.Group("/products")
	products.GET("", d.CatalogHandler.ListProducts)
	products.GET("/search", d.CatalogHandler.SearchProducts)
	products.GET("/:id", d.CatalogHandler.GetProduct)
	products.POST("", d.CatalogHandler.CreateProduct, admin)
	products.PUT("/:id", d.CatalogHandler.UpdateProduct, admin)
	products.DELETE("/:id", d.CatalogHandler.DeleteProduct, admin)
	products.PATCH("/:id/availability", d.CatalogHandler.ToggleAvailability, admin)

	api.POST("/upload", d.CatalogHandler.UploadImage, admin)

	cms := api.Group("/cms")
	cms.GET("", d.CMSHandler.List)
	cms.POST("", d.CMSHandler.Upsert, admin)
	cms.PATCH("", d.CMSHandler.Update, admin)
	cms.DELETE("", d.CMSHandler.Delete, admin)

	for _, prefix := range []string{"/testimonials", "/admin/testimonials"} {
		t := api.Group(prefix)
		t.GET("", d.TestimonialHandler.List)
		t.POST("", d.TestimonialHandler.Submit)
		t.PATCH("", d.TestimonialHandler.Moderate, admin)
		t.DELETE("", d.TestimonialHandler.Delete, admin)
	}

	users := api.Group("/users", admin)
	users.GET("", d.UserHandler.List)
	users.POST("", d.UserHandler.Create)
	users.PUT("/:id", d.UserHandler.SetRole)
	users.DELETE("/:id", d.UserHandler.Delete)

	adm := api.Group("/admin", admin)
	adm.GET("/stats", d.StatsHandler.Dashboard)
	adm.DELETE("/sessions", d.AuthHandler.RevokeSessions)
}
