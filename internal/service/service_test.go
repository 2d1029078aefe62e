package service

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/esscera_store/internal/events"
	"github.com/Skotchmaster/esscera_store/internal/models"
	"github.com/Skotchmaster/esscera_store/internal/repo"
	"github.com/Skotchmaster/esscera_store/internal/testutil"
	"github.com/Skotchmaster/esscera_store/internal/tokens"
)

var testSecret = []byte("test-jwt-secret-with-enough-bytes!")

type env struct {
	DB      *gorm.DB
	Repo    *repo.GormRepo
	Auth    *AuthService
	Cart    *CartService
	Orders  *OrderService
	Catalog *CatalogService
	CMS     *CMSService
	Reviews *TestimonialService
	Users   *UserService
	Stats   *StatsService

	Images  *testutil.ImageHost
	Gateway *testutil.Gateway
	Index   *testutil.Index
	Events  *events.Recorder
}

func newEnv(t *testing.T) *env {
	t.Helper()

	db := testutil.NewDB(t)
	r := &repo.GormRepo{DB: db}
	e := &env{
		DB:      db,
		Repo:    r,
		Images:  &testutil.ImageHost{},
		Gateway: &testutil.Gateway{},
		Index:   &testutil.Index{},
		Events:  &events.Recorder{},
	}

	e.Auth = &AuthService{Repo: r, Tokens: tokens.NewIssuer(testSecret)}
	e.Cart = &CartService{Repo: r}
	e.Orders = &OrderService{Repo: r, Payments: e.Gateway, Events: e.Events, WhatsAppNumber: "21698000000"}
	e.Catalog = &CatalogService{Repo: r, Images: e.Images, Index: e.Index, Events: e.Events}
	e.CMS = &CMSService{Repo: r, Images: e.Images}
	e.Reviews = &TestimonialService{Repo: r}
	e.Users = &UserService{Repo: r}
	e.Stats = &StatsService{Repo: r}
	return e
}

func shipping() PlaceOrderInput {
	return PlaceOrderInput{
		PaymentMethod: models.PaymentWhatsApp,
		FirstName:     "Ann",
		LastName:      "Lee",
		Email:         "ann@example.com",
		Phone:         "+21655000000",
		Address:       "1 Main St",
		City:          "Tunis",
		PostalCode:    "1000",
		Country:       "TN",
	}
}

func ptr[T any](v T) *T { return &v }

func countRows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func createUser(t *testing.T, e *env, username string, role models.Role) *models.User {
	t.Helper()
	return testutil.CreateUser(t, e.DB, username, role)
}
