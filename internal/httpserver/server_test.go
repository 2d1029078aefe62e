package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/esscera_store/internal/events"
	authmw "github.com/Skotchmaster/esscera_store/internal/middleware/auth"
	"github.com/Skotchmaster/esscera_store/internal/models"
	"github.com/Skotchmaster/esscera_store/internal/repo"
	"github.com/Skotchmaster/esscera_store/internal/service"
	"github.com/Skotchmaster/esscera_store/internal/testutil"
	"github.com/Skotchmaster/esscera_store/internal/tokens"
)

type server struct {
	e      *echo.Echo
	db     *gorm.DB
	auth   *service.AuthService
	images *testutil.ImageHost
	events *events.Recorder
}

func newServer(t *testing.T) *server {
	t.Helper()

	db := testutil.NewDB(t)
	r := &repo.GormRepo{DB: db}
	s := &server{
		e:      echo.New(),
		db:     db,
		auth:   &service.AuthService{Repo: r, Tokens: tokens.NewIssuer([]byte("handler-test-secret-0123456789abc"))},
		images: &testutil.ImageHost{},
		events: &events.Recorder{},
	}
	s.e.HTTPErrorHandler = ErrorHandler

	Register(s.e, &Deps{
		DB:                 db,
		Auth:               authmw.New(s.auth, false),
		AuthHandler:        &AuthHTTP{Svc: s.auth},
		CartHandler:        &CartHTTP{Svc: &service.CartService{Repo: r}},
		OrderHandler:       &OrderHTTP{Svc: &service.OrderService{Repo: r, Payments: &testutil.Gateway{}, Events: s.events, WhatsAppNumber: "21698000000"}},
		CatalogHandler:     &CatalogHTTP{Svc: &service.CatalogService{Repo: r, Images: s.images, Index: &testutil.Index{}, Events: s.events}},
		CMSHandler:         &CMSHTTP{Svc: &service.CMSService{Repo: r, Images: s.images}},
		TestimonialHandler: &TestimonialHTTP{Svc: &service.TestimonialService{Repo: r}},
		UserHandler:        &UserHTTP{Svc: &service.UserService{Repo: r}},
		StatsHandler:       &StatsHTTP{Svc: &service.StatsService{Repo: r}},
	})
	return s
}

// login creates a user with the given role and returns a session token.
func (s *server) login(t *testing.T, username string, role models.Role) (*models.User, string) {
	t.Helper()
	u := testutil.CreateUser(t, s.db, username, role)
	res, err := s.auth.Login(context.Background(), username, "password", service.Client{})
	require.NoError(t, err)
	return u, res.Token
}

type call struct {
	method string
	path   string
	body   any
	token  string
	ctype  string
	raw    io.Reader
}

func (s *server) do(t *testing.T, c call) *httptest.ResponseRecorder {
	t.Helper()

	body := c.raw
	if body == nil && c.body != nil {
		b, err := json.Marshal(c.body)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	}
	req := httptest.NewRequest(c.method, c.path, body)
	switch {
	case c.ctype != "":
		req.Header.Set(echo.HeaderContentType, c.ctype)
	case body != nil:
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if c.token != "" {
		req.AddCookie(&http.Cookie{Name: tokens.CookieName, Value: c.token})
	}

	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	msg, _ := decode(t, rec)["error"].(string)
	return msg
}

func multipartBody(t *testing.T, fields map[string]string, fileField, filename string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if fileField != "" {
		fw, err := w.CreateFormFile(fileField, filename)
		require.NoError(t, err)
		_, err = io.Copy(fw, strings.NewReader("fake image bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}
