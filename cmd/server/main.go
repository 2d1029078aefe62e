package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	"github.com/Skotchmaster/esscera_store/internal/config"
	"github.com/Skotchmaster/esscera_store/internal/db"
	"github.com/Skotchmaster/esscera_store/internal/events"
	"github.com/Skotchmaster/esscera_store/internal/httpserver"
	"github.com/Skotchmaster/esscera_store/internal/imagehost"
	"github.com/Skotchmaster/esscera_store/internal/logging"
	authmw "github.com/Skotchmaster/esscera_store/internal/middleware/auth"
	"github.com/Skotchmaster/esscera_store/internal/middleware/csrf"
	loggingmw "github.com/Skotchmaster/esscera_store/internal/middleware/logging"
	"github.com/Skotchmaster/esscera_store/internal/mykafka"
	"github.com/Skotchmaster/esscera_store/internal/payment"
	"github.com/Skotchmaster/esscera_store/internal/repo"
	"github.com/Skotchmaster/esscera_store/internal/search"
	"github.com/Skotchmaster/esscera_store/internal/service"
	"github.com/Skotchmaster/esscera_store/internal/tokens"
)

const sessionPurgeInterval = time.Hour

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}

	cfg := config.Load()
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustMinBytes(cfg.JWTSecret, 32, "JWT_SECRET")

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gdb, err := db.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	if err := db.Migrate(cfg.DBDriver, cfg.DatabaseURL, gdb, logger); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	publisher, closePublisher := newPublisher(cfg, logger)
	index := newIndex(cfg, logger)
	images := newImageHost(cfg, logger)
	payments := newGateway(cfg, logger)

	r := &repo.GormRepo{DB: gdb}
	authSvc := &service.AuthService{Repo: r, Tokens: tokens.NewIssuer(cfg.JWTSecret)}
	catalogSvc := &service.CatalogService{Repo: r, Images: images, Index: index, Events: publisher}

	secure := cfg.Production()
	deps := &httpserver.Deps{
		DB:                 gdb,
		Auth:               authmw.New(authSvc, secure),
		AuthHandler:        &httpserver.AuthHTTP{Svc: authSvc, SecureCookies: secure},
		CartHandler:        &httpserver.CartHTTP{Svc: &service.CartService{Repo: r}},
		OrderHandler:       &httpserver.OrderHTTP{Svc: &service.OrderService{Repo: r, Payments: payments, Events: publisher, WhatsAppNumber: cfg.WhatsAppNumber}},
		CatalogHandler:     &httpserver.CatalogHTTP{Svc: catalogSvc},
		CMSHandler:         &httpserver.CMSHTTP{Svc: &service.CMSService{Repo: r, Images: images}},
		TestimonialHandler: &httpserver.TestimonialHTTP{Svc: &service.TestimonialService{Repo: r}},
		UserHandler:        &httpserver.UserHTTP{Svc: &service.UserService{Repo: r}},
		StatsHandler:       &httpserver.StatsHTTP{Svc: &service.StatsService{Repo: r}},
	}
	if _, ok := images.(*imagehost.Local); ok {
		deps.UploadDir = cfg.UploadDir
	}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = httpserver.ErrorHandler
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.BodyLimit(cfg.BodyLimit))
	e.Use(cors(cfg))
	if cfg.CSRFEnabled {
		e.Use(csrf.Middleware(csrf.Config{
			Secure:         secure,
			TrustedOrigins: cfg.CORSOrigins,
			SkipPrefixes:   []string{"/health", "/uploads"},
		}))
	}

	httpserver.Register(e, deps)

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	purgeCtx, stopPurge := context.WithCancel(context.Background())
	go purgeSessions(purgeCtx, authSvc, logger)

	go func() {
		logger.Info("listening", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	stopPurge()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	closePublisher()
	closeDB(gdb, logger)

	logger.Info("shutdown complete")
}

func cors(cfg config.Config) echo.MiddlewareFunc {
	if len(cfg.CORSOrigins) == 0 {
		return echomw.CORS()
	}
	return echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowCredentials: true,
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization, "X-CSRF-Token"},
		ExposeHeaders:    []string{"X-CSRF-Token", echo.HeaderXRequestID},
	})
}

// newPublisher falls back to a no-op publisher when Kafka is not
// configured or unreachable at startup.
func newPublisher(cfg config.Config, l *slog.Logger) (events.Publisher, func()) {
	if len(cfg.KafkaBrokers) == 0 {
		l.Warn("kafka disabled", "reason", "KAFKA_BROKERS is empty")
		return events.Noop{}, func() {}
	}
	if err := mykafka.EnsureTopics(cfg.KafkaBrokers[0], events.TopicProducts, events.TopicOrders); err != nil {
		l.Warn("kafka topics not ensured", "error", err)
	}
	prod, err := mykafka.NewProducer(cfg.KafkaBrokers)
	if err != nil {
		l.Error("kafka disabled", "reason", "producer init failed", "error", err)
		return events.Noop{}, func() {}
	}
	return prod, func() {
		if err := prod.Close(); err != nil {
			l.Error("kafka close error", "error", err)
		}
	}
}

func newIndex(cfg config.Config, l *slog.Logger) search.Index {
	if cfg.ESURL == "" {
		l.Warn("search disabled", "reason", "ES_URL is empty")
		return search.Noop{}
	}
	client, err := search.NewClient(search.Config{
		URL:      cfg.ESURL,
		User:     cfg.ESUser,
		Password: cfg.ESPassword,
		Index:    cfg.ESIndex,
	}, l)
	if err != nil {
		l.Error("search disabled", "reason", "elasticsearch unavailable", "error", err)
		return search.Noop{}
	}

	es := &search.ES{Client: client, Index: cfg.ESIndex}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := es.EnsureIndex(ctx); err != nil {
		l.Error("ensure index failed", "index", cfg.ESIndex, "error", err)
	}
	return es
}

func newImageHost(cfg config.Config, l *slog.Logger) imagehost.Host {
	if cfg.CloudinaryURL != "" {
		c, err := imagehost.NewCloudinary(cfg.CloudinaryURL)
		if err == nil {
			return c
		}
		l.Error("cloudinary disabled", "error", err)
	}
	local, err := imagehost.NewLocal(cfg.UploadDir, cfg.PublicBaseURL)
	if err != nil {
		log.Fatalf("upload dir: %v", err)
	}
	l.Info("storing images locally", "dir", cfg.UploadDir)
	return local
}

func newGateway(cfg config.Config, l *slog.Logger) payment.Gateway {
	if cfg.StripeSecretKey == "" {
		l.Warn("stripe disabled", "reason", "STRIPE_SECRET_KEY is empty")
		return nil
	}
	return payment.NewStripe(cfg.StripeSecretKey, cfg.StripeCurrency)
}

func purgeSessions(ctx context.Context, auth *service.AuthService, l *slog.Logger) {
	t := time.NewTicker(sessionPurgeInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := auth.PurgeExpired(ctx)
			if err != nil {
				l.Error("purge_sessions_error", "error", err)
				continue
			}
			if n > 0 {
				l.Info("purged expired sessions", "count", n)
			}
		}
	}
}

func closeDB(gdb *gorm.DB, l *slog.Logger) {
	if err := db.Close(gdb); err != nil {
		l.Error("db close error", "error", err)
	}
}
