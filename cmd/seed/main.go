// Command seed creates the initial admin account from SEED_ADMIN_*.
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"time"

	"github.com/joho/godotenv"

	"github.com/Skotchmaster/esscera_store/internal/config"
	"github.com/Skotchmaster/esscera_store/internal/db"
	"github.com/Skotchmaster/esscera_store/internal/logging"
	"github.com/Skotchmaster/esscera_store/internal/models"
	"github.com/Skotchmaster/esscera_store/internal/repo"
	"github.com/Skotchmaster/esscera_store/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}

	cfg := config.Load()
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName, "cmd", "seed")
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	gdb, err := db.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	defer db.Close(gdb)

	if err := db.Migrate(cfg.DBDriver, cfg.DatabaseURL, gdb, logger); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	users := &service.UserService{Repo: &repo.GormRepo{DB: gdb}}
	u, err := users.Create(ctx, service.CreateUserInput{
		Email:    cfg.SeedAdminEmail,
		Username: cfg.SeedAdminUsername,
		Password: cfg.SeedAdminPassword,
		Role:     models.RoleAdmin,
	})
	switch {
	case errors.Is(err, service.ErrConflict):
		logger.Info("admin already exists", "username", cfg.SeedAdminUsername)
	case err != nil:
		log.Fatalf("create admin: %v", err)
	default:
		logger.Info("admin created", "user_id", u.ID, "username", u.Username)
	}
}
