// Command sessions revokes login sessions from the shell.
//
//	sessions -expired          remove expired rows
//	sessions -user <uuid>      sign a user out of every device
//	sessions -all              sign everyone out
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/Skotchmaster/esscera_store/internal/config"
	"github.com/Skotchmaster/esscera_store/internal/db"
	"github.com/Skotchmaster/esscera_store/internal/logging"
	"github.com/Skotchmaster/esscera_store/internal/repo"
	"github.com/Skotchmaster/esscera_store/internal/service"
)

func main() {
	all := flag.Bool("all", false, "revoke every session")
	user := flag.String("user", "", "revoke every session of this user id")
	expired := flag.Bool("expired", false, "delete expired sessions")
	flag.Parse()

	if !*all && *user == "" && !*expired {
		flag.Usage()
		os.Exit(2)
	}

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}
	cfg := config.Load()
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName, "cmd", "sessions")
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	gdb, err := db.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	defer db.Close(gdb)

	auth := &service.AuthService{Repo: &repo.GormRepo{DB: gdb}}

	var n int64
	switch {
	case *all:
		n, err = auth.LogoutEveryone(ctx)
	case *user != "":
		id, perr := uuid.Parse(*user)
		if perr != nil {
			log.Fatalf("invalid user id %q: %v", *user, perr)
		}
		n, err = auth.LogoutAllDevices(ctx, id)
	default:
		n, err = auth.PurgeExpired(ctx)
	}
	if err != nil {
		log.Fatalf("revoke sessions: %v", err)
	}
	fmt.Printf("%d sessions removed\n", n)
}
