// Command reindex rebuilds the product search index from the database.
package main

import (
	"context"
	"log"
	"log/slog"
	"time"

	"github.com/joho/godotenv"

	"github.com/Skotchmaster/esscera_store/internal/config"
	"github.com/Skotchmaster/esscera_store/internal/db"
	"github.com/Skotchmaster/esscera_store/internal/logging"
	"github.com/Skotchmaster/esscera_store/internal/repo"
	"github.com/Skotchmaster/esscera_store/internal/search"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}

	cfg := config.Load()
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmpty(cfg.ESURL, "ES_URL")

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName, "cmd", "reindex")
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	gdb, err := db.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	defer db.Close(gdb)

	client, err := search.NewClient(search.Config{
		URL:      cfg.ESURL,
		User:     cfg.ESUser,
		Password: cfg.ESPassword,
		Index:    cfg.ESIndex,
	}, logger)
	if err != nil {
		log.Fatalf("elasticsearch: %v", err)
	}
	idx := &search.ES{Client: client, Index: cfg.ESIndex}
	if err := idx.EnsureIndex(ctx); err != nil {
		log.Fatalf("ensure index: %v", err)
	}

	products, err := (&repo.GormRepo{DB: gdb}).ListProducts(ctx, repo.ProductFilter{})
	if err != nil {
		log.Fatalf("list products: %v", err)
	}

	failed := 0
	for _, p := range products {
		if err := idx.IndexProduct(ctx, p); err != nil {
			failed++
			logger.Error("index_product_error", "product_id", p.ID, "error", err)
		}
	}
	logger.Info("reindex complete", "indexed", len(products)-failed, "failed", failed)
}
