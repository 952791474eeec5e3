package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ariefcatur/go-lamp-marketplace.git/internal/audit"
	"github.com/ariefcatur/go-lamp-marketplace.git/internal/config"
	"github.com/ariefcatur/go-lamp-marketplace.git/internal/httpx"
	"github.com/ariefcatur/go-lamp-marketplace.git/internal/identity"
	kafkax "github.com/ariefcatur/go-lamp-marketplace.git/internal/kafka"
	"github.com/ariefcatur/go-lamp-marketplace.git/internal/market"
	"github.com/ariefcatur/go-lamp-marketplace.git/internal/postgres"
	"github.com/ariefcatur/go-lamp-marketplace.git/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		slog.Error("db connect", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		slog.Error("migrate", "err", err)
		os.Exit(1)
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Identity collaborators
	users := identity.NewUsers(db)
	if err := users.EnsureAuthorizer(ctx, cfg.AuthorizerEmail, cfg.AuthorizerPassword); err != nil {
		slog.Error("seed authorizer", "err", err)
		os.Exit(1)
	}
	sessions := identity.NewSessions(rdb, time.Duration(cfg.SessionTTLHours)*time.Hour)

	// Kafka producers, one per lifecycle topic
	producers := &httpx.Producers{
		Placed:         kafkax.NewProducer(cfg.KafkaBrokers, market.TopicOrderPlaced, 1024),
		Cancelled:      kafkax.NewProducer(cfg.KafkaBrokers, market.TopicOrderCancelled, 1024),
		Status:         kafkax.NewProducer(cfg.KafkaBrokers, market.TopicOrderStatus, 1024),
		SellerReviewed: kafkax.NewProducer(cfg.KafkaBrokers, market.TopicSellerReviewed, 256),
	}
	for _, p := range producers.All() {
		p.Start(ctx)
	}

	// Router & API
	router := httpx.NewRouter()
	api := &httpx.API{
		Store:     market.NewPGStore(db),
		Identity:  users,
		Sessions:  sessions,
		Audit:     audit.NewRepo(db),
		Producers: producers,
		Redis:     rdb,
		Service:   cfg.ServiceName,
	}
	api.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		slog.Info("HTTP listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("listen", "err", err)
			os.Exit(1)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	slog.Info("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)

	for _, p := range producers.All() {
		p.Close()
	}
	cancel()
	for _, p := range producers.All() {
		p.WaitClosed()
	}
}
