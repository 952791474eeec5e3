package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ariefcatur/go-lamp-marketplace.git/internal/audit"
	"github.com/ariefcatur/go-lamp-marketplace.git/internal/config"
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

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &audit.Service{
		Trail: audit.NewRepo(db),
		Dedup: &audit.RedisDedup{Client: rdb, ServiceName: cfg.ServiceName + "-audit"},
	}

	group := getenv("AUDIT_GROUP", "order-audit")
	workers := mustAtoi(os.Getenv("AUDIT_WORKERS"), "4")

	// One consumer per lifecycle topic, all feeding the same handler.
	topics := []string{market.TopicOrderPlaced, market.TopicOrderCancelled, market.TopicOrderStatus}
	for _, topic := range topics {
		cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, topic, workers)
		go func(topic string) {
			slog.Info("audit consumer started", "group", group, "topic", topic, "workers", workers)
			if err := cons.Start(ctx, svc.HandleEvent); err != nil {
				slog.Error("consumer exit", "topic", topic, "err", err)
				cancel()
			}
		}(topic)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	slog.Info("shutting down audit consumers")
	cancel()
	time.Sleep(500 * time.Millisecond)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func mustAtoi(s, def string) int {
	if s == "" {
		s = def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 1
	}
	return i
}
