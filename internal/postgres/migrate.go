package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema is applied at startup. Statements are idempotent so every binary
// (api, audit) can run them on boot.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            UUID PRIMARY KEY,
		username      TEXT NOT NULL,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		phone         TEXT,
		role          TEXT NOT NULL CHECK (role IN ('buyer','seller','authorizer')),
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id         UUID PRIMARY KEY,
		seller_id  UUID NOT NULL REFERENCES users(id),
		category   TEXT NOT NULL,
		name       TEXT NOT NULL,
		price_cents BIGINT NOT NULL CHECK (price_cents >= 0),
		stock      INT NOT NULL CHECK (stock >= 0),
		image_urls TEXT[] NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS cart_items (
		id         UUID PRIMARY KEY,
		buyer_id   UUID NOT NULL REFERENCES users(id),
		product_id UUID NOT NULL REFERENCES products(id),
		quantity   INT NOT NULL CHECK (quantity > 0),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id             UUID PRIMARY KEY,
		buyer_id       UUID NOT NULL REFERENCES users(id),
		product_id     UUID NOT NULL REFERENCES products(id),
		quantity       INT NOT NULL CHECK (quantity > 0),
		total_cents    BIGINT NOT NULL CHECK (total_cents >= 0),
		address        TEXT NOT NULL,
		payment_method TEXT NOT NULL,
		status         TEXT NOT NULL,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS seller_registrations (
		user_id     UUID PRIMARY KEY REFERENCES users(id),
		status      TEXT NOT NULL CHECK (status IN ('pending','approved','rejected')),
		reviewed_by UUID REFERENCES users(id),
		reviewed_at TIMESTAMPTZ,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS order_audit (
		id          BIGSERIAL PRIMARY KEY,
		event_id    TEXT NOT NULL UNIQUE,
		event_type  TEXT NOT NULL,
		order_id    UUID NOT NULL,
		detail      JSONB NOT NULL,
		occurred_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_buyer ON orders(buyer_id)`,
	`CREATE INDEX IF NOT EXISTS idx_products_seller ON products(seller_id)`,
	`CREATE INDEX IF NOT EXISTS idx_order_audit_order ON order_audit(order_id)`,
}

func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
