// Package audit maintains the append-only order event trail the authorizer
// reads. It is fed by the Kafka lifecycle topics, not by the workflows
// directly: the orders table stays the source of truth.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Record struct {
	ID         int64           `json:"id"`
	EventID    string          `json:"event_id"`
	EventType  string          `json:"event_type"`
	OrderID    string          `json:"order_id"`
	Detail     json.RawMessage `json:"detail"`
	OccurredAt time.Time       `json:"occurred_at"`
}

type Repo struct{ DB *pgxpool.Pool }

func NewRepo(db *pgxpool.Pool) *Repo { return &Repo{DB: db} }

// Insert is idempotent on event_id; replays are swallowed.
func (r *Repo) Insert(ctx context.Context, rec Record) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO order_audit(event_id, event_type, order_id, detail, occurred_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (event_id) DO NOTHING`,
		rec.EventID, rec.EventType, rec.OrderID, rec.Detail, rec.OccurredAt)
	return err
}

func (r *Repo) ListByOrder(ctx context.Context, orderID string) ([]Record, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, event_id, event_type, order_id, detail, occurred_at
		FROM order_audit WHERE order_id=$1 ORDER BY occurred_at, id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.EventID, &rec.EventType, &rec.OrderID, &rec.Detail, &rec.OccurredAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
