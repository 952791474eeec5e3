package audit

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-lamp-marketplace.git/internal/market"
)

// memTrail mimics the order_audit table: unique on event_id, duplicate
// inserts are swallowed, attempts are counted.
type memTrail struct {
	records  map[string]Record
	attempts int
}

func newMemTrail() *memTrail { return &memTrail{records: make(map[string]Record)} }

func (t *memTrail) Insert(_ context.Context, rec Record) error {
	t.attempts++
	if _, ok := t.records[rec.EventID]; ok {
		return nil
	}
	t.records[rec.EventID] = rec
	return nil
}

type memDedup struct{ seen map[string]bool }

func newMemDedup() *memDedup { return &memDedup{seen: make(map[string]bool)} }

func (d *memDedup) Seen(_ context.Context, eventID string) bool { return d.seen[eventID] }
func (d *memDedup) Mark(_ context.Context, eventID string)      { d.seen[eventID] = true }

func message(t *testing.T, eventID, eventType, orderID string) kafkago.Message {
	t.Helper()
	env := market.Envelope{
		EventID:       eventID,
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      "marketplace-api",
		CorrelationID: orderID,
		Payload:       json.RawMessage(`{"order_id":"` + orderID + `"}`),
	}
	b, err := json.Marshal(env)
	require.NoError(t, err)
	return kafkago.Message{Key: []byte(orderID), Value: b}
}

func TestHandleEvent_AppendsOrderEvents(t *testing.T) {
	trail, dedup := newMemTrail(), newMemDedup()
	svc := &Service{Trail: trail, Dedup: dedup}
	ctx := context.Background()

	require.NoError(t, svc.HandleEvent(ctx, message(t, "ev-1", market.EventOrderPlaced, "order-1")))
	require.NoError(t, svc.HandleEvent(ctx, message(t, "ev-2", market.EventOrderCancelled, "order-1")))

	assert.Len(t, trail.records, 2)
	assert.Equal(t, "order-1", trail.records["ev-1"].OrderID)
	assert.Equal(t, market.EventOrderCancelled, trail.records["ev-2"].EventType)
	assert.True(t, dedup.Seen(ctx, "ev-1"))
}

func TestHandleEvent_DuplicateAppliedOnce(t *testing.T) {
	trail, dedup := newMemTrail(), newMemDedup()
	svc := &Service{Trail: trail, Dedup: dedup}
	ctx := context.Background()

	m := message(t, "ev-1", market.EventOrderPlaced, "order-1")
	require.NoError(t, svc.HandleEvent(ctx, m))
	require.NoError(t, svc.HandleEvent(ctx, m))
	require.NoError(t, svc.HandleEvent(ctx, m))

	assert.Len(t, trail.records, 1)
	assert.Equal(t, 1, trail.attempts, "replays stop at the dedup check")
}

func TestHandleEvent_DuplicateWithColdDedup(t *testing.T) {
	// Dedup cache lost its state; the unique event_id sink still wins.
	trail := newMemTrail()
	svc := &Service{Trail: trail, Dedup: newMemDedup()}
	ctx := context.Background()

	m := message(t, "ev-1", market.EventOrderPlaced, "order-1")
	require.NoError(t, svc.HandleEvent(ctx, m))

	svc.Dedup = newMemDedup()
	require.NoError(t, svc.HandleEvent(ctx, m))

	assert.Len(t, trail.records, 1)
	assert.Equal(t, 2, trail.attempts)
}

func TestHandleEvent_MalformedDroppedAndCommitted(t *testing.T) {
	trail := newMemTrail()
	svc := &Service{Trail: trail, Dedup: newMemDedup()}

	err := svc.HandleEvent(context.Background(), kafkago.Message{Value: []byte("{not json")})

	assert.NoError(t, err, "nil return commits the offset")
	assert.Empty(t, trail.records)
	assert.Zero(t, trail.attempts)
}

func TestHandleEvent_FiltersNonOrderEvents(t *testing.T) {
	trail := newMemTrail()
	svc := &Service{Trail: trail, Dedup: newMemDedup()}
	ctx := context.Background()

	require.NoError(t, svc.HandleEvent(ctx, message(t, "ev-1", market.EventSellerReviewed, "seller-1")))
	require.NoError(t, svc.HandleEvent(ctx, message(t, "ev-2", "SomethingElse", "x")))

	assert.Empty(t, trail.records)
}

func TestHandleEvent_NilDedup(t *testing.T) {
	trail := newMemTrail()
	svc := &Service{Trail: trail}

	err := svc.HandleEvent(context.Background(), message(t, "ev-1", market.EventOrderPlaced, "order-1"))

	require.NoError(t, err)
	assert.Len(t, trail.records, 1)
}
