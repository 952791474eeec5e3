package market

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// reserve is the inventory ledger's debit half. It locks the product row,
// verifies stock and decrements it, returning the unit price and owning
// seller read under the lock. It runs inside the caller's transaction so the
// decrement commits or rolls back together with the order insert.
func reserve(ctx context.Context, tx pgx.Tx, productID string, quantity int) (priceCents int64, sellerID string, err error) {
	var stock int
	err = tx.QueryRow(ctx, `
		SELECT seller_id, price_cents, stock FROM products WHERE id=$1 FOR UPDATE`,
		productID,
	).Scan(&sellerID, &priceCents, &stock)
	if err != nil {
		return 0, "", storeErr(err)
	}
	if stock < quantity {
		return 0, "", fmt.Errorf("%w: %d requested, %d available", ErrInsufficientStock, quantity, stock)
	}
	ct, err := tx.Exec(ctx, `UPDATE products SET stock = stock - $2, updated_at = now() WHERE id=$1`,
		productID, quantity)
	if err != nil {
		return 0, "", storeErr(err)
	}
	if ct.RowsAffected() != 1 {
		return 0, "", ErrNotFound
	}
	return priceCents, sellerID, nil
}

// release is the credit half: lock the row, add the quantity back. Runs in
// the caller's transaction alongside the status flip.
func release(ctx context.Context, tx pgx.Tx, productID string, quantity int) error {
	var id string
	if err := tx.QueryRow(ctx, `SELECT id FROM products WHERE id=$1 FOR UPDATE`, productID).Scan(&id); err != nil {
		return storeErr(err)
	}
	_, err := tx.Exec(ctx, `UPDATE products SET stock = stock + $2, updated_at = now() WHERE id=$1`,
		productID, quantity)
	return storeErr(err)
}

func (s *PGStore) PlaceOrder(ctx context.Context, in PlacementInput) (Order, error) {
	if err := in.Validate(); err != nil {
		return Order{}, err
	}

	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Order{}, storeErr(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	priceCents, _, err := reserve(ctx, tx, in.ProductID, in.Quantity)
	if err != nil {
		return Order{}, err
	}

	o := Order{
		ID:            uuid.NewString(),
		BuyerID:       in.BuyerID,
		ProductID:     in.ProductID,
		Quantity:      in.Quantity,
		TotalCents:    priceCents * int64(in.Quantity),
		Address:       in.Address,
		PaymentMethod: in.PaymentMethod,
		Status:        StatusProcessing,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO orders(id, buyer_id, product_id, quantity, total_cents, address, payment_method, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`,
		o.ID, o.BuyerID, o.ProductID, o.Quantity, o.TotalCents, o.Address, o.PaymentMethod, o.Status,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return Order{}, storeErr(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Order{}, storeErr(err)
	}
	return o, nil
}

func (s *PGStore) TransitionOrder(ctx context.Context, orderID string, to Status, actor Actor) (Order, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Order{}, storeErr(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Lock the order row for the whole read-check-write sequence so a
	// concurrent cancel and advance cannot both pass the edge check.
	var o Order
	var sellerID string
	err = tx.QueryRow(ctx, `
		SELECT o.id, o.buyer_id, o.product_id, o.quantity, o.total_cents, o.address,
		       o.payment_method, o.status, o.created_at, o.updated_at, p.seller_id
		FROM orders o
		JOIN products p ON p.id = o.product_id
		WHERE o.id = $1
		FOR UPDATE OF o`, orderID,
	).Scan(&o.ID, &o.BuyerID, &o.ProductID, &o.Quantity, &o.TotalCents, &o.Address,
		&o.PaymentMethod, &o.Status, &o.CreatedAt, &o.UpdatedAt, &sellerID)
	if err != nil {
		return Order{}, storeErr(err)
	}

	if err := ValidateTransition(o, sellerID, to, actor); err != nil {
		return Order{}, err
	}

	if to == StatusCancelled {
		if err := release(ctx, tx, o.ProductID, o.Quantity); err != nil {
			return Order{}, err
		}
	}

	err = tx.QueryRow(ctx, `UPDATE orders SET status=$2, updated_at=now() WHERE id=$1 RETURNING updated_at`,
		o.ID, to,
	).Scan(&o.UpdatedAt)
	if err != nil {
		return Order{}, storeErr(err)
	}
	o.Status = to

	if err := tx.Commit(ctx); err != nil {
		return Order{}, storeErr(err)
	}
	return o, nil
}

func (s *PGStore) OrderStatus(ctx context.Context, orderID string) (Status, error) {
	var st Status
	if err := s.DB.QueryRow(ctx, `SELECT status FROM orders WHERE id=$1`, orderID).Scan(&st); err != nil {
		return "", storeErr(err)
	}
	return st, nil
}

func (s *PGStore) ListOrdersByBuyer(ctx context.Context, buyerID string) ([]Order, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT id, buyer_id, product_id, quantity, total_cents, address, payment_method, status, created_at, updated_at
		FROM orders WHERE buyer_id=$1 ORDER BY created_at DESC`, buyerID)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.BuyerID, &o.ProductID, &o.Quantity, &o.TotalCents, &o.Address,
			&o.PaymentMethod, &o.Status, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, storeErr(err)
		}
		out = append(out, o)
	}
	return out, storeErr(rows.Err())
}

func (s *PGStore) ListOrdersBySeller(ctx context.Context, sellerID string) ([]OrderView, error) {
	return s.listOrderViews(ctx, `WHERE p.seller_id = $1`, sellerID)
}

func (s *PGStore) ListAllOrders(ctx context.Context) ([]OrderView, error) {
	return s.listOrderViews(ctx, ``)
}

func (s *PGStore) listOrderViews(ctx context.Context, where string, args ...any) ([]OrderView, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT o.id, o.buyer_id, o.product_id, o.quantity, o.total_cents, o.address,
		       o.payment_method, o.status, o.created_at, o.updated_at, p.name, b.username
		FROM orders o
		JOIN products p ON p.id = o.product_id
		JOIN users b ON b.id = o.buyer_id
		`+where+`
		ORDER BY o.created_at DESC`, args...)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	var out []OrderView
	for rows.Next() {
		var v OrderView
		if err := rows.Scan(&v.ID, &v.BuyerID, &v.ProductID, &v.Quantity, &v.TotalCents, &v.Address,
			&v.PaymentMethod, &v.Status, &v.CreatedAt, &v.UpdatedAt, &v.ProductName, &v.BuyerName); err != nil {
			return nil, storeErr(err)
		}
		out = append(out, v)
	}
	return out, storeErr(rows.Err())
}
