package market

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGStore struct{ DB *pgxpool.Pool }

func NewPGStore(db *pgxpool.Pool) *PGStore { return &PGStore{DB: db} }

// storeErr translates driver errors into the package taxonomy. Lock waits
// that hit lock_timeout, serialization failures and deadlocks all come back
// as ErrConflict so the caller knows a retry is safe.
func storeErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "55P03", "40001", "40P01":
			return fmt.Errorf("%w: %s", ErrConflict, pgErr.Code)
		case "23503":
			// FK violation: row is still referenced (orders, cart lines).
			return fmt.Errorf("%w: still referenced", ErrConflict)
		}
	}
	return err
}

func (s *PGStore) CreateProduct(ctx context.Context, sellerID string, in ProductInput) (Product, error) {
	if err := in.Validate(); err != nil {
		return Product{}, err
	}
	var p Product
	err := s.DB.QueryRow(ctx, `
		INSERT INTO products(id, seller_id, category, name, price_cents, stock, image_urls)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, seller_id, category, name, price_cents, stock, image_urls, created_at, updated_at`,
		uuid.NewString(), sellerID, in.Category, in.Name, in.PriceCents, in.Stock, in.ImageURLs,
	).Scan(&p.ID, &p.SellerID, &p.Category, &p.Name, &p.PriceCents, &p.Stock, &p.ImageURLs, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Product{}, storeErr(err)
	}
	return p, nil
}

func (s *PGStore) UpdateProduct(ctx context.Context, sellerID, productID string, upd ProductUpdate) (Product, error) {
	if err := upd.Validate(); err != nil {
		return Product{}, err
	}

	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Product{}, storeErr(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var p Product
	err = tx.QueryRow(ctx, `
		SELECT id, seller_id, category, name, price_cents, stock, image_urls, created_at, updated_at
		FROM products WHERE id=$1 FOR UPDATE`, productID,
	).Scan(&p.ID, &p.SellerID, &p.Category, &p.Name, &p.PriceCents, &p.Stock, &p.ImageURLs, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Product{}, storeErr(err)
	}
	if p.SellerID != sellerID {
		return Product{}, fmt.Errorf("%w: not your product", ErrForbidden)
	}

	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.Category != nil {
		p.Category = *upd.Category
	}
	if upd.PriceCents != nil {
		p.PriceCents = *upd.PriceCents
	}
	if upd.Stock != nil {
		p.Stock = *upd.Stock
	}
	if upd.ImageURLs != nil {
		p.ImageURLs = upd.ImageURLs
	}

	err = tx.QueryRow(ctx, `
		UPDATE products
		SET category=$2, name=$3, price_cents=$4, stock=$5, image_urls=$6, updated_at=now()
		WHERE id=$1
		RETURNING updated_at`,
		p.ID, p.Category, p.Name, p.PriceCents, p.Stock, p.ImageURLs,
	).Scan(&p.UpdatedAt)
	if err != nil {
		return Product{}, storeErr(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return Product{}, storeErr(err)
	}
	return p, nil
}

func (s *PGStore) DeleteProduct(ctx context.Context, sellerID, productID string) error {
	ct, err := s.DB.Exec(ctx, `DELETE FROM products WHERE id=$1 AND seller_id=$2`, productID, sellerID)
	if err != nil {
		return storeErr(err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) GetProduct(ctx context.Context, productID string) (Product, error) {
	var p Product
	err := s.DB.QueryRow(ctx, `
		SELECT id, seller_id, category, name, price_cents, stock, image_urls, created_at, updated_at
		FROM products WHERE id=$1`, productID,
	).Scan(&p.ID, &p.SellerID, &p.Category, &p.Name, &p.PriceCents, &p.Stock, &p.ImageURLs, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Product{}, storeErr(err)
	}
	return p, nil
}

func (s *PGStore) ListProducts(ctx context.Context) ([]ProductListing, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT p.id, p.seller_id, p.category, p.name, p.price_cents, p.stock, p.image_urls,
		       p.created_at, p.updated_at, u.username
		FROM products p
		JOIN users u ON u.id = p.seller_id
		ORDER BY p.created_at DESC`)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	var out []ProductListing
	for rows.Next() {
		var l ProductListing
		if err := rows.Scan(&l.ID, &l.SellerID, &l.Category, &l.Name, &l.PriceCents, &l.Stock,
			&l.ImageURLs, &l.CreatedAt, &l.UpdatedAt, &l.SellerName); err != nil {
			return nil, storeErr(err)
		}
		out = append(out, l)
	}
	return out, storeErr(rows.Err())
}

func (s *PGStore) AddCartItem(ctx context.Context, buyerID, productID string, quantity int) (CartItem, error) {
	if quantity < 1 {
		return CartItem{}, fmt.Errorf("%w: quantity must be positive", ErrInvalidInput)
	}
	// Existence check only; cart lines do not reserve stock.
	var exists string
	if err := s.DB.QueryRow(ctx, `SELECT id FROM products WHERE id=$1`, productID).Scan(&exists); err != nil {
		return CartItem{}, storeErr(err)
	}
	var it CartItem
	err := s.DB.QueryRow(ctx, `
		INSERT INTO cart_items(id, buyer_id, product_id, quantity)
		VALUES ($1, $2, $3, $4)
		RETURNING id, buyer_id, product_id, quantity, created_at`,
		uuid.NewString(), buyerID, productID, quantity,
	).Scan(&it.ID, &it.BuyerID, &it.ProductID, &it.Quantity, &it.CreatedAt)
	if err != nil {
		return CartItem{}, storeErr(err)
	}
	return it, nil
}

func (s *PGStore) ListCart(ctx context.Context, buyerID string) ([]CartLine, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT c.id, c.buyer_id, c.product_id, c.quantity, c.created_at, p.name, p.price_cents
		FROM cart_items c
		JOIN products p ON p.id = c.product_id
		WHERE c.buyer_id = $1
		ORDER BY c.created_at`, buyerID)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	var out []CartLine
	for rows.Next() {
		var l CartLine
		if err := rows.Scan(&l.ID, &l.BuyerID, &l.ProductID, &l.Quantity, &l.CreatedAt,
			&l.ProductName, &l.PriceCents); err != nil {
			return nil, storeErr(err)
		}
		out = append(out, l)
	}
	return out, storeErr(rows.Err())
}

func (s *PGStore) RemoveCartItem(ctx context.Context, buyerID, itemID string) error {
	ct, err := s.DB.Exec(ctx, `DELETE FROM cart_items WHERE id=$1 AND buyer_id=$2`, itemID, buyerID)
	if err != nil {
		return storeErr(err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
