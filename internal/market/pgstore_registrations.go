package market

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

func (s *PGStore) CreateSellerRegistration(ctx context.Context, userID string) error {
	_, err := s.DB.Exec(ctx, `
		INSERT INTO seller_registrations(user_id, status)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO NOTHING`, userID, RegistrationPending)
	return storeErr(err)
}

func (s *PGStore) RegistrationStatus(ctx context.Context, userID string) (RegistrationStatus, error) {
	var st RegistrationStatus
	err := s.DB.QueryRow(ctx, `SELECT status FROM seller_registrations WHERE user_id=$1`, userID).Scan(&st)
	if err != nil {
		return "", storeErr(err)
	}
	return st, nil
}

func (s *PGStore) ListRegistrations(ctx context.Context) ([]SellerRegistration, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT user_id, status, reviewed_by, reviewed_at, created_at
		FROM seller_registrations ORDER BY created_at`)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	var out []SellerRegistration
	for rows.Next() {
		var r SellerRegistration
		if err := rows.Scan(&r.UserID, &r.Status, &r.ReviewedBy, &r.ReviewedAt, &r.CreatedAt); err != nil {
			return nil, storeErr(err)
		}
		out = append(out, r)
	}
	return out, storeErr(rows.Err())
}

// ReviewRegistration flips a pending registration and, on rejection, demotes
// the account to buyer in the same transaction. A decided registration stays
// decided: there is no re-review path.
func (s *PGStore) ReviewRegistration(ctx context.Context, reviewerID, sellerID string, approve bool) (SellerRegistration, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return SellerRegistration{}, storeErr(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var r SellerRegistration
	err = tx.QueryRow(ctx, `
		SELECT user_id, status, reviewed_by, reviewed_at, created_at
		FROM seller_registrations WHERE user_id=$1 FOR UPDATE`, sellerID,
	).Scan(&r.UserID, &r.Status, &r.ReviewedBy, &r.ReviewedAt, &r.CreatedAt)
	if err != nil {
		return SellerRegistration{}, storeErr(err)
	}
	if r.Status != RegistrationPending {
		return SellerRegistration{}, fmt.Errorf("%w: registration already %s", ErrInvalidInput, r.Status)
	}

	decision := RegistrationApproved
	if !approve {
		decision = RegistrationRejected
	}
	err = tx.QueryRow(ctx, `
		UPDATE seller_registrations
		SET status=$2, reviewed_by=$3, reviewed_at=now()
		WHERE user_id=$1
		RETURNING status, reviewed_by, reviewed_at`,
		sellerID, decision, reviewerID,
	).Scan(&r.Status, &r.ReviewedBy, &r.ReviewedAt)
	if err != nil {
		return SellerRegistration{}, storeErr(err)
	}

	if !approve {
		if _, err := tx.Exec(ctx, `UPDATE users SET role=$2 WHERE id=$1`, sellerID, RoleBuyer); err != nil {
			return SellerRegistration{}, storeErr(err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return SellerRegistration{}, storeErr(err)
	}
	return r, nil
}
