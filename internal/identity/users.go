// Package identity implements the account collaborators the marketplace core
// depends on: user creation, password verification and session resolution.
package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/ariefcatur/go-lamp-marketplace.git/internal/market"
)

var (
	ErrEmailTaken         = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type User struct {
	ID        string      `json:"id"`
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	Phone     string      `json:"phone,omitempty"`
	Role      market.Role `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
}

type RegisterInput struct {
	Username string `json:"username" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Phone    string `json:"phone" validate:"omitempty,max=30"`
	Role     string `json:"role" validate:"required,oneof=buyer seller"`
}

var validate = validator.New()

type Users struct{ DB *pgxpool.Pool }

func NewUsers(db *pgxpool.Pool) *Users { return &Users{DB: db} }

func (u *Users) CreateUser(ctx context.Context, in RegisterInput) (User, error) {
	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			f := verrs[0]
			return User{}, fmt.Errorf("%w: field %s fails rule %q", market.ErrInvalidInput, f.Field(), f.Tag())
		}
		return User{}, fmt.Errorf("%w: %v", market.ErrInvalidInput, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	var out User
	err = u.DB.QueryRow(ctx, `
		INSERT INTO users(id, username, email, password_hash, phone, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, username, email, COALESCE(phone, ''), role, created_at`,
		uuid.NewString(), in.Username, in.Email, string(hash), nullable(in.Phone), in.Role,
	).Scan(&out.ID, &out.Username, &out.Email, &out.Phone, &out.Role, &out.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return User{}, ErrEmailTaken
		}
		return User{}, err
	}
	return out, nil
}

// VerifyPassword resolves the account for an email/password pair. Wrong email
// and wrong password are indistinguishable to the caller.
func (u *Users) VerifyPassword(ctx context.Context, email, password string) (User, error) {
	var out User
	var hash string
	err := u.DB.QueryRow(ctx, `
		SELECT id, username, email, COALESCE(phone, ''), role, created_at, password_hash
		FROM users WHERE email=$1`, email,
	).Scan(&out.ID, &out.Username, &out.Email, &out.Phone, &out.Role, &out.CreatedAt, &hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}
	return out, nil
}

func (u *Users) UserByID(ctx context.Context, id string) (User, error) {
	var out User
	err := u.DB.QueryRow(ctx, `
		SELECT id, username, email, COALESCE(phone, ''), role, created_at
		FROM users WHERE id=$1`, id,
	).Scan(&out.ID, &out.Username, &out.Email, &out.Phone, &out.Role, &out.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, market.ErrNotFound
		}
		return User{}, err
	}
	return out, nil
}

// EnsureAuthorizer seeds the authorizer account from config. No-op when the
// email is already registered or the config is blank.
func (u *Users) EnsureAuthorizer(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = u.DB.Exec(ctx, `
		INSERT INTO users(id, username, email, password_hash, role)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email) DO NOTHING`,
		uuid.NewString(), "authorizer", email, string(hash), market.RoleAuthorizer)
	return err
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
