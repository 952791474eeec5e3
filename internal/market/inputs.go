package market

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// PlacementInput is a normalized order placement request. Quantity defaulting
// (absent/non-numeric -> 1) is the transport layer's job; by the time it gets
// here the quantity is literal.
type PlacementInput struct {
	BuyerID       string
	ProductID     string
	Quantity      int
	Address       string
	PaymentMethod string
}

func (in PlacementInput) Validate() error {
	if in.ProductID == "" {
		return fmt.Errorf("%w: product is required", ErrInvalidInput)
	}
	if in.Quantity < 1 {
		return fmt.Errorf("%w: quantity must be positive", ErrInvalidInput)
	}
	if strings.TrimSpace(in.Address) == "" {
		return fmt.Errorf("%w: address is required", ErrInvalidInput)
	}
	if in.PaymentMethod != PaymentCashOnDelivery {
		return fmt.Errorf("%w: only %s is available", ErrInvalidInput, PaymentCashOnDelivery)
	}
	return nil
}

type ProductInput struct {
	Category   string   `json:"category" validate:"required,max=100"`
	Name       string   `json:"name" validate:"required,max=200"`
	PriceCents int64    `json:"price_cents" validate:"gte=0"`
	Stock      int      `json:"stock" validate:"gte=0"`
	ImageURLs  []string `json:"image_urls" validate:"dive,url"`
}

func (in ProductInput) Validate() error {
	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			f := verrs[0]
			return fmt.Errorf("%w: field %s fails rule %q", ErrInvalidInput, f.Field(), f.Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

// ProductUpdate carries the editable fields; nil means leave unchanged.
type ProductUpdate struct {
	Name       *string  `json:"name"`
	Category   *string  `json:"category"`
	PriceCents *int64   `json:"price_cents"`
	Stock      *int     `json:"stock"`
	ImageURLs  []string `json:"image_urls"`
}

func (u ProductUpdate) Validate() error {
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
	}
	if u.PriceCents != nil && *u.PriceCents < 0 {
		return fmt.Errorf("%w: price cannot be negative", ErrInvalidInput)
	}
	if u.Stock != nil && *u.Stock < 0 {
		return fmt.Errorf("%w: stock cannot be negative", ErrInvalidInput)
	}
	return nil
}
