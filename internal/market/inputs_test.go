package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validPlacement() PlacementInput {
	return PlacementInput{
		BuyerID:       "buyer-1",
		ProductID:     "prod-1",
		Quantity:      1,
		Address:       "12 Lamp Street",
		PaymentMethod: PaymentCashOnDelivery,
	}
}

func TestPlacementInput_Validate(t *testing.T) {
	assert.NoError(t, validPlacement().Validate())

	t.Run("missing product", func(t *testing.T) {
		in := validPlacement()
		in.ProductID = ""
		assert.ErrorIs(t, in.Validate(), ErrInvalidInput)
	})

	t.Run("non-positive quantity", func(t *testing.T) {
		for _, q := range []int{0, -1, -10} {
			in := validPlacement()
			in.Quantity = q
			assert.ErrorIs(t, in.Validate(), ErrInvalidInput, "quantity %d", q)
		}
	})

	t.Run("blank address", func(t *testing.T) {
		for _, addr := range []string{"", "   ", "\t\n"} {
			in := validPlacement()
			in.Address = addr
			assert.ErrorIs(t, in.Validate(), ErrInvalidInput)
		}
	})

	t.Run("unsupported payment method", func(t *testing.T) {
		for _, pm := range []string{"", "Card", "cash on delivery", "PayPal"} {
			in := validPlacement()
			in.PaymentMethod = pm
			assert.ErrorIs(t, in.Validate(), ErrInvalidInput, "payment %q", pm)
		}
	})
}

func TestProductInput_Validate(t *testing.T) {
	ok := ProductInput{Category: "lamps", Name: "Desk Lamp", PriceCents: 10000, Stock: 5}
	assert.NoError(t, ok.Validate())

	t.Run("missing name", func(t *testing.T) {
		in := ok
		in.Name = ""
		assert.ErrorIs(t, in.Validate(), ErrInvalidInput)
	})

	t.Run("missing category", func(t *testing.T) {
		in := ok
		in.Category = ""
		assert.ErrorIs(t, in.Validate(), ErrInvalidInput)
	})

	t.Run("negative price", func(t *testing.T) {
		in := ok
		in.PriceCents = -1
		assert.ErrorIs(t, in.Validate(), ErrInvalidInput)
	})

	t.Run("negative stock", func(t *testing.T) {
		in := ok
		in.Stock = -1
		assert.ErrorIs(t, in.Validate(), ErrInvalidInput)
	})

	t.Run("bad image url", func(t *testing.T) {
		in := ok
		in.ImageURLs = []string{"not a url"}
		assert.ErrorIs(t, in.Validate(), ErrInvalidInput)
	})
}

func TestProductUpdate_Validate(t *testing.T) {
	neg := int64(-5)
	negStock := -2
	blank := "  "

	assert.NoError(t, ProductUpdate{}.Validate())
	assert.ErrorIs(t, ProductUpdate{PriceCents: &neg}.Validate(), ErrInvalidInput)
	assert.ErrorIs(t, ProductUpdate{Stock: &negStock}.Validate(), ErrInvalidInput)
	assert.ErrorIs(t, ProductUpdate{Name: &blank}.Validate(), ErrInvalidInput)
}
