package market

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*MemStore, Product) {
	t.Helper()
	s := NewMemStore()
	s.PutUser("seller-1", "lampseller", RoleSeller)
	s.PutUser("buyer-1", "alice", RoleBuyer)

	p, err := s.CreateProduct(context.Background(), "seller-1", ProductInput{
		Category:   "lamps",
		Name:       "Desk Lamp",
		PriceCents: 10000, // 100.00
		Stock:      5,
	})
	require.NoError(t, err)
	return s, p
}

func place(t *testing.T, s *MemStore, productID string, qtyOrdered int) (Order, error) {
	t.Helper()
	return s.PlaceOrder(context.Background(), PlacementInput{
		BuyerID:       "buyer-1",
		ProductID:     productID,
		Quantity:      qtyOrdered,
		Address:       "12 Lamp Street",
		PaymentMethod: PaymentCashOnDelivery,
	})
}

func TestPlaceOrder_FreezesTotalAndDecrementsStock(t *testing.T) {
	s, p := newTestStore(t)

	o, err := place(t, s, p.ID, 3)
	require.NoError(t, err)

	assert.Equal(t, StatusProcessing, o.Status)
	assert.Equal(t, int64(30000), o.TotalCents)
	assert.Equal(t, 3, o.Quantity)
	assert.Equal(t, PaymentCashOnDelivery, o.PaymentMethod)

	got, err := s.GetProduct(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Stock)
}

func TestPlaceOrder_UnknownProduct(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := place(t, s, "missing", 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPlaceOrder_InsufficientStockLeavesStockUnchanged(t *testing.T) {
	s, p := newTestStore(t)

	_, err := place(t, s, p.ID, 6)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	got, err := s.GetProduct(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Stock)

	orders, err := s.ListOrdersByBuyer(context.Background(), "buyer-1")
	require.NoError(t, err)
	assert.Empty(t, orders, "a failed placement must leave no order behind")
}

func TestCancel_RestocksExactlyOnce(t *testing.T) {
	s, p := newTestStore(t)
	ctx := context.Background()

	o, err := place(t, s, p.ID, 3)
	require.NoError(t, err)

	seller := Actor{UserID: "seller-1", Role: RoleSeller}
	cancelled, err := s.TransitionOrder(ctx, o.ID, StatusCancelled, seller)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)

	got, err := s.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Stock, "cancellation restores the order quantity")

	// Cancelling again must be rejected, not double-applied.
	_, err = s.TransitionOrder(ctx, o.ID, StatusCancelled, seller)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	got, err = s.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Stock)
}

func TestBuyerCancel_OnlyBeforeShipment(t *testing.T) {
	s, p := newTestStore(t)
	ctx := context.Background()
	seller := Actor{UserID: "seller-1", Role: RoleSeller}
	buyer := Actor{UserID: "buyer-1", Role: RoleBuyer}

	o, err := place(t, s, p.ID, 1)
	require.NoError(t, err)

	_, err = s.TransitionOrder(ctx, o.ID, StatusPacked, seller)
	require.NoError(t, err)

	// Packed is still cancellable by the buyer.
	_, err = s.TransitionOrder(ctx, o.ID, StatusCancelled, buyer)
	require.NoError(t, err)

	o2, err := place(t, s, p.ID, 1)
	require.NoError(t, err)
	_, err = s.TransitionOrder(ctx, o2.ID, StatusPacked, seller)
	require.NoError(t, err)
	_, err = s.TransitionOrder(ctx, o2.ID, StatusShipped, seller)
	require.NoError(t, err)

	// Shipped is not.
	_, err = s.TransitionOrder(ctx, o2.ID, StatusCancelled, buyer)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = s.TransitionOrder(ctx, o2.ID, StatusDelivered, seller)
	assert.NoError(t, err)
}

func TestTotalPrice_SurvivesPriceEdit(t *testing.T) {
	s, p := newTestStore(t)
	ctx := context.Background()

	o, err := place(t, s, p.ID, 2)
	require.NoError(t, err)
	require.Equal(t, int64(20000), o.TotalCents)

	newPrice := int64(99900)
	_, err = s.UpdateProduct(ctx, "seller-1", p.ID, ProductUpdate{PriceCents: &newPrice})
	require.NoError(t, err)

	orders, err := s.ListOrdersByBuyer(ctx, "buyer-1")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, int64(20000), orders[0].TotalCents, "total is frozen at placement")
}

func TestForeignSeller_CannotTouchOrder(t *testing.T) {
	s, p := newTestStore(t)
	s.PutUser("seller-2", "othershop", RoleSeller)
	ctx := context.Background()

	o, err := place(t, s, p.ID, 1)
	require.NoError(t, err)

	intruder := Actor{UserID: "seller-2", Role: RoleSeller}
	_, err = s.TransitionOrder(ctx, o.ID, StatusPacked, intruder)
	assert.ErrorIs(t, err, ErrForbidden)

	st, err := s.OrderStatus(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, st, "rejected request leaves no state change")
}

func TestConcurrentPlacements_NeverOversell(t *testing.T) {
	s := NewMemStore()
	s.PutUser("seller-1", "lampseller", RoleSeller)
	p, err := s.CreateProduct(context.Background(), "seller-1", ProductInput{
		Category: "lamps", Name: "Rare Lamp", PriceCents: 5000, Stock: 2,
	})
	require.NoError(t, err)

	// Buyer A wants both units, buyer B wants one: exactly one can win.
	var wg sync.WaitGroup
	errs := make([]error, 2)
	quantities := []int{2, 1}
	for i, q := range quantities {
		wg.Add(1)
		go func(i, q int) {
			defer wg.Done()
			_, errs[i] = s.PlaceOrder(context.Background(), PlacementInput{
				BuyerID:       "buyer-1",
				ProductID:     p.ID,
				Quantity:      q,
				Address:       "12 Lamp Street",
				PaymentMethod: PaymentCashOnDelivery,
			})
		}(i, q)
	}
	wg.Wait()

	got, err := s.GetProduct(context.Background(), p.ID)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, got.Stock, 0, "stock must never go negative")

	// Either A won (stock 0, B failed) or B won (stock 1, A failed); both
	// succeeding would need 3 units.
	failures := 0
	for _, e := range errs {
		if e != nil {
			assert.ErrorIs(t, e, ErrInsufficientStock)
			failures++
		}
	}
	assert.GreaterOrEqual(t, failures, 1)
}

func TestConcurrentPlacementAndCancel_StockBalances(t *testing.T) {
	s := NewMemStore()
	s.PutUser("seller-1", "lampseller", RoleSeller)
	p, err := s.CreateProduct(context.Background(), "seller-1", ProductInput{
		Category: "lamps", Name: "Bulk Lamp", PriceCents: 1000, Stock: 50,
	})
	require.NoError(t, err)

	const n = 50
	var wg sync.WaitGroup
	orderIDs := make(chan string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			o, err := s.PlaceOrder(context.Background(), PlacementInput{
				BuyerID:       "buyer-1",
				ProductID:     p.ID,
				Quantity:      1,
				Address:       "12 Lamp Street",
				PaymentMethod: PaymentCashOnDelivery,
			})
			if err == nil {
				orderIDs <- o.ID
			}
		}()
	}
	wg.Wait()
	close(orderIDs)

	buyer := Actor{UserID: "buyer-1", Role: RoleBuyer}
	for id := range orderIDs {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := s.TransitionOrder(context.Background(), id, StatusCancelled, buyer)
			assert.NoError(t, err)
		}(id)
	}
	wg.Wait()

	got, err := s.GetProduct(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, got.Stock, "every cancellation restocks exactly once")
}

func TestReviewRegistration(t *testing.T) {
	s := NewMemStore()
	s.PutUser("seller-1", "pendingshop", RoleSeller)
	ctx := context.Background()

	require.NoError(t, s.CreateSellerRegistration(ctx, "seller-1"))

	st, err := s.RegistrationStatus(ctx, "seller-1")
	require.NoError(t, err)
	assert.Equal(t, RegistrationPending, st)

	t.Run("approve", func(t *testing.T) {
		reg, err := s.ReviewRegistration(ctx, "auth-1", "seller-1", true)
		require.NoError(t, err)
		assert.Equal(t, RegistrationApproved, reg.Status)
		require.NotNil(t, reg.ReviewedBy)
		assert.Equal(t, "auth-1", *reg.ReviewedBy)
		assert.NotNil(t, reg.ReviewedAt)

		role, ok := s.UserRole("seller-1")
		require.True(t, ok)
		assert.Equal(t, RoleSeller, role)
	})

	t.Run("no re-review", func(t *testing.T) {
		_, err := s.ReviewRegistration(ctx, "auth-1", "seller-1", false)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("reject demotes to buyer", func(t *testing.T) {
		s.PutUser("seller-2", "deniedshop", RoleSeller)
		require.NoError(t, s.CreateSellerRegistration(ctx, "seller-2"))

		reg, err := s.ReviewRegistration(ctx, "auth-1", "seller-2", false)
		require.NoError(t, err)
		assert.Equal(t, RegistrationRejected, reg.Status)

		role, ok := s.UserRole("seller-2")
		require.True(t, ok)
		assert.Equal(t, RoleBuyer, role)
	})

	t.Run("unknown registration", func(t *testing.T) {
		_, err := s.ReviewRegistration(ctx, "auth-1", "ghost", true)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestCart_AllowsDuplicateLines(t *testing.T) {
	s, p := newTestStore(t)
	ctx := context.Background()

	_, err := s.AddCartItem(ctx, "buyer-1", p.ID, 1)
	require.NoError(t, err)
	_, err = s.AddCartItem(ctx, "buyer-1", p.ID, 2)
	require.NoError(t, err)

	lines, err := s.ListCart(ctx, "buyer-1")
	require.NoError(t, err)
	assert.Len(t, lines, 2, "same product may appear as independent lines")

	// Cart lines do not reserve stock.
	got, err := s.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Stock)
}

func TestDeleteProduct_RefusedWhileReferenced(t *testing.T) {
	s, p := newTestStore(t)
	ctx := context.Background()

	o, err := place(t, s, p.ID, 1)
	require.NoError(t, err)

	err = s.DeleteProduct(ctx, "seller-1", p.ID)
	assert.ErrorIs(t, err, ErrConflict)

	// Still refused after cancellation: the order row keeps its reference.
	_, err = s.TransitionOrder(ctx, o.ID, StatusCancelled, Actor{UserID: "buyer-1", Role: RoleBuyer})
	require.NoError(t, err)
	err = s.DeleteProduct(ctx, "seller-1", p.ID)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestDeleteProduct_Unreferenced(t *testing.T) {
	s, p := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.DeleteProduct(ctx, "seller-1", p.ID))
	_, err := s.GetProduct(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
