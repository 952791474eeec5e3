package market

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemStore keeps all marketplace state in process behind one mutex, so each
// method is exactly as atomic as a PGStore transaction. Used by the test
// suite and as a throwaway dev backend.
type MemStore struct {
	mu sync.Mutex

	users         map[string]memUser
	products      map[string]Product
	orders        map[string]Order
	cartItems     map[string]CartItem
	registrations map[string]SellerRegistration
}

type memUser struct {
	Username string
	Role     Role
}

func NewMemStore() *MemStore {
	return &MemStore{
		users:         make(map[string]memUser),
		products:      make(map[string]Product),
		orders:        make(map[string]Order),
		cartItems:     make(map[string]CartItem),
		registrations: make(map[string]SellerRegistration),
	}
}

// PutUser registers an account so listings can resolve names and reviews can
// demote roles. Mirrors the users table PGStore shares with identity.
func (s *MemStore) PutUser(id, username string, role Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[id] = memUser{Username: username, Role: role}
}

// UserRole reports the stored role; used to observe demotion.
func (s *MemStore) UserRole(id string) (Role, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	return u.Role, ok
}

func (s *MemStore) CreateProduct(_ context.Context, sellerID string, in ProductInput) (Product, error) {
	if err := in.Validate(); err != nil {
		return Product{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	p := Product{
		ID:         uuid.NewString(),
		SellerID:   sellerID,
		Category:   in.Category,
		Name:       in.Name,
		PriceCents: in.PriceCents,
		Stock:      in.Stock,
		ImageURLs:  in.ImageURLs,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.products[p.ID] = p
	return p, nil
}

func (s *MemStore) UpdateProduct(_ context.Context, sellerID, productID string, upd ProductUpdate) (Product, error) {
	if err := upd.Validate(); err != nil {
		return Product{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[productID]
	if !ok {
		return Product{}, ErrNotFound
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
	p.UpdatedAt = time.Now().UTC()
	s.products[productID] = p
	return p, nil
}

func (s *MemStore) DeleteProduct(_ context.Context, sellerID, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[productID]
	if !ok || p.SellerID != sellerID {
		return ErrNotFound
	}
	// Same refusal the FK constraints enforce in Postgres.
	for _, o := range s.orders {
		if o.ProductID == productID {
			return fmt.Errorf("%w: still referenced", ErrConflict)
		}
	}
	for _, it := range s.cartItems {
		if it.ProductID == productID {
			return fmt.Errorf("%w: still referenced", ErrConflict)
		}
	}
	delete(s.products, productID)
	return nil
}

func (s *MemStore) GetProduct(_ context.Context, productID string) (Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[productID]
	if !ok {
		return Product{}, ErrNotFound
	}
	return p, nil
}

func (s *MemStore) ListProducts(_ context.Context) ([]ProductListing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]ProductListing, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, ProductListing{Product: p, SellerName: s.users[p.SellerID].Username})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemStore) AddCartItem(_ context.Context, buyerID, productID string, quantity int) (CartItem, error) {
	if quantity < 1 {
		return CartItem{}, fmt.Errorf("%w: quantity must be positive", ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[productID]; !ok {
		return CartItem{}, ErrNotFound
	}
	it := CartItem{
		ID:        uuid.NewString(),
		BuyerID:   buyerID,
		ProductID: productID,
		Quantity:  quantity,
		CreatedAt: time.Now().UTC(),
	}
	s.cartItems[it.ID] = it
	return it, nil
}

func (s *MemStore) ListCart(_ context.Context, buyerID string) ([]CartLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []CartLine
	for _, it := range s.cartItems {
		if it.BuyerID != buyerID {
			continue
		}
		p := s.products[it.ProductID]
		out = append(out, CartLine{CartItem: it, ProductName: p.Name, PriceCents: p.PriceCents})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemStore) RemoveCartItem(_ context.Context, buyerID, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.cartItems[itemID]
	if !ok || it.BuyerID != buyerID {
		return ErrNotFound
	}
	delete(s.cartItems, itemID)
	return nil
}

func (s *MemStore) PlaceOrder(_ context.Context, in PlacementInput) (Order, error) {
	if err := in.Validate(); err != nil {
		return Order{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[in.ProductID]
	if !ok {
		return Order{}, ErrNotFound
	}
	if p.Stock < in.Quantity {
		return Order{}, fmt.Errorf("%w: %d requested, %d available", ErrInsufficientStock, in.Quantity, p.Stock)
	}

	now := time.Now().UTC()
	o := Order{
		ID:            uuid.NewString(),
		BuyerID:       in.BuyerID,
		ProductID:     in.ProductID,
		Quantity:      in.Quantity,
		TotalCents:    p.PriceCents * int64(in.Quantity),
		Address:       in.Address,
		PaymentMethod: in.PaymentMethod,
		Status:        StatusProcessing,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	p.Stock -= in.Quantity
	p.UpdatedAt = now
	s.products[p.ID] = p
	s.orders[o.ID] = o
	return o, nil
}

func (s *MemStore) TransitionOrder(_ context.Context, orderID string, to Status, actor Actor) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok {
		return Order{}, ErrNotFound
	}
	p, ok := s.products[o.ProductID]
	if !ok {
		return Order{}, ErrNotFound
	}
	if err := ValidateTransition(o, p.SellerID, to, actor); err != nil {
		return Order{}, err
	}

	now := time.Now().UTC()
	if to == StatusCancelled {
		p.Stock += o.Quantity
		p.UpdatedAt = now
		s.products[p.ID] = p
	}
	o.Status = to
	o.UpdatedAt = now
	s.orders[o.ID] = o
	return o, nil
}

func (s *MemStore) OrderStatus(_ context.Context, orderID string) (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok {
		return "", ErrNotFound
	}
	return o.Status, nil
}

func (s *MemStore) ListOrdersByBuyer(_ context.Context, buyerID string) ([]Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Order
	for _, o := range s.orders {
		if o.BuyerID == buyerID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemStore) ListOrdersBySeller(_ context.Context, sellerID string) ([]OrderView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orderViewsLocked(func(o Order) bool {
		return s.products[o.ProductID].SellerID == sellerID
	}), nil
}

func (s *MemStore) ListAllOrders(_ context.Context) ([]OrderView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orderViewsLocked(func(Order) bool { return true }), nil
}

func (s *MemStore) orderViewsLocked(keep func(Order) bool) []OrderView {
	var out []OrderView
	for _, o := range s.orders {
		if !keep(o) {
			continue
		}
		out = append(out, OrderView{
			Order:       o,
			ProductName: s.products[o.ProductID].Name,
			BuyerName:   s.users[o.BuyerID].Username,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *MemStore) CreateSellerRegistration(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.registrations[userID]; ok {
		return nil
	}
	s.registrations[userID] = SellerRegistration{
		UserID:    userID,
		Status:    RegistrationPending,
		CreatedAt: time.Now().UTC(),
	}
	return nil
}

func (s *MemStore) RegistrationStatus(_ context.Context, userID string) (RegistrationStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.registrations[userID]
	if !ok {
		return "", ErrNotFound
	}
	return r.Status, nil
}

func (s *MemStore) ListRegistrations(_ context.Context) ([]SellerRegistration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]SellerRegistration, 0, len(s.registrations))
	for _, r := range s.registrations {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemStore) ReviewRegistration(_ context.Context, reviewerID, sellerID string, approve bool) (SellerRegistration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.registrations[sellerID]
	if !ok {
		return SellerRegistration{}, ErrNotFound
	}
	if r.Status != RegistrationPending {
		return SellerRegistration{}, fmt.Errorf("%w: registration already %s", ErrInvalidInput, r.Status)
	}

	now := time.Now().UTC()
	if approve {
		r.Status = RegistrationApproved
	} else {
		r.Status = RegistrationRejected
		if u, ok := s.users[sellerID]; ok {
			u.Role = RoleBuyer
			s.users[sellerID] = u
		}
	}
	r.ReviewedBy = &reviewerID
	r.ReviewedAt = &now
	s.registrations[sellerID] = r
	return r, nil
}
