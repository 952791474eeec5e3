package market

import "context"

// Store is the marketplace state behind the workflows. Two implementations:
// PGStore (Postgres, row locks + transactions) and MemStore (in-process,
// mutex-guarded) for tests and local development.
//
// Every mutating method is atomic: it either applies all of its writes or
// none of them, and no intermediate state is observable by a concurrent call.
type Store interface {
	// Products.
	CreateProduct(ctx context.Context, sellerID string, in ProductInput) (Product, error)
	UpdateProduct(ctx context.Context, sellerID, productID string, upd ProductUpdate) (Product, error)
	DeleteProduct(ctx context.Context, sellerID, productID string) error
	GetProduct(ctx context.Context, productID string) (Product, error)
	ListProducts(ctx context.Context) ([]ProductListing, error)

	// Cart (buyer-only, enforced upstream by access control).
	AddCartItem(ctx context.Context, buyerID, productID string, quantity int) (CartItem, error)
	ListCart(ctx context.Context, buyerID string) ([]CartLine, error)
	RemoveCartItem(ctx context.Context, buyerID, itemID string) error

	// Order placement: lock product row, check stock, freeze total, insert
	// order as Processing, decrement stock. All-or-nothing.
	PlaceOrder(ctx context.Context, in PlacementInput) (Order, error)

	// TransitionOrder applies one edge of the status machine on behalf of
	// actor. A transition to Cancelled restocks the order's quantity in the
	// same atomic scope, exactly once.
	TransitionOrder(ctx context.Context, orderID string, to Status, actor Actor) (Order, error)

	// OrderStatus is the public tracking lookup.
	OrderStatus(ctx context.Context, orderID string) (Status, error)

	ListOrdersByBuyer(ctx context.Context, buyerID string) ([]Order, error)
	ListOrdersBySeller(ctx context.Context, sellerID string) ([]OrderView, error)
	ListAllOrders(ctx context.Context) ([]OrderView, error)

	// Seller registration gate.
	CreateSellerRegistration(ctx context.Context, userID string) error
	RegistrationStatus(ctx context.Context, userID string) (RegistrationStatus, error)
	ListRegistrations(ctx context.Context) ([]SellerRegistration, error)

	// ReviewRegistration is authorizer-only (enforced upstream). Rejection
	// demotes the account's role to buyer in the same atomic scope.
	ReviewRegistration(ctx context.Context, reviewerID, sellerID string, approve bool) (SellerRegistration, error)
}
