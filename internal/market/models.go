package market

import "time"

type Role string

const (
	RoleBuyer      Role = "buyer"
	RoleSeller     Role = "seller"
	RoleAuthorizer Role = "authorizer"
)

// Actor is the resolved identity a workflow runs as. It is passed explicitly
// into every call; there is no ambient current-user state.
type Actor struct {
	UserID         string
	Role           Role
	SellerApproved bool
}

// PaymentCashOnDelivery is the only supported payment method.
const PaymentCashOnDelivery = "Cash on Delivery"

type Product struct {
	ID         string    `json:"id"`
	SellerID   string    `json:"seller_id"`
	Category   string    `json:"category"`
	Name       string    `json:"name"`
	PriceCents int64     `json:"price_cents"`
	Stock      int       `json:"stock"`
	ImageURLs  []string  `json:"image_urls"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ProductListing is the public catalog row (joins the seller name).
type ProductListing struct {
	Product
	SellerName string `json:"seller_name"`
}

// Order is immutable after placement except for Status. TotalCents is frozen
// at placement time; later price edits on the product do not touch it.
type Order struct {
	ID            string    `json:"id"`
	BuyerID       string    `json:"buyer_id"`
	ProductID     string    `json:"product_id"`
	Quantity      int       `json:"quantity"`
	TotalCents    int64     `json:"total_cents"`
	Address       string    `json:"address"`
	PaymentMethod string    `json:"payment_method"`
	Status        Status    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// OrderView decorates an order for seller / authorizer listings.
type OrderView struct {
	Order
	ProductName string `json:"product_name"`
	BuyerName   string `json:"buyer_name"`
}

// CartItem lines are independent: the same (buyer, product) pair may appear
// more than once.
type CartItem struct {
	ID        string    `json:"id"`
	BuyerID   string    `json:"buyer_id"`
	ProductID string    `json:"product_id"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
}

type CartLine struct {
	CartItem
	ProductName string `json:"product_name"`
	PriceCents  int64  `json:"price_cents"`
}

type RegistrationStatus string

const (
	RegistrationPending  RegistrationStatus = "pending"
	RegistrationApproved RegistrationStatus = "approved"
	RegistrationRejected RegistrationStatus = "rejected"
)

type SellerRegistration struct {
	UserID     string             `json:"user_id"`
	Status     RegistrationStatus `json:"status"`
	ReviewedBy *string            `json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time         `json:"reviewed_at,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
}
