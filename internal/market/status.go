package market

import "fmt"

type Status string

const (
	StatusProcessing Status = "Processing"
	StatusPacked     Status = "Packed"
	StatusShipped    Status = "Shipped"
	StatusDelivered  Status = "Delivered"
	StatusCancelled  Status = "Cancelled"
)

var validNext = map[Status]map[Status]bool{
	StatusProcessing: {StatusPacked: true, StatusCancelled: true},
	StatusPacked:     {StatusShipped: true, StatusCancelled: true},
	StatusShipped:    {StatusDelivered: true},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

// Cancellable reports whether an order in the given status may still be
// cancelled. Once shipped only forward progress is allowed.
func Cancellable(s Status) bool {
	return s == StatusProcessing || s == StatusPacked
}

func ValidStatus(s Status) bool {
	_, ok := validNext[s]
	return ok
}

// ValidateTransition checks the requested edge and the actor's permission to
// take it. sellerID is the owner of the order's product. Cancellation may be
// requested by the buyer who placed the order or the owning seller; every
// forward move is seller-only. It does not touch inventory: restocking a
// cancelled order is the caller's job, inside the same transaction.
func ValidateTransition(o Order, sellerID string, to Status, actor Actor) error {
	if !ValidStatus(to) {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, to)
	}
	if !CanTransition(o.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, to)
	}
	if to == StatusCancelled {
		buyerOwns := actor.Role == RoleBuyer && actor.UserID == o.BuyerID
		sellerOwns := actor.Role == RoleSeller && actor.UserID == sellerID
		if !buyerOwns && !sellerOwns {
			return fmt.Errorf("%w: not your order", ErrForbidden)
		}
		return nil
	}
	if actor.Role != RoleSeller || actor.UserID != sellerID {
		return fmt.Errorf("%w: not your order", ErrForbidden)
	}
	return nil
}
