package model

import (
	"errors"
	"time"
)

// Order status values.  pending is the initial state; paid and cancelled
// are terminal in intent, though Cancel deliberately does not require a
// pending status (see Cancel).
const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusCancelled = "cancelled"
)

// Sentinel errors returned by the order guards.  Handlers translate these
// into the failure envelope with a human-readable message.
var (
	ErrBookUnavailable = errors.New("book does not exist or unavailable")
	ErrOwnBook         = errors.New("cannot buy own book")
	ErrNotBuyer        = errors.New("caller is not the buyer of this order")
	ErrNotPayable      = errors.New("status does not allow payment")
)

// Order is a purchase intent for a single book.  The seller and price are
// denormalized from the book at creation time: later changes to the book
// do not affect existing orders.
//
// Fields:
//
//	ID        – primary key identifier.
//	BuyerID   – user who placed the order.
//	SellerID  – publisher of the book at creation time.
//	BookID    – book being purchased.
//	Price     – decimal string snapshot of the book price.
//	Status    – pending, paid or cancelled.
//	CreatedAt – creation timestamp.
//	UpdatedAt – last update timestamp.
type Order struct {
	ID        uint64    // orders.id
	BuyerID   uint64    // orders.buyer_id
	SellerID  uint64    // orders.seller_id
	BookID    uint64    // orders.book_id
	Price     string    // orders.price
	Status    string    // orders.status
	CreatedAt time.Time // orders.created_at
	UpdatedAt time.Time // orders.updated_at
}

// NewOrder builds a pending order against the given book.  The book must be
// available and the buyer must not be its publisher.  Availability is only
// checked here, at creation time; there is no locking against a concurrent
// order on the same book.
func NewOrder(book *Book, buyerID uint64) (*Order, error) {
	if book == nil || !book.IsAvailable() {
		return nil, ErrBookUnavailable
	}
	if buyerID == book.PublisherID {
		return nil, ErrOwnBook
	}
	return &Order{
		BuyerID:  buyerID,
		SellerID: book.PublisherID,
		BookID:   book.ID,
		Price:    book.Price,
		Status:   OrderStatusPending,
	}, nil
}

// Pay transitions the order to paid.  The caller must be the buyer and the
// order must still be pending.  The underlying book is left untouched.
func (o *Order) Pay(callerID uint64) error {
	if o.BuyerID != callerID {
		return ErrNotBuyer
	}
	if o.Status != OrderStatusPending {
		return ErrNotPayable
	}
	o.Status = OrderStatusPaid
	o.UpdatedAt = time.Now().UTC()
	return nil
}

// Cancel transitions the order to cancelled.  Only the buyer may cancel;
// there is no status precondition, so a paid order can be cancelled.
func (o *Order) Cancel(callerID uint64) error {
	if o.BuyerID != callerID {
		return ErrNotBuyer
	}
	o.Status = OrderStatusCancelled
	o.UpdatedAt = time.Now().UTC()
	return nil
}
