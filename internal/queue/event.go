// Package queue defines message payloads exchanged over the message broker.
package queue

// OrderPaidEvent is published when an order is successfully paid.  It
// carries enough information for downstream consumers to log or notify
// without querying the primary database.
type OrderPaidEvent struct {
	OrderID   uint64 `json:"order_id"`
	BuyerID   uint64 `json:"buyer_id"`
	SellerID  uint64 `json:"seller_id"`
	BookID    uint64 `json:"book_id"`
	BookTitle string `json:"book_title"`
	Price     string `json:"price"`
	PaidAt    string `json:"paid_at"`
}
