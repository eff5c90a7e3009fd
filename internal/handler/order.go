package handler

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/linqiu/bookmarket/internal/model"
	"github.com/linqiu/bookmarket/internal/queue"
	"github.com/linqiu/bookmarket/internal/repository"
)

// OrderHandler bundles dependencies for the purchase endpoints.  Status
// transitions are applied through the guards on model.Order; this handler
// only translates their sentinel errors into envelope messages and
// persists the outcome.
type OrderHandler struct {
	Orders OrderStore
	Books  BookStore
	Events PaidPublisher // optional; nil disables order.paid events
}

func NewOrderHandler(orders OrderStore, books BookStore, events PaidPublisher) *OrderHandler {
	if orders == nil || books == nil {
		panic("nil store passed to NewOrderHandler")
	}
	return &OrderHandler{Orders: orders, Books: books, Events: events}
}

type orderData struct {
	ID        uint64 `json:"id"`
	BuyerID   uint64 `json:"buyer_id"`
	SellerID  uint64 `json:"seller_id"`
	BookID    uint64 `json:"book_id"`
	Price     string `json:"price"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toOrderData(o model.Order) orderData {
	return orderData{
		ID:        o.ID,
		BuyerID:   o.BuyerID,
		SellerID:  o.SellerID,
		BookID:    o.BookID,
		Price:     o.Price,
		Status:    o.Status,
		CreatedAt: o.CreatedAt.Format(timeLayout),
		UpdatedAt: o.UpdatedAt.Format(timeLayout),
	}
}

// Buy handles POST /api/order/buy.  The book must exist and be available
// and the buyer must not be its publisher.  Availability is checked only
// here, without a lock, so two concurrent buyers can both pass.
func (h *OrderHandler) Buy(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return fail(c, "token error")
	}
	bookID, err := parseFormID(c, "book_id")
	if err != nil {
		return fail(c, "missing request parameters")
	}

	ctx := c.Request().Context()
	book, err := h.Books.GetByID(ctx, bookID)
	if err != nil {
		return fail(c, "book does not exist or unavailable")
	}

	order, err := model.NewOrder(&book, userID)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrOwnBook):
			return fail(c, "cannot buy own book")
		default:
			return fail(c, "book does not exist or unavailable")
		}
	}
	if err := h.Orders.Create(ctx, order); err != nil {
		return fail(c, "order creation failed")
	}
	return ok(c, "order created successfully", toOrderData(*order))
}

// List handles GET /api/order/list, the caller's orders as buyer.
func (h *OrderHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return fail(c, "token error")
	}
	orders, err := h.Orders.ListByBuyer(c.Request().Context(), userID)
	if err != nil {
		return fail(c, "failed to load orders")
	}
	out := make([]orderData, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderData(o))
	}
	return ok(c, "", out)
}

// Detail handles GET /api/order/:id.  Only the buyer or the seller may
// view an order.
func (h *OrderHandler) Detail(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return fail(c, "token error")
	}
	id, err := pathID(c)
	if err != nil {
		return fail(c, "invalid order id")
	}

	o, err := h.Orders.GetByID(c.Request().Context(), id)
	if err != nil {
		return fail(c, "order does not exist")
	}
	if o.BuyerID != userID && o.SellerID != userID {
		return fail(c, "no permission to view this order")
	}
	return ok(c, "", toOrderData(o))
}

// Pay handles POST /api/order/pay.  The caller must be the buyer and the
// order must still be pending.  The book is deliberately left available;
// only the order transitions.  A paid event goes to the broker
// best-effort: broker trouble never fails the payment.
func (h *OrderHandler) Pay(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return fail(c, "token error")
	}
	orderID, err := parseFormID(c, "order_id")
	if err != nil {
		return fail(c, "missing request parameters: order_id")
	}

	ctx := c.Request().Context()
	o, err := h.Orders.GetByID(ctx, orderID)
	if err != nil {
		return fail(c, "order does not exist")
	}
	if err := o.Pay(userID); err != nil {
		switch {
		case errors.Is(err, model.ErrNotBuyer):
			return fail(c, "no permission to pay this order")
		case errors.Is(err, model.ErrNotPayable):
			return fail(c, "status does not allow payment")
		default:
			return fail(c, "order payment failed")
		}
	}
	if err := h.Orders.UpdateStatus(ctx, o.ID, o.Status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, "order does not exist")
		}
		return fail(c, "order payment failed")
	}

	h.publishPaid(ctx, o)

	return ok(c, "order paid successfully", toOrderData(o))
}

// Cancel handles POST /api/order/cancel.  Only the buyer may cancel; there
// is no status precondition, so a paid order can be cancelled as well.
func (h *OrderHandler) Cancel(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return fail(c, "token error")
	}
	orderID, err := parseFormID(c, "order_id")
	if err != nil {
		return fail(c, "missing request parameters: order_id")
	}

	ctx := c.Request().Context()
	o, err := h.Orders.GetByID(ctx, orderID)
	if err != nil {
		return fail(c, "order does not exist")
	}
	if err := o.Cancel(userID); err != nil {
		return fail(c, "no permission to cancel this order")
	}
	if err := h.Orders.UpdateStatus(ctx, o.ID, o.Status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, "order does not exist")
		}
		return fail(c, "order cancellation failed")
	}
	return ok(c, "order cancelled", toOrderData(o))
}

// publishPaid emits the order.paid event.  Errors are logged only.
func (h *OrderHandler) publishPaid(ctx context.Context, o model.Order) {
	if h.Events == nil {
		return
	}
	title := ""
	if book, err := h.Books.GetByID(ctx, o.BookID); err == nil {
		title = book.Title
	}
	ev := queue.OrderPaidEvent{
		OrderID:   o.ID,
		BuyerID:   o.BuyerID,
		SellerID:  o.SellerID,
		BookID:    o.BookID,
		BookTitle: title,
		Price:     o.Price,
		PaidAt:    time.Now().UTC().Format(timeLayout),
	}
	if err := h.Events.PublishOrderPaid(ctx, ev); err != nil {
		log.Printf("order-paid event publish failed for order %d: %v", o.ID, err)
	}
}
