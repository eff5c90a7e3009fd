package handler

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/linqiu/bookmarket/internal/model"
)

func testBook() model.Book {
	return model.Book{ID: 5, Title: "A", Author: "B", Price: "10.00",
		Status: model.BookStatusAvailable, PublisherID: 1}
}

func TestBuy_Success(t *testing.T) {
	books := &mockBookStore{getByIDFn: func(ctx context.Context, id uint64) (model.Book, error) {
		require.Equal(t, uint64(5), id)
		return testBook(), nil
	}}
	var created *model.Order
	orders := &mockOrderStore{createFn: func(ctx context.Context, o *model.Order) error {
		o.ID = 9
		created = o
		return nil
	}}
	h := NewOrderHandler(orders, books, nil)

	c, rec := newFormContext(t, http.MethodPost, "/api/order/buy",
		url.Values{"book_id": {"5"}}, 2)
	require.NoError(t, h.Buy(c))

	code, _, data := decodeEnvelope(t, rec)
	require.Equal(t, 0, code)
	require.NotNil(t, created)
	require.Equal(t, model.OrderStatusPending, created.Status)
	require.Equal(t, "10.00", data["price"])
	require.EqualValues(t, 1, data["seller_id"])
	require.EqualValues(t, 2, data["buyer_id"])
}

func TestBuy_OwnBook(t *testing.T) {
	books := &mockBookStore{getByIDFn: func(ctx context.Context, id uint64) (model.Book, error) {
		return testBook(), nil
	}}
	h := NewOrderHandler(&mockOrderStore{}, books, nil)

	// caller 1 is the publisher of the test book
	c, rec := newFormContext(t, http.MethodPost, "/api/order/buy",
		url.Values{"book_id": {"5"}}, 1)
	require.NoError(t, h.Buy(c))

	code, msg, _ := decodeEnvelope(t, rec)
	require.Equal(t, 1, code)
	require.Equal(t, "cannot buy own book", msg)
}

func TestBuy_SoldBook(t *testing.T) {
	books := &mockBookStore{getByIDFn: func(ctx context.Context, id uint64) (model.Book, error) {
		b := testBook()
		b.Status = model.BookStatusSold
		return b, nil
	}}
	h := NewOrderHandler(&mockOrderStore{}, books, nil)

	c, rec := newFormContext(t, http.MethodPost, "/api/order/buy",
		url.Values{"book_id": {"5"}}, 2)
	require.NoError(t, h.Buy(c))

	code, msg, _ := decodeEnvelope(t, rec)
	require.Equal(t, 1, code)
	require.Equal(t, "book does not exist or unavailable", msg)
}

func TestBuy_MissingBookID(t *testing.T) {
	h := NewOrderHandler(&mockOrderStore{}, &mockBookStore{}, nil)

	c, rec := newFormContext(t, http.MethodPost, "/api/order/buy", url.Values{}, 2)
	require.NoError(t, h.Buy(c))

	code, msg, _ := decodeEnvelope(t, rec)
	require.Equal(t, 1, code)
	require.Equal(t, "missing request parameters", msg)
}

func pendingOrder() model.Order {
	return model.Order{ID: 9, BuyerID: 2, SellerID: 1, BookID: 5,
		Price: "10.00", Status: model.OrderStatusPending}
}

func TestPay_Success_PublishesEvent(t *testing.T) {
	var updatedStatus string
	orders := &mockOrderStore{
		getByIDFn: func(ctx context.Context, id uint64) (model.Order, error) {
			return pendingOrder(), nil
		},
		updateFn: func(ctx context.Context, id uint64, status string) error {
			updatedStatus = status
			return nil
		},
	}
	books := &mockBookStore{getByIDFn: func(ctx context.Context, id uint64) (model.Book, error) {
		return testBook(), nil
	}}
	pub := &mockPublisher{}
	h := NewOrderHandler(orders, books, pub)

	c, rec := newFormContext(t, http.MethodPost, "/api/order/pay",
		url.Values{"order_id": {"9"}}, 2)
	require.NoError(t, h.Pay(c))

	code, _, data := decodeEnvelope(t, rec)
	require.Equal(t, 0, code)
	require.Equal(t, model.OrderStatusPaid, data["status"])
	require.Equal(t, model.OrderStatusPaid, updatedStatus)

	require.Len(t, pub.events, 1)
	require.Equal(t, uint64(9), pub.events[0].OrderID)
	require.Equal(t, "A", pub.events[0].BookTitle)
}

func TestPay_NotBuyer(t *testing.T) {
	orders := &mockOrderStore{getByIDFn: func(ctx context.Context, id uint64) (model.Order, error) {
		return pendingOrder(), nil
	}}
	h := NewOrderHandler(orders, &mockBookStore{}, nil)

	c, rec := newFormContext(t, http.MethodPost, "/api/order/pay",
		url.Values{"order_id": {"9"}}, 3)
	require.NoError(t, h.Pay(c))

	code, msg, _ := decodeEnvelope(t, rec)
	require.Equal(t, 1, code)
	require.Equal(t, "no permission to pay this order", msg)
}

func TestPay_AlreadyPaid(t *testing.T) {
	orders := &mockOrderStore{getByIDFn: func(ctx context.Context, id uint64) (model.Order, error) {
		o := pendingOrder()
		o.Status = model.OrderStatusPaid
		return o, nil
	}}
	h := NewOrderHandler(orders, &mockBookStore{}, nil)

	c, rec := newFormContext(t, http.MethodPost, "/api/order/pay",
		url.Values{"order_id": {"9"}}, 2)
	require.NoError(t, h.Pay(c))

	code, msg, _ := decodeEnvelope(t, rec)
	require.Equal(t, 1, code)
	require.Equal(t, "status does not allow payment", msg)
}

func TestPay_BrokerFailureDoesNotFailPayment(t *testing.T) {
	orders := &mockOrderStore{getByIDFn: func(ctx context.Context, id uint64) (model.Order, error) {
		return pendingOrder(), nil
	}}
	pub := &mockPublisher{err: context.DeadlineExceeded}
	h := NewOrderHandler(orders, &mockBookStore{}, pub)

	c, rec := newFormContext(t, http.MethodPost, "/api/order/pay",
		url.Values{"order_id": {"9"}}, 2)
	require.NoError(t, h.Pay(c))

	code, _, _ := decodeEnvelope(t, rec)
	require.Equal(t, 0, code)
}

func TestCancel_NotBuyer(t *testing.T) {
	orders := &mockOrderStore{getByIDFn: func(ctx context.Context, id uint64) (model.Order, error) {
		return pendingOrder(), nil
	}}
	h := NewOrderHandler(orders, &mockBookStore{}, nil)

	c, rec := newFormContext(t, http.MethodPost, "/api/order/cancel",
		url.Values{"order_id": {"9"}}, 3)
	require.NoError(t, h.Cancel(c))

	code, msg, _ := decodeEnvelope(t, rec)
	require.Equal(t, 1, code)
	require.Equal(t, "no permission to cancel this order", msg)
}

// Cancelling a paid order goes through: the endpoint applies no status
// precondition.
func TestCancel_PaidOrderIsPermitted(t *testing.T) {
	orders := &mockOrderStore{getByIDFn: func(ctx context.Context, id uint64) (model.Order, error) {
		o := pendingOrder()
		o.Status = model.OrderStatusPaid
		return o, nil
	}}
	h := NewOrderHandler(orders, &mockBookStore{}, nil)

	c, rec := newFormContext(t, http.MethodPost, "/api/order/cancel",
		url.Values{"order_id": {"9"}}, 2)
	require.NoError(t, h.Cancel(c))

	code, _, data := decodeEnvelope(t, rec)
	require.Equal(t, 0, code)
	require.Equal(t, model.OrderStatusCancelled, data["status"])
}

func TestDetail_SellerMayView(t *testing.T) {
	orders := &mockOrderStore{getByIDFn: func(ctx context.Context, id uint64) (model.Order, error) {
		return pendingOrder(), nil
	}}
	h := NewOrderHandler(orders, &mockBookStore{}, nil)

	c, rec := newFormContext(t, http.MethodGet, "/api/order/9", nil, 1)
	c.SetParamNames("id")
	c.SetParamValues("9")
	require.NoError(t, h.Detail(c))

	code, _, _ := decodeEnvelope(t, rec)
	require.Equal(t, 0, code)
}

func TestDetail_StrangerMayNotView(t *testing.T) {
	orders := &mockOrderStore{getByIDFn: func(ctx context.Context, id uint64) (model.Order, error) {
		return pendingOrder(), nil
	}}
	h := NewOrderHandler(orders, &mockBookStore{}, nil)

	c, rec := newFormContext(t, http.MethodGet, "/api/order/9", nil, 4)
	c.SetParamNames("id")
	c.SetParamValues("9")
	require.NoError(t, h.Detail(c))

	code, msg, _ := decodeEnvelope(t, rec)
	require.Equal(t, 1, code)
	require.Equal(t, "no permission to view this order", msg)
}
