package handler

// Function-field mocks for the store interfaces.  Each test sets only the
// functions it needs; unset functions return zero values.

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/linqiu/bookmarket/internal/model"
	"github.com/linqiu/bookmarket/internal/queue"
	"github.com/linqiu/bookmarket/internal/repository"
	"github.com/linqiu/bookmarket/internal/validation"
)

type mockUserStore struct {
	createFn         func(ctx context.Context, username, password, email string, cost int) (uint64, error)
	getByUsernameFn  func(ctx context.Context, username string) (model.User, error)
	getByIDFn        func(ctx context.Context, id uint64) (model.User, error)
	getByEmailFn     func(ctx context.Context, email string) (model.User, error)
	updatePasswordFn func(ctx context.Context, id uint64, password string, cost int) error
}

var _ UserStore = (*mockUserStore)(nil)

func (m *mockUserStore) Create(ctx context.Context, username, password, email string, cost int) (uint64, error) {
	if m.createFn == nil {
		return 1, nil
	}
	return m.createFn(ctx, username, password, email, cost)
}

func (m *mockUserStore) GetByUsername(ctx context.Context, username string) (model.User, error) {
	if m.getByUsernameFn == nil {
		return model.User{}, repository.ErrNotFound
	}
	return m.getByUsernameFn(ctx, username)
}

func (m *mockUserStore) GetByID(ctx context.Context, id uint64) (model.User, error) {
	if m.getByIDFn == nil {
		return model.User{}, repository.ErrNotFound
	}
	return m.getByIDFn(ctx, id)
}

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (model.User, error) {
	if m.getByEmailFn == nil {
		return model.User{}, repository.ErrNotFound
	}
	return m.getByEmailFn(ctx, email)
}

func (m *mockUserStore) UpdatePassword(ctx context.Context, id uint64, password string, cost int) error {
	if m.updatePasswordFn == nil {
		return nil
	}
	return m.updatePasswordFn(ctx, id, password, cost)
}

type mockBookStore struct {
	createFn  func(ctx context.Context, b *model.Book) error
	getByIDFn func(ctx context.Context, id uint64) (model.Book, error)
	listFn    func(ctx context.Context) ([]model.Book, error)
	byPubFn   func(ctx context.Context, publisherID uint64) ([]model.Book, error)
	soldFn    func(ctx context.Context, publisherID uint64) ([]model.Book, error)
	searchFn  func(ctx context.Context, query string) ([]model.Book, error)
	updateFn  func(ctx context.Context, id uint64, description *string) error
	deleteFn  func(ctx context.Context, id uint64) error
}

var _ BookStore = (*mockBookStore)(nil)

func (m *mockBookStore) Create(ctx context.Context, b *model.Book) error {
	if m.createFn == nil {
		b.ID = 1
		b.Status = model.BookStatusAvailable
		return nil
	}
	return m.createFn(ctx, b)
}

func (m *mockBookStore) GetByID(ctx context.Context, id uint64) (model.Book, error) {
	if m.getByIDFn == nil {
		return model.Book{}, repository.ErrNotFound
	}
	return m.getByIDFn(ctx, id)
}

func (m *mockBookStore) List(ctx context.Context) ([]model.Book, error) {
	if m.listFn == nil {
		return nil, nil
	}
	return m.listFn(ctx)
}

func (m *mockBookStore) ListByPublisher(ctx context.Context, publisherID uint64) ([]model.Book, error) {
	if m.byPubFn == nil {
		return nil, nil
	}
	return m.byPubFn(ctx, publisherID)
}

func (m *mockBookStore) ListSoldByPublisher(ctx context.Context, publisherID uint64) ([]model.Book, error) {
	if m.soldFn == nil {
		return nil, nil
	}
	return m.soldFn(ctx, publisherID)
}

func (m *mockBookStore) Search(ctx context.Context, query string) ([]model.Book, error) {
	if m.searchFn == nil {
		return nil, nil
	}
	return m.searchFn(ctx, query)
}

func (m *mockBookStore) UpdateDescription(ctx context.Context, id uint64, description *string) error {
	if m.updateFn == nil {
		return nil
	}
	return m.updateFn(ctx, id, description)
}

func (m *mockBookStore) Delete(ctx context.Context, id uint64) error {
	if m.deleteFn == nil {
		return nil
	}
	return m.deleteFn(ctx, id)
}

type mockCategoryStore struct {
	sets  map[uint64][]string
	setFn func(ctx context.Context, bookID uint64, names []string) error
}

var _ CategoryStore = (*mockCategoryStore)(nil)

func newMockCategoryStore() *mockCategoryStore {
	return &mockCategoryStore{sets: map[uint64][]string{}}
}

func (m *mockCategoryStore) SetForBook(ctx context.Context, bookID uint64, names []string) error {
	if m.setFn != nil {
		return m.setFn(ctx, bookID, names)
	}
	m.sets[bookID] = names
	return nil
}

func (m *mockCategoryStore) NamesForBook(ctx context.Context, bookID uint64) ([]string, error) {
	return m.sets[bookID], nil
}

type mockOrderStore struct {
	createFn  func(ctx context.Context, o *model.Order) error
	getByIDFn func(ctx context.Context, id uint64) (model.Order, error)
	listFn    func(ctx context.Context, buyerID uint64) ([]model.Order, error)
	updateFn  func(ctx context.Context, id uint64, status string) error
}

var _ OrderStore = (*mockOrderStore)(nil)

func (m *mockOrderStore) Create(ctx context.Context, o *model.Order) error {
	if m.createFn == nil {
		o.ID = 1
		return nil
	}
	return m.createFn(ctx, o)
}

func (m *mockOrderStore) GetByID(ctx context.Context, id uint64) (model.Order, error) {
	if m.getByIDFn == nil {
		return model.Order{}, repository.ErrNotFound
	}
	return m.getByIDFn(ctx, id)
}

func (m *mockOrderStore) ListByBuyer(ctx context.Context, buyerID uint64) ([]model.Order, error) {
	if m.listFn == nil {
		return nil, nil
	}
	return m.listFn(ctx, buyerID)
}

func (m *mockOrderStore) UpdateStatus(ctx context.Context, id uint64, status string) error {
	if m.updateFn == nil {
		return nil
	}
	return m.updateFn(ctx, id, status)
}

type mockCodeStore struct {
	putFn    func(ctx context.Context, email, code string) error
	verifyFn func(ctx context.Context, email, code string) error
}

var _ CodeStore = (*mockCodeStore)(nil)

func (m *mockCodeStore) Put(ctx context.Context, email, code string) error {
	if m.putFn == nil {
		return nil
	}
	return m.putFn(ctx, email, code)
}

func (m *mockCodeStore) Verify(ctx context.Context, email, code string) error {
	if m.verifyFn == nil {
		return nil
	}
	return m.verifyFn(ctx, email, code)
}

type mockMailer struct {
	sendFn func(to, code string) error
	sent   []string
}

var _ Mailer = (*mockMailer)(nil)

func (m *mockMailer) SendCode(to, code string) error {
	if m.sendFn != nil {
		return m.sendFn(to, code)
	}
	m.sent = append(m.sent, to)
	return nil
}

type mockPublisher struct {
	events []queue.OrderPaidEvent
	err    error
}

var _ PaidPublisher = (*mockPublisher)(nil)

func (m *mockPublisher) PublishOrderPaid(ctx context.Context, ev queue.OrderPaidEvent) error {
	m.events = append(m.events, ev)
	return m.err
}

// ----- request helpers -----

// newFormContext builds an Echo context around a urlencoded form POST with
// the validator registered, mirroring how the server wires Echo.
func newFormContext(t *testing.T, method, target string, form url.Values, userID uint64) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	e.Validator = validation.New()

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != 0 {
		c.Set("user_id", userID)
	}
	return c, rec
}

// decodeEnvelope unpacks the uniform response shape.
func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) (code int, msg string, data map[string]any) {
	t.Helper()

	require.Equal(t, http.StatusOK, rec.Code)
	var out struct {
		Code int            `json:"code"`
		Msg  string         `json:"msg"`
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out.Code, out.Msg, out.Data
}

// decodeListEnvelope is decodeEnvelope for responses whose data is an array.
func decodeListEnvelope(t *testing.T, rec *httptest.ResponseRecorder) (code int, data []map[string]any) {
	t.Helper()

	require.Equal(t, http.StatusOK, rec.Code)
	var out struct {
		Code int              `json:"code"`
		Data []map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out.Code, out.Data
}
