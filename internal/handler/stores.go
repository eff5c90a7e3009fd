package handler

// This file declares the capabilities handlers depend on.  Handlers never
// touch *sql.DB or process-wide state directly; every store, the token
// verifier, the mailer, the cover uploader and the event publisher are
// injected, which is also what makes the handler tests below possible
// without a database.

import (
	"context"
	"io"

	"github.com/linqiu/bookmarket/internal/model"
	"github.com/linqiu/bookmarket/internal/queue"
)

// UserStore persists user accounts.
type UserStore interface {
	Create(ctx context.Context, username, password, email string, cost int) (uint64, error)
	GetByUsername(ctx context.Context, username string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	UpdatePassword(ctx context.Context, id uint64, password string, cost int) error
}

// BookStore persists book listings.
type BookStore interface {
	Create(ctx context.Context, b *model.Book) error
	GetByID(ctx context.Context, id uint64) (model.Book, error)
	List(ctx context.Context) ([]model.Book, error)
	ListByPublisher(ctx context.Context, publisherID uint64) ([]model.Book, error)
	ListSoldByPublisher(ctx context.Context, publisherID uint64) ([]model.Book, error)
	Search(ctx context.Context, query string) ([]model.Book, error)
	UpdateDescription(ctx context.Context, id uint64, description *string) error
	Delete(ctx context.Context, id uint64) error
}

// CategoryStore manages the book-category association.
type CategoryStore interface {
	SetForBook(ctx context.Context, bookID uint64, names []string) error
	NamesForBook(ctx context.Context, bookID uint64) ([]string, error)
}

// OrderStore persists purchase orders.
type OrderStore interface {
	Create(ctx context.Context, o *model.Order) error
	GetByID(ctx context.Context, id uint64) (model.Order, error)
	ListByBuyer(ctx context.Context, buyerID uint64) ([]model.Order, error)
	UpdateStatus(ctx context.Context, id uint64, status string) error
}

// CodeStore caches verification codes with their TTL.
type CodeStore interface {
	Put(ctx context.Context, email, code string) error
	Verify(ctx context.Context, email, code string) error
}

// Mailer delivers verification codes.
type Mailer interface {
	SendCode(to, code string) error
}

// CoverUploader stores cover images on the external image host.
type CoverUploader interface {
	Upload(ctx context.Context, filename string, r io.Reader) (string, error)
}

// PaidPublisher announces paid orders on the message broker.
type PaidPublisher interface {
	PublishOrderPaid(ctx context.Context, ev queue.OrderPaidEvent) error
}
