package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/linqiu/bookmarket/internal/model"
)

// BookRepo persists books in the 'books' table.  Category names are loaded
// separately through CategoryRepo; see the handlers for how the two are
// combined per response.
type BookRepo struct{ DB *sql.DB }

func NewBookRepo(db *sql.DB) *BookRepo { return &BookRepo{DB: db} }

const bookCols = "id,title,author,description,price,status,publisher_id,cover_url,created_at,updated_at"

// Create inserts a book in available state and populates the generated ID
// plus the database-assigned timestamps on the given record.
func (b *BookRepo) Create(ctx context.Context, book *model.Book) error {
	res, err := b.DB.ExecContext(ctx,
		"INSERT INTO books (title, author, description, price, status, publisher_id, cover_url) VALUES (?,?,?,?,?,?,?)",
		book.Title, book.Author, book.Description, book.Price, model.BookStatusAvailable, book.PublisherID, book.CoverURL)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	book.ID = uint64(id)
	// Query back the row so status and timestamps reflect column defaults.
	stored, err := b.GetByID(ctx, book.ID)
	if err != nil {
		return err
	}
	book.Status = stored.Status
	book.CreatedAt = stored.CreatedAt
	book.UpdatedAt = stored.UpdatedAt
	return nil
}

// GetByID fetches a single book.
func (b *BookRepo) GetByID(ctx context.Context, id uint64) (model.Book, error) {
	var bk model.Book
	err := b.DB.QueryRowContext(ctx,
		"SELECT "+bookCols+" FROM books WHERE id=? LIMIT 1", id).
		Scan(&bk.ID, &bk.Title, &bk.Author, &bk.Description, &bk.Price, &bk.Status,
			&bk.PublisherID, &bk.CoverURL, &bk.CreatedAt, &bk.UpdatedAt)
	if err == sql.ErrNoRows {
		return bk, ErrNotFound
	}
	return bk, err
}

// List returns all books, newest first.
func (b *BookRepo) List(ctx context.Context) ([]model.Book, error) {
	return b.scanMany(ctx, "SELECT "+bookCols+" FROM books ORDER BY created_at DESC")
}

// ListByPublisher returns the books published by the given user.
func (b *BookRepo) ListByPublisher(ctx context.Context, publisherID uint64) ([]model.Book, error) {
	return b.scanMany(ctx,
		"SELECT "+bookCols+" FROM books WHERE publisher_id=? ORDER BY created_at DESC", publisherID)
}

// ListSoldByPublisher returns the given user's books that have been sold.
func (b *BookRepo) ListSoldByPublisher(ctx context.Context, publisherID uint64) ([]model.Book, error) {
	return b.scanMany(ctx,
		"SELECT "+bookCols+" FROM books WHERE publisher_id=? AND status=? ORDER BY updated_at DESC",
		publisherID, model.BookStatusSold)
}

// Search matches the query case-insensitively against title and author.
func (b *BookRepo) Search(ctx context.Context, query string) ([]model.Book, error) {
	like := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	return b.scanMany(ctx,
		"SELECT "+bookCols+" FROM books WHERE LOWER(title) LIKE ? OR LOWER(author) LIKE ? ORDER BY created_at DESC",
		like, like)
}

// UpdateDescription replaces the description of a book.  The caller is not
// required to be the publisher; ownership is not checked anywhere on the
// update path.
func (b *BookRepo) UpdateDescription(ctx context.Context, id uint64, description *string) error {
	res, err := b.DB.ExecContext(ctx,
		"UPDATE books SET description=? WHERE id=?", description, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// RowsAffected is 0 both for a missing row and for an unchanged
		// description; distinguish with an existence probe.
		if _, err := b.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a book unconditionally when present.  Referencing orders
// and category links go away via ON DELETE CASCADE.
func (b *BookRepo) Delete(ctx context.Context, id uint64) error {
	res, err := b.DB.ExecContext(ctx, "DELETE FROM books WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (b *BookRepo) scanMany(ctx context.Context, query string, args ...any) ([]model.Book, error) {
	rows, err := b.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Book
	for rows.Next() {
		var bk model.Book
		if err := rows.Scan(&bk.ID, &bk.Title, &bk.Author, &bk.Description, &bk.Price, &bk.Status,
			&bk.PublisherID, &bk.CoverURL, &bk.CreatedAt, &bk.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, bk)
	}
	return out, rows.Err()
}
