package repository

import (
	"context"
	"database/sql"
	"strings"
)

// CategoryRepo persists categories and the book_categories association.
type CategoryRepo struct{ DB *sql.DB }

func NewCategoryRepo(db *sql.DB) *CategoryRepo { return &CategoryRepo{DB: db} }

// GetOrCreate resolves a category name to its ID, creating the row when the
// name is unknown.  Names are stored trimmed but otherwise verbatim.
func (r *CategoryRepo) GetOrCreate(ctx context.Context, name string) (uint64, error) {
	name = strings.TrimSpace(name)
	var id uint64
	err := r.DB.QueryRowContext(ctx,
		"SELECT id FROM categories WHERE name=? LIMIT 1", name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx, "INSERT INTO categories (name) VALUES (?)", name)
	if err != nil {
		// Lost a race with a concurrent insert of the same name; re-read.
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			if err2 := r.DB.QueryRowContext(ctx,
				"SELECT id FROM categories WHERE name=? LIMIT 1", name).Scan(&id); err2 == nil {
				return id, nil
			}
		}
		return 0, err
	}
	n, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(n), nil
}

// SetForBook replaces the category association set of a book with the given
// names, resolving each name get-or-create.  An empty slice leaves the book
// uncategorized.  Duplicate (book, category) pairs are not guarded against
// beyond in-call deduplication.
func (r *CategoryRepo) SetForBook(ctx context.Context, bookID uint64, names []string) error {
	if _, err := r.DB.ExecContext(ctx,
		"DELETE FROM book_categories WHERE book_id=?", bookID); err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		catID, err := r.GetOrCreate(ctx, name)
		if err != nil {
			return err
		}
		if _, err := r.DB.ExecContext(ctx,
			"INSERT INTO book_categories (book_id, category_id) VALUES (?,?)",
			bookID, catID); err != nil {
			return err
		}
	}
	return nil
}

// NamesForBook returns the category names attached to a book.  The order is
// not significant.
func (r *CategoryRepo) NamesForBook(ctx context.Context, bookID uint64) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT c.name FROM categories c
		 JOIN book_categories bc ON bc.category_id = c.id
		 WHERE bc.book_id = ?`, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}
