package model

import "time"

// Book status values.  A book starts out available and is shown on the
// seller's /sold listing once its status is sold.  Paying an order does not
// flip the book; only the order transitions.
const (
	BookStatusAvailable = "available"
	BookStatusSold      = "sold"
)

// Book represents a second-hand listing published by a user.  Prices are
// carried as decimal strings ("10.00") end to end so the DECIMAL(10,2)
// column round-trips without float drift.
//
// Fields:
//
//	ID          – primary key identifier.
//	Title       – book title.
//	Author      – book author.
//	Description – optional free-form description.
//	Price       – positive decimal string, snapshot into orders at purchase.
//	Status      – available or sold.
//	PublisherID – user who published the listing; acts as seller.
//	CoverURL    – optional URL returned by the image-hosting service.
//	Categories  – category names attached via book_categories.
//	CreatedAt   – creation timestamp.
//	UpdatedAt   – last update timestamp.
type Book struct {
	ID          uint64    // books.id
	Title       string    // books.title
	Author      string    // books.author
	Description *string   // books.description (nullable)
	Price       string    // books.price
	Status      string    // books.status
	PublisherID uint64    // books.publisher_id
	CoverURL    *string   // books.cover_url (nullable)
	Categories  []string  // resolved category names, order-irrelevant
	CreatedAt   time.Time // books.created_at
	UpdatedAt   time.Time // books.updated_at
}

// IsAvailable reports whether the book can still be ordered.
func (b *Book) IsAvailable() bool {
	return b.Status == BookStatusAvailable
}
