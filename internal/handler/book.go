package handler

import (
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/linqiu/bookmarket/internal/model"
	"github.com/linqiu/bookmarket/internal/repository"
)

// BookHandler bundles dependencies for the catalog endpoints.  The cover
// uploader may be nil-configured; publishing then proceeds without a cover.
type BookHandler struct {
	Books      BookStore
	Categories CategoryStore
	Covers     CoverUploader
}

func NewBookHandler(books BookStore, categories CategoryStore, covers CoverUploader) *BookHandler {
	if books == nil || categories == nil {
		panic("nil store passed to NewBookHandler")
	}
	return &BookHandler{Books: books, Categories: categories, Covers: covers}
}

// publishReq carries the validated publish fields.  The price arrives as a
// form string and is parsed before validation so gt=0 applies to the value.
type publishReq struct {
	Title  string  `validate:"required"`
	Author string  `validate:"required"`
	Price  float64 `validate:"required,gt=0"`
}

// bookData is the serialized book shape shared by every catalog response.
type bookData struct {
	ID          uint64   `json:"id"`
	Title       string   `json:"title"`
	Author      string   `json:"author"`
	Description *string  `json:"description,omitempty"`
	Price       string   `json:"price"`
	Status      string   `json:"status"`
	PublisherID uint64   `json:"publisher_id,omitempty"`
	CoverURL    *string  `json:"cover_url,omitempty"`
	Categories  []string `json:"categories"`
	CreatedAt   string   `json:"created_at"`
}

func toBookData(b model.Book, withPublisher bool) bookData {
	d := bookData{
		ID:          b.ID,
		Title:       b.Title,
		Author:      b.Author,
		Description: b.Description,
		Price:       b.Price,
		Status:      b.Status,
		CoverURL:    b.CoverURL,
		Categories:  b.Categories,
		CreatedAt:   b.CreatedAt.Format(timeLayout),
	}
	if d.Categories == nil {
		d.Categories = []string{}
	}
	if withPublisher {
		d.PublisherID = b.PublisherID
	}
	return d
}

// Publish handles POST /api/book/publish (multipart).  Title, author and a
// positive price are required.  Categories arrive as repeated `categories`
// fields and are resolved get-or-create.  A cover file is uploaded to the
// image host when present; upload failure is logged and the book is
// published without a cover rather than retried.
func (h *BookHandler) Publish(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return fail(c, "token error")
	}

	title := c.FormValue("title")
	author := c.FormValue("author")
	priceStr := c.FormValue("price")
	if title == "" || author == "" || priceStr == "" {
		return fail(c, "missing required parameters")
	}
	price, err := strconv.ParseFloat(priceStr, 64)
	if err != nil {
		return fail(c, "book creation failed: invalid price")
	}
	if err := c.Validate(&publishReq{Title: title, Author: author, Price: price}); err != nil {
		return fail(c, "book creation failed: price must be greater than zero")
	}

	book := &model.Book{
		Title:       title,
		Author:      author,
		Price:       fmt.Sprintf("%.2f", price),
		PublisherID: userID,
	}
	if desc := c.FormValue("description"); desc != "" {
		book.Description = &desc
	}

	ctx := c.Request().Context()

	if fh, err := c.FormFile("cover"); err == nil && fh != nil && h.Covers != nil {
		src, err := fh.Open()
		if err == nil {
			url, upErr := h.Covers.Upload(ctx, fh.Filename, src)
			_ = src.Close()
			if upErr != nil {
				log.Printf("imagehost: cover upload failed: %v", upErr)
			} else {
				book.CoverURL = &url
			}
		}
	}

	if err := h.Books.Create(ctx, book); err != nil {
		return fail(c, "book creation failed")
	}

	categories := formList(c, "categories")
	if len(categories) > 0 {
		if err := h.Categories.SetForBook(ctx, book.ID, categories); err != nil {
			return fail(c, "book creation failed")
		}
	}
	names, err := h.Categories.NamesForBook(ctx, book.ID)
	if err != nil {
		return fail(c, "book creation failed")
	}
	book.Categories = names

	return ok(c, "book created successfully", toBookData(*book, false))
}

// List handles GET /api/book/list.
func (h *BookHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	books, err := h.Books.List(ctx)
	if err != nil {
		return fail(c, "failed to load books")
	}
	return ok(c, "", h.withCategories(c, books, false))
}

// Detail handles GET /api/book/:id.
func (h *BookHandler) Detail(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, "invalid book id")
	}
	ctx := c.Request().Context()
	book, err := h.Books.GetByID(ctx, id)
	if err != nil {
		return fail(c, "Book does not exist")
	}
	names, err := h.Categories.NamesForBook(ctx, book.ID)
	if err != nil {
		return fail(c, "failed to load book")
	}
	book.Categories = names
	return ok(c, "", toBookData(book, false))
}

// Update handles POST /api/book/update/:id.  It replaces the description
// and, when categories are supplied, the whole association set.  The
// caller is not required to be the publisher.
func (h *BookHandler) Update(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return fail(c, "token error")
	}
	id, err := pathID(c)
	if err != nil {
		return fail(c, "invalid book id")
	}

	ctx := c.Request().Context()
	if _, err := h.Books.GetByID(ctx, id); err != nil {
		return fail(c, "book does not exist")
	}

	var desc *string
	if d := c.FormValue("description"); d != "" {
		desc = &d
	}
	if err := h.Books.UpdateDescription(ctx, id, desc); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, "book does not exist")
		}
		return fail(c, "book update failed")
	}

	if categories := formList(c, "categories"); len(categories) > 0 {
		if err := h.Categories.SetForBook(ctx, id, categories); err != nil {
			return fail(c, "book update failed")
		}
	}

	book, err := h.Books.GetByID(ctx, id)
	if err != nil {
		return fail(c, "book update failed")
	}
	names, _ := h.Categories.NamesForBook(ctx, id)
	book.Categories = names
	// The response reports the caller, not the stored publisher.
	book.PublisherID = userID
	return ok(c, "book updated successfully", toBookData(book, true))
}

// Delete handles DELETE /api/book/delete/:id.  Deletion is unconditional
// when the book exists: neither ownership nor referencing orders are
// checked; orders disappear via the cascade.
func (h *BookHandler) Delete(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return fail(c, "token error")
	}
	id, err := pathID(c)
	if err != nil {
		return fail(c, "invalid book id")
	}

	if err := h.Books.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, "book does not exist")
		}
		return fail(c, "book deletion failed")
	}
	return ok(c, "book deleted successfully", echo.Map{
		"publisher_id": userID,
		"book_id":      id,
	})
}

// Published handles GET /api/book/published, the caller's own listings.
func (h *BookHandler) Published(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return fail(c, "token error")
	}
	books, err := h.Books.ListByPublisher(c.Request().Context(), userID)
	if err != nil {
		return fail(c, "failed to load books")
	}
	return ok(c, "", h.withCategories(c, books, true))
}

// Search handles GET /api/book/search?query=.
func (h *BookHandler) Search(c echo.Context) error {
	books, err := h.Books.Search(c.Request().Context(), c.QueryParam("query"))
	if err != nil {
		return fail(c, "search failed")
	}
	return ok(c, "", h.withCategories(c, books, false))
}

// Sold handles GET /api/book/sold, the caller's own sold listings.
func (h *BookHandler) Sold(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return fail(c, "token error")
	}
	books, err := h.Books.ListSoldByPublisher(c.Request().Context(), userID)
	if err != nil {
		return fail(c, "failed to load books")
	}
	return ok(c, "", h.withCategories(c, books, true))
}

// withCategories attaches category names to each book and serializes the
// slice.  One query per book.
func (h *BookHandler) withCategories(c echo.Context, books []model.Book, withPublisher bool) []bookData {
	ctx := c.Request().Context()
	out := make([]bookData, 0, len(books))
	for _, b := range books {
		names, err := h.Categories.NamesForBook(ctx, b.ID)
		if err == nil {
			b.Categories = names
		}
		out = append(out, toBookData(b, withPublisher))
	}
	return out
}

// formList reads all values of a repeated form field, from either a
// urlencoded or multipart body.
func formList(c echo.Context, key string) []string {
	params, err := c.FormParams()
	if err != nil {
		return nil
	}
	return params[key]
}
