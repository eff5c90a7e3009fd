package model

// Category is a tag-like label attached to books.  Categories are created
// on demand when a publish or update references an unknown name and are
// never deleted.
type Category struct {
	ID   uint64 // categories.id
	Name string // categories.name
}
