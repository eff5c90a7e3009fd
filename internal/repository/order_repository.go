package repository

import (
	"context"
	"database/sql"

	"github.com/linqiu/bookmarket/internal/model"
)

// OrderRepo persists orders in the 'orders' table.
type OrderRepo struct{ DB *sql.DB }

func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{DB: db} }

const orderCols = "id,buyer_id,seller_id,book_id,price,status,created_at,updated_at"

// Create inserts a new order and populates the generated ID and the
// database-assigned timestamps on the given record.
func (r *OrderRepo) Create(ctx context.Context, o *model.Order) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO orders (buyer_id, seller_id, book_id, price, status) VALUES (?,?,?,?,?)",
		o.BuyerID, o.SellerID, o.BookID, o.Price, o.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	o.ID = uint64(id)
	stored, err := r.GetByID(ctx, o.ID)
	if err != nil {
		return err
	}
	o.CreatedAt = stored.CreatedAt
	o.UpdatedAt = stored.UpdatedAt
	return nil
}

// GetByID fetches a single order.
func (r *OrderRepo) GetByID(ctx context.Context, id uint64) (model.Order, error) {
	var o model.Order
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+orderCols+" FROM orders WHERE id=? LIMIT 1", id).
		Scan(&o.ID, &o.BuyerID, &o.SellerID, &o.BookID, &o.Price, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if err == sql.ErrNoRows {
		return o, ErrNotFound
	}
	return o, err
}

// ListByBuyer returns the orders placed by the given user, newest first.
func (r *OrderRepo) ListByBuyer(ctx context.Context, buyerID uint64) ([]model.Order, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+orderCols+" FROM orders WHERE buyer_id=? ORDER BY created_at DESC", buyerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Order
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(&o.ID, &o.BuyerID, &o.SellerID, &o.BookID, &o.Price, &o.Status,
			&o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// UpdateStatus writes the status of an order after a guard transition has
// been applied in memory.  updated_at advances via the column default.
func (r *OrderRepo) UpdateStatus(ctx context.Context, id uint64, status string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE orders SET status=? WHERE id=?", status, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}
