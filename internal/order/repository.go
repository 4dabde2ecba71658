package order

import (
	"context"
	"database/sql"
	"errors"

	"agrishop-be/internal/apperror"
	"agrishop-be/internal/db"
	"agrishop-be/internal/logger"

	"go.uber.org/zap"
)

// Repository is the order ledger. Bound to a *sql.Tx it takes part in the
// caller's transaction.
type Repository interface {
	InsertOrder(ctx context.Context, o *Order) error
	InsertLineItems(ctx context.Context, items []LineItem) error
	// Get returns the order with its line items in cart order.
	Get(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context) ([]Order, error)
	// UpdateStatus moves the order to `to` only while it is still in
	// `from`. It reports false when the order was not in `from`.
	UpdateStatus(ctx context.Context, id string, from, to Status) (bool, error)
}

const orderColumns = `id, customer_name, customer_email, customer_phone, total_amount, status, created_at, updated_at`

type repository struct {
	db db.DBTX
}

func NewRepository(conn db.DBTX) Repository {
	return &repository{db: conn}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (Order, error) {
	var o Order
	err := row.Scan(
		&o.ID,
		&o.Customer.Name,
		&o.Customer.Email,
		&o.Customer.Phone,
		&o.TotalAmount,
		&o.Status,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	return o, err
}

func (r *repository) InsertOrder(ctx context.Context, o *Order) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO orders (
			id, customer_name, customer_email, customer_phone,
			total_amount, status, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		o.ID,
		o.Customer.Name,
		o.Customer.Email,
		o.Customer.Phone,
		o.TotalAmount,
		o.Status,
		o.CreatedAt,
		o.UpdatedAt,
	)
	if err != nil {
		return apperror.Infra("insert order", err)
	}
	return nil
}

func (r *repository) InsertLineItems(ctx context.Context, items []LineItem) error {
	for _, li := range items {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO order_items (
				id, order_id, product_id, product_name,
				quantity, price_at_time, position, created_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		`,
			li.ID,
			li.OrderID,
			li.ProductID,
			li.ProductName,
			li.Quantity,
			li.PriceAtTime,
			li.Position,
			li.CreatedAt,
		)
		if err != nil {
			return apperror.Infra("insert order item", err)
		}
	}
	return nil
}

func (r *repository) Get(ctx context.Context, id string) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "GetOrder"),
		zap.String("order_id", id),
	)

	o, err := scanOrder(r.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE id = $1
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(id)
	}
	if err != nil {
		log.Error("failed to load order", zap.Error(err))
		return nil, apperror.Infra("get order", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, product_name,
		       quantity, price_at_time, position, created_at
		FROM order_items
		WHERE order_id = $1
		ORDER BY position
	`, id)
	if err != nil {
		log.Error("failed to load order items", zap.Error(err))
		return nil, apperror.Infra("get order items", err)
	}
	defer rows.Close()

	o.Items = []LineItem{}
	for rows.Next() {
		var (
			li        LineItem
			productID sql.NullString
		)
		if err := rows.Scan(
			&li.ID,
			&li.OrderID,
			&productID,
			&li.ProductName,
			&li.Quantity,
			&li.PriceAtTime,
			&li.Position,
			&li.CreatedAt,
		); err != nil {
			return nil, apperror.Infra("scan order item", err)
		}
		if productID.Valid {
			pid := productID.String
			li.ProductID = &pid
		}
		o.Items = append(o.Items, li)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Infra("iterate order items", err)
	}

	return &o, nil
}

func (r *repository) List(ctx context.Context) ([]Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, apperror.Infra("list orders", err)
	}
	defer rows.Close()

	orders := []Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, apperror.Infra("scan order", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Infra("iterate orders", err)
	}

	return orders, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id string, from, to Status) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`, id, from, to)
	if err != nil {
		return false, apperror.Infra("update order status", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, apperror.Infra("update order status", err)
	}
	return affected == 1, nil
}
