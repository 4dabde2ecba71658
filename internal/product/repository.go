package product

import (
	"context"
	"database/sql"
	"errors"

	"agrishop-be/internal/apperror"
	"agrishop-be/internal/db"
	"agrishop-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// Repository is the catalog store. Bound to a *sql.Tx it takes part in the
// caller's transaction.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id string) (*Product, error)
	// GetForUpdate loads and row-locks the given products. Missing ids are
	// simply absent from the result.
	GetForUpdate(ctx context.Context, ids []string) (map[string]Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) error
	// DecrementStock subtracts qty only while stock >= qty. It reports
	// false when the condition no longer holds.
	DecrementStock(ctx context.Context, id string, qty int) (bool, error)
	IncrementStock(ctx context.Context, id string, qty int) error
}

const productColumns = `id, name, description, image_url, price, category, stock, created_at, updated_at`

type repository struct {
	db db.DBTX
}

func NewRepository(conn db.DBTX) Repository {
	return &repository{db: conn}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (Product, error) {
	var p Product
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.ImageURL,
		&p.Price,
		&p.Category,
		&p.Stock,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

func (r *repository) List(ctx context.Context) ([]Product, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, apperror.Infra("list products", err)
	}
	defer rows.Close()

	products := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, apperror.Infra("scan product", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Infra("iterate products", err)
	}

	return products, nil
}

func (r *repository) Get(ctx context.Context, id string) (*Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE id = $1
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, apperror.Infra("get product", err)
	}
	return &p, nil
}

func (r *repository) GetForUpdate(ctx context.Context, ids []string) (map[string]Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "GetForUpdate"),
		zap.Strings("product_ids", ids),
	)

	// ORDER BY id keeps lock acquisition order stable across transactions.
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE
	`, pq.Array(ids))
	if err != nil {
		log.Error("failed to lock products", zap.Error(err))
		return nil, apperror.Infra("lock products", err)
	}
	defer rows.Close()

	found := make(map[string]Product, len(ids))
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, apperror.Infra("scan product", err)
		}
		found[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Infra("iterate products", err)
	}

	log.Debug("products locked", zap.Int("found", len(found)))
	return found, nil
}

func (r *repository) Create(ctx context.Context, p *Product) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products (
			id, name, description, image_url, price,
			category, stock, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		p.ID,
		p.Name,
		p.Description,
		p.ImageURL,
		p.Price,
		p.Category,
		p.Stock,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if db.IsUniqueViolation(err) {
		return apperror.Invalid("product %q already exists", p.ID)
	}
	if db.IsCheckViolation(err) {
		return apperror.Invalid("product violates catalog constraints")
	}
	if err != nil {
		return apperror.Infra("insert product", err)
	}
	return nil
}

func (r *repository) Update(ctx context.Context, p *Product) error {
	err := r.db.QueryRowContext(ctx, `
		UPDATE products
		SET
			name = $2,
			description = $3,
			image_url = $4,
			price = $5,
			category = $6,
			stock = $7,
			updated_at = $8
		WHERE id = $1
		RETURNING created_at
	`,
		p.ID,
		p.Name,
		p.Description,
		p.ImageURL,
		p.Price,
		p.Category,
		p.Stock,
		p.UpdatedAt,
	).Scan(&p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return notFound(p.ID)
	}
	if db.IsCheckViolation(err) {
		return apperror.Invalid("product violates catalog constraints")
	}
	if err != nil {
		return apperror.Infra("update product", err)
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return apperror.Infra("delete product", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return apperror.Infra("delete product", err)
	}
	if affected == 0 {
		return notFound(id)
	}
	return nil
}

func (r *repository) DecrementStock(ctx context.Context, id string, qty int) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET stock = stock - $1, updated_at = NOW()
		WHERE id = $2 AND stock >= $1
	`, qty, id)
	if db.IsCheckViolation(err) {
		return false, nil
	}
	if err != nil {
		return false, apperror.Infra("decrement stock", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, apperror.Infra("decrement stock", err)
	}
	return affected == 1, nil
}

func (r *repository) IncrementStock(ctx context.Context, id string, qty int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET stock = stock + $1, updated_at = NOW()
		WHERE id = $2
	`, qty, id)
	if err != nil {
		return apperror.Infra("increment stock", err)
	}
	return nil
}
