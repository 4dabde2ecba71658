package content

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"agrishop-be/internal/apperror"
	"agrishop-be/internal/db"
)

type Repository[T Entry] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id string) (T, error)
	Create(ctx context.Context, e T) error
	// Update replaces the editable columns and order_index. CreatedAt is
	// filled from the stored row.
	Update(ctx context.Context, e T) error
	Delete(ctx context.Context, id string) error
}

type repository[T Entry] struct {
	db     db.DBTX
	schema Schema[T]

	selectSQL string
	insertSQL string
	updateSQL string
	deleteSQL string
}

func NewRepository[T Entry](conn db.DBTX, schema Schema[T]) Repository[T] {
	r := &repository[T]{db: conn, schema: schema}

	cols := strings.Join(schema.Columns, ", ")
	n := len(schema.Columns)

	r.selectSQL = fmt.Sprintf(
		`SELECT id, %s, order_index, created_at, updated_at FROM %s`,
		cols, schema.Table,
	)

	// $1 id, $2..$n+1 columns, then order_index, created_at, updated_at
	placeholders := make([]string, 0, n+4)
	for i := 1; i <= n+4; i++ {
		placeholders = append(placeholders, fmt.Sprintf("$%d", i))
	}
	r.insertSQL = fmt.Sprintf(
		`INSERT INTO %s (id, %s, order_index, created_at, updated_at) VALUES (%s)`,
		schema.Table, cols, strings.Join(placeholders, ","),
	)

	sets := make([]string, 0, n+2)
	for i, c := range schema.Columns {
		sets = append(sets, fmt.Sprintf("%s = $%d", c, i+2))
	}
	sets = append(sets,
		fmt.Sprintf("order_index = $%d", n+2),
		fmt.Sprintf("updated_at = $%d", n+3),
	)
	r.updateSQL = fmt.Sprintf(
		`UPDATE %s SET %s WHERE id = $1 RETURNING created_at`,
		schema.Table, strings.Join(sets, ", "),
	)

	r.deleteSQL = fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, schema.Table)
	return r
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *repository[T]) scan(row rowScanner) (T, error) {
	e := r.schema.New()
	m := e.meta()
	dest := append([]any{&m.ID}, e.fields()...)
	dest = append(dest, &m.OrderIndex, &m.CreatedAt, &m.UpdatedAt)
	err := row.Scan(dest...)
	return e, err
}

func (r *repository[T]) List(ctx context.Context) ([]T, error) {
	rows, err := r.db.QueryContext(ctx, r.selectSQL+` ORDER BY order_index, created_at`)
	if err != nil {
		return nil, apperror.Infra("list "+r.schema.Table, err)
	}
	defer rows.Close()

	entries := []T{}
	for rows.Next() {
		e, err := r.scan(rows)
		if err != nil {
			return nil, apperror.Infra("scan "+r.schema.Table, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Infra("iterate "+r.schema.Table, err)
	}
	return entries, nil
}

func (r *repository[T]) Get(ctx context.Context, id string) (T, error) {
	e, err := r.scan(r.db.QueryRowContext(ctx, r.selectSQL+` WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		var zero T
		return zero, apperror.NotFound(r.schema.Kind, id)
	}
	if err != nil {
		var zero T
		return zero, apperror.Infra("get "+r.schema.Table, err)
	}
	return e, nil
}

func (r *repository[T]) Create(ctx context.Context, e T) error {
	m := e.meta()
	args := append([]any{m.ID}, e.fields()...)
	args = append(args, m.OrderIndex, m.CreatedAt, m.UpdatedAt)

	if _, err := r.db.ExecContext(ctx, r.insertSQL, args...); err != nil {
		return apperror.Infra("insert "+r.schema.Table, err)
	}
	return nil
}

func (r *repository[T]) Update(ctx context.Context, e T) error {
	m := e.meta()
	args := append([]any{m.ID}, e.fields()...)
	args = append(args, m.OrderIndex, m.UpdatedAt)

	err := r.db.QueryRowContext(ctx, r.updateSQL, args...).Scan(&m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return apperror.NotFound(r.schema.Kind, m.ID)
	}
	if err != nil {
		return apperror.Infra("update "+r.schema.Table, err)
	}
	return nil
}

func (r *repository[T]) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.deleteSQL, id)
	if err != nil {
		return apperror.Infra("delete "+r.schema.Table, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return apperror.Infra("delete "+r.schema.Table, err)
	}
	if affected == 0 {
		return apperror.NotFound(r.schema.Kind, id)
	}
	return nil
}
