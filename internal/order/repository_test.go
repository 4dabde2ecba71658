package order

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"agrishop-be/internal/apperror"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	orderRowColumns = []string{
		"id", "customer_name", "customer_email", "customer_phone",
		"total_amount", "status", "created_at", "updated_at",
	}
	itemRowColumns = []string{
		"id", "order_id", "product_id", "product_name",
		"quantity", "price_at_time", "position", "created_at",
	}
)

func newMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewRepository(conn), mock
}

func TestRepository_InsertOrder(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	o := &Order{
		ID:          "o1",
		Customer:    Customer{Name: "Jane Doe", Email: "jane@x.com", Phone: "555-0100"},
		TotalAmount: decimal.RequireFromString("50.00"),
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	t.Run("Success", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectExec(`INSERT INTO orders`).
			WithArgs("o1", "Jane Doe", "jane@x.com", "555-0100", sqlmock.AnyArg(), "pending", now, now).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.InsertOrder(ctx, o))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("DBError", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectExec(`INSERT INTO orders`).WillReturnError(errors.New("disk full"))

		assert.ErrorIs(t, repo.InsertOrder(ctx, o), apperror.ErrInfrastructure)
	})
}

func TestRepository_InsertLineItems(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	pid := "p1"
	items := []LineItem{
		{ID: "i1", OrderID: "o1", ProductID: &pid, ProductName: "Hoe", Quantity: 2, PriceAtTime: decimal.NewFromInt(25), Position: 0, CreatedAt: now},
		{ID: "i2", OrderID: "o1", ProductID: &pid, ProductName: "Hoe", Quantity: 1, PriceAtTime: decimal.NewFromInt(25), Position: 1, CreatedAt: now},
	}

	t.Run("OneRowPerItem", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectExec(`INSERT INTO order_items`).
			WithArgs("i1", "o1", "p1", "Hoe", 2, sqlmock.AnyArg(), 0, now).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO order_items`).
			WithArgs("i2", "o1", "p1", "Hoe", 1, sqlmock.AnyArg(), 1, now).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.InsertLineItems(ctx, items))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("StopsOnFirstError", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectExec(`INSERT INTO order_items`).WillReturnError(errors.New("fk violation"))

		err := repo.InsertLineItems(ctx, items)
		assert.ErrorIs(t, err, apperror.ErrInfrastructure)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_Get(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("WithItems", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(`(?s)SELECT .* FROM orders\s+WHERE id = \$1`).
			WithArgs("o1").
			WillReturnRows(sqlmock.NewRows(orderRowColumns).
				AddRow("o1", "Jane Doe", "jane@x.com", "555-0100", "50.00", "pending", now, now))
		mock.ExpectQuery(`(?s)FROM order_items\s+WHERE order_id = \$1\s+ORDER BY position`).
			WithArgs("o1").
			WillReturnRows(sqlmock.NewRows(itemRowColumns).
				AddRow("i1", "o1", "p1", "Hoe", 2, "25.00", 0, now).
				AddRow("i2", "o1", nil, "Retired Rake", 1, "0.00", 1, now))

		o, err := repo.Get(ctx, "o1")
		require.NoError(t, err)
		assert.Equal(t, StatusPending, o.Status)
		assert.Equal(t, "Jane Doe", o.Customer.Name)
		require.Len(t, o.Items, 2)
		require.NotNil(t, o.Items[0].ProductID)
		assert.Equal(t, "p1", *o.Items[0].ProductID)
		assert.Nil(t, o.Items[1].ProductID)
		assert.True(t, o.TotalAmount.Equal(o.ItemsTotal()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(`(?s)SELECT .* FROM orders`).
			WithArgs("ghost").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.Get(ctx, "ghost")
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("ItemsQueryError", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(`(?s)SELECT .* FROM orders`).
			WillReturnRows(sqlmock.NewRows(orderRowColumns).
				AddRow("o1", "Jane Doe", "jane@x.com", "555-0100", "50.00", "pending", now, now))
		mock.ExpectQuery(`(?s)FROM order_items`).WillReturnError(errors.New("timeout"))

		_, err := repo.Get(ctx, "o1")
		assert.ErrorIs(t, err, apperror.ErrInfrastructure)
	})
}

func TestRepository_List(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()
	mock.ExpectQuery(`(?s)FROM orders\s+ORDER BY created_at DESC, id`).
		WillReturnRows(sqlmock.NewRows(orderRowColumns).
			AddRow("o2", "B", "b@x.com", "2", "10.00", "completed", now, now).
			AddRow("o1", "A", "a@x.com", "1", "5.00", "pending", now.Add(-time.Hour), now))

	orders, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "o2", orders[0].ID)
	assert.Equal(t, StatusCompleted, orders[0].Status)
	assert.Nil(t, orders[0].Items)
}

func TestRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	query := `(?s)UPDATE orders\s+SET status = \$3.*WHERE id = \$1 AND status = \$2`

	t.Run("Applied", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectExec(query).
			WithArgs("o1", "pending", "completed").
			WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := repo.UpdateStatus(ctx, "o1", StatusPending, StatusCompleted)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("NoLongerPending", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectExec(query).
			WithArgs("o1", "pending", "cancelled").
			WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := repo.UpdateStatus(ctx, "o1", StatusPending, StatusCancelled)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
