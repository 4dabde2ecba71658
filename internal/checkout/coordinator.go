// Package checkout turns a cart into an order. Placing an order and moving
// it out of pending are the only writes that touch both the catalog and the
// ledger, so both run inside a single store transaction.
package checkout

import (
	"context"
	"errors"
	"strings"
	"time"

	"agrishop-be/internal/apperror"
	"agrishop-be/internal/logger"
	"agrishop-be/internal/order"
	"agrishop-be/internal/product"
	"agrishop-be/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Checkout outcomes reported to the Recorder.
const (
	OutcomePlaced            = "placed"
	OutcomeInvalid           = "invalid"
	OutcomeNotFound          = "not_found"
	OutcomeInsufficientStock = "insufficient_stock"
	OutcomeError             = "error"
)

type Coordinator interface {
	PlaceOrder(ctx context.Context, req Request) (*order.Order, error)
	// UpdateStatus applies a status transition. Cancelling returns the
	// ordered quantities to stock in the same transaction.
	UpdateStatus(ctx context.Context, orderID string, to order.Status) (*order.Order, error)
}

// CatalogInvalidator drops cached catalog reads after stock changes.
type CatalogInvalidator interface {
	InvalidateCatalog(ctx context.Context)
}

// Publisher announces committed order changes.
type Publisher interface {
	OrderPlaced(ctx context.Context, o *order.Order) error
	OrderStatusChanged(ctx context.Context, o *order.Order, from order.Status) error
}

type Recorder interface {
	CheckoutOutcome(outcome string)
}

type coordinator struct {
	tx        store.Transactor
	catalog   CatalogInvalidator
	publisher Publisher
	recorder  Recorder
	now       func() time.Time
	newID     func() string
}

// NewCoordinator wires the coordinator. catalog, publisher and recorder
// may be nil.
func NewCoordinator(tx store.Transactor, catalog CatalogInvalidator, publisher Publisher, recorder Recorder) Coordinator {
	return &coordinator{
		tx:        tx,
		catalog:   catalog,
		publisher: publisher,
		recorder:  recorder,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
}

func (c *coordinator) PlaceOrder(ctx context.Context, req Request) (*order.Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "checkout"),
		zap.String("method", "PlaceOrder"),
	)

	o, err := c.placeOrder(ctx, req)
	outcome := outcomeOf(err)
	if c.recorder != nil {
		c.recorder.CheckoutOutcome(outcome)
	}
	if err != nil {
		if outcome == OutcomeError {
			log.Error("checkout failed", zap.Error(err))
		} else {
			log.Info("checkout rejected", zap.String("outcome", outcome), zap.Error(err))
		}
		return nil, err
	}

	log.Info("order placed",
		zap.String("order_id", o.ID),
		zap.String("total_amount", o.TotalAmount.StringFixed(2)),
		zap.Int("lines", len(o.Items)),
	)

	c.invalidateCatalog(ctx)
	if c.publisher != nil {
		if err := c.publisher.OrderPlaced(ctx, o); err != nil {
			log.Warn("failed to publish order placed event", zap.String("order_id", o.ID), zap.Error(err))
		}
	}
	return o, nil
}

func (c *coordinator) placeOrder(ctx context.Context, req Request) (*order.Order, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	want, err := aggregate(req.Items)
	if err != nil {
		return nil, err
	}
	ids := want.sortedIDs()

	var placed *order.Order
	err = c.tx.WithinTx(ctx, func(ctx context.Context, repos store.Repositories) error {
		locked, err := repos.Products.GetForUpdate(ctx, ids)
		if err != nil {
			return err
		}

		for _, l := range req.Items {
			if _, ok := locked[l.ProductID]; !ok {
				return apperror.NotFound("product", l.ProductID)
			}
		}
		for _, id := range ids {
			if p := locked[id]; !p.InStock(want[id]) {
				return stockError(p, want[id], p.Stock)
			}
		}

		now := c.now()
		o := &order.Order{
			ID:        c.newID(),
			Customer:  req.Customer,
			Status:    order.StatusPending,
			CreatedAt: now,
			UpdatedAt: now,
			Items:     make([]order.LineItem, 0, len(req.Items)),
		}
		for i, l := range req.Items {
			p := locked[l.ProductID]
			pid := p.ID
			o.Items = append(o.Items, order.LineItem{
				ID:          c.newID(),
				OrderID:     o.ID,
				ProductID:   &pid,
				ProductName: p.Name,
				Quantity:    l.Quantity,
				PriceAtTime: p.Price,
				Position:    i,
				CreatedAt:   now,
			})
		}
		o.TotalAmount = o.ItemsTotal().Round(2)

		if err := repos.Orders.InsertOrder(ctx, o); err != nil {
			return err
		}
		if err := repos.Orders.InsertLineItems(ctx, o.Items); err != nil {
			return err
		}

		for _, id := range ids {
			ok, err := repos.Products.DecrementStock(ctx, id, want[id])
			if err != nil {
				return err
			}
			if !ok {
				// stock moved since the read; report what is left now
				p := locked[id]
				if cur, err := repos.Products.Get(ctx, id); err == nil {
					p.Stock = cur.Stock
				}
				return stockError(p, want[id], p.Stock)
			}
		}

		placed = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return placed, nil
}

func (c *coordinator) UpdateStatus(ctx context.Context, orderID string, to order.Status) (*order.Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "checkout"),
		zap.String("method", "UpdateStatus"),
		zap.String("order_id", orderID),
		zap.String("to", string(to)),
	)

	if strings.TrimSpace(orderID) == "" {
		return nil, apperror.Invalid("order id is required")
	}
	if _, ok := order.ParseStatus(string(to)); !ok {
		return nil, apperror.Invalid("status must be one of pending, completed, cancelled")
	}

	var (
		updated *order.Order
		from    order.Status
	)
	err := c.tx.WithinTx(ctx, func(ctx context.Context, repos store.Repositories) error {
		o, err := repos.Orders.Get(ctx, orderID)
		if err != nil {
			return err
		}
		from = o.Status
		if !from.CanTransitionTo(to) {
			return &order.TransitionError{OrderID: orderID, From: from, To: to}
		}

		ok, err := repos.Orders.UpdateStatus(ctx, orderID, from, to)
		if err != nil {
			return err
		}
		if !ok {
			// a concurrent transition won; report against the pending state we read
			return &order.TransitionError{OrderID: orderID, From: from, To: to}
		}

		if to == order.StatusCancelled {
			if err := restock(ctx, repos.Products, o.Items); err != nil {
				return err
			}
		}

		o.Status = to
		o.UpdatedAt = c.now()
		updated = o
		return nil
	})
	if err != nil {
		log.Warn("status update failed", zap.Error(err))
		return nil, err
	}

	log.Info("order status updated", zap.String("from", string(from)))

	if to == order.StatusCancelled {
		c.invalidateCatalog(ctx)
	}
	if c.publisher != nil {
		if err := c.publisher.OrderStatusChanged(ctx, updated, from); err != nil {
			log.Warn("failed to publish status changed event", zap.Error(err))
		}
	}
	return updated, nil
}

// restock returns line quantities to products that still exist, in
// ascending product id order.
func restock(ctx context.Context, products product.Repository, items []order.LineItem) error {
	back := demand{}
	for _, li := range items {
		if li.ProductID == nil {
			continue
		}
		back[*li.ProductID] += li.Quantity
	}
	for _, id := range back.sortedIDs() {
		if err := products.IncrementStock(ctx, id, back[id]); err != nil {
			return err
		}
	}
	return nil
}

func (c *coordinator) invalidateCatalog(ctx context.Context) {
	if c.catalog != nil {
		c.catalog.InvalidateCatalog(ctx)
	}
}

func stockError(p product.Product, requested, available int) error {
	if available < 0 {
		available = 0
	}
	return &StockError{
		ProductID:   p.ID,
		ProductName: p.Name,
		Requested:   requested,
		Available:   available,
	}
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomePlaced
	case errors.Is(err, apperror.ErrInvalidInput):
		return OutcomeInvalid
	case errors.Is(err, apperror.ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, apperror.ErrInsufficientStock):
		return OutcomeInsufficientStock
	default:
		return OutcomeError
	}
}
