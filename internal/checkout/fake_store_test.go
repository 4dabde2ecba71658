package checkout

import (
	"context"
	"sort"
	"sync"

	"agrishop-be/internal/apperror"
	"agrishop-be/internal/order"
	"agrishop-be/internal/product"
	"agrishop-be/internal/store"
)

// fakeStore is an in-memory catalog and ledger. Stock updates hit shared
// state immediately and are undone on rollback; new orders become visible
// only on commit. Nothing serializes whole transactions, so oversell
// protection rests on the conditional decrement alone.
type fakeStore struct {
	mu       sync.Mutex
	products map[string]product.Product
	orders   map[string]*order.Order

	failOn    map[string]error
	afterLock func()
	commits   int
	rollbacks int
}

func newFakeStore(products ...product.Product) *fakeStore {
	s := &fakeStore{
		products: map[string]product.Product{},
		orders:   map[string]*order.Order{},
		failOn:   map[string]error{},
	}
	for _, p := range products {
		s.products[p.ID] = p
	}
	return s
}

func (s *fakeStore) stock(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[id].Stock
}

func (s *fakeStore) orderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

func (s *fakeStore) fail(op string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.failOn[op]; ok {
		return apperror.Infra(op, err)
	}
	return nil
}

func (s *fakeStore) WithinTx(ctx context.Context, fn func(ctx context.Context, repos store.Repositories) error) error {
	tx := &fakeTx{s: s, staged: map[string]*order.Order{}}
	err := fn(ctx, store.Repositories{
		Products: &fakeProducts{tx: tx},
		Orders:   &fakeOrders{tx: tx},
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		for i := len(tx.undo) - 1; i >= 0; i-- {
			tx.undo[i]()
		}
		s.rollbacks++
		return err
	}
	for id, o := range tx.staged {
		s.orders[id] = o
	}
	s.commits++
	return nil
}

type fakeTx struct {
	s      *fakeStore
	undo   []func()
	staged map[string]*order.Order
}

type fakeProducts struct{ tx *fakeTx }

func (r *fakeProducts) List(context.Context) ([]product.Product, error) {
	s := r.tx.s
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]product.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeProducts) Get(_ context.Context, id string) (*product.Product, error) {
	s := r.tx.s
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, apperror.NotFound("product", id)
	}
	return &p, nil
}

func (r *fakeProducts) GetForUpdate(_ context.Context, ids []string) (map[string]product.Product, error) {
	s := r.tx.s
	if err := s.fail("GetForUpdate"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	found := map[string]product.Product{}
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			found[id] = p
		}
	}
	hook := s.afterLock
	s.mu.Unlock()

	if hook != nil {
		hook()
	}
	return found, nil
}

func (r *fakeProducts) Create(_ context.Context, p *product.Product) error {
	s := r.tx.s
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = *p
	r.tx.undo = append(r.tx.undo, func() { delete(s.products, p.ID) })
	return nil
}

func (r *fakeProducts) Update(_ context.Context, p *product.Product) error {
	s := r.tx.s
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.products[p.ID]
	if !ok {
		return apperror.NotFound("product", p.ID)
	}
	s.products[p.ID] = *p
	r.tx.undo = append(r.tx.undo, func() { s.products[p.ID] = prev })
	return nil
}

func (r *fakeProducts) Delete(_ context.Context, id string) error {
	s := r.tx.s
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.products[id]
	if !ok {
		return apperror.NotFound("product", id)
	}
	delete(s.products, id)
	r.tx.undo = append(r.tx.undo, func() { s.products[id] = prev })
	return nil
}

func (r *fakeProducts) DecrementStock(_ context.Context, id string, qty int) (bool, error) {
	s := r.tx.s
	if err := s.fail("DecrementStock"); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok || p.Stock < qty {
		return false, nil
	}
	p.Stock -= qty
	s.products[id] = p
	r.tx.undo = append(r.tx.undo, func() {
		p := s.products[id]
		p.Stock += qty
		s.products[id] = p
	})
	return true, nil
}

func (r *fakeProducts) IncrementStock(_ context.Context, id string, qty int) error {
	s := r.tx.s
	if err := s.fail("IncrementStock"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil
	}
	p.Stock += qty
	s.products[id] = p
	r.tx.undo = append(r.tx.undo, func() {
		p := s.products[id]
		p.Stock -= qty
		s.products[id] = p
	})
	return nil
}

type fakeOrders struct{ tx *fakeTx }

func (r *fakeOrders) InsertOrder(_ context.Context, o *order.Order) error {
	if err := r.tx.s.fail("InsertOrder"); err != nil {
		return err
	}
	cp := *o
	cp.Items = nil
	r.tx.staged[o.ID] = &cp
	return nil
}

func (r *fakeOrders) InsertLineItems(_ context.Context, items []order.LineItem) error {
	if err := r.tx.s.fail("InsertLineItems"); err != nil {
		return err
	}
	for _, li := range items {
		o, ok := r.tx.staged[li.OrderID]
		if !ok {
			return apperror.Infra("insert order item", apperror.NotFound("order", li.OrderID))
		}
		o.Items = append(o.Items, li)
	}
	return nil
}

func (r *fakeOrders) Get(_ context.Context, id string) (*order.Order, error) {
	if o, ok := r.tx.staged[id]; ok {
		cp := *o
		return &cp, nil
	}
	s := r.tx.s
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, apperror.NotFound("order", id)
	}
	cp := *o
	cp.Items = append([]order.LineItem(nil), o.Items...)
	return &cp, nil
}

func (r *fakeOrders) List(context.Context) ([]order.Order, error) {
	s := r.tx.s
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]order.Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (r *fakeOrders) UpdateStatus(_ context.Context, id string, from, to order.Status) (bool, error) {
	s := r.tx.s
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = to
	r.tx.undo = append(r.tx.undo, func() { o.Status = from })
	return true, nil
}
