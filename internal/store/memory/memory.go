// Package memory is an in-process store used by tests and by the order
// service when STORE_DRIVER=memory. Transactions are serialized: each one
// works on a copy of the state that replaces the live state on success.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/MikeMC777/fulfillment-ecom/internal/cart"
	"github.com/MikeMC777/fulfillment-ecom/internal/inventory"
	"github.com/MikeMC777/fulfillment-ecom/internal/order"
	"github.com/MikeMC777/fulfillment-ecom/internal/product"
	"github.com/MikeMC777/fulfillment-ecom/internal/store"
	"github.com/MikeMC777/fulfillment-ecom/internal/user"
)

type sequences struct {
	cart, cartItem, order, orderItem, product, address int64
}

type state struct {
	carts      map[int64]cart.Cart
	cartItems  map[int64]cart.Item
	orders     map[int64]order.Order
	orderItems map[int64]order.Item
	products   map[int64]product.Product
	addresses  map[int64]user.Address
	seq        sequences
}

func newState() *state {
	return &state{
		carts:      map[int64]cart.Cart{},
		cartItems:  map[int64]cart.Item{},
		orders:     map[int64]order.Order{},
		orderItems: map[int64]order.Item{},
		products:   map[int64]product.Product{},
		addresses:  map[int64]user.Address{},
	}
}

func (s *state) clone() *state {
	return &state{
		carts:      cloneMap(s.carts),
		cartItems:  cloneMap(s.cartItems),
		orders:     cloneMap(s.orders),
		orderItems: cloneMap(s.orderItems),
		products:   cloneMap(s.products),
		addresses:  cloneMap(s.addresses),
		seq:        s.seq,
	}
}

func cloneMap[V any](m map[int64]V) map[int64]V {
	out := make(map[int64]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// sortedKeys returns the keys of m in ascending order.
func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

type Store struct {
	mu  sync.Mutex
	st  *state
	now func() time.Time
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{st: newState(), now: func() time.Time { return time.Now().UTC() }}
}

func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	work := s.st.clone()
	if err := fn(ctx, &txn{st: work, now: s.now}); err != nil {
		return err
	}
	// an expired context rolls back like in Postgres
	if err := ctx.Err(); err != nil {
		return err
	}
	s.st = work
	return nil
}

func (s *Store) Close() {}

// PutProduct stores p, assigning an id when p.ID is zero.
func (s *Store) PutProduct(p product.Product) product.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == 0 {
		s.st.seq.product++
		p.ID = s.st.seq.product
	} else if p.ID > s.st.seq.product {
		s.st.seq.product = p.ID
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now()
		p.UpdatedAt = p.CreatedAt
	}
	s.st.products[p.ID] = p
	return p
}

// PutAddress stores a, assigning an id when a.ID is zero.
func (s *Store) PutAddress(a user.Address) user.Address {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.ID == 0 {
		s.st.seq.address++
		a.ID = s.st.seq.address
	} else if a.ID > s.st.seq.address {
		s.st.seq.address = a.ID
	}
	s.st.addresses[a.ID] = a
	return a
}

// Product returns the committed state of a product.
func (s *Store) Product(id int64) (product.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.st.products[id]
	return p, ok
}

type txn struct {
	st  *state
	now func() time.Time
}

func (t *txn) Carts() cart.Repository        { return &cartRepo{t} }
func (t *txn) Orders() order.Repository      { return &orderRepo{t} }
func (t *txn) Inventory() inventory.Ledger   { return &ledger{t} }
func (t *txn) Products() product.Getter      { return &productRepo{t} }
func (t *txn) Addresses() user.AddressReader { return &addressRepo{t} }
