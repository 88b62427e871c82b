package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/MikeMC777/fulfillment-ecom/internal/cart"
	"github.com/MikeMC777/fulfillment-ecom/internal/notify"
	"github.com/MikeMC777/fulfillment-ecom/internal/order"
	"github.com/MikeMC777/fulfillment-ecom/internal/product"
	"github.com/MikeMC777/fulfillment-ecom/internal/store"
	"github.com/MikeMC777/fulfillment-ecom/internal/store/memory"
	"github.com/MikeMC777/fulfillment-ecom/internal/user"
)

const (
	alice  int64 = 1
	bob    int64 = 2
	admin  int64 = 9
	noRole int64 = 5
)

type recorder struct {
	mu     sync.Mutex
	events []notify.Event
	err    error
}

func (r *recorder) Enqueue(_ context.Context, ev notify.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) statuses() []order.Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []order.Status{}
	for _, ev := range r.events {
		out = append(out, ev.Status)
	}
	return out
}

// mapCache is an in-process cart.Cache that counts deletes.
type mapCache struct {
	mu      sync.Mutex
	views   map[int64]cart.View
	deletes int
}

func newMapCache() *mapCache { return &mapCache{views: map[int64]cart.View{}} }

func (c *mapCache) Get(_ context.Context, userID int64) (*cart.View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.views[userID]
	if !ok {
		return nil, cart.ErrCacheMiss
	}
	return &v, nil
}

func (c *mapCache) Set(_ context.Context, userID int64, v *cart.View) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.views[userID] = *v
	return nil
}

func (c *mapCache) Delete(_ context.Context, userID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.views, userID)
	c.deletes++
	return nil
}

type fixture struct {
	st       *memory.Store
	cache    *mapCache
	notes    *recorder
	carts    *CartService
	checkout *Checkout
	orders   *OrderService

	shirt, socks, hat  product.Product
	aliceAddr, bobAddr user.Address
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := memory.New()
	return newFixtureWith(t, st, st)
}

// newFixtureWith builds the services on svc while seeding through st.
func newFixtureWith(t *testing.T, st *memory.Store, svc store.Store) *fixture {
	t.Helper()
	perms := StaticPermissions{Roles: map[int64]string{alice: "user", bob: "user", admin: "admin"}}
	f := &fixture{st: st, cache: newMapCache(), notes: &recorder{}}
	log := zap.NewNop()
	f.carts = NewCartService(svc, perms, f.cache, log)
	f.checkout = NewCheckout(svc, f.cache, nil, log, time.Second)
	f.orders = NewOrderService(svc, perms, f.notes, nil, log)

	f.shirt = st.PutProduct(product.Product{Name: "Shirt", Price: decimal.RequireFromString("10.00"), StockQuantity: 5})
	f.socks = st.PutProduct(product.Product{Name: "Socks", Price: decimal.RequireFromString("2.50"), StockQuantity: 1})
	f.hat = st.PutProduct(product.Product{Name: "Hat", Price: decimal.RequireFromString("7.25"), StockQuantity: 4})
	f.aliceAddr = st.PutAddress(user.Address{UserID: alice, Line: "1 Main St", City: "Lima", PostalCode: "15001", Country: "PE"})
	f.bobAddr = st.PutAddress(user.Address{UserID: bob, Line: "2 Side St", City: "Quito", PostalCode: "170101", Country: "EC"})
	return f
}

func (f *fixture) stock(t *testing.T, id int64) int {
	t.Helper()
	p, ok := f.st.Product(id)
	require.True(t, ok)
	return p.StockQuantity
}

func (f *fixture) addToCart(t *testing.T, userID, productID int64, qty int) {
	t.Helper()
	_, err := f.carts.AddItem(context.Background(), userID, userID, cart.AddItemRequest{ProductID: productID, Quantity: qty})
	require.NoError(t, err)
}

func (f *fixture) placeOrder(t *testing.T, userID, addressID int64) *order.Detail {
	t.Helper()
	d, err := f.checkout.PlaceOrder(context.Background(), userID, order.CreateOrderRequest{
		AddressID:      addressID,
		ShippingMethod: "courier",
		PaymentMethod:  "card",
	})
	require.NoError(t, err)
	return d
}

// requireConsistent checks total == Σ items for the order.
func (f *fixture) requireConsistent(t *testing.T, orderID int64) *order.Detail {
	t.Helper()
	d, err := f.orders.Get(context.Background(), admin, orderID)
	require.NoError(t, err)
	require.True(t, d.TotalAmount.Equal(order.Total(d.Items)), "total %s, items sum %s", d.TotalAmount, order.Total(d.Items))
	return d
}

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }
