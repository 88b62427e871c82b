package postgres

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/MikeMC777/fulfillment-ecom/internal/apperr"
	"github.com/MikeMC777/fulfillment-ecom/internal/cart"
	"github.com/MikeMC777/fulfillment-ecom/internal/order"
	"github.com/MikeMC777/fulfillment-ecom/internal/product"
	"github.com/MikeMC777/fulfillment-ecom/internal/service"
	"github.com/MikeMC777/fulfillment-ecom/internal/store"
)

func setupTestDB(t *testing.T) *Store {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres container tests skipped in -short mode")
	}
	ctx := context.Background()

	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("testuser"),
		tcpostgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	pool, err := Connect(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, Migrate(pool))
	// idempotent
	require.NoError(t, Migrate(pool))
	return New(pool)
}

type seeded struct {
	users     []int64
	addresses []int64
}

// seedUsers creates n users with the "user" role and one address each.
func seedUsers(t *testing.T, s *Store, n int) seeded {
	t.Helper()
	ctx := context.Background()
	var out seeded
	for i := 0; i < n; i++ {
		var uid, aid int64
		name := fmt.Sprintf("buyer%d", i)
		err := s.Pool().QueryRow(ctx, `
			INSERT INTO users (role_id, username, email)
			SELECT id, $1, $2 FROM roles WHERE name = 'user'
			RETURNING id
		`, name, name+"@example.com").Scan(&uid)
		require.NoError(t, err)
		err = s.Pool().QueryRow(ctx, `
			INSERT INTO addresses (user_id, address_line, city, postal_code, country)
			VALUES ($1, 'street', 'city', '0000', 'PE')
			RETURNING id
		`, uid).Scan(&aid)
		require.NoError(t, err)
		out.users = append(out.users, uid)
		out.addresses = append(out.addresses, aid)
	}
	return out
}

func seedProduct(t *testing.T, s *Store, price string, stock int) product.Product {
	t.Helper()
	p := product.Product{Name: "p", Price: decimal.RequireFromString(price), StockQuantity: stock}
	require.NoError(t, NewProductRepo(s.Pool()).Create(context.Background(), &p))
	return p
}

func fillCart(t *testing.T, s *Store, userID int64, lines ...cart.Item) {
	t.Helper()
	err := s.WithTx(context.Background(), func(ctx context.Context, tx store.Tx) error {
		c, err := tx.Carts().Create(ctx, userID)
		if err != nil {
			return err
		}
		for _, l := range lines {
			l.CartID = c.ID
			if err := tx.Carts().AddItem(ctx, &l); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
}

func stockOf(t *testing.T, s *Store, id int64) int {
	t.Helper()
	p, err := NewProductRepo(s.Pool()).GetByID(context.Background(), id)
	require.NoError(t, err)
	return p.StockQuantity
}

func TestLedger(t *testing.T) {
	s := setupTestDB(t)
	u := seedUsers(t, s, 1)
	a := seedProduct(t, s, "3.00", 2)
	b := seedProduct(t, s, "1.50", 10)
	// two lines of b are counted as one product
	fillCart(t, s, u.users[0],
		cart.Item{ProductID: a.ID, Quantity: 3},
		cart.Item{ProductID: b.ID, Quantity: 2},
		cart.Item{ProductID: b.ID, Quantity: 2},
	)

	err := s.WithTx(context.Background(), func(ctx context.Context, tx store.Tx) error {
		q, err := tx.Inventory().Quote(ctx, u.users[0])
		require.NoError(t, err)
		assert.Equal(t, int64(2), q.TotalItems)
		assert.Equal(t, int64(1), q.AvailableItems)
		assert.True(t, decimal.RequireFromString("6.00").Equal(q.Total), q.Total.String())

		n, err := tx.Inventory().DecrementForCart(ctx, u.users[0])
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		assert.ErrorIs(t, tx.Inventory().Adjust(ctx, a.ID, -3), apperr.ErrProductOutOfStock)
		assert.ErrorIs(t, tx.Inventory().Adjust(ctx, 999999, 1), apperr.ErrProductNotFound)
		return tx.Inventory().Adjust(ctx, a.ID, 1)
	})
	require.NoError(t, err)
	assert.Equal(t, 3, stockOf(t, s, a.ID))
	assert.Equal(t, 6, stockOf(t, s, b.ID))
}

func TestWithTxRollsBack(t *testing.T) {
	s := setupTestDB(t)
	a := seedProduct(t, s, "3.00", 2)
	boom := errors.New("boom")

	err := s.WithTx(context.Background(), func(ctx context.Context, tx store.Tx) error {
		require.NoError(t, tx.Inventory().Adjust(ctx, a.ID, -2))
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, stockOf(t, s, a.ID))
}

func TestOrderRepo(t *testing.T) {
	s := setupTestDB(t)
	u := seedUsers(t, s, 1)
	a := seedProduct(t, s, "3.00", 2)

	err := s.WithTx(context.Background(), func(ctx context.Context, tx store.Tx) error {
		o := &order.Order{
			Number: "ORD-T-1", UserID: u.users[0], AddressID: u.addresses[0],
			Status: order.StatusPending, TotalAmount: decimal.RequireFromString("6.00"),
			ShippingMethod: "courier", PaymentMethod: "card",
		}
		require.NoError(t, tx.Orders().Create(ctx, o))
		require.NoError(t, tx.Orders().AddItem(ctx, &order.Item{OrderID: o.ID, ProductID: a.ID, Quantity: 2, FinalPrice: a.Price}))
		err := tx.Orders().AddItem(ctx, &order.Item{OrderID: o.ID, ProductID: a.ID, Quantity: 1, FinalPrice: a.Price})
		assert.ErrorIs(t, err, apperr.ErrProductAlreadyInOrder)
		return nil
	})
	// the unique violation aborted the transaction
	require.Error(t, err)

	_, err = NewProductRepo(s.Pool()).GetByID(context.Background(), 999999)
	assert.ErrorIs(t, err, apperr.ErrProductNotFound)
}

func TestOrderRepoRoundTrip(t *testing.T) {
	s := setupTestDB(t)
	u := seedUsers(t, s, 1)
	a := seedProduct(t, s, "3.10", 5)

	err := s.WithTx(context.Background(), func(ctx context.Context, tx store.Tx) error {
		o := &order.Order{
			Number: "ORD-T-2", UserID: u.users[0], AddressID: u.addresses[0],
			Status: order.StatusPending, TotalAmount: decimal.RequireFromString("6.20"),
			ShippingMethod: "courier", PaymentMethod: "card",
		}
		require.NoError(t, tx.Orders().Create(ctx, o))
		it := &order.Item{OrderID: o.ID, ProductID: a.ID, Quantity: 2, FinalPrice: a.Price}
		require.NoError(t, tx.Orders().AddItem(ctx, it))

		locked, err := tx.Orders().GetForUpdate(ctx, o.ID)
		require.NoError(t, err)
		assert.True(t, o.TotalAmount.Equal(locked.TotalAmount))
		assert.Equal(t, order.StatusPending, locked.Status)

		require.NoError(t, tx.Orders().UpdateItemQuantity(ctx, it.ID, 1))
		items, err := tx.Orders().GetItems(ctx, o.ID)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, 1, items[0].Quantity)
		assert.True(t, decimal.RequireFromString("3.10").Equal(items[0].FinalPrice))

		list, err := tx.Orders().ListByUser(ctx, u.users[0], 10, 0)
		require.NoError(t, err)
		assert.Len(t, list, 1)

		require.NoError(t, tx.Orders().DeleteItems(ctx, o.ID))
		require.NoError(t, tx.Orders().Delete(ctx, o.ID))
		_, err = tx.Orders().GetByID(ctx, o.ID)
		assert.ErrorIs(t, err, apperr.ErrOrderNotFound)
		return nil
	})
	require.NoError(t, err)
}

// Two transactions race for the last unit: the second quote still sees it,
// but its conditional decrement waits for the first commit and then updates
// nothing.
func TestDecrementRaceOnLastUnit(t *testing.T) {
	s := setupTestDB(t)
	u := seedUsers(t, s, 2)
	last := seedProduct(t, s, "5.00", 1)
	fillCart(t, s, u.users[0], cart.Item{ProductID: last.ID, Quantity: 1})
	fillCart(t, s, u.users[1], cart.Item{ProductID: last.ID, Quantity: 1})

	decremented := make(chan struct{})
	quoted := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		err := s.WithTx(context.Background(), func(ctx context.Context, tx store.Tx) error {
			n, err := tx.Inventory().DecrementForCart(ctx, u.users[0])
			if err != nil {
				return err
			}
			if n != 1 {
				return errors.New("first decrement should apply")
			}
			close(decremented)
			<-quoted
			time.Sleep(100 * time.Millisecond)
			return nil
		})
		assert.NoError(t, err)
	}()

	<-decremented
	err := s.WithTx(context.Background(), func(ctx context.Context, tx store.Tx) error {
		q, err := tx.Inventory().Quote(ctx, u.users[1])
		require.NoError(t, err)
		assert.Equal(t, int64(1), q.AvailableItems)
		close(quoted)

		n, err := tx.Inventory().DecrementForCart(ctx, u.users[1])
		require.NoError(t, err)
		assert.Equal(t, int64(0), n)
		return nil
	})
	require.NoError(t, err)
	wg.Wait()
	assert.Equal(t, 0, stockOf(t, s, last.ID))
}

func TestConcurrentCheckouts(t *testing.T) {
	s := setupTestDB(t)
	const buyers = 6
	u := seedUsers(t, s, buyers)
	last := seedProduct(t, s, "5.00", 2)
	for _, uid := range u.users {
		fillCart(t, s, uid, cart.Item{ProductID: last.ID, Quantity: 1})
	}
	checkout := service.NewCheckout(s, nil, nil, zap.NewNop(), 10*time.Second)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		oks  int
		errs []error
	)
	for i := range u.users {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := checkout.PlaceOrder(context.Background(), u.users[i], order.CreateOrderRequest{
				AddressID: u.addresses[i], ShippingMethod: "courier", PaymentMethod: "card",
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				oks++
				return
			}
			errs = append(errs, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 2, oks)
	for _, err := range errs {
		assert.True(t,
			errors.Is(err, apperr.ErrNotAllProductsAvailable) ||
				errors.Is(err, apperr.ErrErrorUpdatingBalances) ||
				errors.Is(err, apperr.ErrProductOutOfStock),
			"unexpected error: %v", err)
	}
	assert.Equal(t, 0, stockOf(t, s, last.ID))
}

func TestDoubleSubmitCheckoutPlacesOneOrder(t *testing.T) {
	s := setupTestDB(t)
	u := seedUsers(t, s, 1)
	p := seedProduct(t, s, "4.00", 10)
	fillCart(t, s, u.users[0], cart.Item{ProductID: p.ID, Quantity: 3})
	checkout := service.NewCheckout(s, nil, nil, zap.NewNop(), 10*time.Second)

	const attempts = 4
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		oks  int
		errs []error
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := checkout.PlaceOrder(context.Background(), u.users[0], order.CreateOrderRequest{
				AddressID: u.addresses[0], ShippingMethod: "courier", PaymentMethod: "card",
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				oks++
				return
			}
			errs = append(errs, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, oks)
	for _, err := range errs {
		assert.ErrorIs(t, err, apperr.ErrCartEmpty)
	}
	assert.Equal(t, 7, stockOf(t, s, p.ID))

	var orders int
	require.NoError(t, s.Pool().QueryRow(context.Background(),
		`SELECT count(*) FROM orders WHERE user_id = $1`, u.users[0]).Scan(&orders))
	assert.Equal(t, 1, orders)
}

func TestProductPriceMustBePositive(t *testing.T) {
	s := setupTestDB(t)
	p := product.Product{Name: "free", Price: decimal.Zero, StockQuantity: 1}
	assert.Error(t, NewProductRepo(s.Pool()).Create(context.Background(), &p))
}
