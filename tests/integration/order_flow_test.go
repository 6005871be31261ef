//go:build integration

package integration

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	cartapp "github.com/stockroom/backend/internal/application/cart"
	catalogapp "github.com/stockroom/backend/internal/application/catalog"
	identityapp "github.com/stockroom/backend/internal/application/identity"
	orderapp "github.com/stockroom/backend/internal/application/order"
	"github.com/stockroom/backend/internal/domain/cart"
	"github.com/stockroom/backend/internal/domain/order"
	"github.com/stockroom/backend/internal/infrastructure/auth"
	"github.com/stockroom/backend/internal/infrastructure/cache"
	"github.com/stockroom/backend/internal/infrastructure/config"
	"github.com/stockroom/backend/internal/infrastructure/persistence"
	"github.com/stockroom/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orderFlow struct {
	products *catalogapp.ProductService
	carts    *cartapp.Service
	orders   *orderapp.Service
	auth     *identityapp.AuthService
	events   *testutil.RecordingHandler
}

func newOrderFlow(t *testing.T, tdb *TestDB) *orderFlow {
	t.Helper()
	ctx := context.Background()

	productRepo := persistence.NewGormProductRepository(tdb.DB)
	categoryRepo := persistence.NewGormCategoryRepository(tdb.DB)
	userRepo := persistence.NewGormUserRepository(tdb.DB)
	roleRepo := persistence.NewGormRoleRepository(tdb.DB)
	_, err := identityapp.EnsureDefaultRoles(ctx, roleRepo)
	require.NoError(t, err)

	store := cache.NewInMemoryCartStore(time.Hour)
	t.Cleanup(func() { _ = store.Close() })

	events := testutil.NewRecordingHandler()
	orders := orderapp.NewService(
		persistence.NewGormOrderRepository(tdb.DB),
		productRepo,
		store,
		persistence.NewGormOrderTransactionScope(tdb.DB),
	)
	orders.SetEventPublisher(events)
	orders.SetRetryBackoff(5 * time.Millisecond)

	jwt := auth.NewJWTService(config.JWTConfig{
		Secret:                 "integration-secret-key-32-characters",
		AccessTokenExpiration:  time.Minute,
		RefreshTokenExpiration: time.Hour,
		Issuer:                 "stockroom-integration",
	})

	return &orderFlow{
		products: catalogapp.NewProductService(productRepo, categoryRepo, persistence.NewGormNutritionRepository(tdb.DB)),
		carts:    cartapp.NewService(store, productRepo),
		orders:   orders,
		auth:     identityapp.NewAuthService(userRepo, roleRepo, jwt, auth.NewInMemoryTokenBlacklist()),
		events:   events,
	}
}

func (f *orderFlow) customer(t *testing.T, n int) uuid.UUID {
	t.Helper()
	u, err := f.auth.Register(context.Background(), identityapp.RegisterRequest{
		Email:     fmt.Sprintf("cliente%d@forneria.cl", n),
		RUT:       fmt.Sprintf("%d-%d", 10000000+n, n%10),
		FirstName: "Cliente",
		LastName:  fmt.Sprintf("Número %d", n),
		Password:  "cliente-secret",
	})
	require.NoError(t, err)
	return u.ID
}

func (f *orderFlow) product(t *testing.T, name string, stock int) uuid.UUID {
	t.Helper()
	p, err := f.products.Create(context.Background(), catalogapp.CreateProductRequest{
		Name:         name,
		Price:        decimal.NewFromInt(1500),
		CurrentStock: stock,
		MinStock:     0,
		MaxStock:     100,
		ExpiryDate:   time.Now().AddDate(0, 1, 0).Format("2006-01-02"),
	})
	require.NoError(t, err)
	return p.ID
}

func (f *orderFlow) stock(t *testing.T, id uuid.UUID) int {
	t.Helper()
	p, err := f.products.GetByID(context.Background(), id)
	require.NoError(t, err)
	return p.CurrentStock
}

func TestPlaceOrder_Postgres(t *testing.T) {
	tdb := NewTestDB(t)
	f := newOrderFlow(t, tdb)
	ctx := context.Background()

	userID := f.customer(t, 1)
	pan := f.product(t, "Pan amasado", 5)
	key := cart.KeyForUser(userID.String())

	_, err := f.carts.Add(ctx, key, cartapp.AddItemRequest{ProductID: pan, Quantity: 2})
	require.NoError(t, err)

	placed, err := f.orders.PlaceOrder(ctx, userID, key)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPending, placed.Status)
	assert.True(t, placed.Total.Equal(decimal.NewFromInt(3000)))
	assert.Equal(t, 3, f.stock(t, pan))
	assert.Equal(t, 1, f.events.Count(order.EventTypeOrderPlaced))

	_, err = f.orders.Cancel(ctx, orderapp.Actor{UserID: userID}, placed.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, f.stock(t, pan))
}

func TestPlaceOrder_LastUnitRace(t *testing.T) {
	tdb := NewTestDB(t)
	f := newOrderFlow(t, tdb)
	ctx := context.Background()

	const buyers = 8
	const stock = 3
	torta := f.product(t, "Torta de mil hojas", stock)

	users := make([]uuid.UUID, buyers)
	for i := range users {
		users[i] = f.customer(t, i+1)
		_, err := f.carts.Add(ctx, cart.KeyForUser(users[i].String()), cartapp.AddItemRequest{ProductID: torta, Quantity: 1})
		require.NoError(t, err)
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		placed   int
		rejected int
	)
	for _, userID := range users {
		wg.Add(1)
		go func(userID uuid.UUID) {
			defer wg.Done()
			_, err := f.orders.PlaceOrder(ctx, userID, cart.KeyForUser(userID.String()))
			mu.Lock()
			defer mu.Unlock()
			var stockErr *order.StockError
			switch {
			case err == nil:
				placed++
			case errors.As(err, &stockErr):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(userID)
	}
	wg.Wait()

	assert.Equal(t, stock, placed)
	assert.Equal(t, buyers-stock, rejected)
	assert.Equal(t, 0, f.stock(t, torta))
	assert.Equal(t, stock, f.events.Count(order.EventTypeOrderPlaced))
}
