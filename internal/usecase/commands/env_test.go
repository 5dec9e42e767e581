//go:build unit

package commands_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"storefront/internal/infra/lock"
	"storefront/internal/pkg/clock"
	"storefront/internal/pkg/config"
	"storefront/internal/usecase/commands"
	"storefront/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// commandEnv wires the command layer against in-memory collaborators so the
// full checkout pipeline runs without Postgres or Redis.
type commandEnv struct {
	store    *fakeStore
	uow      *fakeUoW
	locks    *lock.MemoryLockManager
	gateway  *fakeGateway
	sessions *fakeSessionStore
	clock    *clock.MockClock
	cfg      config.Config

	carts    commands.CartCommands
	checkout commands.CheckoutCommands
}

func newCommandEnv(t *testing.T) *commandEnv {
	t.Helper()

	store := newFakeStore()
	uow := &fakeUoW{store: store}
	locks := lock.NewMemoryLockManager()
	gateway := &fakeGateway{}
	sessions := newFakeSessionStore()
	clk := clock.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	cfg := config.NewTestConfig()

	carts := commands.NewCartCommands(uow, locks, clk, cfg.Checkout)
	engine := commands.NewReservationEngine(locks, cfg.Checkout)
	checkout, err := commands.NewCheckoutCommands(uow, engine, locks, gateway, sessions, clk, cfg.Payment, cfg.Checkout)
	require.NoError(t, err)

	return &commandEnv{
		store:    store,
		uow:      uow,
		locks:    locks,
		gateway:  gateway,
		sessions: sessions,
		clock:    clk,
		cfg:      cfg,
		carts:    carts,
		checkout: checkout,
	}
}

// seedProduct registers an active product with one unversioned stock unit.
func (e *commandEnv) seedProduct(name string, priceCents int64, stockQty int32) (productID, unitID uuid.UUID) {
	productID = uuid.New()
	unitID = uuid.New()
	e.store.addProduct(shared.ProductSnapshot{
		ID:             productID,
		Name:           name,
		SKU:            "SKU-" + name,
		UnitPriceCents: priceCents,
		Active:         true,
	})
	e.store.addStock(shared.StockSnapshot{
		UnitID:        unitID,
		ProductID:     productID,
		StockQuantity: stockQty,
	})
	return productID, unitID
}

// holdLock grabs a lock key out-of-band so the command under test contends.
func (e *commandEnv) holdLock(t *testing.T, key string) {
	t.Helper()
	granted, err := e.locks.Acquire(context.Background(), key, uuid.NewString(), time.Minute)
	require.NoError(t, err)
	require.True(t, granted)
}

// raceLockManager fires a callback once, just before the first Acquire. It
// emulates a competing request whose write lands between a caller's pre-lock
// read and its critical section.
type raceLockManager struct {
	shared.LockManager
	mu     sync.Mutex
	before func()
}

func (m *raceLockManager) Acquire(ctx context.Context, key, token string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	fn := m.before
	m.before = nil
	m.mu.Unlock()
	if fn != nil {
		fn()
	}
	return m.LockManager.Acquire(ctx, key, token, ttl)
}
