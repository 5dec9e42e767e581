package uow

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"log/slog"
	"time"

	"storefront/internal/domain/cart"
	"storefront/internal/domain/order"
	"storefront/internal/infra/db"
	"storefront/internal/infra/readstore"
	"storefront/internal/infra/repository"
	"storefront/internal/pkg/errs"
	"storefront/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgErrCodeSerializationFailure = "40001"
	pgErrCodeDeadlockDetected     = "40P01"
)

var (
	errTransactionBegin   = errs.New("failed to begin transaction")
	errTransactionCommit  = errs.New("failed to commit transaction")
	errMaxRetriesExceeded = errs.New("transaction failed after max retries")
)

type PostgresUoW struct {
	pool *pgxpool.Pool
}

func NewPostgresUoW(pool *pgxpool.Pool) shared.UnitOfWork {
	return &PostgresUoW{pool: pool}
}

// ReadCommitted prevents dirty reads while allowing concurrent writes
func (u *PostgresUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return u.runInTxWithOptions(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, fn)
}

// Read-only transaction for consistent multi-table snapshots
func (u *PostgresUoW) WithinReadOnly(ctx context.Context, fn func(ctx context.Context, dbtx db.DBTX) error) error {
	return u.runReadOnlyTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly}, fn)
}

func (u *PostgresUoW) WithDB(ctx context.Context, fn func(ctx context.Context, dbtx db.DBTX) error) error {
	return fn(ctx, u.pool)
}

func (u *PostgresUoW) CommandReads() shared.CommandReads {
	return &commandReads{dbtx: u.pool}
}

// Avoids defer accumulation in retry loops to prevent connection leaks
func (u *PostgresUoW) runInTxWithOptions(ctx context.Context, options pgx.TxOptions, fn func(ctx context.Context, tx shared.Tx) error) error {
	const maxRetries = 3
	base := 100 * time.Millisecond

	for attempt := 0; attempt <= maxRetries; attempt++ {
		pgxTx, err := u.pool.BeginTx(ctx, options)
		if err != nil {
			return errs.Mark(err, errTransactionBegin)
		}

		tx := &pgTx{dbtx: pgxTx}

		err = fn(ctx, tx)
		if err == nil {
			if err = pgxTx.Commit(ctx); err == nil {
				return nil
			}
			err = errs.Mark(err, errTransactionCommit)
		}

		if rollbackErr := pgxTx.Rollback(ctx); rollbackErr != nil {
			if !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				slog.Warn("rollback failed", "attempt", attempt+1, "error", rollbackErr.Error())
			}
		}

		if !shouldRetry(err, attempt, maxRetries) {
			if attempt == maxRetries {
				slog.Error("transaction failed after max retries",
					"attempts", attempt+1,
					"error", err.Error())
				return errs.Mark(err, errMaxRetriesExceeded)
			}
			return err
		}

		waitTime := calculateBackoff(attempt, base)

		slog.Warn("retrying transaction due to retryable error",
			"attempt", attempt+1,
			"wait_ms", waitTime.Milliseconds(),
			"error", err.Error())

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitTime):
		}
	}

	return errMaxRetriesExceeded
}

func (u *PostgresUoW) runReadOnlyTx(ctx context.Context, options pgx.TxOptions, fn func(ctx context.Context, dbtx db.DBTX) error) error {
	pgxTx, err := u.pool.BeginTx(ctx, options)
	if err != nil {
		return errs.Mark(err, errTransactionBegin)
	}

	defer func() {
		if rollbackErr := pgxTx.Rollback(ctx); rollbackErr != nil {
			if !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				slog.Warn("failed to rollback read-only transaction", "error", rollbackErr.Error())
			}
		}
	}()

	if err := fn(ctx, pgxTx); err != nil {
		return err
	}

	return pgxTx.Commit(ctx)
}

func shouldRetry(err error, attempt, maxRetries int) bool {
	return isRetryableError(err) && attempt < maxRetries
}

func calculateBackoff(attempt int, base time.Duration) time.Duration {
	waitTime := time.Duration(1<<attempt) * base
	jitter := cryptoRandInt63n(int64(waitTime / 5))
	return waitTime + time.Duration(jitter)
}

func cryptoRandInt63n(n int64) int64 {
	if n <= 0 {
		return 0
	}
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0
	}
	// Safe conversion: mask high bit to ensure positive int64
	uval := binary.BigEndian.Uint64(buf[:]) & 0x7FFFFFFFFFFFFFFF
	// #nosec G115 -- Intentionally safe conversion after masking
	return int64(uval) % n
}

func isRetryableError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}

	switch pgErr.Code {
	case pgErrCodeSerializationFailure, pgErrCodeDeadlockDetected:
		return true
	default:
		return false
	}
}

type pgTx struct {
	dbtx db.DBTX

	// Lazy-initialized repositories
	cartRepo         shared.CartRepository
	orderRepo        shared.OrderRepository
	inventoryRepo    shared.InventoryRepository
	discountRepo     shared.DiscountRepository
	idempotencyRepo  shared.IdempotencyRepository
	webhookEventRepo shared.WebhookEventRepository
	commandReads     shared.CommandReads
}

func (t *pgTx) DB() db.DBTX {
	return t.dbtx
}

func (t *pgTx) Carts() shared.CartRepository {
	if t.cartRepo == nil {
		t.cartRepo = repository.NewCartRepository()
	}
	return t.cartRepo
}

func (t *pgTx) Orders() shared.OrderRepository {
	if t.orderRepo == nil {
		t.orderRepo = repository.NewOrderRepository()
	}
	return t.orderRepo
}

func (t *pgTx) Inventory() shared.InventoryRepository {
	if t.inventoryRepo == nil {
		t.inventoryRepo = repository.NewInventoryRepository()
	}
	return t.inventoryRepo
}

func (t *pgTx) Discounts() shared.DiscountRepository {
	if t.discountRepo == nil {
		t.discountRepo = repository.NewDiscountRepository()
	}
	return t.discountRepo
}

func (t *pgTx) Idempotency() shared.IdempotencyRepository {
	if t.idempotencyRepo == nil {
		t.idempotencyRepo = repository.NewIdempotencyRepository()
	}
	return t.idempotencyRepo
}

func (t *pgTx) WebhookEvents() shared.WebhookEventRepository {
	if t.webhookEventRepo == nil {
		t.webhookEventRepo = repository.NewWebhookEventRepository()
	}
	return t.webhookEventRepo
}

func (t *pgTx) Reads() shared.CommandReads {
	if t.commandReads == nil {
		t.commandReads = &commandReads{dbtx: t.dbtx}
	}
	return t.commandReads
}

type commandReads struct {
	dbtx db.DBTX

	// Lazy-initialized readstores
	productStore     *readstore.ProductReadStore
	cartStore        *readstore.CartReadStore
	orderStore       *readstore.OrderReadStore
	discountStore    *readstore.DiscountReadStore
	idempotencyStore *readstore.IdempotencyReadStore
}

func (r *commandReads) products() *readstore.ProductReadStore {
	if r.productStore == nil {
		r.productStore = readstore.NewProductReadStore(r.dbtx)
	}
	return r.productStore
}

func (r *commandReads) carts() *readstore.CartReadStore {
	if r.cartStore == nil {
		r.cartStore = readstore.NewCartReadStore(r.dbtx)
	}
	return r.cartStore
}

func (r *commandReads) orders() *readstore.OrderReadStore {
	if r.orderStore == nil {
		r.orderStore = readstore.NewOrderReadStore(r.dbtx)
	}
	return r.orderStore
}

func (r *commandReads) discounts() *readstore.DiscountReadStore {
	if r.discountStore == nil {
		r.discountStore = readstore.NewDiscountReadStore(r.dbtx)
	}
	return r.discountStore
}

func (r *commandReads) idempotency() *readstore.IdempotencyReadStore {
	if r.idempotencyStore == nil {
		r.idempotencyStore = readstore.NewIdempotencyReadStore(r.dbtx)
	}
	return r.idempotencyStore
}

func (r *commandReads) ProductByID(ctx context.Context, tenantID, productID uuid.UUID) (*shared.ProductSnapshot, error) {
	return r.products().FindByID(ctx, tenantID, productID)
}

func (r *commandReads) StockByProduct(ctx context.Context, tenantID, productID uuid.UUID, variantID *uuid.UUID) (*shared.StockSnapshot, error) {
	return r.products().StockByProduct(ctx, tenantID, productID, variantID)
}

func (r *commandReads) DiscountByCode(ctx context.Context, tenantID uuid.UUID, code string) (*shared.DiscountSnapshot, error) {
	return r.discounts().FindByCode(ctx, tenantID, code)
}

func (r *commandReads) DiscountByID(ctx context.Context, tenantID, discountID uuid.UUID) (*shared.DiscountSnapshot, error) {
	return r.discounts().FindByID(ctx, tenantID, discountID)
}

func (r *commandReads) CartByOwner(ctx context.Context, actor shared.Actor) (*cart.Cart, error) {
	return r.carts().FindByOwner(ctx, actor)
}

func (r *commandReads) CartByID(ctx context.Context, tenantID, cartID uuid.UUID) (*cart.Cart, error) {
	return r.carts().FindByID(ctx, tenantID, cartID)
}

func (r *commandReads) OrderByID(ctx context.Context, tenantID, orderID uuid.UUID) (*order.Order, error) {
	return r.orders().FindByID(ctx, tenantID, orderID)
}

func (r *commandReads) OrderByPaymentIntent(ctx context.Context, tenantID uuid.UUID, intentID string) (*order.Order, error) {
	return r.orders().FindByPaymentIntent(ctx, tenantID, intentID)
}

func (r *commandReads) IdempotencyByKey(ctx context.Context, tenantID uuid.UUID, key string) (*shared.IdempotencyRecord, error) {
	return r.idempotency().Get(ctx, tenantID, key)
}
