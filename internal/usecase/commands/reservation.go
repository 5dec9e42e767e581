package commands

import (
	"bytes"
	"context"
	"slices"
	"time"

	"storefront/internal/domain/order"
	"storefront/internal/infra"
	"storefront/internal/pkg/config"
	"storefront/internal/pkg/errs"
	"storefront/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrInsufficientStock    = errs.New("insufficient stock")
	ErrInventoryContention  = errs.New("inventory unit is locked by another checkout")
	ErrInventoryUnitMissing = errs.New("inventory unit not found")
)

// ReservationLine is one stock decrement the engine must apply.
type ReservationLine struct {
	UnitID    uuid.UUID
	ProductID uuid.UUID
	VariantID *uuid.UUID
	Quantity  int32
}

// ReservationEngine holds stock for orders inside the caller's transaction.
// Advisory Redis locks keep hot units from piling up on the database row
// lock; the FOR UPDATE read remains the source of truth.
type ReservationEngine struct {
	locks   shared.LockManager
	lockTTL time.Duration
}

func NewReservationEngine(locks shared.LockManager, cfg config.CheckoutConfig) *ReservationEngine {
	return &ReservationEngine{
		locks:   locks,
		lockTTL: cfg.InventoryLockTTL,
	}
}

func inventoryLockKey(tenantID, unitID uuid.UUID) string {
	return "inventory:" + tenantID.String() + ":" + unitID.String()
}

// Reserve decrements stock for every line. Lines are processed in ascending
// unit id order so two overlapping checkouts always contend in the same
// sequence and cannot deadlock. Any failure aborts the whole reservation;
// the caller's transaction rollback undoes prior decrements.
func (e *ReservationEngine) Reserve(ctx context.Context, tx shared.Tx, tenantID uuid.UUID, lines []ReservationLine) error {
	sorted := slices.Clone(lines)
	slices.SortFunc(sorted, func(a, b ReservationLine) int {
		return bytes.Compare(a.UnitID[:], b.UnitID[:])
	})

	for _, line := range sorted {
		if err := e.reserveOne(ctx, tx, tenantID, line); err != nil {
			return err
		}
	}
	return nil
}

func (e *ReservationEngine) reserveOne(ctx context.Context, tx shared.Tx, tenantID uuid.UUID, line ReservationLine) error {
	token := uuid.NewString()
	key := inventoryLockKey(tenantID, line.UnitID)

	granted, err := e.locks.Acquire(ctx, key, token, e.lockTTL)
	if err != nil {
		return errs.Wrap(err, "failed to acquire inventory lock")
	}
	if !granted {
		return ErrInventoryContention
	}
	// Released before the next line; the row lock below protects the
	// decrement until commit.
	defer func() { _ = e.locks.Release(ctx, key, token) }()

	stock, err := tx.Inventory().StockForUpdate(ctx, tx.DB(), tenantID, line.UnitID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return ErrInventoryUnitMissing
		}
		return err
	}

	if stock.StockQuantity < line.Quantity {
		return ErrInsufficientStock
	}

	return tx.Inventory().AdjustStock(ctx, tx.DB(), line.UnitID, -line.Quantity)
}

// Release is the compensating credit for an order's reservation. It is
// idempotent at order granularity: the conditional status flip away from
// pending_payment decides exactly once whether the credits run. Returns
// false when the order was already released or confirmed.
func (e *ReservationEngine) Release(ctx context.Context, tx shared.Tx, tenantID, orderID uuid.UUID) (bool, error) {
	changed, err := tx.Orders().UpdateStatus(ctx, tx.DB(), orderID, order.StatusPendingPayment, order.StatusCancelled)
	if err != nil {
		return false, err
	}
	if changed == 0 {
		return false, nil
	}

	o, err := tx.Reads().OrderByID(ctx, tenantID, orderID)
	if err != nil {
		return false, err
	}

	for _, item := range o.Items() {
		stock, err := tx.Reads().StockByProduct(ctx, tenantID, item.ProductID, item.VariantID)
		if err != nil {
			return false, err
		}
		if err := tx.Inventory().AdjustStock(ctx, tx.DB(), stock.UnitID, item.Quantity); err != nil {
			return false, err
		}
	}

	return true, nil
}
