//go:build unit || e2e

package dbtest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// Tenants are administered by a separate service, so tests just mint IDs.
func NewTenantID() uuid.UUID {
	return uuid.New()
}

func CreateTestProduct(t *testing.T, db DBLike, tenantID uuid.UUID, name, sku string, priceCents int64, stock int32) (uuid.UUID, uuid.UUID) {
	t.Helper()

	productID := uuid.New()
	ctx := context.Background()

	_, err := db.Exec(ctx,
		"INSERT INTO products (id, tenant_id, name, sku, price_cents, active) VALUES ($1, $2, $3, $4, $5, true)",
		productID, tenantID, name, sku, priceCents)
	require.NoError(t, err)

	unitID := CreateTestInventoryUnit(t, db, tenantID, productID, nil, stock)
	return productID, unitID
}

func CreateTestInventoryUnit(t *testing.T, db DBLike, tenantID, productID uuid.UUID, variantID *uuid.UUID, stock int32) uuid.UUID {
	t.Helper()

	unitID := uuid.New()
	ctx := context.Background()

	_, err := db.Exec(ctx,
		"INSERT INTO inventory_units (id, tenant_id, product_id, variant_id, stock_quantity) VALUES ($1, $2, $3, $4, $5)",
		unitID, tenantID, productID, variantID, stock)
	require.NoError(t, err)

	return unitID
}

func CreateTestDiscount(t *testing.T, db DBLike, tenantID uuid.UUID, code string, amountOffCents *int64, percentOff *float64, usageLimit *int32) uuid.UUID {
	t.Helper()

	discountID := uuid.New()
	ctx := context.Background()

	_, err := db.Exec(ctx,
		"INSERT INTO discounts (id, tenant_id, code, amount_off_cents, percent_off, usage_limit, active) VALUES ($1, $2, $3, $4, $5, $6, true)",
		discountID, tenantID, code, amountOffCents, percentOff, usageLimit)
	require.NoError(t, err)

	return discountID
}

func StockQuantity(t *testing.T, db DBLike, unitID uuid.UUID) int32 {
	t.Helper()

	var qty int32
	err := db.QueryRow(context.Background(), "SELECT stock_quantity FROM inventory_units WHERE id = $1", unitID).Scan(&qty)
	require.NoError(t, err)
	return qty
}

// inserts basic reference data needed by tests
func SeedReferenceData(_ *pgxpool.Pool) error {
	// All storefront fixtures are per-test; there is no global reference data.
	return nil
}

var (
	buildTruncateOnce sync.Once
	truncateSQL       atomic.Value // string
)

// truncates all tables and reseeds reference data
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	buildTruncateOnce.Do(func() {
		rows, err := pool.Query(ctx, `
		  SELECT 'public.' || quote_ident(tablename)
		  FROM pg_tables
		  WHERE schemaname = 'public'
		    AND tablename NOT IN ('schema_migrations')`)
		if err != nil {
			truncateSQL.Store("")
			return
		}
		defer rows.Close()
		var tables []string
		for rows.Next() {
			var t string
			if err := rows.Scan(&t); err != nil {
				truncateSQL.Store("")
				return
			}
			tables = append(tables, t)
		}
		if rows.Err() != nil {
			truncateSQL.Store("")
			return
		}
		if len(tables) == 0 {
			truncateSQL.Store("SELECT 1")
			return
		}
		truncateSQL.Store("TRUNCATE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE;")
	})
	sqlAny := truncateSQL.Load()
	if sqlAny == nil || sqlAny.(string) == "" {
		return fmt.Errorf("failed to build TRUNCATE SQL")
	}
	if _, err := pool.Exec(ctx, sqlAny.(string)); err != nil {
		return err
	}

	return SeedReferenceData(pool)
}
