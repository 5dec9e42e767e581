package shared

import (
	"context"
	"time"

	"storefront/internal/domain/cart"
	"storefront/internal/domain/order"
	"storefront/internal/infra/db"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: Full transaction for write operations with retry logic
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithinReadOnly: Read-only transaction for multi-table consistent reads
	WithinReadOnly(ctx context.Context, fn func(ctx context.Context, dbtx db.DBTX) error) error
	// WithDB: Single query operations using implicit transactions
	WithDB(ctx context.Context, fn func(ctx context.Context, dbtx db.DBTX) error) error
	// CommandReads: Direct access to command reads for validation outside transactions
	CommandReads() CommandReads
}

type Tx interface {
	Carts() CartRepository
	Orders() OrderRepository
	Inventory() InventoryRepository
	Discounts() DiscountRepository
	Idempotency() IdempotencyRepository
	WebhookEvents() WebhookEventRepository
	Reads() CommandReads
	DB() db.DBTX
}

type CommandReads interface {
	ProductByID(ctx context.Context, tenantID, productID uuid.UUID) (*ProductSnapshot, error)
	StockByProduct(ctx context.Context, tenantID, productID uuid.UUID, variantID *uuid.UUID) (*StockSnapshot, error)
	DiscountByCode(ctx context.Context, tenantID uuid.UUID, code string) (*DiscountSnapshot, error)
	DiscountByID(ctx context.Context, tenantID, discountID uuid.UUID) (*DiscountSnapshot, error)
	CartByOwner(ctx context.Context, actor Actor) (*cart.Cart, error)
	CartByID(ctx context.Context, tenantID, cartID uuid.UUID) (*cart.Cart, error)
	OrderByID(ctx context.Context, tenantID, orderID uuid.UUID) (*order.Order, error)
	OrderByPaymentIntent(ctx context.Context, tenantID uuid.UUID, intentID string) (*order.Order, error)
	IdempotencyByKey(ctx context.Context, tenantID uuid.UUID, key string) (*IdempotencyRecord, error)
}

type CartRepository interface {
	Create(ctx context.Context, tx db.DBTX, c *cart.Cart) (uuid.UUID, error)
	UpsertItem(ctx context.Context, tx db.DBTX, cartID uuid.UUID, item cart.Item) error
	SetItemQuantity(ctx context.Context, tx db.DBTX, cartID, productID uuid.UUID, variantID *uuid.UUID, quantity int32) error
	RemoveItem(ctx context.Context, tx db.DBTX, cartID, productID uuid.UUID, variantID *uuid.UUID) error
	ClearItems(ctx context.Context, tx db.DBTX, cartID uuid.UUID) error
	SetDiscount(ctx context.Context, tx db.DBTX, cartID uuid.UUID, discountID *uuid.UUID) error
	Delete(ctx context.Context, tx db.DBTX, cartID uuid.UUID) error
	Touch(ctx context.Context, tx db.DBTX, cartID uuid.UUID) error
}

type OrderRepository interface {
	Create(ctx context.Context, tx db.DBTX, o *order.Order) (uuid.UUID, error)
	CreateItems(ctx context.Context, tx db.DBTX, orderID uuid.UUID, items []order.Item) error
	// UpdateStatus transitions only when the order currently has fromStatus.
	// Returns the number of rows changed so callers can detect races.
	UpdateStatus(ctx context.Context, tx db.DBTX, orderID uuid.UUID, fromStatus, toStatus order.Status) (int64, error)
	UpdatePaymentStatus(ctx context.Context, tx db.DBTX, orderID uuid.UUID, status order.PaymentStatus, reference *string) error
	AddRefund(ctx context.Context, tx db.DBTX, orderID uuid.UUID, amountCents int64, status order.PaymentStatus) error
}

type InventoryRepository interface {
	// StockForUpdate reads the stock row under a row-level lock held until
	// the surrounding transaction commits.
	StockForUpdate(ctx context.Context, tx db.DBTX, tenantID, unitID uuid.UUID) (*StockSnapshot, error)
	AdjustStock(ctx context.Context, tx db.DBTX, unitID uuid.UUID, delta int32) error
}

type DiscountRepository interface {
	// IncrementUsage bumps usage_count only while under the usage limit.
	// Returns the number of rows changed.
	IncrementUsage(ctx context.Context, tx db.DBTX, discountID uuid.UUID) (int64, error)
	DecrementUsage(ctx context.Context, tx db.DBTX, discountID uuid.UUID) error
}

type IdempotencyRepository interface {
	// TryInsert registers the key's first sighting. Returns the number of
	// rows inserted: zero means another request already holds the key.
	TryInsert(ctx context.Context, tx db.DBTX, tenantID uuid.UUID, key, requestHash string, expiresAt time.Time) (int64, error)
	Get(ctx context.Context, tx db.DBTX, tenantID uuid.UUID, key string) (*IdempotencyRecord, error)
	UpdateStatusCompleted(ctx context.Context, tx db.DBTX, tenantID uuid.UUID, key string, responseBody []byte, orderID uuid.UUID) error
	UpdateStatusFailed(ctx context.Context, tx db.DBTX, tenantID uuid.UUID, key string) error
	// ClaimFailedKey atomically flips a failed or expired record back to
	// processing for a retry attempt. Returns the number of rows changed.
	ClaimFailedKey(ctx context.Context, tx db.DBTX, tenantID uuid.UUID, key, requestHash string, expiresAt time.Time) (int64, error)
}

type WebhookEventRepository interface {
	// TryInsert records the first delivery of a provider event. Returns the
	// number of rows inserted: zero means the event was already applied.
	TryInsert(ctx context.Context, tx db.DBTX, tenantID uuid.UUID, eventID string) (int64, error)
}
