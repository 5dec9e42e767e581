package shared

import (
	"time"

	"github.com/google/uuid"
)

type ProductSnapshot struct {
	ID             uuid.UUID
	Name           string
	SKU            string
	UnitPriceCents int64
	Active         bool
}

type StockSnapshot struct {
	UnitID        uuid.UUID
	ProductID     uuid.UUID
	VariantID     *uuid.UUID
	StockQuantity int32
}

type DiscountSnapshot struct {
	ID               uuid.UUID
	Code             string
	AmountOffCents   *int64
	PercentOff       *float64
	MaxAmountCents   *int64
	MinPurchaseCents int64
	UsageLimit       *int32
	UsageCount       int32
	StartsAt         *time.Time
	EndsAt           *time.Time
	Active           bool
}

type IdempotencyRecord struct {
	TenantID      uuid.UUID
	Key           string
	Status        string
	RequestHash   string
	ResponseBody  []byte
	ResultOrderID *uuid.UUID
	Attempts      int32
	ExpiresAt     time.Time
}

const (
	IdempotencyStatusProcessing = "processing"
	IdempotencyStatusCompleted  = "completed"
	IdempotencyStatusFailed     = "failed"
)
