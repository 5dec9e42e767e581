package request

import (
	"github.com/google/uuid"
)

type AddCartItemRequest struct {
	ProductID uuid.UUID  `json:"productId" binding:"required"`
	VariantID *uuid.UUID `json:"variantId,omitempty"`
	Quantity  int32      `json:"quantity" binding:"required,min=1"`
}

type UpdateCartItemRequest struct {
	Quantity int32 `json:"quantity" binding:"required,min=1"`
}

type ApplyDiscountRequest struct {
	Code string `json:"code" binding:"required"`
}

type MergeCartRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
}
