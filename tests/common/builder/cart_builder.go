//go:build unit || e2e

package builder

import (
	"time"

	domcart "storefront/internal/domain/cart"
	reqdto "storefront/internal/handler/dto/request"
	"storefront/internal/usecase/shared"

	"github.com/google/uuid"
)

type CartBuilder struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	UserID    *uuid.UUID
	SessionID *string
	Items     []domcart.Item
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewCartBuilder() *CartBuilder {
	now := time.Now()
	userID := uuid.New()
	return &CartBuilder{
		ID:        uuid.New(),
		TenantID:  uuid.New(),
		UserID:    &userID,
		Items:     nil,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (b *CartBuilder) BuildDomain() (*domcart.Cart, error) {
	return domcart.NewCart(b.TenantID, b.UserID, b.SessionID)
}

func (b *CartBuilder) BuildReconstructed() *domcart.Cart {
	return domcart.ReconstructCart(b.ID, b.TenantID, b.UserID, b.SessionID, nil, b.Items, b.CreatedAt, b.UpdatedAt)
}

func (b *CartBuilder) BuildAddItemRequestDTO(productID uuid.UUID, quantity int32) reqdto.AddCartItemRequest {
	return reqdto.AddCartItemRequest{
		ProductID: productID,
		Quantity:  quantity,
	}
}

func (b *CartBuilder) BuildActor() shared.Actor {
	if b.UserID != nil {
		return shared.NewUserActor(b.TenantID, *b.UserID)
	}
	return shared.NewGuestActor(b.TenantID, *b.SessionID)
}

// Fluent builder methods
func (b *CartBuilder) WithTenantID(tenantID uuid.UUID) *CartBuilder {
	b.TenantID = tenantID
	return b
}

func (b *CartBuilder) WithUserID(userID uuid.UUID) *CartBuilder {
	b.UserID = &userID
	b.SessionID = nil
	return b
}

func (b *CartBuilder) AsGuest(sessionID string) *CartBuilder {
	b.UserID = nil
	b.SessionID = &sessionID
	return b
}

func (b *CartBuilder) WithItem(productID uuid.UUID, variantID *uuid.UUID, quantity int32) *CartBuilder {
	b.Items = append(b.Items, domcart.Item{
		ProductID: productID,
		VariantID: variantID,
		Quantity:  quantity,
	})
	return b
}
