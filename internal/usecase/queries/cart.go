package queries

import (
	"context"
	"time"

	"storefront/internal/infra"
	"storefront/internal/infra/readstore"
	"storefront/internal/pkg/errs"
	"storefront/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrCartViewNotFound = errs.New("cart not found")

// Read models (DTO for read side)
type CartItemView struct {
	ProductID      uuid.UUID  `json:"productId"`
	VariantID      *uuid.UUID `json:"variantId,omitempty"`
	Name           string     `json:"name"`
	SKU            string     `json:"sku"`
	UnitPriceCents int64      `json:"unitPriceCents"`
	Quantity       int32      `json:"quantity"`
	LineTotalCents int64      `json:"lineTotalCents"`
}

type CartView struct {
	ID            uuid.UUID      `json:"id"`
	Items         []CartItemView `json:"items"`
	DiscountCode  *string        `json:"discountCode,omitempty"`
	SubtotalCents int64          `json:"subtotalCents"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

type CartQueries interface {
	GetForActor(ctx context.Context, actor shared.Actor) (*CartView, error)
}

type cartQueriesImpl struct {
	pool *pgxpool.Pool
}

func NewCartQueries(pool *pgxpool.Pool) CartQueries {
	return &cartQueriesImpl{pool: pool}
}

func (q *cartQueriesImpl) GetForActor(ctx context.Context, actor shared.Actor) (*CartView, error) {
	carts := readstore.NewCartReadStore(q.pool)
	products := readstore.NewProductReadStore(q.pool)
	discounts := readstore.NewDiscountReadStore(q.pool)

	c, err := carts.FindByOwner(ctx, actor)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrCartViewNotFound
		}
		return nil, err
	}

	view := &CartView{
		ID:        c.ID(),
		Items:     make([]CartItemView, 0, len(c.Items())),
		UpdatedAt: c.UpdatedAt(),
	}

	for _, item := range c.Items() {
		product, err := products.FindByID(ctx, actor.TenantID, item.ProductID)
		if err != nil {
			return nil, err
		}
		lineTotal := product.UnitPriceCents * int64(item.Quantity)
		view.Items = append(view.Items, CartItemView{
			ProductID:      item.ProductID,
			VariantID:      item.VariantID,
			Name:           product.Name,
			SKU:            product.SKU,
			UnitPriceCents: product.UnitPriceCents,
			Quantity:       item.Quantity,
			LineTotalCents: lineTotal,
		})
		view.SubtotalCents += lineTotal
	}

	if c.DiscountID() != nil {
		snap, err := discounts.FindByID(ctx, actor.TenantID, *c.DiscountID())
		if err == nil {
			code := snap.Code
			view.DiscountCode = &code
		} else if !infra.IsKind(err, infra.KindNotFound) {
			return nil, err
		}
	}

	return view, nil
}
