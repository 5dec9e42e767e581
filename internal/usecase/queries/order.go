package queries

import (
	"context"
	"time"

	"storefront/internal/domain/order"
	"storefront/internal/infra"
	"storefront/internal/infra/readstore"
	"storefront/internal/pkg/errs"
	"storefront/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrOrderViewNotFound = errs.New("order not found")

type OrderItemView struct {
	ProductID      uuid.UUID  `json:"productId"`
	VariantID      *uuid.UUID `json:"variantId,omitempty"`
	Name           string     `json:"name"`
	SKU            string     `json:"sku"`
	UnitPriceCents int64      `json:"unitPriceCents"`
	Quantity       int32      `json:"quantity"`
}

type OrderView struct {
	ID               uuid.UUID       `json:"id"`
	Status           string          `json:"status"`
	PaymentStatus    string          `json:"paymentStatus"`
	PaymentIntentID  *string         `json:"paymentIntentId,omitempty"`
	PaymentReference *string         `json:"paymentReference,omitempty"`
	SubtotalCents    int64           `json:"subtotalCents"`
	ShippingCents    int64           `json:"shippingCents"`
	DiscountCents    int64           `json:"discountCents"`
	TaxCents         int64           `json:"taxCents"`
	TotalCents       int64           `json:"totalCents"`
	RefundedCents    int64           `json:"refundedCents"`
	ShippingMethod   string          `json:"shippingMethod"`
	Items            []OrderItemView `json:"items"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

type OrderListItem struct {
	ID            uuid.UUID `json:"id"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"paymentStatus"`
	TotalCents    int64     `json:"totalCents"`
	CreatedAt     time.Time `json:"createdAt"`
}

type OrderQueries interface {
	GetByID(ctx context.Context, actor shared.Actor, orderID uuid.UUID) (*OrderView, error)
	ListForActor(ctx context.Context, actor shared.Actor, limit int32) ([]*OrderListItem, error)
}

type orderQueriesImpl struct {
	pool *pgxpool.Pool
}

func NewOrderQueries(pool *pgxpool.Pool) OrderQueries {
	return &orderQueriesImpl{pool: pool}
}

func (q *orderQueriesImpl) GetByID(ctx context.Context, actor shared.Actor, orderID uuid.UUID) (*OrderView, error) {
	store := readstore.NewOrderReadStore(q.pool)

	o, err := store.FindByID(ctx, actor.TenantID, orderID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrOrderViewNotFound
		}
		return nil, err
	}
	if !ownedBy(o, actor) {
		// Ownership failures look identical to missing orders.
		return nil, ErrOrderViewNotFound
	}

	return toOrderView(o), nil
}

func (q *orderQueriesImpl) ListForActor(ctx context.Context, actor shared.Actor, limit int32) ([]*OrderListItem, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	store := readstore.NewOrderReadStore(q.pool)
	orders, err := store.ListByOwner(ctx, actor.TenantID, actor.UserID, actor.SessionID, limit)
	if err != nil {
		return nil, err
	}

	items := make([]*OrderListItem, 0, len(orders))
	for _, o := range orders {
		items = append(items, &OrderListItem{
			ID:            o.ID(),
			Status:        string(o.Status()),
			PaymentStatus: string(o.PaymentStatus()),
			TotalCents:    o.Amounts().TotalCents,
			CreatedAt:     o.CreatedAt(),
		})
	}
	return items, nil
}

func ownedBy(o *order.Order, actor shared.Actor) bool {
	if actor.UserID != nil {
		return o.UserID() != nil && *o.UserID() == *actor.UserID
	}
	if actor.SessionID != nil {
		return o.SessionID() != nil && *o.SessionID() == *actor.SessionID
	}
	return false
}

func toOrderView(o *order.Order) *OrderView {
	items := make([]OrderItemView, 0, len(o.Items()))
	for _, item := range o.Items() {
		items = append(items, OrderItemView{
			ProductID:      item.ProductID,
			VariantID:      item.VariantID,
			Name:           item.Name,
			SKU:            item.SKU,
			UnitPriceCents: item.UnitPriceCents,
			Quantity:       item.Quantity,
		})
	}

	a := o.Amounts()
	return &OrderView{
		ID:               o.ID(),
		Status:           string(o.Status()),
		PaymentStatus:    string(o.PaymentStatus()),
		PaymentIntentID:  o.PaymentIntentID(),
		PaymentReference: o.PaymentReference(),
		SubtotalCents:    a.SubtotalCents,
		ShippingCents:    a.ShippingCents,
		DiscountCents:    a.DiscountCents,
		TaxCents:         a.TaxCents,
		TotalCents:       a.TotalCents,
		RefundedCents:    o.RefundedCents(),
		ShippingMethod:   o.ShippingMethod(),
		Items:            items,
		CreatedAt:        o.CreatedAt(),
		UpdatedAt:        o.UpdatedAt(),
	}
}
