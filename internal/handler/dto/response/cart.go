package response

import (
	"storefront/internal/domain/cart"

	"github.com/google/uuid"
)

type CartItemResponse struct {
	ProductID uuid.UUID  `json:"productId"`
	VariantID *uuid.UUID `json:"variantId,omitempty"`
	Quantity  int32      `json:"quantity"`
}

// CartResponse is the thin write-side echo returned by cart mutations.
// GET /cart serves the priced queries.CartView instead.
type CartResponse struct {
	ID    uuid.UUID          `json:"id"`
	Items []CartItemResponse `json:"items"`
}

func FromCart(c *cart.Cart) *CartResponse {
	items := make([]CartItemResponse, 0, len(c.Items()))
	for _, item := range c.Items() {
		items = append(items, CartItemResponse{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
		})
	}
	return &CartResponse{ID: c.ID(), Items: items}
}
