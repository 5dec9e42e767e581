package request

import (
	"strings"
)

type CheckoutRequest struct {
	ShippingMethod string  `json:"shippingMethod" binding:"required"`
	DiscountCode   *string `json:"discountCode,omitempty"`
}

func (r CheckoutRequest) GetDiscountCode() *string {
	if r.DiscountCode == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*r.DiscountCode)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
