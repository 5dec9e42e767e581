package httperr

import (
	"github.com/gin-gonic/gin"
)

// Stable machine-readable error codes. Clients branch on these, never on
// the human message.
const (
	CodeNotFound           = "NOT_FOUND"
	CodeValidation         = "VALIDATION"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeLockContention     = "LOCK_CONTENTION"
	CodeCheckoutInProgress = "CHECKOUT_IN_PROGRESS"
	CodeIdempotencyReused  = "IDEMPOTENCY_KEY_REUSED"
	CodeEmptyCart          = "EMPTY_CART"
	CodeInsufficientStock  = "INSUFFICIENT_STOCK"
	CodeInvalidDiscount    = "INVALID_DISCOUNT"
	CodeOrderState         = "ORDER_STATE"
	CodePaymentGateway     = "PAYMENT_GATEWAY"
	CodeInternal           = "INTERNAL"
)

type Response struct {
	Status int `json:"-"`
	Error  struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Detail any `json:"detail,omitempty"`
}

// preserves original error for future monitoring
func AbortWithError(c *gin.Context, status int, err error, code, msg string, detail any) {
	if err == nil {
		panic("AbortWithError: err cannot be nil")
	}

	resp := Response{Status: status}
	resp.Error.Code = code
	resp.Error.Message = msg
	resp.Detail = detail

	_ = c.Error(gin.Error{
		Err:  err,
		Type: gin.ErrorTypePublic,
		Meta: resp,
	})
	c.AbortWithStatusJSON(status, resp)
}
