package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	reqdto "storefront/internal/handler/dto/request"
	"storefront/internal/handler/httperr"
	"storefront/internal/handler/middleware"
	"storefront/internal/usecase/commands"
	"storefront/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CheckoutHandler struct {
	checkoutCommands commands.CheckoutCommands
	orderQueries     queries.OrderQueries
}

func NewCheckoutHandler(checkoutCommands commands.CheckoutCommands, orderQueries queries.OrderQueries) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutCommands: checkoutCommands,
		orderQueries:     orderQueries,
	}
}

// @Summary Initiate checkout
// @Description Price the cart, reserve stock and create a pending order
// @Tags checkout
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param Idempotency-Key header string false "Idempotency key for duplicate prevention"
// @Param request body reqdto.CheckoutRequest true "Checkout request"
// @Success 200 {object} map[string]any "Replayed response for a completed key"
// @Success 201 {object} map[string]any
// @Failure 400 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Failure 502 {object} httperr.Response
// @Router /checkout [post]
func (h *CheckoutHandler) InitiateCheckout(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	var req reqdto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, httperr.CodeValidation, "Invalid request format", nil)
		return
	}

	var idempotencyKey *string
	if key := strings.TrimSpace(c.GetHeader("Idempotency-Key")); key != "" {
		idempotencyKey = &key
	}

	result, err := h.checkoutCommands.InitiateCheckout(c.Request.Context(), actor, req, idempotencyKey)
	if err != nil {
		h.abortCheckoutError(c, err)
		return
	}

	status := http.StatusCreated
	if result.IsReplayed {
		status = http.StatusOK
	}
	// The stored response is returned verbatim so replays are byte-identical.
	c.Data(status, "application/json; charset=utf-8", result.Response)
}

// @Summary Cancel checkout
// @Description Cancel a pending order and release its stock reservation
// @Tags checkout
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Success 204
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /orders/{id}/cancel [post]
func (h *CheckoutHandler) CancelCheckout(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, httperr.CodeValidation, "Invalid order ID format", nil)
		return
	}

	// Ownership check runs through the query side so foreign orders 404.
	if _, err := h.orderQueries.GetByID(c.Request.Context(), actor, orderID); err != nil {
		h.abortCheckoutError(c, err)
		return
	}

	if err := h.checkoutCommands.CancelCheckout(c.Request.Context(), actor.TenantID, orderID); err != nil {
		h.abortCheckoutError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Get order
// @Description Get an order owned by the current actor
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Success 200 {object} queries.OrderView
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /orders/{id} [get]
func (h *CheckoutHandler) GetOrder(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, httperr.CodeValidation, "Invalid order ID format", nil)
		return
	}

	view, err := h.orderQueries.GetByID(c.Request.Context(), actor, orderID)
	if err != nil {
		h.abortCheckoutError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// @Summary List orders
// @Description List recent orders for the current actor
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Maximum number of orders" default(20)
// @Success 200 {array} queries.OrderListItem
// @Router /orders [get]
func (h *CheckoutHandler) ListOrders(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	var limit int32
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			httperr.AbortWithError(c, http.StatusBadRequest, err, httperr.CodeValidation, "Invalid limit", nil)
			return
		}
		limit = int32(parsed)
	}

	items, err := h.orderQueries.ListForActor(c.Request.Context(), actor, limit)
	if err != nil {
		h.abortCheckoutError(c, err)
		return
	}

	c.JSON(http.StatusOK, items)
}

func (h *CheckoutHandler) abortCheckoutError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, commands.ErrEmptyCart):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, httperr.CodeEmptyCart, "Cart is empty", nil)
	case errors.Is(err, commands.ErrUnknownShippingMethod):
		httperr.AbortWithError(c, http.StatusBadRequest, err, httperr.CodeValidation, "Unknown shipping method", nil)
	case errors.Is(err, commands.ErrInsufficientStock):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, httperr.CodeInsufficientStock, "Insufficient stock for requested quantity", nil)
	case errors.Is(err, commands.ErrInvalidDiscount):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, httperr.CodeInvalidDiscount, "Discount cannot be applied", nil)
	case errors.Is(err, commands.ErrCheckoutInProgress):
		httperr.AbortWithError(c, http.StatusConflict, err, httperr.CodeCheckoutInProgress, "Checkout for this key is already in progress", nil)
	case errors.Is(err, commands.ErrIdempotencyKeyReused):
		httperr.AbortWithError(c, http.StatusConflict, err, httperr.CodeIdempotencyReused, "Idempotency key reused with a different request", nil)
	case errors.Is(err, commands.ErrInventoryContention):
		httperr.AbortWithError(c, http.StatusConflict, err, httperr.CodeLockContention, "Inventory is locked by another checkout", nil)
	case errors.Is(err, commands.ErrOrderNotFound), errors.Is(err, queries.ErrOrderViewNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, httperr.CodeNotFound, "Order not found", nil)
	case errors.Is(err, commands.ErrPaymentGateway):
		httperr.AbortWithError(c, http.StatusBadGateway, err, httperr.CodePaymentGateway, "Payment provider is unavailable", nil)
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err, httperr.CodeInternal, "Internal server error", nil)
	}
}
