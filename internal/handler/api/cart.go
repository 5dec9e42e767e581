package api

import (
	"errors"
	"net/http"

	"storefront/internal/domain/cart"
	reqdto "storefront/internal/handler/dto/request"
	resdto "storefront/internal/handler/dto/response"
	"storefront/internal/handler/httperr"
	"storefront/internal/handler/middleware"
	"storefront/internal/usecase/commands"
	"storefront/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CartHandler struct {
	cartCommands commands.CartCommands
	cartQueries  queries.CartQueries
}

func NewCartHandler(cartCommands commands.CartCommands, cartQueries queries.CartQueries) *CartHandler {
	return &CartHandler{
		cartCommands: cartCommands,
		cartQueries:  cartQueries,
	}
}

// @Summary Get cart
// @Description Get the priced cart for the current actor, creating one if absent
// @Tags carts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} queries.CartView
// @Failure 401 {object} httperr.Response
// @Router /cart [get]
func (h *CartHandler) GetCart(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	view, err := h.cartQueries.GetForActor(c.Request.Context(), actor)
	if errors.Is(err, queries.ErrCartViewNotFound) {
		if _, createErr := h.cartCommands.GetOrCreate(c.Request.Context(), actor); createErr != nil {
			h.abortCartError(c, createErr)
			return
		}
		view, err = h.cartQueries.GetForActor(c.Request.Context(), actor)
	}
	if err != nil {
		h.abortCartError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// @Summary Add cart item
// @Description Add a product line to the cart, merging quantity into an existing line
// @Tags carts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.AddCartItemRequest true "Item to add"
// @Success 200 {object} resdto.CartResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /cart/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	var req reqdto.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, httperr.CodeValidation, "Invalid request format", nil)
		return
	}

	updated, err := h.cartCommands.AddItem(c.Request.Context(), actor, req)
	if err != nil {
		h.abortCartError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromCart(updated))
}

// @Summary Update cart item
// @Description Replace the quantity of an existing cart line
// @Tags carts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param productId path string true "Product ID"
// @Param variantId query string false "Variant ID"
// @Param request body reqdto.UpdateCartItemRequest true "New quantity"
// @Success 200 {object} resdto.CartResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /cart/items/{productId} [patch]
func (h *CartHandler) UpdateItem(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	productID, variantID, err := lineParams(c)
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, httperr.CodeValidation, err.Error(), nil)
		return
	}

	var req reqdto.UpdateCartItemRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, httperr.CodeValidation, "Invalid request format", nil)
		return
	}

	updated, err := h.cartCommands.UpdateItem(c.Request.Context(), actor, productID, variantID, req.Quantity)
	if err != nil {
		h.abortCartError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromCart(updated))
}

// @Summary Remove cart item
// @Description Remove a line from the cart
// @Tags carts
// @Produce json
// @Security BearerAuth
// @Param productId path string true "Product ID"
// @Param variantId query string false "Variant ID"
// @Success 200 {object} resdto.CartResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /cart/items/{productId} [delete]
func (h *CartHandler) RemoveItem(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	productID, variantID, err := lineParams(c)
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, httperr.CodeValidation, err.Error(), nil)
		return
	}

	updated, err := h.cartCommands.RemoveItem(c.Request.Context(), actor, productID, variantID)
	if err != nil {
		h.abortCartError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromCart(updated))
}

// @Summary Clear cart
// @Description Remove all lines and any applied discount from the cart
// @Tags carts
// @Security BearerAuth
// @Success 204
// @Failure 404 {object} httperr.Response
// @Router /cart [delete]
func (h *CartHandler) ClearCart(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if err := h.cartCommands.Clear(c.Request.Context(), actor); err != nil {
		h.abortCartError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Apply discount
// @Description Attach a discount code to the cart
// @Tags carts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.ApplyDiscountRequest true "Discount code"
// @Success 200 {object} resdto.CartResponse
// @Failure 404 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /cart/discount [post]
func (h *CartHandler) ApplyDiscount(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	var req reqdto.ApplyDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, httperr.CodeValidation, "Invalid request format", nil)
		return
	}

	updated, err := h.cartCommands.ApplyDiscount(c.Request.Context(), actor, req.Code)
	if err != nil {
		h.abortCartError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromCart(updated))
}

// @Summary Remove discount
// @Description Detach the discount code from the cart
// @Tags carts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} resdto.CartResponse
// @Failure 404 {object} httperr.Response
// @Router /cart/discount [delete]
func (h *CartHandler) RemoveDiscount(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	updated, err := h.cartCommands.RemoveDiscount(c.Request.Context(), actor)
	if err != nil {
		h.abortCartError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromCart(updated))
}

// @Summary Merge guest cart
// @Description Merge a guest session cart into the authenticated user's cart
// @Tags carts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.MergeCartRequest true "Guest session to merge"
// @Success 200 {object} resdto.CartResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Router /cart/merge [post]
func (h *CartHandler) MergeCart(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if actor.IsGuest() {
		httperr.AbortWithError(c, http.StatusUnauthorized, errors.New("merge requires an authenticated user"),
			httperr.CodeUnauthorized, "Merge requires an authenticated user", nil)
		return
	}

	var req reqdto.MergeCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, httperr.CodeValidation, "Invalid request format", nil)
		return
	}

	updated, err := h.cartCommands.MergeGuestIntoUser(c.Request.Context(), actor.TenantID, *actor.UserID, req.SessionID)
	if err != nil {
		h.abortCartError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromCart(updated))
}

func (h *CartHandler) abortCartError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, commands.ErrCartNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, httperr.CodeNotFound, "Cart not found", nil)
	case errors.Is(err, commands.ErrProductNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, httperr.CodeNotFound, "Product not found", nil)
	case errors.Is(err, commands.ErrCartItemNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, httperr.CodeNotFound, "Cart item not found", nil)
	case errors.Is(err, commands.ErrDiscountNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, httperr.CodeNotFound, "Discount code not found", nil)
	case errors.Is(err, commands.ErrProductInactive):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, httperr.CodeValidation, "Product is not available", nil)
	case errors.Is(err, commands.ErrInsufficientStock):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, httperr.CodeInsufficientStock, "Insufficient stock for requested quantity", nil)
	case errors.Is(err, commands.ErrInvalidDiscount):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, httperr.CodeInvalidDiscount, "Discount cannot be applied", nil)
	case errors.Is(err, commands.ErrCartLockContention):
		httperr.AbortWithError(c, http.StatusConflict, err, httperr.CodeLockContention, "Cart is being modified by another request", nil)
	case errors.Is(err, cart.ErrInvalidQuantity):
		httperr.AbortWithError(c, http.StatusBadRequest, err, httperr.CodeValidation, "Quantity must be positive", nil)
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err, httperr.CodeInternal, "Internal server error", nil)
	}
}

func lineParams(c *gin.Context) (uuid.UUID, *uuid.UUID, error) {
	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		return uuid.Nil, nil, errors.New("invalid product ID format")
	}

	var variantID *uuid.UUID
	if raw := c.Query("variantId"); raw != "" {
		parsed, parseErr := uuid.Parse(raw)
		if parseErr != nil {
			return uuid.Nil, nil, errors.New("invalid variant ID format")
		}
		variantID = &parsed
	}
	return productID, variantID, nil
}
