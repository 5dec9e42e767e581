package cart

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidOwner    = errors.New("cart must belong to exactly one of user or session")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrItemNotFound    = errors.New("item not found in cart")
	ErrEmptyCart       = errors.New("cart has no items")
)

// Item is one line of a cart. Quantity is the only mutable part; prices are
// always read from the catalog at quote time, never stored on the line.
type Item struct {
	ProductID uuid.UUID
	VariantID *uuid.UUID
	Quantity  int32
}

func sameLine(a, b Item) bool {
	if a.ProductID != b.ProductID {
		return false
	}
	if (a.VariantID == nil) != (b.VariantID == nil) {
		return false
	}
	return a.VariantID == nil || *a.VariantID == *b.VariantID
}

type Cart struct {
	id         uuid.UUID
	tenantID   uuid.UUID
	userID     *uuid.UUID
	sessionID  *string
	discountID *uuid.UUID
	items      []Item
	createdAt  time.Time
	updatedAt  time.Time
}

func NewCart(tenantID uuid.UUID, userID *uuid.UUID, sessionID *string) (*Cart, error) {
	if (userID == nil) == (sessionID == nil) {
		return nil, ErrInvalidOwner
	}
	return &Cart{
		id:        uuid.New(),
		tenantID:  tenantID,
		userID:    userID,
		sessionID: sessionID,
	}, nil
}

func ReconstructCart(
	id, tenantID uuid.UUID,
	userID *uuid.UUID,
	sessionID *string,
	discountID *uuid.UUID,
	items []Item,
	createdAt, updatedAt time.Time,
) *Cart {
	return &Cart{
		id:         id,
		tenantID:   tenantID,
		userID:     userID,
		sessionID:  sessionID,
		discountID: discountID,
		items:      items,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}
}

// AddItem merges into an existing line for the same (product, variant) pair,
// otherwise appends a new line. Returns the resulting line quantity.
func (c *Cart) AddItem(productID uuid.UUID, variantID *uuid.UUID, quantity int32) (int32, error) {
	if quantity < 1 {
		return 0, ErrInvalidQuantity
	}

	line := Item{ProductID: productID, VariantID: variantID, Quantity: quantity}
	for i := range c.items {
		if sameLine(c.items[i], line) {
			c.items[i].Quantity += quantity
			return c.items[i].Quantity, nil
		}
	}

	c.items = append(c.items, line)
	return quantity, nil
}

func (c *Cart) SetQuantity(productID uuid.UUID, variantID *uuid.UUID, quantity int32) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	line := Item{ProductID: productID, VariantID: variantID}
	for i := range c.items {
		if sameLine(c.items[i], line) {
			c.items[i].Quantity = quantity
			return nil
		}
	}
	return ErrItemNotFound
}

func (c *Cart) RemoveItem(productID uuid.UUID, variantID *uuid.UUID) error {
	line := Item{ProductID: productID, VariantID: variantID}
	for i := range c.items {
		if sameLine(c.items[i], line) {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return nil
		}
	}
	return ErrItemNotFound
}

func (c *Cart) Clear() {
	c.items = nil
	c.discountID = nil
}

func (c *Cart) SetDiscount(discountID *uuid.UUID) {
	c.discountID = discountID
}

// MergeFrom folds a guest cart into this one: quantities of matching lines
// are summed, remaining lines move over, and the guest discount is carried
// only when this cart has none.
func (c *Cart) MergeFrom(guest *Cart) {
	for _, item := range guest.items {
		merged := false
		for i := range c.items {
			if sameLine(c.items[i], item) {
				c.items[i].Quantity += item.Quantity
				merged = true
				break
			}
		}
		if !merged {
			c.items = append(c.items, item)
		}
	}

	if c.discountID == nil && guest.discountID != nil {
		c.discountID = guest.discountID
	}
}

func (c *Cart) QuantityOf(productID uuid.UUID, variantID *uuid.UUID) int32 {
	line := Item{ProductID: productID, VariantID: variantID}
	for _, item := range c.items {
		if sameLine(item, line) {
			return item.Quantity
		}
	}
	return 0
}

func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

func (c *Cart) ID() uuid.UUID          { return c.id }
func (c *Cart) TenantID() uuid.UUID    { return c.tenantID }
func (c *Cart) UserID() *uuid.UUID     { return c.userID }
func (c *Cart) SessionID() *string     { return c.sessionID }
func (c *Cart) DiscountID() *uuid.UUID { return c.discountID }
func (c *Cart) Items() []Item          { return c.items }
func (c *Cart) CreatedAt() time.Time   { return c.createdAt }
func (c *Cart) UpdatedAt() time.Time   { return c.updatedAt }
