package commands

import (
	"context"
	"time"

	"storefront/internal/domain/cart"
	reqdto "storefront/internal/handler/dto/request"
	"storefront/internal/infra"
	"storefront/internal/pkg/clock"
	"storefront/internal/pkg/config"
	"storefront/internal/pkg/errs"
	"storefront/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrCartNotFound       = errs.New("cart not found")
	ErrCartLockContention = errs.New("cart is locked by another request")
	ErrProductNotFound    = errs.New("product not found")
	ErrProductInactive    = errs.New("product is not available")
	ErrCartItemNotFound   = errs.New("cart item not found")
	ErrDiscountNotFound   = errs.New("discount code not found")
	ErrInvalidDiscount    = errs.New("discount cannot be applied")
)

type CartCommands interface {
	GetOrCreate(ctx context.Context, actor shared.Actor) (*cart.Cart, error)
	AddItem(ctx context.Context, actor shared.Actor, req reqdto.AddCartItemRequest) (*cart.Cart, error)
	UpdateItem(ctx context.Context, actor shared.Actor, productID uuid.UUID, variantID *uuid.UUID, quantity int32) (*cart.Cart, error)
	RemoveItem(ctx context.Context, actor shared.Actor, productID uuid.UUID, variantID *uuid.UUID) (*cart.Cart, error)
	Clear(ctx context.Context, actor shared.Actor) error
	ApplyDiscount(ctx context.Context, actor shared.Actor, code string) (*cart.Cart, error)
	RemoveDiscount(ctx context.Context, actor shared.Actor) (*cart.Cart, error)
	MergeGuestIntoUser(ctx context.Context, tenantID, userID uuid.UUID, sessionID string) (*cart.Cart, error)
}

type cartCommandsImpl struct {
	uow     shared.UnitOfWork
	locks   shared.LockManager
	clock   clock.Clock
	lockTTL time.Duration
}

func NewCartCommands(uow shared.UnitOfWork, locks shared.LockManager, clk clock.Clock, cfg config.CheckoutConfig) CartCommands {
	return &cartCommandsImpl{
		uow:     uow,
		locks:   locks,
		clock:   clk,
		lockTTL: cfg.CartLockTTL,
	}
}

func cartLockKey(actor shared.Actor) string {
	return "cart:" + actor.TenantID.String() + ":" + actor.OwnerKey()
}

// withCartLock serializes every mutation of one owner's cart.
func (c *cartCommandsImpl) withCartLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	token := uuid.NewString()

	granted, err := c.locks.Acquire(ctx, key, token, c.lockTTL)
	if err != nil {
		return errs.Wrap(err, "failed to acquire cart lock")
	}
	if !granted {
		return ErrCartLockContention
	}
	defer func() { _ = c.locks.Release(ctx, key, token) }()

	return fn(ctx)
}

func (c *cartCommandsImpl) GetOrCreate(ctx context.Context, actor shared.Actor) (*cart.Cart, error) {
	existing, err := c.uow.CommandReads().CartByOwner(ctx, actor)
	if err == nil {
		return existing, nil
	}
	if !infra.IsKind(err, infra.KindNotFound) {
		return nil, err
	}

	fresh, err := cart.NewCart(actor.TenantID, actor.UserID, actor.SessionID)
	if err != nil {
		return nil, err
	}

	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		_, createErr := tx.Carts().Create(ctx, tx.DB(), fresh)
		return createErr
	})
	if err != nil {
		// Lost the race to a concurrent creator; their cart is the cart.
		if infra.IsKind(err, infra.KindDuplicateKey) {
			return c.uow.CommandReads().CartByOwner(ctx, actor)
		}
		return nil, err
	}

	return c.uow.CommandReads().CartByOwner(ctx, actor)
}

func (c *cartCommandsImpl) AddItem(ctx context.Context, actor shared.Actor, req reqdto.AddCartItemRequest) (*cart.Cart, error) {
	if _, err := c.GetOrCreate(ctx, actor); err != nil {
		return nil, err
	}

	err := c.withCartLock(ctx, cartLockKey(actor), func(ctx context.Context) error {
		return c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
			// Re-read under the lock; a snapshot taken before Acquire can
			// miss a competing add that already committed.
			current, err := c.requireCart(ctx, tx, actor)
			if err != nil {
				return err
			}

			product, err := tx.Reads().ProductByID(ctx, actor.TenantID, req.ProductID)
			if err != nil {
				if infra.IsKind(err, infra.KindNotFound) {
					return ErrProductNotFound
				}
				return err
			}
			if !product.Active {
				return ErrProductInactive
			}

			stock, err := tx.Reads().StockByProduct(ctx, actor.TenantID, req.ProductID, req.VariantID)
			if err != nil {
				if infra.IsKind(err, infra.KindNotFound) {
					return ErrInsufficientStock
				}
				return err
			}

			// Availability check on the merged line total. This is not a
			// reservation; stock is only held at checkout.
			merged := current.QuantityOf(req.ProductID, req.VariantID) + req.Quantity
			if merged > stock.StockQuantity {
				return ErrInsufficientStock
			}

			item := cart.Item{ProductID: req.ProductID, VariantID: req.VariantID, Quantity: req.Quantity}
			if err := tx.Carts().UpsertItem(ctx, tx.DB(), current.ID(), item); err != nil {
				return err
			}
			return tx.Carts().Touch(ctx, tx.DB(), current.ID())
		})
	})
	if err != nil {
		return nil, err
	}

	return c.uow.CommandReads().CartByOwner(ctx, actor)
}

func (c *cartCommandsImpl) UpdateItem(ctx context.Context, actor shared.Actor, productID uuid.UUID, variantID *uuid.UUID, quantity int32) (*cart.Cart, error) {
	if quantity < 1 {
		return nil, cart.ErrInvalidQuantity
	}

	err := c.withCartLock(ctx, cartLockKey(actor), func(ctx context.Context) error {
		return c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
			current, err := c.requireCart(ctx, tx, actor)
			if err != nil {
				return err
			}

			stock, err := tx.Reads().StockByProduct(ctx, actor.TenantID, productID, variantID)
			if err != nil {
				if infra.IsKind(err, infra.KindNotFound) {
					return ErrInsufficientStock
				}
				return err
			}
			if quantity > stock.StockQuantity {
				return ErrInsufficientStock
			}

			if err := tx.Carts().SetItemQuantity(ctx, tx.DB(), current.ID(), productID, variantID, quantity); err != nil {
				if infra.IsKind(err, infra.KindNotFound) {
					return ErrCartItemNotFound
				}
				return err
			}
			return tx.Carts().Touch(ctx, tx.DB(), current.ID())
		})
	})
	if err != nil {
		return nil, err
	}

	return c.uow.CommandReads().CartByOwner(ctx, actor)
}

func (c *cartCommandsImpl) RemoveItem(ctx context.Context, actor shared.Actor, productID uuid.UUID, variantID *uuid.UUID) (*cart.Cart, error) {
	err := c.withCartLock(ctx, cartLockKey(actor), func(ctx context.Context) error {
		return c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
			current, err := c.requireCart(ctx, tx, actor)
			if err != nil {
				return err
			}

			if err := tx.Carts().RemoveItem(ctx, tx.DB(), current.ID(), productID, variantID); err != nil {
				if infra.IsKind(err, infra.KindNotFound) {
					return ErrCartItemNotFound
				}
				return err
			}
			return tx.Carts().Touch(ctx, tx.DB(), current.ID())
		})
	})
	if err != nil {
		return nil, err
	}

	return c.uow.CommandReads().CartByOwner(ctx, actor)
}

func (c *cartCommandsImpl) Clear(ctx context.Context, actor shared.Actor) error {
	return c.withCartLock(ctx, cartLockKey(actor), func(ctx context.Context) error {
		return c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
			current, err := c.requireCart(ctx, tx, actor)
			if err != nil {
				return err
			}
			return tx.Carts().ClearItems(ctx, tx.DB(), current.ID())
		})
	})
}

func (c *cartCommandsImpl) ApplyDiscount(ctx context.Context, actor shared.Actor, code string) (*cart.Cart, error) {
	err := c.withCartLock(ctx, cartLockKey(actor), func(ctx context.Context) error {
		return c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
			current, err := c.requireCart(ctx, tx, actor)
			if err != nil {
				return err
			}

			snap, err := tx.Reads().DiscountByCode(ctx, actor.TenantID, code)
			if err != nil {
				if infra.IsKind(err, infra.KindNotFound) {
					return ErrDiscountNotFound
				}
				return err
			}

			entity, err := discountFromSnapshot(snap)
			if err != nil {
				return errs.Mark(err, ErrInvalidDiscount)
			}
			// Validated against the cart's current subtotal here; checkout
			// re-validates against the final one.
			subtotal, err := c.cartSubtotal(ctx, tx, actor.TenantID, current)
			if err != nil {
				return err
			}
			if err := entity.ValidateUsage(c.clock.Now(), subtotal); err != nil {
				return errs.Mark(err, ErrInvalidDiscount)
			}

			id := snap.ID
			return tx.Carts().SetDiscount(ctx, tx.DB(), current.ID(), &id)
		})
	})
	if err != nil {
		return nil, err
	}

	return c.uow.CommandReads().CartByOwner(ctx, actor)
}

func (c *cartCommandsImpl) RemoveDiscount(ctx context.Context, actor shared.Actor) (*cart.Cart, error) {
	err := c.withCartLock(ctx, cartLockKey(actor), func(ctx context.Context) error {
		return c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
			current, err := c.requireCart(ctx, tx, actor)
			if err != nil {
				return err
			}
			return tx.Carts().SetDiscount(ctx, tx.DB(), current.ID(), nil)
		})
	})
	if err != nil {
		return nil, err
	}

	return c.uow.CommandReads().CartByOwner(ctx, actor)
}

// MergeGuestIntoUser folds the guest session cart into the user cart after
// sign-in. Runs under the user cart lock; double invocation is safe because
// the guest cart no longer exists on the second pass.
func (c *cartCommandsImpl) MergeGuestIntoUser(ctx context.Context, tenantID, userID uuid.UUID, sessionID string) (*cart.Cart, error) {
	userActor := shared.NewUserActor(tenantID, userID)
	guestActor := shared.NewGuestActor(tenantID, sessionID)

	if _, err := c.GetOrCreate(ctx, userActor); err != nil {
		return nil, err
	}

	err := c.withCartLock(ctx, cartLockKey(userActor), func(ctx context.Context) error {
		return c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
			// Both carts are read under the lock so a write that slipped in
			// before Acquire still counts in the merge.
			userCart, err := c.requireCart(ctx, tx, userActor)
			if err != nil {
				return err
			}

			guestCart, err := tx.Reads().CartByOwner(ctx, guestActor)
			if err != nil {
				if infra.IsKind(err, infra.KindNotFound) {
					return nil
				}
				return err
			}

			merged := cart.ReconstructCart(
				userCart.ID(), userCart.TenantID(), userCart.UserID(), userCart.SessionID(),
				userCart.DiscountID(), userCart.Items(), userCart.CreatedAt(), userCart.UpdatedAt(),
			)
			merged.MergeFrom(guestCart)

			for _, item := range guestCart.Items() {
				if err := tx.Carts().UpsertItem(ctx, tx.DB(), userCart.ID(), item); err != nil {
					return err
				}
			}
			if userCart.DiscountID() == nil && guestCart.DiscountID() != nil {
				if err := tx.Carts().SetDiscount(ctx, tx.DB(), userCart.ID(), merged.DiscountID()); err != nil {
					return err
				}
			}

			return tx.Carts().Delete(ctx, tx.DB(), guestCart.ID())
		})
	})
	if err != nil {
		return nil, err
	}

	return c.uow.CommandReads().CartByOwner(ctx, userActor)
}

// cartSubtotal prices the cart lines for threshold checks. Lines whose
// product left the catalog are skipped; checkout rejects them properly.
func (c *cartCommandsImpl) cartSubtotal(ctx context.Context, tx shared.Tx, tenantID uuid.UUID, current *cart.Cart) (int64, error) {
	var total int64
	for _, item := range current.Items() {
		product, err := tx.Reads().ProductByID(ctx, tenantID, item.ProductID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				continue
			}
			return 0, err
		}
		total += product.UnitPriceCents * int64(item.Quantity)
	}
	return total, nil
}

func (c *cartCommandsImpl) requireCart(ctx context.Context, tx shared.Tx, actor shared.Actor) (*cart.Cart, error) {
	current, err := tx.Reads().CartByOwner(ctx, actor)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, err
	}
	return current, nil
}
