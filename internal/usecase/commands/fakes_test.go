//go:build unit

package commands_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"storefront/internal/domain/cart"
	"storefront/internal/domain/order"
	"storefront/internal/infra"
	"storefront/internal/infra/db"
	"storefront/internal/pkg/errs"
	"storefront/internal/usecase/shared"

	"github.com/google/uuid"
)

// fakeStore backs the command tests with in-memory state that honours the
// repository contracts: conditional updates report rows changed, duplicate
// owners collide, and lookups miss with a NOT_FOUND repository error.
type fakeStore struct {
	mu            sync.Mutex
	products      map[uuid.UUID]shared.ProductSnapshot
	stock         map[uuid.UUID]shared.StockSnapshot
	discounts     map[uuid.UUID]shared.DiscountSnapshot
	carts         map[uuid.UUID]*cartRecord
	orders        map[uuid.UUID]*orderRecord
	idempotency   map[string]*shared.IdempotencyRecord
	webhookEvents map[string]struct{}
}

type cartRecord struct {
	id         uuid.UUID
	tenantID   uuid.UUID
	userID     *uuid.UUID
	sessionID  *string
	discountID *uuid.UUID
	items      []cart.Item
	createdAt  time.Time
	updatedAt  time.Time
}

type orderRecord struct {
	id               uuid.UUID
	tenantID         uuid.UUID
	userID           *uuid.UUID
	sessionID        *string
	status           order.Status
	paymentStatus    order.PaymentStatus
	paymentIntentID  *string
	paymentReference *string
	amounts          order.Amounts
	refundedCents    int64
	shippingMethod   string
	discountID       *uuid.UUID
	items            []order.Item
	createdAt        time.Time
	updatedAt        time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		products:      make(map[uuid.UUID]shared.ProductSnapshot),
		stock:         make(map[uuid.UUID]shared.StockSnapshot),
		discounts:     make(map[uuid.UUID]shared.DiscountSnapshot),
		carts:         make(map[uuid.UUID]*cartRecord),
		orders:        make(map[uuid.UUID]*orderRecord),
		idempotency:   make(map[string]*shared.IdempotencyRecord),
		webhookEvents: make(map[string]struct{}),
	}
}

func notFound(msg string) error {
	return infra.WrapRepoErr(msg, nil, infra.KindNotFound)
}

func idemKey(tenantID uuid.UUID, key string) string {
	return tenantID.String() + "|" + key
}

func sameLine(a cart.Item, productID uuid.UUID, variantID *uuid.UUID) bool {
	if a.ProductID != productID {
		return false
	}
	if (a.VariantID == nil) != (variantID == nil) {
		return false
	}
	return a.VariantID == nil || *a.VariantID == *variantID
}

func (r *cartRecord) toDomain() *cart.Cart {
	items := make([]cart.Item, len(r.items))
	copy(items, r.items)
	return cart.ReconstructCart(r.id, r.tenantID, r.userID, r.sessionID, r.discountID, items, r.createdAt, r.updatedAt)
}

func (r *orderRecord) toDomain() *order.Order {
	items := make([]order.Item, len(r.items))
	copy(items, r.items)
	return order.ReconstructOrder(
		r.id, r.tenantID, r.userID, r.sessionID,
		r.status, r.paymentStatus,
		r.paymentIntentID, r.paymentReference,
		r.amounts, r.refundedCents,
		r.shippingMethod, r.discountID,
		items, r.createdAt, r.updatedAt,
	)
}

// snapshot deep-copies all state so a failed transaction can roll back.
func (s *fakeStore) snapshot() *fakeStore {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := newFakeStore()
	for k, v := range s.products {
		clone.products[k] = v
	}
	for k, v := range s.stock {
		clone.stock[k] = v
	}
	for k, v := range s.discounts {
		clone.discounts[k] = v
	}
	for k, v := range s.carts {
		rec := *v
		rec.items = append([]cart.Item(nil), v.items...)
		clone.carts[k] = &rec
	}
	for k, v := range s.orders {
		rec := *v
		rec.items = append([]order.Item(nil), v.items...)
		clone.orders[k] = &rec
	}
	for k, v := range s.idempotency {
		rec := *v
		rec.ResponseBody = append([]byte(nil), v.ResponseBody...)
		clone.idempotency[k] = &rec
	}
	for k := range s.webhookEvents {
		clone.webhookEvents[k] = struct{}{}
	}
	return clone
}

func (s *fakeStore) restore(from *fakeStore) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = from.products
	s.stock = from.stock
	s.discounts = from.discounts
	s.carts = from.carts
	s.orders = from.orders
	s.idempotency = from.idempotency
	s.webhookEvents = from.webhookEvents
}

// ---- seeding helpers ----

func (s *fakeStore) addProduct(p shared.ProductSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
}

func (s *fakeStore) addStock(st shared.StockSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stock[st.UnitID] = st
}

func (s *fakeStore) addDiscount(d shared.DiscountSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.discounts[d.ID] = d
}

func (s *fakeStore) setStockQuantity(unitID uuid.UUID, quantity int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.stock[unitID]
	st.StockQuantity = quantity
	s.stock[unitID] = st
}

func (s *fakeStore) stockQuantity(unitID uuid.UUID) int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stock[unitID].StockQuantity
}

func (s *fakeStore) discountUsage(discountID uuid.UUID) int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.discounts[discountID].UsageCount
}

func (s *fakeStore) orderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

func (s *fakeStore) orderByID(orderID uuid.UUID) *order.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.orders[orderID]
	if !ok {
		return nil
	}
	return rec.toDomain()
}

// ---- CommandReads ----

func (s *fakeStore) ProductByID(_ context.Context, _ uuid.UUID, productID uuid.UUID) (*shared.ProductSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[productID]
	if !ok {
		return nil, notFound("product not found")
	}
	return &p, nil
}

func (s *fakeStore) StockByProduct(_ context.Context, _ uuid.UUID, productID uuid.UUID, variantID *uuid.UUID) (*shared.StockSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range s.stock {
		if st.ProductID != productID {
			continue
		}
		if (st.VariantID == nil) != (variantID == nil) {
			continue
		}
		if st.VariantID != nil && *st.VariantID != *variantID {
			continue
		}
		return &st, nil
	}
	return nil, notFound("stock not found")
}

func (s *fakeStore) DiscountByCode(_ context.Context, _ uuid.UUID, code string) (*shared.DiscountSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.discounts {
		if strings.EqualFold(d.Code, code) {
			return &d, nil
		}
	}
	return nil, notFound("discount not found")
}

func (s *fakeStore) DiscountByID(_ context.Context, _ uuid.UUID, discountID uuid.UUID) (*shared.DiscountSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.discounts[discountID]
	if !ok {
		return nil, notFound("discount not found")
	}
	return &d, nil
}

func (s *fakeStore) CartByOwner(_ context.Context, actor shared.Actor) (*cart.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.findCartByOwner(actor)
	if rec == nil {
		return nil, notFound("cart not found")
	}
	return rec.toDomain(), nil
}

func (s *fakeStore) findCartByOwner(actor shared.Actor) *cartRecord {
	for _, rec := range s.carts {
		if rec.tenantID != actor.TenantID {
			continue
		}
		if actor.UserID != nil && rec.userID != nil && *rec.userID == *actor.UserID {
			return rec
		}
		if actor.SessionID != nil && rec.sessionID != nil && *rec.sessionID == *actor.SessionID {
			return rec
		}
	}
	return nil
}

func (s *fakeStore) CartByID(_ context.Context, tenantID, cartID uuid.UUID) (*cart.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.carts[cartID]
	if !ok || rec.tenantID != tenantID {
		return nil, notFound("cart not found")
	}
	return rec.toDomain(), nil
}

func (s *fakeStore) OrderByID(_ context.Context, tenantID, orderID uuid.UUID) (*order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.orders[orderID]
	if !ok || rec.tenantID != tenantID {
		return nil, notFound("order not found")
	}
	return rec.toDomain(), nil
}

func (s *fakeStore) OrderByPaymentIntent(_ context.Context, tenantID uuid.UUID, intentID string) (*order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.orders {
		if rec.tenantID == tenantID && rec.paymentIntentID != nil && *rec.paymentIntentID == intentID {
			return rec.toDomain(), nil
		}
	}
	return nil, notFound("order not found")
}

func (s *fakeStore) IdempotencyByKey(_ context.Context, tenantID uuid.UUID, key string) (*shared.IdempotencyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.idempotency[idemKey(tenantID, key)]
	if !ok {
		return nil, notFound("idempotency key not found")
	}
	out := *rec
	return &out, nil
}

// ---- CartRepository ----

func (s *fakeStore) Create(_ context.Context, _ db.DBTX, c *cart.Cart) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	owner := shared.Actor{TenantID: c.TenantID(), UserID: c.UserID(), SessionID: c.SessionID()}
	if s.findCartByOwner(owner) != nil {
		return uuid.Nil, infra.WrapRepoErr("cart already exists for owner", nil, infra.KindDuplicateKey)
	}

	now := time.Now()
	s.carts[c.ID()] = &cartRecord{
		id:         c.ID(),
		tenantID:   c.TenantID(),
		userID:     c.UserID(),
		sessionID:  c.SessionID(),
		discountID: c.DiscountID(),
		items:      append([]cart.Item(nil), c.Items()...),
		createdAt:  now,
		updatedAt:  now,
	}
	return c.ID(), nil
}

func (s *fakeStore) UpsertItem(_ context.Context, _ db.DBTX, cartID uuid.UUID, item cart.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.carts[cartID]
	if !ok {
		return notFound("cart not found")
	}
	for i := range rec.items {
		if sameLine(rec.items[i], item.ProductID, item.VariantID) {
			rec.items[i].Quantity += item.Quantity
			return nil
		}
	}
	rec.items = append(rec.items, item)
	return nil
}

func (s *fakeStore) SetItemQuantity(_ context.Context, _ db.DBTX, cartID, productID uuid.UUID, variantID *uuid.UUID, quantity int32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.carts[cartID]
	if !ok {
		return notFound("cart not found")
	}
	for i := range rec.items {
		if sameLine(rec.items[i], productID, variantID) {
			rec.items[i].Quantity = quantity
			return nil
		}
	}
	return notFound("cart item not found")
}

func (s *fakeStore) RemoveItem(_ context.Context, _ db.DBTX, cartID, productID uuid.UUID, variantID *uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.carts[cartID]
	if !ok {
		return notFound("cart not found")
	}
	for i := range rec.items {
		if sameLine(rec.items[i], productID, variantID) {
			rec.items = append(rec.items[:i], rec.items[i+1:]...)
			return nil
		}
	}
	return notFound("cart item not found")
}

func (s *fakeStore) ClearItems(_ context.Context, _ db.DBTX, cartID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.carts[cartID]; ok {
		rec.items = nil
	}
	return nil
}

func (s *fakeStore) SetDiscount(_ context.Context, _ db.DBTX, cartID uuid.UUID, discountID *uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.carts[cartID]
	if !ok {
		return notFound("cart not found")
	}
	rec.discountID = discountID
	return nil
}

func (s *fakeStore) Delete(_ context.Context, _ db.DBTX, cartID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, cartID)
	return nil
}

func (s *fakeStore) Touch(_ context.Context, _ db.DBTX, cartID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.carts[cartID]; ok {
		rec.updatedAt = time.Now()
	}
	return nil
}

// ---- OrderRepository ----

type fakeOrderRepo struct{ store *fakeStore }

func (r *fakeOrderRepo) Create(_ context.Context, _ db.DBTX, o *order.Order) (uuid.UUID, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.orders[o.ID()] = &orderRecord{
		id:               o.ID(),
		tenantID:         o.TenantID(),
		userID:           o.UserID(),
		sessionID:        o.SessionID(),
		status:           o.Status(),
		paymentStatus:    o.PaymentStatus(),
		paymentIntentID:  o.PaymentIntentID(),
		paymentReference: o.PaymentReference(),
		amounts:          o.Amounts(),
		shippingMethod:   o.ShippingMethod(),
		discountID:       o.DiscountID(),
		createdAt:        now,
		updatedAt:        now,
	}
	return o.ID(), nil
}

func (r *fakeOrderRepo) CreateItems(_ context.Context, _ db.DBTX, orderID uuid.UUID, items []order.Item) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.orders[orderID]
	if !ok {
		return notFound("order not found")
	}
	rec.items = append([]order.Item(nil), items...)
	return nil
}

func (r *fakeOrderRepo) UpdateStatus(_ context.Context, _ db.DBTX, orderID uuid.UUID, fromStatus, toStatus order.Status) (int64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.orders[orderID]
	if !ok || rec.status != fromStatus {
		return 0, nil
	}
	rec.status = toStatus
	rec.updatedAt = time.Now()
	return 1, nil
}

func (r *fakeOrderRepo) UpdatePaymentStatus(_ context.Context, _ db.DBTX, orderID uuid.UUID, status order.PaymentStatus, reference *string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.orders[orderID]
	if !ok {
		return notFound("order not found")
	}
	rec.paymentStatus = status
	if reference != nil {
		rec.paymentReference = reference
	}
	return nil
}

func (r *fakeOrderRepo) AddRefund(_ context.Context, _ db.DBTX, orderID uuid.UUID, amountCents int64, status order.PaymentStatus) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.orders[orderID]
	if !ok {
		return notFound("order not found")
	}
	rec.refundedCents += amountCents
	rec.paymentStatus = status
	return nil
}

// ---- InventoryRepository ----

type fakeInventoryRepo struct{ store *fakeStore }

func (r *fakeInventoryRepo) StockForUpdate(_ context.Context, _ db.DBTX, _ uuid.UUID, unitID uuid.UUID) (*shared.StockSnapshot, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.stock[unitID]
	if !ok {
		return nil, notFound("inventory unit not found")
	}
	return &st, nil
}

func (r *fakeInventoryRepo) AdjustStock(_ context.Context, _ db.DBTX, unitID uuid.UUID, delta int32) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.stock[unitID]
	if !ok {
		return notFound("inventory unit not found")
	}
	if st.StockQuantity+delta < 0 {
		return infra.WrapRepoErr("stock would go negative", nil)
	}
	st.StockQuantity += delta
	s.stock[unitID] = st
	return nil
}

// ---- DiscountRepository ----

type fakeDiscountRepo struct{ store *fakeStore }

func (r *fakeDiscountRepo) IncrementUsage(_ context.Context, _ db.DBTX, discountID uuid.UUID) (int64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.discounts[discountID]
	if !ok {
		return 0, nil
	}
	if d.UsageLimit != nil && d.UsageCount >= *d.UsageLimit {
		return 0, nil
	}
	d.UsageCount++
	s.discounts[discountID] = d
	return 1, nil
}

func (r *fakeDiscountRepo) DecrementUsage(_ context.Context, _ db.DBTX, discountID uuid.UUID) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.discounts[discountID]
	if !ok {
		return nil
	}
	if d.UsageCount > 0 {
		d.UsageCount--
	}
	s.discounts[discountID] = d
	return nil
}

// ---- IdempotencyRepository ----

type fakeIdempotencyRepo struct{ store *fakeStore }

func (r *fakeIdempotencyRepo) TryInsert(_ context.Context, _ db.DBTX, tenantID uuid.UUID, key, requestHash string, expiresAt time.Time) (int64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	k := idemKey(tenantID, key)
	if _, ok := s.idempotency[k]; ok {
		return 0, nil
	}
	s.idempotency[k] = &shared.IdempotencyRecord{
		TenantID:    tenantID,
		Key:         key,
		Status:      shared.IdempotencyStatusProcessing,
		RequestHash: requestHash,
		Attempts:    1,
		ExpiresAt:   expiresAt,
	}
	return 1, nil
}

func (r *fakeIdempotencyRepo) Get(_ context.Context, _ db.DBTX, tenantID uuid.UUID, key string) (*shared.IdempotencyRecord, error) {
	return r.store.IdempotencyByKey(context.Background(), tenantID, key)
}

func (r *fakeIdempotencyRepo) UpdateStatusCompleted(_ context.Context, _ db.DBTX, tenantID uuid.UUID, key string, responseBody []byte, orderID uuid.UUID) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.idempotency[idemKey(tenantID, key)]
	if !ok {
		return notFound("idempotency key not found")
	}
	rec.Status = shared.IdempotencyStatusCompleted
	rec.ResponseBody = append([]byte(nil), responseBody...)
	id := orderID
	rec.ResultOrderID = &id
	return nil
}

func (r *fakeIdempotencyRepo) UpdateStatusFailed(_ context.Context, _ db.DBTX, tenantID uuid.UUID, key string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.idempotency[idemKey(tenantID, key)]; ok {
		rec.Status = shared.IdempotencyStatusFailed
	}
	return nil
}

func (r *fakeIdempotencyRepo) ClaimFailedKey(_ context.Context, _ db.DBTX, tenantID uuid.UUID, key, requestHash string, expiresAt time.Time) (int64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.idempotency[idemKey(tenantID, key)]
	if !ok {
		return 0, nil
	}
	if rec.Status != shared.IdempotencyStatusFailed && rec.ExpiresAt.After(time.Now()) {
		return 0, nil
	}
	rec.Status = shared.IdempotencyStatusProcessing
	rec.RequestHash = requestHash
	rec.ResponseBody = nil
	rec.ResultOrderID = nil
	rec.Attempts++
	rec.ExpiresAt = expiresAt
	return 1, nil
}

// ---- WebhookEventRepository ----

type fakeWebhookEventRepo struct{ store *fakeStore }

func (r *fakeWebhookEventRepo) TryInsert(_ context.Context, _ db.DBTX, tenantID uuid.UUID, eventID string) (int64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	k := tenantID.String() + "|" + eventID
	if _, ok := s.webhookEvents[k]; ok {
		return 0, nil
	}
	s.webhookEvents[k] = struct{}{}
	return 1, nil
}

// ---- UnitOfWork / Tx ----

type fakeTx struct{ store *fakeStore }

func (t *fakeTx) Carts() shared.CartRepository   { return t.store }
func (t *fakeTx) Orders() shared.OrderRepository { return &fakeOrderRepo{store: t.store} }
func (t *fakeTx) Inventory() shared.InventoryRepository {
	return &fakeInventoryRepo{store: t.store}
}
func (t *fakeTx) Discounts() shared.DiscountRepository {
	return &fakeDiscountRepo{store: t.store}
}
func (t *fakeTx) Idempotency() shared.IdempotencyRepository {
	return &fakeIdempotencyRepo{store: t.store}
}
func (t *fakeTx) WebhookEvents() shared.WebhookEventRepository {
	return &fakeWebhookEventRepo{store: t.store}
}
func (t *fakeTx) Reads() shared.CommandReads { return t.store }
func (t *fakeTx) DB() db.DBTX                { return nil }

type fakeUoW struct{ store *fakeStore }

// Within runs fn against the store and rolls every change back on error,
// mirroring the transactional behaviour the commands rely on.
func (u *fakeUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	before := u.store.snapshot()
	if err := fn(ctx, &fakeTx{store: u.store}); err != nil {
		u.store.restore(before)
		return err
	}
	return nil
}

func (u *fakeUoW) WithinReadOnly(ctx context.Context, fn func(ctx context.Context, dbtx db.DBTX) error) error {
	return fn(ctx, nil)
}

func (u *fakeUoW) WithDB(ctx context.Context, fn func(ctx context.Context, dbtx db.DBTX) error) error {
	return fn(ctx, nil)
}

func (u *fakeUoW) CommandReads() shared.CommandReads { return u.store }

// ---- PaymentGateway ----

type fakeGateway struct {
	mu        sync.Mutex
	createErr error
	created   []shared.PaymentIntent
	canceled  []string
}

func (g *fakeGateway) CreatePaymentIntent(_ context.Context, _ uuid.UUID, amountCents int64, currency string) (*shared.PaymentIntent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.createErr != nil {
		return nil, g.createErr
	}
	id := fmt.Sprintf("pi_fake_%d", len(g.created)+1)
	intent := shared.PaymentIntent{
		ID:           id,
		ClientSecret: id + "_secret",
		AmountCents:  amountCents,
		Currency:     currency,
	}
	g.created = append(g.created, intent)
	return &intent, nil
}

func (g *fakeGateway) CancelIntent(_ context.Context, intentID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.canceled = append(g.canceled, intentID)
	return nil
}

func (g *fakeGateway) Refund(_ context.Context, _ string, _ int64) error { return nil }

func (g *fakeGateway) VerifySignature(_ []byte, _ string) error { return nil }

func (g *fakeGateway) ParseEvent(_ []byte) (*shared.PaymentEvent, error) {
	return nil, errs.New("fake gateway does not parse events")
}

// ---- CheckoutSessionStore ----

type fakeSessionStore struct {
	mu       sync.Mutex
	sessions map[string]shared.CheckoutSession
	findErr  error
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string]shared.CheckoutSession)}
}

func sessionKey(tenantID, orderID uuid.UUID) string {
	return tenantID.String() + "|" + orderID.String()
}

func (f *fakeSessionStore) Create(_ context.Context, tenantID uuid.UUID, session shared.CheckoutSession, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[sessionKey(tenantID, session.OrderID)] = session
	return nil
}

func (f *fakeSessionStore) Find(_ context.Context, tenantID, orderID uuid.UUID) (*shared.CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	sess, ok := f.sessions[sessionKey(tenantID, orderID)]
	if !ok {
		return nil, shared.ErrSessionNotFound
	}
	return &sess, nil
}

func (f *fakeSessionStore) Delete(_ context.Context, tenantID, orderID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, sessionKey(tenantID, orderID))
	return nil
}

func (f *fakeSessionStore) has(tenantID, orderID uuid.UUID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.sessions[sessionKey(tenantID, orderID)]
	return ok
}
