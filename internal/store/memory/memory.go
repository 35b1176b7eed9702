// Package memory holds in-memory store implementations backed by maps.
// They let the service and handler tests run without a MongoDB.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/greencart/greencart-golang/internal/models"
	"github.com/greencart/greencart-golang/internal/store"
)

// --- Users ---

type UserStore struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]*models.User
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[primitive.ObjectID]*models.User)}
}

func (s *UserStore) Insert(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == user.Email {
			return store.ErrDuplicate
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *UserStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *UserStore) SetVerification(ctx context.Context, id primitive.ObjectID, code string, expiry time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.VerificationCode = &code
	u.VerificationExpiry = &expiry
	u.UpdatedAt = time.Now()
	return nil
}

func (s *UserStore) MarkVerified(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.IsVerified = true
	u.VerificationCode = nil
	u.VerificationExpiry = nil
	u.UpdatedAt = time.Now()
	return nil
}

func (s *UserStore) UpdateCart(ctx context.Context, id primitive.ObjectID, items map[string]int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return store.ErrNotFound
	}
	cp := make(map[string]int, len(items))
	for k, v := range items {
		cp[k] = v
	}
	u.CartItems = cp
	u.UpdatedAt = time.Now()
	return nil
}

func (s *UserStore) ClearCart(ctx context.Context, id primitive.ObjectID) error {
	return s.UpdateCart(ctx, id, map[string]int{})
}

// --- Sellers ---

type SellerStore struct {
	mu      sync.RWMutex
	sellers map[primitive.ObjectID]*models.Seller
}

func NewSellerStore() *SellerStore {
	return &SellerStore{sellers: make(map[primitive.ObjectID]*models.Seller)}
}

func (s *SellerStore) Insert(ctx context.Context, seller *models.Seller) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sl := range s.sellers {
		if sl.Email == seller.Email {
			return store.ErrDuplicate
		}
	}
	if seller.ID.IsZero() {
		seller.ID = primitive.NewObjectID()
	}
	cp := *seller
	s.sellers[seller.ID] = &cp
	return nil
}

func (s *SellerStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Seller, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sl, ok := s.sellers[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *sl
	return &cp, nil
}

func (s *SellerStore) GetByEmail(ctx context.Context, email string) (*models.Seller, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sl := range s.sellers {
		if sl.Email == email {
			cp := *sl
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *SellerStore) SetVerification(ctx context.Context, id primitive.ObjectID, code string, expiry time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl, ok := s.sellers[id]
	if !ok {
		return store.ErrNotFound
	}
	sl.VerificationCode = &code
	sl.VerificationExpiry = &expiry
	sl.UpdatedAt = time.Now()
	return nil
}

func (s *SellerStore) MarkVerified(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl, ok := s.sellers[id]
	if !ok {
		return store.ErrNotFound
	}
	sl.IsVerified = true
	sl.VerificationCode = nil
	sl.VerificationExpiry = nil
	sl.UpdatedAt = time.Now()
	return nil
}

// --- Products ---

type ProductStore struct {
	mu       sync.RWMutex
	products map[primitive.ObjectID]*models.Product
}

func NewProductStore() *ProductStore {
	return &ProductStore{products: make(map[primitive.ObjectID]*models.Product)}
}

func (s *ProductStore) Insert(ctx context.Context, product *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if product.ID.IsZero() {
		product.ID = primitive.NewObjectID()
	}
	cp := *product
	s.products[product.ID] = &cp
	return nil
}

func (s *ProductStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *ProductStore) List(ctx context.Context) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *ProductStore) ListBySeller(ctx context.Context, sellerID primitive.ObjectID) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Product
	for _, p := range s.products {
		if p.SellerID == sellerID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *ProductStore) SetStock(ctx context.Context, id primitive.ObjectID, inStock bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return store.ErrNotFound
	}
	p.InStock = inStock
	p.UpdatedAt = time.Now()
	return nil
}

// --- Addresses ---

type AddressStore struct {
	mu        sync.RWMutex
	addresses map[primitive.ObjectID]*models.Address
}

func NewAddressStore() *AddressStore {
	return &AddressStore{addresses: make(map[primitive.ObjectID]*models.Address)}
}

func (s *AddressStore) Insert(ctx context.Context, address *models.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if address.ID.IsZero() {
		address.ID = primitive.NewObjectID()
	}
	cp := *address
	s.addresses[address.ID] = &cp
	return nil
}

func (s *AddressStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Address, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.addresses[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *AddressStore) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Address, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Address
	for _, a := range s.addresses {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// --- Orders ---

type OrderStore struct {
	mu     sync.RWMutex
	orders map[primitive.ObjectID]*models.Order
}

func NewOrderStore() *OrderStore {
	return &OrderStore{orders: make(map[primitive.ObjectID]*models.Order)}
}

func (s *OrderStore) Insert(ctx context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	cp := *order
	cp.Items = append([]models.OrderItem(nil), order.Items...)
	s.orders[order.ID] = &cp
	return nil
}

func (s *OrderStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *o
	cp.Items = append([]models.OrderItem(nil), o.Items...)
	return &cp, nil
}

func (s *OrderStore) MarkPaid(ctx context.Context, id primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return false, store.ErrNotFound
	}
	if o.IsPaid {
		return false, nil
	}
	o.IsPaid = true
	o.UpdatedAt = time.Now()
	return true, nil
}

func (s *OrderStore) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string, markPaid bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return store.ErrNotFound
	}
	o.Status = status
	if markPaid {
		o.IsPaid = true
	}
	o.UpdatedAt = time.Now()
	return nil
}

func (s *OrderStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.orders, id)
	return nil
}

func (s *OrderStore) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Order
	for _, o := range s.orders {
		if o.UserID == userID && visible(o) {
			out = append(out, *o)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *OrderStore) ListAll(ctx context.Context) ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Order
	for _, o := range s.orders {
		if visible(o) {
			out = append(out, *o)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *OrderStore) DeleteStaleUnpaidOnline(ctx context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, o := range s.orders {
		if o.PaymentType == models.PaymentOnline && !o.IsPaid && o.CreatedAt.Before(before) {
			delete(s.orders, id)
			n++
		}
	}
	return n, nil
}

// visible reports whether an order shows up in listings: unpaid online
// orders are provisional until the gateway confirms them.
func visible(o *models.Order) bool {
	return o.PaymentType == models.PaymentCOD || o.IsPaid
}

func sortNewestFirst(orders []models.Order) {
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
}
