// Package ledger implements the authoritative in-memory inventory and
// purchase ledger: the product catalog, per-buyer open purchase records and
// the per-product buyer index. All invariants are enforced here, under a
// single store-wide lock, so every mutation is observed either fully applied
// or not at all.
package ledger

import (
	"math"
	"sync"

	storeerrors "github.com/abgdnv/storefront/internal/store/errors"
)

// DefaultReturnWindow is the number of logical-clock ticks after a purchase
// during which a return is accepted.
const DefaultReturnWindow = 100

// Product is a catalog entry. Price is in the smallest value unit.
type Product struct {
	ID       ProductID
	Name     string
	Price    uint64
	Quantity uint32
}

// Transfer is the external value-transfer primitive used to deliver refunds.
// A failed transfer aborts the enclosing buy/return with no state change.
type Transfer interface {
	Transfer(to Account, amount uint64) error
}

// purchase is one buyer's open claim on one unit of a product. buyerIdx is
// the buyer's current position in the product's buyer index; it is kept in
// sync on every swap-remove so removal stays O(1).
type purchase struct {
	openedAt uint64
	buyerIdx int
}

// Store owns the catalog, the purchase records and the buyer indexes. No
// other component mutates them; callers go through the exported operations.
type Store struct {
	mu sync.RWMutex

	products  map[ProductID]*Product
	order     []ProductID // catalog ids, insertion order, append-only
	purchases map[ProductID]map[Account]*purchase
	buyers    map[ProductID][]Account

	transfer     Transfer
	returnWindow uint64
}

// NewStore creates an empty store. returnWindow is the return grace window in
// clock ticks; zero selects DefaultReturnWindow.
func NewStore(transfer Transfer, returnWindow uint64) *Store {
	if returnWindow == 0 {
		returnWindow = DefaultReturnWindow
	}
	return &Store{
		products:     make(map[ProductID]*Product),
		purchases:    make(map[ProductID]map[Account]*purchase),
		buyers:       make(map[ProductID][]Account),
		transfer:     transfer,
		returnWindow: returnWindow,
	}
}

// AddProduct creates a catalog entry. The id is derived from the name, so a
// duplicate name is a duplicate product.
// Returns ErrInvalidInput for an empty name and ErrProductExists for a
// duplicate.
func (s *Store) AddProduct(name string, price uint64, quantity uint32) (ProductID, error) {
	if name == "" {
		return "", storeerrors.ErrInvalidInput
	}
	id := DeriveID(name)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[id]; exists {
		return "", storeerrors.ErrProductExists
	}
	s.products[id] = &Product{
		ID:       id,
		Name:     name,
		Price:    price,
		Quantity: quantity,
	}
	s.order = append(s.order, id)
	return id, nil
}

// Restock increases a product's quantity by delta and returns the new
// quantity. Returns ErrProductNotFound for an unknown id and
// ErrQuantityOverflow if the counter would wrap.
func (s *Store) Restock(id ProductID, delta uint32) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return 0, storeerrors.ErrProductNotFound
	}
	if delta > math.MaxUint32-p.Quantity {
		return 0, storeerrors.ErrQuantityOverflow
	}
	p.Quantity += delta
	return p.Quantity, nil
}

// Buy opens a purchase of one unit for the buyer, stamped with the given
// clock tick. If valueSent exceeds the price, the difference is refunded
// through the transfer primitive before any state changes; a failed refund
// aborts the purchase entirely.
func (s *Store) Buy(id ProductID, buyer Account, valueSent uint64, now uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return storeerrors.ErrProductNotFound
	}
	if _, open := s.purchases[id][buyer]; open {
		return storeerrors.ErrAlreadyPurchased
	}
	if p.Quantity == 0 {
		return storeerrors.ErrOutOfStock
	}
	if valueSent < p.Price {
		return storeerrors.ErrInsufficientPayment
	}

	// The refund is the only step that can fail, so it runs before the
	// commit. After it succeeds the remaining mutations are infallible and
	// the operation as a whole is all-or-nothing.
	if valueSent > p.Price {
		if err := s.transfer.Transfer(buyer, valueSent-p.Price); err != nil {
			return storeerrors.ErrTransferFailed
		}
	}

	byBuyer := s.purchases[id]
	if byBuyer == nil {
		byBuyer = make(map[Account]*purchase)
		s.purchases[id] = byBuyer
	}
	byBuyer[buyer] = &purchase{
		openedAt: now,
		buyerIdx: len(s.buyers[id]),
	}
	s.buyers[id] = append(s.buyers[id], buyer)
	p.Quantity--
	return nil
}

// Return reverses the buyer's open purchase: the unit goes back to stock, the
// buyer leaves the buyer index and the listed price is refunded. The refund
// runs before the commit, so a failed transfer leaves the store untouched.
// Returns ErrGracePeriodExpired once returnWindow ticks have elapsed since
// the purchase.
func (s *Store) Return(id ProductID, buyer Account, now uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return storeerrors.ErrProductNotFound
	}
	pur, open := s.purchases[id][buyer]
	if !open {
		return storeerrors.ErrNoPurchaseFound
	}
	if now >= pur.openedAt && now-pur.openedAt >= s.returnWindow {
		return storeerrors.ErrGracePeriodExpired
	}

	if err := s.transfer.Transfer(buyer, p.Price); err != nil {
		return storeerrors.ErrTransferFailed
	}

	s.removeBuyer(id, pur.buyerIdx)
	delete(s.purchases[id], buyer)
	p.Quantity++
	return nil
}

// removeBuyer drops the buyer at index i from the product's buyer index in
// O(1): the last entry moves into the hole and its purchase record learns the
// new position. Order among remaining buyers is not preserved.
func (s *Store) removeBuyer(id ProductID, i int) {
	list := s.buyers[id]
	last := len(list) - 1
	if i != last {
		moved := list[last]
		list[i] = moved
		s.purchases[id][moved].buyerIdx = i
	}
	s.buyers[id] = list[:last]
}

// Get returns a read-only snapshot of a product.
func (s *Store) Get(id ProductID) (Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return Product{}, storeerrors.ErrProductNotFound
	}
	return *p, nil
}

// ListProducts returns one page of catalog snapshots in insertion order,
// together with the total catalog size. Offsets past the end yield an empty
// page.
func (s *Store) ListProducts(offset int) ([]Product, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	start, end := pageBounds(offset, len(s.order))
	page := make([]Product, 0, end-start)
	for _, id := range s.order[start:end] {
		page = append(page, *s.products[id])
	}
	return page, len(s.order)
}

// ListBuyers returns one page of the product's current buyer index together
// with the number of open purchases. The order reflects the swap-remove
// structure and is not stable across returns.
func (s *Store) ListBuyers(id ProductID, offset int) ([]Account, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.products[id]; !ok {
		return nil, 0, storeerrors.ErrProductNotFound
	}
	list := s.buyers[id]
	start, end := pageBounds(offset, len(list))
	page := make([]Account, end-start)
	copy(page, list[start:end])
	return page, len(list), nil
}

// OpenPurchase reports whether the buyer currently holds an open purchase of
// the product, and at which tick it was opened.
func (s *Store) OpenPurchase(id ProductID, buyer Account) (openedAt uint64, open bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pur, ok := s.purchases[id][buyer]
	if !ok {
		return 0, false
	}
	return pur.openedAt, true
}
