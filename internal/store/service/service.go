// Package service provides the implementation of store-related business logic:
// the owner capability gate, the logical clock, and event emission around the
// ledger core.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	storeerrors "github.com/abgdnv/storefront/internal/store/errors"
	"github.com/abgdnv/storefront/internal/store/ledger"
	"github.com/abgdnv/storefront/pkg/messaging"
	"github.com/abgdnv/storefront/pkg/messaging/events"
)

// StoreService defines the public operation surface of the store.
// It abstracts the underlying business logic and data access.
type StoreService interface {
	// AddProduct publishes a new product to the catalog. Owner-only.
	// Returns ErrInvalidInput for an empty name and ErrProductExists for a
	// duplicate one.
	AddProduct(ctx context.Context, caller ledger.Account, product ProductCreateDto) (*ProductDto, error)

	// Restock increases a product's available quantity. Owner-only.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Restock(ctx context.Context, caller ledger.Account, id ledger.ProductID, delta uint32) (*ProductDto, error)

	// BuyProduct purchases one unit for the buyer, refunding any overpayment.
	BuyProduct(ctx context.Context, buyer ledger.Account, id ledger.ProductID, valueSent uint64) error

	// ReturnProduct reverses the buyer's open purchase within the grace window.
	ReturnProduct(ctx context.Context, buyer ledger.Account, id ledger.ProductID) error

	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id ledger.ProductID) (*ProductDto, error)

	// FindAll returns one page of the catalog in insertion order plus the
	// total number of products.
	FindAll(ctx context.Context, offset int) (*ProductPageDto, error)

	// FindBuyers returns one page of a product's current buyers plus the
	// total number of open purchases. Buyer order is not stable.
	FindBuyers(ctx context.Context, id ledger.ProductID, offset int) (*BuyerPageDto, error)
}

// Authorizer is the capability check invoked before privileged operations.
type Authorizer interface {
	// Authorize returns ErrUnauthorized if the caller lacks the owner capability.
	Authorize(caller ledger.Account) error
}

// OwnerAuthorizer grants the capability to a single configured account.
type OwnerAuthorizer struct {
	Owner ledger.Account
}

func (a OwnerAuthorizer) Authorize(caller ledger.Account) error {
	if caller != a.Owner {
		return storeerrors.ErrUnauthorized
	}
	return nil
}

// Service implements StoreService on top of the ledger core.
type Service struct {
	ledger    *ledger.Store
	authz     Authorizer
	clock     ledger.Clock
	publisher messaging.Publisher
	logger    *slog.Logger
}

// NewService creates a new instance of StoreService.
func NewService(st *ledger.Store, authz Authorizer, clock ledger.Clock, publisher messaging.Publisher, logger *slog.Logger) *Service {
	return &Service{
		ledger:    st,
		authz:     authz,
		clock:     clock,
		publisher: publisher,
		logger:    logger.With("component", "service"),
	}
}

// ProductCreateDto represents the data transfer object for publishing a product.
type ProductCreateDto struct {
	Name     string `json:"name"     validate:"required,max=100"`
	Price    uint64 `json:"price"`
	Quantity uint32 `json:"quantity"`
}

// ProductDto represents the data transfer object for a product.
type ProductDto struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    uint64 `json:"price"`
	Quantity uint32 `json:"quantity"`
}

// RestockDto represents the data transfer object for a restock request.
type RestockDto struct {
	Quantity uint32 `json:"quantity" validate:"required"`
}

// PurchaseDto represents the data transfer object for a purchase request.
type PurchaseDto struct {
	ValueSent uint64 `json:"value_sent"`
}

// ProductPageDto is one page of the catalog listing.
type ProductPageDto struct {
	Products []ProductDto `json:"products"`
	Total    int          `json:"total"`
}

// BuyerPageDto is one page of a product's buyer listing.
type BuyerPageDto struct {
	Buyers []string `json:"buyers"`
	Total  int      `json:"total"`
}

// AddProduct creates a new product and returns it as a ProductDto.
func (s *Service) AddProduct(ctx context.Context, caller ledger.Account, product ProductCreateDto) (*ProductDto, error) {
	if err := s.authz.Authorize(caller); err != nil {
		return nil, err
	}
	id, err := s.ledger.AddProduct(product.Name, product.Price, product.Quantity)
	if err != nil {
		return nil, fmt.Errorf("failed to add product %q: %w", product.Name, err)
	}

	s.emit(ctx, events.ProductAddedEvent{
		ProductID: string(id),
		Name:      product.Name,
		Price:     product.Price,
		Quantity:  product.Quantity,
	})
	return &ProductDto{
		ID:       string(id),
		Name:     product.Name,
		Price:    product.Price,
		Quantity: product.Quantity,
	}, nil
}

// Restock increases a product's quantity and returns the updated snapshot.
func (s *Service) Restock(ctx context.Context, caller ledger.Account, id ledger.ProductID, delta uint32) (*ProductDto, error) {
	if err := s.authz.Authorize(caller); err != nil {
		return nil, err
	}
	newQuantity, err := s.ledger.Restock(id, delta)
	if err != nil {
		return nil, fmt.Errorf("failed to restock product %s: %w", id, err)
	}

	s.emit(ctx, events.ProductRestockedEvent{
		ProductID:   string(id),
		NewQuantity: newQuantity,
	})
	return s.FindByID(ctx, id)
}

// BuyProduct purchases one unit of the product for the buyer.
func (s *Service) BuyProduct(ctx context.Context, buyer ledger.Account, id ledger.ProductID, valueSent uint64) error {
	if err := s.ledger.Buy(id, buyer, valueSent, s.clock.Now()); err != nil {
		return fmt.Errorf("failed to buy product %s: %w", id, err)
	}

	s.emit(ctx, events.ProductBoughtEvent{
		ProductID: string(id),
		Buyer:     string(buyer),
	})
	return nil
}

// ReturnProduct reverses the buyer's open purchase of the product.
func (s *Service) ReturnProduct(ctx context.Context, buyer ledger.Account, id ledger.ProductID) error {
	if err := s.ledger.Return(id, buyer, s.clock.Now()); err != nil {
		return fmt.Errorf("failed to return product %s: %w", id, err)
	}

	s.emit(ctx, events.ProductReturnedEvent{
		ProductID: string(id),
		Buyer:     string(buyer),
	})
	return nil
}

// FindByID retrieves a product by its ID and returns it as a ProductDto.
func (s *Service) FindByID(_ context.Context, id ledger.ProductID) (*ProductDto, error) {
	product, err := s.ledger.Get(id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product by ID %s: %w", id, err)
	}
	return toDto(product), nil
}

// FindAll retrieves one catalog page and the total product count.
func (s *Service) FindAll(_ context.Context, offset int) (*ProductPageDto, error) {
	products, total := s.ledger.ListProducts(offset)
	page := make([]ProductDto, len(products))
	for i, p := range products {
		page[i] = *toDto(p)
	}
	return &ProductPageDto{Products: page, Total: total}, nil
}

// FindBuyers retrieves one page of a product's buyer index and the total
// number of open purchases.
func (s *Service) FindBuyers(_ context.Context, id ledger.ProductID, offset int) (*BuyerPageDto, error) {
	buyers, total, err := s.ledger.ListBuyers(id, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch buyers for product %s: %w", id, err)
	}
	page := make([]string, len(buyers))
	for i, b := range buyers {
		page[i] = string(b)
	}
	return &BuyerPageDto{Buyers: page, Total: total}, nil
}

// emit publishes an event after a successful commit. Delivery is
// fire-and-forget: failures are logged, never surfaced, and publishing never
// blocks the calling operation.
func (s *Service) emit(ctx context.Context, event messaging.Event) {
	pubCtx := context.WithoutCancel(ctx)
	go func() {
		pubCtx, cancel := context.WithTimeout(pubCtx, 5*time.Second)
		defer cancel()
		if err := s.publisher.Publish(pubCtx, event); err != nil {
			s.logger.Warn("failed to publish event", "subject", event.Subject(), "error", err)
		}
	}()
}

// toDto converts a ledger.Product to a ProductDto.
func toDto(product ledger.Product) *ProductDto {
	return &ProductDto{
		ID:       string(product.ID),
		Name:     product.Name,
		Price:    product.Price,
		Quantity: product.Quantity,
	}
}
