package events

import (
	"encoding/json"

	"github.com/abgdnv/storefront/pkg/messaging"
)

// ProductAddedEvent is emitted once a product is committed to the catalog.
type ProductAddedEvent struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     uint64 `json:"price"`
	Quantity  uint32 `json:"quantity"`
}

func (e ProductAddedEvent) Subject() string {
	return messaging.ProductAddedSubject
}

func (e ProductAddedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}

// ProductRestockedEvent carries the quantity after the restock was applied.
type ProductRestockedEvent struct {
	ProductID   string `json:"product_id"`
	NewQuantity uint32 `json:"new_quantity"`
}

func (e ProductRestockedEvent) Subject() string {
	return messaging.ProductRestockedSubject
}

func (e ProductRestockedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}

// ProductBoughtEvent is emitted after a purchase commits.
type ProductBoughtEvent struct {
	ProductID string `json:"product_id"`
	Buyer     string `json:"buyer"`
}

func (e ProductBoughtEvent) Subject() string {
	return messaging.ProductBoughtSubject
}

func (e ProductBoughtEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}

// ProductReturnedEvent is emitted after a return commits.
type ProductReturnedEvent struct {
	ProductID string `json:"product_id"`
	Buyer     string `json:"buyer"`
}

func (e ProductReturnedEvent) Subject() string {
	return messaging.ProductReturnedSubject
}

func (e ProductReturnedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}
