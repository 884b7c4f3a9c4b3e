package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	storeerrors "github.com/abgdnv/storefront/internal/store/errors"
	"github.com/abgdnv/storefront/internal/store/ledger"
	"github.com/abgdnv/storefront/pkg/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const owner = ledger.Account("owner-account")

// nopTransfer accepts every transfer.
type nopTransfer struct{}

func (nopTransfer) Transfer(_ ledger.Account, _ uint64) error { return nil }

// capturePublisher forwards published events to a channel so tests can wait
// for the asynchronous emit.
type capturePublisher struct {
	ch chan messaging.Event
}

func newCapturePublisher() *capturePublisher {
	return &capturePublisher{ch: make(chan messaging.Event, 16)}
}

func (p *capturePublisher) Publish(_ context.Context, event messaging.Event) error {
	p.ch <- event
	return nil
}

func (p *capturePublisher) next(t *testing.T) messaging.Event {
	t.Helper()
	select {
	case ev := <-p.ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func newTestService(t *testing.T) (*Service, *capturePublisher, *ledger.ManualClock) {
	t.Helper()
	publisher := newCapturePublisher()
	clock := ledger.NewManualClock(1)
	st := ledger.NewStore(nopTransfer{}, 0)
	svc := NewService(st, OwnerAuthorizer{Owner: owner}, clock, publisher, slog.Default())
	return svc, publisher, clock
}

func Test_Service_AddProduct(t *testing.T) {
	t.Run("Success - owner adds a product", func(t *testing.T) {
		// given
		svc, publisher, _ := newTestService(t)
		// when
		created, err := svc.AddProduct(context.Background(), owner, ProductCreateDto{Name: "Widget", Price: 100, Quantity: 2})
		// then
		require.NoError(t, err)
		assert.Equal(t, string(ledger.DeriveID("Widget")), created.ID)
		assert.Equal(t, uint32(2), created.Quantity)

		ev := publisher.next(t)
		assert.Equal(t, messaging.ProductAddedSubject, ev.Subject())
	})

	t.Run("Error - non-owner is rejected", func(t *testing.T) {
		// given
		svc, _, _ := newTestService(t)
		// when
		created, err := svc.AddProduct(context.Background(), ledger.Account("intruder"), ProductCreateDto{Name: "Widget", Price: 100, Quantity: 2})
		// then
		assert.ErrorIs(t, err, storeerrors.ErrUnauthorized)
		assert.Nil(t, created)

		_, err = svc.FindByID(context.Background(), ledger.DeriveID("Widget"))
		assert.ErrorIs(t, err, storeerrors.ErrProductNotFound)
	})

	t.Run("Error - duplicate product", func(t *testing.T) {
		// given
		svc, publisher, _ := newTestService(t)
		_, err := svc.AddProduct(context.Background(), owner, ProductCreateDto{Name: "Widget", Price: 100, Quantity: 2})
		require.NoError(t, err)
		publisher.next(t)
		// when
		_, err = svc.AddProduct(context.Background(), owner, ProductCreateDto{Name: "Widget", Price: 100, Quantity: 2})
		// then
		assert.ErrorIs(t, err, storeerrors.ErrProductExists)
	})
}

func Test_Service_Restock(t *testing.T) {
	t.Run("Success - owner restocks", func(t *testing.T) {
		// given
		svc, publisher, _ := newTestService(t)
		created, err := svc.AddProduct(context.Background(), owner, ProductCreateDto{Name: "Widget", Price: 100, Quantity: 0})
		require.NoError(t, err)
		publisher.next(t)
		// when
		updated, err := svc.Restock(context.Background(), owner, ledger.ProductID(created.ID), 5)
		// then
		require.NoError(t, err)
		assert.Equal(t, uint32(5), updated.Quantity)
		ev := publisher.next(t)
		assert.Equal(t, messaging.ProductRestockedSubject, ev.Subject())
	})

	t.Run("Error - non-owner is rejected", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		_, err := svc.Restock(context.Background(), ledger.Account("intruder"), ledger.DeriveID("Widget"), 5)
		assert.ErrorIs(t, err, storeerrors.ErrUnauthorized)
	})

	t.Run("Error - unknown product", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		_, err := svc.Restock(context.Background(), owner, ledger.DeriveID("nope"), 5)
		assert.ErrorIs(t, err, storeerrors.ErrProductNotFound)
	})
}

func Test_Service_BuyAndReturn(t *testing.T) {
	const buyer = ledger.Account("buyer-a")

	t.Run("buy stamps the purchase with the logical clock", func(t *testing.T) {
		// given
		svc, publisher, clock := newTestService(t)
		created, err := svc.AddProduct(context.Background(), owner, ProductCreateDto{Name: "Widget", Price: 100, Quantity: 2})
		require.NoError(t, err)
		publisher.next(t)
		id := ledger.ProductID(created.ID)
		clock.Set(10)
		// when
		require.NoError(t, svc.BuyProduct(context.Background(), buyer, id, 100))
		// then
		ev := publisher.next(t)
		assert.Equal(t, messaging.ProductBoughtSubject, ev.Subject())

		// the window is measured from tick 10
		clock.Set(10 + ledger.DefaultReturnWindow)
		err = svc.ReturnProduct(context.Background(), buyer, id)
		assert.ErrorIs(t, err, storeerrors.ErrGracePeriodExpired)

		clock.Set(10 + ledger.DefaultReturnWindow - 1)
		require.NoError(t, svc.ReturnProduct(context.Background(), buyer, id))
		ev = publisher.next(t)
		assert.Equal(t, messaging.ProductReturnedSubject, ev.Subject())
	})

	t.Run("Error - return without purchase", func(t *testing.T) {
		svc, publisher, _ := newTestService(t)
		created, err := svc.AddProduct(context.Background(), owner, ProductCreateDto{Name: "Widget", Price: 100, Quantity: 2})
		require.NoError(t, err)
		publisher.next(t)

		err = svc.ReturnProduct(context.Background(), buyer, ledger.ProductID(created.ID))
		assert.ErrorIs(t, err, storeerrors.ErrNoPurchaseFound)
	})
}

func Test_Service_Listings(t *testing.T) {
	t.Run("FindAll pages the catalog with the total", func(t *testing.T) {
		// given
		svc, publisher, _ := newTestService(t)
		for _, name := range []string{"Alpha", "Beta", "Gamma"} {
			_, err := svc.AddProduct(context.Background(), owner, ProductCreateDto{Name: name, Price: 10, Quantity: 1})
			require.NoError(t, err)
			publisher.next(t)
		}
		// when
		page, err := svc.FindAll(context.Background(), 0)
		// then
		require.NoError(t, err)
		assert.Equal(t, 3, page.Total)
		require.Len(t, page.Products, 3)
		assert.Equal(t, "Alpha", page.Products[0].Name)
		assert.Equal(t, "Gamma", page.Products[2].Name)

		empty, err := svc.FindAll(context.Background(), 10)
		require.NoError(t, err)
		assert.Empty(t, empty.Products)
		assert.Equal(t, 3, empty.Total)
	})

	t.Run("FindBuyers reports open purchases", func(t *testing.T) {
		// given
		svc, publisher, _ := newTestService(t)
		created, err := svc.AddProduct(context.Background(), owner, ProductCreateDto{Name: "Widget", Price: 10, Quantity: 3})
		require.NoError(t, err)
		publisher.next(t)
		id := ledger.ProductID(created.ID)
		require.NoError(t, svc.BuyProduct(context.Background(), ledger.Account("buyer-a"), id, 10))
		publisher.next(t)
		// when
		page, err := svc.FindBuyers(context.Background(), id, 0)
		// then
		require.NoError(t, err)
		assert.Equal(t, 1, page.Total)
		assert.Equal(t, []string{"buyer-a"}, page.Buyers)
	})

	t.Run("Error - FindBuyers on unknown product", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		_, err := svc.FindBuyers(context.Background(), ledger.DeriveID("nope"), 0)
		assert.ErrorIs(t, err, storeerrors.ErrProductNotFound)
	})
}
