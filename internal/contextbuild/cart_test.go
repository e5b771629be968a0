package contextbuild

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/54b3r/shopsense-go/internal/catalog"
	"github.com/54b3r/shopsense-go/internal/rag"
)

func cartDoc(userID, items string) rag.Document {
	return rag.Document{
		ID: "cart_" + userID,
		Metadata: map[string]string{
			"user_id":     userID,
			"total_value": "25980000",
			"items":       items,
		},
	}
}

type fakeLiveCart struct {
	snapshot catalog.CartSnapshot
	err      error
	called   bool
}

func (f *fakeLiveCart) FetchCart(ctx context.Context, userID string) (catalog.CartSnapshot, error) {
	f.called = true
	return f.snapshot, f.err
}

func TestCartBuilderRendersItems(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.add(rag.CollectionCarts, cartDoc("7",
		`[{"productId":1,"name":"Laptop Acer Aspire 5","price":12990000,"quantity":2,"subtotal":25980000}]`))

	out := NewCartBuilder(store, nil).Build(context.Background(), "7")
	if !strings.Contains(out, CartItemsHeader) {
		t.Errorf("missing items header:\n%s", out)
	}
	if !strings.Contains(out, "Laptop Acer Aspire 5 x2") {
		t.Errorf("missing cart line:\n%s", out)
	}
	if !strings.Contains(out, "25.980.000đ") {
		t.Errorf("missing cart total:\n%s", out)
	}
}

func TestCartBuilderEmptyCartMarker(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	doc := cartDoc("7", "[]")
	doc.Metadata["total_value"] = "0"
	store.add(rag.CollectionCarts, doc)

	out := NewCartBuilder(store, nil).Build(context.Background(), "7")
	if !strings.Contains(out, CartEmptyMarker) {
		t.Errorf("want empty marker, got:\n%s", out)
	}
}

func TestCartBuilderUnavailableWhenEverythingFails(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.err = errStoreDown
	live := &fakeLiveCart{err: errors.New("502 bad gateway")}

	out := NewCartBuilder(store, live).Build(context.Background(), "7")
	if !strings.Contains(out, CartUnavailableMarker) {
		t.Errorf("want unavailable marker, got:\n%s", out)
	}
	if strings.Contains(out, CartEmptyMarker) {
		t.Errorf("unavailable cart rendered as empty:\n%s", out)
	}
}

func TestCartBuilderLiveFallback(t *testing.T) {
	t.Parallel()

	store := newFakeStore() // no snapshot
	live := &fakeLiveCart{snapshot: catalog.CartSnapshot{
		UserID: "7",
		State:  catalog.CartHasItems,
		Items: []catalog.CartItem{
			{ProductID: 8, Name: "Samsung Galaxy S24", Price: 22_990_000, Quantity: 1, Subtotal: 22_990_000},
		},
		TotalValue: 22_990_000,
	}}

	out := NewCartBuilder(store, live).Build(context.Background(), "7")
	if !live.called {
		t.Fatal("live fetch not attempted when snapshot missing")
	}
	if !strings.Contains(out, "Samsung Galaxy S24 x1") {
		t.Errorf("live cart not rendered:\n%s", out)
	}
}

func TestCartBuilderNoLivePathIsUnavailable(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	out := NewCartBuilder(store, nil).Build(context.Background(), "7")
	if !strings.Contains(out, CartUnavailableMarker) {
		t.Errorf("missing snapshot with no live path must be unavailable, got:\n%s", out)
	}
}

func TestCartMarkersAreDistinct(t *testing.T) {
	t.Parallel()

	if CartEmptyMarker == CartUnavailableMarker {
		t.Fatal("empty and unavailable markers must differ")
	}
	if strings.Contains(CartUnavailableMarker, CartEmptyMarker) ||
		strings.Contains(CartEmptyMarker, CartUnavailableMarker) {
		t.Fatal("markers must not contain each other")
	}
}
