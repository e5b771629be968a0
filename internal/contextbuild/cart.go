package contextbuild

import (
	"context"
	"fmt"
	"strings"

	"github.com/54b3r/shopsense-go/internal/catalog"
	"github.com/54b3r/shopsense-go/internal/logging"
	"github.com/54b3r/shopsense-go/internal/rag"
)

// Cart block markers. The three states carry distinct, unambiguous headers so
// the generator can never conflate "no items" with "could not read the cart".
const (
	// CartItemsHeader precedes the itemized listing.
	CartItemsHeader = "GIỎ HÀNG HIỆN TẠI CỦA KHÁCH:"

	// CartEmptyMarker is emitted for a cart that was read and is empty.
	CartEmptyMarker = "GIỎ HÀNG HIỆN TẠI: đang trống. Tuyệt đối không tự bịa sản phẩm trong giỏ."

	// CartUnavailableMarker is emitted when the cart could not be fetched at
	// all. Never rendered as an empty cart.
	CartUnavailableMarker = "KHÔNG THỂ TRUY CẬP GIỎ HÀNG: hãy đề nghị khách đăng nhập lại rồi kiểm tra giỏ hàng."
)

// LiveCartFetcher is the secondary cart source, consulted when no synced
// snapshot exists. The commerce API client implements it.
type LiveCartFetcher interface {
	FetchCart(ctx context.Context, userID string) (catalog.CartSnapshot, error)
}

// CartBuilder renders the user's current cart. The synced snapshot in the
// store is the primary source; a live fetch is the fallback; when both fail
// the unavailable marker is emitted.
type CartBuilder struct {
	store rag.Store
	live  LiveCartFetcher
}

// NewCartBuilder returns a builder reading snapshots from store and falling
// back to live. live may be nil when no live path is configured.
func NewCartBuilder(store rag.Store, live LiveCartFetcher) *CartBuilder {
	return &CartBuilder{store: store, live: live}
}

// Build returns the cart context block for userID. The result always carries
// exactly one of the three state markers.
func (b *CartBuilder) Build(ctx context.Context, userID string) string {
	if userID == "" {
		return CartUnavailableMarker + "\n"
	}

	snapshot, ok := b.fetch(ctx, userID)
	if !ok {
		return CartUnavailableMarker + "\n"
	}
	switch snapshot.State {
	case catalog.CartEmpty:
		return CartEmptyMarker + "\n"
	case catalog.CartUnavailable:
		return CartUnavailableMarker + "\n"
	}

	var sb strings.Builder
	sb.WriteString(CartItemsHeader + "\n")
	for _, item := range snapshot.Items {
		fmt.Fprintf(&sb, "- %s x%d | Đơn giá: %s | Thành tiền: %s\n",
			item.Name, item.Quantity, formatVND(item.Price), formatVND(item.Subtotal))
	}
	fmt.Fprintf(&sb, "Tổng giá trị giỏ hàng: %s\n", formatVND(snapshot.TotalValue))
	return sb.String()
}

// fetch resolves the snapshot via the fallback chain. ok is false only when
// the cart is genuinely unknowable.
func (b *CartBuilder) fetch(ctx context.Context, userID string) (catalog.CartSnapshot, bool) {
	log := logging.FromContext(ctx)

	doc, err := b.store.GetByID(ctx, rag.CollectionCarts, "cart_"+userID)
	if err != nil {
		log.Warn("cart snapshot lookup failed", "user_id", userID, "error", err)
	}
	if doc == nil {
		docs, ferr := b.store.Get(ctx, rag.CollectionCarts, map[string]string{"user_id": userID}, 1)
		if ferr != nil {
			log.Warn("cart snapshot filter lookup failed", "user_id", userID, "error", ferr)
		} else if len(docs) > 0 {
			doc = &docs[0]
		}
	}
	if doc != nil {
		snapshot, perr := catalog.ParseCartSnapshot(*doc)
		if perr == nil && snapshot.UserID == userID {
			return snapshot, true
		}
		if perr != nil {
			log.Warn("cart snapshot malformed", "user_id", userID, "error", perr)
		}
	}

	if b.live == nil {
		return catalog.CartSnapshot{}, false
	}
	snapshot, lerr := b.live.FetchCart(ctx, userID)
	if lerr != nil {
		log.Warn("live cart fetch failed", "user_id", userID, "error", lerr)
		return catalog.CartSnapshot{}, false
	}
	return snapshot, true
}
