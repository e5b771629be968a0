package contextbuild

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/54b3r/shopsense-go/internal/catalog"
	"github.com/54b3r/shopsense-go/internal/logging"
	"github.com/54b3r/shopsense-go/internal/rag"
)

// maxCompletedOrders caps how many finished orders are rendered. Active
// orders are always shown in full.
const maxCompletedOrders = 3

// maxOrderScroll bounds the order lookup. It must stay far above any
// plausible per-customer order count: active orders past the cap would be
// silently dropped from the context.
const maxOrderScroll = 1000

// UserBuilder renders the requesting user's profile and order history.
// Profile and orders are looked up strictly by the user's own ID — orders are
// matched on customer_id equality, never by free-text similarity, so one
// user's history can never leak into another's context.
type UserBuilder struct {
	store rag.Store
}

// NewUserBuilder returns a builder reading from store.
func NewUserBuilder(store rag.Store) *UserBuilder {
	return &UserBuilder{store: store}
}

// Build returns the user context block, or "" when no profile exists or the
// lookup fails. Empty means "no personalization available", never an error.
func (b *UserBuilder) Build(ctx context.Context, userID string) string {
	if userID == "" {
		return ""
	}
	log := logging.FromContext(ctx)

	profile, ok := b.lookupProfile(ctx, userID)
	if !ok {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("THÔNG TIN KHÁCH HÀNG:\n")
	fmt.Fprintf(&sb, "- Tên: %s | Email: %s | SĐT: %s\n",
		orUnknown(profile.Name), orUnknown(profile.Email), orUnknown(profile.Phone))
	if profile.Address != "" {
		fmt.Fprintf(&sb, "- Địa chỉ: %s\n", profile.Address)
	}

	active, completed := b.lookupOrders(ctx, userID)
	if len(active) > 0 {
		sb.WriteString("\nĐƠN HÀNG ĐANG XỬ LÝ:\n")
		for _, o := range active {
			renderOrder(&sb, o)
		}
	}
	if len(completed) > 0 {
		sb.WriteString("\nĐƠN HÀNG GẦN ĐÂY (đã kết thúc):\n")
		for _, o := range completed {
			renderOrder(&sb, o)
		}
	}
	if len(active) == 0 && len(completed) == 0 {
		sb.WriteString("- Khách chưa có đơn hàng nào.\n")
	}

	log.Debug("user context built",
		"user_id", userID,
		"active_orders", len(active),
		"completed_orders", len(completed))

	return sb.String()
}

// lookupProfile tries the direct document ID first, then falls back to a
// metadata filter — sync writers have keyed profiles both ways.
func (b *UserBuilder) lookupProfile(ctx context.Context, userID string) (catalog.UserProfile, bool) {
	log := logging.FromContext(ctx)

	doc, err := b.store.GetByID(ctx, rag.CollectionUsers, "user_"+userID)
	if err != nil {
		log.Warn("profile lookup by id failed", "user_id", userID, "error", err)
	}
	if doc == nil {
		docs, err := b.store.Get(ctx, rag.CollectionUsers, map[string]string{"user_id": userID}, 1)
		if err != nil {
			log.Warn("profile lookup by filter failed", "user_id", userID, "error", err)
			return catalog.UserProfile{}, false
		}
		if len(docs) == 0 {
			return catalog.UserProfile{}, false
		}
		doc = &docs[0]
	}

	profile, err := catalog.ParseUserProfile(*doc)
	if err != nil {
		log.Warn("profile document malformed", "user_id", userID, "error", err)
		return catalog.UserProfile{}, false
	}
	// The stored profile must belong to the requested identity; a mis-keyed
	// document is dropped rather than rendered.
	if profile.UserID != userID {
		log.Warn("profile document keyed to wrong user", "user_id", userID, "doc_user_id", profile.UserID)
		return catalog.UserProfile{}, false
	}

	return profile, true
}

// lookupOrders returns the user's non-final orders in full plus up to
// maxCompletedOrders most recent finished ones.
func (b *UserBuilder) lookupOrders(ctx context.Context, userID string) (active, completed []catalog.Order) {
	log := logging.FromContext(ctx)

	docs, err := b.store.Get(ctx, rag.CollectionOrders, map[string]string{"customer_id": userID}, maxOrderScroll)
	if err != nil {
		log.Warn("order lookup failed", "user_id", userID, "error", err)
		return nil, nil
	}
	if len(docs) == maxOrderScroll {
		log.Warn("order lookup hit the scroll cap, history may be truncated",
			"user_id", userID, "cap", maxOrderScroll)
	}

	for _, doc := range docs {
		o, err := catalog.ParseOrder(doc)
		if err != nil {
			log.Warn("order document malformed", "doc_id", doc.ID, "error", err)
			continue
		}
		if o.CustomerID != userID {
			continue
		}
		if o.Status.Final() {
			completed = append(completed, o)
		} else {
			active = append(active, o)
		}
	}

	sort.SliceStable(completed, func(i, j int) bool {
		return completed[i].CreatedAt.After(completed[j].CreatedAt)
	})
	if len(completed) > maxCompletedOrders {
		completed = completed[:maxCompletedOrders]
	}

	return active, completed
}

func renderOrder(sb *strings.Builder, o catalog.Order) {
	fmt.Fprintf(sb, "- Đơn #%d | %s | Tổng: %s | Ngày: %s\n",
		o.ID, o.Status, formatVND(o.TotalAmount), formatDate(o.CreatedAt))
	for _, item := range o.Items {
		fmt.Fprintf(sb, "  + %s x%d (%s)\n", item.ProductName, item.Quantity, formatVND(item.Price))
	}
}
