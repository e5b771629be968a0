package contextbuild

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/54b3r/shopsense-go/internal/rag"
)

func profileDoc(userID, name string) rag.Document {
	return rag.Document{
		ID: "user_" + userID,
		Metadata: map[string]string{
			"user_id": userID,
			"name":    name,
			"email":   name + "@example.com",
			"phone":   "0901234567",
		},
	}
}

func orderDoc(orderID int, customerID, status, createdAt string) rag.Document {
	return rag.Document{
		ID: fmt.Sprintf("order_%d", orderID),
		Metadata: map[string]string{
			"order_id":     fmt.Sprintf("%d", orderID),
			"customer_id":  customerID,
			"status":       status,
			"total_amount": "12990000",
			"created_at":   createdAt,
			"items":        `[{"productId":1,"productName":"Laptop Acer Aspire 5","price":12990000,"quantity":1}]`,
		},
	}
}

func TestUserBuilderRendersProfileAndOrders(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.add(rag.CollectionUsers, profileDoc("7", "Nguyễn Văn An"))
	store.add(rag.CollectionOrders, orderDoc(101, "7", "SHIPPING", "2026-08-20T10:00:00"))
	store.add(rag.CollectionOrders, orderDoc(102, "7", "DELIVERED", "2026-08-01T10:00:00"))

	out := NewUserBuilder(store).Build(context.Background(), "7")
	if !strings.Contains(out, "Nguyễn Văn An") {
		t.Errorf("missing profile name:\n%s", out)
	}
	if !strings.Contains(out, "Đơn #101") || !strings.Contains(out, "SHIPPING") {
		t.Errorf("missing active order:\n%s", out)
	}
	if !strings.Contains(out, "Đơn #102") {
		t.Errorf("missing completed order:\n%s", out)
	}
}

func TestUserBuilderNeverLeaksOtherUsersOrders(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.add(rag.CollectionUsers, profileDoc("7", "Nguyễn Văn An"))
	store.add(rag.CollectionUsers, profileDoc("8", "Trần Thị Bình"))
	store.add(rag.CollectionOrders, orderDoc(101, "7", "PENDING", "2026-08-20T10:00:00"))
	store.add(rag.CollectionOrders, orderDoc(201, "8", "PENDING", "2026-08-21T10:00:00"))

	out := NewUserBuilder(store).Build(context.Background(), "7")
	if strings.Contains(out, "Đơn #201") {
		t.Errorf("order of another customer rendered:\n%s", out)
	}
	if strings.Contains(out, "Trần Thị Bình") {
		t.Errorf("another user's profile rendered:\n%s", out)
	}
}

func TestUserBuilderNoProfileIsEmpty(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.add(rag.CollectionOrders, orderDoc(101, "7", "PENDING", "2026-08-20T10:00:00"))

	if out := NewUserBuilder(store).Build(context.Background(), "7"); out != "" {
		t.Errorf("missing profile must yield empty block, got:\n%s", out)
	}
}

func TestUserBuilderFilterFallbackLookup(t *testing.T) {
	t.Parallel()

	// Profile keyed by a non-standard document ID: only the metadata filter
	// can find it.
	store := newFakeStore()
	doc := profileDoc("7", "Nguyễn Văn An")
	doc.ID = "profile-7-legacy"
	store.add(rag.CollectionUsers, doc)

	out := NewUserBuilder(store).Build(context.Background(), "7")
	if !strings.Contains(out, "Nguyễn Văn An") {
		t.Errorf("fallback lookup did not find the profile:\n%s", out)
	}
}

func TestUserBuilderCapsCompletedOrders(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.add(rag.CollectionUsers, profileDoc("7", "Nguyễn Văn An"))
	for i := 0; i < 6; i++ {
		store.add(rag.CollectionOrders,
			orderDoc(300+i, "7", "DELIVERED", fmt.Sprintf("2026-08-%02dT10:00:00", i+1)))
	}

	out := NewUserBuilder(store).Build(context.Background(), "7")
	n := strings.Count(out, "- Đơn #")
	if n != maxCompletedOrders {
		t.Errorf("rendered %d completed orders, want %d:\n%s", n, maxCompletedOrders, out)
	}
	// Most recent ones survive the cap.
	if !strings.Contains(out, "Đơn #305") {
		t.Errorf("most recent completed order missing:\n%s", out)
	}
	if strings.Contains(out, "Đơn #300") {
		t.Errorf("oldest completed order should be capped away:\n%s", out)
	}
}

func TestUserBuilderLargeHistoryKeepsActiveOrders(t *testing.T) {
	t.Parallel()

	// A heavy buyer: far more finished orders than the old per-page read
	// could return, with the in-flight orders buried at the end.
	store := newFakeStore()
	store.add(rag.CollectionUsers, profileDoc("7", "Nguyễn Văn An"))
	for i := 0; i < 60; i++ {
		store.add(rag.CollectionOrders,
			orderDoc(400+i, "7", "DELIVERED", fmt.Sprintf("2026-%02d-%02dT10:00:00", i/28+1, i%28+1)))
	}
	store.add(rag.CollectionOrders, orderDoc(501, "7", "SHIPPING", "2026-08-25T10:00:00"))
	store.add(rag.CollectionOrders, orderDoc(502, "7", "PENDING", "2026-08-26T10:00:00"))

	out := NewUserBuilder(store).Build(context.Background(), "7")
	if !strings.Contains(out, "Đơn #501") || !strings.Contains(out, "Đơn #502") {
		t.Errorf("active orders dropped behind a large finished history:\n%s", out)
	}
}

func TestUserBuilderStoreFailureDegrades(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.err = errStoreDown

	if out := NewUserBuilder(store).Build(context.Background(), "7"); out != "" {
		t.Errorf("store failure must degrade to empty block, got:\n%s", out)
	}
}
