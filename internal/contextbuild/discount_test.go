package contextbuild

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/54b3r/shopsense-go/internal/rag"
)

func discountDoc(code string, meta map[string]string) rag.Document {
	m := map[string]string{
		"code":            code,
		"type":            "PERCENTAGE",
		"value":           "10",
		"min_order_value": "5000000",
		"usage_limit":     "100",
		"used_count":      "10",
		"valid_from":      "2026-08-01T00:00:00",
		"valid_to":        "2026-09-30T23:59:59",
		"status":          "active",
	}
	for k, v := range meta {
		m[k] = v
	}
	return rag.Document{ID: "discount_" + code, Metadata: m}
}

func discountBuilderAt(store rag.Store, now time.Time) *DiscountBuilder {
	b := NewDiscountBuilder(store, 5)
	b.now = func() time.Time { return now }
	return b
}

func TestDiscountBuilderRendersEligible(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.add(rag.CollectionDiscounts, discountDoc("SUMMER10", nil))

	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	out := discountBuilderAt(store, now).Build(context.Background(), "mã giảm giá laptop")
	if !strings.Contains(out, "SUMMER10") {
		t.Errorf("eligible discount missing:\n%s", out)
	}
	if !strings.Contains(out, "giảm 10%") {
		t.Errorf("discount value missing:\n%s", out)
	}
}

func TestDiscountBuilderExcludesExhaustedTopMatch(t *testing.T) {
	t.Parallel()

	// The exhausted code is the first (top-ranked) result; it must still be
	// filtered out.
	store := newFakeStore()
	store.add(rag.CollectionDiscounts, discountDoc("HOT50", map[string]string{
		"usage_limit": "100",
		"used_count":  "100",
	}))
	store.add(rag.CollectionDiscounts, discountDoc("SUMMER10", nil))

	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	out := discountBuilderAt(store, now).Build(context.Background(), "mã HOT50")
	if strings.Contains(out, "HOT50") {
		t.Errorf("exhausted discount rendered:\n%s", out)
	}
	if !strings.Contains(out, "SUMMER10") {
		t.Errorf("remaining eligible discount missing:\n%s", out)
	}
}

func TestDiscountBuilderUncappedCodeStaysEligible(t *testing.T) {
	t.Parallel()

	// usage_limit 0 means the code has no usage cap; heavy use alone must
	// not disqualify it.
	store := newFakeStore()
	store.add(rag.CollectionDiscounts, discountDoc("MEMBER5", map[string]string{
		"usage_limit": "0",
		"used_count":  "12345",
	}))

	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	out := discountBuilderAt(store, now).Build(context.Background(), "mã thành viên")
	if !strings.Contains(out, "MEMBER5") {
		t.Errorf("uncapped discount missing:\n%s", out)
	}
}

func TestDiscountBuilderExcludesExpiredAndInactive(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.add(rag.CollectionDiscounts, discountDoc("OLD20", map[string]string{
		"valid_to": "2026-07-31T23:59:59",
	}))
	store.add(rag.CollectionDiscounts, discountDoc("PAUSED15", map[string]string{
		"status": "inactive",
	}))
	store.add(rag.CollectionDiscounts, discountDoc("SOON25", map[string]string{
		"valid_from": "2026-10-01T00:00:00",
		"valid_to":   "2026-12-31T23:59:59",
	}))

	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	out := discountBuilderAt(store, now).Build(context.Background(), "mã giảm giá")
	if out != "" {
		t.Errorf("no eligible discounts, want empty block, got:\n%s", out)
	}
}

func TestDiscountBuilderStoreFailureDegrades(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.err = errStoreDown

	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	if out := discountBuilderAt(store, now).Build(context.Background(), "mã giảm giá"); out != "" {
		t.Errorf("store failure must degrade to empty block, got:\n%s", out)
	}
}

func TestDiscountBuilderFixedAmountRendering(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.add(rag.CollectionDiscounts, discountDoc("SHIP30K", map[string]string{
		"type":  "FIXED",
		"value": "30000",
	}))

	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	out := discountBuilderAt(store, now).Build(context.Background(), "freeship")
	if !strings.Contains(out, "giảm 30.000đ") {
		t.Errorf("fixed discount value missing:\n%s", out)
	}
}
