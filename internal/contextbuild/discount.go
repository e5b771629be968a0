package contextbuild

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/54b3r/shopsense-go/internal/catalog"
	"github.com/54b3r/shopsense-go/internal/logging"
	"github.com/54b3r/shopsense-go/internal/rag"
)

// DiscountBuilder retrieves discount codes relevant to the query and
// hard-filters them to currently eligible ones. Similarity alone is not
// enough: an expired or used-up code must never reach the generator even when
// it is the top semantic match.
type DiscountBuilder struct {
	store rag.Store
	topK  int
	now   func() time.Time
}

// NewDiscountBuilder returns a builder reading from store. topK <= 0 selects
// the store's default result count.
func NewDiscountBuilder(store rag.Store, topK int) *DiscountBuilder {
	return &DiscountBuilder{store: store, topK: topK, now: time.Now}
}

// Build returns the discount context block, or "" when no eligible code
// remains after filtering.
func (b *DiscountBuilder) Build(ctx context.Context, query string) string {
	log := logging.FromContext(ctx)

	docs, err := b.store.Query(ctx, rag.CollectionDiscounts, query, b.topK)
	if err != nil {
		log.Warn("discount retrieval failed", "error", err)
		return ""
	}

	now := b.now()
	var eligible []catalog.Discount
	for _, doc := range docs {
		d, err := catalog.ParseDiscount(doc)
		if err != nil {
			log.Warn("discount document malformed", "doc_id", doc.ID, "error", err)
			continue
		}
		if d.Eligible(now) {
			eligible = append(eligible, d)
		}
	}
	if len(eligible) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("MÃ GIẢM GIÁ ĐANG ÁP DỤNG:\n")
	for _, d := range eligible {
		sb.WriteString(renderDiscount(d))
	}
	return sb.String()
}

func renderDiscount(d catalog.Discount) string {
	var value string
	if d.Type == catalog.DiscountPercentage {
		value = fmt.Sprintf("giảm %g%%", d.Value)
		if d.MaxDiscountAmount > 0 {
			value += fmt.Sprintf(" (tối đa %s)", formatVND(d.MaxDiscountAmount))
		}
	} else {
		value = "giảm " + formatVND(d.Value)
	}

	line := fmt.Sprintf("- %s: %s", d.Code, value)
	if d.MinOrderValue > 0 {
		line += fmt.Sprintf(" cho đơn từ %s", formatVND(d.MinOrderValue))
	}
	line += fmt.Sprintf(", HSD đến %s\n", formatDate(d.ValidTo))
	return line
}
