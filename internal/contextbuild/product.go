// Package contextbuild turns store records into the bounded text blocks the
// prompt is assembled from: product catalog summaries, the requesting user's
// profile and orders, eligible discount codes, and the current cart. Each
// builder degrades to an empty block on retrieval failure — a missing
// collection must never abort the other blocks — and the composer merges the
// blocks under a global character budget.
package contextbuild

import (
	"fmt"
	"sort"
	"strings"

	"github.com/54b3r/shopsense-go/internal/catalog"
	"github.com/54b3r/shopsense-go/internal/intent"
)

// ProductTruncatedMarker is appended when the product listing was cut to fit
// the block budget.
const ProductTruncatedMarker = "[DANH SÁCH SẢN PHẨM ĐÃ ĐƯỢC RÚT GỌN]"

// defaultProductBlockChars bounds the product block so one huge catalog
// cannot crowd out every other context block.
const defaultProductBlockChars = 4000

// ProductBuilder renders the filtered, ranked product listing. It is pure:
// the caller supplies the full catalog and the builder never touches the
// store.
type ProductBuilder struct {
	maxChars int
}

// NewProductBuilder returns a builder whose rendered block stays within
// maxChars (plus the truncation marker). maxChars <= 0 selects the default.
func NewProductBuilder(maxChars int) *ProductBuilder {
	if maxChars <= 0 {
		maxChars = defaultProductBlockChars
	}
	return &ProductBuilder{maxChars: maxChars}
}

// categorySection is one category's share of the listing, with the summary
// stats that are always emitted regardless of catalog size.
type categorySection struct {
	name     string
	products []catalog.Product
	minPrice float64
	maxPrice float64
	avgPrice float64
	cheapest catalog.Product
	priciest catalog.Product
	stocked  catalog.Product
}

// Build renders the product context block for one query. Inactive products
// never appear. Narrowing filters (gaming line, brand, price range) fall back
// to the wider set when they would empty it, so the block is non-empty
// whenever the catalog holds at least one active product.
func (b *ProductBuilder) Build(it intent.Intent, all []catalog.Product) string {
	active := make([]catalog.Product, 0, len(all))
	for _, p := range all {
		if p.Active {
			active = append(active, p)
		}
	}
	if len(active) == 0 {
		return ""
	}

	cands := active

	// Gaming laptop queries narrow the laptop pool to known gaming lines,
	// but only when that leaves something to show.
	if it.Category == intent.CategoryLaptop && it.Purpose == intent.PurposeGaming {
		narrowed := filterKeep(cands, func(p catalog.Product) bool {
			if !matchesCategory(p, intent.CategoryLaptop) {
				return true
			}
			return containsAnyFold(p.Name, intent.GamingSeriesKeywords)
		})
		if countInCategory(narrowed, intent.CategoryLaptop) > 0 {
			cands = narrowed
		}
	}

	// Brand narrowing is skipped on comparison queries so the listing keeps
	// candidates from multiple brands.
	if it.Brand != "" && !it.IsComparison {
		narrowed := filterKeep(cands, func(p catalog.Product) bool {
			return containsAnyFold(p.Name, []string{it.Brand}) ||
				strings.EqualFold(p.Brand, it.Brand)
		})
		if len(narrowed) > 0 {
			cands = narrowed
		}
	}

	if it.Range != nil {
		narrowed := filterKeep(cands, func(p catalog.Product) bool {
			return it.Range.Contains(p.Price)
		})
		if len(narrowed) > 0 {
			cands = narrowed
		}
	}

	sections := partition(cands, it.Category)
	for i := range sections {
		sortSection(&sections[i], it.Tier)
	}

	return b.render(sections, it)
}

// filterKeep returns the products for which keep is true, preserving order.
func filterKeep(in []catalog.Product, keep func(catalog.Product) bool) []catalog.Product {
	out := make([]catalog.Product, 0, len(in))
	for _, p := range in {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

// matchesCategory reports whether the product's category field names the
// intent category, in either Vietnamese or English.
func matchesCategory(p catalog.Product, c intent.Category) bool {
	cat := strings.ToLower(p.Category)
	switch c {
	case intent.CategoryPhone:
		return strings.Contains(cat, "điện thoại") || strings.Contains(cat, "phone")
	case intent.CategoryLaptop:
		return strings.Contains(cat, "laptop")
	case intent.CategoryTablet:
		return strings.Contains(cat, "máy tính bảng") || strings.Contains(cat, "tablet")
	case intent.CategoryWatch:
		return strings.Contains(cat, "đồng hồ") || strings.Contains(cat, "watch")
	case intent.CategoryAccessory:
		return strings.Contains(cat, "phụ kiện") || strings.Contains(cat, "accessor")
	default:
		return false
	}
}

func countInCategory(in []catalog.Product, c intent.Category) int {
	n := 0
	for _, p := range in {
		if matchesCategory(p, c) {
			n++
		}
	}
	return n
}

// containsAnyFold reports whether s contains any keyword, case-insensitively.
func containsAnyFold(s string, keywords []string) bool {
	s = strings.ToLower(s)
	for _, kw := range keywords {
		if strings.Contains(s, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// partition groups products by their category field, target category first,
// remaining categories in first-seen order. Stats are computed per section.
func partition(in []catalog.Product, target intent.Category) []categorySection {
	index := make(map[string]int)
	var sections []categorySection

	for _, p := range in {
		name := p.Category
		if name == "" {
			name = "Khác"
		}
		i, ok := index[name]
		if !ok {
			i = len(sections)
			index[name] = i
			sections = append(sections, categorySection{name: name})
		}
		sections[i].products = append(sections[i].products, p)
	}

	for i := range sections {
		computeStats(&sections[i])
	}

	if target != intent.CategoryNone {
		sort.SliceStable(sections, func(i, j int) bool {
			ti := len(sections[i].products) > 0 && matchesCategory(sections[i].products[0], target)
			tj := len(sections[j].products) > 0 && matchesCategory(sections[j].products[0], target)
			return ti && !tj
		})
	}

	return sections
}

func computeStats(s *categorySection) {
	if len(s.products) == 0 {
		return
	}
	s.cheapest, s.priciest, s.stocked = s.products[0], s.products[0], s.products[0]
	s.minPrice, s.maxPrice = s.products[0].Price, s.products[0].Price

	var sum float64
	for _, p := range s.products {
		sum += p.Price
		if p.Price < s.minPrice {
			s.minPrice, s.cheapest = p.Price, p
		}
		if p.Price > s.maxPrice {
			s.maxPrice, s.priciest = p.Price, p
		}
		if p.Stock > s.stocked.Stock {
			s.stocked = p
		}
	}
	s.avgPrice = sum / float64(len(s.products))
}

// sortSection orders one category's listing: low tier ascending by price,
// high tier descending, otherwise descending stock as a popularity proxy.
// Stable so ties keep retrieval order.
func sortSection(s *categorySection, tier intent.PriceTier) {
	switch tier {
	case intent.TierLow:
		sort.SliceStable(s.products, func(i, j int) bool {
			return s.products[i].Price < s.products[j].Price
		})
	case intent.TierHigh:
		sort.SliceStable(s.products, func(i, j int) bool {
			return s.products[i].Price > s.products[j].Price
		})
	default:
		sort.SliceStable(s.products, func(i, j int) bool {
			return s.products[i].Stock > s.products[j].Stock
		})
	}
}

// render emits the summary header for every section, then the per-product
// listing until the character budget runs out. The summary is fixed-size per
// category so it always fits first.
func (b *ProductBuilder) render(sections []categorySection, it intent.Intent) string {
	var sb strings.Builder

	sb.WriteString("TỔNG QUAN DANH MỤC SẢN PHẨM:\n")
	for _, s := range sections {
		fmt.Fprintf(&sb, "- %s: %d sản phẩm | giá %s – %s (TB %s) | rẻ nhất: %s | đắt nhất: %s | sẵn hàng nhất: %s\n",
			s.name, len(s.products),
			formatVND(s.minPrice), formatVND(s.maxPrice), formatVND(s.avgPrice),
			s.cheapest.Name, s.priciest.Name, s.stocked.Name)
	}

	sb.WriteString("\nDANH SÁCH SẢN PHẨM:\n")
	truncated := false
	for _, s := range sections {
		section := renderSection(s, it)
		if sb.Len()+len(section) > b.maxChars {
			truncated = true
			break
		}
		sb.WriteString(section)
	}
	if truncated {
		sb.WriteString(ProductTruncatedMarker + "\n")
	}

	return sb.String()
}

func renderSection(s categorySection, it intent.Intent) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s]\n", s.name)

	for _, p := range s.products {
		if it.WantsFullSpecs && p.Document != "" {
			sb.WriteString(p.Document)
			sb.WriteString("\n")
			continue
		}

		var tags []string
		if p.ID == s.cheapest.ID {
			tags = append(tags, "RẺ NHẤT")
		}
		if p.ID == s.priciest.ID {
			tags = append(tags, "CAO CẤP NHẤT")
		}
		tag := ""
		if len(tags) > 0 {
			tag = " (" + strings.Join(tags, ", ") + ")"
		}

		fmt.Fprintf(&sb, "- %s [id=%d] | Giá: %s%s | Hãng: %s | Kho: %d | Ảnh: %s\n",
			p.Name, p.ID, formatVND(p.Price), tag, orUnknown(p.Brand), p.Stock, p.ImageURL)
	}
	sb.WriteString("\n")
	return sb.String()
}

func orUnknown(s string) string {
	if s == "" {
		return "không rõ"
	}
	return s
}
