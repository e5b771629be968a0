// Package intent derives a structured interpretation of a raw user query:
// target category, purpose of use, price tier or explicit VND range, brand,
// comparison flag, and full-specification flag. Analysis is pure,
// deterministic, case-insensitive substring matching against curated keyword
// lists — no external calls and no hidden state, so the same query always
// yields the same Intent.
package intent

import (
	"regexp"
	"strconv"
	"strings"
)

// Category tags the product category a query is asking about.
type Category string

const (
	CategoryNone      Category = ""
	CategoryPhone     Category = "phone"
	CategoryLaptop    Category = "laptop"
	CategoryTablet    Category = "tablet"
	CategoryWatch     Category = "watch"
	CategoryAccessory Category = "accessory"
)

// Purpose tags the use the customer has in mind.
type Purpose string

const (
	PurposeNone     Purpose = ""
	PurposeGaming   Purpose = "gaming"
	PurposeOffice   Purpose = "office"
	PurposeGraphics Purpose = "graphics"
	PurposeStudy    Purpose = "study"
)

// PriceTier is the coarse price preference when no explicit range is given.
type PriceTier int

const (
	TierNone PriceTier = iota
	TierLow
	TierMid
	TierHigh
)

// PriceRange is an explicit VND range parsed from the query.
// Max == 0 means unbounded above ("over 20 million").
type PriceRange struct {
	Min float64
	Max float64
}

// Contains reports whether price falls inside the range.
func (r PriceRange) Contains(price float64) bool {
	if price < r.Min {
		return false
	}
	if r.Max > 0 && price > r.Max {
		return false
	}
	return true
}

// Intent is the structured interpretation of one query. The zero value means
// "nothing detected" and downstream builders fall back to generic ranking.
type Intent struct {
	// Category is the detected target category, or CategoryNone.
	Category Category
	// Purpose is the detected purpose-of-use tag, or PurposeNone.
	Purpose Purpose
	// Tier is the coarse price preference. When Range is set the tier only
	// informs sort direction; the range drives filtering.
	Tier PriceTier
	// Range is the explicit numeric VND range, nil when none was stated.
	// An explicit range always wins over vaguer tier words.
	Range *PriceRange
	// Brand is the detected brand keyword group, empty when none matched.
	// Ignored by product filtering when IsComparison is true.
	Brand string
	// IsComparison marks comparison queries ("so sánh", "vs", "hay").
	// Comparison queries must not be narrowed to a single brand.
	IsComparison bool
	// WantsFullSpecs switches product rendering from compact lines to the
	// full stored document text.
	WantsFullSpecs bool
}

// million matches a VND amount expressed in millions ("10 triệu", "10.5tr").
const million = `(\d+(?:[.,]\d+)?)\s*(?:triệu|trieu|tr\b|million)`

var (
	// The first amount of a bounded range often omits the unit
	// ("từ 10 đến 15 triệu"), so the unit is optional there.
	reBetween = regexp.MustCompile(`(?:từ|tu|from)?\s*(\d+(?:[.,]\d+)?)\s*(?:triệu|trieu|tr\b|million)?\s*(?:đến|den|tới|toi|-|to)\s*` + million)
	reUnder   = regexp.MustCompile(`(?:dưới|duoi|under|below|không quá|khong qua|tối đa|toi da)\s*` + million)
	reOver    = regexp.MustCompile(`(?:trên|tren|over|above|từ|tu)\s*` + million + `\s*(?:trở lên|tro len)?`)
	reAround  = regexp.MustCompile(`(?:khoảng|khoang|tầm|tam|around|about)\s*` + million)
)

// Analyze maps a raw query string to its Intent. It is a pure function:
// calling it twice on the same string yields identical results.
func Analyze(query string) Intent {
	// Pad with spaces so word-boundary keywords (" vs ", " hay ") match at
	// the start and end of the query too.
	q := " " + strings.ToLower(query) + " "

	it := Intent{
		Category:       detectCategory(q),
		Purpose:        detectPurpose(q),
		Brand:          detectBrand(q),
		IsComparison:   containsAny(q, comparisonKeywords),
		WantsFullSpecs: containsAny(q, fullSpecKeywords),
	}

	// A gaming hardware line implies a gaming purpose even without the word
	// "gaming" in the query.
	if it.Purpose == PurposeNone && containsAny(q, GamingSeriesKeywords) {
		it.Purpose = PurposeGaming
	}

	it.Range = detectRange(q)
	it.Tier = detectTier(q)

	// An explicit range is more specific than tier words; when both appear
	// keep the tier only if it agrees with the range's direction so sorting
	// stays coherent.
	if it.Range != nil && it.Tier == TierNone {
		if it.Range.Max > 0 && it.Range.Min == 0 {
			it.Tier = TierLow
		} else if it.Range.Max == 0 && it.Range.Min > 0 {
			it.Tier = TierHigh
		}
	}

	return it
}

// detectCategory returns the first category whose keyword set matches.
// The list is iterated in a fixed priority order (phones before generic
// mobile terms) to avoid cross-category bleed.
func detectCategory(q string) Category {
	for _, entry := range categoryKeywords {
		if containsAny(q, entry.keywords) {
			return entry.category
		}
	}
	return CategoryNone
}

// detectPurpose returns the first purpose whose keyword set matches.
func detectPurpose(q string) Purpose {
	for _, entry := range purposeKeywords {
		if containsAny(q, entry.keywords) {
			return entry.purpose
		}
	}
	return PurposeNone
}

// detectBrand returns the canonical brand name for the first brand keyword
// group that matches, or "" when none does.
func detectBrand(q string) string {
	for _, entry := range brandKeywords {
		if containsAny(q, entry.keywords) {
			return entry.brand
		}
	}
	return ""
}

// detectTier maps tier words to a coarse price preference.
func detectTier(q string) PriceTier {
	switch {
	case containsAny(q, lowTierKeywords):
		return TierLow
	case containsAny(q, highTierKeywords):
		return TierHigh
	case containsAny(q, midTierKeywords):
		return TierMid
	default:
		return TierNone
	}
}

// detectRange parses an explicit numeric VND range from the query. Bounded
// phrases ("từ 10 đến 20 triệu") are tried before one-sided ones so "từ"
// is not misread as an open lower bound.
func detectRange(q string) *PriceRange {
	if m := reBetween.FindStringSubmatch(q); m != nil {
		return &PriceRange{Min: millions(m[1]), Max: millions(m[2])}
	}
	if m := reUnder.FindStringSubmatch(q); m != nil {
		return &PriceRange{Min: 0, Max: millions(m[1])}
	}
	if m := reOver.FindStringSubmatch(q); m != nil {
		return &PriceRange{Min: millions(m[1]), Max: 0}
	}
	if m := reAround.FindStringSubmatch(q); m != nil {
		center := millions(m[1])
		return &PriceRange{Min: center * 0.8, Max: center * 1.2}
	}
	return nil
}

// millions converts a matched number-of-millions string into VND.
func millions(s string) float64 {
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v * 1_000_000
}

// containsAny reports whether q contains any of the given keywords.
func containsAny(q string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}
