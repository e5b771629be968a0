// Package actions derives typed follow-up suggestions (add to cart, apply
// discount, create order, view cart) from a finished chat turn. Detection is
// keyword-driven and conservative: a product is only bound to an action when
// enough of its name tokens actually appear in the conversation, so a single
// common word never fabricates a suggestion.
package actions

import (
	"strconv"
	"strings"

	"github.com/54b3r/shopsense-go/internal/catalog"
)

// Type enumerates the supported action suggestions.
type Type string

const (
	AddToCart     Type = "ADD_TO_CART"
	ApplyDiscount Type = "APPLY_DISCOUNT"
	CreateOrder   Type = "CREATE_ORDER"
	ViewCart      Type = "VIEW_CART"
)

// Action is one suggestion bound to a concrete product or discount code.
type Action struct {
	Type         Type   `json:"type"`
	ProductID    int64  `json:"productId,omitempty"`
	ProductName  string `json:"productName,omitempty"`
	DiscountCode string `json:"discountCode,omitempty"`
}

// maxActions keeps the suggestion list a handful, not a catalog dump.
const maxActions = 5

// minTokenMatches is the number of significant name tokens that must appear
// in the conversation before a multi-word product is bound to an action.
const minTokenMatches = 2

var viewCartKeywords = []string{
	"xem giỏ hàng", "xem gio hang", "giỏ hàng của tôi", "gio hang cua toi",
	"trong giỏ có gì", "trong gio co gi", "kiểm tra giỏ", "kiem tra gio",
	"view cart", "my cart",
}

var checkoutKeywords = []string{
	"thanh toán", "thanh toan", "đặt hàng", "dat hang", "mua ngay",
	"mua luôn", "mua luon", "chốt đơn", "chot don", "checkout",
}

// nameStopwords are category and filler words that never count toward the
// token-match threshold.
var nameStopwords = map[string]struct{}{
	"laptop": {}, "điện": {}, "thoại": {}, "dien": {}, "thoai": {},
	"máy": {}, "may": {}, "tính": {}, "tinh": {}, "bảng": {}, "bang": {},
	"đồng": {}, "hồ": {}, "dong": {}, "ho": {}, "tai": {}, "nghe": {},
	"chuột": {}, "chuot": {}, "bàn": {}, "ban": {}, "phím": {}, "phim": {},
	"new": {}, "chính": {}, "hãng": {}, "chinh": {}, "hang": {},
}

// Detector classifies one finished turn into action suggestions.
type Detector struct{}

// NewDetector returns a Detector.
func NewDetector() *Detector { return &Detector{} }

// Detect returns the deduplicated action suggestions for one turn. A
// view-cart query short-circuits product binding entirely: viewing is not
// wanting to add, so only cart and checkout actions are surfaced.
func (d *Detector) Detect(userQuery, generatedText string, products []catalog.Product, discounts []catalog.Discount) []Action {
	query := " " + strings.ToLower(userQuery) + " "
	conversation := query + " " + strings.ToLower(generatedText)

	if containsAny(query, viewCartKeywords) {
		out := []Action{{Type: ViewCart}}
		if containsAny(query, checkoutKeywords) {
			out = append(out, Action{Type: CreateOrder})
		}
		return out
	}

	var out []Action
	seen := make(map[string]struct{})
	add := func(a Action) {
		key := string(a.Type) + "|" + a.DiscountCode + "|" + a.ProductName
		if a.ProductID != 0 {
			key = string(a.Type) + "|" + strconv.FormatInt(a.ProductID, 10)
		}
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		out = append(out, a)
	}

	for _, p := range products {
		if bindsProduct(p.Name, conversation) {
			add(Action{Type: AddToCart, ProductID: p.ID, ProductName: p.Name})
		}
	}

	for _, dc := range discounts {
		if dc.Code != "" && strings.Contains(conversation, strings.ToLower(dc.Code)) {
			add(Action{Type: ApplyDiscount, DiscountCode: dc.Code})
		}
	}

	if containsAny(query, checkoutKeywords) {
		add(Action{Type: CreateOrder})
	}

	if len(out) > maxActions {
		out = out[:maxActions]
	}
	return out
}

// bindsProduct reports whether enough significant tokens of the product name
// appear in the conversation text. Multi-word names need minTokenMatches
// distinct tokens; a name with a single significant token needs that token.
func bindsProduct(name, conversation string) bool {
	tokens := significantTokens(name)
	if len(tokens) == 0 {
		return false
	}

	matched := 0
	for _, tok := range tokens {
		if strings.Contains(conversation, tok) {
			matched++
		}
	}

	need := minTokenMatches
	if len(tokens) < minTokenMatches {
		need = len(tokens)
	}
	return matched >= need
}

// significantTokens splits a product name into lowercase tokens, dropping
// stopwords and anything shorter than two characters.
func significantTokens(name string) []string {
	fields := strings.Fields(strings.ToLower(name))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, "()[],.-")
		if len([]rune(f)) < 2 {
			continue
		}
		if _, stop := nameStopwords[f]; stop {
			continue
		}
		out = append(out, f)
	}
	return out
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
