package catalog

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/54b3r/shopsense-go/internal/rag"
)

// ParseError reports a document payload that could not be converted into a
// typed record. It names the collection, document, and offending field so
// sync bugs surface as one well-defined error kind instead of silent
// fallbacks scattered through rendering code.
type ParseError struct {
	// Collection is the logical collection the document came from.
	Collection string
	// DocID is the document identifier.
	DocID string
	// Field is the payload key that failed to parse.
	Field string
	// Err is the underlying conversion error.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("catalog: %s/%s: field %q: %v", e.Collection, e.DocID, e.Field, e.Err)
}

// Unwrap returns the underlying conversion error.
func (e *ParseError) Unwrap() error { return e.Err }

// ParseProduct converts a products-collection document into a Product.
func ParseProduct(doc rag.Document) (Product, error) {
	m := payload{collection: rag.CollectionProducts, doc: doc}

	p := Product{
		ID:          m.int64("product_id"),
		Name:        m.str("name"),
		Price:       m.float("price"),
		Category:    m.str("category"),
		Brand:       m.str("brand"),
		Stock:       int(m.int64("stock")),
		Active:      strings.EqualFold(m.str("status"), "active"),
		ImageURL:    m.str("image_url"),
		Description: m.str("description"),
		Document:    doc.Content,
	}
	if m.err != nil {
		return Product{}, m.err
	}
	if p.Name == "" {
		return Product{}, m.fail("name", fmt.Errorf("missing"))
	}
	return p, nil
}

// ParseOrder converts an orders-collection document into an Order.
func ParseOrder(doc rag.Document) (Order, error) {
	m := payload{collection: rag.CollectionOrders, doc: doc}

	o := Order{
		ID:          m.int64("order_id"),
		CustomerID:  m.str("customer_id"),
		Status:      OrderStatus(strings.ToUpper(m.str("status"))),
		TotalAmount: m.float("total_amount"),
		CreatedAt:   m.time("created_at"),
	}
	if raw := m.str("items"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &o.Items); err != nil {
			return Order{}, m.fail("items", err)
		}
	}
	if m.err != nil {
		return Order{}, m.err
	}
	if o.CustomerID == "" {
		return Order{}, m.fail("customer_id", fmt.Errorf("missing"))
	}
	return o, nil
}

// ParseDiscount converts a discounts-collection document into a Discount.
func ParseDiscount(doc rag.Document) (Discount, error) {
	m := payload{collection: rag.CollectionDiscounts, doc: doc}

	d := Discount{
		Code:              m.str("code"),
		Type:              DiscountType(strings.ToUpper(m.str("type"))),
		Value:             m.float("value"),
		MinOrderValue:     m.float("min_order_value"),
		MaxDiscountAmount: m.float("max_discount_amount"),
		UsageLimit:        int(m.int64("usage_limit")),
		UsedCount:         int(m.int64("used_count")),
		ValidFrom:         m.time("valid_from"),
		ValidTo:           m.time("valid_to"),
		Active:            strings.EqualFold(m.str("status"), "active"),
	}
	if m.err != nil {
		return Discount{}, m.err
	}
	if d.Code == "" {
		return Discount{}, m.fail("code", fmt.Errorf("missing"))
	}
	return d, nil
}

// ParseUserProfile converts a users-collection document into a UserProfile.
func ParseUserProfile(doc rag.Document) (UserProfile, error) {
	m := payload{collection: rag.CollectionUsers, doc: doc}

	u := UserProfile{
		UserID:        m.str("user_id"),
		Name:          m.str("name"),
		Email:         m.str("email"),
		Phone:         m.str("phone"),
		Address:       m.str("address"),
		Role:          m.str("role"),
		AccountStatus: m.str("account_status"),
	}
	if m.err != nil {
		return UserProfile{}, m.err
	}
	if u.UserID == "" {
		return UserProfile{}, m.fail("user_id", fmt.Errorf("missing"))
	}
	return u, nil
}

// ParseCartSnapshot converts a carts-collection document into a CartSnapshot.
// The returned state is CartHasItems or CartEmpty — CartUnavailable is only
// produced by the fetch layer, never by parsing.
func ParseCartSnapshot(doc rag.Document) (CartSnapshot, error) {
	m := payload{collection: rag.CollectionCarts, doc: doc}

	c := CartSnapshot{
		UserID:     m.str("user_id"),
		TotalValue: m.float("total_value"),
	}
	if raw := m.str("items"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &c.Items); err != nil {
			return CartSnapshot{}, m.fail("items", err)
		}
	}
	if m.err != nil {
		return CartSnapshot{}, m.err
	}
	if c.UserID == "" {
		return CartSnapshot{}, m.fail("user_id", fmt.Errorf("missing"))
	}
	if len(c.Items) == 0 {
		c.State = CartEmpty
	} else {
		c.State = CartHasItems
	}
	return c, nil
}

// ParseModelSettings converts a settings-collection document into ModelSettings.
func ParseModelSettings(doc rag.Document) (ModelSettings, error) {
	m := payload{collection: rag.CollectionSettings, doc: doc}

	s := ModelSettings{
		Model:        m.str("model"),
		Temperature:  float32(m.float("temperature")),
		MaxTokens:    int(m.int64("max_tokens")),
		SystemPrompt: m.str("system_prompt"),
		Active:       strings.EqualFold(m.str("is_active"), "true"),
	}
	if m.err != nil {
		return ModelSettings{}, m.err
	}
	if s.Model == "" {
		return ModelSettings{}, m.fail("model", fmt.Errorf("missing"))
	}
	return s, nil
}

// payload is a small cursor over a document's string payload. The first
// conversion failure is recorded and all later reads become no-ops, so parse
// functions read every field and check err once.
type payload struct {
	collection string
	doc        rag.Document
	err        error
}

func (m *payload) fail(field string, err error) error {
	perr := &ParseError{Collection: m.collection, DocID: m.doc.ID, Field: field, Err: err}
	if m.err == nil {
		m.err = perr
	}
	return perr
}

func (m *payload) str(key string) string {
	return m.doc.Metadata[key]
}

func (m *payload) int64(key string) int64 {
	raw := m.doc.Metadata[key]
	if raw == "" || m.err != nil {
		return 0
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		// Sync writers occasionally store integers as "42.0".
		f, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil {
			m.fail(key, err)
			return 0
		}
		return int64(f)
	}
	return v
}

func (m *payload) float(key string) float64 {
	raw := m.doc.Metadata[key]
	if raw == "" || m.err != nil {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		m.fail(key, err)
		return 0
	}
	return v
}

func (m *payload) time(key string) time.Time {
	raw := m.doc.Metadata[key]
	if raw == "" || m.err != nil {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	m.fail(key, fmt.Errorf("unrecognised time %q", raw))
	return time.Time{}
}
