// Package catalog defines the typed records the chat engine works with:
// products, orders, discounts, user profiles, cart snapshots, and model
// settings. Records are parsed from vector-store document payloads at a
// single boundary (parse.go) so the rendering and ranking code never touches
// loosely typed metadata maps.
package catalog

import (
	"time"
)

// Product is one catalog item synced from the commerce backend.
// Prices are in VND. The chat engine never mutates products — the sync
// process owns the catalog.
type Product struct {
	// ID is the commerce backend's numeric product ID.
	ID int64
	// Name is the display name (e.g. "Laptop Acer Aspire 5").
	Name string
	// Price is the list price in VND.
	Price float64
	// Category is the category name (e.g. "Laptop", "Điện thoại").
	Category string
	// Brand is the manufacturer name, may be empty.
	Brand string
	// Stock is the units in stock, never negative.
	Stock int
	// Active reports whether the product is currently sellable.
	Active bool
	// ImageURL is the primary product image.
	ImageURL string
	// Description is the short marketing description.
	Description string
	// Document is the full formatted text stored for embedding; emitted
	// verbatim when the user asks for full specifications.
	Document string
}

// OrderStatus enumerates the lifecycle states of an order.
type OrderStatus string

const (
	OrderPending    OrderStatus = "PENDING"
	OrderProcessing OrderStatus = "PROCESSING"
	OrderConfirmed  OrderStatus = "CONFIRMED"
	OrderShipping   OrderStatus = "SHIPPING"
	OrderDelivered  OrderStatus = "DELIVERED"
	OrderCancelled  OrderStatus = "CANCELLED"
)

// Final reports whether the order has reached a terminal state.
// Non-final orders are always rendered in full in the user context.
func (s OrderStatus) Final() bool {
	return s == OrderDelivered || s == OrderCancelled
}

// OrderItem is a single line item on an order.
type OrderItem struct {
	ProductID   int64   `json:"productId"`
	ProductName string  `json:"productName"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}

// Order is one order owned by a customer. Any lookup by customer must filter
// on CustomerID equality — orders are never matched by free-text similarity.
type Order struct {
	ID          int64
	CustomerID  string
	Status      OrderStatus
	TotalAmount float64
	CreatedAt   time.Time
	Items       []OrderItem
}

// DiscountType selects how a discount's value is applied.
type DiscountType string

const (
	// DiscountPercentage applies Value as a percentage of the order total.
	DiscountPercentage DiscountType = "PERCENTAGE"
	// DiscountFixed applies Value as a fixed VND amount.
	DiscountFixed DiscountType = "FIXED"
)

// Discount is one discount code synced from the commerce backend.
type Discount struct {
	Code              string
	Type              DiscountType
	Value             float64
	MinOrderValue     float64
	MaxDiscountAmount float64
	UsageLimit        int
	UsedCount         int
	ValidFrom         time.Time
	ValidTo           time.Time
	Active            bool
}

// Eligible reports whether the discount may be surfaced to the generator at
// time now: it must be active, inside its validity window, and not used up.
// A UsageLimit of zero (or negative) means the code has no usage cap, so the
// usedCount comparison is skipped for such codes.
// Similarity ranking alone is never sufficient — expired or exhausted codes
// must not reach the prompt even when textually close to the query.
func (d Discount) Eligible(now time.Time) bool {
	if !d.Active {
		return false
	}
	if now.Before(d.ValidFrom) || now.After(d.ValidTo) {
		return false
	}
	if d.UsageLimit > 0 && d.UsedCount >= d.UsageLimit {
		return false
	}
	return true
}

// UserProfile is the requesting user's own account record. Profiles are
// scoped strictly to the requesting identity and never retrievable cross-user.
type UserProfile struct {
	UserID        string
	Name          string
	Email         string
	Phone         string
	Address       string
	Role          string
	AccountStatus string
}

// CartState distinguishes the three cart outcomes. An unavailable cart must
// never be rendered as an empty one.
type CartState int

const (
	// CartHasItems means the snapshot was read and contains at least one item.
	CartHasItems CartState = iota
	// CartEmpty means the snapshot was read and is explicitly empty.
	CartEmpty
	// CartUnavailable means the cart could not be fetched at all.
	CartUnavailable
)

// CartItem is one line in a cart snapshot.
type CartItem struct {
	ProductID int64   `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Subtotal  float64 `json:"subtotal"`
}

// CartSnapshot is the user's current cart as last synced (or live-fetched).
type CartSnapshot struct {
	UserID     string
	State      CartState
	Items      []CartItem
	TotalValue float64
}

// ModelSettings is the admin-owned generation configuration read per request.
// It is written by the admin configuration surface and stored in the settings
// collection; the engine only reads it.
type ModelSettings struct {
	// Model is the provider model name (e.g. "gemini-2.5-flash").
	Model string
	// Temperature controls sampling randomness (0.0–1.0).
	Temperature float32
	// MaxTokens caps the response length.
	MaxTokens int
	// SystemPrompt optionally overrides the default instruction preamble.
	SystemPrompt string
	// Active marks the settings record currently in use.
	Active bool
}

// DefaultModelSettings returns the generation settings used when no active
// record exists in the settings collection.
func DefaultModelSettings() ModelSettings {
	return ModelSettings{
		Model:       "gemini-2.5-flash",
		Temperature: 0.7,
		MaxTokens:   1024,
		Active:      true,
	}
}
