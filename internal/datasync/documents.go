package datasync

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/54b3r/shopsense-go/internal/catalog"
	"github.com/54b3r/shopsense-go/internal/rag"
)

// productDocument renders one product into its embeddable document. The
// content doubles as the full-spec dump emitted verbatim when a user asks
// for detailed specifications, so it carries every descriptive field.
func productDocument(p catalog.Product) rag.Document {
	status := "inactive"
	if p.Active {
		status = "active"
	}

	content := fmt.Sprintf("Sản phẩm: %s\nHãng: %s\nDanh mục: %s\nGiá: %.0fđ\nKho: %d",
		p.Name, orEmpty(p.Brand, "không rõ"), p.Category, p.Price, p.Stock)
	if p.Description != "" {
		content += "\nMô tả: " + p.Description
	}

	return rag.Document{
		ID:      fmt.Sprintf("product_%d", p.ID),
		Content: content,
		Metadata: map[string]string{
			"product_id":  strconv.FormatInt(p.ID, 10),
			"name":        p.Name,
			"price":       strconv.FormatFloat(p.Price, 'f', -1, 64),
			"category":    p.Category,
			"brand":       p.Brand,
			"stock":       strconv.Itoa(p.Stock),
			"status":      status,
			"image_url":   p.ImageURL,
			"description": p.Description,
		},
	}
}

// userDocument renders one user profile. The document text stays minimal —
// profiles are looked up by exact user_id, never by similarity.
func userDocument(u catalog.UserProfile) rag.Document {
	return rag.Document{
		ID:      "user_" + u.UserID,
		Content: fmt.Sprintf("Khách hàng %s (%s)", u.Name, u.Email),
		Metadata: map[string]string{
			"user_id":        u.UserID,
			"name":           u.Name,
			"email":          u.Email,
			"phone":          u.Phone,
			"address":        u.Address,
			"role":           u.Role,
			"account_status": u.AccountStatus,
		},
	}
}

// orderDocument renders one order. customer_id in the payload is what makes
// ownership-scoped lookups possible — it must always be present.
func orderDocument(o catalog.Order) (rag.Document, error) {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return rag.Document{}, fmt.Errorf("datasync: marshal items for order %d: %w", o.ID, err)
	}

	return rag.Document{
		ID:      fmt.Sprintf("order_%d", o.ID),
		Content: fmt.Sprintf("Đơn hàng #%d, trạng thái %s, tổng %.0fđ", o.ID, o.Status, o.TotalAmount),
		Metadata: map[string]string{
			"order_id":     strconv.FormatInt(o.ID, 10),
			"customer_id":  o.CustomerID,
			"status":       string(o.Status),
			"total_amount": strconv.FormatFloat(o.TotalAmount, 'f', -1, 64),
			"created_at":   o.CreatedAt.Format(time.RFC3339),
			"items":        string(items),
		},
	}, nil
}

// discountDocument renders one discount code.
func discountDocument(d catalog.Discount) rag.Document {
	status := "inactive"
	if d.Active {
		status = "active"
	}

	var value string
	if d.Type == catalog.DiscountPercentage {
		value = fmt.Sprintf("giảm %.0f%%", d.Value)
	} else {
		value = fmt.Sprintf("giảm %.0fđ", d.Value)
	}

	return rag.Document{
		ID:      "discount_" + d.Code,
		Content: fmt.Sprintf("Mã giảm giá %s: %s", d.Code, value),
		Metadata: map[string]string{
			"code":                d.Code,
			"type":                string(d.Type),
			"value":               strconv.FormatFloat(d.Value, 'f', -1, 64),
			"min_order_value":     strconv.FormatFloat(d.MinOrderValue, 'f', -1, 64),
			"max_discount_amount": strconv.FormatFloat(d.MaxDiscountAmount, 'f', -1, 64),
			"usage_limit":         strconv.Itoa(d.UsageLimit),
			"used_count":          strconv.Itoa(d.UsedCount),
			"valid_from":          d.ValidFrom.Format(time.RFC3339),
			"valid_to":            d.ValidTo.Format(time.RFC3339),
			"status":              status,
		},
	}
}

// cartDocument renders one cart snapshot. Only fetched carts are synced, so
// the state here is always has-items or empty.
func cartDocument(c catalog.CartSnapshot) (rag.Document, error) {
	items, err := json.Marshal(c.Items)
	if err != nil {
		return rag.Document{}, fmt.Errorf("datasync: marshal items for cart %s: %w", c.UserID, err)
	}

	return rag.Document{
		ID:      "cart_" + c.UserID,
		Content: fmt.Sprintf("Giỏ hàng của khách %s: %d món, tổng %.0fđ", c.UserID, len(c.Items), c.TotalValue),
		Metadata: map[string]string{
			"user_id":     c.UserID,
			"total_value": strconv.FormatFloat(c.TotalValue, 'f', -1, 64),
			"items":       string(items),
		},
	}, nil
}

// orEmpty returns s, or fallback when s is empty.
func orEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
