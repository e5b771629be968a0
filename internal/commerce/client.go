// Package commerce is the REST client for the storefront backend. The sync
// pipeline pulls catalog, order, discount, and user data through it, and the
// cart builder uses it as the live fallback when no synced snapshot exists.
// Transient failures are retried with backoff; client errors (4xx) are not.
package commerce

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/caarlos0/env/v11"

	"github.com/54b3r/shopsense-go/internal/catalog"
)

// Config holds connection parameters for the storefront API, populated from
// the environment.
type Config struct {
	// BaseURL is the API root, e.g. "http://localhost:8080/api".
	BaseURL string `env:"SHOPSENSE_API_BASE_URL" envDefault:"http://localhost:8080/api"`
	// APIKey is sent as a bearer token on service-to-service calls.
	APIKey string `env:"SHOPSENSE_API_KEY"`
	// Timeout bounds each HTTP request.
	Timeout time.Duration `env:"SHOPSENSE_API_TIMEOUT" envDefault:"10s"`
	// RetryAttempts is the total attempt count for transient failures.
	RetryAttempts uint `env:"SHOPSENSE_API_RETRY_ATTEMPTS" envDefault:"3"`
	// RetryDelay is the initial backoff delay between attempts.
	RetryDelay time.Duration `env:"SHOPSENSE_API_RETRY_DELAY" envDefault:"200ms"`
}

// ConfigFromEnv parses Config from environment variables.
func ConfigFromEnv() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("commerce: parse config: %w", err)
	}
	return cfg, nil
}

// StatusError reports a non-2xx response from the storefront API.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("commerce: %s returned status %d", e.URL, e.Code)
}

// Client calls the storefront REST API.
type Client struct {
	cfg  *Config
	http *http.Client
}

// New returns a Client using cfg.
func New(cfg *Config) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

// getJSON fetches path and decodes the response body into out, retrying
// transient failures (network errors and 5xx) with backoff.
func (c *Client) getJSON(ctx context.Context, path string, headers map[string]string, out any) error {
	url := strings.TrimSuffix(c.cfg.BaseURL, "/") + path

	return retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			req.Header.Set("Accept", "application/json")
			if c.cfg.APIKey != "" {
				req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
			}
			for k, v := range headers {
				req.Header.Set(k, v)
			}

			resp, err := c.http.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				io.Copy(io.Discard, resp.Body)
				serr := &StatusError{Code: resp.StatusCode, URL: url}
				if resp.StatusCode >= 400 && resp.StatusCode < 500 {
					return retry.Unrecoverable(serr)
				}
				return serr
			}

			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return retry.Unrecoverable(fmt.Errorf("commerce: decode %s: %w", url, err))
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.cfg.RetryAttempts),
		retry.Delay(c.cfg.RetryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
}

// Wire DTOs mirror the storefront API's camelCase JSON.

type productDTO struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	Quantity     int     `json:"quantity"`
	CategoryName string  `json:"categoryName"`
	Brand        string  `json:"brand"`
	Status       string  `json:"status"`
	ImageURL     string  `json:"imageUrl"`
	Description  string  `json:"description"`
}

type orderDTO struct {
	ID          int64              `json:"id"`
	CustomerID  int64              `json:"customerId"`
	Status      string             `json:"status"`
	TotalAmount float64            `json:"totalAmount"`
	CreatedAt   string             `json:"createdAt"`
	Items       []catalog.OrderItem `json:"items"`
}

type discountDTO struct {
	Code              string  `json:"code"`
	Type              string  `json:"type"`
	Value             float64 `json:"value"`
	MinOrderValue     float64 `json:"minOrderValue"`
	MaxDiscountAmount float64 `json:"maxDiscountAmount"`
	UsageLimit        int     `json:"usageLimit"`
	UsedCount         int     `json:"usedCount"`
	ValidFrom         string  `json:"validFrom"`
	ValidTo           string  `json:"validTo"`
	Status            string  `json:"status"`
}

type userDTO struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	Role          string `json:"role"`
	AccountStatus string `json:"accountStatus"`
}

type cartDTO struct {
	UserID     int64             `json:"userId"`
	TotalValue float64           `json:"totalValue"`
	Items      []catalog.CartItem `json:"items"`
}

// FetchProducts returns the full product catalog.
func (c *Client) FetchProducts(ctx context.Context) ([]catalog.Product, error) {
	var dtos []productDTO
	if err := c.getJSON(ctx, "/products", nil, &dtos); err != nil {
		return nil, err
	}

	out := make([]catalog.Product, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, catalog.Product{
			ID:          d.ID,
			Name:        d.Name,
			Price:       d.Price,
			Category:    d.CategoryName,
			Brand:       d.Brand,
			Stock:       d.Quantity,
			Active:      strings.EqualFold(d.Status, "active"),
			ImageURL:    d.ImageURL,
			Description: d.Description,
		})
	}
	return out, nil
}

// FetchOrders returns all orders for the sync pipeline.
func (c *Client) FetchOrders(ctx context.Context) ([]catalog.Order, error) {
	var dtos []orderDTO
	if err := c.getJSON(ctx, "/orders", nil, &dtos); err != nil {
		return nil, err
	}

	out := make([]catalog.Order, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, catalog.Order{
			ID:          d.ID,
			CustomerID:  strconv.FormatInt(d.CustomerID, 10),
			Status:      catalog.OrderStatus(strings.ToUpper(d.Status)),
			TotalAmount: d.TotalAmount,
			CreatedAt:   parseAPITime(d.CreatedAt),
			Items:       d.Items,
		})
	}
	return out, nil
}

// FetchDiscounts returns all discount codes, including inactive ones; the
// read path filters eligibility per request.
func (c *Client) FetchDiscounts(ctx context.Context) ([]catalog.Discount, error) {
	var dtos []discountDTO
	if err := c.getJSON(ctx, "/discounts", nil, &dtos); err != nil {
		return nil, err
	}

	out := make([]catalog.Discount, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, catalog.Discount{
			Code:              d.Code,
			Type:              catalog.DiscountType(strings.ToUpper(d.Type)),
			Value:             d.Value,
			MinOrderValue:     d.MinOrderValue,
			MaxDiscountAmount: d.MaxDiscountAmount,
			UsageLimit:        d.UsageLimit,
			UsedCount:         d.UsedCount,
			ValidFrom:         parseAPITime(d.ValidFrom),
			ValidTo:           parseAPITime(d.ValidTo),
			Active:            strings.EqualFold(d.Status, "active"),
		})
	}
	return out, nil
}

// FetchUsers returns all customer profiles for the sync pipeline.
func (c *Client) FetchUsers(ctx context.Context) ([]catalog.UserProfile, error) {
	var dtos []userDTO
	if err := c.getJSON(ctx, "/users", nil, &dtos); err != nil {
		return nil, err
	}

	out := make([]catalog.UserProfile, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, catalog.UserProfile{
			UserID:        strconv.FormatInt(d.ID, 10),
			Name:          d.Name,
			Email:         d.Email,
			Phone:         d.Phone,
			Address:       d.Address,
			Role:          d.Role,
			AccountStatus: d.AccountStatus,
		})
	}
	return out, nil
}

// FetchCart returns the live cart for one user. Implements the cart
// builder's fallback source.
func (c *Client) FetchCart(ctx context.Context, userID string) (catalog.CartSnapshot, error) {
	var dto cartDTO
	if err := c.getJSON(ctx, "/cart/"+userID, nil, &dto); err != nil {
		return catalog.CartSnapshot{}, err
	}

	snapshot := catalog.CartSnapshot{
		UserID:     userID,
		Items:      dto.Items,
		TotalValue: dto.TotalValue,
	}
	if len(snapshot.Items) == 0 {
		snapshot.State = catalog.CartEmpty
	} else {
		snapshot.State = catalog.CartHasItems
	}
	return snapshot, nil
}

// ResolveToken validates a customer bearer token against the storefront API
// and returns the account it belongs to.
func (c *Client) ResolveToken(ctx context.Context, token string) (catalog.UserProfile, error) {
	var dto userDTO
	headers := map[string]string{"Authorization": "Bearer " + token}
	if err := c.getJSON(ctx, "/auth/me", headers, &dto); err != nil {
		return catalog.UserProfile{}, err
	}
	return catalog.UserProfile{
		UserID:        strconv.FormatInt(dto.ID, 10),
		Name:          dto.Name,
		Email:         dto.Email,
		Phone:         dto.Phone,
		Address:       dto.Address,
		Role:          dto.Role,
		AccountStatus: dto.AccountStatus,
	}, nil
}

// Ping checks that the storefront API is reachable. Any HTTP answer counts
// as reachable, auth rejections included; only transport failures are errors.
func (c *Client) Ping(ctx context.Context) error {
	url := strings.TrimSuffix(c.cfg.BaseURL, "/") + "/products?page=0&size=1"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("commerce: backend unreachable: %w", err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return nil
}

// parseAPITime accepts the timestamp layouts the storefront API emits.
func parseAPITime(s string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// IsNotFound reports whether err is a 404 from the storefront API.
func IsNotFound(err error) bool {
	var serr *StatusError
	return errors.As(err, &serr) && serr.Code == http.StatusNotFound
}
