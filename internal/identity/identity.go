// Package identity resolves request credentials to an authenticated user.
// The chat engine consumes the Resolver contract; the concrete resolution
// lives either in the storefront API (production) or a static table (dev and
// tests).
package identity

import (
	"context"
	"errors"
	"sync"

	"github.com/54b3r/shopsense-go/internal/commerce"
)

// ErrUnauthenticated is returned when a token resolves to no user.
var ErrUnauthenticated = errors.New("identity: unauthenticated")

// User is the resolved identity attached to a request.
type User struct {
	// ID is the storefront user ID, matching customer_id on orders.
	ID string
	// Name is the display name used for polite addressing.
	Name string
	// Role is the storefront role (CUSTOMER, ADMIN).
	Role string
}

// Resolver maps a bearer token to a user. Implementations must be safe for
// concurrent use.
type Resolver interface {
	// Resolve returns the user the token belongs to, or ErrUnauthenticated
	// when the token is invalid or expired.
	Resolve(ctx context.Context, token string) (User, error)
}

// CommerceResolver resolves tokens against the storefront API.
type CommerceResolver struct {
	client *commerce.Client
}

// NewCommerceResolver returns a Resolver backed by the storefront API.
func NewCommerceResolver(client *commerce.Client) *CommerceResolver {
	return &CommerceResolver{client: client}
}

// Resolve validates the token with the storefront API. A 4xx answer maps to
// ErrUnauthenticated; transport failures propagate as-is.
func (r *CommerceResolver) Resolve(ctx context.Context, token string) (User, error) {
	if token == "" {
		return User{}, ErrUnauthenticated
	}
	profile, err := r.client.ResolveToken(ctx, token)
	if err != nil {
		var serr *commerce.StatusError
		if errors.As(err, &serr) && serr.Code >= 400 && serr.Code < 500 {
			return User{}, ErrUnauthenticated
		}
		return User{}, err
	}
	return User{ID: profile.UserID, Name: profile.Name, Role: profile.Role}, nil
}

// StaticResolver resolves tokens from a fixed in-memory table. Used for local
// development and tests.
type StaticResolver struct {
	mu    sync.RWMutex
	users map[string]User
}

// NewStaticResolver returns a resolver over the given token-to-user table.
func NewStaticResolver(users map[string]User) *StaticResolver {
	cp := make(map[string]User, len(users))
	for k, v := range users {
		cp[k] = v
	}
	return &StaticResolver{users: cp}
}

// Resolve looks the token up in the table.
func (r *StaticResolver) Resolve(ctx context.Context, token string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[token]
	if !ok {
		return User{}, ErrUnauthenticated
	}
	return u, nil
}

// Add registers a token for user, overwriting any existing entry.
func (r *StaticResolver) Add(token string, u User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[token] = u
}
