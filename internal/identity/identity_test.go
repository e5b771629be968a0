package identity

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/54b3r/shopsense-go/internal/commerce"
)

func TestStaticResolver(t *testing.T) {
	t.Parallel()

	r := NewStaticResolver(map[string]User{
		"tok-7": {ID: "7", Name: "Nguyễn Văn An", Role: "CUSTOMER"},
	})

	u, err := r.Resolve(context.Background(), "tok-7")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if u.ID != "7" {
		t.Errorf("ID = %q, want 7", u.ID)
	}

	if _, err := r.Resolve(context.Background(), "bogus"); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("unknown token err = %v, want ErrUnauthenticated", err)
	}
	if _, err := r.Resolve(context.Background(), ""); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("empty token err = %v, want ErrUnauthenticated", err)
	}
}

func TestCommerceResolverMapsClientErrors(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Header.Get("Authorization") {
		case "Bearer good":
			w.Write([]byte(`{"id":7,"name":"Nguyễn Văn An","role":"CUSTOMER"}`))
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	t.Cleanup(srv.Close)

	client := commerce.New(&commerce.Config{
		BaseURL:       srv.URL,
		Timeout:       2 * time.Second,
		RetryAttempts: 1,
		RetryDelay:    time.Millisecond,
	})
	r := NewCommerceResolver(client)

	u, err := r.Resolve(context.Background(), "good")
	if err != nil {
		t.Fatalf("Resolve(good): %v", err)
	}
	if u.ID != "7" || u.Role != "CUSTOMER" {
		t.Errorf("user = %+v", u)
	}

	if _, err := r.Resolve(context.Background(), "bad"); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("invalid token err = %v, want ErrUnauthenticated", err)
	}
	if _, err := r.Resolve(context.Background(), ""); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("empty token err = %v, want ErrUnauthenticated", err)
	}
}
