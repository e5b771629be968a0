// Package datasync implements the out-of-band catalog synchronisation
// pipeline. It pulls products, users, orders, discounts, and carts from the
// commerce backend, renders each record into an embeddable document, and
// upserts the results into the vector store with deterministic IDs so
// re-syncs overwrite rather than duplicate.
// The pipeline is invoked by the `shopsense sync` CLI command.
package datasync

import (
	"context"
	"errors"
	"fmt"

	"github.com/54b3r/shopsense-go/internal/catalog"
	"github.com/54b3r/shopsense-go/internal/commerce"
	"github.com/54b3r/shopsense-go/internal/rag"
)

// Fetcher is the slice of the commerce API the pipeline consumes.
type Fetcher interface {
	FetchProducts(ctx context.Context) ([]catalog.Product, error)
	FetchOrders(ctx context.Context) ([]catalog.Order, error)
	FetchDiscounts(ctx context.Context) ([]catalog.Discount, error)
	FetchUsers(ctx context.Context) ([]catalog.UserProfile, error)
	FetchCart(ctx context.Context, userID string) (catalog.CartSnapshot, error)
}

// Stats reports how many records each collection received in one run.
type Stats struct {
	Products  int
	Users     int
	Orders    int
	Discounts int
	Carts     int
}

// Pipeline orchestrates the fetch → render → embed → upsert flow across all
// synced collections.
type Pipeline struct {
	// fetcher reads current records from the commerce backend.
	fetcher Fetcher

	// store embeds and persists the rendered documents.
	store rag.Store
}

// NewPipeline constructs a Pipeline from the provided dependencies.
func NewPipeline(fetcher Fetcher, store rag.Store) (*Pipeline, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("datasync: fetcher must not be nil")
	}
	if store == nil {
		return nil, fmt.Errorf("datasync: store must not be nil")
	}
	return &Pipeline{fetcher: fetcher, store: store}, nil
}

// Run syncs every collection. Collections are independent: a failure in one
// is recorded and the rest still sync; the combined error is returned at the
// end. Progress is reported via the optional progress callback.
func (p *Pipeline) Run(ctx context.Context, progress func(msg string)) (Stats, error) {
	if progress == nil {
		progress = func(string) {}
	}

	var stats Stats
	var errs []error

	n, err := p.syncProducts(ctx)
	if err != nil {
		errs = append(errs, err)
	}
	stats.Products = n
	progress(fmt.Sprintf("products: %d synced", n))

	users, n, err := p.syncUsers(ctx)
	if err != nil {
		errs = append(errs, err)
	}
	stats.Users = n
	progress(fmt.Sprintf("users: %d synced", n))

	n, err = p.syncOrders(ctx)
	if err != nil {
		errs = append(errs, err)
	}
	stats.Orders = n
	progress(fmt.Sprintf("orders: %d synced", n))

	n, err = p.syncDiscounts(ctx)
	if err != nil {
		errs = append(errs, err)
	}
	stats.Discounts = n
	progress(fmt.Sprintf("discounts: %d synced", n))

	n, err = p.syncCarts(ctx, users)
	if err != nil {
		errs = append(errs, err)
	}
	stats.Carts = n
	progress(fmt.Sprintf("carts: %d synced", n))

	return stats, errors.Join(errs...)
}

func (p *Pipeline) syncProducts(ctx context.Context) (int, error) {
	products, err := p.fetcher.FetchProducts(ctx)
	if err != nil {
		return 0, fmt.Errorf("datasync: fetch products: %w", err)
	}
	docs := make([]rag.Document, 0, len(products))
	for _, prod := range products {
		docs = append(docs, productDocument(prod))
	}
	if err := p.store.Upsert(ctx, rag.CollectionProducts, docs); err != nil {
		return 0, fmt.Errorf("datasync: upsert products: %w", err)
	}
	return len(docs), nil
}

func (p *Pipeline) syncUsers(ctx context.Context) ([]catalog.UserProfile, int, error) {
	users, err := p.fetcher.FetchUsers(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("datasync: fetch users: %w", err)
	}
	docs := make([]rag.Document, 0, len(users))
	for _, u := range users {
		docs = append(docs, userDocument(u))
	}
	if err := p.store.Upsert(ctx, rag.CollectionUsers, docs); err != nil {
		return users, 0, fmt.Errorf("datasync: upsert users: %w", err)
	}
	return users, len(docs), nil
}

func (p *Pipeline) syncOrders(ctx context.Context) (int, error) {
	orders, err := p.fetcher.FetchOrders(ctx)
	if err != nil {
		return 0, fmt.Errorf("datasync: fetch orders: %w", err)
	}
	docs := make([]rag.Document, 0, len(orders))
	for _, o := range orders {
		doc, err := orderDocument(o)
		if err != nil {
			return 0, err
		}
		docs = append(docs, doc)
	}
	if err := p.store.Upsert(ctx, rag.CollectionOrders, docs); err != nil {
		return 0, fmt.Errorf("datasync: upsert orders: %w", err)
	}
	return len(docs), nil
}

func (p *Pipeline) syncDiscounts(ctx context.Context) (int, error) {
	discounts, err := p.fetcher.FetchDiscounts(ctx)
	if err != nil {
		return 0, fmt.Errorf("datasync: fetch discounts: %w", err)
	}
	docs := make([]rag.Document, 0, len(discounts))
	for _, d := range discounts {
		docs = append(docs, discountDocument(d))
	}
	if err := p.store.Upsert(ctx, rag.CollectionDiscounts, docs); err != nil {
		return 0, fmt.Errorf("datasync: upsert discounts: %w", err)
	}
	return len(docs), nil
}

// syncCarts fetches one cart per known user. A user without a cart is not an
// error; any other fetch failure aborts that user's cart only.
func (p *Pipeline) syncCarts(ctx context.Context, users []catalog.UserProfile) (int, error) {
	var docs []rag.Document
	var errs []error
	for _, u := range users {
		snapshot, err := p.fetcher.FetchCart(ctx, u.UserID)
		if err != nil {
			if commerce.IsNotFound(err) {
				continue
			}
			errs = append(errs, fmt.Errorf("datasync: fetch cart for user %s: %w", u.UserID, err))
			continue
		}
		doc, err := cartDocument(snapshot)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		docs = append(docs, doc)
	}
	if len(docs) > 0 {
		if err := p.store.Upsert(ctx, rag.CollectionCarts, docs); err != nil {
			return 0, fmt.Errorf("datasync: upsert carts: %w", err)
		}
	}
	return len(docs), errors.Join(errs...)
}
