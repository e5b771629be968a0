// Package rag defines the interfaces for the retrieval side of the chat
// engine: vector storage organised into named collections, text embedding,
// and the combined document-store capability the engine consumes.
// Concrete implementations (Qdrant, etc.) satisfy these interfaces so the
// engine layer never depends on a specific backend.
package rag

import (
	"context"
)

// Logical collection names. Each holds one entity type; the vector store maps
// them to physical collections behind the scenes.
const (
	CollectionProducts  = "products"
	CollectionKnowledge = "knowledge"
	CollectionUsers     = "users"
	CollectionOrders    = "orders"
	CollectionDiscounts = "discounts"
	CollectionCarts     = "carts"
	CollectionSettings  = "settings"
)

// Document represents a unit of stored or retrieved knowledge.
type Document struct {
	// ID is the logical document identifier (e.g. "product_42"). Stable
	// across re-syncs so upserts overwrite rather than duplicate.
	ID string

	// Content is the raw text content used for embedding and, for products,
	// the full-spec dump.
	Content string

	// Metadata holds the flat string payload the typed parse boundary
	// (internal/catalog) converts into records.
	Metadata map[string]string

	// Score is the similarity score assigned during retrieval (0.0–1.0).
	// Zero value means the score was not computed (filtered reads).
	Score float32
}

// VectorStore is the interface for persisting and searching document
// embeddings across named collections.
// Implementations must be safe to call from multiple goroutines.
type VectorStore interface {
	// Upsert stores or updates a batch of documents with their pre-computed
	// embeddings. embeddings[i] is the vector for docs[i].
	Upsert(ctx context.Context, collection string, docs []Document, embeddings [][]float32) error

	// Search performs a semantic similarity search within one collection and
	// returns the top-k most relevant documents for the query embedding.
	Search(ctx context.Context, collection string, queryEmbedding []float32, topK int) ([]Document, error)

	// Scroll returns up to limit documents whose payload matches every
	// key/value pair in filter. No similarity ranking is applied — this is
	// the exact-match path used for ownership-scoped lookups (orders by
	// customer, carts by user).
	Scroll(ctx context.Context, collection string, filter map[string]string, limit int) ([]Document, error)

	// GetByID fetches a single document by its logical ID. Returns nil with
	// no error when the document does not exist.
	GetByID(ctx context.Context, collection, id string) (*Document, error)

	// Delete removes documents by their logical IDs.
	Delete(ctx context.Context, collection string, ids []string) error

	// Close releases any resources held by the store.
	Close() error
}

// Embedder is the interface for converting text into dense vector embeddings.
// Implementations must be safe to call from multiple goroutines.
type Embedder interface {
	// Embed converts a batch of texts into their corresponding embeddings.
	// The returned slice is parallel to the input slice.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Store is the high-level document-store capability consumed by the context
// builders and the sync pipeline. It combines embedding and vector search so
// callers work in query text, not vectors.
// Implementations must be safe to call from multiple goroutines.
type Store interface {
	// Upsert embeds and stores the documents in the named collection.
	Upsert(ctx context.Context, collection string, docs []Document) error

	// Query returns the top-k most semantically relevant documents for the
	// query text within one collection.
	Query(ctx context.Context, collection, queryText string, topK int) ([]Document, error)

	// Get returns up to limit documents matching the exact payload filter.
	Get(ctx context.Context, collection string, filter map[string]string, limit int) ([]Document, error)

	// GetByID fetches one document by logical ID, nil when absent.
	GetByID(ctx context.Context, collection, id string) (*Document, error)
}
