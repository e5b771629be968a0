package rag

import (
	"context"
	"fmt"
)

// Collections implements the Store interface by combining an Embedder and a
// VectorStore. It embeds query text (and documents on upsert) and delegates
// storage and search to the underlying store.
type Collections struct {
	// embedder converts text to dense vectors.
	embedder Embedder

	// store performs the vector storage and search.
	store VectorStore

	// defaultTopK is the result count used when the caller passes 0.
	defaultTopK int
}

// NewCollections constructs a Collections store from the given Embedder and
// VectorStore. defaultTopK sets the fallback result count when Query is
// called with topK=0.
func NewCollections(embedder Embedder, store VectorStore, defaultTopK int) (*Collections, error) {
	if embedder == nil {
		return nil, fmt.Errorf("rag: embedder must not be nil")
	}
	if store == nil {
		return nil, fmt.Errorf("rag: store must not be nil")
	}
	if defaultTopK <= 0 {
		defaultTopK = 5
	}
	return &Collections{
		embedder:    embedder,
		store:       store,
		defaultTopK: defaultTopK,
	}, nil
}

// Upsert embeds the documents' content and stores them in the collection.
func (c *Collections) Upsert(ctx context.Context, collection string, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.Content
	}

	embeddings, err := c.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("rag: embedding %d documents failed: %w", len(docs), err)
	}
	if len(embeddings) != len(docs) {
		return fmt.Errorf("rag: embedder returned %d vectors for %d documents", len(embeddings), len(docs))
	}

	if err := c.store.Upsert(ctx, collection, docs, embeddings); err != nil {
		return fmt.Errorf("rag: upsert failed: %w", err)
	}
	return nil
}

// Query embeds the query text and returns the top-k most relevant documents.
// If topK is 0 the defaultTopK configured at construction time is used.
func (c *Collections) Query(ctx context.Context, collection, queryText string, topK int) ([]Document, error) {
	if topK <= 0 {
		topK = c.defaultTopK
	}

	embeddings, err := c.embedder.Embed(ctx, []string{queryText})
	if err != nil {
		return nil, fmt.Errorf("rag: embedding query failed: %w", err)
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("rag: embedder returned empty result for query")
	}

	docs, err := c.store.Search(ctx, collection, embeddings[0], topK)
	if err != nil {
		return nil, fmt.Errorf("rag: vector search failed: %w", err)
	}

	return docs, nil
}

// Get returns up to limit documents matching the exact payload filter.
func (c *Collections) Get(ctx context.Context, collection string, filter map[string]string, limit int) ([]Document, error) {
	docs, err := c.store.Scroll(ctx, collection, filter, limit)
	if err != nil {
		return nil, fmt.Errorf("rag: filtered read failed: %w", err)
	}
	return docs, nil
}

// GetByID fetches one document by logical ID, nil when absent.
func (c *Collections) GetByID(ctx context.Context, collection, id string) (*Document, error) {
	doc, err := c.store.GetByID(ctx, collection, id)
	if err != nil {
		return nil, fmt.Errorf("rag: get by id failed: %w", err)
	}
	return doc, nil
}
