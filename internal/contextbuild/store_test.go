package contextbuild

import (
	"context"
	"errors"

	"github.com/54b3r/shopsense-go/internal/rag"
)

// fakeStore is an in-memory rag.Store for builder tests. Query returns the
// collection's documents in insertion order (the "semantic ranking"); Get
// honors metadata equality filters the way the real store does.
type fakeStore struct {
	docs map[string][]rag.Document
	err  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{docs: make(map[string][]rag.Document)}
}

func (f *fakeStore) add(collection string, doc rag.Document) {
	f.docs[collection] = append(f.docs[collection], doc)
}

func (f *fakeStore) Upsert(ctx context.Context, collection string, docs []rag.Document) error {
	if f.err != nil {
		return f.err
	}
	f.docs[collection] = append(f.docs[collection], docs...)
	return nil
}

func (f *fakeStore) Query(ctx context.Context, collection, queryText string, topK int) ([]rag.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	docs := f.docs[collection]
	if topK > 0 && topK < len(docs) {
		docs = docs[:topK]
	}
	return docs, nil
}

func (f *fakeStore) Get(ctx context.Context, collection string, filter map[string]string, limit int) ([]rag.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []rag.Document
	for _, doc := range f.docs[collection] {
		match := true
		for k, v := range filter {
			if doc.Metadata[k] != v {
				match = false
				break
			}
		}
		if match {
			out = append(out, doc)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeStore) GetByID(ctx context.Context, collection, id string) (*rag.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, doc := range f.docs[collection] {
		if doc.ID == id {
			d := doc
			return &d, nil
		}
	}
	return nil, nil
}

var errStoreDown = errors.New("store down")
