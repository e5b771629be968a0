package rag

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

// QdrantConfig holds connection parameters for a Qdrant vector store instance.
type QdrantConfig struct {
	// Host is the Qdrant server hostname (default: localhost).
	Host string

	// Port is the Qdrant gRPC port (default: 6334).
	Port int

	// CollectionPrefix namespaces the physical collections (default:
	// "shopsense_"), so one Qdrant instance can host several deployments.
	CollectionPrefix string

	// VectorSize is the dimensionality of the embeddings stored here.
	VectorSize uint64

	// APIKey is the optional Qdrant API key for authenticated clusters.
	APIKey string

	// UseTLS enables TLS for the gRPC connection.
	UseTLS bool
}

// QdrantStore implements VectorStore backed by a Qdrant instance, with one
// physical collection per logical collection name.
type QdrantStore struct {
	// client is the underlying Qdrant gRPC client.
	client *qdrant.Client

	// cfg holds the resolved configuration for this store.
	cfg *QdrantConfig
}

// NewQdrantStore creates a new QdrantStore, ensuring the physical collection
// for every logical collection exists, and returns a ready-to-use VectorStore.
func NewQdrantStore(ctx context.Context, cfg *QdrantConfig) (*QdrantStore, error) {
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 6334
	}
	if cfg.CollectionPrefix == "" {
		cfg.CollectionPrefix = "shopsense_"
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: failed to create client: %w", err)
	}

	store := &QdrantStore{client: client, cfg: cfg}
	for _, name := range []string{
		CollectionProducts, CollectionKnowledge, CollectionUsers,
		CollectionOrders, CollectionDiscounts, CollectionCarts,
		CollectionSettings,
	} {
		if err := store.ensureCollection(ctx, name); err != nil {
			return nil, err
		}
	}

	return store, nil
}

// Client exposes the underlying gRPC client for readiness probes.
func (s *QdrantStore) Client() *qdrant.Client { return s.client }

// physical maps a logical collection name to its Qdrant collection name.
func (s *QdrantStore) physical(collection string) string {
	return s.cfg.CollectionPrefix + collection
}

// pointID derives a deterministic UUID from the logical document ID so that
// re-syncing the same entity overwrites its point instead of duplicating it.
func pointID(collection, docID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(collection+"/"+docID)).String()
}

// ensureCollection creates the Qdrant collection if it does not already exist.
func (s *QdrantStore) ensureCollection(ctx context.Context, collection string) error {
	name := s.physical(collection)
	exists, err := s.client.CollectionExists(ctx, name)
	if err != nil {
		return fmt.Errorf("qdrant: failed to check collection %q: %w", name, err)
	}
	if exists {
		return nil
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     s.cfg.VectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("qdrant: failed to create collection %q: %w", name, err)
	}

	return nil
}

// Upsert stores or updates a batch of documents with their embeddings.
// The logical document ID is kept in the payload under "doc_id" so results
// can be mapped back without reversing the UUID derivation.
func (s *QdrantStore) Upsert(ctx context.Context, collection string, docs []Document, embeddings [][]float32) error {
	if len(docs) != len(embeddings) {
		return fmt.Errorf("qdrant: %d docs but %d embeddings", len(docs), len(embeddings))
	}

	points := make([]*qdrant.PointStruct, 0, len(docs))
	for i, doc := range docs {
		payload := map[string]interface{}{
			"doc_id":  doc.ID,
			"content": doc.Content,
		}
		for k, v := range doc.Metadata {
			payload[k] = v
		}

		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(pointID(collection, doc.ID)),
			Vectors: qdrant.NewVectors(embeddings[i]...),
			Payload: qdrant.NewValueMap(payload),
		})
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.physical(collection),
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("qdrant: upsert into %q failed: %w", collection, err)
	}

	return nil
}

// Search performs a cosine similarity search and returns the top-k results.
func (s *QdrantStore) Search(ctx context.Context, collection string, queryEmbedding []float32, topK int) ([]Document, error) {
	limit := uint64(topK)
	results, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.physical(collection),
		Query:          qdrant.NewQuery(queryEmbedding...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: search in %q failed: %w", collection, err)
	}

	docs := make([]Document, 0, len(results))
	for _, r := range results {
		doc := docFromPayload(r.Payload)
		doc.Score = r.Score
		docs = append(docs, doc)
	}

	return docs, nil
}

// Scroll returns up to limit documents whose payload matches every key/value
// pair in filter, without similarity ranking.
func (s *QdrantStore) Scroll(ctx context.Context, collection string, filter map[string]string, limit int) ([]Document, error) {
	conditions := make([]*qdrant.Condition, 0, len(filter))
	for k, v := range filter {
		conditions = append(conditions, qdrant.NewMatch(k, v))
	}

	lim := uint32(limit)
	results, err := s.client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: s.physical(collection),
		Filter:         &qdrant.Filter{Must: conditions},
		Limit:          &lim,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: scroll in %q failed: %w", collection, err)
	}

	docs := make([]Document, 0, len(results))
	for _, r := range results {
		docs = append(docs, docFromPayload(r.Payload))
	}

	return docs, nil
}

// GetByID fetches one document by its logical ID. Returns nil with no error
// when the point does not exist.
func (s *QdrantStore) GetByID(ctx context.Context, collection, id string) (*Document, error) {
	results, err := s.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: s.physical(collection),
		Ids:            []*qdrant.PointId{qdrant.NewIDUUID(pointID(collection, id))},
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: get %q from %q failed: %w", id, collection, err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	doc := docFromPayload(results[0].Payload)
	return &doc, nil
}

// Delete removes documents from the collection by their logical IDs.
func (s *QdrantStore) Delete(ctx context.Context, collection string, ids []string) error {
	pointIDs := make([]*qdrant.PointId, 0, len(ids))
	for _, id := range ids {
		pointIDs = append(pointIDs, qdrant.NewIDUUID(pointID(collection, id)))
	}

	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.physical(collection),
		Points:         qdrant.NewPointsSelector(pointIDs...),
	})
	if err != nil {
		return fmt.Errorf("qdrant: delete from %q failed: %w", collection, err)
	}

	return nil
}

// Close closes the underlying Qdrant gRPC connection.
func (s *QdrantStore) Close() error {
	return s.client.Close()
}

// docFromPayload converts a Qdrant point payload back into a Document.
// The "doc_id" and "content" keys are reserved; everything else becomes
// string metadata.
func docFromPayload(p map[string]*qdrant.Value) Document {
	doc := Document{Metadata: make(map[string]string)}
	for k, v := range p {
		switch k {
		case "doc_id":
			doc.ID = v.GetStringValue()
		case "content":
			doc.Content = v.GetStringValue()
		default:
			doc.Metadata[k] = v.GetStringValue()
		}
	}
	return doc
}
