package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/54b3r/shopsense-go/internal/commerce"
	"github.com/54b3r/shopsense-go/internal/embedder"
	"github.com/54b3r/shopsense-go/internal/rag"
)

// buildStore constructs the embedder, connects to Qdrant, and returns the
// combined document store plus a close function for the Qdrant client.
func buildStore(ctx context.Context, log *slog.Logger) (rag.Store, *rag.QdrantStore, func(), error) {
	if err := embedder.ValidateForRAG(log); err != nil {
		return nil, nil, nil, err
	}

	emb, err := embedder.NewFromEnv(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialise embedder: %w", err)
	}

	embBackend := getEnvOrDefault("EMBEDDING_PROVIDER", getEnvOrDefault("MODEL_PROVIDER", "ollama"))
	vectorSize := uint64(embedder.DefaultDimensions(embBackend)) //nolint:gosec // dimensions are bounded

	qdrantHost := getEnvOrDefault("QDRANT_HOST", "localhost")
	qdrantPort := getEnvInt("QDRANT_PORT", 6334)

	vectorStore, err := rag.NewQdrantStore(ctx, &rag.QdrantConfig{
		Host:             qdrantHost,
		Port:             qdrantPort,
		CollectionPrefix: os.Getenv("QDRANT_COLLECTION_PREFIX"),
		VectorSize:       vectorSize,
		APIKey:           os.Getenv("QDRANT_API_KEY"),
		UseTLS:           os.Getenv("QDRANT_TLS") == "true",
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to connect to Qdrant at %s:%d: %w", qdrantHost, qdrantPort, err)
	}
	log.Info("qdrant store ready", slog.String("host", qdrantHost), slog.Int("port", qdrantPort))

	store, err := rag.NewCollections(emb, vectorStore, 0)
	if err != nil {
		vectorStore.Close()
		return nil, nil, nil, err
	}

	return store, vectorStore, func() { _ = vectorStore.Close() }, nil
}

// buildCommerceClient constructs the storefront REST client from the
// environment.
func buildCommerceClient() (*commerce.Client, error) {
	cfg, err := commerce.ConfigFromEnv()
	if err != nil {
		return nil, err
	}
	return commerce.New(cfg), nil
}

// getEnvOrDefault returns the value of the named environment variable, or
// fallback if the variable is unset or empty.
func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvInt returns the integer value of the named environment variable, or
// fallback if the variable is unset, empty, or not parseable.
func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

// getEnvFloat returns the float value of the named environment variable, or
// fallback if the variable is unset, empty, or not parseable.
func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
