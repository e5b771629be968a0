package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/54b3r/shopsense-go/internal/datasync"
	"github.com/54b3r/shopsense-go/internal/logging"
)

// NewSyncCmd constructs the `shopsense sync` command, which pulls catalog
// data from the storefront API into the vector store.
func NewSyncCmd() *cobra.Command {
	var knowledgePath string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Sync storefront data into the vector store",
		Long: `Fetch products, users, orders, discounts, and carts from the storefront
API, embed each record, and upsert the documents into Qdrant.

With --knowledge, also load store policies, FAQ answers, and similar curated
documents from a markdown/text file or directory and upsert them into the
knowledge collection.

Document IDs are deterministic, so re-running sync overwrites stale records
instead of duplicating them. Run it on a schedule (cron) or after bulk
catalog changes.

Required environment variables:
  SHOPSENSE_API_BASE_URL  Storefront API root (default: http://localhost:8080/api)
  SHOPSENSE_API_KEY       Service bearer token for user/order endpoints
  QDRANT_HOST             Qdrant server hostname (default: localhost)
  QDRANT_PORT             Qdrant gRPC port (default: 6334)
  MODEL_PROVIDER          Embedding backend inherits from this (default: ollama)
  EMBEDDING_*             Provider-specific overrides (see README)

Examples:
  shopsense sync
  shopsense sync --knowledge ./docs/policies
  EMBEDDING_PROVIDER=openai shopsense sync`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			docStore, _, closeStore, err := buildStore(ctx, log)
			if err != nil {
				return fmt.Errorf("sync: %w", err)
			}
			defer closeStore()

			storefront, err := buildCommerceClient()
			if err != nil {
				return fmt.Errorf("sync: %w", err)
			}

			pipeline, err := datasync.NewPipeline(storefront, docStore)
			if err != nil {
				return fmt.Errorf("sync: %w", err)
			}

			log.Info("sync starting")
			stats, err := pipeline.Run(ctx, func(msg string) {
				log.Info(msg)
			})
			if err != nil {
				// Partial syncs still report what landed before failing.
				log.Error("sync finished with errors",
					slog.Int("products", stats.Products),
					slog.Int("users", stats.Users),
					slog.Int("orders", stats.Orders),
					slog.Int("discounts", stats.Discounts),
					slog.Int("carts", stats.Carts),
				)
				return fmt.Errorf("sync: %w", err)
			}

			knowledge := 0
			if knowledgePath != "" {
				docs, err := datasync.LoadKnowledgeFiles(knowledgePath)
				if err != nil {
					return fmt.Errorf("sync: %w", err)
				}
				if knowledge, err = pipeline.SyncKnowledge(ctx, docs); err != nil {
					return fmt.Errorf("sync: %w", err)
				}
			}

			log.Info("sync complete",
				slog.Int("products", stats.Products),
				slog.Int("users", stats.Users),
				slog.Int("orders", stats.Orders),
				slog.Int("discounts", stats.Discounts),
				slog.Int("carts", stats.Carts),
				slog.Int("knowledge", knowledge),
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&knowledgePath, "knowledge", "",
		"file or directory of .md/.txt knowledge documents to upsert")

	return cmd
}
