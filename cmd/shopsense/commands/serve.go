package commands

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cloudwego/eino/callbacks"
	"github.com/spf13/cobra"

	"github.com/54b3r/shopsense-go/internal/engine"
	"github.com/54b3r/shopsense-go/internal/identity"
	"github.com/54b3r/shopsense-go/internal/logging"
	"github.com/54b3r/shopsense-go/internal/provider"
	"github.com/54b3r/shopsense-go/internal/server"
	"github.com/54b3r/shopsense-go/internal/store"
	"github.com/54b3r/shopsense-go/internal/tracing"
)

// NewServeCmd constructs the `shopsense serve` command, which starts the
// chat API HTTP server.
func NewServeCmd() *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the shopsense chat API server",
		Long: `Start the shopsense HTTP server on localhost.

The server exposes POST /api/chat for the storefront UI, plus health,
readiness, and Prometheus metrics endpoints. Customers authenticate with
their storefront bearer token; requests without one are answered with
catalog and policy context only.

Examples:
  shopsense serve
  shopsense serve --port 9090
  MODEL_PROVIDER=groq shopsense serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			log.Info("serve starting", slog.String("provider", os.Getenv("MODEL_PROVIDER")))

			// Setup Langfuse tracing — opt-in, no-op if keys are absent.
			handler, flush, ok := tracing.Setup()
			if ok {
				callbacks.AppendGlobalHandlers(handler)
				defer flush()
				log.Info("langfuse tracing enabled")
			} else {
				log.Info("langfuse tracing disabled", slog.String("reason", "LANGFUSE_PUBLIC_KEY not set"))
			}

			providerCfg, err := provider.ConfigFromEnv()
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			chatModel, err := provider.New(ctx, providerCfg)
			if err != nil {
				return fmt.Errorf("serve: failed to initialise model provider: %w", err)
			}
			log.Info("provider initialised", slog.String("provider", string(providerCfg.Backend)))

			docStore, vectorStore, closeStore, err := buildStore(ctx, log)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			defer closeStore()

			storefront, err := buildCommerceClient()
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}

			// Open conversation history store. SHOPSENSE_HISTORY_DB overrides
			// the default path (~/.shopsense/history.db). Set to "disabled" to
			// run stateless.
			var historyStore store.ConversationStore
			dbPath := os.Getenv("SHOPSENSE_HISTORY_DB")
			if dbPath != "disabled" {
				if dbPath == "" {
					dbPath, err = store.DefaultDBPath()
					if err != nil {
						log.Warn("history: could not resolve default DB path, disabling", slog.Any("error", err))
					}
				}
				if dbPath != "" {
					hs, hsErr := store.Open(dbPath)
					if hsErr != nil {
						log.Warn("history: failed to open store, disabling", slog.Any("error", hsErr))
					} else {
						historyStore = hs
						defer func() { _ = hs.Close() }()
						log.Info("history: store opened", slog.String("path", dbPath))
					}
				}
			} else {
				log.Info("history: disabled via SHOPSENSE_HISTORY_DB=disabled")
			}

			eng, err := engine.New(&engine.Config{
				Store:     docStore,
				Generator: provider.NewGenerator(chatModel, 0),
				History:   historyStore,
				LiveCart:  storefront,
			})
			if err != nil {
				return fmt.Errorf("serve: failed to initialise engine: %w", err)
			}

			srv, err := server.New(eng, &server.Config{
				Host:     host,
				Port:     port,
				Logger:   log,
				Resolver: identity.NewCommerceResolver(storefront),
				Pingers: []server.Pinger{
					server.NewQdrantPinger(vectorStore.Client()),
					server.NewBackendPinger("storefront", storefront.Ping),
				},
				RateLimit: getEnvFloat("SHOPSENSE_RATE_LIMIT", 0),
				RateBurst: getEnvInt("SHOPSENSE_RATE_BURST", 0),
			})
			if err != nil {
				return fmt.Errorf("serve: failed to create server: %w", err)
			}

			return srv.Start(ctx)
		},
	}

	cmd.Flags().StringVar(&host, "host", getEnvOrDefault("SHOPSENSE_HOST", "127.0.0.1"), "Host address to bind to")
	cmd.Flags().IntVarP(&port, "port", "p", getEnvInt("SHOPSENSE_PORT", 8090), "TCP port to listen on")

	return cmd
}
