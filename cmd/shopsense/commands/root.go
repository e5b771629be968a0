// Package commands defines all Cobra CLI commands for the shopsense binary.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/54b3r/shopsense-go/internal/audit"
	"github.com/54b3r/shopsense-go/internal/config"
	"github.com/54b3r/shopsense-go/internal/logging"
)

// configPath holds the --config flag value for YAML config file override.
var configPath string

// loadedConfigPath stores the resolved config file path for audit logging.
var loadedConfigPath string

// NewRootCmd constructs the root Cobra command that all subcommands attach to.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "shopsense",
		Short: "Shopsense — the AI shopping assistant backend",
		Long: `Shopsense is the retrieval-augmented chat backend for a Vietnamese
electronics storefront.

It answers customer questions about products, orders, carts, and store
policies in Vietnamese, grounded in the catalog data synced into a Qdrant
vector store. Responses carry structured actions (add to cart, apply
discount) the storefront UI can render.

Model provider is selected via the MODEL_PROVIDER environment variable
or a YAML config file (~/.shopsense/config.yaml).
See 'shopsense --help' for available commands.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			log := logging.New()

			// Load YAML config (env vars always override YAML values).
			path, err := config.Load(configPath, log)
			if err != nil {
				return err
			}
			loadedConfigPath = path

			// Emit structured audit log for every command invocation.
			audit.LogCommandStart(log, cmd.Name(), loadedConfigPath)

			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file (default: ~/.shopsense/config.yaml)")

	root.AddCommand(
		NewServeCmd(),
		NewAskCmd(),
		NewSyncCmd(),
		NewVersionCmd(),
	)

	return root
}
