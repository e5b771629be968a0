// Command shopsense is the entry point for the shop assistant backend.
// It provides a CLI interface (via Cobra) for serving the chat API, running
// the catalog sync pipeline, and one-shot questions from the terminal.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/54b3r/shopsense-go/cmd/shopsense/commands"
)

func main() {
	// Optional .env for local development; real deployments use the
	// environment or a YAML config file.
	_ = godotenv.Load()

	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
