// Package tracing wires Langfuse observability into the eino callback chain.
// When enabled, every chat request produces a trace covering the model calls
// made during intent detection, generation, and the grounding retry.
package tracing

import (
	"os"

	"github.com/cloudwego/eino-ext/callbacks/langfuse"
	"github.com/cloudwego/eino/callbacks"
)

const defaultHost = "http://localhost:3000"

// Setup builds the Langfuse callback handler from LANGFUSE_PUBLIC_KEY,
// LANGFUSE_SECRET_KEY, and LANGFUSE_HOST. Tracing is opt-in: without both
// keys it reports enabled=false and the serve command runs untraced. The
// returned flush must run before process exit so buffered traces are not
// lost on shutdown.
func Setup() (handler callbacks.Handler, flush func(), enabled bool) {
	cfg := &langfuse.Config{
		Host:      os.Getenv("LANGFUSE_HOST"),
		PublicKey: os.Getenv("LANGFUSE_PUBLIC_KEY"),
		SecretKey: os.Getenv("LANGFUSE_SECRET_KEY"),
	}
	if cfg.PublicKey == "" || cfg.SecretKey == "" {
		return nil, nil, false
	}
	if cfg.Host == "" {
		cfg.Host = defaultHost
	}

	handler, flush = langfuse.NewLangfuseHandler(cfg)
	return handler, flush, true
}
