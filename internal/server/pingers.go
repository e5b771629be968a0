package server

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"
)

// QdrantPinger probes the vector store for the readiness endpoint.
type QdrantPinger struct {
	client *qdrant.Client
}

// NewQdrantPinger returns a Pinger over the given Qdrant client.
func NewQdrantPinger(client *qdrant.Client) *QdrantPinger {
	return &QdrantPinger{client: client}
}

// Name implements Pinger.
func (p *QdrantPinger) Name() string { return "qdrant" }

// Ping runs the Qdrant health-check RPC.
func (p *QdrantPinger) Ping(ctx context.Context) error {
	if _, err := p.client.HealthCheck(ctx); err != nil {
		return fmt.Errorf("qdrant health check: %w", err)
	}
	return nil
}

// backendPinger adapts any Ping-capable client, such as the storefront REST
// client, to the Pinger interface.
type backendPinger struct {
	name string
	ping func(ctx context.Context) error
}

// NewBackendPinger wraps a ping function as a named Pinger.
func NewBackendPinger(name string, ping func(ctx context.Context) error) Pinger {
	return &backendPinger{name: name, ping: ping}
}

func (p *backendPinger) Name() string { return p.name }

func (p *backendPinger) Ping(ctx context.Context) error { return p.ping(ctx) }
