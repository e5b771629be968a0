package server

import (
	"context"
	"net/http"
	"time"
)

// probeTimeout bounds each dependency probe during a readiness check.
const probeTimeout = 5 * time.Second

// Pinger probes one external dependency for the readiness endpoint.
type Pinger interface {
	// Ping returns nil when the dependency is reachable and usable.
	Ping(ctx context.Context) error
	// Name identifies the dependency in the readiness report.
	Name() string
}

// readyCheck is one dependency's entry in the readiness report.
type readyCheck struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// readyResponse is the JSON body for GET /api/ready.
type readyResponse struct {
	Status string       `json:"status"`
	Checks []readyCheck `json:"checks,omitempty"`
}

// handleReady handles GET /api/ready. It probes every configured dependency
// and answers 503 when any probe fails, so orchestrators keep traffic away
// until the vector store and backends are reachable.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	resp := readyResponse{Status: "ready"}
	status := http.StatusOK

	for _, p := range s.pingers {
		check := readyCheck{Name: p.Name(), Status: "ok"}

		ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
		if err := p.Ping(ctx); err != nil {
			check.Status = "failed"
			check.Error = err.Error()
			resp.Status = "not ready"
			status = http.StatusServiceUnavailable
		}
		cancel()

		resp.Checks = append(resp.Checks, check)
	}

	writeJSON(w, status, resp)
}
