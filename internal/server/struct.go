package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/54b3r/shopsense-go/internal/engine"
	"github.com/54b3r/shopsense-go/internal/identity"
)

// Config holds the HTTP server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1).
	Host string
	// Port is the TCP port to listen on (default: 8090).
	Port int
	// ReadTimeout is the maximum duration for reading the request.
	ReadTimeout time.Duration
	// WriteTimeout is the maximum duration for writing the response.
	WriteTimeout time.Duration
	// ChatTimeout bounds one full chat request, generation included.
	ChatTimeout time.Duration
	// ShutdownTimeout is the maximum duration for a graceful shutdown.
	ShutdownTimeout time.Duration
	// Logger is the structured logger used by the server and its handlers.
	// If nil, slog.Default() is used.
	Logger *slog.Logger
	// Resolver maps bearer tokens to user identities. If nil, every request
	// is treated as anonymous.
	Resolver identity.Resolver
	// Pingers is the ordered list of dependency probes run by GET /api/ready.
	// If empty, /api/ready returns 200 with no checks (liveness-only mode).
	Pingers []Pinger
	// RateLimit is the sustained request rate allowed per IP on rate-limited
	// endpoints (requests/second). Defaults to 10 if zero.
	RateLimit float64
	// RateBurst is the maximum instantaneous burst per IP. Defaults to 20 if zero.
	RateBurst int
	// MetricsRegistry receives the server's Prometheus metrics. Defaults to
	// prometheus.DefaultRegisterer.
	MetricsRegistry prometheus.Registerer
	// MetricsGatherer serves GET /metrics. Defaults to prometheus.DefaultGatherer.
	MetricsGatherer prometheus.Gatherer
}

// chatter is the interface handleChat calls to produce a response.
// *engine.Engine satisfies it; tests inject a fake.
type chatter interface {
	Chat(ctx context.Context, req engine.Request) (engine.Response, error)
}

// Server is the HTTP server that exposes the chat engine.
type Server struct {
	// engine handles all chat requests.
	engine chatter
	// resolver maps bearer tokens to user identities.
	resolver identity.Resolver
	// cfg holds the resolved server configuration.
	cfg *Config
	// httpServer is the underlying net/http server.
	httpServer *http.Server
	// log is the structured logger for this server instance.
	log *slog.Logger
	// pingers is the ordered list of dependency probes for GET /api/ready.
	pingers []Pinger
	// metrics holds the Prometheus instruments owned by this server.
	metrics *serverMetrics
	// stopRL stops the rate limiter's background eviction goroutine on shutdown.
	stopRL func()
}

// chatRequest is the JSON body for POST /api/chat.
type chatRequest struct {
	// Message is the user's chat message.
	Message string `json:"message"`
	// SessionID groups messages into one conversation thread. Generated by
	// the server when absent.
	SessionID string `json:"sessionId,omitempty"`
}

// chatResponse is the JSON response for POST /api/chat.
type chatResponse struct {
	engine.Response
	// SessionID echoes (or assigns) the conversation thread identifier.
	SessionID string `json:"sessionId"`
}

// errorResponse is the JSON error body. Message is user-facing and localized;
// internal detail stays in the logs.
type errorResponse struct {
	Error string `json:"error"`
}
