package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/mkrupp/storefront/internal/infra/logging"
	"github.com/mkrupp/storefront/internal/infra/metrics"
)

// HTTPTransportConfig contains configuration parameters for HTTP servers.
type HTTPTransportConfig struct {
	// ServerAddr is the network address to listen on
	ServerAddr string `env:"SERVER_ADDR" default:":8080"`
	// ReadHeaderTimeout is the timeout for reading request headers
	ReadHeaderTimeout time.Duration `env:"READ_HEADER_TIMEOUT" default:"5s"`

	ReadTimeout  time.Duration `env:"READ_TIMEOUT" default:"10s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" default:"30s"`

	// ShutdownTimeout bounds how long in-flight requests may finish after the context is cancelled
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// HTTPTransport is implemented by every service transport. A transport serves its own
// routes standalone and can mount them on a shared mux.
type HTTPTransport interface {
	http.Handler

	RegisterRoutes(mux *http.ServeMux)
}

// ListenAndServe listens on cfg.ServerAddr and serves handler until ctx is cancelled.
// See Serve.
func ListenAndServe(
	ctx context.Context,
	handler http.Handler,
	cfg HTTPTransportConfig,
	registry *metrics.Registry,
) error {
	sock, err := net.Listen("tcp", cfg.ServerAddr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	return Serve(ctx, sock, handler, cfg, registry)
}

// Serve serves handler on sock wrapped in the standard middleware for metrics, logging,
// tracing and panic recovery. When ctx is cancelled the server stops accepting connections
// and in-flight requests get cfg.ShutdownTimeout to finish; their contexts keep the values
// of ctx but not its cancellation.
func Serve(
	ctx context.Context,
	sock net.Listener,
	handler http.Handler,
	cfg HTTPTransportConfig,
	registry *metrics.Registry,
) error {
	log := logging.GetLogger("infra.transport.http")
	baseCtx := context.WithoutCancel(ctx)

	//nolint:exhaustruct
	server := &http.Server{
		Handler:           Middleware(handler, log, registry),
		ErrorLog:          logging.GetLogLogger(log, logging.LevelError),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}

	log.InfoContext(ctx, "listening", "addr", sock.Addr().String())

	serveErr := make(chan error, 1)

	go func() {
		serveErr <- server.Serve(sock)
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}

		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(baseCtx, cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}

// Middleware wraps handler in the standard middleware chain used by ListenAndServe.
func Middleware(handler http.Handler, log logging.Logger, registry *metrics.Registry) http.Handler {
	handler = RescueingMiddleware(handler, log)
	handler = LoggingMiddleware(handler, log)
	handler = MetricsMiddleware(handler, registry)
	handler = TracingMiddleware(handler)

	return handler
}
