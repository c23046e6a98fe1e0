package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Transport is the inbound adapter that serves Handler's routes over plain
// HTTP. It blocks in Start until the context is cancelled or the server
// fails, then shuts down gracefully.
type Transport struct {
	handler *Handler
	server  *http.Server
	addr    string
	logger  *slog.Logger
}

// TransportOption configures a Transport.
type TransportOption func(*Transport)

// WithAddr sets the listen address. Default is "127.0.0.1:8080".
func WithAddr(addr string) TransportOption {
	return func(t *Transport) { t.addr = addr }
}

// WithTransportLogger sets the logger used for server lifecycle events.
func WithTransportLogger(logger *slog.Logger) TransportOption {
	return func(t *Transport) { t.logger = logger }
}

// NewTransport creates a Transport serving handler's routes.
func NewTransport(handler *Handler, opts ...TransportOption) *Transport {
	t := &Transport{
		handler: handler,
		addr:    "127.0.0.1:8080",
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start begins accepting HTTP connections. It blocks until ctx is
// cancelled or the server fails to start.
func (t *Transport) Start(ctx context.Context) error {
	t.server = &http.Server{
		Addr:    t.addr,
		Handler: t.handler.Routes(),
	}

	errCh := make(chan error, 1)
	go func() {
		t.logger.Info("starting HTTP server", "addr", t.addr)
		err := t.server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		t.logger.Info("context cancelled, shutting down HTTP server")
		return t.shutdown()
	case err := <-errCh:
		return err
	}
}

func (t *Transport) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := t.server.Shutdown(ctx); err != nil {
		t.logger.Error("error during server shutdown", "error", err)
		return err
	}
	t.logger.Info("HTTP server shutdown complete")
	return nil
}

// Close gracefully shuts down the transport.
func (t *Transport) Close() error {
	if t.server == nil {
		return nil
	}
	return t.shutdown()
}
