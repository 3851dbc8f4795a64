// Package transport runs the HTTP server and the middleware every request
// passes through.
package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

// Wrap applies the ambient middleware chain: request id, access log, panic
// recovery and CORS.
func Wrap(handler http.Handler, cfg ServerConfig, log *zap.Logger) http.Handler {
	handler = CORS(handler, cfg.AllowedOrigins)
	handler = Recover(handler, log)
	handler = AccessLog(handler, log)
	return RequestID(handler)
}

// ListenAndServe serves handler until ctx is cancelled, then shuts down
// gracefully within cfg.ShutdownTimeout.
func ListenAndServe(ctx context.Context, handler http.Handler, cfg ServerConfig, log *zap.Logger) error {
	sock, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	return Serve(ctx, sock, handler, cfg, log)
}

// Serve is ListenAndServe on an existing listener.
func Serve(ctx context.Context, sock net.Listener, handler http.Handler, cfg ServerConfig, log *zap.Logger) error {
	server := &http.Server{
		Handler:      Wrap(handler, cfg, log),
		ErrorLog:     zap.NewStdLog(log),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("server started", zap.String("addr", sock.Addr().String()))
		errc <- server.Serve(sock)
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	log.Info("shutting down")
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}

	return nil
}
