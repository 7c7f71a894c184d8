package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const defaultShutdownTimeout = 10 * time.Second

type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// ShutdownHook releases a resource once the server has stopped accepting
// requests. Hooks run in reverse registration order.
type ShutdownHook func(ctx context.Context) error

// StartHTTPServer serves the router and blocks until SIGINT or SIGTERM, then
// drains in-flight requests and runs the hooks.
func StartHTTPServer(
	router *gin.Engine,
	cfg ServerConfig,
	auditLogger AuditLogger,
	hooks ...ShutdownHook,
) error {
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		zap.L().Info("HTTP server running", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serveErr:
		return err
	case sig := <-quit:
		zap.L().Info("Shutdown signal received", zap.String("signal", sig.String()))
		// record before draining so the entry survives a forced exit
		auditLogger.Log(context.Background(), AuditLog{
			Action:  "SERVER_SHUTDOWN",
			Message: "Server is shutting down",
			Meta:    map[string]any{"signal": sig.String()},
		})
	}

	timeout := cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	err := server.Shutdown(ctx)
	if err != nil {
		zap.L().Error("Forced shutdown", zap.Error(err))
	} else {
		zap.L().Info("Server exited gracefully")
	}

	runHooks(ctx, hooks)
	return err
}

func runHooks(ctx context.Context, hooks []ShutdownHook) {
	for i := len(hooks) - 1; i >= 0; i-- {
		if err := hooks[i](ctx); err != nil {
			zap.L().Warn("shutdown hook failed", zap.Error(err))
		}
	}
}
