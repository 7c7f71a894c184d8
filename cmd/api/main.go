package main

import (
	"context"
	"time"

	"flexileave/internal/app"
	"flexileave/internal/bootstrap"
	"flexileave/internal/shared/apperror"
	"flexileave/internal/shared/config"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config failed", zap.Error(err))
	}

	apperror.Init()
	r := gin.Default()

	// build dependency + routes
	hooks, err := app.BuildApp(r, cfg)
	if err != nil {
		logger.Fatal("build app failed", zap.Error(err))
	}

	auditLogger := bootstrap.NewStdoutAuditLogger(logger)
	auditLogger.Log(context.Background(), bootstrap.AuditLog{
		Action:  "SERVER_START",
		Message: "Server is starting",
		Meta:    map[string]any{"port": cfg.Port},
	})

	err = bootstrap.StartHTTPServer(
		r,
		bootstrap.ServerConfig{
			Port:            cfg.Port,
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		auditLogger,
		hooks...,
	)
	if err != nil {
		logger.Fatal("http server stopped", zap.Error(err))
	}
}
