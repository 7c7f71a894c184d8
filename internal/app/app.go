package app

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"flexileave/internal/bootstrap"
	"flexileave/internal/middleware"
	"flexileave/internal/shared/config"
	"flexileave/internal/shared/connection"
	"flexileave/internal/shared/response"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	healthRateLimit = 5
	healthBurst     = 10
)

// BuildApp connects the backing services and mounts every module on router.
// The returned hooks close those connections on shutdown.
func BuildApp(router *gin.Engine, cfg *config.Config) ([]bootstrap.ShutdownHook, error) {
	logger := zap.L().Named("app")

	router.Use(
		middleware.RequestID(),
		middleware.ContextLogger(zap.L()),
		cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID", "Idempotency-Key"},
			ExposeHeaders:    []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
	)

	var hooks []bootstrap.ShutdownHook

	gormDB, sqlDB, err := connectDatabase(cfg)
	if err != nil {
		return nil, err
	}
	hooks = append(hooks, func(context.Context) error { return sqlDB.Close() })
	logger.Info("database connection established")

	if err := connection.Migrate(gormDB); err != nil {
		return hooks, err
	}

	redisClient, err := connection.ConnectRedisWithRetry(cfg.RedisAddr, 5)
	if err != nil {
		return hooks, err
	}
	hooks = append(hooks, func(context.Context) error { return redisClient.Close() })
	logger.Info("redis connection established")

	var minioClient *minio.Client
	if cfg.S3.Endpoint != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		minioClient, err = connection.ConnectMinio(ctx, cfg.S3.Endpoint, cfg.S3.AccessKey, cfg.S3.SecretKey, cfg.S3.Bucket, cfg.S3.UseSSL)
		cancel()
		if err != nil {
			return hooks, err
		}
		logger.Info("object storage ready", zap.String("bucket", cfg.S3.Bucket))
	} else {
		logger.Warn("S3_ENDPOINT not set, attachment routes disabled")
	}

	router.GET("/health", middleware.RateLimitByIP(healthRateLimit, healthBurst), func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "up"}, nil)
	})

	return hooks, registerModules(router, cfg, sqlDB, gormDB, redisClient, minioClient)
}

func connectDatabase(cfg *config.Config) (*gorm.DB, *sql.DB, error) {
	gormDB, err := connection.ConnectGORMWithRetry(
		cfg.Database.Host,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Name,
		cfg.Database.Port,
		cfg.Database.SSLMode,
		5,
	)
	if err != nil {
		return nil, nil, err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, nil, err
	}
	return gormDB, sqlDB, nil
}
