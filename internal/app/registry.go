package app

import (
	"database/sql"

	"flexileave/internal/attachment"
	"flexileave/internal/balance"
	"flexileave/internal/leave"
	"flexileave/internal/messaging/kafka"
	"flexileave/internal/notification"
	"flexileave/internal/rbac"
	"flexileave/internal/rbac/infra"
	"flexileave/internal/shared/config"
	"flexileave/internal/shared/counter"
	"flexileave/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	cfg *config.Config,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
	minioClient *minio.Client,
) error {
	logger := zap.L()

	// --- Repositories ---
	leaveRepo := leave.NewRepository(gormDB)
	balanceRepo := balance.NewRepository(gormDB)
	counterRepo := counter.NewRepository(gormDB)
	attachmentRepo := attachment.NewRepository(gormDB)
	notificationRepo := notification.NewRepository(gormDB)
	userRepo := user.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer()
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(enforcer, logger)
	if err := rbacService.LoadPolicy(rbac.DefaultPolicies); err != nil {
		return err
	}

	// --- Services ---
	balanceService := balance.NewService(db, balanceRepo, rdb, logger)
	leaveService := leave.NewService(db, leaveRepo, balanceRepo, balanceService, counterRepo, outboxRepo, logger)
	notificationService := notification.NewService(notificationRepo, userRepo, notification.NewSMTPMailer(cfg.SMTP), logger)
	userService := user.NewService(userRepo, balanceService, rbacService)

	// --- Handlers ---
	leaveHandler := leave.NewHandler(leaveService, logger)
	balanceHandler := balance.NewHandler(balanceService, logger)
	notificationHandler := notification.NewHandler(notificationService, logger)
	userHandler := user.NewHandler(userService, logger)
	rbacHandler := rbac.NewHandler(rbacService, logger)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		leave.RegisterRoutes(api, leaveHandler, rbacService, rdb, cfg.JWTSecret)
		balance.RegisterRoutes(api, balanceHandler, rbacService, cfg.JWTSecret)
		notification.RegisterRoutes(api, notificationHandler, rbacService, cfg.JWTSecret)
		user.RegisterRoutes(api, userHandler, cfg.JWTSecret, logger)
		rbac.RegisterRoutes(api, rbacHandler, cfg.JWTSecret)

		if minioClient != nil {
			storage := attachment.NewMinioStorage(minioClient, cfg.S3.Bucket)
			attachmentService := attachment.NewService(db, attachmentRepo, leaveRepo, storage, logger)
			attachment.RegisterRoutes(api, attachment.NewHandler(attachmentService, logger), rbacService, cfg.JWTSecret)
		}
	}

	return nil
}
