package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"flexileave/internal/shared/apperror"
	"flexileave/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	idempotencyTTL     = 24 * time.Hour
	idempotencyLockTTL = 30 * time.Second
)

type cachedResponse struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

type bodyRecorder struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency replays the stored response of a POST that carried the same
// Idempotency-Key for the same user and route. A SetNX lock rejects a
// duplicate that arrives while the first request is still running.
func Idempotency(rdb *redis.Client) gin.HandlerFunc {
	logger := zap.L().Named("middleware.idempotency")
	return func(c *gin.Context) {
		idempKey := c.GetHeader("Idempotency-Key")
		if idempKey == "" || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		userID := c.GetString("user_id_validated")
		cacheKey := fmt.Sprintf("idemp:%s:%s:%s", c.FullPath(), userID, idempKey)
		lockKey := cacheKey + ":lock"

		if val, err := rdb.Get(ctx, cacheKey).Result(); err == nil {
			var cached cachedResponse
			if json.Unmarshal([]byte(val), &cached) == nil {
				c.Header("Idempotent-Replayed", "true")
				c.Data(cached.Status, "application/json; charset=utf-8", cached.Body)
				c.Abort()
				return
			}
		}

		isNew, err := rdb.SetNX(ctx, lockKey, "locked", idempotencyLockTTL).Result()
		if err != nil {
			// Redis down: serve the request without replay protection
			logger.Warn("idempotency lock failed", zap.Error(err))
			c.Next()
			return
		}
		if !isNew {
			response.Error(c, http.StatusConflict, apperror.CodeInProgress, "This request is already being processed", nil)
			c.Abort()
			return
		}
		defer rdb.Del(ctx, lockKey)

		rec := &bodyRecorder{ResponseWriter: c.Writer}
		c.Writer = rec

		c.Next()

		status := rec.Status()
		if status < 200 || status >= 300 {
			return
		}
		payload, err := json.Marshal(cachedResponse{Status: status, Body: rec.buf.Bytes()})
		if err != nil {
			return
		}
		if err := rdb.Set(ctx, cacheKey, payload, idempotencyTTL).Err(); err != nil {
			logger.Warn("idempotency store failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}
}

