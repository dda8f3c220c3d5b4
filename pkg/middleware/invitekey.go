package middleware

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wiki-character-chat/backend/internal/models"
	apperrors "wiki-character-chat/backend/pkg/errors"
	"wiki-character-chat/backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// InviteKeyGate validates the invite key carried by each request and keeps
// best-effort usage counts. The durable count lives on the key row; Redis
// mirrors it for cheap inspection without touching Postgres.
type InviteKeyGate struct {
	db    *gorm.DB
	redis *redis.Client
	log   *logger.Logger
}

func NewInviteKeyGate(db *gorm.DB, redisClient *redis.Client, log *logger.Logger) *InviteKeyGate {
	return &InviteKeyGate{
		db:    db,
		redis: redisClient,
		log:   log.WithComponent("invite_gate"),
	}
}

// Middleware rejects requests without a valid, active invite key. The key is
// read from the X-Invite-Key header or the invite_key query parameter.
func (g *InviteKeyGate) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		keyValue := c.GetHeader("X-Invite-Key")
		if keyValue == "" {
			keyValue = c.Query("invite_key")
		}

		if keyValue == "" {
			c.Error(apperrors.NewUnauthorizedError(apperrors.CodeInviteKey,
				"Please provide a valid invite key to access this service"))
			c.Abort()
			return
		}

		var key models.InviteKey
		err := g.db.Where("key_value = ? AND is_active = ?", keyValue, true).First(&key).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.Error(apperrors.NewUnauthorizedError(apperrors.CodeInviteKey,
				"The provided invite key is invalid or has been deactivated"))
			c.Abort()
			return
		}
		if err != nil {
			c.Error(apperrors.NewStorageError("unable to validate invite key").WithCause(err))
			c.Abort()
			return
		}

		g.recordUsage(c.Request.Context(), key.ID)

		c.Next()
	}
}

// recordUsage bumps the usage counters. Failures are logged, never surfaced:
// bookkeeping must not block a valid request.
func (g *InviteKeyGate) recordUsage(ctx context.Context, keyID uint) {
	if err := g.db.Model(&models.InviteKey{}).
		Where("id = ?", keyID).
		UpdateColumn("used_count", gorm.Expr("used_count + 1")).Error; err != nil {
		g.log.LogError(err, "failed to increment invite key usage", "key_id", keyID)
	}

	if g.redis != nil {
		redisCtx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
		defer cancel()
		if err := g.redis.Incr(redisCtx, usageKey(keyID)).Err(); err != nil {
			g.log.Debug("redis usage counter unavailable", "key_id", keyID, "error", err.Error())
		}
	}
}

func usageKey(keyID uint) string {
	return fmt.Sprintf("invite_key_usage:%d", keyID)
}
