package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/muhammadnoorulainroy/photo-pets-annotation-tool/internal/config"
	"github.com/muhammadnoorulainroy/photo-pets-annotation-tool/internal/repository"
	"github.com/muhammadnoorulainroy/photo-pets-annotation-tool/internal/security"
)

func Auth(cfg *config.AppConfig, users *repository.UserRepository, cache *redis.Client, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing_token"})
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := security.ParseAccessToken(tokenStr, cfg.Security.JWTSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token"})
			return
		}

		// The denylist check fails closed: a token cannot be accepted while
		// revocations are unreadable.
		n, err := cache.Exists(c.Request.Context(), security.RevokedTokenKey(claims.ID)).Result()
		if err != nil {
			log.Error().Err(err).Str("token_id", claims.ID).Msg("denylist lookup failed")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "denylist_unavailable"})
			return
		}
		if n > 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token_revoked"})
			return
		}

		user, err := users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user_not_found"})
			return
		}

		if !user.IsActive {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "user_inactive"})
			return
		}

		c.Set("access_claims", *claims)
		c.Set("current_user", user)

		c.Next()
	}
}
