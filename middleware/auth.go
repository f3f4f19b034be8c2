package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/Sreejasudhakaran/veriscope-ai-backend/database"
	"github.com/Sreejasudhakaran/veriscope-ai-backend/metrics"
)

// Context keys set by AuthMiddleware.
const (
	ContextUserID = "user_id"
	ContextRole   = "user_role"
)

// RoleAdmin is the identity role that bypasses ownership checks.
const RoleAdmin = "admin"

// AuthMiddleware validates JWT bearer tokens for protected routes and
// resolves the caller's role from the identity record. Token issuance is
// the identity service's job; only validation happens here.
func AuthMiddleware(jwtSecret string, users *database.UserService) gin.HandlerFunc {
	secret := []byte(jwtSecret)

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			reject(c, "missing authorization header")
			return
		}

		tokenString := extractToken(authHeader)
		if tokenString == "" {
			reject(c, "invalid authorization format")
			return
		}

		userID, err := validateToken(tokenString, secret)
		if err != nil {
			log.Debugf("Token rejected from %s: %v", c.ClientIP(), err)
			reject(c, "invalid or expired token")
			return
		}

		user, err := users.Get(c.Request.Context(), userID)
		if errors.Is(err, database.ErrNotFound) {
			reject(c, "invalid or expired token")
			return
		}
		if err != nil {
			// A store failure is not a credential problem.
			log.Errorf("Failed to load user %s: %v", userID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal server error"})
			c.Abort()
			return
		}
		if !user.IsActive {
			reject(c, "account is deactivated")
			return
		}

		c.Set(ContextUserID, user.ID)
		c.Set(ContextRole, user.Role)
		c.Next()
	}
}

// CanModify is the single ownership capability check: a resource may be
// read or mutated by its owner or by an admin.
func CanModify(actorID, actorRole, ownerID string) bool {
	return actorRole == RoleAdmin || actorID == ownerID
}

func reject(c *gin.Context, msg string) {
	metrics.AuthFailuresTotal.Inc()
	c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": msg})
	c.Abort()
}

// extractToken extracts the token from the Authorization header
func extractToken(authHeader string) string {
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

func validateToken(tokenString string, secret []byte) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return "", errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid token claims")
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", errors.New("invalid user id in token")
	}

	return userID, nil
}

// SecurityHeaders adds security-related HTTP headers
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Next()
	}
}
