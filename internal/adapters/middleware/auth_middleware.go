package middleware

import (
	"context"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"

	"github.com/AchilleasB/teaching-practice/workflow-service/internal/config"
	"github.com/AchilleasB/teaching-practice/workflow-service/internal/core/domain"
	"github.com/AchilleasB/teaching-practice/workflow-service/internal/logger"
)

// RevokedTokenPrefix prefixes the Redis keys of revoked tokens. The identity
// service writes "revoked_token:<sha256 of the token>" on logout.
const RevokedTokenPrefix = "revoked_token:"

// RevocationStore is the subset of the Redis client used to reject revoked tokens.
type RevocationStore interface {
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
}

type AuthMiddleware struct {
	publicKey *rsa.PublicKey
	revoked   RevocationStore
	cb        *gobreaker.CircuitBreaker
}

// NewAuthMiddleware verifies RS256 tokens with publicKey. revoked may be nil,
// in which case no revocation check is made.
func NewAuthMiddleware(publicKey *rsa.PublicKey, revoked RevocationStore) *AuthMiddleware {
	return &AuthMiddleware{
		publicKey: publicKey,
		revoked:   revoked,
		cb:        config.NewCircuitBreaker("Redis-Auth"),
	}
}

type contextKey string

const (
	UserIDKey contextKey = "userID"
	RoleKey   contextKey = "role"
)

func RevokedTokenKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return RevokedTokenPrefix + hex.EncodeToString(sum[:])
}

// WithViewer stores the authenticated caller in ctx.
func WithViewer(ctx context.Context, viewer domain.Viewer) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, viewer.ID)
	return context.WithValue(ctx, RoleKey, viewer.Role)
}

// ViewerFrom returns the caller stored by RequireRole.
func ViewerFrom(ctx context.Context) (domain.Viewer, bool) {
	id, _ := ctx.Value(UserIDKey).(string)
	role, _ := ctx.Value(RoleKey).(domain.Role)
	if id == "" || role == "" {
		return domain.Viewer{}, false
	}
	return domain.Viewer{ID: id, Role: role}, true
}

func (m *AuthMiddleware) RequireRole(roles []domain.Role, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			logger.Debug("missing authorization header", "path", r.URL.Path)
			writeError(w, http.StatusUnauthorized, "missing authorization header")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			logger.Debug("invalid authorization header format", "path", r.URL.Path)
			writeError(w, http.StatusUnauthorized, "invalid authorization header")
			return
		}

		tokenString := parts[1]

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return m.publicKey, nil
		})
		if err != nil || !token.Valid {
			logger.Debug("token rejected", "error", err)
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			writeError(w, http.StatusUnauthorized, "invalid token claims")
			return
		}

		userID, ok := claims["sub"].(string)
		if !ok || userID == "" {
			writeError(w, http.StatusUnauthorized, "invalid token: missing user ID")
			return
		}

		userRole, ok := claims["role"].(string)
		if !ok || userRole == "" {
			writeError(w, http.StatusUnauthorized, "invalid token: missing role")
			return
		}

		if m.revoked != nil {
			revoked, err := m.isRevoked(r.Context(), tokenString)
			if err != nil {
				logger.Error("token revocation check failed", "error", err)
				writeError(w, http.StatusServiceUnavailable, "authorization temporarily unavailable")
				return
			}
			if revoked {
				writeError(w, http.StatusUnauthorized, "token has been revoked")
				return
			}
		}

		allowed := false
		for _, role := range roles {
			if domain.Role(userRole) == role {
				allowed = true
				break
			}
		}
		if !allowed {
			logger.Warn("role mismatch", "required", roles, "role", userRole, "user_id", userID)
			writeError(w, http.StatusForbidden, "forbidden")
			return
		}

		ctx := WithViewer(r.Context(), domain.Viewer{ID: userID, Role: domain.Role(userRole)})
		next(w, r.WithContext(ctx))
	}
}

// isRevoked fails closed: a Redis error or an open circuit is an error.
func (m *AuthMiddleware) isRevoked(ctx context.Context, token string) (bool, error) {
	n, err := m.cb.Execute(func() (interface{}, error) {
		return m.revoked.Exists(ctx, RevokedTokenKey(token)).Result()
	})
	if err != nil {
		return false, err
	}
	return n.(int64) > 0, nil
}
