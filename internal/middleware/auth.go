package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"condomanager/internal/access"
	"condomanager/internal/config"
	apperrors "condomanager/internal/errors"
	"condomanager/internal/logger"
	"condomanager/internal/models"
	"condomanager/internal/session"
	"condomanager/internal/uuid"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
	issuer           = "condomanager-api"

	// ClaimsKey is the gin context key holding the validated access token claims.
	ClaimsKey = "claims"
	// UserIDKey is the gin context key holding the authenticated user ID.
	UserIDKey = "userID"
)

// getJWTKey returns the JWT key from configuration
func getJWTKey() []byte {
	return []byte(config.Get().JWTSecret)
}

// JWTClaims represents the claims in the JWT
type JWTClaims struct {
	UserID    string      `json:"user_id"`
	Email     string      `json:"email"`
	Role      models.Role `json:"role"`
	TokenType string      `json:"token_type"`
	jwt.RegisteredClaims
}

// GenerateAccessToken generates a short-lived JWT access token for a user.
func GenerateAccessToken(user *models.User) (string, error) {
	return generateToken(user, tokenTypeAccess, config.Get().JWTAccessTTL)
}

// GenerateRefreshToken generates a long-lived JWT refresh token for a user.
func GenerateRefreshToken(user *models.User) (string, error) {
	return generateToken(user, tokenTypeRefresh, config.Get().JWTRefreshTTL)
}

func generateToken(user *models.User, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &JWTClaims{
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   user.ID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(getJWTKey())
}

func parseToken(tokenString, tokenType string) (*JWTClaims, error) {
	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return getJWTKey(), nil
	}, jwt.WithIssuer(issuer))

	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid %s token", tokenType)
	}

	if claims.TokenType != tokenType {
		return nil, fmt.Errorf("token is not a %s token", tokenType)
	}

	return claims, nil
}

// ValidateAccessToken parses and validates an access token JWT.
func ValidateAccessToken(tokenString string) (*JWTClaims, error) {
	return parseToken(tokenString, tokenTypeAccess)
}

// ValidateRefreshToken parses and validates a refresh token JWT.
// Returns the claims if valid, or an error if the token is invalid,
// expired, or not a refresh token.
func ValidateRefreshToken(tokenString string) (*JWTClaims, error) {
	return parseToken(tokenString, tokenTypeRefresh)
}

// HashToken returns the SHA-256 hex digest of a token string.
func HashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// PrincipalLoader resolves the access principal of a user.
type PrincipalLoader interface {
	LoadPrincipal(userID string) (*access.Principal, error)
}

// AuthMiddleware verifies the bearer token, rejects revoked tokens, and loads
// the principal from the database into the request context. Role and
// condominium assignments are therefore current on every request.
func AuthMiddleware(loader PrincipalLoader, revoker session.Revoker) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get the Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, apperrors.WithMessage(apperrors.ErrUnauthorized, "Authorization header is required"))
			return
		}

		// Check if the header is in the correct format
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortWithError(c, apperrors.WithMessage(apperrors.ErrUnauthorized, "Invalid authorization header format"))
			return
		}

		claims, err := ValidateAccessToken(parts[1])
		if err != nil {
			abortWithError(c, apperrors.WithMessage(apperrors.ErrUnauthorized, "Invalid or expired token"))
			return
		}

		ctx := c.Request.Context()
		revoked, err := revoker.IsRevoked(ctx, claims.ID)
		if err == nil && !revoked && claims.IssuedAt != nil {
			revoked, err = revoker.IsUserRevoked(ctx, claims.UserID, claims.IssuedAt.Time)
		}
		if err != nil {
			logger.Get().Errorw("token revocation check failed", "error", err, "user_id", claims.UserID)
			abortWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
			return
		}
		if revoked {
			abortWithError(c, apperrors.WithMessage(apperrors.ErrUnauthorized, "Token has been revoked"))
			return
		}

		principal, err := loader.LoadPrincipal(claims.UserID)
		if err != nil {
			if errors.Is(err, apperrors.ErrUserNotFound) {
				abortWithError(c, apperrors.WithMessage(apperrors.ErrUnauthorized, "User no longer active"))
				return
			}
			abortWithError(c, err)
			return
		}

		c.Set(ClaimsKey, claims)
		c.Set(UserIDKey, principal.UserID)
		c.Request = c.Request.WithContext(access.WithPrincipal(ctx, principal))
		c.Next()
	}
}

// RequireRole rejects requests whose principal has none of roles.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := access.FromContext(c.Request.Context())
		if !ok {
			abortWithError(c, apperrors.ErrUnauthorized)
			return
		}
		for _, r := range roles {
			if p.Role == r {
				c.Next()
				return
			}
		}
		abortWithError(c, apperrors.ErrForbidden)
	}
}

// abortWithError writes err in the standard error envelope and stops the chain.
func abortWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		appErr = apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	c.AbortWithStatusJSON(appErr.StatusCode, gin.H{
		"error": gin.H{
			"code":    appErr.Code,
			"message": appErr.Message,
		},
	})
}
