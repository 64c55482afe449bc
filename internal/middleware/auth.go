package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

const userContextKey = "catalogUser"

// Claims is the bearer token payload. IsSuperuser is the store-owner
// capability.
type Claims struct {
	IsSuperuser bool `json:"is_superuser"`
	jwt.RegisteredClaims
}

type User struct {
	ID          string
	IsSuperuser bool
}

// Authenticate resolves an optional bearer token. Requests without one stay
// anonymous; a malformed or invalid token is rejected.
func Authenticate(secret []byte, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
			log.Warnf("Middleware: Invalid Authorization header format: %s", authHeader[:min(16, len(authHeader))])
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid Authorization header format"})
			return
		}

		claims, err := ParseToken(secret, parts[1])
		if err != nil {
			log.Warnf("Middleware: Rejected bearer token: %v", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(userContextKey, User{ID: claims.Subject, IsSuperuser: claims.IsSuperuser})
		c.Next()
	}
}

// RequireLogin rejects anonymous requests.
func RequireLogin(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); !ok {
			log.Warnf("Middleware: Anonymous request to %s", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}
		c.Next()
	}
}

func CurrentUser(c *gin.Context) (User, bool) {
	value, ok := c.Get(userContextKey)
	if !ok {
		return User{}, false
	}
	user, ok := value.(User)
	return user, ok
}

// IsOwner reports whether the caller may mutate the catalog.
func IsOwner(c *gin.Context) bool {
	user, ok := CurrentUser(c)
	return ok && user.IsSuperuser
}

func ParseToken(secret []byte, raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("token is not valid")
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}

// IssueToken signs an HS256 token for userID.
func IssueToken(secret []byte, userID string, isSuperuser bool, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		IsSuperuser: isSuperuser,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("could not sign token: %w", err)
	}
	return signed, nil
}
