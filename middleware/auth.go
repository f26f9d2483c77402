package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"elections/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Context keys set by VerifyToken
const (
	ContextUserID     = "userID"
	ContextUserRole   = "userRole"
	ContextFlatNumber = "userFlatNumber"
)

// Roles carried in tokens
const (
	RoleAdmin = "admin"
	RoleVoter = "voter"
)

const tokenLifetime = 24 * time.Hour

// GenerateToken issues a signed session token for a subject. flatNumber is
// empty for admins.
func GenerateToken(subjectID, role, flatNumber string) (string, error) {
	claims := jwt.MapClaims{
		"id":   subjectID,
		"role": role,
		"exp":  time.Now().Add(tokenLifetime).Unix(),
	}
	if flatNumber != "" {
		claims["flatNumber"] = flatNumber
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.JWTSecret))
}

// ParseToken validates a token string and returns its claims.
func ParseToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(config.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// VerifyToken requires a valid Bearer token and stores the subject id, role
// and flat number on the context.
func VerifyToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "No token provided"})
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid token format"})
			c.Abort()
			return
		}

		claims, err := ParseToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token"})
			c.Abort()
			return
		}

		id, _ := claims["id"].(string)
		role, _ := claims["role"].(string)
		flat, _ := claims["flatNumber"].(string)

		c.Set(ContextUserID, id)
		c.Set(ContextUserRole, role)
		c.Set(ContextFlatNumber, flat)

		c.Next()
	}
}

// RequireAdmin rejects requests whose token does not carry the admin role.
// Must run after VerifyToken.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ContextUserRole) != RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"message": "Access denied. Admin only."})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireVoter rejects requests whose token does not carry the voter role.
// Must run after VerifyToken.
func RequireVoter() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ContextUserRole) != RoleVoter {
			c.JSON(http.StatusForbidden, gin.H{"message": "Access denied. Voter only."})
			c.Abort()
			return
		}
		c.Next()
	}
}

// CORS applies the configured allowed origins.
func CORS() gin.HandlerFunc {
	allowed := make(map[string]bool, len(config.AllowedOrigins))
	for _, origin := range config.AllowedOrigins {
		allowed[origin] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if allowed[origin] {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Max-Age", "86400")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
