// utils/auth.go
package utils

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

// Hash password
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	return string(bytes), err
}

// Check password
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// GenerateToken signs an admin session token valid for expiry.
func GenerateToken(userID, role, secret string, expiry time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("JWT_SECRET not set")
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"exp":  time.Now().Add(expiry).Unix(),
		"iat":  time.Now().Unix(),
	})
	return token.SignedString([]byte(secret))
}

func parseBearer(c *gin.Context, secret string) (jwt.MapClaims, error) {
	if secret == "" {
		return nil, errors.New("authentication is not configured")
	}
	tokenString := c.GetHeader("Authorization")
	if tokenString == "" {
		return nil, errors.New("authorization header required")
	}
	if len(tokenString) > 7 && strings.ToUpper(tokenString[0:6]) == "BEARER" {
		tokenString = tokenString[7:]
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// Auth middleware
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := parseBearer(c, secret)
		if err != nil {
			c.AbortWithStatusJSON(401, gin.H{"success": false, "error": err.Error()})
			return
		}
		c.Set("userId", claims["sub"])
		c.Set("role", claims["role"])
		c.Next()
	}
}

// RequireAdmin rejects authenticated requests whose token lacks the admin role.
// Must run after AuthMiddleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsAdmin(c) {
			c.AbortWithStatusJSON(403, gin.H{"success": false, "error": "admin access required"})
			return
		}
		c.Next()
	}
}

// OptionalAuth marks the request as admin when a valid token is present and
// lets anonymous requests through untouched.
func OptionalAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, err := parseBearer(c, secret); err == nil {
			c.Set("userId", claims["sub"])
			c.Set("role", claims["role"])
		}
		c.Next()
	}
}

// IsAdmin reports whether the request carries a valid admin token.
func IsAdmin(c *gin.Context) bool {
	role, ok := c.Get("role")
	return ok && role == "admin"
}
