package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func protectedRouter(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/in", AuthMiddleware(secret), RequireAdmin(), func(c *gin.Context) {
		c.String(http.StatusOK, "in")
	})
	return r
}

func call(r *gin.Engine, token string) int {
	req := httptest.NewRequest(http.MethodGet, "/in", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestAuthMiddleware_EmptySecretRejectsEverything(t *testing.T) {
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "intruder",
		"role": "admin",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte{})
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, call(protectedRouter(""), forged))

	_, err = GenerateToken("u1", "admin", "", time.Hour)
	assert.Error(t, err)
}

func TestAuthMiddleware_Roles(t *testing.T) {
	r := protectedRouter("secret")

	admin, err := GenerateToken("u1", "admin", "secret", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, call(r, admin))

	staff, err := GenerateToken("u2", "staff", "secret", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, call(r, staff))

	other, err := GenerateToken("u1", "admin", "other-secret", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, call(r, other))

	assert.Equal(t, http.StatusUnauthorized, call(r, ""))
}
