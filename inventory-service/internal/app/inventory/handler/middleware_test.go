package handler

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

func setupAuthRouter(m *AuthMiddleware, roles ...string) *gin.Engine {
	router := setupTestRouter()
	router.GET("/protected", m.Authenticate(), m.RequireRole(roles...), func(c *gin.Context) {
		userID, _ := c.Get("user_id")
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})
	return router
}

func signWith(t *testing.T, method jwt.SigningMethod, key interface{}, claims JWTClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	// Arrange
	router := setupAuthRouter(NewAuthMiddleware(testJWTSecret), "admin")
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "admin"))

	// Act
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id": "user-1"}`, w.Body.String())
}

func TestAuthMiddleware_RejectedTokens(t *testing.T) {
	expired := JWTClaims{
		UserID:   "user-1",
		RoleName: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	noUser := JWTClaims{
		RoleName: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	valid := JWTClaims{UserID: "user-1", RoleName: "admin"}

	tests := []struct {
		name      string
		token     string
		wantError string
	}{
		{"expired", signWith(t, jwt.SigningMethodHS256, []byte(testJWTSecret), expired), "Invalid or expired token"},
		{"wrong secret", signWith(t, jwt.SigningMethodHS256, []byte("other"), valid), "Invalid or expired token"},
		{"unexpected algorithm", signWith(t, jwt.SigningMethodHS512, []byte(testJWTSecret), valid), "Invalid or expired token"},
		{"unsigned", signWith(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, valid), "Invalid or expired token"},
		{"missing user", signWith(t, jwt.SigningMethodHS256, []byte(testJWTSecret), noUser), "Invalid user ID in token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			router := setupAuthRouter(NewAuthMiddleware(testJWTSecret), "admin")
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)

			// Act
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			// Assert
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, tt.wantError, decodeBody(t, w)["error"])
		})
	}
}

func TestAuthMiddleware_RequireRole_AnyRoleWhenListEmpty(t *testing.T) {
	// Arrange
	router := setupAuthRouter(NewAuthMiddleware(testJWTSecret))
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "viewer"))

	// Act
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
}
