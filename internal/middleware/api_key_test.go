package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estatelink/backend/internal/utils"
)

func apiKeyRouter(expectedKey string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/public", APIKeyMiddleware(expectedKey), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return router
}

func requestWithKey(router *gin.Engine, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/public", nil)
	if key != "" {
		req.Header.Set("x-api-key", key)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAPIKeyPlainComparison(t *testing.T) {
	router := apiKeyRouter("landing-page-key")

	assert.Equal(t, http.StatusOK, requestWithKey(router, "landing-page-key").Code)
	assert.Equal(t, http.StatusUnauthorized, requestWithKey(router, "wrong").Code)
	assert.Equal(t, http.StatusUnauthorized, requestWithKey(router, "").Code)
}

func TestAPIKeyHashedComparison(t *testing.T) {
	hash, err := utils.HashPassword("landing-page-key")
	require.NoError(t, err)
	router := apiKeyRouter(hash)

	assert.Equal(t, http.StatusOK, requestWithKey(router, "landing-page-key").Code)
	assert.Equal(t, http.StatusUnauthorized, requestWithKey(router, "wrong").Code)
}

func TestAPIKeyUnconfigured(t *testing.T) {
	router := apiKeyRouter("")

	assert.Equal(t, http.StatusServiceUnavailable, requestWithKey(router, "anything").Code)
}
