package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiendt120702/BTCShopee-sub000/internal/infrastructure/auth"
	"github.com/kiendt120702/BTCShopee-sub000/internal/infrastructure/config"
	"github.com/kiendt120702/BTCShopee-sub000/internal/interfaces/http/dto"
)

func newJWTTestRouter(service *auth.JWTService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(RequestID())
	engine.Use(JWTAuthMiddleware(service))
	engine.GET("/protected", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"username": GetJWTUsername(c)})
	})
	return engine
}

func newTestJWTService(expiration time.Duration) *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                "test-secret-test-secret-test-secret",
		AccessTokenExpiration: expiration,
		Issuer:                "btcshopee-test",
	})
}

func TestJWTAuthMiddleware(t *testing.T) {
	t.Run("valid token passes through", func(t *testing.T) {
		service := newTestJWTService(time.Hour)
		router := newJWTTestRouter(service)

		token, err := service.Generate("admin")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+token.AccessToken)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "admin")
	})

	t.Run("missing header maps its code to 401", func(t *testing.T) {
		router := newJWTTestRouter(newTestJWTService(time.Hour))

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		assert.Equal(t, dto.GetHTTPStatus(dto.ErrCodeUnauthorized), recorder.Code)
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		assert.Contains(t, recorder.Body.String(), dto.ErrCodeUnauthorized)
	})

	t.Run("malformed header is rejected as invalid token", func(t *testing.T) {
		router := newJWTTestRouter(newTestJWTService(time.Hour))

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set(AuthHeaderKey, "Basic dXNlcjpwYXNz")
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		assert.Contains(t, recorder.Body.String(), dto.ErrCodeTokenInvalid)
	})

	t.Run("expired token is distinguished from an invalid one", func(t *testing.T) {
		service := newTestJWTService(-time.Hour)
		router := newJWTTestRouter(service)

		token, err := service.Generate("admin")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+token.AccessToken)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		assert.Contains(t, recorder.Body.String(), dto.ErrCodeTokenExpired)
	})
}
