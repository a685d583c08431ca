package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"campus-bus-api-server/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(allowedRoles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	group := router.Group("/", Authenticate())
	if len(allowedRoles) > 0 {
		group.Use(Authorize(allowedRoles...))
	}
	group.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"role": c.GetString("user_role")})
	})
	return router
}

func doRequest(router *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthenticateMissingHeader(t *testing.T) {
	router := setupRouter()
	w := doRequest(router, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticateBadToken(t *testing.T) {
	router := setupRouter()
	w := doRequest(router, "garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticateValidToken(t *testing.T) {
	router := setupRouter()
	token, err := auth.GenerateJWT("student-1", "alice@campus.edu", "student", "")
	require.NoError(t, err)

	w := doRequest(router, token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role":"student"`)
}

func TestAuthorizeMatchingRole(t *testing.T) {
	router := setupRouter("driver")
	token, err := auth.GenerateJWT("driver-1", "driver1@campus.edu", "driver", "KBUS001")
	require.NoError(t, err)

	w := doRequest(router, token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthorizeMismatchedRole(t *testing.T) {
	router := setupRouter("management")
	token, err := auth.GenerateJWT("student-1", "alice@campus.edu", "student", "")
	require.NoError(t, err)

	w := doRequest(router, token)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
