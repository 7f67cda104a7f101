package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"alfreds-toolbox/domain/model"
	"alfreds-toolbox/infrastructure/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "middleware-secret"

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin", Auth(secret, model.CapabilityManageOptions), func(c *gin.Context) {
		claims, ok := Claims(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, claims.UserName)
	})
	r.GET("/public", Identify(secret), func(c *gin.Context) {
		if claims, ok := Claims(c); ok {
			c.String(http.StatusOK, claims.UserName)
			return
		}
		c.String(http.StatusOK, "anonymous")
	})
	return r
}

func do(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuth(t *testing.T) {
	r := newRouter()
	admin, err := utils.GenerateAdminToken("alfred", []string{model.CapabilityManageOptions}, time.Hour, secret)
	require.NoError(t, err)
	editor, err := utils.GenerateAdminToken("eddie", []string{"edit_posts"}, time.Hour, secret)
	require.NoError(t, err)
	expired, err := utils.GenerateAdminToken("alfred", []string{model.CapabilityManageOptions}, -time.Hour, secret)
	require.NoError(t, err)

	w := do(r, "/admin", admin)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alfred", w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, do(r, "/admin", "").Code)
	assert.Equal(t, http.StatusForbidden, do(r, "/admin", editor).Code)

	w = do(r, "/admin", expired)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Timing is everything")

	w = do(r, "/admin", "garbage")
	assert.Contains(t, w.Body.String(), "That's not even a token")
}

func TestIdentify(t *testing.T) {
	r := newRouter()
	admin, err := utils.GenerateAdminToken("alfred", []string{model.CapabilityManageOptions}, time.Hour, secret)
	require.NoError(t, err)

	assert.Equal(t, "alfred", do(r, "/public", admin).Body.String())
	assert.Equal(t, "anonymous", do(r, "/public", "").Body.String())
	assert.Equal(t, "anonymous", do(r, "/public", "garbage").Body.String())
}
