package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func roleRouter(rol string, required ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if rol != "" {
			c.Set("rol", rol)
		}
	})
	r.GET("/guarded", RequireRoles(required...), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func TestRequireRoles(t *testing.T) {
	get := func(r *gin.Engine) int {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/guarded", nil))
		return w.Code
	}

	assert.Equal(t, http.StatusOK, get(roleRouter("admin", "admin")))
	assert.Equal(t, http.StatusOK, get(roleRouter("director", "admin", "director")))
	assert.Equal(t, http.StatusForbidden, get(roleRouter("tecnico", "admin")))
	assert.Equal(t, http.StatusUnauthorized, get(roleRouter("", "admin")))
}

func TestSanitizeInputStripsMarkup(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(SanitizeInputMiddleware())
	var got map[string]string
	r.POST("/echo", func(c *gin.Context) {
		_ = c.ShouldBindJSON(&got)
		c.Status(http.StatusOK)
	})

	body := []byte(`{"nombre": "maria<script>alert(1)</script>"}`)
	req := httptest.NewRequest(http.MethodPost, "/echo", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "maria", got["nombre"])
}
