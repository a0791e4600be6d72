package middleware

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestSecurityHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), SecurityHeaders(SecurityOptions{
		EnableHSTS:      true,
		HSTSMaxAge:      time.Hour,
		EnablePolicy:    true,
		NoStorePrefixes: []string{"/api/auth"},
	}))
	r.GET("/api/games", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/api/auth/me", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/games", nil))
	h := w.Header()
	for k, v := range map[string]string{
		"X-Content-Type-Options":        "nosniff",
		"X-Frame-Options":               "DENY",
		"Referrer-Policy":               "no-referrer",
		"Access-Control-Expose-Headers": "X-Request-ID",
	} {
		if h.Get(k) != v {
			t.Fatalf("%s = %q; want %q", k, h.Get(k), v)
		}
	}
	if h.Get("Permissions-Policy") == "" {
		t.Fatalf("expected Permissions-Policy")
	}
	if h.Get("Strict-Transport-Security") != "" || h.Get("Cache-Control") != "" {
		t.Fatalf("plain HTTP public route must not get HSTS or no-store")
	}

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.TLS = &tls.ConnectionState{}
	r.ServeHTTP(w, req)
	if got := w.Header().Get("Strict-Transport-Security"); got != "max-age=3600; includeSubDomains; preload" {
		t.Fatalf("HSTS = %q", got)
	}
	if w.Header().Get("Cache-Control") != "no-store" {
		t.Fatalf("auth route should be no-store")
	}
}

func TestIsHTTPS(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if isHTTPS(req) {
		t.Fatalf("plain request is not https")
	}
	req.Header.Set("X-Forwarded-Proto", "HTTPS")
	if !isHTTPS(req) {
		t.Fatalf("forwarded https should count")
	}
}
