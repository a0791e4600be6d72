package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/game-catalog-backend/internal/auth"
)

func TestBearerToken(t *testing.T) {
	cases := map[string]string{
		"Bearer abc":   "abc",
		"bearer  abc ": "abc",
		"Basic abc":    "",
		"Bearer":       "",
		"":             "",
	}
	for in, want := range cases {
		if got := bearerToken(in); got != want {
			t.Fatalf("bearerToken(%q) = %q; want %q", in, got, want)
		}
	}
}

func TestAuthenticate_AndRequireAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	issuer := auth.NewIssuer("secret", time.Hour, "test")
	tok, err := issuer.Generate("u1", "alice")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	r := gin.New()
	r.Use(Authenticate(issuer))
	r.GET("/open", func(c *gin.Context) { c.String(http.StatusOK, UserID(c)) })
	r.GET("/closed", RequireAuth(), func(c *gin.Context) { c.String(http.StatusOK, Username(c)) })

	do := func(path, authz string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if authz != "" {
			req.Header.Set("Authorization", authz)
		}
		r.ServeHTTP(w, req)
		return w
	}

	if w := do("/open", ""); w.Code != http.StatusOK || w.Body.String() != "" {
		t.Fatalf("anonymous open: %d %q", w.Code, w.Body.String())
	}
	if w := do("/open", "Bearer "+tok); w.Body.String() != "u1" {
		t.Fatalf("open with token: %q", w.Body.String())
	}
	if w := do("/closed", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("closed anonymous: %d", w.Code)
	}
	if w := do("/closed", "Bearer not-a-token"); w.Code != http.StatusUnauthorized {
		t.Fatalf("closed with bad token: %d", w.Code)
	}
	if w := do("/closed", "Bearer "+tok); w.Code != http.StatusOK || w.Body.String() != "alice" {
		t.Fatalf("closed with token: %d %q", w.Code, w.Body.String())
	}
}
