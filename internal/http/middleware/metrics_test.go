package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_CountsByRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Metrics())
	r.GET("/games/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	before := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/games/:id", "200"))
	for _, id := range []string{"a", "b"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/games/"+id, nil))
	}
	if got := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/games/:id", "200")) - before; got != 2 {
		t.Fatalf("route counter delta = %v; want 2", got)
	}

	missBefore := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/nope", "404"))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))
	if got := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/nope", "404")) - missBefore; got != 1 {
		t.Fatalf("unmatched path counter delta = %v; want 1", got)
	}
	if testutil.ToFloat64(httpInflight) != 0 {
		t.Fatalf("in-flight gauge should be back to 0")
	}
}

func TestMetrics_WebSocketUpgradeNotInflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Metrics())
	var during float64
	r.GET("/ws", func(c *gin.Context) {
		during = testutil.ToFloat64(httpInflight)
		c.Status(http.StatusBadRequest)
	})

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Upgrade", "websocket")
	r.ServeHTTP(httptest.NewRecorder(), req)
	if during != 0 {
		t.Fatalf("upgrade counted as in-flight: %v", during)
	}
}
