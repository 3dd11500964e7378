package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddleware_CountsByRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/users/:id", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for _, path := range []string{"/users/1", "/users/2", "/nowhere"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	if got := testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "/users/:id", "200")); got != 2 {
		t.Errorf("requests for /users/:id = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "unmatched", "404")); got != 1 {
		t.Errorf("unmatched requests = %v, want 1", got)
	}
}

func TestRecordAuthEvent(t *testing.T) {
	m := New()

	m.RecordAuthEvent("login", OutcomeSuccess)
	m.RecordAuthEvent("login", OutcomeRejected)
	m.RecordAuthEvent("login", OutcomeRejected)

	if got := testutil.ToFloat64(m.authEvents.WithLabelValues("login", OutcomeRejected)); got != 2 {
		t.Errorf("rejected logins = %v, want 2", got)
	}
}

func TestHandler_Exposition(t *testing.T) {
	m := New()
	m.RecordAuthEvent("register", OutcomeSuccess)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{`auth_events_total{event="register",outcome="success"} 1`, "go_goroutines"} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
