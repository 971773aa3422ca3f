package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

type mockHTTPRecorder struct {
	statuses []int
	routes   []string
}

func (m *mockHTTPRecorder) RecordHTTPStatus(statusCode int) {
	m.statuses = append(m.statuses, statusCode)
}

func (m *mockHTTPRecorder) RecordRequestLatency(route string, duration time.Duration) {
	m.routes = append(m.routes, route)
}

func TestMetricsMiddleware_RecordsRoutePattern(t *testing.T) {
	recorder := &mockHTTPRecorder{}

	r := chi.NewRouter()
	r.Use(NewMetricsMiddleware(recorder))
	r.Get("/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/users/abc", nil))

	if len(recorder.statuses) != 1 || recorder.statuses[0] != http.StatusNoContent {
		t.Errorf("statuses = %v, want [204]", recorder.statuses)
	}
	if len(recorder.routes) != 1 || recorder.routes[0] != "/users/{id}" {
		t.Errorf("routes = %v, want [/users/{id}]", recorder.routes)
	}
}

func TestMetricsMiddleware_UnmatchedRoute(t *testing.T) {
	recorder := &mockHTTPRecorder{}

	r := chi.NewRouter()
	r.Use(NewMetricsMiddleware(recorder))
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	if recorder.statuses[0] != http.StatusNotFound {
		t.Errorf("status = %d, want 404", recorder.statuses[0])
	}
	if recorder.routes[0] != unmatchedRoute {
		t.Errorf("route = %q, want %q", recorder.routes[0], unmatchedRoute)
	}
}

func TestMetricsMiddleware_WithoutRouter(t *testing.T) {
	recorder := &mockHTTPRecorder{}
	handler := NewMetricsMiddleware(recorder)(okHandler())

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if recorder.routes[0] != unmatchedRoute {
		t.Errorf("route = %q, want %q", recorder.routes[0], unmatchedRoute)
	}
}
