package healthcheck

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type staticChecker struct {
	status  Status
	message string
}

func (s staticChecker) Check(ctx context.Context) Check {
	return Check{Status: s.status, Message: s.message, LastChecked: time.Now()}
}

func TestHealthCheckAggregatesStatuses(t *testing.T) {
	tests := []struct {
		name     string
		checkers map[string]Status
		want     Status
	}{
		{
			name:     "all healthy",
			checkers: map[string]Status{"a": StatusHealthy, "b": StatusHealthy},
			want:     StatusHealthy,
		},
		{
			name:     "one degraded",
			checkers: map[string]Status{"a": StatusHealthy, "b": StatusDegraded},
			want:     StatusDegraded,
		},
		{
			name:     "unhealthy wins over degraded",
			checkers: map[string]Status{"a": StatusDegraded, "b": StatusUnhealthy},
			want:     StatusUnhealthy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := New("1.0.0", zaptest.NewLogger(t))
			for name, status := range tt.checkers {
				h.Register(name, staticChecker{status: status})
			}

			resp := h.Check(context.Background())
			assert.Equal(t, tt.want, resp.Status)
			assert.Len(t, resp.Checks, len(tt.checkers))
		})
	}
}

func TestHealthCheckCachesResults(t *testing.T) {
	h := New("1.0.0", zaptest.NewLogger(t))

	calls := 0
	h.Register("counting", checkerFunc(func(ctx context.Context) Check {
		calls++
		return Check{Status: StatusHealthy, LastChecked: time.Now()}
	}))

	h.Check(context.Background())
	h.Check(context.Background())
	assert.Equal(t, 1, calls)
}

type checkerFunc func(ctx context.Context) Check

func (f checkerFunc) Check(ctx context.Context) Check { return f(ctx) }

func TestHealthCheckHandlerStatusCodes(t *testing.T) {
	h := New("1.0.0", zaptest.NewLogger(t))
	h.Register("down", staticChecker{status: StatusUnhealthy, message: "db unreachable"})

	rec := httptest.NewRecorder()
	h.Handler()(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, StatusUnhealthy, resp.Status)
	assert.Equal(t, "1.0.0", resp.Version)
}

func TestModelServiceCheckerHealthy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cb := NewCircuitBreaker("model", DefaultCircuitBreakerConfig())
	checker := NewModelServiceChecker("model", server.URL, "test-key", time.Second, cb)

	check := checker.Check(context.Background())
	assert.Equal(t, StatusHealthy, check.Status)
}

func TestModelServiceCheckerDegradedWhenDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cb := NewCircuitBreaker("model", CircuitBreakerConfig{
		FailureThreshold: 2,
		SuccessThreshold: 1,
		Timeout:          time.Minute,
	})
	checker := NewModelServiceChecker("model", server.URL, "", time.Second, cb)

	check := checker.Check(context.Background())
	assert.Equal(t, StatusDegraded, check.Status)

	// Second failure trips the breaker; further checks short-circuit
	checker.Check(context.Background())
	assert.Equal(t, StateOpen, cb.State())

	check = checker.Check(context.Background())
	assert.Equal(t, StatusDegraded, check.Status)
	assert.Contains(t, check.Message, "circuit breaker")
}
