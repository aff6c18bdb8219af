package healthcheck

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func staticChecker(status Status, calls *int32) Checker {
	return CheckerFunc(func(ctx context.Context) Check {
		if calls != nil {
			atomic.AddInt32(calls, 1)
		}
		return Check{Status: status, LastChecked: time.Now()}
	})
}

func TestHealthCheck_Check(t *testing.T) {
	tests := []struct {
		name     string
		statuses map[string]Status
		want     Status
	}{
		{"no checkers", map[string]Status{}, StatusHealthy},
		{"all healthy", map[string]Status{"db": StatusHealthy, "cache": StatusHealthy}, StatusHealthy},
		{"one degraded", map[string]Status{"db": StatusHealthy, "cache": StatusDegraded}, StatusDegraded},
		{"unhealthy wins", map[string]Status{"db": StatusUnhealthy, "cache": StatusDegraded}, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			hc := New("1.0.0", zap.NewNop())
			for name, status := range tt.statuses {
				hc.Register(name, staticChecker(status, nil))
			}

			// Act
			response := hc.Check(context.Background())

			// Assert
			assert.Equal(t, tt.want, response.Status)
			assert.Equal(t, "1.0.0", response.Version)
			assert.Len(t, response.Checks, len(tt.statuses))
		})
	}
}

func TestHealthCheck_ChecksAreSortedByName(t *testing.T) {
	hc := New("1.0.0", zap.NewNop())
	hc.Register("redis", staticChecker(StatusHealthy, nil))
	hc.Register("database", staticChecker(StatusHealthy, nil))

	response := hc.Check(context.Background())

	require.Len(t, response.Checks, 2)
	assert.Equal(t, "database", response.Checks[0].Name)
	assert.Equal(t, "redis", response.Checks[1].Name)
}

func TestHealthCheck_CachesResponse(t *testing.T) {
	var calls int32
	hc := New("1.0.0", zap.NewNop())
	hc.Register("database", staticChecker(StatusHealthy, &calls))

	hc.Check(context.Background())
	hc.Check(context.Background())
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	hc.SetCacheTTL(0)
	hc.Check(context.Background())
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestHealthCheck_Handler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		status     Status
		wantStatus int
	}{
		{"healthy", StatusHealthy, http.StatusOK},
		{"degraded still serves", StatusDegraded, http.StatusOK},
		{"unhealthy", StatusUnhealthy, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hc := New("1.0.0", zap.NewNop())
			hc.Register("database", staticChecker(tt.status, nil))

			router := gin.New()
			router.GET("/health", hc.Handler())

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)

			var body Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.status, body.Status)
		})
	}
}
