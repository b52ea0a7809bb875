package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestReadiness(t *testing.T) {
	tests := []struct {
		name     string
		statuses map[string]Status
		wantCode int
		want     Status
	}{
		{"no checks", nil, http.StatusOK, StatusHealthy},
		{"all healthy", map[string]Status{"a": StatusHealthy, "b": StatusHealthy}, http.StatusOK, StatusHealthy},
		{"degraded", map[string]Status{"a": StatusHealthy, "b": StatusDegraded}, http.StatusOK, StatusDegraded},
		{"unhealthy", map[string]Status{"a": StatusDegraded, "b": StatusUnhealthy}, http.StatusServiceUnavailable, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler("test")
			for name, st := range tt.statuses {
				st := st
				h.Register(name, func(context.Context) (Status, error) {
					if st == StatusUnhealthy {
						return st, errors.New("down")
					}
					return st, nil
				})
			}

			rec := httptest.NewRecorder()
			h.ReadinessHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

			if rec.Code != tt.wantCode {
				t.Errorf("code = %d, want %d", rec.Code, tt.wantCode)
			}
			var resp Response
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Status != tt.want {
				t.Errorf("status = %s, want %s", resp.Status, tt.want)
			}
			if resp.Version != "test" {
				t.Errorf("version = %q", resp.Version)
			}
		})
	}
}

func TestLiveness(t *testing.T) {
	h := NewHandler("v1")
	h.Register("broken", func(context.Context) (Status, error) { return StatusUnhealthy, nil })

	rec := httptest.NewRecorder()
	h.LivenessHandler()(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("liveness should not run checks, got %d", rec.Code)
	}
}
