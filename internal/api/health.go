package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"bode-andarilho/agenda/internal/logging"
	"bode-andarilho/agenda/internal/models/dtos"
)

// HealthCheckHandler handles GET /healthCheck
func (h *Handlers) HealthCheckHandler(upSince time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		services := make(map[string]dtos.ServiceStatus)
		services["database"] = check(ctx, h.deps.DB, "Database connected")

		if p, ok := h.deps.Cache.(Pinger); ok {
			services["cache"] = check(ctx, p, "Redis connected")
		} else {
			services["cache"] = dtos.ServiceStatus{Status: "ok", Details: "In-memory cache"}
		}

		overallStatus := "ok"
		for _, svc := range services {
			if svc.Status != "ok" {
				overallStatus = "down"
				break
			}
		}

		code := http.StatusOK
		if overallStatus != "ok" {
			code = http.StatusServiceUnavailable
		}

		resp := dtos.HealthCheckResponse{
			Services: services,
			Status:   overallStatus,
			UpSince:  upSince,
			Uptime:   time.Since(upSince).Round(time.Second).String(),
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func check(ctx context.Context, p Pinger, okDetails string) dtos.ServiceStatus {
	if p == nil {
		return dtos.ServiceStatus{Status: "down", Details: "not configured"}
	}
	if err := p.Ping(ctx); err != nil {
		logging.Warn("Health check failed", "details", okDetails, "error", err)
		return dtos.ServiceStatus{Status: "down", Details: "unreachable"}
	}
	return dtos.ServiceStatus{Status: "ok", Details: okDetails}
}
