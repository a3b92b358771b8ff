package api

import (
	"context"
	"net/http"

	"github.com/finpal/finpal-go/internal/util"
)

// CircuitAdmin is the operational slice of the model manager: inspect the
// provider circuit and force it closed after an incident.
type CircuitAdmin interface {
	GetCircuitStatus() util.CircuitBreakerStatus
	ResetCircuit()
}

// CachePinger reports search-cache connectivity.
type CachePinger interface {
	IsConnected(ctx context.Context) bool
}

func (s *Server) handleAdminStatus(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{}

	if s.circuit != nil {
		status := s.circuit.GetCircuitStatus()
		body["circuit"] = map[string]any{
			"state":         status.State.String(),
			"failureCount":  status.FailureCount,
			"nextRetryTime": status.NextRetryTime,
		}
	}

	cacheStatus := map[string]any{"enabled": s.cache != nil}
	if s.cache != nil {
		cacheStatus["connected"] = s.cache.IsConnected(r.Context())
	}
	body["cache"] = cacheStatus

	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleCircuitReset(w http.ResponseWriter, r *http.Request) {
	if s.circuit == nil {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "No circuit breaker configured"})
		return
	}
	s.circuit.ResetCircuit()
	s.logger.Info("Circuit breaker reset via admin endpoint")
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
