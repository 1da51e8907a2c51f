package api

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// HealthHandler responds with a simple status check.
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "health"
	const method = "GET"

	status := "ok"
	if s.Store == nil || s.Store.Client == nil {
		status = "degraded"
	} else if err := s.Store.Client.Ping(r.Context()).Err(); err != nil {
		s.Logger.Warn("health redis ping", zap.Error(err))
		status = "degraded"
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": status})
	s.finish(endpoint, method, http.StatusOK, start)
}
