package api

import (
	"net/http"
	"time"

	"github.com/patrickwarner/onboardingcta/internal/middleware"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type installResponse struct {
	InstallID   string `json:"install_id"`
	InstalledAt int64  `json:"installed_at"`
	Created     bool   `json:"created"`
}

// RegisterInstallHandler handles POST /installs/{id}. The first call stores
// the install time; later calls return the stored one.
func (s *Server) RegisterInstallHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "install"
	const method = "POST"
	logger := middleware.LoggerFromRequest(r, s.Logger)

	if s.Store == nil {
		logger.Error("redis store unavailable")
		http.Error(w, "store unavailable", http.StatusServiceUnavailable)
		s.finish(endpoint, method, http.StatusServiceUnavailable, start)
		return
	}

	id := mux.Vars(r)["id"]
	created, err := s.Store.RegisterInstall(r.Context(), id, s.now())
	if err != nil {
		logger.Error("register install", zap.String("install_id", id), zap.Error(err))
		s.Metrics.IncrementStoreErrors("register_install")
		http.Error(w, "store error", http.StatusInternalServerError)
		s.finish(endpoint, method, http.StatusInternalServerError, start)
		return
	}
	ts, err := s.Store.InstallTimestamp(r.Context(), id)
	if err != nil {
		logger.Error("read install", zap.String("install_id", id), zap.Error(err))
		s.Metrics.IncrementStoreErrors("read_install")
		http.Error(w, "store error", http.StatusInternalServerError)
		s.finish(endpoint, method, http.StatusInternalServerError, start)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
		logger.Info("install registered", zap.String("install_id", id))
	}
	writeJSON(w, status, installResponse{InstallID: id, InstalledAt: ts.UnixMilli(), Created: created})
	s.finish(endpoint, method, status, start)
}
