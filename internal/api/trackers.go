package api

import (
	"net/http"
	"time"

	"github.com/patrickwarner/onboardingcta/internal/cta"
	"github.com/patrickwarner/onboardingcta/internal/middleware"
	"github.com/patrickwarner/onboardingcta/internal/models"

	"go.uber.org/zap"
)

type trackersRequest struct {
	Events []models.TrackingEvent `json:"events"`
	Host   string                 `json:"host,omitempty"`
}

type textResponse struct {
	Text    string `json:"text"`
	Network string `json:"network,omitempty"`
}

// TrackersTextHandler handles POST /trackers/text.
func (s *Server) TrackersTextHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "trackers_text"
	const method = "POST"

	var req trackersRequest
	if err := decodeJSON(w, r, &req); err != nil {
		middleware.LoggerFromRequest(r, s.Logger).Warn("decode trackers request", zap.Error(err))
		http.Error(w, "invalid body", http.StatusBadRequest)
		s.finish(endpoint, method, http.StatusBadRequest, start)
		return
	}

	h := cta.NewHelper(nil, nil, s.Logger, s.Metrics)
	writeJSON(w, http.StatusOK, textResponse{Text: h.TrackersBlockedText(s.Resources, req.Events)})
	s.finish(endpoint, method, http.StatusOK, start)
}

// MainNetworkHandler handles POST /trackers/main-network. It responds 404 when
// no blocked event belongs to a main network.
func (s *Server) MainNetworkHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "main_network"
	const method = "POST"
	logger := middleware.LoggerFromRequest(r, s.Logger)

	var req trackersRequest
	if err := decodeJSON(w, r, &req); err != nil {
		logger.Warn("decode main network request", zap.Error(err))
		http.Error(w, "invalid body", http.StatusBadRequest)
		s.finish(endpoint, method, http.StatusBadRequest, start)
		return
	}

	h := cta.NewHelper(nil, nil, s.Logger, s.Metrics)
	network, ok := h.MainNetworkName(req.Events)
	if !ok {
		http.Error(w, "no main network", http.StatusNotFound)
		s.finish(endpoint, method, http.StatusNotFound, start)
		return
	}
	text, err := h.MainNetworkText(s.Resources, network, req.Host)
	if err != nil {
		logger.Error("main network text", zap.String("network", network), zap.Error(err))
		http.Error(w, "no main network", http.StatusNotFound)
		s.finish(endpoint, method, http.StatusNotFound, start)
		return
	}
	writeJSON(w, http.StatusOK, textResponse{Text: text, Network: network})
	s.finish(endpoint, method, http.StatusOK, start)
}
