package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/patrickwarner/onboardingcta/internal/cta"

	"github.com/gorilla/mux"
)

// NetworkPercentageHandler handles GET /networks/{name}/percentage.
func (s *Server) NetworkPercentageHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "network_percentage"
	const method = "GET"

	name := mux.Vars(r)["name"]
	pct, err := cta.GetNetworkPercentage(name)
	if errors.Is(err, cta.ErrNetworkNotFound) {
		http.Error(w, "network not found", http.StatusNotFound)
		s.finish(endpoint, method, http.StatusNotFound, start)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"network": name, "percentage": pct})
	s.finish(endpoint, method, http.StatusOK, start)
}

// SameNetworkHandler handles GET /networks/same?domain=.
func (s *Server) SameNetworkHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "network_same"
	const method = "GET"

	domain := r.URL.Query().Get("domain")
	if domain == "" {
		http.Error(w, "domain required", http.StatusBadRequest)
		s.finish(endpoint, method, http.StatusBadRequest, start)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"domain": domain, "same_network": cta.IsFromSameNetworkDomain(domain)})
	s.finish(endpoint, method, http.StatusOK, start)
}
