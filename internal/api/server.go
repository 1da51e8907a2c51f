package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/patrickwarner/onboardingcta/internal/analytics"
	"github.com/patrickwarner/onboardingcta/internal/config"
	"github.com/patrickwarner/onboardingcta/internal/cta"
	"github.com/patrickwarner/onboardingcta/internal/db"
	"github.com/patrickwarner/onboardingcta/internal/middleware"
	"github.com/patrickwarner/onboardingcta/internal/observability"
	"github.com/patrickwarner/onboardingcta/internal/pixel"
	"github.com/patrickwarner/onboardingcta/internal/resources"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// Server groups dependencies for HTTP handlers.
type Server struct {
	Logger    *zap.Logger
	Store     *db.RedisStore
	Recorder  analytics.PixelRecorder
	Resources resources.Provider
	Metrics   observability.MetricsRegistry
	Config    config.Config
	now       func() time.Time
}

// NewServer constructs a Server. recorder may be nil when pixel storage is
// not configured.
func NewServer(logger *zap.Logger, store *db.RedisStore, recorder analytics.PixelRecorder, res resources.Provider, metrics observability.MetricsRegistry, cfg config.Config) *Server {
	if res == nil {
		res = resources.English()
	}
	return &Server{
		Logger:    logger,
		Store:     store,
		Recorder:  recorder,
		Resources: res,
		Metrics:   metrics,
		Config:    cfg,
		now:       time.Now,
	}
}

// Routes registers every handler on r.
func (s *Server) Routes(r *mux.Router) {
	r.Use(middleware.WithRequestLogger(s.Logger))

	r.HandleFunc("/health", s.HealthHandler).Methods("GET")

	r.HandleFunc("/installs/{id}", s.RegisterInstallHandler).Methods("POST")
	r.HandleFunc("/installs/{id}/ctas/{code}/shown", s.CtaShownHandler).Methods("POST")
	r.HandleFunc("/installs/{id}/ctas/{code}/ok", s.CtaOkHandler).Methods("POST")
	r.HandleFunc("/installs/{id}/ctas/{code}/cancel", s.CtaCancelHandler).Methods("POST")
	r.HandleFunc("/installs/{id}/ctas/{code}/eligible", s.CtaEligibleHandler).Methods("GET")

	r.HandleFunc("/trackers/text", s.TrackersTextHandler).Methods("POST")
	r.HandleFunc("/trackers/main-network", s.MainNetworkHandler).Methods("POST")

	r.HandleFunc("/networks/same", s.SameNetworkHandler).Methods("GET")
	r.HandleFunc("/networks/{name}/percentage", s.NetworkPercentageHandler).Methods("GET")
}

// helper returns a CTA helper bound to the installation's stores.
func (s *Server) helper(scope db.InstallScope) *cta.Helper {
	return s.helperFor(scope, scope)
}

func (s *Server) helperFor(journey cta.OnboardingStore, install cta.InstallStore) *cta.Helper {
	h := cta.NewHelper(journey, install, s.Logger, s.Metrics)
	h.SetClock(s.now)
	return h
}

// recordPixel hands p to the recorder. Failures are logged and counted but
// never surface to the caller.
func (s *Server) recordPixel(ctx context.Context, logger *zap.Logger, p *pixel.Pixel) bool {
	if p == nil {
		return false
	}
	if !s.Config.PixelsEnabled || s.Recorder == nil {
		logger.Debug("pixel not recorded", zap.String("pixel", p.Name), zap.Any("params", p.Params))
		s.Metrics.IncrementPixels(p.Name, "skipped")
		return false
	}
	if err := s.Recorder.Record(ctx, p); err != nil {
		if !errors.Is(err, analytics.ErrUnavailable) {
			logger.Error("record pixel", zap.String("pixel", p.Name), zap.Error(err))
		}
		return false
	}
	logger.Info("pixel recorded",
		zap.String("pixel", p.Name),
		zap.String("install_id", p.InstallID),
		zap.Any("params", p.Params),
	)
	return true
}

// finish records request metrics for a handled request.
func (s *Server) finish(endpoint, method string, status int, start time.Time) {
	s.Metrics.IncrementRequests(endpoint, method, strconv.Itoa(status))
	s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	return dec.Decode(v)
}
