package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/patrickwarner/onboardingcta/internal/cta"
	"github.com/patrickwarner/onboardingcta/internal/db"
	"github.com/patrickwarner/onboardingcta/internal/middleware"
	"github.com/patrickwarner/onboardingcta/internal/observability"
	"github.com/patrickwarner/onboardingcta/internal/pixel"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "onboardingcta"

type shownResponse struct {
	Code      string `json:"code"`
	PixelSent bool   `json:"pixel_sent"`
	History   string `json:"history,omitempty"`
}

type interactionResponse struct {
	Code      string `json:"code"`
	Pixel     string `json:"pixel,omitempty"`
	PixelSent bool   `json:"pixel_sent"`
}

type eligibleResponse struct {
	Code     string `json:"code"`
	Eligible bool   `json:"eligible"`
}

func startSpan(r *http.Request, name, route string) (context.Context, trace.Span) {
	return observability.Tracer(tracerName).Start(r.Context(), name,
		trace.WithAttributes(
			attribute.String("http.method", r.Method),
			attribute.String("http.route", route),
		))
}

// ctaRequest resolves the installation scope and CTA kind of a request,
// writing the error response itself when either is unusable.
func (s *Server) ctaRequest(w http.ResponseWriter, r *http.Request, span trace.Span, endpoint string, start time.Time) (db.InstallScope, cta.Kind, bool) {
	vars := mux.Vars(r)
	span.SetAttributes(
		attribute.String("install_id", vars["id"]),
		attribute.String("cta.code", vars["code"]),
	)
	if s.Store == nil {
		middleware.LoggerFromRequest(r, s.Logger).Error("redis store unavailable")
		span.SetStatus(codes.Error, "store unavailable")
		http.Error(w, "store unavailable", http.StatusServiceUnavailable)
		s.finish(endpoint, r.Method, http.StatusServiceUnavailable, start)
		return db.InstallScope{}, 0, false
	}
	kind, err := cta.ParseKind(vars["code"])
	if err != nil {
		middleware.LoggerFromRequest(r, s.Logger).Warn("unknown cta", zap.String("code", vars["code"]))
		span.RecordError(err)
		span.SetStatus(codes.Error, "unknown cta")
		http.Error(w, "unknown cta", http.StatusNotFound)
		s.finish(endpoint, r.Method, http.StatusNotFound, start)
		return db.InstallScope{}, 0, false
	}
	span.SetAttributes(attribute.String("cta.family", kind.Family().String()))
	return s.Store.Install(vars["id"]), kind, true
}

// CtaShownHandler handles POST /installs/{id}/ctas/{code}/shown. The first
// time a history-tracking CTA is shown its journey entry is persisted and its
// shown pixel recorded; repeats are acknowledged without either. The journey
// is read and written under WATCH so concurrent reports of the same CTA fire
// one pixel.
func (s *Server) CtaShownHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r, "CtaShownHandler", "/installs/{id}/ctas/{code}/shown")
	defer span.End()

	start := time.Now()
	const endpoint = "cta_shown"
	logger := middleware.LoggerFromRequest(r, s.Logger)

	scope, kind, ok := s.ctaRequest(w, r, span, endpoint, start)
	if !ok {
		return
	}

	client := pixel.ResolveClient(r.UserAgent())
	var res pixel.ShownResult
	err := scope.UpdateJourney(ctx, func(journey cta.OnboardingStore) (string, error) {
		builder := pixel.NewBuilder(s.helperFor(journey, scope), scope.ID(), client)
		res = builder.Shown(ctx, kind)
		return res.History, nil
	})
	if err != nil {
		logger.Error("save journey", zap.String("install_id", scope.ID()), zap.Error(err))
		op := "save_journey"
		if errors.Is(err, db.ErrJourneyContention) {
			op = "journey_contention"
		}
		s.Metrics.IncrementStoreErrors(op)
		span.RecordError(err)
		span.SetStatus(codes.Error, "store error")
		http.Error(w, "store error", http.StatusInternalServerError)
		s.finish(endpoint, r.Method, http.StatusInternalServerError, start)
		return
	}

	sent := false
	if res.Send {
		sent = s.recordPixel(ctx, logger, res.Pixel)
	}
	span.SetAttributes(
		attribute.Bool("pixel_sent", sent),
		attribute.String("cta.history", res.History),
	)
	writeJSON(w, http.StatusOK, shownResponse{Code: kind.Code(), PixelSent: sent, History: res.History})
	s.finish(endpoint, r.Method, http.StatusOK, start)
}

// CtaOkHandler handles POST /installs/{id}/ctas/{code}/ok.
func (s *Server) CtaOkHandler(w http.ResponseWriter, r *http.Request) {
	s.interaction(w, r, "cta_ok", "CtaOkHandler", "/installs/{id}/ctas/{code}/ok",
		func(b *pixel.Builder, k cta.Kind) *pixel.Pixel { return b.Ok(k) })
}

// CtaCancelHandler handles POST /installs/{id}/ctas/{code}/cancel.
func (s *Server) CtaCancelHandler(w http.ResponseWriter, r *http.Request) {
	s.interaction(w, r, "cta_cancel", "CtaCancelHandler", "/installs/{id}/ctas/{code}/cancel",
		func(b *pixel.Builder, k cta.Kind) *pixel.Pixel { return b.Cancel(k) })
}

func (s *Server) interaction(w http.ResponseWriter, r *http.Request, endpoint, spanName, route string, build func(*pixel.Builder, cta.Kind) *pixel.Pixel) {
	ctx, span := startSpan(r, spanName, route)
	defer span.End()

	start := time.Now()
	logger := middleware.LoggerFromRequest(r, s.Logger)

	scope, kind, ok := s.ctaRequest(w, r, span, endpoint, start)
	if !ok {
		return
	}

	p := build(pixel.NewBuilder(s.helper(scope), scope.ID(), pixel.ResolveClient(r.UserAgent())), kind)
	resp := interactionResponse{Code: kind.Code()}
	if p != nil {
		resp.Pixel = p.Name
		resp.PixelSent = s.recordPixel(ctx, logger, p)
	}
	span.SetAttributes(
		attribute.String("pixel.name", resp.Pixel),
		attribute.Bool("pixel_sent", resp.PixelSent),
	)
	writeJSON(w, http.StatusOK, resp)
	s.finish(endpoint, r.Method, http.StatusOK, start)
}

// CtaEligibleHandler handles GET /installs/{id}/ctas/{code}/eligible.
func (s *Server) CtaEligibleHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r, "CtaEligibleHandler", "/installs/{id}/ctas/{code}/eligible")
	defer span.End()

	start := time.Now()
	const endpoint = "cta_eligible"

	scope, kind, ok := s.ctaRequest(w, r, span, endpoint, start)
	if !ok {
		return
	}

	eligible := s.helper(scope).CanSendPixel(ctx, kind)
	span.SetAttributes(attribute.Bool("eligible", eligible))
	writeJSON(w, http.StatusOK, eligibleResponse{Code: kind.Code(), Eligible: eligible})
	s.finish(endpoint, r.Method, http.StatusOK, start)
}
