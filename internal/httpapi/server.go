// Package httpapi exposes the inquiry and health services over HTTP.
package httpapi

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	goahttp "goa.design/goa/v3/http"
	"goa.design/goa/v3/http/middleware"
	goa "goa.design/goa/v3/pkg"

	"lavishtravels/internal/config"
	"lavishtravels/internal/logger"
	"lavishtravels/internal/metrics"
	"lavishtravels/internal/services"
)

// Routes served by Server.
const (
	inquiryPath = "/api/inquiry"
	healthPath  = "/health"
	rootPath    = "/"
	metricsPath = "/metrics"
)

// InquirySubmitter handles one inquiry submission.
type InquirySubmitter interface {
	Submit(ctx context.Context, p *services.SubmitPayload) (*services.SubmitResult, error)
}

// HealthChecker serves the health and root endpoints.
type HealthChecker interface {
	Check(ctx context.Context) (*services.HealthResult, error)
	Info(ctx context.Context) (*services.InfoResult, error)
}

// Server wires the services onto a goa muxer.
type Server struct {
	cfg     *config.Config
	inquiry InquirySubmitter
	health  HealthChecker
	limiter *RateLimiter
}

// New creates a new HTTP server for the given services
func New(cfg *config.Config, inquiry InquirySubmitter, health HealthChecker) *Server {
	return &Server{
		cfg:     cfg,
		inquiry: inquiry,
		health:  health,
		limiter: NewRateLimiter(cfg.RateLimit.PerMinute, cfg.RateLimit.TrustedProxies),
	}
}

// Mount registers the endpoints on mux.
func (s *Server) Mount(mux goahttp.Muxer) {
	mux.Handle(http.MethodPost, inquiryPath, s.limiter.Wrap(s.submitInquiry))
	mux.Handle(http.MethodGet, healthPath, s.checkHealth)
	mux.Handle(http.MethodGet, rootPath, s.info)
	mux.Handle(http.MethodGet, metricsPath, promhttp.Handler().ServeHTTP)
}

// Handler returns the complete handler: muxer plus middleware chain
// Security -> CORS -> Prometheus -> RequestID -> Logging -> Handler.
func (s *Server) Handler() http.Handler {
	mux := goahttp.NewMuxer()
	s.Mount(mux)

	var h http.Handler = mux
	h = requestLogging(h)
	h = middleware.PopulateRequestContext()(h)
	h = middleware.RequestID(middleware.UseXRequestIDHeaderOption(true))(h)
	h = metrics.PrometheusMiddleware(h, inquiryPath, healthPath, rootPath)
	h = setupCORS(h, &s.cfg.CORS)
	h = setupSecurityHeaders(h, &s.cfg.App)
	return h
}

func (s *Server) submitInquiry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body services.SubmitPayload
	payload := &body
	if err := goahttp.RequestDecoder(r).Decode(&body); err != nil {
		if !errors.Is(err, io.EOF) {
			s.writeError(ctx, w, services.MakeBadRequest(goa.DecodePayloadError(err.Error())))
			return
		}
		payload = nil
	}

	res, err := s.inquiry.Submit(ctx, payload)
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}
	s.encode(ctx, w, http.StatusOK, res)
}

func (s *Server) checkHealth(w http.ResponseWriter, r *http.Request) {
	res, err := s.health.Check(r.Context())
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	s.encode(r.Context(), w, http.StatusOK, res)
}

func (s *Server) info(w http.ResponseWriter, r *http.Request) {
	res, err := s.health.Info(r.Context())
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	s.encode(r.Context(), w, http.StatusOK, res)
}

func (s *Server) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status, body := services.ErrorResponse(err)
	if status >= http.StatusInternalServerError {
		logger.From(ctx).Error("request failed", logger.Component("http"), logger.Err(err))
	}
	s.encode(ctx, w, status, body)
}

func (s *Server) encode(ctx context.Context, w http.ResponseWriter, status int, v any) {
	enc := goahttp.ResponseEncoder(ctx, w)
	w.WriteHeader(status)
	if err := enc.Encode(v); err != nil {
		logger.From(ctx).Error("failed to encode response", logger.Component("http"), logger.Err(err))
	}
}
