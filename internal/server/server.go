// Package server exposes the sourcing pipeline over HTTP.
//
// One operation: POST /api/v1/source takes {vin, searchTerm, mode} and
// returns either a success envelope with the vehicle, per-vendor part
// groups and ranked pricing options, or {success: false, error: {code,
// message}} with a status derived from the error code.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/torqueline/partsource/pkg/errors"
	"github.com/torqueline/partsource/pkg/marketplace"
	"github.com/torqueline/partsource/pkg/matching"
	"github.com/torqueline/partsource/pkg/sourcing"
)

// Sourcer runs one sourcing request. sourcing.Runner implements it.
type Sourcer interface {
	Source(ctx context.Context, req sourcing.Request) (*sourcing.Result, error)
}

// Server is the HTTP front end.
type Server struct {
	sourcer Sourcer
	logger  *log.Logger
}

// New creates a server around a sourcer.
func New(sourcer Sourcer, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{sourcer: sourcer, logger: logger}
}

// Handler builds the route tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Post("/api/v1/source", s.handleSource)
	return r
}

type sourceSuccess struct {
	Success      bool                        `json:"success"`
	Vehicle      marketplace.VehicleIdentity `json:"vehicle"`
	Vendors      []sourcing.VendorGroup      `json:"vendors"`
	TotalVendors int                         `json:"totalVendors"`
	TotalParts   int                         `json:"totalParts"`
	DurationMs   int64                       `json:"durationMs"`
	Options      []matching.PricingOption    `json:"options,omitempty"`
}

type sourceFailure struct {
	Success bool        `json:"success"`
	Error   errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) handleSource(w http.ResponseWriter, r *http.Request) {
	var req sourcing.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "malformed request body"))
		return
	}

	result, err := s.sourcer.Source(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sourceSuccess{
		Success:      true,
		Vehicle:      result.Vehicle,
		Vendors:      result.Vendors,
		TotalVendors: result.TotalVendors,
		TotalParts:   result.TotalParts,
		DurationMs:   result.Duration.Milliseconds(),
		Options:      result.Options,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	writeJSON(w, statusFor(code), sourceFailure{
		Error: errorDetail{Code: string(code), Message: errors.UserMessage(err)},
	})
}

// statusFor maps the error taxonomy onto HTTP statuses: caller mistakes are
// 4xx, upstream marketplace trouble is 502, the wall-clock threshold is 504.
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidVin, errors.ErrCodeInvalidMode:
		return http.StatusBadRequest
	case errors.ErrCodeVinNotFound, errors.ErrCodePartTypeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeAuthFailed, errors.ErrCodeSessionExpired,
		errors.ErrCodeSearchFailed, errors.ErrCodeNetwork:
		return http.StatusBadGateway
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"requestId", middleware.GetReqID(r.Context()))
	})
}
