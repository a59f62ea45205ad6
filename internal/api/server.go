// Package api serves the admin REST interface over HTTP.
package api

import (
	"context"
	"io"
	"net/http"
	"time"

	"roomadmin/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

// Exporter renders the XLSX report.
type Exporter interface {
	Write(ctx context.Context, w io.Writer) error
	Filename() string
}

// Options tune the HTTP layer.
type Options struct {
	AllowedOrigins []string
	// RatePerSecond of zero disables per-client limiting.
	RatePerSecond float64
	RateBurst     int
	PageSize      int
}

// Server wires HTTP routes to the services.
type Server struct {
	svc      *service.Services
	exporter Exporter
	opts     Options
	logger   *zerolog.Logger
	limiter  *rateLimiter
}

// NewServer builds the API. exporter may be nil, in which case the export route answers 404.
func NewServer(svc *service.Services, exporter Exporter, opts Options, logger *zerolog.Logger) *Server {
	l := logger.With().Str("component", "api").Logger()
	s := &Server{
		svc:      svc,
		exporter: exporter,
		opts:     opts,
		logger:   &l,
	}
	if opts.RatePerSecond > 0 {
		burst := opts.RateBurst
		if burst < 1 {
			burst = 1
		}
		s.limiter = newRateLimiter(opts.RatePerSecond, burst)
	}
	return s
}

// Handler returns the root handler with middleware applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog(s.logger))
	r.Use(middleware.Recoverer)
	if s.limiter != nil {
		r.Use(s.limiter.Limit)
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/rooms", func(r chi.Router) {
			r.Get("/", s.listRooms)
			r.Post("/", s.createRoom)
			r.Get("/available", s.availableRooms)
			r.Get("/{id}", s.getRoom)
			r.Put("/{id}", s.updateRoom)
			r.Delete("/{id}", s.deleteRoom)
			r.Put("/{id}/status", s.setRoomStatus)
			r.Get("/{id}/calendar", s.roomCalendar)
		})
		r.Route("/users", func(r chi.Router) {
			r.Get("/", s.listUsers)
			r.Post("/", s.createUser)
			r.Get("/email-suggestion", s.suggestEmail)
			r.Get("/{id}", s.getUser)
			r.Put("/{id}", s.updateUser)
			r.Delete("/{id}", s.deleteUser)
			r.Get("/{id}/bookings", s.userBookings)
		})
		r.Route("/bookings", func(r chi.Router) {
			r.Get("/", s.listBookings)
			r.Post("/", s.createBooking)
			r.Get("/quote", s.quote)
			r.Get("/{id}", s.getBooking)
			r.Put("/{id}", s.updateBooking)
			r.Delete("/{id}", s.deleteBooking)
		})
		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/", s.dashboard)
			r.Get("/series", s.series)
			r.Get("/revenue", s.revenue)
		})
		r.Get("/export.xlsx", s.exportReport)
	})

	if len(s.opts.AllowedOrigins) == 0 {
		return r
	}
	c := cors.New(cors.Options{
		AllowedOrigins:   s.opts.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "X-Request-Id"},
		AllowCredentials: true,
	})
	return c.Handler(r)
}

// NewHTTPServer wraps the handler with the timeouts used in production.
func (s *Server) NewHTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
