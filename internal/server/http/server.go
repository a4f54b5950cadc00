package internalhttp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"github.com/lomoval/personal-calendar/internal/app"
	log "github.com/sirupsen/logrus"
)

const (
	ModeProduction  = "production"
	ModeDevelopment = "development"
)

type Config struct {
	Host string
	Port int
	// Mode controls whether internal error messages reach clients.
	Mode string
}

type Server struct {
	srv     *http.Server
	addr    string
	handler http.Handler
}

func NewServer(config Config, app *app.App) (*Server, error) {
	h := &handlers{app: app, responder: responder{development: config.Mode == ModeDevelopment}}

	mux := runtime.NewServeMux()
	routes := []struct {
		method  string
		pattern string
		handler runtime.HandlerFunc
	}{
		{http.MethodGet, "/health", h.health},
		{http.MethodGet, "/api/events/{year}/{month}", h.listEvents},
		{http.MethodGet, "/api/events/{year}/{month}/ics", h.exportMonth},
		{http.MethodGet, "/api/events/{id}", h.getEvent},
		{http.MethodPost, "/api/events", h.createEvent},
		{http.MethodPut, "/api/events/{id}", h.updateEvent},
		{http.MethodDelete, "/api/events/{id}", h.deleteEvent},
		{http.MethodGet, "/api/calendar/{year}/{month}", h.monthGrid},
	}
	for _, r := range routes {
		if err := mux.HandlePath(r.method, r.pattern, r.handler); err != nil {
			return nil, fmt.Errorf("failed to register %s %s: %w", r.method, r.pattern, err)
		}
	}

	addr := net.JoinHostPort(config.Host, strconv.Itoa(config.Port))
	handler := corsMiddleware(loggingMiddleware(mux))
	return &Server{
		addr:    addr,
		handler: handler,
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Handler returns the routed handler with all middlewares applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) Start(_ context.Context) error {
	log.Printf("starting http server on %s", s.addr)
	err := s.srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server failed: %w", err)
	}

	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func getIP(req *http.Request) (string, error) {
	ip, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		return "", fmt.Errorf("userip: %q is not IP:port", req.RemoteAddr)
	}

	if parsed := net.ParseIP(ip); parsed == nil {
		return "", fmt.Errorf("userip: %q is not IP:port", req.RemoteAddr)
	}
	return ip, nil
}
