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
	"github.com/lomoval/ai-calendar/internal/app"
	"github.com/lomoval/ai-calendar/internal/assistant"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	Host string
	Port int
}

type Assistant interface {
	Interpret(ctx context.Context, message string, now time.Time) (assistant.Result, error)
}

type Option func(s *Server)

// WithClock replaces the wall clock handed to the assistant.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithLocation sets the zone used for the assistant clock and the ics feed.
func WithLocation(loc *time.Location) Option {
	return func(s *Server) { s.location = loc }
}

type Server struct {
	srv       *http.Server
	addr      string
	app       *app.App
	assistant Assistant
	metrics   *metrics
	now       func() time.Time
	location  *time.Location
	handler   http.Handler
}

func NewServer(config Config, app *app.App, assistant Assistant, opts ...Option) *Server {
	s := &Server{
		addr:      net.JoinHostPort(config.Host, strconv.Itoa(config.Port)),
		app:       app,
		assistant: assistant,
		metrics:   newMetrics(),
		now:       time.Now,
		location:  time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}

	mux := runtime.NewServeMux(runtime.WithRoutingErrorHandler(routingErrorHandler))
	s.register(mux)
	s.handler = loggingMiddleware(mux)
	s.srv = &http.Server{Addr: s.addr, Handler: s.handler, ReadHeaderTimeout: 10 * time.Second}
	return s
}

// Handler returns the routed handler with middlewares applied.
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

func (s *Server) register(mux *runtime.ServeMux) {
	s.handle(mux, http.MethodGet, "/events", s.listEvents)
	s.handle(mux, http.MethodPost, "/events", s.createEvent)
	s.handle(mux, http.MethodGet, "/events.ics", s.exportEvents)
	s.handle(mux, http.MethodGet, "/events/{id}", s.getEvent)
	s.handle(mux, http.MethodPut, "/events/{id}", s.updateEvent)
	s.handle(mux, http.MethodDelete, "/events/{id}", s.removeEvent)
	s.handle(mux, http.MethodPost, "/assistant", s.askAssistant)
	s.handle(mux, http.MethodGet, "/metrics", s.metrics.serve)
}

func (s *Server) handle(mux *runtime.ServeMux, method, pattern string, h runtime.HandlerFunc) {
	if err := mux.HandlePath(method, pattern, s.metrics.instrument(method, pattern, h)); err != nil {
		// Patterns are constants, a failure here is a programming error.
		panic(fmt.Sprintf("failed to register %s %s: %v", method, pattern, err))
	}
}

func routingErrorHandler(
	_ context.Context,
	_ *runtime.ServeMux,
	_ runtime.Marshaler,
	w http.ResponseWriter,
	_ *http.Request,
	_ int,
) {
	writeError(w, http.StatusNotFound, "Not found.")
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
