package http

import (
	"context"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/klauspost/compress/gzhttp"
	"github.com/kujenga/peekaboo/pkg/page"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 5 * time.Second

type options struct {
	listen         string
	requestTimeout time.Duration
}

type Option func(*options)

// WithListen sets the address the server listens on
func WithListen(addr string) Option {
	return func(o *options) {
		o.listen = addr
	}
}

// WithRequestTimeout bounds the handling time of every request
func WithRequestTimeout(d time.Duration) Option {
	return func(o *options) {
		o.requestTimeout = d
	}
}

// Server serves the visitor pages and images
type Server struct {
	handler http.Handler
	server  *http.Server
	logger  *logrus.Logger
}

func New(
	counter Counter,
	settings SettingsProvider,
	pages *page.Renderer,
	logger *logrus.Logger,
	registerer prometheus.Registerer,
	opts ...Option) *Server {

	o := options{
		listen:         ":2829",
		requestTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(&o)
	}

	h := &peekHandler{
		counter:  counter,
		settings: settings,
		pages:    pages,
		logger:   logger,
	}
	metrics := newMetricsMiddleware(registerer)

	router := httprouter.New()
	router.GET("/", metrics.Handler("index", h.handleIndex))
	router.GET("/peek/:id", metrics.Handler("peek", h.handlePeek))
	router.GET("/peek/:id/info", metrics.Handler("peek_info", h.handlePeekInfo))

	handler := gzhttp.GzipHandler(http.TimeoutHandler(router, o.requestTimeout, "Request took too long"))

	return &Server{
		handler: handler,
		server: &http.Server{
			Addr:    o.listen,
			Handler: handler,
		},
		logger: logger,
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	s.handler.ServeHTTP(w, req)
}

// Start listens and serves until Stop is called
func (s *Server) Start() error {
	s.logger.WithField("addr", s.server.Addr).Info("http server listening")
	return serve(s.server)
}

func (s *Server) Stop(err error) {
	shutdown(s.server, s.logger)
}

func serve(server *http.Server) error {
	err := server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func shutdown(server *http.Server, logger *logrus.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).WithField("addr", server.Addr).Error("could not shutdown server")
	}
}
