package http

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// DebugServer exposes metrics and health
type DebugServer struct {
	handler http.Handler
	server  *http.Server
	logger  *logrus.Logger
}

type healthResponse struct {
	Status         string `json:"status"`
	CounterBackend string `json:"counter_backend"`
}

func NewDebugServer(gatherer prometheus.Gatherer, counterBackend string, logger *logrus.Logger, opts ...Option) *DebugServer {
	o := options{listen: ":2830"}
	for _, opt := range opts {
		opt(&o)
	}

	router := httprouter.New()
	router.Handler(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	router.GET("/healthz", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(healthResponse{Status: "ok", CounterBackend: counterBackend}); err != nil {
			logger.WithError(err).Error("could not encode health response")
		}
	})

	return &DebugServer{
		handler: router,
		server: &http.Server{
			Addr:    o.listen,
			Handler: router,
		},
		logger: logger,
	}
}

func (s *DebugServer) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	s.handler.ServeHTTP(w, req)
}

func (s *DebugServer) Start() error {
	s.logger.WithField("addr", s.server.Addr).Info("debug server listening")
	return serve(s.server)
}

func (s *DebugServer) Stop(err error) {
	shutdown(s.server, s.logger)
}
