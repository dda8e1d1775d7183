package network

import (
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	logging "github.com/inconshreveable/log15"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"

	"github.com/tokenvote/tokenvote/lib/common"
	"github.com/tokenvote/tokenvote/lib/metrics"
	"github.com/tokenvote/tokenvote/lib/network/api"
	"github.com/tokenvote/tokenvote/lib/network/api/resource"
	"github.com/tokenvote/tokenvote/lib/network/httpcache"
)

var log logging.Logger = logging.New("module", "network")

func init() {
	SetLogging(common.DefaultLogLevel, common.DefaultLogHandler)
}

func SetLogging(level logging.Lvl, handler logging.Handler) {
	log.SetHandler(logging.LvlFilterHandler(level, handler))
}

type ServerConfig struct {
	Bind string

	ReadTimeout,
	ReadHeaderTimeout,
	WriteTimeout,
	IdleTimeout time.Duration

	TLSCertFile,
	TLSKeyFile string
}

func NewServerConfig(bind string) ServerConfig {
	return ServerConfig{
		Bind:              bind,
		ReadTimeout:       0,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      0,
		IdleTimeout:       5 * time.Second,
	}
}

// Server serves the voting API over HTTP/2 capable TLS, or plain
// HTTP/1.1 when no certificate is configured.
type Server struct {
	config  ServerConfig
	server  *http.Server
	router  *mux.Router
	handler *api.NetworkHandlerAPI
}

func NewServer(config ServerConfig, handler *api.NetworkHandlerAPI, processConfig common.Config, cache *httpcache.Client) (*Server, error) {
	server := &http.Server{
		Addr:              config.Bind,
		ReadTimeout:       config.ReadTimeout,
		ReadHeaderTimeout: config.ReadHeaderTimeout,
		WriteTimeout:      config.WriteTimeout,
	}
	server.SetKeepAlivesEnabled(true)

	if err := http2.ConfigureServer(server, &http2.Server{
		IdleTimeout: config.IdleTimeout,
	}); err != nil {
		return nil, err
	}

	s := &Server{
		config:  config,
		server:  server,
		router:  mux.NewRouter(),
		handler: handler,
	}
	s.addRoutes(processConfig, cache)

	server.Handler = handlers.CombinedLoggingHandler(logWriter{}, s.router)
	return s, nil
}

func (s *Server) addRoutes(processConfig common.Config, cache *httpcache.Client) {
	s.router.Use(RecoverMiddleware(log, false))
	s.router.Use(RequestIDMiddleware())

	apiRouter := s.router.PathPrefix(resource.APIPrefix + resource.APIVersionV1).Subrouter()
	apiRouter.Use(RateLimitMiddleware(log, processConfig.RateLimitRuleAPI))
	apiRouter.Use(MetricsMiddleware(metrics.API))

	cached := func(handlerFunc http.HandlerFunc) http.HandlerFunc {
		if cache == nil {
			return handlerFunc
		}
		return cache.WrapHandlerFunc(handlerFunc)
	}

	apiRouter.HandleFunc(api.GetBallotHandlerPattern, s.handler.GetBallotHandler).Methods("GET")
	apiRouter.HandleFunc(api.PostBallotHandlerPattern, s.handler.PostBallotHandler).Methods("POST")
	apiRouter.HandleFunc(api.PublishBallotHandlerPattern, s.handler.PublishBallotHandler).Methods("POST")
	apiRouter.HandleFunc(api.GetResultsHandlerPattern, cached(s.handler.GetResultsHandler)).Methods("GET")
	apiRouter.HandleFunc(api.GetProjectsHandlerPattern, cached(s.handler.GetProjectsHandler)).Methods("GET")
	apiRouter.HandleFunc(api.GetProjectHandlerPattern, cached(s.handler.GetProjectHandler)).Methods("GET")
	apiRouter.HandleFunc(api.GetPayoutsHandlerPattern, cached(s.handler.GetPayoutsHandler)).Methods("GET")
	apiRouter.HandleFunc(api.GetExportHandlerPattern, s.handler.GetExportHandler).Methods("GET")
	apiRouter.HandleFunc(api.RoundConfigHandlerPattern, s.handler.GetRoundConfigHandler).Methods("GET")
	apiRouter.HandleFunc(api.RoundConfigHandlerPattern, s.handler.PutRoundConfigHandler).Methods("PUT")
	apiRouter.HandleFunc(api.StreamHandlerPattern, s.handler.StreamHandler).Methods("GET")

	s.router.Handle("/metrics", promhttp.Handler())
	s.router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func (s *Server) Start() error {
	log.Info("server started", "bind", s.config.Bind, "tls", len(s.config.TLSCertFile) > 0)
	var err error
	if len(s.config.TLSCertFile) > 0 {
		err = s.server.ListenAndServeTLS(s.config.TLSCertFile, s.config.TLSKeyFile)
	} else {
		err = s.server.ListenAndServe()
	}
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) Stop() error {
	return s.server.Close()
}

// Router is exposed for handler tests.
func (s *Server) Router() *mux.Router {
	return s.router
}

type logWriter struct{}

func (logWriter) Write(b []byte) (int, error) {
	log.Debug("access", "entry", string(b))
	return len(b), nil
}
