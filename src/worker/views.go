package worker

import (
	"net/http"
	"time"

	"assetmanager/src/metrics"
	"assetmanager/src/worker/handlers"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

type Server struct {
	Router   *chi.Mux
	Handler  *handlers.Handler
	gatherer prometheus.Gatherer
}

func NewServer(handler *handlers.Handler, gatherer prometheus.Gatherer) *Server {
	server := &Server{
		Router:   chi.NewRouter(),
		Handler:  handler,
		gatherer: gatherer,
	}
	server.Router.Use(middleware.RequestID)
	server.Router.Use(middleware.Recoverer)
	server.InitRoutes()
	return server
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

func (s *Server) InitRoutes() {
	s.Router.Get("/alive", handlers.Healthcheck)
	s.Router.Method(http.MethodGet, "/metrics", metrics.Handler(s.gatherer))
	s.Router.Route("/api", func(r chi.Router) {
		r.Get("/ingestion/status", s.Handler.GetIngestionStatus)
		r.Post("/exchange-rates/refresh", s.Handler.RefreshExchangeRates)
		r.Post("/rollup", s.Handler.Rollup)
	})
}

func NewHTTPServer(server *Server, port string) *http.Server {
	httpServer := &http.Server{
		Addr:         ":" + port,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		Handler:      server,
	}
	return httpServer
}
