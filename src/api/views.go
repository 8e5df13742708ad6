package api

import (
	"net/http"
	"time"

	"assetmanager/src/api/handlers"
	"assetmanager/src/config"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
)

type Server struct {
	Router  *chi.Mux
	Handler *handlers.Handler
}

func NewServer(handler *handlers.Handler, cfg *config.Config) *Server {
	server := &Server{
		Router:  chi.NewRouter(),
		Handler: handler,
	}
	server.Router.Use(middleware.RequestID)
	server.Router.Use(middleware.Recoverer)
	server.Router.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.Service.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler)
	server.InitRoutes()
	return server
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

func (s *Server) InitRoutes() {
	s.Router.Get("/alive", handlers.Healthcheck)

	s.Router.Route("/api/auth/v1", func(r chi.Router) {
		r.Post("/refresh", s.Handler.Refresh)
		r.Post("/{provider}", s.Handler.Login)
	})

	s.Router.Route("/api/v1", func(r chi.Router) {
		r.Get("/bank-accounts", s.Handler.GetBankAccounts)
		r.Get("/stocks", s.Handler.GetStocks)
		r.Get("/dummy/assetstock", s.Handler.GetDummyStockAssets)

		r.Group(func(r chi.Router) {
			r.Use(s.Handler.Authenticator)
			r.Get("/assetstock", s.Handler.GetStockAssets)
			r.Post("/assetstock", s.Handler.CreateStockAssets)
			r.Put("/assetstock", s.Handler.UpdateStockAssets)
			r.Delete("/assetstock/{asset_id}", s.Handler.DeleteStockAsset)
		})
	})
}

func NewHTTPServer(server *Server, port string) *http.Server {
	httpServer := &http.Server{
		Addr:         ":" + port,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		Handler:      server,
	}
	return httpServer
}
