// Package httpapi exposes the paylink services over a JSON HTTP API. The
// layer is deliberately thin: it decodes requests, delegates to the
// services, and maps domain errors to status codes.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/paylink/internal/logging"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	server *http.Server
	logger logging.Logger
}

// NewServer builds the router and wraps it in an http.Server ready to run.
func NewServer(addr string, secretKey []byte, handler *Handler, logger logging.Logger) *Server {
	return &Server{
		server: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(secretKey, handler, logger),
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger.With("module", "http_server"),
	}
}

// NewRouter wires every route of the public API.
func NewRouter(secretKey []byte, handler *Handler, logger logging.Logger) *mux.Router {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.HandleFunc("/health", handler.HealthCheckHandler).Methods("GET")

	apiV1 := r.PathPrefix("/api/v1").Subrouter()
	apiV1.Use(observeMiddleware(logger), authMiddleware(secretKey))

	apiV1.HandleFunc("/signup", handler.SignUpHandler).Methods("POST")
	apiV1.HandleFunc("/payids/{payId}/available", handler.AliasAvailableHandler).Methods("GET")
	apiV1.HandleFunc("/payids/{payId}", handler.ResolveAliasHandler).Methods("GET")
	apiV1.HandleFunc("/data", handler.FetchDataHandler).Methods("GET")

	apiV1.HandleFunc("/chats", handler.CreateChatHandler).Methods("POST")
	apiV1.HandleFunc("/chats", handler.MyChatsHandler).Methods("GET")
	apiV1.HandleFunc("/chats/{id}", handler.GetChatHandler).Methods("GET")
	apiV1.HandleFunc("/chats/{id}/messages", handler.AddMessageHandler).Methods("POST")
	apiV1.HandleFunc("/chats/{id}/read", handler.MarkReadHandler).Methods("POST")
	apiV1.HandleFunc("/chats/{id}/requests", handler.RequestPaymentHandler).Methods("POST")
	apiV1.HandleFunc("/chats/{id}/requests/{index}/record", handler.RecordRequestedPaymentHandler).Methods("POST")

	apiV1.HandleFunc("/transfers", handler.RecordTransferHandler).Methods("POST")

	apiV1.HandleFunc("/businesses", handler.AddBusinessHandler).Methods("POST")
	apiV1.HandleFunc("/businesses/me/transactions", handler.NewTransactionsHandler).Methods("GET")

	return r
}

// Run serves until the listener fails or Shutdown is called.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info(ctx, "starting http server", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
