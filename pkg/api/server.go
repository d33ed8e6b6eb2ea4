package api

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/openbid/openbidapi/pkg/pusher/sources"
	"github.com/openbid/openbidapi/pkg/pusher/sse"
	"github.com/openbid/openbidapi/pkg/pusher/websocket"
)

type Server struct {
	logger     *zap.Logger
	httpServer *http.Server
}

type httpMiddleware func(http.Handler) http.Handler

type ServerOptions struct {
	httpMiddleware []httpMiddleware
	bidSource      sources.BidSource
}

type ServerOption func(options *ServerOptions)

func WithHttpMiddleware(m ...httpMiddleware) ServerOption {
	return func(options *ServerOptions) {
		options.httpMiddleware = m
	}
}

// WithBidSource mounts the streaming endpoints on top of the given feed.
func WithBidSource(source sources.BidSource) ServerOption {
	return func(options *ServerOptions) {
		options.bidSource = source
	}
}

func NewServer(log *zap.Logger, handler *Handler, address string, opts ...ServerOption) (*Server, error) {
	options := &ServerOptions{}
	for _, o := range opts {
		o(options)
	}

	router := mux.NewRouter()
	router.HandleFunc("/v1/auctions", handler.CreateAuction).Methods(http.MethodPost)
	router.HandleFunc("/v1/auctions", handler.GetAllAuctions).Methods(http.MethodGet)
	router.HandleFunc("/v1/auctions/{id}", handler.GetAuction).Methods(http.MethodGet)
	router.HandleFunc("/v1/auctions/{id}/bid", handler.PlaceBid).Methods(http.MethodPost)
	router.HandleFunc("/v1/auctions/{id}/end", handler.EndAuction).Methods(http.MethodPost)
	router.HandleFunc("/v1/accounts/{id}/assets", handler.GetUserAssets).Methods(http.MethodGet)
	router.HandleFunc("/v1/accounts/{id}/balance", handler.GetBalance).Methods(http.MethodGet)
	router.HandleFunc("/v1/accounts/{id}/withdrawals/claim", handler.ClaimWithdrawal).Methods(http.MethodPost)

	if options.bidSource != nil {
		sseHandler := sse.NewHandler(options.bidSource)
		router.Handle("/v1/sse/auctions/bids", sse.Stream(sseHandler.SubscribeToBids)).Methods(http.MethodGet)
		router.Handle("/v1/ws", websocket.Handler(log, options.bidSource)).Methods(http.MethodGet)
	}

	router.Use(loggingMiddleware(log), metricsMiddleware)
	for _, md := range options.httpMiddleware {
		router.Use(mux.MiddlewareFunc(md))
	}

	serv := Server{
		logger: log,
		httpServer: &http.Server{
			Addr:    address,
			Handler: router,
		},
	}
	return &serv, nil
}

func (s *Server) Run() {
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		s.logger.Info("openbidapi quit")
		return
	}
	s.logger.Fatal("ListenAndServe() failed", zap.Error(err))
}
