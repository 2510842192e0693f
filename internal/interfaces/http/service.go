package httpinterface

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/stocksim-network/stocksim-daemon/internal/core/application"
)

// Service exposes the trade and operator services over a JSON HTTP API, plus
// the websocket event feed and prometheus metrics.
type Service struct {
	trade     application.TradeService
	operator  application.OperatorService
	wsHandler http.HandlerFunc
	server    *http.Server
}

func NewService(
	port int,
	trade application.TradeService,
	operator application.OperatorService,
	wsHandler http.HandlerFunc,
) *Service {
	s := &Service{
		trade:     trade,
		operator:  operator,
		wsHandler: wsHandler,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/orders", s.route(map[string]http.HandlerFunc{
		http.MethodPost: s.placeOrder,
		http.MethodGet:  s.listOrders,
	}))
	mux.HandleFunc("/v1/orders/cancel", s.route(map[string]http.HandlerFunc{
		http.MethodPost: s.cancelOrder,
	}))
	mux.HandleFunc("/v1/quotes", s.route(map[string]http.HandlerFunc{
		http.MethodGet: s.getQuotes,
	}))
	mux.HandleFunc("/v1/book", s.route(map[string]http.HandlerFunc{
		http.MethodGet: s.getBook,
	}))
	mux.HandleFunc("/v1/markets", s.route(map[string]http.HandlerFunc{
		http.MethodPost: s.newMarket,
		http.MethodGet:  s.listMarkets,
	}))
	mux.HandleFunc("/v1/accounts", s.route(map[string]http.HandlerFunc{
		http.MethodPost: s.createAccount,
		http.MethodGet:  s.getAccount,
	}))
	mux.HandleFunc("/v1/accounts/deposit", s.route(map[string]http.HandlerFunc{
		http.MethodPost: s.deposit,
	}))
	if wsHandler != nil {
		mux.HandleFunc("/ws", wsHandler)
	}
	mux.Handle("/metrics", promhttp.Handler())

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	return s
}

// Start blocks serving the API until Stop is called.
func (s *Service) Start() error {
	log.Infof("http interface listening on %s", s.server.Addr)
	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// route dispatches by method and records the request latency.
func (s *Service) route(handlers map[string]http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		handler, ok := handlers[r.Method]
		if !ok {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		start := time.Now()
		handler(w, r)
		requestDuration.WithLabelValues(r.URL.Path).Observe(
			time.Since(start).Seconds(),
		)
	}
}
