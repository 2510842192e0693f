package httpinterface

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/stocksim-network/stocksim-daemon/internal/core/application"
	"github.com/stocksim-network/stocksim-daemon/internal/core/domain"
)

type orderRequest struct {
	Ticker    string          `json:"ticker"`
	Side      string          `json:"side"`
	Quantity  int64           `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Owner     string          `json:"owner"`
	Execution string          `json:"execution"`
}

type cancelRequest struct {
	Ticker   string          `json:"ticker"`
	Side     string          `json:"side"`
	Quantity int64           `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Owner    string          `json:"owner"`
}

type newMarketRequest struct {
	Ticker       string          `json:"ticker"`
	BaseReserve  decimal.Decimal `json:"baseReserve"`
	QuoteReserve decimal.Decimal `json:"quoteReserve"`
	PriceFloor   decimal.Decimal `json:"priceFloor"`
	PriceCeil    decimal.Decimal `json:"priceCeil"`
}

type createAccountRequest struct {
	ID      string          `json:"id"`
	Balance decimal.Decimal `json:"balance"`
}

type depositRequest struct {
	ID     string          `json:"id"`
	Cash   decimal.Decimal `json:"cash"`
	Ticker string          `json:"ticker"`
	Shares int64           `json:"shares"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Service) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := s.trade.PlaceOrder(r.Context(), application.OrderRequest{
		Ticker:    req.Ticker,
		Side:      req.Side,
		Quantity:  req.Quantity,
		Price:     req.Price,
		Owner:     req.Owner,
		Execution: req.Execution,
	})
	ordersTotal.WithLabelValues(req.Side, req.Execution, statusLabel(err)).Inc()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	fillsTotal.Add(float64(len(result.Fills)))

	writeJSON(w, http.StatusOK, result)
}

func (s *Service) cancelOrder(w http.ResponseWriter, r *http.Request) {
	var req cancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.trade.CancelOrder(r.Context(), application.CancelRequest{
		Ticker:   req.Ticker,
		Side:     req.Side,
		Quantity: req.Quantity,
		Price:    req.Price,
		Owner:    req.Owner,
	}); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct{}{})
}

func (s *Service) getQuotes(w http.ResponseWriter, r *http.Request) {
	quotes, err := s.trade.GetQuotes(r.Context(), r.URL.Query().Get("ticker"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quotes)
}

func (s *Service) getBook(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if query.Get("top") != "" {
		best, err := s.trade.GetTopOfBook(
			r.Context(), query.Get("ticker"), query.Get("side"),
		)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, best)
		return
	}

	orders, err := s.trade.GetBook(
		r.Context(), query.Get("ticker"), query.Get("side"),
	)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (s *Service) newMarket(w http.ResponseWriter, r *http.Request) {
	var req newMarketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	info, err := s.operator.NewMarket(
		r.Context(), req.Ticker,
		req.BaseReserve, req.QuoteReserve, req.PriceFloor, req.PriceCeil,
	)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Service) listMarkets(w http.ResponseWriter, r *http.Request) {
	if ticker := r.URL.Query().Get("ticker"); ticker != "" {
		info, err := s.operator.GetMarket(r.Context(), ticker)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, info)
		return
	}

	infos, err := s.operator.ListMarkets(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, infos)
}

func (s *Service) createAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	info, err := s.operator.CreateAccount(r.Context(), req.ID, req.Balance)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Service) getAccount(w http.ResponseWriter, r *http.Request) {
	info, err := s.operator.GetAccount(r.Context(), r.URL.Query().Get("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Service) deposit(w http.ResponseWriter, r *http.Request) {
	var req depositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	info, err := s.operator.Deposit(
		r.Context(), req.ID, req.Cash, req.Ticker, req.Shares,
	)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Service) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.operator.ListOrders(r.Context(), r.URL.Query().Get("owner"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// writeDomainError maps engine errors onto HTTP statuses. Stale-price and
// no-liquidity answers carry 409 so clients know a retry with fresh quotes
// may succeed.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrMarketNotExist),
		errors.Is(err, domain.ErrAccountNotExist),
		errors.Is(err, domain.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, application.ErrTradePriceStale),
		errors.Is(err, application.ErrTradeNoLiquidity):
		writeError(w, http.StatusConflict, err)
	case errors.Is(err, domain.ErrMarketAlreadyExist),
		errors.Is(err, domain.ErrAccountAlreadyExist):
		writeError(w, http.StatusConflict, err)
	case errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, domain.ErrInsufficientInventory):
		writeError(w, http.StatusUnprocessableEntity, err)
	default:
		writeError(w, http.StatusBadRequest, err)
	}
}

func statusLabel(err error) string {
	if err != nil {
		return "rejected"
	}
	return "accepted"
}
