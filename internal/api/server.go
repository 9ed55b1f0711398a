package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/314yush/yolo-backend/internal/models"
)

const Version = "1.0.0"

const maxBodyBytes = 1 << 20

// txBuilder assembles the unsigned transactions the API hands back.
type txBuilder interface {
	BuildOpenTrade(ctx context.Context, req models.OpenTradeRequest) (models.UnsignedTransaction, error)
	BuildCloseTrade(ctx context.Context, req models.CloseTradeRequest) (models.UnsignedTransaction, error)
	BuildUpdateTPSL(ctx context.Context, req models.UpdateTPSLRequest) (models.UnsignedTransaction, error)
	BuildSetDelegate(req models.SetDelegateRequest) (models.UnsignedTransaction, error)
	BuildRemoveDelegate() (models.UnsignedTransaction, error)
	BuildApproval() (models.UnsignedTransaction, error)
}

// chainReader serves on-chain state lookups.
type chainReader interface {
	Delegate(ctx context.Context, trader string) (string, error)
	OpenPositions(ctx context.Context, trader string) ([]models.Position, error)
	USDCAllowance(ctx context.Context, trader string) (float64, error)
}

// priceReader serves cached prices.
type priceReader interface {
	GetPrice(ctx context.Context, pair string) (models.PricePoint, error)
	GetPrices(ctx context.Context, pairs []string) map[string]models.PricePoint
}

// notifier fans out trade-built events. Calls must not block handlers.
type notifier interface {
	TradeBuilt(action, pair, trader string)
}

type Server struct {
	builder txBuilder
	reader  chainReader
	prices  priceReader
	notify  notifier
	logger  *zap.Logger

	tradingAddress  string
	minAllowanceUSD float64
	apiKey          string
	httpServer      *http.Server
}

type Options struct {
	Port            int
	APIKey          string
	CORSAllowOrigin string
	TradingAddress  string
	MinAllowanceUSD float64
}

func NewServer(builder txBuilder, reader chainReader, prices priceReader, notify notifier, opts Options, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		builder:         builder,
		reader:          reader,
		prices:          prices,
		notify:          notify,
		logger:          logger,
		tradingAddress:  opts.TradingAddress,
		minAllowanceUSD: opts.MinAllowanceUSD,
		apiKey:          opts.APIKey,
	}

	mux := http.NewServeMux()

	// Trade routes
	mux.HandleFunc("POST /v1/trade/open", s.handleOpenTrade)
	mux.HandleFunc("POST /v1/trade/close", s.handleCloseTrade)
	mux.HandleFunc("POST /v1/trade/update-tpsl", s.handleUpdateTPSL)
	mux.HandleFunc("GET /v1/trades/{address}", s.handleOpenTrades)
	mux.HandleFunc("GET /v1/trades/{address}/pnl", s.handleTradesPnL)

	// Delegation routes
	mux.HandleFunc("POST /v1/delegate/setup", s.handleDelegateSetup)
	mux.HandleFunc("POST /v1/delegate/remove", s.handleDelegateRemove)
	mux.HandleFunc("GET /v1/delegate/status/{trader}", s.handleDelegateStatus)
	mux.HandleFunc("POST /v1/delegate/approve-usdc", s.handleApproveUSDC)
	mux.HandleFunc("GET /v1/delegate/allowance/{trader}", s.handleAllowance)
	mux.HandleFunc("GET /v1/delegate/trading-contract", s.handleTradingContract)

	// Price routes
	mux.HandleFunc("GET /v1/pairs", s.handlePairs)
	mux.HandleFunc("GET /v1/prices/{pair...}", s.handlePrice)

	// Health check (no auth required)
	mux.HandleFunc("GET /health", s.handleHealth)

	handler := s.authMiddleware(corsMiddleware(mux, opts.CORSAllowOrigin))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", opts.Port),
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s
}

// Handler exposes the routing stack for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) Start() error {
	s.logger.Info("REST API listening",
		zap.String("addr", s.httpServer.Addr),
		zap.Bool("auth", s.apiKey != ""))
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// --- middleware ---

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey == "" || r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		auth := r.Header.Get("Authorization")
		if auth == "" {
			writeError(w, http.StatusUnauthorized, "missing Authorization header")
			return
		}

		token := strings.TrimPrefix(auth, "Bearer ")
		if token == auth || token != s.apiKey {
			writeError(w, http.StatusUnauthorized, "invalid API key")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func corsMiddleware(next http.Handler, allowOrigin string) http.Handler {
	if allowOrigin == "" {
		allowOrigin = "*"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// --- request helpers ---

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// pathAddress pulls and validates an address path segment, writing the
// 400 itself when the segment is not an address.
func pathAddress(w http.ResponseWriter, r *http.Request, segment string) (string, bool) {
	addr := r.PathValue(segment)
	if !common.IsHexAddress(addr) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid address %q", addr))
		return "", false
	}
	return addr, true
}

// --- response helpers ---

// statusForError maps the sentinel taxonomy onto HTTP statuses.
// Validation and encoding problems are the client's (422), a missing
// price is 400 unless the upstream timed out (408), and chain or fee
// failures are ours (500).
func statusForError(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidAmount),
		errors.Is(err, models.ErrInvalidLeverage),
		errors.Is(err, models.ErrInvalidPosition),
		errors.Is(err, models.ErrEncoding):
		return http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrPriceUnavailable):
		if errors.Is(err, context.DeadlineExceeded) {
			return http.StatusRequestTimeout
		}
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err))
	} else {
		s.logger.Debug("request rejected",
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err))
	}
	writeError(w, status, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"detail": msg})
}
