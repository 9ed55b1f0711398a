package api

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/314yush/yolo-backend/internal/avantis"
	"github.com/314yush/yolo-backend/internal/models"
	"github.com/314yush/yolo-backend/internal/pnl"
)

type txResponse struct {
	Tx models.UnsignedTransaction `json:"tx"`
}

// resolvePair fills in whichever of pair name and pair index the
// request omitted. A provided name wins over the index.
func resolvePair(pair *string, pairIndex *int64) error {
	if *pair != "" {
		idx, ok := avantis.PairIndex(*pair)
		if !ok {
			return fmt.Errorf("unknown pair %q", *pair)
		}
		*pairIndex = idx
		return nil
	}
	name, ok := avantis.PairName(*pairIndex)
	if !ok {
		return fmt.Errorf("unknown pair index %d", *pairIndex)
	}
	*pair = name
	return nil
}

func (s *Server) handleOpenTrade(w http.ResponseWriter, r *http.Request) {
	var req models.OpenTradeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := resolvePair(&req.Pair, &req.PairIndex); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tx, err := s.builder.BuildOpenTrade(r.Context(), req)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	if s.notify != nil {
		go s.notify.TradeBuilt("open", req.Pair, req.Trader)
	}
	writeJSON(w, http.StatusOK, txResponse{Tx: tx})
}

func (s *Server) handleCloseTrade(w http.ResponseWriter, r *http.Request) {
	var req models.CloseTradeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	tx, err := s.builder.BuildCloseTrade(r.Context(), req)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	if s.notify != nil {
		pair, _ := avantis.PairName(req.PairIndex)
		go s.notify.TradeBuilt("close", pair, req.Trader)
	}
	writeJSON(w, http.StatusOK, txResponse{Tx: tx})
}

func (s *Server) handleUpdateTPSL(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateTPSLRequest
	if !decodeBody(w, r, &req) {
		return
	}

	tx, err := s.builder.BuildUpdateTPSL(r.Context(), req)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, txResponse{Tx: tx})
}

func (s *Server) handleOpenTrades(w http.ResponseWriter, r *http.Request) {
	trader, ok := pathAddress(w, r, "address")
	if !ok {
		return
	}

	positions, err := s.reader.OpenPositions(r.Context(), trader)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	if positions == nil {
		positions = []models.Position{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"trader": trader,
		"trades": positions,
		"count":  len(positions),
	})
}

func (s *Server) handleTradesPnL(w http.ResponseWriter, r *http.Request) {
	trader, ok := pathAddress(w, r, "address")
	if !ok {
		return
	}

	positions, err := s.reader.OpenPositions(r.Context(), trader)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	pairs := make([]string, 0, len(positions))
	seen := make(map[string]bool)
	for _, pos := range positions {
		if !seen[pos.Pair] {
			seen[pos.Pair] = true
			pairs = append(pairs, pos.Pair)
		}
	}
	prices := s.prices.GetPrices(r.Context(), pairs)

	// Positions whose pair has no price at all are dropped from the
	// report rather than failing the request.
	results := make([]models.PnLResult, 0, len(positions))
	for _, pos := range positions {
		point, ok := prices[pos.Pair]
		if !ok {
			s.logger.Debug("skipping position without a price",
				zap.String("pair", pos.Pair),
				zap.Int64("trade_index", pos.TradeIndex))
			continue
		}
		result, err := pnl.ComputePnL(pos, point.Price, 0)
		if err != nil {
			s.logger.Warn("pnl computation failed",
				zap.String("pair", pos.Pair),
				zap.Int64("trade_index", pos.TradeIndex),
				zap.Error(err))
			continue
		}
		results = append(results, result)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"trader":    trader,
		"positions": results,
		"count":     len(results),
	})
}
