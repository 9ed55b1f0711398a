package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/314yush/yolo-backend/internal/models"
)

func (s *Server) handleDelegateSetup(w http.ResponseWriter, r *http.Request) {
	var req models.SetDelegateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !common.IsHexAddress(req.Trader) {
		s.writeFailure(w, r, fmt.Errorf("%w: invalid trader address %q", models.ErrEncoding, req.Trader))
		return
	}

	tx, err := s.builder.BuildSetDelegate(req)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, txResponse{Tx: tx})
}

func (s *Server) handleDelegateRemove(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Trader string `json:"trader"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if !common.IsHexAddress(req.Trader) {
		s.writeFailure(w, r, fmt.Errorf("%w: invalid trader address %q", models.ErrEncoding, req.Trader))
		return
	}

	tx, err := s.builder.BuildRemoveDelegate()
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, txResponse{Tx: tx})
}

func (s *Server) handleDelegateStatus(w http.ResponseWriter, r *http.Request) {
	trader, ok := pathAddress(w, r, "trader")
	if !ok {
		return
	}

	current, err := s.reader.Delegate(r.Context(), trader)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	isSetup := current != ""
	// With ?delegate= the caller asks about a specific delegate, not
	// just whether any delegation exists.
	if want := r.URL.Query().Get("delegate"); want != "" && isSetup {
		isSetup = strings.EqualFold(current, want)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"trader":           trader,
		"delegate_address": current,
		"is_setup":         isSetup,
	})
}

func (s *Server) handleApproveUSDC(w http.ResponseWriter, r *http.Request) {
	var req models.ApprovalRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !common.IsHexAddress(req.Trader) {
		s.writeFailure(w, r, fmt.Errorf("%w: invalid trader address %q", models.ErrEncoding, req.Trader))
		return
	}

	tx, err := s.builder.BuildApproval()
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, txResponse{Tx: tx})
}

func (s *Server) handleAllowance(w http.ResponseWriter, r *http.Request) {
	trader, ok := pathAddress(w, r, "trader")
	if !ok {
		return
	}

	allowance, err := s.reader.USDCAllowance(r.Context(), trader)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"trader":         trader,
		"allowance":      allowance,
		"has_sufficient": allowance >= s.minAllowanceUSD,
		"min_required":   s.minAllowanceUSD,
	})
}

func (s *Server) handleTradingContract(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"address": s.tradingAddress})
}
