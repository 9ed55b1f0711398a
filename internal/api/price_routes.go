package api

import (
	"net/http"

	"github.com/314yush/yolo-backend/internal/avantis"
)

func (s *Server) handlePairs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"pairs": avantis.Pairs(),
	})
}

// handlePrice serves GET /v1/prices/{pair...}; the wildcard is needed
// because pair names carry a slash (BTC/USD).
func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	pair := r.PathValue("pair")
	if _, ok := avantis.PairIndex(pair); !ok {
		writeError(w, http.StatusNotFound, "unknown pair "+pair)
		return
	}

	point, err := s.prices.GetPrice(r.Context(), pair)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, point)
}
