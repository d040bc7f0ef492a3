package settlement

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/samkassa/samkassa/internal/rest"
	"github.com/samkassa/samkassa/pkg/expense"
)

type Handler struct {
	settlementService Service
}

func NewHandler(settlementService Service) *Handler {
	return &Handler{settlementService: settlementService}
}

// GetSettlement godoc
// @Summary Compute who owes whom
// @Tags Settlement
// @Produce json
// @Param scope query string false "ours, mine or partner (default ours)"
// @Param startDate query string false "YYYY-MM-DD"
// @Param endDate query string false "YYYY-MM-DD"
// @Success 200 {object} Payload
// @Failure 400 {object} rest.ErrorResponse "Invalid date format"
// @Router /api/settlement [get]
func (h *Handler) GetSettlement(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	payload, err := h.settlementService.GetSettlement(r.Context(), Query{
		Scope:     r.URL.Query().Get("scope"),
		StartDate: r.URL.Query().Get("startDate"),
		EndDate:   r.URL.Query().Get("endDate"),
	})
	if err != nil {
		if errors.Is(err, expense.ErrInvalidDate) {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "Dates must match YYYY-MM-DD"})
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}
