package budget

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/samkassa/samkassa/internal/rest"
)

type BudgetDTO struct {
	Id         int     `json:"id"`
	CategoryId int     `json:"categoryId"`
	Month      int     `json:"month"`
	Year       int     `json:"year"`
	Amount     float64 `json:"amount"`
}

type Handler struct {
	budgetService Service
}

func NewHandler(budgetService Service) *Handler {
	return &Handler{budgetService: budgetService}
}

// List godoc
// @Summary List budgets for a month
// @Tags Budget
// @Produce json
// @Param year query int true "Year"
// @Param month query int true "Month (1-12)"
// @Success 200 {array} BudgetDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid year or month"
// @Router /api/budget [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "Invalid year"})
		return
	}
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "Invalid month"})
		return
	}

	budgets, err := h.budgetService.ListMonth(r.Context(), year, time.Month(month))
	if err != nil {
		if errors.Is(err, ErrInvalidMonth) {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(rest.ErrorResponse{Error: err.Error()})
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dtos := make([]BudgetDTO, 0, len(budgets))
	for _, budget := range budgets {
		dtos = append(dtos, budgetToDTO(budget))
	}
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// Set creates the budget or overwrites the amount of an existing one for the
// same category and month.
func (h *Handler) Set(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var dto BudgetDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "Invalid request body format"})
		return
	}

	budget, err := h.budgetService.Set(r.Context(), dtoToBudget(dto))
	if err != nil {
		if errors.Is(err, ErrInvalidAmount) || errors.Is(err, ErrInvalidMonth) {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(rest.ErrorResponse{Error: err.Error()})
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := json.NewEncoder(w).Encode(budgetToDTO(budget)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.budgetService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrBudgetNotFound) {
			http.Error(w, "Budget not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func budgetToDTO(b Budget) BudgetDTO {
	return BudgetDTO{
		Id:         b.Id,
		CategoryId: b.CategoryId,
		Month:      int(b.Month),
		Year:       b.Year,
		Amount:     b.Amount,
	}
}

func dtoToBudget(dto BudgetDTO) Budget {
	return Budget{
		Id:         dto.Id,
		CategoryId: dto.CategoryId,
		Month:      time.Month(dto.Month),
		Year:       dto.Year,
		Amount:     dto.Amount,
	}
}
