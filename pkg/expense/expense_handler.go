package expense

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/samkassa/samkassa/internal/rest"
	log "github.com/sirupsen/logrus"
)

type ExpenseDTO struct {
	Id                 int      `json:"id"`
	Date               string   `json:"date"`
	Amount             float64  `json:"amount"`
	Description        string   `json:"description,omitempty"`
	CategoryId         int      `json:"categoryId"`
	PaidByUserId       int      `json:"paidByUserId"`
	SplitType          string   `json:"splitType"`
	SplitRatioUser1    *float64 `json:"splitRatioUser1,omitempty"`
	SplitRatioUser2    *float64 `json:"splitRatioUser2,omitempty"`
	RecurringExpenseId *int     `json:"recurringExpenseId,omitempty"`
}

type ListResponseDTO struct {
	Scope    string       `json:"scope"`
	Expenses []ExpenseDTO `json:"expenses"`
}

type Handler struct {
	expenseService Service
}

func NewHandler(expenseService Service) *Handler {
	return &Handler{expenseService: expenseService}
}

// List godoc
// @Summary List expenses for a scope
// @Tags Expense
// @Produce json
// @Param scope query string false "ours, mine or partner (default ours)"
// @Param startDate query string false "YYYY-MM-DD"
// @Param endDate query string false "YYYY-MM-DD"
// @Param categoryId query int false "Category filter"
// @Success 200 {object} ListResponseDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid date format"
// @Router /api/expense [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	query := ListQuery{
		Scope:     r.URL.Query().Get("scope"),
		StartDate: r.URL.Query().Get("startDate"),
		EndDate:   r.URL.Query().Get("endDate"),
	}
	if categoryParam := r.URL.Query().Get("categoryId"); categoryParam != "" {
		categoryId, err := strconv.Atoi(categoryParam)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "Invalid categoryId"})
			return
		}
		query.CategoryId = &categoryId
	}

	expenses, resolved, err := h.expenseService.List(r.Context(), query)
	if err != nil {
		if errors.Is(err, ErrInvalidDate) {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "Dates must match YYYY-MM-DD"})
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dtos := make([]ExpenseDTO, 0, len(expenses))
	for _, e := range expenses {
		dtos = append(dtos, expenseToDTO(e))
	}
	response := ListResponseDTO{Scope: string(resolved.Name), Expenses: dtos}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating new expense")
	w.Header().Set("Content-Type", "application/json")

	var dto ExpenseDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "Invalid request body format"})
		return
	}
	expense, err := dtoToExpense(dto)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(rest.ErrorResponse{Error: err.Error()})
		return
	}

	created, err := h.expenseService.Create(r.Context(), expense)
	if err != nil {
		if errors.Is(err, ErrInvalidAmount) || errors.Is(err, ErrInvalidSplitRatio) {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(rest.ErrorResponse{Error: err.Error()})
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(expenseToDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var dto ExpenseDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "Invalid request body format"})
		return
	}
	dto.Id = id
	expense, err := dtoToExpense(dto)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(rest.ErrorResponse{Error: err.Error()})
		return
	}

	updated, err := h.expenseService.Update(r.Context(), expense)
	if err != nil {
		switch {
		case errors.Is(err, ErrExpenseNotFound):
			http.Error(w, "Expense not found", http.StatusNotFound)
		case errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrInvalidSplitRatio):
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(rest.ErrorResponse{Error: err.Error()})
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	if err := json.NewEncoder(w).Encode(expenseToDTO(updated)); err != nil {
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

	if err := h.expenseService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrExpenseNotFound) {
			http.Error(w, "Expense not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func expenseToDTO(e Expense) ExpenseDTO {
	return ExpenseDTO{
		Id:                 e.Id,
		Date:               e.Date.Format(dateLayout),
		Amount:             e.Amount,
		Description:        e.Description,
		CategoryId:         e.CategoryId,
		PaidByUserId:       e.PaidByUserId,
		SplitType:          string(e.SplitType),
		SplitRatioUser1:    e.SplitRatioUser1,
		SplitRatioUser2:    e.SplitRatioUser2,
		RecurringExpenseId: e.RecurringExpenseId,
	}
}

func dtoToExpense(dto ExpenseDTO) (Expense, error) {
	var date time.Time
	if dto.Date != "" {
		parsed, err := ParseDate(dto.Date)
		if err != nil {
			return Expense{}, err
		}
		date = parsed
	}
	return Expense{
		Id:              dto.Id,
		Date:            date,
		Amount:          dto.Amount,
		Description:     dto.Description,
		CategoryId:      dto.CategoryId,
		PaidByUserId:    dto.PaidByUserId,
		SplitType:       ParseSplitType(dto.SplitType),
		SplitRatioUser1: dto.SplitRatioUser1,
		SplitRatioUser2: dto.SplitRatioUser2,
	}, nil
}
