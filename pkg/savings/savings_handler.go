package savings

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/samkassa/samkassa/internal/rest"
	"github.com/samkassa/samkassa/pkg/expense"
)

type GoalDTO struct {
	Id            int     `json:"id"`
	Name          string  `json:"name"`
	TargetAmount  float64 `json:"targetAmount"`
	CurrentAmount float64 `json:"currentAmount"`
	TargetDate    *string `json:"targetDate,omitempty"`
}

type ContributionDTO struct {
	Id        int     `json:"id"`
	GoalId    int     `json:"goalId"`
	UserId    int     `json:"userId"`
	Amount    float64 `json:"amount"`
	Note      string  `json:"note,omitempty"`
	CreatedAt string  `json:"createdAt"`
}

type ContributeRequestDTO struct {
	Amount float64 `json:"amount"`
	Note   string  `json:"note"`
}

type ContributeResponseDTO struct {
	Contribution    ContributionDTO `json:"contribution"`
	Capped          bool            `json:"capped"`
	RemainingBefore float64         `json:"remainingBefore"`
}

type Handler struct {
	savingsService Service
}

func NewHandler(savingsService Service) *Handler {
	return &Handler{savingsService: savingsService}
}

func (h *Handler) ListGoals(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	goals, err := h.savingsService.ListGoals(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dtos := make([]GoalDTO, 0, len(goals))
	for _, goal := range goals {
		dtos = append(dtos, goalToDTO(goal))
	}
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var dto GoalDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "Invalid request body format"})
		return
	}
	goal, err := dtoToGoal(dto)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(rest.ErrorResponse{Error: err.Error()})
		return
	}

	created, err := h.savingsService.CreateGoal(r.Context(), goal)
	if err != nil {
		if errors.Is(err, ErrInvalidTarget) {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(rest.ErrorResponse{Error: err.Error()})
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(goalToDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) UpdateGoal(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var dto GoalDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "Invalid request body format"})
		return
	}
	dto.Id = id
	goal, err := dtoToGoal(dto)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(rest.ErrorResponse{Error: err.Error()})
		return
	}

	updated, err := h.savingsService.UpdateGoal(r.Context(), goal)
	if err != nil {
		switch {
		case errors.Is(err, ErrGoalNotFound):
			http.Error(w, "Goal not found", http.StatusNotFound)
		case errors.Is(err, ErrInvalidTarget):
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(rest.ErrorResponse{Error: err.Error()})
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	if err := json.NewEncoder(w).Encode(goalToDTO(updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) DeleteGoal(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.savingsService.DeleteGoal(r.Context(), id); err != nil {
		if errors.Is(err, ErrGoalNotFound) {
			http.Error(w, "Goal not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Contribute godoc
// @Summary Add a contribution to a goal
// @Description Positive amounts are clamped to the remaining capacity, negative ones never take the saved total below zero.
// @Tags Savings
// @Accept json
// @Produce json
// @Param id path int true "Goal ID"
// @Param request body ContributeRequestDTO true "Contribution"
// @Success 200 {object} ContributeResponseDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid amount"
// @Failure 404 {string} string "Goal not found"
// @Router /api/savings/{id}/contribution [post]
func (h *Handler) Contribute(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var dto ContributeRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "Invalid request body format"})
		return
	}

	result, err := h.savingsService.Contribute(r.Context(), id, dto.Amount, dto.Note)
	if err != nil {
		switch {
		case errors.Is(err, ErrGoalNotFound):
			http.Error(w, "Goal not found", http.StatusNotFound)
		case errors.Is(err, ErrInvalidAmount):
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(rest.ErrorResponse{Error: err.Error()})
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	response := ContributeResponseDTO{
		Contribution:    contributionToDTO(result.Contribution),
		Capped:          result.Capped,
		RemainingBefore: result.RemainingBefore,
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) ListContributions(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	contributions, err := h.savingsService.ListContributions(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrGoalNotFound) {
			http.Error(w, "Goal not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dtos := make([]ContributionDTO, 0, len(contributions))
	for _, contribution := range contributions {
		dtos = append(dtos, contributionToDTO(contribution))
	}
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) DeleteContribution(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["contributionId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.savingsService.DeleteContribution(r.Context(), id); err != nil {
		if errors.Is(err, ErrContributionNotFound) {
			http.Error(w, "Contribution not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func goalToDTO(g Goal) GoalDTO {
	dto := GoalDTO{
		Id:            g.Id,
		Name:          g.Name,
		TargetAmount:  g.TargetAmount,
		CurrentAmount: g.CurrentAmount,
	}
	if g.TargetDate != nil {
		formatted := g.TargetDate.Format(dateLayout)
		dto.TargetDate = &formatted
	}
	return dto
}

func dtoToGoal(dto GoalDTO) (Goal, error) {
	goal := Goal{
		Id:           dto.Id,
		Name:         dto.Name,
		TargetAmount: dto.TargetAmount,
	}
	if dto.TargetDate != nil && *dto.TargetDate != "" {
		parsed, err := expense.ParseDate(*dto.TargetDate)
		if err != nil {
			return Goal{}, err
		}
		goal.TargetDate = &parsed
	}
	return goal, nil
}

func contributionToDTO(c Contribution) ContributionDTO {
	return ContributionDTO{
		Id:        c.Id,
		GoalId:    c.GoalId,
		UserId:    c.UserId,
		Amount:    c.Amount,
		Note:      c.Note,
		CreatedAt: c.CreatedAt.UTC().Format(time.RFC3339),
	}
}
