package recurring

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/samkassa/samkassa/internal/rest"
	"github.com/samkassa/samkassa/pkg/expense"
	log "github.com/sirupsen/logrus"
)

type TemplateDTO struct {
	Id              int      `json:"id"`
	Description     string   `json:"description"`
	DefaultAmount   float64  `json:"defaultAmount"`
	CategoryId      int      `json:"categoryId"`
	PaidByUserId    int      `json:"paidByUserId"`
	SplitType       string   `json:"splitType"`
	SplitRatioUser1 *float64 `json:"splitRatioUser1,omitempty"`
	SplitRatioUser2 *float64 `json:"splitRatioUser2,omitempty"`
	IsActive        bool     `json:"isActive"`
	UpdatedAt       string   `json:"updatedAt"`
}

type GenerateRequestDTO struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

type GenerateResponseDTO struct {
	Generated   int `json:"generated"`
	Regenerated int `json:"regenerated"`
	Skipped     int `json:"skipped"`
}

type Handler struct {
	recurringService Service
}

func NewHandler(recurringService Service) *Handler {
	return &Handler{recurringService: recurringService}
}

// List godoc
// @Summary List recurring expense templates
// @Tags Recurring
// @Produce json
// @Param includeInactive query bool false "Include deactivated templates"
// @Success 200 {array} TemplateDTO
// @Router /api/recurring [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	includeInactive := r.URL.Query().Get("includeInactive") == "true"
	templates, err := h.recurringService.ListTemplates(r.Context(), includeInactive)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dtos := make([]TemplateDTO, 0, len(templates))
	for _, template := range templates {
		dtos = append(dtos, templateToDTO(template))
	}
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating new recurring template")
	w.Header().Set("Content-Type", "application/json")

	var dto TemplateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "Invalid request body format"})
		return
	}

	created, err := h.recurringService.CreateTemplate(r.Context(), dtoToTemplate(dto))
	if err != nil {
		if errors.Is(err, ErrInvalidAmount) {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(rest.ErrorResponse{Error: err.Error()})
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(templateToDTO(created)); err != nil {
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
	var dto TemplateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "Invalid request body format"})
		return
	}
	dto.Id = id

	updated, err := h.recurringService.UpdateTemplate(r.Context(), dtoToTemplate(dto))
	if err != nil {
		switch {
		case errors.Is(err, ErrTemplateNotFound):
			http.Error(w, "Template not found", http.StatusNotFound)
		case errors.Is(err, ErrInvalidAmount):
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(rest.ErrorResponse{Error: err.Error()})
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	if err := json.NewEncoder(w).Encode(templateToDTO(updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// Deactivate godoc
// @Summary Deactivate a recurring template
// @Description Templates are never deleted so generated expenses keep their origin.
// @Tags Recurring
// @Param id path int true "Template ID"
// @Success 204
// @Failure 404 {string} string "Template not found"
// @Router /api/recurring/{id} [delete]
func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.recurringService.DeactivateTemplate(r.Context(), id); err != nil {
		if errors.Is(err, ErrTemplateNotFound) {
			http.Error(w, "Template not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Generate godoc
// @Summary Generate expenses for a month from active templates
// @Tags Recurring
// @Accept json
// @Produce json
// @Param request body GenerateRequestDTO false "Target month, defaults to the current one"
// @Success 200 {object} GenerateResponseDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid month"
// @Router /api/recurring/generate [post]
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var dto GenerateRequestDTO
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "Invalid request body format"})
			return
		}
	}
	if yearParam := r.URL.Query().Get("year"); yearParam != "" {
		year, err := strconv.Atoi(yearParam)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "Invalid year"})
			return
		}
		dto.Year = year
	}
	if monthParam := r.URL.Query().Get("month"); monthParam != "" {
		month, err := strconv.Atoi(monthParam)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "Invalid month"})
			return
		}
		dto.Month = month
	}

	result, err := h.recurringService.Generate(r.Context(), dto.Year, time.Month(dto.Month))
	if err != nil {
		if errors.Is(err, ErrInvalidMonth) {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(rest.ErrorResponse{Error: err.Error()})
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	response := GenerateResponseDTO{
		Generated:   result.Generated,
		Regenerated: result.Regenerated,
		Skipped:     result.Skipped,
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func templateToDTO(t Template) TemplateDTO {
	return TemplateDTO{
		Id:              t.Id,
		Description:     t.Description,
		DefaultAmount:   t.DefaultAmount,
		CategoryId:      t.CategoryId,
		PaidByUserId:    t.PaidByUserId,
		SplitType:       string(t.SplitType),
		SplitRatioUser1: t.SplitRatioUser1,
		SplitRatioUser2: t.SplitRatioUser2,
		IsActive:        t.IsActive,
		UpdatedAt:       t.UpdatedAt.UTC().Format(stampLayout),
	}
}

func dtoToTemplate(dto TemplateDTO) Template {
	return Template{
		Id:              dto.Id,
		Description:     dto.Description,
		DefaultAmount:   dto.DefaultAmount,
		CategoryId:      dto.CategoryId,
		PaidByUserId:    dto.PaidByUserId,
		SplitType:       expense.ParseSplitType(dto.SplitType),
		SplitRatioUser1: dto.SplitRatioUser1,
		SplitRatioUser2: dto.SplitRatioUser2,
		IsActive:        dto.IsActive,
	}
}
