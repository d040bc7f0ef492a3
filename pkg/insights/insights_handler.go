package insights

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/samkassa/samkassa/internal/rest"
	"github.com/samkassa/samkassa/pkg/expense"
)

type PatternDTO struct {
	CategoryId   int     `json:"categoryId"`
	Trend        string  `json:"trend"`
	Strength     float64 `json:"trendStrength"`
	MonthlyMean  float64 `json:"monthlyMean"`
	MonthsOfData int     `json:"monthsOfData"`
}

type SeasonalTrendDTO struct {
	Month  int     `json:"month"`
	Factor float64 `json:"factor"`
}

type BudgetVarianceDTO struct {
	CategoryId int     `json:"categoryId"`
	Month      int     `json:"month"`
	Year       int     `json:"year"`
	Budgeted   float64 `json:"budgeted"`
	Actual     float64 `json:"actual"`
	Variance   float64 `json:"variance"`
}

type RecommendationDTO struct {
	Type       string  `json:"type"`
	CategoryId int     `json:"categoryId,omitempty"`
	Message    string  `json:"message"`
	Confidence float64 `json:"confidence"`
}

type AnalysisDTO struct {
	Patterns        []PatternDTO        `json:"patterns"`
	SeasonalTrends  []SeasonalTrendDTO  `json:"seasonalTrends"`
	BudgetVariances []BudgetVarianceDTO `json:"budgetVariances"`
	Recommendations []RecommendationDTO `json:"recommendations"`
}

type Handler struct {
	insightsService Service
}

func NewHandler(insightsService Service) *Handler {
	return &Handler{insightsService: insightsService}
}

// Get godoc
// @Summary Spending analysis and recommendations
// @Tags Insights
// @Produce json
// @Param scope query string false "ours, mine or partner (default ours)"
// @Param startDate query string false "YYYY-MM-DD"
// @Param endDate query string false "YYYY-MM-DD"
// @Success 200 {object} AnalysisDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid date format"
// @Router /api/insights [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	query := Query{
		Scope:     r.URL.Query().Get("scope"),
		StartDate: r.URL.Query().Get("startDate"),
		EndDate:   r.URL.Query().Get("endDate"),
	}

	analysis, err := h.insightsService.GetInsights(r.Context(), query)
	if err != nil {
		if errors.Is(err, expense.ErrInvalidDate) {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "Dates must match YYYY-MM-DD"})
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := json.NewEncoder(w).Encode(analysisToDTO(analysis)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func analysisToDTO(a Analysis) AnalysisDTO {
	dto := AnalysisDTO{
		Patterns:        make([]PatternDTO, 0, len(a.Patterns)),
		SeasonalTrends:  make([]SeasonalTrendDTO, 0, len(a.SeasonalTrends)),
		BudgetVariances: make([]BudgetVarianceDTO, 0, len(a.BudgetVariances)),
		Recommendations: make([]RecommendationDTO, 0, len(a.Recommendations)),
	}
	for _, p := range a.Patterns {
		dto.Patterns = append(dto.Patterns, PatternDTO{
			CategoryId:   p.CategoryId,
			Trend:        string(p.Trend),
			Strength:     p.Strength,
			MonthlyMean:  p.MonthlyMean,
			MonthsOfData: p.MonthsOfData,
		})
	}
	for _, s := range a.SeasonalTrends {
		dto.SeasonalTrends = append(dto.SeasonalTrends, SeasonalTrendDTO{Month: int(s.Month), Factor: s.Factor})
	}
	for _, v := range a.BudgetVariances {
		dto.BudgetVariances = append(dto.BudgetVariances, BudgetVarianceDTO{
			CategoryId: v.CategoryId,
			Month:      int(v.Month),
			Year:       v.Year,
			Budgeted:   v.Budgeted,
			Actual:     v.Actual,
			Variance:   v.Variance,
		})
	}
	for _, r := range a.Recommendations {
		dto.Recommendations = append(dto.Recommendations, RecommendationDTO{
			Type:       string(r.Type),
			CategoryId: r.CategoryId,
			Message:    r.Message,
			Confidence: r.Confidence,
		})
	}
	return dto
}
