package insights

import (
	"math"
	"testing"
	"time"

	"github.com/samkassa/samkassa/pkg/budget"
	"github.com/samkassa/samkassa/pkg/expense"
	"github.com/samkassa/samkassa/pkg/savings"
	"github.com/stretchr/testify/assert"
)

var analysisNow = time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)

func monthlyExpense(categoryId int, year int, month time.Month, amount float64) expense.Expense {
	return expense.Expense{
		Date:         time.Date(year, month, 10, 0, 0, 0, 0, time.UTC),
		Amount:       amount,
		CategoryId:   categoryId,
		PaidByUserId: 1,
		SplitType:    expense.SplitEqual,
	}
}

func TestAnalyze_TrendClassification(t *testing.T) {
	expenses := []expense.Expense{
		// category 1 climbs 100 per month, category 2 falls, category 3 is flat
		monthlyExpense(1, 2025, time.January, 100),
		monthlyExpense(1, 2025, time.February, 200),
		monthlyExpense(1, 2025, time.March, 300),
		monthlyExpense(2, 2025, time.January, 300),
		monthlyExpense(2, 2025, time.February, 200),
		monthlyExpense(2, 2025, time.March, 100),
		monthlyExpense(3, 2025, time.January, 150),
		monthlyExpense(3, 2025, time.February, 150),
		monthlyExpense(3, 2025, time.March, 150),
	}

	analysis := Analyze(expenses, nil, nil, analysisNow)

	assert.Len(t, analysis.Patterns, 3)
	assert.Equal(t, TrendIncreasing, analysis.Patterns[0].Trend)
	assert.InDelta(t, 100.0, analysis.Patterns[0].Strength, 1e-9)
	assert.Equal(t, TrendDecreasing, analysis.Patterns[1].Trend)
	assert.Equal(t, TrendStable, analysis.Patterns[2].Trend)
	assert.Equal(t, 0.0, analysis.Patterns[2].Strength)
}

func TestAnalyze_SingleMonthIsStable(t *testing.T) {
	analysis := Analyze([]expense.Expense{monthlyExpense(1, 2025, time.June, 500)}, nil, nil, analysisNow)

	assert.Len(t, analysis.Patterns, 1)
	assert.Equal(t, TrendStable, analysis.Patterns[0].Trend)
}

func TestAnalyze_SeasonalFactor(t *testing.T) {
	expenses := []expense.Expense{
		monthlyExpense(1, 2024, time.December, 300),
		monthlyExpense(1, 2025, time.January, 100),
		monthlyExpense(1, 2025, time.February, 200),
	}

	analysis := Analyze(expenses, nil, nil, analysisNow)

	factors := map[time.Month]float64{}
	for _, trend := range analysis.SeasonalTrends {
		factors[trend.Month] = trend.Factor
	}
	// overall mean is 200, December sits 50% above it
	assert.InDelta(t, 1.5, factors[time.December], 1e-9)
	assert.InDelta(t, 0.5, factors[time.January], 1e-9)
	assert.InDelta(t, 1.0, factors[time.February], 1e-9)
}

func TestAnalyze_BudgetVariance(t *testing.T) {
	expenses := []expense.Expense{monthlyExpense(1, 2025, time.June, 130)}
	budgets := []budget.Budget{{CategoryId: 1, Month: time.June, Year: 2025, Amount: 100}}

	analysis := Analyze(expenses, budgets, nil, analysisNow)

	assert.Len(t, analysis.BudgetVariances, 1)
	v := analysis.BudgetVariances[0]
	assert.InDelta(t, 0.3, v.Variance, 1e-9)
	assert.True(t, v.Overspent())
	assert.False(t, v.Underutilized())
}

func TestAnalyze_ExcludesBrokenAmounts(t *testing.T) {
	expenses := []expense.Expense{
		monthlyExpense(1, 2025, time.June, 100),
		monthlyExpense(1, 2025, time.June, -40),
		monthlyExpense(1, 2025, time.June, math.NaN()),
		monthlyExpense(1, 2025, time.June, math.Inf(1)),
	}
	budgets := []budget.Budget{{CategoryId: 1, Month: time.June, Year: 2025, Amount: 100}}

	analysis := Analyze(expenses, budgets, nil, analysisNow)

	assert.InDelta(t, 100.0, analysis.BudgetVariances[0].Actual, 1e-9)
}

func TestAnalyze_RecommendationOrderAndConfidence(t *testing.T) {
	expenses := []expense.Expense{
		// category 1 overspends its budget
		monthlyExpense(1, 2025, time.May, 150),
		// category 2 barely touches its budget
		monthlyExpense(2, 2025, time.May, 10),
		// category 3 climbs steeply
		monthlyExpense(3, 2025, time.January, 100),
		monthlyExpense(3, 2025, time.February, 200),
		monthlyExpense(3, 2025, time.March, 300),
	}
	budgets := []budget.Budget{
		{CategoryId: 1, Month: time.May, Year: 2025, Amount: 100},
		{CategoryId: 2, Month: time.May, Year: 2025, Amount: 100},
	}
	targetDate := time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC)
	goals := []savings.Goal{{Name: "Vacation", TargetAmount: 1000, CurrentAmount: 400, TargetDate: &targetDate}}

	analysis := Analyze(expenses, budgets, goals, analysisNow)

	assert.Len(t, analysis.Recommendations, 4)
	assert.Equal(t, RecommendationReduction, analysis.Recommendations[0].Type)
	assert.Equal(t, 1, analysis.Recommendations[0].CategoryId)
	assert.Equal(t, 0.8, analysis.Recommendations[0].Confidence)

	assert.Equal(t, RecommendationReallocation, analysis.Recommendations[1].Type)
	assert.Equal(t, 2, analysis.Recommendations[1].CategoryId)
	assert.Equal(t, 0.7, analysis.Recommendations[1].Confidence)

	assert.Equal(t, RecommendationSeasonal, analysis.Recommendations[2].Type)
	assert.Equal(t, 3, analysis.Recommendations[2].CategoryId)
	assert.Equal(t, 0.6, analysis.Recommendations[2].Confidence)

	assert.Equal(t, RecommendationGoal, analysis.Recommendations[3].Type)
	assert.Equal(t, 0.9, analysis.Recommendations[3].Confidence)
	// 600 remaining over 6 months
	assert.Contains(t, analysis.Recommendations[3].Message, "100,00 kr")
}

func TestAnalyze_NoReallocationWithoutOverspending(t *testing.T) {
	expenses := []expense.Expense{monthlyExpense(2, 2025, time.May, 10)}
	budgets := []budget.Budget{{CategoryId: 2, Month: time.May, Year: 2025, Amount: 100}}

	analysis := Analyze(expenses, budgets, nil, analysisNow)

	for _, recommendation := range analysis.Recommendations {
		assert.NotEqual(t, RecommendationReallocation, recommendation.Type)
	}
}

func TestAnalyze_FundedGoalGetsNoTip(t *testing.T) {
	goals := []savings.Goal{{Name: "Done", TargetAmount: 100, CurrentAmount: 100}}

	analysis := Analyze(nil, nil, goals, analysisNow)

	assert.Empty(t, analysis.Recommendations)
}

func TestMonthlyShortfall_PastTargetDateFloorsToOneMonth(t *testing.T) {
	past := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	goal := savings.Goal{TargetAmount: 100, CurrentAmount: 40, TargetDate: &past}

	assert.InDelta(t, 60.0, monthlyShortfall(goal, analysisNow), 1e-9)
}

func TestMonthlyShortfall_NoTargetDateSpreadsOverAYear(t *testing.T) {
	goal := savings.Goal{TargetAmount: 1200, CurrentAmount: 0}

	assert.InDelta(t, 100.0, monthlyShortfall(goal, analysisNow), 1e-9)
}
