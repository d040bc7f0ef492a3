package insights

import (
	"math"
	"sort"
	"time"

	"github.com/samkassa/samkassa/pkg/budget"
	"github.com/samkassa/samkassa/pkg/expense"
	"github.com/samkassa/samkassa/pkg/savings"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
)

const (
	increasingThreshold   = 0.1
	decreasingThreshold   = -0.1
	overspendThreshold    = 0.2
	underutilizeThreshold = -0.3
	strongTrendThreshold  = 0.3
)

// SpendingPattern is the per-category trend over monthly spending totals.
type SpendingPattern struct {
	CategoryId int
	Trend      Trend
	// Strength is the absolute slope of the fitted line.
	Strength     float64
	MonthlyMean  float64
	MonthsOfData int
}

// SeasonalTrend compares one calendar month against the overall average.
// A factor above 1 marks an above-average month.
type SeasonalTrend struct {
	Month  time.Month
	Factor float64
}

// BudgetVariance is the relative deviation of actual spend from the budget
// for one category and month.
type BudgetVariance struct {
	CategoryId int
	Month      time.Month
	Year       int
	Budgeted   float64
	Actual     float64
	Variance   float64
}

func (v BudgetVariance) Overspent() bool {
	return v.Variance > overspendThreshold
}

func (v BudgetVariance) Underutilized() bool {
	return v.Variance < underutilizeThreshold
}

type RecommendationType string

const (
	RecommendationReduction    RecommendationType = "reduction"
	RecommendationReallocation RecommendationType = "reallocation"
	RecommendationSeasonal     RecommendationType = "seasonal_preparation"
	RecommendationGoal         RecommendationType = "goal"
)

type Recommendation struct {
	Type       RecommendationType
	CategoryId int
	Message    string
	Confidence float64
}

type Analysis struct {
	Patterns        []SpendingPattern
	SeasonalTrends  []SeasonalTrend
	BudgetVariances []BudgetVariance
	Recommendations []Recommendation
}

var sek = message.NewPrinter(language.Swedish)

func formatSEK(amount float64) string {
	return sek.Sprintf("%.2f kr", amount)
}

// Analyze runs the full trend, seasonality and variance pass over already
// fetched rows. Expenses with non-positive or non-finite amounts are excluded
// from every sum.
func Analyze(expenses []expense.Expense, budgets []budget.Budget, goals []savings.Goal, now time.Time) Analysis {
	usable := make([]expense.Expense, 0, len(expenses))
	for _, e := range expenses {
		if e.Amount > 0 && !math.IsNaN(e.Amount) && !math.IsInf(e.Amount, 0) {
			usable = append(usable, e)
		}
	}

	patterns := spendingPatterns(usable)
	seasonal := seasonalTrends(usable)
	variances := budgetVariances(usable, budgets)
	recommendations := buildRecommendations(patterns, variances, goals, now)

	return Analysis{
		Patterns:        patterns,
		SeasonalTrends:  seasonal,
		BudgetVariances: variances,
		Recommendations: recommendations,
	}
}

// monthKey is a sortable absolute month index.
func monthKey(t time.Time) int {
	return t.Year()*12 + int(t.Month()) - 1
}

func spendingPatterns(expenses []expense.Expense) []SpendingPattern {
	totals := map[int]map[int]float64{}
	for _, e := range expenses {
		if totals[e.CategoryId] == nil {
			totals[e.CategoryId] = map[int]float64{}
		}
		totals[e.CategoryId][monthKey(e.Date)] += e.Amount
	}

	categories := make([]int, 0, len(totals))
	for categoryId := range totals {
		categories = append(categories, categoryId)
	}
	sort.Ints(categories)

	patterns := make([]SpendingPattern, 0, len(categories))
	for _, categoryId := range categories {
		months := totals[categoryId]
		keys := make([]int, 0, len(months))
		var sum float64
		for key, total := range months {
			keys = append(keys, key)
			sum += total
		}
		sort.Ints(keys)

		slope := olsSlope(keys, months)
		trend := TrendStable
		if slope > increasingThreshold {
			trend = TrendIncreasing
		} else if slope < decreasingThreshold {
			trend = TrendDecreasing
		}
		patterns = append(patterns, SpendingPattern{
			CategoryId:   categoryId,
			Trend:        trend,
			Strength:     math.Abs(slope),
			MonthlyMean:  sum / float64(len(keys)),
			MonthsOfData: len(keys),
		})
	}
	return patterns
}

// olsSlope fits amount over month index with ordinary least squares. Fewer
// than two points fit no line.
func olsSlope(keys []int, totals map[int]float64) float64 {
	n := float64(len(keys))
	if n < 2 {
		return 0
	}
	var sumX, sumY, sumXY, sumXX float64
	for i, key := range keys {
		x := float64(i)
		y := totals[key]
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	denominator := n*sumXX - sumX*sumX
	if denominator == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denominator
}

func seasonalTrends(expenses []expense.Expense) []SeasonalTrend {
	monthTotals := map[time.Month]float64{}
	monthCounts := map[time.Month]int{}
	for _, e := range expenses {
		month := e.Date.Month()
		monthTotals[month] += e.Amount
		monthCounts[month]++
	}
	if len(monthTotals) == 0 {
		return []SeasonalTrend{}
	}

	var overallSum float64
	var overallCount int
	for month, total := range monthTotals {
		overallSum += total
		overallCount += monthCounts[month]
	}
	overallMean := overallSum / float64(overallCount)

	trends := make([]SeasonalTrend, 0, len(monthTotals))
	for month := time.January; month <= time.December; month++ {
		total, ok := monthTotals[month]
		if !ok {
			continue
		}
		mean := total / float64(monthCounts[month])
		trends = append(trends, SeasonalTrend{Month: month, Factor: mean / overallMean})
	}
	return trends
}

func budgetVariances(expenses []expense.Expense, budgets []budget.Budget) []BudgetVariance {
	type bucket struct {
		categoryId int
		key        int
	}
	actuals := map[bucket]float64{}
	for _, e := range expenses {
		actuals[bucket{e.CategoryId, monthKey(e.Date)}] += e.Amount
	}

	variances := make([]BudgetVariance, 0, len(budgets))
	for _, b := range budgets {
		if b.Amount <= 0 {
			continue
		}
		key := b.Year*12 + int(b.Month) - 1
		actual := actuals[bucket{b.CategoryId, key}]
		variances = append(variances, BudgetVariance{
			CategoryId: b.CategoryId,
			Month:      b.Month,
			Year:       b.Year,
			Budgeted:   b.Amount,
			Actual:     actual,
			Variance:   (actual - b.Amount) / b.Amount,
		})
	}
	sort.Slice(variances, func(i, j int) bool {
		if variances[i].Year != variances[j].Year {
			return variances[i].Year < variances[j].Year
		}
		if variances[i].Month != variances[j].Month {
			return variances[i].Month < variances[j].Month
		}
		return variances[i].CategoryId < variances[j].CategoryId
	})
	return variances
}

// buildRecommendations emits tips in a fixed priority order: reductions for
// overspent categories, one reallocation pairing, seasonal preparation for
// strongly increasing categories, then one goal shortfall tip.
func buildRecommendations(patterns []SpendingPattern, variances []BudgetVariance, goals []savings.Goal, now time.Time) []Recommendation {
	recommendations := make([]Recommendation, 0)

	// worst variance per overspent category
	worst := map[int]BudgetVariance{}
	overspentOrder := make([]int, 0)
	for _, v := range variances {
		if !v.Overspent() {
			continue
		}
		existing, seen := worst[v.CategoryId]
		if !seen {
			overspentOrder = append(overspentOrder, v.CategoryId)
		}
		if !seen || v.Variance > existing.Variance {
			worst[v.CategoryId] = v
		}
	}
	for _, categoryId := range overspentOrder {
		v := worst[categoryId]
		recommendations = append(recommendations, Recommendation{
			Type:       RecommendationReduction,
			CategoryId: categoryId,
			Message: sek.Sprintf("Category %d ran %.0f%% over its %s budget. Look for ways to cut back.",
				categoryId, v.Variance*100, formatSEK(v.Budgeted)),
			Confidence: 0.8,
		})
	}

	var underutilized *BudgetVariance
	for i, v := range variances {
		if v.Underutilized() && (underutilized == nil || v.Variance < underutilized.Variance) {
			underutilized = &variances[i]
		}
	}
	if underutilized != nil && len(overspentOrder) > 0 {
		target := worst[overspentOrder[0]]
		recommendations = append(recommendations, Recommendation{
			Type:       RecommendationReallocation,
			CategoryId: underutilized.CategoryId,
			Message: sek.Sprintf("Category %d uses little of its budget. Consider moving part of it to category %d.",
				underutilized.CategoryId, target.CategoryId),
			Confidence: 0.7,
		})
	}

	for _, p := range patterns {
		if p.Trend == TrendIncreasing && p.Strength > strongTrendThreshold {
			recommendations = append(recommendations, Recommendation{
				Type:       RecommendationSeasonal,
				CategoryId: p.CategoryId,
				Message: sek.Sprintf("Spending in category %d is climbing (about %s per month). Plan ahead for it.",
					p.CategoryId, formatSEK(p.Strength)),
				Confidence: 0.6,
			})
		}
	}

	for _, goal := range goals {
		shortfall := monthlyShortfall(goal, now)
		if shortfall <= 0 {
			continue
		}
		recommendations = append(recommendations, Recommendation{
			Type: RecommendationGoal,
			Message: sek.Sprintf("Set aside %s per month to reach the goal %q on time.",
				formatSEK(shortfall), goal.Name),
			Confidence: 0.9,
		})
		break
	}

	return recommendations
}

// monthlyShortfall is what must be saved each month to reach the target on
// its date. Goals without a date get a one-year horizon.
func monthlyShortfall(goal savings.Goal, now time.Time) float64 {
	remaining := goal.TargetAmount - goal.CurrentAmount
	if remaining <= 0 {
		return 0
	}
	months := 12
	if goal.TargetDate != nil {
		months = monthKey(*goal.TargetDate) - monthKey(now)
		if months < 1 {
			months = 1
		}
	}
	return remaining / float64(months)
}
