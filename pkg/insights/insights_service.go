package insights

import (
	"context"
	"time"

	"github.com/samkassa/samkassa/internal/utils"
	"github.com/samkassa/samkassa/pkg/budget"
	"github.com/samkassa/samkassa/pkg/expense"
	"github.com/samkassa/samkassa/pkg/savings"
	"github.com/samkassa/samkassa/pkg/scope"
	"github.com/samkassa/samkassa/pkg/user"
)

// historyMonths is the default analysis window when no dates are given.
const historyMonths = 12

type Query struct {
	Scope     string
	StartDate string
	EndDate   string
}

type Service interface {
	GetInsights(ctx context.Context, query Query) (Analysis, error)
}

type ServiceImpl struct {
	expenseRepo expense.Repo
	budgetRepo  budget.Repo
	savingsRepo savings.Repo
	clock       utils.Clock
}

func NewInsightsService(expenseRepo expense.Repo, budgetRepo budget.Repo, savingsRepo savings.Repo, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{
		expenseRepo: expenseRepo,
		budgetRepo:  budgetRepo,
		savingsRepo: savingsRepo,
		clock:       clock,
	}
}

func (s *ServiceImpl) GetInsights(ctx context.Context, query Query) (Analysis, error) {
	viewer, err := user.CurrentUser(ctx)
	if err != nil {
		return Analysis{}, err
	}
	resolved := scope.Resolve(viewer, query.Scope)
	now := s.clock.Now()

	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(historyMonths - 1), 0)
	end := now
	if query.StartDate != "" {
		if start, err = expense.ParseDate(query.StartDate); err != nil {
			return Analysis{}, err
		}
	}
	if query.EndDate != "" {
		if end, err = expense.ParseDate(query.EndDate); err != nil {
			return Analysis{}, err
		}
	}

	expenses, err := s.expenseRepo.Find(ctx, expense.Filter{
		Scope:     resolved,
		StartDate: &start,
		EndDate:   &end,
	})
	if err != nil {
		return Analysis{}, err
	}
	budgets, err := s.budgetRepo.FindByRange(ctx, start, end)
	if err != nil {
		return Analysis{}, err
	}
	goals, err := s.savingsRepo.GetAllGoals(ctx)
	if err != nil {
		return Analysis{}, err
	}

	return Analyze(expenses, budgets, goals, now), nil
}
