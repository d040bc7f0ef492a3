package budget

import (
	"context"
	"sort"
	"time"
)

type StubBudgetRepo struct {
	nextId int
	data   map[int]Budget
}

func NewStubBudgetRepo() *StubBudgetRepo {
	return &StubBudgetRepo{data: map[int]Budget{}}
}

func (s *StubBudgetRepo) Upsert(ctx context.Context, budget Budget) (Budget, error) {
	for id, existing := range s.data {
		if existing.CategoryId == budget.CategoryId && existing.Month == budget.Month && existing.Year == budget.Year {
			budget.Id = id
			s.data[id] = budget
			return budget, nil
		}
	}
	s.nextId++
	budget.Id = s.nextId
	s.data[budget.Id] = budget
	return budget, nil
}

func (s *StubBudgetRepo) FindByMonth(ctx context.Context, year int, month time.Month) ([]Budget, error) {
	budgets := make([]Budget, 0)
	for _, budget := range s.data {
		if budget.Year == year && budget.Month == month {
			budgets = append(budgets, budget)
		}
	}
	sort.Slice(budgets, func(i, j int) bool { return budgets[i].CategoryId < budgets[j].CategoryId })
	return budgets, nil
}

func (s *StubBudgetRepo) FindByRange(ctx context.Context, start time.Time, end time.Time) ([]Budget, error) {
	first := start.Year()*100 + int(start.Month())
	last := end.Year()*100 + int(end.Month())
	budgets := make([]Budget, 0)
	for _, budget := range s.data {
		key := budget.Year*100 + int(budget.Month)
		if key >= first && key <= last {
			budgets = append(budgets, budget)
		}
	}
	sort.Slice(budgets, func(i, j int) bool {
		if budgets[i].Year != budgets[j].Year {
			return budgets[i].Year < budgets[j].Year
		}
		if budgets[i].Month != budgets[j].Month {
			return budgets[i].Month < budgets[j].Month
		}
		return budgets[i].CategoryId < budgets[j].CategoryId
	})
	return budgets, nil
}

func (s *StubBudgetRepo) Delete(ctx context.Context, id int) (bool, error) {
	if _, ok := s.data[id]; !ok {
		return false, nil
	}
	delete(s.data, id)
	return true, nil
}

func (s *StubBudgetRepo) Cleanup() {
	s.data = map[int]Budget{}
	s.nextId = 0
}
