package expense

import (
	"context"
	"sort"
)

type StubExpenseRepo struct {
	nextId int
	data   map[int]Expense
}

func NewStubExpenseRepo() *StubExpenseRepo {
	return &StubExpenseRepo{data: map[int]Expense{}}
}

func (s *StubExpenseRepo) Store(ctx context.Context, expense Expense) (int, error) {
	s.nextId++
	expense.Id = s.nextId
	s.data[expense.Id] = expense
	return expense.Id, nil
}

func (s *StubExpenseRepo) Get(ctx context.Context, id int) (Expense, error) {
	expense, ok := s.data[id]
	if !ok {
		return Expense{}, ErrExpenseNotFound
	}
	return expense, nil
}

func (s *StubExpenseRepo) Find(ctx context.Context, filter Filter) ([]Expense, error) {
	expenses := make([]Expense, 0, len(s.data))
	for _, e := range s.data {
		if !matches(e, filter) {
			continue
		}
		expenses = append(expenses, e)
	}
	sort.Slice(expenses, func(i, j int) bool {
		if !expenses[i].Date.Equal(expenses[j].Date) {
			return expenses[i].Date.After(expenses[j].Date)
		}
		return expenses[i].Id > expenses[j].Id
	})
	return expenses, nil
}

func (s *StubExpenseRepo) Update(ctx context.Context, expense Expense) (bool, error) {
	if _, ok := s.data[expense.Id]; !ok {
		return false, nil
	}
	s.data[expense.Id] = expense
	return true, nil
}

func (s *StubExpenseRepo) Delete(ctx context.Context, id int) (bool, error) {
	if _, ok := s.data[id]; !ok {
		return false, nil
	}
	delete(s.data, id)
	return true, nil
}

func (s *StubExpenseRepo) Cleanup() {
	s.data = map[int]Expense{}
	s.nextId = 0
}

func matches(e Expense, filter Filter) bool {
	payerMatch := false
	for _, id := range filter.Scope.PayerIds {
		if e.PaidByUserId == id {
			payerMatch = true
			break
		}
	}
	if !payerMatch {
		return false
	}
	if filter.Scope.SharedOnly && e.SplitType == SplitPersonal {
		return false
	}
	if filter.StartDate != nil && e.Date.Before(*filter.StartDate) {
		return false
	}
	if filter.EndDate != nil && e.Date.After(*filter.EndDate) {
		return false
	}
	if filter.CategoryId != nil && e.CategoryId != *filter.CategoryId {
		return false
	}
	return true
}
