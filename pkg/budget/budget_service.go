package budget

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	ErrInvalidAmount = errors.New("budget amount must be a positive number")
	ErrInvalidMonth  = errors.New("month must be between 1 and 12")
)

type Service interface {
	Set(ctx context.Context, budget Budget) (Budget, error)
	ListMonth(ctx context.Context, year int, month time.Month) ([]Budget, error)
	Delete(ctx context.Context, id int) error
}

type ServiceImpl struct {
	repo Repo
}

func NewBudgetService(repo Repo) *ServiceImpl {
	return &ServiceImpl{repo: repo}
}

func (s *ServiceImpl) Set(ctx context.Context, budget Budget) (Budget, error) {
	if budget.Amount <= 0 || math.IsNaN(budget.Amount) || math.IsInf(budget.Amount, 0) {
		return Budget{}, fmt.Errorf("%w: %v", ErrInvalidAmount, budget.Amount)
	}
	if budget.Month < time.January || budget.Month > time.December {
		return Budget{}, ErrInvalidMonth
	}
	return s.repo.Upsert(ctx, budget)
}

func (s *ServiceImpl) ListMonth(ctx context.Context, year int, month time.Month) ([]Budget, error) {
	if month < time.January || month > time.December {
		return nil, ErrInvalidMonth
	}
	return s.repo.FindByMonth(ctx, year, month)
}

func (s *ServiceImpl) Delete(ctx context.Context, id int) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrBudgetNotFound
	}
	return nil
}
