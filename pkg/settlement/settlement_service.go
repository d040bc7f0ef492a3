package settlement

import (
	"context"
	"errors"
	"fmt"

	"github.com/samkassa/samkassa/pkg/expense"
	"github.com/samkassa/samkassa/pkg/scope"
	"github.com/samkassa/samkassa/pkg/user"
	log "github.com/sirupsen/logrus"
)

// Query is the raw request input for a settlement computation.
type Query struct {
	Scope     string
	StartDate string
	EndDate   string
}

type Service interface {
	GetSettlement(ctx context.Context, query Query) (Payload, error)
}

type ServiceImpl struct {
	expenseRepo expense.Repo
	userService user.Service
}

func NewSettlementService(expenseRepo expense.Repo, userService user.Service) *ServiceImpl {
	return &ServiceImpl{expenseRepo: expenseRepo, userService: userService}
}

func (s *ServiceImpl) GetSettlement(ctx context.Context, query Query) (Payload, error) {
	viewer, err := user.CurrentUser(ctx)
	if err != nil {
		return Payload{}, fmt.Errorf("failed to get current user: %w", err)
	}

	// Without a linked partner there is nothing to net; short-circuit before
	// any computation is attempted.
	if !viewer.Partnered() {
		log.Debugf("user %d requested settlement without a linked partner", viewer.Id)
		return BuildSettlementPayload(Balances{}, viewer, nil, scope.Mine), nil
	}

	partner, err := s.userService.GetPartner(ctx)
	if err != nil {
		if errors.Is(err, user.ErrNoPartner) {
			return BuildSettlementPayload(Balances{}, viewer, nil, scope.Mine), nil
		}
		return Payload{}, err
	}

	resolved := scope.Resolve(viewer, query.Scope)
	filter := expense.Filter{Scope: resolved}
	if query.StartDate != "" {
		start, err := expense.ParseDate(query.StartDate)
		if err != nil {
			return Payload{}, err
		}
		filter.StartDate = &start
	}
	if query.EndDate != "" {
		end, err := expense.ParseDate(query.EndDate)
		if err != nil {
			return Payload{}, err
		}
		filter.EndDate = &end
	}

	expenses, err := s.expenseRepo.Find(ctx, filter)
	if err != nil {
		return Payload{}, err
	}

	balances := ComputeBalances(expenses, viewer.Id, partner.Id)
	log.Tracef("settlement balances for user %d: %+v", viewer.Id, balances)
	return BuildSettlementPayload(balances, viewer, &partner, resolved.Name), nil
}
