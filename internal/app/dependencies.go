package app

import (
	"database/sql"

	"github.com/samkassa/samkassa/internal/config"
	"github.com/samkassa/samkassa/internal/utils"
	"github.com/samkassa/samkassa/pkg/budget"
	"github.com/samkassa/samkassa/pkg/category"
	"github.com/samkassa/samkassa/pkg/expense"
	"github.com/samkassa/samkassa/pkg/insights"
	"github.com/samkassa/samkassa/pkg/recurring"
	"github.com/samkassa/samkassa/pkg/savings"
	"github.com/samkassa/samkassa/pkg/settlement"
	"github.com/samkassa/samkassa/pkg/user"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	UserService user.Service
	UserHandler *user.Handler

	CategoryRepo    category.Repo
	CategoryHandler *category.Handler

	ExpenseRepo    expense.Repo
	ExpenseService expense.Service
	ExpenseHandler *expense.Handler

	SettlementService settlement.Service
	SettlementHandler *settlement.Handler

	RecurringRepo    recurring.Repo
	RecurringService recurring.Service
	RecurringHandler *recurring.Handler

	BudgetRepo    budget.Repo
	BudgetService budget.Service
	BudgetHandler *budget.Handler

	SavingsRepo    savings.Repo
	SavingsService savings.Service
	SavingsHandler *savings.Handler

	InsightsService insights.Service
	InsightsHandler *insights.Handler

	Clock utils.Clock
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *sql.DB, cfg config.Application) *Dependencies {
	deps := &Dependencies{}

	deps.Clock = &utils.SystemClock{}

	deps.UserService = user.NewUserService(user.NewUserRepo(db))
	deps.UserHandler = user.NewHandler(deps.UserService)

	deps.CategoryRepo = category.NewCategoryRepo(db)
	deps.CategoryHandler = category.NewHandler(deps.CategoryRepo)

	deps.ExpenseRepo = expense.NewExpenseRepo(db)
	deps.ExpenseService = expense.NewExpenseService(deps.ExpenseRepo)
	deps.ExpenseHandler = expense.NewHandler(deps.ExpenseService)

	deps.SettlementService = settlement.NewSettlementService(deps.ExpenseRepo, deps.UserService)
	deps.SettlementHandler = settlement.NewHandler(deps.SettlementService)

	deps.RecurringRepo = recurring.NewRecurringRepo(db)
	deps.RecurringService = recurring.NewRecurringService(deps.RecurringRepo, deps.Clock)
	deps.RecurringHandler = recurring.NewHandler(deps.RecurringService)

	deps.BudgetRepo = budget.NewBudgetRepo(db)
	deps.BudgetService = budget.NewBudgetService(deps.BudgetRepo)
	deps.BudgetHandler = budget.NewHandler(deps.BudgetService)

	deps.SavingsRepo = savings.NewSavingsRepo(db)
	deps.SavingsService = savings.NewSavingsService(deps.SavingsRepo, deps.Clock)
	deps.SavingsHandler = savings.NewHandler(deps.SavingsService)

	deps.InsightsService = insights.NewInsightsService(deps.ExpenseRepo, deps.BudgetRepo, deps.SavingsRepo, deps.Clock)
	deps.InsightsHandler = insights.NewHandler(deps.InsightsService)

	return deps
}
