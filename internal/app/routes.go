package app

import (
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samkassa/samkassa/internal/config"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// User management and partner linking
	r.HandleFunc("/api/user", deps.UserHandler.CreateUser).Methods("POST")
	r.HandleFunc("/api/user", deps.UserHandler.GetAvailableUsers).Methods("GET")
	r.HandleFunc("/api/user/current", deps.UserHandler.CurrentUser).Methods("GET")
	r.HandleFunc("/api/user/current", deps.UserHandler.UpdateUser).Methods("PUT")
	r.HandleFunc("/api/user/partner", deps.UserHandler.GetPartner).Methods("GET")
	r.HandleFunc("/api/user/partner", deps.UserHandler.UnlinkPartner).Methods("DELETE")
	r.HandleFunc("/api/user/partner/invite", deps.UserHandler.InvitePartner).Methods("POST")
	r.HandleFunc("/api/user/partner/invite/accept", deps.UserHandler.AcceptInvite).Methods("POST")

	// Categories
	r.HandleFunc("/api/category", deps.CategoryHandler.GetAll).Methods("GET")
	r.HandleFunc("/api/category", deps.CategoryHandler.Create).Methods("POST")
	r.HandleFunc("/api/category/{id}", deps.CategoryHandler.Update).Methods("PUT")
	r.HandleFunc("/api/category/{id}", deps.CategoryHandler.Delete).Methods("DELETE")

	// Expenses
	r.HandleFunc("/api/expense", deps.ExpenseHandler.List).Methods("GET")
	r.HandleFunc("/api/expense", deps.ExpenseHandler.Create).Methods("POST")
	r.HandleFunc("/api/expense/{id}", deps.ExpenseHandler.Update).Methods("PUT")
	r.HandleFunc("/api/expense/{id}", deps.ExpenseHandler.Delete).Methods("DELETE")

	// Settlement
	r.HandleFunc("/api/settlement", deps.SettlementHandler.GetSettlement).Methods("GET")

	// Recurring templates and generation
	r.HandleFunc("/api/recurring", deps.RecurringHandler.List).Methods("GET")
	r.HandleFunc("/api/recurring", deps.RecurringHandler.Create).Methods("POST")
	r.HandleFunc("/api/recurring/generate", deps.RecurringHandler.Generate).Methods("POST")
	r.HandleFunc("/api/recurring/{id}", deps.RecurringHandler.Update).Methods("PUT")
	r.HandleFunc("/api/recurring/{id}", deps.RecurringHandler.Deactivate).Methods("DELETE")

	// Budgets
	r.HandleFunc("/api/budget", deps.BudgetHandler.List).Methods("GET")
	r.HandleFunc("/api/budget", deps.BudgetHandler.Set).Methods("PUT")
	r.HandleFunc("/api/budget/{id}", deps.BudgetHandler.Delete).Methods("DELETE")

	// Savings goals and contributions
	r.HandleFunc("/api/savings", deps.SavingsHandler.ListGoals).Methods("GET")
	r.HandleFunc("/api/savings", deps.SavingsHandler.CreateGoal).Methods("POST")
	r.HandleFunc("/api/savings/{id}", deps.SavingsHandler.UpdateGoal).Methods("PUT")
	r.HandleFunc("/api/savings/{id}", deps.SavingsHandler.DeleteGoal).Methods("DELETE")
	r.HandleFunc("/api/savings/{id}/contribution", deps.SavingsHandler.ListContributions).Methods("GET")
	r.HandleFunc("/api/savings/{id}/contribution", deps.SavingsHandler.Contribute).Methods("POST")
	r.HandleFunc("/api/savings/{id}/contribution/{contributionId}", deps.SavingsHandler.DeleteContribution).Methods("DELETE")

	// Insights
	r.HandleFunc("/api/insights", deps.InsightsHandler.Get).Methods("GET")

	// Metrics
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
}
