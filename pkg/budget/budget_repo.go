package budget

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

var ErrBudgetNotFound = errors.New("budget not found")

type Repo interface {
	// Upsert inserts the budget or, when one already exists for the same
	// category and month, overwrites its amount.
	Upsert(ctx context.Context, budget Budget) (Budget, error)
	FindByMonth(ctx context.Context, year int, month time.Month) ([]Budget, error)
	FindByRange(ctx context.Context, start time.Time, end time.Time) ([]Budget, error)
	Delete(ctx context.Context, id int) (bool, error)
}

type RepoImpl struct {
	db *sql.DB
}

func NewBudgetRepo(db *sql.DB) *RepoImpl {
	return &RepoImpl{db: db}
}

func (r *RepoImpl) Upsert(ctx context.Context, budget Budget) (Budget, error) {
	query := `INSERT INTO budgets (category_id, month, year, amount)
              VALUES (?, ?, ?, ?)
              ON CONFLICT (category_id, month, year) DO UPDATE SET amount = excluded.amount`
	if _, err := r.db.ExecContext(ctx, query,
		budget.CategoryId,
		int(budget.Month),
		budget.Year,
		budget.Amount,
	); err != nil {
		err := fmt.Errorf("could not upsert budget: %w", err)
		log.Error(err)
		return Budget{}, err
	}

	// the conflict path reuses the existing row id, so read it back
	row := r.db.QueryRowContext(ctx,
		"SELECT id FROM budgets WHERE category_id = ? AND month = ? AND year = ?",
		budget.CategoryId, int(budget.Month), budget.Year,
	)
	if err := row.Scan(&budget.Id); err != nil {
		err := fmt.Errorf("could not read back budget id: %w", err)
		log.Error(err)
		return Budget{}, err
	}
	return budget, nil
}

func (r *RepoImpl) FindByMonth(ctx context.Context, year int, month time.Month) ([]Budget, error) {
	query := `SELECT id, category_id, month, year, amount FROM budgets
              WHERE year = ? AND month = ? ORDER BY category_id`
	return r.query(ctx, query, year, int(month))
}

func (r *RepoImpl) FindByRange(ctx context.Context, start time.Time, end time.Time) ([]Budget, error) {
	query := `SELECT id, category_id, month, year, amount FROM budgets
              WHERE (year * 100 + month) BETWEEN ? AND ?
              ORDER BY year, month, category_id`
	return r.query(ctx, query,
		start.Year()*100+int(start.Month()),
		end.Year()*100+int(end.Month()),
	)
}

func (r *RepoImpl) Delete(ctx context.Context, id int) (bool, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM budgets WHERE id = ?", id)
	if err != nil {
		err := fmt.Errorf("could not delete budget: %w", err)
		log.Error(err)
		return false, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		err := fmt.Errorf("could not get rows affected: %w", err)
		log.Error(err)
		return false, err
	}
	return rowsAffected == 1, nil
}

func (r *RepoImpl) query(ctx context.Context, query string, args ...any) ([]Budget, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		err := fmt.Errorf("could not query budgets: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	budgets := make([]Budget, 0)
	for rows.Next() {
		var budget Budget
		var month int
		if err := rows.Scan(&budget.Id, &budget.CategoryId, &month, &budget.Year, &budget.Amount); err != nil {
			err := fmt.Errorf("could not scan budget: %w", err)
			log.Error(err)
			return nil, err
		}
		budget.Month = time.Month(month)
		budgets = append(budgets, budget)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return budgets, nil
}
