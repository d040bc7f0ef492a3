package expense

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samkassa/samkassa/pkg/scope"
	log "github.com/sirupsen/logrus"
)

var ErrExpenseNotFound = errors.New("expense not found")

const dateLayout = "2006-01-02"
const timestampLayout = time.RFC3339

// Filter describes an expense query. Scope carries the payer set and the
// personal-split exclusion; the date bounds and category are optional.
type Filter struct {
	Scope      scope.Scope
	StartDate  *time.Time
	EndDate    *time.Time
	CategoryId *int
}

type Repo interface {
	Store(ctx context.Context, expense Expense) (int, error)
	Get(ctx context.Context, id int) (Expense, error)
	Find(ctx context.Context, filter Filter) ([]Expense, error)
	Update(ctx context.Context, expense Expense) (bool, error)
	Delete(ctx context.Context, id int) (bool, error)
}

type RepoImpl struct {
	db *sql.DB
}

func NewExpenseRepo(db *sql.DB) *RepoImpl {
	return &RepoImpl{db: db}
}

const expenseColumns = `id, date, amount, description, category_id, paid_by_user_id, split_type,
	split_ratio_user1, split_ratio_user2, recurring_expense_id, recurring_template_updated_at`

func (r *RepoImpl) Store(ctx context.Context, expense Expense) (int, error) {
	query := `INSERT INTO expenses (
                    date,
                    amount,
                    description,
                    category_id,
                    paid_by_user_id,
                    split_type,
                    split_ratio_user1,
                    split_ratio_user2,
                    recurring_expense_id,
                    recurring_template_updated_at
				) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not prepare query: %w", err)
		log.Error(err)
		return 0, err
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx,
		expense.Date.Format(dateLayout),
		expense.Amount,
		expense.Description,
		expense.CategoryId,
		expense.PaidByUserId,
		string(expense.SplitType),
		expense.SplitRatioUser1,
		expense.SplitRatioUser2,
		expense.RecurringExpenseId,
		formatTemplateStamp(expense.RecurringTemplateUpdatedAt),
	)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return 0, err
	}

	lastInsertID, err := result.LastInsertId()
	if err != nil {
		err := fmt.Errorf("could not retrieve last insert id: %w", err)
		log.Error(err)
		return 0, err
	}
	return int(lastInsertID), nil
}

func (r *RepoImpl) Get(ctx context.Context, id int) (Expense, error) {
	query := fmt.Sprintf("SELECT %s FROM expenses WHERE id = ?", expenseColumns)
	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		err := fmt.Errorf("could not query expense: %w", err)
		log.Error(err)
		return Expense{}, err
	}
	defer rows.Close()
	if !rows.Next() {
		return Expense{}, ErrExpenseNotFound
	}
	return scanExpense(rows)
}

// Find returns expenses matching the filter. The scope descriptor is turned
// into parameterized conditions; an empty payer set matches nothing.
func (r *RepoImpl) Find(ctx context.Context, filter Filter) ([]Expense, error) {
	if len(filter.Scope.PayerIds) == 0 {
		return []Expense{}, nil
	}

	var conditions []string
	var args []any

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(filter.Scope.PayerIds)), ", ")
	conditions = append(conditions, fmt.Sprintf("paid_by_user_id IN (%s)", placeholders))
	for _, id := range filter.Scope.PayerIds {
		args = append(args, id)
	}

	if filter.Scope.SharedOnly {
		conditions = append(conditions, "split_type != ?")
		args = append(args, string(SplitPersonal))
	}
	if filter.StartDate != nil {
		conditions = append(conditions, "date >= ?")
		args = append(args, filter.StartDate.Format(dateLayout))
	}
	if filter.EndDate != nil {
		conditions = append(conditions, "date <= ?")
		args = append(args, filter.EndDate.Format(dateLayout))
	}
	if filter.CategoryId != nil {
		conditions = append(conditions, "category_id = ?")
		args = append(args, *filter.CategoryId)
	}

	query := fmt.Sprintf("SELECT %s FROM expenses WHERE %s ORDER BY date DESC, id DESC",
		expenseColumns, strings.Join(conditions, " AND "))
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		err := fmt.Errorf("could not query expenses: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	expenses := make([]Expense, 0)
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return expenses, nil
}

func (r *RepoImpl) Update(ctx context.Context, expense Expense) (bool, error) {
	query := `UPDATE expenses SET
                  date = ?,
                  amount = ?,
                  description = ?,
                  category_id = ?,
                  paid_by_user_id = ?,
                  split_type = ?,
                  split_ratio_user1 = ?,
                  split_ratio_user2 = ?
              WHERE id = ?`
	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not prepare query: %w", err)
		log.Error(err)
		return false, err
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx,
		expense.Date.Format(dateLayout),
		expense.Amount,
		expense.Description,
		expense.CategoryId,
		expense.PaidByUserId,
		string(expense.SplitType),
		expense.SplitRatioUser1,
		expense.SplitRatioUser2,
		expense.Id,
	)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
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

func (r *RepoImpl) Delete(ctx context.Context, id int) (bool, error) {
	query := "DELETE FROM expenses WHERE id = ?"
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
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

func scanExpense(rows *sql.Rows) (Expense, error) {
	var expense Expense
	var dateString string
	var splitType string
	var ratio1, ratio2 sql.NullFloat64
	var recurringId sql.NullInt64
	var templateStamp sql.NullString
	if err := rows.Scan(
		&expense.Id,
		&dateString,
		&expense.Amount,
		&expense.Description,
		&expense.CategoryId,
		&expense.PaidByUserId,
		&splitType,
		&ratio1,
		&ratio2,
		&recurringId,
		&templateStamp,
	); err != nil {
		err := fmt.Errorf("could not scan expense: %w", err)
		log.Error(err)
		return Expense{}, err
	}

	date, err := time.Parse(dateLayout, dateString)
	if err != nil {
		err := fmt.Errorf("could not parse expense date: %w", err)
		log.Error(err)
		return Expense{}, err
	}
	expense.Date = date
	expense.SplitType = SplitType(splitType)
	if ratio1.Valid {
		expense.SplitRatioUser1 = &ratio1.Float64
	}
	if ratio2.Valid {
		expense.SplitRatioUser2 = &ratio2.Float64
	}
	if recurringId.Valid {
		id := int(recurringId.Int64)
		expense.RecurringExpenseId = &id
	}
	if templateStamp.Valid {
		stamp, err := time.Parse(timestampLayout, templateStamp.String)
		if err != nil {
			err := fmt.Errorf("could not parse template stamp: %w", err)
			log.Error(err)
			return Expense{}, err
		}
		expense.RecurringTemplateUpdatedAt = &stamp
	}
	return expense, nil
}

func formatTemplateStamp(stamp *time.Time) any {
	if stamp == nil {
		return nil
	}
	return stamp.UTC().Format(timestampLayout)
}
