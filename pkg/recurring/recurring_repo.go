package recurring

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/samkassa/samkassa/pkg/expense"
	log "github.com/sirupsen/logrus"
)

var ErrTemplateNotFound = errors.New("recurring template not found")

const dateLayout = "2006-01-02"
const stampLayout = time.RFC3339

type Repo interface {
	Store(ctx context.Context, template Template) (int, error)
	Get(ctx context.Context, id int) (Template, error)
	GetAll(ctx context.Context, includeInactive bool) ([]Template, error)
	Update(ctx context.Context, template Template) (bool, error)
	Deactivate(ctx context.Context, id int) (bool, error)

	// FindGenerated returns the expense generated from the template for the
	// given date, or nil when none exists.
	FindGenerated(ctx context.Context, templateId int, date time.Time) (*expense.Expense, error)
	// InsertGenerated inserts a generated expense row. A uniqueness conflict
	// on (recurring_expense_id, date) is treated as already generated and
	// reported via the bool, not as an error.
	InsertGenerated(ctx context.Context, e expense.Expense) (bool, error)
	// ReplaceGenerated deletes a stale generated expense and inserts its
	// replacement in a single transaction.
	ReplaceGenerated(ctx context.Context, staleExpenseId int, e expense.Expense) error
}

type RepoImpl struct {
	db *sql.DB
}

func NewRecurringRepo(db *sql.DB) *RepoImpl {
	return &RepoImpl{db: db}
}

const templateColumns = `id, description, default_amount, category_id, paid_by_user_id, split_type,
	split_ratio_user1, split_ratio_user2, is_active, updated_at`

func (r *RepoImpl) Store(ctx context.Context, template Template) (int, error) {
	query := `INSERT INTO recurring_expenses (
                    description,
                    default_amount,
                    category_id,
                    paid_by_user_id,
                    split_type,
                    split_ratio_user1,
                    split_ratio_user2,
                    is_active,
                    updated_at
				) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, query,
		template.Description,
		template.DefaultAmount,
		template.CategoryId,
		template.PaidByUserId,
		string(template.SplitType),
		template.SplitRatioUser1,
		template.SplitRatioUser2,
		template.IsActive,
		template.UpdatedAt.UTC().Format(stampLayout),
	)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return 0, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		err := fmt.Errorf("could not retrieve last insert id: %w", err)
		log.Error(err)
		return 0, err
	}
	return int(id), nil
}

func (r *RepoImpl) Get(ctx context.Context, id int) (Template, error) {
	query := fmt.Sprintf("SELECT %s FROM recurring_expenses WHERE id = ?", templateColumns)
	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		err := fmt.Errorf("could not query template: %w", err)
		log.Error(err)
		return Template{}, err
	}
	defer rows.Close()
	if !rows.Next() {
		return Template{}, ErrTemplateNotFound
	}
	return scanTemplate(rows)
}

func (r *RepoImpl) GetAll(ctx context.Context, includeInactive bool) ([]Template, error) {
	query := fmt.Sprintf("SELECT %s FROM recurring_expenses", templateColumns)
	if !includeInactive {
		query += " WHERE is_active = 1"
	}
	query += " ORDER BY id"

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not query templates: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	templates := make([]Template, 0)
	for rows.Next() {
		template, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, template)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return templates, nil
}

func (r *RepoImpl) Update(ctx context.Context, template Template) (bool, error) {
	query := `UPDATE recurring_expenses SET
                  description = ?,
                  default_amount = ?,
                  category_id = ?,
                  paid_by_user_id = ?,
                  split_type = ?,
                  split_ratio_user1 = ?,
                  split_ratio_user2 = ?,
                  is_active = ?,
                  updated_at = ?
              WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query,
		template.Description,
		template.DefaultAmount,
		template.CategoryId,
		template.PaidByUserId,
		string(template.SplitType),
		template.SplitRatioUser1,
		template.SplitRatioUser2,
		template.IsActive,
		template.UpdatedAt.UTC().Format(stampLayout),
		template.Id,
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

func (r *RepoImpl) Deactivate(ctx context.Context, id int) (bool, error) {
	query := "UPDATE recurring_expenses SET is_active = 0 WHERE id = ?"
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

func (r *RepoImpl) FindGenerated(ctx context.Context, templateId int, date time.Time) (*expense.Expense, error) {
	query := `SELECT id, amount, recurring_template_updated_at FROM expenses
              WHERE recurring_expense_id = ? AND date = ?`
	var e expense.Expense
	var stamp sql.NullString
	err := r.db.QueryRowContext(ctx, query, templateId, date.Format(dateLayout)).
		Scan(&e.Id, &e.Amount, &stamp)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	} else if err != nil {
		err := fmt.Errorf("could not query generated expense: %w", err)
		log.Error(err)
		return nil, err
	}
	e.Date = date
	templateIdCopy := templateId
	e.RecurringExpenseId = &templateIdCopy
	if stamp.Valid {
		parsed, err := time.Parse(stampLayout, stamp.String)
		if err != nil {
			err := fmt.Errorf("could not parse template stamp: %w", err)
			log.Error(err)
			return nil, err
		}
		e.RecurringTemplateUpdatedAt = &parsed
	}
	return &e, nil
}

func (r *RepoImpl) InsertGenerated(ctx context.Context, e expense.Expense) (bool, error) {
	inserted, err := insertGenerated(ctx, r.db, e)
	if err != nil {
		return false, err
	}
	if !inserted {
		log.Debugf("expense for template %d on %s already generated, skipping",
			*e.RecurringExpenseId, e.Date.Format(dateLayout))
	}
	return inserted, nil
}

func (r *RepoImpl) ReplaceGenerated(ctx context.Context, staleExpenseId int, e expense.Expense) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		err := fmt.Errorf("could not begin transaction: %w", err)
		log.Error(err)
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", staleExpenseId); err != nil {
		err := fmt.Errorf("could not delete stale generated expense: %w", err)
		log.Error(err)
		return err
	}
	if _, err := insertGenerated(ctx, tx, e); err != nil {
		return err
	}
	return tx.Commit()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// insertGenerated relies on INSERT OR IGNORE against the unique
// (recurring_expense_id, date) index so a concurrent generate call racing on
// the same month is a no-op instead of an error.
func insertGenerated(ctx context.Context, db execer, e expense.Expense) (bool, error) {
	query := `INSERT OR IGNORE INTO expenses (
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
	var stamp any
	if e.RecurringTemplateUpdatedAt != nil {
		stamp = e.RecurringTemplateUpdatedAt.UTC().Format(stampLayout)
	}
	result, err := db.ExecContext(ctx, query,
		e.Date.Format(dateLayout),
		e.Amount,
		e.Description,
		e.CategoryId,
		e.PaidByUserId,
		string(e.SplitType),
		e.SplitRatioUser1,
		e.SplitRatioUser2,
		e.RecurringExpenseId,
		stamp,
	)
	if err != nil {
		err := fmt.Errorf("could not insert generated expense: %w", err)
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

func scanTemplate(rows *sql.Rows) (Template, error) {
	var template Template
	var splitType string
	var ratio1, ratio2 sql.NullFloat64
	var updatedAt string
	if err := rows.Scan(
		&template.Id,
		&template.Description,
		&template.DefaultAmount,
		&template.CategoryId,
		&template.PaidByUserId,
		&splitType,
		&ratio1,
		&ratio2,
		&template.IsActive,
		&updatedAt,
	); err != nil {
		err := fmt.Errorf("could not scan template: %w", err)
		log.Error(err)
		return Template{}, err
	}
	template.SplitType = expense.SplitType(splitType)
	if ratio1.Valid {
		template.SplitRatioUser1 = &ratio1.Float64
	}
	if ratio2.Valid {
		template.SplitRatioUser2 = &ratio2.Float64
	}
	stamp, err := time.Parse(stampLayout, updatedAt)
	if err != nil {
		err := fmt.Errorf("could not parse template updated_at: %w", err)
		log.Error(err)
		return Template{}, err
	}
	template.UpdatedAt = stamp
	return template, nil
}
