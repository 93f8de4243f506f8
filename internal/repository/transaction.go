package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/centsible/centsible-go/internal/model"
)

var ErrTransactionNotFound = errors.New("transaction not found")

// TransactionRepository handles transaction persistence operations.
type TransactionRepository struct {
	db *sql.DB
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Create inserts a new transaction and reads the database-assigned
// timestamps back onto the struct. The caller supplies the ID.
func (r *TransactionRepository) Create(ctx context.Context, t *model.Transaction) error {
	query := `INSERT INTO transactions (id, user_id, type, amount_cents, description, category, transaction_date)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		t.ID, t.UserID, t.Type, t.AmountCents, t.Description, t.Category, t.Date,
	)
	if err != nil {
		return err
	}

	return r.db.QueryRowContext(ctx,
		`SELECT created_at, updated_at FROM transactions WHERE id = ?`, t.ID,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
}

// GetByID retrieves a transaction by its ID, regardless of owner.
// Ownership checks belong to the caller.
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*model.Transaction, error) {
	query := `SELECT id, user_id, type, amount_cents, description, category, transaction_date, created_at, updated_at
		FROM transactions WHERE id = ?`

	t := &model.Transaction{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.UserID, &t.Type, &t.AmountCents, &t.Description, &t.Category,
		&t.Date, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}

	return t, nil
}

// Update rewrites the mutable columns of a transaction and refreshes
// the struct's timestamps. A vanished row reads as not found.
func (r *TransactionRepository) Update(ctx context.Context, t *model.Transaction) error {
	query := `UPDATE transactions
		SET type = ?, amount_cents = ?, description = ?, category = ?, transaction_date = ?
		WHERE id = ?`

	// RowsAffected is not checked: MySQL reports zero affected rows for
	// an update that leaves every column unchanged.
	if _, err := r.db.ExecContext(ctx, query,
		t.Type, t.AmountCents, t.Description, t.Category, t.Date, t.ID,
	); err != nil {
		return err
	}

	err := r.db.QueryRowContext(ctx,
		`SELECT created_at, updated_at FROM transactions WHERE id = ?`, t.ID,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrTransactionNotFound
	}
	return err
}

// Delete removes a transaction by ID.
func (r *TransactionRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrTransactionNotFound
	}

	return nil
}

// ListByUser retrieves one page of a user's transactions, newest date
// first. A non-empty search matches description or category as a
// case-insensitive substring.
func (r *TransactionRepository) ListByUser(ctx context.Context, userID, search string, limit, offset int64) ([]model.Transaction, error) {
	query := `SELECT id, user_id, type, amount_cents, description, category, transaction_date, created_at, updated_at
		FROM transactions WHERE user_id = ?
		ORDER BY transaction_date DESC, created_at DESC
		LIMIT ? OFFSET ?`
	args := []any{userID, limit, offset}

	if search != "" {
		query = `SELECT id, user_id, type, amount_cents, description, category, transaction_date, created_at, updated_at
			FROM transactions WHERE user_id = ? AND (description LIKE ? OR category LIKE ?)
			ORDER BY transaction_date DESC, created_at DESC
			LIMIT ? OFFSET ?`
		pattern := likePattern(search)
		args = []any{userID, pattern, pattern, limit, offset}
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []model.Transaction
	for rows.Next() {
		var t model.Transaction
		if err := rows.Scan(
			&t.ID, &t.UserID, &t.Type, &t.AmountCents, &t.Description, &t.Category,
			&t.Date, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}

	return transactions, rows.Err()
}

// CountByUser counts a user's transactions under the same filter as
// ListByUser.
func (r *TransactionRepository) CountByUser(ctx context.Context, userID, search string) (int64, error) {
	query := `SELECT COUNT(*) FROM transactions WHERE user_id = ?`
	args := []any{userID}

	if search != "" {
		query = `SELECT COUNT(*) FROM transactions WHERE user_id = ? AND (description LIKE ? OR category LIKE ?)`
		pattern := likePattern(search)
		args = []any{userID, pattern, pattern}
	}

	var count int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// Totals aggregates a user's lifetime income, expenses, and transaction
// count in one pass.
func (r *TransactionRepository) Totals(ctx context.Context, userID string) (model.Totals, error) {
	query := `SELECT
			COALESCE(SUM(CASE WHEN type = 'income' THEN amount_cents ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN type = 'expense' THEN amount_cents ELSE 0 END), 0),
			COUNT(*)
		FROM transactions WHERE user_id = ?`

	var totals model.Totals
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&totals.IncomeCents, &totals.ExpenseCents, &totals.Count,
	)
	return totals, err
}

// MonthlyBuckets groups a user's transactions from since onward by
// calendar month. Months without transactions yield no bucket.
func (r *TransactionRepository) MonthlyBuckets(ctx context.Context, userID string, since model.Date) ([]model.MonthlyBucket, error) {
	query := `SELECT
			YEAR(transaction_date),
			MONTH(transaction_date),
			COALESCE(SUM(CASE WHEN type = 'income' THEN amount_cents ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN type = 'expense' THEN amount_cents ELSE 0 END), 0)
		FROM transactions
		WHERE user_id = ? AND transaction_date >= ?
		GROUP BY YEAR(transaction_date), MONTH(transaction_date)
		ORDER BY YEAR(transaction_date), MONTH(transaction_date)`

	rows, err := r.db.QueryContext(ctx, query, userID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var buckets []model.MonthlyBucket
	for rows.Next() {
		var b model.MonthlyBucket
		if err := rows.Scan(&b.Year, &b.Month, &b.IncomeCents, &b.ExpenseCents); err != nil {
			return nil, err
		}
		buckets = append(buckets, b)
	}

	return buckets, rows.Err()
}

// CategorySums aggregates a user's expenses from since onward by
// category, largest spend first.
func (r *TransactionRepository) CategorySums(ctx context.Context, userID string, since model.Date) ([]model.CategorySum, error) {
	query := `SELECT category, COALESCE(SUM(amount_cents), 0), COUNT(*)
		FROM transactions
		WHERE user_id = ? AND type = 'expense' AND transaction_date >= ?
		GROUP BY category
		ORDER BY SUM(amount_cents) DESC, category ASC`

	rows, err := r.db.QueryContext(ctx, query, userID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sums []model.CategorySum
	for rows.Next() {
		var s model.CategorySum
		if err := rows.Scan(&s.Category, &s.AmountCents, &s.Count); err != nil {
			return nil, err
		}
		sums = append(sums, s)
	}

	return sums, rows.Err()
}

// YearlySums groups a user's transactions from since onward by
// calendar year.
func (r *TransactionRepository) YearlySums(ctx context.Context, userID string, since model.Date) ([]model.YearlySum, error) {
	query := `SELECT
			YEAR(transaction_date),
			COALESCE(SUM(CASE WHEN type = 'income' THEN amount_cents ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN type = 'expense' THEN amount_cents ELSE 0 END), 0)
		FROM transactions
		WHERE user_id = ? AND transaction_date >= ?
		GROUP BY YEAR(transaction_date)
		ORDER BY YEAR(transaction_date)`

	rows, err := r.db.QueryContext(ctx, query, userID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sums []model.YearlySum
	for rows.Next() {
		var s model.YearlySum
		if err := rows.Scan(&s.Year, &s.IncomeCents, &s.ExpenseCents); err != nil {
			return nil, err
		}
		sums = append(sums, s)
	}

	return sums, rows.Err()
}

// likePattern wraps a raw search string for a substring LIKE match,
// escaping the LIKE metacharacters so user input matches literally.
func likePattern(search string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(search)
	return "%" + escaped + "%"
}
