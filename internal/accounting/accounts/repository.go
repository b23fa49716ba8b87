package accounts

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-books/internal/accounting/shared"
	"github.com/odyssey-erp/odyssey-books/internal/platform/db"
)

const accountColumns = `id, company_id, code, name, type, parent_id, is_group, level, mapping_code, cash_flow_class, opening_balance, opening_balance_side, is_active, created_at, updated_at`

// Repository encapsulates DB operations for the chart of accounts.
type Repository interface {
	Get(ctx context.Context, companyID, id int64) (Account, error)
	List(ctx context.Context, companyID int64) ([]Account, error)
	FindByCode(ctx context.Context, companyID int64, code string) (Account, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes methods available within a transaction.
type TxRepository interface {
	GetForUpdate(ctx context.Context, companyID, id int64) (Account, error)
	CodeExists(ctx context.Context, companyID int64, code string) (bool, error)
	HasPostings(ctx context.Context, accountID int64) (bool, error)
	CountChildren(ctx context.Context, accountID int64) (int, error)
	Insert(ctx context.Context, acc Account) (Account, error)
	Update(ctx context.Context, acc Account) error
	SetGroup(ctx context.Context, accountID int64, isGroup bool) error
	Delete(ctx context.Context, accountID int64) error
	MarkTrialBalanceStale(ctx context.Context, companyID int64) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository returns the Postgres-backed account repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.CompanyID, &a.Code, &a.Name, &a.Type, &a.ParentID, &a.IsGroup, &a.Level, &a.MappingCode,
		&a.CashFlowClass, &a.OpeningBalance, &a.OpeningBalanceSide, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, shared.ErrAccountNotFound
		}
		return Account{}, err
	}
	return a, nil
}

func (r *repository) Get(ctx context.Context, companyID, id int64) (Account, error) {
	return scanAccount(r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE company_id=$1 AND id=$2`, companyID, id))
}

func (r *repository) FindByCode(ctx context.Context, companyID int64, code string) (Account, error) {
	return scanAccount(r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE company_id=$1 AND code=$2`, companyID, code))
}

func (r *repository) List(ctx context.Context, companyID int64) ([]Account, error) {
	rows, err := r.db.Query(ctx, `SELECT `+accountColumns+` FROM accounts WHERE company_id=$1 ORDER BY code`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var accounts []Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) GetForUpdate(ctx context.Context, companyID, id int64) (Account, error) {
	return scanAccount(r.tx.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE company_id=$1 AND id=$2 FOR UPDATE`, companyID, id))
}

func (r *txRepository) CodeExists(ctx context.Context, companyID int64, code string) (bool, error) {
	var exists bool
	err := r.tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM accounts WHERE company_id=$1 AND code=$2)`, companyID, code).Scan(&exists)
	return exists, err
}

func (r *txRepository) HasPostings(ctx context.Context, accountID int64) (bool, error) {
	var exists bool
	err := r.tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM journal_entry_lines WHERE account_id=$1)`, accountID).Scan(&exists)
	return exists, err
}

func (r *txRepository) CountChildren(ctx context.Context, accountID int64) (int, error) {
	var count int
	err := r.tx.QueryRow(ctx, `SELECT COUNT(*) FROM accounts WHERE parent_id=$1`, accountID).Scan(&count)
	return count, err
}

func (r *txRepository) Insert(ctx context.Context, acc Account) (Account, error) {
	row := r.tx.QueryRow(ctx, `INSERT INTO accounts (company_id, code, name, type, parent_id, is_group, level, mapping_code, cash_flow_class, opening_balance, opening_balance_side, is_active)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12) RETURNING `+accountColumns,
		acc.CompanyID, acc.Code, acc.Name, acc.Type, acc.ParentID, acc.IsGroup, acc.Level, acc.MappingCode,
		acc.CashFlowClass, acc.OpeningBalance, acc.OpeningBalanceSide, acc.IsActive)
	inserted, err := scanAccount(row)
	if err != nil {
		if db.IsUniqueViolation(err, "uq_accounts_company_code") {
			return Account{}, shared.ErrDuplicateCode
		}
		return Account{}, err
	}
	return inserted, nil
}

func (r *txRepository) Update(ctx context.Context, acc Account) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE accounts SET name=$3, mapping_code=$4, cash_flow_class=$5, opening_balance=$6, opening_balance_side=$7, is_active=$8, updated_at=NOW()
WHERE company_id=$1 AND id=$2`, acc.CompanyID, acc.ID, acc.Name, acc.MappingCode, acc.CashFlowClass, acc.OpeningBalance, acc.OpeningBalanceSide, acc.IsActive)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrAccountNotFound
	}
	return nil
}

func (r *txRepository) SetGroup(ctx context.Context, accountID int64, isGroup bool) error {
	_, err := r.tx.Exec(ctx, `UPDATE accounts SET is_group=$2, updated_at=NOW() WHERE id=$1`, accountID, isGroup)
	return err
}

func (r *txRepository) Delete(ctx context.Context, accountID int64) error {
	cmd, err := r.tx.Exec(ctx, `DELETE FROM accounts WHERE id=$1`, accountID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrAccountNotFound
	}
	return nil
}

func (r *txRepository) MarkTrialBalanceStale(ctx context.Context, companyID int64) error {
	return shared.MarkTrialBalanceStale(ctx, r.tx, companyID)
}
