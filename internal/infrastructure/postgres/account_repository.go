package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/manufactura-erp/internal/domain"
	"github.com/jhoicas/manufactura-erp/internal/domain/entity"
	"github.com/jhoicas/manufactura-erp/internal/domain/repository"
)

var _ repository.AccountRepository = (*AccountRepo)(nil)

// AccountRepo plan de cuentas sobre PostgreSQL (usable con pool o tx).
type AccountRepo struct {
	q Querier
}

// NewAccountRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAccountRepository(q Querier) *AccountRepo {
	return &AccountRepo{q: q}
}

const accountColumns = `id, code, name, type, category, created_at, updated_at`

func scanAccount(row pgx.Row) (*entity.Account, error) {
	var a entity.Account
	if err := row.Scan(&a.ID, &a.Code, &a.Name, &a.Type, &a.Category, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AccountRepo) one(ctx context.Context, query string, arg string) (*entity.Account, error) {
	a, err := scanAccount(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

// Create persiste una cuenta; el código es único.
func (r *AccountRepo) Create(ctx context.Context, a *entity.Account) error {
	_, err := r.q.Exec(ctx, `INSERT INTO accounts (`+accountColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.Code, a.Name, a.Type, a.Category, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

func (r *AccountRepo) GetByID(ctx context.Context, id string) (*entity.Account, error) {
	return r.one(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
}

func (r *AccountRepo) GetByCode(ctx context.Context, code string) (*entity.Account, error) {
	return r.one(ctx, `SELECT `+accountColumns+` FROM accounts WHERE code = $1`, code)
}

// List plan de cuentas ordenado por código.
func (r *AccountRepo) List(ctx context.Context) ([]*entity.Account, error) {
	rows, err := r.q.Query(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()
	var list []*entity.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// Update guarda código, nombre y categoría.
func (r *AccountRepo) Update(ctx context.Context, a *entity.Account) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE accounts SET code = $2, name = $3, category = $4, updated_at = $5 WHERE id = $1`,
		a.ID, a.Code, a.Name, a.Category, a.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update account: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *AccountRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete account: %w", translate(err))
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// HasPostedLines true si alguna línea de un asiento no borrador usa la cuenta.
func (r *AccountRepo) HasPostedLines(ctx context.Context, id string) (bool, error) {
	var used bool
	err := r.q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM journal_lines l JOIN journal_entries e ON e.id = l.entry_id
			WHERE l.account_id = $1 AND e.status <> 'DRAFT'
		)`, id).Scan(&used)
	if err != nil {
		return false, fmt.Errorf("account usage: %w", err)
	}
	return used, nil
}

// HasLines true si alguna línea, de cualquier estado, usa la cuenta.
func (r *AccountRepo) HasLines(ctx context.Context, id string) (bool, error) {
	var used bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM journal_lines WHERE account_id = $1)`, id).Scan(&used)
	if err != nil {
		return false, fmt.Errorf("account lines: %w", err)
	}
	return used, nil
}
