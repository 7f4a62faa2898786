package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/manufactura-erp/internal/domain"
	"github.com/jhoicas/manufactura-erp/internal/domain/entity"
	"github.com/jhoicas/manufactura-erp/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.JournalRepository = (*JournalRepo)(nil)

// JournalRepo asientos y líneas sobre PostgreSQL (usable con pool o tx).
// La referencia tipada se persiste en reference_type, reference_id y purchase_order_id.
type JournalRepo struct {
	q Querier
}

// NewJournalRepository construye el adaptador. Pasar pool o tx (Querier).
func NewJournalRepository(q Querier) *JournalRepo {
	return &JournalRepo{q: q}
}

const entryColumns = `id, number, entry_date, description, reference, reference_type, reference_id,
	purchase_order_id, status, is_auto_generated, reversal_of_id, posted_at, voided_at, created_by,
	created_at, updated_at`

// Create persiste cabecera y líneas en el orden recibido.
func (r *JournalRepo) Create(ctx context.Context, e *entity.JournalEntry) error {
	src := e.Source
	if src == nil {
		src = entity.ManualRef{}
	}
	_, err := r.q.Exec(ctx, `INSERT INTO journal_entries (`+entryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		e.ID, e.Number, e.EntryDate, e.Description, e.Reference, string(src.Kind()), nullString(src.RefID()),
		nullString(entity.PurchaseOrderOf(src)), e.Status, e.IsAutoGenerated, nullString(e.ReversalOfID),
		utcPtr(e.PostedAt), utcPtr(e.VoidedAt), nullString(e.CreatedBy), e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create journal entry: %w", translate(err))
	}
	for i := range e.Lines {
		l := &e.Lines[i]
		if l.ID == "" {
			l.ID = uuid.New().String()
		}
		l.EntryID = e.ID
		_, err := r.q.Exec(ctx, `
			INSERT INTO journal_lines (id, entry_id, line_no, account_id, description, debit, credit)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			l.ID, e.ID, i+1, l.AccountID, l.Description, l.Debit, l.Credit)
		if err != nil {
			return fmt.Errorf("create journal line %d: %w", i+1, translate(err))
		}
	}
	return nil
}

func scanEntry(row pgx.Row) (*entity.JournalEntry, error) {
	var e entity.JournalEntry
	var refType string
	var refID, po, reversalOf, createdBy *string
	err := row.Scan(&e.ID, &e.Number, &e.EntryDate, &e.Description, &e.Reference, &refType, &refID, &po,
		&e.Status, &e.IsAutoGenerated, &reversalOf, &e.PostedAt, &e.VoidedAt, &createdBy,
		&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	src, err := entity.ParseReference(refType, stringOf(refID), stringOf(po))
	if err != nil {
		return nil, err
	}
	e.Source = src
	e.ReversalOfID = stringOf(reversalOf)
	e.CreatedBy = stringOf(createdBy)
	return &e, nil
}

func (r *JournalRepo) loadLines(ctx context.Context, e *entity.JournalEntry) error {
	rows, err := r.q.Query(ctx, `
		SELECT id, entry_id, account_id, description, debit, credit
		FROM journal_lines WHERE entry_id = $1 ORDER BY line_no`, e.ID)
	if err != nil {
		return fmt.Errorf("load journal lines: %w", err)
	}
	defer rows.Close()
	e.Lines = e.Lines[:0]
	for rows.Next() {
		var l entity.JournalLine
		if err := rows.Scan(&l.ID, &l.EntryID, &l.AccountID, &l.Description, &l.Debit, &l.Credit); err != nil {
			return fmt.Errorf("scan journal line: %w", err)
		}
		e.Lines = append(e.Lines, l)
	}
	return rows.Err()
}

func (r *JournalRepo) get(ctx context.Context, query, id string) (*entity.JournalEntry, error) {
	e, err := scanEntry(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get journal entry: %w", translate(err))
	}
	if err := r.loadLines(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// GetForUpdate bloquea la cabecera y carga las líneas.
func (r *JournalRepo) GetForUpdate(ctx context.Context, id string) (*entity.JournalEntry, error) {
	return r.get(ctx, `SELECT `+entryColumns+` FROM journal_entries WHERE id = $1 FOR UPDATE`, id)
}

func (r *JournalRepo) GetByID(ctx context.Context, id string) (*entity.JournalEntry, error) {
	return r.get(ctx, `SELECT `+entryColumns+` FROM journal_entries WHERE id = $1`, id)
}

// UpdateStatus guarda estado y marcas de tiempo; las líneas no cambian después de crearse.
func (r *JournalRepo) UpdateStatus(ctx context.Context, e *entity.JournalEntry) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE journal_entries SET status = $2, posted_at = $3, voided_at = $4, updated_at = $5
		WHERE id = $1`, e.ID, e.Status, utcPtr(e.PostedAt), utcPtr(e.VoidedAt), e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update journal status: %w", translate(err))
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// FindBySource asientos no anulados de la referencia, en orden de creación.
func (r *JournalRepo) FindBySource(ctx context.Context, kind entity.ReferenceKind, refID string) ([]*entity.JournalEntry, error) {
	rows, err := r.q.Query(ctx, `SELECT `+entryColumns+` FROM journal_entries
		WHERE reference_type = $1 AND reference_id = $2 AND status <> 'VOIDED'
		ORDER BY created_at, number`, string(kind), refID)
	if err != nil {
		return nil, fmt.Errorf("find journal by source: %w", err)
	}
	var list []*entity.JournalEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		list = append(list, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// Las líneas se cargan después de cerrar el cursor: la conexión de la tx no admite dos a la vez.
	for _, e := range list {
		if err := r.loadLines(ctx, e); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// PostedDebitExists true si un asiento POSTED de la referencia y orden de compra debita la cuenta.
func (r *JournalRepo) PostedDebitExists(ctx context.Context, kind entity.ReferenceKind, purchaseOrderID, accountID string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM journal_entries e JOIN journal_lines l ON l.entry_id = e.id
			WHERE e.status = 'POSTED' AND e.reference_type = $1 AND e.purchase_order_id = $2
			  AND l.account_id = $3 AND l.debit > 0
		)`, string(kind), purchaseOrderID, accountID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("posted debit exists: %w", err)
	}
	return exists, nil
}

// dateFilter condiciones opcionales sobre entry_date a partir del argumento n.
func dateFilter(dr repository.DateRange, n int) (string, []any) {
	var sql string
	var args []any
	if dr.From != nil {
		sql += fmt.Sprintf(" AND e.entry_date >= $%d", n)
		args = append(args, *dr.From)
		n++
	}
	if dr.To != nil {
		sql += fmt.Sprintf(" AND e.entry_date <= $%d", n)
		args = append(args, *dr.To)
	}
	return sql, args
}

// TotalsByAccount totales POSTED agrupados por cuenta, ordenados por código.
func (r *JournalRepo) TotalsByAccount(ctx context.Context, dr repository.DateRange) ([]repository.AccountTotals, error) {
	filter, args := dateFilter(dr, 1)
	rows, err := r.q.Query(ctx, `
		SELECT a.id, a.code, a.name, a.type, a.category, SUM(l.debit), SUM(l.credit)
		FROM journal_lines l
		JOIN journal_entries e ON e.id = l.entry_id
		JOIN accounts a ON a.id = l.account_id
		WHERE e.status = 'POSTED'`+filter+`
		GROUP BY a.id, a.code, a.name, a.type, a.category
		ORDER BY a.code`, args...)
	if err != nil {
		return nil, fmt.Errorf("totals by account: %w", err)
	}
	defer rows.Close()
	var out []repository.AccountTotals
	for rows.Next() {
		var t repository.AccountTotals
		if err := rows.Scan(&t.AccountID, &t.Code, &t.Name, &t.Type, &t.Category, &t.Debit, &t.Credit); err != nil {
			return nil, fmt.Errorf("scan account totals: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// AccountTotals débitos y créditos POSTED de una cuenta.
func (r *JournalRepo) AccountTotals(ctx context.Context, accountID string, dr repository.DateRange) (decimal.Decimal, decimal.Decimal, error) {
	filter, args := dateFilter(dr, 2)
	var debit, credit decimal.Decimal
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(l.debit), 0), COALESCE(SUM(l.credit), 0)
		FROM journal_lines l JOIN journal_entries e ON e.id = l.entry_id
		WHERE e.status = 'POSTED' AND l.account_id = $1`+filter,
		append([]any{accountID}, args...)...).Scan(&debit, &credit)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("account totals: %w", err)
	}
	return debit, credit, nil
}
