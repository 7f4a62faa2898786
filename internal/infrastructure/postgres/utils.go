package postgres

import (
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jhoicas/manufactura-erp/internal/domain"
)

// SQLSTATE relevantes para el núcleo.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeLockNotAvailable    = "55P03"
	codeSerializationFailed = "40001"
	codeDeadlockDetected    = "40P01"
)

// Constraints con traducción propia.
const (
	constraintBalanceQuantity = "inventory_balances_quantity_check"
	constraintBatchQuantity   = "batches_quantity_check"
	constraintLineAccount     = "journal_lines_account_id_fkey"
)

func pgConstraint(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	if code := pgCode(err); code != "" {
		return code == codeUniqueViolation
	}
	return strings.Contains(err.Error(), codeUniqueViolation)
}

// isContention lock_timeout, fallo de serialización o deadlock: la operación completa se puede reintentar.
func isContention(err error) bool {
	switch pgCode(err) {
	case codeLockNotAvailable, codeSerializationFailed, codeDeadlockDetected:
		return true
	}
	return false
}

// translate convierte los SQLSTATE conocidos en errores de dominio; el resto se devuelve igual.
// Solo los CHECK de cantidad de saldos y lotes son faltantes de stock; otro CHECK es entrada inválida.
func translate(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case isContention(err):
		return errors.Join(domain.ErrContention, err)
	case pgCode(err) == codeCheckViolation:
		switch pgConstraint(err) {
		case constraintBalanceQuantity, constraintBatchQuantity:
			return errors.Join(domain.ErrInsufficientPhysicalStock, err)
		}
		return errors.Join(domain.ErrInvalidInput, err)
	case pgCode(err) == codeForeignKeyViolation && pgConstraint(err) == constraintLineAccount:
		return errors.Join(domain.ErrAccountInUse, err)
	case pgCode(err) == codeUniqueViolation:
		return errors.Join(domain.ErrDuplicate, err)
	}
	return err
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func stringOf(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
