package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jhoicas/manufactura-erp/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestTranslate_SQLState(t *testing.T) {
	cases := []struct {
		code       string
		constraint string
		want       error
	}{
		{codeLockNotAvailable, "", domain.ErrContention},
		{codeSerializationFailed, "", domain.ErrContention},
		{codeDeadlockDetected, "", domain.ErrContention},
		{codeCheckViolation, constraintBalanceQuantity, domain.ErrInsufficientPhysicalStock},
		{codeCheckViolation, constraintBatchQuantity, domain.ErrInsufficientPhysicalStock},
		{codeCheckViolation, "stock_movements_quantity_check", domain.ErrInvalidInput},
		{codeForeignKeyViolation, constraintLineAccount, domain.ErrAccountInUse},
		{codeUniqueViolation, "", domain.ErrDuplicate},
	}
	for _, c := range cases {
		err := fmt.Errorf("deduct: %w", &pgconn.PgError{Code: c.code, ConstraintName: c.constraint})
		got := translate(err)
		assert.ErrorIs(t, got, c.want, "SQLSTATE %s (%s)", c.code, c.constraint)
		var pgErr *pgconn.PgError
		assert.True(t, errors.As(got, &pgErr), "conserva el error original")
	}
}

func TestTranslate_CheckDeMovimientoNoEsFaltante(t *testing.T) {
	err := translate(&pgconn.PgError{Code: codeCheckViolation, ConstraintName: "stock_movements_quantity_check"})
	assert.NotErrorIs(t, err, domain.ErrInsufficientPhysicalStock)

	fk := translate(&pgconn.PgError{Code: codeForeignKeyViolation, ConstraintName: "stock_movements_product_variant_id_fkey"})
	assert.NotErrorIs(t, fk, domain.ErrAccountInUse, "solo la FK de líneas contables")
}

func TestTranslate_SinCodigo(t *testing.T) {
	assert.Nil(t, translate(nil))
	plain := errors.New("conexión cerrada")
	assert.Equal(t, plain, translate(plain))
	assert.False(t, isContention(plain))
}

func TestNullString(t *testing.T) {
	assert.Nil(t, nullString(""))
	assert.Equal(t, "x", stringOf(nullString("x")))
	assert.Equal(t, "", stringOf(nil))
}
