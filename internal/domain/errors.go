package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias de infraestructura).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrConflict     = errors.New("conflicto con el estado actual")

	// Validación: abortan la transacción completa, nunca se reintentan.
	ErrInsufficientPhysicalStock  = errors.New("stock físico insuficiente")
	ErrInsufficientAvailableStock = errors.New("stock disponible insuficiente (existencias reservadas)")
	ErrUnbalancedEntry            = errors.New("asiento descuadrado: débitos distintos de créditos")
	ErrClosedPeriod               = errors.New("el período contable está cerrado")
	ErrInvalidStatus              = errors.New("transición de estado no permitida")
	ErrAlreadyReversed            = errors.New("el asiento ya fue reversado")
	ErrAccountInUse               = errors.New("la cuenta tiene movimientos contabilizados")

	// Consistencia: defectos de configuración o migración, no errores de negocio.
	ErrBalanceRowMissing  = errors.New("no existe la fila de saldo de inventario")
	ErrAccountCodeMissing = errors.New("código de cuenta contable no configurado")

	// Contención: transitorio, se puede reintentar la operación completa.
	ErrContention = errors.New("contención de bloqueo, reintente la operación")
)

// StockShortageError detalla un faltante de stock para que el caller arme un mensaje preciso.
// Kind es ErrInsufficientPhysicalStock o ErrInsufficientAvailableStock.
type StockShortageError struct {
	Kind             error
	LocationID       string
	ProductVariantID string
	Required         decimal.Decimal
	Physical         decimal.Decimal
	Available        decimal.Decimal
}

func (e *StockShortageError) Error() string {
	return fmt.Sprintf("%v: variante %s en ubicación %s (requerido %s, físico %s, disponible %s)",
		e.Kind, e.ProductVariantID, e.LocationID,
		e.Required.String(), e.Physical.String(), e.Available.String())
}

// Is permite errors.Is(err, ErrInsufficientPhysicalStock) y errors.Is(err, ErrInsufficientAvailableStock).
func (e *StockShortageError) Is(target error) bool {
	return target == e.Kind
}

// Shortfall cantidad que falta para cubrir lo requerido.
func (e *StockShortageError) Shortfall() decimal.Decimal {
	have := e.Available
	if e.Kind == ErrInsufficientPhysicalStock {
		have = e.Physical
	}
	return e.Required.Sub(have)
}

// UnbalancedEntryError totales del asiento rechazado.
type UnbalancedEntryError struct {
	Debit  decimal.Decimal
	Credit decimal.Decimal
}

func (e *UnbalancedEntryError) Error() string {
	return fmt.Sprintf("%v (débito %s, crédito %s)", ErrUnbalancedEntry, e.Debit.String(), e.Credit.String())
}

func (e *UnbalancedEntryError) Is(target error) bool {
	return target == ErrUnbalancedEntry
}

// MissingAccountError código contable sin cuenta en el plan de cuentas.
type MissingAccountError struct {
	Code string
}

func (e *MissingAccountError) Error() string {
	return fmt.Sprintf("%v: %s", ErrAccountCodeMissing, e.Code)
}

func (e *MissingAccountError) Is(target error) bool {
	return target == ErrAccountCodeMissing
}

// IsValidation indica si el error es de validación de negocio (no reintentar).
func IsValidation(err error) bool {
	return errors.Is(err, ErrInsufficientPhysicalStock) ||
		errors.Is(err, ErrInsufficientAvailableStock) ||
		errors.Is(err, ErrUnbalancedEntry) ||
		errors.Is(err, ErrClosedPeriod) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidStatus)
}

// IsRetryable indica si la operación completa puede re-ejecutarse desde cero.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrContention)
}
