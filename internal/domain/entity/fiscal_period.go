package entity

import "time"

// Estados de período fiscal.
const (
	PeriodStatusOpen   = "OPEN"
	PeriodStatusClosed = "CLOSED"
)

// FiscalPeriod mes calendario que habilita o bloquea la contabilización.
type FiscalPeriod struct {
	Year      int
	Month     int
	Status    string
	UpdatedAt time.Time
}

// PeriodOf año y mes de una fecha (UTC).
func PeriodOf(t time.Time) (int, int) {
	t = t.UTC()
	return t.Year(), int(t.Month())
}
