package calculator

import (
	"errors"
	"fmt"

	"github.com/mmynk/mandato360/internal/models"
	"github.com/mmynk/mandato360/internal/numeric"
)

// FinancialField names an editable column of the projection table.
type FinancialField string

const (
	FieldRevenue FinancialField = "revenue"
	FieldCosts   FinancialField = "costs"
	FieldProfit  FinancialField = "profit"
)

var (
	// ErrUnknownField is returned for columns that cannot be edited.
	ErrUnknownField = errors.New("unknown financial field")
	// ErrRowOutOfRange is returned when the edited row does not exist.
	ErrRowOutOfRange = errors.New("financial row out of range")
)

// FinancialEdit is the outcome of one table edit.
type FinancialEdit struct {
	Rows []models.FinancialYear

	// Coerced is true when raw was not a clean number and was read leniently.
	Coerced bool
}

// UpdateFinancialField applies a raw form value to one cell. Editing revenue
// or costs recomputes profit = revenue - costs for that row only. The input
// slice is left untouched; a new slice is returned.
func UpdateFinancialField(rows []models.FinancialYear, index int, field FinancialField, raw string) (FinancialEdit, error) {
	if index < 0 || index >= len(rows) {
		return FinancialEdit{}, fmt.Errorf("%w: %d", ErrRowOutOfRange, index)
	}

	value, coerced := numeric.Coerce(raw)
	out := append([]models.FinancialYear(nil), rows...)
	row := &out[index]

	switch field {
	case FieldRevenue:
		row.Revenue = value
		row.Profit = row.Revenue - row.Costs
	case FieldCosts:
		row.Costs = value
		row.Profit = row.Revenue - row.Costs
	case FieldProfit:
		row.Profit = value
	default:
		return FinancialEdit{}, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}

	return FinancialEdit{Rows: out, Coerced: coerced}, nil
}
