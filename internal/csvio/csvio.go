// Package csvio reads and writes the dashboard's CSV exports.
package csvio

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mmynk/mandato360/internal/calculator"
	"github.com/mmynk/mandato360/internal/models"
	"github.com/mmynk/mandato360/internal/numeric"
)

// ErrMalformedRow is returned when an imported row cannot be parsed.
var ErrMalformedRow = errors.New("malformed csv row")

var (
	// AllocationHeader is the header row of the Slice Pie export.
	AllocationHeader = []string{"Nome", "Categoria", "Tipo", "Qtd", "ValorUnit", "Peso", "ValorEcon", "%Share", "Vesting(m)", "Cliff(m)"}
	// FinancialHeader is the header row of the projection table export.
	FinancialHeader = []string{"Ano", "Receita", "Custos", "Lucro"}
)

// WriteAllocation writes one row per computed share. Share percentages
// carry four fixed decimals.
func WriteAllocation(w io.Writer, shares []calculator.Share) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(AllocationHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, s := range shares {
		c := s.Contributor
		record := []string{
			c.Name,
			c.Category,
			string(c.Type),
			formatFloat(c.Quantity),
			formatFloat(c.ValueUnit),
			formatFloat(c.Weight),
			formatFloat(s.EconomicValue),
			strconv.FormatFloat(s.SharePercent, 'f', 4, 64),
			strconv.Itoa(c.VestingMonths),
			strconv.Itoa(c.CliffMonths),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write contributor %s: %w", c.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFinancials writes the projection table. Numbers use the shortest
// representation that parses back to the same float64.
func WriteFinancials(w io.Writer, rows []models.FinancialYear) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(FinancialHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range rows {
		record := []string{
			strconv.Itoa(row.Year),
			formatFloat(row.Revenue),
			formatFloat(row.Costs),
			formatFloat(row.Profit),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write year %d: %w", row.Year, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadFinancials parses a projection table export. The first row is the
// header and is skipped; blank lines are ignored. Columns are positional:
// year, revenue, costs, profit. Any unparseable field fails the whole
// import with the offending line number.
func ReadFinancials(r io.Reader) ([]models.FinancialYear, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}

	cr := csv.NewReader(bytes.NewReader(stripBOM(data)))
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	if _, err := cr.Read(); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	var rows []models.FinancialYear
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedRow, err)
		}
		if blankRecord(rec) {
			continue
		}
		line, _ := cr.FieldPos(0)

		row, err := parseFinancialRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedRow, line, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseFinancialRecord(rec []string) (models.FinancialYear, error) {
	if len(rec) < len(FinancialHeader) {
		return models.FinancialYear{}, fmt.Errorf("expected %d fields, got %d", len(FinancialHeader), len(rec))
	}

	year, err := numeric.ParseInt(rec[0])
	if err != nil {
		return models.FinancialYear{}, fmt.Errorf("year: %w", err)
	}

	var values [3]float64
	for i := range values {
		v, err := numeric.Parse(rec[i+1])
		if err != nil {
			return models.FinancialYear{}, fmt.Errorf("%s: %w", FinancialHeader[i+1], err)
		}
		values[i] = v
	}

	return models.FinancialYear{Year: year, Revenue: values[0], Costs: values[1], Profit: values[2]}, nil
}

// blankRecord reports whether every field is whitespace. encoding/csv only
// skips truly empty lines.
func blankRecord(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func stripBOM(b []byte) []byte {
	bom := []byte{0xEF, 0xBB, 0xBF}
	if len(b) >= 3 && bytes.Equal(b[:3], bom) {
		return b[3:]
	}
	return b
}
