package calculator

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mmynk/mandato360/internal/models"
)

func seedFinancials() []models.FinancialYear {
	return []models.FinancialYear{
		{Year: 2026, Revenue: 1006200, Costs: 336000, Profit: 670200},
		{Year: 2027, Revenue: 1355000, Costs: 546000, Profit: 809000},
		{Year: 2028, Revenue: 2050000, Costs: 950000, Profit: 1100000},
	}
}

func TestUpdateFinancialField(t *testing.T) {
	tests := []struct {
		name        string
		index       int
		field       FinancialField
		raw         string
		want        models.FinancialYear
		wantCoerced bool
		wantErr     error
	}{
		{
			name:  "revenue edit recomputes profit",
			index: 1, field: FieldRevenue, raw: "1500000",
			want: models.FinancialYear{Year: 2027, Revenue: 1500000, Costs: 546000, Profit: 954000},
		},
		{
			name:  "costs edit recomputes profit",
			index: 0, field: FieldCosts, raw: "400000",
			want: models.FinancialYear{Year: 2026, Revenue: 1006200, Costs: 400000, Profit: 606200},
		},
		{
			name:  "blank input becomes zero",
			index: 2, field: FieldCosts, raw: "",
			want:        models.FinancialYear{Year: 2028, Revenue: 2050000, Costs: 0, Profit: 2050000},
			wantCoerced: true,
		},
		{
			name:  "profit edit does not touch revenue or costs",
			index: 0, field: FieldProfit, raw: "1",
			want: models.FinancialYear{Year: 2026, Revenue: 1006200, Costs: 336000, Profit: 1},
		},
		{name: "unknown field", index: 0, field: "year", raw: "2030", wantErr: ErrUnknownField},
		{name: "row out of range", index: 3, field: FieldRevenue, raw: "1", wantErr: ErrRowOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := seedFinancials()
			edit, err := UpdateFinancialField(rows, tt.index, tt.field, tt.raw)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("UpdateFinancialField() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, edit.Rows[tt.index]); diff != "" {
				t.Errorf("edited row mismatch (-want +got):\n%s", diff)
			}
			if edit.Coerced != tt.wantCoerced {
				t.Errorf("Coerced = %v, want %v", edit.Coerced, tt.wantCoerced)
			}

			// Other rows and the input slice stay unchanged.
			original := seedFinancials()
			for i := range original {
				if i != tt.index {
					if diff := cmp.Diff(original[i], edit.Rows[i]); diff != "" {
						t.Errorf("row %d changed (-want +got):\n%s", i, diff)
					}
				}
			}
			if diff := cmp.Diff(original, rows); diff != "" {
				t.Errorf("input slice mutated (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMargin(t *testing.T) {
	row := models.FinancialYear{Revenue: 200, Costs: 50, Profit: 150}
	if got := row.Margin(); got != 75 {
		t.Errorf("Margin() = %v, want 75", got)
	}
	if got := (models.FinancialYear{}).Margin(); got != 0 {
		t.Errorf("Margin() without revenue = %v, want 0", got)
	}
}
