package models

// FinancialYear is one row of the projection table.
type FinancialYear struct {
	Year    int     `json:"year"`
	Revenue float64 `json:"revenue"`
	Costs   float64 `json:"costs"`
	Profit  float64 `json:"profit"`
}

// Margin returns profit as a percentage of revenue, or 0 without revenue.
func (f FinancialYear) Margin() float64 {
	if f.Revenue == 0 {
		return 0
	}
	return f.Profit / f.Revenue * 100
}
