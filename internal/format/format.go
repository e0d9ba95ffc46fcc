// Package format renders numbers the way the dashboard shows them.
package format

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.BrazilianPortuguese)

// Money formats v as Brazilian reais, e.g. "R$ 1.234.567,89".
func Money(v float64) string {
	if v < 0 {
		return "-" + printer.Sprintf("R$ %.2f", math.Abs(v))
	}
	return printer.Sprintf("R$ %.2f", v)
}

// Integer formats v with pt-BR digit grouping, e.g. "1.006.200".
func Integer(v int) string {
	return printer.Sprintf("%d", v)
}

// Percent formats a percentage with the given number of decimals, e.g. "2,95%".
func Percent(v float64, decimals int) string {
	return printer.Sprintf(fmt.Sprintf("%%.%df%%%%", decimals), v)
}
