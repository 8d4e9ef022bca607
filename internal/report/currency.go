package report

import (
	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// FormatBRL renders an amount as Brazilian reais, e.g. "R$ 1.234,56".
// Negative amounts keep their sign unless absolute is set.
func FormatBRL(amount decimal.Decimal, absolute bool) string {
	v, _ := amount.Round(2).Float64()
	sign := ""
	if v < 0 {
		v = -v
		if !absolute {
			sign = "-"
		}
	}
	return sign + "R$ " + humanize.FormatFloat("#.###,##", v)
}
