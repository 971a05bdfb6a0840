package answer

import (
	"strconv"
	"strings"
)

// FormatCurrency renders an amount in Colombian convention: dot for
// thousands, comma for decimals, e.g. -1500.5 → "-$1.500,50".
func FormatCurrency(amount float64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}

	s := strconv.FormatFloat(amount, 'f', 2, 64)
	intPart, decPart, _ := strings.Cut(s, ".")

	var sb strings.Builder
	for i, d := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			sb.WriteByte('.')
		}
		sb.WriteRune(d)
	}

	sign := ""
	if neg {
		sign = "-"
	}
	return sign + "$" + sb.String() + "," + decPart
}
