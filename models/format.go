package models

import (
	"fmt"
	"strings"
)

// FormatNaira formats a whole-unit naira amount with thousand separators.
// Display only; never part of any computation.
func FormatNaira(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	str := fmt.Sprintf("%d", amount)

	n := len(str)
	if n <= 3 {
		return sign + "₦" + str
	}

	var result strings.Builder
	for i, digit := range str {
		if i > 0 && (n-i)%3 == 0 {
			result.WriteRune(',')
		}
		result.WriteRune(digit)
	}

	return sign + "₦" + result.String()
}
