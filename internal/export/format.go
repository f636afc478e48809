package export

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatMoney renders amount with two decimals, thousands grouping and the ISO
// currency code, e.g. "AUD 1,234.50". Unknown codes are printed as given.
func FormatMoney(amount float64, code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if unit, err := currency.ParseISO(code); err == nil {
		code = unit.String()
	}
	value := printer.Sprintf("%.2f", amount)
	if code == "" {
		return value
	}
	return code + " " + value
}

// formatQty prints at most two decimals and drops trailing zeros.
func formatQty(q float64) string {
	return strconv.FormatFloat(math.Round(q*100)/100, 'f', -1, 64)
}
