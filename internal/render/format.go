package render

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Market cap follows en-US grouping with at most three fraction digits.
const marketCapFractionDigits = 3

var printer = message.NewPrinter(language.AmericanEnglish)

// Price formats a USD price with two fixed decimals, e.g. $65000.12.
func Price(v decimal.Decimal) string {
	return "$" + v.StringFixed(2)
}

// MarketCap formats a USD amount with thousands separators, e.g. $1,280,000,000,000.
func MarketCap(v decimal.Decimal) string {
	return "$" + grouped(v, marketCapFractionDigits)
}

// Change formats a signed percentage with two decimals, e.g. -3.10%.
func Change(v decimal.Decimal) string {
	return v.StringFixed(2) + "%"
}

// ChangePositive reports whether a change is styled as a gain. Zero is not.
func ChangePositive(v decimal.Decimal) bool {
	return v.IsPositive()
}

// Deviation formats a deviation with two decimals.
func Deviation(v decimal.NullDecimal) string {
	if !v.Valid {
		return ""
	}
	return v.Decimal.StringFixed(2)
}

func grouped(v decimal.Decimal, maxFrac int32) string {
	v = v.Round(maxFrac)
	neg := v.IsNegative()
	v = v.Abs()

	intPart := v.Truncate(0)
	var out string
	if whole := intPart.BigInt(); whole.IsInt64() {
		out = printer.Sprintf("%d", whole.Int64())
	} else {
		out = groupDigits(whole.String())
	}

	frac := v.Sub(intPart)
	if !frac.IsZero() {
		digits := strings.TrimRight(frac.StringFixed(maxFrac), "0")
		out += strings.TrimPrefix(digits, "0")
	}
	if neg {
		out = "-" + out
	}
	return out
}

// groupDigits inserts en-US thousands separators into a run of digits that
// does not fit in an int64.
func groupDigits(digits string) string {
	var b strings.Builder
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		b.WriteByte(',')
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
