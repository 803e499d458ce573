package common

import (
	"strings"

	"github.com/shopspring/decimal"
)

var (
	thousand = decimal.NewFromInt(1000)
	scales   = []string{"", "K", "M", "G", "T"}
)

// FormatPrice renders a price with thousands separators: no decimals from
// 1,000 upwards, two decimals below.
func FormatPrice(d decimal.Decimal) string {
	places := int32(2)
	if d.Abs().GreaterThanOrEqual(thousand) {
		places = 0
	}
	return groupThousands(d.StringFixed(places))
}

// FormatCompact scales a value to K/M/G/T with three significant digits,
// e.g. 3421000000 -> "3.42G", 875000 -> "875K", 42 -> "42".
func FormatCompact(d decimal.Decimal) string {
	neg := d.IsNegative()
	v := d.Abs()
	i := 0
	for v.GreaterThanOrEqual(thousand) && i < len(scales)-1 {
		v = v.Div(thousand)
		i++
	}
	if i == 0 {
		s := v.Round(0).String()
		if neg {
			s = "-" + s
		}
		return s
	}

	places := int32(0)
	switch {
	case v.LessThan(decimal.NewFromInt(10)):
		places = 2
	case v.LessThan(decimal.NewFromInt(100)):
		places = 1
	}
	v = v.Round(places)
	// rounding can carry into the next scale, e.g. 999.6K
	if v.GreaterThanOrEqual(thousand) && i < len(scales)-1 {
		v = v.Div(thousand).Round(2)
		i++
	}
	s := strings.TrimRight(strings.TrimRight(v.StringFixed(places), "0"), ".")
	if places == 0 {
		s = v.StringFixed(0)
	}
	if neg {
		s = "-" + s
	}
	return s + scales[i]
}

// FormatPercent renders a signed whole percent, e.g. "+6%", "-3%", "0%".
func FormatPercent(pct decimal.Decimal) string {
	r := pct.Round(0)
	if r.IsPositive() {
		return "+" + r.String() + "%"
	}
	return r.String() + "%"
}

// groupThousands inserts commas into the integer part of a plain decimal string.
func groupThousands(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac := s, ""
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		intPart, frac = s[:dot], s[dot:]
	}
	if len(intPart) <= 3 {
		return sign + intPart + frac
	}
	var b strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	return sign + b.String() + frac
}
