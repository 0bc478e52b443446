package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var amountPrinter = message.NewPrinter(language.English)

// FormatAmount renders d rounded to whole units with grouping separators and the
// currency symbol, e.g. "£3,000,000" or "-£1,250".
func FormatAmount(d decimal.Decimal, symbol string) string {
	r := d.Round(0)
	sign := ""
	if r.IsNegative() {
		sign = "-"
		r = r.Neg()
	}
	if b := r.BigInt(); b.IsInt64() {
		return sign + symbol + amountPrinter.Sprintf("%d", b.Int64())
	}
	// beyond int64 the printer cannot group, so group the decimal digits directly
	return sign + symbol + groupThousands(r.String())
}

func groupThousands(digits string) string {
	var b strings.Builder
	for i, c := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return b.String()
}

var siPrefixes = []struct {
	exp    int
	symbol string
}{
	{12, "T"}, {9, "G"}, {6, "M"}, {3, "k"}, {0, ""},
}

// FormatSI formats v with two significant digits and an SI suffix: 40M, 5.0M, 250k.
func FormatSI(v float64) string {
	if v == 0 {
		return "0"
	}
	av := math.Abs(v)
	for _, p := range siPrefixes {
		base := math.Pow(10, float64(p.exp))
		if av >= base || p.exp == 0 {
			scaled := v / base
			digits := int(math.Floor(math.Log10(math.Abs(scaled)))) + 1
			decimals := 2 - digits
			if decimals < 0 {
				decimals = 0
			}
			s := fmt.Sprintf("%.*f", decimals, scaled)
			// rounding can push 999.5k to "1000k"
			if strings.HasPrefix(strings.TrimPrefix(s, "-"), "1000") && p.exp < 12 {
				return FormatSI(math.Copysign(base*1000, v))
			}
			return s + p.symbol
		}
	}
	return fmt.Sprintf("%g", v)
}
