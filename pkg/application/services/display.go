package services

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/vsinha/pricelist/pkg/domain/entities"
)

// Placeholder is shown in place of an absent price
const Placeholder = "—"

const currencySymbol = "R$\u00a0"

var ptBR = message.NewPrinter(language.BrazilianPortuguese)

// pt-BR separators, taken from the locale once at startup
var groupSeparator, decimalSeparator = localeSeparators(ptBR)

func localeSeparators(p *message.Printer) (group, dec string) {
	group = firstNonDigit(p.Sprint(number.Decimal(1000000)))
	dec = firstNonDigit(p.Sprint(number.Decimal(1.5, number.Scale(1))))
	if dec == "" {
		dec = ","
	}
	return group, dec
}

func firstNonDigit(s string) string {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return string(r)
		}
	}
	return ""
}

// FormatMoney renders an amount as Brazilian reais, e.g. "R$ 1.234,56" with a
// no-break space after the symbol. Negative amounts carry the sign before
// the symbol. Digits come from the exact decimal, so large amounts keep
// their cents.
func FormatMoney(amount decimal.Decimal) string {
	rounded := amount.Round(2)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Neg()
	}

	whole, cents, _ := strings.Cut(rounded.StringFixed(2), ".")
	return sign + currencySymbol + groupDigits(whole) + decimalSeparator + cents
}

// groupDigits inserts the group separator every three digits from the right
func groupDigits(digits string) string {
	if len(digits) <= 3 || groupSeparator == "" {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(groupSeparator)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// FormatAmount renders an optional price, using Placeholder when absent
func FormatAmount(amount decimal.NullDecimal) string {
	if !amount.Valid {
		return Placeholder
	}
	return FormatMoney(amount.Decimal)
}

// FormatHour renders an hour checkpoint zero-padded to four digits with an
// "H" suffix, e.g. "0500H"
func FormatHour(hour entities.Hour) string {
	return fmt.Sprintf("%04dH", int(hour))
}

// Summary describes a price list in one line, e.g. "X1 • até 0500H • 3 itens".
// Unselected values show the placeholder.
func Summary(sel entities.Selection, count int) string {
	machine := string(sel.Machine)
	if machine == "" {
		machine = Placeholder
	}
	hour := Placeholder
	if sel.HasHourCeiling {
		hour = FormatHour(sel.HourCeiling)
	}
	return fmt.Sprintf("%s • até %s • %d itens", machine, hour, count)
}
