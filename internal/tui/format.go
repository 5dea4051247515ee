package tui

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cryptogamefiverse/nftdash/internal/table"
)

var hundred = decimal.NewFromInt(100)

func formatPrice(d decimal.Decimal) string {
	return groupThousands(d.StringFixed(2))
}

func formatCount(d decimal.Decimal) string {
	return groupThousands(d.StringFixed(0))
}

// formatChange renders a ratio as a signed percentage.
func formatChange(d decimal.Decimal) string {
	s := d.Mul(hundred).StringFixed(1) + "%"
	if d.IsPositive() {
		return "+" + s
	}
	return s
}

func groupThousands(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, hasFrac := strings.Cut(s, ".")
	if len(intPart) <= 3 {
		return sign + s
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
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return sign + b.String()
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 1 {
		return string(r[:width])
	}
	return string(r[:width-1]) + "…"
}

func checkbox(checked, indeterminate bool) string {
	switch {
	case checked:
		return "[x]"
	case indeterminate:
		return "[-]"
	}
	return "[ ]"
}

func sortArrow(spec table.SortSpec, key table.SortKey) string {
	if spec.Key != key {
		return ""
	}
	if spec.Direction == table.Descending {
		return " ▼"
	}
	return " ▲"
}

// cells renders one row in column order. Cells carry no escape sequences;
// the bubbles table measures them by rune width.
func cells(r table.VisibleRow, nameWidth int) []string {
	return []string{
		checkbox(r.Selected, false),
		truncate(r.Name, nameWidth),
		formatCount(r.TotalSupply),
		formatPrice(r.FloorPrice),
		formatPrice(r.MarketCap),
		formatCount(r.NumOwners),
		formatPrice(r.AveragePrice),
		formatChange(r.Change),
		formatCount(r.Sales),
		formatPrice(r.Volume),
	}
}
