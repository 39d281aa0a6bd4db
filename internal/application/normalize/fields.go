package normalize

import (
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/bryanwahyu/analysis-gateway/internal/domain/analysis"
)

var (
	localPrinter = message.NewPrinter(language.Turkish)
	usdPrinter   = message.NewPrinter(language.AmericanEnglish)
)

// amount reads a number, or a numeric string. Anything else is absent.
func amount(r gjson.Result) analysis.Amount {
	var v float64
	switch r.Type {
	case gjson.Number:
		v = r.Num
	case gjson.String:
		parsed, ok := parseNumber(r.Str)
		if !ok {
			return analysis.Amount{}
		}
		v = parsed
	default:
		return analysis.Amount{}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return analysis.Amount{}
	}
	return analysis.Some(v)
}

// parseNumber accepts "12.5", "₺1.234,50", "$ 30", "%12".
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	for _, sym := range []string{"₺", "TL", "$", "USD", "%"} {
		s = strings.TrimSpace(strings.ReplaceAll(s, sym, ""))
	}
	if s == "" {
		return 0, false
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, true
	}
	if strings.Contains(s, ",") {
		tr := strings.ReplaceAll(strings.ReplaceAll(s, ".", ""), ",", ".")
		if v, err := strconv.ParseFloat(tr, 64); err == nil {
			return v, true
		}
	}
	return 0, false
}

// money pairs a local amount with an optional USD amount.
func money(local, usd gjson.Result) analysis.Money {
	m := analysis.Money{Local: amount(local), USD: amount(usd)}
	m.Display = displayMoney(m)
	return m
}

func displayMoney(m analysis.Money) string {
	local := analysis.Placeholder
	if m.Local.Valid {
		local = formatLocal(m.Local.Value)
	}
	if !m.USD.Valid {
		return local
	}
	return local + " / " + formatUSD(m.USD.Value)
}

func formatLocal(v float64) string { return "₺" + localPrinter.Sprintf("%.2f", v) }

func formatUSD(v float64) string { return "$" + usdPrinter.Sprintf("%.2f", v) }

func percent(a analysis.Amount) string {
	if !a.Valid {
		return analysis.Placeholder
	}
	return "%" + localPrinter.Sprintf("%.1f", a.Value*100)
}

// text returns the value as a string, or the placeholder when missing or blank.
func text(r gjson.Result) string {
	if !r.Exists() || r.Type == gjson.Null {
		return analysis.Placeholder
	}
	s := strings.TrimSpace(r.String())
	if s == "" {
		return analysis.Placeholder
	}
	return s
}

// firstText returns the first non-blank string among keys, or "".
func firstText(r gjson.Result, keys ...string) string {
	for _, k := range keys {
		v := r.Get(k)
		if v.Exists() && v.Type != gjson.Null {
			if s := strings.TrimSpace(v.String()); s != "" {
				return s
			}
		}
	}
	return ""
}

// firstOf returns the first present value among keys.
func firstOf(r gjson.Result, keys ...string) gjson.Result {
	for _, k := range keys {
		if v := r.Get(k); v.Exists() && v.Type != gjson.Null {
			return v
		}
	}
	return gjson.Result{}
}

// rows returns the elements of an array; non-arrays yield nothing.
func rows(r gjson.Result) []gjson.Result {
	if !r.IsArray() {
		return nil
	}
	return r.Array()
}
