// Package money formats whole Thai Baht amounts.
package money

import (
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const Symbol = "฿"

// Currency is the single currency prices are expressed in.
var Currency = currency.THB

var printer = message.NewPrinter(language.Thai)

// Format renders amount with th-TH digit grouping, e.g. ฿1,290.
func Format(amount int64) string {
	if amount < 0 {
		return "-" + Symbol + printer.Sprintf("%d", -amount)
	}
	return Symbol + printer.Sprintf("%d", amount)
}

// Code returns the ISO 4217 code, THB.
func Code() string {
	return Currency.String()
}
