// Package numfmt formats numbers for human-readable report and chart labels,
// grouping thousands the en-US way.
package numfmt

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Int formats n with thousands separators, e.g. 12,345.
func Int(n int) string {
	return printer.Sprintf("%d", n)
}

func Float(v float64, decimals int) string {
	return printer.Sprintf(fmt.Sprintf("%%.%df", decimals), v)
}

func Money(v float64, decimals int) string {
	return "$" + Float(v, decimals)
}
