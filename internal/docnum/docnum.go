// Package docnum formats human-facing document numbers like QUO-2026-0042.
package docnum

import "fmt"

const (
	PrefixQuote   = "QUO"
	PrefixInvoice = "INV"
)

// Format renders a document number from its prefix, issue year and per-year
// sequence value.
func Format(prefix string, year int, seq int64) string {
	return fmt.Sprintf("%s-%d-%04d", prefix, year, seq)
}
