package billing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// ValidationError reports malformed monetary input. The operation that
// returned it has not modified any state.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Currency is an ISO 4217 currency together with its minor-unit precision.
type Currency struct {
	unit currency.Unit
}

// ParseCurrency resolves an ISO 4217 code like "USD" or "EUR".
func ParseCurrency(code string) (Currency, error) {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return Currency{}, &ValidationError{Field: "currency", Reason: fmt.Sprintf("unknown code %q", code)}
	}

	return Currency{unit: unit}, nil
}

func (c Currency) Code() string { return c.unit.String() }

// Exponent returns the number of minor-unit digits (2 for USD, 0 for JPY).
func (c Currency) Exponent() int32 {
	scale, _ := currency.Standard.Rounding(c.unit)
	return int32(scale)
}

// Round rounds an amount to the currency's minor units using
// round-half-to-even, the only rounding mode used for money in this codebase.
func (c Currency) Round(amount decimal.Decimal) decimal.Decimal {
	return amount.RoundBank(c.Exponent())
}

var one = decimal.NewFromInt(1)

// LineItem is a single billable line on a quote or an invoice. Quantity and
// UnitPrice are non-negative, TaxRate is a 0-1 fraction, Discount is an
// absolute amount subtracted before tax. SortOrder is the item's position
// within its document.
type LineItem struct {
	ID          uuid.UUID
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	TaxRate     decimal.Decimal
	Discount    decimal.Decimal
	Total       decimal.Decimal
	SortOrder   int
	CreatedAt   time.Time
}

// ItemTotal computes a single item's total: tax applies to the discounted
// amount, and a discount larger than quantity*unitPrice clamps the pre-tax
// base at zero rather than producing a negative line. Rounding happens once,
// at the end.
func ItemTotal(quantity, unitPrice, taxRate, discount decimal.Decimal, cur Currency) (decimal.Decimal, error) {
	switch {
	case quantity.IsNegative():
		return decimal.Zero, &ValidationError{Field: "quantity", Reason: "must not be negative"}
	case unitPrice.IsNegative():
		return decimal.Zero, &ValidationError{Field: "unitPrice", Reason: "must not be negative"}
	case taxRate.IsNegative() || taxRate.GreaterThan(one):
		return decimal.Zero, &ValidationError{Field: "taxRate", Reason: "must be a fraction between 0 and 1"}
	case discount.IsNegative():
		return decimal.Zero, &ValidationError{Field: "discount", Reason: "must not be negative"}
	}

	base := quantity.Mul(unitPrice).Sub(discount)
	if base.IsNegative() {
		base = decimal.Zero
	}

	return cur.Round(base.Mul(one.Add(taxRate))), nil
}

// PriceItems recomputes every item's Total and assigns SortOrder from the
// slice position. Fails on the first invalid item without touching the rest.
func PriceItems(items []LineItem, cur Currency) error {
	for i := range items {
		total, err := ItemTotal(items[i].Quantity, items[i].UnitPrice, items[i].TaxRate, items[i].Discount, cur)
		if err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}

		items[i].Total = total
		items[i].SortOrder = i
	}

	return nil
}

// Totals is the monetary roll-up of a billing document. Subtotal sums the
// already-rounded item totals; TaxAmount and DiscountAmount are the
// document-level charges, applied on top of whatever tax or discount the
// individual items carry.
type Totals struct {
	Subtotal       decimal.Decimal
	TaxAmount      decimal.Decimal
	DiscountAmount decimal.Decimal
	Total          decimal.Decimal
}

// DocumentTotals rolls item totals plus document-level tax and discount into
// the document's Totals. The document discount clamps at the subtotal: it can
// zero the pre-tax amount but never push it negative.
func DocumentTotals(items []LineItem, docTax, docDiscount decimal.Decimal, cur Currency) (Totals, error) {
	if docTax.IsNegative() {
		return Totals{}, &ValidationError{Field: "taxAmount", Reason: "must not be negative"}
	}

	if docDiscount.IsNegative() {
		return Totals{}, &ValidationError{Field: "discountAmount", Reason: "must not be negative"}
	}

	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Total)
	}

	base := subtotal.Sub(docDiscount)
	if base.IsNegative() {
		base = decimal.Zero
	}

	return Totals{
		Subtotal:       subtotal,
		TaxAmount:      docTax,
		DiscountAmount: docDiscount,
		Total:          cur.Round(base.Add(docTax)),
	}, nil
}
